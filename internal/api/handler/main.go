package handler

import (
	"net/http"

	"fortuna/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
	AdminKey  string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "🎰")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)
		routesAPIv1.Use(Authn(authentication)) // Authn will NOT terminate unauthenticated request.

		u := groupUser{cfg.Container}
		routesAPIv1.GET("/user/me", u.Me)
		routesAPIv1.GET("/user/me/segment", u.MySegment)

		w := groupWallet{cfg.Container}
		routesAPIv1.GET("/wallet/:token/balance", w.GetBalance)
		routesAPIv1.GET("/wallet/:token/ledger", w.GetLedger)

		f := groupFeature{cfg.Container}
		routesAPIv1.GET("/features/today", f.Today)

		g := groupGame{cfg.Container}
		routesAPIv1.GET("/games/:feature/status", g.Status)
		routesAPIv1.POST("/games/:feature/play", g.Play)
		routesAPIv1.GET("/games/:feature/history", g.History)
		routesAPIv1.GET("/new-member-dice/status", g.NewMemberDiceStatus)
		routesAPIv1.POST("/new-member-dice/play", g.NewMemberDicePlay)

		sp := groupSeasonPass{cfg.Container}
		routesAPIv1.GET("/season-pass/status", sp.Status)
		routesAPIv1.POST("/season-pass/stamp", sp.Stamp)
		routesAPIv1.POST("/season-pass/claim/:level", sp.ClaimReward)

		tb := groupTeamBattle{cfg.Container}
		routesAPIv1.GET("/team-battle/season", tb.Season)
		routesAPIv1.GET("/team-battle/me", tb.Me)
		routesAPIv1.POST("/team-battle/teams/:team/join", tb.Join)
		routesAPIv1.POST("/team-battle/leave", tb.Leave)
		routesAPIv1.GET("/team-battle/leaderboard", tb.Leaderboard)
		routesAPIv1.GET("/team-battle/teams/:team/contributors", tb.Contributors)

		v := groupVault{cfg.Container}
		routesAPIv1.GET("/vault/status", v.Status)
		routesAPIv1.POST("/vault/fill", v.FillFree)

		rk := groupRanking{cfg.Container}
		routesAPIv1.GET("/ranking/today", rk.Today)

		act := groupActivity{cfg.Container}
		routesAPIv1.POST("/activity/record", act.Record)

		routesAdmin := routesAPIv1.Group("/admin")
		routesAdmin.Use(AuthnAdmin(cfg.AdminKey))
		{
			a := groupAdmin{cfg.Container}
			routesAdmin.GET("/external-ranking", a.ListExternalRanking)
			routesAdmin.POST("/external-ranking/upsert", a.UpsertExternalRanking)
			routesAdmin.DELETE("/external-ranking/:user", a.DeleteExternalRanking)

			routesAdmin.POST("/season-pass/seasons", a.CreateSeasonPassSeason)

			routesAdmin.POST("/team-battle/teams", a.CreateTeam)
			routesAdmin.POST("/team-battle/seasons", a.CreateTeamSeason)
			routesAdmin.POST("/team-battle/seasons/:season/active", a.SetTeamSeasonActive)
			routesAdmin.POST("/team-battle/seasons/:season/settle", a.SettleTeamSeason)

			routesAdmin.POST("/features/schedule", a.ScheduleFeature)
			routesAdmin.POST("/features/config", a.SetFeatureConfig)

			routesAdmin.GET("/segment-rules", a.ListSegmentRules)
			routesAdmin.POST("/segment-rules", a.CreateSegmentRule)
			routesAdmin.PUT("/segment-rules/:rule", a.UpdateSegmentRule)
			routesAdmin.DELETE("/segment-rules/:rule", a.DeleteSegmentRule)

			routesAdmin.POST("/new-member-dice/grant", a.GrantNewMemberDice)
			routesAdmin.POST("/new-member-dice/revoke/:user", a.RevokeNewMemberDice)

			routesAdmin.POST("/wallet/grant", a.GrantTokens)
			routesAdmin.POST("/wallet/revoke", a.RevokeTokens)

			routesAdmin.POST("/config", a.SetConfig)

			routesAdmin.POST("/auth/token", a.MintToken)
		}
	}

	return r, nil
}
