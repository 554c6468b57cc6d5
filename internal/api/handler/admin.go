package handler

import (
	"strconv"
	"time"

	"fortuna/internal/interfaces"
	"fortuna/internal/models"
	"fortuna/internal/services"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupAdmin struct {
	container *do.Injector
}

type externalRankingUpsertRequest struct {
	Items []services.ExternalRankingUpsert `json:"items"`
}

func (gr *groupAdmin) UpsertExternalRanking(c echo.Context) error {
	ctx := c.Request().Context()

	limiter, err := do.Invoke[interfaces.Limiter](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}
	err = limiter.Allow(ctx, services.LimitKeyAdminUpsert(), redis_rate.PerMinute(services.ADMIN_UPSERT_RATE_PER_MINUTE))
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	var payload externalRankingUpsertRequest
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceRanking, err := do.Invoke[*services.ServiceRanking](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	rows, err := serviceRanking.UpsertMany(ctx, payload.Items, time.Now())
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, rows, nil)
}

func (gr *groupAdmin) ListExternalRanking(c echo.Context) error {
	ctx := c.Request().Context()

	serviceRanking, err := do.Invoke[*services.ServiceRanking](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	rows, err := serviceRanking.ListExternal(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, rows, nil)
}

func (gr *groupAdmin) DeleteExternalRanking(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := strconv.ParseInt(c.Param("user"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(services.ErrUserNotFound, errorx.Validation))
	}

	serviceRanking, err := do.Invoke[*services.ServiceRanking](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceRanking.DeleteExternal(ctx, userID)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, map[string]interface{}{"deleted": true}, nil)
}

type createSeasonRequest struct {
	SeasonName     string                `json:"season_name"`
	StartDate      time.Time             `json:"start_date"`
	EndDate        time.Time             `json:"end_date"`
	MaxLevel       int                   `json:"max_level"`
	BaseXPPerStamp int                   `json:"base_xp_per_stamp"`
	Levels         []*models.SeasonLevel `json:"levels"`
}

func (gr *groupAdmin) CreateSeasonPassSeason(c echo.Context) error {
	ctx := c.Request().Context()

	var payload createSeasonRequest
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceSeasonPass, err := do.Invoke[*services.ServiceSeasonPass](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	season, err := serviceSeasonPass.CreateSeason(ctx, &models.Season{
		SeasonName:     payload.SeasonName,
		StartDate:      payload.StartDate,
		EndDate:        payload.EndDate,
		MaxLevel:       payload.MaxLevel,
		BaseXPPerStamp: payload.BaseXPPerStamp,
		IsActive:       true,
	}, payload.Levels)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, season, nil)
}

type createTeamSeasonRequest struct {
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	IsActive bool      `json:"is_active"`
}

func (gr *groupAdmin) CreateTeamSeason(c echo.Context) error {
	ctx := c.Request().Context()

	var payload createTeamSeasonRequest
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceTeamBattle, err := do.Invoke[*services.ServiceTeamBattle](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	season, err := serviceTeamBattle.CreateSeason(ctx, &models.TeamSeason{
		Name:     payload.Name,
		StartsAt: payload.StartsAt,
		EndsAt:   payload.EndsAt,
		IsActive: payload.IsActive,
	})
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, season, nil)
}

func (gr *groupAdmin) SetTeamSeasonActive(c echo.Context) error {
	ctx := c.Request().Context()

	seasonID, err := strconv.ParseInt(c.Param("season"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(services.ErrNoActiveSeason, errorx.Validation))
	}

	var payload struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceTeamBattle, err := do.Invoke[*services.ServiceTeamBattle](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceTeamBattle.SetSeasonActive(ctx, seasonID, payload.IsActive)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, map[string]interface{}{"season_id": seasonID, "is_active": payload.IsActive}, nil)
}

func (gr *groupAdmin) SettleTeamSeason(c echo.Context) error {
	ctx := c.Request().Context()

	seasonID, err := strconv.ParseInt(c.Param("season"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(services.ErrNoActiveSeason, errorx.Validation))
	}

	serviceTeamBattle, err := do.Invoke[*services.ServiceTeamBattle](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	paid, err := serviceTeamBattle.SettleRewards(ctx, seasonID)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, map[string]interface{}{"season_id": seasonID, "rewarded_members": paid}, nil)
}

func (gr *groupAdmin) CreateTeam(c echo.Context) error {
	ctx := c.Request().Context()

	var payload struct {
		Name         string `json:"name"`
		LeaderUserID int64  `json:"leader_user_id"`
	}
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceTeamBattle, err := do.Invoke[*services.ServiceTeamBattle](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	team, err := serviceTeamBattle.CreateTeam(ctx, payload.Name, payload.LeaderUserID)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, team, nil)
}

func (gr *groupAdmin) ScheduleFeature(c echo.Context) error {
	ctx := c.Request().Context()

	var payload struct {
		Date        string `json:"date"`
		FeatureType string `json:"feature_type"`
	}
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceFeature, err := do.Invoke[*services.ServiceFeature](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceFeature.ScheduleFeature(ctx, payload.Date, models.FeatureType(payload.FeatureType))
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, map[string]interface{}{"date": payload.Date, "feature_type": payload.FeatureType}, nil)
}

func (gr *groupAdmin) SetFeatureConfig(c echo.Context) error {
	ctx := c.Request().Context()

	var payload struct {
		FeatureType string `json:"feature_type"`
		IsEnabled   bool   `json:"is_enabled"`
		DailyLimit  int    `json:"daily_limit"`
	}
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceFeature, err := do.Invoke[*services.ServiceFeature](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceFeature.SetFeatureConfig(ctx, models.FeatureType(payload.FeatureType), payload.IsEnabled, payload.DailyLimit)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, payload, nil)
}

func (gr *groupAdmin) CreateSegmentRule(c echo.Context) error {
	ctx := c.Request().Context()

	var rule models.SegmentRule
	if err := c.Bind(&rule); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceSegment, err := do.Invoke[*services.ServiceSegment](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceSegment.CreateRule(ctx, &rule)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, rule, nil)
}

func (gr *groupAdmin) UpdateSegmentRule(c echo.Context) error {
	ctx := c.Request().Context()

	ruleID, err := strconv.ParseInt(c.Param("rule"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(services.ErrInvalidConfig, errorx.Validation))
	}

	var rule models.SegmentRule
	if err := c.Bind(&rule); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}
	rule.ID = ruleID

	serviceSegment, err := do.Invoke[*services.ServiceSegment](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceSegment.UpdateRule(ctx, &rule)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, rule, nil)
}

func (gr *groupAdmin) DeleteSegmentRule(c echo.Context) error {
	ctx := c.Request().Context()

	ruleID, err := strconv.ParseInt(c.Param("rule"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(services.ErrInvalidConfig, errorx.Validation))
	}

	serviceSegment, err := do.Invoke[*services.ServiceSegment](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceSegment.DeleteRule(ctx, ruleID)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, map[string]interface{}{"deleted": true}, nil)
}

func (gr *groupAdmin) ListSegmentRules(c echo.Context) error {
	ctx := c.Request().Context()

	serviceSegment, err := do.Invoke[*services.ServiceSegment](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	rules, err := serviceSegment.ListRules(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, rules, nil)
}

func (gr *groupAdmin) GrantNewMemberDice(c echo.Context) error {
	ctx := c.Request().Context()

	var payload struct {
		UserID      int64      `json:"user_id"`
		CampaignKey string     `json:"campaign_key"`
		GrantedBy   string     `json:"granted_by"`
		ExpiresAt   *time.Time `json:"expires_at"`
	}
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceNewMemberDice, err := do.Invoke[*services.ServiceNewMemberDice](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceNewMemberDice.GrantEligibility(ctx, payload.UserID, payload.CampaignKey, payload.GrantedBy, payload.ExpiresAt)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, map[string]interface{}{"user_id": payload.UserID, "eligible": true}, nil)
}

func (gr *groupAdmin) RevokeNewMemberDice(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := strconv.ParseInt(c.Param("user"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(services.ErrUserNotFound, errorx.Validation))
	}

	serviceNewMemberDice, err := do.Invoke[*services.ServiceNewMemberDice](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceNewMemberDice.RevokeEligibility(ctx, userID)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, map[string]interface{}{"user_id": userID, "eligible": false}, nil)
}

type walletAdjustRequest struct {
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	Amount    int64  `json:"amount"`
	Label     string `json:"label"`
	Memo      string `json:"memo"`
}

func (gr *groupAdmin) GrantTokens(c echo.Context) error {
	ctx := c.Request().Context()

	var payload walletAdjustRequest
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	tokenType := models.TokenType(payload.TokenType)
	if !tokenType.Valid() {
		return httpx.RestAbort(c, nil, errorx.Wrap(services.ErrInvalidTokenAmount, errorx.Validation))
	}

	serviceWallet, err := do.Invoke[*services.ServiceWallet](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	wallet, applied, err := serviceWallet.Grant(ctx, payload.UserID, tokenType, payload.Amount, models.ReasonAdminGrant, payload.Label, map[string]interface{}{
		"memo": payload.Memo,
	})
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"wallet":  wallet,
		"applied": applied,
	}, nil)
}

func (gr *groupAdmin) RevokeTokens(c echo.Context) error {
	ctx := c.Request().Context()

	var payload walletAdjustRequest
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	tokenType := models.TokenType(payload.TokenType)
	if !tokenType.Valid() {
		return httpx.RestAbort(c, nil, errorx.Wrap(services.ErrInvalidTokenAmount, errorx.Validation))
	}

	serviceWallet, err := do.Invoke[*services.ServiceWallet](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	wallet, err := serviceWallet.Revoke(ctx, payload.UserID, tokenType, payload.Amount, map[string]interface{}{
		"memo": payload.Memo,
	})
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, wallet, nil)
}

// MintToken issues a bearer token for an external identity, creating the
// user on first sight. The upstream identity provider normally does this;
// the admin route covers operator tooling and staging.
func (gr *groupAdmin) MintToken(c echo.Context) error {
	ctx := c.Request().Context()

	var payload struct {
		ExternalID string `json:"external_id"`
		Nickname   string `json:"nickname"`
		TTLHours   int    `json:"ttl_hours"`
	}
	if err := c.Bind(&payload); err != nil || payload.ExternalID == "" {
		return httpx.RestAbort(c, nil, errorx.Wrap(services.ErrUserNotFound, errorx.Validation))
	}
	if payload.TTLHours <= 0 {
		payload.TTLHours = 24
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	user, err := serviceUser.FindOrCreate(ctx, &models.UserFromAuth{
		ExternalID: payload.ExternalID,
		Nickname:   payload.Nickname,
	})
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	authentication, err := do.Invoke[*services.Authentication](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	token, err := authentication.CreateToken(&models.UserFromAuth{
		ID:         user.ID,
		ExternalID: user.ExternalID,
		Nickname:   user.Nickname,
	}, time.Duration(payload.TTLHours)*time.Hour)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"user_id": user.ID,
		"token":   token,
	}, nil)
}

func (gr *groupAdmin) SetConfig(c echo.Context) error {
	ctx := c.Request().Context()

	var payload struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := c.Bind(&payload); err != nil || payload.Key == "" {
		return httpx.RestAbort(c, nil, errorx.Wrap(services.ErrInvalidConfig, errorx.Validation))
	}

	serviceConfig, err := do.Invoke[*services.ServiceConfig](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceConfig.SetConfig(ctx, payload.Key, payload.Value)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, payload, nil)
}
