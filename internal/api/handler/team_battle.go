package handler

import (
	"strconv"
	"time"

	"fortuna/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupTeamBattle struct {
	container *do.Injector
}

func (gr *groupTeamBattle) Season(c echo.Context) error {
	ctx := c.Request().Context()

	serviceTeamBattle, err := do.Invoke[*services.ServiceTeamBattle](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	season, err := serviceTeamBattle.GetActiveSeason(ctx, time.Now())
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, season, nil)
}

func (gr *groupTeamBattle) Join(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	teamID, err := strconv.ParseInt(c.Param("team"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(services.ErrTeamNotFound, errorx.Validation))
	}

	serviceTeamBattle, err := do.Invoke[*services.ServiceTeamBattle](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceTeamBattle.JoinTeam(ctx, teamID, user.ID, "member")
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"team_id": teamID,
	}, nil)
}

func (gr *groupTeamBattle) Leave(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceTeamBattle, err := do.Invoke[*services.ServiceTeamBattle](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceTeamBattle.LeaveTeam(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, map[string]interface{}{"left": true}, nil)
}

func (gr *groupTeamBattle) Me(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceTeamBattle, err := do.Invoke[*services.ServiceTeamBattle](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	member, err := serviceTeamBattle.GetMembership(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, member, nil)
}

func (gr *groupTeamBattle) Leaderboard(c echo.Context) error {
	ctx := c.Request().Context()

	serviceTeamBattle, err := do.Invoke[*services.ServiceTeamBattle](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	seasonID, _ := strconv.ParseInt(c.QueryParam("season_id"), 10, 64)
	if seasonID == 0 {
		season, err := serviceTeamBattle.GetActiveSeason(ctx, time.Now())
		if err != nil {
			return httpx.RestAbort(c, nil, wrapDomain(err))
		}
		seasonID = season.ID
	}

	standings, err := serviceTeamBattle.GetStandings(ctx, seasonID)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"season_id": seasonID,
		"standings": standings,
	}, nil)
}

func (gr *groupTeamBattle) Contributors(c echo.Context) error {
	ctx := c.Request().Context()

	teamID, err := strconv.ParseInt(c.Param("team"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(services.ErrTeamNotFound, errorx.Validation))
	}

	serviceTeamBattle, err := do.Invoke[*services.ServiceTeamBattle](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	seasonID, _ := strconv.ParseInt(c.QueryParam("season_id"), 10, 64)
	if seasonID == 0 {
		season, err := serviceTeamBattle.GetActiveSeason(ctx, time.Now())
		if err != nil {
			return httpx.RestAbort(c, nil, wrapDomain(err))
		}
		seasonID = season.ID
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	contributors, err := serviceTeamBattle.GetContributors(ctx, teamID, seasonID, limit, offset)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, contributors, nil)
}
