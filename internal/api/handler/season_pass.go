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

type groupSeasonPass struct {
	container *do.Injector
}

func (gr *groupSeasonPass) Status(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceSeasonPass, err := do.Invoke[*services.ServiceSeasonPass](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	status, err := serviceSeasonPass.GetStatus(ctx, user.ID, time.Now())
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, status, nil)
}

func (gr *groupSeasonPass) Stamp(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceSeasonPass, err := do.Invoke[*services.ServiceSeasonPass](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := serviceSeasonPass.AddStamp(ctx, user.ID, "MANUAL", 0, time.Now())
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, result, nil)
}

func (gr *groupSeasonPass) ClaimReward(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	level, err := strconv.Atoi(c.Param("level"))
	if err != nil || level <= 0 {
		return httpx.RestAbort(c, nil, errorx.Wrap(services.ErrLevelNotFound, errorx.Validation))
	}

	serviceSeasonPass, err := do.Invoke[*services.ServiceSeasonPass](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	rewardLog, err := serviceSeasonPass.ClaimReward(ctx, user.ID, level, time.Now())
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, rewardLog, nil)
}
