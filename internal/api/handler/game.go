package handler

import (
	"strconv"

	"fortuna/internal/models"
	"fortuna/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupGame struct {
	container *do.Injector
}

func featureParam(c echo.Context) (models.FeatureType, bool) {
	featureType := models.FeatureType(c.Param("feature"))
	return featureType, featureType.Valid()
}

func (gr *groupGame) Status(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	featureType, ok := featureParam(c)
	if !ok {
		return httpx.RestAbort(c, nil, errorx.Wrap(services.ErrNoFeatureToday, errorx.Validation))
	}

	serviceMiniGame, err := do.Invoke[*services.ServiceMiniGame](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	status, err := serviceMiniGame.GetTokensStatus(ctx, user.ID, featureType)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"feature_type": featureType,
		"status":       status,
		"segments":     serviceMiniGame.Segments(featureType),
	}, nil)
}

func (gr *groupGame) Play(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	featureType, ok := featureParam(c)
	if !ok {
		return httpx.RestAbort(c, nil, errorx.Wrap(services.ErrNoFeatureToday, errorx.Validation))
	}

	serviceMiniGame, err := do.Invoke[*services.ServiceMiniGame](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := serviceMiniGame.Play(ctx, user, featureType)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, result, nil)
}

func (gr *groupGame) History(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	featureType, ok := featureParam(c)
	if !ok {
		return httpx.RestAbort(c, nil, errorx.Wrap(services.ErrNoFeatureToday, errorx.Validation))
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	serviceMiniGame, err := do.Invoke[*services.ServiceMiniGame](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	plays, err := serviceMiniGame.GetRecentPlays(ctx, user.ID, featureType, limit)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, plays, nil)
}

func (gr *groupGame) NewMemberDiceStatus(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceNewMemberDice, err := do.Invoke[*services.ServiceNewMemberDice](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	status, err := serviceNewMemberDice.GetStatus(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, status, nil)
}

func (gr *groupGame) NewMemberDicePlay(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceNewMemberDice, err := do.Invoke[*services.ServiceNewMemberDice](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := serviceNewMemberDice.Play(ctx, user)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, result, nil)
}
