package handler

import (
	"time"

	"fortuna/internal/models"
	"fortuna/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupRanking struct {
	container *do.Injector
}

func (gr *groupRanking) Today(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	now := time.Now()
	serviceFeature, err := do.Invoke[*services.ServiceFeature](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	gate, err := serviceFeature.BuildGate(ctx, user.ID, models.FeatureRanking, now)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}
	if gate.GateEnforced && !gate.ScheduledToday {
		return httpx.RestAbort(c, nil, wrapDomain(services.ErrNoFeatureToday))
	}

	serviceRanking, err := do.Invoke[*services.ServiceRanking](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ranking, err := serviceRanking.GetToday(ctx, user.ID, now)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, ranking, nil)
}
