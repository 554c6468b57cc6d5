package handler

import (
	"time"

	"fortuna/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupFeature struct {
	container *do.Injector
}

// Today lists the features scheduled for the current service-local day.
// Public and unauthenticated so lobbies can render before login.
func (gr *groupFeature) Today(c echo.Context) error {
	ctx := c.Request().Context()

	serviceFeature, err := do.Invoke[*services.ServiceFeature](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	schedules, err := serviceFeature.GetSchedulesToday(ctx, time.Now())
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, schedules, nil)
}
