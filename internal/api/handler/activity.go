package handler

import (
	"fortuna/internal/models"
	"fortuna/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupActivity struct {
	container *do.Injector
}

type activityRecordRequest struct {
	EventType string `json:"event_type"`
	EventID   string `json:"event_id"`
	Value     int    `json:"value"`
}

func (gr *groupActivity) Record(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload activityRecordRequest
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceActivity, err := do.Invoke[*services.ServiceActivity](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	activity, err := serviceActivity.Record(ctx, user.ID, models.ActivityEventType(payload.EventType), payload.EventID, payload.Value)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"user_id":    user.ID,
		"updated_at": activity.UpdatedAt,
	}, nil)
}
