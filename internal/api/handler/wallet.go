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

type groupWallet struct {
	container *do.Injector
}

func (gr *groupWallet) GetBalance(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	tokenType := models.TokenType(c.Param("token"))
	if !tokenType.Valid() {
		return httpx.RestAbort(c, nil, errorx.Wrap(services.ErrInvalidTokenAmount, errorx.Validation))
	}

	serviceWallet, err := do.Invoke[*services.ServiceWallet](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	balance, err := serviceWallet.GetBalance(ctx, user.ID, tokenType)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"token_type": tokenType,
		"balance":    balance,
	}, nil)
}

func (gr *groupWallet) GetLedger(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	tokenType := models.TokenType(c.Param("token"))
	if !tokenType.Valid() {
		return httpx.RestAbort(c, nil, errorx.Wrap(services.ErrInvalidTokenAmount, errorx.Validation))
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	serviceWallet, err := do.Invoke[*services.ServiceWallet](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	entries, err := serviceWallet.GetLedger(ctx, user.ID, tokenType, limit, offset)
	if err != nil {
		return httpx.RestAbort(c, nil, wrapDomain(err))
	}

	return httpx.RestAbort(c, entries, nil)
}
