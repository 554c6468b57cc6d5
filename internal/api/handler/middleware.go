package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"strings"

	"fortuna/internal/models"
	"fortuna/internal/pkg/limiter"
	"fortuna/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type ctxKey string

var ctxKeyAuthUser ctxKey = "AUTH_USER"

func Authn(verifier interface {
	Validate(token string) (*models.UserFromAuth, error)
},
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return next(c)
			}

			parts := strings.Split(header, "Bearer")
			if len(parts) != 2 {
				return next(c)
			}

			token := strings.TrimSpace(parts[1])
			if len(token) == 0 {
				return next(c)
			}

			user, err := verifier.Validate(token)
			if err != nil {
				// although it's a client error, we don't want to leak details
				//nolint:errcheck
				httpx.Abort(c, errorx.Wrap(errors.New("invalid access token"), errorx.Authn), -1)
				return nil
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, ctxKeyAuthUser, user)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func ResolveValidUser(ctx context.Context, container *do.Injector) (*models.User, error) {
	userAuth, ok := ctx.Value(ctxKeyAuthUser).(*models.UserFromAuth)
	if !ok {
		return nil, errorx.Wrap(errors.New("missing session"), errorx.Authn)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](container)
	if err != nil {
		return nil, err
	}

	return serviceUser.FindOrCreate(ctx, userAuth)
}

// AuthnAdmin guards the operator surface with a static API key header.
func AuthnAdmin(apiKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("X-Api-Key")
			if apiKey == "" || subtle.ConstantTimeCompare([]byte(header), []byte(apiKey)) != 1 {
				//nolint:errcheck
				httpx.Abort(c, errorx.Wrap(errors.New("unauthorized"), errorx.Authn), -1)
				return nil
			}
			return next(c)
		}
	}
}

// wrapDomain maps the service sentinels to client-facing error kinds so
// a replayed claim reads as a bad request, not a server fault.
func wrapDomain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrNoActiveSeason),
		errors.Is(err, services.ErrNoFeatureToday),
		errors.Is(err, services.ErrFeatureDisabled),
		errors.Is(err, services.ErrDailyLimitReached),
		errors.Is(err, services.ErrAlreadyStampedToday),
		errors.Is(err, services.ErrRewardAlreadyClaimed),
		errors.Is(err, services.ErrAlreadyPlayed),
		errors.Is(err, services.ErrNotEnoughTokens),
		errors.Is(err, services.ErrLevelNotReached),
		errors.Is(err, services.ErrLevelNotFound),
		errors.Is(err, services.ErrAutoClaimLevel),
		errors.Is(err, services.ErrNotEligible),
		errors.Is(err, services.ErrVaultNotEligible),
		errors.Is(err, services.ErrVaultFillUsed),
		errors.Is(err, services.ErrNoStandings),
		errors.Is(err, services.ErrZeroDelta),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrAlreadyInTeam),
		errors.Is(err, services.ErrNotInTeam),
		errors.Is(err, services.ErrSeasonConflict),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrInvalidTokenAmount),
		errors.Is(err, services.ErrInvalidEventType),
		errors.Is(err, services.ErrUserPlayLock),
		errors.Is(err, services.ErrVaultLock):
		return errorx.Wrap(err, errorx.Invalid)
	case errors.Is(err, services.ErrInvalidConfig):
		// Broken calendar or season data is an operator problem, not a
		// caller mistake.
		log.Println(err)
		return errorx.Wrap(err, errorx.Service)
	case errors.Is(err, limiter.ErrRateLimited):
		return errorx.Wrap(err, errorx.RateLimiting)
	default:
		return errorx.Wrap(err, errorx.Service)
	}
}
