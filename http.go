package accounts

import (
	"context"

	"github.com/goliatone/go-accounts/middleware/jwtware"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// ProtectedRoute builds the middleware that guards account scoped endpoints.
// Validated claims are stored in the router context under the configured
// context key and propagated to the standard context.
func ProtectedRoute(cfg Config, validator TokenService, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = DefaultAuthErrorHandler
	}

	return jwtware.New(jwtware.Config{
		ErrorHandler:   errorHandler,
		ContextKey:     cfg.GetContextKey(),
		TokenLookup:    cfg.GetTokenLookup(),
		AuthScheme:     cfg.GetAuthScheme(),
		TokenValidator: tokenValidatorAdapter{validator},
		ContextEnricher: func(c context.Context, claims jwtware.AuthClaims) context.Context {
			if authClaims, ok := claims.(AuthClaims); ok {
				return WithClaimsContext(c, authClaims)
			}
			return c
		},
	})
}

// tokenValidatorAdapter bridges TokenService to the middleware contract
type tokenValidatorAdapter struct {
	service TokenService
}

func (a tokenValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := a.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// GetRouterSession extracts the authenticated session from the router context
func GetRouterSession(ctx router.Context, key string) (Session, error) {
	if key == "" {
		key = "session"
	}

	raw := ctx.Locals(key)
	if raw == nil {
		return nil, ErrUnableToFindSession
	}

	claims, ok := raw.(AuthClaims)
	if !ok {
		return nil, ErrUnableToMapClaims
	}

	return sessionFromAuthClaims(claims)
}

// DefaultAuthErrorHandler maps middleware failures to a JSON 401/400 response
func DefaultAuthErrorHandler(ctx router.Context, err error) error {
	var richErr *errors.Error

	if IsTokenExpiredError(err) {
		richErr = ErrSessionExpired
	} else if IsMalformedError(err) {
		richErr = ErrSessionMalformed
	} else if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "invalid session credential").
			WithCode(errors.CodeUnauthorized)
	}

	status := richErr.Code
	if status == 0 {
		status = router.StatusUnauthorized
	}

	body := map[string]string{
		"error": richErr.Message,
	}
	if richErr.TextCode != "" {
		body["code"] = richErr.TextCode
	}

	return ctx.JSON(status, body)
}
