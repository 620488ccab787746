// app/echoServer/guard.go
package echoServer

import (
	"log/slog"

	"libraryapi/app/echoServer/authctx"
	authsvc "libraryapi/service/auth"
	jwtutil "libraryapi/util/jwt"

	"github.com/labstack/echo/v4"
)

// RequestGuard resolves the bearer token (if any) and enforces the access
// policy. A missing, malformed or failing token does NOT reject the request
// here: the request simply runs as anonymous and the policy decides, which
// is what keeps public routes working even with a stale token attached.
func RequestGuard(auth authsvc.Service, log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if tok, ok := jwtutil.FromAuthHeader(c.Request().Header.Get("Authorization")); ok {
				u, err := auth.Resolve(c.Request().Context(), tok)
				if err != nil {
					rid := c.Response().Header().Get(echo.HeaderXRequestID)
					log.Warn("token resolve failed, continuing as anonymous",
						"err", err,
						"req_id", rid,
						"path", c.Path(),
					)
				} else {
					authctx.Set(c, u)
				}
			}

			switch Evaluate(c.Request().Method, c.Path(), c, authctx.User(c)) {
			case decisionUnauthorized:
				return echo.NewHTTPError(401, "unauthorized")
			case decisionForbidden:
				return echo.NewHTTPError(403, "forbidden")
			}
			return next(c)
		}
	}
}
