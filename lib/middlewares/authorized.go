package middlewares

import (
	"net/http"
	"strings"

	"github.com/coopfin/coophub/lib/tokens"
	"github.com/labstack/echo/v4"
)

// Authorized : Check the bearer token and put the staff user id on the
// request context as "UserID".
func Authorized(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				return c.NoContent(http.StatusUnauthorized)
			}

			claims, err := tokens.ParseToken(secret, strings.TrimPrefix(auth, prefix))
			if err != nil {
				return c.NoContent(http.StatusUnauthorized)
			}

			c.Set("UserID", claims.ID)

			return next(c)
		}
	}
}
