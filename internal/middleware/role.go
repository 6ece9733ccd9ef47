package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook-api/internal/model"
)

// RequireRole returns a middleware that rejects requests whose
// authenticated principal does not hold one of the given roles. It
// assumes JWTAuth ran earlier in the chain; requests with no principal
// are rejected the same way as requests with a wrong role.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := Principal(c)
			if !ok || !allowed[p.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
