package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook-api/internal/model"
)

// PrincipalKey is the echo context key under which JWTAuth stores the
// authenticated model.Principal.
const PrincipalKey = "principal"

// JWTAuth returns an Echo middleware that validates a Bearer access
// token signed with HS256 and injects the caller's identity into the
// request context as a model.Principal. Tokens carry the user id in
// the "sub" claim and the role in "role"; both are issued by the
// identity provider fronting this service, and the shared secret must
// match the one it signs with.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			p, ok := principalFromClaims(claims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			c.Set(PrincipalKey, p)
			return next(c)
		}
	}
}

// principalFromClaims pulls the subject and role out of the claim map.
// Subjects come through either as a JSON number or as a stringified
// id, depending on the issuer.
func principalFromClaims(claims jwt.MapClaims) (model.Principal, bool) {
	var id uint64
	switch sub := claims["sub"].(type) {
	case string:
		n, err := strconv.ParseUint(sub, 10, 64)
		if err != nil {
			return model.Principal{}, false
		}
		id = n
	case float64:
		if sub < 1 {
			return model.Principal{}, false
		}
		id = uint64(sub)
	default:
		return model.Principal{}, false
	}

	role, ok := claims["role"].(string)
	if !ok {
		return model.Principal{}, false
	}
	switch model.Role(role) {
	case model.RoleUser, model.RoleOrganizer, model.RoleAdmin:
	default:
		return model.Principal{}, false
	}
	return model.Principal{ID: id, Role: model.Role(role)}, true
}

// Principal returns the authenticated caller stored by JWTAuth. The
// second return is false on routes that were not wrapped by it.
func Principal(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(PrincipalKey).(model.Principal)
	return p, ok
}
