package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Claims carried by the access token: sub (user id) and isAdmin.
type Claims struct {
	UserID  uint
	IsAdmin bool
}

func ParseBearer(c echo.Context, secret []byte) (*Claims, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == header || tokenString == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, echo.NewHTTPError(http.StatusForbidden, "token invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusForbidden, "token invalid")
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusForbidden, "invalid subject claim")
	}
	isAdmin, _ := claims["isAdmin"].(bool)

	return &Claims{UserID: uint(sub), IsAdmin: isAdmin}, nil
}

func setUserContext(c echo.Context, claims *Claims) {
	c.Set("userID", claims.UserID)
	c.Set("isAdmin", claims.IsAdmin)
}

// UserID returns the authenticated user id placed by RequireLogin.
func UserID(c echo.Context) uint {
	if v, ok := c.Get("userID").(uint); ok {
		return v
	}
	return 0
}

// IsAdmin reports whether the authenticated user has the admin flag.
func IsAdmin(c echo.Context) bool {
	if v, ok := c.Get("isAdmin").(bool); ok {
		return v
	}
	return false
}

func RequireLogin(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := ParseBearer(c, secret)
			if err != nil {
				return err
			}
			setUserContext(c, claims)
			return next(c)
		}
	}
}

func AdminOnly(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := ParseBearer(c, secret)
			if err != nil {
				return err
			}
			if !claims.IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "admin access required")
			}
			setUserContext(c, claims)
			return next(c)
		}
	}
}
