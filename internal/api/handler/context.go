package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accountd/auth-api/internal/core/ports"
)

// ctxCaller extracts the identity injected by the Auth middleware. A missing
// user_id means the middleware never ran on this route; fail closed.
func ctxCaller(c echo.Context) (ports.Caller, error) {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return ports.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	role, _ := c.Get("role").(string)
	return ports.Caller{UserID: userID, Role: role}, nil
}
