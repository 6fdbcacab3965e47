package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lumispa/booking-system/internal/core/domain"
)

// ctxCreator extracts the identity claims injected by the Auth middleware
// for use as a created-by snapshot. Both uid and email must be present;
// their absence means the middleware did not run or the token is
// structurally unusable — reject with 401 before any service call.
func ctxCreator(c echo.Context) (domain.CreatedBy, error) {
	uid, _ := c.Get("uid").(string)
	email, _ := c.Get("email").(string)
	if uid == "" || email == "" {
		return domain.CreatedBy{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return domain.CreatedBy{UID: uid, Email: email}, nil
}
