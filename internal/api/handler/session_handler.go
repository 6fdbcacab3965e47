package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lumispa/booking-system/internal/core/ports"
	"github.com/lumispa/booking-system/internal/core/service"
)

type SessionHandler struct {
	sessions ports.SessionService
}

func NewSessionHandler(sessions ports.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Current returns the in-memory session snapshot and its selected route.
// Never blocks: while the session is still resolving the route is the
// loading placeholder and callers poll or re-request on their next render.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Security     BearerAuth
// @Router       /session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	sess := h.sessions.CurrentSession()
	return c.JSON(http.StatusOK, sessionResponse{
		Session: sess,
		Route:   service.SelectRoute(sess),
	})
}
