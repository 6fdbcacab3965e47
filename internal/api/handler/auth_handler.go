package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/lumispa/booking-system/internal/api/metrics"
	"github.com/lumispa/booking-system/internal/core/domain"
	"github.com/lumispa/booking-system/internal/core/ports"
	"github.com/lumispa/booking-system/internal/core/service"
)

type AuthHandler struct {
	sessions  ports.SessionService
	registrar ports.RegistrationService
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthHandler(sessions ports.SessionService, registrar ports.RegistrationService, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthHandler{sessions: sessions, registrar: registrar, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Register creates a new customer account and its profile document.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  profileResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	profile, err := h.registrar.Register(c.Request().Context(), ports.RegistrationInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrEmailInUse):
			status = http.StatusConflict
		case errors.Is(err, domain.ErrInvalidEmail),
			errors.Is(err, domain.ErrWeakPassword),
			errors.Is(err, domain.ErrFullNameRequired):
			status = http.StatusBadRequest
		}
		return c.JSON(status, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, profileResponse{Profile: profile})
}

// Login signs in, resolves the role, and returns the session with a JWT.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	sess, err := h.sessions.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		status := http.StatusUnauthorized
		switch {
		case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrProfileNotFound):
			status = http.StatusNotFound
		case errors.Is(err, domain.ErrInvalidEmail):
			status = http.StatusBadRequest
		}
		if errors.Is(err, domain.ErrProfileNotFound) {
			metrics.ProfileLookupsTotal.WithLabelValues("not_found").Inc()
		}
		metrics.SignInsTotal.WithLabelValues("rejected").Inc()
		return c.JSON(status, map[string]string{"error": domain.CredentialMessage(err)})
	}

	token, err := h.mintToken(sess)
	if err != nil {
		metrics.SignInsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.SignInsTotal.WithLabelValues("ok").Inc()
	metrics.ProfileLookupsTotal.WithLabelValues("found").Inc()
	return c.JSON(http.StatusOK, sessionResponse{
		Session: sess,
		Route:   service.SelectRoute(sess),
		Token:   token,
	})
}

// Logout revokes remotely best-effort and clears the session.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      204
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.SignOut(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) mintToken(sess domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"uid":   sess.UID,
		"email": sess.Email,
		"role":  sess.Role,
		"exp":   time.Now().Add(h.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(h.jwtSecret))
}
