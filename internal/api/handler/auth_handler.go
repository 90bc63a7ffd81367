package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskify/taskify-api/internal/core/domain"
	"github.com/taskify/taskify-api/internal/core/ports"
	"github.com/taskify/taskify-api/internal/pkg/metrics"
)

type AuthHandler struct {
	authService ports.AuthService
	throttle    ports.LoginThrottle
	log         zerolog.Logger
}

// NewAuthHandler builds the auth endpoints. throttle may be nil, in which
// case failed logins are not counted.
func NewAuthHandler(authService ports.AuthService, throttle ports.LoginThrottle, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, throttle: throttle, log: log}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Password:    req.Password,
		Role:        req.Role,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Login exchanges a username and password for a bearer token.
//
// @Summary      Obtain an access token
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/token [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	key := throttleKey(req.Username, c.RealIP())

	if h.throttle != nil {
		allowed, err := h.throttle.Allow(ctx, key)
		if err != nil {
			// Throttle backend down: keep logins working.
			h.log.Warn().Err(err).Msg("login throttle unavailable")
		} else if !allowed {
			metrics.LoginAttemptsTotal.WithLabelValues("throttled").Inc()
			h.log.Warn().Str("username", req.Username).Str("ip", c.RealIP()).Msg("login throttled")
			return domain.ErrTooManyAttempts
		}
	}

	res, err := h.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		// A cancelled request can fail verification without a bad password.
		if errors.Is(err, domain.ErrInvalidCredential) && h.throttle != nil && ctx.Err() == nil {
			if ferr := h.throttle.Fail(ctx, key); ferr != nil {
				h.log.Warn().Err(ferr).Msg("could not record failed login")
			}
		}
		return err
	}

	if h.throttle != nil {
		if rerr := h.throttle.Reset(ctx, key); rerr != nil {
			h.log.Warn().Err(rerr).Msg("could not reset login throttle")
		}
	}

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresAt:   res.ExpiresAt,
	})
}

func throttleKey(username, ip string) string {
	return strings.ToLower(strings.TrimSpace(username)) + "|" + ip
}
