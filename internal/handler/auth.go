package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/venuedesk/room-checkin/internal/utils"
)

// AuthHandler issues operator access tokens. The service knows a single
// operator identity configured through the environment; there are no
// user accounts or roles.
type AuthHandler struct {
	operatorEmail string
	passwordHash  string // bcrypt hash computed at startup
	jwtSecret     string
	accessTTLMin  int
}

// NewAuthHandler constructs an AuthHandler. passwordHash must be a
// bcrypt hash of the operator password.
func NewAuthHandler(operatorEmail, passwordHash, jwtSecret string, accessTTLMin int) *AuthHandler {
	return &AuthHandler{
		operatorEmail: operatorEmail,
		passwordHash:  passwordHash,
		jwtSecret:     jwtSecret,
		accessTTLMin:  accessTTLMin,
	}
}

// Login handles POST /v1/auth/login. It verifies the operator
// credentials and returns a signed access token with its expiry.
// Unknown email and wrong password produce the same 401 so the
// response does not leak which half was wrong.
func (h *AuthHandler) Login(c echo.Context) error {
	var body struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return err
	}
	if body.Email != h.operatorEmail || !utils.VerifyPassword(h.passwordHash, body.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	token, err := utils.NewAccessToken(h.jwtSecret, h.operatorEmail, h.accessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": token.Token,
		"expires_at":   token.Exp.Format(time.RFC3339),
	})
}
