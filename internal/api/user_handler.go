package api

import (
	"github.com/labstack/echo/v4"

	"cardstore/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account --> POST /register
func (h *UserHandler) Register(c echo.Context) error {
	var creds credentials
	if err := c.Bind(&creds); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	user, err := h.userService.Register(c.Request().Context(), creds.Email, creds.Password)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, map[string]any{"user": user})
}

// Login authenticates and returns a session token --> POST /login
func (h *UserHandler) Login(c echo.Context) error {
	var creds credentials
	if err := c.Bind(&creds); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	token, user, err := h.userService.Login(c.Request().Context(), creds.Email, creds.Password)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, map[string]any{"token": token, "user": user})
}

// ValidateSession checks the caller's own session --> GET /session
//
// Only the presented token is validated, against the caller's own server-side
// session mirror. The token itself is never echoed back.
func (h *UserHandler) ValidateSession(c echo.Context) error {
	token, claims, err := sessionToken(c)
	if err != nil {
		return c.JSON(401, map[string]string{"error": err.Error()})
	}

	if err := h.userService.ValidateSession(c.Request().Context(), claims.Email, token.Raw); err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, map[string]any{"ok": true, "user_id": claims.UserID, "email": claims.Email})
}
