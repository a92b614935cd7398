package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dstrnad/wordpool/internal/auth"
	"github.com/dstrnad/wordpool/internal/config"
	"github.com/dstrnad/wordpool/internal/repository"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Ledger   *auth.Ledger
	Resolver *auth.Resolver
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, ledger *auth.Ledger, resolver *auth.Resolver) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Ledger: ledger, Resolver: resolver}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type userPart struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

func validateName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Name required"
	}
	if len(strings.TrimSpace(name)) > 50 {
		return "Name must be 50 characters or fewer"
	}
	return ""
}

func validatePassword(pw string) string {
	if pw == "" {
		return "Password required"
	}
	if len(pw) < 6 {
		return "Password must be at least 6 characters"
	}
	return ""
}

// Register creates a user, rejecting names whose lowercase form is taken.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if msg := validateName(name); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if msg := validatePassword(req.Password); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	hash, err := auth.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Registration failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, name, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Name already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Registration failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"ok":   true,
		"user": userPart{ID: uid, Name: name},
	})
}

// Login verifies credentials and issues a 7-day session token, returned in
// the body and as an HttpOnly cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req auth.Credentials
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Name required"})
	}
	if req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByNameLower(ctx, strings.ToLower(name))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Login failed"})
	}
	if !auth.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}

	token, err := auth.IssueToken(h.Cfg.JWTSecret, u, h.Cfg.TokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Login failed"})
	}
	c.SetCookie(auth.SessionCookie(token, h.Cfg.Env))

	return c.JSON(http.StatusOK, echo.Map{
		"ok":    true,
		"token": token.Token,
		"user":  userPart{ID: u.ID, Name: u.Name},
	})
}

// Logout revokes the current token via the blacklist and clears the cookie.
// It is deliberately lenient: a missing, malformed or already-revoked token
// still yields success, and even a failed blacklist write only downgrades
// the response to a warning.  Failing the user-visible logout over a write
// error would be worse than a residual token that expires on its own.
func (h *AuthHandler) Logout(c echo.Context) error {
	raw := auth.TokenFromRequest(c)
	if raw == "" {
		c.SetCookie(auth.ClearSessionCookie())
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Ledger.Record(ctx, raw); err != nil {
		c.Logger().Errorf("logout: blacklist insert failed: %v", err)
		c.SetCookie(auth.ClearSessionCookie())
		return c.JSON(http.StatusOK, echo.Map{"ok": true, "warning": "blacklist insert failed"})
	}

	c.SetCookie(auth.ClearSessionCookie())
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Me returns the authenticated user's identity.
func (h *AuthHandler) Me(c echo.Context) error {
	u, err := h.Resolver.Resolve(c, nil, true)
	if err != nil {
		return authError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"ok":   true,
		"user": userPart{ID: u.ID, Name: u.Name},
	})
}

// authError maps resolver errors onto 401 responses.
func authError(c echo.Context, err error) error {
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
}
