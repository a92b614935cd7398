package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dstrnad/wordpool/internal/model"
)

// CookieName is the HttpOnly cookie carrying the session token when no
// Authorization header is sent.
const CookieName = "auth_token"

// Errors returned by Resolve.  Handlers map both to HTTP 401 with
// different messages.
var (
	ErrAuthRequired       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserStore is the slice of the user repository the resolver needs.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByNameLower(ctx context.Context, nameLower string) (*model.User, error)
}

// RevocationChecker answers whether a raw token has been revoked.
// Satisfied by *Ledger.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, raw string) (bool, error)
}

// Credentials is the name/password pair optionally embedded in request
// bodies for the credential fallback path.  Request DTOs embed it.
type Credentials struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Resolver determines the acting identity for a request: token first
// (header, then cookie), then name/password from the request body.  The
// dual required/optional mode lets read endpoints personalize output for
// logged-in users while still serving anonymous readers, and lets write
// endpoints hard-fail without a recognized identity.
type Resolver struct {
	Users     UserStore
	Ledger    RevocationChecker
	JWTSecret string
}

// Resolve returns the acting user, or nil when no identity could be
// established and require is false.  creds may be nil for endpoints whose
// bodies carry no credential fields.
//
// Policy: a present-but-invalid, revoked or dangling token does not
// resolve an identity and deliberately falls through to the credential
// fallback.  A client holding an expired token and cached credentials
// still gets in; one holding only the bad token does not.
func (r *Resolver) Resolve(c echo.Context, creds *Credentials, require bool) (*model.User, error) {
	ctx := c.Request().Context()

	if raw := TokenFromRequest(c); raw != "" {
		if u := r.userFromToken(ctx, raw); u != nil {
			return u, nil
		}
	}

	if creds != nil {
		name := strings.TrimSpace(creds.Name)
		if name != "" && creds.Password != "" {
			u, err := r.Users.GetByNameLower(ctx, strings.ToLower(name))
			if err != nil || u == nil || !VerifyPassword(u.PasswordHash, creds.Password) {
				return nil, ErrInvalidCredentials
			}
			return u, nil
		}
	}

	if require {
		return nil, ErrAuthRequired
	}
	return nil, nil
}

// userFromToken verifies the token, consults the revocation ledger and
// loads the subject.  Any failure yields nil; the reasons are not
// distinguished to the caller.
func (r *Resolver) userFromToken(ctx context.Context, raw string) *model.User {
	revoked, err := r.Ledger.IsRevoked(ctx, raw)
	if err != nil {
		// A ledger read error must not lock every client out; treat the
		// token as unrevoked and let signature verification decide.
		revoked = false
	}
	if revoked {
		return nil
	}
	claims, err := VerifyToken(r.JWTSecret, raw)
	if err != nil {
		return nil
	}
	lctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	u, err := r.Users.GetByID(lctx, claims.UserID)
	if err != nil {
		return nil
	}
	return u
}

// TokenFromRequest extracts a bearer token from the Authorization header,
// falling back to the auth_token cookie.
func TokenFromRequest(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// SessionCookie builds the HttpOnly session cookie for a freshly issued
// token.  Secure is set outside dev so the cookie only travels over TLS in
// production.
func SessionCookie(token SessionToken, env string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token.Token,
		HttpOnly: true,
		Secure:   env == "prod",
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(time.Until(token.Exp).Seconds()),
	}
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		HttpOnly: true,
		Path:     "/",
		MaxAge:   -1,
	}
}
