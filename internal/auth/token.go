package auth // package auth implements session tokens, revocation and identity resolution

import (
	"crypto/hmac"   // keyed hashing for token fingerprints
	"crypto/sha256" // digest used by the fingerprint HMAC
	"encoding/hex"  // hex encoding of fingerprints
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

	"github.com/dstrnad/wordpool/internal/model"
)

// ErrInvalidToken is returned for any token that fails structural,
// signature or expiry checks.  Callers deliberately cannot tell the cases
// apart; they all map to "unauthenticated".
var ErrInvalidToken = errors.New("invalid token")

// SessionToken is a signed JWT session credential along with its expiry.
// Tokens are stateless and self-verifying; the only persisted trace of one
// is an optional revocation fingerprint written at logout.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// Claims is the verified content of a session token.
type Claims struct {
	UserID    uint64    // subject (users.id)
	Name      string    // display name at issuance
	ExpiresAt time.Time // embedded expiry
}

// IssueToken builds and signs an HS256 JWT for a user with the given
// lifetime in days.  The JWT carries the subject (sub), the display name
// (name), expiration (exp) and issued at (iat).  Issuing has no side
// effects; transport (response body, cookie) is the caller's concern.
func IssueToken(secret string, u *model.User, ttlDays int) (SessionToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub":  u.ID,
		"name": u.Name,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// VerifyToken checks structural and signature validity and expiry of a raw
// token and returns its claims.  Verification success alone does not prove
// the token is usable; the revocation ledger must still be consulted.
func VerifyToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	var out Claims
	// JWT numbers decode as float64; some issuers encode numeric strings.
	switch sub := mc["sub"].(type) {
	case float64:
		out.UserID = uint64(sub)
	case string:
		if parsed, err := strconv.ParseUint(sub, 10, 64); err == nil {
			out.UserID = parsed
		}
	}
	if out.UserID == 0 {
		return Claims{}, ErrInvalidToken
	}
	if name, ok := mc["name"].(string); ok {
		out.Name = name
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time.UTC()
	}
	return out, nil
}

// Fingerprint computes the keyed HMAC-SHA256 digest of a raw token, hex
// encoded.  The blacklist stores only fingerprints, never raw tokens, so a
// leaked ledger cannot be used to replay sessions or forge blacklist hits.
func Fingerprint(secret, raw string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
