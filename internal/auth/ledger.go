package auth

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/dstrnad/wordpool/internal/repository"
)

// BlacklistStore is the persistence surface the ledger needs.  It is
// satisfied by *repository.BlacklistRepo and by fakes in tests.
type BlacklistStore interface {
	Insert(ctx context.Context, tokenHash string, expiresAt time.Time) error
	Exists(ctx context.Context, tokenHash string, now time.Time) (bool, error)
}

// Ledger records revoked session tokens by keyed fingerprint and answers
// revocation checks.  Revocation patches the one operation (logout) that
// needs immediate invalidation despite tokens being stateless.
type Ledger struct {
	Store     BlacklistStore
	Secret    string // fingerprint HMAC key
	JWTSecret string // used to read the expiry out of tokens being revoked
}

// Record revokes a raw token.  The entry expires when the token itself
// would; an unparseable or already-expired token is revoked effective
// immediately so it can never become unblockable.  Duplicate inserts are
// logged and swallowed: revoking twice must not fail a logout.
func (l *Ledger) Record(ctx context.Context, raw string) error {
	expiresAt := time.Now().UTC()
	if claims, err := VerifyToken(l.JWTSecret, raw); err == nil && !claims.ExpiresAt.IsZero() {
		expiresAt = claims.ExpiresAt
	}
	err := l.Store.Insert(ctx, Fingerprint(l.Secret, raw), expiresAt)
	if errors.Is(err, repository.ErrConflict) {
		log.Printf("blacklist: fingerprint already recorded")
		return nil
	}
	return err
}

// IsRevoked reports whether an unexpired revocation entry exists for the
// raw token's fingerprint.
func (l *Ledger) IsRevoked(ctx context.Context, raw string) (bool, error) {
	return l.Store.Exists(ctx, Fingerprint(l.Secret, raw), time.Now().UTC())
}
