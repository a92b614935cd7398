package repository

import (
	"context"
	"database/sql"
	"time"
)

// BlacklistRepo persists token revocation records.  Only keyed fingerprints
// of revoked tokens are stored, never raw tokens, so the table is useless
// to an attacker who obtains a copy of it.
type BlacklistRepo struct{ DB *sql.DB }

func NewBlacklistRepo(db *sql.DB) *BlacklistRepo { return &BlacklistRepo{DB: db} }

// Insert writes a revocation record.  A second insert for the same
// fingerprint returns ErrConflict.
func (r *BlacklistRepo) Insert(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO token_blacklist (token_hash, expires_at) VALUES (?,?)",
		tokenHash, expiresAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// Exists reports whether an unexpired revocation record exists for the
// fingerprint.  Expired records are ignored rather than deleted; the reaper
// compacts them out of band.
func (r *BlacklistRepo) Exists(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM token_blacklist WHERE token_hash=? AND expires_at>? LIMIT 1",
		tokenHash, now).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteExpired removes revocation records whose expiry has passed and
// returns how many were deleted.
func (r *BlacklistRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM token_blacklist WHERE expires_at<=?", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
