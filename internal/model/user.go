package model

import "time"

// User represents an application user record as stored in the `users` table.
// The name is the public identity; name_lower is the unique, case-insensitive
// identity key used for lookups and legacy word ownership.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name as entered at registration.
//	NameLower    – lowercase-normalized name (unique).
//	PasswordHash – bcrypt hashed password.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	NameLower    string    // users.name_lower
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// BlacklistEntry models a row in the `token_blacklist` table.  The raw
// session token is never stored; only a keyed fingerprint.  An entry whose
// ExpiresAt is in the future invalidates any token producing that
// fingerprint regardless of the token's own embedded expiry.
//
// Fields:
//
//	TokenHash – HMAC-SHA256 fingerprint of the revoked token (hex).
//	ExpiresAt – when the entry stops mattering (the token's own expiry).
type BlacklistEntry struct {
	TokenHash string    // token_blacklist.token_hash
	ExpiresAt time.Time // token_blacklist.expires_at
}
