package model

import "time"

// Word represents a submitted word as stored in the `words` table.  A word
// is canonical when DuplicateOf is zero; only canonical rows count toward
// uniqueness and the per-user submission quota.  ListID zero means the word
// lives in the global scope rather than inside a list.  OwnerID zero marks a
// legacy row created before owner references existed; such rows are owned by
// whoever matches the stored normalized submitter name.
//
// Fields:
//
//	ID          – primary key identifier.
//	Word        – literal text as submitted.
//	WordLower   – lowercase-normalized text (unique per scope among canonical rows).
//	Name        – submitter display name.
//	NameLower   – lowercase-normalized submitter name.
//	OwnerID     – submitting user ID (0 for legacy rows).
//	ListID      – containing list (0 = global scope).
//	DuplicateOf – canonical row this duplicates (0 = canonical).
//	CreatedAt   – timestamp of creation.
//	UpdatedAt   – timestamp of last update.
type Word struct {
	ID          uint64    // words.id
	Word        string    // words.word
	WordLower   string    // words.word_lower
	Name        string    // words.name
	NameLower   string    // words.name_lower
	OwnerID     uint64    // words.owner_id (0 when NULL)
	ListID      uint64    // words.list_id (0 when NULL)
	DuplicateOf uint64    // words.duplicate_of (0 when NULL)
	CreatedAt   time.Time // words.created_at
	UpdatedAt   time.Time // words.updated_at
}

// Canonical reports whether the row counts toward uniqueness and quota.
func (w *Word) Canonical() bool { return w.DuplicateOf == 0 }

// OwnedBy reports whether the given user may mutate or delete this word.
// Rows with an owner reference require an exact ID match.  Legacy rows
// without one fall back to matching the stored normalized submitter name;
// this compatibility path goes away once legacy rows are backfilled.
func (w *Word) OwnedBy(u *User) bool {
	if u == nil {
		return false
	}
	if w.OwnerID != 0 {
		return w.OwnerID == u.ID
	}
	return w.NameLower != "" && w.NameLower == u.NameLower
}
