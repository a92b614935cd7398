package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dstrnad/wordpool/internal/model"
)

// WordRepo encapsulates all database queries on the words table.
type WordRepo struct{ DB *sql.DB }

func NewWordRepo(db *sql.DB) *WordRepo { return &WordRepo{DB: db} }

const wordColumns = "id,word,word_lower,name,name_lower,owner_id,list_id,duplicate_of,created_at,updated_at"

// Insert writes a word row.  A collision on the canonical uniqueness
// constraint maps to ErrDuplicateWord; this is the recovery path for the
// check-then-insert race.  On success the ID and timestamps are populated.
func (r *WordRepo) Insert(ctx context.Context, w *model.Word) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO words (word, word_lower, name, name_lower, owner_id, list_id) VALUES (?,?,?,?,?,?)",
		w.Word, w.WordLower, w.Name, w.NameLower, nullID(w.OwnerID), nullID(w.ListID))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateWord
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	w.ID = uint64(id)
	fresh, err := r.GetByID(ctx, w.ID)
	if err != nil {
		return err
	}
	*w = *fresh
	return nil
}

// GetByID fetches a word by id, returning ErrWordNotFound when absent.
func (r *WordRepo) GetByID(ctx context.Context, id uint64) (*model.Word, error) {
	var (
		w                  model.Word
		owner, list, dupOf sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+wordColumns+" FROM words WHERE id=? LIMIT 1", id).
		Scan(&w.ID, &w.Word, &w.WordLower, &w.Name, &w.NameLower, &owner, &list, &dupOf,
			&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWordNotFound
		}
		return nil, err
	}
	w.OwnerID = uint64(owner.Int64)
	w.ListID = uint64(list.Int64)
	w.DuplicateOf = uint64(dupOf.Int64)
	return &w, nil
}

// Update rewrites the word text and submitter name of a row.  Constraint
// collisions map to ErrDuplicateWord just like Insert.
func (r *WordRepo) Update(ctx context.Context, w *model.Word) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE words SET word=?, word_lower=?, name=?, name_lower=? WHERE id=?",
		w.Word, w.WordLower, w.Name, w.NameLower, w.ID)
	if isUniqueViolation(err) {
		return ErrDuplicateWord
	}
	return err
}

// Delete removes a word row.
func (r *WordRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM words WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrWordNotFound
	}
	return nil
}

// CountCanonical returns how many canonical words the owner holds in the
// given scope (listID 0 = global).  This backs the write-time submission
// quota; there is no stored counter.
func (r *WordRepo) CountCanonical(ctx context.Context, ownerID, listID uint64) (int, error) {
	var n int
	var err error
	if listID == 0 {
		err = r.DB.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM words WHERE owner_id=? AND list_id IS NULL AND duplicate_of IS NULL",
			ownerID).Scan(&n)
	} else {
		err = r.DB.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM words WHERE owner_id=? AND list_id=? AND duplicate_of IS NULL",
			ownerID, listID).Scan(&n)
	}
	return n, err
}

// CountCanonicalInList returns the number of canonical words in a list
// regardless of owner.  Used for list detail enrichment.
func (r *WordRepo) CountCanonicalInList(ctx context.Context, listID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM words WHERE list_id=? AND duplicate_of IS NULL", listID).Scan(&n)
	return n, err
}

// CanonicalExists reports whether a canonical row with the normalized text
// already exists in the scope (listID 0 = global).
func (r *WordRepo) CanonicalExists(ctx context.Context, wordLower string, listID uint64) (bool, error) {
	var one int
	var err error
	if listID == 0 {
		err = r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM words WHERE word_lower=? AND list_id IS NULL AND duplicate_of IS NULL LIMIT 1",
			wordLower).Scan(&one)
	} else {
		err = r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM words WHERE word_lower=? AND list_id=? AND duplicate_of IS NULL LIMIT 1",
			wordLower, listID).Scan(&one)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListWordsOptions narrows List.  Canonical rows only, newest first.
// Exactly one of ListID / ListIDs / Global is normally set; WordLike and
// NameLike are case-insensitive substring filters.
type ListWordsOptions struct {
	ListID   uint64   // filter to one list
	ListIDs  []uint64 // filter to a set of lists (caller's memberships)
	Global   bool     // filter to the global scope (list_id IS NULL)
	WordLike string   // substring of the word text
	NameLike string   // substring of the submitter name
	Limit    int      // max rows (caller clamps)
	Offset   int      // pagination offset
}

// List returns canonical words matching the options.
func (r *WordRepo) List(ctx context.Context, opts ListWordsOptions) ([]model.Word, error) {
	query := "SELECT " + wordColumns + " FROM words WHERE duplicate_of IS NULL"
	var args []interface{}

	switch {
	case opts.ListID != 0:
		query += " AND list_id=?"
		args = append(args, opts.ListID)
	case len(opts.ListIDs) > 0:
		query += " AND list_id IN (?" + strings.Repeat(",?", len(opts.ListIDs)-1) + ")"
		for _, id := range opts.ListIDs {
			args = append(args, id)
		}
	case opts.Global:
		query += " AND list_id IS NULL"
	}
	if opts.WordLike != "" {
		query += " AND word_lower LIKE ?"
		args = append(args, "%"+strings.ToLower(opts.WordLike)+"%")
	}
	if opts.NameLike != "" {
		query += " AND name_lower LIKE ?"
		args = append(args, "%"+strings.ToLower(opts.NameLike)+"%")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, opts.Limit, opts.Offset)

	return r.list(ctx, query, args...)
}

// ListByOwner returns the owner's canonical words across all scopes,
// newest first.  Used by the credential-authenticated search endpoint.
func (r *WordRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Word, error) {
	return r.list(ctx,
		"SELECT "+wordColumns+" FROM words WHERE owner_id=? AND duplicate_of IS NULL ORDER BY created_at DESC, id DESC",
		ownerID)
}

func (r *WordRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Word, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Word
	for rows.Next() {
		var (
			w                  model.Word
			owner, list, dupOf sql.NullInt64
		)
		if err := rows.Scan(&w.ID, &w.Word, &w.WordLower, &w.Name, &w.NameLower,
			&owner, &list, &dupOf, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		w.OwnerID = uint64(owner.Int64)
		w.ListID = uint64(list.Int64)
		w.DuplicateOf = uint64(dupOf.Int64)
		out = append(out, w)
	}
	return out, rows.Err()
}

// nullID maps 0 to NULL for nullable foreign key columns.
func nullID(v uint64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}
