package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dstrnad/wordpool/internal/model"
)

// ListRepo encapsulates all database queries on the lists table.
type ListRepo struct{ DB *sql.DB }

func NewListRepo(db *sql.DB) *ListRepo { return &ListRepo{DB: db} }

const listColumns = "id,name,description,is_public,password_hash,owner_id,custom_title,custom_subtitle,created_at,updated_at"

// Create inserts a new list.  On success the ID, CreatedAt and UpdatedAt
// fields are populated; a follow-up SELECT picks up the store-generated
// timestamps so callers receive a fully populated record.
func (r *ListRepo) Create(ctx context.Context, l *model.List) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO lists (name, description, is_public, password_hash, owner_id, custom_title, custom_subtitle) VALUES (?,?,?,?,?,?,?)",
		l.Name, nullStr(l.Description), l.IsPublic, nullStr(l.PasswordHash), l.OwnerID,
		nullStr(l.CustomTitle), nullStr(l.CustomSubtitle))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	fresh, err := r.GetByID(ctx, l.ID)
	if err != nil {
		return err
	}
	*l = *fresh
	return nil
}

// GetByID fetches a list by id, returning ErrListNotFound when absent.
func (r *ListRepo) GetByID(ctx context.Context, id uint64) (*model.List, error) {
	var (
		l                           model.List
		desc, pwHash, title, subttl sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+listColumns+" FROM lists WHERE id=? LIMIT 1", id).
		Scan(&l.ID, &l.Name, &desc, &l.IsPublic, &pwHash, &l.OwnerID, &title, &subttl,
			&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrListNotFound
		}
		return nil, err
	}
	l.Description = desc.String
	l.PasswordHash = pwHash.String
	l.CustomTitle = title.String
	l.CustomSubtitle = subttl.String
	return &l, nil
}

// Update writes every mutable column of the list.  Handlers load the row,
// apply the requested changes and pass the result here.
func (r *ListRepo) Update(ctx context.Context, l *model.List) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE lists SET name=?, description=?, is_public=?, password_hash=?, custom_title=?, custom_subtitle=? WHERE id=?",
		l.Name, nullStr(l.Description), l.IsPublic, nullStr(l.PasswordHash),
		nullStr(l.CustomTitle), nullStr(l.CustomSubtitle), l.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Zero rows can also mean a no-op update of identical values, but
		// callers always fetch before updating, so treat it as gone.
		if _, err := r.GetByID(ctx, l.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a list.  Membership and join-request rows go with it via
// the store's cascading foreign keys.
func (r *ListRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM lists WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrListNotFound
	}
	return nil
}

// ListForUser returns every list the user owns or is a member of, newest
// first.
func (r *ListRepo) ListForUser(ctx context.Context, userID uint64) ([]model.List, error) {
	return r.list(ctx,
		"SELECT "+listColumns+" FROM lists WHERE owner_id=? OR id IN (SELECT list_id FROM list_members WHERE user_id=?) ORDER BY created_at DESC",
		userID, userID)
}

// ListPublic returns every public list, newest first.  This is the
// discover mode used for browsing and joining.
func (r *ListRepo) ListPublic(ctx context.Context) ([]model.List, error) {
	return r.list(ctx,
		"SELECT "+listColumns+" FROM lists WHERE is_public=? ORDER BY created_at DESC", true)
}

func (r *ListRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.List, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.List
	for rows.Next() {
		var (
			l                           model.List
			desc, pwHash, title, subttl sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.Name, &desc, &l.IsPublic, &pwHash, &l.OwnerID,
			&title, &subttl, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		l.Description = desc.String
		l.PasswordHash = pwHash.String
		l.CustomTitle = title.String
		l.CustomSubtitle = subttl.String
		out = append(out, l)
	}
	return out, rows.Err()
}

// nullStr maps "" to NULL so optional text columns stay NULL rather than
// accumulating empty strings.
func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
