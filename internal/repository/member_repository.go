package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dstrnad/wordpool/internal/model"
)

// MemberRepo encapsulates all database queries on the list_members table.
type MemberRepo struct{ DB *sql.DB }

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{DB: db} }

// Add inserts a membership row.  The (list_id, user_id) unique key turns a
// concurrent double-join into ErrConflict.
func (r *MemberRepo) Add(ctx context.Context, listID, userID uint64, role string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO list_members (list_id, user_id, role) VALUES (?,?,?)",
		listID, userID, role)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// Get fetches the membership of a user in a list, returning
// ErrMemberNotFound when there is none.
func (r *MemberRepo) Get(ctx context.Context, listID, userID uint64) (*model.ListMember, error) {
	var m model.ListMember
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,list_id,user_id,role,joined_at FROM list_members WHERE list_id=? AND user_id=? LIMIT 1",
		listID, userID).Scan(&m.ID, &m.ListID, &m.UserID, &m.Role, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Remove deletes a membership row.
func (r *MemberRepo) Remove(ctx context.Context, listID, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM list_members WHERE list_id=? AND user_id=?", listID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// ListByList returns all members of a list in join order.
func (r *MemberRepo) ListByList(ctx context.Context, listID uint64) ([]model.ListMember, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,list_id,user_id,role,joined_at FROM list_members WHERE list_id=? ORDER BY joined_at ASC",
		listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ListMember
	for rows.Next() {
		var m model.ListMember
		if err := rows.Scan(&m.ID, &m.ListID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountByList returns the number of members in a list.
func (r *MemberRepo) CountByList(ctx context.Context, listID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM list_members WHERE list_id=?", listID).Scan(&n)
	return n, err
}

// ListIDsForUser returns the IDs of every list the user belongs to.
func (r *MemberRepo) ListIDsForUser(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT list_id FROM list_members WHERE user_id=?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
