package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dstrnad/wordpool/internal/model"
)

// JoinRequestRepo encapsulates all database queries on the
// list_join_requests table.
type JoinRequestRepo struct{ DB *sql.DB }

func NewJoinRequestRepo(db *sql.DB) *JoinRequestRepo { return &JoinRequestRepo{DB: db} }

// Create inserts a pending join request and returns its ID.
func (r *JoinRequestRepo) Create(ctx context.Context, listID, userID uint64, message string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO list_join_requests (list_id, user_id, message, status) VALUES (?,?,?,?)",
		listID, userID, nullStr(message), model.RequestPending)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// PendingExists reports whether the user already has a pending request for
// the list.
func (r *JoinRequestRepo) PendingExists(ctx context.Context, listID, userID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM list_join_requests WHERE list_id=? AND user_id=? AND status=? LIMIT 1",
		listID, userID, model.RequestPending).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByID fetches a request scoped to its list, returning
// ErrRequestNotFound when absent.
func (r *JoinRequestRepo) GetByID(ctx context.Context, id, listID uint64) (*model.JoinRequest, error) {
	var (
		req       model.JoinRequest
		message   sql.NullString
		responded sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,list_id,user_id,message,status,requested_at,responded_at FROM list_join_requests WHERE id=? AND list_id=? LIMIT 1",
		id, listID).Scan(&req.ID, &req.ListID, &req.UserID, &message, &req.Status,
		&req.RequestedAt, &responded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	req.Message = message.String
	if responded.Valid {
		req.RespondedAt = responded.Time
	}
	return &req, nil
}

// ListByList returns all requests for a list, newest first.
func (r *JoinRequestRepo) ListByList(ctx context.Context, listID uint64) ([]model.JoinRequest, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,list_id,user_id,message,status,requested_at,responded_at FROM list_join_requests WHERE list_id=? ORDER BY requested_at DESC",
		listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.JoinRequest
	for rows.Next() {
		var (
			req       model.JoinRequest
			message   sql.NullString
			responded sql.NullTime
		)
		if err := rows.Scan(&req.ID, &req.ListID, &req.UserID, &message, &req.Status,
			&req.RequestedAt, &responded); err != nil {
			return nil, err
		}
		req.Message = message.String
		if responded.Valid {
			req.RespondedAt = responded.Time
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// Resolve moves a pending request to approved or rejected.  The status
// guard in the WHERE clause makes the transition one-shot even under
// concurrent owners: the second resolution sees zero affected rows and
// gets ErrConflict.
func (r *JoinRequestRepo) Resolve(ctx context.Context, id uint64, status string, respondedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE list_join_requests SET status=?, responded_at=? WHERE id=? AND status=?",
		status, respondedAt, id, model.RequestPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}
