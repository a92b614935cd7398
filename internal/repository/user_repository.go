package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dstrnad/wordpool/internal/model"
)

// UserRepo encapsulates all database queries on the users table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID.  The name is stored as entered;
// the lowercase form carries the case-insensitive uniqueness constraint.
func (r *UserRepo) Create(ctx context.Context, name, passwordHash string) (uint64, error) {
	name = strings.TrimSpace(name)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, name_lower, password_hash) VALUES (?,?,?)",
		name, strings.ToLower(name), passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrNameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByNameLower fetches a user by normalized name.
func (r *UserRepo) GetByNameLower(ctx context.Context, nameLower string) (*model.User, error) {
	return r.get(ctx,
		"SELECT id,name,name_lower,password_hash,created_at,updated_at FROM users WHERE name_lower=? LIMIT 1",
		strings.ToLower(strings.TrimSpace(nameLower)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.get(ctx,
		"SELECT id,name,name_lower,password_hash,created_at,updated_at FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) get(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Name, &u.NameLower, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
