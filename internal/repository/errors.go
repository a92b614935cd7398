// Package repository contains data access logic separated from HTTP
// handlers.  This file defines error values reused across repositories.
// Sentinel values let handlers distinguish failure scenarios and map them
// onto the HTTP error taxonomy: ErrForbidden becomes 403, ErrConflict 409,
// the *NotFound values 404, and anything else 500.
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert or update collides with existing
// state, such as revoking an already-revoked token or re-approving a
// processed join request.
var ErrConflict = errors.New("conflict")

// Per-entity not-found sentinels.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrListNotFound    = errors.New("list not found")
	ErrWordNotFound    = errors.New("word not found")
	ErrRequestNotFound = errors.New("join request not found")
	ErrMemberNotFound  = errors.New("membership not found")
)

// ErrNameExists is returned when registration collides with an existing
// name_lower row.
var ErrNameExists = errors.New("name already registered")

// ErrDuplicateWord is returned when a word insert or update collides with a
// canonical row of the same normalized text in the same scope.
var ErrDuplicateWord = errors.New("word already exists")

// isUniqueViolation recognizes a uniqueness constraint failure from the
// store.  MySQL reports error 1062; the message forms cover other engines
// (tests run against sqlite, which says "UNIQUE constraint failed").  The
// constraint is the ultimate authority on uniqueness: a race that slips
// past an application-level pre-check lands here and is re-emitted as the
// same conflict error the pre-check would have produced.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique")
}
