package model

import "time"

// Membership roles stored in list_members.role.  Exactly one owner row
// exists per list and it matches the list's owner_id.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Join request states stored in list_join_requests.status.  The only legal
// transitions are pending->approved and pending->rejected, each exactly once.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// List represents a collaborative word list persisted in the `lists` table.
// A private list (IsPublic false) is visible only to its owner and members;
// joining it requires the list password or an owner-approved request.
// PasswordHash is empty when no password is set.
//
// Fields:
//
//	ID             – primary key identifier.
//	Name           – human-friendly list name.
//	Description    – optional free-text description.
//	IsPublic       – whether anyone may view and join directly.
//	PasswordHash   – bcrypt hash of the join password ("" = none).
//	OwnerID        – user ID of the list owner.
//	CustomTitle    – optional display title override.
//	CustomSubtitle – optional display subtitle override.
//	CreatedAt      – timestamp when the list was created.
//	UpdatedAt      – timestamp of last update.
type List struct {
	ID             uint64    // lists.id
	Name           string    // lists.name
	Description    string    // lists.description
	IsPublic       bool      // lists.is_public
	PasswordHash   string    // lists.password_hash
	OwnerID        uint64    // lists.owner_id
	CustomTitle    string    // lists.custom_title
	CustomSubtitle string    // lists.custom_subtitle
	CreatedAt      time.Time // lists.created_at
	UpdatedAt      time.Time // lists.updated_at
}

// ListMember models a row in the `list_members` table.
//
// Fields:
//
//	ID       – primary key identifier.
//	ListID   – the list joined.
//	UserID   – the joining user.
//	Role     – "owner" or "member".
//	JoinedAt – timestamp of the membership row.
type ListMember struct {
	ID       uint64    // list_members.id
	ListID   uint64    // list_members.list_id
	UserID   uint64    // list_members.user_id
	Role     string    // list_members.role
	JoinedAt time.Time // list_members.joined_at
}

// JoinRequest models a row in the `list_join_requests` table.  At most one
// pending request exists per (list, user) pair.
//
// Fields:
//
//	ID          – primary key identifier.
//	ListID      – the list the user wants to join.
//	UserID      – the requesting user.
//	Message     – optional message to the owner.
//	Status      – pending, approved or rejected.
//	RequestedAt – when the request was created.
//	RespondedAt – when the owner resolved it (zero while pending).
type JoinRequest struct {
	ID          uint64    // list_join_requests.id
	ListID      uint64    // list_join_requests.list_id
	UserID      uint64    // list_join_requests.user_id
	Message     string    // list_join_requests.message
	Status      string    // list_join_requests.status
	RequestedAt time.Time // list_join_requests.requested_at
	RespondedAt time.Time // list_join_requests.responded_at (zero if unanswered)
}
