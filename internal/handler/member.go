package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dstrnad/wordpool/internal/auth"
	"github.com/dstrnad/wordpool/internal/model"
	"github.com/dstrnad/wordpool/internal/queue"
	"github.com/dstrnad/wordpool/internal/repository"
	"github.com/dstrnad/wordpool/internal/service/queue_publisher"
)

// MemberHandler bundles dependencies for membership endpoints.
type MemberHandler struct {
	Lists    *repository.ListRepo
	Members  *repository.MemberRepo
	Requests *repository.JoinRequestRepo
	Resolver *auth.Resolver
}

func NewMemberHandler(lists *repository.ListRepo, members *repository.MemberRepo, requests *repository.JoinRequestRepo, resolver *auth.Resolver) *MemberHandler {
	return &MemberHandler{Lists: lists, Members: members, Requests: requests, Resolver: resolver}
}

// ----- DTOs -----

// joinReq embeds Credentials: the password field is the list password for
// private joins and doubles as the credential fallback for tokenless
// clients.
type joinReq struct {
	auth.Credentials
	Message string `json:"message"`
}

type addMemberReq struct {
	auth.Credentials
	UserID uint64 `json:"userId"`
	Role   string `json:"role"`
}

type memberJSON struct {
	ID       uint64    `json:"id"`
	UserID   uint64    `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// Join adds the caller to a list.  Public lists join immediately.  Private
// lists join on a correct password; otherwise a pending join request is
// created for the owner to review.
func (h *MemberHandler) Join(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid list id"})
	}
	var req joinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	user, err := h.Resolver.Resolve(c, &req.Credentials, true)
	if err != nil {
		return authError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Lists.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "List not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to join list"})
	}

	if _, err := h.Members.Get(ctx, id, user.ID); err == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Already a member of this list"})
	}
	pending, err := h.Requests.PendingExists(ctx, id, user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to join list"})
	}
	if pending {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Join request already pending"})
	}

	if list.IsPublic {
		return h.addMembership(c, ctx, list, user)
	}

	// Private list: a correct password joins directly, anything else files
	// a join request for the owner.
	if req.Password != "" && list.PasswordHash != "" {
		if !auth.VerifyPassword(list.PasswordHash, req.Password) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Invalid password"})
		}
		return h.addMembership(c, ctx, list, user)
	}

	if _, err := h.Requests.Create(ctx, id, user.ID, req.Message); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create join request"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "message": "Join request sent to list owner"})
}

func (h *MemberHandler) addMembership(c echo.Context, ctx context.Context, list *model.List, user *model.User) error {
	if err := h.Members.Add(ctx, list.ID, user.ID, model.RoleMember); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Lost the check-then-insert race to a concurrent join.
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Already a member of this list"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to join list"})
	}
	_ = queue_publisher.PublishActivity(ctx, queue.ActivityEvent{
		Type:       queue.EventMemberJoined,
		ListID:     list.ID,
		ListName:   list.Name,
		UserID:     user.ID,
		UserName:   user.Name,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "message": "Successfully joined the list"})
}

// Leave removes the caller's membership.  The owner cannot leave; the list
// must be deleted instead.
func (h *MemberHandler) Leave(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid list id"})
	}
	user, err := h.Resolver.Resolve(c, nil, true)
	if err != nil {
		return authError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Members.Get(ctx, id, user.ID); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Not a member of this list"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to leave list"})
	}

	list, err := h.Lists.GetByID(ctx, id)
	if err == nil && list.OwnerID == user.ID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Owner cannot leave the list. Delete it instead."})
	}

	if err := h.Members.Remove(ctx, id, user.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to leave list"})
	}
	if list != nil {
		_ = queue_publisher.PublishActivity(ctx, queue.ActivityEvent{
			Type:       queue.EventMemberLeft,
			ListID:     list.ID,
			ListName:   list.Name,
			UserID:     user.ID,
			UserName:   user.Name,
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "message": "Successfully left the list"})
}

// ListMembers returns the members of a list, subject to the visibility
// guard for private lists.
func (h *MemberHandler) ListMembers(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid list id"})
	}
	user, err := h.Resolver.Resolve(c, nil, false)
	if err != nil {
		return authError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Lists.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "List not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get members"})
	}

	switch visibilityStatus(ctx, h.Members, list, user) {
	case http.StatusUnauthorized:
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	case http.StatusForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Access denied"})
	}

	members, err := h.Members.ListByList(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get members"})
	}
	out := make([]memberJSON, 0, len(members))
	for _, m := range members {
		out = append(out, memberJSON{ID: m.ID, UserID: m.UserID, Role: m.Role, JoinedAt: m.JoinedAt})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "members": out})
}

// AddMember lets the owner add a user directly.
func (h *MemberHandler) AddMember(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid list id"})
	}
	var req addMemberReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "User ID is required"})
	}

	user, err := h.Resolver.Resolve(c, &req.Credentials, true)
	if err != nil {
		return authError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Lists.GetByID(ctx, id)
	if err != nil || list.OwnerID != user.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Only owner can add members"})
	}

	if _, err := h.Members.Get(ctx, id, req.UserID); err == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "User is already a member"})
	}

	role := req.Role
	if role != model.RoleMember && role != model.RoleOwner {
		role = model.RoleMember
	}
	if err := h.Members.Add(ctx, id, req.UserID, role); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "User is already a member"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to add member"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "message": "Member added successfully"})
}
