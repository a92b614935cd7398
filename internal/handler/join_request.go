package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dstrnad/wordpool/internal/auth"
	"github.com/dstrnad/wordpool/internal/model"
	"github.com/dstrnad/wordpool/internal/repository"
)

// JoinRequestHandler bundles dependencies for join-request review
// endpoints.  All of them are owner-only.
type JoinRequestHandler struct {
	Lists    *repository.ListRepo
	Members  *repository.MemberRepo
	Requests *repository.JoinRequestRepo
	Resolver *auth.Resolver
}

func NewJoinRequestHandler(lists *repository.ListRepo, members *repository.MemberRepo, requests *repository.JoinRequestRepo, resolver *auth.Resolver) *JoinRequestHandler {
	return &JoinRequestHandler{Lists: lists, Members: members, Requests: requests, Resolver: resolver}
}

type respondReq struct {
	auth.Credentials
	Action string `json:"action"` // "approve" or "reject"
}

type joinRequestJSON struct {
	ID          uint64     `json:"id"`
	UserID      uint64     `json:"user_id"`
	Message     string     `json:"message,omitempty"`
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requested_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

func toJoinRequestJSON(r *model.JoinRequest) joinRequestJSON {
	out := joinRequestJSON{
		ID:          r.ID,
		UserID:      r.UserID,
		Message:     r.Message,
		Status:      r.Status,
		RequestedAt: r.RequestedAt,
	}
	if !r.RespondedAt.IsZero() {
		t := r.RespondedAt
		out.RespondedAt = &t
	}
	return out
}

// loadOwned loads the list and verifies the caller owns it.  A missing
// list reports false the same way as a foreign one so the endpoint does
// not leak which private lists exist.
func (h *JoinRequestHandler) loadOwned(ctx context.Context, listID uint64, user *model.User) (*model.List, bool) {
	list, err := h.Lists.GetByID(ctx, listID)
	if err != nil || list.OwnerID != user.ID {
		return nil, false
	}
	return list, true
}

// ListRequests returns all join requests for a list, newest first.
func (h *JoinRequestHandler) ListRequests(c echo.Context) error {
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

	if _, ok := h.loadOwned(ctx, id, user); !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Only owner can view join requests"})
	}

	requests, err := h.Requests.ListByList(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get join requests"})
	}
	out := make([]joinRequestJSON, 0, len(requests))
	for i := range requests {
		out = append(out, toJoinRequestJSON(&requests[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "requests": out})
}

// Respond approves or rejects a pending request.  The transition is
// one-shot: re-processing a resolved request fails with 400.
func (h *JoinRequestHandler) Respond(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid list id"})
	}
	rid, ok := parseID(c, "rid")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	var req respondReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Action != "approve" && req.Action != "reject" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Action must be approve or reject"})
	}

	user, err := h.Resolver.Resolve(c, &req.Credentials, true)
	if err != nil {
		return authError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, ok := h.loadOwned(ctx, id, user); !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Only owner can manage join requests"})
	}

	request, err := h.Requests.GetByID(ctx, rid, id)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Join request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update request"})
	}
	if request.Status != model.RequestPending {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Request has already been processed"})
	}

	status := model.RequestRejected
	if req.Action == "approve" {
		status = model.RequestApproved
		if err := h.Members.Add(ctx, id, request.UserID, model.RoleMember); err != nil && !errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to approve request"})
		}
	}

	if err := h.Requests.Resolve(ctx, rid, status, time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Another owner session resolved it between our read and write.
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Request has already been processed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update request"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"ok":      true,
		"message": fmt.Sprintf("Request %s successfully", status),
	})
}
