package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dstrnad/wordpool/internal/auth"
	"github.com/dstrnad/wordpool/internal/config"
	"github.com/dstrnad/wordpool/internal/model"
	"github.com/dstrnad/wordpool/internal/repository"
)

// ListHandler bundles dependencies for list CRUD endpoints.
type ListHandler struct {
	Cfg      config.Config
	Lists    *repository.ListRepo
	Members  *repository.MemberRepo
	Words    *repository.WordRepo
	Resolver *auth.Resolver
}

func NewListHandler(cfg config.Config, lists *repository.ListRepo, members *repository.MemberRepo, words *repository.WordRepo, resolver *auth.Resolver) *ListHandler {
	return &ListHandler{Cfg: cfg, Lists: lists, Members: members, Words: words, Resolver: resolver}
}

// ----- DTOs -----

// createListReq embeds Credentials: the body's name/password pair doubles
// as the credential fallback for clients without a token, exactly as the
// password doubles as the list's join password.  Token-holding clients are
// resolved before the fallback ever looks at these fields.
type createListReq struct {
	auth.Credentials
	Description    string `json:"description"`
	IsPublic       *bool  `json:"isPublic"`
	CustomTitle    string `json:"customTitle"`
	CustomSubtitle string `json:"customSubtitle"`
}

type updateListReq struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	IsPublic       *bool   `json:"isPublic"`
	Password       *string `json:"password"`
	CustomTitle    *string `json:"customTitle"`
	CustomSubtitle *string `json:"customSubtitle"`
}

// creds reconstructs the fallback credential pair from a partial update
// body.
func (r *updateListReq) creds() *auth.Credentials {
	out := &auth.Credentials{}
	if r.Name != nil {
		out.Name = *r.Name
	}
	if r.Password != nil {
		out.Password = *r.Password
	}
	return out
}

type listJSON struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	IsPublic       bool      `json:"is_public"`
	OwnerID        uint64    `json:"owner_id"`
	CustomTitle    string    `json:"custom_title,omitempty"`
	CustomSubtitle string    `json:"custom_subtitle,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type listDetailJSON struct {
	listJSON
	MemberCount    int     `json:"member_count"`
	WordCount      int     `json:"word_count"`
	IsOwner        bool    `json:"is_owner"`
	IsMember       bool    `json:"is_member"`
	MembershipRole *string `json:"membership_role"`
}

func toListJSON(l *model.List) listJSON {
	return listJSON{
		ID:             l.ID,
		Name:           l.Name,
		Description:    l.Description,
		IsPublic:       l.IsPublic,
		OwnerID:        l.OwnerID,
		CustomTitle:    l.CustomTitle,
		CustomSubtitle: l.CustomSubtitle,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

func validateListFields(name, description, customTitle, customSubtitle string) string {
	if strings.TrimSpace(name) == "" {
		return "List name is required"
	}
	if len(name) > 100 {
		return "List name must be 100 characters or fewer"
	}
	if len(description) > 500 {
		return "Description must be 500 characters or fewer"
	}
	if len(customTitle) > 200 {
		return "Custom title must be 200 characters or fewer"
	}
	if len(customSubtitle) > 1000 {
		return "Custom subtitle must be 1000 characters or fewer"
	}
	return ""
}

// parseID reads a numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// visibilityStatus applies the private-list visibility guard: owner and
// members see the list, anonymous callers get 401, everyone else 403.
// Returns 0 when access is allowed.
func visibilityStatus(ctx context.Context, members *repository.MemberRepo, list *model.List, user *model.User) int {
	if list.IsPublic {
		return 0
	}
	if user == nil {
		return http.StatusUnauthorized
	}
	if list.OwnerID == user.ID {
		return 0
	}
	if _, err := members.Get(ctx, list.ID, user.ID); err == nil {
		return 0
	}
	return http.StatusForbidden
}

// Create makes a new list with the caller as owner and first member.
func (h *ListHandler) Create(c echo.Context) error {
	var req createListReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := validateListFields(req.Name, req.Description, req.CustomTitle, req.CustomSubtitle); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if req.Password != "" && len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Password must be at least 6 characters"})
	}

	user, err := h.Resolver.Resolve(c, &req.Credentials, true)
	if err != nil {
		return authError(c, err)
	}

	var passwordHash string
	if req.Password != "" {
		passwordHash, err = auth.HashPassword(req.Password, h.Cfg.ListBcryptCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create list"})
		}
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	list := &model.List{
		Name:           strings.TrimSpace(req.Name),
		Description:    strings.TrimSpace(req.Description),
		IsPublic:       isPublic,
		PasswordHash:   passwordHash,
		OwnerID:        user.ID,
		CustomTitle:    strings.TrimSpace(req.CustomTitle),
		CustomSubtitle: strings.TrimSpace(req.CustomSubtitle),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Lists.Create(ctx, list); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create list"})
	}
	// The owner membership row keeps the "one owner row per list" invariant.
	// A failure here leaves a usable list, so it is logged, not fatal.
	if err := h.Members.Add(ctx, list.ID, user.ID, model.RoleOwner); err != nil {
		c.Logger().Errorf("create list: failed to add owner membership: %v", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"ok": true, "list": toListJSON(list)})
}

// List returns lists visible to the caller.  ?public=true switches to
// discover mode (public lists only); otherwise authenticated callers see
// the lists they own or belong to and anonymous callers see public lists.
func (h *ListHandler) List(c echo.Context) error {
	user, err := h.Resolver.Resolve(c, nil, false)
	if err != nil {
		return authError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var lists []model.List
	if c.QueryParam("public") == "true" || user == nil {
		lists, err = h.Lists.ListPublic(ctx)
	} else {
		lists, err = h.Lists.ListForUser(ctx, user.ID)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Fetch failed"})
	}

	out := make([]listJSON, 0, len(lists))
	for i := range lists {
		out = append(out, toListJSON(&lists[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "lists": out})
}

// Get returns list details with membership info, enforcing the visibility
// guard for private lists.
func (h *ListHandler) Get(c echo.Context) error {
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
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Fetch failed"})
	}

	switch visibilityStatus(ctx, h.Members, list, user) {
	case http.StatusUnauthorized:
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	case http.StatusForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Access denied"})
	}

	memberCount, err := h.Members.CountByList(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Fetch failed"})
	}
	wordCount, err := h.Words.CountCanonicalInList(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Fetch failed"})
	}

	detail := listDetailJSON{
		listJSON:    toListJSON(list),
		MemberCount: memberCount,
		WordCount:   wordCount,
	}
	if user != nil {
		detail.IsOwner = list.OwnerID == user.ID
		if m, err := h.Members.Get(ctx, id, user.ID); err == nil {
			detail.IsMember = true
			detail.MembershipRole = &m.Role
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true, "list": detail})
}

// Update mutates a list.  Owner only; members get 403 like everyone else.
func (h *ListHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid list id"})
	}
	var req updateListReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	user, err := h.Resolver.Resolve(c, req.creds(), true)
	if err != nil {
		return authError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Lists.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Only owner can update list"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update list"})
	}
	if list.OwnerID != user.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Only owner can update list"})
	}

	if req.Name != nil {
		list.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		list.Description = strings.TrimSpace(*req.Description)
	}
	if req.IsPublic != nil {
		list.IsPublic = *req.IsPublic
	}
	if req.CustomTitle != nil {
		list.CustomTitle = strings.TrimSpace(*req.CustomTitle)
	}
	if req.CustomSubtitle != nil {
		list.CustomSubtitle = strings.TrimSpace(*req.CustomSubtitle)
	}
	if msg := validateListFields(list.Name, list.Description, list.CustomTitle, list.CustomSubtitle); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if req.Password != nil {
		if *req.Password == "" {
			list.PasswordHash = ""
		} else {
			if len(*req.Password) < 6 {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "Password must be at least 6 characters"})
			}
			hash, err := auth.HashPassword(*req.Password, h.Cfg.ListBcryptCost)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update list"})
			}
			list.PasswordHash = hash
		}
	}

	if err := h.Lists.Update(ctx, list); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update list"})
	}
	fresh, err := h.Lists.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update list"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "list": toListJSON(fresh)})
}

// Delete removes a list.  Owner only.  Membership and join-request rows
// cascade in the store.
func (h *ListHandler) Delete(c echo.Context) error {
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

	list, err := h.Lists.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Only owner can delete list"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete list"})
	}
	if list.OwnerID != user.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Only owner can delete list"})
	}

	if err := h.Lists.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete list"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
