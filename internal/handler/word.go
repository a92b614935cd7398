package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dstrnad/wordpool/internal/auth"
	"github.com/dstrnad/wordpool/internal/model"
	"github.com/dstrnad/wordpool/internal/queue"
	"github.com/dstrnad/wordpool/internal/repository"
	"github.com/dstrnad/wordpool/internal/service/queue_publisher"
)

// maxWordsPerScope caps the number of canonical words a user may hold in a
// single scope (one list, or the global pool).  Enforced at write time;
// there is no stored counter.
const maxWordsPerScope = 20

// wordPattern allows letters of any script, digits, hyphen and underscore.
var wordPattern = regexp.MustCompile(`^[-_\p{L}0-9]+$`)

// WordHandler bundles dependencies for word CRUD endpoints.
type WordHandler struct {
	Lists    *repository.ListRepo
	Members  *repository.MemberRepo
	Words    *repository.WordRepo
	Users    *repository.UserRepo
	Resolver *auth.Resolver
}

func NewWordHandler(lists *repository.ListRepo, members *repository.MemberRepo, words *repository.WordRepo, users *repository.UserRepo, resolver *auth.Resolver) *WordHandler {
	return &WordHandler{Lists: lists, Members: members, Words: words, Users: users, Resolver: resolver}
}

// ----- DTOs -----

type createWordReq struct {
	auth.Credentials
	Word   string `json:"word"`
	ListID uint64 `json:"list_id"`
}

type updateWordReq struct {
	auth.Credentials
	Word string `json:"word"`
}

type wordJSON struct {
	ID          uint64    `json:"id"`
	Word        string    `json:"word"`
	WordLower   string    `json:"word_lower"`
	Name        string    `json:"name"`
	NameLower   string    `json:"name_lower"`
	OwnerID     uint64    `json:"owner_id,omitempty"`
	ListID      uint64    `json:"list_id,omitempty"`
	DuplicateOf uint64    `json:"duplicate_of,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toWordJSON(w *model.Word) wordJSON {
	return wordJSON{
		ID:          w.ID,
		Word:        w.Word,
		WordLower:   w.WordLower,
		Name:        w.Name,
		NameLower:   w.NameLower,
		OwnerID:     w.OwnerID,
		ListID:      w.ListID,
		DuplicateOf: w.DuplicateOf,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func validateWord(word string) string {
	if word == "" {
		return "Empty word"
	}
	if len([]rune(word)) > 20 {
		return "Word must be 20 characters or fewer"
	}
	if !wordPattern.MatchString(word) {
		return "Only letters, numbers, hyphen and underscore allowed"
	}
	return ""
}

// guardListAccess enforces the visibility guard on a list-scoped word
// operation: anonymous callers of private lists get 401, non-members 403.
// When access is denied the response has already been written and the
// caller must return the accompanying error value.
func (h *WordHandler) guardListAccess(c echo.Context, ctx context.Context, list *model.List, user *model.User) (bool, error) {
	switch visibilityStatus(ctx, h.Members, list, user) {
	case http.StatusUnauthorized:
		return false, c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	case http.StatusForbidden:
		return false, c.JSON(http.StatusForbidden, echo.Map{"error": "Access denied to this list"})
	}
	return true, nil
}

// List returns canonical words.  With list_id the list's feed is returned
// subject to the visibility guard; with global=true the global pool; with
// neither, the feed across all lists the caller belongs to (empty for
// anonymous callers).
func (h *WordHandler) List(c echo.Context) error {
	user, err := h.Resolver.Resolve(c, nil, false)
	if err != nil {
		return authError(c, err)
	}

	limit := 100
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > 1000 {
		limit = 1000
	}
	offset := 0
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v > 0 {
		offset = v
	}

	opts := repository.ListWordsOptions{
		WordLike: strings.TrimSpace(c.QueryParam("q")),
		NameLike: strings.TrimSpace(c.QueryParam("name")),
		Limit:    limit,
		Offset:   offset,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch {
	case c.QueryParam("list_id") != "":
		listID, err := strconv.ParseUint(c.QueryParam("list_id"), 10, 64)
		if err != nil || listID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid list id"})
		}
		list, err := h.Lists.GetByID(ctx, listID)
		if err != nil {
			if errors.Is(err, repository.ErrListNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "List not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Fetch failed"})
		}
		if ok, err := h.guardListAccess(c, ctx, list, user); !ok {
			return err
		}
		opts.ListID = listID
	case c.QueryParam("global") == "true":
		opts.Global = true
	case user != nil:
		ids, err := h.Members.ListIDsForUser(ctx, user.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Fetch failed"})
		}
		if len(ids) == 0 {
			return c.JSON(http.StatusOK, echo.Map{"ok": true, "items": []wordJSON{}})
		}
		opts.ListIDs = ids
	default:
		return c.JSON(http.StatusOK, echo.Map{"ok": true, "items": []wordJSON{}})
	}

	words, err := h.Words.List(ctx, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Fetch failed"})
	}
	out := make([]wordJSON, 0, len(words))
	for i := range words {
		out = append(out, toWordJSON(&words[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "items": out})
}

// Get returns a single word.  Words inside a private list are visible to
// its owner and members only; global words are public.
func (h *WordHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid word id"})
	}
	user, err := h.Resolver.Resolve(c, nil, false)
	if err != nil {
		return authError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	w, err := h.Words.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrWordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Word not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Fetch failed"})
	}

	if w.ListID != 0 {
		list, err := h.Lists.GetByID(ctx, w.ListID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Fetch failed"})
		}
		if ok, err := h.guardListAccess(c, ctx, list, user); !ok {
			return err
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true, "item": toWordJSON(w)})
}

// Create submits a word into a list (or the global pool when list_id is
// omitted).  The caller must be a member of the list, under quota in the
// scope, and the normalized text must be new there.  The sequential
// membership/quota/duplicate checks are not atomic with the insert; the
// store's uniqueness constraint settles any race and is reported as the
// same conflict.
func (h *WordHandler) Create(c echo.Context) error {
	var req createWordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	word := strings.TrimSpace(req.Word)
	if msg := validateWord(word); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	user, err := h.Resolver.Resolve(c, &req.Credentials, true)
	if err != nil {
		return authError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var list *model.List
	if req.ListID != 0 {
		list, err = h.Lists.GetByID(ctx, req.ListID)
		if err != nil {
			if errors.Is(err, repository.ErrListNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "List not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Insert failed"})
		}
		if list.OwnerID != user.ID {
			if _, err := h.Members.Get(ctx, req.ListID, user.ID); err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Access denied to this list"})
			}
		}
	}

	count, err := h.Words.CountCanonical(ctx, user.ID, req.ListID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Could not verify submission limit"})
	}
	if count >= maxWordsPerScope {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Submission limit reached (20) for this user in this scope"})
	}

	lower := strings.ToLower(word)
	exists, err := h.Words.CanonicalExists(ctx, lower, req.ListID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Insert failed"})
	}
	if exists {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Word already exists in this scope"})
	}

	w := &model.Word{
		Word:      word,
		WordLower: lower,
		Name:      user.Name,
		NameLower: user.NameLower,
		OwnerID:   user.ID,
		ListID:    req.ListID,
	}
	if err := h.Words.Insert(ctx, w); err != nil {
		if errors.Is(err, repository.ErrDuplicateWord) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Word already exists in this scope"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Insert failed"})
	}

	event := queue.ActivityEvent{
		Type:       queue.EventWordAdded,
		UserID:     user.ID,
		UserName:   user.Name,
		Word:       w.Word,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if list != nil {
		event.ListID = list.ID
		event.ListName = list.Name
	}
	_ = queue_publisher.PublishActivity(ctx, event)

	return c.JSON(http.StatusCreated, echo.Map{"ok": true, "item": toWordJSON(w)})
}

// Update rewrites a word's text.  Permitted for the stored owner, or, for
// legacy rows without an owner reference, for a caller whose normalized
// name matches the stored submitter name.
func (h *WordHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid word id"})
	}
	var req updateWordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	word := strings.TrimSpace(req.Word)
	if msg := validateWord(word); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	user, err := h.Resolver.Resolve(c, &req.Credentials, true)
	if err != nil {
		return authError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	w, err := h.Words.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrWordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Word not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Update failed"})
	}
	if !w.OwnedBy(user) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Not your word"})
	}

	lower := strings.ToLower(word)
	if lower != w.WordLower {
		exists, err := h.Words.CanonicalExists(ctx, lower, w.ListID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Update failed"})
		}
		if exists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Word already exists in this scope"})
		}
	}

	w.Word = word
	w.WordLower = lower
	w.Name = user.Name
	w.NameLower = user.NameLower
	if err := h.Words.Update(ctx, w); err != nil {
		if errors.Is(err, repository.ErrDuplicateWord) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Word already exists in this scope"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Update failed"})
	}
	fresh, err := h.Words.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "item": toWordJSON(fresh)})
}

// Delete removes a word, subject to the same dual-mode ownership check as
// Update.
func (h *WordHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid word id"})
	}
	user, err := h.Resolver.Resolve(c, nil, true)
	if err != nil {
		return authError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	w, err := h.Words.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrWordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Word not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Delete failed"})
	}
	if !w.OwnedBy(user) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Not your word"})
	}

	if err := h.Words.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Search returns the caller's canonical words across all scopes.  It
// authenticates by name/password only, for clients that never held a
// token.
func (h *WordHandler) Search(c echo.Context) error {
	var req auth.Credentials
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Name required"})
	}
	if req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByNameLower(ctx, strings.ToLower(name))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Search failed"})
	}
	if !auth.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}

	words, err := h.Words.ListByOwner(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Search failed"})
	}
	out := make([]wordJSON, 0, len(words))
	for i := range words {
		out = append(out, toWordJSON(&words[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "items": out})
}
