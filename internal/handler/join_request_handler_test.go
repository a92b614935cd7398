package handler_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileJoinRequest gets a pending join request on the list and returns its id.
func fileJoinRequest(t *testing.T, env *testEnv, listID uint64, requester, owner string) uint64 {
	t.Helper()
	rr := env.do("POST", fmt.Sprintf("/v1/lists/%d/join", listID), map[string]any{"message": "please"}, requester)
	require.Equal(t, 200, rr.Code, rr.Body.String())

	rr = env.do("GET", fmt.Sprintf("/v1/lists/%d/requests", listID), nil, owner)
	require.Equal(t, 200, rr.Code, rr.Body.String())
	requests := env.decode(rr)["requests"].([]any)
	require.NotEmpty(t, requests)
	return uint64(requests[0].(map[string]any)["id"].(float64))
}

func TestListRequestsOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup("Alice")
	bob := env.signup("Bob")
	id := env.createList(owner, map[string]any{"name": "Club", "isPublic": false})

	rr := env.do("GET", fmt.Sprintf("/v1/lists/%d/requests", id), nil, bob)
	assert.Equal(t, 403, rr.Code)
	assert.Equal(t, "Only owner can view join requests", env.decode(rr)["error"])

	rr = env.do("GET", fmt.Sprintf("/v1/lists/%d/requests", id), nil, owner)
	require.Equal(t, 200, rr.Code)
	assert.Len(t, env.decode(rr)["requests"], 0)
}

func TestApproveJoinRequest(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup("Alice")
	bob := env.signup("Bob")
	id := env.createList(owner, map[string]any{"name": "Club", "isPublic": false})
	rid := fileJoinRequest(t, env, id, bob, owner)
	path := fmt.Sprintf("/v1/lists/%d/requests/%d", id, rid)

	rr := env.do("PATCH", path, map[string]any{"action": "approve"}, owner)
	require.Equal(t, 200, rr.Code, rr.Body.String())
	assert.Equal(t, "Request approved successfully", env.decode(rr)["message"])

	// Bob is a member now: the private list opens up to him.
	rr = env.do("GET", fmt.Sprintf("/v1/lists/%d", id), nil, bob)
	require.Equal(t, 200, rr.Code)
	detail := env.decode(rr)["list"].(map[string]any)
	assert.Equal(t, true, detail["is_member"])

	// The transition is one-shot.
	rr = env.do("PATCH", path, map[string]any{"action": "reject"}, owner)
	assert.Equal(t, 400, rr.Code)
	assert.Equal(t, "Request has already been processed", env.decode(rr)["error"])
}

func TestRejectJoinRequest(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup("Alice")
	bob := env.signup("Bob")
	id := env.createList(owner, map[string]any{"name": "Club", "isPublic": false})
	rid := fileJoinRequest(t, env, id, bob, owner)
	path := fmt.Sprintf("/v1/lists/%d/requests/%d", id, rid)

	rr := env.do("PATCH", path, map[string]any{"action": "reject"}, owner)
	require.Equal(t, 200, rr.Code, rr.Body.String())
	assert.Equal(t, "Request rejected successfully", env.decode(rr)["message"])

	// Still locked out.
	rr = env.do("GET", fmt.Sprintf("/v1/lists/%d", id), nil, bob)
	assert.Equal(t, 403, rr.Code)

	// A rejected request no longer blocks a fresh one.
	rr = env.do("POST", fmt.Sprintf("/v1/lists/%d/join", id), map[string]any{}, bob)
	require.Equal(t, 200, rr.Code, rr.Body.String())
	assert.Equal(t, "Join request sent to list owner", env.decode(rr)["message"])
}

func TestRespondValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup("Alice")
	bob := env.signup("Bob")
	id := env.createList(owner, map[string]any{"name": "Club", "isPublic": false})
	rid := fileJoinRequest(t, env, id, bob, owner)

	rr := env.do("PATCH", fmt.Sprintf("/v1/lists/%d/requests/%d", id, rid), map[string]any{"action": "maybe"}, owner)
	assert.Equal(t, 400, rr.Code)
	assert.Equal(t, "Action must be approve or reject", env.decode(rr)["error"])

	rr = env.do("PATCH", fmt.Sprintf("/v1/lists/%d/requests/%d", id, rid), map[string]any{"action": "approve"}, bob)
	assert.Equal(t, 403, rr.Code)
	assert.Equal(t, "Only owner can manage join requests", env.decode(rr)["error"])

	rr = env.do("PATCH", fmt.Sprintf("/v1/lists/%d/requests/%d", id, rid+100), map[string]any{"action": "approve"}, owner)
	assert.Equal(t, 404, rr.Code)
	assert.Equal(t, "Join request not found", env.decode(rr)["error"])
}
