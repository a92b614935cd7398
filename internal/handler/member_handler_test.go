package handler_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinPublicList(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup("Alice")
	bob := env.signup("Bob")
	id := env.createList(owner, map[string]any{"name": "Open", "isPublic": true})
	path := fmt.Sprintf("/v1/lists/%d/join", id)

	rr := env.do("POST", path, map[string]any{}, bob)
	require.Equal(t, 200, rr.Code, rr.Body.String())
	assert.Equal(t, "Successfully joined the list", env.decode(rr)["message"])

	// Joining twice is rejected.
	rr = env.do("POST", path, map[string]any{}, bob)
	assert.Equal(t, 400, rr.Code)
	assert.Equal(t, "Already a member of this list", env.decode(rr)["error"])
}

func TestJoinMissingList(t *testing.T) {
	env := newTestEnv(t)
	bob := env.signup("Bob")

	rr := env.do("POST", "/v1/lists/9999/join", map[string]any{}, bob)
	assert.Equal(t, 404, rr.Code)
	assert.Equal(t, "List not found", env.decode(rr)["error"])
}

func TestJoinPrivateListWithPassword(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup("Alice")
	bob := env.signup("Bob")
	id := env.createList(owner, map[string]any{"name": "Club", "isPublic": false, "password": "letmein99"})
	path := fmt.Sprintf("/v1/lists/%d/join", id)

	rr := env.do("POST", path, map[string]any{"password": "wrong-pass"}, bob)
	assert.Equal(t, 403, rr.Code)
	assert.Equal(t, "Invalid password", env.decode(rr)["error"])

	rr = env.do("POST", path, map[string]any{"password": "letmein99"}, bob)
	require.Equal(t, 200, rr.Code, rr.Body.String())
	assert.Equal(t, "Successfully joined the list", env.decode(rr)["message"])
}

func TestJoinPrivateListFilesRequest(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup("Alice")
	bob := env.signup("Bob")
	id := env.createList(owner, map[string]any{"name": "Club", "isPublic": false})
	path := fmt.Sprintf("/v1/lists/%d/join", id)

	rr := env.do("POST", path, map[string]any{"message": "let me in"}, bob)
	require.Equal(t, 200, rr.Code, rr.Body.String())
	assert.Equal(t, "Join request sent to list owner", env.decode(rr)["message"])

	// A second attempt while the request is pending is rejected.
	rr = env.do("POST", path, map[string]any{}, bob)
	assert.Equal(t, 400, rr.Code)
	assert.Equal(t, "Join request already pending", env.decode(rr)["error"])
}

func TestLeaveList(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup("Alice")
	bob := env.signup("Bob")
	id := env.createList(owner, map[string]any{"name": "Open", "isPublic": true})
	join := fmt.Sprintf("/v1/lists/%d/join", id)
	leave := fmt.Sprintf("/v1/lists/%d/leave", id)

	// Not a member yet.
	rr := env.do("POST", leave, nil, bob)
	assert.Equal(t, 400, rr.Code)
	assert.Equal(t, "Not a member of this list", env.decode(rr)["error"])

	rr = env.do("POST", join, map[string]any{}, bob)
	require.Equal(t, 200, rr.Code)
	rr = env.do("POST", leave, nil, bob)
	require.Equal(t, 200, rr.Code)
	assert.Equal(t, "Successfully left the list", env.decode(rr)["message"])

	// The owner holds a membership row but may never drop it.
	rr = env.do("POST", leave, nil, owner)
	assert.Equal(t, 400, rr.Code)
	assert.Equal(t, "Owner cannot leave the list. Delete it instead.", env.decode(rr)["error"])
}

func TestListMembers(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup("Alice")
	bob := env.signup("Bob")
	id := env.createList(owner, map[string]any{"name": "Open", "isPublic": true})
	env.do("POST", fmt.Sprintf("/v1/lists/%d/join", id), map[string]any{}, bob)

	rr := env.do("GET", fmt.Sprintf("/v1/lists/%d/members", id), nil, owner)
	require.Equal(t, 200, rr.Code)
	members := env.decode(rr)["members"].([]any)
	require.Len(t, members, 2)
	assert.Equal(t, "owner", members[0].(map[string]any)["role"])
	assert.Equal(t, "member", members[1].(map[string]any)["role"])
}

func TestAddMemberOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup("Alice")
	bob := env.signup("Bob")
	env.signup("Carol") // becomes user id 3
	id := env.createList(owner, map[string]any{"name": "Club", "isPublic": false})
	path := fmt.Sprintf("/v1/lists/%d/members", id)

	rr := env.do("POST", path, map[string]any{"userId": 3}, bob)
	assert.Equal(t, 403, rr.Code)
	assert.Equal(t, "Only owner can add members", env.decode(rr)["error"])

	rr = env.do("POST", path, map[string]any{}, owner)
	assert.Equal(t, 400, rr.Code)
	assert.Equal(t, "User ID is required", env.decode(rr)["error"])

	rr = env.do("POST", path, map[string]any{"userId": 3}, owner)
	require.Equal(t, 200, rr.Code, rr.Body.String())

	rr = env.do("POST", path, map[string]any{"userId": 3}, owner)
	assert.Equal(t, 400, rr.Code)
	assert.Equal(t, "User is already a member", env.decode(rr)["error"])
}
