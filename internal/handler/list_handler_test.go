package handler_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateListRequiresIdentity(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("POST", "/v1/lists", map[string]any{"name": "Fruit"}, "")
	assert.Equal(t, 401, rr.Code)
}

func TestCreateList(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup("Alice")

	rr := env.do("POST", "/v1/lists", map[string]any{
		"name":        "Fruit",
		"description": "things that grow on trees",
		"isPublic":    true,
	}, token)
	require.Equal(t, 201, rr.Code, rr.Body.String())
	list := env.decode(rr)["list"].(map[string]any)
	assert.Equal(t, "Fruit", list["name"])
	assert.Equal(t, true, list["is_public"])

	// The owner is also the first member.
	id := uint64(list["id"].(float64))
	rr = env.do("GET", fmt.Sprintf("/v1/lists/%d", id), nil, token)
	require.Equal(t, 200, rr.Code)
	detail := env.decode(rr)["list"].(map[string]any)
	assert.Equal(t, float64(1), detail["member_count"])
	assert.Equal(t, true, detail["is_owner"])
	assert.Equal(t, true, detail["is_member"])
	assert.Equal(t, "owner", detail["membership_role"])
}

func TestGetListVisibility(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup("Alice")
	stranger := env.signup("Bob")
	id := env.createList(owner, map[string]any{"name": "Secrets", "isPublic": false})
	path := fmt.Sprintf("/v1/lists/%d", id)

	// Anonymous readers of a private list are asked to authenticate.
	rr := env.do("GET", path, nil, "")
	assert.Equal(t, 401, rr.Code)
	assert.Equal(t, "Authentication required", env.decode(rr)["error"])

	// A logged-in non-member is denied outright.
	rr = env.do("GET", path, nil, stranger)
	assert.Equal(t, 403, rr.Code)
	assert.Equal(t, "Access denied", env.decode(rr)["error"])

	// The owner sees it.
	rr = env.do("GET", path, nil, owner)
	assert.Equal(t, 200, rr.Code)

	// Public lists are open to everyone, even anonymous.
	pub := env.createList(owner, map[string]any{"name": "Open", "isPublic": true})
	rr = env.do("GET", fmt.Sprintf("/v1/lists/%d", pub), nil, "")
	assert.Equal(t, 200, rr.Code)
}

func TestGetListNotFound(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup("Alice")

	rr := env.do("GET", "/v1/lists/9999", nil, token)
	assert.Equal(t, 404, rr.Code)
	assert.Equal(t, "List not found", env.decode(rr)["error"])
}

func TestListBrowsing(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup("Alice")
	bob := env.signup("Bob")
	env.createList(alice, map[string]any{"name": "Open", "isPublic": true})
	env.createList(alice, map[string]any{"name": "Hidden", "isPublic": false})

	// Anonymous browsing shows only public lists.
	rr := env.do("GET", "/v1/lists", nil, "")
	require.Equal(t, 200, rr.Code)
	assert.Len(t, env.decode(rr)["lists"], 1)

	// Alice sees both of her lists.
	rr = env.do("GET", "/v1/lists", nil, alice)
	require.Equal(t, 200, rr.Code)
	assert.Len(t, env.decode(rr)["lists"], 2)

	// Bob belongs to nothing yet.
	rr = env.do("GET", "/v1/lists", nil, bob)
	require.Equal(t, 200, rr.Code)
	assert.Len(t, env.decode(rr)["lists"], 0)

	// Discover mode shows public lists regardless of membership.
	rr = env.do("GET", "/v1/lists?public=true", nil, bob)
	require.Equal(t, 200, rr.Code)
	assert.Len(t, env.decode(rr)["lists"], 1)
}

func TestUpdateListOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup("Alice")
	other := env.signup("Bob")
	id := env.createList(owner, map[string]any{"name": "Fruit", "isPublic": true})
	path := fmt.Sprintf("/v1/lists/%d", id)

	rr := env.do("PATCH", path, map[string]any{"description": "updated"}, other)
	assert.Equal(t, 403, rr.Code)
	assert.Equal(t, "Only owner can update list", env.decode(rr)["error"])

	rr = env.do("PATCH", path, map[string]any{"description": "updated", "customTitle": "My Fruit"}, owner)
	require.Equal(t, 200, rr.Code, rr.Body.String())
	list := env.decode(rr)["list"].(map[string]any)
	assert.Equal(t, "updated", list["description"])
	assert.Equal(t, "My Fruit", list["custom_title"])
	assert.Equal(t, "Fruit", list["name"]) // untouched fields survive
}

func TestDeleteListOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup("Alice")
	other := env.signup("Bob")
	id := env.createList(owner, map[string]any{"name": "Fruit", "isPublic": true})
	path := fmt.Sprintf("/v1/lists/%d", id)

	rr := env.do("DELETE", path, nil, other)
	assert.Equal(t, 403, rr.Code)
	assert.Equal(t, "Only owner can delete list", env.decode(rr)["error"])

	rr = env.do("DELETE", path, nil, owner)
	require.Equal(t, 200, rr.Code)

	rr = env.do("GET", path, nil, owner)
	assert.Equal(t, 404, rr.Code)
}
