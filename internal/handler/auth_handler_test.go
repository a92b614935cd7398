package handler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("POST", "/v1/auth/register", map[string]string{"name": "Alice", "password": testPassword}, "")
	require.Equal(t, 201, rr.Code, rr.Body.String())
	user := env.decode(rr)["user"].(map[string]any)
	assert.Equal(t, "Alice", user["name"])

	// Same name in a different case collides on the normalized form.
	rr = env.do("POST", "/v1/auth/register", map[string]string{"name": "ALICE", "password": testPassword}, "")
	assert.Equal(t, 409, rr.Code)
	assert.Equal(t, "Name already registered", env.decode(rr)["error"])
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do("POST", "/v1/auth/register", map[string]string{"name": "", "password": testPassword}, "")
	assert.Equal(t, 400, rr.Code)

	rr = env.do("POST", "/v1/auth/register", map[string]string{"name": "Alice", "password": "short"}, "")
	assert.Equal(t, 400, rr.Code)
	assert.Equal(t, "Password must be at least 6 characters", env.decode(rr)["error"])
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.signup("Alice")

	rr := env.do("POST", "/v1/auth/login", map[string]string{"name": "alice", "password": testPassword}, "")
	require.Equal(t, 200, rr.Code, rr.Body.String())
	body := env.decode(rr)
	assert.NotEmpty(t, body["token"])

	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "auth_token", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	rr = env.do("POST", "/v1/auth/login", map[string]string{"name": "alice", "password": "wrong-pass"}, "")
	assert.Equal(t, 401, rr.Code)
	assert.Equal(t, "Invalid credentials", env.decode(rr)["error"])

	rr = env.do("POST", "/v1/auth/login", map[string]string{"name": "nobody", "password": testPassword}, "")
	assert.Equal(t, 401, rr.Code)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup("Alice")

	rr := env.do("GET", "/v1/auth/me", nil, token)
	require.Equal(t, 200, rr.Code)
	user := env.decode(rr)["user"].(map[string]any)
	assert.Equal(t, "Alice", user["name"])

	rr = env.do("GET", "/v1/auth/me", nil, "")
	assert.Equal(t, 401, rr.Code)
	assert.Equal(t, "Authentication required", env.decode(rr)["error"])
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup("Alice")

	rr := env.do("GET", "/v1/auth/me", nil, token)
	require.Equal(t, 200, rr.Code)

	rr = env.do("POST", "/v1/auth/logout", nil, token)
	require.Equal(t, 200, rr.Code)
	assert.Equal(t, true, env.decode(rr)["ok"])

	// The revoked token no longer resolves an identity.
	rr = env.do("GET", "/v1/auth/me", nil, token)
	assert.Equal(t, 401, rr.Code)
}

func TestLogoutIsLenient(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup("Alice")

	// No token at all still succeeds.
	rr := env.do("POST", "/v1/auth/logout", nil, "")
	assert.Equal(t, 200, rr.Code)
	assert.Equal(t, true, env.decode(rr)["ok"])

	// Garbage that never was a token succeeds too.
	rr = env.do("POST", "/v1/auth/logout", nil, "not-a-jwt")
	assert.Equal(t, 200, rr.Code)

	// Logging out twice with the same token is fine.
	rr = env.do("POST", "/v1/auth/logout", nil, token)
	require.Equal(t, 200, rr.Code)
	rr = env.do("POST", "/v1/auth/logout", nil, token)
	assert.Equal(t, 200, rr.Code)
	assert.Equal(t, true, env.decode(rr)["ok"])
}

func TestCredentialFallbackOnWriteEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.signup("Alice")

	// No token anywhere: name/password in the body authenticate the create.
	rr := env.do("POST", "/v1/lists", map[string]any{"name": "Alice", "password": testPassword}, "")
	require.Equal(t, 201, rr.Code, rr.Body.String())

	// An expired or mangled token does not block the fallback either.
	rr = env.do("POST", "/v1/lists", map[string]any{"name": "Alice", "password": testPassword}, "garbage-token")
	assert.Equal(t, 201, rr.Code, rr.Body.String())
}
