package handler_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dstrnad/wordpool/internal/auth"
	"github.com/dstrnad/wordpool/internal/config"
	"github.com/dstrnad/wordpool/internal/handler"
	"github.com/dstrnad/wordpool/internal/repository"
	"github.com/dstrnad/wordpool/internal/router"
)

// schema mirrors migrations/001_schema.sql in sqlite dialect so the full
// HTTP surface can be exercised against an in-memory database.
const schema = `
CREATE TABLE users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    name_lower TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE token_blacklist (
    token_hash TEXT PRIMARY KEY,
    expires_at TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE lists (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    description TEXT,
    is_public INTEGER NOT NULL DEFAULT 0,
    password_hash TEXT,
    owner_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    custom_title TEXT,
    custom_subtitle TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE list_members (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    list_id INTEGER NOT NULL REFERENCES lists(id) ON DELETE CASCADE,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    role TEXT NOT NULL DEFAULT 'member',
    joined_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (list_id, user_id)
);
CREATE TABLE list_join_requests (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    list_id INTEGER NOT NULL REFERENCES lists(id) ON DELETE CASCADE,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    message TEXT,
    status TEXT NOT NULL DEFAULT 'pending',
    requested_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    responded_at TIMESTAMP
);
CREATE TABLE words (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    word TEXT NOT NULL,
    word_lower TEXT NOT NULL,
    name TEXT NOT NULL,
    name_lower TEXT NOT NULL,
    owner_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
    list_id INTEGER REFERENCES lists(id) ON DELETE CASCADE,
    duplicate_of INTEGER REFERENCES words(id) ON DELETE SET NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX uq_words_canonical
    ON words (word_lower, COALESCE(list_id, 0))
    WHERE duplicate_of IS NULL;
`

type testEnv struct {
	t  *testing.T
	e  *echo.Echo
	db *sql.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// One connection, or the in-memory database vanishes between queries.
	db.SetMaxOpenConns(1)
	_, err = db.Exec(schema)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{
		Env:             "test",
		Port:            "0",
		JWTSecret:       "test-jwt-secret",
		BlacklistSecret: "test-blacklist-secret",
		TokenTTLDays:    7,
		BcryptCost:      bcrypt.MinCost,
		ListBcryptCost:  bcrypt.MinCost,
	}

	users := repository.NewUserRepo(db)
	blacklist := repository.NewBlacklistRepo(db)
	lists := repository.NewListRepo(db)
	members := repository.NewMemberRepo(db)
	requests := repository.NewJoinRequestRepo(db)
	words := repository.NewWordRepo(db)

	ledger := &auth.Ledger{Store: blacklist, Secret: cfg.BlacklistSecret, JWTSecret: cfg.JWTSecret}
	resolver := &auth.Resolver{Users: users, Ledger: ledger, JWTSecret: cfg.JWTSecret}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, ledger, resolver))
	router.RegisterLists(e,
		handler.NewListHandler(cfg, lists, members, words, resolver),
		handler.NewMemberHandler(lists, members, requests, resolver),
		handler.NewJoinRequestHandler(lists, members, requests, resolver))
	router.RegisterWords(e, handler.NewWordHandler(lists, members, words, users, resolver))

	return &testEnv{t: t, e: e, db: db}
}

// do performs an in-process request.  body is JSON-marshalled when non-nil;
// token, when set, rides the Authorization header.
func (v *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	v.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(v.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	v.e.ServeHTTP(rr, req)
	return rr
}

func (v *testEnv) decode(rr *httptest.ResponseRecorder) map[string]any {
	v.t.Helper()
	var out map[string]any
	require.NoError(v.t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

const testPassword = "hunter22"

// signup registers a user with the shared test password and returns a
// session token.
func (v *testEnv) signup(name string) string {
	v.t.Helper()
	rr := v.do("POST", "/v1/auth/register", map[string]string{"name": name, "password": testPassword}, "")
	require.Equal(v.t, 201, rr.Code, rr.Body.String())
	return v.login(name)
}

func (v *testEnv) login(name string) string {
	v.t.Helper()
	rr := v.do("POST", "/v1/auth/login", map[string]string{"name": name, "password": testPassword}, "")
	require.Equal(v.t, 200, rr.Code, rr.Body.String())
	token, _ := v.decode(rr)["token"].(string)
	require.NotEmpty(v.t, token)
	return token
}

// createList makes a list owned by the token's user and returns its id.
func (v *testEnv) createList(token string, body map[string]any) uint64 {
	v.t.Helper()
	rr := v.do("POST", "/v1/lists", body, token)
	require.Equal(v.t, 201, rr.Code, rr.Body.String())
	list := v.decode(rr)["list"].(map[string]any)
	return uint64(list["id"].(float64))
}
