package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/dstrnad/wordpool/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers routes that do not belong to any versioned
// group.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers session endpoints under /v1/auth.  None of them
// carry middleware: identity is resolved inside the handlers, because
// most write endpoints also accept name/password in the request body as a
// fallback for clients without a token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	// Register a POST endpoint to handle user registration at /v1/auth/register.
	g.POST("/register", a.Register)
	// Register a POST endpoint to handle user login at /v1/auth/login.  On
	// success it returns a token in the body and sets the session cookie.
	g.POST("/login", a.Login)
	// Logout is lenient: it always responds 200, blacklisting whatever token
	// accompanied the request.
	g.POST("/logout", a.Logout)
	// Register a GET endpoint that returns the authenticated user's identity.
	g.GET("/me", a.Me)
}

// RegisterLists registers list, membership and join-request endpoints
// under /v1/lists.
func RegisterLists(e *echo.Echo, l *handler.ListHandler, m *handler.MemberHandler, r *handler.JoinRequestHandler) {
	g := e.Group("/v1/lists")
	// Collection endpoints: create a list, or browse lists.  GET returns the
	// caller's lists, or public lists for guests and with ?public=true.
	g.POST("", l.Create)
	g.GET("", l.List)
	// Single-list endpoints.  Reads on private lists are limited to members;
	// updates and deletes are owner-only.
	g.GET("/:id", l.Get)
	g.PATCH("/:id", l.Update)
	g.DELETE("/:id", l.Delete)
	// Membership endpoints.  Join handles the public/password/request triage;
	// leave rejects the owner.
	g.POST("/:id/join", m.Join)
	g.POST("/:id/leave", m.Leave)
	g.GET("/:id/members", m.ListMembers)
	g.POST("/:id/members", m.AddMember)
	// Join-request review, owner-only.
	g.GET("/:id/requests", r.ListRequests)
	g.PATCH("/:id/requests/:rid", r.Respond)
}

// RegisterWords registers word endpoints under /v1/words.
func RegisterWords(e *echo.Echo, w *handler.WordHandler) {
	g := e.Group("/v1/words")
	// Browse canonical words with optional q/name/list_id/global filters.
	g.GET("", w.List)
	// Submit a word into a list or the global pool.
	g.POST("", w.Create)
	// Fetch a single word, subject to its list's visibility guard.
	g.GET("/:id", w.Get)
	// Rewrite or remove an owned word.
	g.PATCH("/:id", w.Update)
	g.DELETE("/:id", w.Delete)
	// Credential-authenticated lookup of the caller's own submissions.
	g.POST("/search", w.Search)
}
