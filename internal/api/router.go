package api

import (
	"net/http"
	"time"

	"github.com/felixgeelhaar/wanderlist/internal/api/middleware"
)

// Router wraps the HTTP multiplexer with middleware and handlers
type Router struct {
	mux     *http.ServeMux
	app     *App
	auth    *AuthHandler
	bucket  *BucketHandler
	flights *FlightsHandler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(app *App) http.Handler {
	r := &Router{
		mux: http.NewServeMux(),
		app: app,
	}

	r.auth = NewAuthHandler(app.Auth, !app.Config.Debug)
	r.bucket = NewBucketHandler(app.Buckets)
	r.flights = NewFlightsHandler(app.Flights, app.Store)

	r.registerRoutes()

	return r.buildMiddlewareChain(r.mux, app)
}

func (r *Router) registerRoutes() {
	// Health check
	r.mux.HandleFunc("GET /health", r.handleHealth)
	r.mux.HandleFunc("GET /ready", r.handleReady)

	// Auth (no session required)
	r.mux.HandleFunc("POST /api/register", r.auth.Register)
	r.mux.HandleFunc("POST /api/login", r.auth.Login)
	r.mux.HandleFunc("GET /api/session", r.requireSession(r.auth.Session))

	// Bucket list (session required)
	r.mux.HandleFunc("GET /api/bucket", r.requireSession(r.bucket.Get))
	r.mux.HandleFunc("POST /api/bucket/items", r.requireSession(r.bucket.AddItem))
	r.mux.HandleFunc("POST /api/bucket/items/{id}/completed", r.requireSession(r.bucket.SetItemCompleted))
	r.mux.HandleFunc("DELETE /api/bucket/items/{id}", r.requireSession(r.bucket.DeleteItem))

	// Flights (session required; search is rate limited and bounded by a
	// deadline because it calls the upstream pricing API)
	searchLimit := middleware.SearchRateLimitMiddleware(middleware.DefaultRateLimitConfig())
	searchTimeout := middleware.Timeout(30 * time.Second)
	r.mux.Handle("GET /api/flights/search", searchLimit(searchTimeout(r.requireSession(r.flights.Search))))
	r.mux.HandleFunc("GET /api/flights", r.requireSession(r.flights.List))
	r.mux.HandleFunc("GET /api/flights/token", r.requireSession(r.flights.Token))
}

func (r *Router) buildMiddlewareChain(handler http.Handler, app *App) http.Handler {
	// Apply middleware in reverse order (last applied = first executed)
	handler = middleware.Recovery(handler)
	handler = middleware.Logger(handler)

	// Skip general rate limiting in debug mode for easier development
	if !app.Config.Debug {
		handler = middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig())(handler)
	}

	handler = middleware.RequestID(handler)
	handler = middleware.CORS(app.Config.CORSOrigin)(handler)

	return handler
}

// requireSession resolves the session cookie and injects the bucket id
// into the request context.
func (r *Router) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		cookie, err := req.Cookie("session")
		if err != nil {
			Unauthorized(w, req, "authentication required")
			return
		}

		bucketID, err := r.app.Sessions.Resolve(cookie.Value)
		if err != nil {
			Unauthorized(w, req, "invalid session")
			return
		}

		next(w, req.WithContext(ContextWithBucket(req.Context(), bucketID)))
	}
}

// Health check handlers

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (r *Router) handleReady(w http.ResponseWriter, req *http.Request) {
	if r.app.ping != nil {
		if err := r.app.ping(req.Context()); err != nil {
			WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not ready",
				"checks": map[string]string{
					"database": "unhealthy",
				},
			})
			return
		}
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"checks": map[string]string{
			"database": "healthy",
		},
	})
}
