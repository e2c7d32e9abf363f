package api

import (
	"encoding/json"
	"net/http"

	"github.com/felixgeelhaar/wanderlist/internal/auth"
)

// AuthHandler handles registration, login and session introspection
type AuthHandler struct {
	authService  *auth.Service
	cookieName   string
	secureCookie bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieName:   "session",
		secureCookie: secureCookie,
	}
}

// CredentialsRequest is the request body for registration and login
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse is the response for an authenticated session
type SessionResponse struct {
	UserID   string `json:"user_id,omitempty"`
	BucketID string `json:"bucket_id"`
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, r, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		BadRequest(w, r, "username and password are required")
		return
	}

	result, err := h.authService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	h.setSessionCookie(w, result.Token)

	WriteJSON(w, http.StatusCreated, SessionResponse{
		UserID:   result.UserID.String(),
		BucketID: result.BucketID.String(),
	})
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, r, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		BadRequest(w, r, "username and password are required")
		return
	}

	result, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	h.setSessionCookie(w, result.Token)

	WriteJSON(w, http.StatusOK, SessionResponse{
		UserID:   result.UserID.String(),
		BucketID: result.BucketID.String(),
	})
}

// Session reports the bucket bound to the current session cookie
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	bucketID, ok := BucketFromContext(r.Context())
	if !ok {
		Unauthorized(w, r, "authentication required")
		return
	}

	WriteJSON(w, http.StatusOK, SessionResponse{
		BucketID: bucketID.String(),
	})
}

// Sessions have no expiry attribute, so no Max-Age on the cookie.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
