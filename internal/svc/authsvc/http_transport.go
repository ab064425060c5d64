package authsvc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mkrupp/wtwr/internal/domain"
	"github.com/mkrupp/wtwr/internal/infra/logging"
	http_ "github.com/mkrupp/wtwr/internal/infra/transport/http"
)

// HTTPTransport handles HTTP requests for signup, login and the caller's profile.
type HTTPTransport struct {
	authSvc *AuthService
	authn   *http_.Authenticator
	log     logging.Logger
	cfg     http_.HTTPTransportConfig
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport. authn gates the /users/me routes.
func NewHTTPTransport(
	authSvc *AuthService,
	authn *http_.Authenticator,
	cfg http_.HTTPTransportConfig,
) *HTTPTransport {
	return &HTTPTransport{
		authSvc: authSvc,
		authn:   authn,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
		cfg:     cfg,
	}
}

// Routes implements http_.HTTPTransport:
// - POST /signup: Register a new user
// - POST /login: Exchange credentials for a session token
// - GET /users/me: Current user
// - PATCH /users/me: Update the current user's name and avatar.
func (ht *HTTPTransport) Routes(rt *http_.Router) {
	rt.HandleFunc("POST /signup", ht.HandleSignup)
	rt.HandleFunc("POST /login", ht.HandleLogin)
	rt.HandleFunc("GET /users/me", ht.authn.Require(ht.HandleGetCurrentUser))
	rt.HandleFunc("PATCH /users/me", ht.authn.Require(ht.HandleUpdateProfile))
}

// HandleSignup processes user registration requests.
// Expects a JSON body: email, password, name, avatar.
func (ht *HTTPTransport) HandleSignup(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleSignup(w, r)
}

func (ht *HTTPTransport) handleSignup(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			http_.WriteError(w, err)
			log.DebugContext(ctx, "user signup failed", "error", err)
		} else {
			log.DebugContext(ctx, "user signed up")
		}
	}(r.Context())

	var req domain.SignupRequest
	if err := http_.DecodeJSON(w, r, ht.cfg.MaxBodyBytes, &req); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}

	created, err := ht.authSvc.Signup(r.Context(), req)
	if err != nil {
		return fmt.Errorf("signup: %w", err)
	}

	log = log.With(logging.Group("user", "id", created.ID))

	return http_.WriteJSON(w, http.StatusCreated, created)
}

// HandleLogin processes user login requests.
// Expects a JSON body: email, password.
// Returns a session token on success.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			http_.WriteError(w, err)
			log.DebugContext(ctx, "user login failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	var creds domain.Credentials
	if err := http_.DecodeJSON(w, r, ht.cfg.MaxBodyBytes, &creds); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}

	token, err := ht.authSvc.Login(r.Context(), creds)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, domain.AuthTokenResponse{Token: token})
}

// HandleGetCurrentUser returns the authenticated user.
func (ht *HTTPTransport) HandleGetCurrentUser(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	_ = ht.handleGetCurrentUser(w, r, principal)
}

func (ht *HTTPTransport) handleGetCurrentUser(
	w http.ResponseWriter,
	r *http.Request,
	principal domain.Principal,
) (err error) {
	log := ht.log.With(
		logging.Group("http", "method", r.Method, "url", r.URL.String()),
		logging.Group("user", "id", principal.UserID),
	)

	defer func(ctx context.Context) {
		if err != nil {
			http_.WriteError(w, err)
			log.DebugContext(ctx, "get current user failed", "error", err)
		}
	}(r.Context())

	current, err := ht.authSvc.CurrentUser(r.Context(), principal)
	if err != nil {
		return fmt.Errorf("current user: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, current)
}

// HandleUpdateProfile applies a partial profile update for the authenticated user.
// Expects a JSON body with name and/or avatar; other keys are ignored.
func (ht *HTTPTransport) HandleUpdateProfile(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	_ = ht.handleUpdateProfile(w, r, principal)
}

func (ht *HTTPTransport) handleUpdateProfile(
	w http.ResponseWriter,
	r *http.Request,
	principal domain.Principal,
) (err error) {
	log := ht.log.With(
		logging.Group("http", "method", r.Method, "url", r.URL.String()),
		logging.Group("user", "id", principal.UserID),
	)

	defer func(ctx context.Context) {
		if err != nil {
			http_.WriteError(w, err)
			log.DebugContext(ctx, "update profile failed", "error", err)
		} else {
			log.DebugContext(ctx, "profile updated")
		}
	}(r.Context())

	var update domain.ProfileUpdate
	if err := http_.DecodeJSON(w, r, ht.cfg.MaxBodyBytes, &update); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}

	updated, err := ht.authSvc.UpdateProfile(r.Context(), principal, update)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, updated)
}
