package domain

import "time"

var (
	// ErrNoAuthToken is returned when an authentication token is required but not provided.
	ErrNoAuthToken = NewError(KindUnauthorized, "Authorization required")
	// ErrInvalidAuthToken is the client-facing form of every token rejection.
	// Malformed and expired tokens are not told apart.
	ErrInvalidAuthToken = NewError(KindUnauthorized, "Authorization required")
)

// AuthToken is the decoded content of a verified session token.
type AuthToken struct {
	UserID    string    // Identifier of the authenticated user
	IssuedAt  time.Time // When the token was created
	ExpiresAt time.Time // When the token stops being accepted
}

// Principal is the authenticated identity a request acts as.
type Principal struct {
	UserID string
}

// AuthTokenResponse represents a response containing an authentication token.
type AuthTokenResponse struct {
	Token string `json:"token"`
}
