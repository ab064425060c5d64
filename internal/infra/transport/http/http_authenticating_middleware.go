package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mkrupp/wtwr/internal/domain"
	"github.com/mkrupp/wtwr/internal/infra/logging"
)

// AuthorizationHeader carries the session token as "Bearer <token>".
const AuthorizationHeader = "Authorization"

const bearerScheme = "bearer"

// TokenVerifier resolves a session token to the identity it was issued for.
// Any rejection (malformed, forged, expired) is reported as an error.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (domain.Principal, error)
}

// AuthenticatedHandlerFunc is a handler that runs on behalf of a verified principal.
type AuthenticatedHandlerFunc func(w http.ResponseWriter, r *http.Request, principal domain.Principal)

// Authenticator gates handlers behind bearer-token authentication.
type Authenticator struct {
	verifier TokenVerifier
	log      logging.Logger
}

// NewAuthenticator creates an Authenticator backed by the given verifier.
func NewAuthenticator(verifier TokenVerifier) *Authenticator {
	return &Authenticator{
		verifier: verifier,
		log:      logging.GetLogger("infra.transport.http.authenticator"),
	}
}

// Require returns a handler that only calls next once the request's bearer
// token has been verified, passing the resolved principal explicitly.
// Missing and rejected tokens both get the same 401 response.
func (a *Authenticator) Require(next AuthenticatedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, err := BearerToken(r)
		if err != nil {
			a.log.DebugContext(ctx, "request without bearer token", "error", err)
			WriteError(w, err)

			return
		}

		principal, err := a.verifier.VerifyToken(ctx, token)
		if err != nil {
			if domain.KindOf(err) == domain.KindUnauthorized {
				a.log.DebugContext(ctx, "token rejected", "error", err)
				WriteError(w, domain.ErrInvalidAuthToken)
			} else {
				a.log.ErrorContext(ctx, "token verification failed", "error", err)
				WriteError(w, err)
			}

			return
		}

		next(w, r, principal)
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get(AuthorizationHeader))
	if header == "" {
		return "", domain.ErrNoAuthToken
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return "", errors.Join(domain.ErrNoAuthToken, errors.New("unsupported authorization scheme"))
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrNoAuthToken
	}

	return token, nil
}
