package authsvc

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mkrupp/wtwr/internal/domain"
)

var (
	// ErrTokenMalformed is the rejection reason for tokens that cannot be
	// parsed or whose signature does not verify.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenExpired is the rejection reason for correctly signed tokens past
	// their expiry.
	ErrTokenExpired = errors.New("token expired")
)

//nolint:gochecknoglobals
var signingMethod = jwt.SigningMethodHS256

// TokenService issues and verifies stateless session tokens (HS256 JWTs).
type TokenService struct {
	secret SigningSecret
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService signing with secret. Tokens are valid
// for ttl after issue and carry issuer as their "iss" claim.
func NewTokenService(secret SigningSecret, issuer string, ttl time.Duration) (*TokenService, error) {
	if secret.IsZero() {
		return nil, ErrNoSigningSecret
	}

	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	return &TokenService{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock returns a copy of s that reads the time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	c := *s
	c.now = now

	return &c
}

// Issue signs a token for userID.
func (s *TokenService) Issue(userID string) (string, domain.AuthToken, error) {
	if userID == "" {
		return "", domain.AuthToken{}, errors.New("issue token: empty user id")
	}

	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.ttl)

	//nolint:exhaustruct
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.secret.bytes())
	if err != nil {
		return "", domain.AuthToken{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, domain.AuthToken{
		UserID:    userID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks the signature and expiry of token and returns its content.
// Every rejection is a KindUnauthorized error that also matches either
// ErrTokenExpired or ErrTokenMalformed.
func (s *TokenService) Verify(token string) (domain.AuthToken, error) {
	claims := &jwt.RegisteredClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret.bytes(), nil },
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.AuthToken{}, errors.Join(domain.ErrInvalidAuthToken, ErrTokenExpired, err)
		}

		return domain.AuthToken{}, errors.Join(domain.ErrInvalidAuthToken, ErrTokenMalformed, err)
	}

	if !parsed.Valid || claims.Subject == "" || claims.IssuedAt == nil {
		return domain.AuthToken{}, errors.Join(domain.ErrInvalidAuthToken, ErrTokenMalformed)
	}

	return domain.AuthToken{
		UserID:    claims.Subject,
		IssuedAt:  claims.IssuedAt.UTC(),
		ExpiresAt: claims.ExpiresAt.UTC(),
	}, nil
}
