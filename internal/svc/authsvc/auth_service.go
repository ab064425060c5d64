package authsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkrupp/wtwr/internal/domain"
	"github.com/mkrupp/wtwr/internal/infra/logging"
	http_ "github.com/mkrupp/wtwr/internal/infra/transport/http"
	"github.com/mkrupp/wtwr/internal/repo/user"
)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// SigningSecret is the HS256 key for session tokens. It is removed from the
	// environment once read.
	SigningSecret SigningSecret `env:"SIGNING_SECRET,required,notEmpty,unset"`

	// TokenTTL is the validity window of session tokens
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"168h"` // 7d

	// BcryptCost is the work factor for new password hashes
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`

	// Issuer is written to and required in the "iss" claim
	Issuer string `env:"ISSUER" envDefault:"wtwr"`
}

// AuthService provides signup, login, token verification and profile access.
type AuthService struct {
	UserRepo user.Repository
	Hasher   *PasswordHasher
	Tokens   *TokenService
	Metrics  *AuthMetrics
	Log      logging.Logger

	// decoyHash is compared against on unknown emails so both login failure
	// paths spend one bcrypt comparison.
	decoyHash string
}

var _ http_.TokenVerifier = (*AuthService)(nil)

// NewAuthService creates a new AuthService. metrics may be nil.
func NewAuthService(userRepo user.Repository, cfg AuthConfig, metrics *AuthMetrics) (*AuthService, error) {
	tokens, err := NewTokenService(cfg.SigningSecret, cfg.Issuer, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("new token service: %w", err)
	}

	hasher := NewPasswordHasher(cfg.BcryptCost)

	decoyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("decoy hash: %w", err)
	}

	return &AuthService{
		UserRepo:  userRepo,
		Hasher:    hasher,
		Tokens:    tokens,
		Metrics:   metrics,
		Log:       logging.GetLogger("svc.authsvc.auth_service"),
		decoyHash: decoyHash,
	}, nil
}

// Signup registers a new user. The stored record holds only the password hash.
// Returns ErrUserAlreadyExists if the email is taken.
func (s *AuthService) Signup(ctx context.Context, req domain.SignupRequest) (_ *domain.User, err error) {
	log := s.Log

	defer func() {
		switch kind := domain.KindOf(err); {
		case err == nil:
			s.Metrics.signup(OutcomeSuccess)
			log.DebugContext(ctx, "user signed up")
		case kind == domain.KindConflict:
			s.Metrics.signup(OutcomeConflict)
			log.InfoContext(ctx, "signup rejected", "error", err)
		case kind == domain.KindBadRequest:
			s.Metrics.signup(OutcomeInvalid)
			log.DebugContext(ctx, "signup rejected", "error", err)
		default:
			s.Metrics.signup(OutcomeError)
			log.ErrorContext(ctx, "signup failed", "error", err)
		}
	}()

	email := domain.NormalizeEmail(req.Email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}

	if err := domain.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	profile := req.Profile()
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	passwordHash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.UserRepo.CreateUser(ctx, email, passwordHash, profile)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	log = log.With(logging.Group("user", "id", created.ID))

	return created, nil
}

// Login checks creds and issues a session token. Unknown emails and wrong
// passwords both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (_ string, err error) {
	log := s.Log

	defer func() {
		switch {
		case err == nil:
			s.Metrics.login(OutcomeSuccess)
			log.DebugContext(ctx, "login successful")
		case errors.Is(err, domain.ErrInvalidCredentials):
			s.Metrics.login(OutcomeInvalidCredentials)
			log.InfoContext(ctx, "login rejected", "error", err)
		case domain.KindOf(err) == domain.KindBadRequest:
			s.Metrics.login(OutcomeInvalid)
			log.DebugContext(ctx, "login rejected", "error", err)
		default:
			s.Metrics.login(OutcomeError)
			log.ErrorContext(ctx, "login failed", "error", err)
		}
	}()

	email := domain.NormalizeEmail(creds.Email)
	if email == "" {
		return "", domain.ErrNoEmail
	}

	if creds.Password == "" {
		return "", domain.ErrNoPassword
	}

	// No stored password can be longer
	if len(creds.Password) > domain.PasswordMaxBytes {
		return "", domain.ErrInvalidCredentials
	}

	// Authenticate user
	found, err := s.UserRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return "", fmt.Errorf("get user: %w", err)
		}

		if _, err := s.Hasher.Verify(creds.Password, s.decoyHash); err != nil {
			return "", fmt.Errorf("verify decoy: %w", err)
		}

		return "", domain.ErrInvalidCredentials
	}

	log = log.With(logging.Group("user", "id", found.ID))

	ok, err := s.Hasher.Verify(creds.Password, found.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("verify password: %w", err)
	} else if !ok {
		return "", domain.ErrInvalidCredentials
	}

	// Issue token
	signed, token, err := s.Tokens.Issue(found.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	log = log.With(logging.Group("token",
		"exp", token.ExpiresAt.Format(time.RFC3339),
		"iat", token.IssuedAt.Format(time.RFC3339),
	))

	return signed, nil
}

// VerifyToken implements http_.TokenVerifier. Tokens are checked on their
// own; the user record is not consulted.
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (_ domain.Principal, err error) {
	log := s.Log

	defer func() {
		switch {
		case err == nil:
			s.Metrics.tokenVerification(OutcomeSuccess)
			log.DebugContext(ctx, "token verified")
		case errors.Is(err, ErrTokenExpired):
			s.Metrics.tokenVerification(OutcomeExpired)
			log.DebugContext(ctx, "token rejected", "error", err)
		default:
			s.Metrics.tokenVerification(OutcomeMalformed)
			log.DebugContext(ctx, "token rejected", "error", err)
		}
	}()

	token, err := s.Tokens.Verify(tokenString)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("verify token: %w", err)
	}

	log = log.With(logging.Group("token",
		"sub", token.UserID,
		"exp", token.ExpiresAt.Format(time.RFC3339),
	))

	return domain.Principal{UserID: token.UserID}, nil
}

// CurrentUser returns the user principal acts as.
func (s *AuthService) CurrentUser(ctx context.Context, principal domain.Principal) (*domain.User, error) {
	found, err := s.UserRepo.GetUserByID(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return found, nil
}

// UpdateProfile changes principal's name and/or avatar. Credentials are
// not reachable from here.
func (s *AuthService) UpdateProfile(
	ctx context.Context,
	principal domain.Principal,
	update domain.ProfileUpdate,
) (_ *domain.User, err error) {
	log := s.Log.With(logging.Group("user", "id", principal.UserID))

	defer func() {
		if err != nil && domain.KindOf(err) == domain.KindInternal {
			log.ErrorContext(ctx, "update profile failed", "error", err)
		} else if err != nil {
			log.DebugContext(ctx, "update profile rejected", "error", err)
		} else {
			log.DebugContext(ctx, "profile updated")
		}
	}()

	if err := update.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.UserRepo.UpdateProfile(ctx, principal.UserID, update)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	return updated, nil
}
