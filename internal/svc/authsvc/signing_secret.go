package authsvc

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkrupp/wtwr/internal/infra/logging"
)

// MinSigningSecretLength is the shortest accepted HS256 secret, in bytes.
const MinSigningSecretLength = 32

// ErrSigningSecretTooShort is returned for secrets below MinSigningSecretLength.
var ErrSigningSecretTooShort = fmt.Errorf("signing secret must be at least %d bytes", MinSigningSecretLength)

// ErrNoSigningSecret is returned when the signing secret is empty.
var ErrNoSigningSecret = errors.New("no signing secret")

// SigningSecret is the process-wide token signing key. It is immutable once
// constructed and never renders its value.
type SigningSecret struct {
	key []byte
}

var (
	_ fmt.Stringer   = SigningSecret{}
	_ slog.LogValuer = SigningSecret{}
)

// NewSigningSecret validates and copies secret.
func NewSigningSecret(secret string) (SigningSecret, error) {
	switch {
	case secret == "":
		return SigningSecret{}, ErrNoSigningSecret
	case len(secret) < MinSigningSecretLength:
		return SigningSecret{}, ErrSigningSecretTooShort
	}

	return SigningSecret{key: []byte(secret)}, nil
}

// UnmarshalText lets the secret be loaded directly from configuration.
func (s *SigningSecret) UnmarshalText(text []byte) error {
	secret, err := NewSigningSecret(string(text))
	if err != nil {
		return err
	}

	*s = secret

	return nil
}

// IsZero reports whether no secret has been set.
func (s SigningSecret) IsZero() bool {
	return len(s.key) == 0
}

func (s SigningSecret) String() string {
	return logging.RedactedValue
}

// GoString keeps %#v from printing the key.
func (s SigningSecret) GoString() string {
	return "authsvc.SigningSecret{" + logging.RedactedValue + "}"
}

// LogValue implements slog.LogValuer.
func (s SigningSecret) LogValue() slog.Value {
	return slog.StringValue(logging.RedactedValue)
}

func (s SigningSecret) bytes() []byte {
	return s.key
}
