package authsvc_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/wtwr/internal/domain"
	"github.com/mkrupp/wtwr/internal/svc/authsvc"
)

const testTTL = 7 * 24 * time.Hour

func newTokenService(t *testing.T, secret string, now time.Time) *authsvc.TokenService {
	t.Helper()

	signingSecret, err := authsvc.NewSigningSecret(secret)
	require.NoError(t, err)

	svc, err := authsvc.NewTokenService(signingSecret, "wtwr", testTTL)
	require.NoError(t, err)

	return svc.WithClock(func() time.Time { return now })
}

func requireRejected(t *testing.T, err error, reason error) {
	t.Helper()

	require.ErrorIs(t, err, reason)
	require.ErrorIs(t, err, domain.ErrInvalidAuthToken)
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
}

func TestNewTokenService(t *testing.T) {
	t.Parallel()

	_, err := authsvc.NewTokenService(authsvc.SigningSecret{}, "wtwr", testTTL)
	require.ErrorIs(t, err, authsvc.ErrNoSigningSecret)

	secret, err := authsvc.NewSigningSecret(testSecret)
	require.NoError(t, err)

	_, err = authsvc.NewTokenService(secret, "wtwr", 0)
	require.Error(t, err)
}

func TestTokenService_IssueVerify(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := newTokenService(t, testSecret, now)

	signed, issued, err := svc.Issue("user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", issued.UserID)
	assert.True(t, now.Equal(issued.IssuedAt))
	assert.True(t, now.Add(testTTL).Equal(issued.ExpiresAt))

	got, err := svc.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.True(t, issued.IssuedAt.Equal(got.IssuedAt))
	assert.True(t, issued.ExpiresAt.Equal(got.ExpiresAt))

	_, _, err = svc.Issue("")
	require.Error(t, err)
}

func TestTokenService_UniquePerIssue(t *testing.T) {
	t.Parallel()

	svc := newTokenService(t, testSecret, time.Now())

	first, _, err := svc.Issue("user-1")
	require.NoError(t, err)

	second, _, err := svc.Issue("user-1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestTokenService_Expiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	signed, _, err := newTokenService(t, testSecret, now).Issue("user-1")
	require.NoError(t, err)

	_, err = newTokenService(t, testSecret, now.Add(testTTL-time.Second)).Verify(signed)
	require.NoError(t, err, "valid until the last second")

	_, err = newTokenService(t, testSecret, now.Add(testTTL)).Verify(signed)
	requireRejected(t, err, authsvc.ErrTokenExpired)

	_, err = newTokenService(t, testSecret, now.Add(testTTL+time.Hour)).Verify(signed)
	requireRejected(t, err, authsvc.ErrTokenExpired)
}

func TestTokenService_Rejects(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc := newTokenService(t, testSecret, now)

	signed, _, err := svc.Issue("user-1")
	require.NoError(t, err)

	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)

	flipped := []byte(parts[2])
	if flipped[0] == 'A' {
		flipped[0] = 'B'
	} else {
		flipped[0] = 'A'
	}

	tamperedSig := parts[0] + "." + parts[1] + "." + string(flipped)

	// The final character of a 32-byte signature carries two unused bits.
	// Flipping one of them leaves the decoded bytes unchanged.
	const base64URL = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

	sig := []byte(parts[2])
	last := strings.IndexByte(base64URL, sig[len(sig)-1])
	require.GreaterOrEqual(t, last, 0)
	sig[len(sig)-1] = base64URL[last^1]
	tamperedTrailingBits := parts[0] + "." + parts[1] + "." + string(sig)
	require.NotEqual(t, signed, tamperedTrailingBits)

	otherSecret, _, err := newTokenService(t, strings.Repeat("z", 40), now).Issue("user-1")
	require.NoError(t, err)

	otherIssuer := sign(t, jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "someone-else",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})

	noExpiry := sign(t, jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:  "user-1",
		Issuer:   "wtwr",
		IssuedAt: jwt.NewNumericDate(now),
	})

	noSubject := sign(t, jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "wtwr",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})

	wrongAlg := sign(t, jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "wtwr",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})

	//nolint:exhaustruct
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "wtwr",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.token"},
		{name: "tampered signature", token: tamperedSig},
		{name: "tampered signature trailing bits", token: tamperedTrailingBits},
		{name: "tampered payload", token: parts[0] + "." + parts[1] + "x." + parts[2]},
		{name: "other secret", token: otherSecret},
		{name: "other issuer", token: otherIssuer},
		{name: "missing expiry", token: noExpiry},
		{name: "missing subject", token: noSubject},
		{name: "wrong algorithm", token: wrongAlg},
		{name: "alg none", token: unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.Verify(tt.token)
			requireRejected(t, err, authsvc.ErrTokenMalformed)
		})
	}
}

//nolint:exhaustruct
func sign(t *testing.T, method jwt.SigningMethod, claims jwt.RegisteredClaims) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	return signed
}
