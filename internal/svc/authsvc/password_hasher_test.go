package authsvc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/wtwr/internal/svc/authsvc"
)

func TestNewPasswordHasher_Cost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cost int
		want int
	}{
		{cost: 0, want: bcrypt.DefaultCost},
		{cost: -1, want: bcrypt.DefaultCost},
		{cost: 1, want: bcrypt.MinCost},
		{cost: 12, want: 12},
		{cost: 99, want: bcrypt.MaxCost},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, authsvc.NewPasswordHasher(tt.cost).Cost(), "cost %d", tt.cost)
	}
}

func TestPasswordHasher(t *testing.T) {
	t.Parallel()

	hasher := authsvc.NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("secret1")
	require.NoError(t, err)

	second, err := hasher.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "hashes must be salted")
	assert.NotContains(t, first, "secret1")

	for _, hash := range []string{first, second} {
		ok, err := hasher.Verify("secret1", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := hasher.Verify("secret2", first)
	require.NoError(t, err, "a wrong password is not an error")
	assert.False(t, ok)

	ok, err = hasher.Verify("", first)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	t.Parallel()

	ok, err := authsvc.NewPasswordHasher(bcrypt.MinCost).Verify("secret1", "not-a-bcrypt-hash")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_TooLong(t *testing.T) {
	t.Parallel()

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}

	_, err := authsvc.NewPasswordHasher(bcrypt.MinCost).Hash(string(long))
	require.Error(t, err)
}
