package authsvc_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/wtwr/internal/infra/config"
	"github.com/mkrupp/wtwr/internal/svc/authsvc"
)

type authEnv struct {
	config.EnvConfig

	Auth authsvc.AuthConfig `envPrefix:"AUTH_"`
}

const secretVar = "CFGTEST_AUTH_SIGNING_SECRET"

//nolint:paralleltest
func TestAuthConfig_FromEnv(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults and secret", func(t *testing.T) {
		t.Setenv(secretVar, testSecret)

		var cfg authEnv
		require.NoError(t, config.Parse(ctx, &cfg, "CFGTEST"))

		assert.False(t, cfg.Auth.SigningSecret.IsZero())
		assert.Equal(t, 168*time.Hour, cfg.Auth.TokenTTL)
		assert.Equal(t, 10, cfg.Auth.BcryptCost)
		assert.Equal(t, "wtwr", cfg.Auth.Issuer)

		_, stillSet := os.LookupEnv(secretVar)
		assert.False(t, stillSet, "secret must be removed from the environment")
	})

	t.Run("secret from parent namespace", func(t *testing.T) {
		t.Setenv(secretVar, testSecret)

		var cfg authEnv
		require.NoError(t, config.Parse(ctx, &cfg, "CFGTEST_API"))
		assert.False(t, cfg.Auth.SigningSecret.IsZero())

		_, stillSet := os.LookupEnv(secretVar)
		assert.False(t, stillSet, "secret must be removed from the environment")
	})

	t.Run("missing secret", func(t *testing.T) {
		var cfg authEnv
		err := config.Parse(ctx, &cfg, "CFGTEST")
		require.ErrorIs(t, err, config.ErrVarNotSet)
		assert.Contains(t, err.Error(), secretVar)
	})

	t.Run("short secret", func(t *testing.T) {
		t.Setenv(secretVar, "too-short")

		var cfg authEnv
		err := config.Parse(ctx, &cfg, "CFGTEST")
		require.Error(t, err)
		assert.Contains(t, err.Error(), authsvc.ErrSigningSecretTooShort.Error())
		assert.NotContains(t, err.Error(), "too-short")
	})
}
