package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "haulpass/pkg/domain-errors"
)

func setRequired(t *testing.T) {
	t.Setenv("API_ENDPOINT", "http://localhost:9000")
	t.Setenv("IDENTITY_PACKAGE_ID", "0xabc123")
	t.Setenv("VAULT_PASSWORD", "test-passphrase")
}

func TestFromEnv(t *testing.T) {
	t.Run("defaults applied when optionals are unset", func(t *testing.T) {
		setRequired(t)

		cfg, err := FromEnv()
		require.NoError(t, err)

		assert.Equal(t, ":3002", cfg.Addr)
		assert.Equal(t, ".", cfg.DataDir)
		assert.Equal(t, "http://localhost:9000", cfg.APIEndpoint)
		assert.Equal(t, "haulpass.audit", cfg.AuditTopic)
		assert.Empty(t, cfg.RedisURL)
	})

	t.Run("optionals override defaults", func(t *testing.T) {
		setRequired(t)
		t.Setenv("ADDR", ":9999")
		t.Setenv("DATA_DIR", "/var/lib/haulpass")
		t.Setenv("REDIS_URL", "redis://localhost:6379")

		cfg, err := FromEnv()
		require.NoError(t, err)

		assert.Equal(t, ":9999", cfg.Addr)
		assert.Equal(t, "/var/lib/haulpass", cfg.DataDir)
		assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	})

	t.Run("each missing required variable is a config error", func(t *testing.T) {
		for _, missing := range []string{"API_ENDPOINT", "IDENTITY_PACKAGE_ID", "VAULT_PASSWORD"} {
			t.Run(missing, func(t *testing.T) {
				setRequired(t)
				t.Setenv(missing, "")

				_, err := FromEnv()
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeConfig))
				assert.Contains(t, err.Error(), missing)
			})
		}
	})
}
