package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	defaults(v)

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 5, cfg.MaxResults)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Empty(t, cfg.RedisAddr)
}

func TestFromViperRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"postgres without url", "DB_DRIVER", "postgres"},
		{"unknown driver", "DB_DRIVER", "mysql"},
		{"zero max results", "MATCH_MAX_RESULTS", 0},
		{"max results above ceiling", "MATCH_MAX_RESULTS", 21},
		{"zero concurrency", "OWNER_MATCH_CONCURRENCY", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := viper.New()
			defaults(v)
			v.Set(tc.key, tc.val)

			_, err := fromViper(v)
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MATCH_MAX_RESULTS", "6")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/kolimeet")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 6, cfg.MaxResults)
	assert.Equal(t, "postgres", cfg.DBDriver)
}
