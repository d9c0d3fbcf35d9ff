package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acervohq/acervo-backend/pkg/config"
)

func TestOptionsFromConfig_URL(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		URL:      "redis://localhost:6379/2",
		PoolSize: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 20, opts.PoolSize)
}

func TestOptionsFromConfig_Address(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		Address:  "cache.internal:6380",
		Password: "s3cr3t",
		DB:       1,
	})
	require.NoError(t, err)

	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "s3cr3t", opts.Password)
	assert.Equal(t, 1, opts.DB)
}

func TestOptionsFromConfig_MissingTarget(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)
}

func TestKeyBuilders(t *testing.T) {
	c := &Client{}

	assert.Equal(t, "acervo:session:abc", c.SessionKey("abc"))
	assert.Equal(t, "acervo:lock:cron-leader", c.LockKey("cron-leader"))
}
