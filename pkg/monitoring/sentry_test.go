package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/gin-blog/config"
)

func TestInitSentry_DisabledWithoutDSN(t *testing.T) {
	flush, err := InitSentry(config.SentryConfig{})
	require.NoError(t, err)
	assert.NotPanics(t, flush)
}

func TestInitSentry_BadDSN(t *testing.T) {
	_, err := InitSentry(config.SentryConfig{DSN: "::not a dsn::"})
	assert.Error(t, err)
}
