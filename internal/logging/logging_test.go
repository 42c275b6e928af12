package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	logger, err := Setup(Config{Level: "warn"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestSetup_DefaultLevel(t *testing.T) {
	logger, err := Setup(Config{})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestSetup_InvalidLevel(t *testing.T) {
	_, err := Setup(Config{Level: "verbose"})
	require.Error(t, err)
}

func TestSetup_Pretty(t *testing.T) {
	logger, err := Setup(Config{Level: "debug", Pretty: true})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}
