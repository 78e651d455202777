package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:8484", c.ServerURL)
}

func TestLoadConfig_FlagOverridesDefault(t *testing.T) {
	cfg := LoadConfig([]string{"-s", "https://auth.example.com"})

	require.NotNil(t, cfg)
	assert.Equal(t, "https://auth.example.com", cfg.ServerURL)
}

func TestLoadConfig_IgnoresSubcommandWords(t *testing.T) {
	cfg := LoadConfig([]string{"login", "-s", "https://auth.example.com"})

	assert.Equal(t, "https://auth.example.com", cfg.ServerURL)
}
