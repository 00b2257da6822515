package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "titles.db", cfg.DBPath)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.True(t, cfg.CustomTitleEnabled)
	assert.Equal(t, 16, cfg.MaxContentLength)
	assert.Equal(t, 12, cfg.MaxNameLength)
	assert.Equal(t, float64(1000), cfg.CustomPriceMoney)
	assert.Equal(t, float64(5000), cfg.DynamicPriceMoney)
	assert.Equal(t, 5, cfg.DynamicMaxContents)
	assert.Equal(t, time.Minute, cfg.SessionTimeout)
	assert.Equal(t, 3*time.Second, cfg.RotationInterval)
	assert.Equal(t, "[", cfg.DefaultBracketLeft)
	assert.Empty(t, cfg.EconomyURL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/other.db")
	t.Setenv("CUSTOM_TITLE_ENABLED", "false")
	t.Setenv("CUSTOM_TITLE_MAX_LENGTH", "24")
	t.Setenv("CUSTOM_TITLE_FORBIDDEN_WORDS", "foo, bar ,,baz")
	t.Setenv("CUSTOM_TITLE_SESSION_TIMEOUT", "90s")
	t.Setenv("DYNAMIC_TITLE_PRICE_MONEY", "2500.5")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.DBPath)
	assert.False(t, cfg.CustomTitleEnabled)
	assert.Equal(t, 24, cfg.MaxContentLength)
	assert.Equal(t, []string{"foo", "bar", "baz"}, cfg.ForbiddenWords)
	assert.Equal(t, 90*time.Second, cfg.SessionTimeout)
	assert.Equal(t, 2500.5, cfg.DynamicPriceMoney)
}

func TestMalformedEnvFallsBack(t *testing.T) {
	t.Setenv("CUSTOM_TITLE_MAX_LENGTH", "not-a-number")
	t.Setenv("CUSTOM_TITLE_SESSION_TIMEOUT", "soon")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.MaxContentLength)
	assert.Equal(t, time.Minute, cfg.SessionTimeout)
}

func TestContainsForbiddenWord(t *testing.T) {
	cfg := &Config{ForbiddenWords: []string{"badword", "WORSE"}}

	assert.True(t, cfg.ContainsForbiddenWord("badword"))
	assert.True(t, cfg.ContainsForbiddenWord("xxBaDwOrDxx"))
	assert.True(t, cfg.ContainsForbiddenWord("much worse here"))
	assert.False(t, cfg.ContainsForbiddenWord("fine"))
	assert.False(t, (&Config{}).ContainsForbiddenWord("anything"))
}
