package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reviewz.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaultsFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvPath, "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "deck.yaml", cfg.Deck.Path)
	assert.Equal(t, "ffplay", cfg.Media.Player)
	assert.Equal(t, []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}, cfg.Media.PlayerArgs)
	assert.Equal(t, "espeak", cfg.Media.Speech)
	assert.Equal(t, 300*time.Millisecond, cfg.Gesture.DoubleTapWindow)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
deck:
  path: /decks/capitals.yaml
media:
  player: mpv
  player_args: ["--no-video"]
gesture:
  min_distance: 6
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/decks/capitals.yaml", cfg.Deck.Path)
	assert.Equal(t, "mpv", cfg.Media.Player)
	assert.Equal(t, []string{"--no-video"}, cfg.Media.PlayerArgs)
	assert.Equal(t, 6.0, cfg.Gesture.MinDistance)
	assert.Equal(t, 10.0, cfg.Gesture.MinVelocity, "default kept")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "store:\n  path: /from/file.db\n")
	t.Setenv("REVIEWZ_DB", "/from/env.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env.db", cfg.Store.Path)
}

func TestLoadPathFromEnv(t *testing.T) {
	path := writeConfig(t, "deck:\n  path: env.yaml\n")
	t.Setenv(EnvPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env.yaml", cfg.Deck.Path)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		Log:     LogConfig{Level: "loud", Format: "xml"},
		Deck:    DeckConfig{Path: "deck.yaml"},
		Gesture: GestureConfig{MinDistance: 4, MinVelocity: -1, DoubleTapWindow: time.Second},
	}
	err := cfg.Validate()
	require.Error(t, err)

	var fields []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var ve *ValidationError
		require.True(t, errors.As(e, &ve))
		fields = append(fields, ve.Field)
	}
	assert.Equal(t, []string{"log.level", "log.format", "gesture.min_velocity"}, fields)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := writeConfig(t, "log:\n  level: loud\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}
