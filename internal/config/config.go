// Package config holds the process configuration: where the deck and
// database live, how logs are written and which programs play media.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvPath names the variable consulted for the config file when no explicit
// path is given.
const EnvPath = "REVIEWZ_CONFIG"

// DefaultPath is tried when neither a flag nor EnvPath names a file.
const DefaultPath = "./reviewz.yaml"

// Config is the root configuration.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Store   StoreConfig   `yaml:"store"`
	Deck    DeckConfig    `yaml:"deck"`
	Media   MediaConfig   `yaml:"media"`
	Gesture GestureConfig `yaml:"gesture"`
}

// LogConfig holds logging settings. An empty File means the default log
// file while the TUI runs and stderr otherwise.
type LogConfig struct {
	Level  string `yaml:"level"  env:"REVIEWZ_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"REVIEWZ_LOG_FORMAT" env-default:"text"`
	File   string `yaml:"file"   env:"REVIEWZ_LOG_FILE"`
}

// StoreConfig locates the sqlite database. An empty Path means the XDG
// default.
type StoreConfig struct {
	Path string `yaml:"path" env:"REVIEWZ_DB"`
}

// DeckConfig locates the deck file. MediaDir overrides the deck's own
// media_dir when set.
type DeckConfig struct {
	Path     string `yaml:"path"      env:"REVIEWZ_DECK" env-default:"deck.yaml"`
	MediaDir string `yaml:"media_dir" env:"REVIEWZ_MEDIA_DIR"`
}

// MediaConfig selects the external playback programs.
type MediaConfig struct {
	Player     string   `yaml:"player"      env:"REVIEWZ_MEDIA_PLAYER" env-default:"ffplay"`
	PlayerArgs []string `yaml:"player_args" env:"REVIEWZ_MEDIA_PLAYER_ARGS" env-separator:" " env-default:"-nodisp -autoexit -loglevel quiet"`
	Speech     string   `yaml:"speech"      env:"REVIEWZ_SPEECH"       env-default:"espeak"`
	Voice      string   `yaml:"voice"       env:"REVIEWZ_SPEECH_VOICE"`
}

// GestureConfig tunes pointer gesture recognition. Distances are in
// terminal cells.
type GestureConfig struct {
	MinDistance     float64       `yaml:"min_distance"      env:"REVIEWZ_GESTURE_MIN_DISTANCE"      env-default:"4"`
	MinVelocity     float64       `yaml:"min_velocity"      env:"REVIEWZ_GESTURE_MIN_VELOCITY"      env-default:"10"`
	DoubleTapWindow time.Duration `yaml:"double_tap_window" env:"REVIEWZ_GESTURE_DOUBLE_TAP_WINDOW" env-default:"300ms"`
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Load reads configuration from a YAML file and the environment. The file is
// path if non-empty, else $REVIEWZ_CONFIG, else ./reviewz.yaml when it
// exists. Without a file, configuration comes from the environment and
// defaults only. Environment values override the file.
func Load(path string) (*Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvPath)
		explicit = path != ""
	}
	if !explicit {
		path = DefaultPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(field, msg string) {
		errs = append(errs, &ValidationError{Field: field, Message: msg})
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		add("log.level", fmt.Sprintf("must be one of %s", strings.Join(logLevels, ", ")))
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		add("log.format", "must be text or json")
	}
	if strings.TrimSpace(c.Deck.Path) == "" {
		add("deck.path", "is required")
	}
	if c.Gesture.MinDistance <= 0 {
		add("gesture.min_distance", "must be positive")
	}
	if c.Gesture.MinVelocity <= 0 {
		add("gesture.min_velocity", "must be positive")
	}
	if c.Gesture.DoubleTapWindow <= 0 {
		add("gesture.double_tap_window", "must be positive")
	}
	return errors.Join(errs...)
}
