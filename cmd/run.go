package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/reviewz/internal/app"
	"github.com/abhisek/reviewz/internal/config"
	"github.com/abhisek/reviewz/internal/deck"
	"github.com/abhisek/reviewz/internal/gesture"
	"github.com/abhisek/reviewz/internal/media"
	"github.com/abhisek/reviewz/internal/prefs"
	"github.com/abhisek/reviewz/internal/screen"
	"github.com/abhisek/reviewz/internal/screens/home"
	reviewscreen "github.com/abhisek/reviewz/internal/screens/review"
	"github.com/abhisek/reviewz/internal/store"
)

// env is everything a command needs: configuration, a logger, the open
// store and, when loaded, the deck.
type env struct {
	cfg   *config.Config
	log   *slog.Logger
	store *store.Store
	deck  *deck.Collection

	logCloser io.Closer
}

// openEnv loads configuration and opens the store. The TUI logs to a file
// so the alternate screen stays clean; other commands log to stderr.
func openEnv(cmd *cobra.Command, tui, withDeck bool) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Log
	if tui && logCfg.File == "" {
		if logCfg.File, err = app.DefaultLogFile(); err != nil {
			return nil, fmt.Errorf("resolve log file: %w", err)
		}
	}
	log, closer, err := app.NewLogger(logCfg)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: log, logCloser: closer}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	if e.store, err = store.Open(dbPath); err != nil {
		e.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	if withDeck {
		if e.deck, err = deck.Load(cfg.Deck.Path); err != nil {
			e.Close()
			return nil, fmt.Errorf("load deck: %w", err)
		}
		if cfg.Deck.MediaDir != "" {
			e.deck.SetMediaDir(cfg.Deck.MediaDir)
		}
		log.Debug("deck loaded", "path", cfg.Deck.Path, "cards", len(e.deck.Cards()))
	}
	return e, nil
}

// Close releases the store and the log file.
func (e *env) Close() error {
	var errs []error
	if e.store != nil {
		errs = append(errs, e.store.Close())
	}
	if e.logCloser != nil {
		errs = append(errs, e.logCloser.Close())
	}
	return errors.Join(errs...)
}

// preferences snapshots the stored preferences.
func (e *env) preferences(ctx context.Context) (prefs.Preferences, error) {
	m, err := prefs.LoadMap(ctx, e.store.PreferenceRepo())
	if err != nil {
		return prefs.Preferences{}, err
	}
	return prefs.Load(m), nil
}

func (e *env) gestureConfig() gesture.Config {
	g := gesture.DefaultConfig()
	g.MinDistance = e.cfg.Gesture.MinDistance
	g.MinVelocity = e.cfg.Gesture.MinVelocity
	g.DoubleTapWindow = e.cfg.Gesture.DoubleTapWindow
	return g
}

// runApp opens the store and deck, builds dependencies, and launches the
// TUI. With review set the session starts without the home screen.
func runApp(cmd *cobra.Command, review bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := openEnv(cmd, true, true)
	if err != nil {
		return err
	}
	defer e.Close()

	player := media.New(media.Config{
		Player:     e.cfg.Media.Player,
		PlayerArgs: e.cfg.Media.PlayerArgs,
		Speech:     e.cfg.Media.Speech,
		Voice:      e.cfg.Media.Voice,
	}, e.log)
	defer player.StopAll()

	// Preferences are read at the start of every session so edits made
	// with `reviewz prefs set` in another terminal apply to the next one.
	startReview := func() screen.Screen {
		p, err := e.preferences(ctx)
		if err != nil {
			e.log.Warn("load preferences, using defaults", "error", err)
			p = prefs.Defaults()
		}
		return reviewscreen.New(reviewscreen.Deps{
			Deck:    e.deck,
			States:  e.store.ReviewStateRepo(),
			Events:  e.store.EventRepo(),
			Prefs:   p,
			Player:  player,
			Gesture: e.gestureConfig(),
			Log:     e.log,
		})
	}

	var first screen.Screen
	if review {
		first = startReview()
	} else {
		first = home.New(home.Deps{
			Deck:        e.deck,
			States:      e.store.ReviewStateRepo(),
			Events:      e.store.EventRepo(),
			Log:         e.log,
			StartReview: startReview,
		})
	}

	e.log.Info("starting", "deck", e.deck.Name(), "review", review)
	return app.Run(app.Options{Home: first, Log: e.log})
}
