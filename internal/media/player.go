// Package media plays sound clips and speech by running external programs.
package media

import (
	"context"
	"log/slog"
	"os/exec"
	"slices"
	"sync"
	"time"

	"github.com/abhisek/reviewz/internal/sound"
)

// Config selects the external programs used for playback.
type Config struct {
	Player     string
	PlayerArgs []string
	Speech     string
	Voice      string
}

// DefaultConfig plays clips with ffplay and speaks with espeak.
func DefaultConfig() Config {
	return Config{
		Player:     "ffplay",
		PlayerArgs: []string{"-nodisp", "-autoexit", "-loglevel", "quiet"},
		Speech:     "espeak",
	}
}

type runFunc func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// New returns a CommandPlayer, or a NopPlayer when the player program cannot
// be found.
func New(cfg Config, log *slog.Logger) sound.Player {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Player == "" {
		return NopPlayer{}
	}
	if _, err := exec.LookPath(cfg.Player); err != nil {
		log.Warn("media player not found, audio disabled", "player", cfg.Player)
		return NopPlayer{}
	}
	return NewCommandPlayer(cfg, log)
}

// CommandPlayer plays the pending playlist one clip at a time in a
// background goroutine.
type CommandPlayer struct {
	cfg Config
	log *slog.Logger
	run runFunc

	mu      sync.Mutex
	pending []sound.Clip
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

var _ sound.Player = (*CommandPlayer)(nil)

// NewCommandPlayer creates a player for cfg.
func NewCommandPlayer(cfg Config, log *slog.Logger) *CommandPlayer {
	if log == nil {
		log = slog.Default()
	}
	return &CommandPlayer{cfg: cfg, log: log.With("component", "media"), run: runCommand}
}

// Enqueue adds clip to the pending playlist.
func (p *CommandPlayer) Enqueue(clip sound.Clip) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, clip)
}

// PlayAll stops whatever is playing and starts the pending playlist. The
// returned duration counts only clips whose length could be read.
func (p *CommandPlayer) PlayAll(ctx context.Context) (time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()

	clips := p.pending
	p.pending = nil
	if len(clips) == 0 {
		return 0, nil
	}

	var total time.Duration
	for _, c := range clips {
		if d, ok := Duration(c.Path); ok {
			total += d
		}
	}

	playCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for _, c := range clips {
			if playCtx.Err() != nil {
				return
			}
			args := append(slices.Clone(p.cfg.PlayerArgs), c.Path)
			if err := p.run(playCtx, p.cfg.Player, args...); err != nil && playCtx.Err() == nil {
				p.log.Warn("play clip failed", "clip", c.Name, "error", err)
			}
		}
	}()
	return total, nil
}

// StopAll stops playback and clears the playlist.
func (p *CommandPlayer) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.pending = nil
}

func (p *CommandPlayer) stopLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// Speak stops playback and synthesizes text with the speech program.
func (p *CommandPlayer) Speak(ctx context.Context, text, voice string) error {
	if p.cfg.Speech == "" || text == "" {
		return nil
	}
	if voice == "" {
		voice = p.cfg.Voice
	}
	var args []string
	if voice != "" {
		args = append(args, "-v", voice)
	}
	args = append(args, text)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	speakCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.run(speakCtx, p.cfg.Speech, args...); err != nil && speakCtx.Err() == nil {
			p.log.Warn("speech failed", "error", err)
		}
	}()
	return nil
}

// NopPlayer discards everything.
type NopPlayer struct{}

func (NopPlayer) Enqueue(sound.Clip)                              {}
func (NopPlayer) PlayAll(context.Context) (time.Duration, error) { return 0, nil }
func (NopPlayer) StopAll()                                       {}
func (NopPlayer) Speak(context.Context, string, string) error    { return nil }
