package home

import (
	"context"
	"log/slog"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/jonboulle/clockwork"

	"github.com/abhisek/reviewz/internal/deck"
	"github.com/abhisek/reviewz/internal/router"
	"github.com/abhisek/reviewz/internal/screen"
	"github.com/abhisek/reviewz/internal/screens/history"
	"github.com/abhisek/reviewz/internal/spacedrep"
	"github.com/abhisek/reviewz/internal/store"
	"github.com/abhisek/reviewz/internal/ui/components"
	"github.com/abhisek/reviewz/internal/ui/layout"
)

// Deps are what the home screen reads and launches.
type Deps struct {
	Deck   *deck.Collection
	States store.ReviewStateRepo
	Events store.EventRepo
	Clock  clockwork.Clock
	Log    *slog.Logger
	// StartReview builds the screen for a new review session.
	StartReview func() screen.Screen
}

type stats struct {
	loaded     bool
	due, fresh int
	history    *store.ReviewStats
}

type mediaResult struct {
	checked bool
	missing []deck.MissingMedia
	err     error
}

type statsMsg struct {
	Due, New int
	History  *store.ReviewStats
	Err      error
}

type mediaMsg struct {
	Missing []deck.MissingMedia
	Err     error
}

// HomeScreen shows the deck and its queue and starts review sessions.
type HomeScreen struct {
	deps       Deps
	log        *slog.Logger
	menu       components.Menu
	menuLabels []string
	stats      stats
	media      mediaResult
	checking   bool
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

const (
	itemReview = iota
	itemHistory
	itemMedia
	itemQuit
)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	h := &HomeScreen{
		deps:       deps,
		log:        log.With("component", "home"),
		menuLabels: []string{"START REVIEW", "HISTORY", "CHECK MEDIA", "QUIT"},
	}

	items := []components.MenuItem{
		{Label: h.menuLabels[itemReview], Action: h.startReview},
		{Label: h.menuLabels[itemHistory], Action: h.openHistory},
		{Label: h.menuLabels[itemMedia], Action: h.checkMedia},
		{Label: h.menuLabels[itemQuit], Action: func() tea.Cmd { return tea.Quit }},
	}
	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadStats()
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		if msg.Err != nil {
			h.log.Warn("load deck stats", "error", msg.Err)
		}
		h.stats = stats{loaded: msg.Err == nil, due: msg.Due, fresh: msg.New, history: msg.History}
		h.menu.Items[itemReview].Disabled = h.stats.loaded && h.stats.due+h.stats.fresh == 0
		if h.menu.Items[itemReview].Disabled && h.menu.Selected == itemReview {
			h.menu.Selected = itemHistory
		}
		return h, nil

	case mediaMsg:
		h.checking = false
		h.media = mediaResult{checked: true, missing: msg.Missing, err: msg.Err}
		return h, nil

	case router.ResumedMsg:
		return h, h.loadStats()
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) startReview() tea.Cmd {
	if h.deps.StartReview == nil {
		return nil
	}
	s := h.deps.StartReview()
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (h *HomeScreen) openHistory() tea.Cmd {
	s := history.New(h.deps.Events, h.deps.Deck)
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (h *HomeScreen) checkMedia() tea.Cmd {
	if h.checking || h.deps.Deck == nil {
		return nil
	}
	h.checking = true
	d := h.deps.Deck
	return func() tea.Msg {
		missing, err := d.CheckMedia(context.Background())
		return mediaMsg{Missing: missing, Err: err}
	}
}

// loadStats counts the queue with a throwaway scheduler so nothing is
// recorded.
func (h *HomeScreen) loadStats() tea.Cmd {
	d, states, events, clock, log := h.deps.Deck, h.deps.States, h.deps.Events, h.deps.Clock, h.log
	return func() tea.Msg {
		if d == nil || states == nil {
			return statsMsg{}
		}
		ctx := context.Background()
		sched := spacedrep.NewScheduler(d, states, nil, clock, "", log)
		due, fresh, err := sched.Counts(ctx)
		if err != nil {
			return statsMsg{Err: err}
		}
		msg := statsMsg{Due: due, New: fresh}
		if events != nil {
			if msg.History, err = events.ReviewStats(ctx); err != nil {
				log.Warn("load review stats", "error", err)
			}
		}
		return msg
	}
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompactHeight(height+layout.HeaderHeight+layout.FooterHeight) ||
		layout.IsCompactWidth(width)
	cw := contentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if h.deps.Deck != nil {
		sections = append(sections, renderDeckLine(h.deps.Deck.Name(), len(h.deps.Deck.Cards()), cw))
	}
	if !compact {
		sections = append(sections, renderMascotBox(variantFor(h.stats), cw))
	}
	sections = append(sections, renderStatsBar(h.stats, cw, compact))
	if !compact {
		sections = append(sections, renderHistory(h.stats, cw))
	}

	disabled := make(map[int]bool)
	for i, item := range h.menu.Items {
		disabled[i] = item.Disabled
	}
	labels := append([]string(nil), h.menuLabels...)
	if h.checking {
		labels[itemMedia] = "CHECKING..."
	}
	if compact {
		sections = append(sections, renderMenuCompact(labels, h.menu.Selected, cw, disabled))
	} else {
		sections = append(sections, renderMenu(labels, h.menu.Selected, cw, disabled))
	}
	if note := renderMediaNote(h.media, cw); note != "" {
		sections = append(sections, note)
	}

	return renderFrame(strings.Join(sections, "\n\n"), width, height)
}
