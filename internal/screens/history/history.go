package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/reviewz/internal/deck"
	"github.com/abhisek/reviewz/internal/markup"
	"github.com/abhisek/reviewz/internal/router"
	"github.com/abhisek/reviewz/internal/screen"
	"github.com/abhisek/reviewz/internal/store"
	"github.com/abhisek/reviewz/internal/ui/components"
	"github.com/abhisek/reviewz/internal/ui/layout"
	"github.com/abhisek/reviewz/internal/ui/theme"
)

// Limit is how many review events the screen loads.
const Limit = 100

type historyLoadedMsg struct {
	Events []store.ReviewEvent
	Err    error
}

// HistoryScreen lists the most recent review events, newest first.
type HistoryScreen struct {
	events   store.EventRepo
	deck     *deck.Collection
	rows     []store.ReviewEvent
	fronts   map[int64]string
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen. d is used to show each card's question
// and may be nil.
func New(events store.EventRepo, d *deck.Collection) *HistoryScreen {
	return &HistoryScreen{
		events:   events,
		deck:     d,
		fronts:   make(map[int64]string),
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	events := s.events
	return func() tea.Msg {
		if events == nil {
			return historyLoadedMsg{}
		}
		rows, err := events.RecentReviews(context.Background(), store.QueryOpts{Limit: Limit})
		return historyLoadedMsg{Events: rows, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.rows = msg.Events
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.rows)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

// front returns the first line of a card's question as plain text.
func (s *HistoryScreen) front(id int64) string {
	if f, ok := s.fronts[id]; ok {
		return f
	}
	f := fmt.Sprintf("card %d", id)
	if s.deck != nil {
		if card, err := s.deck.Card(id); err == nil {
			if q, err := s.deck.RenderQuestion(card); err == nil {
				if line, _, _ := strings.Cut(strings.TrimSpace(markup.Text(q)), "\n"); line != "" {
					f = line
				}
			}
		}
	}
	s.fronts[id] = f
	return f
}

// Outcome describes what happened to the card in one event.
func Outcome(ev store.ReviewEvent) string {
	switch ev.Kind {
	case store.ReviewKindAnswer:
		names := components.EaseNames(ev.Buttons)
		if ev.Ease >= 1 && ev.Ease <= len(names) {
			return names[ev.Ease-1]
		}
		return fmt.Sprintf("ease %d", ev.Ease)
	case store.ReviewKindUndo:
		return "Undone"
	case store.ReviewKindBury:
		return "Buried"
	case store.ReviewKindSuspend:
		return "Suspended"
	}
	return ev.Kind
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.rows) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No reviews yet. Start a session!")
	}

	frontWidth := max(10, min(40, width-40))

	var b strings.Builder
	b.WriteString("\n")

	prevSession := ""
	for i, ev := range s.rows {
		if ev.SessionID != prevSession {
			prevSession = ev.SessionID
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.TextDim).
					Render(ev.Timestamp.Local().Format("Jan 02, 2006 15:04"))))
			b.WriteString("\n")
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		front := s.front(ev.CardID)
		if r := []rune(front); len(r) > frontWidth {
			front = string(r[:frontWidth-1]) + "…"
		}

		outcome := lipgloss.NewStyle().Foreground(theme.TextDim).Render(Outcome(ev))
		if ev.Kind == store.ReviewKindAnswer {
			outcome = lipgloss.NewStyle().Foreground(theme.EaseColor(ev.Ease, ev.Buttons)).Render(Outcome(ev))
		}

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		line := style.Render(fmt.Sprintf("%s%s  %-*s", prefix,
			ev.Timestamp.Local().Format("15:04"), frontWidth, front)) + "  " + outcome
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, d := range details(ev) {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("    "+d)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func details(ev store.ReviewEvent) []string {
	out := []string{fmt.Sprintf("Time taken: %.1fs", float64(ev.TimeTakenMs)/1000)}
	if ev.TypedAnswer != "" {
		out = append(out, fmt.Sprintf("Typed: %q (%.0f%% match)", ev.TypedAnswer, ev.Similarity*100))
	}
	if ev.Kind == store.ReviewKindAnswer {
		out = append(out, fmt.Sprintf("Stage: %d → %d", ev.PrevStage, ev.NewStage))
	}
	return out
}
