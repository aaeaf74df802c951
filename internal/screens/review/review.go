package review

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/abhisek/reviewz/internal/command"
	"github.com/abhisek/reviewz/internal/deck"
	"github.com/abhisek/reviewz/internal/eventloop"
	"github.com/abhisek/reviewz/internal/gesture"
	"github.com/abhisek/reviewz/internal/media"
	"github.com/abhisek/reviewz/internal/prefs"
	rv "github.com/abhisek/reviewz/internal/review"
	"github.com/abhisek/reviewz/internal/router"
	"github.com/abhisek/reviewz/internal/screen"
	"github.com/abhisek/reviewz/internal/screens/summary"
	"github.com/abhisek/reviewz/internal/sound"
	"github.com/abhisek/reviewz/internal/spacedrep"
	"github.com/abhisek/reviewz/internal/store"
	"github.com/abhisek/reviewz/internal/ui/cardview"
	"github.com/abhisek/reviewz/internal/ui/components"
	"github.com/abhisek/reviewz/internal/ui/layout"
)

// Deps are the collaborators a review session runs against.
type Deps struct {
	Deck    *deck.Collection
	States  store.ReviewStateRepo
	Events  store.EventRepo
	Prefs   prefs.Preferences
	Player  sound.Player
	Gesture gesture.Config
	Clock   clockwork.Clock
	Log     *slog.Logger
	// Editor opens a file in an external editor. nil runs $VISUAL or
	// $EDITOR.
	Editor func(path string) tea.Cmd
}

// ReviewScreen runs one review session. The engine's event loop is drained
// by Update, so engine state is only ever touched from the Bubble Tea
// goroutine.
type ReviewScreen struct {
	deps      Deps
	log       *slog.Logger
	clock     clockwork.Clock
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closed    bool
	sessionID string

	loop   *eventloop.Loop
	sched  *spacedrep.Scheduler
	engine *rv.Engine

	state      rv.State
	outcome    *rv.Outcome
	ended      *rv.Outcome
	labels     []string
	input      components.TextInput
	due, fresh int
	needCounts bool
	status     string
	holding    bool
	ptr        pointer
	card       cardArea
	errMsg     string
}

var _ screen.Screen = (*ReviewScreen)(nil)
var _ screen.KeyHintProvider = (*ReviewScreen)(nil)
var _ screen.HeaderProvider = (*ReviewScreen)(nil)
var _ rv.Listener = (*ReviewScreen)(nil)

// New creates a review screen for a fresh session.
func New(deps Deps) *ReviewScreen {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	if deps.Player == nil {
		deps.Player = media.NopPlayer{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &ReviewScreen{
		deps:      deps,
		log:       log.With("component", "review-screen"),
		clock:     clock,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		sessionID: uuid.New().String(),
		loop:      eventloop.New(eventloop.DefaultBacklog),
		input:     components.NewTextInput("Type your answer...", 120),
	}
	s.sched = spacedrep.NewScheduler(deps.Deck, deps.States, deps.Events, clock, s.sessionID, log)
	s.engine = rv.New(rv.Config{
		Prefs:   deps.Prefs,
		Gesture: deps.Gesture,
	}, rv.Deps{
		Scheduler: s.sched,
		Content:   deps.Deck,
		Player:    deps.Player,
		Surfaces:  cardview.Factory,
		Loop:      s.loop,
		Clock:     clock,
		Listener:  s,
		Log:       log,
	})
	s.engine.Gestures().SetHaptic(func() { s.holding = true })
	return s
}

func (s *ReviewScreen) Init() tea.Cmd {
	return tea.Batch(
		s.beginSession(),
		s.waitForTask(),
		tickCmd(),
		s.input.Init(),
	)
}

func (s *ReviewScreen) Title() string {
	return s.deps.Deck.Name()
}

// HandlesBack keeps Esc inside the session while it runs.
func (s *ReviewScreen) HandlesBack() bool {
	return s.errMsg == ""
}

// Close ends the session's background work and frees its surfaces.
func (s *ReviewScreen) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	close(s.done)
	s.engine.Close()
}

func (s *ReviewScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	}
	if s.state.ControlsBlocked {
		return []layout.KeyHint{{Key: "...", Description: "Saving"}}
	}
	switch s.state.Phase {
	case rv.QuestionShown:
		if s.typing() {
			return []layout.KeyHint{
				{Key: "Enter", Description: "Check"},
				{Key: "Ctrl+R", Description: "Replay"},
				{Key: "Esc", Description: "End"},
			}
		}
		return []layout.KeyHint{
			{Key: "Space", Description: "Show answer"},
			{Key: "R", Description: "Replay"},
			{Key: "E", Description: "Edit"},
			{Key: "Esc", Description: "End"},
		}
	case rv.AnswerShown:
		return []layout.KeyHint{
			{Key: "1-" + strconv.Itoa(s.state.Buttons), Description: "Grade"},
			{Key: "Space", Description: "Recommended"},
			{Key: "U", Description: "Undo"},
			{Key: "B", Description: "Bury"},
			{Key: "S", Description: "Suspend"},
			{Key: "Esc", Description: "End"},
		}
	}
	return nil
}

func (s *ReviewScreen) HeaderStats() []layout.HeaderStat {
	stats := []layout.HeaderStat{
		{Label: "Due", Value: strconv.Itoa(s.due)},
		{Label: "New", Value: strconv.Itoa(s.fresh)},
		{Label: "Done", Value: strconv.Itoa(s.engine.Reviewed())},
	}
	opts := s.deps.Deck.Options()
	if opts.ShowTimer && s.state.Card != nil {
		elapsed := s.engine.Elapsed()
		limit := s.state.Card.TimeLimit
		stats = append(stats, layout.HeaderStat{
			Label: "Time",
			Value: formatClock(elapsed),
			Warn:  limit > 0 && elapsed >= limit,
		})
	}
	return stats
}

func (s *ReviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loopTaskMsg:
		if s.closed {
			return s, nil
		}
		msg()
		// Tasks queued behind this one run now so the view renders once.
		s.loop.RunPending()
		return s, tea.Batch(s.waitForTask(), s.followUp())

	case sessionStartedMsg:
		if msg.Err != nil {
			s.log.Warn("record session start", "session", s.sessionID, "error", msg.Err)
		}
		if err := s.engine.Start(s.ctx); err != nil {
			s.errMsg = err.Error()
		}
		return s, s.followUp()

	case countsMsg:
		if msg.Err != nil {
			s.log.Warn("count remaining cards", "error", msg.Err)
			return s, nil
		}
		s.due, s.fresh = msg.Due, msg.New
		return s, nil

	case timerTickMsg:
		if s.closed || s.errMsg != "" {
			return s, nil
		}
		return s, tickCmd()

	case editorDoneMsg:
		return s, tea.Batch(s.handleEditorDone(msg), s.followUp())

	case tea.KeyMsg:
		cmd := s.handleKey(msg)
		return s, tea.Batch(cmd, s.followUp())

	case tea.MouseMsg:
		s.handleMouse(msg)
		return s, s.followUp()
	}

	// Forward anything else (cursor blink) to the input while typing.
	if s.typing() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// StateChanged keeps the screen's copy of the review state current.
func (s *ReviewScreen) StateChanged(st rv.State) {
	s.state = st
	switch st.Phase {
	case rv.QuestionShown:
		s.input.Reset()
		s.labels = nil
		s.needCounts = true
	case rv.AnswerShown:
		s.input.SetValue(st.TypedInput)
		s.input.Disable()
		s.labels = s.engine.Labels()
	}
}

// SessionEnded records the outcome; Update acts on it once the engine call
// that ended the session returns.
func (s *ReviewScreen) SessionEnded(o rv.Outcome) {
	s.outcome = &o
	s.ended = &o
}

func (s *ReviewScreen) typing() bool {
	return s.state.Phase == rv.QuestionShown &&
		!s.state.ControlsBlocked &&
		s.state.Spec.Expects() &&
		s.deps.Prefs.WriteAnswers
}

func (s *ReviewScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	if s.errMsg != "" {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}

	if s.typing() {
		switch key {
		case "enter":
			s.run(s.engine.ConfirmTypedInput(s.input.Value()))
			return nil
		case "esc":
			s.exec(command.Exit)
			return nil
		case "ctrl+r":
			s.exec(command.PlayMedia)
			return nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		s.run(s.engine.SetTypedInput(s.input.Value()))
		return cmd
	}

	switch key {
	case "space", "enter":
		if s.state.Phase == rv.AnswerShown {
			s.exec(command.Recommended)
		} else {
			s.exec(command.ShowAnswer)
		}
	case "1", "2", "3", "4":
		s.exec(command.Ease1 + command.Command(key[0]-'1'))
	case "r", "ctrl+r":
		s.exec(command.PlayMedia)
	case "u":
		s.exec(command.Undo)
	case "b":
		s.exec(command.Bury)
	case "s":
		s.exec(command.Suspend)
	case "e":
		s.exec(command.Edit)
	case "esc", "q":
		s.exec(command.Exit)
	}
	return nil
}

func (s *ReviewScreen) exec(cmd command.Command) {
	s.run(s.engine.ExecuteCommand(cmd))
}

// run reports an engine error in the status line. Input that simply does
// not apply right now is ignored.
func (s *ReviewScreen) run(err error) {
	switch {
	case err == nil:
		s.status = ""
	case errors.Is(err, rv.ErrControlsBlocked), errors.Is(err, rv.ErrWrongPhase):
		s.log.Debug("input ignored", "phase", s.state.Phase.String(), "error", err)
	case errors.Is(err, errors.ErrUnsupported):
		s.status = "Not supported by this scheduler"
	default:
		s.status = err.Error()
	}
}

func (s *ReviewScreen) followUp() tea.Cmd {
	var cmds []tea.Cmd
	if s.needCounts {
		s.needCounts = false
		cmds = append(cmds, s.loadCounts())
	}
	if s.ended != nil {
		o := *s.ended
		s.ended = nil
		cmds = append(cmds, s.finish(o))
	}
	return tea.Batch(cmds...)
}

// finish hands an edited card to the editor, or logs the session and
// replaces this screen with its summary.
func (s *ReviewScreen) finish(o rv.Outcome) tea.Cmd {
	if o.Reason == rv.Edit {
		return s.openEditor()
	}

	events, ctx, id := s.deps.Events, context.Background(), s.sessionID
	res := summary.Result{Deck: s.deps.Deck.Name(), Outcome: o}
	log := s.log
	return func() tea.Msg {
		if events != nil {
			err := events.AppendSessionEvent(ctx, store.SessionEventData{
				SessionID:     id,
				Action:        store.SessionActionEnd,
				Outcome:       o.Reason.String(),
				CardsReviewed: o.Reviewed,
				DurationSecs:  int(o.Duration.Seconds()),
			})
			if err != nil {
				log.Warn("record session end", "session", id, "error", err)
			}
		}
		return router.ReplaceScreenMsg{Screen: summary.New(res)}
	}
}

func (s *ReviewScreen) openEditor() tea.Cmd {
	path := s.deps.Deck.Path()
	if path == "" {
		return func() tea.Msg {
			return editorDoneMsg{Err: errors.New("deck was not loaded from a file")}
		}
	}
	open := s.deps.Editor
	if open == nil {
		open = systemEditor
	}
	s.log.Info("opening editor", "path", path)
	return open(path)
}

// handleEditorDone reloads the deck and puts the edited card back on
// screen.
func (s *ReviewScreen) handleEditorDone(msg editorDoneMsg) tea.Cmd {
	if s.outcome == nil || s.outcome.Reason != rv.Edit || s.outcome.Handoff == nil {
		return nil
	}
	h := *s.outcome.Handoff

	status := ""
	if msg.Err != nil {
		s.log.Warn("editor", "error", msg.Err)
		status = "Editor: " + msg.Err.Error()
	} else if err := s.deps.Deck.Reload(); err != nil {
		s.log.Warn("reload deck", "error", err)
		status = "Reload failed: " + err.Error()
	}
	if card, err := s.deps.Deck.Card(h.Card.ID); err == nil {
		h.Card = card
	}

	s.outcome = nil
	if err := s.engine.Resume(s.ctx, h); err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.status = status
	return nil
}

func systemEditor(path string) tea.Cmd {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}
	args := strings.Fields(editor)
	c := exec.Command(args[0], append(args[1:], path)...)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return editorDoneMsg{Err: err}
	})
}

func (s *ReviewScreen) beginSession() tea.Cmd {
	events, ctx, id := s.deps.Events, s.ctx, s.sessionID
	return func() tea.Msg {
		if events == nil {
			return sessionStartedMsg{}
		}
		err := events.AppendSessionEvent(ctx, store.SessionEventData{
			SessionID: id,
			Action:    store.SessionActionStart,
		})
		return sessionStartedMsg{Err: err}
	}
}

// waitForTask delivers the next event loop task as a message.
func (s *ReviewScreen) waitForTask() tea.Cmd {
	tasks, done := s.loop.C(), s.done
	return func() tea.Msg {
		select {
		case fn := <-tasks:
			return loopTaskMsg(fn)
		case <-done:
			return nil
		}
	}
}

func (s *ReviewScreen) loadCounts() tea.Cmd {
	sched, ctx := s.sched, s.ctx
	return func() tea.Msg {
		due, fresh, err := sched.Counts(ctx)
		return countsMsg{Due: due, New: fresh, Err: err}
	}
}

// tickCmd returns a 1-second tick command.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
