// Package review runs a review session: it fetches cards from the
// scheduler, presents each question and answer, plays their audio, grades
// typed answers and reports the user's ease back to the scheduler.
//
// Every Engine method must be called from the event loop the engine was
// created with. Scheduler calls run on their own goroutines and report back
// by posting to that loop, so review state is never touched concurrently.
package review

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/abhisek/reviewz/internal/deck"
	"github.com/abhisek/reviewz/internal/eventloop"
	"github.com/abhisek/reviewz/internal/gesture"
	"github.com/abhisek/reviewz/internal/prefs"
	"github.com/abhisek/reviewz/internal/render"
	"github.com/abhisek/reviewz/internal/sound"
	"github.com/abhisek/reviewz/internal/timer"
	"github.com/abhisek/reviewz/internal/typeans"
)

// Auto-advance timer kinds.
const (
	KindShowAnswer timer.Kind = "show-answer"
	KindAutoAnswer timer.Kind = "auto-answer"
)

// Timer owners, one per phase that arms timers.
const (
	ownerQuestion timer.Owner = "question"
	ownerAnswer   timer.Owner = "answer"
)

// Config holds the per-session settings.
type Config struct {
	Prefs   prefs.Preferences
	Gesture gesture.Config
	// Template is the page template cards are rendered into. Empty means
	// render.DefaultTemplate.
	Template string
	ExtraCSS []string
}

// Deps are the collaborators an engine drives.
type Deps struct {
	Scheduler Scheduler
	Content   ContentStore
	Player    sound.Player
	Surfaces  render.SurfaceFactory
	Loop      *eventloop.Loop
	Clock     clockwork.Clock
	Listener  Listener
	Log       *slog.Logger
}

// Engine is the review state machine.
type Engine struct {
	prefs    prefs.Preferences
	extraCSS []string

	sched    Scheduler
	content  ContentStore
	loop     *eventloop.Loop
	clock    clockwork.Clock
	listener Listener
	log      *slog.Logger

	timers   *timer.Registry
	gestures *gesture.Dispatcher
	sounds   *sound.Scheduler
	renderer *render.Renderer
	buffer   *render.Buffer

	ctx   context.Context
	state State

	// Rendered content for the current card, and the marker-free text
	// speech reads.
	question string
	answer   string
	speakQ   string
	speakA   string
	lastPlay time.Duration
	pending  int
	started  time.Time
	reviewed int
	byEase   map[int]int
	outcome  *Outcome
}

// New creates an engine in the Idle phase.
func New(cfg Config, deps Deps) *Engine {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	listener := deps.Listener
	if listener == nil {
		listener = nopListener{}
	}

	e := &Engine{
		prefs:    cfg.Prefs,
		extraCSS: cfg.ExtraCSS,
		sched:    deps.Scheduler,
		content:  deps.Content,
		loop:     deps.Loop,
		clock:    clock,
		listener: listener,
		log:      log.With("component", "review"),
		renderer: render.NewRenderer(cfg.Template),
		buffer:   render.NewBuffer(deps.Surfaces, !cfg.Prefs.SafeDisplay),
		byEase:   make(map[int]int),
		ctx:      context.Background(),
	}
	e.timers = timer.New(clock, e.postTimer)
	e.gestures = gesture.New(cfg.Gesture, cfg.Prefs.Bindings, e.timers, clock, log)
	e.sounds = sound.NewScheduler(deps.Player, deps.Content.MediaDir(), log)
	return e
}

func (e *Engine) postTimer(f timer.Fired) {
	e.loop.Post(func() { e.handleTimer(f) })
}

// State returns a snapshot of the review state.
func (e *Engine) State() State {
	s := e.state
	if s.Card != nil {
		c := *s.Card
		s.Card = &c
	}
	return s
}

// Outcome returns how the session ended, or nil while it is running.
func (e *Engine) Outcome() *Outcome {
	return e.outcome
}

// Gestures returns the dispatcher so the surface can report its size and
// selection state.
func (e *Engine) Gestures() *gesture.Dispatcher {
	return e.gestures
}

// Timers returns the engine's timer registry.
func (e *Engine) Timers() *timer.Registry {
	return e.timers
}

// Surface returns the visible card surface.
func (e *Engine) Surface() render.Surface {
	return e.buffer.Active()
}

// Elapsed returns the time spent on the current card, frozen at the card's
// time limit.
func (e *Engine) Elapsed() time.Duration {
	if e.state.Card == nil {
		return 0
	}
	d := e.clock.Since(e.state.CardStart)
	if limit := e.state.Card.TimeLimit; limit > 0 && d > limit {
		return limit
	}
	return d
}

// Reviewed returns how many cards have been graded so far.
func (e *Engine) Reviewed() int {
	return e.reviewed
}

// Labels returns the next-interval label for every ease the current card
// offers, indexed from ease 1.
func (e *Engine) Labels() []string {
	if e.state.Card == nil {
		return nil
	}
	labels := make([]string, e.state.Buttons)
	for i := range labels {
		labels[i] = e.sched.NextIntervalLabel(*e.state.Card, i+1)
	}
	return labels
}

// Close releases the card surfaces.
func (e *Engine) Close() {
	e.timers.CancelAll()
	e.sounds.StopAll()
	e.buffer.Close()
}

// Start fetches the first card. ctx bounds every scheduler call the session
// makes.
func (e *Engine) Start(ctx context.Context) error {
	if e.state.Phase != Idle {
		return ErrWrongPhase
	}
	e.ctx = ctx
	e.started = e.clock.Now()
	e.state.ControlsBlocked = true
	e.notify()
	e.fetch("next card", 0, func(ctx context.Context) (*deck.Card, error) {
		return e.sched.NextCard(ctx)
	})
	return nil
}

// Resume re-enters a session that ended with an Edit handoff, showing the
// handed-back card on the side it left.
func (e *Engine) Resume(ctx context.Context, h Handoff) error {
	if e.outcome == nil || e.outcome.Reason != Edit {
		return ErrWrongPhase
	}
	e.ctx = ctx
	e.outcome = nil
	e.state.ControlsBlocked = false
	e.showQuestion(h.Card)
	if h.AnswerShown {
		e.state.TypedInput = h.TypedInput
		e.showAnswer()
	}
	return nil
}

// SetTypedInput records the current contents of the typed-answer field.
func (e *Engine) SetTypedInput(text string) error {
	if e.state.Phase != QuestionShown {
		return ErrWrongPhase
	}
	e.state.TypedInput = text
	return nil
}

// ConfirmTypedInput finalizes the typed answer and shows the answer side.
func (e *Engine) ConfirmTypedInput(text string) error {
	if err := e.SetTypedInput(text); err != nil {
		return err
	}
	return e.Flip()
}

// Flip shows the answer side.
func (e *Engine) Flip() error {
	if e.state.ControlsBlocked {
		return ErrControlsBlocked
	}
	if e.state.Phase != QuestionShown {
		return ErrWrongPhase
	}
	e.showAnswer()
	return nil
}

// Answer grades the current card. At most one grade is ever outstanding:
// controls stay blocked until the scheduler reports back.
func (e *Engine) Answer(ease int) error {
	if e.state.ControlsBlocked {
		return ErrControlsBlocked
	}
	if e.state.Phase != AnswerShown {
		return ErrWrongPhase
	}
	if ease < 1 || ease > e.state.Buttons {
		return fmt.Errorf("%w: %d of %d buttons", ErrInvalidEase, ease, e.state.Buttons)
	}

	card := *e.state.Card
	a := Answer{
		Card:      card,
		Ease:      ease,
		Buttons:   e.state.Buttons,
		Typed:     e.state.TypedInput,
		TimeTaken: e.Elapsed(),
	}
	if e.state.Spec.Expects() {
		a.Similarity = typeans.Similarity(e.state.Spec.Expected, a.Typed)
	}

	e.timers.CancelOwner(ownerAnswer)
	e.sounds.StopAll()
	e.state.ControlsBlocked = true
	e.pending = ease
	e.setPhase(Grading)
	e.log.Info("grade submitted", "card", card.ID, "ease", ease, "buttons", a.Buttons,
		"time_taken", a.TimeTaken)

	e.fetch(opGrade, card.ID, func(ctx context.Context) (*deck.Card, error) {
		return e.sched.Grade(ctx, a)
	})
	return nil
}

// Replay plays the displayed side's audio again.
func (e *Engine) Replay() error {
	if e.state.Phase != QuestionShown && e.state.Phase != AnswerShown {
		return ErrWrongPhase
	}
	e.play(true)
	return nil
}

// Exit ends the session at the user's request.
func (e *Engine) Exit() error {
	if e.state.ControlsBlocked {
		return ErrControlsBlocked
	}
	if e.state.Phase == SessionEnded {
		return ErrWrongPhase
	}
	e.end(Outcome{Reason: UserExit})
	return nil
}

// HandleGesture classifies a pointer event and executes the command it is
// bound to.
func (e *Engine) HandleGesture(ev gesture.Event) error {
	if !e.prefs.Gestures {
		return nil
	}
	return e.ExecuteCommand(e.gestures.Classify(ev))
}

const opGrade = "grade"

// fetch runs call off the loop and delivers its card back onto it.
func (e *Engine) fetch(op string, cardID int64, call func(context.Context) (*deck.Card, error)) {
	ctx := e.ctx
	go func() {
		card, err := call(ctx)
		e.loop.Post(func() { e.fetched(op, cardID, card, err) })
	}()
}

func (e *Engine) fetched(op string, cardID int64, card *deck.Card, err error) {
	if e.state.Phase == SessionEnded {
		return
	}
	if err != nil {
		if op != opGrade && e.state.Phase == Advancing && e.state.Card != nil {
			// The card on screen is still current for the scheduler.
			e.log.Warn("card action failed", "op", op, "card", cardID, "error", err)
			e.state.ControlsBlocked = false
			e.showQuestion(*e.state.Card)
			return
		}
		e.log.Error("scheduler call failed", "op", op, "card", cardID, "error", err)
		e.end(Outcome{Reason: Fatal, Err: &SessionError{Op: op, CardID: cardID, Err: err}})
		return
	}

	if op == opGrade {
		e.reviewed++
		e.byEase[e.pending]++
		e.pending = 0
	}
	e.state.ControlsBlocked = false
	if card == nil {
		e.end(Outcome{Reason: NoMoreCards})
		return
	}
	e.showQuestion(*card)
}

func (e *Engine) showQuestion(card deck.Card) {
	e.timers.CancelOwner(ownerQuestion)
	e.timers.CancelOwner(ownerAnswer)
	e.gestures.Reset()

	e.state.Card = &card
	e.state.TypedInput = ""
	e.state.Buttons = e.sched.ButtonCount(card)
	e.state.CardStart = e.clock.Now()

	raw, err := e.content.RenderQuestion(card)
	if err != nil {
		e.log.Warn("render question", "card", card.ID, "error", err)
		raw = contentError(err)
	}
	e.state.Spec = typeans.Extract(raw, card.Ord, func(name string) (typeans.Field, bool) {
		return e.content.Field(card, name)
	})
	e.question = typeans.RenderQuestion(raw, e.state.Spec, e.prefs.WriteAnswers)
	e.speakQ = typeans.StripMarker(raw)
	e.answer, e.speakA = "", ""

	e.sounds.Reset()
	e.sounds.BuildQueue(sound.Question, e.question)
	e.present(e.question, false)
	e.setPhase(QuestionShown)
	e.play(false)

	if e.prefs.TimeoutAnswer {
		e.timers.Arm(KindShowAnswer, ownerQuestion, e.prefs.AnswerDelay+e.lastPlay)
	}
}

func (e *Engine) showAnswer() {
	e.timers.CancelOwner(ownerQuestion)
	card := *e.state.Card

	raw, err := e.content.RenderAnswer(card)
	if err != nil {
		e.log.Warn("render answer", "card", card.ID, "error", err)
		raw = contentError(err)
	}
	raw = sound.RemoveFrontSideAudio(raw, e.content.AnswerFormat(card), e.question)
	e.answer = typeans.RenderAnswer(raw, e.state.Spec, e.state.TypedInput, e.prefs.WriteAnswers)
	e.speakA = typeans.StripMarker(raw)

	e.sounds.BuildQueue(sound.Answer, e.answer)
	e.present(e.answer, true)
	e.setPhase(AnswerShown)
	e.play(false)

	if e.prefs.TimeoutAnswer {
		e.timers.Arm(KindAutoAnswer, ownerAnswer, e.prefs.QuestionDelay+e.lastPlay)
	}
}

func contentError(err error) string {
	return `<div class="cardError">` + html.EscapeString(err.Error()) + `</div>`
}

func (e *Engine) present(content string, answer bool) {
	style := render.Style{
		CardZoom:  e.prefs.CardZoom,
		ImageZoom: e.prefs.ImageZoom,
		ExtraCSS:  e.extraCSS,
	}
	flags := render.Flags{
		Answer:           answer,
		Ord:              e.state.Card.Ord,
		NightMode:        e.prefs.InvertedColors,
		CenterVertically: e.prefs.CenterVertically,
	}
	if err := e.buffer.Present(e.renderer.Render(content, style, flags)); err != nil {
		e.log.Error("present card", "card", e.state.Card.ID, "error", err)
	}
}

func (e *Engine) play(replay bool) {
	opts := e.content.Options()
	res := e.sounds.Play(e.ctx, sound.Request{
		AnswerShown:     e.state.Phase == AnswerShown,
		Replay:          replay,
		ReplayQuestion:  opts.ReplayQuestion,
		Autoplay:        opts.Autoplay,
		Speak:           e.prefs.TTS,
		Voice:           e.prefs.TTSVoice,
		QuestionContent: e.speakQ,
		AnswerContent:   e.speakA,
	})
	e.lastPlay = 0
	if res.Known {
		e.lastPlay = res.Duration
	}
}

func (e *Engine) handleTimer(f timer.Fired) {
	if !e.timers.Claim(f) {
		e.log.Debug("stale timer dropped", "kind", f.Kind, "token", f.Token)
		return
	}
	if gesture.Owns(f.Kind) {
		if err := e.ExecuteCommand(e.gestures.OnTimer(f.Kind)); err != nil {
			e.log.Debug("gesture command refused", "error", err)
		}
		return
	}

	switch f.Kind {
	case KindShowAnswer:
		if e.state.Phase == QuestionShown && !e.state.ControlsBlocked {
			e.showAnswer()
		}
	case KindAutoAnswer:
		if e.state.Phase == AnswerShown {
			if err := e.ExecuteCommand(e.prefs.TimeoutQuestionAction); err != nil {
				e.log.Warn("auto-advance command refused", "command", e.prefs.TimeoutQuestionAction.String(), "error", err)
			}
		}
	}
}

// setPhase enters p. Gesture timers belong to the phase that armed them,
// so a tap or press left pending on one side never completes on the next.
func (e *Engine) setPhase(p Phase) {
	if e.state.Phase != p {
		e.log.Debug("phase change", "from", e.state.Phase.String(), "to", p.String())
		e.gestures.Reset()
	}
	e.state.Phase = p
	e.notify()
}

func (e *Engine) notify() {
	e.listener.StateChanged(e.State())
}

// end cancels everything the session owns and reports the outcome. A fatal
// outcome leaves controls blocked.
func (e *Engine) end(o Outcome) {
	e.timers.CancelAll()
	e.sounds.StopAll()
	e.gestures.Reset()

	o.Reviewed = e.reviewed
	o.ByEase = make(map[int]int, len(e.byEase))
	for k, v := range e.byEase {
		o.ByEase[k] = v
	}
	if !e.started.IsZero() {
		o.Duration = e.clock.Since(e.started)
	}
	if o.Reason != Fatal {
		e.state.ControlsBlocked = false
	}
	e.outcome = &o

	e.setPhase(SessionEnded)
	e.log.Info("session ended", "reason", o.Reason.String(), "reviewed", o.Reviewed)
	e.listener.SessionEnded(o)
}
