package spacedrep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/abhisek/reviewz/internal/deck"
	"github.com/abhisek/reviewz/internal/review"
	"github.com/abhisek/reviewz/internal/store"
)

// ErrNothingToUndo is returned by Undo when the session has no actions to
// revert.
var ErrNothingToUndo = errors.New("nothing to undo")

// CardSource supplies the cards a session draws from.
type CardSource interface {
	Cards() []deck.Card
	Options() deck.Options
}

var (
	_ review.Scheduler = (*Scheduler)(nil)
	_ review.Undoer    = (*Scheduler)(nil)
	_ review.Burier    = (*Scheduler)(nil)
	_ review.Suspender = (*Scheduler)(nil)
)

// Scheduler manages the session queue and spaced repetition state. Methods
// are safe to call from any goroutine.
type Scheduler struct {
	mu        sync.Mutex
	cards     CardSource
	repo      store.ReviewStateRepo
	events    store.EventRepo
	clock     clockwork.Clock
	sessionID string
	log       *slog.Logger

	loaded  bool
	byID    map[int64]deck.Card
	states  map[int64]*ReviewState
	queue   []int64
	history []undoEntry
}

type undoEntry struct {
	cardID int64
	prev   *ReviewState // nil when the card was new
	queue  []int64
}

// NewScheduler creates a scheduler for one review session. State is loaded
// from repo on first use. events may be nil.
func NewScheduler(cards CardSource, repo store.ReviewStateRepo, events store.EventRepo,
	clock clockwork.Clock, sessionID string, log *slog.Logger) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		cards:     cards,
		repo:      repo,
		events:    events,
		clock:     clock,
		sessionID: sessionID,
		log:       log.With("component", "spacedrep"),
	}
}

func (s *Scheduler) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	stored, err := s.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("load review states: %w", err)
	}
	s.states = make(map[int64]*ReviewState, len(stored))
	for i := range stored {
		s.states[stored[i].CardID] = fromStore(&stored[i])
	}
	s.byID = make(map[int64]deck.Card)
	cards := s.cards.Cards()
	for _, c := range cards {
		s.byID[c.ID] = c
	}
	s.queue = s.buildQueue(cards, s.cards.Options().NewPerSession, s.clock.Now())
	s.loaded = true
	return nil
}

// buildQueue orders due cards most overdue first, followed by up to
// newLimit new cards in deck order.
func (s *Scheduler) buildQueue(cards []deck.Card, newLimit int, now time.Time) []int64 {
	type dueCard struct {
		id      int64
		overdue float64
	}
	var (
		due   []dueCard
		fresh []int64
	)
	for _, c := range cards {
		rs := s.states[c.ID]
		if rs != nil && !rs.Available(now) {
			continue
		}
		if rs == nil || rs.Queue == deck.QueueNew {
			if len(fresh) < newLimit {
				fresh = append(fresh, c.ID)
			}
			continue
		}
		if rs.IsDue(now) {
			due = append(due, dueCard{id: c.ID, overdue: rs.OverdueDays(now)})
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].overdue != due[j].overdue {
			return due[i].overdue > due[j].overdue
		}
		return due[i].id < due[j].id
	})

	queue := make([]int64, 0, len(due)+len(fresh))
	for _, d := range due {
		queue = append(queue, d.id)
	}
	return append(queue, fresh...)
}

func (s *Scheduler) current() *deck.Card {
	if len(s.queue) == 0 {
		return nil
	}
	c := s.byID[s.queue[0]]
	c.Due = s.states[c.ID].Due()
	return &c
}

// NextCard returns the card at the head of the session queue.
func (s *Scheduler) NextCard(ctx context.Context) (*deck.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.current(), nil
}

// Grade records an answer for the current card. Again puts the card back at
// the end of the session queue.
func (s *Scheduler) Grade(ctx context.Context, a review.Answer) (*deck.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	id := a.Card.ID
	if len(s.queue) == 0 || s.queue[0] != id {
		return nil, fmt.Errorf("grade card %d: not the current card", id)
	}

	buttons := a.Buttons
	if buttons == 0 {
		buttons = s.buttonCount(id)
	}
	rating := RatingFor(a.Ease, buttons)
	prev := s.states[id]
	next := prev.Next(id, rating, s.clock.Now())
	if err := s.repo.Put(ctx, next.toStore()); err != nil {
		return nil, fmt.Errorf("grade card %d: %w", id, err)
	}

	s.pushHistory(id, prev)
	s.states[id] = next
	s.queue = s.queue[1:]
	if rating == RatingAgain {
		s.queue = append(s.queue, id)
	}

	prevStage := 0
	if prev != nil {
		prevStage = prev.Stage
	}
	s.record(ctx, store.ReviewEventData{
		CardID:      id,
		Kind:        store.ReviewKindAnswer,
		Ease:        a.Ease,
		Buttons:     buttons,
		TypedAnswer: a.Typed,
		Similarity:  a.Similarity,
		TimeTakenMs: a.TimeTaken.Milliseconds(),
		PrevStage:   prevStage,
		NewStage:    next.Stage,
	})
	s.log.Debug("graded", "card", id, "ease", a.Ease, "stage", next.Stage, "due", next.NextReviewDate)
	return s.current(), nil
}

// Undo reverts the most recent grade, bury or suspend and makes that card
// current again.
func (s *Scheduler) Undo(ctx context.Context) (*deck.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return nil, ErrNothingToUndo
	}
	entry := s.history[len(s.history)-1]

	if entry.prev == nil {
		if err := s.repo.Delete(ctx, entry.cardID); err != nil {
			return nil, fmt.Errorf("undo card %d: %w", entry.cardID, err)
		}
		delete(s.states, entry.cardID)
	} else {
		if err := s.repo.Put(ctx, entry.prev.toStore()); err != nil {
			return nil, fmt.Errorf("undo card %d: %w", entry.cardID, err)
		}
		s.states[entry.cardID] = entry.prev
	}
	s.history = s.history[:len(s.history)-1]
	s.queue = entry.queue

	s.record(ctx, store.ReviewEventData{CardID: entry.cardID, Kind: store.ReviewKindUndo})
	return s.current(), nil
}

// Bury hides card until the start of the next day.
func (s *Scheduler) Bury(ctx context.Context, card deck.Card) (*deck.Card, error) {
	return s.setAside(ctx, card, store.ReviewKindBury, func(rs *ReviewState, now time.Time) {
		y, m, d := now.Date()
		rs.BuriedUntil = time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	})
}

// Suspend removes card from review until it is unsuspended.
func (s *Scheduler) Suspend(ctx context.Context, card deck.Card) (*deck.Card, error) {
	return s.setAside(ctx, card, store.ReviewKindSuspend, func(rs *ReviewState, _ time.Time) {
		rs.Suspended = true
	})
}

func (s *Scheduler) setAside(ctx context.Context, card deck.Card, kind string, apply func(*ReviewState, time.Time)) (*deck.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	prev := s.states[card.ID]
	next := &ReviewState{CardID: card.ID, Queue: deck.QueueNew}
	if prev != nil {
		cp := *prev
		next = &cp
	}
	apply(next, s.clock.Now())
	if err := s.repo.Put(ctx, next.toStore()); err != nil {
		return nil, fmt.Errorf("%s card %d: %w", kind, card.ID, err)
	}

	s.pushHistory(card.ID, prev)
	s.states[card.ID] = next
	s.queue = slices.DeleteFunc(s.queue, func(id int64) bool { return id == card.ID })

	s.record(ctx, store.ReviewEventData{CardID: card.ID, Kind: kind})
	return s.current(), nil
}

func (s *Scheduler) pushHistory(id int64, prev *ReviewState) {
	var saved *ReviewState
	if prev != nil {
		cp := *prev
		saved = &cp
	}
	s.history = append(s.history, undoEntry{cardID: id, prev: saved, queue: slices.Clone(s.queue)})
}

func (s *Scheduler) record(ctx context.Context, data store.ReviewEventData) {
	if s.events == nil {
		return
	}
	data.SessionID = s.sessionID
	data.Timestamp = s.clock.Now()
	if err := s.events.AppendReviewEvent(ctx, data); err != nil {
		s.log.Warn("append review event failed", "card", data.CardID, "kind", data.Kind, "error", err)
	}
}

func (s *Scheduler) buttonCount(id int64) int {
	if rs := s.states[id]; rs != nil && rs.Queue == deck.QueueReview {
		return 4
	}
	return 3
}

// ButtonCount returns 4 for cards in review and 3 for new or learning cards.
func (s *Scheduler) ButtonCount(card deck.Card) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buttonCount(card.ID)
}

// NextIntervalLabel returns the interval card would get for ease, such as
// "<10m" or "3d".
func (s *Scheduler) NextIntervalLabel(card deck.Card, ease int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	next := s.states[card.ID].Next(card.ID, RatingFor(ease, s.buttonCount(card.ID)), now)
	return FormatInterval(next.NextReviewDate.Sub(now))
}

// Counts returns how many due and new cards remain in the session queue.
func (s *Scheduler) Counts(ctx context.Context) (due, fresh int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return 0, 0, err
	}
	seen := make(map[int64]bool, len(s.queue))
	for _, id := range s.queue {
		if seen[id] {
			continue
		}
		seen[id] = true
		if rs := s.states[id]; rs == nil || rs.Queue == deck.QueueNew {
			fresh++
		} else {
			due++
		}
	}
	return due, fresh, nil
}

// FormatInterval renders a scheduling interval compactly.
func FormatInterval(d time.Duration) string {
	switch {
	case d < time.Hour:
		m := int((d + time.Minute - 1) / time.Minute)
		if m < 1 {
			m = 1
		}
		return fmt.Sprintf("<%dm", m)
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	}
	days := int((d + 12*time.Hour) / (24 * time.Hour))
	switch {
	case days < 30:
		return fmt.Sprintf("%dd", days)
	case days < 365:
		return fmt.Sprintf("%dmo", days/30)
	}
	return fmt.Sprintf("%dy", days/365)
}
