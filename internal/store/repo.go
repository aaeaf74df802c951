package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// ReviewState is the persisted scheduling state of one card. Cards without
// a row are new.
type ReviewState struct {
	CardID       int64
	Queue        int
	Stage        int
	DueAt        time.Time
	LastReviewAt time.Time
	Reviews      int
	Lapses       int
	Suspended    bool
	BuriedUntil  time.Time
}

// ReviewStateRepo persists card scheduling state.
type ReviewStateRepo interface {
	// Get returns the state of a card, or ErrNotFound for new cards.
	Get(ctx context.Context, cardID int64) (*ReviewState, error)

	// Put inserts or replaces a card's state.
	Put(ctx context.Context, rs *ReviewState) error

	// Delete forgets a card's state, making it new again.
	Delete(ctx context.Context, cardID int64) error

	// All returns every stored state ordered by card id.
	All(ctx context.Context) ([]ReviewState, error)

	// Reset deletes all scheduling state.
	Reset(ctx context.Context) error
}

// Review event kinds.
const (
	ReviewKindAnswer  = "answer"
	ReviewKindUndo    = "undo"
	ReviewKindBury    = "bury"
	ReviewKindSuspend = "suspend"
)

// ReviewEventData captures one scheduling action on a card.
type ReviewEventData struct {
	SessionID   string
	CardID      int64
	Kind        string
	Ease        int
	Buttons     int
	TypedAnswer string
	Similarity  float64
	TimeTakenMs int64
	PrevStage   int
	NewStage    int
	Timestamp   time.Time // zero means now
}

// ReviewEvent is a stored ReviewEventData.
type ReviewEvent struct {
	ReviewEventData
	Sequence int64
}

// Session actions.
const (
	SessionActionStart = "start"
	SessionActionEnd   = "end"
)

// SessionEventData captures the start or end of a review session.
type SessionEventData struct {
	SessionID     string
	Action        string
	Outcome       string
	CardsReviewed int
	DurationSecs  int
	Timestamp     time.Time // zero means now
}

// ReviewStats summarizes the review log.
type ReviewStats struct {
	Answers      int
	ByEase       map[int]int
	Undone       int
	Buried       int
	Suspended    int
	Sessions     int
	AvgTimeTaken time.Duration
	LastReview   time.Time
}

// EventRepo provides append and query access to the review log.
type EventRepo interface {
	// AppendReviewEvent records a scheduling action on a card.
	AppendReviewEvent(ctx context.Context, data ReviewEventData) error

	// AppendSessionEvent records a session start or end.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// RecentReviews returns review events, newest first.
	RecentReviews(ctx context.Context, opts QueryOpts) ([]ReviewEvent, error)

	// ReviewStats aggregates the whole log.
	ReviewStats(ctx context.Context) (*ReviewStats, error)
}

// PreferenceRepo is a string key/value table of user preferences.
type PreferenceRepo interface {
	// All returns every stored preference.
	All(ctx context.Context) (map[string]string, error)

	// Get returns one preference, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a preference.
	Set(ctx context.Context, key, value string) error

	// Delete removes a preference so its default applies again.
	Delete(ctx context.Context, key string) error
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func stampOrNow(t time.Time) int64 {
	if t.IsZero() {
		return time.Now().UnixMilli()
	}
	return t.UnixMilli()
}
