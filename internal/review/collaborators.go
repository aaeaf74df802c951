package review

import (
	"context"
	"time"

	"github.com/abhisek/reviewz/internal/deck"
	"github.com/abhisek/reviewz/internal/typeans"
)

// Answer is what the engine submits when the user grades a card.
type Answer struct {
	Card       deck.Card
	Ease       int
	Buttons    int
	Typed      string
	Similarity float64
	TimeTaken  time.Duration
}

// Scheduler supplies cards and records grades. NextCard and Grade are
// called off the event loop and may block.
type Scheduler interface {
	// NextCard returns the current card, or nil when nothing is left.
	NextCard(ctx context.Context) (*deck.Card, error)
	// Grade records an answer and returns the next card, or nil.
	Grade(ctx context.Context, a Answer) (*deck.Card, error)
	// ButtonCount returns how many ease buttons card offers (2 to 4).
	ButtonCount(card deck.Card) int
	// NextIntervalLabel describes when card would be due after ease.
	NextIntervalLabel(card deck.Card, ease int) string
}

// Undoer is implemented by schedulers that can revert their last action.
type Undoer interface {
	Undo(ctx context.Context) (*deck.Card, error)
}

// Burier is implemented by schedulers that can postpone a card to a later
// session.
type Burier interface {
	Bury(ctx context.Context, card deck.Card) (*deck.Card, error)
}

// Suspender is implemented by schedulers that can take a card out of
// review.
type Suspender interface {
	Suspend(ctx context.Context, card deck.Card) (*deck.Card, error)
}

// ContentStore renders card content. Media references in the returned markup
// resolve under MediaDir.
type ContentStore interface {
	RenderQuestion(card deck.Card) (string, error)
	RenderAnswer(card deck.Card) (string, error)
	AnswerFormat(card deck.Card) string
	Field(card deck.Card, name string) (typeans.Field, bool)
	Options() deck.Options
	MediaDir() string
}
