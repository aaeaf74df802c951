package review

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/reviewz/internal/deck"
	"github.com/abhisek/reviewz/internal/typeans"
)

// Phase is the engine's position in the review cycle.
type Phase int

const (
	Idle Phase = iota
	QuestionShown
	AnswerShown
	Grading
	// Advancing means a card fetch other than grading (undo, bury, suspend)
	// is outstanding.
	Advancing
	SessionEnded
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case QuestionShown:
		return "question"
	case AnswerShown:
		return "answer"
	case Grading:
		return "grading"
	case Advancing:
		return "advancing"
	case SessionEnded:
		return "ended"
	}
	return "unknown"
}

// State is a snapshot of the engine's review state.
type State struct {
	Phase           Phase
	Card            *deck.Card
	TypedInput      string
	ControlsBlocked bool
	Spec            typeans.Spec
	CardStart       time.Time
	// Buttons is the number of ease buttons the current card offers.
	Buttons int
}

// Reason says why a session ended.
type Reason int

const (
	NoMoreCards Reason = iota
	UserExit
	Fatal
	Edit
)

func (r Reason) String() string {
	switch r {
	case NoMoreCards:
		return "no more cards"
	case UserExit:
		return "exit"
	case Fatal:
		return "error"
	case Edit:
		return "edit"
	}
	return "unknown"
}

// Handoff carries the card being edited out of a session and back into it.
type Handoff struct {
	Card        deck.Card
	AnswerShown bool
	TypedInput  string
}

// Outcome is the result handed back to the caller when a session ends.
type Outcome struct {
	Reason Reason
	// Err is set for Fatal outcomes.
	Err error
	// Handoff is set for Edit outcomes.
	Handoff *Handoff

	Reviewed int
	ByEase   map[int]int
	Duration time.Duration
}

// SessionError is a collaborator failure that ended the session.
type SessionError struct {
	Op     string
	CardID int64
	Err    error
}

func (e *SessionError) Error() string {
	if e.CardID == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s card %d: %v", e.Op, e.CardID, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

var (
	// ErrControlsBlocked is returned for input that arrives while a
	// scheduler call is outstanding.
	ErrControlsBlocked = errors.New("controls blocked")
	// ErrWrongPhase is returned for input that does not apply to the
	// current phase.
	ErrWrongPhase = errors.New("not allowed in this phase")
	// ErrInvalidEase is returned for an ease the current card does not
	// offer.
	ErrInvalidEase = errors.New("invalid ease")
)

// Listener observes the engine. Both methods run on the event loop.
type Listener interface {
	StateChanged(s State)
	SessionEnded(o Outcome)
}

type nopListener struct{}

func (nopListener) StateChanged(State)   {}
func (nopListener) SessionEnded(Outcome) {}
