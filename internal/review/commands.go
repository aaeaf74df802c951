package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/reviewz/internal/command"
	"github.com/abhisek/reviewz/internal/deck"
)

// ExecuteCommand is the single entry point for user intent. Keys, gestures,
// buttons and timers all resolve to a Command and arrive here. While a
// scheduler call is outstanding only Nothing and PlayMedia are accepted.
func (e *Engine) ExecuteCommand(cmd command.Command) error {
	if e.state.Phase == SessionEnded {
		return ErrWrongPhase
	}
	if e.state.ControlsBlocked && cmd != command.Nothing && cmd != command.PlayMedia {
		return ErrControlsBlocked
	}

	switch cmd {
	case command.Nothing:
		return nil
	case command.ShowAnswer:
		return e.Flip()
	case command.Ease1, command.Ease2, command.Ease3, command.Ease4,
		command.Recommended, command.BetterThanRecommended:
		switch e.state.Phase {
		case QuestionShown:
			return e.Flip()
		case AnswerShown:
			ease, _ := cmd.Ease(e.state.Buttons)
			return e.Answer(ease)
		}
		return ErrWrongPhase
	case command.PlayMedia:
		return e.Replay()
	case command.Undo:
		u, ok := e.sched.(Undoer)
		if !ok {
			return fmt.Errorf("undo: %w", errors.ErrUnsupported)
		}
		return e.advance("undo", func(ctx context.Context, _ deck.Card) (*deck.Card, error) {
			return u.Undo(ctx)
		})
	case command.Bury:
		b, ok := e.sched.(Burier)
		if !ok {
			return fmt.Errorf("bury: %w", errors.ErrUnsupported)
		}
		return e.advance("bury", b.Bury)
	case command.Suspend:
		s, ok := e.sched.(Suspender)
		if !ok {
			return fmt.Errorf("suspend: %w", errors.ErrUnsupported)
		}
		return e.advance("suspend", s.Suspend)
	case command.Edit:
		return e.handoff()
	case command.Exit:
		return e.Exit()
	}
	return fmt.Errorf("unknown command %d", cmd)
}

// advance hands the current card to a scheduler capability and shows
// whatever card it returns.
func (e *Engine) advance(op string, call func(context.Context, deck.Card) (*deck.Card, error)) error {
	if e.state.Phase != QuestionShown && e.state.Phase != AnswerShown {
		return ErrWrongPhase
	}
	card := *e.state.Card

	e.timers.CancelOwner(ownerQuestion)
	e.timers.CancelOwner(ownerAnswer)
	e.sounds.StopAll()
	e.state.ControlsBlocked = true
	e.setPhase(Advancing)
	e.log.Info("card action", "op", op, "card", card.ID)

	e.fetch(op, card.ID, func(ctx context.Context) (*deck.Card, error) {
		return call(ctx, card)
	})
	return nil
}

// handoff ends the session so the caller can edit the current card. The
// card travels in the outcome and comes back through Resume.
func (e *Engine) handoff() error {
	if e.state.Phase != QuestionShown && e.state.Phase != AnswerShown {
		return ErrWrongPhase
	}
	h := &Handoff{
		Card:        *e.state.Card,
		AnswerShown: e.state.Phase == AnswerShown,
		TypedInput:  e.state.TypedInput,
	}
	e.end(Outcome{Reason: Edit, Handoff: h})
	return nil
}
