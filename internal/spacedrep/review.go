package spacedrep

import (
	"time"

	"github.com/abhisek/reviewz/internal/deck"
	"github.com/abhisek/reviewz/internal/store"
)

// ReviewState holds the spaced repetition state for a single card.
type ReviewState struct {
	CardID         int64
	Queue          deck.QueueKind
	Stage          int
	NextReviewDate time.Time
	LastReviewDate time.Time
	Reviews        int
	Lapses         int
	Suspended      bool
	BuriedUntil    time.Time
}

// IsDue returns true if the card is due for review (at or past the review date).
func (rs *ReviewState) IsDue(now time.Time) bool {
	return !now.Before(rs.NextReviewDate)
}

// OverdueDays returns how many days past due the card is. Returns 0 if not yet due.
func (rs *ReviewState) OverdueDays(now time.Time) float64 {
	if now.Before(rs.NextReviewDate) {
		return 0
	}
	return now.Sub(rs.NextReviewDate).Hours() / 24.0
}

// Available reports whether the card may be shown at now.
func (rs *ReviewState) Available(now time.Time) bool {
	if rs.Suspended {
		return false
	}
	return !now.Before(rs.BuriedUntil)
}

// Graduated reports whether the card has completed every stage.
func (rs *ReviewState) Graduated() bool {
	return rs.Stage >= GraduationStage
}

// CurrentIntervalDays returns the current interval in days.
func (rs *ReviewState) CurrentIntervalDays() int {
	return IntervalDays(rs.Stage)
}

// Next returns the state after answering with rating at now. The receiver
// may be nil for a new card.
func (rs *ReviewState) Next(cardID int64, rating Rating, now time.Time) *ReviewState {
	next := ReviewState{CardID: cardID, Queue: deck.QueueNew}
	if rs != nil {
		next = *rs
	}
	wasReview := next.Queue == deck.QueueReview
	next.Reviews++
	next.LastReviewDate = now

	switch rating {
	case RatingAgain:
		if wasReview {
			next.Lapses++
		}
		next.Queue = deck.QueueLearning
		next.Stage = 0
		next.NextReviewDate = now.Add(RelearnDelay)
		return &next
	case RatingHard:
		if !wasReview {
			next.Queue = deck.QueueLearning
			next.NextReviewDate = now.Add(RelearnDelay)
			return &next
		}
	case RatingGood:
		if wasReview {
			next.Stage++
		} else {
			next.Stage = 0
		}
	case RatingEasy:
		if wasReview {
			next.Stage += 2
		} else {
			next.Stage = 1
		}
	}
	if next.Stage > GraduationStage {
		next.Stage = GraduationStage
	}
	next.Queue = deck.QueueReview
	next.NextReviewDate = now.AddDate(0, 0, next.CurrentIntervalDays())
	return &next
}

// Due converts the state into the card-facing due information.
func (rs *ReviewState) Due() deck.DueState {
	if rs == nil {
		return deck.DueState{Queue: deck.QueueNew}
	}
	d := deck.DueState{
		Queue:   rs.Queue,
		DueAt:   rs.NextReviewDate,
		Reviews: rs.Reviews,
	}
	if rs.Queue == deck.QueueReview {
		d.Interval = time.Duration(rs.CurrentIntervalDays()) * 24 * time.Hour
	}
	return d
}

func fromStore(s *store.ReviewState) *ReviewState {
	return &ReviewState{
		CardID:         s.CardID,
		Queue:          deck.QueueKind(s.Queue),
		Stage:          s.Stage,
		NextReviewDate: s.DueAt,
		LastReviewDate: s.LastReviewAt,
		Reviews:        s.Reviews,
		Lapses:         s.Lapses,
		Suspended:      s.Suspended,
		BuriedUntil:    s.BuriedUntil,
	}
}

func (rs *ReviewState) toStore() *store.ReviewState {
	return &store.ReviewState{
		CardID:       rs.CardID,
		Queue:        int(rs.Queue),
		Stage:        rs.Stage,
		DueAt:        rs.NextReviewDate,
		LastReviewAt: rs.LastReviewDate,
		Reviews:      rs.Reviews,
		Lapses:       rs.Lapses,
		Suspended:    rs.Suspended,
		BuriedUntil:  rs.BuriedUntil,
	}
}
