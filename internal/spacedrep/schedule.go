package spacedrep

import "time"

// BaseIntervals defines the expanding interval schedule in days.
// Stage 0 = first review after a card leaves learning.
var BaseIntervals = []int{1, 3, 7, 14, 30, 60}

// MaxStage is the highest stage index in BaseIntervals.
const MaxStage = 5

// GraduationStage is the stage at which a card graduates.
// A card graduates after completing all 6 stages (0-5) successfully.
const GraduationStage = 6

// GraduatedIntervalDays is the review interval for graduated cards.
const GraduatedIntervalDays = 90

// RelearnDelay is how long a failed or new card waits before it is due
// again.
const RelearnDelay = 10 * time.Minute

// Rating is an answer button normalized across button counts.
type Rating int

const (
	RatingAgain Rating = iota
	RatingHard
	RatingGood
	RatingEasy
)

// RatingFor maps an ease button to a rating. Cards in learning show three
// buttons (Again, Good, Easy); review cards show four.
func RatingFor(ease, buttons int) Rating {
	if buttons == 3 {
		switch ease {
		case 1:
			return RatingAgain
		case 2:
			return RatingGood
		default:
			return RatingEasy
		}
	}
	switch ease {
	case 1:
		return RatingAgain
	case 2:
		return RatingHard
	case 3:
		return RatingGood
	default:
		return RatingEasy
	}
}

// IntervalDays returns the interval in days for a stage.
func IntervalDays(stage int) int {
	if stage >= GraduationStage {
		return GraduatedIntervalDays
	}
	if stage > MaxStage {
		stage = MaxStage
	}
	if stage < 0 {
		stage = 0
	}
	return BaseIntervals[stage]
}
