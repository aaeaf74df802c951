// Package command defines the logical commands every input source resolves to.
package command

import (
	"strconv"
	"strings"
)

// Command is a logical review action. Keys, gestures, buttons and timers all
// resolve to one of these values.
type Command int

const (
	Nothing Command = iota
	ShowAnswer
	Ease1
	Ease2
	Ease3
	Ease4
	Recommended
	BetterThanRecommended
	Undo
	Edit
	Bury
	Suspend
	PlayMedia
	Exit
)

// Ease values as reported to the scheduler. They name button positions,
// not ratings: with four buttons EaseMid is Good, with three (Again, Good,
// Easy) it is Easy.
const (
	EaseAgain = 1
	EaseLow   = 2
	EaseMid   = 3
	EaseHigh  = 4
)

var names = map[Command]string{
	Nothing:               "nothing",
	ShowAnswer:            "show_answer",
	Ease1:                 "ease1",
	Ease2:                 "ease2",
	Ease3:                 "ease3",
	Ease4:                 "ease4",
	Recommended:           "recommended",
	BetterThanRecommended: "better_than_recommended",
	Undo:                  "undo",
	Edit:                  "edit",
	Bury:                  "bury",
	Suspend:               "suspend",
	PlayMedia:             "play_media",
	Exit:                  "exit",
}

// legacyCodes maps the numeric codes older preference files store.
var legacyCodes = map[int]Command{
	0:  Nothing,
	1:  ShowAnswer,
	2:  Ease1,
	3:  Ease2,
	4:  Ease3,
	5:  Ease4,
	6:  Recommended,
	7:  BetterThanRecommended,
	8:  Undo,
	9:  Edit,
	12: Bury,
	13: Suspend,
	16: PlayMedia,
	17: Exit,
}

func (c Command) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return "nothing"
}

// Parse resolves a command name or legacy numeric code. Anything it does not
// recognize resolves to Nothing.
func Parse(s string) Command {
	c, _ := Lookup(s)
	return c
}

// Lookup is Parse that also reports whether s was recognized.
func Lookup(s string) (Command, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if n, err := strconv.Atoi(s); err == nil {
		c, ok := legacyCodes[n]
		return c, ok
	}
	for c, name := range names {
		if name == s {
			return c, true
		}
	}
	return Nothing, false
}

// Ease returns the ease an answer command stands for, given the number of
// answer buttons the current card offers. ok is false for non-answer commands.
func (c Command) Ease(buttons int) (ease int, ok bool) {
	switch c {
	case Ease1, Ease2, Ease3, Ease4:
		return int(c-Ease1) + 1, true
	case Recommended:
		return RecommendedEase(buttons, false), true
	case BetterThanRecommended:
		return RecommendedEase(buttons, true), true
	}
	return 0, false
}

// IsAnswer reports whether c selects an ease.
func (c Command) IsAnswer() bool {
	_, ok := c.Ease(4)
	return ok
}

// RecommendedEase returns the ease a card with the given number of buttons
// recommends. better selects the next easier button.
func RecommendedEase(buttons int, better bool) int {
	switch buttons {
	case 2:
		return EaseLow
	case 3:
		if better {
			return EaseMid
		}
		return EaseLow
	default:
		if better {
			return EaseHigh
		}
		return EaseMid
	}
}
