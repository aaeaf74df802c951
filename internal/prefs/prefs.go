// Package prefs reads the user's review preferences. Values are stored as
// strings keyed by name; anything missing or unparseable falls back to its
// default.
package prefs

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/abhisek/reviewz/internal/command"
	"github.com/abhisek/reviewz/internal/gesture"
	"github.com/abhisek/reviewz/internal/store"
)

// Store is a read-only source of preference values.
type Store interface {
	Get(key, def string) string
}

// MapStore is a snapshot of preference values.
type MapStore map[string]string

// Get returns the value for key, or def when unset.
func (m MapStore) Get(key, def string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}

// LoadMap snapshots every stored preference.
func LoadMap(ctx context.Context, repo store.PreferenceRepo) (MapStore, error) {
	all, err := repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	return MapStore(all), nil
}

// Preferences are the settings a review session runs with. AnswerDelay is
// how long a question stays up before its answer is shown automatically;
// QuestionDelay is how long an answer stays up before TimeoutQuestionAction
// runs.
type Preferences struct {
	WriteAnswers          bool
	TTS                   bool
	TTSVoice              string
	SafeDisplay           bool
	TimeoutAnswer         bool
	AnswerDelay           time.Duration
	QuestionDelay         time.Duration
	TimeoutQuestionAction command.Command
	CardZoom              int
	ImageZoom             int
	InvertedColors        bool
	CenterVertically      bool
	Gestures              bool
	Bindings              gesture.Bindings
}

// Preference keys.
const (
	KeyWriteAnswers           = "writeAnswers"
	KeyTTS                    = "tts"
	KeyTTSVoice               = "ttsVoice"
	KeySafeDisplay            = "safeDisplay"
	KeyTimeoutAnswer          = "timeoutAnswer"
	KeyTimeoutAnswerSeconds   = "timeoutAnswerSeconds"
	KeyTimeoutQuestionSeconds = "timeoutQuestionSeconds"
	KeyTimeoutQuestionAction  = "timeoutQuestionAction"
	KeyCardZoom               = "cardZoom"
	KeyImageZoom              = "imageZoom"
	KeyInvertedColors         = "invertedColors"
	KeyCenterVertically       = "centerVertically"
	KeyGestures               = "gestures"
)

type kind int

const (
	kindBool kind = iota
	kindInt
	kindString
	kindCommand
)

// Key describes one preference.
type Key struct {
	Name    string
	Default string
	Help    string
	kind    kind
}

var gestureKeys = map[gesture.Class]string{
	gesture.SwipeUp:    "gestureSwipeUp",
	gesture.SwipeDown:  "gestureSwipeDown",
	gesture.SwipeLeft:  "gestureSwipeLeft",
	gesture.SwipeRight: "gestureSwipeRight",
	gesture.DoubleTap:  "gestureDoubleTap",
	gesture.TapLeft:    "gestureTapLeft",
	gesture.TapRight:   "gestureTapRight",
	gesture.TapTop:     "gestureTapTop",
	gesture.TapBottom:  "gestureTapBottom",
	gesture.LongPress:  "gestureLongclick",
}

// Keys lists every known preference in display order.
var Keys = func() []Key {
	keys := []Key{
		{KeyWriteAnswers, "true", "show an input for typed-answer cards", kindBool},
		{KeyTTS, "false", "speak cards that have no recorded audio", kindBool},
		{KeyTTSVoice, "", "voice passed to the speech command", kindString},
		{KeySafeDisplay, "true", "present cards through a standby surface", kindBool},
		{KeyTimeoutAnswer, "false", "advance automatically", kindBool},
		{KeyTimeoutAnswerSeconds, "20", "seconds before the answer is shown", kindInt},
		{KeyTimeoutQuestionSeconds, "60", "seconds before the next question", kindInt},
		{KeyTimeoutQuestionAction, "ease1", "command run when the answer times out", kindCommand},
		{KeyCardZoom, "100", "card zoom percentage", kindInt},
		{KeyImageZoom, "100", "image zoom percentage", kindInt},
		{KeyInvertedColors, "false", "night mode", kindBool},
		{KeyCenterVertically, "false", "center card content vertically", kindBool},
		{KeyGestures, "true", "enable mouse gestures", kindBool},
	}
	defaults := gesture.DefaultBindings()
	for _, c := range gesture.Classes {
		keys = append(keys, Key{
			Name:    gestureKeys[c],
			Default: defaults.Command(c).String(),
			Help:    "command bound to " + c.String(),
			kind:    kindCommand,
		})
	}
	return keys
}()

// Lookup returns the description of a key.
func Lookup(name string) (Key, bool) {
	for _, k := range Keys {
		if k.Name == name {
			return k, true
		}
	}
	return Key{}, false
}

// Validate checks that value is acceptable for the named key.
func Validate(name, value string) error {
	k, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("unknown preference %q", name)
	}
	switch k.kind {
	case kindBool:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%s: %q is not a boolean", name, value)
		}
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%s: %q is not a non-negative integer", name, value)
		}
	case kindCommand:
		if _, ok := command.Lookup(value); !ok {
			return fmt.Errorf("%s: unknown command %q", name, value)
		}
	}
	return nil
}

// Load reads every preference from s.
func Load(s Store) Preferences {
	if s == nil {
		s = MapStore(nil)
	}
	p := Preferences{
		WriteAnswers:          getBool(s, KeyWriteAnswers),
		TTS:                   getBool(s, KeyTTS),
		TTSVoice:              get(s, KeyTTSVoice),
		SafeDisplay:           getBool(s, KeySafeDisplay),
		TimeoutAnswer:         getBool(s, KeyTimeoutAnswer),
		AnswerDelay:           time.Duration(getInt(s, KeyTimeoutAnswerSeconds)) * time.Second,
		QuestionDelay:         time.Duration(getInt(s, KeyTimeoutQuestionSeconds)) * time.Second,
		TimeoutQuestionAction: command.Parse(get(s, KeyTimeoutQuestionAction)),
		CardZoom:              getInt(s, KeyCardZoom),
		ImageZoom:             getInt(s, KeyImageZoom),
		InvertedColors:        getBool(s, KeyInvertedColors),
		CenterVertically:      getBool(s, KeyCenterVertically),
		Gestures:              getBool(s, KeyGestures),
		Bindings:              make(gesture.Bindings, len(gestureKeys)),
	}
	for c, key := range gestureKeys {
		p.Bindings[c] = command.Parse(get(s, key))
	}
	return p
}

// Defaults returns the preferences with nothing stored.
func Defaults() Preferences {
	return Load(nil)
}

func defaultOf(key string) string {
	k, _ := Lookup(key)
	return k.Default
}

func get(s Store, key string) string {
	return s.Get(key, defaultOf(key))
}

func getBool(s Store, key string) bool {
	v, err := strconv.ParseBool(get(s, key))
	if err != nil {
		v, _ = strconv.ParseBool(defaultOf(key))
	}
	return v
}

func getInt(s Store, key string) int {
	n, err := strconv.Atoi(get(s, key))
	if err != nil || n < 0 {
		n, _ = strconv.Atoi(defaultOf(key))
	}
	return n
}
