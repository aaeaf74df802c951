// Package sound decides what audio plays for each side of a card. It parses
// sound references out of rendered content, keeps one queue per side, and
// chooses between recorded clips and speech synthesis.
package sound

import (
	"context"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/abhisek/reviewz/internal/markup"
)

var refPattern = regexp.MustCompile(`\[sound:([^\[\]]*)\]`)

// Side selects a queue.
type Side int

const (
	Question Side = iota
	Answer
	QuestionAndAnswer
)

func (s Side) String() string {
	switch s {
	case Question:
		return "question"
	case Answer:
		return "answer"
	case QuestionAndAnswer:
		return "question+answer"
	}
	return "unknown"
}

// Clip is one audio file to play.
type Clip struct {
	Name string
	Path string
}

// Queue is an ordered list of clips for one side. Queues are rebuilt whenever
// content changes and never modified afterwards.
type Queue struct {
	Side  Side
	Clips []Clip
}

// Empty reports whether the queue has nothing to play.
func (q Queue) Empty() bool {
	return len(q.Clips) == 0
}

// Player is the media backend.
type Player interface {
	// Enqueue adds a clip to the pending playlist.
	Enqueue(clip Clip)
	// PlayAll starts the pending playlist without blocking and returns its
	// known total duration.
	PlayAll(ctx context.Context) (time.Duration, error)
	// StopAll stops playback and clears the playlist.
	StopAll()
	// Speak synthesizes text without blocking.
	Speak(ctx context.Context, text, voice string) error
}

// ParseRefs returns the sound references in content, in document order.
func ParseRefs(content string) []string {
	matches := refPattern.FindAllStringSubmatch(content, -1)
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, m[1])
	}
	return refs
}

// StripRefs removes every sound reference from content.
func StripRefs(content string) string {
	return refPattern.ReplaceAllString(content, "")
}

// RemoveFrontSideAudio drops audio the answer only carries because its
// template transcludes the question. The first occurrence of each question
// reference is removed from the answer, so audio repeated on purpose on the
// back still plays.
func RemoveFrontSideAudio(answer, answerFormat, question string) string {
	if !strings.Contains(answerFormat, "{{FrontSide}}") {
		return answer
	}
	for _, m := range refPattern.FindAllString(question, -1) {
		answer = strings.Replace(answer, m, "", 1)
	}
	return answer
}

// PureAnswer returns the part of an answer that follows the question, using
// the <hr id=answer> divider convention. Content without a divider is
// returned unchanged.
func PureAnswer(answer string) string {
	lower := strings.ToLower(answer)
	for _, divider := range []string{"<hr id=answer>", `<hr id="answer">`, "<hr id='answer'>"} {
		if i := strings.LastIndex(lower, divider); i >= 0 {
			return answer[i+len(divider):]
		}
	}
	return answer
}

// SpeechText converts rendered content into what should be spoken.
func SpeechText(content string) string {
	return strings.TrimSpace(markup.VisibleText(StripRefs(content)))
}

// Request describes one call to Play.
type Request struct {
	// AnswerShown is true while the answer side is displayed.
	AnswerShown bool
	// Replay is true for an explicit replay request.
	Replay bool
	// ReplayQuestion is the deck's "replay includes question" option.
	ReplayQuestion bool
	// Autoplay is the deck's automatic playback option.
	Autoplay bool
	// Speak enables speech for sides without recorded audio.
	Speak bool
	Voice string

	QuestionContent string
	AnswerContent   string
}

// Result reports what Play did.
type Result struct {
	Played   Side
	Clips    int
	Speech   bool
	Duration time.Duration
	// Known is false when the duration could not be determined, which is
	// always the case for speech.
	Known bool
}

// Scheduler owns the per-side queues for the current card.
type Scheduler struct {
	player   Player
	mediaDir string
	queues   map[Side]Queue
	log      *slog.Logger
}

// NewScheduler creates a scheduler that resolves clip names under mediaDir.
func NewScheduler(player Player, mediaDir string, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		player:   player,
		mediaDir: mediaDir,
		queues:   make(map[Side]Queue),
		log:      log.With("component", "sound"),
	}
}

// Reset drops every queue. Call it when a new card is shown.
func (s *Scheduler) Reset() {
	s.queues = make(map[Side]Queue)
}

// BuildQueue replaces the queue for side with the references found in
// content. The combined queue is rebuilt lazily from the two sides.
func (s *Scheduler) BuildQueue(side Side, content string) Queue {
	refs := ParseRefs(content)
	q := Queue{Side: side, Clips: make([]Clip, 0, len(refs))}
	for _, ref := range refs {
		q.Clips = append(q.Clips, Clip{Name: ref, Path: s.resolve(ref)})
	}
	s.queues[side] = q
	delete(s.queues, QuestionAndAnswer)
	return q
}

func (s *Scheduler) resolve(name string) string {
	if s.mediaDir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.mediaDir, name)
}

// Queue returns the queue for side.
func (s *Scheduler) Queue(side Side) Queue {
	if side == QuestionAndAnswer {
		return s.combined()
	}
	if q, ok := s.queues[side]; ok {
		return q
	}
	return Queue{Side: side}
}

func (s *Scheduler) combined() Queue {
	if q, ok := s.queues[QuestionAndAnswer]; ok {
		return q
	}
	q := Queue{Side: QuestionAndAnswer}
	q.Clips = append(q.Clips, s.Queue(Question).Clips...)
	q.Clips = append(q.Clips, s.Queue(Answer).Clips...)
	s.queues[QuestionAndAnswer] = q
	return q
}

// HasAudio reports whether side has recorded audio.
func (s *Scheduler) HasAudio(side Side) bool {
	return !s.Queue(side).Empty()
}

// Play starts playback for the displayed side.
//
// Speech is used only when enabled and the displayed side has no recorded
// audio. A replay while the answer is shown plays the question and the answer
// back to back when both sides have audio and the deck asks for the question
// to be included.
func (s *Scheduler) Play(ctx context.Context, req Request) Result {
	if !req.Autoplay && !req.Replay {
		return Result{Known: true}
	}
	if s.player == nil {
		return Result{Known: true}
	}

	displayed := Question
	if req.AnswerShown {
		displayed = Answer
	}

	if req.Speak && !s.HasAudio(displayed) {
		return s.speak(ctx, req, displayed)
	}

	side := displayed
	if req.Replay && req.ReplayQuestion && req.AnswerShown &&
		s.HasAudio(Question) && s.HasAudio(Answer) {
		side = QuestionAndAnswer
	}

	q := s.Queue(side)
	res := Result{Played: side, Clips: len(q.Clips), Known: true}
	if q.Empty() {
		return res
	}

	s.player.StopAll()
	for _, c := range q.Clips {
		s.player.Enqueue(c)
	}
	d, err := s.player.PlayAll(ctx)
	if err != nil {
		s.log.Warn("play queue", "side", side.String(), "error", err)
		return Result{Played: side, Known: false}
	}
	res.Duration = d
	s.log.Debug("playing", "side", side.String(), "clips", res.Clips, "duration", d)
	return res
}

func (s *Scheduler) speak(ctx context.Context, req Request, displayed Side) Result {
	s.player.StopAll()

	if !req.AnswerShown || (req.Replay && req.ReplayQuestion) {
		if text := SpeechText(req.QuestionContent); text != "" {
			if err := s.player.Speak(ctx, text, req.Voice); err != nil {
				s.log.Warn("speak question", "error", err)
			}
		}
	}
	if req.AnswerShown {
		if text := SpeechText(PureAnswer(req.AnswerContent)); text != "" {
			if err := s.player.Speak(ctx, text, req.Voice); err != nil {
				s.log.Warn("speak answer", "error", err)
			}
		}
	}
	return Result{Played: displayed, Speech: true, Known: false}
}

// StopAll stops whatever is playing.
func (s *Scheduler) StopAll() {
	if s.player != nil {
		s.player.StopAll()
	}
}
