package sound

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	pending  []Clip
	played   [][]Clip
	spoken   []string
	stops    int
	duration time.Duration
	playErr  error
}

func (f *fakePlayer) Enqueue(c Clip) { f.pending = append(f.pending, c) }

func (f *fakePlayer) PlayAll(context.Context) (time.Duration, error) {
	if f.playErr != nil {
		return 0, f.playErr
	}
	f.played = append(f.played, f.pending)
	d := time.Duration(len(f.pending)) * f.duration
	f.pending = nil
	return d, nil
}

func (f *fakePlayer) StopAll() {
	f.stops++
	f.pending = nil
}

func (f *fakePlayer) Speak(_ context.Context, text, _ string) error {
	f.spoken = append(f.spoken, text)
	return nil
}

func names(clips []Clip) []string {
	out := make([]string, 0, len(clips))
	for _, c := range clips {
		out = append(out, c.Name)
	}
	return out
}

func TestParseRefsKeepsDocumentOrder(t *testing.T) {
	refs := ParseRefs("a [sound:one.mp3] b [sound:two.ogg][sound:one.mp3] [sound:bad[x].mp3]")
	assert.Equal(t, []string{"one.mp3", "two.ogg", "one.mp3"}, refs)
}

func TestRemoveFrontSideAudio(t *testing.T) {
	q := "Q [sound:q.mp3]"
	a := "Q [sound:q.mp3]<hr id=answer>A [sound:a.mp3] again [sound:q.mp3]"

	got := RemoveFrontSideAudio(a, "{{FrontSide}}<hr id=answer>{{Back}}", q)
	assert.Equal(t, []string{"a.mp3", "q.mp3"}, ParseRefs(got))

	unchanged := RemoveFrontSideAudio(a, "{{Front}}<hr id=answer>{{Back}}", q)
	assert.Equal(t, a, unchanged)
}

func TestPureAnswer(t *testing.T) {
	assert.Equal(t, "back", PureAnswer("front<hr id=answer>back"))
	assert.Equal(t, "back", PureAnswer(`front<HR id="answer">back`))
	assert.Equal(t, "only", PureAnswer("only"))
}

func TestBuildQueueResolvesMediaDir(t *testing.T) {
	s := NewScheduler(&fakePlayer{}, "/media", nil)
	q := s.BuildQueue(Question, "[sound:q.mp3]")

	require.Len(t, q.Clips, 1)
	assert.Equal(t, "/media/q.mp3", q.Clips[0].Path)
	assert.True(t, s.HasAudio(Question))
	assert.False(t, s.HasAudio(Answer))
}

func TestCombinedQueueIsQuestionThenAnswer(t *testing.T) {
	s := NewScheduler(&fakePlayer{}, "", nil)
	s.BuildQueue(Question, "[sound:q1.mp3][sound:q2.mp3]")
	s.BuildQueue(Answer, "[sound:a.mp3]")

	assert.Equal(t, []string{"q1.mp3", "q2.mp3", "a.mp3"}, names(s.Queue(QuestionAndAnswer).Clips))

	s.BuildQueue(Answer, "[sound:b.mp3]")
	assert.Equal(t, []string{"q1.mp3", "q2.mp3", "b.mp3"}, names(s.Queue(QuestionAndAnswer).Clips))
}

func TestPlayDisplayedSide(t *testing.T) {
	p := &fakePlayer{duration: 2 * time.Second}
	s := NewScheduler(p, "", nil)
	s.BuildQueue(Question, "[sound:q.mp3]")

	res := s.Play(context.Background(), Request{Autoplay: true})
	assert.Equal(t, Question, res.Played)
	assert.True(t, res.Known)
	assert.Equal(t, 2*time.Second, res.Duration)
	require.Len(t, p.played, 1)
	assert.Equal(t, []string{"q.mp3"}, names(p.played[0]))
}

func TestPlayWithoutAutoplayDoesNothing(t *testing.T) {
	p := &fakePlayer{}
	s := NewScheduler(p, "", nil)
	s.BuildQueue(Question, "[sound:q.mp3]")

	res := s.Play(context.Background(), Request{})
	assert.Equal(t, 0, res.Clips)
	assert.Empty(t, p.played)
}

func TestReplayIncludesQuestionOnlyWhenAllConditionsHold(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		question string
		want     Side
	}{
		{"all conditions", Request{Replay: true, ReplayQuestion: true, AnswerShown: true}, "[sound:q.mp3]", QuestionAndAnswer},
		{"not a replay", Request{Autoplay: true, ReplayQuestion: true, AnswerShown: true}, "[sound:q.mp3]", Answer},
		{"option off", Request{Replay: true, AnswerShown: true}, "[sound:q.mp3]", Answer},
		{"question side", Request{Replay: true, ReplayQuestion: true}, "[sound:q.mp3]", Question},
		{"question silent", Request{Replay: true, ReplayQuestion: true, AnswerShown: true}, "no audio", Answer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(&fakePlayer{}, "", nil)
			s.BuildQueue(Question, tt.question)
			s.BuildQueue(Answer, "[sound:a.mp3]")

			res := s.Play(context.Background(), tt.req)
			assert.Equal(t, tt.want, res.Played)
		})
	}
}

func TestSpeechOnlyWhenDisplayedSideIsSilent(t *testing.T) {
	p := &fakePlayer{}
	s := NewScheduler(p, "", nil)
	s.BuildQueue(Question, "<b>Capital</b> of Japan?")
	s.BuildQueue(Answer, "Capital of Japan?<hr id=answer>[sound:a.mp3] Tokyo")

	res := s.Play(context.Background(), Request{Autoplay: true, Speak: true, QuestionContent: "<b>Capital</b> of Japan?"})
	assert.True(t, res.Speech)
	assert.False(t, res.Known)
	assert.Equal(t, []string{"Capital of Japan?"}, p.spoken)

	res = s.Play(context.Background(), Request{Autoplay: true, Speak: true, AnswerShown: true})
	assert.False(t, res.Speech)
	assert.True(t, res.Known)
	assert.Equal(t, Answer, res.Played)
}

func TestSpeechOnAnswerReadsPureAnswer(t *testing.T) {
	p := &fakePlayer{}
	s := NewScheduler(p, "", nil)

	s.Play(context.Background(), Request{
		Autoplay:        true,
		Speak:           true,
		AnswerShown:     true,
		QuestionContent: "Question",
		AnswerContent:   "Question<hr id=answer>Answer",
	})
	assert.Equal(t, []string{"Answer"}, p.spoken)

	p.spoken = nil
	s.Play(context.Background(), Request{
		Replay:          true,
		ReplayQuestion:  true,
		Speak:           true,
		AnswerShown:     true,
		QuestionContent: "Question",
		AnswerContent:   "Question<hr id=answer>Answer",
	})
	assert.Equal(t, []string{"Question", "Answer"}, p.spoken)
}

func TestPlayErrorMakesDurationUnknown(t *testing.T) {
	p := &fakePlayer{playErr: errors.New("no device")}
	s := NewScheduler(p, "", nil)
	s.BuildQueue(Question, "[sound:q.mp3]")

	res := s.Play(context.Background(), Request{Autoplay: true})
	assert.False(t, res.Known)
}
