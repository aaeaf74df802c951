package summary

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	rv "github.com/abhisek/reviewz/internal/review"
	"github.com/abhisek/reviewz/internal/router"
)

func testResult() Result {
	return Result{
		Deck: "Japanese N5",
		Outcome: rv.Outcome{
			Reason:   rv.UserExit,
			Reviewed: 14,
			ByEase:   map[int]int{1: 3, 3: 10, 4: 1},
			Duration: 15 * time.Minute,
		},
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testResult())
	if s.Title() != "Session Summary" {
		t.Errorf("Title = %q, want %q", s.Title(), "Session Summary")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New(testResult())
	view := s.View(80, 24)
	for _, want := range []string{"Japanese N5", "Duration: 15:00", "Cards reviewed: 14", "Again", "Easy"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryScreen_NothingReviewed(t *testing.T) {
	res := testResult()
	res.Outcome = rv.Outcome{Reason: rv.NoMoreCards}
	s := New(res)
	view := s.View(80, 24)
	if strings.Contains(view, "Answers") {
		t.Error("expected no ease breakdown when nothing was reviewed")
	}
	if !strings.Contains(s.Headline(), "finished this deck") {
		t.Errorf("Headline = %q", s.Headline())
	}
}

func TestSummaryScreen_FatalShowsError(t *testing.T) {
	res := testResult()
	res.Outcome.Reason = rv.Fatal
	res.Outcome.Err = &rv.SessionError{Op: "answer", CardID: 7, Err: errors.New("disk full")}
	s := New(res)
	view := s.View(80, 24)
	if !strings.Contains(view, "disk full") {
		t.Error("expected the error text in the view")
	}
}

func TestSummaryScreen_Navigation_Enter(t *testing.T) {
	s := New(testResult())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter (pop)")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestSummaryScreen_Navigation_Esc(t *testing.T) {
	s := New(testResult())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Error("expected a command on Esc (pop)")
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	s := New(testResult())
	hints := s.KeyHints()
	if len(hints) != 2 {
		t.Errorf("KeyHints length = %d, want 2", len(hints))
	}
}
