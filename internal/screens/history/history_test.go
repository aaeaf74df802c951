package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/reviewz/internal/deck"
	"github.com/abhisek/reviewz/internal/router"
	"github.com/abhisek/reviewz/internal/store"
)

const historyDeck = `
name: Capitals
note_types:
  - name: Basic
    fields:
      - name: Front
      - name: Back
    templates:
      - name: Forward
        front: "{{Front}}"
        back: "{{Back}}"
notes:
  - id: 1
    type: Basic
    fields: {Front: "Capital of Japan?", Back: "Tokyo"}
`

func newHistory(t *testing.T) (*HistoryScreen, store.EventRepo) {
	t.Helper()
	dir := t.TempDir()
	d, err := deck.Parse([]byte(historyDeck), dir)
	require.NoError(t, err)
	st, err := store.Open(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(st.EventRepo(), d), st.EventRepo()
}

func TestHistory_Empty(t *testing.T) {
	s, _ := newHistory(t)
	assert.Contains(t, s.View(100, 30), "Loading history")

	s.Update(s.Init()())
	assert.Contains(t, s.View(100, 30), "No reviews yet")
}

func TestHistory_ListsNewestFirst(t *testing.T) {
	s, events := newHistory(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, events.AppendReviewEvent(ctx, store.ReviewEventData{
		SessionID: "s1", CardID: 1000, Kind: store.ReviewKindAnswer, Ease: 1, Buttons: 3,
		TypedAnswer: "Kyoto", Similarity: 0.4, TimeTakenMs: 2500, Timestamp: at,
	}))
	require.NoError(t, events.AppendReviewEvent(ctx, store.ReviewEventData{
		SessionID: "s1", CardID: 1000, Kind: store.ReviewKindUndo, Timestamp: at.Add(time.Second),
	}))

	s.Update(s.Init()())
	require.Len(t, s.rows, 2)
	assert.Equal(t, store.ReviewKindUndo, s.rows[0].Kind)

	view := s.View(100, 30)
	assert.Contains(t, view, "Capital of Japan?")
	assert.Contains(t, view, "Undone")
	assert.Contains(t, view, "Again")
	assert.NotContains(t, view, "Kyoto")

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	view = s.View(100, 30)
	assert.Contains(t, view, `Typed: "Kyoto" (40% match)`)
	assert.Contains(t, view, "Time taken: 2.5s")
}

func TestHistory_UnknownCard(t *testing.T) {
	s, _ := newHistory(t)
	assert.Equal(t, "card 42", s.front(42))
}

func TestHistory_Esc(t *testing.T) {
	s, _ := newHistory(t)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "Good", Outcome(store.ReviewEvent{ReviewEventData: store.ReviewEventData{
		Kind: store.ReviewKindAnswer, Ease: 2, Buttons: 3}}))
	assert.Equal(t, "Hard", Outcome(store.ReviewEvent{ReviewEventData: store.ReviewEventData{
		Kind: store.ReviewKindAnswer, Ease: 2, Buttons: 4}}))
	assert.Equal(t, "Buried", Outcome(store.ReviewEvent{ReviewEventData: store.ReviewEventData{
		Kind: store.ReviewKindBury}}))
}
