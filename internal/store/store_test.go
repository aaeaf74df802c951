package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpenTwiceKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.PreferenceRepo().Set(ctx, "tts", "true"); err != nil {
		t.Fatalf("set: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	v, err := s.PreferenceRepo().Get(ctx, "tts")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != "true" {
		t.Errorf("tts = %q, want %q", v, "true")
	}
}

func TestReviewStateRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.ReviewStateRepo()
	ctx := context.Background()

	_, err := repo.Get(ctx, 1000)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing: err = %v, want ErrNotFound", err)
	}

	due := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	want := ReviewState{
		CardID:       1000,
		Queue:        2,
		Stage:        3,
		DueAt:        due,
		LastReviewAt: due.AddDate(0, 0, -7),
		Reviews:      4,
		Lapses:       1,
		Suspended:    true,
	}
	if err := repo.Put(ctx, &want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := repo.Get(ctx, 1000)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.DueAt.Equal(want.DueAt) || !got.LastReviewAt.Equal(want.LastReviewAt) {
		t.Errorf("times = %v/%v, want %v/%v", got.DueAt, got.LastReviewAt, want.DueAt, want.LastReviewAt)
	}
	if got.Stage != 3 || got.Queue != 2 || got.Reviews != 4 || got.Lapses != 1 || !got.Suspended {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if !got.BuriedUntil.IsZero() {
		t.Errorf("BuriedUntil = %v, want zero", got.BuriedUntil)
	}

	// Put replaces.
	want.Stage = 4
	want.Suspended = false
	if err := repo.Put(ctx, &want); err != nil {
		t.Fatalf("put again: %v", err)
	}
	got, _ = repo.Get(ctx, 1000)
	if got.Stage != 4 || got.Suspended {
		t.Errorf("after replace got %+v", got)
	}
}

func TestReviewStateAllDeleteReset(t *testing.T) {
	s := openTestStore(t)
	repo := s.ReviewStateRepo()
	ctx := context.Background()

	for _, id := range []int64{3000, 1000, 2000} {
		if err := repo.Put(ctx, &ReviewState{CardID: id}); err != nil {
			t.Fatalf("put %d: %v", id, err)
		}
	}

	all, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 3 || all[0].CardID != 1000 || all[2].CardID != 3000 {
		t.Fatalf("all = %+v, want 3 states ordered by card id", all)
	}

	if err := repo.Delete(ctx, 2000); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, 2000); !errors.Is(err, ErrNotFound) {
		t.Errorf("get deleted: err = %v, want ErrNotFound", err)
	}

	if err := repo.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	all, _ = repo.All(ctx)
	if len(all) != 0 {
		t.Errorf("after reset len = %d, want 0", len(all))
	}
}

func TestSequenceIsSharedAcrossEventTables(t *testing.T) {
	s := openTestStore(t)
	events := s.EventRepo()
	ctx := context.Background()

	if err := events.AppendSessionEvent(ctx, SessionEventData{SessionID: "s1", Action: SessionActionStart}); err != nil {
		t.Fatalf("append session: %v", err)
	}
	for i := 0; i < 2; i++ {
		err := events.AppendReviewEvent(ctx, ReviewEventData{SessionID: "s1", CardID: 1000, Kind: ReviewKindAnswer, Ease: 3})
		if err != nil {
			t.Fatalf("append review: %v", err)
		}
	}

	got, err := events.RecentReviews(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Sequence != 3 || got[1].Sequence != 2 {
		t.Errorf("sequences = %d,%d, want 3,2", got[0].Sequence, got[1].Sequence)
	}
}

func TestRecentReviewsFilters(t *testing.T) {
	s := openTestStore(t)
	events := s.EventRepo()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := events.AppendReviewEvent(ctx, ReviewEventData{
			SessionID: "s",
			CardID:    int64(1000 + i),
			Kind:      ReviewKindAnswer,
			Ease:      3,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	tests := []struct {
		name string
		opts QueryOpts
		want []int64
	}{
		{"limit", QueryOpts{Limit: 2}, []int64{1004, 1003}},
		{"after", QueryOpts{After: 3}, []int64{1004, 1003}},
		{"before", QueryOpts{Before: 3}, []int64{1001, 1000}},
		{"time window", QueryOpts{From: base.Add(time.Hour), To: base.Add(2 * time.Hour)}, []int64{1002, 1001}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := events.RecentReviews(ctx, tt.opts)
			if err != nil {
				t.Fatalf("recent: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].CardID != tt.want[i] {
					t.Errorf("[%d] card = %d, want %d", i, got[i].CardID, tt.want[i])
				}
			}
		})
	}
}

func TestReviewStats(t *testing.T) {
	s := openTestStore(t)
	events := s.EventRepo()
	ctx := context.Background()

	stats, err := events.ReviewStats(ctx)
	if err != nil {
		t.Fatalf("stats (empty): %v", err)
	}
	if stats.Answers != 0 || stats.Sessions != 0 {
		t.Errorf("empty stats = %+v", stats)
	}

	last := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	appends := []ReviewEventData{
		{Kind: ReviewKindAnswer, Ease: 1, TimeTakenMs: 1000, Timestamp: last.Add(-time.Hour)},
		{Kind: ReviewKindAnswer, Ease: 3, TimeTakenMs: 3000, Timestamp: last},
		{Kind: ReviewKindAnswer, Ease: 3, TimeTakenMs: 2000, Timestamp: last.Add(-2 * time.Hour)},
		{Kind: ReviewKindUndo},
		{Kind: ReviewKindBury},
	}
	for _, a := range appends {
		a.SessionID = "s"
		a.CardID = 1
		if err := events.AppendReviewEvent(ctx, a); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := events.AppendSessionEvent(ctx, SessionEventData{SessionID: "s", Action: SessionActionEnd, Outcome: "user_exit"}); err != nil {
		t.Fatalf("append session: %v", err)
	}

	stats, err = events.ReviewStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Answers != 3 {
		t.Errorf("Answers = %d, want 3", stats.Answers)
	}
	if stats.ByEase[1] != 1 || stats.ByEase[3] != 2 {
		t.Errorf("ByEase = %v, want 1:1 3:2", stats.ByEase)
	}
	if stats.Undone != 1 || stats.Buried != 1 || stats.Suspended != 0 {
		t.Errorf("undo/bury/suspend = %d/%d/%d, want 1/1/0", stats.Undone, stats.Buried, stats.Suspended)
	}
	if stats.Sessions != 1 {
		t.Errorf("Sessions = %d, want 1", stats.Sessions)
	}
	if stats.AvgTimeTaken != 2*time.Second {
		t.Errorf("AvgTimeTaken = %v, want 2s", stats.AvgTimeTaken)
	}
	if !stats.LastReview.Equal(last) {
		t.Errorf("LastReview = %v, want %v", stats.LastReview, last)
	}
}

func TestPreferences(t *testing.T) {
	s := openTestStore(t)
	prefs := s.PreferenceRepo()
	ctx := context.Background()

	if _, err := prefs.Get(ctx, "cardZoom"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing: err = %v, want ErrNotFound", err)
	}

	if err := prefs.Set(ctx, "cardZoom", "120"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := prefs.Set(ctx, "cardZoom", "150"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := prefs.Set(ctx, "tts", "true"); err != nil {
		t.Fatalf("set tts: %v", err)
	}

	all, err := prefs.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 2 || all["cardZoom"] != "150" || all["tts"] != "true" {
		t.Errorf("all = %v", all)
	}

	if err := prefs.Delete(ctx, "tts"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := prefs.Get(ctx, "tts"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get deleted: err = %v, want ErrNotFound", err)
	}
}

func TestDefaultDBPathEnvOverride(t *testing.T) {
	want := filepath.Join(t.TempDir(), "nested", "custom.db")
	t.Setenv("REVIEWZ_DB", want)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if got != want {
		t.Errorf("DefaultDBPath = %q, want %q", got, want)
	}
}

func TestDefaultDBPathXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("REVIEWZ_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if want := filepath.Join(dir, "reviewz", "reviewz.db"); got != want {
		t.Errorf("DefaultDBPath = %q, want %q", got, want)
	}
}
