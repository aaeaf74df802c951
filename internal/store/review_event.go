package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendReviewEvent(ctx context.Context, data ReviewEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder.Insert(tableReviewEvents).
		Columns("sequence", "timestamp", "session_id", "card_id", "kind", "ease", "buttons",
			"typed_answer", "similarity", "time_taken_ms", "prev_stage", "new_stage").
		Values(seqNum, stampOrNow(data.Timestamp), data.SessionID, data.CardID, data.Kind, data.Ease,
			data.Buttons, data.TypedAnswer, data.Similarity, data.TimeTakenMs, data.PrevStage, data.NewStage).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save review event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder.Insert(tableSessionEvents).
		Columns("sequence", "timestamp", "session_id", "action", "outcome", "cards_reviewed", "duration_secs").
		Values(seqNum, stampOrNow(data.Timestamp), data.SessionID, data.Action, data.Outcome,
			data.CardsReviewed, data.DurationSecs).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) RecentReviews(ctx context.Context, opts QueryOpts) ([]ReviewEvent, error) {
	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UnixMilli()))
	}

	sel := builder.Select("sequence", "timestamp", "session_id", "card_id", "kind", "ease", "buttons",
		"typed_answer", "similarity", "time_taken_ms", "prev_stage", "new_stage").
		From(entsql.Table(tableReviewEvents)).
		OrderBy(entsql.Desc("sequence"))
	if len(preds) > 0 {
		sel = sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query review events: %w", err)
	}
	defer rows.Close()

	var out []ReviewEvent
	for rows.Next() {
		var (
			ev ReviewEvent
			ts int64
		)
		err := rows.Scan(&ev.Sequence, &ts, &ev.SessionID, &ev.CardID, &ev.Kind, &ev.Ease, &ev.Buttons,
			&ev.TypedAnswer, &ev.Similarity, &ev.TimeTakenMs, &ev.PrevStage, &ev.NewStage)
		if err != nil {
			return nil, fmt.Errorf("scan review event: %w", err)
		}
		ev.Timestamp = fromMillis(ts)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *eventRepo) ReviewStats(ctx context.Context) (*ReviewStats, error) {
	stats := &ReviewStats{ByEase: make(map[int]int)}

	query, args := builder.Select("kind", "ease", entsql.Count("*")).
		From(entsql.Table(tableReviewEvents)).
		GroupBy("kind", "ease").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query review counts: %w", err)
	}
	for rows.Next() {
		var (
			kind    string
			ease, n int
		)
		if err := rows.Scan(&kind, &ease, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan review counts: %w", err)
		}
		switch kind {
		case ReviewKindAnswer:
			stats.Answers += n
			stats.ByEase[ease] += n
		case ReviewKindUndo:
			stats.Undone += n
		case ReviewKindBury:
			stats.Buried += n
		case ReviewKindSuspend:
			stats.Suspended += n
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read review counts: %w", err)
	}

	if stats.Answers > 0 {
		var (
			avg  float64
			last int64
		)
		query, args = builder.Select(entsql.Avg("time_taken_ms"), entsql.Max("timestamp")).
			From(entsql.Table(tableReviewEvents)).
			Where(entsql.EQ("kind", ReviewKindAnswer)).
			Query()
		if err := r.db.QueryRowContext(ctx, query, args...).Scan(&avg, &last); err != nil {
			return nil, fmt.Errorf("query review timing: %w", err)
		}
		stats.AvgTimeTaken = time.Duration(avg) * time.Millisecond
		stats.LastReview = fromMillis(last)
	}

	query, args = builder.Select(entsql.Count("*")).
		From(entsql.Table(tableSessionEvents)).
		Where(entsql.EQ("action", SessionActionEnd)).
		Query()
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&stats.Sessions); err != nil {
		return nil, fmt.Errorf("query session count: %w", err)
	}
	return stats, nil
}
