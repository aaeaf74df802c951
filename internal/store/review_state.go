package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var reviewStateColumns = []string{
	"card_id", "queue", "stage", "due_at", "last_review_at",
	"reviews", "lapses", "suspended", "buried_until",
}

// reviewStateRepo implements ReviewStateRepo.
type reviewStateRepo struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReviewState(row rowScanner) (*ReviewState, error) {
	var (
		rs                         ReviewState
		dueAt, lastAt, buriedUntil int64
		suspended                  bool
	)
	err := row.Scan(&rs.CardID, &rs.Queue, &rs.Stage, &dueAt, &lastAt,
		&rs.Reviews, &rs.Lapses, &suspended, &buriedUntil)
	if err != nil {
		return nil, err
	}
	rs.DueAt = fromMillis(dueAt)
	rs.LastReviewAt = fromMillis(lastAt)
	rs.Suspended = suspended
	rs.BuriedUntil = fromMillis(buriedUntil)
	return &rs, nil
}

func (r *reviewStateRepo) Get(ctx context.Context, cardID int64) (*ReviewState, error) {
	query, args := builder.Select(reviewStateColumns...).
		From(entsql.Table(tableReviewStates)).
		Where(entsql.EQ("card_id", cardID)).
		Query()

	rs, err := scanReviewState(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("review state %d: %w", cardID, ErrNotFound)
		}
		return nil, fmt.Errorf("query review state: %w", err)
	}
	return rs, nil
}

func (r *reviewStateRepo) Put(ctx context.Context, rs *ReviewState) error {
	query, args := builder.Insert(tableReviewStates).
		Columns(reviewStateColumns...).
		Values(rs.CardID, rs.Queue, rs.Stage, toMillis(rs.DueAt), toMillis(rs.LastReviewAt),
			rs.Reviews, rs.Lapses, rs.Suspended, toMillis(rs.BuriedUntil)).
		OnConflict(
			entsql.ConflictColumns("card_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save review state: %w", err)
	}
	return nil
}

func (r *reviewStateRepo) Delete(ctx context.Context, cardID int64) error {
	query, args := builder.Delete(tableReviewStates).
		Where(entsql.EQ("card_id", cardID)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete review state: %w", err)
	}
	return nil
}

func (r *reviewStateRepo) All(ctx context.Context) ([]ReviewState, error) {
	query, args := builder.Select(reviewStateColumns...).
		From(entsql.Table(tableReviewStates)).
		OrderBy("card_id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query review states: %w", err)
	}
	defer rows.Close()

	var out []ReviewState
	for rows.Next() {
		rs, err := scanReviewState(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review state: %w", err)
		}
		out = append(out, *rs)
	}
	return out, rows.Err()
}

func (r *reviewStateRepo) Reset(ctx context.Context) error {
	query, args := builder.Delete(tableReviewStates).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("reset review states: %w", err)
	}
	return nil
}
