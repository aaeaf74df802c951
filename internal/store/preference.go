package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// preferenceRepo implements PreferenceRepo.
type preferenceRepo struct {
	db *sql.DB
}

func (r *preferenceRepo) All(ctx context.Context) (map[string]string, error) {
	query, args := builder.Select("key", "value").
		From(entsql.Table(tablePreferences)).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query preferences: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (r *preferenceRepo) Get(ctx context.Context, key string) (string, error) {
	query, args := builder.Select("value").
		From(entsql.Table(tablePreferences)).
		Where(entsql.EQ("key", key)).
		Query()

	var v string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("preference %q: %w", key, ErrNotFound)
		}
		return "", fmt.Errorf("query preference: %w", err)
	}
	return v, nil
}

func (r *preferenceRepo) Set(ctx context.Context, key, value string) error {
	query, args := builder.Insert(tablePreferences).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save preference: %w", err)
	}
	return nil
}

func (r *preferenceRepo) Delete(ctx context.Context, key string) error {
	query, args := builder.Delete(tablePreferences).
		Where(entsql.EQ("key", key)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete preference: %w", err)
	}
	return nil
}
