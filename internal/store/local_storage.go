package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const localStorageTable = "local_storage"

// Well-known local storage keys.
const (
	KeyGuestName       = "guestUserName"
	KeySolvedQuestions = "solvedQuestions"
	KeyAuthToken       = "authToken"
)

// LocalStorage is a plain string key/value store on the local machine.
// Values carry no schema version.
type LocalStorage interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any existing value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// localStorage implements LocalStorage on the local_storage table.
type localStorage struct {
	drv *entsql.Driver
}

func (r *localStorage) builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func (r *localStorage) Get(ctx context.Context, key string) (string, bool, error) {
	b := r.builder()
	query, args := b.Select("item_value").
		From(b.Table(localStorageTable)).
		Where(entsql.EQ("item_key", key)).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", false, fmt.Errorf("get %q: %w", key, err)
		}
		return "", false, nil
	}

	var value string
	if err := rows.Scan(&value); err != nil {
		return "", false, fmt.Errorf("scan %q: %w", key, err)
	}
	return value, true, nil
}

func (r *localStorage) Set(ctx context.Context, key, value string) error {
	query, args := r.builder().Insert(localStorageTable).
		Columns("item_key", "item_value", "updated_at").
		Values(key, value, time.Now().Unix()).
		OnConflict(
			entsql.ConflictColumns("item_key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (r *localStorage) Remove(ctx context.Context, key string) error {
	query, args := r.builder().Delete(localStorageTable).
		Where(entsql.EQ("item_key", key)).
		Query()

	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}
