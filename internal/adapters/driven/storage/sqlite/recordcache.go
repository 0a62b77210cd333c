package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driven"
)

// removeBatch bounds the number of bound parameters per DELETE.
const removeBatch = 500

// recordCache implements driven.RecordCache over the cached_records table,
// so the last settled cache survives a restart.
type recordCache struct {
	store *Store
}

var _ driven.RecordCache = (*recordCache)(nil)

// Replace swaps the whole cache in one transaction.
func (c *recordCache) Replace(ctx context.Context, records []domain.Record) error {
	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM cached_records"); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	if err := insertCached(ctx, tx, 0, records); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Append adds records after the current last position.
func (c *recordCache) Append(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var next int64
	row := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(position) + 1, 0) FROM cached_records")
	if err := row.Scan(&next); err != nil {
		return fmt.Errorf("reading cache tail: %w", err)
	}
	if err := insertCached(ctx, tx, next, records); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Remove deletes every cached record whose ID is in ids.
func (c *recordCache) Remove(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	removed := 0
	for start := 0; start < len(ids); start += removeBatch {
		end := min(start+removeBatch, len(ids))
		batch := ids[start:end]
		args := make([]any, len(batch))
		for i, id := range batch {
			args[i] = id
		}
		res, err := tx.ExecContext(ctx,
			"DELETE FROM cached_records WHERE id IN ("+placeholders(len(batch))+")", args...)
		if err != nil {
			return 0, fmt.Errorf("removing cached records: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("counting removed records: %w", err)
		}
		removed += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return removed, nil
}

// Snapshot returns the cache in position order.
func (c *recordCache) Snapshot(ctx context.Context) ([]domain.Record, error) {
	rows, err := c.store.db.QueryContext(ctx, "SELECT payload FROM cached_records ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying cache: %w", err)
	}
	defer rows.Close()

	var records []domain.Record //nolint:prealloc // size unknown from query
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning cached record: %w", err)
		}
		var r domain.Record
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("decoding cached record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cache: %w", err)
	}
	return records, nil
}

// Len returns the number of cached records.
func (c *recordCache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cached_records").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cache: %w", err)
	}
	return n, nil
}

func insertCached(ctx context.Context, tx *sql.Tx, start int64, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO cached_records (position, id, payload) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		payload, err := json.Marshal(&records[i])
		if err != nil {
			return fmt.Errorf("encoding record %s: %w", records[i].ID, err)
		}
		if _, err := stmt.ExecContext(ctx, start+int64(i), records[i].ID, string(payload)); err != nil {
			return fmt.Errorf("caching record %s: %w", records[i].ID, err)
		}
	}
	return nil
}
