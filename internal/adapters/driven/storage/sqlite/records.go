package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// recordStore implements driven.RecordStore over the records table.
type recordStore struct {
	store *Store
}

var _ driven.RecordStore = (*recordStore)(nil)

// Save upserts records keyed by (id, content_type).
func (s *recordStore) Save(ctx context.Context, records []domain.Record) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (id, content_type, url, text, collection, metadata, date_added)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, content_type) DO UPDATE SET
			url = excluded.url,
			text = excluded.text,
			collection = excluded.collection,
			metadata = excluded.metadata,
			date_added = excluded.date_added
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		metadataJSON, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		meta := string(metadataJSON)
		if meta == jsonNull {
			meta = "{}"
		}

		var added sql.NullInt64
		if t := r.DateAdded(); !t.IsZero() {
			added = sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
		}

		if _, err := stmt.ExecContext(ctx, r.ID, string(r.ContentType), r.URL, r.Text,
			r.Collection(), meta, added); err != nil {
			return fmt.Errorf("saving record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query returns a window of matching records, newest first, plus the
// number of records the filter matches.
func (s *recordStore) Query(ctx context.Context, q domain.RecordQuery) ([]domain.Record, int, error) {
	var (
		where []string
		args  []any
	)
	if q.ContentType != "" {
		where = append(where, "content_type = ?")
		args = append(args, string(q.ContentType))
	}
	if !q.Since.IsZero() {
		where = append(where, "date_added >= ?")
		args = append(args, q.Since.UnixMilli())
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting records: %w", err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	query := `SELECT id, content_type, url, text, metadata FROM records` + clause +
		` ORDER BY date_added IS NULL, date_added DESC, seq LIMIT ? OFFSET ?`
	rows, err := s.store.db.QueryContext(ctx, query, append(args, limit, max(q.Offset, 0))...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []domain.Record //nolint:prealloc // size unknown from query
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating records: %w", err)
	}
	return records, total, nil
}

// Delete removes one record.
func (s *recordStore) Delete(ctx context.Context, id string, ct domain.ContentType) (bool, error) {
	res, err := s.store.db.ExecContext(ctx,
		"DELETE FROM records WHERE id = ? AND content_type = ?", id, string(ct))
	if err != nil {
		return false, fmt.Errorf("deleting record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("counting deleted records: %w", err)
	}
	return n > 0, nil
}

// Stats counts records per content type and lists the collections in use.
func (s *recordStore) Stats(ctx context.Context) (*domain.BackendInfo, error) {
	info := &domain.BackendInfo{}

	rows, err := s.store.db.QueryContext(ctx, "SELECT content_type, COUNT(*) FROM records GROUP BY content_type")
	if err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}
	for rows.Next() {
		var (
			ct string
			n  int
		)
		if err := rows.Scan(&ct, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning counts: %w", err)
		}
		switch domain.ContentType(ct) {
		case domain.ContentTypeDocument:
			info.Documents = n
		case domain.ContentTypeImage:
			info.Images = n
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counts: %w", err)
	}

	rows, err = s.store.db.QueryContext(ctx,
		"SELECT DISTINCT collection FROM records WHERE collection != '' ORDER BY collection")
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		info.Collections = append(info.Collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collections: %w", err)
	}
	return info, nil
}

func scanRecord(rows *sql.Rows) (*domain.Record, error) {
	var (
		r            domain.Record
		contentType  string
		metadataJSON string
	)
	if err := rows.Scan(&r.ID, &contentType, &r.URL, &r.Text, &metadataJSON); err != nil {
		return nil, fmt.Errorf("scanning record: %w", err)
	}
	r.ContentType = domain.ContentType(contentType)
	if metadataJSON != "" && metadataJSON != "{}" {
		if err := json.Unmarshal([]byte(metadataJSON), &r.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}
	}
	return &r, nil
}
