package source

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rshade/entitydeck/internal/engine/batch"
)

const seqCursorScope = "seq:"

// SQLSource serves pages and details from an entities table using keyset pagination.
// Cursor tokens are base64 encoded "seq:<n>" markers of the last row returned. The same
// queries run on SQLite and Postgres; only the placeholder syntax differs.
type SQLSource struct {
	db       *sql.DB
	dialect  dialect
	pageSize int
}

// dialect names the backend and renders the n-th (1-based) bind placeholder.
type dialect struct {
	name        string
	placeholder func(n int) string
}

// bind replaces each '?' in query with the dialect's placeholder.
func (d dialect) bind(query string) string {
	if d.placeholder == nil {
		return query
	}
	var (
		b strings.Builder
		n int
	)
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(d.placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Dialect returns the backend name ("sqlite" or "postgres").
func (s *SQLSource) Dialect() string { return s.dialect.name }

// Close releases the database handle.
func (s *SQLSource) Close() error {
	return s.db.Close()
}

// DB exposes the handle for seeding and tests.
func (s *SQLSource) DB() *sql.DB {
	return s.db
}

// FetchPage implements PaginatedSource.
func (s *SQLSource) FetchPage(ctx context.Context, cursor Cursor) (Page, error) {
	after, err := decodeSeqCursor(cursor)
	if err != nil {
		return Page{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		s.dialect.bind(`SELECT seq, id, name, description FROM entities WHERE seq > ? ORDER BY seq LIMIT ?`),
		after, s.pageSize+1)
	if err != nil {
		return Page{}, &TransportError{Op: "fetch page", Err: err}
	}
	defer func() { _ = rows.Close() }()

	var (
		page    Page
		lastSeq int64
	)
	for rows.Next() {
		var (
			seq         int64
			id          string
			name        string
			description string
		)
		if scanErr := rows.Scan(&seq, &id, &name, &description); scanErr != nil {
			return Page{}, &DecodeError{Op: "fetch page", Err: scanErr}
		}
		if len(page.Items) == s.pageSize {
			page.HasMore = true
			break
		}
		entity := Entity{ID: id, Name: name}
		if description != "" {
			entity.Extra = map[string]any{"description": description}
		}
		page.Items = append(page.Items, entity)
		lastSeq = seq
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return Page{}, &TransportError{Op: "fetch page", Err: rowsErr}
	}
	if page.HasMore {
		page.Next = encodeSeqCursor(lastSeq)
	}
	return page, nil
}

// FetchDetail implements DetailSource.
func (s *SQLSource) FetchDetail(ctx context.Context, entityID string) (DetailRecord, error) {
	var (
		name        string
		description string
		payload     string
	)
	err := s.db.QueryRowContext(ctx,
		s.dialect.bind(`SELECT name, description, detail FROM entities WHERE id = ?`), entityID).
		Scan(&name, &description, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return DetailRecord{}, &NotFoundError{EntityID: entityID}
	}
	if err != nil {
		return DetailRecord{}, &TransportError{Op: "fetch detail", Err: err}
	}

	var rec DetailRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return DetailRecord{}, &DecodeError{Op: "fetch detail", Err: err}
	}
	rec.ID = entityID
	if rec.Name == "" {
		rec.Name = name
	}
	if rec.Description == "" {
		rec.Description = description
	}
	return rec, nil
}

// SeedBatchSize is the number of rows Seed inserts between progress reports.
const SeedBatchSize = 500

// Seed inserts entity-1..entity-count in one transaction, replacing existing rows.
func (s *SQLSource) Seed(ctx context.Context, count int, now time.Time) error {
	return s.SeedWithProgress(ctx, count, now, nil)
}

// SeedWithProgress is Seed with a callback invoked after every batch of SeedBatchSize rows.
func (s *SQLSource) SeedWithProgress(
	ctx context.Context,
	count int,
	now time.Time,
	onProgress func(batch.Progress),
) error {
	if count <= 0 {
		return fmt.Errorf("seed count must be positive, got %d", count)
	}
	mock := NewMockSource(MockOptions{Total: count, Now: func() time.Time { return now }})

	proc, err := batch.NewProcessor[int](SeedBatchSize)
	if err != nil {
		return err
	}
	proc.WithProgress(onProgress)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM entities`); err != nil {
		return fmt.Errorf("clear entities: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		s.dialect.bind(`INSERT INTO entities (seq, id, name, description, detail) VALUES (?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare seed: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	seqs := make([]int, count)
	for i := range seqs {
		seqs[i] = i + 1
	}
	err = proc.Process(ctx, seqs, func(ctx context.Context, rows []int, _ int) error {
		for _, seq := range rows {
			entity := mockEntity(seq)
			rec, detailErr := mock.FetchDetail(ctx, entity.ID)
			if detailErr != nil {
				return detailErr
			}
			payload, marshalErr := json.Marshal(rec)
			if marshalErr != nil {
				return fmt.Errorf("encode detail %s: %w", entity.ID, marshalErr)
			}
			if _, execErr := stmt.ExecContext(ctx, seq, entity.ID, entity.Name, rec.Description, string(payload)); execErr != nil {
				return fmt.Errorf("insert %s: %w", entity.ID, execErr)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return tx.Commit()
}

func encodeSeqCursor(seq int64) Cursor {
	raw := seqCursorScope + strconv.FormatInt(seq, 10)
	return MakeCursor(base64.RawURLEncoding.EncodeToString([]byte(raw)))
}

func decodeSeqCursor(c Cursor) (int64, error) {
	if c.IsZero() {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Token())
	if err != nil {
		return 0, &DecodeError{Op: "cursor", Err: err}
	}
	value, found := strings.CutPrefix(string(raw), seqCursorScope)
	if !found {
		return 0, &DecodeError{Op: "cursor", Err: fmt.Errorf("unexpected cursor scope in %q", raw)}
	}
	seq, err := strconv.ParseInt(value, 10, 64)
	if err != nil || seq < 0 {
		return 0, &DecodeError{Op: "cursor", Err: fmt.Errorf("invalid sequence %q", value)}
	}
	return seq, nil
}
