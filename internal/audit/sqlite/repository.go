// Package sqlite provides a SQLite-backed implementation of audit.Repository.
//
// WAL mode is enabled on Open so the status machine can append while a
// handler reads an order's history.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/Masterminds/squirrel"

	"github.com/jcmexdev/koi-console/internal/audit"

	// pure-Go driver, no CGO
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_log (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,

    -- 0 for checkout rows written before the order existed
    order_id    INTEGER NOT NULL DEFAULT 0,
    action      TEXT    NOT NULL,
    step        TEXT    NOT NULL DEFAULT '',
    from_status TEXT    NOT NULL DEFAULT '',
    to_status   TEXT    NOT NULL DEFAULT '',
    role        TEXT    NOT NULL DEFAULT '',
    outcome     TEXT    NOT NULL,
    error       TEXT,

    trace_id    TEXT    NOT NULL DEFAULT '',
    span_id     TEXT    NOT NULL DEFAULT '',

    -- RFC3339 TEXT, SQLite has no datetime type
    at          TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_log_order_id ON audit_log(order_id, at);
CREATE INDEX IF NOT EXISTS idx_audit_log_trace_id ON audit_log(trace_id);
`

type Repository struct {
	db *sql.DB
}

var _ audit.Repository = (*Repository)(nil)

// Open opens (or creates) the database at path and applies the schema.
//
//	repo, err := sqlite.Open("./data/audit.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

var columns = []string{
	"order_id", "action", "step", "from_status", "to_status", "role", "outcome",
	"error", "trace_id", "span_id", "at",
}

// Save appends entry. It is safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *audit.Entry) error {
	query, args, err := squirrel.Insert("audit_log").
		Columns(columns...).
		Values(
			entry.OrderID,
			string(entry.Action),
			entry.Step,
			entry.FromStatus,
			entry.ToStatus,
			entry.Role,
			string(entry.Outcome),
			nullableString(entry.Error),
			entry.TraceID,
			entry.SpanID,
			entry.At.UTC().Format(timeLayout),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlite: save audit entry for order %d: %w", entry.OrderID, err)
	}
	return nil
}

// ListByOrder returns the order's entries oldest first.
func (r *Repository) ListByOrder(ctx context.Context, orderID int64) ([]audit.Entry, error) {
	selected := slices.Clone(columns)
	selected[slices.Index(selected, "error")] = "COALESCE(error, '')"
	query, args, err := squirrel.Select(selected...).
		From("audit_log").
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list audit entries for order %d: %w", orderID, err)
	}
	defer rows.Close()

	var out []audit.Entry
	for rows.Next() {
		var e audit.Entry
		var at string
		if err := rows.Scan(
			&e.OrderID,
			&e.Action,
			&e.Step,
			&e.FromStatus,
			&e.ToStatus,
			&e.Role,
			&e.Outcome,
			&e.Error,
			&e.TraceID,
			&e.SpanID,
			&at,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan audit entry: %w", err)
		}
		if e.At, err = parseRFC3339(at); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate audit entries: %w", err)
	}
	return out, nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

// nullableString stores NULL instead of an empty error message.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
