package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Orphan is a blob that was stored but never referenced by a timeline
// record. It stays listed until somebody resolves it.
type Orphan struct {
	ID              int64      `json:"id"`
	Filename        string     `json:"filename"`
	RemoteURL       string     `json:"remote_url"`
	Channel         string     `json:"channel"`
	DurationSeconds float64    `json:"duration_seconds"`
	SessionID       string     `json:"session_id"`
	Error           string     `json:"error"`
	CreatedAt       time.Time  `json:"created_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
}

var ErrOrphanNotFound = errors.New("orphan not found")

type Ledger interface {
	Record(ctx context.Context, o Orphan) (int64, error)
	List(ctx context.Context, includeResolved bool) ([]Orphan, error)
	Resolve(ctx context.Context, id int64) error
	Close() error
}

type sqliteLedger struct {
	db  *sql.DB
	now func() time.Time
}

func Open(ctx context.Context, dbPath string) (Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serialises writers on the file
	db.SetMaxOpenConns(1)

	l := &sqliteLedger{db: db, now: time.Now}
	if err := l.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

func (l *sqliteLedger) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS orphans (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  filename TEXT NOT NULL,
  remote_url TEXT NOT NULL,
  channel TEXT NOT NULL,
  duration_seconds REAL NOT NULL,
  session_id TEXT,
  error TEXT,
  created_at TEXT NOT NULL,
  resolved_at TEXT
);
`
	if _, err := l.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create orphans table: %w", err)
	}
	return nil
}

func (l *sqliteLedger) Record(ctx context.Context, o Orphan) (int64, error) {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = l.now()
	}
	const stmt = `
INSERT INTO orphans (filename, remote_url, channel, duration_seconds, session_id, error, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?);
`
	res, err := l.db.ExecContext(ctx, stmt,
		o.Filename,
		o.RemoteURL,
		o.Channel,
		o.DurationSeconds,
		o.SessionID,
		o.Error,
		o.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("record orphan: %w", err)
	}
	return res.LastInsertId()
}

func (l *sqliteLedger) List(ctx context.Context, includeResolved bool) ([]Orphan, error) {
	query := `
SELECT id, filename, remote_url, channel, duration_seconds, session_id, error, created_at, resolved_at
FROM orphans`
	if !includeResolved {
		query += ` WHERE resolved_at IS NULL`
	}
	query += ` ORDER BY id ASC;`

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list orphans: %w", err)
	}
	defer rows.Close()

	var out []Orphan
	for rows.Next() {
		var (
			o                  Orphan
			sessionID, errText sql.NullString
			createdAt          string
			resolvedAt         sql.NullString
		)
		if err := rows.Scan(&o.ID, &o.Filename, &o.RemoteURL, &o.Channel, &o.DurationSeconds,
			&sessionID, &errText, &createdAt, &resolvedAt); err != nil {
			return nil, fmt.Errorf("scan orphan: %w", err)
		}
		o.SessionID = sessionID.String
		o.Error = errText.String
		if o.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		if resolvedAt.Valid {
			t, err := time.Parse(time.RFC3339Nano, resolvedAt.String)
			if err != nil {
				return nil, fmt.Errorf("parse resolved_at: %w", err)
			}
			o.ResolvedAt = &t
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (l *sqliteLedger) Resolve(ctx context.Context, id int64) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE orphans SET resolved_at = ? WHERE id = ? AND resolved_at IS NULL;`,
		l.now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("resolve orphan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrphanNotFound
	}
	return nil
}

func (l *sqliteLedger) Close() error {
	return l.db.Close()
}
