// Package archive persists terminal sessions so a finished run stays
// inspectable after the process exits.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"github.com/forgeflow/forgeflow/internal/auto"
	forgeerrors "github.com/forgeflow/forgeflow/internal/errors"
)

// Store is a sqlite-backed session archive
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the archive database at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, forgeerrors.Wrap(forgeerrors.ErrCodeArchiveFailed, "open archive database", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, forgeerrors.Wrap(forgeerrors.ErrCodeArchiveFailed, "configure archive database", err)
		}
	}

	store := &Store{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			state TEXT NOT NULL,
			prompt TEXT NOT NULL,
			overall INTEGER,
			retry_count INTEGER NOT NULL DEFAULT 0,
			context TEXT NOT NULL,
			events TEXT,
			started_at DATETIME NOT NULL,
			archived_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_state ON sessions(state)`,
	}
	for _, schema := range schemas {
		if _, err := s.db.Exec(schema); err != nil {
			return forgeerrors.Wrap(forgeerrors.ErrCodeArchiveFailed, "ensure archive schema", err)
		}
	}
	return nil
}

// Summary is one archived session row without its payload
type Summary struct {
	SessionID  string
	State      auto.State
	Prompt     string
	Overall    int
	RetryCount int
	StartedAt  time.Time
	ArchivedAt time.Time
}

// Save archives a terminal session with its full audit trail. Saving a
// session twice replaces the earlier row.
func (s *Store) Save(ctx context.Context, session *auto.AutomationContext, events []auto.Event) error {
	if session == nil {
		return forgeerrors.New(forgeerrors.ErrCodeArchiveFailed, "nil session")
	}
	if !session.State.Terminal() {
		return forgeerrors.New(forgeerrors.ErrCodeArchiveFailed, "only terminal sessions are archived")
	}

	contextJSON, err := json.Marshal(session)
	if err != nil {
		return forgeerrors.Wrap(forgeerrors.ErrCodeArchiveFailed, "encode session context", err)
	}
	eventsJSON, err := json.Marshal(events)
	if err != nil {
		return forgeerrors.Wrap(forgeerrors.ErrCodeArchiveFailed, "encode session events", err)
	}

	overall := 0
	if latest := session.LatestScore(); latest != nil {
		overall = latest.Overall
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions
			(session_id, state, prompt, overall, retry_count, context, events, started_at, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.SessionID.String(),
		string(session.State),
		session.Prompt,
		overall,
		session.RetryCount,
		string(contextJSON),
		string(eventsJSON),
		session.StartedAt,
		time.Now().UTC(),
	)
	if err != nil {
		return forgeerrors.Wrap(forgeerrors.ErrCodeArchiveFailed, "insert session", err)
	}
	return nil
}

// Load restores one archived session and its events.
func (s *Store) Load(ctx context.Context, sessionID string) (*auto.AutomationContext, []auto.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT context, events FROM sessions WHERE session_id = ?`, sessionID)

	var contextJSON, eventsJSON string
	if err := row.Scan(&contextJSON, &eventsJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, forgeerrors.New(forgeerrors.ErrCodeArchiveFailed, "session not found: "+sessionID)
		}
		return nil, nil, forgeerrors.Wrap(forgeerrors.ErrCodeArchiveFailed, "read session", err)
	}

	var session auto.AutomationContext
	if err := json.Unmarshal([]byte(contextJSON), &session); err != nil {
		return nil, nil, forgeerrors.Wrap(forgeerrors.ErrCodeArchiveFailed, "decode session context", err)
	}
	var events []auto.Event
	if err := json.Unmarshal([]byte(eventsJSON), &events); err != nil {
		return nil, nil, forgeerrors.Wrap(forgeerrors.ErrCodeArchiveFailed, "decode session events", err)
	}
	return &session, events, nil
}

// List returns archived session summaries, most recent first.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, state, prompt, overall, retry_count, started_at, archived_at
		FROM sessions ORDER BY archived_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, forgeerrors.Wrap(forgeerrors.ErrCodeArchiveFailed, "list sessions", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		var state string
		if err := rows.Scan(&sum.SessionID, &state, &sum.Prompt, &sum.Overall,
			&sum.RetryCount, &sum.StartedAt, &sum.ArchivedAt); err != nil {
			return nil, forgeerrors.Wrap(forgeerrors.ErrCodeArchiveFailed, "scan session row", err)
		}
		sum.State = auto.State(state)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, forgeerrors.Wrap(forgeerrors.ErrCodeArchiveFailed, "iterate sessions", err)
	}
	return summaries, nil
}
