package sessionstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chatflow/chatflow/internal/core/session"
	"github.com/chatflow/chatflow/pkg/serialization"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id               TEXT PRIMARY KEY,
	flow_id          TEXT NOT NULL,
	contact_id       TEXT NOT NULL,
	status           TEXT NOT NULL,
	reason           TEXT NOT NULL DEFAULT '',
	current_node     TEXT NOT NULL,
	pending_variable TEXT NOT NULL DEFAULT '',
	vars             BLOB,
	resume_at        INTEGER,
	error            TEXT NOT NULL DEFAULT '',
	started_at       INTEGER NOT NULL,
	updated_at       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_flow ON sessions(flow_id);
CREATE INDEX IF NOT EXISTS idx_sessions_resume ON sessions(status, reason, resume_at);
`

// SQLiteStore persists sessions in SQLite. Variable blobs go through
// the serializer (MessagePack + zstd by default).
type SQLiteStore struct {
	db         *sql.DB
	serializer *serialization.Serializer
}

// NewSQLiteStore creates a store over an open database handle. A nil
// serializer falls back to the default pipeline.
func NewSQLiteStore(db *sql.DB, serializer *serialization.Serializer) *SQLiteStore {
	if serializer == nil {
		serializer = serialization.Default()
	}
	return &SQLiteStore{db: db, serializer: serializer}
}

// EnsureSchema creates the sessions table and indexes.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteSchema)
	return err
}

func (s *SQLiteStore) Save(ctx context.Context, sess *session.Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	vars, err := s.serializer.Marshal(map[string]any(sess.Vars))
	if err != nil {
		return fmt.Errorf("serialize vars: %w", err)
	}
	var resumeAt any
	if sess.ResumeAt != nil {
		resumeAt = sess.ResumeAt.UnixMilli()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions
		(id, flow_id, contact_id, status, reason, current_node, pending_variable, vars, resume_at, error, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.FlowID, sess.ContactID, string(sess.Status), string(sess.Reason),
		sess.CurrentNodeID, sess.PendingVariable, vars, resumeAt, sess.Error,
		sess.StartedAt.UnixMilli(), sess.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*session.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, flow_id, contact_id, status, reason, current_node, pending_variable, vars, resume_at, error, started_at, updated_at
		FROM sessions WHERE id = ?`, id)
	sess, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrSessionNotFound
	}
	return sess, err
}

func (s *SQLiteStore) ListByFlow(ctx context.Context, flowID string) ([]*session.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, flow_id, contact_id, status, reason, current_node, pending_variable, vars, resume_at, error, started_at, updated_at
		FROM sessions WHERE flow_id = ? ORDER BY started_at`, flowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.collect(rows)
}

func (s *SQLiteStore) ListDue(ctx context.Context, before time.Time) ([]*session.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, flow_id, contact_id, status, reason, current_node, pending_variable, vars, resume_at, error, started_at, updated_at
		FROM sessions
		WHERE status = ? AND reason = ? AND resume_at IS NOT NULL AND resume_at <= ?
		ORDER BY resume_at`,
		string(session.StatusSuspended), string(session.ReasonTimer), before.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.collect(rows)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scan(row rowScanner) (*session.Session, error) {
	var (
		sess      session.Session
		status    string
		reason    string
		varsBlob  []byte
		resumeAt  sql.NullInt64
		startedAt int64
		updatedAt int64
	)
	err := row.Scan(&sess.ID, &sess.FlowID, &sess.ContactID, &status, &reason,
		&sess.CurrentNodeID, &sess.PendingVariable, &varsBlob, &resumeAt, &sess.Error,
		&startedAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	sess.Status = session.Status(status)
	sess.Reason = session.SuspendReason(reason)
	sess.StartedAt = time.UnixMilli(startedAt)
	sess.UpdatedAt = time.UnixMilli(updatedAt)
	if resumeAt.Valid {
		at := time.UnixMilli(resumeAt.Int64)
		sess.ResumeAt = &at
	}
	vars := make(map[string]any)
	if len(varsBlob) > 0 {
		if err := s.serializer.Unmarshal(varsBlob, &vars); err != nil {
			return nil, fmt.Errorf("deserialize vars: %w", err)
		}
	}
	sess.Vars = session.Vars(vars)
	return &sess, nil
}

func (s *SQLiteStore) collect(rows *sql.Rows) ([]*session.Session, error) {
	var out []*session.Session
	for rows.Next() {
		sess, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}
