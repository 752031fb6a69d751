package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chatflow/chatflow/internal/core/session"
	"github.com/chatflow/chatflow/pkg/serialization"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id               TEXT PRIMARY KEY,
	flow_id          TEXT NOT NULL,
	contact_id       TEXT NOT NULL,
	status           TEXT NOT NULL,
	reason           TEXT NOT NULL DEFAULT '',
	current_node     TEXT NOT NULL,
	pending_variable TEXT NOT NULL DEFAULT '',
	vars             BYTEA,
	resume_at        TIMESTAMPTZ,
	error            TEXT NOT NULL DEFAULT '',
	started_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_flow ON sessions(flow_id);
CREATE INDEX IF NOT EXISTS idx_sessions_resume ON sessions(status, reason, resume_at);
`

// PostgresStore persists sessions in PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool       *pgxpool.Pool
	serializer *serialization.Serializer
}

// NewPostgresStore creates a store over an existing pool. A nil
// serializer falls back to the default pipeline.
func NewPostgresStore(pool *pgxpool.Pool, serializer *serialization.Serializer) *PostgresStore {
	if serializer == nil {
		serializer = serialization.Default()
	}
	return &PostgresStore{pool: pool, serializer: serializer}
}

// EnsureSchema creates the sessions table and indexes.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresSchema)
	return err
}

func (s *PostgresStore) Save(ctx context.Context, sess *session.Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	vars, err := s.serializer.Marshal(map[string]any(sess.Vars))
	if err != nil {
		return fmt.Errorf("serialize vars: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO sessions
		(id, flow_id, contact_id, status, reason, current_node, pending_variable, vars, resume_at, error, started_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			reason = EXCLUDED.reason,
			current_node = EXCLUDED.current_node,
			pending_variable = EXCLUDED.pending_variable,
			vars = EXCLUDED.vars,
			resume_at = EXCLUDED.resume_at,
			error = EXCLUDED.error,
			updated_at = EXCLUDED.updated_at`,
		sess.ID, sess.FlowID, sess.ContactID, string(sess.Status), string(sess.Reason),
		sess.CurrentNodeID, sess.PendingVariable, vars, sess.ResumeAt, sess.Error,
		sess.StartedAt, sess.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*session.Session, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, flow_id, contact_id, status, reason, current_node, pending_variable, vars, resume_at, error, started_at, updated_at
		FROM sessions WHERE id = $1`, id)
	sess, err := s.scanPG(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, session.ErrSessionNotFound
	}
	return sess, err
}

func (s *PostgresStore) ListByFlow(ctx context.Context, flowID string) ([]*session.Session, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, flow_id, contact_id, status, reason, current_node, pending_variable, vars, resume_at, error, started_at, updated_at
		FROM sessions WHERE flow_id = $1 ORDER BY started_at`, flowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.collectPG(rows)
}

func (s *PostgresStore) ListDue(ctx context.Context, before time.Time) ([]*session.Session, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, flow_id, contact_id, status, reason, current_node, pending_variable, vars, resume_at, error, started_at, updated_at
		FROM sessions
		WHERE status = $1 AND reason = $2 AND resume_at IS NOT NULL AND resume_at <= $3
		ORDER BY resume_at`,
		string(session.StatusSuspended), string(session.ReasonTimer), before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.collectPG(rows)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

func (s *PostgresStore) scanPG(row pgx.Row) (*session.Session, error) {
	var (
		sess     session.Session
		status   string
		reason   string
		varsBlob []byte
		resumeAt *time.Time
	)
	err := row.Scan(&sess.ID, &sess.FlowID, &sess.ContactID, &status, &reason,
		&sess.CurrentNodeID, &sess.PendingVariable, &varsBlob, &resumeAt, &sess.Error,
		&sess.StartedAt, &sess.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sess.Status = session.Status(status)
	sess.Reason = session.SuspendReason(reason)
	sess.ResumeAt = resumeAt
	vars := make(map[string]any)
	if len(varsBlob) > 0 {
		if err := s.serializer.Unmarshal(varsBlob, &vars); err != nil {
			return nil, fmt.Errorf("deserialize vars: %w", err)
		}
	}
	sess.Vars = session.Vars(vars)
	return &sess, nil
}

func (s *PostgresStore) collectPG(rows pgx.Rows) ([]*session.Session, error) {
	var out []*session.Session
	for rows.Next() {
		sess, err := s.scanPG(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}
