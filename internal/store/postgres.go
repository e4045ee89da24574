// PostgreSQL Store implementation.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/milan-ai/milan-core/pkg/models"
)

// PostgresStore implements Store backed by PostgreSQL. Connection URL
// comes from DATABASE_URL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL and runs migrations.
func NewPostgresStore(ctx context.Context, connURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connURL)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}

	log.Info().Msg("postgres store initialized")
	return s, nil
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS agent_logs (
			id                TEXT PRIMARY KEY,
			agent_name        TEXT NOT NULL,
			agent_version     TEXT NOT NULL DEFAULT '',
			action            TEXT NOT NULL,
			user_id           TEXT NOT NULL DEFAULT '',
			session_id        TEXT NOT NULL DEFAULT '',
			payload           JSONB NOT NULL DEFAULT '{}',
			result            JSONB NOT NULL DEFAULT '{}',
			success           BOOLEAN NOT NULL DEFAULT FALSE,
			error             TEXT NOT NULL DEFAULT '',
			execution_time_ms BIGINT NOT NULL DEFAULT 0,
			tokens_used       BIGINT NOT NULL DEFAULT 0,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_agent_logs_agent ON agent_logs (agent_name, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_agent_logs_user ON agent_logs (user_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_agent_logs_session ON agent_logs (session_id);
	`
	_, err := s.pool.Exec(ctx, ddl)
	return err
}

func (s *PostgresStore) CreateAgentLog(ctx context.Context, entry *models.AgentLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	payload := entry.Payload
	if payload == nil {
		payload = map[string]interface{}{}
	}
	result := entry.Result
	if result == nil {
		result = map[string]interface{}{}
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO agent_logs
			(id, agent_name, agent_version, action, user_id, session_id,
			 payload, result, success, error, execution_time_ms, tokens_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.pool.Exec(ctx, query,
		entry.ID, entry.AgentName, entry.AgentVersion, entry.Action,
		entry.UserID, entry.SessionID, payload, result,
		entry.Success, entry.Error, entry.ExecutionTimeMs, entry.TokensUsed,
		entry.CreatedAt,
	)
	return err
}

func (s *PostgresStore) GetAgentLog(ctx context.Context, id string) (*models.AgentLog, error) {
	query := `
		SELECT id, agent_name, agent_version, action, user_id, session_id,
		       payload, result, success, error, execution_time_ms, tokens_used, created_at
		FROM agent_logs WHERE id = $1`

	entry, err := scanAgentLog(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &ErrNotFound{Entity: "agent log", Key: id}
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *PostgresStore) ListAgentLogs(ctx context.Context, filter AgentLogFilter) ([]models.AgentLog, error) {
	query, args := buildLogQuery(`
		SELECT id, agent_name, agent_version, action, user_id, session_id,
		       payload, result, success, error, execution_time_ms, tokens_used, created_at
		FROM agent_logs`, filter, true)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AgentLog
	for rows.Next() {
		entry, err := scanAgentLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *entry)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountAgentLogs(ctx context.Context, filter AgentLogFilter) (int64, error) {
	query, args := buildLogQuery(`SELECT COUNT(*) FROM agent_logs`, filter, false)

	var count int64
	err := s.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

// buildLogQuery appends the WHERE clauses the filter asks for, and the
// ordering plus limit when paged is set.
func buildLogQuery(base string, filter AgentLogFilter, paged bool) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.AgentName != "" {
		add("agent_name", filter.AgentName)
	}
	if filter.Action != "" {
		add("action", filter.Action)
	}
	if filter.UserID != "" {
		add("user_id", filter.UserID)
	}
	if filter.SessionID != "" {
		add("session_id", filter.SessionID)
	}
	if filter.Success != nil {
		add("success", *filter.Success)
	}

	query := base
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	if paged {
		limit := filter.Limit
		if limit <= 0 {
			limit = 100
		}
		args = append(args, limit)
		query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	}
	return query, args
}

func scanAgentLog(row pgx.Row) (*models.AgentLog, error) {
	var entry models.AgentLog
	err := row.Scan(
		&entry.ID, &entry.AgentName, &entry.AgentVersion, &entry.Action,
		&entry.UserID, &entry.SessionID, &entry.Payload, &entry.Result,
		&entry.Success, &entry.Error, &entry.ExecutionTimeMs, &entry.TokensUsed,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *PostgresStore) ListAgentLogsBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.AgentLog, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, agent_name, agent_version, action, user_id, session_id,
		       payload, result, success, error, execution_time_ms, tokens_used, created_at
		FROM agent_logs WHERE created_at < $1
		ORDER BY created_at ASC LIMIT $2`

	rows, err := s.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AgentLog
	for rows.Next() {
		entry, err := scanAgentLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *entry)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteAgentLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM agent_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
