// internal/storage/postgres/client.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fawad-mazhar/shopfloor/internal/config"
	"github.com/fawad-mazhar/shopfloor/internal/models"
	_ "github.com/lib/pq"
)

// ErrSessionNotFound is returned when no row matches the session id
var ErrSessionNotFound = errors.New("session not found")

const schema = `
	CREATE TABLE IF NOT EXISTS schedule_sessions (
		id            UUID PRIMARY KEY,
		machine_count INTEGER NOT NULL,
		jobs          JSONB NOT NULL,
		tasks         JSONB NOT NULL,
		version       INTEGER NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`

type Client struct {
	db *sql.DB
}

func NewClient(cfg config.PostgresConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

// Migrate creates the sessions table when missing
func (c *Client) Migrate(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveSession inserts or replaces a session and its current schedule
func (c *Client) SaveSession(ctx context.Context, session *models.Session) error {
	jobs, err := json.Marshal(session.Jobs)
	if err != nil {
		return fmt.Errorf("failed to marshal jobs: %w", err)
	}

	tasks, err := json.Marshal(session.Schedule.Tasks)
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}

	query := `
		INSERT INTO schedule_sessions (id, machine_count, jobs, tasks, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET machine_count = EXCLUDED.machine_count,
			jobs = EXCLUDED.jobs,
			tasks = EXCLUDED.tasks,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at`

	_, err = c.db.ExecContext(ctx, query,
		session.ID,
		session.Schedule.MachineCount,
		jobs,
		tasks,
		session.Version,
		session.CreatedAt,
		session.UpdatedAt,
	)
	return err
}

func (c *Client) GetSession(ctx context.Context, id string) (*models.Session, error) {
	query := `
		SELECT id, machine_count, jobs, tasks, version, created_at, updated_at
		FROM schedule_sessions
		WHERE id = $1`

	var session models.Session
	var jobsJSON, tasksJSON []byte

	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.Schedule.MachineCount,
		&jobsJSON,
		&tasksJSON,
		&session.Version,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(jobsJSON, &session.Jobs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal jobs: %w", err)
	}

	if err := json.Unmarshal(tasksJSON, &session.Schedule.Tasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tasks: %w", err)
	}

	return &session, nil
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM schedule_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func (c *Client) CountSessions(ctx context.Context) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schedule_sessions`).Scan(&count)
	return count, err
}
