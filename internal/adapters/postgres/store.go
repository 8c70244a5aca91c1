// Package postgres implements ports.WorkflowStore on PostgreSQL via pgx.
// Workflow snapshots are stored as a jsonb column.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ostryzhko/flowpath/pkg/domain"
	"github.com/ostryzhko/flowpath/pkg/ports"
)

// Store implements ports.WorkflowStore using PostgreSQL.
type Store struct {
	db *pgxpool.Pool
}

// New creates a Store backed by the given pgx connection pool.
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Connect opens a pool for the DSN and verifies connectivity.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return New(pool), nil
}

// Create persists a new workflow and returns it with the assigned id.
func (s *Store) Create(ctx context.Context, snapshot domain.Snapshot) (*ports.Workflow, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	var id int
	err = s.db.QueryRow(ctx,
		`INSERT INTO workflows (graph_data) VALUES ($1) RETURNING id`,
		data,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert workflow: %w", err)
	}
	return &ports.Workflow{ID: id, GraphData: snapshot}, nil
}

// Save replaces the snapshot of an existing workflow.
func (s *Store) Save(ctx context.Context, workflow *ports.Workflow) error {
	data, err := json.Marshal(workflow.GraphData)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE workflows SET graph_data = $1 WHERE id = $2`,
		data, workflow.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update workflow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.NotFoundWorkflow(workflow.ID)
	}
	return nil
}

// Load retrieves a workflow by id.
func (s *Store) Load(ctx context.Context, id int) (*ports.Workflow, error) {
	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT graph_data FROM workflows WHERE id = $1`, id,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.NotFoundWorkflow(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select workflow: %w", err)
	}
	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &ports.Workflow{ID: id, GraphData: snapshot}, nil
}

// Delete removes a workflow by id.
func (s *Store) Delete(ctx context.Context, id int) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.NotFoundWorkflow(id)
	}
	return nil
}

// List returns all workflows ordered by id.
func (s *Store) List(ctx context.Context) ([]*ports.Workflow, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, graph_data FROM workflows ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	var out []*ports.Workflow
	for rows.Next() {
		var (
			id   int
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan workflow row: %w", err)
		}
		var snapshot domain.Snapshot
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		out = append(out, &ports.Workflow{ID: id, GraphData: snapshot})
	}
	return out, rows.Err()
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.db.Close()
}
