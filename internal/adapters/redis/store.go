// Package redis implements ports.WorkflowStore on Redis. Workflows are
// stored as JSON values under a key prefix; ids come from an INCR sequence.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	backend "github.com/redis/go-redis/v9"

	"github.com/ostryzhko/flowpath/pkg/domain"
	"github.com/ostryzhko/flowpath/pkg/ports"
)

// Store implements ports.WorkflowStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
}

type Option func(*Store)

// WithPrefix sets the key prefix for workflow records.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "flowpath:workflow:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(id int) string {
	return s.prefix + strconv.Itoa(id)
}

func (s *Store) seqKey() string {
	return s.prefix + "seq"
}

// Create persists a new workflow under an id from the INCR sequence.
func (s *Store) Create(ctx context.Context, snapshot domain.Snapshot) (*ports.Workflow, error) {
	id, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate workflow id: %w", err)
	}
	wf := &ports.Workflow{ID: int(id), GraphData: snapshot}
	if err := s.write(ctx, wf); err != nil {
		return nil, err
	}
	return wf, nil
}

// Save replaces the snapshot of an existing workflow.
func (s *Store) Save(ctx context.Context, workflow *ports.Workflow) error {
	exists, err := s.client.Exists(ctx, s.key(workflow.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check workflow existence: %w", err)
	}
	if exists == 0 {
		return ports.NotFoundWorkflow(workflow.ID)
	}
	return s.write(ctx, workflow)
}

func (s *Store) write(ctx context.Context, wf *ports.Workflow) error {
	data, err := json.Marshal(wf)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}
	if err := s.client.Set(ctx, s.key(wf.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves a workflow by id.
func (s *Store) Load(ctx context.Context, id int) (*ports.Workflow, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, ports.NotFoundWorkflow(id)
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	var wf ports.Workflow
	if err := json.Unmarshal([]byte(val), &wf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
	}
	return &wf, nil
}

// Delete removes a workflow by id.
func (s *Store) Delete(ctx context.Context, id int) error {
	removed, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	if removed == 0 {
		return ports.NotFoundWorkflow(id)
	}
	return nil
}

// List returns all workflows ordered by id, scanning the key prefix.
func (s *Store) List(ctx context.Context) ([]*ports.Workflow, error) {
	var ids []int
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw := strings.TrimPrefix(iter.Val(), s.prefix)
		id, err := strconv.Atoi(raw)
		if err != nil {
			continue // sequence key or foreign entry
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan workflows: %w", err)
	}
	sort.Ints(ids)

	out := make([]*ports.Workflow, 0, len(ids))
	for _, id := range ids {
		wf, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, wf)
	}
	return out, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
