// Package memory implements ports.WorkflowStore in process memory. It is
// the default backend for tests and single-process serving.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/ostryzhko/flowpath/pkg/domain"
	"github.com/ostryzhko/flowpath/pkg/ports"
)

// Store keeps workflows in a mutex-guarded map.
type Store struct {
	mu        sync.Mutex
	nextID    int
	workflows map[int]*ports.Workflow
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		nextID:    1,
		workflows: make(map[int]*ports.Workflow),
	}
}

// Create persists a new workflow under the next free id.
func (s *Store) Create(ctx context.Context, snapshot domain.Snapshot) (*ports.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wf := &ports.Workflow{ID: s.nextID, GraphData: snapshot}
	s.nextID++
	stored, err := clone(wf)
	if err != nil {
		return nil, err
	}
	s.workflows[wf.ID] = stored
	return wf, nil
}

// Save replaces the snapshot of an existing workflow.
func (s *Store) Save(ctx context.Context, workflow *ports.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workflows[workflow.ID]; !ok {
		return ports.NotFoundWorkflow(workflow.ID)
	}
	stored, err := clone(workflow)
	if err != nil {
		return err
	}
	s.workflows[workflow.ID] = stored
	return nil
}

// Load retrieves a workflow by id.
func (s *Store) Load(ctx context.Context, id int) (*ports.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wf, ok := s.workflows[id]
	if !ok {
		return nil, ports.NotFoundWorkflow(id)
	}
	return clone(wf)
}

// Delete removes a workflow by id.
func (s *Store) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workflows[id]; !ok {
		return ports.NotFoundWorkflow(id)
	}
	delete(s.workflows, id)
	return nil
}

// List returns all workflows ordered by id.
func (s *Store) List(ctx context.Context) ([]*ports.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(s.workflows))
	for id := range s.workflows {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]*ports.Workflow, 0, len(ids))
	for _, id := range ids {
		wf, err := clone(s.workflows[id])
		if err != nil {
			return nil, err
		}
		out = append(out, wf)
	}
	return out, nil
}

// clone isolates stored records from caller mutation. Snapshots hold nested
// maps, so a JSON round-trip is the simplest faithful deep copy.
func clone(wf *ports.Workflow) (*ports.Workflow, error) {
	data, err := json.Marshal(wf)
	if err != nil {
		return nil, err
	}
	var out ports.Workflow
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
