// Package ports defines the interfaces between the workflow core and its
// collaborators (persistence, transport).
package ports

import (
	"context"
	"fmt"

	"github.com/ostryzhko/flowpath/pkg/domain"
)

// Workflow is the persisted record: an identifier plus the node-link
// snapshot of its graph. The snapshot is the sole persisted representation
// of the graph.
type Workflow struct {
	ID        int             `json:"id"`
	GraphData domain.Snapshot `json:"graph_data"`
}

// NotFoundWorkflow builds the lookup-miss error for a workflow id.
func NotFoundWorkflow(id int) *domain.NotFoundError {
	return &domain.NotFoundError{Kind: "workflow", Key: fmt.Sprintf("%d", id)}
}

// WorkflowStore persists workflow records. Implementations are responsible
// for serializing access to a given workflow: the core assumes one
// load → mutate → save cycle per request, never a shared live graph.
type WorkflowStore interface {
	// Create persists a new workflow and returns it with its assigned id.
	Create(ctx context.Context, snapshot domain.Snapshot) (*Workflow, error)

	// Save replaces the snapshot of an existing workflow.
	Save(ctx context.Context, workflow *Workflow) error

	// Load retrieves a workflow by id. Returns a *domain.NotFoundError
	// when the id is absent.
	Load(ctx context.Context, id int) (*Workflow, error)

	// Delete removes a workflow by id. Returns a *domain.NotFoundError
	// when the id is absent.
	Delete(ctx context.Context, id int) error

	// List returns all workflows ordered by id.
	List(ctx context.Context) ([]*Workflow, error)
}
