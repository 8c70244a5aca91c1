// Package tests provides reusable contract suites for ports implementations.
package tests

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostryzhko/flowpath/pkg/domain"
	"github.com/ostryzhko/flowpath/pkg/ports"
)

// WorkflowStoreContract verifies that an adapter complies with
// ports.WorkflowStore.
func WorkflowStoreContract(t *testing.T, store ports.WorkflowStore) {
	t.Helper()
	ctx := context.Background()

	snapshot := domain.Snapshot{
		Directed:   true,
		Multigraph: false,
		Graph:      map[string]any{},
		Nodes: []map[string]any{
			{"id": 0, "type": "start"},
			{"id": 1, "type": "end"},
		},
		Links: []map[string]any{
			{"source": 0, "target": 1},
		},
	}

	t.Run("Create_AssignsID", func(t *testing.T) {
		wf, err := store.Create(ctx, snapshot)
		require.NoError(t, err)
		assert.NotZero(t, wf.ID)
		assertSameSnapshot(t, snapshot, wf.GraphData)
	})

	t.Run("Load_RoundTrip", func(t *testing.T) {
		created, err := store.Create(ctx, snapshot)
		require.NoError(t, err)

		loaded, err := store.Load(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, loaded.ID)
		assertSameSnapshot(t, snapshot, loaded.GraphData)
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, 999999)
		require.Error(t, err)
		var notFound *domain.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("Save_Replaces", func(t *testing.T) {
		created, err := store.Create(ctx, snapshot)
		require.NoError(t, err)

		created.GraphData = domain.EmptySnapshot()
		require.NoError(t, store.Save(ctx, created))

		loaded, err := store.Load(ctx, created.ID)
		require.NoError(t, err)
		assert.Empty(t, loaded.GraphData.Nodes)
	})

	t.Run("Delete_ThenLoadFails", func(t *testing.T) {
		created, err := store.Create(ctx, snapshot)
		require.NoError(t, err)
		require.NoError(t, store.Delete(ctx, created.ID))

		_, err = store.Load(ctx, created.ID)
		var notFound *domain.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("Delete_NotFound", func(t *testing.T) {
		err := store.Delete(ctx, 999999)
		var notFound *domain.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("List_OrderedByID", func(t *testing.T) {
		workflows, err := store.List(ctx)
		require.NoError(t, err)
		for i := 1; i < len(workflows); i++ {
			assert.Less(t, workflows[i-1].ID, workflows[i].ID)
		}
	})
}

// assertSameSnapshot compares snapshots through their JSON form, since a
// store may round-trip numeric ids as float64.
func assertSameSnapshot(t *testing.T, want, got domain.Snapshot) {
	t.Helper()
	wantJSON, err := json.Marshal(want)
	require.NoError(t, err)
	gotJSON, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(wantJSON), string(gotJSON))
}
