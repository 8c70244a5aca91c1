package middleware_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostryzhko/flowpath/internal/adapters/memory"
	"github.com/ostryzhko/flowpath/pkg/domain"
	"github.com/ostryzhko/flowpath/pkg/dsl"
	"github.com/ostryzhko/flowpath/pkg/persistence/middleware"
	storetests "github.com/ostryzhko/flowpath/pkg/ports/tests"
)

func testKey(b byte) []byte { return bytes.Repeat([]byte{b}, 32) }

func testSnapshot(t *testing.T) domain.Snapshot {
	t.Helper()
	snapshot, err := dsl.New().
		Start(0).
		Message(1, "secret text", domain.StatusSent).
		End(2).
		Go(0, 1).
		Go(1, 2).
		Build()
	require.NoError(t, err)
	return snapshot
}

func TestEncryptionStoreContract(t *testing.T) {
	wrap := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: testKey(1),
	})
	storetests.WorkflowStoreContract(t, wrap(memory.New()))
}

func TestEncryptionHidesPlaintext(t *testing.T) {
	ctx := context.Background()
	backing := memory.New()
	wrap := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: testKey(1),
	})
	store := wrap(backing)

	wf, err := store.Create(ctx, testSnapshot(t))
	require.NoError(t, err)

	// The caller sees plaintext.
	assert.Len(t, wf.GraphData.Nodes, 3)

	// The backing store only holds the envelope.
	raw, err := backing.Load(ctx, wf.ID)
	require.NoError(t, err)
	assert.Empty(t, raw.GraphData.Nodes)
	assert.Contains(t, raw.GraphData.Graph, "__encrypted__")

	loaded, err := store.Load(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret text", loaded.GraphData.Nodes[1]["message_text"])
}

func TestEncryptionKeyRotation(t *testing.T) {
	ctx := context.Background()
	backing := memory.New()

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: testKey(1),
	})(backing)
	wf, err := oldStore.Create(ctx, testSnapshot(t))
	require.NoError(t, err)

	t.Run("fallback key reads old records", func(t *testing.T) {
		rotated := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    testKey(2),
			FallbackKeys: [][]byte{testKey(1)},
		})(backing)

		loaded, err := rotated.Load(ctx, wf.ID)
		require.NoError(t, err)
		assert.Len(t, loaded.GraphData.Nodes, 3)
	})

	t.Run("wrong key fails", func(t *testing.T) {
		wrong := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey: testKey(9),
		})(backing)

		_, err := wrong.Load(ctx, wf.ID)
		assert.Error(t, err)
	})
}

func TestEncryptionRejectsPlainRecords(t *testing.T) {
	ctx := context.Background()
	backing := memory.New()

	// A record written without encryption cannot be opened.
	plain, err := backing.Create(ctx, testSnapshot(t))
	require.NoError(t, err)

	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: testKey(1),
	})(backing)
	_, err = store.Load(ctx, plain.ID)
	assert.Error(t, err)
}

func TestEncryptionRequires32ByteKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	})
}
