package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ostryzhko/flowpath/pkg/domain"
	"github.com/ostryzhko/flowpath/pkg/ports"
)

// envelopeKey marks a snapshot whose graph data is an encrypted blob.
const envelopeKey = "__encrypted__"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionStore struct {
	next   ports.WorkflowStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts workflow
// snapshots at rest using AES-GCM. The backing store only ever sees an
// opaque envelope.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.WorkflowStore) ports.WorkflowStore {
		return &encryptionStore{
			next:   next,
			config: config,
		}
	}
}

func (s *encryptionStore) Create(ctx context.Context, snapshot domain.Snapshot) (*ports.Workflow, error) {
	envelope, err := s.seal(snapshot)
	if err != nil {
		return nil, err
	}
	wf, err := s.next.Create(ctx, envelope)
	if err != nil {
		return nil, err
	}
	wf.GraphData = snapshot
	return wf, nil
}

func (s *encryptionStore) Save(ctx context.Context, workflow *ports.Workflow) error {
	envelope, err := s.seal(workflow.GraphData)
	if err != nil {
		return err
	}
	return s.next.Save(ctx, &ports.Workflow{ID: workflow.ID, GraphData: envelope})
}

func (s *encryptionStore) Load(ctx context.Context, id int) (*ports.Workflow, error) {
	wf, err := s.next.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.open(wf); err != nil {
		return nil, err
	}
	return wf, nil
}

func (s *encryptionStore) Delete(ctx context.Context, id int) error {
	return s.next.Delete(ctx, id)
}

func (s *encryptionStore) List(ctx context.Context) ([]*ports.Workflow, error) {
	workflows, err := s.next.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, wf := range workflows {
		if err := s.open(wf); err != nil {
			return nil, fmt.Errorf("workflow %d: %w", wf.ID, err)
		}
	}
	return workflows, nil
}

// seal serializes the snapshot and wraps the ciphertext in an envelope
// snapshot that hides nodes and edges entirely.
func (s *encryptionStore) seal(snapshot domain.Snapshot) (domain.Snapshot, error) {
	plaintext, err := json.Marshal(snapshot)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	ciphertext, err := encrypt(plaintext, s.config.ActiveKey)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to encrypt snapshot: %w", err)
	}

	envelope := domain.EmptySnapshot()
	envelope.Graph[envelopeKey] = base64.StdEncoding.EncodeToString(ciphertext)
	return envelope, nil
}

// open replaces a workflow's envelope with the decrypted snapshot in place.
func (s *encryptionStore) open(wf *ports.Workflow) error {
	encoded, ok := wf.GraphData.Graph[envelopeKey].(string)
	if !ok {
		// Fail secure: with encryption configured, a plain record is
		// either corruption or a misconfigured backend.
		return errors.New("workflow is missing its encrypted data envelope")
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}
	plaintext, err := decryptWithRotation(ciphertext, s.config.ActiveKey, s.config.FallbackKeys)
	if err != nil {
		return fmt.Errorf("failed to decrypt snapshot: %w", err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(plaintext, &snapshot); err != nil {
		return fmt.Errorf("failed to unmarshal decrypted snapshot: %w", err)
	}
	wf.GraphData = snapshot
	return nil
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
