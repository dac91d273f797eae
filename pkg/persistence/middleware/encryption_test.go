package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/logicflow/pkg/adapters/memory"
	"github.com/aretw0/logicflow/pkg/domain"
	"github.com/aretw0/logicflow/pkg/persistence/middleware"
	"github.com/aretw0/logicflow/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func sealed(t *testing.T, next ports.ConversationStore, cfg middleware.EncryptionConfig) ports.ConversationStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunConversationStoreContract(t, sealed(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := sealed(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})

	ctx := context.Background()
	conv := domain.NewConversation("s1")
	conv.FlowText = "INPUT: Card number\nOUTPUT: Charged"
	conv.Turns = append(conv.Turns, domain.Turn{Role: domain.RoleUser, Content: "my-secret-sauce"})
	require.NoError(t, secure.Save(ctx, "s1", conv))

	stored, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", stored.ID)
	assert.Empty(t, stored.Turns)
	assert.True(t, strings.HasPrefix(stored.FlowText, "sealed:v1:"))
	assert.NotContains(t, stored.FlowText, "Card number")

	loaded, err := secure.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, conv.FlowText, loaded.FlowText)
	assert.Equal(t, "my-secret-sauce", loaded.Turns[0].Content)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldStore := sealed(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	conv := domain.NewConversation("rot")
	conv.FlowText = "encrypted-with-old-key"
	require.NoError(t, oldStore.Save(ctx, "rot", conv))

	newStore := sealed(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	loaded, err := newStore.Load(ctx, "rot")
	require.NoError(t, err)
	assert.Equal(t, "encrypted-with-old-key", loaded.FlowText)

	loaded.FlowText = "encrypted-with-new-key"
	require.NoError(t, newStore.Save(ctx, "rot", loaded))

	_, err = oldStore.Load(ctx, "rot")
	assert.ErrorContains(t, err, "decryption failed")
}

func TestEncryptionMiddleware_PlainConversation(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "plain", domain.NewConversation("plain")))

	_, err := sealed(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)}).Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.ErrorContains(t, err, "fallback key 0")
}
