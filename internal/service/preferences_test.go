package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Rrens/qorix-chat/internal/domain"
	"github.com/Rrens/qorix-chat/internal/repository/memory"
	"github.com/Rrens/qorix-chat/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPreferencesService_APIKey(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back to configured key", func(t *testing.T) {
		svc := NewPreferencesService(memory.NewKVStore(), nil, "env-key", "openrouter", "m")

		key, err := svc.APIKey(ctx)
		require.NoError(t, err)
		assert.Equal(t, "env-key", key)
	})

	t.Run("stored key wins and is trimmed", func(t *testing.T) {
		kv := memory.NewKVStore()
		svc := NewPreferencesService(kv, nil, "env-key", "openrouter", "m")

		require.NoError(t, svc.SetAPIKey(ctx, "  sk-stored \n"))

		key, err := svc.APIKey(ctx)
		require.NoError(t, err)
		assert.Equal(t, "sk-stored", key)

		raw, _ := kv.Get(ctx, domain.KeyAPIKey)
		assert.Equal(t, "sk-stored", raw)
	})

	t.Run("empty key is rejected", func(t *testing.T) {
		svc := NewPreferencesService(memory.NewKVStore(), nil, "", "openrouter", "m")

		assert.ErrorIs(t, svc.SetAPIKey(ctx, "   "), domain.ErrEmptyAPIKey)

		key, err := svc.APIKey(ctx)
		require.NoError(t, err)
		assert.Empty(t, key)
	})

	t.Run("encrypted at rest", func(t *testing.T) {
		kv := memory.NewKVStore()
		enc, err := security.NewEncryptorFromSecret("test-secret")
		require.NoError(t, err)
		svc := NewPreferencesService(kv, enc, "", "openrouter", "m")

		require.NoError(t, svc.SetAPIKey(ctx, "sk-secret"))

		raw, _ := kv.Get(ctx, domain.KeyAPIKey)
		assert.True(t, strings.HasPrefix(raw, security.EncryptedPrefix))
		assert.NotContains(t, raw, "sk-secret")

		key, err := svc.APIKey(ctx)
		require.NoError(t, err)
		assert.Equal(t, "sk-secret", key)
	})

	t.Run("read failure falls back", func(t *testing.T) {
		kv := new(MockKVStore)
		kv.On("Get", mock.Anything, domain.KeyAPIKey).Return("", errors.New("down"))
		svc := NewPreferencesService(kv, nil, "env-key", "openrouter", "m")

		key, err := svc.APIKey(ctx)
		assert.Error(t, err)
		assert.Equal(t, "env-key", key)
	})
}

func TestPreferencesService_Theme(t *testing.T) {
	ctx := context.Background()
	svc := NewPreferencesService(memory.NewKVStore(), nil, "", "openrouter", "m")

	assert.Equal(t, domain.ThemeLight, svc.Theme(ctx))

	require.NoError(t, svc.SetTheme(ctx, domain.ThemeDark))
	assert.Equal(t, domain.ThemeDark, svc.Theme(ctx))

	assert.ErrorIs(t, svc.SetTheme(ctx, "solarized"), domain.ErrInvalidTheme)
	assert.Equal(t, domain.ThemeDark, svc.Theme(ctx))
}

func TestPreferencesService_Settings(t *testing.T) {
	ctx := context.Background()
	svc := NewPreferencesService(memory.NewKVStore(), nil, "", "openrouter", "openai/gpt-4o-mini")

	settings := svc.Settings(ctx)
	assert.False(t, settings.HasAPIKey)
	assert.Equal(t, domain.ThemeLight, settings.Theme)
	assert.Equal(t, "openrouter", settings.Provider)
	assert.Equal(t, "openai/gpt-4o-mini", settings.Model)

	require.NoError(t, svc.SetAPIKey(ctx, "sk"))
	assert.True(t, svc.Settings(ctx).HasAPIKey)
}
