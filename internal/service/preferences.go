package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rrens/qorix-chat/internal/domain"
	"github.com/Rrens/qorix-chat/internal/security"
	"github.com/rs/zerolog/log"
)

// PreferencesService manages the stored API key and theme.
// It is the credential source of the completion client.
type PreferencesService struct {
	kv        domain.KVStore
	encryptor *security.Encryptor
	// fallbackKey comes from configuration and is used when nothing is stored
	fallbackKey string
	provider    string
	model       string
}

// NewPreferencesService creates a new preferences service.
// A nil encryptor stores the key as plain text.
func NewPreferencesService(kv domain.KVStore, encryptor *security.Encryptor, fallbackKey, provider, model string) *PreferencesService {
	return &PreferencesService{
		kv:          kv,
		encryptor:   encryptor,
		fallbackKey: fallbackKey,
		provider:    provider,
		model:       model,
	}
}

// APIKey returns the stored key, or the configured one when none is stored
func (s *PreferencesService) APIKey(ctx context.Context) (string, error) {
	stored, err := s.storedAPIKey(ctx)
	if err != nil {
		return s.fallbackKey, err
	}
	if stored != "" {
		return stored, nil
	}
	return s.fallbackKey, nil
}

func (s *PreferencesService) storedAPIKey(ctx context.Context) (string, error) {
	value, err := s.kv.Get(ctx, domain.KeyAPIKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read api key: %w", err)
	}

	if !security.IsEncrypted(value) {
		return value, nil
	}
	if s.encryptor == nil {
		return "", errors.New("stored api key is encrypted but no encryption secret is configured")
	}
	key, err := s.encryptor.Open(domain.KeyAPIKey, value)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt api key: %w", err)
	}
	return key, nil
}

// SetAPIKey stores a trimmed, non-empty API key
func (s *PreferencesService) SetAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrEmptyAPIKey
	}

	value := key
	if s.encryptor != nil {
		encrypted, err := s.encryptor.Seal(domain.KeyAPIKey, key)
		if err != nil {
			return fmt.Errorf("failed to encrypt api key: %w", err)
		}
		value = encrypted
	}

	if err := s.kv.Set(ctx, domain.KeyAPIKey, value); err != nil {
		return fmt.Errorf("failed to save api key: %w", err)
	}
	log.Info().Bool("encrypted", s.encryptor != nil).Msg("api key saved")
	return nil
}

// Theme returns the stored theme, light when unset or unreadable
func (s *PreferencesService) Theme(ctx context.Context) domain.Theme {
	value, err := s.kv.Get(ctx, domain.KeyTheme)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error().Err(err).Msg("failed to read theme")
		}
		return domain.ThemeLight
	}
	theme := domain.Theme(value)
	if !theme.Valid() {
		return domain.ThemeLight
	}
	return theme
}

// SetTheme stores the theme preference
func (s *PreferencesService) SetTheme(ctx context.Context, theme domain.Theme) error {
	if !theme.Valid() {
		return domain.ErrInvalidTheme
	}
	if err := s.kv.Set(ctx, domain.KeyTheme, string(theme)); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}

// Settings returns the user-visible view of the preferences
func (s *PreferencesService) Settings(ctx context.Context) domain.Settings {
	key, err := s.APIKey(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve api key")
	}
	return domain.Settings{
		Theme:     s.Theme(ctx),
		HasAPIKey: key != "",
		Provider:  s.provider,
		Model:     s.model,
	}
}
