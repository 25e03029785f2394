package usecases

import (
	"github.com/rs/zerolog"

	"rolebot/internal/repository"
)

// DefaultSettings are seeded into the store at startup and define the set of
// valid keys; /set rejects anything else.
var DefaultSettings = map[string]string{
	"language":       "en",
	"timezone":       "Africa/Cairo",
	"notifications":  "true",
	"default_target": "all",
	"time_format":    "24h",
	"log_level":      "info",
}

// SettingsManager layers defaults over the persisted settings table. Values
// are mutable at runtime; consumers re-read on use rather than caching.
type SettingsManager struct {
	repo *repository.SettingsRepository
	log  zerolog.Logger
}

func NewSettingsManager(repo *repository.SettingsRepository, log zerolog.Logger) (*SettingsManager, error) {
	m := &SettingsManager{
		repo: repo,
		log:  log.With().Str("component", "settings").Logger(),
	}
	for key, val := range DefaultSettings {
		_, found, err := repo.Get(key)
		if err != nil {
			return nil, err
		}
		if !found {
			if err := repo.Set(key, val); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Get returns the stored value, falling back to the default. Store failures
// are logged and fall back as well: settings reads sit on hot paths (every
// scheduler cycle) that must not die on a transient store error.
func (m *SettingsManager) Get(key string) string {
	value, found, err := m.repo.Get(key)
	if err != nil {
		m.log.Error().Err(err).Str("key", key).Msg("settings read failed")
		return DefaultSettings[key]
	}
	if !found {
		return DefaultSettings[key]
	}
	return value
}

// Set updates a known setting. Unknown keys report false without writing.
func (m *SettingsManager) Set(key, value string) (bool, error) {
	if _, known := DefaultSettings[key]; !known {
		return false, nil
	}
	if err := m.repo.Set(key, value); err != nil {
		return false, err
	}
	m.log.Info().Str("key", key).Str("value", value).Msg("setting updated")
	return true, nil
}

// All returns the defaults merged with stored overrides.
func (m *SettingsManager) All() (map[string]string, error) {
	stored, err := m.repo.All()
	if err != nil {
		return nil, err
	}
	merged := make(map[string]string, len(DefaultSettings))
	for k, v := range DefaultSettings {
		merged[k] = v
	}
	for k, v := range stored {
		merged[k] = v
	}
	return merged, nil
}
