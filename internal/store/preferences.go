package store

import (
	"context"
	"sync"

	"github.com/jjenkins/liturgical/internal/model"
)

// PreferenceStore persists the site-wide preferences.
type PreferenceStore interface {
	// Load returns the stored preferences, with defaults for anything unset.
	Load(ctx context.Context) (model.Preferences, error)
	Save(ctx context.Context, prefs model.Preferences) error
	// EnsureDefaults writes the default value of every preference that has
	// never been stored. Existing values are left alone.
	EnsureDefaults(ctx context.Context) error
}

// MemoryPreferences keeps preferences in process memory.
type MemoryPreferences struct {
	mu    sync.RWMutex
	prefs *model.Preferences
}

// NewMemoryPreferences creates an empty in-memory preference store.
func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{}
}

func (m *MemoryPreferences) Load(_ context.Context) (model.Preferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.prefs == nil {
		return model.DefaultPreferences(), nil
	}
	return clonePreferences(*m.prefs), nil
}

func (m *MemoryPreferences) Save(_ context.Context, prefs model.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := clonePreferences(prefs)
	m.prefs = &p
	return nil
}

func (m *MemoryPreferences) EnsureDefaults(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prefs == nil {
		p := model.DefaultPreferences()
		m.prefs = &p
	}
	return nil
}

func clonePreferences(p model.Preferences) model.Preferences {
	p.BannerElements = append([]string(nil), p.BannerElements...)
	return p
}
