// Package prefs provides JSON-based application preferences for the HUD:
// scaling mode, physical-clamp settings, per-monitor overrides, debounce
// tuning.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const (
	configDirName = "overlay-hud"
	prefsFile     = "preferences.json"
)

// Preference keys the HUD reads. Kept together so the prefs file stays
// greppable.
const (
	KeyMode             = "mode" // "fit" or "fill"
	KeyClampEnabled     = "clamp_enabled"
	KeyMonitorOverrides = "monitor_overrides"
	KeyDebounceMillis   = "debounce_ms"
	KeyDebounceDisabled = "debounce_disabled"
	KeyListenAddr       = "listen_addr"
)

// Prefs stores application preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
}

// Dir returns the HUD's config directory, creating nothing.
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, configDirName)
}

// Load reads preferences from the config directory. Returns a Prefs with
// defaults if the file doesn't exist.
func Load() *Prefs {
	p := &Prefs{
		values: make(map[string]interface{}),
		path:   filepath.Join(Dir(), prefsFile),
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p.values)
	return p
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// String returns a string preference, or fallback if not set.
func (p *Prefs) String(key, fallback string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

// SetString stores a string preference.
func (p *Prefs) SetString(key, val string) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Float returns a float64 preference, or fallback if not set.
func (p *Prefs) Float(key string, fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}

// Bool returns a bool preference, or fallback if not set.
func (p *Prefs) Bool(key string, fallback bool) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}

// SetBool stores a bool preference.
func (p *Prefs) SetBool(key string, val bool) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Map returns a nested object preference, such as the per-monitor scale
// overrides. Values inside the map are raw JSON types; validation is the
// consumer's job.
func (p *Prefs) Map(key string) map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if m, ok := v.(map[string]interface{}); ok {
			out := make(map[string]interface{}, len(m))
			for k, val := range m {
				out[k] = val
			}
			return out
		}
	}
	return nil
}
