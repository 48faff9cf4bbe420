// Package placement persists per-group bounding boxes across restarts for
// the external target-box preview: the last bounds a group was seen with,
// and the largest width/height it has ever reached.
package placement

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"overlay-hud/internal/grouping"
	"overlay-hud/pkg/geometry"
)

// Entry is the persisted record for one group. MaxWidth/MaxHeight grow
// per-axis independently and only ever shrink through Reset.
type Entry struct {
	LastVisible geometry.Bounds `json:"last_visible_base_bounds"`
	HasLast     bool            `json:"has_last"`
	MaxWidth    float64         `json:"max_width"`
	MaxHeight   float64         `json:"max_height"`
	LastSeen    time.Time       `json:"last_seen"`
}

// Cache owns the placement records. Writes come from the render loop only
// (single-writer discipline); Select takes a consistent view under the lock,
// so interleaved reads are safe.
type Cache struct {
	mu      sync.RWMutex
	path    string
	entries map[string]Entry
}

// Load reads the cache file, or starts empty if it doesn't exist or fails
// to parse. A corrupt cache is not worth failing startup over.
func Load(path string) *Cache {
	c := &Cache{path: path, entries: make(map[string]Entry)}

	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	_ = json.Unmarshal(data, &c.entries)
	if c.entries == nil {
		c.entries = make(map[string]Entry)
	}
	return c
}

// Record notes that a group rendered visibly this repaint with the given
// base bounds. The last-visible box is overwritten; the max grows per axis,
// width and height compared independently.
func (c *Cache) Record(key string, bounds geometry.Bounds, now time.Time) {
	if bounds.Empty() {
		return
	}

	c.mu.Lock()
	e := c.entries[key]
	e.LastVisible = bounds
	e.HasLast = true
	e.LastSeen = now
	if w := bounds.Width(); w > e.MaxWidth {
		e.MaxWidth = w
	}
	if h := bounds.Height(); h > e.MaxHeight {
		e.MaxHeight = h
	}
	c.entries[key] = e
	c.mu.Unlock()
}

// Select returns the preview box for a group. In max mode the box takes the
// per-axis maxima, anchored at the last-visible position, falling back to
// the last-visible box when no max has been recorded yet.
func (c *Cache) Select(key string, mode grouping.PreviewBoxMode) (geometry.Bounds, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !e.HasLast {
		return geometry.Bounds{}, false
	}

	if mode == grouping.PreviewMax && e.MaxWidth > 0 && e.MaxHeight > 0 {
		return geometry.Bounds{
			MinX: e.LastVisible.MinX,
			MinY: e.LastVisible.MinY,
			MaxX: e.LastVisible.MinX + e.MaxWidth,
			MaxY: e.LastVisible.MinY + e.MaxHeight,
		}, true
	}
	return e.LastVisible, true
}

// Save writes the cache to disk.
func (c *Cache) Save() error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c.entries, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}

// Reset clears every record, in memory and on disk, immediately. This is
// the only way a recorded max ever shrinks; the very next Record starts it
// from scratch.
func (c *Cache) Reset() error {
	c.mu.Lock()
	c.entries = make(map[string]Entry)
	c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.path, []byte("{}\n"), 0o644)
}
