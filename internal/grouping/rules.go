// Package grouping clusters live payloads into rigid groups by plugin and
// id-prefix, computes each group's bounds and anchor, and in Fill mode
// derives the anchor-relative correction that keeps grouped payloads at
// their original logical size.
package grouping

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"overlay-hud/pkg/geometry"
)

// PreviewBoxMode selects which persisted bounding box the external target
// box preview uses.
type PreviewBoxMode string

const (
	PreviewLast PreviewBoxMode = "last"
	PreviewMax  PreviewBoxMode = "max"
)

// GroupRule is a nested id-prefix group inside a plugin entry. Members whose
// id starts with Prefix form one rigid group.
type GroupRule struct {
	Prefix      string          `json:"prefix"`
	Anchor      geometry.Anchor `json:"anchor,omitempty"`
	Background  string          `json:"background,omitempty"`
	BorderColor string          `json:"border_color,omitempty"`
	// BorderWidth is a pointer so an explicit zero can override a nonzero
	// plugin-level default; nil means "not declared here".
	BorderWidth    *float64       `json:"border_width,omitempty"`
	LabelPosition  string         `json:"label_position,omitempty"`
	PreviewBoxMode PreviewBoxMode `json:"controller_preview_box_mode,omitempty"`
}

// PluginRules is the grouping declaration for one plugin: which ids group at
// all, the nested prefix groups refining them, and plugin-level presentation
// defaults for groups that don't declare their own.
type PluginRules struct {
	IDPrefixes []string    `json:"id_prefixes"`
	Groups     []GroupRule `json:"groups,omitempty"`

	Anchor         geometry.Anchor `json:"anchor,omitempty"`
	Background     string          `json:"background,omitempty"`
	BorderColor    string          `json:"border_color,omitempty"`
	BorderWidth    *float64        `json:"border_width,omitempty"`
	LabelPosition  string          `json:"label_position,omitempty"`
	PreviewBoxMode PreviewBoxMode  `json:"controller_preview_box_mode,omitempty"`
}

// Rules maps plugin name to its grouping declaration. The engine treats this
// as read-only input per repaint.
type Rules map[string]PluginRules

// DefaultRules returns the shipped grouping defaults. Plugins declare their
// own grouping in the user rules file; the only shipped convention is that
// ids prefixed "grp-" group per plugin, which is what the legacy senders
// that wanted rigid layout already did.
func DefaultRules() Rules {
	return Rules{
		"unknown": {IDPrefixes: []string{"grp-"}},
	}
}

// LoadRules reads a rules file. A missing file is not an error, just empty
// rules.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Rules{}, nil
		}
		return nil, err
	}

	var r Rules
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return r, nil
}

// Merge overlays user rules onto shipped defaults. A user entry replaces the
// default entry for the same plugin wholesale; partial merging within one
// plugin was never how the legacy config behaved.
func Merge(defaults, user Rules) Rules {
	merged := make(Rules, len(defaults)+len(user))
	for plugin, r := range defaults {
		merged[plugin] = r
	}
	for plugin, r := range user {
		merged[plugin] = r
	}
	return merged
}

// resolved is the outcome of matching one payload id against the rules.
type resolved struct {
	key  string
	rule GroupRule
	mode PreviewBoxMode
}

// resolve matches plugin+id against the rules. ok is false for payloads that
// stay ungrouped.
func (r Rules) resolve(plugin, id string) (resolved, bool) {
	pr, ok := r[plugin]
	if !ok {
		return resolved{}, false
	}

	// The id must match one of the plugin's grouping prefixes at all.
	base := longestPrefix(pr.IDPrefixes, id)
	if base == "" {
		return resolved{}, false
	}

	// A nested group with a longer matching prefix refines the key and
	// supplies presentation overrides.
	var best *GroupRule
	for i := range pr.Groups {
		g := &pr.Groups[i]
		if g.Prefix != "" && strings.HasPrefix(id, g.Prefix) {
			if best == nil || len(g.Prefix) > len(best.Prefix) {
				best = g
			}
		}
	}

	rule := GroupRule{
		Prefix:         base,
		Anchor:         pr.Anchor,
		Background:     pr.Background,
		BorderColor:    pr.BorderColor,
		BorderWidth:    pr.BorderWidth,
		LabelPosition:  pr.LabelPosition,
		PreviewBoxMode: pr.PreviewBoxMode,
	}
	if best != nil {
		rule = fillRule(*best, rule)
	}

	mode := rule.PreviewBoxMode
	if mode == "" {
		mode = PreviewLast
	}
	return resolved{key: plugin + "/" + rule.Prefix, rule: rule, mode: mode}, true
}

// fillRule backfills unset fields of a nested group rule from the
// plugin-level defaults.
func fillRule(g, def GroupRule) GroupRule {
	if g.Anchor == "" {
		g.Anchor = def.Anchor
	}
	if g.Background == "" {
		g.Background = def.Background
	}
	if g.BorderColor == "" {
		g.BorderColor = def.BorderColor
	}
	if g.BorderWidth == nil {
		g.BorderWidth = def.BorderWidth
	}
	if g.LabelPosition == "" {
		g.LabelPosition = def.LabelPosition
	}
	if g.PreviewBoxMode == "" {
		g.PreviewBoxMode = def.PreviewBoxMode
	}
	return g
}

// borderWidth resolves the declared width; an undeclared width is zero.
func (g GroupRule) borderWidth() float64 {
	if g.BorderWidth != nil {
		return *g.BorderWidth
	}
	return 0
}

func longestPrefix(prefixes []string, id string) string {
	var best string
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(id, p) && len(p) > len(best) {
			best = p
		}
	}
	return best
}

// WatchRules watches a rules file and invokes onReload with the freshly
// loaded rules whenever it changes. Returns a stop function. Load errors are
// logged and the previous rules stay in effect.
func WatchRules(path string, onReload func(Rules)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors replace files, which drops a watch on
	// the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				rules, err := LoadRules(path)
				if err != nil {
					log.Printf("grouping: reload of %s failed: %v", path, err)
					continue
				}
				log.Printf("grouping: reloaded rules from %s (%d plugins)", path, len(rules))
				onReload(rules)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("grouping: rules watcher error: %v", err)
			}
		}
	}()

	return func() { watcher.Close() }, nil
}
