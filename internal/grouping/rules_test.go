package grouping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overlay-hud/pkg/geometry"
)

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "groups.json")

	data := `{
		"nav": {
			"id_prefixes": ["wp-"],
			"groups": [{"prefix": "wp-alpha-", "anchor": "se", "border_width": 3}],
			"background": "#00000080",
			"controller_preview_box_mode": "max"
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Contains(t, rules, "nav")

	nav := rules["nav"]
	assert.Equal(t, []string{"wp-"}, nav.IDPrefixes)
	require.Len(t, nav.Groups, 1)
	assert.Equal(t, geometry.AnchorSE, nav.Groups[0].Anchor)
	require.NotNil(t, nav.Groups[0].BorderWidth)
	assert.Equal(t, 3.0, *nav.Groups[0].BorderWidth)
	assert.Equal(t, PreviewMax, nav.PreviewBoxMode)
}

func TestLoadRulesMissingFile(t *testing.T) {
	rules, err := LoadRules(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestLoadRulesMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "groups.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))

	_, err := LoadRules(path)
	assert.Error(t, err)
}
