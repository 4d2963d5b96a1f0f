package presets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/gamedash/internal/contracts"
)

const presetsYAML = `presets:
  - name: sony-action
    description: Action games on Sony consoles
    selection:
      platforms: [PS4, PS3]
      genres: [Action]
      years: {min: 2010, max: 2016}
  - name: all-rpg
    selection:
      genres: [Role-Playing]
`

func TestParse(t *testing.T) {
	set, err := Parse([]byte(presetsYAML))
	require.NoError(t, err)

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"sony-action", "all-rpg"}, set.Names())
	assert.Len(t, set.Hash, 64)

	p, ok := set.Get("sony-action")
	require.True(t, ok)
	assert.Equal(t, contracts.FilterSelection{
		Platforms: []string{"PS4", "PS3"},
		Genres:    []string{"Action"},
		Years:     contracts.YearRange{Min: 2010, Max: 2016},
	}, p.Selection)

	rpg, ok := set.Get("all-rpg")
	require.True(t, ok)
	assert.Equal(t, contracts.NormalizationWindow, rpg.Selection.Years, "unset years default to the full window")

	_, ok = set.Get("missing")
	assert.False(t, ok)
}

func TestParse_HashDeterministic(t *testing.T) {
	a, err := Parse([]byte(presetsYAML))
	require.NoError(t, err)
	b, err := Parse([]byte(presetsYAML))
	require.NoError(t, err)

	assert.Equal(t, a.Hash, b.Hash)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{
			name:  "empty name",
			yaml:  "presets:\n  - name: \"\"\n",
			field: "presets[0].name",
		},
		{
			name:  "duplicate name",
			yaml:  "presets:\n  - name: a\n  - name: a\n",
			field: "presets[1].name",
		},
		{
			name:  "inverted years",
			yaml:  "presets:\n  - name: a\n    selection:\n      years: {min: 2020, max: 2010}\n",
			field: "presets[0].selection.years",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)

			var vErr ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("presets:\n  - name: a\n    selecton: {}\n"))
	assert.Error(t, err)
}

func TestParse_EmptyDocument(t *testing.T) {
	set, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	set, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
	assert.Empty(t, set.Names())

	path := filepath.Join(dir, "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(presetsYAML), 0o644))

	set, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
}

func TestNilSet(t *testing.T) {
	var set *Set
	_, ok := set.Get("x")
	assert.False(t, ok)
	assert.Nil(t, set.Names())
	assert.Equal(t, 0, set.Len())
}
