package presets

import "github.com/wonny/gamedash/internal/contracts"

// File is the on-disk preset document
type File struct {
	Presets []Preset `yaml:"presets" json:"presets"`
}

// Preset is a named, reusable filter selection
type Preset struct {
	Name        string                    `yaml:"name" json:"name"`
	Description string                    `yaml:"description" json:"description,omitempty"`
	Selection   contracts.FilterSelection `yaml:"selection" json:"selection"`
}

// Set is a validated, read-only collection of presets
type Set struct {
	Hash    string   `json:"hash"`
	Presets []Preset `json:"presets"`

	byName map[string]int
}

// Get returns the preset with the given name
func (s *Set) Get(name string) (Preset, bool) {
	if s == nil {
		return Preset{}, false
	}
	i, ok := s.byName[name]
	if !ok {
		return Preset{}, false
	}
	return s.Presets[i], true
}

// Names returns preset names in file order
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Presets))
	for _, p := range s.Presets {
		names = append(names, p.Name)
	}
	return names
}

// Len returns the number of presets
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Presets)
}
