package presets

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the preset file at path. A missing file yields an empty set.
// Unknown fields are rejected so typos fail at startup.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return newSet(nil, ""), nil
	}
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes and validates preset YAML
func Parse(data []byte) (*Set, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	for i := range f.Presets {
		f.Presets[i].Selection = f.Presets[i].Selection.WithDefaults()
	}

	if err := Validate(&f); err != nil {
		return nil, err
	}

	hash, err := Hash(&f)
	if err != nil {
		return nil, err
	}
	return newSet(f.Presets, hash), nil
}

// Hash returns the SHA256 of the canonical JSON form of f
func Hash(f *File) (string, error) {
	jsonBytes, err := json.Marshal(f)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

func newSet(presets []Preset, hash string) *Set {
	s := &Set{
		Hash:    hash,
		Presets: presets,
		byName:  make(map[string]int, len(presets)),
	}
	if s.Presets == nil {
		s.Presets = []Preset{}
	}
	for i, p := range s.Presets {
		s.byName[p.Name] = i
	}
	return s
}
