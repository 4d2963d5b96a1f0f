package presets

import (
	"fmt"
	"strings"
)

// ValidationError reports the offending field of an invalid preset file
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks names are present and unique and year ranges are ordered
func Validate(f *File) error {
	seen := make(map[string]struct{}, len(f.Presets))

	for i, p := range f.Presets {
		field := fmt.Sprintf("presets[%d]", i)

		if strings.TrimSpace(p.Name) == "" {
			return ValidationError{field + ".name", "required"}
		}
		if _, dup := seen[p.Name]; dup {
			return ValidationError{field + ".name", fmt.Sprintf("duplicate preset %q", p.Name)}
		}
		seen[p.Name] = struct{}{}

		if err := p.Selection.Validate(); err != nil {
			return ValidationError{field + ".selection.years", err.Error()}
		}
	}

	return nil
}
