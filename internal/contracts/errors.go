package contracts

import (
	"errors"
	"fmt"
)

// Load failure causes
var (
	ErrSourceUnreadable = errors.New("source unreadable")
	ErrMissingColumns   = errors.New("missing required columns")
)

// LoadError is returned when a dataset source cannot produce a Dataset.
// It is fatal at startup and never retried.
type LoadError struct {
	Source string
	Op     string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %s: %v", e.Source, e.Op, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
