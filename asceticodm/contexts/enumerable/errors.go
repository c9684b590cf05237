package enumerable

import (
	"errors"
	"fmt"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentNotFoundError is returned by First, One, Last and Shift when the
// context is strict and nothing matched.
type DocumentNotFoundError struct {
	Selector map[string]any
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document not found for selector %v", e.Selector)
}

func (e *DocumentNotFoundError) Is(target error) bool {
	return target == ErrDocumentNotFound
}
