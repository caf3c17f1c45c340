package accent

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyLabel is returned when the model produced no label
	ErrEmptyLabel = errors.New("classifier returned an empty label")

	// ErrConfidenceRange is returned when the model score is outside [0,1]
	ErrConfidenceRange = errors.New("classifier confidence must be between 0 and 1")
)

// ClassificationError wraps any failure of the accent model
type ClassificationError struct {
	AudioPath string
	Err       error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("accent classification of %s failed: %v", e.AudioPath, e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}
