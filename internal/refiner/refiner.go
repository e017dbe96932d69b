// Package refiner cleans up or summarizes a raw medical transcription through
// a hosted or self-hosted language model.
package refiner

import (
	"context"
	"errors"
	"fmt"
)

// Refiner returns an improved version of text. When the model produces
// nothing usable the input is returned unchanged.
type Refiner interface {
	Refine(ctx context.Context, text string) (string, error)
}

// ErrMissingCredential means the backend needs an API key and none was set.
var ErrMissingCredential = errors.New("API key not configured")

// StatusError is a non-200 answer from the inference API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API Error %d: %s", e.StatusCode, e.Body)
}
