package jobperform

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// NewBackgroundJobID generates a new lexicographically sortable job
// identifier. Producers that enqueue work call this; the pipeline
// itself never generates or interprets BackgroundJobID.
func NewBackgroundJobID() (string, error) {
	id, err := ulid.New(ulid.Now(), rand.Reader)
	if err != nil {
		return "", &ArgumentError{Op: "NewBackgroundJobID", Message: err.Error()}
	}
	return id.String(), nil
}
