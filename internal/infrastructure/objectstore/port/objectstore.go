package port

import (
	"context"
	"time"
)

// Presigner mints short-lived upload targets in the external object store.
// The core only needs to bind an object key to an upload URL; the object
// lifecycle (trigger, transcription, cleanup) belongs to the external worker.
type Presigner interface {
	// PresignPut returns a URL that accepts a single PUT of contentType to
	// the given key, valid for expiry.
	PresignPut(ctx context.Context, key string, contentType string, expiry time.Duration) (string, error)
}
