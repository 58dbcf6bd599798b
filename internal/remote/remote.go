// Package remote defines the contract for the remote object store that holds
// the application's single persisted document, plus the locator that resolves
// the well-known document name to a file id.
package remote

import (
	"context"
	"errors"
)

// ErrUnauthorized marks a failure caused by an expired or revoked grant.
// The sync engine special-cases it: the session is force-disconnected instead
// of retried against a dead credential.
var ErrUnauthorized = errors.New("remote: authorization expired or revoked")

// File identifies a document in the remote store.
type File struct {
	ID   string
	Name string
}

// Store is the remote object store the sync engine reads and writes through.
// This abstraction keeps the engine independent of the cloud provider; the
// production implementation lives in remote/drive, tests use fakes.
//
// All methods may fail with transport errors, or with an error wrapping
// ErrUnauthorized when the access grant is no longer usable.
type Store interface {
	// List returns the non-trashed files matching the exact name.
	List(ctx context.Context, name string) ([]File, error)

	// Download returns the full content of the file.
	Download(ctx context.Context, id string) ([]byte, error)

	// Create creates a new empty file and returns its id.
	Create(ctx context.Context, name, mimeType string) (string, error)

	// Upload overwrites the file's content entirely. There is no partial or
	// delta update.
	Upload(ctx context.Context, id string, content []byte, contentType string) error
}
