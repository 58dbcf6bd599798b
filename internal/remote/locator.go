package remote

import (
	"context"
	"fmt"
	"sync"
)

// Locator resolves the well-known document name to a remote file id,
// creating the file on first use, and caches the id so repeat lookups cost
// no network call.
//
// Known limitation: two clients locating concurrently can each create a
// file. Acceptable for a single-admin tool.
type Locator struct {
	mu    sync.Mutex
	store Store
	name  string
	id    string
}

// NewLocator returns a locator for the given document name.
func NewLocator(store Store, name string) *Locator {
	return &Locator{store: store, name: name}
}

// Locate returns the remote file id. A cached id is returned as is;
// otherwise the store is queried by name, taking the first non-trashed
// match, and an empty file is created when nothing matches.
func (l *Locator) Locate(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.id != "" {
		return l.id, nil
	}

	files, err := l.store.List(ctx, l.name)
	if err != nil {
		return "", fmt.Errorf("list %q: %w", l.name, err)
	}
	if len(files) > 0 {
		l.id = files[0].ID
		return l.id, nil
	}

	id, err := l.store.Create(ctx, l.name, "application/json")
	if err != nil {
		return "", fmt.Errorf("create %q: %w", l.name, err)
	}
	l.id = id
	return l.id, nil
}

// Reset drops the cached id. Called on disconnect so a later session
// re-resolves from scratch.
func (l *Locator) Reset() {
	l.mu.Lock()
	l.id = ""
	l.mu.Unlock()
}

// CachedID returns the cached file id, if any. Used for status display only.
func (l *Locator) CachedID() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.id, l.id != ""
}
