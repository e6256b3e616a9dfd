// Package store abstracts the persistence backing the access gate. Call
// sites see named collections of opaque JSON values; whether those live
// in a JSON blob on disk or in a SQLite table is a deployment choice.
package store

import "errors"

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("store: key not found")

// Collection names used by the gate. Independent lifecycles: revoking
// access never touches usage data.
const (
	AccessCollection = "cloudtouch_access"
	UsageCollection  = "user_data"
)

// KV is the store contract. Read-modify-write on a single key is only
// last-writer-wins; the gate's operations are designed to tolerate that.
type KV interface {
	Get(collection, key string) ([]byte, error)
	Put(collection, key string, value []byte) error
	Delete(collection, key string) error
	ListAll(collection string) (map[string][]byte, error)

	// Blobs enumerates every persisted blob for the forensic scan,
	// including data this process does not own. Unparsable content is
	// returned as-is, never an error.
	Blobs() ([]Blob, error)
}

// Blob is one persisted unit of data as the backend stores it.
type Blob struct {
	Name    string
	Content []byte
}
