package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileKV keeps each collection as one JSON object file under a data
// directory, the same layout the original Netlify deployment used.
type FileKV struct {
	dir string
	mu  sync.Mutex
}

func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileKV{dir: dir}, nil
}

func (s *FileKV) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// load reads a collection file. A missing or corrupt file yields an
// empty map: unparsable persisted data is treated as absent, not fatal.
func (s *FileKV) load(collection string) map[string]json.RawMessage {
	db := make(map[string]json.RawMessage)
	content, err := os.ReadFile(s.path(collection))
	if err != nil {
		return db
	}
	if err := json.Unmarshal(content, &db); err != nil {
		return make(map[string]json.RawMessage)
	}
	return db
}

func (s *FileKV) save(collection string, db map[string]json.RawMessage) error {
	content, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path(collection) + ".tmp"
	if err := os.WriteFile(tmp, content, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(collection))
}

func (s *FileKV) Get(collection, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.load(collection)[key]
	if !ok {
		return nil, ErrNotFound
	}
	return raw, nil
}

func (s *FileKV) Put(collection, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db := s.load(collection)
	db[key] = json.RawMessage(value)
	return s.save(collection, db)
}

func (s *FileKV) Delete(collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db := s.load(collection)
	if _, ok := db[key]; !ok {
		return nil
	}
	delete(db, key)
	return s.save(collection, db)
}

func (s *FileKV) ListAll(collection string) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]byte)
	for k, v := range s.load(collection) {
		out[k] = v
	}
	return out, nil
}

// Blobs returns every .json file in the data directory, owned by this
// process or not. The scan is a forensic tool and wants all of them.
func (s *FileKV) Blobs() ([]Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var blobs []Blob
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		blobs = append(blobs, Blob{Name: e.Name(), Content: content})
	}
	return blobs, nil
}
