package services

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Storage is the flat key→string virtual filesystem of §6.1. It is
// backed by a single JSON file on disk — the Go analogue of the
// browser's durable key-value store — guarded by one mutex so
// "last-writer-wins with no locking" (§5) holds at the value level while
// the in-process map itself stays race-free.
type Storage struct {
	mu       sync.Mutex
	data     map[string]string
	diskPath string
	log      *zap.SugaredLogger
}

// NewStorage loads diskPath (if it exists) into memory and returns a
// Storage ready to serve Read/Write/Append/List/Move/Remove. A missing
// file starts from an empty store rather than failing boot.
func NewStorage(diskPath string, log *zap.SugaredLogger) *Storage {
	s := &Storage{data: make(map[string]string), diskPath: diskPath, log: log}
	raw, err := os.ReadFile(diskPath)
	if err == nil {
		_ = json.Unmarshal(raw, &s.data)
	}
	return s
}

// persistLocked flushes the in-memory store to disk and returns the
// first error encountered, so callers like Write can surface a failed
// save instead of reporting success on a store that never hit disk.
func (s *Storage) persistLocked() error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		s.log.Warnw("storage: failed to marshal store", "error", err)
		return err
	}
	if err := os.WriteFile(s.diskPath, raw, 0o644); err != nil {
		s.log.Warnw("storage: failed to persist store", "path", s.diskPath, "error", err)
		return err
	}
	return nil
}

func noSuchFile(path string) error {
	return fmt.Errorf("%s: no such file", path)
}

// Read resolves the content at path, or rejects with "<path>: no such
// file" if it is absent.
func (s *Storage) Read(path string) *Handle[string] {
	h, resolve := newHandle[string]()
	go func() {
		s.mu.Lock()
		content, ok := s.data[path]
		s.mu.Unlock()
		if !ok {
			resolve(Result[string]{Err: noSuchFile(path)})
			return
		}
		resolve(Result[string]{Value: content})
	}()
	return h
}

// Write sets path's content, replacing any prior value. The returned
// Handle resolves with an error if the store could not be persisted to
// disk, leaving the in-memory value set regardless (so a read right
// after a failed write still sees it — only durability failed).
func (s *Storage) Write(path, content string) *Handle[struct{}] {
	h, resolve := newHandle[struct{}]()
	go func() {
		s.mu.Lock()
		s.data[path] = content
		err := s.persistLocked()
		s.mu.Unlock()
		resolve(Result[struct{}]{Err: err})
	}()
	return h
}

// Append adds content to path's existing value, creating the key if
// absent.
func (s *Storage) Append(path, content string) *Handle[struct{}] {
	h, resolve := newHandle[struct{}]()
	go func() {
		s.mu.Lock()
		s.data[path] += content
		s.persistLocked()
		s.mu.Unlock()
		resolve(Result[struct{}]{})
	}()
	return h
}

// List resolves every key currently in the store. path is accepted for
// interface symmetry with the other operations but ignored, per §6.1
// ("path ignored in this spec") — the store is flat.
func (s *Storage) List(path string) *Handle[[]string] {
	h, resolve := newHandle[[]string]()
	go func() {
		s.mu.Lock()
		keys := make([]string, 0, len(s.data))
		for k := range s.data {
			keys = append(keys, k)
		}
		s.mu.Unlock()
		sort.Strings(keys)
		resolve(Result[[]string]{Value: keys})
	}()
	return h
}

// Move renames path to target, rejecting with the same missing-file
// message as Read if path is absent.
func (s *Storage) Move(path, target string) *Handle[struct{}] {
	h, resolve := newHandle[struct{}]()
	go func() {
		s.mu.Lock()
		content, ok := s.data[path]
		if ok {
			delete(s.data, path)
			s.data[target] = content
			s.persistLocked()
		}
		s.mu.Unlock()
		if !ok {
			resolve(Result[struct{}]{Err: noSuchFile(path)})
			return
		}
		resolve(Result[struct{}]{})
	}()
	return h
}

// Remove deletes path. Idempotent — removing an absent key still
// resolves successfully.
func (s *Storage) Remove(path string) *Handle[struct{}] {
	h, resolve := newHandle[struct{}]()
	go func() {
		s.mu.Lock()
		delete(s.data, path)
		s.persistLocked()
		s.mu.Unlock()
		resolve(Result[struct{}]{})
	}()
	return h
}
