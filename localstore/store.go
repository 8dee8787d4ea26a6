// Package localstore implements the local durable storage used by
// guest sessions, the offline mutation queue, and the session file.
//
// Values are JSON documents stored one file per key under a single
// directory. Writes are atomic (temp file + rename) and guarded by a
// lock file, so concurrent triage processes cannot interleave partial
// writes. Timestamps serialize as RFC 3339 strings and come back as
// time.Time wherever a task crosses this boundary.
package localstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
)

// Store manages a directory of JSON documents with locking.
type Store struct {
	dir string
}

// NewStore creates a store rooted at the given directory. The
// directory is created lazily on first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) docPath(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

func (s *Store) lockPath() string {
	return filepath.Join(s.dir, ".lock")
}

// Get reads the document for key into v. It returns false with no
// error when the key has never been written.
func (s *Store) Get(key string, v any) (bool, error) {
	data, err := os.ReadFile(s.docPath(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

// Put writes v as the document for key, atomically.
func (s *Store) Put(key string, v any) error {
	return s.withLock(func() error {
		return s.write(key, v)
	})
}

// Delete removes the document for key. Deleting an absent key is not
// an error.
func (s *Store) Delete(key string) error {
	return s.withLock(func() error {
		err := os.Remove(s.docPath(key))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		return nil
	})
}

// Update atomically reads, modifies, and rewrites the document for
// key while holding the store lock. fn receives the current document
// via v (left zero-valued when the key is absent) and its return
// value is written back.
func (s *Store) Update(key string, v any, fn func() error) error {
	return s.withLock(func() error {
		if _, err := s.Get(key, v); err != nil {
			return err
		}
		if err := fn(); err != nil {
			return err
		}
		return s.write(key, v)
	})
}

func (s *Store) write(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	path := s.docPath(key)
	if existing, err := os.ReadFile(path); err == nil {
		if bytes.Equal(existing, data) {
			return nil
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", key, err)
	}

	// Write atomically via temp file
	tmpFile, err := os.CreateTemp(s.dir, filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}
	name := tmpFile.Name()
	_, err = tmpFile.Write(data)
	if err1 := tmpFile.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		os.Remove(name)
		return fmt.Errorf("write temp file for %s: %w", key, err)
	}

	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename temp file for %s: %w", key, err)
	}

	return nil
}

// withLock executes fn while holding an exclusive lock on the store's
// lock file, creating the store directory if needed.
func (s *Store) withLock(fn func() error) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	lockFile, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer lockFile.Close()

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)

	return fn()
}

var unsafeKeyChars = regexp.MustCompile(`[^a-z0-9._-]`)

// sanitizeKey converts a purpose-scoped key like "guest/tasks" to a
// safe file name.
func sanitizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "/", "-")
	key = unsafeKeyChars.ReplaceAllString(key, "-")
	return strings.Trim(key, "-")
}
