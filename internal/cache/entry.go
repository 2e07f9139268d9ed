// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/apex/log"
)

// Entry is a single cached value. Obtain one with Store.Identify; the zero
// value is unidentified and every operation on it fails with
// ErrNotIdentified, except Clear which is a no-op.
type Entry struct {
	store      *Store
	identified bool

	category string
	hash     string
	dir      string
	path     string
	ttl      time.Duration
}

// Hash returns the hex encoded MD5 of identifier, which is the entry's file
// name without extension.
func Hash(identifier string) string {
	h := md5.New()
	_, _ = h.Write([]byte(identifier))
	return hex.EncodeToString(h.Sum(nil))
}

// Expires sets the entry's TTL from an expression such as "30s" or "1d".
// Malformed expressions are ignored and the current TTL is kept.
func (e *Entry) Expires(expr string) *Entry {
	if d, ok := ParseExpires(expr); ok {
		e.ttl = d
	} else {
		log.Debugf("ignoring malformed cache expiry %q", expr)
	}
	return e
}

// Put encodes v and writes it to the entry's file, creating the category
// directory if needed. An existing value is replaced.
func (e *Entry) Put(v any) error {
	if !e.ok() {
		return ErrNotIdentified
	}

	data, err := encode(v)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	// Write beside the target and rename so readers see old or new, never half.
	tmp, err := os.CreateTemp(e.dir, ".put-*")
	if err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), e.path); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}

	log.Debugf("cache write: %s", e.path)
	return nil
}

// Retrieve decodes the stored value into v. It reports false, with no error,
// when nothing is stored. The TTL is not consulted; call IsValid first when
// freshness matters.
func (e *Entry) Retrieve(v any) (bool, error) {
	if !e.ok() {
		return false, ErrNotIdentified
	}

	data, err := os.ReadFile(e.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read from cache: %w", err)
	}

	if err := decode(data, v); err != nil {
		return false, err
	}

	log.Debugf("cache hit: %s", e.path)
	return true, nil
}

// IsValid reports whether the entry exists and is no older than its TTL. A
// stale entry is deleted before returning false.
func (e *Entry) IsValid() (bool, error) {
	if !e.ok() {
		return false, ErrNotIdentified
	}

	info, err := os.Stat(e.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat cache file: %w", err)
	}

	age := e.store.now().Sub(info.ModTime())
	if age <= e.ttl {
		return true, nil
	}

	log.Debugf("cache entry expired (age %s > ttl %s): %s", age, e.ttl, e.path)
	if err := os.Remove(e.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to remove expired cache file: %w", err)
	}
	e.store.removeEmptyDir(e.dir)

	return false, nil
}

// Clear removes every cache file in the entry's directory, including those of
// other identifiers and nested categories, then removes the directory if it is
// left empty. The root directory is never removed.
func (e *Entry) Clear() (ClearResult, error) {
	if !e.ok() {
		return ClearResult{}, nil
	}
	return e.store.remove(e.dir, nil)
}

// Path returns the entry's file path.
func (e *Entry) Path() string { return e.path }

// Dir returns the directory holding the entry.
func (e *Entry) Dir() string { return e.dir }

// Hash returns the hashed identifier.
func (e *Entry) Hash() string { return e.hash }

// Category returns the normalized category, "" for the root.
func (e *Entry) Category() string { return e.category }

// TTL returns the entry's current time-to-live.
func (e *Entry) TTL() time.Duration { return e.ttl }

func (e *Entry) ok() bool {
	return e != nil && e.identified && e.store != nil
}

// Load is a typed convenience over Entry.Retrieve.
func Load[T any](e *Entry) (T, bool, error) {
	var v T
	ok, err := e.Retrieve(&v)
	return v, ok, err
}
