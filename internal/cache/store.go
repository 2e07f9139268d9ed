// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
)

// Ext is the file extension of every cache file. Bulk operations never touch
// files without it.
const Ext = ".cache"

var (
	ErrNoRoot          = errors.New("cache root directory not configured")
	ErrInvalidCategory = errors.New("invalid cache category")
	ErrUnscopedClear   = errors.New("refusing to clear the whole cache without an explicit force")
	ErrNotIdentified   = errors.New("cache entry has not been identified")
)

// Config is the construction state of a Store.
type Config struct {
	// Root is the base directory. It is made absolute by New and never
	// created eagerly.
	Root string
	// Expires is the default TTL expression for entries, such as "60s" or
	// "10m". Malformed or empty values fall back to DefaultExpires.
	Expires string
	// Now is the clock used for expiry checks. Defaults to time.Now.
	Now func() time.Time
}

// Store owns a root cache directory and the category subdirectories beneath
// it.
type Store struct {
	root string
	ttl  time.Duration
	now  func() time.Time
}

// ClearResult summarizes a bulk removal.
type ClearResult struct {
	Dir   string
	Files int
	Bytes int64
	// Dirs is the number of directories removed because they were left empty.
	Dirs int
}

func New(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, ErrNoRoot
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache root: %w", err)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Store{
		root: root,
		ttl:  ParseExpiresOrDefault(cfg.Expires),
		now:  now,
	}, nil
}

// Root returns the absolute base directory.
func (s *Store) Root() string {
	return s.root
}

// DefaultTTL returns the TTL newly identified entries start with.
func (s *Store) DefaultTTL() time.Duration {
	return s.ttl
}

// Dir resolves the directory for category. An empty category resolves to the
// root. The directory is not created.
func (s *Store) Dir(category string) (string, error) {
	c, err := CleanCategory(category)
	if err != nil {
		return "", err
	}
	if c == "" {
		return s.root, nil
	}
	return filepath.Join(s.root, c), nil
}

// Identify returns the entry addressed by identifier within category.
func (s *Store) Identify(identifier, category string) (*Entry, error) {
	c, err := CleanCategory(category)
	if err != nil {
		return nil, err
	}

	dir := s.root
	if c != "" {
		dir = filepath.Join(s.root, c)
	}

	hash := Hash(identifier)
	return &Entry{
		store:      s,
		identified: true,
		category:   c,
		hash:       hash,
		dir:        dir,
		path:       filepath.Join(dir, hash+Ext),
		ttl:        s.ttl,
	}, nil
}

// Clear removes every cache file beneath the category directory and then
// removes directories left empty. Clearing the root this way is refused; use
// ClearAll.
func (s *Store) Clear(category string) (ClearResult, error) {
	c, err := CleanCategory(category)
	if err != nil {
		return ClearResult{}, err
	}
	if c == "" {
		return ClearResult{Dir: s.root}, ErrUnscopedClear
	}
	return s.remove(filepath.Join(s.root, c), nil)
}

// ClearAll removes every cache file under the root. The root directory itself
// is kept.
func (s *Store) ClearAll() (ClearResult, error) {
	log.Warnf("clearing all cache entries in %s", s.root)
	return s.remove(s.root, nil)
}

// Purge removes cache files beneath category (or the root, if empty) whose
// modification time is older than maxAge. maxAge <= 0 is a no-op.
func (s *Store) Purge(category string, maxAge time.Duration) (ClearResult, error) {
	dir, err := s.Dir(category)
	if err != nil {
		return ClearResult{}, err
	}
	if maxAge <= 0 {
		log.Debug("cache purge disabled")
		return ClearResult{Dir: dir}, nil
	}
	now := s.now()
	return s.remove(dir, func(info fs.FileInfo) bool {
		return now.Sub(info.ModTime()) > maxAge
	})
}

// remove deletes the cache files beneath dir accepted by match (all of them
// if match is nil), then prunes empty directories deepest first. Files that
// disappear underneath us count as removed; any other failure is collected
// and returned once every file has been attempted.
func (s *Store) remove(dir string, match func(fs.FileInfo) bool) (ClearResult, error) {
	res := ClearResult{Dir: dir}

	var (
		errs []error
		dirs []string
	)

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
			return nil
		}

		if d.IsDir() {
			dirs = append(dirs, path)
			return nil
		}

		if !d.Type().IsRegular() || filepath.Ext(path) != Ext {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
			return nil
		}

		if match != nil && !match(info) {
			return nil
		}

		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.WithError(err).Warnf("failed to remove cache file %s", path)
			errs = append(errs, fmt.Errorf("failed to remove cache file: %w", err))
			return nil
		}

		res.Files++
		res.Bytes += info.Size()
		log.Debugf("removed cache file %s", path)
		return nil
	})

	for i := len(dirs) - 1; i >= 0; i-- {
		if s.removeEmptyDir(dirs[i]) {
			res.Dirs++
		}
	}

	log.WithFields(log.Fields{
		"dir":   dir,
		"files": res.Files,
		"dirs":  res.Dirs,
	}).Debug("cache cleared")

	return res, errors.Join(errs...)
}

// removeEmptyDir removes dir if it is empty and is not the root. It reports
// whether the directory was removed.
func (s *Store) removeEmptyDir(dir string) bool {
	if dir == s.root {
		return false
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return false
	}

	if err := os.Remove(dir); err != nil {
		log.WithError(err).Debugf("failed to remove empty cache directory %s", dir)
		return false
	}
	return true
}

// CleanCategory normalizes category into a relative path beneath a root.
// Surrounding whitespace and slashes are trimmed. An empty result means the
// root itself. Anything that could resolve outside the root is rejected.
func CleanCategory(category string) (string, error) {
	c := strings.TrimSpace(category)
	if strings.ContainsRune(c, 0) {
		return "", fmt.Errorf("%w: %q contains a null byte", ErrInvalidCategory, category)
	}

	c = strings.Trim(c, `/\`)
	if c == "" {
		return "", nil
	}

	for _, seg := range strings.FieldsFunc(c, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q escapes the cache root", ErrInvalidCategory, category)
		}
	}

	if filepath.IsAbs(c) || filepath.VolumeName(c) != "" || !filepath.IsLocal(c) {
		return "", fmt.Errorf("%w: %q is not a relative path", ErrInvalidCategory, category)
	}

	c = filepath.Clean(filepath.FromSlash(c))
	if c == "." {
		return "", nil
	}
	return c, nil
}
