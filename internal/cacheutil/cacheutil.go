// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/apex/log"

	"github.com/staranto/respcache/internal/cache"
)

// EnvCacheDir overrides the default cache root.
const EnvCacheDir = "RESPCACHE_CACHE_DIR"

// DirStat summarizes the cache files stored directly in one category
// directory.
type DirStat struct {
	// Category is the directory relative to the root, "" for the root itself.
	Category string
	Entries  int
	Bytes    int64
	Oldest   time.Time
	Newest   time.Time
}

// Dir resolves the default cache root.
// Precedence:
//  1. RESPCACHE_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/respcache
//
// Returns ("", false) if a base cannot be resolved.
func Dir() (string, bool) {
	if c, ok := os.LookupEnv(EnvCacheDir); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "respcache"), true
	}
	return "", false
}

// Stats walks root and returns one DirStat per directory that holds at least
// one cache file, sorted by category. A missing root yields no stats.
func Stats(root string) ([]DirStat, error) {
	byDir := map[string]*DirStat{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != cache.Ext {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			log.WithError(err).Debugf("skipping cache file %s", path)
			return nil
		}

		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return err
		}
		if rel == "." {
			rel = ""
		}

		st, ok := byDir[rel]
		if !ok {
			st = &DirStat{Category: filepath.ToSlash(rel)}
			byDir[rel] = st
		}

		mt := info.ModTime()
		st.Entries++
		st.Bytes += info.Size()
		if st.Oldest.IsZero() || mt.Before(st.Oldest) {
			st.Oldest = mt
		}
		if mt.After(st.Newest) {
			st.Newest = mt
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to stat cache: %w", err)
	}

	stats := make([]DirStat, 0, len(byDir))
	for _, st := range byDir {
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Category < stats[j].Category
	})
	return stats, nil
}
