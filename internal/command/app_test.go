// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/respcache/internal/cache"
	"github.com/staranto/respcache/internal/cacheutil"
	"github.com/staranto/respcache/internal/config"
)

// testEnv points the CLI at a temp cache root and an empty config file, and
// returns a store over the same root for seeding and inspection.
func testEnv(t *testing.T, configYAML string) *cache.Store {
	t.Helper()

	root := filepath.Join(t.TempDir(), "cache")
	cfgPath := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(cfgPath, []byte(configYAML), 0o600))

	t.Setenv(config.EnvConfigFile, cfgPath)
	t.Setenv(cacheutil.EnvCacheDir, root)
	t.Setenv("RESPCACHE_EXPIRES", "unset")
	require.NoError(t, os.Unsetenv("RESPCACHE_EXPIRES"))

	store, err := cache.New(cache.Config{Root: root})
	require.NoError(t, err)
	return store
}

// run executes the CLI with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	argv := append([]string{"respcache"}, args...)
	app, err := InitApp(context.Background(), argv)
	require.NoError(t, err)

	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out

	err = app.Run(context.Background(), argv)
	return out.String(), err
}

func seed(t *testing.T, store *cache.Store, category string, ids ...string) []*cache.Entry {
	t.Helper()
	var entries []*cache.Entry
	for _, id := range ids {
		e, err := store.Identify(id, category)
		require.NoError(t, err)
		require.NoError(t, e.Put(map[string]string{"id": id}))
		entries = append(entries, e)
	}
	return entries
}

// snapshot lists every path under root.
func snapshot(t *testing.T, root string) []string {
	t.Helper()
	var paths []string
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err == nil {
			paths = append(paths, path)
		}
		return nil
	})
	return paths
}

func TestClear_WithoutCategoryRefuses(t *testing.T) {
	store := testEnv(t, "")
	seed(t, store, "", "/a")
	seed(t, store, "users", "/users/1", "/users/2")
	before := snapshot(t, store.Root())

	out, err := run(t, "clear", "cache")
	require.NoError(t, err)
	assert.Contains(t, out, "forbidden")
	assert.Contains(t, out, store.Root())
	assert.Contains(t, out, "--category=*")
	assert.Equal(t, before, snapshot(t, store.Root()))
}

func TestClear_EmptyCategoryRefuses(t *testing.T) {
	store := testEnv(t, "")
	entries := seed(t, store, "", "/a")

	out, err := run(t, "clear", "cache", "--category", "")
	require.NoError(t, err)
	assert.Contains(t, out, "forbidden")
	assert.FileExists(t, entries[0].Path())
}

func TestClear_CategoryResolvingToRootRefuses(t *testing.T) {
	store := testEnv(t, "")
	root := seed(t, store, "", "/a")
	users := seed(t, store, "users", "/users/1")
	before := snapshot(t, store.Root())

	for _, category := range []string{"/", ".", " / "} {
		out, err := run(t, "clear", "cache", "--category="+category)
		require.NoError(t, err, category)
		assert.Contains(t, out, "resolves to the cache root", category)
		assert.Contains(t, out, "--category=*", category)
	}

	assert.FileExists(t, root[0].Path())
	assert.FileExists(t, users[0].Path())
	assert.Equal(t, before, snapshot(t, store.Root()))
}

func TestClear_Category(t *testing.T) {
	store := testEnv(t, "")
	users := seed(t, store, "users", "/users/1", "/users/2")
	posts := seed(t, store, "posts", "/posts/1")

	out, err := run(t, "clear", "cache", "--category", "users")
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("Cache has been purged in %q (2 files, ", filepath.Join(store.Root(), "users")))

	for _, e := range users {
		assert.NoFileExists(t, e.Path())
	}
	assert.NoDirExists(t, filepath.Join(store.Root(), "users"))
	assert.FileExists(t, posts[0].Path())
}

func TestClear_CategoryAlias(t *testing.T) {
	store := testEnv(t, "")
	posts := seed(t, store, "posts", "/posts/1")

	_, err := run(t, "clear", "cache", "--cat=posts")
	require.NoError(t, err)
	assert.NoFileExists(t, posts[0].Path())
}

func TestClear_All(t *testing.T) {
	store := testEnv(t, "")
	seed(t, store, "", "/a")
	seed(t, store, "users", "/users/1")
	seed(t, store, "posts", "/posts/1")

	out, err := run(t, "clear", "cache", "--category=*")
	require.NoError(t, err)
	assert.Contains(t, out, "3 files")

	assert.DirExists(t, store.Root())
	entries, err := os.ReadDir(store.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClear_TraversalRejected(t *testing.T) {
	store := testEnv(t, "")
	outside := filepath.Join(filepath.Dir(store.Root()), "victim.cache")
	require.NoError(t, os.WriteFile(outside, []byte("{}"), 0o600))

	_, err := run(t, "clear", "cache", "--category=../")
	assert.Error(t, err)
	assert.FileExists(t, outside)
}

func TestClear_DirFlag(t *testing.T) {
	testEnv(t, "")
	other, err := cache.New(cache.Config{Root: t.TempDir()})
	require.NoError(t, err)
	entries := seed(t, other, "x", "/x")

	_, err = run(t, "--dir", other.Root(), "clear", "cache", "--category=x")
	require.NoError(t, err)
	assert.NoFileExists(t, entries[0].Path())
}

func TestStat(t *testing.T) {
	store := testEnv(t, "")
	seed(t, store, "", "/a")
	seed(t, store, "users", "/users/1", "/users/2")

	out, err := run(t, "stat", "cache")
	require.NoError(t, err)
	assert.Contains(t, out, "CATEGORY")
	assert.Contains(t, out, "(root)")
	assert.Contains(t, out, "users")
	assert.Contains(t, out, "3 entries")

	out, err = run(t, "stat", "cache", "--category=users")
	require.NoError(t, err)
	assert.NotContains(t, out, "(root)")
	assert.Contains(t, out, "2 entries")
}

func TestStat_Empty(t *testing.T) {
	store := testEnv(t, "")

	out, err := run(t, "stat", "cache")
	require.NoError(t, err)
	assert.Contains(t, out, "No cache entries")
	assert.NoDirExists(t, store.Root(), "stat must not create the cache root")
}

func TestPurge(t *testing.T) {
	store := testEnv(t, "")
	entries := seed(t, store, "users", "/users/1", "/users/2")
	old := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(entries[0].Path(), old, old))

	out, err := run(t, "purge", "cache", "--older-than=1h")
	require.NoError(t, err)
	assert.Contains(t, out, "1 file")
	assert.NoFileExists(t, entries[0].Path())
	assert.FileExists(t, entries[1].Path())
}

func TestPurge_ConfigCleanHours(t *testing.T) {
	store := testEnv(t, "cache:\n  clean: 2\n")
	entries := seed(t, store, "", "/a", "/b")
	old := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(entries[0].Path(), old, old))

	_, err := run(t, "purge", "cache")
	require.NoError(t, err)
	assert.NoFileExists(t, entries[0].Path())
	assert.FileExists(t, entries[1].Path())
}

func TestPurge_Disabled(t *testing.T) {
	store := testEnv(t, "")
	entries := seed(t, store, "", "/a")

	out, err := run(t, "purge", "cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to purge")
	assert.FileExists(t, entries[0].Path())
}

func TestPurge_InvalidOlderThan(t *testing.T) {
	testEnv(t, "")
	_, err := run(t, "purge", "cache", "--older-than=soon")
	assert.Error(t, err)
}

func TestCompletion(t *testing.T) {
	testEnv(t, "")

	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "complete -F _respcache respcache")

	out, err = run(t, "completion", "zsh")
	require.NoError(t, err)
	assert.Contains(t, out, "#compdef respcache")
}
