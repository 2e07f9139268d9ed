// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache implements a disk-backed response cache. Entries are
// addressed by the MD5 of a caller supplied identifier, optionally scoped to a
// category subdirectory beneath a fixed root, and expire lazily once their
// modification time is older than the entry's TTL.
//
// Layout on disk:
//
//	<root>/<category>/<md5(identifier)>.cache
//
// Caching a user record for a minute:
//
//	e, err := store.Identify("/users/42", "users")
//	if err != nil {
//		return err
//	}
//	if err := e.Expires("1m").Put(map[string]any{"name": "Alice"}); err != nil {
//		return err
//	}
//	// <root>/users/090dd5d71d64152d37b50f6767b59fa7.cache
//
// IsValid reports true for the next minute. After that it removes the file
// and reports false.
package cache
