// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package httpcache derives cache identifiers from HTTP requests and hands the
// resulting cache.Entry to handlers, either as an explicit argument (Wrap) or
// through the request context (Middleware). It never serves responses from
// the cache itself; handlers decide whether to use IsValid/Retrieve or
// recompute and Put.
package httpcache
