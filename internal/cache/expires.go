// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"math"
	"regexp"
	"strconv"
	"time"
)

// DefaultExpires is the TTL applied to entries when neither the Store config
// nor the caller provides a valid expression.
const DefaultExpires = "10m"

var expiresRegex = regexp.MustCompile(`^([0-9]+)([smhd])$`)

var unitSeconds = map[string]int64{
	"s": 1,
	"m": 60,
	"h": 60 * 60,
	"d": 60 * 60 * 24,
}

// ParseExpires converts an expression such as "30s", "5m", "2h" or "7d" into a
// duration. The second return value is false if the expression is malformed or
// too large to be represented, in which case callers should keep whatever TTL
// they already had.
func ParseExpires(expr string) (time.Duration, bool) {
	m := expiresRegex.FindStringSubmatch(expr)
	if m == nil {
		return 0, false
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}

	mult := unitSeconds[m[2]]
	if n > math.MaxInt64/int64(time.Second)/mult {
		return 0, false
	}

	return time.Duration(n*mult) * time.Second, true
}

// ParseExpiresOrDefault is like ParseExpires but falls back to
// DefaultExpires when expr is malformed.
func ParseExpiresOrDefault(expr string) time.Duration {
	if d, ok := ParseExpires(expr); ok {
		return d
	}
	d, _ := ParseExpires(DefaultExpires)
	return d
}
