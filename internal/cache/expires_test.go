// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseExpires(t *testing.T) {
	tests := []struct {
		expr   string
		want   time.Duration
		wantOK bool
	}{
		{"2s", 2 * time.Second, true},
		{"0s", 0, true},
		{"1m", time.Minute, true},
		{"10m", 10 * time.Minute, true},
		{"3h", 3 * time.Hour, true},
		{"7d", 7 * 24 * time.Hour, true},
		{"", 0, false},
		{"abc", 0, false},
		{"10", 0, false},
		{"m", 0, false},
		{"10w", 0, false},
		{"10M", 0, false},
		{"-5s", 0, false},
		{" 5s", 0, false},
		{"5s ", 0, false},
		{"5ss", 0, false},
		{"1.5h", 0, false},
		{"99999999999999999999d", 0, false},
		{"9999999999999d", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, ok := ParseExpires(tt.expr)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseExpiresOrDefault(t *testing.T) {
	assert.Equal(t, 30*time.Second, ParseExpiresOrDefault("30s"))
	assert.Equal(t, 10*time.Minute, ParseExpiresOrDefault(""))
	assert.Equal(t, 10*time.Minute, ParseExpiresOrDefault("soon"))
}
