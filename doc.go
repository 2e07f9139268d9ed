// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// respcache is the administrative command line tool for the on-disk response
// cache. It wires the CLI, delegates to internal packages, and serves as the
// entry point.
package main
