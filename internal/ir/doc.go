// Package ir provides the plain data types shared by every semithue package.
//
// A word is a Go string over a finite alphabet of symbols (runes). Words are
// immutable values: every rewrite step produces a new string. Rule sets are
// passed explicitly into every engine call; there is no global registry.
//
// This package contains type definitions, validation and content hashing
// only. All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Match positions are byte offsets into the word
//   - Symbol counts (lengths used by invariants) are rune counts
//   - All JSON tags use snake_case
package ir
