// Package store provides SQLite-backed durable storage for campaign runs.
//
// Each equivalence or metamorphic campaign is stored as:
//   - Runs: parameters, rule set names and content hashes, counts
//   - Samples: the retained counterexamples or violations with full detail
//
// # Ordering
//
// Runs are ordered by seq INTEGER (logical clock), never by timestamps, and
// samples by their index in the report. Listing the same database twice
// yields identical results.
//
// # Identity
//
// Run IDs come from a RunIDGenerator (UUIDv7 by default, so IDs sort by
// creation time). Rule sets are identified by ir.RuleSetHash, so runs over
// the same rules can be found even if the rule set was renamed.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
