// Package equiv implements randomized equivalence fuzzing of two rule sets.
//
// Each trial draws a random word, reduces it under both rule sets
// independently and classifies the pair of outcomes:
//
//   - agree: both converged to the same normal form
//   - mismatch: both converged to different normal forms
//   - non_terminating: at least one side hit the step cap
//
// Non-termination is reported separately from genuine mismatches; a capped
// reduction says nothing about the normal form.
//
// Campaigns are deterministic given the seed: trial i always draws from
// gen.TrialStream(seed, i), and results are folded in trial order.
package equiv
