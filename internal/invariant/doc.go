// Package invariant computes the structural invariants of a word and checks
// two words for consistency.
//
// A Set is configured by the invariant parameters of a system:
//
//   - presence of the designated symbol
//   - residue of the word length modulo Modulus, for words without the
//     designated symbol
//   - the forced normal form of words of length >= 2 that end in the
//     designated symbol
//   - the normal form under the reference rule set
//
// Presence and residue are plain functions of the word. The forced tail is a
// claim about one particular rule set; Validate re-derives it by exhaustive
// enumeration instead of taking it on trust.
package invariant
