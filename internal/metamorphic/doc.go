// Package metamorphic walks random chains in the symmetric closure of a
// rewriting relation and checks that the structural invariants of the
// chain's words stay consistent with their normal forms.
//
// Every word of a chain is equivalent to its start word, so an invariant
// that the rules really preserve must agree along the whole chain. A
// violation points at a rule set that does not support the invariant, or at
// an invariant that is wrongly stated.
package metamorphic
