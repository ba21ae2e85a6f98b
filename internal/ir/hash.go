package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainRuleSet = "semithue/ruleset/v1"
	DomainSystem  = "semithue/system/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RuleSetHash computes the content-addressed identity of a rule set.
// Rule order is part of the identity because it is the matcher's final
// tie-break.
func RuleSetHash(rs RuleSet) (string, error) {
	canonical, err := MarshalCanonical(rs)
	if err != nil {
		return "", fmt.Errorf("RuleSetHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRuleSet, canonical), nil
}

// SystemHash computes the content-addressed identity of a whole system,
// including the invariant parameters.
func SystemHash(s *System) (string, error) {
	sets := make([]any, len(s.RuleSets))
	for i, rs := range s.RuleSets {
		sets[i] = rs
	}
	obj := map[string]any{
		"name":      s.Name,
		"alphabet":  s.Alphabet,
		"rule_sets": sets,
		"invariants": map[string]any{
			"designated":  s.Invariants.Designated,
			"modulus":     s.Invariants.Modulus,
			"forced_tail": s.Invariants.ForcedTail,
			"reference":   s.Invariants.Reference,
		},
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("SystemHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSystem, canonical), nil
}

// MustRuleSetHash is like RuleSetHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustRuleSetHash(rs RuleSet) string {
	h, err := RuleSetHash(rs)
	if err != nil {
		panic(err)
	}
	return h
}
