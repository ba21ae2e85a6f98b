// Package gen draws random words for the validation campaigns.
//
// Every function takes an explicit *rand.Rand. Campaigns derive one stream
// per trial with TrialStream, so a trial's draws depend only on the seed and
// the trial index, never on how many trials ran before it or on which
// goroutine ran it.
package gen

import (
	"fmt"
	"strings"

	"pgregory.net/rand"

	"github.com/roach88/semithue/internal/ir"
)

// WordSpec describes the random words of a campaign.
type WordSpec struct {
	Alphabet string `json:"alphabet"`
	MinLen   int    `json:"min_len"`
	MaxLen   int    `json:"max_len"`
}

// Validate checks that words can be drawn from the spec.
func (s WordSpec) Validate() error {
	if ir.Len(s.Alphabet) == 0 {
		return fmt.Errorf("alphabet must be non-empty")
	}
	if s.MinLen < 0 {
		return fmt.Errorf("min length must be non-negative, got %d", s.MinLen)
	}
	if s.MaxLen < s.MinLen {
		return fmt.Errorf("max length %d is less than min length %d", s.MaxLen, s.MinLen)
	}
	return nil
}

// RandomWord draws a length uniformly from [MinLen, MaxLen] and then each
// symbol uniformly from the alphabet.
func (s WordSpec) RandomWord(rnd *rand.Rand) string {
	symbols := ir.Symbols(s.Alphabet)
	n := IntBetween(rnd, s.MinLen, s.MaxLen)

	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(symbols[rnd.Intn(len(symbols))])
	}
	return b.String()
}

// IntBetween returns a uniform integer in the closed range [lo, hi].
func IntBetween(rnd *rand.Rand, lo, hi int) int {
	return lo + rnd.Intn(hi-lo+1)
}

// TrialStream returns the random stream owned by one trial of a campaign.
func TrialStream(seed uint64, trial int) *rand.Rand {
	return rand.New(seed, uint64(trial))
}
