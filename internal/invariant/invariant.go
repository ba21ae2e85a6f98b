package invariant

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/roach88/semithue/internal/engine"
	"github.com/roach88/semithue/internal/ir"
)

const (
	// DefaultStepCap bounds the reduction computing a normal form.
	DefaultStepCap = 10000

	// DefaultCacheSize is the number of normal forms kept in memory.
	DefaultCacheSize = 1 << 14
)

// Set computes invariant snapshots for one system.
//
// Set is safe for concurrent use.
type Set struct {
	cfg       ir.InvariantConfig
	alphabet  string
	reference ir.RuleSet
	stepCap   int
	cacheSize int
	cache     *lru.Cache[string, ir.Outcome]
	logger    *slog.Logger
}

// Option configures a Set.
type Option func(*Set)

// WithStepCap sets the step cap of normal form computations.
func WithStepCap(stepCap int) Option {
	return func(s *Set) {
		s.stepCap = stepCap
	}
}

// WithCacheSize sets the size of the normal form cache.
func WithCacheSize(size int) Option {
	return func(s *Set) {
		s.cacheSize = size
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Set) {
		s.logger = logger
	}
}

// New creates the invariant set of sys.
func New(sys *ir.System, opts ...Option) (*Set, error) {
	cfg := sys.Invariants
	if ir.Len(cfg.Designated) != 1 {
		return nil, fmt.Errorf("designated symbol must be a single symbol, got %q", cfg.Designated)
	}
	if !strings.Contains(sys.Alphabet, cfg.Designated) {
		return nil, fmt.Errorf("designated symbol %q is not in alphabet %q", cfg.Designated, sys.Alphabet)
	}
	if cfg.Modulus <= 0 {
		return nil, fmt.Errorf("modulus must be positive, got %d", cfg.Modulus)
	}
	reference, ok := sys.RuleSet(cfg.Reference)
	if !ok {
		return nil, fmt.Errorf("reference rule set %q not found in system %q", cfg.Reference, sys.Name)
	}

	s := &Set{
		cfg:       cfg,
		alphabet:  sys.Alphabet,
		reference: reference,
		stepCap:   DefaultStepCap,
		cacheSize: DefaultCacheSize,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.stepCap <= 0 {
		return nil, fmt.Errorf("step cap must be positive, got %d", s.stepCap)
	}

	cache, err := lru.New[string, ir.Outcome](s.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("normal form cache: %w", err)
	}
	s.cache = cache
	return s, nil
}

// Config returns the invariant parameters.
func (s *Set) Config() ir.InvariantConfig {
	return s.cfg
}

// StepCap returns the step cap normal forms are computed with.
func (s *Set) StepCap() int {
	return s.stepCap
}

// Reference returns the rule set normal forms are computed with.
func (s *Set) Reference() ir.RuleSet {
	return s.reference
}

// HasDesignated reports whether word contains the designated symbol.
func (s *Set) HasDesignated(word string) bool {
	return strings.Contains(word, s.cfg.Designated)
}

// ResidueIfPure returns the number of symbols of word modulo the modulus, or
// nil if word contains the designated symbol.
func (s *Set) ResidueIfPure(word string) *int {
	if s.HasDesignated(word) {
		return nil
	}
	r := ir.Len(word) % s.cfg.Modulus
	return &r
}

// ForcedNormalFormTail returns the normal form word is forced to have, or
// nil if the claim does not cover word. The claim covers words of length
// >= 2 ending in the designated symbol. An empty ForcedTail disables it.
func (s *Set) ForcedNormalFormTail(word string) *string {
	if s.cfg.ForcedTail == "" {
		return nil
	}
	if ir.Len(word) < 2 || !strings.HasSuffix(word, s.cfg.Designated) {
		return nil
	}
	tail := s.cfg.ForcedTail
	return &tail
}

// NormalForm reduces word under the reference rule set.
// The outcome is not a normal form unless Converged is set.
func (s *Set) NormalForm(word string) ir.Outcome {
	if out, ok := s.cache.Get(word); ok {
		return out
	}
	out := engine.Reduce(word, s.reference.Rules, s.stepCap)
	if !out.Converged {
		s.logger.Debug("normal form inconclusive", "word", word, "step_cap", s.stepCap)
	}
	s.cache.Add(word, out)
	return out
}

// Snapshot computes every invariant of word.
func (s *Set) Snapshot(word string) Snapshot {
	nf := s.NormalForm(word)
	return Snapshot{
		Word:                word,
		HasDesignated:       s.HasDesignated(word),
		Residue:             s.ResidueIfPure(word),
		ForcedTail:          s.ForcedNormalFormTail(word),
		NormalForm:          nf.Final,
		NormalFormConverged: nf.Converged,
	}
}
