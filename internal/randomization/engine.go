// Package randomization turns group definitions into an anonymized, shuffled allocation.
//
// The engine is a pure function of (groups, seed, generator): it performs no I/O and keeps no
// state between calls. Reproducibility depends on three fixed choices that must not change:
// the pool is built in definition order, the shuffle is Fisher–Yates from the last index down,
// and each index is drawn by rejection sampling on the top bits of a 32-bit word.
package randomization

import (
	"context"
	"fmt"
	"log/slog"
	"math/bits"

	"randalloc/domain/allocation"
	"randalloc/ports"
)

// Engine produces randomization results from a generator factory
type Engine struct {
	rng    ports.RNGPort
	logger *slog.Logger
}

// NewEngine creates an engine drawing generators from rng
func NewEngine(rng ports.RNGPort) *Engine {
	return &Engine{
		rng:    rng,
		logger: slog.Default().With("component", "randomization"),
	}
}

// Randomize expands groups into a pool, shuffles it and assigns participant IDs 1..N.
// A present seed makes the result reproducible; without one the generator is keyed from entropy.
func (e *Engine) Randomize(ctx context.Context, groups []allocation.GroupDefinition, seed allocation.Seed) (*allocation.Result, error) {
	pool, err := BuildPool(groups)
	if err != nil {
		return nil, err
	}

	var gen ports.Generator
	if v, ok := seed.Value(); ok {
		gen, err = e.rng.SeededStream(ctx, v)
	} else {
		gen, err = e.rng.EntropyStream(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create random generator: %w", err)
	}

	result := Allocate(pool, gen, seed)
	result.Groups = append([]allocation.GroupDefinition(nil), groups...)

	e.logger.Debug("randomization complete",
		"groups", len(groups),
		"participants", result.Total(),
		"seed", seed.String(),
	)
	return result, nil
}

// BuildPool emits one entry per participant, tagged with its group name, in definition order.
// Duplicate names are not special-cased: each definition contributes its own entries.
// The pool never exceeds allocation.MaxPoolSize, which keeps every Below call under 2^32.
func BuildPool(groups []allocation.GroupDefinition) ([]string, error) {
	total := 0
	for _, g := range groups {
		if g.Size <= 0 || g.Size > allocation.MaxPoolSize {
			return nil, allocation.NewInvalidSizeError(g.Name, g.Size)
		}
		// Both operands are at most MaxPoolSize, so the sum cannot overflow
		total += g.Size
		if total > allocation.MaxPoolSize {
			return nil, allocation.NewPoolTooLargeError(total)
		}
	}

	pool := make([]string, 0, total)
	for _, g := range groups {
		for i := 0; i < g.Size; i++ {
			pool = append(pool, g.Name)
		}
	}
	return pool, nil
}

// Allocate shuffles pool in place with gen and pairs the result with IDs 1..N
func Allocate(pool []string, gen ports.Generator, seed allocation.Seed) *allocation.Result {
	Shuffle(len(pool), gen, func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	records := make([]allocation.Record, len(pool))
	for i, name := range pool {
		records[i] = allocation.Record{ParticipantID: i + 1, GroupName: name}
	}

	return &allocation.Result{
		Allocations: records,
		Seed:        seed,
	}
}

// Shuffle performs a uniform Fisher–Yates permutation of n elements, walking from the last
// index down and swapping each with a uniformly chosen index at or below it
func Shuffle(n int, gen ports.Generator, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := Below(gen, i+1)
		swap(i, j)
	}
}

// Below returns a uniform integer in [0, n) using rejection sampling on the top
// bit_length(n) bits of 32-bit words. n must be below 2^32.
func Below(gen ports.Generator, n int) int {
	if n <= 1 {
		return 0
	}
	k := bits.Len64(uint64(n))
	for {
		r := int(gen.Uint32() >> (32 - k))
		if r < n {
			return r
		}
	}
}
