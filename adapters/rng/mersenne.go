// Package rng provides the generators randomizations draw from.
//
// Seeded streams use the 32-bit Mersenne Twister (MT19937) keyed through init_by_array with the
// absolute value of the seed split into little-endian 32-bit words. This is how Python's
// random.seed keys its generator, so allocation spreadsheets produced with Python's
// random.shuffle reproduce here from the same seed.
package rng

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"gonum.org/v1/gonum/mathext/prng"

	"randalloc/ports"
)

// entropyWords is the number of key words drawn for unseeded streams, one full MT19937 state
const entropyWords = 624

// Ensure MersenneAdapter implements ports.RNGPort
var _ ports.RNGPort = (*MersenneAdapter)(nil)

// MersenneAdapter implements ports.RNGPort with gonum's MT19937
type MersenneAdapter struct {
	entropy io.Reader
}

// NewMersenneAdapter returns an adapter whose unseeded streams are keyed from crypto/rand
func NewMersenneAdapter() *MersenneAdapter {
	return &MersenneAdapter{entropy: rand.Reader}
}

// NewMersenneAdapterWithEntropy uses r as the non-deterministic key source
func NewMersenneAdapterWithEntropy(r io.Reader) *MersenneAdapter {
	return &MersenneAdapter{entropy: r}
}

// SeededStream creates a deterministic MT19937 generator for seed
func (a *MersenneAdapter) SeededStream(ctx context.Context, seed int64) (ports.Generator, error) {
	src := prng.NewMT19937()
	src.SeedFromKeys(SeedKeys(seed))
	return src, nil
}

// EntropyStream creates an MT19937 generator keyed with a full state of entropy
func (a *MersenneAdapter) EntropyStream(ctx context.Context) (ports.Generator, error) {
	buf := make([]byte, entropyWords*4)
	if _, err := io.ReadFull(a.entropy, buf); err != nil {
		return nil, fmt.Errorf("failed to read entropy: %w", err)
	}

	keys := make([]uint32, entropyWords)
	for i := range keys {
		keys[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}

	src := prng.NewMT19937()
	src.SeedFromKeys(keys)
	return src, nil
}

// SeedKeys converts a seed into init_by_array key words: |seed| in little-endian 32-bit words,
// or a single zero word for seed 0
func SeedKeys(seed int64) []uint32 {
	u := uint64(seed)
	if seed < 0 {
		u = -u
	}
	if u == 0 {
		return []uint32{0}
	}

	keys := make([]uint32, 0, 2)
	for u != 0 {
		keys = append(keys, uint32(u))
		u >>= 32
	}
	return keys
}
