package ports

import (
	"context"
)

// Generator is a stream of uniformly distributed 32-bit words.
// Everything random in a randomization is drawn from one Generator.
type Generator interface {
	Uint32() uint32
}

// RNGPort provides explicitly constructed generators for randomizations
type RNGPort interface {
	// SeededStream creates a deterministic generator for the given seed
	SeededStream(ctx context.Context, seed int64) (Generator, error)

	// EntropyStream creates a generator keyed from a non-deterministic source
	EntropyStream(ctx context.Context) (Generator, error)
}
