package randomization

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"randalloc/adapters/rng"
	"randalloc/domain/allocation"
	"randalloc/ports"
)

func groupNames(result *allocation.Result) []string {
	names := make([]string, len(result.Allocations))
	for i, rec := range result.Allocations {
		names[i] = rec.GroupName
	}
	return names
}

func newEngine() *Engine {
	return NewEngine(rng.NewMersenneAdapter())
}

// Allocations produced by Python's random.shuffle for the same pools and seeds
func TestRandomize_MatchesReferenceAllocations(t *testing.T) {
	tests := []struct {
		name     string
		groups   []allocation.GroupDefinition
		seed     int64
		expected []string
	}{
		{
			name:     "two arms seed 42",
			groups:   []allocation.GroupDefinition{{Name: "A", Size: 2}, {Name: "B", Size: 1}},
			seed:     42,
			expected: []string{"A", "A", "B"},
		},
		{
			name:   "control treatment seed 12345",
			groups: []allocation.GroupDefinition{{Name: "Control", Size: 5}, {Name: "Treatment", Size: 5}},
			seed:   12345,
			expected: []string{"Treatment", "Treatment", "Control", "Treatment", "Control",
				"Control", "Treatment", "Control", "Control", "Treatment"},
		},
		{
			name:   "three arms seed 2025",
			groups: []allocation.GroupDefinition{{Name: "Control", Size: 3}, {Name: "Treatment", Size: 3}, {Name: "Placebo", Size: 2}},
			seed:   2025,
			expected: []string{"Placebo", "Control", "Treatment", "Control",
				"Placebo", "Treatment", "Treatment", "Control"},
		},
		{
			name:     "multi-word seed",
			groups:   []allocation.GroupDefinition{{Name: "X", Size: 1}, {Name: "Y", Size: 2}, {Name: "Z", Size: 3}},
			seed:     1<<40 + 7,
			expected: []string{"Y", "X", "Y", "Z", "Z", "Z"},
		},
		{
			name:     "largest seed",
			groups:   []allocation.GroupDefinition{{Name: "Drug", Size: 3}, {Name: "Placebo", Size: 3}},
			seed:     9223372036854775807,
			expected: []string{"Placebo", "Drug", "Placebo", "Placebo", "Drug", "Drug"},
		},
	}

	engine := newEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.Randomize(context.Background(), tt.groups, allocation.SeedOf(tt.seed))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, groupNames(result))
		})
	}
}

func TestRandomize_Deterministic(t *testing.T) {
	engine := newEngine()
	ctx := context.Background()
	groups := []allocation.GroupDefinition{{Name: "Control", Size: 12}, {Name: "Treatment", Size: 9}, {Name: "Placebo", Size: 4}}

	for _, seed := range []int64{1, 42, 987654321} {
		first, err := engine.Randomize(ctx, groups, allocation.SeedOf(seed))
		require.NoError(t, err)
		second, err := engine.Randomize(ctx, groups, allocation.SeedOf(seed))
		require.NoError(t, err)

		assert.Equal(t, first.Allocations, second.Allocations, "seed %d", seed)
	}
}

func TestRandomize_PoolIntegrityAndIDDensity(t *testing.T) {
	engine := newEngine()
	groups := []allocation.GroupDefinition{
		{Name: "Control", Size: 5},
		{Name: "Treatment", Size: 5},
		{Name: "Low dose", Size: 1},
		{Name: "High dose", Size: 17},
	}

	for _, seed := range []allocation.Seed{allocation.NoSeed(), allocation.SeedOf(7)} {
		result, err := engine.Randomize(context.Background(), groups, seed)
		require.NoError(t, err)

		require.Equal(t, allocation.TotalSize(groups), result.Total())
		counts := result.Counts()
		for _, g := range groups {
			assert.Equal(t, g.Size, counts[g.Name], "group %s", g.Name)
		}
		for i, rec := range result.Allocations {
			assert.Equal(t, i+1, rec.ParticipantID)
		}
		assert.Equal(t, groups, result.Groups)
	}
}

func TestRandomize_SeedRecording(t *testing.T) {
	engine := newEngine()
	groups := []allocation.GroupDefinition{{Name: "A", Size: 2}, {Name: "B", Size: 1}}

	seeded, err := engine.Randomize(context.Background(), groups, allocation.SeedOf(42))
	require.NoError(t, err)
	v, ok := seeded.Seed.Value()
	assert.True(t, ok)
	assert.Equal(t, int64(42), v)

	unseeded, err := engine.Randomize(context.Background(), groups, allocation.NoSeed())
	require.NoError(t, err)
	assert.Equal(t, allocation.NoSeedSentinel, unseeded.Seed.String())
}

func TestRandomize_InvalidSeedTextFallsBackToNoSeed(t *testing.T) {
	seed, err := allocation.ParseSeed("not-a-number")
	require.ErrorIs(t, err, allocation.ErrInvalidSeed)

	result, err := newEngine().Randomize(context.Background(), []allocation.GroupDefinition{{Name: "A", Size: 3}}, seed)
	require.NoError(t, err)
	assert.Equal(t, allocation.NoSeedSentinel, result.Seed.String())
}

func TestRandomize_NonDeterministicWithoutSeed(t *testing.T) {
	engine := newEngine()
	groups := []allocation.GroupDefinition{{Name: "Control", Size: 5}, {Name: "Treatment", Size: 5}}

	orders := make(map[string]bool)
	for i := 0; i < 20; i++ {
		result, err := engine.Randomize(context.Background(), groups, allocation.NoSeed())
		require.NoError(t, err)
		assert.Equal(t, 10, result.Total())
		assert.Equal(t, 5, result.Counts()["Control"])
		assert.Equal(t, 5, result.Counts()["Treatment"])
		orders[strings.Join(groupNames(result), ",")] = true
	}

	// 252 distinct orders are possible; 20 identical draws would be astronomically unlikely
	assert.Greater(t, len(orders), 1)
}

func TestRandomize_InvalidGroupSize(t *testing.T) {
	engine := newEngine()

	tests := []struct {
		name   string
		groups []allocation.GroupDefinition
	}{
		{"zero", []allocation.GroupDefinition{{Name: "A", Size: 2}, {Name: "X", Size: 0}}},
		{"negative", []allocation.GroupDefinition{{Name: "A", Size: 2}, {Name: "X", Size: -3}}},
		{"single group above cap", []allocation.GroupDefinition{{Name: "X", Size: allocation.MaxPoolSize + 1}}},
		{"sum above cap", []allocation.GroupDefinition{{Name: "A", Size: allocation.MaxPoolSize}, {Name: "B", Size: 1}}},
		{"sum would overflow int", []allocation.GroupDefinition{{Name: "A", Size: math.MaxInt}, {Name: "B", Size: math.MaxInt}}},
	}

	for _, tt := range tests {
		result, err := engine.Randomize(context.Background(), tt.groups, allocation.SeedOf(1))
		assert.ErrorIs(t, err, allocation.ErrInvalidGroupSize, tt.name)
		assert.Nil(t, result, tt.name)
	}
}

func TestRandomize_DuplicateNamesActAsIndependentGroups(t *testing.T) {
	groups := []allocation.GroupDefinition{{Name: "A", Size: 2}, {Name: "A", Size: 3}, {Name: "B", Size: 1}}

	result, err := newEngine().Randomize(context.Background(), groups, allocation.SeedOf(99))
	require.NoError(t, err)
	assert.Equal(t, 6, result.Total())
	assert.Equal(t, 5, result.Counts()["A"])
	assert.Equal(t, 1, result.Counts()["B"])
}

func TestRandomize_EmptyGroupList(t *testing.T) {
	result, err := newEngine().Randomize(context.Background(), nil, allocation.SeedOf(5))
	require.NoError(t, err)
	assert.Empty(t, result.Allocations)
}

type MockRNG struct {
	mock.Mock
}

func (m *MockRNG) SeededStream(ctx context.Context, seed int64) (ports.Generator, error) {
	args := m.Called(ctx, seed)
	gen, _ := args.Get(0).(ports.Generator)
	return gen, args.Error(1)
}

func (m *MockRNG) EntropyStream(ctx context.Context) (ports.Generator, error) {
	args := m.Called(ctx)
	gen, _ := args.Get(0).(ports.Generator)
	return gen, args.Error(1)
}

func TestRandomize_GeneratorFailure(t *testing.T) {
	ctx := context.Background()
	m := new(MockRNG)
	m.On("EntropyStream", ctx).Return(nil, errors.New("entropy unavailable"))

	_, err := NewEngine(m).Randomize(ctx, []allocation.GroupDefinition{{Name: "A", Size: 1}}, allocation.NoSeed())
	assert.ErrorContains(t, err, "entropy unavailable")
	m.AssertExpectations(t)
}

func TestRandomize_SeedSelectsSeededStream(t *testing.T) {
	ctx := context.Background()
	seeded, err := rng.NewMersenneAdapter().SeededStream(ctx, 3)
	require.NoError(t, err)

	m := new(MockRNG)
	m.On("SeededStream", ctx, int64(3)).Return(seeded, nil)

	_, err = NewEngine(m).Randomize(ctx, []allocation.GroupDefinition{{Name: "A", Size: 4}}, allocation.SeedOf(3))
	require.NoError(t, err)
	m.AssertExpectations(t)
	m.AssertNotCalled(t, "EntropyStream", mock.Anything)
}

// Seeds 1..6000 over a three-element pool must cover all six permutations uniformly
func TestShuffle_UniformOverPermutations(t *testing.T) {
	adapter := rng.NewMersenneAdapter()
	ctx := context.Background()
	const trials = 6000

	counts := make(map[string]int)
	for seed := int64(1); seed <= trials; seed++ {
		gen, err := adapter.SeededStream(ctx, seed)
		require.NoError(t, err)
		pool := []string{"A", "B", "C"}
		Shuffle(len(pool), gen, func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		counts[strings.Join(pool, "")]++
	}
	require.Len(t, counts, 6)

	expected := float64(trials) / 6
	chi := 0.0
	for _, observed := range counts {
		d := float64(observed) - expected
		chi += d * d / expected
	}

	pValue := 1 - distuv.ChiSquared{K: 5}.CDF(chi)
	assert.Greater(t, pValue, 0.01, "chi-square %.3f", chi)
}

type fixedGenerator struct {
	words []uint32
	next  int
}

func (g *fixedGenerator) Uint32() uint32 {
	w := g.words[g.next%len(g.words)]
	g.next++
	return w
}

func TestBelow_RejectsOutOfRangeDraws(t *testing.T) {
	// n = 3 uses the top two bits: 0b11 is rejected, 0b10 accepted
	gen := &fixedGenerator{words: []uint32{0xC0000000, 0x80000000}}
	assert.Equal(t, 2, Below(gen, 3))
	assert.Equal(t, 2, gen.next)

	assert.Equal(t, 0, Below(gen, 1))
}

func TestBuildPool_DefinitionOrder(t *testing.T) {
	pool, err := BuildPool([]allocation.GroupDefinition{{Name: "B", Size: 1}, {Name: "A", Size: 2}})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "A"}, pool)
}
