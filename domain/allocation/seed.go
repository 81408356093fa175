package allocation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NoSeedSentinel is written wherever a seed would be recorded but none was used.
const NoSeedSentinel = "No seed used"

// seedPattern accepts positive integers without leading zeros.
var seedPattern = regexp.MustCompile(`^[1-9][0-9]*$`)

// Seed is an optional integer used to initialize a reproducible generator.
// The zero value means no seed.
type Seed struct {
	value int64
	set   bool
}

// NoSeed returns the absent seed
func NoSeed() Seed {
	return Seed{}
}

// SeedOf returns a present seed. Presence, not the value, decides whether a seed is recorded,
// so SeedOf(0) is a valid seed.
func SeedOf(v int64) Seed {
	return Seed{value: v, set: true}
}

// Value returns the seed and whether one is present
func (s Seed) Value() (int64, bool) {
	return s.value, s.set
}

// IsSet reports whether a seed is present
func (s Seed) IsSet() bool {
	return s.set
}

// String renders the seed the way it is recorded in reports
func (s Seed) String() string {
	if !s.set {
		return NoSeedSentinel
	}
	return strconv.FormatInt(s.value, 10)
}

// MarshalJSON encodes an absent seed as null
func (s Seed) MarshalJSON() ([]byte, error) {
	if !s.set {
		return []byte("null"), nil
	}
	return json.Marshal(s.value)
}

// UnmarshalJSON decodes null as an absent seed
func (s *Seed) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = NoSeed()
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	*s = SeedOf(v)
	return nil
}

// ParseSeed parses raw seed text. Empty text means no seed and is not an error.
// Text that is not a positive integer yields NoSeed together with an ErrInvalidSeed error,
// so callers can report the problem and still proceed without a seed.
func ParseSeed(text string) (Seed, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return NoSeed(), nil
	}
	if !seedPattern.MatchString(text) {
		return NoSeed(), fmt.Errorf("%w: %q is not a positive integer", ErrInvalidSeed, text)
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return NoSeed(), fmt.Errorf("%w: %q is out of range", ErrInvalidSeed, text)
	}
	return SeedOf(v), nil
}

// ParseSeedCell reads a seed back from a report cell, accepting the sentinel
func ParseSeedCell(text string) (Seed, error) {
	text = strings.TrimSpace(text)
	if text == NoSeedSentinel || text == "" {
		return NoSeed(), nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return NoSeed(), fmt.Errorf("%w: %q", ErrInvalidSeed, text)
	}
	return SeedOf(v), nil
}
