package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first 12 hex characters, enough to tell runs apart in listings
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// AllocationFingerprint hashes an ordered allocation. Two allocations share a fingerprint
// only if every participant ID maps to the same group name in the same order.
type AllocationFingerprint Hash

func (h AllocationFingerprint) String() string { return Hash(h).String() }
func (h AllocationFingerprint) Short() string  { return Hash(h).Short() }

// ComputeAllocationFingerprint hashes (participant id, group name) pairs in order.
// Fields are length-prefixed so names containing separators cannot collide.
func ComputeAllocationFingerprint(ids []int, groupNames []string) AllocationFingerprint {
	var data strings.Builder
	for i := range ids {
		name := ""
		if i < len(groupNames) {
			name = groupNames[i]
		}
		data.WriteString(strconv.Itoa(ids[i]))
		data.WriteByte(':')
		data.WriteString(strconv.Itoa(len(name)))
		data.WriteByte(':')
		data.WriteString(name)
		data.WriteByte(';')
	}
	return AllocationFingerprint(NewHash([]byte(data.String())))
}
