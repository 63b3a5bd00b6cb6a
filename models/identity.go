package models

import (
	"fmt"
	"strings"
	"time"
)

// Signature is a fixed-shape numeric descriptor derived from a normalized
// face crop. Signatures are only comparable to other signatures produced by
// the same extraction parameters.
type Signature []float32

// Equal reports whether two signatures are byte-for-byte identical
func (s Signature) Equal(other Signature) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the signature
func (s Signature) Clone() Signature {
	out := make(Signature, len(s))
	copy(out, s)
	return out
}

// Identity is a named enrolled person with one or more signatures. The name
// is the sole durable primary key; uniqueness is checked case-normalized.
type Identity struct {
	Name       string      `json:"name"`
	Signatures []Signature `json:"signatures"`
	CreatedAt  int64       `json:"created_at"` // Unix timestamp
}

// NewIdentity validates and constructs an identity. The name must be
// non-empty after trimming and at least one signature is required; all
// signatures must share the same length.
func NewIdentity(name string, signatures []Signature) (*Identity, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("identity name must not be empty")
	}
	if len(signatures) == 0 {
		return nil, fmt.Errorf("identity %q requires at least one signature", trimmed)
	}
	width := len(signatures[0])
	if width == 0 {
		return nil, fmt.Errorf("identity %q has an empty signature", trimmed)
	}
	sigs := make([]Signature, len(signatures))
	for i, sig := range signatures {
		if len(sig) != width {
			return nil, fmt.Errorf("identity %q has signatures of mixed lengths (%d vs %d)", trimmed, len(sig), width)
		}
		sigs[i] = sig.Clone()
	}
	return &Identity{
		Name:       trimmed,
		Signatures: sigs,
		CreatedAt:  time.Now().Unix(),
	}, nil
}

// NormalizeName produces the case-normalized uniqueness key for a name
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
