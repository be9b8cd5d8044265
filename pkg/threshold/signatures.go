package threshold

import (
	"sort"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// SignatureSet holds at most one signature per public key. Adding a second
// signature for a key keeps the first, so signing is idempotent and sets
// merge by union.
type SignatureSet struct {
	entries map[string]Signature
}

// NewSignatureSet returns a set holding signatures, one per key.
func NewSignatureSet(signatures ...Signature) SignatureSet {
	set := SignatureSet{entries: make(map[string]Signature, len(signatures))}
	for _, signature := range signatures {
		set.Add(signature)
	}
	return set
}

// Add inserts signature and reports whether the key was new.
func (s *SignatureSet) Add(signature Signature) bool {
	id := keyID(signature.PublicKey)
	if id == "" {
		return false
	}
	if s.entries == nil {
		s.entries = make(map[string]Signature)
	}
	if _, exists := s.entries[id]; exists {
		return false
	}
	s.entries[id] = Signature{
		PublicKey: signature.PublicKey,
		Bytes:     append([]byte(nil), signature.Bytes...),
	}
	return true
}

// Len returns the number of distinct keys.
func (s SignatureSet) Len() int {
	return len(s.entries)
}

// Has reports whether the set holds a signature by key.
func (s SignatureSet) Has(key hedera.PublicKey) bool {
	_, exists := s.entries[keyID(key)]
	return exists
}

// List returns the signatures ordered by public key.
func (s SignatureSet) List() []Signature {
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	signatures := make([]Signature, 0, len(ids))
	for _, id := range ids {
		signatures = append(signatures, s.entries[id])
	}
	return signatures
}

// Union returns a new set with the signatures of both sets.
func (s SignatureSet) Union(other SignatureSet) SignatureSet {
	merged := NewSignatureSet(s.List()...)
	for _, signature := range other.List() {
		merged.Add(signature)
	}
	return merged
}

func (s SignatureSet) clone() SignatureSet {
	return NewSignatureSet(s.List()...)
}
