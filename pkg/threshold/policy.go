package threshold

import (
	"fmt"
	"sort"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// Policy is an M-of-N rule over a set of unique public keys. The zero value
// is the empty policy. Policies are immutable once constructed.
type Policy struct {
	keys      []hedera.PublicKey
	threshold int
}

// NewPolicy builds an M-of-N policy. It fails with PolicyError when there
// are no keys, a key is empty or repeated, or threshold is outside [1, N].
func NewPolicy(threshold int, keys ...hedera.PublicKey) (Policy, error) {
	policy := Policy{
		keys:      append([]hedera.PublicKey(nil), keys...),
		threshold: threshold,
	}
	if err := policy.Validate(); err != nil {
		return Policy{}, err
	}
	return policy, nil
}

// SingleKeyPolicy is the 1-of-1 policy of a plain single-key account.
func SingleKeyPolicy(key hedera.PublicKey) Policy {
	return Policy{keys: []hedera.PublicKey{key}, threshold: 1}
}

// Validate checks the policy invariants.
func (p Policy) Validate() error {
	n := len(p.keys)
	switch {
	case n == 0:
		return NewPolicyError(p.threshold, n, "at least one key is required")
	case p.threshold < 1:
		return NewPolicyError(p.threshold, n, "threshold must be at least 1")
	case p.threshold > n:
		return NewPolicyError(p.threshold, n, "threshold exceeds the number of keys")
	}

	seen := make(map[string]struct{}, n)
	for index, key := range p.keys {
		id := keyID(key)
		if id == "" {
			return NewPolicyError(p.threshold, n, fmt.Sprintf("key %d is empty", index))
		}
		if _, exists := seen[id]; exists {
			return NewPolicyError(p.threshold, n, fmt.Sprintf("key %d is repeated", index))
		}
		seen[id] = struct{}{}
	}
	return nil
}

// IsZero reports whether p is the zero Policy.
func (p Policy) IsZero() bool {
	return len(p.keys) == 0
}

// Threshold is M.
func (p Policy) Threshold() int {
	return p.threshold
}

// Size is N.
func (p Policy) Size() int {
	return len(p.keys)
}

// Keys returns a copy of the policy keys.
func (p Policy) Keys() []hedera.PublicKey {
	return append([]hedera.PublicKey(nil), p.keys...)
}

// Contains reports whether key belongs to the policy.
func (p Policy) Contains(key hedera.PublicKey) bool {
	id := keyID(key)
	if id == "" {
		return false
	}
	for _, member := range p.keys {
		if keyID(member) == id {
			return true
		}
	}
	return false
}

// RelevantCount counts signatures in set made by members of the policy.
func (p Policy) RelevantCount(set SignatureSet) int {
	count := 0
	for _, member := range p.keys {
		if set.Has(member) {
			count++
		}
	}
	return count
}

// SatisfiedBy reports whether set holds at least M relevant signatures.
func (p Policy) SatisfiedBy(set SignatureSet) bool {
	return !p.IsZero() && p.RelevantCount(set) >= p.threshold
}

// KeyList renders the policy as a Hedera threshold key list.
func (p Policy) KeyList() *hedera.KeyList {
	keyList := hedera.KeyListWithThreshold(uint(p.threshold))
	for _, key := range p.keys {
		keyList.Add(key)
	}
	return keyList
}

// Key returns the Hedera key to attach to an account: the bare public key
// for a 1-of-1 policy, otherwise the threshold key list.
func (p Policy) Key() hedera.Key {
	if len(p.keys) == 1 && p.threshold == 1 {
		return p.keys[0]
	}
	return p.KeyList()
}

func (p Policy) String() string {
	ids := make([]string, 0, len(p.keys))
	for _, key := range p.keys {
		ids = append(ids, keyID(key))
	}
	sort.Strings(ids)
	return fmt.Sprintf("%d-of-%d[%s]", p.threshold, len(p.keys), strings.Join(ids, ","))
}
