package main

import (
	"fmt"
	"strconv"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/shared"
	"github.com/hashgraph-online/multisig-sdk-go/pkg/threshold"
)

// parseIndices reads a comma separated list of participant numbers such as
// "1,2,3". Duplicates are rejected.
func parseIndices(raw string) ([]int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	seen := map[int]struct{}{}
	var indices []int
	for _, part := range strings.Split(trimmed, ",") {
		index, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || index <= 0 {
			return nil, fmt.Errorf("invalid participant %q", part)
		}
		if _, exists := seen[index]; exists {
			return nil, fmt.Errorf("participant %d listed twice", index)
		}
		seen[index] = struct{}{}
		indices = append(indices, index)
	}
	return indices, nil
}

// signerKeys returns the private keys of the listed participants.
func signerKeys(raw string) ([]hedera.PrivateKey, error) {
	indices, err := parseIndices(raw)
	if err != nil {
		return nil, err
	}
	keys := make([]hedera.PrivateKey, 0, len(indices))
	for _, index := range indices {
		key, err := shared.NamedPrivateKeyFromEnv(index)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// participantPolicy builds an M-of-N policy from the public keys of the
// listed participants.
func participantPolicy(required int, raw string) (threshold.Policy, error) {
	keys, err := signerKeys(raw)
	if err != nil {
		return threshold.Policy{}, err
	}
	publicKeys := make([]hedera.PublicKey, 0, len(keys))
	for _, key := range keys {
		publicKeys = append(publicKeys, key.PublicKey())
	}
	return threshold.NewPolicy(required, publicKeys...)
}
