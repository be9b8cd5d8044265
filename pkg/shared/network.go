package shared

import (
	"fmt"
	"sort"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

const (
	NetworkMainnet    = "mainnet"
	NetworkTestnet    = "testnet"
	NetworkPreviewnet = "previewnet"
)

var networkClients = map[string]func() *hedera.Client{
	NetworkMainnet:    hedera.ClientForMainnet,
	NetworkTestnet:    hedera.ClientForTestnet,
	NetworkPreviewnet: hedera.ClientForPreviewnet,
}

// ClientOptions configures an operator-bound Hedera client. Each feature
// client receives its own copy.
type ClientOptions struct {
	Network                  string
	OperatorAccountID        string
	OperatorPrivateKey       string
	DefaultMaxTransactionFee hedera.Hbar
}

// NormalizeNetwork lowercases and validates a network name. Empty means testnet.
func NormalizeNetwork(network string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(network))
	if name == "" {
		return NetworkTestnet, nil
	}
	if _, known := networkClients[name]; !known {
		return "", fmt.Errorf("unsupported network %q, expected one of %s", network, strings.Join(Networks(), ", "))
	}
	return name, nil
}

// Networks lists the supported network names in sorted order.
func Networks() []string {
	names := make([]string, 0, len(networkClients))
	for name := range networkClients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewHederaClient creates a client for the named network with no operator.
func NewHederaClient(network string) (*hedera.Client, error) {
	name, err := NormalizeNetwork(network)
	if err != nil {
		return nil, err
	}
	return networkClients[name](), nil
}

// NewOperatorClient creates a client paying from the configured operator.
func NewOperatorClient(options ClientOptions) (*hedera.Client, error) {
	operatorID, operatorKey, err := options.operator()
	if err != nil {
		return nil, err
	}

	client, err := NewHederaClient(options.Network)
	if err != nil {
		return nil, err
	}
	client.SetOperator(operatorID, operatorKey)

	if fee := options.DefaultMaxTransactionFee; fee.AsTinybar() > 0 {
		if err := client.SetDefaultMaxTransactionFee(fee); err != nil {
			return nil, fmt.Errorf("invalid default max transaction fee: %w", err)
		}
	}
	return client, nil
}

func (o ClientOptions) operator() (hedera.AccountID, hedera.PrivateKey, error) {
	rawID := strings.TrimSpace(o.OperatorAccountID)
	rawKey := strings.TrimSpace(o.OperatorPrivateKey)
	switch {
	case rawID == "":
		return hedera.AccountID{}, hedera.PrivateKey{}, fmt.Errorf("operator account ID is required")
	case rawKey == "":
		return hedera.AccountID{}, hedera.PrivateKey{}, fmt.Errorf("operator private key is required")
	}

	accountID, err := hedera.AccountIDFromString(rawID)
	if err != nil {
		return hedera.AccountID{}, hedera.PrivateKey{}, fmt.Errorf("invalid operator account ID: %w", err)
	}
	key, err := ParsePrivateKey(rawKey)
	if err != nil {
		return hedera.AccountID{}, hedera.PrivateKey{}, fmt.Errorf("invalid operator private key: %w", err)
	}
	return accountID, key, nil
}

// ResolveClient prefers an existing client and only builds one from options
// when none was given.
func ResolveClient(existing *hedera.Client, options ClientOptions) (*hedera.Client, error) {
	if existing != nil {
		return existing, nil
	}
	return NewOperatorClient(options)
}

// HashscanURL links an entity on the public explorer. Unknown networks
// fall back to testnet.
func HashscanURL(network string, entityType string, entityID string) string {
	name, err := NormalizeNetwork(network)
	if err != nil {
		name = NetworkTestnet
	}
	return strings.Join([]string{"https://hashscan.io", name, entityType, strings.TrimSpace(entityID)}, "/")
}
