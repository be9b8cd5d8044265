package keystore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/hashgraph-online/multisig-sdk-go/pkg/shared"
	"github.com/hashgraph-online/multisig-sdk-go/pkg/threshold"
)

var ErrUnknownKeyHandle = errors.New("unknown key handle")

// Local holds private keys in memory. It is safe for concurrent use.
type Local struct {
	mu   sync.RWMutex
	keys map[string]hedera.PrivateKey
}

var _ threshold.KeyStore = (*Local)(nil)

// NewLocal returns an empty key store.
func NewLocal() *Local {
	return &Local{keys: make(map[string]hedera.PrivateKey)}
}

// Add registers key under handle, replacing any previous key.
func (l *Local) Add(handle string, key hedera.PrivateKey) (hedera.PublicKey, error) {
	trimmed := strings.TrimSpace(handle)
	if trimmed == "" {
		return hedera.PublicKey{}, fmt.Errorf("key handle is required")
	}
	publicKey := key.PublicKey()
	if publicKey.String() == "" {
		return hedera.PublicKey{}, fmt.Errorf("private key for handle %q is empty", trimmed)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys[trimmed] = key
	return publicKey, nil
}

// AddString parses an encoded private key and registers it under handle.
func (l *Local) AddString(handle string, encodedKey string) (hedera.PublicKey, error) {
	key, err := shared.ParsePrivateKey(encodedKey)
	if err != nil {
		return hedera.PublicKey{}, fmt.Errorf("failed to parse key for handle %q: %w", handle, err)
	}
	return l.Add(handle, key)
}

// Generate creates a new key of the given type ("ed25519" or "ecdsa") under
// handle.
func (l *Local) Generate(handle string, keyType string) (hedera.PublicKey, error) {
	var (
		key hedera.PrivateKey
		err error
	)
	switch strings.ToLower(strings.TrimSpace(keyType)) {
	case "", "ed25519":
		key, err = hedera.PrivateKeyGenerateEd25519()
	case "ecdsa", "secp256k1":
		key, err = hedera.PrivateKeyGenerateEcdsa()
	default:
		return hedera.PublicKey{}, fmt.Errorf("unsupported key type %q", keyType)
	}
	if err != nil {
		return hedera.PublicKey{}, fmt.Errorf("failed to generate %s key: %w", keyType, err)
	}
	return l.Add(handle, key)
}

// PublicKey returns the public key registered under handle.
func (l *Local) PublicKey(handle string) (hedera.PublicKey, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	key, exists := l.keys[handle]
	if !exists {
		return hedera.PublicKey{}, fmt.Errorf("%w: %s", ErrUnknownKeyHandle, handle)
	}
	return key.PublicKey(), nil
}

// Handles returns the registered handles in sorted order.
func (l *Local) Handles() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	handles := make([]string, 0, len(l.keys))
	for handle := range l.keys {
		handles = append(handles, handle)
	}
	sort.Strings(handles)
	return handles
}

// Sign signs payload with the key registered under handle.
func (l *Local) Sign(ctx context.Context, payload []byte, handle string) (threshold.Signature, error) {
	if err := ctx.Err(); err != nil {
		return threshold.Signature{}, err
	}
	if len(payload) == 0 {
		return threshold.Signature{}, fmt.Errorf("payload is required")
	}

	l.mu.RLock()
	key, exists := l.keys[handle]
	l.mu.RUnlock()
	if !exists {
		return threshold.Signature{}, fmt.Errorf("%w: %s", ErrUnknownKeyHandle, handle)
	}
	return threshold.Signature{
		PublicKey: key.PublicKey(),
		Bytes:     key.Sign(payload),
	}, nil
}
