package shared

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/joho/godotenv"
)

// OperatorConfig is the paying account used for every submission.
type OperatorConfig struct {
	AccountID  string
	PrivateKey string
	Network    string
}

// NamedAccount is a participant read from ACCOUNT_<n>_ID and
// ACCOUNT_<n>_PRIVATE_KEY. PrivateKey is nil for receive-only accounts.
type NamedAccount struct {
	Index      int
	AccountID  hedera.AccountID
	PrivateKey *hedera.PrivateKey
}

var (
	networkVars    = []string{"HEDERA_NETWORK", "NETWORK"}
	accountIDVars  = []string{"HEDERA_ACCOUNT_ID", "HEDERA_OPERATOR_ID", "MY_ACCOUNT_ID", "OPERATOR_ID"}
	privateKeyVars = []string{"HEDERA_PRIVATE_KEY", "HEDERA_OPERATOR_KEY", "MY_PRIVATE_KEY", "OPERATOR_KEY"}

	// Network-scoped names such as TESTNET_OPERATOR_ID win over the plain ones.
	scopedAccountIDVars  = []string{"HEDERA_ACCOUNT_ID", "HEDERA_OPERATOR_ID", "OPERATOR_ID"}
	scopedPrivateKeyVars = []string{"HEDERA_PRIVATE_KEY", "HEDERA_OPERATOR_KEY", "OPERATOR_KEY"}
)

var dotenvLoadOnce sync.Once

// OperatorConfigFromEnv resolves the operator from the process environment
// and the nearest .env file.
func OperatorConfigFromEnv() (OperatorConfig, error) {
	loadDotEnvIfPresent()

	config := OperatorConfig{
		Network:    firstNonEmptyEnv(networkVars...),
		AccountID:  firstNonEmptyEnv(accountIDVars...),
		PrivateKey: firstNonEmptyEnv(privateKeyVars...),
	}
	if config.Network == "" {
		config.Network = NetworkTestnet
	}

	if network, err := NormalizeNetwork(config.Network); err == nil {
		prefix := strings.ToUpper(network) + "_"
		if scoped := firstNonEmptyEnv(prefixed(prefix, scopedAccountIDVars)...); scoped != "" {
			config.AccountID = scoped
		}
		if scoped := firstNonEmptyEnv(prefixed(prefix, scopedPrivateKeyVars)...); scoped != "" {
			config.PrivateKey = scoped
		}
	}

	var missing []error
	if config.AccountID == "" {
		missing = append(missing, fmt.Errorf("%s is required", accountIDVars[0]))
	}
	if config.PrivateKey == "" {
		missing = append(missing, fmt.Errorf("%s is required", privateKeyVars[0]))
	}
	if len(missing) > 0 {
		return OperatorConfig{}, errors.Join(missing...)
	}
	return config, nil
}

// NamedAccountFromEnv reads participant n. The ID is required and the key
// is optional.
func NamedAccountFromEnv(index int) (NamedAccount, error) {
	if index <= 0 {
		return NamedAccount{}, fmt.Errorf("account index must be positive, got %d", index)
	}
	loadDotEnvIfPresent()

	idVar, keyVar := accountVars(index)
	rawID := firstNonEmptyEnv(idVar)
	if rawID == "" {
		return NamedAccount{}, fmt.Errorf("%s is required", idVar)
	}
	accountID, err := hedera.AccountIDFromString(rawID)
	if err != nil {
		return NamedAccount{}, fmt.Errorf("invalid %s: %w", idVar, err)
	}

	account := NamedAccount{Index: index, AccountID: accountID}
	rawKey := firstNonEmptyEnv(keyVar)
	if rawKey == "" {
		return account, nil
	}
	key, err := ParsePrivateKey(rawKey)
	if err != nil {
		return NamedAccount{}, fmt.Errorf("invalid %s: %w", keyVar, err)
	}
	account.PrivateKey = &key
	return account, nil
}

// NamedPrivateKeyFromEnv reads only the key of participant n.
func NamedPrivateKeyFromEnv(index int) (hedera.PrivateKey, error) {
	loadDotEnvIfPresent()

	_, keyVar := accountVars(index)
	raw := firstNonEmptyEnv(keyVar)
	if raw == "" {
		return hedera.PrivateKey{}, fmt.Errorf("%s is required", keyVar)
	}
	return ParsePrivateKey(raw)
}

func accountVars(index int) (string, string) {
	return fmt.Sprintf("ACCOUNT_%d_ID", index), fmt.Sprintf("ACCOUNT_%d_PRIVATE_KEY", index)
}

func prefixed(prefix string, names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = prefix + name
	}
	return out
}

func loadDotEnvIfPresent() {
	dotenvLoadOnce.Do(func() {
		path, ok := nearestDotEnv()
		if !ok {
			return
		}
		// Load keeps variables that are already set.
		_ = godotenv.Load(path)
	})
}

// nearestDotEnv walks from the working directory to the filesystem root.
func nearestDotEnv() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, ".env")
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func firstNonEmptyEnv(names ...string) string {
	for _, name := range names {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			return value
		}
	}
	return ""
}

type keyParser[K any] struct {
	name  string
	parse func(string) (K, error)
}

var privateKeyParsers = []keyParser[hedera.PrivateKey]{
	{"ed25519", hedera.PrivateKeyFromStringEd25519},
	{"ecdsa", hedera.PrivateKeyFromStringECDSA},
	{"der", hedera.PrivateKeyFromString},
}

var publicKeyParsers = []keyParser[hedera.PublicKey]{
	{"der", hedera.PublicKeyFromString},
	{"ecdsa", hedera.PublicKeyFromStringECDSA},
	{"ed25519", hedera.PublicKeyFromStringEd25519},
}

func parseKey[K any](kind string, raw string, parsers []keyParser[K]) (K, error) {
	var zero K
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return zero, fmt.Errorf("%s key cannot be empty", kind)
	}
	failures := make([]string, 0, len(parsers))
	for _, parser := range parsers {
		key, err := parser.parse(candidate)
		if err == nil {
			return key, nil
		}
		failures = append(failures, parser.name+": "+err.Error())
	}
	return zero, fmt.Errorf("failed to parse %s key (%s)", kind, strings.Join(failures, "; "))
}

// ParsePrivateKey accepts DER or raw hex, trying ED25519 before ECDSA.
func ParsePrivateKey(raw string) (hedera.PrivateKey, error) {
	return parseKey("private", raw, privateKeyParsers)
}

// ParsePublicKey accepts DER or raw hex.
func ParsePublicKey(raw string) (hedera.PublicKey, error) {
	return parseKey("public", raw, publicKeyParsers)
}
