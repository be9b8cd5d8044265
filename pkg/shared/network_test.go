package shared

import (
	"strings"
	"testing"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

func TestNormalizeNetwork(t *testing.T) {
	cases := map[string]string{
		"MAINNET":     NetworkMainnet,
		"Mainnet":     NetworkMainnet,
		"  testnet  ": NetworkTestnet,
		"previewnet":  NetworkPreviewnet,
		"":            NetworkTestnet,
		"   ":         NetworkTestnet,
	}
	for input, expected := range cases {
		got, err := NormalizeNetwork(input)
		if err != nil {
			t.Fatalf("NormalizeNetwork(%q) failed: %v", input, err)
		}
		if got != expected {
			t.Fatalf("NormalizeNetwork(%q) = %q, expected %q", input, got, expected)
		}
	}

	_, err := NormalizeNetwork("devnet")
	if err == nil || !strings.Contains(err.Error(), "mainnet, previewnet, testnet") {
		t.Fatalf("expected unsupported network error listing choices, got %v", err)
	}
}

func TestNewHederaClientPerNetwork(t *testing.T) {
	for _, network := range Networks() {
		client, err := NewHederaClient(strings.ToUpper(network))
		if err != nil || client == nil {
			t.Fatalf("NewHederaClient(%s) = %v, %v", network, client, err)
		}
	}
	if _, err := NewHederaClient("badnet"); err == nil {
		t.Fatal("expected error for unsupported network")
	}
}

func TestNewOperatorClient(t *testing.T) {
	key, err := hedera.PrivateKeyGenerateEd25519()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	client, err := NewOperatorClient(ClientOptions{
		OperatorAccountID:        " 0.0.12345 ",
		OperatorPrivateKey:       key.String(),
		DefaultMaxTransactionFee: hedera.NewHbar(10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.GetOperatorAccountID().String() != "0.0.12345" {
		t.Fatalf("unexpected operator: %s", client.GetOperatorAccountID())
	}
	if client.GetOperatorPublicKey().String() != key.PublicKey().String() {
		t.Fatal("operator key was not applied")
	}

	key2, _ := hedera.PrivateKeyGenerateEd25519()
	invalid := map[string]ClientOptions{
		"missing account": {OperatorPrivateKey: key2.String()},
		"missing key":     {OperatorAccountID: "0.0.1"},
		"invalid account": {OperatorAccountID: "nope", OperatorPrivateKey: key2.String()},
		"invalid key":     {OperatorAccountID: "0.0.1", OperatorPrivateKey: "bad"},
		"invalid network": {Network: "devnet", OperatorAccountID: "0.0.1", OperatorPrivateKey: key2.String()},
	}
	for name, options := range invalid {
		t.Run(name, func(t *testing.T) {
			if _, err := NewOperatorClient(options); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestResolveClient(t *testing.T) {
	existing := hedera.ClientForTestnet()
	resolved, err := ResolveClient(existing, ClientOptions{})
	if err != nil || resolved != existing {
		t.Fatalf("expected existing client to be reused, got %v, %v", resolved, err)
	}
	if _, err := ResolveClient(nil, ClientOptions{}); err == nil {
		t.Fatal("expected error without operator credentials")
	}
}

func TestHashscanURL(t *testing.T) {
	if got := HashscanURL("MAINNET", "account", " 0.0.42 "); got != "https://hashscan.io/mainnet/account/0.0.42" {
		t.Fatalf("unexpected url: %s", got)
	}
	if got := HashscanURL("bogus", "schedule", "0.0.1"); got != "https://hashscan.io/testnet/schedule/0.0.1" {
		t.Fatalf("expected fallback to testnet, got %s", got)
	}
}
