package keystore

import (
	"context"
	"errors"
	"testing"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

func TestLocalSign(t *testing.T) {
	store := NewLocal()
	publicKey, err := store.Generate("alice", "ed25519")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	payload := []byte("frozen body")
	signature, err := store.Sign(context.Background(), payload, "alice")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if signature.PublicKey.String() != publicKey.String() {
		t.Fatalf("unexpected signing key: %s", signature.PublicKey.String())
	}
	if !signature.Verify(payload) {
		t.Fatalf("signature does not verify")
	}
	if signature.Verify([]byte("other body")) {
		t.Fatalf("signature verified for a different payload")
	}
}

func TestLocalSignErrors(t *testing.T) {
	store := NewLocal()
	if _, err := store.Generate("bob", "ecdsa"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := store.Sign(context.Background(), []byte("x"), "carol"); !errors.Is(err, ErrUnknownKeyHandle) {
		t.Fatalf("expected ErrUnknownKeyHandle, got %v", err)
	}
	if _, err := store.Sign(context.Background(), nil, "bob"); err == nil {
		t.Fatalf("expected error for empty payload")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Sign(ctx, []byte("x"), "bob"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := store.Generate("dave", "rsa"); err == nil {
		t.Fatalf("expected error for unsupported key type")
	}
	if _, err := store.PublicKey("carol"); !errors.Is(err, ErrUnknownKeyHandle) {
		t.Fatalf("expected ErrUnknownKeyHandle, got %v", err)
	}
}

func TestLocalAddString(t *testing.T) {
	key, err := hedera.PrivateKeyGenerateEd25519()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	store := NewLocal()
	publicKey, err := store.AddString("erin", key.String())
	if err != nil {
		t.Fatalf("AddString failed: %v", err)
	}
	if publicKey.String() != key.PublicKey().String() {
		t.Fatalf("unexpected public key")
	}
	if _, err := store.AddString("frank", "not-a-key"); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := store.Add("  ", key); err == nil {
		t.Fatalf("expected error for blank handle")
	}

	handles := store.Handles()
	if len(handles) != 1 || handles[0] != "erin" {
		t.Fatalf("unexpected handles: %v", handles)
	}
}
