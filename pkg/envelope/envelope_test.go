package envelope

import (
	"strings"
	"testing"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/ledger"
	"github.com/hashgraph-online/multisig-sdk-go/pkg/threshold"
)

type fixture struct {
	keys    []hedera.PrivateKey
	pending *threshold.PendingTransaction
}

func freeze(t *testing.T, intent threshold.Intent) threshold.Payload {
	t.Helper()
	transaction, err := ledger.BuildTransferTx(intent, hedera.AccountID{Account: 2})
	if err != nil {
		t.Fatalf("BuildTransferTx failed: %v", err)
	}
	payload, err := ledger.FreezeTransfer(transaction, hedera.AccountID{Account: 3})
	if err != nil {
		t.Fatalf("FreezeTransfer failed: %v", err)
	}
	return payload
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	keys := make([]hedera.PrivateKey, 0, 3)
	publicKeys := make([]hedera.PublicKey, 0, 3)
	for i := 0; i < 3; i++ {
		key, err := hedera.PrivateKeyGenerateEd25519()
		if err != nil {
			t.Fatalf("failed to generate key: %v", err)
		}
		keys = append(keys, key)
		publicKeys = append(publicKeys, key.PublicKey())
	}
	policy, err := threshold.NewPolicy(2, publicKeys...)
	if err != nil {
		t.Fatalf("NewPolicy failed: %v", err)
	}

	intent, err := threshold.BuildIntent([]threshold.Transfer{
		{Account: threshold.Account{ID: hedera.AccountID{Account: 1001}, Policy: policy}, Amount: hedera.NewHbar(-10)},
		{Account: threshold.Account{ID: hedera.AccountID{Account: 1002}}, Amount: hedera.NewHbar(10)},
	}, threshold.WithMemo("rent"), threshold.WithMaxTransactionFee(hedera.NewHbar(2)))
	if err != nil {
		t.Fatalf("BuildIntent failed: %v", err)
	}

	payload := freeze(t, intent)
	pending, err := threshold.NewPendingTransaction(intent, payload,
		threshold.Signature{PublicKey: keys[0].PublicKey(), Bytes: keys[0].Sign(payload.SignBytes)})
	if err != nil {
		t.Fatalf("NewPendingTransaction failed: %v", err)
	}
	return fixture{keys: keys, pending: pending}
}

func TestEncodeDecodeRestoresPending(t *testing.T) {
	f := newFixture(t)

	encoded, err := Encode(FromPending(f.pending))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	restored, err := decoded.Pending()
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}

	if restored.TransactionID() != f.pending.TransactionID() {
		t.Fatalf("unexpected transaction ID %s", restored.TransactionID())
	}
	if restored.SignatureCount() != 1 || !restored.Signatures().Has(f.keys[0].PublicKey()) {
		t.Fatalf("signature not restored")
	}
	intent := restored.Intent()
	if intent.Memo() != "rent" || intent.MaxTransactionFee().AsTinybar() != hedera.NewHbar(2).AsTinybar() {
		t.Fatalf("intent options not restored: %q %s", intent.Memo(), intent.MaxTransactionFee().String())
	}
	debits := intent.Debits()
	if len(debits) != 1 || debits[0].Account.Policy.Threshold() != 2 || debits[0].Account.Policy.Size() != 3 {
		t.Fatalf("policy not restored: %+v", debits)
	}
}

func TestMergeUnionsSignatures(t *testing.T) {
	f := newFixture(t)
	base := FromPending(f.pending)

	signBytes := f.pending.Payload().SignBytes
	other := base
	other.Signatures = []SignatureRecord{
		{PublicKey: f.keys[0].PublicKey().String(), Signature: f.keys[0].Sign(signBytes)},
		{PublicKey: f.keys[1].PublicKey().String(), Signature: f.keys[1].Sign(signBytes)},
	}

	merged, err := base.Merge(other)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(merged.Signatures) != 2 {
		t.Fatalf("expected 2 signatures, got %d", len(merged.Signatures))
	}
	restored, err := merged.Pending()
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	debits := restored.Intent().Debits()
	if !debits[0].Account.Policy.SatisfiedBy(restored.Signatures()) {
		t.Fatalf("merged signatures should satisfy the policy")
	}
}

func TestMergeRejectsDifferentTransactions(t *testing.T) {
	f := newFixture(t)
	base := FromPending(f.pending)

	other := base
	other.TransactionID = "0.0.2@1700000000.000000002"
	if _, err := base.Merge(other); err == nil {
		t.Fatalf("expected error for different transaction IDs")
	}

	other = base
	other.SignBytes = []byte("other body")
	if _, err := base.Merge(other); err == nil {
		t.Fatalf("expected error for different sign bytes")
	}
}

func TestPendingRejectsTamperedSignature(t *testing.T) {
	f := newFixture(t)
	envelope := FromPending(f.pending)
	envelope.Signatures[0].Signature = f.keys[0].Sign([]byte("something else"))

	if _, err := envelope.Pending(); err == nil {
		t.Fatalf("expected error for invalid signature")
	}
}

func TestPendingRejectsTransfersDifferentFromSignedBytes(t *testing.T) {
	f := newFixture(t)
	base := FromPending(f.pending)

	understated := base
	understated.Transfers = []TransferRecord{
		{AccountID: "0.0.1001", Tinybars: -hedera.NewHbar(1).AsTinybar(), Policy: base.Transfers[0].Policy},
		{AccountID: "0.0.1002", Tinybars: hedera.NewHbar(1).AsTinybar()},
	}
	if _, err := understated.Pending(); err == nil || !strings.Contains(err.Error(), "intent lists") {
		t.Fatalf("expected transfer mismatch error, got %v", err)
	}

	redirected := base
	redirected.Transfers = []TransferRecord{
		base.Transfers[0],
		{AccountID: "0.0.1003", Tinybars: base.Transfers[1].Tinybars},
	}
	if _, err := redirected.Pending(); err == nil {
		t.Fatalf("expected error for a recipient absent from the signed bytes")
	}

	memo := base
	memo.Memo = "not rent"
	if _, err := memo.Pending(); err == nil {
		t.Fatalf("expected memo mismatch error")
	}

	relabelled := base
	relabelled.TransactionID = "0.0.2@1700000000.000000002"
	if _, err := relabelled.Pending(); err == nil {
		t.Fatalf("expected transaction ID mismatch error")
	}
}

func TestPendingRejectsSignBytesFromAnotherTransaction(t *testing.T) {
	f := newFixture(t)
	envelope := FromPending(f.pending)

	other := freeze(t, f.pending.Intent())
	envelope.SignBytes = other.SignBytes
	envelope.Signatures = []SignatureRecord{{
		PublicKey: f.keys[0].PublicKey().String(),
		Signature: f.keys[0].Sign(other.SignBytes),
	}}
	if _, err := envelope.Pending(); err == nil || !strings.Contains(err.Error(), "sign bytes") {
		t.Fatalf("expected sign bytes mismatch error, got %v", err)
	}
}

func TestDecodeInvalidInput(t *testing.T) {
	if _, err := Decode("not base64!"); err == nil {
		t.Fatalf("expected base64 error")
	}
	if _, err := Decode("aGVsbG8="); err == nil || !strings.Contains(err.Error(), "envelope") {
		t.Fatalf("expected decode error, got %v", err)
	}
}
