package schedule

import (
	"strings"
	"testing"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/threshold"
)

func testIntent(t *testing.T) threshold.Intent {
	t.Helper()
	intent, err := threshold.BuildIntent([]threshold.Transfer{
		{Account: threshold.Account{ID: hedera.AccountID{Account: 1001}}, Amount: hedera.HbarFromTinybar(-10)},
		{Account: threshold.Account{ID: hedera.AccountID{Account: 1002}}, Amount: hedera.HbarFromTinybar(10)},
	})
	if err != nil {
		t.Fatalf("BuildIntent failed: %v", err)
	}
	return intent
}

func TestBuildScheduledTransferTx(t *testing.T) {
	adminKey, err := hedera.PrivateKeyGenerateEd25519()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	transaction, err := BuildScheduledTransferTx(testIntent(t), CreateOptions{
		AdminKey:       adminKey.PublicKey(),
		Memo:           "monthly rent",
		PayerAccountID: "0.0.1001",
	})
	if err != nil {
		t.Fatalf("BuildScheduledTransferTx failed: %v", err)
	}
	if transaction.GetScheduleMemo() != "monthly rent" {
		t.Fatalf("unexpected memo %q", transaction.GetScheduleMemo())
	}
	if transaction.GetPayerAccountID().String() != "0.0.1001" {
		t.Fatalf("unexpected payer %s", transaction.GetPayerAccountID().String())
	}
}

func TestBuildScheduledTransferTxValidation(t *testing.T) {
	if _, err := BuildScheduledTransferTx(threshold.Intent{}, CreateOptions{}); err == nil {
		t.Fatalf("expected error for empty intent")
	}
	if _, err := BuildScheduledTransferTx(testIntent(t), CreateOptions{Memo: strings.Repeat("m", 101)}); err == nil {
		t.Fatalf("expected error for long memo")
	}
	if _, err := BuildScheduledTransferTx(testIntent(t), CreateOptions{PayerAccountID: "payer"}); err == nil {
		t.Fatalf("expected error for invalid payer")
	}
}

func TestBuildScheduleSignTx(t *testing.T) {
	transaction, err := BuildScheduleSignTx(" 0.0.4242 ")
	if err != nil {
		t.Fatalf("BuildScheduleSignTx failed: %v", err)
	}
	if transaction.GetScheduleID().String() != "0.0.4242" {
		t.Fatalf("unexpected schedule ID %s", transaction.GetScheduleID().String())
	}
	if _, err := BuildScheduleSignTx("schedule"); err == nil {
		t.Fatalf("expected error for invalid schedule ID")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	transaction, err := BuildScheduledTransferTx(testIntent(t), CreateOptions{Memo: "offline"})
	if err != nil {
		t.Fatalf("BuildScheduledTransferTx failed: %v", err)
	}
	frozen, err := transaction.
		SetNodeAccountIDs([]hedera.AccountID{{Account: 3}}).
		SetTransactionID(hedera.TransactionIDGenerate(hedera.AccountID{Account: 2})).
		Freeze()
	if err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}

	encoded, err := Encode(frozen)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.GetScheduleMemo() != "offline" {
		t.Fatalf("unexpected decoded memo %q", decoded.GetScheduleMemo())
	}

	if _, err := Decode("%%%"); err == nil {
		t.Fatalf("expected base64 error")
	}
	if _, err := Encode(nil); err == nil {
		t.Fatalf("expected error for nil transaction")
	}
}
