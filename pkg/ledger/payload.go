package ledger

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/hashgraph/hedera-sdk-go/v2/proto/sdk"
	"github.com/hashgraph/hedera-sdk-go/v2/proto/services"
	"google.golang.org/protobuf/proto"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/threshold"
)

// BuildTransferTx returns an unfrozen transfer for intent paid by payer.
func BuildTransferTx(intent threshold.Intent, payer hedera.AccountID) (*hedera.TransferTransaction, error) {
	if intent.IsZero() {
		return nil, fmt.Errorf("intent is required")
	}

	transaction := hedera.NewTransferTransaction().
		SetTransactionID(hedera.TransactionIDGenerate(payer))
	for _, transfer := range intent.Transfers() {
		transaction.AddHbarTransfer(transfer.Account.ID, transfer.Amount)
	}
	if memo := strings.TrimSpace(intent.Memo()); memo != "" {
		transaction.SetTransactionMemo(memo)
	}
	if fee := intent.MaxTransactionFee(); fee.AsTinybar() > 0 {
		transaction.SetMaxTransactionFee(fee)
	}
	return transaction, nil
}

// FreezeTransfer freezes transaction for a single node and returns the
// payload to sign. It does not contact the network.
func FreezeTransfer(transaction *hedera.TransferTransaction, node hedera.AccountID) (threshold.Payload, error) {
	if transaction == nil {
		return threshold.Payload{}, fmt.Errorf("transfer transaction is required")
	}

	frozen, err := transaction.
		SetNodeAccountIDs([]hedera.AccountID{node}).
		Freeze()
	if err != nil {
		return threshold.Payload{}, fmt.Errorf("failed to freeze transfer transaction: %w", err)
	}

	encoded, err := frozen.ToBytes()
	if err != nil {
		return threshold.Payload{}, fmt.Errorf("failed to serialize transfer transaction: %w", err)
	}
	body, err := BodyBytes(encoded)
	if err != nil {
		return threshold.Payload{}, err
	}

	transactionID := frozen.GetTransactionID()
	return threshold.Payload{
		TransactionID: transactionID.String(),
		SignBytes:     body,
		Encoded:       encoded,
	}, nil
}

// BodyBytes extracts the signed body from a serialized single-node
// transaction list.
func BodyBytes(encoded []byte) ([]byte, error) {
	var list sdk.TransactionList
	if err := proto.Unmarshal(encoded, &list); err != nil {
		return nil, fmt.Errorf("failed to decode transaction list: %w", err)
	}
	transactions := list.GetTransactionList()
	if len(transactions) != 1 {
		return nil, fmt.Errorf("expected a transaction for exactly one node, found %d", len(transactions))
	}

	var signed services.SignedTransaction
	if err := proto.Unmarshal(transactions[0].GetSignedTransactionBytes(), &signed); err != nil {
		return nil, fmt.Errorf("failed to decode signed transaction: %w", err)
	}
	body := signed.GetBodyBytes()
	if len(body) == 0 {
		return nil, fmt.Errorf("transaction body is empty")
	}
	return body, nil
}

// DecodeTransfer restores a frozen transfer from Payload.Encoded.
func DecodeTransfer(encoded []byte) (*hedera.TransferTransaction, error) {
	decoded, err := hedera.TransactionFromBytes(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction bytes: %w", err)
	}
	switch typed := decoded.(type) {
	case *hedera.TransferTransaction:
		return typed, nil
	case hedera.TransferTransaction:
		value := typed
		return &value, nil
	default:
		return nil, fmt.Errorf("transaction bytes decoded to unsupported type %T (expected TransferTransaction)", decoded)
	}
}

// VerifyPayload checks that payload is a frozen transfer of exactly intent:
// the sign bytes are the body of Encoded, and its transaction ID, hbar
// transfers, memo and max fee match. Token and NFT transfers are refused.
func VerifyPayload(intent threshold.Intent, payload threshold.Payload) error {
	body, err := BodyBytes(payload.Encoded)
	if err != nil {
		return err
	}
	if !bytes.Equal(body, payload.SignBytes) {
		return fmt.Errorf("sign bytes are not the body of the encoded transaction")
	}

	transaction, err := DecodeTransfer(payload.Encoded)
	if err != nil {
		return err
	}
	transactionID := transaction.GetTransactionID()
	if transactionID.String() != payload.TransactionID {
		return fmt.Errorf("encoded transaction ID %s does not match %s", transactionID.String(), payload.TransactionID)
	}
	if len(transaction.GetTokenTransfers()) > 0 || len(transaction.GetNftTransfers()) > 0 {
		return fmt.Errorf("encoded transaction %s carries token transfers", payload.TransactionID)
	}

	expected := map[string]int64{}
	for _, transfer := range intent.Transfers() {
		expected[transfer.Account.ID.String()] += transfer.Amount.AsTinybar()
	}
	encoded := map[string]int64{}
	for accountID, amount := range transaction.GetHbarTransfers() {
		encoded[accountID.String()] += amount.AsTinybar()
	}
	if len(expected) != len(encoded) {
		return fmt.Errorf("encoded transaction moves %d accounts, intent lists %d", len(encoded), len(expected))
	}
	for accountID, tinybars := range expected {
		actual, ok := encoded[accountID]
		if !ok || actual != tinybars {
			return fmt.Errorf(
				"encoded transaction moves %s for %s, intent lists %s",
				hedera.HbarFromTinybar(actual).String(),
				accountID,
				hedera.HbarFromTinybar(tinybars).String(),
			)
		}
	}

	if memo := strings.TrimSpace(intent.Memo()); memo != transaction.GetTransactionMemo() {
		return fmt.Errorf("encoded memo %q does not match %q", transaction.GetTransactionMemo(), memo)
	}
	if fee := intent.MaxTransactionFee(); fee.AsTinybar() > 0 && fee.AsTinybar() != transaction.GetMaxTransactionFee().AsTinybar() {
		return fmt.Errorf(
			"encoded max fee %s does not match %s",
			transaction.GetMaxTransactionFee().String(),
			fee.String(),
		)
	}
	return nil
}

// AttachSignatures adds every signature to transaction in public key order.
func AttachSignatures(transaction *hedera.TransferTransaction, signatures []threshold.Signature) *hedera.TransferTransaction {
	ordered := append([]threshold.Signature(nil), signatures...)
	sort.Slice(ordered, func(left int, right int) bool {
		return ordered[left].PublicKey.String() < ordered[right].PublicKey.String()
	})
	for _, signature := range ordered {
		transaction = transaction.AddSignature(signature.PublicKey, signature.Bytes)
	}
	return transaction
}
