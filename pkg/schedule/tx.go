package schedule

import (
	"encoding/base64"
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/threshold"
)

const maxScheduleMemoBytes = 100

// BuildScheduledTransferTx wraps the transfers of intent in a
// ScheduleCreateTransaction.
func BuildScheduledTransferTx(intent threshold.Intent, options CreateOptions) (*hedera.ScheduleCreateTransaction, error) {
	if intent.IsZero() {
		return nil, fmt.Errorf("intent is required")
	}
	if len(options.Memo) > maxScheduleMemoBytes {
		return nil, fmt.Errorf("schedule memo exceeds %d bytes", maxScheduleMemoBytes)
	}

	inner := hedera.NewTransferTransaction()
	for _, transfer := range intent.Transfers() {
		inner.AddHbarTransfer(transfer.Account.ID, transfer.Amount)
	}
	if memo := strings.TrimSpace(intent.Memo()); memo != "" {
		inner.SetTransactionMemo(memo)
	}

	transaction, err := hedera.NewScheduleCreateTransaction().SetScheduledTransaction(inner)
	if err != nil {
		return nil, fmt.Errorf("failed to set scheduled transfer transaction: %w", err)
	}
	if options.AdminKey != nil {
		transaction.SetAdminKey(options.AdminKey)
	}
	if memo := strings.TrimSpace(options.Memo); memo != "" {
		transaction.SetScheduleMemo(memo)
	}
	if payer := strings.TrimSpace(options.PayerAccountID); payer != "" {
		payerID, err := hedera.AccountIDFromString(payer)
		if err != nil {
			return nil, fmt.Errorf("invalid payer account ID: %w", err)
		}
		transaction.SetPayerAccountID(payerID)
	}
	return transaction, nil
}

// BuildScheduleSignTx builds a ScheduleSign for scheduleID.
func BuildScheduleSignTx(scheduleID string) (*hedera.ScheduleSignTransaction, error) {
	parsedScheduleID, err := hedera.ScheduleIDFromString(strings.TrimSpace(scheduleID))
	if err != nil {
		return nil, fmt.Errorf("invalid schedule ID: %w", err)
	}
	return hedera.NewScheduleSignTransaction().SetScheduleID(parsedScheduleID), nil
}

// Encode serializes a frozen schedule as base64.
func Encode(transaction *hedera.ScheduleCreateTransaction) (string, error) {
	if transaction == nil {
		return "", fmt.Errorf("schedule transaction is required")
	}
	raw, err := transaction.ToBytes()
	if err != nil {
		return "", fmt.Errorf("failed to serialize schedule transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decode restores a schedule encoded with Encode.
func Decode(encoded string) (*hedera.ScheduleCreateTransaction, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 schedule transaction: %w", err)
	}
	decoded, err := hedera.TransactionFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode schedule transaction bytes: %w", err)
	}
	switch typed := decoded.(type) {
	case *hedera.ScheduleCreateTransaction:
		return typed, nil
	case hedera.ScheduleCreateTransaction:
		value := typed
		return &value, nil
	default:
		return nil, fmt.Errorf("transaction bytes decoded to unsupported type %T (expected ScheduleCreateTransaction)", decoded)
	}
}
