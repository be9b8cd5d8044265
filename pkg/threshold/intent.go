package threshold

import (
	"fmt"
	"math"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

const maxMemoBytes = 100

// Intent is an ordered, balanced set of transfers. It is immutable; build
// one with BuildIntent.
type Intent struct {
	transfers []Transfer
	maxFee    hedera.Hbar
	memo      string
}

// IntentOption sets an optional field of an Intent.
type IntentOption func(*Intent)

// WithMaxTransactionFee caps the fee the payer is willing to pay.
func WithMaxTransactionFee(fee hedera.Hbar) IntentOption {
	return func(intent *Intent) {
		intent.maxFee = fee
	}
}

// WithMemo sets the transaction memo.
func WithMemo(memo string) IntentOption {
	return func(intent *Intent) {
		intent.memo = memo
	}
}

// BuildIntent validates transfers and returns an Intent. The transfer list
// must be non-empty, every amount non-zero, every account listed once, and
// the amounts must sum to zero.
func BuildIntent(transfers []Transfer, options ...IntentOption) (Intent, error) {
	intent := Intent{transfers: append([]Transfer(nil), transfers...)}
	for _, option := range options {
		if option != nil {
			option(&intent)
		}
	}

	if len(intent.transfers) == 0 {
		return Intent{}, NewIntentError("at least one transfer is required")
	}

	seen := make(map[string]struct{}, len(intent.transfers))
	var sum int64
	for index, transfer := range intent.transfers {
		accountID := transfer.Account.ID
		if accountID.Shard == 0 && accountID.Realm == 0 && accountID.Account == 0 && accountID.AliasKey == nil {
			return Intent{}, NewIntentError(fmt.Sprintf("transfer %d has no account", index))
		}
		amount := transfer.Amount.AsTinybar()
		if amount == 0 {
			return Intent{}, NewIntentError(fmt.Sprintf("transfer %d for account %s has a zero amount", index, accountID.String()))
		}
		key := accountID.String()
		if _, exists := seen[key]; exists {
			return Intent{}, NewIntentError(fmt.Sprintf("account %s appears more than once", key))
		}
		seen[key] = struct{}{}

		if (amount > 0 && sum > math.MaxInt64-amount) || (amount < 0 && sum < math.MinInt64-amount) {
			return Intent{}, NewIntentError("transfer amounts overflow")
		}
		sum += amount
	}
	if sum != 0 {
		return Intent{}, NewIntentError(fmt.Sprintf("transfer amounts sum to %d tinybars, expected 0", sum))
	}

	if intent.maxFee.AsTinybar() < 0 {
		return Intent{}, NewIntentError("max transaction fee cannot be negative")
	}
	if len(intent.memo) > maxMemoBytes {
		return Intent{}, NewIntentError(fmt.Sprintf("memo exceeds %d bytes", maxMemoBytes))
	}
	return intent, nil
}

// IsZero reports whether i was not produced by BuildIntent.
func (i Intent) IsZero() bool {
	return len(i.transfers) == 0
}

// Transfers returns a copy of the transfers.
func (i Intent) Transfers() []Transfer {
	return append([]Transfer(nil), i.transfers...)
}

// Debits returns the transfers that take value out of an account. Those
// accounts must authorize the intent.
func (i Intent) Debits() []Transfer {
	debits := make([]Transfer, 0, len(i.transfers))
	for _, transfer := range i.transfers {
		if transfer.Amount.AsTinybar() < 0 {
			debits = append(debits, transfer)
		}
	}
	return debits
}

// MaxTransactionFee is zero when the ledger default applies.
func (i Intent) MaxTransactionFee() hedera.Hbar {
	return i.maxFee
}

// Memo returns the transaction memo.
func (i Intent) Memo() string {
	return i.memo
}
