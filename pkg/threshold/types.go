package threshold

import (
	"context"
	"fmt"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// Account is a ledger account and, when known, the policy that governs it.
// A zero Policy means the account is not governed by a locally known policy,
// for example the destination of a transfer.
type Account struct {
	ID     hedera.AccountID
	Policy Policy
}

func (a Account) String() string {
	return a.ID.String()
}

// Transfer is a signed value movement for one account. Negative amounts
// debit the account.
type Transfer struct {
	Account Account
	Amount  hedera.Hbar
}

// Payload is the frozen form of an intent. SignBytes are the exact bytes
// every key signs; Encoded is the ledger-specific serialization submitted
// together with the signatures.
type Payload struct {
	TransactionID string
	SignBytes     []byte
	Encoded       []byte
}

func (p Payload) clone() Payload {
	return Payload{
		TransactionID: p.TransactionID,
		SignBytes:     append([]byte(nil), p.SignBytes...),
		Encoded:       append([]byte(nil), p.Encoded...),
	}
}

// Signature is a signature over Payload.SignBytes by one public key.
type Signature struct {
	PublicKey hedera.PublicKey
	Bytes     []byte
}

// Verify reports whether the signature is valid for message.
func (s Signature) Verify(message []byte) bool {
	if len(s.Bytes) == 0 || keyID(s.PublicKey) == "" {
		return false
	}
	return s.PublicKey.Verify(message, s.Bytes)
}

// SubmissionResult is produced once per submission attempt.
type SubmissionResult struct {
	TransactionID  string
	Status         hedera.Status
	Receipt        *hedera.TransactionReceipt
	SignatureCount int
}

// Accepted reports whether the network executed the transaction.
func (r SubmissionResult) Accepted() bool {
	return r.Status == hedera.StatusSuccess
}

func (r SubmissionResult) String() string {
	return fmt.Sprintf("%s: %s (%d signatures)", r.TransactionID, r.Status.String(), r.SignatureCount)
}

// LedgerClient is the remote network. Submit returns an error only when the
// network could not be reached or did not answer; every status the network
// reports, including authorization failures, is returned in the result.
type LedgerClient interface {
	CreateAccount(ctx context.Context, policy Policy, initialBalance hedera.Hbar) (hedera.AccountID, error)
	Freeze(ctx context.Context, intent Intent) (Payload, error)
	Submit(ctx context.Context, intent Intent, payload Payload, signatures []Signature) (SubmissionResult, error)
	QueryBalance(ctx context.Context, accountID hedera.AccountID) (hedera.Hbar, error)
}

// KeyStore produces signatures for the key registered under handle. It never
// hands out private key material.
type KeyStore interface {
	Sign(ctx context.Context, payload []byte, handle string) (Signature, error)
}

func keyID(key hedera.PublicKey) string {
	return key.String()
}
