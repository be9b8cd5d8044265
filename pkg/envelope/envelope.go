package envelope

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/andybalholm/brotli"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/ledger"
	"github.com/hashgraph-online/multisig-sdk-go/pkg/shared"
	"github.com/hashgraph-online/multisig-sdk-go/pkg/threshold"
)

const (
	Version          = 1
	compressionLevel = brotli.BestCompression
)

// PolicyRecord is a threshold policy with keys in string form.
type PolicyRecord struct {
	Threshold int      `json:"threshold"`
	Keys      []string `json:"keys"`
}

// TransferRecord is one hbar movement of the intent.
type TransferRecord struct {
	AccountID string        `json:"accountId"`
	Tinybars  int64         `json:"tinybars"`
	Policy    *PolicyRecord `json:"policy,omitempty"`
}

// SignatureRecord is a signature over the sign bytes.
type SignatureRecord struct {
	PublicKey string `json:"publicKey"`
	Signature []byte `json:"signature"`
}

// Envelope is the portable form of a threshold.PendingTransaction.
type Envelope struct {
	Version        int               `json:"version"`
	TransactionID  string            `json:"transactionId"`
	Transfers      []TransferRecord  `json:"transfers"`
	MaxFeeTinybars int64             `json:"maxFeeTinybars,omitempty"`
	Memo           string            `json:"memo,omitempty"`
	SignBytes      []byte            `json:"signBytes"`
	EncodedTx      []byte            `json:"encodedTx"`
	Signatures     []SignatureRecord `json:"signatures,omitempty"`
}

// FromPending captures the intent, payload and signatures of pending.
func FromPending(pending *threshold.PendingTransaction) Envelope {
	intent := pending.Intent()
	payload := pending.Payload()

	envelope := Envelope{
		Version:        Version,
		TransactionID:  payload.TransactionID,
		MaxFeeTinybars: intent.MaxTransactionFee().AsTinybar(),
		Memo:           intent.Memo(),
		SignBytes:      payload.SignBytes,
		EncodedTx:      payload.Encoded,
	}
	for _, transfer := range intent.Transfers() {
		record := TransferRecord{
			AccountID: transfer.Account.ID.String(),
			Tinybars:  transfer.Amount.AsTinybar(),
		}
		if !transfer.Account.Policy.IsZero() {
			policy := &PolicyRecord{Threshold: transfer.Account.Policy.Threshold()}
			for _, key := range transfer.Account.Policy.Keys() {
				policy.Keys = append(policy.Keys, key.String())
			}
			record.Policy = policy
		}
		envelope.Transfers = append(envelope.Transfers, record)
	}
	for _, signature := range pending.Signatures().List() {
		envelope.Signatures = append(envelope.Signatures, SignatureRecord{
			PublicKey: signature.PublicKey.String(),
			Signature: signature.Bytes,
		})
	}
	return envelope
}

// Pending rebuilds the pending transaction. The intent is validated again,
// the frozen transaction must move exactly the listed transfers, and every
// signature must verify against the sign bytes.
func (e Envelope) Pending() (*threshold.PendingTransaction, error) {
	if e.Version != Version {
		return nil, fmt.Errorf("unsupported envelope version %d", e.Version)
	}

	transfers := make([]threshold.Transfer, 0, len(e.Transfers))
	for index, record := range e.Transfers {
		accountID, err := hedera.AccountIDFromString(strings.TrimSpace(record.AccountID))
		if err != nil {
			return nil, fmt.Errorf("transfer %d has invalid account ID %q: %w", index, record.AccountID, err)
		}
		account := threshold.Account{ID: accountID}
		if record.Policy != nil {
			policy, err := record.Policy.policy()
			if err != nil {
				return nil, fmt.Errorf("transfer %d has invalid policy: %w", index, err)
			}
			account.Policy = policy
		}
		transfers = append(transfers, threshold.Transfer{
			Account: account,
			Amount:  hedera.HbarFromTinybar(record.Tinybars),
		})
	}

	options := []threshold.IntentOption{threshold.WithMemo(e.Memo)}
	if e.MaxFeeTinybars != 0 {
		options = append(options, threshold.WithMaxTransactionFee(hedera.HbarFromTinybar(e.MaxFeeTinybars)))
	}
	intent, err := threshold.BuildIntent(transfers, options...)
	if err != nil {
		return nil, err
	}

	payload := threshold.Payload{
		TransactionID: e.TransactionID,
		SignBytes:     e.SignBytes,
		Encoded:       e.EncodedTx,
	}
	if err := ledger.VerifyPayload(intent, payload); err != nil {
		return nil, fmt.Errorf("envelope %s does not describe its transaction: %w", e.TransactionID, err)
	}

	signatures, err := e.signatures()
	if err != nil {
		return nil, err
	}
	return threshold.NewPendingTransaction(intent, payload, signatures...)
}

func (e Envelope) signatures() ([]threshold.Signature, error) {
	signatures := make([]threshold.Signature, 0, len(e.Signatures))
	for index, record := range e.Signatures {
		key, err := shared.ParsePublicKey(record.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("signature %d has invalid public key: %w", index, err)
		}
		signatures = append(signatures, threshold.Signature{PublicKey: key, Bytes: record.Signature})
	}
	return signatures, nil
}

func (p PolicyRecord) policy() (threshold.Policy, error) {
	keys := make([]hedera.PublicKey, 0, len(p.Keys))
	for _, raw := range p.Keys {
		key, err := shared.ParsePublicKey(raw)
		if err != nil {
			return threshold.Policy{}, err
		}
		keys = append(keys, key)
	}
	return threshold.NewPolicy(p.Threshold, keys...)
}

// Merge combines the signatures of two envelopes for the same frozen
// transaction. When both carry a signature for the same key the one in e is
// kept.
func (e Envelope) Merge(other Envelope) (Envelope, error) {
	if e.TransactionID != other.TransactionID {
		return Envelope{}, fmt.Errorf(
			"cannot merge envelopes for different transactions %s and %s",
			e.TransactionID,
			other.TransactionID,
		)
	}
	if !bytes.Equal(e.SignBytes, other.SignBytes) {
		return Envelope{}, fmt.Errorf("cannot merge envelopes with different sign bytes for %s", e.TransactionID)
	}

	merged := e
	merged.Signatures = nil
	seen := map[string]struct{}{}
	for _, record := range append(append([]SignatureRecord(nil), e.Signatures...), other.Signatures...) {
		if _, exists := seen[record.PublicKey]; exists {
			continue
		}
		seen[record.PublicKey] = struct{}{}
		merged.Signatures = append(merged.Signatures, record)
	}
	sort.Slice(merged.Signatures, func(i, j int) bool {
		return merged.Signatures[i].PublicKey < merged.Signatures[j].PublicKey
	})
	return merged, nil
}

// Encode returns the base64 text form of the envelope.
func Encode(envelope Envelope) (string, error) {
	raw, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("failed to marshal envelope: %w", err)
	}

	var compressed bytes.Buffer
	writer := brotli.NewWriterLevel(&compressed, compressionLevel)
	if _, err := writer.Write(raw); err != nil {
		return "", fmt.Errorf("failed to compress envelope: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to compress envelope: %w", err)
	}
	return base64.StdEncoding.EncodeToString(compressed.Bytes()), nil
}

// Decode parses the output of Encode.
func Decode(encoded string) (Envelope, error) {
	compressed, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to decode envelope base64: %w", err)
	}
	raw, err := io.ReadAll(brotli.NewReader(bytes.NewReader(compressed)))
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to decompress envelope: %w", err)
	}

	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Envelope{}, fmt.Errorf("failed to parse envelope: %w", err)
	}
	if envelope.TransactionID == "" {
		return Envelope{}, fmt.Errorf("envelope is missing transaction ID")
	}
	return envelope, nil
}
