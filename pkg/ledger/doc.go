// Package ledger implements threshold.LedgerClient against the Hedera
// network. Transfers are frozen for a single node so that every signer signs
// the same transaction body, and submitted with the collected signatures
// attached.
package ledger
