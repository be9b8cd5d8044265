package schedule

import (
	"time"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/mirror"
)

// ClientConfig configures a schedule Client.
type ClientConfig struct {
	Network                  string
	OperatorAccountID        string
	OperatorPrivateKey       string
	DefaultMaxTransactionFee hedera.Hbar
	// HederaClient is reused when set; the operator fields are then ignored.
	HederaClient  *hedera.Client
	MirrorBaseURL string
	MirrorAPIKey  string
}

// CreateOptions tunes the schedule create transaction.
type CreateOptions struct {
	AdminKey hedera.Key
	Memo     string
	// PayerAccountID pays for the inner transfer when it executes. The
	// operator pays when empty.
	PayerAccountID string
}

// Result reports a schedule create or sign.
type Result struct {
	ScheduleID             string
	TransactionID          string
	ScheduledTransactionID string
	Status                 hedera.Status
}

// Info is the network view of a schedule.
type Info struct {
	ScheduleID     string
	Memo           string
	Executed       bool
	Deleted        bool
	ExpirationTime time.Time
	CreatorAccount string
	PayerAccount   string
}

// Execution is the mirror node record of a scheduled transfer that ran.
type Execution struct {
	TransactionID      string
	Result             string
	ConsensusTimestamp string
	ChargedFee         int64
	Transfers          []mirror.Transfer
}

// Succeeded reports whether the scheduled transfer ran with SUCCESS.
func (e Execution) Succeeded() bool {
	return e.Result == hedera.StatusSuccess.String()
}
