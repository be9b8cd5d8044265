package ledger

import (
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/rs/zerolog"
)

const DefaultNodeAccountID = "0.0.3"

// Config configures a ledger Client.
type Config struct {
	Network                  string
	OperatorAccountID        string
	OperatorPrivateKey       string
	DefaultMaxTransactionFee hedera.Hbar
	// NodeAccountID is the only node a frozen transfer is valid for.
	NodeAccountID string
	Logger        *zerolog.Logger
}
