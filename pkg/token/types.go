package token

import (
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

const (
	DefaultMaxSupply          int64 = 5
	DefaultRoyaltyNumerator   int64 = 10
	DefaultRoyaltyDenominator int64 = 100
)

// DefaultFallbackFee is charged when an NFT changes hands without an hbar
// exchange the royalty could be taken from.
var DefaultFallbackFee = hedera.NewHbar(200)

// ClientConfig configures a token Client.
type ClientConfig struct {
	Network                  string
	OperatorAccountID        string
	OperatorPrivateKey       string
	DefaultMaxTransactionFee hedera.Hbar
	HederaClient             *hedera.Client
	MirrorBaseURL            string
	MirrorAPIKey             string
}

// NFTOptions describes a new NFT collection.
type NFTOptions struct {
	Name                  string
	Symbol                string
	TreasuryAccountID     string
	SupplyKey             hedera.Key
	MaxSupply             int64
	FeeCollectorAccountID string
	RoyaltyNumerator      int64
	RoyaltyDenominator    int64
	FallbackFee           hedera.Hbar
	MaxTransactionFee     hedera.Hbar
}

// Holding is an NFT serial held by an account.
type Holding struct {
	TokenID      string
	SerialNumber int64
	Metadata     []byte
}
