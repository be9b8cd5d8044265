package topic

import (
	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/threshold"
)

// ClientConfig configures a topic Client.
type ClientConfig struct {
	Network                  string
	OperatorAccountID        string
	OperatorPrivateKey       string
	DefaultMaxTransactionFee hedera.Hbar
	HederaClient             *hedera.Client
	MirrorBaseURL            string
	MirrorAPIKey             string
}

// CreateTopicOptions describes a new topic.
type CreateTopicOptions struct {
	Memo     string
	AdminKey hedera.Key
	// SubmitPolicy restricts who may submit. A zero policy leaves the topic
	// open.
	SubmitPolicy threshold.Policy
	// SignerKeys sign the create transaction, for example the admin key.
	SignerKeys []hedera.PrivateKey
}

// SubmitResult reports a message submission.
type SubmitResult struct {
	TopicID        string
	TransactionID  string
	SequenceNumber uint64
	Status         hedera.Status
}

// Message is a decoded topic message read from the mirror node.
type Message struct {
	SequenceNumber     int64
	ConsensusTimestamp string
	Payer              string
	Contents           []byte
}
