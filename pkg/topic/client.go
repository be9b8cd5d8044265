package topic

import (
	"context"
	"fmt"
	"time"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/mirror"
	"github.com/hashgraph-online/multisig-sdk-go/pkg/shared"
)

// Client creates topics, submits messages and reads them back.
type Client struct {
	hederaClient *hedera.Client
	mirrorClient *mirror.Client
	network      string
}

// NewClient creates a new Client.
func NewClient(config ClientConfig) (*Client, error) {
	network, err := shared.NormalizeNetwork(config.Network)
	if err != nil {
		return nil, err
	}
	hederaClient, err := shared.ResolveClient(config.HederaClient, shared.ClientOptions{
		Network:                  network,
		OperatorAccountID:        config.OperatorAccountID,
		OperatorPrivateKey:       config.OperatorPrivateKey,
		DefaultMaxTransactionFee: config.DefaultMaxTransactionFee,
	})
	if err != nil {
		return nil, err
	}
	mirrorClient, err := mirror.NewClient(mirror.Config{
		Network: network,
		BaseURL: config.MirrorBaseURL,
		APIKey:  config.MirrorAPIKey,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		hederaClient: hederaClient,
		mirrorClient: mirrorClient,
		network:      network,
	}, nil
}

// MirrorClient returns the mirror node client used for reads.
func (c *Client) MirrorClient() *mirror.Client {
	return c.mirrorClient
}

// CreateTopic creates a topic and returns its ID.
func (c *Client) CreateTopic(ctx context.Context, options CreateTopicOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	transaction, err := BuildCreateTopicTx(options)
	if err != nil {
		return "", err
	}

	var response hedera.TransactionResponse
	if len(options.SignerKeys) > 0 {
		frozen, freezeErr := transaction.FreezeWith(c.hederaClient)
		if freezeErr != nil {
			return "", fmt.Errorf("failed to freeze topic create transaction: %w", freezeErr)
		}
		for _, signerKey := range options.SignerKeys {
			frozen = frozen.Sign(signerKey)
		}
		response, err = frozen.Execute(c.hederaClient)
	} else {
		response, err = transaction.Execute(c.hederaClient)
	}
	if err != nil {
		return "", fmt.Errorf("failed to execute topic create transaction: %w", err)
	}

	receipt, err := response.GetReceipt(c.hederaClient)
	if err != nil {
		return "", fmt.Errorf("failed to get topic create receipt: %w", err)
	}
	if receipt.TopicID == nil {
		return "", fmt.Errorf("topic create receipt did not include a topic ID")
	}
	return receipt.TopicID.String(), nil
}

// SubmitMessage submits message, signed by signerKeys when the topic has a
// submit key.
func (c *Client) SubmitMessage(
	ctx context.Context,
	topicID string,
	message []byte,
	signerKeys ...hedera.PrivateKey,
) (SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return SubmitResult{}, err
	}
	transaction, err := BuildSubmitMessageTx(topicID, message)
	if err != nil {
		return SubmitResult{}, err
	}

	frozen, err := transaction.FreezeWith(c.hederaClient)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("failed to freeze topic message submit transaction: %w", err)
	}
	for _, signerKey := range signerKeys {
		frozen = frozen.Sign(signerKey)
	}
	response, err := frozen.Execute(c.hederaClient)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("failed to execute topic message submit transaction: %w", err)
	}
	receipt, err := response.GetReceipt(c.hederaClient)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("failed to get topic message submit receipt: %w", err)
	}

	return SubmitResult{
		TopicID:        topicID,
		TransactionID:  response.TransactionID.String(),
		SequenceNumber: receipt.TopicSequenceNumber,
		Status:         receipt.Status,
	}, nil
}

// SubmitTimestamp submits the RFC 3339 form of now and returns the message
// text alongside the result.
func (c *Client) SubmitTimestamp(
	ctx context.Context,
	topicID string,
	now time.Time,
	signerKeys ...hedera.PrivateKey,
) (string, SubmitResult, error) {
	message := now.UTC().Format(time.RFC3339Nano)
	result, err := c.SubmitMessage(ctx, topicID, []byte(message), signerKeys...)
	return message, result, err
}

// RecentMessages returns up to limit messages, newest first.
func (c *Client) RecentMessages(ctx context.Context, topicID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 10
	}
	records, err := c.mirrorClient.GetTopicMessages(ctx, topicID, mirror.MessageQueryOptions{
		Limit:    limit,
		Order:    "desc",
		MaxPages: 1,
	})
	if err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(records))
	for _, record := range records {
		contents, err := mirror.DecodeMessageData(record)
		if err != nil {
			return nil, fmt.Errorf("failed to decode message %d: %w", record.SequenceNumber, err)
		}
		messages = append(messages, Message{
			SequenceNumber:     record.SequenceNumber,
			ConsensusTimestamp: record.ConsensusTimestamp,
			Payer:              record.PayerAccountID,
			Contents:           contents,
		})
	}
	return messages, nil
}

// ExplorerURL links to the topic on hashscan.
func (c *Client) ExplorerURL(topicID string) string {
	return shared.HashscanURL(c.network, "topic", topicID)
}
