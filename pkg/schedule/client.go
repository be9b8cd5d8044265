package schedule

import (
	"context"
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/mirror"
	"github.com/hashgraph-online/multisig-sdk-go/pkg/shared"
	"github.com/hashgraph-online/multisig-sdk-go/pkg/threshold"
)

// Client creates, signs and inspects scheduled transfers.
type Client struct {
	hederaClient *hedera.Client
	mirrorClient *mirror.Client
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
	return &Client{hederaClient: hederaClient, mirrorClient: mirrorClient}, nil
}

// HederaClient returns the underlying SDK client.
func (c *Client) HederaClient() *hedera.Client {
	return c.hederaClient
}

// CreateEncoded freezes a scheduled transfer with the operator as payer and
// returns it as base64 for an offline signer.
func (c *Client) CreateEncoded(ctx context.Context, intent threshold.Intent, options CreateOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	transaction, err := BuildScheduledTransferTx(intent, options)
	if err != nil {
		return "", err
	}
	frozen, err := transaction.FreezeWith(c.hederaClient)
	if err != nil {
		return "", fmt.Errorf("failed to freeze schedule create transaction: %w", err)
	}
	return Encode(frozen)
}

// SignAndExecute decodes an encoded schedule, signs it with every key and
// submits it.
func (c *Client) SignAndExecute(ctx context.Context, encoded string, signerKeys ...hedera.PrivateKey) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	transaction, err := Decode(encoded)
	if err != nil {
		return Result{}, err
	}
	for _, signerKey := range signerKeys {
		transaction = transaction.Sign(signerKey)
	}

	response, err := transaction.Execute(c.hederaClient)
	if err != nil {
		return Result{}, fmt.Errorf("failed to execute schedule create transaction: %w", err)
	}
	receipt, err := response.GetReceipt(c.hederaClient)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get schedule create receipt: %w", err)
	}
	if receipt.ScheduleID == nil {
		return Result{}, fmt.Errorf("schedule create receipt did not include a schedule ID")
	}

	result := Result{
		ScheduleID:    receipt.ScheduleID.String(),
		TransactionID: response.TransactionID.String(),
		Status:        receipt.Status,
	}
	if receipt.ScheduledTransactionID != nil {
		result.ScheduledTransactionID = receipt.ScheduledTransactionID.String()
	}
	return result, nil
}

// Create signs and submits a schedule in one step.
func (c *Client) Create(
	ctx context.Context,
	intent threshold.Intent,
	options CreateOptions,
	signerKeys ...hedera.PrivateKey,
) (Result, error) {
	encoded, err := c.CreateEncoded(ctx, intent, options)
	if err != nil {
		return Result{}, err
	}
	return c.SignAndExecute(ctx, encoded, signerKeys...)
}

// Sign adds signatures to an existing schedule. The inner transfer executes
// once its required keys have all signed.
func (c *Client) Sign(ctx context.Context, scheduleID string, signerKeys ...hedera.PrivateKey) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(signerKeys) == 0 {
		return Result{}, fmt.Errorf("at least one signer key is required")
	}
	transaction, err := BuildScheduleSignTx(scheduleID)
	if err != nil {
		return Result{}, err
	}
	frozen, err := transaction.FreezeWith(c.hederaClient)
	if err != nil {
		return Result{}, fmt.Errorf("failed to freeze schedule sign transaction: %w", err)
	}
	for _, signerKey := range signerKeys {
		frozen = frozen.Sign(signerKey)
	}

	response, err := frozen.Execute(c.hederaClient)
	if err != nil {
		return Result{}, fmt.Errorf("failed to execute schedule sign transaction: %w", err)
	}
	receipt, err := response.GetReceipt(c.hederaClient)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get schedule sign receipt: %w", err)
	}

	result := Result{
		ScheduleID:    scheduleID,
		TransactionID: response.TransactionID.String(),
		Status:        receipt.Status,
	}
	if receipt.ScheduledTransactionID != nil {
		result.ScheduledTransactionID = receipt.ScheduledTransactionID.String()
	}
	return result, nil
}

// Info queries the network state of a schedule.
func (c *Client) Info(ctx context.Context, scheduleID string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	parsedScheduleID, err := hedera.ScheduleIDFromString(strings.TrimSpace(scheduleID))
	if err != nil {
		return Info{}, fmt.Errorf("invalid schedule ID: %w", err)
	}
	info, err := hedera.NewScheduleInfoQuery().
		SetScheduleID(parsedScheduleID).
		Execute(c.hederaClient)
	if err != nil {
		return Info{}, fmt.Errorf("failed to query schedule %s: %w", scheduleID, err)
	}

	return Info{
		ScheduleID:     info.ScheduleID.String(),
		Memo:           info.Memo,
		Executed:       info.ExecutedAt != nil,
		Deleted:        info.DeletedAt != nil,
		ExpirationTime: info.ExpirationTime,
		CreatorAccount: info.CreatorAccountID.String(),
		PayerAccount:   info.PayerAccountID.String(),
	}, nil
}

// Execution looks up the scheduled transfer on the mirror node. It returns
// nil until the schedule has collected enough signatures and executed.
func (c *Client) Execution(ctx context.Context, scheduledTransactionID string) (*Execution, error) {
	records, err := c.mirrorClient.GetTransaction(ctx, scheduledTransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up scheduled transaction %s: %w", scheduledTransactionID, err)
	}
	for _, record := range records {
		if !record.Scheduled {
			continue
		}
		return &Execution{
			TransactionID:      record.TransactionID,
			Result:             record.Result,
			ConsensusTimestamp: record.ConsensusTimestamp,
			ChargedFee:         record.ChargedTxFee,
			Transfers:          record.Transfers,
		}, nil
	}
	return nil, nil
}
