package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/rs/zerolog"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/shared"
	"github.com/hashgraph-online/multisig-sdk-go/pkg/threshold"
)

// Client is the Hedera LedgerClient. The operator pays for every
// transaction; its signature is added at execution and is not part of any
// threshold set.
type Client struct {
	hederaClient *hedera.Client
	operatorID   hedera.AccountID
	node         hedera.AccountID
	network      string
	logger       zerolog.Logger
}

var _ threshold.LedgerClient = (*Client)(nil)

// NewClient creates a new Client bound to the configured operator and node.
func NewClient(config Config) (*Client, error) {
	network, err := shared.NormalizeNetwork(config.Network)
	if err != nil {
		return nil, err
	}

	hederaClient, err := shared.NewOperatorClient(shared.ClientOptions{
		Network:                  network,
		OperatorAccountID:        config.OperatorAccountID,
		OperatorPrivateKey:       config.OperatorPrivateKey,
		DefaultMaxTransactionFee: config.DefaultMaxTransactionFee,
	})
	if err != nil {
		return nil, err
	}

	nodeID := strings.TrimSpace(config.NodeAccountID)
	if nodeID == "" {
		nodeID = DefaultNodeAccountID
	}
	node, err := hedera.AccountIDFromString(nodeID)
	if err != nil {
		return nil, fmt.Errorf("invalid node account ID: %w", err)
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	return &Client{
		hederaClient: hederaClient,
		operatorID:   hederaClient.GetOperatorAccountID(),
		node:         node,
		network:      network,
		logger:       logger,
	}, nil
}

// HederaClient returns the underlying SDK client.
func (c *Client) HederaClient() *hedera.Client {
	return c.hederaClient
}

// OperatorAccountID returns the paying account.
func (c *Client) OperatorAccountID() hedera.AccountID {
	return c.operatorID
}

// Network returns the normalized network name.
func (c *Client) Network() string {
	return c.network
}

// Close releases the SDK client connections.
func (c *Client) Close() error {
	return c.hederaClient.Close()
}

// CreateAccount creates an account keyed by policy.
func (c *Client) CreateAccount(
	ctx context.Context,
	policy threshold.Policy,
	initialBalance hedera.Hbar,
) (hedera.AccountID, error) {
	if err := ctx.Err(); err != nil {
		return hedera.AccountID{}, err
	}
	if err := policy.Validate(); err != nil {
		return hedera.AccountID{}, err
	}

	response, err := hedera.NewAccountCreateTransaction().
		SetKey(policy.Key()).
		SetInitialBalance(initialBalance).
		Execute(c.hederaClient)
	if err != nil {
		return hedera.AccountID{}, fmt.Errorf("failed to execute account create transaction: %w", err)
	}
	receipt, err := response.GetReceipt(c.hederaClient)
	if err != nil {
		return hedera.AccountID{}, fmt.Errorf("failed to get account create receipt: %w", err)
	}
	if receipt.AccountID == nil {
		return hedera.AccountID{}, fmt.Errorf("account create receipt did not include an account ID")
	}

	c.logger.Debug().
		Str("account_id", receipt.AccountID.String()).
		Str("policy", policy.String()).
		Msg("account created")
	return *receipt.AccountID, nil
}

// Freeze builds and freezes a transfer for intent paid by the operator.
func (c *Client) Freeze(ctx context.Context, intent threshold.Intent) (threshold.Payload, error) {
	if err := ctx.Err(); err != nil {
		return threshold.Payload{}, err
	}
	transaction, err := BuildTransferTx(intent, c.operatorID)
	if err != nil {
		return threshold.Payload{}, err
	}
	return FreezeTransfer(transaction, c.node)
}

// Submit attaches signatures to the frozen transfer and executes it. Status
// failures reported by precheck or by the receipt are returned in the
// result with a nil error.
func (c *Client) Submit(
	ctx context.Context,
	_ threshold.Intent,
	payload threshold.Payload,
	signatures []threshold.Signature,
) (threshold.SubmissionResult, error) {
	if err := ctx.Err(); err != nil {
		return threshold.SubmissionResult{}, err
	}

	transaction, err := DecodeTransfer(payload.Encoded)
	if err != nil {
		return threshold.SubmissionResult{}, err
	}
	transaction = AttachSignatures(transaction, signatures)

	result := threshold.SubmissionResult{
		TransactionID:  payload.TransactionID,
		SignatureCount: len(signatures),
	}

	response, err := transaction.Execute(c.hederaClient)
	if err != nil {
		if status, ok := statusFromError(err); ok {
			result.Status = status
			return result, nil
		}
		return threshold.SubmissionResult{}, fmt.Errorf("failed to execute transfer transaction: %w", err)
	}
	result.TransactionID = response.TransactionID.String()

	receipt, err := response.GetReceipt(c.hederaClient)
	if err != nil {
		var receiptErr hedera.ErrHederaReceiptStatus
		if errors.As(err, &receiptErr) {
			result.Status = receiptErr.Status
			failedReceipt := receiptErr.Receipt
			result.Receipt = &failedReceipt
			return result, nil
		}
		if status, ok := statusFromError(err); ok {
			result.Status = status
			return result, nil
		}
		return threshold.SubmissionResult{}, fmt.Errorf("failed to get transfer receipt: %w", err)
	}

	result.Status = receipt.Status
	result.Receipt = &receipt
	c.logger.Debug().
		Str("transaction_id", result.TransactionID).
		Str("status", receipt.Status.String()).
		Msg("transfer executed")
	return result, nil
}

// QueryBalance returns the hbar balance of accountID.
func (c *Client) QueryBalance(ctx context.Context, accountID hedera.AccountID) (hedera.Hbar, error) {
	if err := ctx.Err(); err != nil {
		return hedera.Hbar{}, err
	}
	balance, err := hedera.NewAccountBalanceQuery().
		SetAccountID(accountID).
		Execute(c.hederaClient)
	if err != nil {
		return hedera.Hbar{}, fmt.Errorf("failed to query balance for %s: %w", accountID.String(), err)
	}
	return balance.Hbars, nil
}

func statusFromError(err error) (hedera.Status, bool) {
	var precheckErr hedera.ErrHederaPreCheckStatus
	if errors.As(err, &precheckErr) {
		return precheckErr.Status, true
	}
	var receiptErr hedera.ErrHederaReceiptStatus
	if errors.As(err, &receiptErr) {
		return receiptErr.Status, true
	}
	return hedera.StatusOk, false
}
