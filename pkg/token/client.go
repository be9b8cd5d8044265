package token

import (
	"context"
	"encoding/base64"
	"fmt"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/mirror"
	"github.com/hashgraph-online/multisig-sdk-go/pkg/shared"
)

// Client creates, mints and transfers NFTs.
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

// CreateNFT creates the collection. The treasury key must be among
// signerKeys when the treasury is not the operator.
func (c *Client) CreateNFT(ctx context.Context, options NFTOptions, signerKeys ...hedera.PrivateKey) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	transaction, err := BuildCreateNFTTx(options)
	if err != nil {
		return "", err
	}
	frozen, err := transaction.FreezeWith(c.hederaClient)
	if err != nil {
		return "", fmt.Errorf("failed to freeze token create transaction: %w", err)
	}
	for _, signerKey := range signerKeys {
		frozen = frozen.Sign(signerKey)
	}

	response, err := frozen.Execute(c.hederaClient)
	if err != nil {
		return "", fmt.Errorf("failed to execute token create transaction: %w", err)
	}
	receipt, err := response.GetReceipt(c.hederaClient)
	if err != nil {
		return "", fmt.Errorf("failed to get token create receipt: %w", err)
	}
	if receipt.TokenID == nil {
		return "", fmt.Errorf("token create receipt did not include a token ID")
	}
	return receipt.TokenID.String(), nil
}

// Mint mints a single NFT and returns its serial number.
func (c *Client) Mint(ctx context.Context, tokenID string, supplyKey hedera.PrivateKey, metadata []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	transaction, err := BuildMintTx(tokenID, metadata)
	if err != nil {
		return 0, err
	}
	frozen, err := transaction.FreezeWith(c.hederaClient)
	if err != nil {
		return 0, fmt.Errorf("failed to freeze token mint transaction: %w", err)
	}

	response, err := frozen.Sign(supplyKey).Execute(c.hederaClient)
	if err != nil {
		return 0, fmt.Errorf("failed to execute token mint transaction: %w", err)
	}
	receipt, err := response.GetReceipt(c.hederaClient)
	if err != nil {
		return 0, fmt.Errorf("failed to get token mint receipt: %w", err)
	}
	if len(receipt.SerialNumbers) == 0 {
		return 0, fmt.Errorf("token mint receipt did not include a serial number")
	}
	return receipt.SerialNumbers[0], nil
}

// Associate lets accountID hold tokenID. accountKey is the account's key.
func (c *Client) Associate(ctx context.Context, accountID string, tokenID string, accountKey hedera.PrivateKey) (hedera.Status, error) {
	if err := ctx.Err(); err != nil {
		return hedera.StatusOk, err
	}
	transaction, err := BuildAssociateTx(accountID, tokenID)
	if err != nil {
		return hedera.StatusOk, err
	}
	frozen, err := transaction.FreezeWith(c.hederaClient)
	if err != nil {
		return hedera.StatusOk, fmt.Errorf("failed to freeze token associate transaction: %w", err)
	}

	response, err := frozen.Sign(accountKey).Execute(c.hederaClient)
	if err != nil {
		return hedera.StatusOk, fmt.Errorf("failed to execute token associate transaction: %w", err)
	}
	receipt, err := response.GetReceipt(c.hederaClient)
	if err != nil {
		return hedera.StatusOk, fmt.Errorf("failed to get token associate receipt: %w", err)
	}
	return receipt.Status, nil
}

// TransferNFT moves one serial from sender to receiver.
func (c *Client) TransferNFT(
	ctx context.Context,
	tokenID string,
	serialNumber int64,
	senderID string,
	receiverID string,
	senderKey hedera.PrivateKey,
) (hedera.Status, error) {
	if err := ctx.Err(); err != nil {
		return hedera.StatusOk, err
	}
	transaction, err := BuildNFTTransferTx(tokenID, serialNumber, senderID, receiverID)
	if err != nil {
		return hedera.StatusOk, err
	}
	frozen, err := transaction.FreezeWith(c.hederaClient)
	if err != nil {
		return hedera.StatusOk, fmt.Errorf("failed to freeze NFT transfer transaction: %w", err)
	}

	response, err := frozen.Sign(senderKey).Execute(c.hederaClient)
	if err != nil {
		return hedera.StatusOk, fmt.Errorf("failed to execute NFT transfer transaction: %w", err)
	}
	receipt, err := response.GetReceipt(c.hederaClient)
	if err != nil {
		return hedera.StatusOk, fmt.Errorf("failed to get NFT transfer receipt: %w", err)
	}
	return receipt.Status, nil
}

// Holdings lists the serials of tokenID held by accountID, as recorded by the
// mirror node.
func (c *Client) Holdings(ctx context.Context, accountID string, tokenID string) ([]Holding, error) {
	nfts, err := c.mirrorClient.GetAccountNFTs(ctx, accountID, tokenID)
	if err != nil {
		return nil, err
	}
	holdings := make([]Holding, 0, len(nfts))
	for _, nft := range nfts {
		if nft.Deleted {
			continue
		}
		metadata, err := base64.StdEncoding.DecodeString(nft.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to decode metadata of serial %d: %w", nft.SerialNumber, err)
		}
		holdings = append(holdings, Holding{
			TokenID:      nft.TokenID,
			SerialNumber: nft.SerialNumber,
			Metadata:     metadata,
		})
	}
	return holdings, nil
}

// Balance returns the number of tokenID units held by accountID.
func (c *Client) Balance(ctx context.Context, accountID string, tokenID string) (int64, error) {
	account, err := c.mirrorClient.GetAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	for _, tokenBalance := range account.Balance.Tokens {
		if tokenBalance.TokenID == tokenID {
			return tokenBalance.Balance, nil
		}
	}
	return 0, nil
}
