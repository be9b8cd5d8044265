package token

import (
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// BuildCreateNFTTx builds a non-fungible token create with an optional royalty fee.
func BuildCreateNFTTx(options NFTOptions) (*hedera.TokenCreateTransaction, error) {
	name := strings.TrimSpace(options.Name)
	if name == "" {
		return nil, fmt.Errorf("token name is required")
	}
	symbol := strings.TrimSpace(options.Symbol)
	if symbol == "" {
		return nil, fmt.Errorf("token symbol is required")
	}
	if options.SupplyKey == nil {
		return nil, fmt.Errorf("supply key is required")
	}
	treasuryID, err := hedera.AccountIDFromString(strings.TrimSpace(options.TreasuryAccountID))
	if err != nil {
		return nil, fmt.Errorf("invalid treasury account ID: %w", err)
	}

	maxSupply := options.MaxSupply
	if maxSupply == 0 {
		maxSupply = DefaultMaxSupply
	}
	if maxSupply < 0 {
		return nil, fmt.Errorf("max supply cannot be negative")
	}

	transaction := hedera.NewTokenCreateTransaction().
		SetTokenName(name).
		SetTokenSymbol(symbol).
		SetTokenType(hedera.TokenTypeNonFungibleUnique).
		SetDecimals(0).
		SetInitialSupply(0).
		SetTreasuryAccountID(treasuryID).
		SetSupplyType(hedera.TokenSupplyTypeFinite).
		SetMaxSupply(maxSupply).
		SetSupplyKey(options.SupplyKey)

	if collector := strings.TrimSpace(options.FeeCollectorAccountID); collector != "" {
		royalty, err := buildRoyaltyFee(collector, options)
		if err != nil {
			return nil, err
		}
		transaction.SetCustomFees([]hedera.Fee{royalty})
	}
	if options.MaxTransactionFee.AsTinybar() > 0 {
		transaction.SetMaxTransactionFee(options.MaxTransactionFee)
	}
	return transaction, nil
}

func buildRoyaltyFee(collector string, options NFTOptions) (*hedera.CustomRoyaltyFee, error) {
	collectorID, err := hedera.AccountIDFromString(collector)
	if err != nil {
		return nil, fmt.Errorf("invalid fee collector account ID: %w", err)
	}

	numerator := options.RoyaltyNumerator
	denominator := options.RoyaltyDenominator
	if numerator == 0 && denominator == 0 {
		numerator = DefaultRoyaltyNumerator
		denominator = DefaultRoyaltyDenominator
	}
	if numerator <= 0 || denominator <= 0 || numerator > denominator {
		return nil, fmt.Errorf("royalty must be a fraction in (0, 1], got %d/%d", numerator, denominator)
	}
	fallback := options.FallbackFee
	if fallback.AsTinybar() == 0 {
		fallback = DefaultFallbackFee
	}

	return hedera.NewCustomRoyaltyFee().
		SetNumerator(numerator).
		SetDenominator(denominator).
		SetFeeCollectorAccountID(collectorID).
		SetFallbackFee(hedera.NewCustomFixedFee().SetHbarAmount(fallback)), nil
}

// BuildMintTx builds a mint of one NFT carrying metadata.
func BuildMintTx(tokenID string, metadata []byte) (*hedera.TokenMintTransaction, error) {
	parsedTokenID, err := hedera.TokenIDFromString(strings.TrimSpace(tokenID))
	if err != nil {
		return nil, fmt.Errorf("invalid token ID: %w", err)
	}
	if len(metadata) == 0 {
		return nil, fmt.Errorf("NFT metadata is required")
	}
	return hedera.NewTokenMintTransaction().
		SetTokenID(parsedTokenID).
		SetMetadata(metadata), nil
}

// BuildAssociateTx associates accountID with every token.
func BuildAssociateTx(accountID string, tokenIDs ...string) (*hedera.TokenAssociateTransaction, error) {
	parsedAccountID, err := hedera.AccountIDFromString(strings.TrimSpace(accountID))
	if err != nil {
		return nil, fmt.Errorf("invalid account ID: %w", err)
	}
	if len(tokenIDs) == 0 {
		return nil, fmt.Errorf("at least one token ID is required")
	}
	parsedTokenIDs := make([]hedera.TokenID, 0, len(tokenIDs))
	for _, tokenID := range tokenIDs {
		parsedTokenID, err := hedera.TokenIDFromString(strings.TrimSpace(tokenID))
		if err != nil {
			return nil, fmt.Errorf("invalid token ID %q: %w", tokenID, err)
		}
		parsedTokenIDs = append(parsedTokenIDs, parsedTokenID)
	}

	return hedera.NewTokenAssociateTransaction().
		SetAccountID(parsedAccountID).
		SetTokenIDs(parsedTokenIDs...), nil
}

// BuildNFTTransferTx moves one serial from sender to receiver.
func BuildNFTTransferTx(tokenID string, serialNumber int64, senderID string, receiverID string) (*hedera.TransferTransaction, error) {
	parsedTokenID, err := hedera.TokenIDFromString(strings.TrimSpace(tokenID))
	if err != nil {
		return nil, fmt.Errorf("invalid token ID: %w", err)
	}
	if serialNumber <= 0 {
		return nil, fmt.Errorf("serial number must be positive")
	}
	sender, err := hedera.AccountIDFromString(strings.TrimSpace(senderID))
	if err != nil {
		return nil, fmt.Errorf("invalid sender account ID: %w", err)
	}
	receiver, err := hedera.AccountIDFromString(strings.TrimSpace(receiverID))
	if err != nil {
		return nil, fmt.Errorf("invalid receiver account ID: %w", err)
	}
	if sender.String() == receiver.String() {
		return nil, fmt.Errorf("sender and receiver must differ")
	}

	return hedera.NewTransferTransaction().
		AddNftTransfer(hedera.NftID{TokenID: parsedTokenID, SerialNumber: serialNumber}, sender, receiver), nil
}
