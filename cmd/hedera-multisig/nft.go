package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/shared"
	"github.com/hashgraph-online/multisig-sdk-go/pkg/token"
)

func newNFTCommand(state *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nft",
		Short: "Royalty NFTs held by participant accounts",
	}

	client := func() (*token.Client, error) {
		hederaClient, operator, err := state.hederaClient()
		if err != nil {
			return nil, err
		}
		return token.NewClient(token.ClientConfig{
			Network:      operator.Network,
			HederaClient: hederaClient,
		})
	}

	var (
		name     string
		symbol   string
		supply   int64
		treasury int
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an NFT collection with a royalty fee and mint every serial",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := state.commandContext()
			defer cancel()

			owner, err := shared.NamedAccountFromEnv(treasury)
			if err != nil {
				return err
			}
			if owner.PrivateKey == nil {
				return fmt.Errorf("ACCOUNT_%d_PRIVATE_KEY is required", treasury)
			}
			_, operator, err := state.hederaClient()
			if err != nil {
				return err
			}
			tokens, err := client()
			if err != nil {
				return err
			}

			tokenID, err := tokens.CreateNFT(ctx, token.NFTOptions{
				Name:                  name,
				Symbol:                symbol,
				TreasuryAccountID:     owner.AccountID.String(),
				SupplyKey:             owner.PrivateKey.PublicKey(),
				MaxSupply:             supply,
				FeeCollectorAccountID: operator.AccountID,
			}, *owner.PrivateKey)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created NFT %s\n", tokenID)

			sequence, err := token.NewMintSequence(tokens, tokenID, *owner.PrivateKey, int(supply))
			if err != nil {
				return err
			}
			serials, err := sequence.Run(ctx)
			rows := make([][]string, 0, len(serials))
			for _, serial := range serials {
				rows = append(rows, []string{tokenID, strconv.FormatInt(serial, 10)})
			}
			renderTable(cmd.OutOrStdout(), []string{"Token", "Serial"}, rows)
			return err
		},
	}
	create.Flags().StringVar(&name, "name", "Fall Collection", "token name")
	create.Flags().StringVar(&symbol, "symbol", "LEAF", "token symbol")
	create.Flags().Int64Var(&supply, "supply", token.DefaultMaxSupply, "maximum and minted supply")
	create.Flags().IntVar(&treasury, "treasury", 1, "participant holding the collection and its supply key")

	var (
		tokenID string
		serial  int64
		from    int
		to      int
	)
	transfer := &cobra.Command{
		Use:   "transfer",
		Short: "Associate the receiver and move one serial to it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := state.commandContext()
			defer cancel()

			sender, err := shared.NamedAccountFromEnv(from)
			if err != nil {
				return err
			}
			receiver, err := shared.NamedAccountFromEnv(to)
			if err != nil {
				return err
			}
			if sender.PrivateKey == nil || receiver.PrivateKey == nil {
				return fmt.Errorf("private keys of participants %d and %d are required", from, to)
			}
			tokens, err := client()
			if err != nil {
				return err
			}

			status, err := tokens.Associate(ctx, receiver.AccountID.String(), tokenID, *receiver.PrivateKey)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "association: %s\n", status.String())

			status, err = tokens.TransferNFT(
				ctx,
				tokenID,
				serial,
				sender.AccountID.String(),
				receiver.AccountID.String(),
				*sender.PrivateKey,
			)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "transfer: %s\n", status.String())
			return nil
		},
	}
	transfer.Flags().StringVar(&tokenID, "token", "", "token ID")
	transfer.Flags().Int64Var(&serial, "serial", 1, "serial number")
	transfer.Flags().IntVar(&from, "from", 1, "participant sending the NFT")
	transfer.Flags().IntVar(&to, "to", 2, "participant receiving the NFT")
	_ = transfer.MarkFlagRequired("token")

	var holdingsToken string
	holdings := &cobra.Command{
		Use:   "holdings <account-id>",
		Short: "List NFT serials held by an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := state.commandContext()
			defer cancel()

			tokens, err := client()
			if err != nil {
				return err
			}
			held, err := tokens.Holdings(ctx, args[0], holdingsToken)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(held))
			for _, holding := range held {
				rows = append(rows, []string{
					holding.TokenID,
					strconv.FormatInt(holding.SerialNumber, 10),
					string(holding.Metadata),
				})
			}
			renderTable(cmd.OutOrStdout(), []string{"Token", "Serial", "Metadata"}, rows)
			return nil
		},
	}
	holdings.Flags().StringVar(&holdingsToken, "token", "", "restrict to one token")

	cmd.AddCommand(create, transfer, holdings)
	return cmd
}
