package main

import (
	"fmt"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/spf13/cobra"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/threshold"
)

// newMultisigCommand runs the two-phase walkthrough: a 2-of-3 account is
// created from three participant keys, a transfer signed by one key is
// refused, and the same frozen transfer succeeds once a second key signs.
func newMultisigCommand(state *app) *cobra.Command {
	var (
		initialBalance float64
		amount         float64
		recipient      string
	)

	cmd := &cobra.Command{
		Use:   "multisig",
		Short: "Create a 2-of-3 account and show a transfer failing with one signature and succeeding with two",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := state.commandContext()
			defer cancel()

			keys, accounts, err := state.participants([]int{1, 2, 3})
			if err != nil {
				return err
			}
			publicKeys := make([]hedera.PublicKey, 0, len(accounts))
			for _, account := range accounts {
				publicKeys = append(publicKeys, account.PrivateKey.PublicKey())
			}
			policy, err := threshold.NewPolicy(2, publicKeys...)
			if err != nil {
				return err
			}

			coordinator, err := state.coordinator(keys)
			if err != nil {
				return err
			}
			client, err := state.ledgerClient()
			if err != nil {
				return err
			}

			governedID, err := coordinator.CreateGovernedAccount(ctx, policy, hedera.NewHbar(initialBalance))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s account %s\n", policy.String(), governedID.String())

			recipientID := client.OperatorAccountID()
			if recipient != "" {
				recipientID, err = hedera.AccountIDFromString(recipient)
				if err != nil {
					return fmt.Errorf("invalid recipient: %w", err)
				}
			}

			value := hedera.NewHbar(amount)
			intent, err := coordinator.BuildIntent([]threshold.Transfer{
				{Account: threshold.Account{ID: governedID, Policy: policy}, Amount: value.Negated()},
				{Account: threshold.Account{ID: recipientID}, Amount: value},
			})
			if err != nil {
				return err
			}
			pending, err := coordinator.Freeze(ctx, intent)
			if err != nil {
				return err
			}

			if err := coordinator.CollectSignature(ctx, pending, handleFor(1)); err != nil {
				return err
			}
			result, err := coordinator.Submit(ctx, pending)
			if err == nil {
				return fmt.Errorf("transfer with one signature was unexpectedly accepted: %s", result.String())
			}
			if !threshold.IsSignatureThresholdError(err) {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "phase 1, one signature: %v\n", err)

			handles := []string{handleFor(2)}
			if threshold.NeedsRefreeze(err) {
				// The rejected attempt reached consensus and spent its
				// transaction ID.
				pending, err = coordinator.Refreeze(ctx, pending)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "refroze as %s\n", pending.TransactionID())
				handles = append([]string{handleFor(1)}, handles...)
			}
			if err := coordinator.CollectSignatures(ctx, pending, handles...); err != nil {
				return err
			}
			result, err = coordinator.Submit(ctx, pending)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "phase 2, two signatures: %s\n", result.String())

			balance, err := coordinator.QueryBalance(ctx, governedID)
			if err != nil {
				return err
			}
			renderTable(cmd.OutOrStdout(), []string{"Account", "Policy", "Balance"}, [][]string{
				{governedID.String(), policy.String(), balance.String()},
			})
			return nil
		},
	}

	cmd.Flags().Float64Var(&initialBalance, "initial-balance", 10, "hbar funding the threshold account")
	cmd.Flags().Float64Var(&amount, "amount", 1, "hbar transferred out of the threshold account")
	cmd.Flags().StringVar(&recipient, "to", "", "recipient account; defaults to the operator")
	return cmd
}

