package main

import (
	"fmt"
	"strconv"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/spf13/cobra"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/provision"
)

func newAccountsCommand(state *app) *cobra.Command {
	var (
		count   int
		balance float64
		env     bool
	)

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Create funded ED25519 participant accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := state.commandContext()
			defer cancel()

			client, err := state.ledgerClient()
			if err != nil {
				return err
			}
			sequence, err := provision.NewSequence(client, provision.Options{
				Count:          count,
				InitialBalance: hedera.NewHbar(balance),
			})
			if err != nil {
				return err
			}

			accounts, err := sequence.Run(ctx)
			rows := make([][]string, 0, len(accounts))
			for _, account := range accounts {
				rows = append(rows, []string{
					strconv.Itoa(account.Index),
					account.AccountID.String(),
					account.PublicKey.String(),
					account.Balance.String(),
				})
			}
			renderTable(cmd.OutOrStdout(), []string{"#", "Account", "Public key", "Balance"}, rows)
			if env {
				for _, account := range accounts {
					for _, line := range account.EnvLines() {
						fmt.Fprintln(cmd.OutOrStdout(), line)
					}
				}
			}
			return err
		},
	}

	cmd.Flags().IntVar(&count, "count", provision.DefaultCount, "number of accounts to create")
	cmd.Flags().Float64Var(&balance, "balance", 500, "initial hbar balance of each account")
	cmd.Flags().BoolVar(&env, "env", false, "print ACCOUNT_<n>_ID and ACCOUNT_<n>_PRIVATE_KEY lines for a .env file")
	return cmd
}
