package main

import (
	"fmt"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/spf13/cobra"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/schedule"
	"github.com/hashgraph-online/multisig-sdk-go/pkg/shared"
	"github.com/hashgraph-online/multisig-sdk-go/pkg/threshold"
)

func newScheduleCommand(state *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Scheduled transfers signed by parties at different times",
	}

	client := func() (*schedule.Client, hedera.PublicKey, error) {
		hederaClient, operator, err := state.hederaClient()
		if err != nil {
			return nil, hedera.PublicKey{}, err
		}
		schedules, err := schedule.NewClient(schedule.ClientConfig{
			Network:      operator.Network,
			HederaClient: hederaClient,
		})
		if err != nil {
			return nil, hedera.PublicKey{}, err
		}
		return schedules, hederaClient.GetOperatorPublicKey(), nil
	}

	var (
		from   int
		to     int
		amount float64
		memo   string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Freeze a scheduled transfer between participants and print it as base64",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := state.commandContext()
			defer cancel()

			intent, err := participantTransfer(from, to, hedera.NewHbar(amount))
			if err != nil {
				return err
			}
			schedules, operatorKey, err := client()
			if err != nil {
				return err
			}
			encoded, err := schedules.CreateEncoded(ctx, intent, schedule.CreateOptions{
				AdminKey: operatorKey,
				Memo:     memo,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), encoded)
			return nil
		},
	}
	create.Flags().IntVar(&from, "from", 1, "participant sending hbar")
	create.Flags().IntVar(&to, "to", 2, "participant receiving hbar")
	create.Flags().Float64Var(&amount, "amount", 10, "hbar to transfer")
	create.Flags().StringVar(&memo, "memo", "", "schedule memo")

	var executeSigners string
	execute := &cobra.Command{
		Use:   "execute <base64>",
		Short: "Sign an encoded schedule with participant keys and submit it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := state.commandContext()
			defer cancel()

			keys, err := signerKeys(executeSigners)
			if err != nil {
				return err
			}
			schedules, _, err := client()
			if err != nil {
				return err
			}
			result, err := schedules.SignAndExecute(ctx, args[0], keys...)
			if err != nil {
				return err
			}
			printScheduleResult(cmd, result)
			return nil
		},
	}
	execute.Flags().StringVar(&executeSigners, "signers", "1", "participants signing the schedule create")

	var signSigners string
	sign := &cobra.Command{
		Use:   "sign <schedule-id>",
		Short: "Add participant signatures to an existing schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := state.commandContext()
			defer cancel()

			keys, err := signerKeys(signSigners)
			if err != nil {
				return err
			}
			schedules, _, err := client()
			if err != nil {
				return err
			}
			result, err := schedules.Sign(ctx, args[0], keys...)
			if err != nil {
				return err
			}
			printScheduleResult(cmd, result)
			return nil
		},
	}
	sign.Flags().StringVar(&signSigners, "signers", "", "participants signing the schedule, for example 2,3")

	info := &cobra.Command{
		Use:   "info <schedule-id>",
		Short: "Show a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := state.commandContext()
			defer cancel()

			schedules, _, err := client()
			if err != nil {
				return err
			}
			details, err := schedules.Info(ctx, args[0])
			if err != nil {
				return err
			}
			renderTable(cmd.OutOrStdout(), []string{"Schedule", "Executed", "Deleted", "Expires", "Creator", "Payer", "Memo"}, [][]string{{
				details.ScheduleID,
				fmt.Sprint(details.Executed),
				fmt.Sprint(details.Deleted),
				details.ExpirationTime.UTC().Format("2006-01-02 15:04:05"),
				details.CreatorAccount,
				details.PayerAccount,
				details.Memo,
			}})
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status <scheduled-transaction-id>",
		Short: "Show whether a scheduled transfer has executed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := state.commandContext()
			defer cancel()

			schedules, _, err := client()
			if err != nil {
				return err
			}
			execution, err := schedules.Execution(ctx, args[0])
			if err != nil {
				return err
			}
			if execution == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s has not executed yet\n", args[0])
				return nil
			}
			rows := make([][]string, 0, len(execution.Transfers))
			for _, transfer := range execution.Transfers {
				rows = append(rows, []string{transfer.Account, hedera.HbarFromTinybar(transfer.Amount).String()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s at %s\n", execution.TransactionID, execution.Result, execution.ConsensusTimestamp)
			renderTable(cmd.OutOrStdout(), []string{"Account", "Amount"}, rows)
			if !execution.Succeeded() {
				return fmt.Errorf("scheduled transfer failed with %s", execution.Result)
			}
			return nil
		},
	}

	cmd.AddCommand(create, execute, sign, info, status)
	return cmd
}

func printScheduleResult(cmd *cobra.Command, result schedule.Result) {
	renderTable(cmd.OutOrStdout(), []string{"Schedule", "Transaction", "Scheduled transaction", "Status"}, [][]string{{
		result.ScheduleID,
		result.TransactionID,
		result.ScheduledTransactionID,
		result.Status.String(),
	}})
}

// participantTransfer moves amount from participant from to participant to.
func participantTransfer(from int, to int, amount hedera.Hbar) (threshold.Intent, error) {
	sender, err := shared.NamedAccountFromEnv(from)
	if err != nil {
		return threshold.Intent{}, err
	}
	receiver, err := shared.NamedAccountFromEnv(to)
	if err != nil {
		return threshold.Intent{}, err
	}
	return threshold.BuildIntent([]threshold.Transfer{
		{Account: threshold.Account{ID: sender.AccountID}, Amount: amount.Negated()},
		{Account: threshold.Account{ID: receiver.AccountID}, Amount: amount},
	})
}
