package main

import (
	"errors"
	"fmt"
	"strconv"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/spf13/cobra"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/envelope"
	"github.com/hashgraph-online/multisig-sdk-go/pkg/session"
	"github.com/hashgraph-online/multisig-sdk-go/pkg/threshold"
)

// newSessionCommand collects signatures for one frozen transfer across
// several invocations, possibly on different machines.
func newSessionCommand(state *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Collect threshold signatures for a frozen transfer over several runs",
	}

	var (
		required int
		keys     string
		balance  float64
	)
	account := &cobra.Command{
		Use:   "account",
		Short: "Create an account governed by an M-of-N policy over participant keys",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := state.commandContext()
			defer cancel()

			policy, err := participantPolicy(required, keys)
			if err != nil {
				return err
			}
			coordinator, err := state.coordinator(nil)
			if err != nil {
				return err
			}
			accountID, err := coordinator.CreateGovernedAccount(ctx, policy, hedera.NewHbar(balance))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s account %s\n", policy.String(), accountID.String())
			return nil
		},
	}
	policyFlags(account, &required, &keys)
	account.Flags().Float64Var(&balance, "balance", 10, "initial hbar balance")

	var (
		from   string
		to     string
		amount float64
		memo   string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Freeze a transfer out of a governed account and store it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := state.commandContext()
			defer cancel()

			policy, err := participantPolicy(required, keys)
			if err != nil {
				return err
			}
			fromID, err := hedera.AccountIDFromString(from)
			if err != nil {
				return fmt.Errorf("invalid --from account: %w", err)
			}
			toID, err := hedera.AccountIDFromString(to)
			if err != nil {
				return fmt.Errorf("invalid --to account: %w", err)
			}

			coordinator, err := state.coordinator(nil)
			if err != nil {
				return err
			}
			value := hedera.NewHbar(amount)
			intent, err := coordinator.BuildIntent([]threshold.Transfer{
				{Account: threshold.Account{ID: fromID, Policy: policy}, Amount: value.Negated()},
				{Account: threshold.Account{ID: toID}, Amount: value},
			}, threshold.WithMemo(memo))
			if err != nil {
				return err
			}
			pending, err := coordinator.Freeze(ctx, intent)
			if err != nil {
				return err
			}

			store, err := session.Open(state.settings.SessionDB)
			if err != nil {
				return err
			}
			defer store.Close()

			record, err := store.Put(envelope.FromPending(pending))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored session %s\n", record.TransactionID())
			return nil
		},
	}
	policyFlags(create, &required, &keys)
	create.Flags().StringVar(&from, "from", "", "governed account sending hbar")
	create.Flags().StringVar(&to, "to", "", "receiving account")
	create.Flags().Float64Var(&amount, "amount", 1, "hbar to transfer")
	create.Flags().StringVar(&memo, "memo", "", "transaction memo")
	_ = create.MarkFlagRequired("from")
	_ = create.MarkFlagRequired("to")

	var signer int
	sign := &cobra.Command{
		Use:   "sign <transaction-id>",
		Short: "Sign a stored session with one participant key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := state.commandContext()
			defer cancel()

			store, err := session.Open(state.settings.SessionDB)
			if err != nil {
				return err
			}
			defer store.Close()

			pending, err := loadPending(store, args[0])
			if err != nil {
				return err
			}
			signerStore, _, err := state.participants([]int{signer})
			if err != nil {
				return err
			}
			coordinator, err := state.coordinator(signerStore)
			if err != nil {
				return err
			}
			if err := coordinator.CollectSignature(ctx, pending, handleFor(signer)); err != nil {
				return err
			}
			record, added, err := store.Merge(envelope.FromPending(pending))
			if err != nil {
				return err
			}
			fmt.Fprintf(
				cmd.OutOrStdout(),
				"session %s: %d new, %d total signatures\n",
				record.TransactionID(),
				added,
				len(record.Envelope.Signatures),
			)
			return nil
		},
	}
	sign.Flags().IntVar(&signer, "signer", 1, "participant signing the transfer")

	exportCmd := &cobra.Command{
		Use:   "export <transaction-id>",
		Short: "Print a stored session as a portable envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := session.Open(state.settings.SessionDB)
			if err != nil {
				return err
			}
			defer store.Close()

			record, err := store.Get(args[0])
			if err != nil {
				return err
			}
			encoded, err := envelope.Encode(record.Envelope)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), encoded)
			return nil
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <envelope>",
		Short: "Store an envelope or merge its signatures into an existing session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decoded, err := envelope.Decode(args[0])
			if err != nil {
				return err
			}
			if _, err := decoded.Pending(); err != nil {
				return fmt.Errorf("envelope does not verify: %w", err)
			}

			store, err := session.Open(state.settings.SessionDB)
			if err != nil {
				return err
			}
			defer store.Close()

			record, added, err := store.Merge(decoded)
			if errors.Is(err, session.ErrNotFound) {
				record, err = store.Put(decoded)
				added = len(decoded.Signatures)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %s: %d new signatures\n", record.TransactionID(), added)
			return nil
		},
	}

	submit := &cobra.Command{
		Use:   "submit <transaction-id>",
		Short: "Submit a stored session with every collected signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := state.commandContext()
			defer cancel()

			store, err := session.Open(state.settings.SessionDB)
			if err != nil {
				return err
			}
			defer store.Close()

			pending, err := loadPending(store, args[0])
			if err != nil {
				return err
			}
			coordinator, err := state.coordinator(nil)
			if err != nil {
				return err
			}

			result, submitErr := coordinator.Submit(ctx, pending)
			status := session.StatusPending
			summary := result.Status.String()
			if submitErr != nil {
				summary = submitErr.Error()
			} else if result.Accepted() {
				status = session.StatusAccepted
			}
			if _, err := store.SetResult(args[0], status, summary); err != nil {
				return err
			}
			if submitErr != nil {
				return submitErr
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.String())
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := session.Open(state.settings.SessionDB)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					record.TransactionID(),
					string(record.Status),
					strconv.Itoa(len(record.Envelope.Signatures)),
					record.LastResult,
					record.UpdatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			renderTable(cmd.OutOrStdout(), []string{"Transaction", "Status", "Signatures", "Last result", "Updated"}, rows)
			return nil
		},
	}

	cmd.AddCommand(account, create, sign, exportCmd, importCmd, submit, list)
	return cmd
}

func policyFlags(cmd *cobra.Command, required *int, keys *string) {
	cmd.Flags().IntVar(required, "threshold", 2, "signatures required")
	cmd.Flags().StringVar(keys, "keys", "1,2,3", "participants whose public keys form the policy")
}

func loadPending(store *session.Store, transactionID string) (*threshold.PendingTransaction, error) {
	record, err := store.Get(transactionID)
	if err != nil {
		return nil, err
	}
	if record.Status == session.StatusAccepted {
		return nil, threshold.ErrAlreadyAccepted
	}
	return record.Envelope.Pending()
}
