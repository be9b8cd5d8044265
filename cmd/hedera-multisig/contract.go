package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/contract"
)

func newContractCommand(state *app) *cobra.Command {
	var gas uint64

	cmd := &cobra.Command{
		Use:   "contract",
		Short: "Deploy and call smart contracts",
	}
	cmd.PersistentFlags().Uint64Var(&gas, "gas", contract.DefaultGas, "gas limit")

	client := func() (*contract.Client, error) {
		hederaClient, _, err := state.hederaClient()
		if err != nil {
			return nil, err
		}
		return contract.NewClient(contract.ClientConfig{HederaClient: hederaClient, Gas: gas})
	}

	deploy := &cobra.Command{
		Use:   "deploy <bytecode-file>",
		Short: "Deploy hex bytecode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := state.commandContext()
			defer cancel()

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read bytecode: %w", err)
			}
			bytecode, err := contract.DecodeBytecode(string(raw))
			if err != nil {
				return err
			}
			contracts, err := client()
			if err != nil {
				return err
			}
			contractID, err := contracts.Deploy(ctx, bytecode)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deployed contract %s\n", contractID)
			return nil
		},
	}

	call := &cobra.Command{
		Use:   "call <contract-id> <function> [uint16 ...]",
		Short: "Call a function with uint16 arguments and print the last byte of its result",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := state.commandContext()
			defer cancel()

			arguments := make([]uint16, 0, len(args)-2)
			for _, raw := range args[2:] {
				value, err := strconv.ParseUint(raw, 10, 16)
				if err != nil {
					return fmt.Errorf("invalid uint16 argument %q: %w", raw, err)
				}
				arguments = append(arguments, uint16(value))
			}
			contracts, err := client()
			if err != nil {
				return err
			}
			result, err := contracts.ExecuteUint8(ctx, contract.Call{
				ContractID: args[0],
				Function:   args[1],
				Uint16Args: arguments,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s returned %d\n", args[1], result)
			return nil
		},
	}

	cmd.AddCommand(deploy, call)
	return cmd
}
