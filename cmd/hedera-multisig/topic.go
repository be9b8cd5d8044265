package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/topic"
)

func newTopicCommand(state *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topic",
		Short: "Consensus topics, optionally with a threshold submit key",
	}

	client := func() (*topic.Client, error) {
		hederaClient, operator, err := state.hederaClient()
		if err != nil {
			return nil, err
		}
		return topic.NewClient(topic.ClientConfig{
			Network:      operator.Network,
			HederaClient: hederaClient,
		})
	}

	var (
		memo     string
		required int
		signers  string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a topic",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := state.commandContext()
			defer cancel()

			options := topic.CreateTopicOptions{Memo: memo}
			if signers != "" {
				policy, err := participantPolicy(required, signers)
				if err != nil {
					return err
				}
				options.SubmitPolicy = policy
			}
			topics, err := client()
			if err != nil {
				return err
			}
			topicID, err := topics.CreateTopic(ctx, options)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created topic %s\n%s\n", topicID, topics.ExplorerURL(topicID))
			return nil
		},
	}
	create.Flags().StringVar(&memo, "memo", "", "topic memo")
	create.Flags().IntVar(&required, "threshold", 1, "signatures required to submit")
	create.Flags().StringVar(&signers, "submit-keys", "", "participants forming the submit key, for example 1,2,3")

	var submitSigners string
	submit := &cobra.Command{
		Use:   "submit <topic-id>",
		Short: "Submit the current time as a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := state.commandContext()
			defer cancel()

			keys, err := signerKeys(submitSigners)
			if err != nil {
				return err
			}
			topics, err := client()
			if err != nil {
				return err
			}
			message, result, err := topics.SubmitTimestamp(ctx, args[0], time.Now(), keys...)
			if err != nil {
				return err
			}
			fmt.Fprintf(
				cmd.OutOrStdout(),
				"submitted %q to %s: %s (sequence %d)\n",
				message,
				result.TopicID,
				result.Status.String(),
				result.SequenceNumber,
			)
			return nil
		},
	}
	submit.Flags().StringVar(&submitSigners, "signers", "", "participants signing the message, for example 1,2")

	var limit int
	messages := &cobra.Command{
		Use:   "messages <topic-id>",
		Short: "List recent messages from the mirror node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := state.commandContext()
			defer cancel()

			topics, err := client()
			if err != nil {
				return err
			}
			records, err := topics.RecentMessages(ctx, args[0], limit)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					strconv.FormatInt(record.SequenceNumber, 10),
					record.ConsensusTimestamp,
					record.Payer,
					string(record.Contents),
				})
			}
			renderTable(cmd.OutOrStdout(), []string{"Sequence", "Consensus timestamp", "Payer", "Message"}, rows)
			return nil
		},
	}
	messages.Flags().IntVar(&limit, "limit", 10, "maximum number of messages")

	cmd.AddCommand(create, submit, messages)
	return cmd
}
