package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "MULTISIG"

// settings is the resolved CLI configuration. Flags win over MULTISIG_*
// environment variables, which win over defaults.
type settings struct {
	Network      string `mapstructure:"network"`
	AllowMainnet bool   `mapstructure:"allow-mainnet"`
	OperatorID   string `mapstructure:"operator-id"`
	OperatorKey  string `mapstructure:"operator-key"`
	NodeID       string `mapstructure:"node"`
	LogLevel     string `mapstructure:"log-level"`
	LogFormat    string `mapstructure:"log-format"`
	SessionDB    string `mapstructure:"session-db"`
	Metrics      bool   `mapstructure:"metrics"`
	LocalCheck   bool   `mapstructure:"local-check"`
}

func newRootCommand(out io.Writer) *cobra.Command {
	config := viper.New()
	config.SetEnvPrefix(envPrefix)
	config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	config.AutomaticEnv()

	state := &app{config: config, out: out}

	cmd := &cobra.Command{
		Use:           "hedera-multisig",
		Short:         "Threshold-key accounts and multi-party signing on Hedera",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return state.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return state.finish()
		},
	}
	cmd.SetOut(out)

	flags := cmd.PersistentFlags()
	flags.String("network", "", "Hedera network (testnet, mainnet, previewnet); defaults to HEDERA_NETWORK")
	flags.Bool("allow-mainnet", false, "permit commands against mainnet")
	flags.String("operator-id", "", "paying operator account; defaults to HEDERA_ACCOUNT_ID")
	flags.String("operator-key", "", "paying operator private key; defaults to HEDERA_PRIVATE_KEY")
	flags.String("node", "0.0.3", "node account a frozen transfer is valid for")
	flags.String("log-level", "info", "log level")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("session-db", "multisig-sessions.db", "bbolt file holding pending sessions")
	flags.Bool("metrics", false, "print signing and submission counters on exit")
	flags.Bool("local-check", false, "refuse to submit a transfer whose known policies are not yet satisfied")
	_ = config.BindPFlags(flags)

	cmd.AddCommand(
		newMultisigCommand(state),
		newAccountsCommand(state),
		newTopicCommand(state),
		newScheduleCommand(state),
		newNFTCommand(state),
		newContractCommand(state),
		newSessionCommand(state),
	)
	return cmd
}
