package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/keystore"
	"github.com/hashgraph-online/multisig-sdk-go/pkg/ledger"
	"github.com/hashgraph-online/multisig-sdk-go/pkg/shared"
	"github.com/hashgraph-online/multisig-sdk-go/pkg/threshold"
)

const commandTimeout = 2 * time.Minute

// app carries what every subcommand shares: configuration, the logger and
// the metrics registry. Network clients are created lazily.
type app struct {
	config   *viper.Viper
	settings settings
	out      io.Writer
	logger   zerolog.Logger
	registry *prometheus.Registry
	metrics  *threshold.Metrics
	ledger   *ledger.Client
}

func (a *app) setup() error {
	if err := a.config.Unmarshal(&a.settings); err != nil {
		return fmt.Errorf("failed to read configuration: %w", err)
	}
	logger, err := shared.NewLogger(shared.LogOptions{
		Level:  a.settings.LogLevel,
		Format: a.settings.LogFormat,
	})
	if err != nil {
		return err
	}
	a.logger = logger

	a.registry = prometheus.NewRegistry()
	metrics, err := threshold.NewMetrics(a.registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	a.metrics = metrics
	return nil
}

func (a *app) finish() error {
	if a.settings.Metrics && a.registry != nil {
		if err := printMetrics(a.out, a.registry); err != nil {
			return err
		}
	}
	if a.ledger != nil {
		err := a.ledger.Close()
		a.ledger = nil
		return err
	}
	return nil
}

func (a *app) commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

// operator resolves the paying account, preferring flags over the
// HEDERA_* environment.
func (a *app) operator() (shared.OperatorConfig, error) {
	if a.settings.OperatorID != "" && a.settings.OperatorKey != "" {
		network := a.settings.Network
		if network == "" {
			network = shared.NetworkTestnet
		}
		return shared.OperatorConfig{
			AccountID:  a.settings.OperatorID,
			PrivateKey: a.settings.OperatorKey,
			Network:    network,
		}, nil
	}
	operator, err := shared.OperatorConfigFromEnv()
	if err != nil {
		return shared.OperatorConfig{}, err
	}
	if a.settings.Network != "" {
		operator.Network = a.settings.Network
	}
	return operator, nil
}

func (a *app) ledgerClient() (*ledger.Client, error) {
	if a.ledger != nil {
		return a.ledger, nil
	}
	operator, err := a.operator()
	if err != nil {
		return nil, err
	}
	if err := guardMainnet(operator.Network, a.settings.AllowMainnet); err != nil {
		return nil, err
	}
	client, err := ledger.NewClient(ledger.Config{
		Network:            operator.Network,
		OperatorAccountID:  operator.AccountID,
		OperatorPrivateKey: operator.PrivateKey,
		NodeAccountID:      a.settings.NodeID,
		Logger:             &a.logger,
	})
	if err != nil {
		return nil, err
	}
	a.ledger = client
	return client, nil
}

// hederaClient is the operator client of the ledger, shared by the feature
// clients.
func (a *app) hederaClient() (*hedera.Client, shared.OperatorConfig, error) {
	operator, err := a.operator()
	if err != nil {
		return nil, shared.OperatorConfig{}, err
	}
	client, err := a.ledgerClient()
	if err != nil {
		return nil, shared.OperatorConfig{}, err
	}
	return client.HederaClient(), operator, nil
}

func (a *app) coordinator(keys threshold.KeyStore) (*threshold.Coordinator, error) {
	client, err := a.ledgerClient()
	if err != nil {
		return nil, err
	}
	return threshold.NewCoordinator(
		client,
		keys,
		threshold.WithLogger(a.logger),
		threshold.WithMetrics(a.metrics),
		threshold.WithLocalThresholdCheck(a.settings.LocalCheck),
	)
}

// participants loads ACCOUNT_<n>_ID and ACCOUNT_<n>_PRIVATE_KEY for each
// index into a keystore under the handle account-<n>.
func (a *app) participants(indices []int) (*keystore.Local, []shared.NamedAccount, error) {
	store := keystore.NewLocal()
	accounts := make([]shared.NamedAccount, 0, len(indices))
	for _, index := range indices {
		account, err := shared.NamedAccountFromEnv(index)
		if err != nil {
			return nil, nil, err
		}
		if account.PrivateKey == nil {
			return nil, nil, fmt.Errorf("ACCOUNT_%d_PRIVATE_KEY is required", index)
		}
		if _, err := store.Add(handleFor(index), *account.PrivateKey); err != nil {
			return nil, nil, err
		}
		accounts = append(accounts, account)
	}
	return store, accounts, nil
}

func handleFor(index int) string {
	return fmt.Sprintf("account-%d", index)
}

func guardMainnet(network string, allowed bool) error {
	if allowed || !strings.EqualFold(strings.TrimSpace(network), shared.NetworkMainnet) {
		return nil
	}
	return fmt.Errorf("refusing to use mainnet without --allow-mainnet or MULTISIG_ALLOW_MAINNET=1")
}
