package threshold

import (
	"context"
	"fmt"
	"time"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Coordinator drives the threshold authorization workflow against a
// LedgerClient. It holds no per-transaction state, so one Coordinator can
// serve any number of pending transactions concurrently.
type Coordinator struct {
	ledger     LedgerClient
	keys       KeyStore
	logger     zerolog.Logger
	metrics    *Metrics
	localCheck bool
	now        func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the coordinator logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(coordinator *Coordinator) {
		coordinator.logger = logger
	}
}

// WithMetrics records coordinator activity in metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(coordinator *Coordinator) {
		coordinator.metrics = metrics
	}
}

// WithLocalThresholdCheck makes Submit fail fast when a debited account with
// a known policy lacks enough relevant signatures. The network still decides
// whenever the local check passes.
func WithLocalThresholdCheck(enabled bool) Option {
	return func(coordinator *Coordinator) {
		coordinator.localCheck = enabled
	}
}

// NewCoordinator returns a coordinator. keys may be nil when every signature
// arrives through AddSignature.
func NewCoordinator(ledger LedgerClient, keys KeyStore, options ...Option) (*Coordinator, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger client is required")
	}
	coordinator := &Coordinator{
		ledger: ledger,
		keys:   keys,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, option := range options {
		if option != nil {
			option(coordinator)
		}
	}
	return coordinator, nil
}

// CreateGovernedAccount creates an account whose key is the threshold policy.
// The policy is validated before the network is contacted.
func (c *Coordinator) CreateGovernedAccount(
	ctx context.Context,
	policy Policy,
	initialBalance hedera.Hbar,
) (hedera.AccountID, error) {
	if err := policy.Validate(); err != nil {
		return hedera.AccountID{}, err
	}
	if initialBalance.AsTinybar() < 0 {
		return hedera.AccountID{}, fmt.Errorf("initial balance cannot be negative")
	}
	if err := ctx.Err(); err != nil {
		return hedera.AccountID{}, err
	}

	accountID, err := c.ledger.CreateAccount(ctx, policy, initialBalance)
	if err != nil {
		return hedera.AccountID{}, newNetworkError("create account", err)
	}
	c.logger.Info().
		Str("account_id", accountID.String()).
		Int("threshold", policy.Threshold()).
		Int("keys", policy.Size()).
		Msg("created governed account")
	return accountID, nil
}

// BuildIntent validates transfers locally. See BuildIntent at package level.
func (c *Coordinator) BuildIntent(transfers []Transfer, options ...IntentOption) (Intent, error) {
	return BuildIntent(transfers, options...)
}

// Freeze serializes intent into a payload. The intent cannot change after
// this point.
func (c *Coordinator) Freeze(ctx context.Context, intent Intent) (*PendingTransaction, error) {
	if intent.IsZero() {
		return nil, NewIntentError("intent must be built before freezing")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload, err := c.ledger.Freeze(ctx, intent)
	if err != nil {
		return nil, newNetworkError("freeze", err)
	}
	pending, err := NewPendingTransaction(intent, payload)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().
		Str("transaction_id", payload.TransactionID).
		Int("transfers", len(intent.transfers)).
		Msg("froze transfer intent")
	return pending, nil
}

// CollectSignature signs the frozen payload with the key registered under
// handle and adds the signature.
func (c *Coordinator) CollectSignature(ctx context.Context, pending *PendingTransaction, handle string) error {
	if c.keys == nil {
		return ErrNoKeyStore
	}
	if pending == nil {
		return fmt.Errorf("pending transaction is required")
	}
	if pending.State() == StateAccepted {
		return ErrAlreadyAccepted
	}

	signature, err := c.keys.Sign(ctx, pending.payload.SignBytes, handle)
	if err != nil {
		return fmt.Errorf("failed to sign with key %q: %w", handle, err)
	}
	return c.AddSignature(pending, signature)
}

// CollectSignatures signs with every handle concurrently. The first signing
// error is returned; signatures already produced stay on the transaction.
func (c *Coordinator) CollectSignatures(ctx context.Context, pending *PendingTransaction, handles ...string) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for _, handle := range handles {
		group.Go(func() error {
			return c.CollectSignature(groupCtx, pending, handle)
		})
	}
	return group.Wait()
}

// AddSignature adds an externally produced signature. It must verify against
// the frozen payload. Keys outside every policy are kept but never count
// toward a threshold.
func (c *Coordinator) AddSignature(pending *PendingTransaction, signature Signature) error {
	if pending == nil {
		return fmt.Errorf("pending transaction is required")
	}
	added, err := pending.addSignature(signature)
	if err != nil {
		return err
	}
	if added {
		c.metrics.signatureAdded()
		c.logger.Debug().
			Str("transaction_id", pending.TransactionID()).
			Str("public_key", keyID(signature.PublicKey)).
			Msg("added signature")
	}
	return nil
}

// Submit sends the payload with every collected signature and interprets the
// status the network reports. A SignatureThresholdError leaves the pending
// transaction frozen for more signatures and another Submit.
func (c *Coordinator) Submit(ctx context.Context, pending *PendingTransaction) (SubmissionResult, error) {
	if pending == nil {
		return SubmissionResult{}, fmt.Errorf("pending transaction is required")
	}
	signatures, err := pending.beginSubmit()
	if err != nil {
		return SubmissionResult{}, err
	}

	if c.localCheck {
		if err := c.checkLocalThreshold(pending.intent, NewSignatureSet(signatures...)); err != nil {
			pending.abortSubmit()
			c.metrics.submission(OutcomeLocalThreshold)
			return SubmissionResult{}, err
		}
	}
	if err := ctx.Err(); err != nil {
		pending.abortSubmit()
		return SubmissionResult{}, err
	}

	submittedAt := c.now()
	result, err := c.ledger.Submit(ctx, pending.intent, pending.payload.clone(), signatures)
	if err != nil {
		networkErr := newNetworkError("submit", err)
		pending.finishSubmit(Attempt{Err: networkErr, SubmittedAt: submittedAt})
		c.metrics.submission(OutcomeNetwork)
		return SubmissionResult{}, networkErr
	}
	if result.TransactionID == "" {
		result.TransactionID = pending.payload.TransactionID
	}
	result.SignatureCount = len(signatures)

	outcome, resultErr := interpretStatus(result)
	pending.finishSubmit(Attempt{Result: result, Err: resultErr, SubmittedAt: submittedAt})
	c.metrics.submission(outcome)

	event := c.logger.Info()
	if resultErr != nil {
		event = c.logger.Warn()
	}
	event.
		Str("transaction_id", result.TransactionID).
		Str("status", result.Status.String()).
		Int("signatures", result.SignatureCount).
		Str("outcome", outcome).
		Msg("submitted transaction")
	return result, resultErr
}

// Refreeze freezes the intent of pending again under a new transaction ID.
// The replacement starts without signatures since they covered the old
// body. Use it when a submission failed with NeedsRefreeze.
func (c *Coordinator) Refreeze(ctx context.Context, pending *PendingTransaction) (*PendingTransaction, error) {
	if pending == nil {
		return nil, fmt.Errorf("pending transaction is required")
	}
	switch pending.State() {
	case StateAccepted:
		return nil, ErrAlreadyAccepted
	case StateSubmitting:
		return nil, ErrSubmissionInFlight
	}
	replacement, err := c.Freeze(ctx, pending.Intent())
	if err != nil {
		return nil, err
	}
	c.logger.Info().
		Str("transaction_id", pending.TransactionID()).
		Str("replacement_id", replacement.TransactionID()).
		Msg("refroze transfer intent")
	return replacement, nil
}

// QueryBalance returns the current balance of accountID.
func (c *Coordinator) QueryBalance(ctx context.Context, accountID hedera.AccountID) (hedera.Hbar, error) {
	if err := ctx.Err(); err != nil {
		return hedera.Hbar{}, err
	}
	balance, err := c.ledger.QueryBalance(ctx, accountID)
	if err != nil {
		return hedera.Hbar{}, newNetworkError("query balance", err)
	}
	return balance, nil
}

func (c *Coordinator) checkLocalThreshold(intent Intent, signatures SignatureSet) error {
	for _, debit := range intent.Debits() {
		policy := debit.Account.Policy
		if policy.IsZero() {
			continue
		}
		have := policy.RelevantCount(signatures)
		if have < policy.Threshold() {
			return newLocalThresholdError(debit.Account.ID.String(), have, policy.Threshold())
		}
	}
	return nil
}

func interpretStatus(result SubmissionResult) (string, error) {
	switch result.Status {
	case hedera.StatusSuccess:
		return OutcomeAccepted, nil
	case hedera.StatusInvalidSignature,
		hedera.StatusKeyRequired,
		hedera.StatusInvalidPayerSignature:
		return OutcomeThreshold, newNetworkThresholdError(result)
	case hedera.StatusDuplicateTransaction,
		hedera.StatusTransactionExpired:
		return OutcomeRefreeze, newRefreezeError(result)
	case hedera.StatusInvalidAccountID,
		hedera.StatusAccountDeleted,
		hedera.StatusInvalidAccountAmounts,
		hedera.StatusAccountRepeatedInAccountAmounts:
		return OutcomeIntent, newNetworkIntentError(result)
	}
	return OutcomeRejected, newRejectedError(result)
}
