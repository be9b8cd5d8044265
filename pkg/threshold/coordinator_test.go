package threshold

import (
	"context"
	"errors"
	"sync"
	"testing"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTwoOfThreeTransfer(t *testing.T) {
	s := newScenario(t)
	ctx := context.Background()
	pending := s.freezeTransfer(t, 10)

	if err := s.coordinator.CollectSignature(ctx, pending, "a"); err != nil {
		t.Fatalf("CollectSignature(a) failed: %v", err)
	}
	_, err := s.coordinator.Submit(ctx, pending)
	var thresholdErr SignatureThresholdError
	if !errors.As(err, &thresholdErr) {
		t.Fatalf("expected SignatureThresholdError with one signature, got %v", err)
	}
	if thresholdErr.Status != hedera.StatusInvalidSignature || thresholdErr.Local {
		t.Fatalf("unexpected threshold error: %+v", thresholdErr)
	}
	if pending.State() != StateFrozen {
		t.Fatalf("expected pending transaction to return to frozen, got %s", pending.State())
	}

	if err := s.coordinator.CollectSignature(ctx, pending, "b"); err != nil {
		t.Fatalf("CollectSignature(b) failed: %v", err)
	}
	result, err := s.coordinator.Submit(ctx, pending)
	if err != nil {
		t.Fatalf("Submit with two signatures failed: %v", err)
	}
	if !result.Accepted() || result.Receipt == nil {
		t.Fatalf("expected accepted result with receipt, got %+v", result)
	}
	if result.SignatureCount != 2 {
		t.Fatalf("expected two signatures, got %d", result.SignatureCount)
	}
	if result.TransactionID != pending.TransactionID() {
		t.Fatalf("unexpected transaction id %q", result.TransactionID)
	}
	if len(pending.Attempts()) != 2 {
		t.Fatalf("expected two recorded attempts, got %d", len(pending.Attempts()))
	}

	governed, err := s.coordinator.QueryBalance(ctx, s.governed)
	if err != nil {
		t.Fatalf("QueryBalance failed: %v", err)
	}
	if governed.AsTinybar() != hedera.NewHbar(10).AsTinybar() {
		t.Fatalf("unexpected governed balance %s", governed.String())
	}

	if _, err := s.coordinator.Submit(ctx, pending); !errors.Is(err, ErrAlreadyAccepted) {
		t.Fatalf("expected ErrAlreadyAccepted, got %v", err)
	}
	if err := s.coordinator.CollectSignature(ctx, pending, "c"); !errors.Is(err, ErrAlreadyAccepted) {
		t.Fatalf("expected ErrAlreadyAccepted on sign after acceptance, got %v", err)
	}
}

func TestUnbalancedIntentNeverReachesLedger(t *testing.T) {
	s := newScenario(t)
	before := s.ledger.totalCalls()

	_, err := s.coordinator.BuildIntent([]Transfer{
		{Account: Account{ID: s.governed, Policy: s.policy}, Amount: hedera.NewHbar(-10)},
		{Account: Account{ID: s.recipient}, Amount: hedera.NewHbar(7)},
	})
	if !IsIntentError(err) {
		t.Fatalf("expected IntentError, got %v", err)
	}
	if _, err := s.coordinator.Freeze(context.Background(), Intent{}); !IsIntentError(err) {
		t.Fatalf("expected IntentError for zero intent, got %v", err)
	}
	if s.ledger.totalCalls() != before {
		t.Fatalf("ledger was called for an invalid intent")
	}
}

func TestInvalidPolicyNeverReachesLedger(t *testing.T) {
	ledger := newFakeLedger()
	coordinator, err := NewCoordinator(ledger, nil)
	if err != nil {
		t.Fatalf("NewCoordinator failed: %v", err)
	}

	if _, err := coordinator.CreateGovernedAccount(context.Background(), Policy{}, hedera.NewHbar(1)); !IsPolicyError(err) {
		t.Fatalf("expected PolicyError, got %v", err)
	}
	if ledger.totalCalls() != 0 {
		t.Fatalf("ledger was called for an invalid policy")
	}
}

func TestCollectSignatureIsIdempotent(t *testing.T) {
	s := newScenario(t)
	pending := s.freezeTransfer(t, 5)

	for attempt := 0; attempt < 3; attempt++ {
		if err := s.coordinator.CollectSignature(context.Background(), pending, "a"); err != nil {
			t.Fatalf("CollectSignature failed: %v", err)
		}
	}
	if pending.SignatureCount() != 1 {
		t.Fatalf("expected one signature after repeated signing, got %d", pending.SignatureCount())
	}
}

func TestForeignSignatureIsInert(t *testing.T) {
	s := newScenario(t, WithLocalThresholdCheck(true))
	ctx := context.Background()
	pending := s.freezeTransfer(t, 5)

	if err := s.coordinator.CollectSignatures(ctx, pending, "a", "x"); err != nil {
		t.Fatalf("CollectSignatures failed: %v", err)
	}
	if pending.SignatureCount() != 2 {
		t.Fatalf("expected foreign signature to be kept, got %d signatures", pending.SignatureCount())
	}

	_, err := s.coordinator.Submit(ctx, pending)
	var thresholdErr SignatureThresholdError
	if !errors.As(err, &thresholdErr) {
		t.Fatalf("expected SignatureThresholdError, got %v", err)
	}
	if !thresholdErr.Local || thresholdErr.Have != 1 || thresholdErr.Need != 2 {
		t.Fatalf("unexpected local threshold error: %+v", thresholdErr)
	}
	if s.ledger.submitCalls != 0 {
		t.Fatalf("local check must fail before the ledger is contacted")
	}
	if len(pending.Attempts()) != 0 {
		t.Fatalf("local check failure is not a submission attempt")
	}

	if err := s.coordinator.CollectSignature(ctx, pending, "c"); err != nil {
		t.Fatalf("CollectSignature(c) failed: %v", err)
	}
	if _, err := s.coordinator.Submit(ctx, pending); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
}

func TestCollectSignaturesConcurrently(t *testing.T) {
	s := newScenario(t)
	pending := s.freezeTransfer(t, 1)

	var wg sync.WaitGroup
	for _, handle := range []string{"a", "b", "c", "a", "b", "c"} {
		wg.Add(1)
		go func(handle string) {
			defer wg.Done()
			if err := s.coordinator.CollectSignature(context.Background(), pending, handle); err != nil {
				t.Errorf("CollectSignature(%s) failed: %v", handle, err)
			}
		}(handle)
	}
	wg.Wait()

	if pending.SignatureCount() != 3 {
		t.Fatalf("expected three signatures, got %d", pending.SignatureCount())
	}
	if err := s.coordinator.CollectSignatures(context.Background(), pending, "a", "missing"); err == nil {
		t.Fatalf("expected error for unknown handle")
	}
}

func TestAddSignatureVerifiesBytes(t *testing.T) {
	s := newScenario(t)
	pending := s.freezeTransfer(t, 2)

	signature, err := s.keys.Sign(context.Background(), []byte("some other body"), "a")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if err := s.coordinator.AddSignature(pending, signature); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	signature, err = s.keys.Sign(context.Background(), pending.Payload().SignBytes, "b")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if err := s.coordinator.AddSignature(pending, signature); err != nil {
		t.Fatalf("AddSignature failed: %v", err)
	}
	if !pending.Signatures().Has(signature.PublicKey) {
		t.Fatalf("expected signature for key b")
	}
}

func TestSubmitStatusInterpretation(t *testing.T) {
	testCases := []struct {
		name   string
		status hedera.Status
		check  func(error) bool
		code   ErrorCode
	}{
		{name: "invalid account", status: hedera.StatusInvalidAccountID, check: IsIntentError, code: ErrorCodeInvalidIntent},
		{name: "deleted account", status: hedera.StatusAccountDeleted, check: IsIntentError, code: ErrorCodeInvalidIntent},
		{name: "key required", status: hedera.StatusKeyRequired, check: IsSignatureThresholdError, code: ErrorCodeSignatureThreshold},
		{name: "insufficient balance", status: hedera.StatusInsufficientAccountBalance, check: IsRejectedError, code: ErrorCodeRejected},
		{name: "duplicate transaction", status: hedera.StatusDuplicateTransaction, check: IsRefreezeError, code: ErrorCodeRefreeze},
		{name: "expired transaction", status: hedera.StatusTransactionExpired, check: NeedsRefreeze, code: ErrorCodeRefreeze},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			s := newScenario(t)
			pending := s.freezeTransfer(t, 1)
			status := testCase.status
			s.ledger.status = &status

			result, err := s.coordinator.Submit(context.Background(), pending)
			if !testCase.check(err) {
				t.Fatalf("unexpected error type: %v", err)
			}
			if Code(err) != testCase.code {
				t.Fatalf("unexpected code %q", Code(err))
			}
			if result.Status != testCase.status {
				t.Fatalf("expected status %s, got %s", testCase.status.String(), result.Status.String())
			}
		})
	}
}

func TestSubmitTransportFailure(t *testing.T) {
	s := newScenario(t)
	pending := s.freezeTransfer(t, 1)
	cause := errors.New("connection refused")
	s.ledger.submitErr = cause

	_, err := s.coordinator.Submit(context.Background(), pending)
	if !IsNetworkError(err) || !errors.Is(err, cause) {
		t.Fatalf("expected NetworkError wrapping cause, got %v", err)
	}
	if s.ledger.submitCalls != 1 {
		t.Fatalf("transport failures must not be retried, got %d calls", s.ledger.submitCalls)
	}
	if pending.State() != StateFrozen {
		t.Fatalf("expected frozen state after transport failure, got %s", pending.State())
	}

	s.ledger.submitErr = nil
	if err := s.coordinator.CollectSignatures(context.Background(), pending, "a", "b"); err != nil {
		t.Fatalf("CollectSignatures failed: %v", err)
	}
	if _, err := s.coordinator.Submit(context.Background(), pending); err != nil {
		t.Fatalf("resubmission failed: %v", err)
	}
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	s := newScenario(t)
	pending := s.freezeTransfer(t, 1)

	if _, err := pending.beginSubmit(); err != nil {
		t.Fatalf("beginSubmit failed: %v", err)
	}
	if _, err := s.coordinator.Submit(context.Background(), pending); !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("expected ErrSubmissionInFlight, got %v", err)
	}
}

func TestRestoredPendingTransaction(t *testing.T) {
	s := newScenario(t)
	original := s.freezeTransfer(t, 3)
	if err := s.coordinator.CollectSignature(context.Background(), original, "a"); err != nil {
		t.Fatalf("CollectSignature failed: %v", err)
	}

	restored, err := NewPendingTransaction(original.Intent(), original.Payload(), original.Signatures().List()...)
	if err != nil {
		t.Fatalf("NewPendingTransaction failed: %v", err)
	}
	if err := s.coordinator.CollectSignature(context.Background(), restored, "c"); err != nil {
		t.Fatalf("CollectSignature failed: %v", err)
	}
	added, err := original.Merge(restored.Signatures())
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if added != 1 || original.SignatureCount() != 2 {
		t.Fatalf("unexpected merge result: added=%d count=%d", added, original.SignatureCount())
	}

	forged := Signature{PublicKey: s.policy.Keys()[1], Bytes: []byte("forged")}
	if _, err := NewPendingTransaction(original.Intent(), original.Payload(), forged); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestCoordinatorMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics, err := NewMetrics(registry)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	s := newScenario(t, WithMetrics(metrics))
	pending := s.freezeTransfer(t, 1)

	if err := s.coordinator.CollectSignature(context.Background(), pending, "a"); err != nil {
		t.Fatalf("CollectSignature failed: %v", err)
	}
	_, _ = s.coordinator.Submit(context.Background(), pending)
	if err := s.coordinator.CollectSignatures(context.Background(), pending, "a", "b"); err != nil {
		t.Fatalf("CollectSignatures failed: %v", err)
	}
	if _, err := s.coordinator.Submit(context.Background(), pending); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if got := testutil.ToFloat64(metrics.SignaturesCollected); got != 2 {
		t.Fatalf("expected 2 collected signatures, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.Submissions.WithLabelValues(OutcomeThreshold)); got != 1 {
		t.Fatalf("expected 1 threshold outcome, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.Submissions.WithLabelValues(OutcomeAccepted)); got != 1 {
		t.Fatalf("expected 1 accepted outcome, got %v", got)
	}

	if _, err := NewMetrics(registry); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestPrecheckThresholdFailureKeepsPayloadReusable(t *testing.T) {
	s := newScenario(t)
	pending := s.freezeTransfer(t, 1)
	if err := s.coordinator.CollectSignature(context.Background(), pending, "a"); err != nil {
		t.Fatalf("CollectSignature failed: %v", err)
	}
	_, err := s.coordinator.Submit(context.Background(), pending)
	if !IsSignatureThresholdError(err) || NeedsRefreeze(err) {
		t.Fatalf("expected reusable threshold failure, got %v", err)
	}
}

func TestConsensusThresholdFailureRequiresRefreeze(t *testing.T) {
	s := newScenario(t)
	s.ledger.consensusFailures = true
	ctx := context.Background()
	pending := s.freezeTransfer(t, 5)

	if err := s.coordinator.CollectSignature(ctx, pending, "a"); err != nil {
		t.Fatalf("CollectSignature failed: %v", err)
	}
	_, err := s.coordinator.Submit(ctx, pending)
	var thresholdErr SignatureThresholdError
	if !errors.As(err, &thresholdErr) || !thresholdErr.Spent || !errors.Is(err, ErrRefreezeRequired) {
		t.Fatalf("expected spent threshold failure, got %v", err)
	}

	if err := s.coordinator.CollectSignature(ctx, pending, "b"); err != nil {
		t.Fatalf("CollectSignature failed: %v", err)
	}
	_, err = s.coordinator.Submit(ctx, pending)
	if !IsRefreezeError(err) || Code(err) != ErrorCodeRefreeze {
		t.Fatalf("expected refreeze error for reused transaction ID, got %v", err)
	}

	replacement, err := s.coordinator.Refreeze(ctx, pending)
	if err != nil {
		t.Fatalf("Refreeze failed: %v", err)
	}
	if replacement.TransactionID() == pending.TransactionID() || replacement.SignatureCount() != 0 {
		t.Fatalf("expected fresh payload without signatures, got %s with %d", replacement.TransactionID(), replacement.SignatureCount())
	}
	if err := s.coordinator.CollectSignatures(ctx, replacement, "a", "b"); err != nil {
		t.Fatalf("CollectSignatures failed: %v", err)
	}
	if _, err := s.coordinator.Submit(ctx, replacement); err != nil {
		t.Fatalf("submission of refrozen transfer failed: %v", err)
	}
	balance, err := s.coordinator.QueryBalance(ctx, s.governed)
	if err != nil || balance.AsTinybar() != hedera.NewHbar(15).AsTinybar() {
		t.Fatalf("expected a single 5 hbar debit, got %v, %v", balance, err)
	}
	if _, err := s.coordinator.Refreeze(ctx, replacement); !errors.Is(err, ErrAlreadyAccepted) {
		t.Fatalf("expected ErrAlreadyAccepted, got %v", err)
	}
}

func TestSignatureAddedDuringSubmissionCarriesOver(t *testing.T) {
	s := newScenario(t)
	pending := s.freezeTransfer(t, 1)
	ctx := context.Background()
	if err := s.coordinator.CollectSignature(ctx, pending, "a"); err != nil {
		t.Fatalf("CollectSignature failed: %v", err)
	}

	inFlight, err := pending.beginSubmit()
	if err != nil {
		t.Fatalf("beginSubmit failed: %v", err)
	}
	if err := s.coordinator.CollectSignature(ctx, pending, "b"); err != nil {
		t.Fatalf("signature during submission was refused: %v", err)
	}
	if len(inFlight) != 1 {
		t.Fatalf("in-flight attempt changed to %d signatures", len(inFlight))
	}
	pending.finishSubmit(Attempt{Err: errors.New("threshold not met")})

	if _, err := s.coordinator.Submit(ctx, pending); err != nil {
		t.Fatalf("next attempt should carry both signatures: %v", err)
	}
}
