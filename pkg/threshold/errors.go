package threshold

import (
	"errors"
	"fmt"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// ErrorCode classifies coordinator errors.
type ErrorCode string

const (
	ErrorCodeInvalidPolicy      ErrorCode = "invalid_policy"
	ErrorCodeInvalidIntent      ErrorCode = "invalid_intent"
	ErrorCodeSignatureThreshold ErrorCode = "signature_threshold"
	ErrorCodeNetwork            ErrorCode = "network"
	ErrorCodeRejected           ErrorCode = "rejected"
	ErrorCodeRefreeze           ErrorCode = "refreeze_required"
)

var (
	ErrAlreadyAccepted    = errors.New("transaction was already accepted by the network")
	ErrSubmissionInFlight = errors.New("a submission for this transaction is already in flight")
	ErrInvalidSignature   = errors.New("signature does not verify against the frozen payload")
	ErrNoKeyStore         = errors.New("coordinator has no key store")
	// ErrRefreezeRequired marks failures after which the frozen payload can
	// never be accepted. Coordinator.Refreeze builds a replacement.
	ErrRefreezeRequired   = errors.New("transaction ID is spent or expired; freeze the intent again")
)

// CoordinatorError is embedded in every typed coordinator error.
type CoordinatorError struct {
	Code    ErrorCode
	Message string
}

func (errorValue CoordinatorError) Error() string {
	return errorValue.Message
}

// PolicyError reports a malformed threshold policy. It is always raised
// before anything is sent to the network.
type PolicyError struct {
	CoordinatorError
	Threshold int
	Keys      int
}

// NewPolicyError reports a policy that cannot be satisfied or is malformed.
func NewPolicyError(threshold int, keys int, reason string) error {
	return PolicyError{
		CoordinatorError: CoordinatorError{
			Code:    ErrorCodeInvalidPolicy,
			Message: fmt.Sprintf("invalid threshold policy %d-of-%d: %s", threshold, keys, reason),
		},
		Threshold: threshold,
		Keys:      keys,
	}
}

// IntentError reports an unbalanced or otherwise invalid transfer set. When
// the network rejected the intent, Status holds the reported status.
type IntentError struct {
	CoordinatorError
	Status hedera.Status
}

// NewIntentError reports a transfer set rejected before freezing.
func NewIntentError(reason string) error {
	return IntentError{
		CoordinatorError: CoordinatorError{
			Code:    ErrorCodeInvalidIntent,
			Message: fmt.Sprintf("invalid transfer intent: %s", reason),
		},
	}
}

func newNetworkIntentError(result SubmissionResult) error {
	return IntentError{
		CoordinatorError: CoordinatorError{
			Code:    ErrorCodeInvalidIntent,
			Message: fmt.Sprintf("network rejected transfer intent %s: %s", result.TransactionID, result.Status.String()),
		},
		Status: result.Status,
	}
}

// SignatureThresholdError reports that fewer relevant signatures than the
// policy requires were present. When the failure came from precheck or the
// local check, collecting more signatures and submitting the same pending
// transaction again is the remedy. When it came from a receipt the
// transaction reached consensus, Spent is set and the error matches
// ErrRefreezeRequired.
type SignatureThresholdError struct {
	CoordinatorError
	Status    hedera.Status
	AccountID string
	Have      int
	Need      int
	Local     bool
	Spent     bool
	Result    SubmissionResult
}

func (errorValue SignatureThresholdError) Unwrap() error {
	if errorValue.Spent {
		return ErrRefreezeRequired
	}
	return nil
}

func newLocalThresholdError(accountID string, have int, need int) error {
	return SignatureThresholdError{
		CoordinatorError: CoordinatorError{
			Code: ErrorCodeSignatureThreshold,
			Message: fmt.Sprintf(
				"signature threshold not reached for account %s: %d of %d required signatures",
				accountID,
				have,
				need,
			),
		},
		Status:    hedera.StatusInvalidSignature,
		AccountID: accountID,
		Have:      have,
		Need:      need,
		Local:     true,
	}
}

func newNetworkThresholdError(result SubmissionResult) error {
	return SignatureThresholdError{
		CoordinatorError: CoordinatorError{
			Code: ErrorCodeSignatureThreshold,
			Message: fmt.Sprintf(
				"signature threshold not reached for transaction %s: network reported %s with %d signatures",
				result.TransactionID,
				result.Status.String(),
				result.SignatureCount,
			),
		},
		Status: result.Status,
		Have:   result.SignatureCount,
		Spent:  result.Receipt != nil,
		Result: result,
	}
}

// NetworkError wraps a transport or availability failure from the ledger.
type NetworkError struct {
	CoordinatorError
	Operation string
	Cause     error
}

func newNetworkError(operation string, cause error) error {
	return NetworkError{
		CoordinatorError: CoordinatorError{
			Code:    ErrorCodeNetwork,
			Message: fmt.Sprintf("ledger %s failed: %v", operation, cause),
		},
		Operation: operation,
		Cause:     cause,
	}
}

func (errorValue NetworkError) Unwrap() error {
	return errorValue.Cause
}

// RejectedError reports any other non-success status.
type RejectedError struct {
	CoordinatorError
	Status hedera.Status
	Result SubmissionResult
}

func newRejectedError(result SubmissionResult) error {
	return RejectedError{
		CoordinatorError: CoordinatorError{
			Code:    ErrorCodeRejected,
			Message: fmt.Sprintf("transaction %s rejected: %s", result.TransactionID, result.Status.String()),
		},
		Status: result.Status,
		Result: result,
	}
}

// RefreezeError reports that the network refused the payload because its
// transaction ID was already used or its valid start window has passed.
// Signatures over the old payload cannot be reused.
type RefreezeError struct {
	CoordinatorError
	Status hedera.Status
	Result SubmissionResult
}

func newRefreezeError(result SubmissionResult) error {
	return RefreezeError{
		CoordinatorError: CoordinatorError{
			Code: ErrorCodeRefreeze,
			Message: fmt.Sprintf(
				"transaction %s cannot be submitted again (%s): freeze the intent again and collect new signatures",
				result.TransactionID,
				result.Status.String(),
			),
		},
		Status: result.Status,
		Result: result,
	}
}

func (errorValue RefreezeError) Unwrap() error {
	return ErrRefreezeRequired
}

// IsPolicyError reports whether err is a PolicyError.
func IsPolicyError(err error) bool {
	var target PolicyError
	return errors.As(err, &target)
}

// IsIntentError reports whether err is an IntentError.
func IsIntentError(err error) bool {
	var target IntentError
	return errors.As(err, &target)
}

// IsSignatureThresholdError reports whether err is a SignatureThresholdError.
func IsSignatureThresholdError(err error) bool {
	var target SignatureThresholdError
	return errors.As(err, &target)
}

// IsNetworkError reports whether err is a NetworkError.
func IsNetworkError(err error) bool {
	var target NetworkError
	return errors.As(err, &target)
}

// IsRejectedError reports whether err is a RejectedError.
func IsRejectedError(err error) bool {
	var target RejectedError
	return errors.As(err, &target)
}

// IsRefreezeError reports whether err is a RefreezeError.
func IsRefreezeError(err error) bool {
	var target RefreezeError
	return errors.As(err, &target)
}

// NeedsRefreeze reports whether err means the pending transaction must be
// replaced through Coordinator.Refreeze before another submission.
func NeedsRefreeze(err error) bool {
	return errors.Is(err, ErrRefreezeRequired)
}

// Code returns the ErrorCode of a coordinator error, or "" for other errors.
func Code(err error) ErrorCode {
	var policyErr PolicyError
	var intentErr IntentError
	var thresholdErr SignatureThresholdError
	var networkErr NetworkError
	var rejectedErr RejectedError
	var refreezeErr RefreezeError
	switch {
	case errors.As(err, &policyErr):
		return policyErr.Code
	case errors.As(err, &intentErr):
		return intentErr.Code
	case errors.As(err, &thresholdErr):
		return thresholdErr.Code
	case errors.As(err, &networkErr):
		return networkErr.Code
	case errors.As(err, &rejectedErr):
		return rejectedErr.Code
	case errors.As(err, &refreezeErr):
		return refreezeErr.Code
	}
	return ""
}
