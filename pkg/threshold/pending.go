package threshold

import (
	"sync"
	"time"
)

// State of a PendingTransaction.
type State string

const (
	StateFrozen     State = "frozen"
	StateSubmitting State = "submitting"
	StateAccepted   State = "accepted"
)

// Attempt records one submission of a pending transaction.
type Attempt struct {
	Result      SubmissionResult
	Err         error
	SubmittedAt time.Time
}

// PendingTransaction is a frozen intent accumulating signatures. It is safe
// for concurrent use. A rejected submission leaves it frozen so that more
// signatures can be added and the same payload submitted again.
type PendingTransaction struct {
	mu         sync.Mutex
	intent     Intent
	payload    Payload
	signatures SignatureSet
	state      State
	attempts   []Attempt
}

// NewPendingTransaction restores a pending transaction from a frozen intent,
// its payload and previously collected signatures. Every signature must
// verify against the payload.
func NewPendingTransaction(intent Intent, payload Payload, signatures ...Signature) (*PendingTransaction, error) {
	if intent.IsZero() {
		return nil, NewIntentError("pending transaction requires an intent")
	}
	if len(payload.SignBytes) == 0 {
		return nil, NewIntentError("pending transaction requires frozen sign bytes")
	}
	pending := &PendingTransaction{
		intent:     intent,
		payload:    payload.clone(),
		signatures: NewSignatureSet(),
		state:      StateFrozen,
	}
	for _, signature := range signatures {
		if !signature.Verify(pending.payload.SignBytes) {
			return nil, ErrInvalidSignature
		}
		pending.signatures.Add(signature)
	}
	return pending, nil
}

// Intent returns the frozen intent.
func (p *PendingTransaction) Intent() Intent {
	return p.intent
}

// Payload returns a copy of the frozen payload.
func (p *PendingTransaction) Payload() Payload {
	return p.payload.clone()
}

// TransactionID returns the ID the payload was frozen under.
func (p *PendingTransaction) TransactionID() string {
	return p.payload.TransactionID
}

// State returns the current lifecycle state.
func (p *PendingTransaction) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Signatures returns a snapshot of the collected signatures.
func (p *PendingTransaction) Signatures() SignatureSet {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signatures.clone()
}

// SignatureCount returns the number of distinct signing keys.
func (p *PendingTransaction) SignatureCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signatures.Len()
}

// Attempts returns every finished submission in order.
func (p *PendingTransaction) Attempts() []Attempt {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Attempt(nil), p.attempts...)
}

// Merge adds every signature of other that verifies against the payload and
// returns the number of new keys.
func (p *PendingTransaction) Merge(other SignatureSet) (int, error) {
	added := 0
	for _, signature := range other.List() {
		isNew, err := p.addSignature(signature)
		if err != nil {
			return added, err
		}
		if isNew {
			added++
		}
	}
	return added, nil
}

// addSignature stores signature unless the transaction was accepted. While
// a submission is in flight the signature is kept for the next attempt; the
// in-flight attempt carries only the signatures present when it began.
func (p *PendingTransaction) addSignature(signature Signature) (bool, error) {
	if !signature.Verify(p.payload.SignBytes) {
		return false, ErrInvalidSignature
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateAccepted {
		return false, ErrAlreadyAccepted
	}
	return p.signatures.Add(signature), nil
}

func (p *PendingTransaction) beginSubmit() ([]Signature, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case StateAccepted:
		return nil, ErrAlreadyAccepted
	case StateSubmitting:
		return nil, ErrSubmissionInFlight
	}
	p.state = StateSubmitting
	return p.signatures.List(), nil
}

func (p *PendingTransaction) finishSubmit(attempt Attempt) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempts = append(p.attempts, attempt)
	if attempt.Err == nil && attempt.Result.Accepted() {
		p.state = StateAccepted
		return
	}
	p.state = StateFrozen
}

func (p *PendingTransaction) abortSubmit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateSubmitting {
		p.state = StateFrozen
	}
}
