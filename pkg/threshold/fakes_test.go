package threshold

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// fakeLedger enforces threshold keys on the accounts it created, the way
// the network does, without any transport. With consensusFailures set it
// reports threshold failures in the receipt and refuses reused transaction
// IDs as Hedera does.
type fakeLedger struct {
	mu          sync.Mutex
	nextAccount uint64
	accounts    map[string]Policy
	balances    map[string]int64
	frozen      int
	createCalls int
	freezeCalls int
	submitCalls int
	submitErr   error
	status      *hedera.Status

	consensusFailures bool
	spent             map[string]bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		nextAccount: 1000,
		accounts:    map[string]Policy{},
		balances:    map[string]int64{},
		spent:       map[string]bool{},
	}
}

func (l *fakeLedger) totalCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.createCalls + l.freezeCalls + l.submitCalls
}

func (l *fakeLedger) addAccount(policy Policy, balance hedera.Hbar) hedera.AccountID {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextAccount++
	accountID := hedera.AccountID{Account: l.nextAccount}
	l.accounts[accountID.String()] = policy
	l.balances[accountID.String()] = balance.AsTinybar()
	return accountID
}

func (l *fakeLedger) CreateAccount(_ context.Context, policy Policy, initialBalance hedera.Hbar) (hedera.AccountID, error) {
	l.mu.Lock()
	l.createCalls++
	l.mu.Unlock()
	return l.addAccount(policy, initialBalance), nil
}

func (l *fakeLedger) Freeze(_ context.Context, intent Intent) (Payload, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.freezeCalls++
	l.frozen++
	body := fmt.Sprintf("tx-%d", l.frozen)
	for _, transfer := range intent.Transfers() {
		body += fmt.Sprintf("|%s:%d", transfer.Account.ID.String(), transfer.Amount.AsTinybar())
	}
	return Payload{
		TransactionID: fmt.Sprintf("0.0.2@1700000000.%09d", l.frozen),
		SignBytes:     []byte(body),
		Encoded:       []byte("encoded:" + body),
	}, nil
}

func (l *fakeLedger) Submit(_ context.Context, intent Intent, payload Payload, signatures []Signature) (SubmissionResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.submitCalls++
	if l.submitErr != nil {
		return SubmissionResult{}, l.submitErr
	}
	result := SubmissionResult{TransactionID: payload.TransactionID}
	if l.consensusFailures && l.spent[payload.TransactionID] {
		result.Status = hedera.StatusDuplicateTransaction
		return result, nil
	}
	if l.status != nil {
		result.Status = *l.status
		return result, nil
	}

	set := SignatureSet{}
	for _, signature := range signatures {
		if signature.Verify(payload.SignBytes) {
			set.Add(signature)
		}
	}
	for _, transfer := range intent.Transfers() {
		policy, exists := l.accounts[transfer.Account.ID.String()]
		if !exists {
			result.Status = hedera.StatusInvalidAccountID
			return result, nil
		}
		if transfer.Amount.AsTinybar() < 0 && !policy.SatisfiedBy(set) {
			result.Status = hedera.StatusInvalidSignature
			if l.consensusFailures {
				l.spent[payload.TransactionID] = true
				result.Receipt = &hedera.TransactionReceipt{Status: hedera.StatusInvalidSignature}
			}
			return result, nil
		}
	}
	for _, transfer := range intent.Transfers() {
		l.balances[transfer.Account.ID.String()] += transfer.Amount.AsTinybar()
	}
	l.spent[payload.TransactionID] = true
	result.Status = hedera.StatusSuccess
	result.Receipt = &hedera.TransactionReceipt{Status: hedera.StatusSuccess}
	return result, nil
}

func (l *fakeLedger) QueryBalance(_ context.Context, accountID hedera.AccountID) (hedera.Hbar, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	balance, exists := l.balances[accountID.String()]
	if !exists {
		return hedera.Hbar{}, errors.New("account not found")
	}
	return hedera.HbarFromTinybar(balance), nil
}

type fakeKeyStore struct {
	mu   sync.Mutex
	keys map[string]hedera.PrivateKey
}

func newFakeKeyStore() *fakeKeyStore {
	return &fakeKeyStore{keys: map[string]hedera.PrivateKey{}}
}

func (s *fakeKeyStore) generate(t *testing.T, handle string) hedera.PublicKey {
	t.Helper()
	key, err := hedera.PrivateKeyGenerateEd25519()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	s.mu.Lock()
	s.keys[handle] = key
	s.mu.Unlock()
	return key.PublicKey()
}

func (s *fakeKeyStore) Sign(_ context.Context, payload []byte, handle string) (Signature, error) {
	s.mu.Lock()
	key, exists := s.keys[handle]
	s.mu.Unlock()
	if !exists {
		return Signature{}, fmt.Errorf("unknown key handle %q", handle)
	}
	return Signature{PublicKey: key.PublicKey(), Bytes: key.Sign(payload)}, nil
}

// scenario is a 2-of-3 governed account holding 20 hbar and an ungoverned
// recipient.
type scenario struct {
	ledger      *fakeLedger
	keys        *fakeKeyStore
	coordinator *Coordinator
	policy      Policy
	governed    hedera.AccountID
	recipient   hedera.AccountID
}

func newScenario(t *testing.T, options ...Option) scenario {
	t.Helper()
	ledger := newFakeLedger()
	keys := newFakeKeyStore()
	policy, err := NewPolicy(2, keys.generate(t, "a"), keys.generate(t, "b"), keys.generate(t, "c"))
	if err != nil {
		t.Fatalf("NewPolicy failed: %v", err)
	}
	coordinator, err := NewCoordinator(ledger, keys, options...)
	if err != nil {
		t.Fatalf("NewCoordinator failed: %v", err)
	}
	governed, err := coordinator.CreateGovernedAccount(context.Background(), policy, hedera.NewHbar(20))
	if err != nil {
		t.Fatalf("CreateGovernedAccount failed: %v", err)
	}
	recipientKey := keys.generate(t, "x")
	recipient := ledger.addAccount(SingleKeyPolicy(recipientKey), hedera.NewHbar(0))
	return scenario{
		ledger:      ledger,
		keys:        keys,
		coordinator: coordinator,
		policy:      policy,
		governed:    governed,
		recipient:   recipient,
	}
}

func (s scenario) freezeTransfer(t *testing.T, amount int64) *PendingTransaction {
	t.Helper()
	intent, err := s.coordinator.BuildIntent([]Transfer{
		{Account: Account{ID: s.governed, Policy: s.policy}, Amount: hedera.NewHbar(float64(-amount))},
		{Account: Account{ID: s.recipient}, Amount: hedera.NewHbar(float64(amount))},
	})
	if err != nil {
		t.Fatalf("BuildIntent failed: %v", err)
	}
	pending, err := s.coordinator.Freeze(context.Background(), intent)
	if err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}
	return pending
}
