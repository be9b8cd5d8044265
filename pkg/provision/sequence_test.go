package provision

import (
	"context"
	"errors"
	"strings"
	"testing"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/keystore"
	"github.com/hashgraph-online/multisig-sdk-go/pkg/threshold"
)

type fakeCreator struct {
	next     uint64
	failAt   int
	calls    int
	keys     []string
	balances map[string]hedera.Hbar
}

func (c *fakeCreator) CreateAccount(_ context.Context, policy threshold.Policy, initialBalance hedera.Hbar) (hedera.AccountID, error) {
	c.calls++
	c.keys = append(c.keys, policy.Keys()[0].String())
	if c.calls == c.failAt {
		return hedera.AccountID{}, errors.New("busy")
	}
	c.next++
	accountID := hedera.AccountID{Account: 7000 + c.next}
	if c.balances == nil {
		c.balances = map[string]hedera.Hbar{}
	}
	c.balances[accountID.String()] = initialBalance
	return accountID, nil
}

func (c *fakeCreator) QueryBalance(_ context.Context, accountID hedera.AccountID) (hedera.Hbar, error) {
	return c.balances[accountID.String()], nil
}

func TestSequenceRun(t *testing.T) {
	creator := &fakeCreator{}
	store := keystore.NewLocal()
	sequence, err := NewSequence(creator, Options{Count: 3, Registry: store})
	if err != nil {
		t.Fatalf("NewSequence failed: %v", err)
	}

	accounts, err := sequence.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(accounts) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(accounts))
	}
	for index, account := range accounts {
		if account.Index != index+1 {
			t.Fatalf("unexpected index %d at position %d", account.Index, index)
		}
		if account.Balance.AsTinybar() != DefaultInitialBalance.AsTinybar() {
			t.Fatalf("unexpected balance %s", account.Balance.String())
		}
	}
	if handles := store.Handles(); len(handles) != 3 || handles[0] != "account-1" {
		t.Fatalf("unexpected registry handles: %v", handles)
	}

	lines := accounts[1].EnvLines()
	if lines[0] != "ACCOUNT_2_ID=0.0.7002" || !strings.HasPrefix(lines[1], "ACCOUNT_2_PRIVATE_KEY=") {
		t.Fatalf("unexpected env lines: %v", lines)
	}
	if _, more, _ := sequence.Next(context.Background()); more {
		t.Fatalf("expected exhausted sequence")
	}
}

func TestSequenceRetryReusesKey(t *testing.T) {
	creator := &fakeCreator{failAt: 2}
	sequence, err := NewSequence(creator, Options{Count: 2, InitialBalance: hedera.NewHbar(1)})
	if err != nil {
		t.Fatalf("NewSequence failed: %v", err)
	}

	if _, err := sequence.Run(context.Background()); err == nil {
		t.Fatalf("expected failure on second account")
	}
	accounts, err := sequence.Run(context.Background())
	if err != nil {
		t.Fatalf("resumed Run failed: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
	if creator.keys[1] != creator.keys[2] {
		t.Fatalf("retry generated a new key")
	}

	sequence.Reset()
	if len(sequence.Accounts()) != 0 {
		t.Fatalf("Reset did not clear accounts")
	}
}

func TestNewSequenceValidation(t *testing.T) {
	if _, err := NewSequence(nil, Options{}); err == nil {
		t.Fatalf("expected error without creator")
	}
	if _, err := NewSequence(&fakeCreator{}, Options{Count: -1}); err == nil {
		t.Fatalf("expected error for negative count")
	}
	if _, err := NewSequence(&fakeCreator{}, Options{InitialBalance: hedera.NewHbar(-1)}); err == nil {
		t.Fatalf("expected error for negative balance")
	}
}
