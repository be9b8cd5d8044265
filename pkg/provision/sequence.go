package provision

import (
	"context"
	"fmt"
	"strings"
	"sync"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/threshold"
)

const DefaultCount = 5

// DefaultInitialBalance funds each provisioned account.
var DefaultInitialBalance = hedera.NewHbar(500)

// AccountCreator is the subset of threshold.LedgerClient provisioning uses.
type AccountCreator interface {
	CreateAccount(ctx context.Context, policy threshold.Policy, initialBalance hedera.Hbar) (hedera.AccountID, error)
	QueryBalance(ctx context.Context, accountID hedera.AccountID) (hedera.Hbar, error)
}

// KeyRegistry receives every generated key. *keystore.Local satisfies it.
type KeyRegistry interface {
	Add(handle string, key hedera.PrivateKey) (hedera.PublicKey, error)
}

// Options configures a Sequence. Zero values take the defaults.
type Options struct {
	Count          int
	InitialBalance hedera.Hbar
	// HandlePrefix names keys in the registry: <prefix><index>.
	HandlePrefix string
	Registry     KeyRegistry
}

// Account is one provisioned participant.
type Account struct {
	Index      int
	AccountID  hedera.AccountID
	Handle     string
	PublicKey  hedera.PublicKey
	PrivateKey hedera.PrivateKey
	Balance    hedera.Hbar
}

// EnvLines renders the account as ACCOUNT_<n>_ID and ACCOUNT_<n>_PRIVATE_KEY
// assignments for a .env file.
func (a Account) EnvLines() []string {
	return []string{
		fmt.Sprintf("ACCOUNT_%d_ID=%s", a.Index, a.AccountID.String()),
		fmt.Sprintf("ACCOUNT_%d_PRIVATE_KEY=%s", a.Index, a.PrivateKey.String()),
	}
}

// Sequence creates Options.Count accounts in index order.
type Sequence struct {
	mu       sync.Mutex
	creator  AccountCreator
	options  Options
	accounts []Account
	pending  *hedera.PrivateKey
}

// NewSequence prepares the creation of options.Count accounts.
func NewSequence(creator AccountCreator, options Options) (*Sequence, error) {
	if creator == nil {
		return nil, fmt.Errorf("account creator is required")
	}
	if options.Count == 0 {
		options.Count = DefaultCount
	}
	if options.Count < 0 {
		return nil, fmt.Errorf("account count cannot be negative")
	}
	if options.InitialBalance.AsTinybar() == 0 {
		options.InitialBalance = DefaultInitialBalance
	}
	if options.InitialBalance.AsTinybar() < 0 {
		return nil, fmt.Errorf("initial balance cannot be negative")
	}
	if strings.TrimSpace(options.HandlePrefix) == "" {
		options.HandlePrefix = "account-"
	}
	return &Sequence{creator: creator, options: options}, nil
}

// Next creates the next account. It returns false once every account
// exists. A key generated for a failed attempt is reused on retry.
func (s *Sequence) Next(ctx context.Context) (Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.accounts) >= s.options.Count {
		return Account{}, false, nil
	}
	index := len(s.accounts) + 1

	if s.pending == nil {
		key, err := hedera.PrivateKeyGenerateEd25519()
		if err != nil {
			return Account{}, true, fmt.Errorf("failed to generate key for account %d: %w", index, err)
		}
		s.pending = &key
	}
	key := *s.pending
	publicKey := key.PublicKey()

	accountID, err := s.creator.CreateAccount(ctx, threshold.SingleKeyPolicy(publicKey), s.options.InitialBalance)
	if err != nil {
		return Account{}, true, fmt.Errorf("failed to create account %d: %w", index, err)
	}
	s.pending = nil

	account := Account{
		Index:      index,
		AccountID:  accountID,
		Handle:     fmt.Sprintf("%s%d", s.options.HandlePrefix, index),
		PublicKey:  publicKey,
		PrivateKey: key,
	}
	// The account exists from here on; later failures must not lose it.
	s.accounts = append(s.accounts, account)

	if s.options.Registry != nil {
		if _, err := s.options.Registry.Add(account.Handle, key); err != nil {
			return account, true, fmt.Errorf("failed to register key for account %d: %w", index, err)
		}
	}
	balance, err := s.creator.QueryBalance(ctx, accountID)
	if err != nil {
		return account, true, fmt.Errorf("failed to query balance of account %d: %w", index, err)
	}
	account.Balance = balance
	s.accounts[len(s.accounts)-1] = account
	return account, true, nil
}

// Run calls Next until every account exists.
func (s *Sequence) Run(ctx context.Context) ([]Account, error) {
	for {
		_, more, err := s.Next(ctx)
		if err != nil {
			return s.Accounts(), err
		}
		if !more {
			return s.Accounts(), nil
		}
	}
}

// Accounts returns the accounts created so far.
func (s *Sequence) Accounts() []Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Account(nil), s.accounts...)
}

// Reset forgets every created account so a new batch can be provisioned.
func (s *Sequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = nil
	s.pending = nil
}
