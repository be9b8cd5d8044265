package token

import (
	"context"
	"fmt"
	"sync"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// Minter mints one NFT. *Client satisfies it.
type Minter interface {
	Mint(ctx context.Context, tokenID string, supplyKey hedera.PrivateKey, metadata []byte) (int64, error)
}

// MintSequence mints a fixed number of NFTs one per Next call. A failed
// Next can be retried; Reset starts over.
type MintSequence struct {
	mu        sync.Mutex
	minter    Minter
	tokenID   string
	supplyKey hedera.PrivateKey
	total     int
	serials   []int64
}

// NewMintSequence prepares total mints of tokenID signed by supplyKey.
func NewMintSequence(minter Minter, tokenID string, supplyKey hedera.PrivateKey, total int) (*MintSequence, error) {
	if minter == nil {
		return nil, fmt.Errorf("minter is required")
	}
	if total <= 0 {
		return nil, fmt.Errorf("mint count must be positive")
	}
	return &MintSequence{
		minter:    minter,
		tokenID:   tokenID,
		supplyKey: supplyKey,
		total:     total,
	}, nil
}

// Next mints the next NFT. It returns false once every NFT was minted.
func (s *MintSequence) Next(ctx context.Context) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := len(s.serials)
	if index >= s.total {
		return 0, false, nil
	}
	serial, err := s.minter.Mint(ctx, s.tokenID, s.supplyKey, []byte(fmt.Sprintf("NFT %d", index)))
	if err != nil {
		return 0, true, fmt.Errorf("failed to mint NFT %d of %d: %w", index+1, s.total, err)
	}
	s.serials = append(s.serials, serial)
	return serial, true, nil
}

// Run calls Next until the sequence is exhausted.
func (s *MintSequence) Run(ctx context.Context) ([]int64, error) {
	for {
		_, more, err := s.Next(ctx)
		if err != nil {
			return s.Serials(), err
		}
		if !more {
			return s.Serials(), nil
		}
	}
}

// Serials returns the serial numbers minted so far.
func (s *MintSequence) Serials() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.serials...)
}

// Remaining returns how many mints are left.
func (s *MintSequence) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total - len(s.serials)
}

// Reset forgets every minted serial.
func (s *MintSequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serials = nil
}
