// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/ids"

	safemath "github.com/luxfi/custodyvm/utils/math"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

var _ TokenLedger = (*Balances)(nil)

// Balances is an in-memory TokenLedger.
type Balances struct {
	mu       sync.RWMutex
	balances map[ids.ShortID]uint64
	supply   uint64
}

func NewBalances() *Balances {
	return &Balances{
		balances: make(map[ids.ShortID]uint64),
	}
}

func (b *Balances) IncreaseBalance(account ids.ShortID, amount uint64) error {
	return b.IncreaseBalances([]ids.ShortID{account}, []uint64{amount})
}

func (b *Balances) IncreaseBalances(accounts []ids.ShortID, amounts []uint64) error {
	if len(accounts) != len(amounts) {
		return ErrArrayLengthMismatch
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Stage the new balances so a failure leaves nothing applied.
	staged := make(map[ids.ShortID]uint64, len(accounts))
	supply := b.supply
	for i, account := range accounts {
		current, ok := staged[account]
		if !ok {
			current = b.balances[account]
		}
		next, err := safemath.Add(current, amounts[i])
		if err != nil {
			return fmt.Errorf("balance of %s: %w", account, err)
		}
		staged[account] = next
		supply, err = safemath.Add(supply, amounts[i])
		if err != nil {
			return fmt.Errorf("supply: %w", err)
		}
	}
	for account, balance := range staged {
		b.balances[account] = balance
	}
	b.supply = supply
	return nil
}

func (b *Balances) Burn(account ids.ShortID, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	balance := b.balances[account]
	if amount > balance {
		return fmt.Errorf("%w: %s has %d, burning %d", ErrInsufficientBalance, account, balance, amount)
	}
	b.balances[account] = balance - amount
	b.supply -= amount
	return nil
}

// BalanceOf returns the balance of account.
func (b *Balances) BalanceOf(account ids.ShortID) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[account]
}

// Supply returns the total balance across all accounts.
func (b *Balances) Supply() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.supply
}
