// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/custodyvm/utils/units"
	"github.com/luxfi/custodyvm/vms/custodyvm/auth"
	"github.com/luxfi/custodyvm/vms/custodyvm/events"

	safemath "github.com/luxfi/custodyvm/utils/math"
)

func (l *Ledger) checkMintAmount(amount uint64) error {
	if amount < l.limits.MinMintAmount {
		return fmt.Errorf("%w: %d < %d", ErrAmountTooSmall, amount, l.limits.MinMintAmount)
	}
	if amount > l.limits.MaxSingleMint {
		return fmt.Errorf("%w: %d > %d", ErrAmountTooLarge, amount, l.limits.MaxSingleMint)
	}
	return nil
}

// checkMintable verifies that amount more can be minted by r against the
// reserve's current state.
func checkMintable(r *Reserve, amount uint64) (uint64, error) {
	newMinted, err := safemath.Add(r.Minted, amount)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExceedsReserveCap, err)
	}
	if newMinted > r.Backing {
		return 0, fmt.Errorf("%w: minted %d + %d > backing %d", ErrInsufficientBacking, r.Minted, amount, r.Backing)
	}
	if newMinted > r.MintingCap {
		return 0, fmt.Errorf("%w: minted %d + %d > cap %d", ErrExceedsReserveCap, r.Minted, amount, r.MintingCap)
	}
	return newMinted, nil
}

// Mint issues amount satoshis of tokens to recipient against the backing of
// addr. The caller must be the reserve or hold the minter capability.
func (l *Ledger) Mint(caller, addr, recipient ids.ShortID, amount uint64) ([]events.Event, error) {
	if err := l.requireSelfOr(caller, addr, auth.Minter); err != nil {
		return nil, err
	}
	if recipient == ids.ShortEmpty {
		return nil, ErrZeroAddress
	}
	r, err := l.active(addr)
	if err != nil {
		return nil, err
	}
	if err := l.checkMintAmount(amount); err != nil {
		return nil, err
	}
	newMinted, err := checkMintable(r, amount)
	if err != nil {
		return nil, err
	}
	newTotal, err := safemath.Add(l.totalMinted, amount)
	if err != nil {
		return nil, err
	}

	// The token ledger is the only fallible step with external effects, so it
	// runs before any local state changes.
	if err := l.tokens.IncreaseBalance(recipient, amount); err != nil {
		return nil, fmt.Errorf("couldn't credit %s: %w", recipient, err)
	}
	r.Minted = newMinted
	l.totalMinted = newTotal

	l.log.Debug("minted",
		log.Stringer("reserve", addr),
		log.Stringer("recipient", recipient),
		log.Stringer("amount", btcutil.Amount(amount)),
	)
	e := l.event(events.Minted, caller, addr)
	e.Account = recipient
	e.Amount = amount
	e.Balance = newMinted
	return []events.Event{e}, nil
}

// MintTokens mints an amount expressed in 18-decimal token units. Dust below
// one satoshi is truncated, never rounded up.
func (l *Ledger) MintTokens(caller, addr, recipient ids.ShortID, tokens *uint256.Int) ([]events.Event, error) {
	sats, err := units.TokensToSatoshis(tokens)
	if err != nil {
		return nil, err
	}
	return l.Mint(caller, addr, recipient, sats)
}

// BatchMint issues amounts[i] to recipients[i]. Either every mint applies or
// none does.
func (l *Ledger) BatchMint(caller, addr ids.ShortID, recipients []ids.ShortID, amounts []uint64) ([]events.Event, error) {
	if err := l.requireSelfOr(caller, addr, auth.Minter); err != nil {
		return nil, err
	}
	if len(recipients) != len(amounts) {
		return nil, fmt.Errorf("%w: %d recipients, %d amounts", ErrArrayLengthMismatch, len(recipients), len(amounts))
	}
	if len(recipients) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(recipients) > l.limits.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchSizeExceeded, len(recipients), l.limits.MaxBatchSize)
	}
	r, err := l.active(addr)
	if err != nil {
		return nil, err
	}
	for i, amount := range amounts {
		if recipients[i] == ids.ShortEmpty {
			return nil, fmt.Errorf("%w: recipient %d", ErrZeroAddress, i)
		}
		if err := l.checkMintAmount(amount); err != nil {
			return nil, fmt.Errorf("mint %d: %w", i, err)
		}
	}
	total, err := safemath.Sum(amounts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExceedsReserveCap, err)
	}
	newMinted, err := checkMintable(r, total)
	if err != nil {
		return nil, err
	}
	newTotal, err := safemath.Add(l.totalMinted, total)
	if err != nil {
		return nil, err
	}

	if err := l.tokens.IncreaseBalances(recipients, amounts); err != nil {
		return nil, fmt.Errorf("couldn't credit batch: %w", err)
	}
	r.Minted = newMinted
	l.totalMinted = newTotal

	evts := make([]events.Event, 0, len(recipients)+1)
	for i, recipient := range recipients {
		e := l.event(events.Minted, caller, addr)
		e.Account = recipient
		e.Amount = amounts[i]
		evts = append(evts, e)
	}
	e := l.event(events.BatchMinted, caller, addr)
	e.Amount = total
	e.Balance = newMinted
	e.Count = uint32(len(recipients))
	evts = append(evts, e)

	l.log.Debug("batch minted",
		log.Stringer("reserve", addr),
		log.Int("count", len(recipients)),
		log.Stringer("total", btcutil.Amount(total)),
	)
	return evts, nil
}

// Redeem reduces the minted amount of addr. Redemption only shrinks exposure
// and is therefore allowed while paused.
func (l *Ledger) Redeem(caller, addr ids.ShortID, amount uint64) ([]events.Event, error) {
	if err := l.requireSelfOr(caller, addr, auth.Redeemer); err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, ErrZeroAmount
	}
	r, err := l.authorized(addr)
	if err != nil {
		return nil, err
	}
	if amount > r.Minted {
		return nil, fmt.Errorf("%w: %d > %d", ErrInsufficientMinted, amount, r.Minted)
	}

	r.Minted -= amount
	l.totalMinted -= amount

	e := l.event(events.Redeemed, caller, addr)
	e.Amount = amount
	e.Balance = r.Minted
	return []events.Event{e}, nil
}

// RedeemTokens redeems an amount expressed in 18-decimal token units,
// truncating to whole satoshis.
func (l *Ledger) RedeemTokens(caller, addr ids.ShortID, tokens *uint256.Int) ([]events.Event, error) {
	sats, err := units.TokensToSatoshis(tokens)
	if err != nil {
		return nil, err
	}
	return l.Redeem(caller, addr, sats)
}

// BurnLoss burns amount of the reserve's own token balance without reducing
// its minted amount. Only reserves whose type supports losses may call it; the
// loss is realized later through DebitMinted.
func (l *Ledger) BurnLoss(caller, addr ids.ShortID, amount uint64) ([]events.Event, error) {
	if caller != addr {
		return nil, fmt.Errorf("%w: only the reserve may burn its losses", auth.ErrUnauthorized)
	}
	if amount == 0 {
		return nil, ErrZeroAmount
	}
	r, err := l.active(addr)
	if err != nil {
		return nil, err
	}
	info, err := l.types.Get(r.Type)
	if err != nil {
		return nil, err
	}
	if !info.SupportsLosses {
		return nil, fmt.Errorf("%w: %s", ErrLossesNotSupported, r.Type)
	}
	if err := l.tokens.Burn(addr, amount); err != nil {
		return nil, fmt.Errorf("couldn't burn: %w", err)
	}

	l.log.Warn("reserve burned loss",
		log.Stringer("reserve", addr),
		log.Stringer("amount", btcutil.Amount(amount)),
	)
	e := l.event(events.LossBurned, caller, addr)
	e.Amount = amount
	return []events.Event{e}, nil
}

// BurnTokenLoss is BurnLoss with an 18-decimal token amount.
func (l *Ledger) BurnTokenLoss(caller, addr ids.ShortID, tokens *uint256.Int) ([]events.Event, error) {
	sats, err := units.TokensToSatoshis(tokens)
	if err != nil {
		return nil, err
	}
	return l.BurnLoss(caller, addr, sats)
}

// DebitMinted realizes a confirmed loss by reducing the minted amount of addr.
func (l *Ledger) DebitMinted(caller, addr ids.ShortID, amount uint64) ([]events.Event, error) {
	if err := auth.RequireAny(l.auth, caller, auth.Governance, auth.Arbiter); err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, ErrZeroAmount
	}
	r, err := l.authorized(addr)
	if err != nil {
		return nil, err
	}
	if amount > r.Minted {
		return nil, fmt.Errorf("%w: %d > %d", ErrInsufficientMinted, amount, r.Minted)
	}

	r.Minted -= amount
	l.totalMinted -= amount

	e := l.event(events.MintedDebited, caller, addr)
	e.Amount = amount
	e.Balance = r.Minted
	return []events.Event{e}, nil
}

// CreditMinted increases the minted amount of addr without issuing tokens,
// for reconciling supply minted outside the ledger. Both invariants apply.
func (l *Ledger) CreditMinted(caller, addr ids.ShortID, amount uint64) ([]events.Event, error) {
	if err := auth.Require(l.auth, auth.Governance, caller); err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, ErrZeroAmount
	}
	r, err := l.authorized(addr)
	if err != nil {
		return nil, err
	}
	newMinted, err := checkMintable(r, amount)
	if err != nil {
		return nil, err
	}
	newTotal, err := safemath.Add(l.totalMinted, amount)
	if err != nil {
		return nil, err
	}

	r.Minted = newMinted
	l.totalMinted = newTotal

	e := l.event(events.MintedCredited, caller, addr)
	e.Amount = amount
	e.Balance = newMinted
	return []events.Event{e}, nil
}
