// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package qc

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/custodyvm/vms/custodyvm/auth"
	"github.com/luxfi/custodyvm/vms/custodyvm/events"
)

// validateAddress checks that address decodes as a Bitcoin address on the
// configured network and returns its canonical encoding.
func (lc *Lifecycle) validateAddress(address string) (string, error) {
	decoded, err := btcutil.DecodeAddress(address, lc.network)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidWalletAddress, address, err)
	}
	if !decoded.IsForNet(lc.network) {
		return "", fmt.Errorf("%w: %q is not a %s address", ErrInvalidWalletAddress, address, lc.network.Name)
	}
	return decoded.EncodeAddress(), nil
}

// CanonicalAddress returns the canonical encoding of a Bitcoin address on the
// configured network.
func (lc *Lifecycle) CanonicalAddress(address string) (string, error) {
	return lc.validateAddress(address)
}

func (lc *Lifecycle) wallet(address string) (*Wallet, error) {
	canonical, err := lc.validateAddress(address)
	if err != nil {
		return nil, err
	}
	w, ok := lc.wallets[canonical]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWalletNotRegistered, canonical)
	}
	return w, nil
}

// requireOwnerOr passes when caller is the owning custodian or holds
// governance or registrar rights.
func (lc *Lifecycle) requireOwnerOr(caller ids.ShortID, w *Wallet) error {
	if caller == w.QC {
		return nil
	}
	return auth.RequireAny(lc.auth, caller, auth.Governance, auth.Registrar)
}

// RegisterWallet attaches a Bitcoin wallet to qc after verifying, through an
// SPV proof, that qc signed challenge from it.
func (lc *Lifecycle) RegisterWallet(caller, qc ids.ShortID, btcAddress string, challenge, tx, proof []byte) ([]events.Event, error) {
	if caller != qc {
		if err := auth.RequireAny(lc.auth, caller, auth.Governance, auth.Registrar); err != nil {
			return nil, err
		}
	}
	q, err := lc.registered(qc)
	if err != nil {
		return nil, err
	}
	if q.Status == Revoked {
		return nil, fmt.Errorf("%w: %s", ErrQCRevoked, qc)
	}
	info, err := lc.reserveType(qc)
	if err != nil {
		return nil, err
	}
	if !info.RequiresBtcAddress {
		return nil, fmt.Errorf("%w: %s", ErrWalletsNotSupported, qc)
	}
	address, err := lc.validateAddress(btcAddress)
	if err != nil {
		return nil, err
	}
	if w, ok := lc.wallets[address]; ok && w.Status != WalletDeregistered {
		return nil, fmt.Errorf("%w: %s belongs to %s", ErrWalletAlreadyRegistered, address, w.QC)
	}
	if !lc.spv.VerifyWalletControl(qc, address, challenge, tx, proof) {
		return nil, fmt.Errorf("%w: %s", ErrSPVVerificationFailed, address)
	}

	lc.wallets[address] = &Wallet{
		QC:           qc,
		Address:      address,
		Status:       WalletActive,
		RegisteredAt: lc.clock.Time(),
	}
	lc.log.Info("wallet registered",
		log.Stringer("qc", qc),
		log.String("wallet", address),
	)
	e := lc.event(events.WalletRegistered, caller, qc)
	e.Wallet = address
	return []events.Event{e}, nil
}

// RequestWalletDeregistration marks an active wallet for removal. Its balance
// keeps counting toward backing until FinalizeWalletDeregistration.
func (lc *Lifecycle) RequestWalletDeregistration(caller ids.ShortID, btcAddress string) ([]events.Event, error) {
	w, err := lc.wallet(btcAddress)
	if err != nil {
		return nil, err
	}
	if err := lc.requireOwnerOr(caller, w); err != nil {
		return nil, err
	}
	if w.Status != WalletActive {
		return nil, fmt.Errorf("%w: %s is %s", ErrWalletNotActive, w.Address, w.Status)
	}

	w.Status = WalletPendingDeregistration
	lc.log.Info("wallet deregistration requested",
		log.Stringer("qc", w.QC),
		log.String("wallet", w.Address),
	)
	e := lc.event(events.WalletDeregistrationRequested, caller, w.QC)
	e.Wallet = w.Address
	return []events.Event{e}, nil
}

// CancelWalletDeregistration returns a pending wallet to active.
func (lc *Lifecycle) CancelWalletDeregistration(caller ids.ShortID, btcAddress string) ([]events.Event, error) {
	w, err := lc.wallet(btcAddress)
	if err != nil {
		return nil, err
	}
	if err := lc.requireOwnerOr(caller, w); err != nil {
		return nil, err
	}
	if w.Status != WalletPendingDeregistration {
		return nil, fmt.Errorf("%w: %s is %s", ErrWalletNotPending, w.Address, w.Status)
	}

	w.Status = WalletActive
	lc.log.Info("wallet deregistration cancelled",
		log.Stringer("qc", w.QC),
		log.String("wallet", w.Address),
	)
	e := lc.event(events.WalletDeregistrationCancelled, caller, w.QC)
	e.Wallet = w.Address
	return []events.Event{e}, nil
}

// FinalizeWalletDeregistration removes a pending wallet and sets the
// custodian's backing to newBacking, the attested balance without the
// wallet. It fails if the custodian would no longer cover what it minted.
func (lc *Lifecycle) FinalizeWalletDeregistration(caller ids.ShortID, btcAddress string, newBacking uint64) ([]events.Event, error) {
	if err := auth.RequireAny(lc.auth, caller, auth.Arbiter, auth.Governance); err != nil {
		return nil, err
	}
	w, err := lc.wallet(btcAddress)
	if err != nil {
		return nil, err
	}
	if w.Status != WalletPendingDeregistration {
		return nil, fmt.Errorf("%w: %s is %s", ErrWalletNotPending, w.Address, w.Status)
	}
	r, ok := lc.ledger.Reserve(w.QC)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrQCNotRegistered, w.QC)
	}
	if newBacking < r.Minted {
		lc.log.Warn("wallet deregistration refused",
			log.Stringer("qc", w.QC),
			log.String("wallet", w.Address),
			log.Stringer("newBacking", btcutil.Amount(newBacking)),
			log.Stringer("minted", btcutil.Amount(r.Minted)),
		)
		return nil, fmt.Errorf("%w: backing %d < minted %d", ErrQCWouldBecomeInsolvent, newBacking, r.Minted)
	}

	evts, err := lc.ledger.SyncBacking(caller, w.QC, newBacking)
	if err != nil {
		return nil, err
	}
	w.Status = WalletDeregistered

	lc.log.Info("wallet deregistered",
		log.Stringer("qc", w.QC),
		log.String("wallet", w.Address),
	)
	e := lc.event(events.WalletDeregistered, caller, w.QC)
	e.Wallet = w.Address
	e.Balance = newBacking
	return append(evts, e), nil
}
