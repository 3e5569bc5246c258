// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package custodyvm

import (
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/custodyvm/vms/custodyvm/ledger"
	"github.com/luxfi/custodyvm/vms/custodyvm/oracle"
	"github.com/luxfi/custodyvm/vms/custodyvm/qc"
	"github.com/luxfi/custodyvm/vms/custodyvm/reservetype"
	"github.com/luxfi/custodyvm/vms/custodyvm/watchdog"

	safemath "github.com/luxfi/custodyvm/utils/math"
)

// Solvency is the result of a permissionless solvency check.
type Solvency struct {
	ledger.Violation

	// OracleBalance is the oracle consensus balance, zero without consensus.
	OracleBalance uint64 `json:"oracleBalance"`
	// AttestedShortfall is how far minted exceeds OracleBalance. It is zero
	// without consensus.
	AttestedShortfall uint64 `json:"attestedShortfall"`
	// Stale is set when the oracle has no fresh consensus for the reserve.
	Stale bool `json:"stale"`
}

// Insolvent reports whether the reserve breaks an invariant or mints more
// than its custodian is attested to hold.
func (s Solvency) Insolvent() bool {
	return s.Violated() || s.AttestedShortfall > 0
}

// CheckSolvency reports, without side effects, whether addr covers what it
// minted and whether its attested balance is stale.
func (e *Engine) CheckSolvency(addr ids.ShortID) (Solvency, error) {
	e.lock.RLock()
	defer e.lock.RUnlock()

	v, err := e.ledger.CheckViolation(addr)
	if err != nil {
		return Solvency{}, err
	}
	balance, stale := e.oracle.ReserveBalanceAndStaleness(addr)
	s := Solvency{
		Violation:     v,
		OracleBalance: balance,
		Stale:         stale,
	}
	if _, ok := e.oracle.Consensus(addr); ok {
		r, _ := e.ledger.Reserve(addr)
		s.AttestedShortfall = safemath.SaturatingSub(r.Minted, balance)
	}
	if s.Insolvent() {
		e.log.Warn("reserve violates solvency",
			log.Stringer("reserve", addr),
			log.Uint64("backingShortfall", v.BackingShortfall),
			log.Uint64("capacityShortfall", v.CapacityShortfall),
			log.Uint64("attestedShortfall", s.AttestedShortfall),
		)
	}
	return s, nil
}

func (e *Engine) Reserve(addr ids.ShortID) (ledger.Reserve, bool) {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.ledger.Reserve(addr)
}

func (e *Engine) ReserveAddresses() []ids.ShortID {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.ledger.ReserveAddresses()
}

func (e *Engine) ReserveType(tag reservetype.Tag) (reservetype.Info, error) {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.types.Get(tag)
}

func (e *Engine) TotalMinted() uint64 {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.ledger.TotalMinted()
}

func (e *Engine) SystemPaused() bool {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.ledger.SystemPaused()
}

func (e *Engine) QC(addr ids.ShortID) (qc.QC, bool) {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.qcs.QC(addr)
}

func (e *Engine) QCs() []ids.ShortID {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.qcs.QCs()
}

func (e *Engine) Wallet(btcAddress string) (qc.Wallet, bool) {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.qcs.Wallet(btcAddress)
}

func (e *Engine) Wallets(addr ids.ShortID) []qc.Wallet {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.qcs.Wallets(addr)
}

func (e *Engine) AvailableMintingCapacity(addr ids.ShortID) (uint64, error) {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.qcs.AvailableMintingCapacity(addr)
}

func (e *Engine) ReserveBalanceAndStaleness(addr ids.ShortID) (uint64, bool) {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.oracle.ReserveBalanceAndStaleness(addr)
}

func (e *Engine) Consensus(addr ids.ShortID) (oracle.Consensus, bool) {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.oracle.Consensus(addr)
}

func (e *Engine) Attestations(addr ids.ShortID) []oracle.Attestation {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.oracle.Attestations(addr)
}

func (e *Engine) PendingAttesters(addr ids.ShortID) []ids.ShortID {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.oracle.PendingAttesters(addr)
}

func (e *Engine) OracleParams() oracle.Params {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.oracle.Params()
}

func (e *Engine) Proposal(proposalID ids.ID) (watchdog.Proposal, bool) {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.watchdogs.Proposal(proposalID)
}

func (e *Engine) ProposalIDs() []ids.ID {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.watchdogs.ProposalIDs()
}

func (e *Engine) Watchdogs() []ids.ShortID {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.watchdogs.Watchdogs()
}

func (e *Engine) WatchdogParams() watchdog.Params {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.watchdogs.Params()
}

func (e *Engine) ApprovedTargets() []ids.ShortID {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.watchdogs.ApprovedTargets()
}
