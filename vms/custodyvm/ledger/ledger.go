// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger tracks, per reserve, how much has been minted against how
// much Bitcoin backing has been attested, and gates every mint and redemption
// on the solvency invariants
//
//	minted <= backing
//	minted <= mintingCap
//
// which every call preserves. The one exception is ApplyAttestedBacking: the
// oracle may report less than is minted, which is recorded as reported and
// pauses the reserve. Every operation validates completely before it mutates
// anything, so a failed call leaves the ledger exactly as it was.
//
// A Ledger is not safe for concurrent use; the owning engine serializes calls.
package ledger

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/custodyvm/utils/timer/mockable"
	"github.com/luxfi/custodyvm/vms/custodyvm/auth"
	"github.com/luxfi/custodyvm/vms/custodyvm/events"
	"github.com/luxfi/custodyvm/vms/custodyvm/reservetype"

	safemath "github.com/luxfi/custodyvm/utils/math"
)

// ReasonAttestedShortfall is the pause reason recorded when attested backing
// falls below minted.
const ReasonAttestedShortfall = "attested backing below minted"

// TokenLedger moves token balances. Amounts are in satoshis.
type TokenLedger interface {
	IncreaseBalance(account ids.ShortID, amount uint64) error
	// IncreaseBalances credits every account or none of them.
	IncreaseBalances(accounts []ids.ShortID, amounts []uint64) error
	Burn(account ids.ShortID, amount uint64) error
}

// Limits bound individual mint operations.
type Limits struct {
	MinMintAmount uint64 `json:"minMintAmount"`
	MaxSingleMint uint64 `json:"maxSingleMint"`
	MaxBatchSize  int    `json:"maxBatchSize"`
}

// DefaultLimits returns 0.0001 BTC minimum, 100 BTC maximum and batches of
// at most 100 mints.
func DefaultLimits() Limits {
	return Limits{
		MinMintAmount: 10_000,
		MaxSingleMint: 100 * 100_000_000,
		MaxBatchSize:  100,
	}
}

// Reserve is the accounting state of one custodian.
type Reserve struct {
	Authorized bool            `json:"authorized"`
	Type       reservetype.Tag `json:"type"`
	MintingCap uint64          `json:"mintingCap"`
	Backing    uint64          `json:"backing"`
	Minted     uint64          `json:"minted"`
	Paused     bool            `json:"paused"`
}

// Headroom is how much more may be minted before either invariant binds.
func (r Reserve) Headroom() uint64 {
	return min(
		safemath.SaturatingSub(r.MintingCap, r.Minted),
		safemath.SaturatingSub(r.Backing, r.Minted),
	)
}

// Ledger is the reserve accounting core.
type Ledger struct {
	types  *reservetype.Registry
	auth   auth.AuthorizationProvider
	tokens TokenLedger
	limits Limits
	clock  *mockable.Clock
	log    log.Logger

	reserves     map[ids.ShortID]*Reserve
	totalMinted  uint64
	systemPaused bool
}

// New returns an empty ledger.
func New(
	types *reservetype.Registry,
	authz auth.AuthorizationProvider,
	tokens TokenLedger,
	limits Limits,
	clock *mockable.Clock,
	logger log.Logger,
) *Ledger {
	return &Ledger{
		types:    types,
		auth:     authz,
		tokens:   tokens,
		limits:   limits,
		clock:    clock,
		log:      logger,
		reserves: make(map[ids.ShortID]*Reserve),
	}
}

// Limits returns the configured mint limits.
func (l *Ledger) Limits() Limits {
	return l.limits
}

// Types returns the reserve type registry the ledger validates against.
func (l *Ledger) Types() *reservetype.Registry {
	return l.types
}

// Reserve returns a copy of the reserve at addr.
func (l *Ledger) Reserve(addr ids.ShortID) (Reserve, bool) {
	r, ok := l.reserves[addr]
	if !ok {
		return Reserve{}, false
	}
	return *r, true
}

// ReserveAddresses returns every address that has ever been assigned a type,
// sorted.
func (l *Ledger) ReserveAddresses() []ids.ShortID {
	addrs := make([]ids.ShortID, 0, len(l.reserves))
	for addr := range l.reserves {
		addrs = append(addrs, addr)
	}
	slices.SortFunc(addrs, func(a, b ids.ShortID) int { return bytes.Compare(a[:], b[:]) })
	return addrs
}

// TotalMinted is the sum of Minted over all reserves.
func (l *Ledger) TotalMinted() uint64 {
	return l.totalMinted
}

// SystemPaused reports whether every reserve is blocked.
func (l *Ledger) SystemPaused() bool {
	return l.systemPaused
}

// Load replaces the ledger contents with previously persisted state.
// totalMinted is recomputed from the reserves.
func (l *Ledger) Load(reserves map[ids.ShortID]Reserve, systemPaused bool) error {
	loaded := make(map[ids.ShortID]*Reserve, len(reserves))
	var total uint64
	for addr, r := range reserves {
		// An attested shortfall is only ever stored on a paused reserve.
		if r.Minted > r.MintingCap || (r.Minted > r.Backing && !r.Paused) {
			return fmt.Errorf("%w: persisted reserve %s violates solvency", ErrInsufficientBacking, addr)
		}
		var err error
		total, err = safemath.Add(total, r.Minted)
		if err != nil {
			return err
		}
		loaded[addr] = &r
	}
	l.reserves = loaded
	l.totalMinted = total
	l.systemPaused = systemPaused
	return nil
}

func (l *Ledger) event(t events.Type, actor, reserve ids.ShortID) events.Event {
	return events.Event{
		Type:    t,
		Time:    l.clock.Time(),
		Actor:   actor,
		Reserve: reserve,
	}
}

// authorized returns the reserve at addr if it is currently authorized.
func (l *Ledger) authorized(addr ids.ShortID) (*Reserve, error) {
	r, ok := l.reserves[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrReserveNotFound, addr)
	}
	if !r.Authorized {
		return nil, fmt.Errorf("%w: %s", ErrNotAuthorized, addr)
	}
	return r, nil
}

// active returns the reserve at addr if it is authorized and not paused.
func (l *Ledger) active(addr ids.ShortID) (*Reserve, error) {
	if l.systemPaused {
		return nil, ErrSystemPaused
	}
	r, err := l.authorized(addr)
	if err != nil {
		return nil, err
	}
	if r.Paused {
		return nil, fmt.Errorf("%w: %s", ErrReservePaused, addr)
	}
	return r, nil
}

// requireSelfOr passes when caller is the reserve itself or holds capability.
func (l *Ledger) requireSelfOr(caller, addr ids.ShortID, capability auth.Capability) error {
	if caller == addr {
		return nil
	}
	return auth.Require(l.auth, capability, caller)
}

// AuthorizeReserve authorizes addr to mint up to mintingCap under type tag.
// The first authorization permanently binds addr to tag.
func (l *Ledger) AuthorizeReserve(caller, addr ids.ShortID, mintingCap uint64, tag reservetype.Tag) ([]events.Event, error) {
	if err := auth.RequireAny(l.auth, caller, auth.Governance, auth.Registrar); err != nil {
		return nil, err
	}
	if addr == ids.ShortEmpty {
		return nil, ErrZeroAddress
	}
	if mintingCap == 0 {
		return nil, ErrZeroMintingCap
	}
	info, err := l.types.Get(tag)
	if err != nil {
		return nil, err
	}
	if info.RequiresWrapper && mintingCap < info.MinCapFloor {
		return nil, fmt.Errorf("%w: %d < %d for %s", ErrBelowMinimumCap, mintingCap, info.MinCapFloor, tag)
	}

	existing, seen := l.reserves[addr]
	switch {
	case seen && existing.Authorized:
		return nil, fmt.Errorf("%w: %s", ErrAlreadyAuthorized, addr)
	case seen && existing.Type != tag:
		return nil, fmt.Errorf("%w: %s is %s, requested %s", ErrReserveTypeMismatch, addr, existing.Type, tag)
	}

	var evts []events.Event
	if !seen {
		existing = &Reserve{Type: tag}
		l.reserves[addr] = existing
		e := l.event(events.ReserveTypeAssigned, caller, addr)
		e.Kind = string(tag)
		evts = append(evts, e)
	}
	existing.Authorized = true
	existing.MintingCap = mintingCap

	e := l.event(events.ReserveAuthorized, caller, addr)
	e.Kind = string(tag)
	e.Amount = mintingCap
	evts = append(evts, e)

	l.log.Info("reserve authorized",
		log.Stringer("reserve", addr),
		log.String("type", string(tag)),
		log.Stringer("mintingCap", btcutil.Amount(mintingCap)),
	)
	return evts, nil
}

// DeauthorizeReserve soft-deletes addr. Its type assignment is retained.
func (l *Ledger) DeauthorizeReserve(caller, addr ids.ShortID) ([]events.Event, error) {
	if err := auth.RequireAny(l.auth, caller, auth.Governance, auth.Registrar); err != nil {
		return nil, err
	}
	r, err := l.authorized(addr)
	if err != nil {
		return nil, err
	}
	if r.Minted > 0 {
		return nil, fmt.Errorf("%w: %s has %d", ErrOutstandingMinted, addr, r.Minted)
	}

	r.Authorized = false
	r.MintingCap = 0
	r.Backing = 0
	r.Paused = false

	l.log.Info("reserve deauthorized", log.Stringer("reserve", addr))
	return []events.Event{l.event(events.ReserveDeauthorized, caller, addr)}, nil
}

// UpdateBacking sets the attested backing of addr. The caller must be the
// reserve itself or hold the oracle-sync capability.
func (l *Ledger) UpdateBacking(caller, addr ids.ShortID, backing uint64) ([]events.Event, error) {
	if err := l.requireSelfOr(caller, addr, auth.OracleSync); err != nil {
		return nil, err
	}
	return l.SyncBacking(caller, addr, backing)
}

// SyncBacking sets the backing of addr on behalf of a component that has
// already authorized actor.
func (l *Ledger) SyncBacking(actor, addr ids.ShortID, backing uint64) ([]events.Event, error) {
	r, err := l.active(addr)
	if err != nil {
		return nil, err
	}
	if backing < r.Minted {
		return nil, fmt.Errorf("%w: backing %d below minted %d", ErrInsufficientBacking, backing, r.Minted)
	}
	info, err := l.types.Get(r.Type)
	if err != nil {
		return nil, err
	}
	if limit, bounded := info.MaxBacking(r.MintingCap); bounded && backing > limit {
		return nil, fmt.Errorf("%w: %d > %d", ErrExceedsMaxBackingRatio, backing, limit)
	}

	previous := r.Backing
	r.Backing = backing

	e := l.event(events.BackingUpdated, actor, addr)
	e.Balance = backing
	e.Amount = previous
	return []events.Event{e}, nil
}

// ApplyAttestedBacking writes the oracle-attested backing of addr as reported,
// even below what is minted. A shortfall pauses the reserve so nothing more is
// minted against it until governance unpauses it.
func (l *Ledger) ApplyAttestedBacking(actor, addr ids.ShortID, backing uint64) ([]events.Event, error) {
	r, err := l.authorized(addr)
	if err != nil {
		return nil, err
	}
	info, err := l.types.Get(r.Type)
	if err != nil {
		return nil, err
	}
	if limit, bounded := info.MaxBacking(r.MintingCap); bounded && backing > limit {
		return nil, fmt.Errorf("%w: %d > %d", ErrExceedsMaxBackingRatio, backing, limit)
	}

	previous := r.Backing
	r.Backing = backing

	e := l.event(events.BackingUpdated, actor, addr)
	e.Balance = backing
	e.Amount = previous
	evts := []events.Event{e}
	if backing >= r.Minted || r.Paused {
		return evts, nil
	}

	r.Paused = true
	l.log.Warn("attested backing below minted, reserve paused",
		log.Stringer("reserve", addr),
		log.Stringer("backing", btcutil.Amount(backing)),
		log.Stringer("minted", btcutil.Amount(r.Minted)),
	)
	p := l.event(events.ReservePaused, actor, addr)
	p.Reason = ReasonAttestedShortfall
	return append(evts, p), nil
}

// SetMintingCap changes the minting cap of addr. The cap may not drop below
// what is already minted.
func (l *Ledger) SetMintingCap(caller, addr ids.ShortID, mintingCap uint64) ([]events.Event, error) {
	if err := auth.RequireAny(l.auth, caller, auth.Governance, auth.Registrar); err != nil {
		return nil, err
	}
	r, err := l.authorized(addr)
	if err != nil {
		return nil, err
	}
	if mintingCap == 0 {
		return nil, ErrZeroMintingCap
	}
	if mintingCap < r.Minted {
		return nil, fmt.Errorf("%w: %d < %d", ErrCapBelowMinted, mintingCap, r.Minted)
	}
	info, err := l.types.Get(r.Type)
	if err != nil {
		return nil, err
	}
	if info.RequiresWrapper && mintingCap < info.MinCapFloor {
		return nil, fmt.Errorf("%w: %d < %d", ErrBelowMinimumCap, mintingCap, info.MinCapFloor)
	}

	r.MintingCap = mintingCap
	e := l.event(events.MintingCapUpdated, caller, addr)
	e.Amount = mintingCap
	return []events.Event{e}, nil
}

// CheckViolation reports, without side effects, whether the reserve at addr
// currently breaks an invariant. It is callable by anyone.
func (l *Ledger) CheckViolation(addr ids.ShortID) (Violation, error) {
	r, ok := l.reserves[addr]
	if !ok {
		return Violation{}, fmt.Errorf("%w: %s", ErrReserveNotFound, addr)
	}
	return Violation{
		Reserve:           addr,
		BackingShortfall:  safemath.SaturatingSub(r.Minted, r.Backing),
		CapacityShortfall: safemath.SaturatingSub(r.Minted, r.MintingCap),
	}, nil
}

// Violation describes how far a reserve is from satisfying its invariants.
type Violation struct {
	Reserve           ids.ShortID `json:"reserve"`
	BackingShortfall  uint64      `json:"backingShortfall"`
	CapacityShortfall uint64      `json:"capacityShortfall"`
}

// Violated reports whether any shortfall is non-zero.
func (v Violation) Violated() bool {
	return v.BackingShortfall > 0 || v.CapacityShortfall > 0
}
