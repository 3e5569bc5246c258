// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package qc manages qualified custodians: their registration, status,
// Bitcoin wallets and the synchronization of oracle consensus into ledger
// backing.
package qc

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/custodyvm/utils/timer/mockable"
	"github.com/luxfi/custodyvm/vms/custodyvm/auth"
	"github.com/luxfi/custodyvm/vms/custodyvm/events"
	"github.com/luxfi/custodyvm/vms/custodyvm/ledger"
	"github.com/luxfi/custodyvm/vms/custodyvm/oracle"
	"github.com/luxfi/custodyvm/vms/custodyvm/reservetype"

	safemath "github.com/luxfi/custodyvm/utils/math"
)

// SPVVerifier checks Bitcoin transaction inclusion proofs. Its answers are
// trusted.
type SPVVerifier interface {
	VerifyWalletControl(qc ids.ShortID, btcAddress string, challenge, tx, proof []byte) bool
	VerifyRedemptionFulfillment(redemptionID ids.ID, btcAddress string, amount uint64, tx, proof []byte) bool
}

// QC is the registration record of a custodian. Its accounting lives in the
// ledger under the same address.
type QC struct {
	Status          Status    `json:"status"`
	MintingCapacity uint64    `json:"mintingCapacity"`
	RegisteredAt    time.Time `json:"registeredAt"`
}

// Wallet is a Bitcoin address whose balance counts toward a custodian's
// backing.
type Wallet struct {
	QC           ids.ShortID  `json:"qc"`
	Address      string       `json:"address"`
	Status       WalletStatus `json:"status"`
	RegisteredAt time.Time    `json:"registeredAt"`
}

// Lifecycle owns custodian registrations and wallets.
type Lifecycle struct {
	ledger  *ledger.Ledger
	oracle  *oracle.Oracle
	spv     SPVVerifier
	auth    auth.AuthorizationProvider
	network *chaincfg.Params
	clock   *mockable.Clock
	log     log.Logger

	qcs     map[ids.ShortID]*QC
	wallets map[string]*Wallet
}

func New(
	l *ledger.Ledger,
	o *oracle.Oracle,
	spv SPVVerifier,
	authz auth.AuthorizationProvider,
	network *chaincfg.Params,
	clock *mockable.Clock,
	logger log.Logger,
) *Lifecycle {
	return &Lifecycle{
		ledger:  l,
		oracle:  o,
		spv:     spv,
		auth:    authz,
		network: network,
		clock:   clock,
		log:     logger,
		qcs:     make(map[ids.ShortID]*QC),
		wallets: make(map[string]*Wallet),
	}
}

func (lc *Lifecycle) event(t events.Type, actor, qc ids.ShortID) events.Event {
	return events.Event{
		Type:    t,
		Time:    lc.clock.Time(),
		Actor:   actor,
		Reserve: qc,
	}
}

// QC returns a copy of the registration of addr.
func (lc *Lifecycle) QC(addr ids.ShortID) (QC, bool) {
	q, ok := lc.qcs[addr]
	if !ok {
		return QC{}, false
	}
	return *q, true
}

// QCs returns every registered custodian, sorted.
func (lc *Lifecycle) QCs() []ids.ShortID {
	addrs := make([]ids.ShortID, 0, len(lc.qcs))
	for addr := range lc.qcs {
		addrs = append(addrs, addr)
	}
	slices.SortFunc(addrs, func(a, b ids.ShortID) int { return bytes.Compare(a[:], b[:]) })
	return addrs
}

// Wallet returns a copy of the wallet registered under address, in any
// encoding that decodes to it.
func (lc *Lifecycle) Wallet(address string) (Wallet, bool) {
	w, err := lc.wallet(address)
	if err != nil {
		return Wallet{}, false
	}
	return *w, true
}

// Wallets returns the wallets of qc sorted by address.
func (lc *Lifecycle) Wallets(qc ids.ShortID) []Wallet {
	var wallets []Wallet
	for _, w := range lc.wallets {
		if w.QC == qc {
			wallets = append(wallets, *w)
		}
	}
	slices.SortFunc(wallets, func(a, b Wallet) int { return strings.Compare(a.Address, b.Address) })
	return wallets
}

func (lc *Lifecycle) registered(addr ids.ShortID) (*QC, error) {
	q, ok := lc.qcs[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrQCNotRegistered, addr)
	}
	return q, nil
}

// reserveType returns the type info of the reserve backing addr.
func (lc *Lifecycle) reserveType(addr ids.ShortID) (reservetype.Info, error) {
	r, ok := lc.ledger.Reserve(addr)
	if !ok {
		return reservetype.Info{}, fmt.Errorf("%w: %s", ledger.ErrReserveNotFound, addr)
	}
	return lc.ledger.Types().Get(r.Type)
}

func (lc *Lifecycle) hasActiveWallet(addr ids.ShortID) bool {
	for _, w := range lc.wallets {
		if w.QC == addr && w.Status == WalletActive {
			return true
		}
	}
	return false
}

// RegisterQC registers addr as a custodian and authorizes it in the ledger as a
// QC_BASIC reserve capped at mintingCapacity.
func (lc *Lifecycle) RegisterQC(caller, addr ids.ShortID, mintingCapacity uint64) ([]events.Event, error) {
	if err := auth.RequireAny(lc.auth, caller, auth.Governance, auth.Registrar); err != nil {
		return nil, err
	}
	if addr == ids.ShortEmpty {
		return nil, ErrInvalidQCAddress
	}
	if mintingCapacity == 0 {
		return nil, ErrInvalidMintingCapacity
	}
	if _, ok := lc.qcs[addr]; ok {
		return nil, fmt.Errorf("%w: %s", ErrQCAlreadyRegistered, addr)
	}

	evts, err := lc.ledger.AuthorizeReserve(caller, addr, mintingCapacity, reservetype.QCBasic)
	if err != nil {
		return nil, err
	}
	now := lc.clock.Time()
	lc.qcs[addr] = &QC{
		Status:          Registered,
		MintingCapacity: mintingCapacity,
		RegisteredAt:    now,
	}

	lc.log.Info("QC registered",
		log.Stringer("qc", addr),
		log.Stringer("mintingCapacity", btcutil.Amount(mintingCapacity)),
	)
	e := lc.event(events.QCRegistered, caller, addr)
	e.Amount = mintingCapacity
	e.To = Registered.String()
	return append(evts, e), nil
}

// SetStatus moves addr along the transition table. Entering Active requires
// an active wallet when the reserve type holds BTC.
func (lc *Lifecycle) SetStatus(caller, addr ids.ShortID, to Status, reason string) ([]events.Event, error) {
	if err := auth.RequireAny(lc.auth, caller, auth.Governance, auth.Registrar); err != nil {
		return nil, err
	}
	q, err := lc.registered(addr)
	if err != nil {
		return nil, err
	}
	from := q.Status
	if !CanTransition(from, to) {
		return nil, &InvalidTransitionError{From: from, To: to}
	}
	if to == Active {
		info, err := lc.reserveType(addr)
		if err != nil {
			return nil, err
		}
		if info.RequiresBtcAddress && !lc.hasActiveWallet(addr) {
			return nil, fmt.Errorf("%w: %s", ErrNoActiveWallet, addr)
		}
	}

	q.Status = to
	lc.log.Info("QC status changed",
		log.Stringer("qc", addr),
		log.Stringer("from", from),
		log.Stringer("to", to),
		log.String("reason", reason),
	)
	e := lc.event(events.QCStatusChanged, caller, addr)
	e.From = from.String()
	e.To = to.String()
	e.Reason = reason
	return []events.Event{e}, nil
}

// SyncBackingFromOracle writes the oracle consensus of addr into its ledger
// backing, even when it falls below what is minted; the ledger then pauses
// the reserve. Stale consensus is still synced; staleness is reported in the
// event and enforced by AvailableMintingCapacity.
func (lc *Lifecycle) SyncBackingFromOracle(caller, addr ids.ShortID) ([]events.Event, error) {
	if err := auth.RequireAny(lc.auth, caller, auth.OracleSync, auth.Governance); err != nil {
		return nil, err
	}
	if _, err := lc.registered(addr); err != nil {
		return nil, err
	}

	balance, stale := lc.oracle.ReserveBalanceAndStaleness(addr)
	evts, err := lc.ledger.ApplyAttestedBacking(caller, addr, balance)
	if err != nil {
		return nil, err
	}

	if stale {
		lc.log.Warn("synced stale backing",
			log.Stringer("qc", addr),
			log.Stringer("balance", btcutil.Amount(balance)),
		)
	}
	e := lc.event(events.BackingSynced, caller, addr)
	e.Balance = balance
	e.Stale = stale
	return append(evts, e), nil
}

// AvailableMintingCapacity is how much addr may still mint: the tightest of
// its cap, ledger backing and attested balance headroom, or zero when its
// oracle consensus is stale.
func (lc *Lifecycle) AvailableMintingCapacity(addr ids.ShortID) (uint64, error) {
	if _, err := lc.registered(addr); err != nil {
		return 0, err
	}
	balance, stale := lc.oracle.ReserveBalanceAndStaleness(addr)
	if stale {
		return 0, nil
	}
	r, ok := lc.ledger.Reserve(addr)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ledger.ErrReserveNotFound, addr)
	}
	return min(r.Headroom(), safemath.SaturatingSub(balance, r.Minted)), nil
}

// IncreaseMintingCapacity raises the minting cap of addr. Decreases go through
// the ledger directly.
func (lc *Lifecycle) IncreaseMintingCapacity(caller, addr ids.ShortID, mintingCapacity uint64) ([]events.Event, error) {
	if err := auth.Require(lc.auth, auth.Governance, caller); err != nil {
		return nil, err
	}
	q, err := lc.registered(addr)
	if err != nil {
		return nil, err
	}
	if q.Status == Revoked {
		return nil, fmt.Errorf("%w: %s", ErrQCRevoked, addr)
	}
	if mintingCapacity <= q.MintingCapacity {
		return nil, fmt.Errorf("%w: %d <= %d", ErrCapacityNotIncreased, mintingCapacity, q.MintingCapacity)
	}

	evts, err := lc.ledger.SetMintingCap(caller, addr, mintingCapacity)
	if err != nil {
		return nil, err
	}
	previous := q.MintingCapacity
	q.MintingCapacity = mintingCapacity

	e := lc.event(events.QCCapacityIncreased, caller, addr)
	e.Amount = mintingCapacity
	e.Balance = previous
	return append(evts, e), nil
}

// Load replaces the lifecycle contents with previously persisted state.
func (lc *Lifecycle) Load(qcs map[ids.ShortID]QC, wallets []Wallet) error {
	loadedQCs := make(map[ids.ShortID]*QC, len(qcs))
	for addr, q := range qcs {
		if _, ok := lc.ledger.Reserve(addr); !ok {
			return fmt.Errorf("%w: QC %s has no reserve", ledger.ErrReserveNotFound, addr)
		}
		loadedQCs[addr] = &q
	}
	loadedWallets := make(map[string]*Wallet, len(wallets))
	for _, w := range wallets {
		if _, ok := loadedQCs[w.QC]; !ok {
			return fmt.Errorf("%w: wallet %s belongs to %s", ErrQCNotRegistered, w.Address, w.QC)
		}
		loadedWallets[w.Address] = &w
	}
	lc.qcs = loadedQCs
	lc.wallets = loadedWallets
	return nil
}
