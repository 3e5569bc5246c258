// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package qc

import (
	"strings"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/custodyvm/utils/timer/mockable"
	"github.com/luxfi/custodyvm/utils/units"
	"github.com/luxfi/custodyvm/vms/custodyvm/auth"
	"github.com/luxfi/custodyvm/vms/custodyvm/events"
	"github.com/luxfi/custodyvm/vms/custodyvm/ledger"
	"github.com/luxfi/custodyvm/vms/custodyvm/oracle"
	"github.com/luxfi/custodyvm/vms/custodyvm/qc/qcmock"
	"github.com/luxfi/custodyvm/vms/custodyvm/reservetype"
)

const (
	testP2PKH  = "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2"
	testBech32 = "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"
)

type testEnv struct {
	lifecycle *Lifecycle
	ledger    *ledger.Ledger
	oracle    *oracle.Oracle
	spv       *qcmock.SPVVerifier
	clock     *mockable.Clock
	gov       ids.ShortID
	arbiter   ids.ShortID
	attester  ids.ShortID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	require := require.New(t)

	env := &testEnv{
		spv:      qcmock.NewSPVVerifier(gomock.NewController(t)),
		clock:    &mockable.Clock{},
		gov:      ids.GenerateTestShortID(),
		arbiter:  ids.GenerateTestShortID(),
		attester: ids.GenerateTestShortID(),
	}
	env.clock.Set(time.Unix(1_700_000_000, 0))

	roles := auth.NewRoleSet()
	roles.Grant(env.gov, auth.Governance, auth.OracleSync)
	roles.Grant(env.arbiter, auth.Arbiter)
	roles.Grant(env.attester, auth.Attester)

	logger := log.NewNoOpLogger()
	env.ledger = ledger.New(reservetype.NewRegistry(), roles, ledger.NewBalances(), ledger.DefaultLimits(), env.clock, logger)

	var err error
	env.oracle, err = oracle.New(oracle.Params{ConsensusThreshold: 1, AttestationTimeout: time.Hour}, roles, env.clock, logger)
	require.NoError(err)

	env.lifecycle = New(env.ledger, env.oracle, env.spv, roles, &chaincfg.MainNetParams, env.clock, logger)
	return env
}

// walletFor returns a mainnet P2WPKH address derived from addr.
func walletFor(t *testing.T, addr ids.ShortID) string {
	t.Helper()

	w, err := btcutil.NewAddressWitnessPubKeyHash(addr[:], &chaincfg.MainNetParams)
	require.NoError(t, err)
	return w.EncodeAddress()
}

// registerWallet attaches the wallet derived from addr.
func (env *testEnv) registerWallet(t *testing.T, addr ids.ShortID) string {
	t.Helper()

	wallet := walletFor(t, addr)
	env.spv.EXPECT().VerifyWalletControl(addr, wallet, gomock.Any(), gomock.Any(), gomock.Any()).Return(true)
	_, err := env.lifecycle.RegisterWallet(addr, addr, wallet, nil, nil, nil)
	require.NoError(t, err)
	return wallet
}

// registerBacked registers an active custodian whose oracle consensus and
// ledger backing are both backing.
func (env *testEnv) registerBacked(t *testing.T, mintingCapacity, backing uint64) ids.ShortID {
	t.Helper()
	require := require.New(t)

	addr := ids.GenerateTestShortID()
	_, err := env.lifecycle.RegisterQC(env.gov, addr, mintingCapacity)
	require.NoError(err)
	env.registerWallet(t, addr)
	_, err = env.lifecycle.SetStatus(env.gov, addr, Active, "onboarded")
	require.NoError(err)
	_, err = env.oracle.SubmitAttestation(env.attester, addr, backing)
	require.NoError(err)
	_, err = env.lifecycle.SyncBackingFromOracle(env.gov, addr)
	require.NoError(err)
	return addr
}

func TestRegisterQC(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	addr := ids.GenerateTestShortID()

	evts, err := env.lifecycle.RegisterQC(env.gov, addr, 10*units.BTC)
	require.NoError(err)
	require.Len(events.Filter(evts, events.ReserveAuthorized), 1)
	require.Len(events.Filter(evts, events.QCRegistered), 1)

	q, ok := env.lifecycle.QC(addr)
	require.True(ok)
	require.Equal(Registered, q.Status)
	require.Equal(10*units.BTC, q.MintingCapacity)

	r, ok := env.ledger.Reserve(addr)
	require.True(ok)
	require.True(r.Authorized)
	require.Equal(reservetype.QCBasic, r.Type)
	require.Equal(10*units.BTC, r.MintingCap)

	_, err = env.lifecycle.RegisterQC(env.gov, addr, units.BTC)
	require.ErrorIs(err, ErrQCAlreadyRegistered)
	_, err = env.lifecycle.RegisterQC(env.gov, ids.ShortEmpty, units.BTC)
	require.ErrorIs(err, ErrInvalidQCAddress)
	_, err = env.lifecycle.RegisterQC(env.gov, ids.GenerateTestShortID(), 0)
	require.ErrorIs(err, ErrInvalidMintingCapacity)
	_, err = env.lifecycle.RegisterQC(env.arbiter, ids.GenerateTestShortID(), units.BTC)
	require.ErrorIs(err, auth.ErrUnauthorized)
	require.Equal([]ids.ShortID{addr}, env.lifecycle.QCs())
}

func TestSetStatusTransitions(t *testing.T) {
	tests := []struct {
		name  string
		path  []Status
		to    Status
		valid bool
	}{
		{name: "activate", to: Active, valid: true},
		{name: "revoke unactivated", to: Revoked, valid: true},
		{name: "skip activation", to: MintingPaused},
		{name: "stay registered", to: Registered},
		{name: "pause", path: []Status{Active}, to: MintingPaused, valid: true},
		{name: "review", path: []Status{Active, MintingPaused}, to: UnderReview, valid: true},
		{name: "clear review", path: []Status{Active, UnderReview}, to: Active, valid: true},
		{name: "back to registered", path: []Status{Active}, to: Registered},
		{name: "revoked is terminal", path: []Status{Active, Revoked}, to: Active},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			env := newTestEnv(t)
			addr := ids.GenerateTestShortID()
			_, err := env.lifecycle.RegisterQC(env.gov, addr, units.BTC)
			require.NoError(err)
			env.registerWallet(t, addr)
			for _, status := range tt.path {
				_, err := env.lifecycle.SetStatus(env.gov, addr, status, "setup")
				require.NoError(err)
			}
			q, _ := env.lifecycle.QC(addr)
			from := q.Status

			evts, err := env.lifecycle.SetStatus(env.gov, addr, tt.to, "test")
			if !tt.valid {
				var transitionErr *InvalidTransitionError
				require.ErrorAs(err, &transitionErr)
				require.Equal(from, transitionErr.From)
				require.Equal(tt.to, transitionErr.To)
				q, _ = env.lifecycle.QC(addr)
				require.Equal(from, q.Status)
				return
			}
			require.NoError(err)
			require.Equal(from.String(), evts[0].From)
			require.Equal(tt.to.String(), evts[0].To)
			require.Equal("test", evts[0].Reason)
		})
	}
}

func TestActivationRequiresWallet(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	addr := ids.GenerateTestShortID()
	_, err := env.lifecycle.RegisterQC(env.gov, addr, units.BTC)
	require.NoError(err)

	_, err = env.lifecycle.SetStatus(env.gov, addr, Active, "onboarded")
	require.ErrorIs(err, ErrNoActiveWallet)
	q, _ := env.lifecycle.QC(addr)
	require.Equal(Registered, q.Status)

	wallet := env.registerWallet(t, addr)
	_, err = env.lifecycle.SetStatus(env.gov, addr, Active, "onboarded")
	require.NoError(err)

	// Reactivation after review needs a wallet again.
	_, err = env.lifecycle.SetStatus(env.gov, addr, UnderReview, "audit")
	require.NoError(err)
	_, err = env.lifecycle.RequestWalletDeregistration(addr, wallet)
	require.NoError(err)
	_, err = env.lifecycle.SetStatus(env.gov, addr, Active, "cleared")
	require.ErrorIs(err, ErrNoActiveWallet)
}

func TestRegisterWalletRequiresBtcReserveType(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	require.NoError(env.ledger.Types().Register("OFFCHAIN", reservetype.Info{Name: "Offchain"}))
	addr := ids.GenerateTestShortID()
	_, err := env.ledger.AuthorizeReserve(env.gov, addr, units.BTC, "OFFCHAIN")
	require.NoError(err)
	require.NoError(env.lifecycle.Load(map[ids.ShortID]QC{addr: {Status: Registered, MintingCapacity: units.BTC}}, nil))

	_, err = env.lifecycle.RegisterWallet(addr, addr, testBech32, nil, nil, nil)
	require.ErrorIs(err, ErrWalletsNotSupported)

	// Without a BTC requirement activation needs no wallet.
	_, err = env.lifecycle.SetStatus(env.gov, addr, Active, "onboarded")
	require.NoError(err)
}

func TestSetStatusUnknownQC(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.lifecycle.SetStatus(env.gov, ids.GenerateTestShortID(), Active, "")
	require.ErrorIs(t, err, ErrQCNotRegistered)
}

func TestParseStatus(t *testing.T) {
	require := require.New(t)

	for status := Registered; status <= Revoked; status++ {
		parsed, err := ParseStatus(status.String())
		require.NoError(err)
		require.Equal(status, parsed)
	}
	_, err := ParseStatus("suspended")
	require.ErrorIs(err, ErrUnknownStatus)
}

func TestSyncBackingFromOracle(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	addr := ids.GenerateTestShortID()
	_, err := env.lifecycle.RegisterQC(env.gov, addr, 10*units.BTC)
	require.NoError(err)

	// Without consensus the sync writes zero and reports staleness.
	evts, err := env.lifecycle.SyncBackingFromOracle(env.gov, addr)
	require.NoError(err)
	synced := events.Filter(evts, events.BackingSynced)
	require.Len(synced, 1)
	require.True(synced[0].Stale)
	require.Zero(synced[0].Balance)

	_, err = env.oracle.SubmitAttestation(env.attester, addr, 4*units.BTC)
	require.NoError(err)
	evts, err = env.lifecycle.SyncBackingFromOracle(env.gov, addr)
	require.NoError(err)
	synced = events.Filter(evts, events.BackingSynced)
	require.False(synced[0].Stale)
	require.Equal(4*units.BTC, synced[0].Balance)

	// Stale consensus still syncs.
	env.clock.Advance(2 * time.Hour)
	evts, err = env.lifecycle.SyncBackingFromOracle(env.gov, addr)
	require.NoError(err)
	synced = events.Filter(evts, events.BackingSynced)
	require.True(synced[0].Stale)

	r, _ := env.ledger.Reserve(addr)
	require.Equal(4*units.BTC, r.Backing)

	_, err = env.lifecycle.SyncBackingFromOracle(env.arbiter, addr)
	require.ErrorIs(err, auth.ErrUnauthorized)
}

func TestSyncBackingFromOracleBelowMinted(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	addr := env.registerBacked(t, 10*units.BTC, 10*units.BTC)
	_, err := env.ledger.Mint(addr, addr, ids.GenerateTestShortID(), 8*units.BTC)
	require.NoError(err)

	env.clock.Advance(time.Minute)
	_, err = env.oracle.SubmitAttestation(env.attester, addr, 5*units.BTC)
	require.NoError(err)

	evts, err := env.lifecycle.SyncBackingFromOracle(env.gov, addr)
	require.NoError(err)
	paused := events.Filter(evts, events.ReservePaused)
	require.Len(paused, 1)
	require.Equal(ledger.ReasonAttestedShortfall, paused[0].Reason)

	r, _ := env.ledger.Reserve(addr)
	require.Equal(5*units.BTC, r.Backing)
	require.True(r.Paused)
	violation, err := env.ledger.CheckViolation(addr)
	require.NoError(err)
	require.Equal(3*units.BTC, violation.BackingShortfall)

	capacity, err := env.lifecycle.AvailableMintingCapacity(addr)
	require.NoError(err)
	require.Zero(capacity)

	_, err = env.ledger.Mint(addr, addr, ids.GenerateTestShortID(), 1)
	require.ErrorIs(err, ledger.ErrReservePaused)

	// Unpausing waits until the shortfall is covered.
	_, err = env.ledger.UnpauseReserve(env.gov, addr)
	require.ErrorIs(err, ledger.ErrInsufficientBacking)

	env.clock.Advance(time.Minute)
	_, err = env.oracle.SubmitAttestation(env.attester, addr, 9*units.BTC)
	require.NoError(err)
	evts, err = env.lifecycle.SyncBackingFromOracle(env.gov, addr)
	require.NoError(err)
	require.Empty(events.Filter(evts, events.ReservePaused))
	_, err = env.ledger.UnpauseReserve(env.gov, addr)
	require.NoError(err)
}

func TestAvailableMintingCapacity(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	addr := env.registerBacked(t, 10*units.BTC, 6*units.BTC)

	capacity, err := env.lifecycle.AvailableMintingCapacity(addr)
	require.NoError(err)
	require.Equal(6*units.BTC, capacity)

	_, err = env.ledger.Mint(addr, addr, ids.GenerateTestShortID(), 2*units.BTC)
	require.NoError(err)
	capacity, err = env.lifecycle.AvailableMintingCapacity(addr)
	require.NoError(err)
	require.Equal(4*units.BTC, capacity)

	_, err = env.ledger.SetMintingCap(env.gov, addr, 3*units.BTC)
	require.NoError(err)
	capacity, err = env.lifecycle.AvailableMintingCapacity(addr)
	require.NoError(err)
	require.Equal(units.BTC, capacity)

	env.clock.Advance(2 * time.Hour)
	capacity, err = env.lifecycle.AvailableMintingCapacity(addr)
	require.NoError(err)
	require.Zero(capacity)

	_, err = env.lifecycle.AvailableMintingCapacity(ids.GenerateTestShortID())
	require.ErrorIs(err, ErrQCNotRegistered)
}

func TestIncreaseMintingCapacity(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	addr := env.registerBacked(t, 2*units.BTC, 2*units.BTC)

	_, err := env.lifecycle.IncreaseMintingCapacity(env.gov, addr, 2*units.BTC)
	require.ErrorIs(err, ErrCapacityNotIncreased)
	_, err = env.lifecycle.IncreaseMintingCapacity(env.arbiter, addr, 5*units.BTC)
	require.ErrorIs(err, auth.ErrUnauthorized)

	evts, err := env.lifecycle.IncreaseMintingCapacity(env.gov, addr, 5*units.BTC)
	require.NoError(err)
	increased := events.Filter(evts, events.QCCapacityIncreased)
	require.Len(increased, 1)
	require.Equal(5*units.BTC, increased[0].Amount)
	require.Equal(2*units.BTC, increased[0].Balance)

	q, _ := env.lifecycle.QC(addr)
	require.Equal(5*units.BTC, q.MintingCapacity)
	r, _ := env.ledger.Reserve(addr)
	require.Equal(5*units.BTC, r.MintingCap)
}

func TestRegisterWallet(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	addr := env.registerBacked(t, units.BTC, units.BTC)
	other := env.registerBacked(t, units.BTC, units.BTC)
	challenge, tx, proof := []byte("challenge"), []byte("tx"), []byte("proof")

	env.spv.EXPECT().VerifyWalletControl(addr, testP2PKH, challenge, tx, proof).Return(true)
	evts, err := env.lifecycle.RegisterWallet(addr, addr, testP2PKH, challenge, tx, proof)
	require.NoError(err)
	require.Equal(events.WalletRegistered, evts[0].Type)
	require.Equal(testP2PKH, evts[0].Wallet)

	w, ok := env.lifecycle.Wallet(testP2PKH)
	require.True(ok)
	require.Equal(WalletActive, w.Status)
	require.Equal(addr, w.QC)

	_, err = env.lifecycle.RegisterWallet(other, other, testP2PKH, challenge, tx, proof)
	require.ErrorIs(err, ErrWalletAlreadyRegistered)

	_, err = env.lifecycle.RegisterWallet(other, addr, testBech32, challenge, tx, proof)
	require.ErrorIs(err, auth.ErrUnauthorized)

	env.spv.EXPECT().VerifyWalletControl(addr, testBech32, challenge, tx, proof).Return(false)
	_, err = env.lifecycle.RegisterWallet(env.gov, addr, testBech32, challenge, tx, proof)
	require.ErrorIs(err, ErrSPVVerificationFailed)
	require.Len(env.lifecycle.Wallets(addr), 2)
}

func TestRegisterWalletInvalidAddress(t *testing.T) {
	env := newTestEnv(t)
	addr := env.registerBacked(t, units.BTC, units.BTC)

	tests := []struct {
		name    string
		address string
	}{
		{name: "empty", address: ""},
		{name: "garbage", address: "not-a-bitcoin-address"},
		{name: "bad checksum", address: "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN3"},
		{name: "testnet", address: "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.lifecycle.RegisterWallet(addr, addr, tt.address, nil, nil, nil)
			require.ErrorIs(t, err, ErrInvalidWalletAddress)
		})
	}
}

func TestWalletDeregistrationSolvency(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	addr := env.registerBacked(t, 10*units.BTC, 10*units.BTC)
	_, err := env.ledger.Mint(addr, addr, ids.GenerateTestShortID(), 8*units.BTC)
	require.NoError(err)

	env.spv.EXPECT().VerifyWalletControl(addr, testBech32, gomock.Any(), gomock.Any(), gomock.Any()).Return(true)
	_, err = env.lifecycle.RegisterWallet(addr, addr, testBech32, nil, nil, nil)
	require.NoError(err)

	_, err = env.lifecycle.FinalizeWalletDeregistration(env.arbiter, testBech32, 9*units.BTC)
	require.ErrorIs(err, ErrWalletNotPending)

	evts, err := env.lifecycle.RequestWalletDeregistration(addr, testBech32)
	require.NoError(err)
	require.Equal(events.WalletDeregistrationRequested, evts[0].Type)
	_, err = env.lifecycle.RequestWalletDeregistration(addr, testBech32)
	require.ErrorIs(err, ErrWalletNotActive)

	_, err = env.lifecycle.FinalizeWalletDeregistration(env.arbiter, testBech32, 5*units.BTC)
	require.ErrorIs(err, ErrQCWouldBecomeInsolvent)
	require.ErrorContains(err, "QC would become insolvent")
	w, _ := env.lifecycle.Wallet(testBech32)
	require.Equal(WalletPendingDeregistration, w.Status)
	r, _ := env.ledger.Reserve(addr)
	require.Equal(10*units.BTC, r.Backing)

	_, err = env.lifecycle.FinalizeWalletDeregistration(addr, testBech32, 9*units.BTC)
	require.ErrorIs(err, auth.ErrUnauthorized)

	evts, err = env.lifecycle.FinalizeWalletDeregistration(env.arbiter, testBech32, 9*units.BTC)
	require.NoError(err)
	require.Len(events.Filter(evts, events.WalletDeregistered), 1)
	require.Len(events.Filter(evts, events.BackingUpdated), 1)

	w, _ = env.lifecycle.Wallet(testBech32)
	require.Equal(WalletDeregistered, w.Status)
	r, _ = env.ledger.Reserve(addr)
	require.Equal(9*units.BTC, r.Backing)
	require.Equal(8*units.BTC, r.Minted)
}

func TestCancelWalletDeregistration(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	addr := env.registerBacked(t, units.BTC, units.BTC)
	wallet := walletFor(t, addr)

	_, err := env.lifecycle.CancelWalletDeregistration(addr, wallet)
	require.ErrorIs(err, ErrWalletNotPending)

	_, err = env.lifecycle.RequestWalletDeregistration(addr, wallet)
	require.NoError(err)

	_, err = env.lifecycle.CancelWalletDeregistration(env.arbiter, wallet)
	require.ErrorIs(err, auth.ErrUnauthorized)

	evts, err := env.lifecycle.CancelWalletDeregistration(env.gov, wallet)
	require.NoError(err)
	require.Len(evts, 1)
	require.Equal(events.WalletDeregistrationCancelled, evts[0].Type)
	require.Equal(wallet, evts[0].Wallet)

	w, _ := env.lifecycle.Wallet(wallet)
	require.Equal(WalletActive, w.Status)

	_, err = env.lifecycle.FinalizeWalletDeregistration(env.arbiter, wallet, units.BTC)
	require.ErrorIs(err, ErrWalletNotPending)

	_, err = env.lifecycle.CancelWalletDeregistration(addr, testP2PKH)
	require.ErrorIs(err, ErrWalletNotRegistered)
}

func TestWalletLookupIsCanonical(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	addr := env.registerBacked(t, 10*units.BTC, 10*units.BTC)
	env.spv.EXPECT().VerifyWalletControl(addr, testBech32, gomock.Any(), gomock.Any(), gomock.Any()).Return(true)
	_, err := env.lifecycle.RegisterWallet(addr, addr, testBech32, nil, nil, nil)
	require.NoError(err)

	upper := strings.ToUpper(testBech32)
	canonical, err := env.lifecycle.CanonicalAddress(upper)
	require.NoError(err)
	require.Equal(testBech32, canonical)

	w, ok := env.lifecycle.Wallet(upper)
	require.True(ok)
	require.Equal(testBech32, w.Address)

	evts, err := env.lifecycle.RequestWalletDeregistration(addr, upper)
	require.NoError(err)
	require.Equal(testBech32, evts[0].Wallet)

	evts, err = env.lifecycle.CancelWalletDeregistration(addr, upper)
	require.NoError(err)
	require.Equal(testBech32, evts[0].Wallet)

	_, err = env.lifecycle.RequestWalletDeregistration(addr, upper)
	require.NoError(err)
	evts, err = env.lifecycle.FinalizeWalletDeregistration(env.arbiter, upper, 10*units.BTC)
	require.NoError(err)
	require.Equal(testBech32, events.Filter(evts, events.WalletDeregistered)[0].Wallet)

	_, err = env.lifecycle.RequestWalletDeregistration(addr, "not-a-bitcoin-address")
	require.ErrorIs(err, ErrInvalidWalletAddress)
}

func TestLoad(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	addr := env.registerBacked(t, units.BTC, units.BTC)
	now := env.clock.Time()

	err := env.lifecycle.Load(
		map[ids.ShortID]QC{addr: {Status: UnderReview, MintingCapacity: units.BTC, RegisteredAt: now}},
		[]Wallet{{QC: addr, Address: testP2PKH, Status: WalletActive, RegisteredAt: now}},
	)
	require.NoError(err)
	q, ok := env.lifecycle.QC(addr)
	require.True(ok)
	require.Equal(UnderReview, q.Status)
	require.Len(env.lifecycle.Wallets(addr), 1)

	err = env.lifecycle.Load(
		map[ids.ShortID]QC{ids.GenerateTestShortID(): {Status: Active}},
		nil,
	)
	require.ErrorIs(err, ledger.ErrReserveNotFound)

	err = env.lifecycle.Load(
		map[ids.ShortID]QC{addr: {Status: Active}},
		[]Wallet{{QC: ids.GenerateTestShortID(), Address: testBech32}},
	)
	require.ErrorIs(err, ErrQCNotRegistered)
}
