// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/custodyvm/utils/timer/mockable"
	"github.com/luxfi/custodyvm/utils/units"
	"github.com/luxfi/custodyvm/vms/custodyvm/auth"
	"github.com/luxfi/custodyvm/vms/custodyvm/events"
	"github.com/luxfi/custodyvm/vms/custodyvm/ledger/ledgermock"
	"github.com/luxfi/custodyvm/vms/custodyvm/reservetype"
)

var errTest = errors.New("non-nil error")

type testEnv struct {
	ledger   *Ledger
	roles    *auth.RoleSet
	balances *Balances
	clock    *mockable.Clock
	gov      ids.ShortID
}

func newTestEnv(t *testing.T, tokens TokenLedger) *testEnv {
	t.Helper()

	roles := auth.NewRoleSet()
	gov := ids.GenerateTestShortID()
	roles.Grant(gov, auth.Governance, auth.Arbiter)

	balances := NewBalances()
	if tokens == nil {
		tokens = balances
	}
	clock := &mockable.Clock{}
	clock.Set(time.Unix(1_700_000_000, 0))

	return &testEnv{
		ledger:   New(reservetype.NewRegistry(), roles, tokens, DefaultLimits(), clock, log.NewNoOpLogger()),
		roles:    roles,
		balances: balances,
		clock:    clock,
		gov:      gov,
	}
}

// authorizeBacked authorizes a QC_BASIC reserve with the given cap and backing.
func (env *testEnv) authorizeBacked(t *testing.T, mintingCap, backing uint64) ids.ShortID {
	t.Helper()
	require := require.New(t)

	addr := ids.GenerateTestShortID()
	_, err := env.ledger.AuthorizeReserve(env.gov, addr, mintingCap, reservetype.QCBasic)
	require.NoError(err)
	_, err = env.ledger.UpdateBacking(addr, addr, backing)
	require.NoError(err)
	return addr
}

func (env *testEnv) minted(t *testing.T, addr ids.ShortID) uint64 {
	t.Helper()
	r, ok := env.ledger.Reserve(addr)
	require.True(t, ok)
	return r.Minted
}

func TestAuthorizeReserve(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	addr := ids.GenerateTestShortID()

	evts, err := env.ledger.AuthorizeReserve(env.gov, addr, 10*units.BTC, reservetype.QCBasic)
	require.NoError(err)
	require.Len(evts, 2)
	require.Equal(events.ReserveTypeAssigned, evts[0].Type)
	require.Equal(string(reservetype.QCBasic), evts[0].Kind)
	require.Equal(events.ReserveAuthorized, evts[1].Type)

	r, ok := env.ledger.Reserve(addr)
	require.True(ok)
	require.True(r.Authorized)
	require.Equal(reservetype.QCBasic, r.Type)
	require.Equal(10*units.BTC, r.MintingCap)
	require.Zero(r.Backing)
	require.Zero(r.Minted)
}

func TestAuthorizeReserveErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	existing := env.authorizeBacked(t, units.BTC, 0)
	stranger := ids.GenerateTestShortID()

	tests := []struct {
		name        string
		caller      ids.ShortID
		addr        ids.ShortID
		mintingCap  uint64
		tag         reservetype.Tag
		expectedErr error
	}{
		{
			name:        "unauthorized caller",
			caller:      stranger,
			addr:        ids.GenerateTestShortID(),
			mintingCap:  units.BTC,
			tag:         reservetype.QCBasic,
			expectedErr: auth.ErrUnauthorized,
		},
		{
			name:        "zero address",
			caller:      env.gov,
			addr:        ids.ShortEmpty,
			mintingCap:  units.BTC,
			tag:         reservetype.QCBasic,
			expectedErr: ErrZeroAddress,
		},
		{
			name:        "zero cap",
			caller:      env.gov,
			addr:        ids.GenerateTestShortID(),
			tag:         reservetype.QCBasic,
			expectedErr: ErrZeroMintingCap,
		},
		{
			name:        "unknown type",
			caller:      env.gov,
			addr:        ids.GenerateTestShortID(),
			mintingCap:  units.BTC,
			tag:         "UNKNOWN",
			expectedErr: reservetype.ErrInvalidReserveType,
		},
		{
			name:        "already authorized",
			caller:      env.gov,
			addr:        existing,
			mintingCap:  units.BTC,
			tag:         reservetype.QCBasic,
			expectedErr: ErrAlreadyAuthorized,
		},
		{
			name:        "wrapper type below cap floor",
			caller:      env.gov,
			addr:        ids.GenerateTestShortID(),
			mintingCap:  units.BTC - 1,
			tag:         reservetype.VaultStrategy,
			expectedErr: ErrBelowMinimumCap,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ledger.AuthorizeReserve(tt.caller, tt.addr, tt.mintingCap, tt.tag)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestReserveTypeIsSticky(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	addr := env.authorizeBacked(t, 2*units.BTC, 0)

	_, err := env.ledger.DeauthorizeReserve(env.gov, addr)
	require.NoError(err)

	r, ok := env.ledger.Reserve(addr)
	require.True(ok)
	require.False(r.Authorized)
	require.Equal(reservetype.QCBasic, r.Type)

	_, err = env.ledger.AuthorizeReserve(env.gov, addr, 2*units.BTC, reservetype.VaultStrategy)
	require.ErrorIs(err, ErrReserveTypeMismatch)

	evts, err := env.ledger.AuthorizeReserve(env.gov, addr, 2*units.BTC, reservetype.QCBasic)
	require.NoError(err)
	require.Empty(events.Filter(evts, events.ReserveTypeAssigned))
	require.Len(events.Filter(evts, events.ReserveAuthorized), 1)
}

func TestDeauthorizeWithOutstandingMinted(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	addr := env.authorizeBacked(t, units.BTC, units.BTC)
	_, err := env.ledger.Mint(addr, addr, ids.GenerateTestShortID(), units.MilliBTC)
	require.NoError(err)

	_, err = env.ledger.DeauthorizeReserve(env.gov, addr)
	require.ErrorIs(err, ErrOutstandingMinted)

	_, err = env.ledger.Redeem(addr, addr, units.MilliBTC)
	require.NoError(err)
	_, err = env.ledger.DeauthorizeReserve(env.gov, addr)
	require.NoError(err)

	_, err = env.ledger.Mint(addr, addr, ids.GenerateTestShortID(), units.MilliBTC)
	require.ErrorIs(err, ErrNotAuthorized)
}

func TestMintRedeemScenario(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	addr := env.authorizeBacked(t, 10*units.BTC, 10*units.BTC)
	recipient := ids.GenerateTestShortID()

	evts, err := env.ledger.Mint(addr, addr, recipient, 6*units.BTC)
	require.NoError(err)
	require.Len(evts, 1)
	require.Equal(events.Minted, evts[0].Type)
	require.Equal(recipient, evts[0].Account)
	require.Equal(6*units.BTC, env.minted(t, addr))
	require.Equal(6*units.BTC, env.balances.BalanceOf(recipient))

	_, err = env.ledger.Mint(addr, addr, recipient, 5*units.BTC)
	require.ErrorIs(err, ErrInsufficientBacking)
	require.Equal(6*units.BTC, env.minted(t, addr))
	require.Equal(6*units.BTC, env.balances.BalanceOf(recipient))

	_, err = env.ledger.Redeem(addr, addr, 3*units.BTC)
	require.NoError(err)
	require.Equal(3*units.BTC, env.minted(t, addr))

	_, err = env.ledger.Mint(addr, addr, recipient, 5*units.BTC)
	require.NoError(err)
	require.Equal(8*units.BTC, env.minted(t, addr))
	require.Equal(8*units.BTC, env.ledger.TotalMinted())
}

func TestMintValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	addr := env.authorizeBacked(t, 500*units.BTC, 500*units.BTC)
	limits := env.ledger.Limits()

	tests := []struct {
		name        string
		caller      ids.ShortID
		recipient   ids.ShortID
		amount      uint64
		expectedErr error
	}{
		{
			name:        "stranger",
			caller:      ids.GenerateTestShortID(),
			recipient:   ids.GenerateTestShortID(),
			amount:      limits.MinMintAmount,
			expectedErr: auth.ErrUnauthorized,
		},
		{
			name:        "zero recipient",
			caller:      addr,
			recipient:   ids.ShortEmpty,
			amount:      limits.MinMintAmount,
			expectedErr: ErrZeroAddress,
		},
		{
			name:        "too small",
			caller:      addr,
			recipient:   ids.GenerateTestShortID(),
			amount:      limits.MinMintAmount - 1,
			expectedErr: ErrAmountTooSmall,
		},
		{
			name:        "too large",
			caller:      addr,
			recipient:   ids.GenerateTestShortID(),
			amount:      limits.MaxSingleMint + 1,
			expectedErr: ErrAmountTooLarge,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ledger.Mint(tt.caller, addr, tt.recipient, tt.amount)
			require.ErrorIs(t, err, tt.expectedErr)
			require.Zero(t, env.minted(t, addr))
		})
	}
}

func TestMintByMinterCapability(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	addr := env.authorizeBacked(t, units.BTC, units.BTC)
	minter := ids.GenerateTestShortID()
	env.roles.Grant(minter, auth.Minter)

	_, err := env.ledger.Mint(minter, addr, ids.GenerateTestShortID(), units.MilliBTC)
	require.NoError(err)
	require.Equal(units.MilliBTC, env.minted(t, addr))
}

func TestMintExceedsCap(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	addr := env.authorizeBacked(t, 5*units.BTC, 5*units.BTC)
	_, err := env.ledger.SetMintingCap(env.gov, addr, 4*units.BTC)
	require.NoError(err)

	_, err = env.ledger.Mint(addr, addr, ids.GenerateTestShortID(), 4*units.BTC+1)
	require.ErrorIs(err, ErrExceedsReserveCap)
}

func TestMintPaused(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	addr := env.authorizeBacked(t, units.BTC, units.BTC)
	pauser := ids.GenerateTestShortID()
	env.roles.Grant(pauser, auth.Pauser)
	recipient := ids.GenerateTestShortID()

	_, err := env.ledger.PauseReserve(pauser, addr, "investigation")
	require.NoError(err)
	_, err = env.ledger.Mint(addr, addr, recipient, units.MilliBTC)
	require.ErrorIs(err, ErrReservePaused)
	_, err = env.ledger.UpdateBacking(addr, addr, 2*units.BTC)
	require.ErrorIs(err, ErrReservePaused)

	// Pausers cannot release what they locked.
	_, err = env.ledger.UnpauseReserve(pauser, addr)
	require.ErrorIs(err, auth.ErrUnauthorized)
	_, err = env.ledger.UnpauseReserve(env.gov, addr)
	require.NoError(err)
	_, err = env.ledger.UnpauseReserve(env.gov, addr)
	require.ErrorIs(err, ErrReserveNotPaused)

	_, err = env.ledger.PauseSystem(pauser, "incident")
	require.NoError(err)
	require.True(env.ledger.SystemPaused())
	_, err = env.ledger.Mint(addr, addr, recipient, units.MilliBTC)
	require.ErrorIs(err, ErrSystemPaused)
	_, err = env.ledger.UnpauseSystem(pauser)
	require.ErrorIs(err, auth.ErrUnauthorized)
	_, err = env.ledger.UnpauseSystem(env.gov)
	require.NoError(err)

	_, err = env.ledger.Mint(addr, addr, recipient, units.MilliBTC)
	require.NoError(err)
}

func TestRedeemAllowedWhilePaused(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	addr := env.authorizeBacked(t, units.BTC, units.BTC)
	_, err := env.ledger.Mint(addr, addr, ids.GenerateTestShortID(), units.MilliBTC)
	require.NoError(err)
	_, err = env.ledger.PauseSystem(env.gov, "incident")
	require.NoError(err)

	_, err = env.ledger.Redeem(addr, addr, units.MilliBTC)
	require.NoError(err)
	require.Zero(env.ledger.TotalMinted())
}

func TestMintTokensTruncates(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	addr := env.authorizeBacked(t, units.BTC, units.BTC)
	recipient := ids.GenerateTestShortID()

	tokens := units.SatoshisToTokens(units.MilliBTC)
	tokens.AddUint64(tokens, 9_999_999_999)

	_, err := env.ledger.MintTokens(addr, addr, recipient, tokens)
	require.NoError(err)
	require.Equal(units.MilliBTC, env.minted(t, addr))
	require.Equal(units.MilliBTC, env.balances.BalanceOf(recipient))

	_, err = env.ledger.RedeemTokens(addr, addr, units.SatoshisToTokens(units.MilliBTC))
	require.NoError(err)
	require.Zero(env.minted(t, addr))
}

func TestMintTokenLedgerFailureAborts(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)

	tokens := ledgermock.NewTokenLedger(ctrl)
	env := newTestEnv(t, tokens)
	addr := env.authorizeBacked(t, units.BTC, units.BTC)
	recipient := ids.GenerateTestShortID()

	tokens.EXPECT().IncreaseBalance(recipient, units.MilliBTC).Return(errTest)
	_, err := env.ledger.Mint(addr, addr, recipient, units.MilliBTC)
	require.ErrorIs(err, errTest)
	require.Zero(env.minted(t, addr))
	require.Zero(env.ledger.TotalMinted())

	tokens.EXPECT().IncreaseBalance(recipient, units.MilliBTC).Return(nil)
	_, err = env.ledger.Mint(addr, addr, recipient, units.MilliBTC)
	require.NoError(err)
	require.Equal(units.MilliBTC, env.ledger.TotalMinted())
}

func TestBatchMint(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	addr := env.authorizeBacked(t, 10*units.BTC, 10*units.BTC)
	a, b := ids.GenerateTestShortID(), ids.GenerateTestShortID()

	evts, err := env.ledger.BatchMint(addr, addr, []ids.ShortID{a, b}, []uint64{units.BTC, 2 * units.BTC})
	require.NoError(err)
	require.Len(events.Filter(evts, events.Minted), 2)
	summary := events.Filter(evts, events.BatchMinted)
	require.Len(summary, 1)
	require.Equal(3*units.BTC, summary[0].Amount)
	require.Equal(uint32(2), summary[0].Count)

	require.Equal(3*units.BTC, env.minted(t, addr))
	require.Equal(units.BTC, env.balances.BalanceOf(a))
	require.Equal(2*units.BTC, env.balances.BalanceOf(b))
}

func TestBatchMintAllOrNothing(t *testing.T) {
	env := newTestEnv(t, nil)
	addr := env.authorizeBacked(t, 10*units.BTC, 10*units.BTC)
	limits := env.ledger.Limits()
	a := ids.GenerateTestShortID()

	oversized := make([]ids.ShortID, limits.MaxBatchSize+1)
	oversizedAmounts := make([]uint64, limits.MaxBatchSize+1)
	for i := range oversized {
		oversized[i] = ids.GenerateTestShortID()
		oversizedAmounts[i] = limits.MinMintAmount
	}

	tests := []struct {
		name        string
		recipients  []ids.ShortID
		amounts     []uint64
		expectedErr error
	}{
		{
			name:        "length mismatch",
			recipients:  []ids.ShortID{a},
			amounts:     []uint64{units.BTC, units.BTC},
			expectedErr: ErrArrayLengthMismatch,
		},
		{
			name:        "empty",
			expectedErr: ErrEmptyBatch,
		},
		{
			name:        "too many",
			recipients:  oversized,
			amounts:     oversizedAmounts,
			expectedErr: ErrBatchSizeExceeded,
		},
		{
			name:        "one element too small",
			recipients:  []ids.ShortID{a, a},
			amounts:     []uint64{units.BTC, limits.MinMintAmount - 1},
			expectedErr: ErrAmountTooSmall,
		},
		{
			name:        "aggregate exceeds backing",
			recipients:  []ids.ShortID{a, a, a},
			amounts:     []uint64{4 * units.BTC, 4 * units.BTC, 4 * units.BTC},
			expectedErr: ErrInsufficientBacking,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			_, err := env.ledger.BatchMint(addr, addr, tt.recipients, tt.amounts)
			require.ErrorIs(err, tt.expectedErr)
			require.Zero(env.minted(t, addr))
			require.Zero(env.balances.BalanceOf(a))
		})
	}
}

func TestBatchMintTokenLedgerFailureAborts(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)

	tokens := ledgermock.NewTokenLedger(ctrl)
	env := newTestEnv(t, tokens)
	addr := env.authorizeBacked(t, units.BTC, units.BTC)

	recipients := []ids.ShortID{ids.GenerateTestShortID(), ids.GenerateTestShortID()}
	amounts := []uint64{units.MilliBTC, units.MilliBTC}
	tokens.EXPECT().IncreaseBalances(recipients, amounts).Return(errTest)

	_, err := env.ledger.BatchMint(addr, addr, recipients, amounts)
	require.ErrorIs(err, errTest)
	require.Zero(env.minted(t, addr))
}

func TestRedeemInsufficientMinted(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	addr := env.authorizeBacked(t, units.BTC, units.BTC)

	_, err := env.ledger.Redeem(addr, addr, 0)
	require.ErrorIs(err, ErrZeroAmount)
	_, err = env.ledger.Redeem(addr, addr, 1)
	require.ErrorIs(err, ErrInsufficientMinted)
	_, err = env.ledger.Redeem(ids.GenerateTestShortID(), addr, 1)
	require.ErrorIs(err, auth.ErrUnauthorized)
}

func TestBurnLoss(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	vault := ids.GenerateTestShortID()
	_, err := env.ledger.AuthorizeReserve(env.gov, vault, 10*units.BTC, reservetype.VaultStrategy)
	require.NoError(err)
	_, err = env.ledger.UpdateBacking(vault, vault, 10*units.BTC)
	require.NoError(err)
	_, err = env.ledger.Mint(vault, vault, vault, 5*units.BTC)
	require.NoError(err)

	_, err = env.ledger.BurnLoss(env.gov, vault, units.BTC)
	require.ErrorIs(err, auth.ErrUnauthorized)

	evts, err := env.ledger.BurnLoss(vault, vault, units.BTC)
	require.NoError(err)
	require.Equal(events.LossBurned, evts[0].Type)
	require.Equal(4*units.BTC, env.balances.BalanceOf(vault))
	// Minted is untouched until the loss is realized.
	require.Equal(5*units.BTC, env.minted(t, vault))

	_, err = env.ledger.DebitMinted(env.gov, vault, units.BTC)
	require.NoError(err)
	require.Equal(4*units.BTC, env.minted(t, vault))
	require.Equal(4*units.BTC, env.ledger.TotalMinted())

	_, err = env.ledger.BurnTokenLoss(vault, vault, units.SatoshisToTokens(5*units.BTC))
	require.ErrorIs(err, ErrInsufficientBalance)
}

func TestBurnLossUnsupportedType(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	addr := env.authorizeBacked(t, units.BTC, units.BTC)

	_, err := env.ledger.BurnLoss(addr, addr, units.MilliBTC)
	require.ErrorIs(err, ErrLossesNotSupported)
}

func TestDebitCreditMinted(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	addr := env.authorizeBacked(t, 2*units.BTC, units.BTC)
	stranger := ids.GenerateTestShortID()

	_, err := env.ledger.CreditMinted(stranger, addr, units.BTC)
	require.ErrorIs(err, auth.ErrUnauthorized)
	_, err = env.ledger.CreditMinted(env.gov, addr, units.BTC+1)
	require.ErrorIs(err, ErrInsufficientBacking)
	_, err = env.ledger.CreditMinted(env.gov, addr, units.BTC)
	require.NoError(err)
	require.Equal(units.BTC, env.ledger.TotalMinted())

	_, err = env.ledger.DebitMinted(stranger, addr, units.BTC)
	require.ErrorIs(err, auth.ErrUnauthorized)
	_, err = env.ledger.DebitMinted(env.gov, addr, units.BTC+1)
	require.ErrorIs(err, ErrInsufficientMinted)
	_, err = env.ledger.DebitMinted(env.gov, addr, units.BTC)
	require.NoError(err)
	require.Zero(env.ledger.TotalMinted())
}

func TestUpdateBacking(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	addr := env.authorizeBacked(t, 2*units.BTC, 2*units.BTC)
	syncer := ids.GenerateTestShortID()
	env.roles.Grant(syncer, auth.OracleSync)

	_, err := env.ledger.UpdateBacking(ids.GenerateTestShortID(), addr, units.BTC)
	require.ErrorIs(err, auth.ErrUnauthorized)

	evts, err := env.ledger.UpdateBacking(syncer, addr, 3*units.BTC)
	require.NoError(err)
	require.Equal(events.BackingUpdated, evts[0].Type)
	require.Equal(3*units.BTC, evts[0].Balance)
	require.Equal(2*units.BTC, evts[0].Amount)

	_, err = env.ledger.Mint(addr, addr, ids.GenerateTestShortID(), units.BTC)
	require.NoError(err)
	_, err = env.ledger.UpdateBacking(syncer, addr, units.BTC-1)
	require.ErrorIs(err, ErrInsufficientBacking)
}

func TestUpdateBackingMaxRatio(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	addr := ids.GenerateTestShortID()
	_, err := env.ledger.AuthorizeReserve(env.gov, addr, units.BTC, reservetype.WrappedReserve)
	require.NoError(err)

	_, err = env.ledger.UpdateBacking(addr, addr, 2*units.BTC)
	require.NoError(err)
	_, err = env.ledger.UpdateBacking(addr, addr, 2*units.BTC+1)
	require.ErrorIs(err, ErrExceedsMaxBackingRatio)
}

func TestSetMintingCap(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	addr := env.authorizeBacked(t, 2*units.BTC, 2*units.BTC)
	_, err := env.ledger.Mint(addr, addr, ids.GenerateTestShortID(), units.BTC)
	require.NoError(err)

	_, err = env.ledger.SetMintingCap(env.gov, addr, units.BTC-1)
	require.ErrorIs(err, ErrCapBelowMinted)
	_, err = env.ledger.SetMintingCap(env.gov, addr, 0)
	require.ErrorIs(err, ErrZeroMintingCap)
	_, err = env.ledger.SetMintingCap(env.gov, addr, units.BTC)
	require.NoError(err)

	r, _ := env.ledger.Reserve(addr)
	require.Zero(r.Headroom())
}

func TestTotalMintedMatchesReserves(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	reserves := []ids.ShortID{
		env.authorizeBacked(t, 10*units.BTC, 10*units.BTC),
		env.authorizeBacked(t, 10*units.BTC, 5*units.BTC),
		env.authorizeBacked(t, 3*units.BTC, 10*units.BTC),
	}
	recipient := ids.GenerateTestShortID()

	for round := uint64(1); round <= 6; round++ {
		for i, addr := range reserves {
			// Errors are expected once a reserve is saturated.
			_, _ = env.ledger.Mint(addr, addr, recipient, round*units.BTC/2)
			if (int(round)+i)%3 == 0 {
				_, _ = env.ledger.Redeem(addr, addr, units.BTC/4)
			}
		}

		var sum uint64
		for _, addr := range reserves {
			r, _ := env.ledger.Reserve(addr)
			require.LessOrEqual(r.Minted, r.Backing)
			require.LessOrEqual(r.Minted, r.MintingCap)
			sum += r.Minted
		}
		require.Equal(sum, env.ledger.TotalMinted())
	}
}

func TestCheckViolation(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	addr := env.authorizeBacked(t, units.BTC, units.BTC)

	v, err := env.ledger.CheckViolation(addr)
	require.NoError(err)
	require.False(v.Violated())

	_, err = env.ledger.CheckViolation(ids.GenerateTestShortID())
	require.ErrorIs(err, ErrReserveNotFound)
}

func TestLoad(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	a, b := ids.GenerateTestShortID(), ids.GenerateTestShortID()

	err := env.ledger.Load(map[ids.ShortID]Reserve{
		a: {Authorized: true, Type: reservetype.QCBasic, MintingCap: 5, Backing: 5, Minted: 3},
		b: {Authorized: true, Type: reservetype.QCBasic, MintingCap: 5, Backing: 5, Minted: 2},
	}, true)
	require.NoError(err)
	require.Equal(uint64(5), env.ledger.TotalMinted())
	require.True(env.ledger.SystemPaused())
	require.Len(env.ledger.ReserveAddresses(), 2)

	err = env.ledger.Load(map[ids.ShortID]Reserve{
		a: {Authorized: true, Type: reservetype.QCBasic, MintingCap: 5, Backing: 1, Minted: 3},
	}, false)
	require.ErrorIs(err, ErrInsufficientBacking)
	// A paused reserve may carry an attested shortfall.
	err = env.ledger.Load(map[ids.ShortID]Reserve{
		a: {Authorized: true, Type: reservetype.QCBasic, MintingCap: 5, Backing: 1, Minted: 3, Paused: true},
	}, false)
	require.NoError(err)
	v, err := env.ledger.CheckViolation(a)
	require.NoError(err)
	require.Equal(uint64(2), v.BackingShortfall)
}

func TestApplyAttestedBacking(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, nil)
	addr := env.authorizeBacked(t, 10*units.BTC, 10*units.BTC)
	_, err := env.ledger.Mint(addr, addr, ids.GenerateTestShortID(), 6*units.BTC)
	require.NoError(err)

	evts, err := env.ledger.ApplyAttestedBacking(env.gov, addr, 8*units.BTC)
	require.NoError(err)
	require.Len(evts, 1)
	require.Equal(events.BackingUpdated, evts[0].Type)

	evts, err = env.ledger.ApplyAttestedBacking(env.gov, addr, 4*units.BTC)
	require.NoError(err)
	require.Len(evts, 2)
	require.Equal(events.ReservePaused, evts[1].Type)
	require.Equal(ReasonAttestedShortfall, evts[1].Reason)

	r, _ := env.ledger.Reserve(addr)
	require.Equal(4*units.BTC, r.Backing)
	require.True(r.Paused)
	require.Zero(r.Headroom())

	// Already paused: only the backing moves.
	evts, err = env.ledger.ApplyAttestedBacking(env.gov, addr, 3*units.BTC)
	require.NoError(err)
	require.Len(evts, 1)

	_, err = env.ledger.UnpauseReserve(env.gov, addr)
	require.ErrorIs(err, ErrInsufficientBacking)

	// Redemptions still shrink the shortfall while paused.
	_, err = env.ledger.Redeem(addr, addr, 3*units.BTC)
	require.NoError(err)
	_, err = env.ledger.UnpauseReserve(env.gov, addr)
	require.NoError(err)
}
