// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package reservetype

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/custodyvm/utils/units"
)

func TestDefaultTypes(t *testing.T) {
	require := require.New(t)

	r := NewRegistry()
	require.Equal([]Tag{QCBasic, VaultStrategy, WrappedReserve}, r.Tags())

	basic, err := r.Get(QCBasic)
	require.NoError(err)
	require.True(basic.RequiresBtcAddress)
	require.False(basic.SupportsLosses)

	vault, err := r.Get(VaultStrategy)
	require.NoError(err)
	require.True(vault.SupportsLosses)
	require.True(vault.RequiresWrapper)
	require.Equal(units.BTC, vault.MinCapFloor)
}

func TestGetUnknown(t *testing.T) {
	_, err := NewRegistry().Get("NOPE")
	require.ErrorIs(t, err, ErrInvalidReserveType)
}

func TestRegister(t *testing.T) {
	require := require.New(t)

	r := NewRegistry()
	require.ErrorIs(r.Register("", Info{Name: "x"}), ErrInvalidReserveType)
	require.ErrorIs(r.Register("CUSTOM", Info{}), ErrEmptyName)
	require.ErrorIs(r.Register(QCBasic, Info{Name: "dup"}), ErrTypeAlreadyExists)

	require.NoError(r.Register("CUSTOM", Info{Name: "Custom"}))
	info, err := r.Get("CUSTOM")
	require.NoError(err)
	require.Equal("Custom", info.Name)
}

func TestMaxBacking(t *testing.T) {
	require := require.New(t)

	_, bounded := Info{}.MaxBacking(units.BTC)
	require.False(bounded)

	limit, bounded := Info{MaxBackingRatio: 2 * BasisPoints}.MaxBacking(10 * units.BTC)
	require.True(bounded)
	require.Equal(20*units.BTC, limit)

	limit, _ = Info{MaxBackingRatio: 15_000}.MaxBacking(3)
	require.Equal(uint64(4), limit)
}
