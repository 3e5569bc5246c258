// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wrappers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackerLayout(t *testing.T) {
	require := require.New(t)

	p := NewPacker(64)
	p.PackByte(0x01)
	p.PackShort(0x0203)
	p.PackLong(4)
	p.PackBool(true)
	p.PackStr("ab")
	require.NoError(p.Err)
	require.Equal([]byte{
		0x01,
		0x02, 0x03,
		0, 0, 0, 0, 0, 0, 0, 4,
		0x01,
		0x00, 0x02, 'a', 'b',
	}, p.Bytes)
}

func TestPackerMaxSize(t *testing.T) {
	require := require.New(t)

	p := NewPacker(4)
	p.PackInt(1)
	require.NoError(p.Err)
	p.PackByte(1)
	require.ErrorIs(p.Err, ErrInsufficientLength)

	// Errors are sticky.
	p.PackFixedBytes(nil)
	require.ErrorIs(p.Err, ErrInsufficientLength)
	require.Len(p.Bytes, 4)
}

func TestErrsKeepsFirst(t *testing.T) {
	require := require.New(t)

	var errs Errs
	require.False(errs.Errored())
	errs.Add(nil, ErrInsufficientLength, errInvalidInput)
	errs.Add(errInvalidInput)
	require.ErrorIs(errs.Err, ErrInsufficientLength)
}
