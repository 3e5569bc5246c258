// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package units defines Bitcoin denominations and the conversion between
// satoshis and the 18-decimal token representation.
package units

import (
	"errors"

	"github.com/holiman/uint256"
)

// Denominations of value, in satoshis.
const (
	Satoshi  uint64 = 1
	MilliBTC uint64 = 100_000 * Satoshi
	BTC      uint64 = 1000 * MilliBTC

	// TokenDecimals is the number of decimals of the minted token.
	TokenDecimals = 18
	// SatoshiDecimals is the number of decimals of a bitcoin.
	SatoshiDecimals = 8
)

var (
	ErrNilAmount      = errors.New("nil token amount")
	ErrAmountOverflow = errors.New("token amount overflows satoshi range")

	// tokensPerSatoshi is 10^(TokenDecimals-SatoshiDecimals).
	tokensPerSatoshi = uint256.NewInt(10_000_000_000)
)

// TokensPerSatoshi returns a copy of the scale between token units and satoshis.
func TokensPerSatoshi() *uint256.Int {
	return new(uint256.Int).Set(tokensPerSatoshi)
}

// TokensToSatoshis converts an 18-decimal token amount to satoshis. Any
// remainder below one satoshi is truncated; rounding never favors the holder.
func TokensToSatoshis(tokens *uint256.Int) (uint64, error) {
	if tokens == nil {
		return 0, ErrNilAmount
	}
	sats := new(uint256.Int).Div(tokens, tokensPerSatoshi)
	if !sats.IsUint64() {
		return 0, ErrAmountOverflow
	}
	return sats.Uint64(), nil
}

// TokenRemainder returns the part of tokens that TokensToSatoshis discards.
func TokenRemainder(tokens *uint256.Int) *uint256.Int {
	if tokens == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Mod(tokens, tokensPerSatoshi)
}

// SatoshisToTokens converts satoshis to the 18-decimal token representation.
// It cannot overflow: 2^64 * 10^10 fits in 256 bits.
func SatoshisToTokens(sats uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(sats), tokensPerSatoshi)
}
