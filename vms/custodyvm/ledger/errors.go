// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import "errors"

// Input validation.
var (
	ErrZeroAddress         = errors.New("zero address")
	ErrZeroAmount          = errors.New("amount is zero")
	ErrZeroMintingCap      = errors.New("minting cap is zero")
	ErrAmountTooSmall      = errors.New("amount too small")
	ErrAmountTooLarge      = errors.New("amount too large")
	ErrArrayLengthMismatch = errors.New("array length mismatch")
	ErrBatchSizeExceeded   = errors.New("batch size exceeded")
	ErrEmptyBatch          = errors.New("empty batch")
)

// Invariant guards.
var (
	ErrInsufficientBacking    = errors.New("insufficient backing")
	ErrExceedsReserveCap      = errors.New("exceeds reserve cap")
	ErrInsufficientMinted     = errors.New("insufficient minted")
	ErrOutstandingMinted      = errors.New("reserve has outstanding minted amount")
	ErrCapBelowMinted         = errors.New("minting cap below minted amount")
	ErrExceedsMaxBackingRatio = errors.New("backing exceeds maximum backing ratio")
	ErrBelowMinimumCap        = errors.New("minting cap below reserve type floor")
	ErrLossesNotSupported     = errors.New("reserve type does not support losses")
)

// Reserve state.
var (
	ErrReserveNotFound     = errors.New("reserve not found")
	ErrNotAuthorized       = errors.New("reserve not authorized")
	ErrAlreadyAuthorized   = errors.New("reserve already authorized")
	ErrReserveTypeMismatch = errors.New("reserve type differs from previously assigned type")
	ErrReservePaused       = errors.New("reserve paused")
	ErrReserveNotPaused    = errors.New("reserve not paused")
	ErrSystemPaused        = errors.New("system paused")
	ErrSystemNotPaused     = errors.New("system not paused")
)
