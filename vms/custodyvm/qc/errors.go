// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package qc

import "errors"

var (
	ErrInvalidQCAddress       = errors.New("invalid QC address")
	ErrInvalidMintingCapacity = errors.New("invalid minting capacity")
	ErrInvalidWalletAddress   = errors.New("invalid wallet address")
	ErrUnknownStatus          = errors.New("unknown status")

	ErrQCWouldBecomeInsolvent = errors.New("QC would become insolvent")
	ErrCapacityNotIncreased   = errors.New("minting capacity must increase")

	ErrQCAlreadyRegistered     = errors.New("QC already registered")
	ErrQCNotRegistered         = errors.New("QC not registered")
	ErrQCRevoked               = errors.New("QC revoked")
	ErrWalletAlreadyRegistered = errors.New("wallet already registered")
	ErrWalletNotRegistered     = errors.New("wallet not registered")
	ErrWalletNotActive         = errors.New("wallet not active")
	ErrWalletNotPending        = errors.New("wallet deregistration not requested")
	ErrSPVVerificationFailed   = errors.New("SPV proof of wallet control failed")
	ErrNoActiveWallet          = errors.New("QC has no active wallet")
	ErrWalletsNotSupported     = errors.New("reserve type does not hold BTC wallets")
)
