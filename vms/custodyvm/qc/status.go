// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package qc

import "fmt"

// Status is the lifecycle state of a qualified custodian.
type Status uint8

const (
	Registered Status = iota + 1
	Active
	MintingPaused
	UnderReview
	Revoked
)

func (s Status) String() string {
	switch s {
	case Registered:
		return "registered"
	case Active:
		return "active"
	case MintingPaused:
		return "minting_paused"
	case UnderReview:
		return "under_review"
	case Revoked:
		return "revoked"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, error) {
	for status := Registered; status <= Revoked; status++ {
		if status.String() == s {
			return status, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// transitions lists every allowed edge. Anything absent is refused.
var transitions = map[Status][]Status{
	Registered:    {Active, Revoked},
	Active:        {MintingPaused, UnderReview, Revoked},
	MintingPaused: {Active, UnderReview, Revoked},
	UnderReview:   {Active, MintingPaused, Revoked},
}

// CanTransition reports whether a custodian in from may move to to.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError is returned for a status change outside the
// transition table.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// WalletStatus is the lifecycle state of a registered Bitcoin wallet.
type WalletStatus uint8

const (
	WalletActive WalletStatus = iota + 1
	WalletPendingDeregistration
	WalletDeregistered
)

func (s WalletStatus) String() string {
	switch s {
	case WalletActive:
		return "active"
	case WalletPendingDeregistration:
		return "pending_deregistration"
	case WalletDeregistered:
		return "deregistered"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}
