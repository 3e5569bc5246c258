// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package events defines the domain events emitted by every state-mutating
// operation. Operations return the events they produced; the caller decides
// how to persist or broadcast them.
package events

import (
	"time"

	"github.com/luxfi/ids"
)

// Type identifies what happened.
type Type uint8

const (
	ReserveTypeAssigned Type = iota + 1
	ReserveAuthorized
	ReserveDeauthorized
	BackingUpdated
	MintingCapUpdated
	Minted
	BatchMinted
	Redeemed
	LossBurned
	MintedDebited
	MintedCredited
	ReservePaused
	ReserveUnpaused
	SystemPaused
	SystemUnpaused

	AttestationSubmitted
	ConsensusReached
	ConsensusForced
	OracleParamsUpdated

	QCRegistered
	QCStatusChanged
	QCCapacityIncreased
	BackingSynced
	WalletRegistered
	WalletDeregistrationRequested
	WalletDeregistrationCancelled
	WalletDeregistered

	ProposalCreated
	ProposalVoted
	ProposalExecuted
	ProposalExpired
	WatchdogRegistered
	WatchdogDeactivated
	ConsensusParamsUpdated
)

func (t Type) String() string {
	switch t {
	case ReserveTypeAssigned:
		return "reserve_type_assigned"
	case ReserveAuthorized:
		return "reserve_authorized"
	case ReserveDeauthorized:
		return "reserve_deauthorized"
	case BackingUpdated:
		return "backing_updated"
	case MintingCapUpdated:
		return "minting_cap_updated"
	case Minted:
		return "minted"
	case BatchMinted:
		return "batch_minted"
	case Redeemed:
		return "redeemed"
	case LossBurned:
		return "loss_burned"
	case MintedDebited:
		return "minted_debited"
	case MintedCredited:
		return "minted_credited"
	case ReservePaused:
		return "reserve_paused"
	case ReserveUnpaused:
		return "reserve_unpaused"
	case SystemPaused:
		return "system_paused"
	case SystemUnpaused:
		return "system_unpaused"
	case AttestationSubmitted:
		return "attestation_submitted"
	case ConsensusReached:
		return "consensus_reached"
	case ConsensusForced:
		return "consensus_forced"
	case OracleParamsUpdated:
		return "oracle_params_updated"
	case QCRegistered:
		return "qc_registered"
	case QCStatusChanged:
		return "qc_status_changed"
	case QCCapacityIncreased:
		return "qc_capacity_increased"
	case BackingSynced:
		return "backing_synced"
	case WalletRegistered:
		return "wallet_registered"
	case WalletDeregistrationRequested:
		return "wallet_deregistration_requested"
	case WalletDeregistrationCancelled:
		return "wallet_deregistration_cancelled"
	case WalletDeregistered:
		return "wallet_deregistered"
	case ProposalCreated:
		return "proposal_created"
	case ProposalVoted:
		return "proposal_voted"
	case ProposalExecuted:
		return "proposal_executed"
	case ProposalExpired:
		return "proposal_expired"
	case WatchdogRegistered:
		return "watchdog_registered"
	case WatchdogDeactivated:
		return "watchdog_deactivated"
	case ConsensusParamsUpdated:
		return "consensus_params_updated"
	default:
		return "unknown"
	}
}

// Event is a single audit-trail entry. Only the fields relevant to Type are
// populated.
type Event struct {
	Type Type      `json:"type"`
	Time time.Time `json:"time"`
	// Actor is the caller that triggered the event.
	Actor ids.ShortID `json:"actor"`

	// Reserve is the custodian (reserve/QC) the event concerns.
	Reserve ids.ShortID `json:"reserve,omitempty"`
	// Account is a secondary party: mint recipient, attester or watchdog.
	Account ids.ShortID `json:"account,omitempty"`
	// ProposalID is set for watchdog consensus events.
	ProposalID ids.ID `json:"proposalId,omitempty"`
	// Kind carries a sub-type, e.g. the proposal type or reserve type tag.
	Kind string `json:"kind,omitempty"`

	Wallet    string        `json:"wallet,omitempty"`
	Amount    uint64        `json:"amount,omitempty"`
	Balance   uint64        `json:"balance,omitempty"`
	From      string        `json:"from,omitempty"`
	To        string        `json:"to,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	Stale     bool          `json:"stale,omitempty"`
	Forced    bool          `json:"forced,omitempty"`
	Attesters []ids.ShortID `json:"attesters,omitempty"`
	Count     uint32        `json:"count,omitempty"`
}

// Filter returns the events of type t.
func Filter(evts []Event, t Type) []Event {
	var out []Event
	for _, e := range evts {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
