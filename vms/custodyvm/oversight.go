// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package custodyvm

import (
	"time"

	"github.com/luxfi/ids"

	"github.com/luxfi/custodyvm/vms/custodyvm/events"
	"github.com/luxfi/custodyvm/vms/custodyvm/qc"
)

func (e *Engine) ProposeStatusChange(caller, addr ids.ShortID, status qc.Status, reason string) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("proposeStatusChange", func() ([]events.Event, error) {
		return e.watchdogs.ProposeStatusChange(caller, addr, status, reason)
	})
}

func (e *Engine) ProposeWalletDeregistration(caller ids.ShortID, btcAddress, reason string) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("proposeWalletDeregistration", func() ([]events.Event, error) {
		address, err := e.qcs.CanonicalAddress(btcAddress)
		if err != nil {
			return nil, err
		}
		return e.watchdogs.ProposeWalletDeregistration(caller, address, reason)
	})
}

func (e *Engine) ProposeRedemptionDefault(caller ids.ShortID, redemptionID ids.ID, reason string) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("proposeRedemptionDefault", func() ([]events.Event, error) {
		return e.watchdogs.ProposeRedemptionDefault(caller, redemptionID, reason)
	})
}

func (e *Engine) ProposeForceIntervention(caller, target ids.ShortID, calldata []byte, reason string) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("proposeForceIntervention", func() ([]events.Event, error) {
		return e.watchdogs.ProposeForceIntervention(caller, target, calldata, reason)
	})
}

func (e *Engine) Vote(caller ids.ShortID, proposalID ids.ID) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("vote", func() ([]events.Event, error) {
		return e.watchdogs.Vote(caller, proposalID)
	})
}

func (e *Engine) ExecuteProposal(caller ids.ShortID, proposalID ids.ID) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("executeProposal", func() ([]events.Event, error) {
		return e.watchdogs.ExecuteProposal(caller, proposalID)
	})
}

func (e *Engine) UpdateConsensusParams(caller ids.ShortID, requiredVotes, totalWatchdogs uint32) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("updateConsensusParams", func() ([]events.Event, error) {
		return e.watchdogs.UpdateConsensusParams(caller, requiredVotes, totalWatchdogs)
	})
}

func (e *Engine) SetVotingPeriod(caller ids.ShortID, period time.Duration) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("setVotingPeriod", func() ([]events.Event, error) {
		return e.watchdogs.SetVotingPeriod(caller, period)
	})
}

// CleanupExpired expires the listed proposals that are past their deadline.
// Anyone may call it.
func (e *Engine) CleanupExpired(caller ids.ShortID, proposalIDs []ids.ID) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("cleanupExpired", func() ([]events.Event, error) {
		return e.watchdogs.CleanupExpired(caller, proposalIDs), nil
	})
}

func (e *Engine) RegisterWatchdog(caller, w ids.ShortID) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("registerWatchdog", func() ([]events.Event, error) {
		return e.watchdogs.RegisterWatchdog(caller, w)
	})
}

func (e *Engine) DeactivateWatchdog(caller, w ids.ShortID, reason string) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("deactivateWatchdog", func() ([]events.Event, error) {
		return e.watchdogs.DeactivateWatchdog(caller, w, reason)
	})
}

func (e *Engine) ApproveTarget(caller, target ids.ShortID) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	_, err := e.apply("approveTarget", func() ([]events.Event, error) {
		return nil, e.watchdogs.ApproveTarget(caller, target)
	})
	return err
}

func (e *Engine) RevokeTarget(caller, target ids.ShortID) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	_, err := e.apply("revokeTarget", func() ([]events.Event, error) {
		return nil, e.watchdogs.RevokeTarget(caller, target)
	})
	return err
}
