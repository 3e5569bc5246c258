// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package watchdog

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/math/set"

	"github.com/luxfi/custodyvm/vms/custodyvm/auth"
	"github.com/luxfi/custodyvm/vms/custodyvm/events"
)

func sorted(s set.Set[ids.ShortID]) []ids.ShortID {
	keys := s.List()
	slices.SortFunc(keys, func(a, b ids.ShortID) int { return bytes.Compare(a[:], b[:]) })
	return keys
}

// Watchdogs returns the active committee, sorted.
func (m *Manager) Watchdogs() []ids.ShortID {
	return sorted(m.watchdogs)
}

func (m *Manager) IsActive(watchdog ids.ShortID) bool {
	return m.watchdogs.Contains(watchdog)
}

// ApprovedTargets returns the intervention targets governance approved,
// sorted.
func (m *Manager) ApprovedTargets() []ids.ShortID {
	return sorted(m.targets)
}

// RegisterWatchdog adds watchdog to the active committee.
func (m *Manager) RegisterWatchdog(caller, watchdog ids.ShortID) ([]events.Event, error) {
	if err := auth.Require(m.auth, auth.Governance, caller); err != nil {
		return nil, err
	}
	if watchdog == ids.ShortEmpty {
		return nil, ErrZeroAddress
	}
	if m.IsActive(watchdog) {
		return nil, fmt.Errorf("%w: %s", ErrWatchdogAlreadyActive, watchdog)
	}

	m.watchdogs.Add(watchdog)
	m.log.Info("watchdog registered",
		log.Stringer("watchdog", watchdog),
		log.Int("active", m.watchdogs.Len()),
	)
	return []events.Event{{
		Type:    events.WatchdogRegistered,
		Time:    m.clock.Time(),
		Actor:   caller,
		Account: watchdog,
		Count:   uint32(m.watchdogs.Len()),
	}}, nil
}

// DeactivateWatchdog removes watchdog from the active committee. The committee
// never shrinks below MinWatchdogs or below the current RequiredVotes.
func (m *Manager) DeactivateWatchdog(caller, watchdog ids.ShortID, reason string) ([]events.Event, error) {
	if err := auth.Require(m.auth, auth.Governance, caller); err != nil {
		return nil, err
	}
	if !m.IsActive(watchdog) {
		return nil, fmt.Errorf("%w: %s", ErrNotActiveWatchdog, watchdog)
	}
	remaining := uint32(m.watchdogs.Len() - 1)
	if floor := max(MinWatchdogs, m.params.RequiredVotes); remaining < floor {
		return nil, fmt.Errorf("%w: %d remaining < %d", ErrBelowMinimumWatchdogCount, remaining, floor)
	}

	m.watchdogs.Remove(watchdog)
	m.log.Info("watchdog deactivated",
		log.Stringer("watchdog", watchdog),
		log.String("reason", reason),
		log.Uint32("active", remaining),
	)
	return []events.Event{{
		Type:    events.WatchdogDeactivated,
		Time:    m.clock.Time(),
		Actor:   caller,
		Account: watchdog,
		Reason:  reason,
		Count:   remaining,
	}}, nil
}

// ApproveTarget allows force interventions against target.
func (m *Manager) ApproveTarget(caller, target ids.ShortID) error {
	if err := auth.Require(m.auth, auth.Governance, caller); err != nil {
		return err
	}
	if target == ids.ShortEmpty {
		return ErrZeroAddress
	}
	m.targets.Add(target)
	m.log.Info("intervention target approved", log.Stringer("target", target))
	return nil
}

// RevokeTarget disallows force interventions against target, including
// pending proposals.
func (m *Manager) RevokeTarget(caller, target ids.ShortID) error {
	if err := auth.Require(m.auth, auth.Governance, caller); err != nil {
		return err
	}
	if !m.targets.Contains(target) {
		return fmt.Errorf("%w: %s", ErrTargetNotApproved, target)
	}
	m.targets.Remove(target)
	m.log.Info("intervention target revoked", log.Stringer("target", target))
	return nil
}
