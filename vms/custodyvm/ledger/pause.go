// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"fmt"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/custodyvm/vms/custodyvm/auth"
	"github.com/luxfi/custodyvm/vms/custodyvm/events"
)

// Pausing needs the pauser capability (or governance); unpausing always needs
// governance. Locking down is fast, releasing is deliberate.

// PauseReserve blocks minting and backing updates for addr.
func (l *Ledger) PauseReserve(caller, addr ids.ShortID, reason string) ([]events.Event, error) {
	if err := auth.RequireAny(l.auth, caller, auth.Pauser, auth.Governance); err != nil {
		return nil, err
	}
	r, err := l.authorized(addr)
	if err != nil {
		return nil, err
	}
	if r.Paused {
		return nil, fmt.Errorf("%w: %s", ErrReservePaused, addr)
	}

	r.Paused = true
	l.log.Warn("reserve paused",
		log.Stringer("reserve", addr),
		log.Stringer("by", caller),
		log.String("reason", reason),
	)
	e := l.event(events.ReservePaused, caller, addr)
	e.Reason = reason
	return []events.Event{e}, nil
}

// UnpauseReserve lifts a reserve pause.
func (l *Ledger) UnpauseReserve(caller, addr ids.ShortID) ([]events.Event, error) {
	if err := auth.Require(l.auth, auth.Governance, caller); err != nil {
		return nil, err
	}
	r, err := l.authorized(addr)
	if err != nil {
		return nil, err
	}
	if !r.Paused {
		return nil, fmt.Errorf("%w: %s", ErrReserveNotPaused, addr)
	}
	if r.Minted > r.Backing {
		return nil, fmt.Errorf("%w: %s minted %d exceeds backing %d", ErrInsufficientBacking, addr, r.Minted, r.Backing)
	}

	r.Paused = false
	l.log.Info("reserve unpaused", log.Stringer("reserve", addr))
	return []events.Event{l.event(events.ReserveUnpaused, caller, addr)}, nil
}

// PauseSystem blocks every reserve.
func (l *Ledger) PauseSystem(caller ids.ShortID, reason string) ([]events.Event, error) {
	if err := auth.RequireAny(l.auth, caller, auth.Pauser, auth.Governance); err != nil {
		return nil, err
	}
	if l.systemPaused {
		return nil, ErrSystemPaused
	}

	l.systemPaused = true
	l.log.Warn("system paused",
		log.Stringer("by", caller),
		log.String("reason", reason),
	)
	e := l.event(events.SystemPaused, caller, ids.ShortEmpty)
	e.Reason = reason
	return []events.Event{e}, nil
}

// UnpauseSystem lifts the system pause.
func (l *Ledger) UnpauseSystem(caller ids.ShortID) ([]events.Event, error) {
	if err := auth.Require(l.auth, auth.Governance, caller); err != nil {
		return nil, err
	}
	if !l.systemPaused {
		return nil, ErrSystemNotPaused
	}

	l.systemPaused = false
	l.log.Info("system unpaused", log.Stringer("by", caller))
	return []events.Event{l.event(events.SystemUnpaused, caller, ids.ShortEmpty)}, nil
}
