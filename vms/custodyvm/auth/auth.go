// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package auth defines the capabilities checked at every state-mutating entry
// point and a simple in-memory provider for them.
package auth

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/ids"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUnknownCapability = errors.New("unknown capability")
)

// Capability is a permission an actor may hold.
type Capability uint8

const (
	// Governance administers parameters, reserve types and unpausing.
	Governance Capability = iota + 1
	// Arbiter resolves disputes: forced consensus, wallet deregistration
	// finalization and loss realization.
	Arbiter
	// Watchdog may propose and vote on oversight actions.
	Watchdog
	// Attester submits reserve balance opinions.
	Attester
	// Pauser may pause a reserve or the whole system.
	Pauser
	// Minter may mint on behalf of an authorized reserve.
	Minter
	// Redeemer may redeem on behalf of an authorized reserve.
	Redeemer
	// Registrar manages custodian registration and status.
	Registrar
	// OracleSync may push oracle balances into reserve backing.
	OracleSync
)

func (c Capability) String() string {
	switch c {
	case Governance:
		return "governance"
	case Arbiter:
		return "arbiter"
	case Watchdog:
		return "watchdog"
	case Attester:
		return "attester"
	case Pauser:
		return "pauser"
	case Minter:
		return "minter"
	case Redeemer:
		return "redeemer"
	case Registrar:
		return "registrar"
	case OracleSync:
		return "oracle_sync"
	default:
		return "unknown"
	}
}

// ParseCapability is the inverse of Capability.String.
func ParseCapability(s string) (Capability, error) {
	for c := Governance; c <= OracleSync; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCapability, s)
}

// AuthorizationProvider answers whether an actor holds a capability.
type AuthorizationProvider interface {
	Has(capability Capability, actor ids.ShortID) bool
}

// Require returns ErrUnauthorized unless actor holds capability.
func Require(p AuthorizationProvider, capability Capability, actor ids.ShortID) error {
	if p == nil || !p.Has(capability, actor) {
		return fmt.Errorf("%w: %s lacks %s", ErrUnauthorized, actor, capability)
	}
	return nil
}

// RequireAny returns ErrUnauthorized unless actor holds one of capabilities.
func RequireAny(p AuthorizationProvider, actor ids.ShortID, capabilities ...Capability) error {
	for _, c := range capabilities {
		if p != nil && p.Has(c, actor) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s lacks any of %v", ErrUnauthorized, actor, capabilities)
}

var _ AuthorizationProvider = (*RoleSet)(nil)

// RoleSet is an in-memory AuthorizationProvider.
type RoleSet struct {
	mu    sync.RWMutex
	roles map[Capability]map[ids.ShortID]struct{}
}

func NewRoleSet() *RoleSet {
	return &RoleSet{
		roles: make(map[Capability]map[ids.ShortID]struct{}),
	}
}

// Grant gives each of capabilities to actor.
func (r *RoleSet) Grant(actor ids.ShortID, capabilities ...Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range capabilities {
		holders, ok := r.roles[c]
		if !ok {
			holders = make(map[ids.ShortID]struct{})
			r.roles[c] = holders
		}
		holders[actor] = struct{}{}
	}
}

// Revoke removes each of capabilities from actor.
func (r *RoleSet) Revoke(actor ids.ShortID, capabilities ...Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range capabilities {
		delete(r.roles[c], actor)
	}
}

func (r *RoleSet) Has(capability Capability, actor ids.ShortID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.roles[capability][actor]
	return ok
}

var _ AuthorizationProvider = Union(nil)

// Union grants a capability if any of its providers does.
type Union []AuthorizationProvider

func (u Union) Has(capability Capability, actor ids.ShortID) bool {
	for _, p := range u {
		if p != nil && p.Has(capability, actor) {
			return true
		}
	}
	return false
}
