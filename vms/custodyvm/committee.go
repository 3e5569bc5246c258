// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package custodyvm

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/custodyvm/vms/custodyvm/auth"
	"github.com/luxfi/custodyvm/vms/custodyvm/events"
	"github.com/luxfi/custodyvm/vms/custodyvm/qc"
	"github.com/luxfi/custodyvm/vms/custodyvm/watchdog"
)

var (
	_ auth.AuthorizationProvider = (*committeeGrant)(nil)
	_ watchdog.QCManager         = (*committeeQCs)(nil)
)

// committeeGrant gives self the registrar capability, but only while the
// committee is executing a proposal. Callers naming self directly get
// nothing from it.
type committeeGrant struct {
	self      ids.ShortID
	executing bool
}

func (g *committeeGrant) Has(capability auth.Capability, actor ids.ShortID) bool {
	return g.executing && capability == auth.Registrar && actor == g.self
}

// committeeQCs is the custodian lifecycle as seen by the watchdog committee.
type committeeQCs struct {
	grant     *committeeGrant
	lifecycle *qc.Lifecycle
}

func (c *committeeQCs) SetStatus(caller, addr ids.ShortID, to qc.Status, reason string) ([]events.Event, error) {
	c.grant.executing = true
	defer func() { c.grant.executing = false }()

	return c.lifecycle.SetStatus(caller, addr, to, reason)
}

func (c *committeeQCs) RequestWalletDeregistration(caller ids.ShortID, btcAddress string) ([]events.Event, error) {
	c.grant.executing = true
	defer func() { c.grant.executing = false }()

	return c.lifecycle.RequestWalletDeregistration(caller, btcAddress)
}
