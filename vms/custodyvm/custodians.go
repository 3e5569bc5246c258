// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package custodyvm

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/custodyvm/vms/custodyvm/events"
	"github.com/luxfi/custodyvm/vms/custodyvm/qc"
)

func (e *Engine) RegisterQC(caller, addr ids.ShortID, mintingCapacity uint64) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("registerQC", func() ([]events.Event, error) {
		return e.qcs.RegisterQC(caller, addr, mintingCapacity)
	})
}

func (e *Engine) SetQCStatus(caller, addr ids.ShortID, status qc.Status, reason string) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("setQCStatus", func() ([]events.Event, error) {
		return e.qcs.SetStatus(caller, addr, status, reason)
	})
}

func (e *Engine) SyncBackingFromOracle(caller, addr ids.ShortID) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("syncBackingFromOracle", func() ([]events.Event, error) {
		return e.qcs.SyncBackingFromOracle(caller, addr)
	})
}

func (e *Engine) IncreaseMintingCapacity(caller, addr ids.ShortID, mintingCapacity uint64) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("increaseMintingCapacity", func() ([]events.Event, error) {
		return e.qcs.IncreaseMintingCapacity(caller, addr, mintingCapacity)
	})
}

func (e *Engine) RegisterWallet(caller, addr ids.ShortID, btcAddress string, challenge, tx, proof []byte) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("registerWallet", func() ([]events.Event, error) {
		return e.qcs.RegisterWallet(caller, addr, btcAddress, challenge, tx, proof)
	})
}

func (e *Engine) RequestWalletDeregistration(caller ids.ShortID, btcAddress string) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("requestWalletDeregistration", func() ([]events.Event, error) {
		return e.qcs.RequestWalletDeregistration(caller, btcAddress)
	})
}

func (e *Engine) CancelWalletDeregistration(caller ids.ShortID, btcAddress string) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("cancelWalletDeregistration", func() ([]events.Event, error) {
		return e.qcs.CancelWalletDeregistration(caller, btcAddress)
	})
}

func (e *Engine) FinalizeWalletDeregistration(caller ids.ShortID, btcAddress string, newBacking uint64) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("finalizeWalletDeregistration", func() ([]events.Event, error) {
		return e.qcs.FinalizeWalletDeregistration(caller, btcAddress, newBacking)
	})
}
