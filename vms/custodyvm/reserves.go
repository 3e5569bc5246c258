// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package custodyvm

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/custodyvm/utils/units"
	"github.com/luxfi/custodyvm/vms/custodyvm/auth"
	"github.com/luxfi/custodyvm/vms/custodyvm/events"
	"github.com/luxfi/custodyvm/vms/custodyvm/qc"
	"github.com/luxfi/custodyvm/vms/custodyvm/reservetype"

	safemath "github.com/luxfi/custodyvm/utils/math"
)

// RegisterReserveType adds a governance-defined reserve type.
func (e *Engine) RegisterReserveType(caller ids.ShortID, tag reservetype.Tag, info reservetype.Info) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	_, err := e.apply("registerReserveType", func() ([]events.Event, error) {
		if err := auth.Require(e.auth, auth.Governance, caller); err != nil {
			return nil, err
		}
		if err := e.types.Register(tag, info); err != nil {
			return nil, err
		}
		e.log.Info("reserve type registered",
			log.String("tag", string(tag)),
			log.String("name", info.Name),
		)
		return nil, nil
	})
	return err
}

func (e *Engine) AuthorizeReserve(caller, addr ids.ShortID, mintingCap uint64, tag reservetype.Tag) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("authorizeReserve", func() ([]events.Event, error) {
		return e.ledger.AuthorizeReserve(caller, addr, mintingCap, tag)
	})
}

func (e *Engine) DeauthorizeReserve(caller, addr ids.ShortID) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("deauthorizeReserve", func() ([]events.Event, error) {
		return e.ledger.DeauthorizeReserve(caller, addr)
	})
}

func (e *Engine) UpdateBacking(caller, addr ids.ShortID, backing uint64) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("updateBacking", func() ([]events.Event, error) {
		return e.ledger.UpdateBacking(caller, addr, backing)
	})
}

func (e *Engine) SetMintingCap(caller, addr ids.ShortID, mintingCap uint64) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("setMintingCap", func() ([]events.Event, error) {
		return e.ledger.SetMintingCap(caller, addr, mintingCap)
	})
}

// requireMintable fails if addr is a registered QC that is not Active, or
// whose oracle consensus would no longer cover minted plus amount.
// Reserves that are not QCs are gated by the ledger alone.
func (e *Engine) requireMintable(addr ids.ShortID, amount uint64) error {
	q, ok := e.qcs.QC(addr)
	if !ok {
		return nil
	}
	if q.Status != qc.Active {
		return fmt.Errorf("%w: %s is %s", ErrQCNotActive, addr, q.Status)
	}
	c, ok := e.oracle.Consensus(addr)
	if !ok {
		return nil
	}
	r, _ := e.ledger.Reserve(addr)
	if minted, err := safemath.Add(r.Minted, amount); err != nil || minted > c.Balance {
		return fmt.Errorf("%w: minted %d + %d > attested %d", ErrExceedsAttestedReserves, r.Minted, amount, c.Balance)
	}
	return nil
}

func (e *Engine) Mint(caller, addr, recipient ids.ShortID, amount uint64) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("mint", func() ([]events.Event, error) {
		if err := e.requireMintable(addr, amount); err != nil {
			return nil, err
		}
		return e.ledger.Mint(caller, addr, recipient, amount)
	})
}

// MintTokens mints an 18-decimal token amount, truncated to satoshis.
func (e *Engine) MintTokens(caller, addr, recipient ids.ShortID, tokens *uint256.Int) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("mintTokens", func() ([]events.Event, error) {
		sats, err := units.TokensToSatoshis(tokens)
		if err != nil {
			return nil, err
		}
		if err := e.requireMintable(addr, sats); err != nil {
			return nil, err
		}
		return e.ledger.MintTokens(caller, addr, recipient, tokens)
	})
}

func (e *Engine) BatchMint(caller, addr ids.ShortID, recipients []ids.ShortID, amounts []uint64) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("batchMint", func() ([]events.Event, error) {
		total, err := safemath.Sum(amounts...)
		if err != nil {
			return nil, err
		}
		if err := e.requireMintable(addr, total); err != nil {
			return nil, err
		}
		return e.ledger.BatchMint(caller, addr, recipients, amounts)
	})
}

func (e *Engine) Redeem(caller, addr ids.ShortID, amount uint64) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("redeem", func() ([]events.Event, error) {
		return e.ledger.Redeem(caller, addr, amount)
	})
}

func (e *Engine) RedeemTokens(caller, addr ids.ShortID, tokens *uint256.Int) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("redeemTokens", func() ([]events.Event, error) {
		return e.ledger.RedeemTokens(caller, addr, tokens)
	})
}

func (e *Engine) BurnLoss(caller, addr ids.ShortID, amount uint64) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("burnLoss", func() ([]events.Event, error) {
		return e.ledger.BurnLoss(caller, addr, amount)
	})
}

func (e *Engine) BurnTokenLoss(caller, addr ids.ShortID, tokens *uint256.Int) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("burnTokenLoss", func() ([]events.Event, error) {
		return e.ledger.BurnTokenLoss(caller, addr, tokens)
	})
}

func (e *Engine) DebitMinted(caller, addr ids.ShortID, amount uint64) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("debitMinted", func() ([]events.Event, error) {
		return e.ledger.DebitMinted(caller, addr, amount)
	})
}

func (e *Engine) CreditMinted(caller, addr ids.ShortID, amount uint64) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("creditMinted", func() ([]events.Event, error) {
		return e.ledger.CreditMinted(caller, addr, amount)
	})
}

func (e *Engine) PauseReserve(caller, addr ids.ShortID, reason string) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("pauseReserve", func() ([]events.Event, error) {
		return e.ledger.PauseReserve(caller, addr, reason)
	})
}

func (e *Engine) UnpauseReserve(caller, addr ids.ShortID) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("unpauseReserve", func() ([]events.Event, error) {
		return e.ledger.UnpauseReserve(caller, addr)
	})
}

func (e *Engine) PauseSystem(caller ids.ShortID, reason string) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("pauseSystem", func() ([]events.Event, error) {
		return e.ledger.PauseSystem(caller, reason)
	})
}

func (e *Engine) UnpauseSystem(caller ids.ShortID) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("unpauseSystem", func() ([]events.Event, error) {
		return e.ledger.UnpauseSystem(caller)
	})
}

func (e *Engine) SubmitAttestation(caller, addr ids.ShortID, balance uint64) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("submitAttestation", func() ([]events.Event, error) {
		return e.oracle.SubmitAttestation(caller, addr, balance)
	})
}

func (e *Engine) ForceConsensus(caller, addr ids.ShortID) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("forceConsensus", func() ([]events.Event, error) {
		return e.oracle.ForceConsensus(caller, addr)
	})
}

func (e *Engine) SetConsensusThreshold(caller ids.ShortID, threshold uint32) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("setConsensusThreshold", func() ([]events.Event, error) {
		return e.oracle.SetConsensusThreshold(caller, threshold)
	})
}

func (e *Engine) SetAttestationTimeout(caller ids.ShortID, timeout time.Duration) ([]events.Event, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.apply("setAttestationTimeout", func() ([]events.Event, error) {
		return e.oracle.SetAttestationTimeout(caller, timeout)
	})
}
