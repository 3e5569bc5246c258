// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package custodyvm tracks custodian reserves backing a BTC-pegged token,
// aggregates reserve attestations and runs the watchdog committee that
// oversees custodians.
package custodyvm

import (
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	utilmetric "github.com/luxfi/custodyvm/utils/metric"
	"github.com/luxfi/custodyvm/utils/timer/mockable"
	"github.com/luxfi/custodyvm/vms/custodyvm/auth"
	"github.com/luxfi/custodyvm/vms/custodyvm/config"
	"github.com/luxfi/custodyvm/vms/custodyvm/events"
	"github.com/luxfi/custodyvm/vms/custodyvm/ledger"
	"github.com/luxfi/custodyvm/vms/custodyvm/metrics"
	"github.com/luxfi/custodyvm/vms/custodyvm/oracle"
	"github.com/luxfi/custodyvm/vms/custodyvm/qc"
	"github.com/luxfi/custodyvm/vms/custodyvm/reservetype"
	"github.com/luxfi/custodyvm/vms/custodyvm/state"
	"github.com/luxfi/custodyvm/vms/custodyvm/watchdog"
)

var (
	ErrQCNotActive             = errors.New("QC is not active")
	ErrExceedsAttestedReserves = errors.New("exceeds attested reserves")
)

// Backends are the collaborators the engine calls out to. Redemptions and
// Interventions may be nil, in which case proposals needing them fail at
// execution.
type Backends struct {
	Auth          auth.AuthorizationProvider
	Tokens        ledger.TokenLedger
	SPV           qc.SPVVerifier
	Redemptions   watchdog.RedemptionHandler
	Interventions watchdog.InterventionTarget
}

// Engine owns every component and serializes access to them. Each mutating
// call either commits all of its effects to the database or none of them.
type Engine struct {
	lock sync.RWMutex

	config    config.Config
	backends  Backends
	committee *committeeGrant
	auth      auth.AuthorizationProvider
	clock     *mockable.Clock
	log       log.Logger
	metrics   metrics.Metrics
	api       utilmetric.APIInterceptor
	state     *state.State

	types     *reservetype.Registry
	ledger    *ledger.Ledger
	oracle    *oracle.Oracle
	qcs       *qc.Lifecycle
	watchdogs *watchdog.Manager
}

// New builds an engine over db, restoring whatever it previously persisted.
func New(
	cfg config.Config,
	backends Backends,
	db database.Database,
	registry metric.Registry,
	clock *mockable.Clock,
	logger log.Logger,
) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m, err := metrics.New(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	api, err := utilmetric.NewAPIInterceptor("custody_api", registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register API metrics: %w", err)
	}

	committee := &committeeGrant{self: cfg.WatchdogSelf}
	e := &Engine{
		config:    cfg,
		backends:  backends,
		committee: committee,
		auth:      auth.Union{backends.Auth, committee},
		clock:     clock,
		log:       logger,
		metrics:   m,
		api:       api,
		state:     state.New(db),
	}
	if err := e.load(); err != nil {
		return nil, err
	}

	// First start: record the configured parameters.
	if _, ok, err := e.state.Metadata(); err != nil {
		return nil, err
	} else if !ok {
		if err := e.persist(nil); err != nil {
			e.state.Abort()
			return nil, err
		}
	}
	e.updateGauges()

	e.log.Info("custody engine started",
		log.Int("reserves", len(e.ledger.ReserveAddresses())),
		log.Int("watchdogs", len(e.watchdogs.Watchdogs())),
		log.Int("proposals", len(e.watchdogs.ProposalIDs())),
		log.Stringer("totalMinted", btcutil.Amount(e.ledger.TotalMinted())),
	)
	return e, nil
}

// load rebuilds every component from the committed database contents.
func (e *Engine) load() error {
	network, err := e.config.Params()
	if err != nil {
		return err
	}

	md, ok, err := e.state.Metadata()
	if err != nil {
		return err
	}
	if !ok {
		md = state.Metadata{
			OracleParams:   e.config.Oracle,
			WatchdogParams: e.config.Watchdog,
		}
	}

	types := reservetype.NewRegistry()
	custom, err := e.state.ReserveTypes()
	if err != nil {
		return err
	}
	for tag, info := range custom {
		if err := types.Register(tag, info); err != nil {
			return fmt.Errorf("restoring reserve type %s: %w", tag, err)
		}
	}

	l := ledger.New(types, e.auth, e.backends.Tokens, e.config.Limits, e.clock, e.log)
	reserves, err := e.state.Reserves()
	if err != nil {
		return err
	}
	if err := l.Load(reserves, md.SystemPaused); err != nil {
		return err
	}

	o, err := oracle.New(md.OracleParams, e.auth, e.clock, e.log)
	if err != nil {
		return err
	}
	attestations, consensus, err := e.state.Oracle()
	if err != nil {
		return err
	}
	if err := o.Load(md.OracleParams, attestations, consensus); err != nil {
		return err
	}

	lc := qc.New(l, o, e.backends.SPV, e.auth, network, e.clock, e.log)
	qcs, err := e.state.QCs()
	if err != nil {
		return err
	}
	wallets, err := e.state.Wallets()
	if err != nil {
		return err
	}
	if err := lc.Load(qcs, wallets); err != nil {
		return err
	}

	w, err := watchdog.New(watchdog.Config{
		Self:          e.config.WatchdogSelf,
		Params:        md.WatchdogParams,
		QCs:           &committeeQCs{grant: e.committee, lifecycle: lc},
		Redemptions:   e.backends.Redemptions,
		Interventions: e.backends.Interventions,
		Auth:          e.auth,
		Clock:         e.clock,
		Log:           e.log,
	})
	if err != nil {
		return err
	}
	proposals, err := e.state.Proposals()
	if err != nil {
		return err
	}
	if err := w.Load(md.WatchdogParams, md.ProposalNonce, md.Watchdogs, md.Targets, proposals); err != nil {
		return err
	}

	e.types = types
	e.ledger = l
	e.oracle = o
	e.qcs = lc
	e.watchdogs = w
	return nil
}

// apply runs op and persists what it touched. A rejected op changes nothing.
// If persisting fails the database is rolled back and the components are
// reloaded from it.
func (e *Engine) apply(name string, op func() ([]events.Event, error)) ([]events.Event, error) {
	evts, err := op()
	if err != nil {
		e.metrics.MarkFailure()
		e.log.Debug("operation rejected",
			log.String("op", name),
			log.Err(err),
		)
		return nil, err
	}
	if err := e.persist(evts); err != nil {
		e.state.Abort()
		e.metrics.MarkFailure()
		e.log.Error("failed to persist operation",
			log.String("op", name),
			log.Err(err),
		)
		if loadErr := e.load(); loadErr != nil {
			return nil, errors.Join(err, loadErr)
		}
		return nil, err
	}

	for _, evt := range evts {
		e.log.Debug("event",
			log.Stringer("type", evt.Type),
			log.String("op", name),
			log.Stringer("actor", evt.Actor),
			log.Stringer("reserve", evt.Reserve),
		)
	}
	e.metrics.MarkEvents(evts)
	e.updateGauges()
	return evts, nil
}

// persist writes every record referenced by evts, plus the metadata and
// custom reserve types, and commits.
func (e *Engine) persist(evts []events.Event) error {
	var (
		reserves  = make(map[ids.ShortID]struct{})
		wallets   = make(map[string]struct{})
		proposals = make(map[ids.ID]struct{})
	)
	for _, evt := range evts {
		if evt.Reserve != ids.ShortEmpty {
			reserves[evt.Reserve] = struct{}{}
		}
		if evt.Wallet != "" {
			wallets[evt.Wallet] = struct{}{}
		}
		if evt.ProposalID != ids.Empty {
			proposals[evt.ProposalID] = struct{}{}
		}
	}

	for addr := range reserves {
		if r, ok := e.ledger.Reserve(addr); ok {
			if err := e.state.PutReserve(addr, r); err != nil {
				return err
			}
		}
		if q, ok := e.qcs.QC(addr); ok {
			if err := e.state.PutQC(addr, q); err != nil {
				return err
			}
		}
		if attestations := e.oracle.Attestations(addr); len(attestations) > 0 {
			c, ok := e.oracle.Consensus(addr)
			if err := e.state.PutOracle(addr, attestations, c, ok); err != nil {
				return err
			}
		}
	}
	for address := range wallets {
		if w, ok := e.qcs.Wallet(address); ok {
			if err := e.state.PutWallet(w); err != nil {
				return err
			}
		}
	}
	for id := range proposals {
		p, ok := e.watchdogs.Proposal(id)
		if !ok {
			if err := e.state.DeleteProposal(id); err != nil {
				return err
			}
			continue
		}
		if err := e.state.PutProposal(p); err != nil {
			return err
		}
	}

	defaults := reservetype.DefaultTypes()
	for _, tag := range e.types.Tags() {
		if _, ok := defaults[tag]; ok {
			continue
		}
		info, err := e.types.Get(tag)
		if err != nil {
			return err
		}
		if err := e.state.PutReserveType(tag, info); err != nil {
			return err
		}
	}

	err := e.state.PutMetadata(state.Metadata{
		SystemPaused:   e.ledger.SystemPaused(),
		OracleParams:   e.oracle.Params(),
		WatchdogParams: e.watchdogs.Params(),
		ProposalNonce:  e.watchdogs.Nonce(),
		Watchdogs:      e.watchdogs.Watchdogs(),
		Targets:        e.watchdogs.ApprovedTargets(),
	})
	if err != nil {
		return err
	}
	return e.state.Commit()
}

func (e *Engine) updateGauges() {
	e.metrics.SetTotalMinted(e.ledger.TotalMinted())
	e.metrics.SetReserves(len(e.ledger.ReserveAddresses()))
	e.metrics.SetWatchdogs(len(e.watchdogs.Watchdogs()))
	e.metrics.SetLiveProposals(len(e.watchdogs.ProposalIDs()))
}

// Close releases the database handles.
func (e *Engine) Close() error {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.state.Close()
}
