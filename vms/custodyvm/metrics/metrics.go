// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"github.com/luxfi/metric"

	"github.com/luxfi/custodyvm/utils/wrappers"
	"github.com/luxfi/custodyvm/vms/custodyvm/events"
)

var _ Metrics = (*metricsImpl)(nil)

type Metrics interface {
	// MarkEvents counts the events emitted by one successful operation.
	MarkEvents(evts []events.Event)
	// MarkFailure counts an operation that was rejected.
	MarkFailure()

	SetTotalMinted(sats uint64)
	SetReserves(n int)
	SetWatchdogs(n int)
	SetLiveProposals(n int)
}

type metricsImpl struct {
	numMints, numRedeems, numBurns                  metric.Counter
	numProposals, numVotes, numExecuted, numExpired metric.Counter
	numAttestations, numConsensus, numForced        metric.Counter
	numStatusChanges, numPauses                     metric.Counter
	numFailures                                     metric.Counter

	totalMinted   metric.Gauge
	reserves      metric.Gauge
	watchdogs     metric.Gauge
	liveProposals metric.Gauge
}

func newCounter(name, help string) metric.Counter {
	return metric.NewCounter(metric.CounterOpts{
		Name: name,
		Help: help,
	})
}

func newGauge(name, help string) metric.Gauge {
	return metric.NewGauge(metric.GaugeOpts{
		Name: name,
		Help: help,
	})
}

func New(registerer metric.Registerer) (Metrics, error) {
	m := &metricsImpl{
		numMints:         newCounter("mints", "number of mint operations"),
		numRedeems:       newCounter("redeems", "number of redemptions"),
		numBurns:         newCounter("loss_burns", "number of loss burns"),
		numProposals:     newCounter("proposals_created", "number of watchdog proposals created"),
		numVotes:         newCounter("proposal_votes", "number of watchdog votes cast"),
		numExecuted:      newCounter("proposals_executed", "number of watchdog proposals executed"),
		numExpired:       newCounter("proposals_expired", "number of watchdog proposals expired"),
		numAttestations:  newCounter("attestations", "number of reserve attestations submitted"),
		numConsensus:     newCounter("consensus_reached", "number of times attesters reached consensus"),
		numForced:        newCounter("consensus_forced", "number of times consensus was forced by an arbiter"),
		numStatusChanges: newCounter("qc_status_changes", "number of custodian status transitions"),
		numPauses:        newCounter("pauses", "number of reserve and system pauses"),
		numFailures:      newCounter("operation_failures", "number of rejected operations"),

		totalMinted:   newGauge("total_minted", "satoshis minted across every reserve"),
		reserves:      newGauge("reserves", "number of known reserves"),
		watchdogs:     newGauge("active_watchdogs", "number of active watchdogs"),
		liveProposals: newGauge("live_proposals", "number of live watchdog proposals"),
	}

	errs := wrappers.Errs{}
	for _, c := range []metric.Counter{
		m.numMints, m.numRedeems, m.numBurns,
		m.numProposals, m.numVotes, m.numExecuted, m.numExpired,
		m.numAttestations, m.numConsensus, m.numForced,
		m.numStatusChanges, m.numPauses,
		m.numFailures,
	} {
		errs.Add(registerer.Register(metric.AsCollector(c)))
	}
	for _, g := range []metric.Gauge{
		m.totalMinted, m.reserves, m.watchdogs, m.liveProposals,
	} {
		errs.Add(registerer.Register(metric.AsCollector(g)))
	}
	return m, errs.Err
}

func (m *metricsImpl) MarkEvents(evts []events.Event) {
	for _, e := range evts {
		switch e.Type {
		case events.Minted:
			m.numMints.Inc()
		case events.Redeemed:
			m.numRedeems.Inc()
		case events.LossBurned:
			m.numBurns.Inc()
		case events.ProposalCreated:
			m.numProposals.Inc()
			m.numVotes.Inc()
		case events.ProposalVoted:
			m.numVotes.Inc()
		case events.ProposalExecuted:
			m.numExecuted.Inc()
		case events.ProposalExpired:
			m.numExpired.Inc()
		case events.AttestationSubmitted:
			m.numAttestations.Inc()
		case events.ConsensusReached:
			m.numConsensus.Inc()
		case events.ConsensusForced:
			m.numForced.Inc()
		case events.QCStatusChanged:
			m.numStatusChanges.Inc()
		case events.ReservePaused, events.SystemPaused:
			m.numPauses.Inc()
		}
	}
}

func (m *metricsImpl) MarkFailure() {
	m.numFailures.Inc()
}

func (m *metricsImpl) SetTotalMinted(sats uint64) {
	m.totalMinted.Set(float64(sats))
}

func (m *metricsImpl) SetReserves(n int) {
	m.reserves.Set(float64(n))
}

func (m *metricsImpl) SetWatchdogs(n int) {
	m.watchdogs.Set(float64(n))
}

func (m *metricsImpl) SetLiveProposals(n int) {
	m.liveProposals.Set(float64(n))
}
