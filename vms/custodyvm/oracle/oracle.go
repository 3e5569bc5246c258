// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package oracle aggregates reserve balance attestations per custodian into a
// single consensus balance.
//
// Organic consensus requires ConsensusThreshold distinct attesters reporting
// exactly the same balance within AttestationTimeout of each other. When that
// cannot happen, an arbiter may force consensus on the median of the current
// attestations.
package oracle

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/custodyvm/utils/timer/mockable"
	"github.com/luxfi/custodyvm/vms/custodyvm/auth"
	"github.com/luxfi/custodyvm/vms/custodyvm/events"

	safemath "github.com/luxfi/custodyvm/utils/math"
)

var (
	ErrZeroAddress         = errors.New("zero address")
	ErrNoValidAttestations = errors.New("No valid attestations to force consensus") //nolint:staticcheck // message is part of the public contract

	ErrInvalidThreshold = errors.New("consensus threshold must be positive")
	ErrInvalidTimeout   = errors.New("attestation timeout must be positive")
)

// Params configure consensus formation.
type Params struct {
	ConsensusThreshold uint32        `json:"consensusThreshold"`
	AttestationTimeout time.Duration `json:"attestationTimeout"`
}

// DefaultParams requires three agreeing attesters and treats consensus older
// than six hours as stale.
func DefaultParams() Params {
	return Params{
		ConsensusThreshold: 3,
		AttestationTimeout: 6 * time.Hour,
	}
}

func (p Params) Verify() error {
	switch {
	case p.ConsensusThreshold == 0:
		return ErrInvalidThreshold
	case p.AttestationTimeout <= 0:
		return ErrInvalidTimeout
	default:
		return nil
	}
}

// Attestation is one attester's current opinion of a custodian's balance.
type Attestation struct {
	Attester  ids.ShortID `json:"attester"`
	Balance   uint64      `json:"balance"`
	Timestamp time.Time   `json:"timestamp"`
}

// Consensus is the last agreed balance of a custodian.
type Consensus struct {
	Balance   uint64        `json:"balance"`
	Timestamp time.Time     `json:"timestamp"`
	Attesters []ids.ShortID `json:"attesters"`
	Forced    bool          `json:"forced"`
}

// Oracle holds attestations and consensus per custodian. Custodians never
// observe each other's state.
type Oracle struct {
	auth   auth.AuthorizationProvider
	clock  *mockable.Clock
	log    log.Logger
	params Params

	attestations map[ids.ShortID]map[ids.ShortID]Attestation
	consensus    map[ids.ShortID]Consensus
}

func New(params Params, authz auth.AuthorizationProvider, clock *mockable.Clock, logger log.Logger) (*Oracle, error) {
	if err := params.Verify(); err != nil {
		return nil, err
	}
	return &Oracle{
		auth:         authz,
		clock:        clock,
		log:          logger,
		params:       params,
		attestations: make(map[ids.ShortID]map[ids.ShortID]Attestation),
		consensus:    make(map[ids.ShortID]Consensus),
	}, nil
}

func (o *Oracle) Params() Params {
	return o.params
}

func compareShortIDs(a, b ids.ShortID) int {
	return bytes.Compare(a[:], b[:])
}

// SubmitAttestation records caller's opinion of qc's balance, replacing any
// earlier opinion from the same attester, and forms consensus if enough
// attesters now agree.
func (o *Oracle) SubmitAttestation(caller, qc ids.ShortID, balance uint64) ([]events.Event, error) {
	if err := auth.Require(o.auth, auth.Attester, caller); err != nil {
		return nil, err
	}
	if qc == ids.ShortEmpty {
		return nil, ErrZeroAddress
	}

	now := o.clock.Time()
	byAttester, ok := o.attestations[qc]
	if !ok {
		byAttester = make(map[ids.ShortID]Attestation)
		o.attestations[qc] = byAttester
	}
	byAttester[caller] = Attestation{
		Attester:  caller,
		Balance:   balance,
		Timestamp: now,
	}

	e := events.Event{
		Type:    events.AttestationSubmitted,
		Time:    now,
		Actor:   caller,
		Reserve: qc,
		Balance: balance,
	}
	evts := []events.Event{e}

	agreeing := o.agreeing(qc, balance, now)
	if uint32(len(agreeing)) < o.params.ConsensusThreshold {
		o.log.Debug("attestation recorded",
			log.Stringer("qc", qc),
			log.Stringer("attester", caller),
			log.Stringer("balance", btcutil.Amount(balance)),
			log.Int("agreeing", len(agreeing)),
		)
		return evts, nil
	}

	o.consensus[qc] = Consensus{
		Balance:   balance,
		Timestamp: now,
		Attesters: agreeing,
	}
	o.log.Info("reserve consensus reached",
		log.Stringer("qc", qc),
		log.Stringer("balance", btcutil.Amount(balance)),
		log.Int("attesters", len(agreeing)),
	)
	return append(evts, events.Event{
		Type:      events.ConsensusReached,
		Time:      now,
		Actor:     caller,
		Reserve:   qc,
		Balance:   balance,
		Attesters: agreeing,
	}), nil
}

// agreeing returns, sorted, the attesters of qc reporting exactly balance no
// earlier than AttestationTimeout before now.
func (o *Oracle) agreeing(qc ids.ShortID, balance uint64, now time.Time) []ids.ShortID {
	var attesters []ids.ShortID
	for attester, a := range o.attestations[qc] {
		if a.Balance != balance || now.Sub(a.Timestamp) > o.params.AttestationTimeout {
			continue
		}
		attesters = append(attesters, attester)
	}
	slices.SortFunc(attesters, compareShortIDs)
	return attesters
}

// ReserveBalanceAndStaleness returns the consensus balance of qc and whether
// it is older than AttestationTimeout. Without any consensus it returns
// (0, true).
func (o *Oracle) ReserveBalanceAndStaleness(qc ids.ShortID) (uint64, bool) {
	c, ok := o.consensus[qc]
	if !ok {
		return 0, true
	}
	return c.Balance, o.clock.Time().Sub(c.Timestamp) > o.params.AttestationTimeout
}

// Consensus returns the last consensus of qc.
func (o *Oracle) Consensus(qc ids.ShortID) (Consensus, bool) {
	c, ok := o.consensus[qc]
	if !ok {
		return Consensus{}, false
	}
	c.Attesters = slices.Clone(c.Attesters)
	return c, true
}

// ForceConsensus sets the consensus of qc to the median of its current
// attestations. It remains available while the custodian is under review.
func (o *Oracle) ForceConsensus(caller, qc ids.ShortID) ([]events.Event, error) {
	if err := auth.Require(o.auth, auth.Arbiter, caller); err != nil {
		return nil, err
	}
	current := o.Attestations(qc)
	if len(current) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoValidAttestations, qc)
	}

	balances := make([]uint64, len(current))
	attesters := make([]ids.ShortID, len(current))
	for i, a := range current {
		balances[i] = a.Balance
		attesters[i] = a.Attester
	}
	median, err := safemath.Median(balances)
	if err != nil {
		return nil, err
	}

	now := o.clock.Time()
	o.consensus[qc] = Consensus{
		Balance:   median,
		Timestamp: now,
		Attesters: attesters,
		Forced:    true,
	}
	o.log.Warn("reserve consensus forced",
		log.Stringer("qc", qc),
		log.Stringer("arbiter", caller),
		log.Stringer("balance", btcutil.Amount(median)),
		log.Int("attestations", len(current)),
	)
	return []events.Event{{
		Type:      events.ConsensusForced,
		Time:      now,
		Actor:     caller,
		Reserve:   qc,
		Balance:   median,
		Attesters: attesters,
		Forced:    true,
	}}, nil
}

// Attestations returns the current attestations of qc sorted by attester.
func (o *Oracle) Attestations(qc ids.ShortID) []Attestation {
	byAttester := o.attestations[qc]
	current := make([]Attestation, 0, len(byAttester))
	for _, a := range byAttester {
		current = append(current, a)
	}
	slices.SortFunc(current, func(a, b Attestation) int {
		return compareShortIDs(a.Attester, b.Attester)
	})
	return current
}

// PendingAttesters returns the attesters of qc whose current opinion is not
// part of the latest consensus.
func (o *Oracle) PendingAttesters(qc ids.ShortID) []ids.ShortID {
	c := o.consensus[qc]
	var pending []ids.ShortID
	for _, a := range o.Attestations(qc) {
		if _, found := slices.BinarySearchFunc(c.Attesters, a.Attester, compareShortIDs); !found {
			pending = append(pending, a.Attester)
		}
	}
	return pending
}

// QCs returns every custodian with attestations or consensus, sorted.
func (o *Oracle) QCs() []ids.ShortID {
	seen := make(map[ids.ShortID]struct{}, len(o.attestations))
	for qc := range o.attestations {
		seen[qc] = struct{}{}
	}
	for qc := range o.consensus {
		seen[qc] = struct{}{}
	}
	qcs := make([]ids.ShortID, 0, len(seen))
	for qc := range seen {
		qcs = append(qcs, qc)
	}
	slices.SortFunc(qcs, compareShortIDs)
	return qcs
}

func (o *Oracle) SetConsensusThreshold(caller ids.ShortID, threshold uint32) ([]events.Event, error) {
	if err := auth.Require(o.auth, auth.Governance, caller); err != nil {
		return nil, err
	}
	if threshold == 0 {
		return nil, ErrInvalidThreshold
	}
	o.params.ConsensusThreshold = threshold
	o.log.Info("consensus threshold updated", log.Uint32("threshold", threshold))
	return []events.Event{{
		Type:  events.OracleParamsUpdated,
		Time:  o.clock.Time(),
		Actor: caller,
		Kind:  "consensusThreshold",
		Count: threshold,
	}}, nil
}

func (o *Oracle) SetAttestationTimeout(caller ids.ShortID, timeout time.Duration) ([]events.Event, error) {
	if err := auth.Require(o.auth, auth.Governance, caller); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		return nil, ErrInvalidTimeout
	}
	o.params.AttestationTimeout = timeout
	o.log.Info("attestation timeout updated", log.Duration("timeout", timeout))
	return []events.Event{{
		Type:   events.OracleParamsUpdated,
		Time:   o.clock.Time(),
		Actor:  caller,
		Kind:   "attestationTimeout",
		Reason: timeout.String(),
	}}, nil
}

// Load replaces the oracle contents with previously persisted state.
func (o *Oracle) Load(params Params, attestations map[ids.ShortID][]Attestation, consensus map[ids.ShortID]Consensus) error {
	if err := params.Verify(); err != nil {
		return err
	}
	loaded := make(map[ids.ShortID]map[ids.ShortID]Attestation, len(attestations))
	for qc, list := range attestations {
		byAttester := make(map[ids.ShortID]Attestation, len(list))
		for _, a := range list {
			byAttester[a.Attester] = a
		}
		loaded[qc] = byAttester
	}
	o.params = params
	o.attestations = loaded
	o.consensus = make(map[ids.ShortID]Consensus, len(consensus))
	for qc, c := range consensus {
		c.Attesters = slices.Clone(c.Attesters)
		slices.SortFunc(c.Attesters, compareShortIDs)
		o.consensus[qc] = c
	}
	return nil
}
