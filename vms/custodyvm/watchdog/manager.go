// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package watchdog implements M-of-N oversight of custodians. Active
// watchdogs propose actions, vote on them and, once RequiredVotes is reached,
// the action executes exactly once.
package watchdog

import (
	"bytes"
	"fmt"
	"slices"
	"time"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/math/set"

	"github.com/luxfi/custodyvm/utils/timer/mockable"
	"github.com/luxfi/custodyvm/vms/custodyvm/auth"
	"github.com/luxfi/custodyvm/vms/custodyvm/events"
	"github.com/luxfi/custodyvm/vms/custodyvm/qc"
)

const (
	MinRequiredVotes = 1
	MaxRequiredVotes = 7
	MinWatchdogs     = 3
)

// QCManager applies custodian actions on behalf of the watchdog committee.
type QCManager interface {
	SetStatus(caller, addr ids.ShortID, to qc.Status, reason string) ([]events.Event, error)
	RequestWalletDeregistration(caller ids.ShortID, btcAddress string) ([]events.Event, error)
}

// RedemptionHandler is notified of redemptions the committee declared in
// default.
type RedemptionHandler interface {
	FlagDefaultedRedemption(redemptionID ids.ID, reason string) error
}

// InterventionTarget performs a governance-reviewed low level call.
type InterventionTarget interface {
	Call(target ids.ShortID, payload []byte) error
}

// Params are the committee thresholds. RequiredVotes is captured by each
// proposal at creation.
type Params struct {
	RequiredVotes  uint32        `json:"requiredVotes"`
	TotalWatchdogs uint32        `json:"totalWatchdogs"`
	VotingPeriod   time.Duration `json:"votingPeriod"`
}

func DefaultParams() Params {
	return Params{
		RequiredVotes:  3,
		TotalWatchdogs: 5,
		VotingPeriod:   2 * time.Hour,
	}
}

func (p Params) Verify() error {
	switch {
	case p.RequiredVotes < MinRequiredVotes || p.RequiredVotes > MaxRequiredVotes:
		return fmt.Errorf("%w: required votes %d outside [%d, %d]", ErrInvalidParameters, p.RequiredVotes, MinRequiredVotes, MaxRequiredVotes)
	case p.RequiredVotes > p.TotalWatchdogs:
		return fmt.Errorf("%w: required votes %d > total %d", ErrInvalidParameters, p.RequiredVotes, p.TotalWatchdogs)
	case p.VotingPeriod <= 0:
		return fmt.Errorf("%w: voting period %s", ErrInvalidParameters, p.VotingPeriod)
	default:
		return nil
	}
}

// Config wires a Manager to the components its proposals act on.
type Config struct {
	// Self is the identity the committee acts as when executing.
	Self          ids.ShortID
	Params        Params
	QCs           QCManager
	Redemptions   RedemptionHandler
	Interventions InterventionTarget
	Auth          auth.AuthorizationProvider
	Clock         *mockable.Clock
	Log           log.Logger
}

// Manager holds the committee, its proposals and the approved intervention
// targets.
type Manager struct {
	self          ids.ShortID
	params        Params
	qcs           QCManager
	redemptions   RedemptionHandler
	interventions InterventionTarget
	auth          auth.AuthorizationProvider
	clock         *mockable.Clock
	log           log.Logger

	nonce     uint64
	watchdogs set.Set[ids.ShortID]
	proposals map[ids.ID]*Proposal
	targets   set.Set[ids.ShortID]
}

func New(config Config) (*Manager, error) {
	if err := config.Params.Verify(); err != nil {
		return nil, err
	}
	return &Manager{
		self:          config.Self,
		params:        config.Params,
		qcs:           config.QCs,
		redemptions:   config.Redemptions,
		interventions: config.Interventions,
		auth:          config.Auth,
		clock:         config.Clock,
		log:           config.Log,
		watchdogs:     set.Set[ids.ShortID]{},
		proposals:     make(map[ids.ID]*Proposal),
		targets:       set.Set[ids.ShortID]{},
	}, nil
}

func (m *Manager) Self() ids.ShortID {
	return m.self
}

func (m *Manager) Params() Params {
	return m.params
}

func (m *Manager) Nonce() uint64 {
	return m.nonce
}

// Proposal returns a copy of the live proposal id.
func (m *Manager) Proposal(id ids.ID) (Proposal, bool) {
	p, ok := m.proposals[id]
	if !ok {
		return Proposal{}, false
	}
	return p.Clone(), true
}

// ProposalIDs returns the live proposal IDs, sorted.
func (m *Manager) ProposalIDs() []ids.ID {
	proposalIDs := make([]ids.ID, 0, len(m.proposals))
	for id := range m.proposals {
		proposalIDs = append(proposalIDs, id)
	}
	slices.SortFunc(proposalIDs, func(a, b ids.ID) int { return bytes.Compare(a[:], b[:]) })
	return proposalIDs
}

func (m *Manager) event(t events.Type, actor ids.ShortID, p *Proposal) events.Event {
	return events.Event{
		Type:       t,
		Time:       m.clock.Time(),
		Actor:      actor,
		Reserve:    p.QC,
		ProposalID: p.ID,
		Kind:       p.Type.String(),
		Count:      p.VoteCount(),
		Reason:     p.Reason,
	}
}

// requireWatchdog passes when caller is in the active committee and holds the
// watchdog capability.
func (m *Manager) requireWatchdog(caller ids.ShortID) error {
	if !m.watchdogs.Contains(caller) {
		return fmt.Errorf("%w: %s", ErrNotActiveWatchdog, caller)
	}
	return auth.Require(m.auth, auth.Watchdog, caller)
}

// ProposeStatusChange proposes moving addr to status.
func (m *Manager) ProposeStatusChange(caller, addr ids.ShortID, status qc.Status, reason string) ([]events.Event, error) {
	if addr == ids.ShortEmpty {
		return nil, ErrZeroAddress
	}
	return m.propose(caller, &Proposal{
		Type:      StatusChange,
		QC:        addr,
		NewStatus: status,
		Reason:    reason,
	})
}

// ProposeWalletDeregistration proposes starting the deregistration of a
// custodian wallet.
func (m *Manager) ProposeWalletDeregistration(caller ids.ShortID, btcAddress, reason string) ([]events.Event, error) {
	if btcAddress == "" {
		return nil, ErrEmptyPayload
	}
	return m.propose(caller, &Proposal{
		Type:   WalletDeregistration,
		Wallet: btcAddress,
		Reason: reason,
	})
}

// ProposeRedemptionDefault proposes flagging a redemption as defaulted.
func (m *Manager) ProposeRedemptionDefault(caller ids.ShortID, redemptionID ids.ID, reason string) ([]events.Event, error) {
	if redemptionID == ids.Empty {
		return nil, ErrEmptyPayload
	}
	return m.propose(caller, &Proposal{
		Type:         RedemptionDefault,
		RedemptionID: redemptionID,
		Reason:       reason,
	})
}

// ProposeForceIntervention proposes calling an approved target with calldata.
func (m *Manager) ProposeForceIntervention(caller, target ids.ShortID, calldata []byte, reason string) ([]events.Event, error) {
	if target == ids.ShortEmpty {
		return nil, ErrZeroAddress
	}
	if len(calldata) == 0 {
		return nil, ErrEmptyPayload
	}
	if !m.targets.Contains(target) {
		return nil, fmt.Errorf("%w: %s", ErrTargetNotApproved, target)
	}
	return m.propose(caller, &Proposal{
		Type:     ForceIntervention,
		Target:   target,
		Calldata: slices.Clone(calldata),
		Reason:   reason,
	})
}

// propose fills in the bookkeeping fields of p, counts the proposer's vote and
// executes immediately when a single vote suffices. Nothing is recorded if
// that execution fails.
func (m *Manager) propose(caller ids.ShortID, p *Proposal) ([]events.Event, error) {
	if err := m.requireWatchdog(caller); err != nil {
		return nil, err
	}

	now := m.clock.Time()
	p.Proposer = caller
	p.Nonce = m.nonce + 1
	p.Voters = []ids.ShortID{caller}
	p.RequiredVotes = m.params.RequiredVotes
	p.CreatedAt = now
	p.Deadline = now.Add(m.params.VotingPeriod)

	id, err := p.computeID()
	if err != nil {
		return nil, err
	}
	if _, ok := m.proposals[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateProposal, id)
	}
	p.ID = id

	evts := []events.Event{m.event(events.ProposalCreated, caller, p)}
	if p.Approved() {
		executed, err := m.execute(caller, p)
		if err != nil {
			return nil, err
		}
		evts = append(evts, executed...)
	}

	m.nonce = p.Nonce
	m.proposals[id] = p
	m.log.Info("proposal created",
		log.Stringer("proposalID", id),
		log.Stringer("type", p.Type),
		log.Stringer("proposer", caller),
		log.Uint32("requiredVotes", p.RequiredVotes),
	)
	return evts, nil
}

// live returns the proposal id if it can still change.
func (m *Manager) live(id ids.ID) (*Proposal, error) {
	p, ok := m.proposals[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProposalNotFound, id)
	}
	if p.Executed {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExecuted, id)
	}
	return p, nil
}

// Vote adds caller's vote to id. The vote that reaches RequiredVotes executes
// the proposal; if execution fails the vote is not recorded.
func (m *Manager) Vote(caller ids.ShortID, id ids.ID) ([]events.Event, error) {
	if err := m.requireWatchdog(caller); err != nil {
		return nil, err
	}
	p, err := m.live(id)
	if err != nil {
		return nil, err
	}
	if p.Expired || m.clock.Time().After(p.Deadline) {
		return nil, fmt.Errorf("%w: %s at %s", ErrVotingEnded, id, p.Deadline)
	}
	if p.HasVoted(caller) {
		return nil, fmt.Errorf("%w: %s on %s", ErrAlreadyVoted, caller, id)
	}

	p.Voters = append(p.Voters, caller)
	evts := []events.Event{m.event(events.ProposalVoted, caller, p)}
	if p.Approved() {
		executed, err := m.execute(caller, p)
		if err != nil {
			p.Voters = p.Voters[:len(p.Voters)-1]
			return nil, err
		}
		evts = append(evts, executed...)
	}

	m.log.Debug("proposal voted",
		log.Stringer("proposalID", id),
		log.Stringer("voter", caller),
		log.Uint32("votes", p.VoteCount()),
		log.Uint32("requiredVotes", p.RequiredVotes),
	)
	return evts, nil
}

// ExecuteProposal executes an approved proposal that has not run yet.
func (m *Manager) ExecuteProposal(caller ids.ShortID, id ids.ID) ([]events.Event, error) {
	if err := m.requireWatchdog(caller); err != nil {
		return nil, err
	}
	p, err := m.live(id)
	if err != nil {
		return nil, err
	}
	if !p.Approved() {
		return nil, fmt.Errorf("%w: %d of %d votes", ErrProposalNotApproved, p.VoteCount(), p.RequiredVotes)
	}
	return m.execute(caller, p)
}

// execute dispatches p and marks it executed. p is untouched on error.
func (m *Manager) execute(caller ids.ShortID, p *Proposal) ([]events.Event, error) {
	var (
		evts []events.Event
		err  error
	)
	switch p.Type {
	case StatusChange:
		evts, err = m.qcs.SetStatus(m.self, p.QC, p.NewStatus, p.Reason)
	case WalletDeregistration:
		evts, err = m.qcs.RequestWalletDeregistration(m.self, p.Wallet)
	case RedemptionDefault:
		if m.redemptions == nil {
			return nil, ErrNoRedemptionHandler
		}
		err = m.redemptions.FlagDefaultedRedemption(p.RedemptionID, p.Reason)
	case ForceIntervention:
		if m.interventions == nil {
			return nil, ErrNoInterventionTarget
		}
		if !m.targets.Contains(p.Target) {
			return nil, fmt.Errorf("%w: %s", ErrTargetNotApproved, p.Target)
		}
		err = m.interventions.Call(p.Target, p.Calldata)
	default:
		err = fmt.Errorf("%w: %d", ErrUnknownProposal, p.Type)
	}
	if err != nil {
		m.log.Warn("proposal execution failed",
			log.Stringer("proposalID", p.ID),
			log.Stringer("type", p.Type),
			log.Err(err),
		)
		return nil, fmt.Errorf("executing %s proposal %s: %w", p.Type, p.ID, err)
	}

	p.Executed = true
	m.log.Info("proposal executed",
		log.Stringer("proposalID", p.ID),
		log.Stringer("type", p.Type),
		log.Uint32("votes", p.VoteCount()),
	)
	return append(evts, m.event(events.ProposalExecuted, caller, p)), nil
}

// UpdateConsensusParams changes the thresholds of future proposals.
func (m *Manager) UpdateConsensusParams(caller ids.ShortID, requiredVotes, totalWatchdogs uint32) ([]events.Event, error) {
	if err := auth.Require(m.auth, auth.Governance, caller); err != nil {
		return nil, err
	}
	params := m.params
	params.RequiredVotes = requiredVotes
	params.TotalWatchdogs = totalWatchdogs
	if err := params.Verify(); err != nil {
		return nil, err
	}
	if active := uint32(m.watchdogs.Len()); requiredVotes > active {
		return nil, fmt.Errorf("%w: required votes %d > %d active watchdogs", ErrInvalidParameters, requiredVotes, active)
	}

	m.params = params
	m.log.Info("consensus parameters updated",
		log.Uint32("requiredVotes", requiredVotes),
		log.Uint32("totalWatchdogs", totalWatchdogs),
	)
	return []events.Event{{
		Type:    events.ConsensusParamsUpdated,
		Time:    m.clock.Time(),
		Actor:   caller,
		Count:   requiredVotes,
		Balance: uint64(totalWatchdogs),
	}}, nil
}

// SetVotingPeriod changes the voting period of future proposals.
func (m *Manager) SetVotingPeriod(caller ids.ShortID, period time.Duration) ([]events.Event, error) {
	if err := auth.Require(m.auth, auth.Governance, caller); err != nil {
		return nil, err
	}
	params := m.params
	params.VotingPeriod = period
	if err := params.Verify(); err != nil {
		return nil, err
	}

	m.params = params
	m.log.Info("voting period updated", log.Duration("votingPeriod", period))
	return []events.Event{{
		Type:   events.ConsensusParamsUpdated,
		Time:   m.clock.Time(),
		Actor:  caller,
		Kind:   "votingPeriod",
		Reason: period.String(),
	}}, nil
}

// CleanupExpired expires every listed proposal that is past its deadline and
// unexecuted, removing it from the live set. Other IDs are skipped. Anyone may
// call it.
func (m *Manager) CleanupExpired(caller ids.ShortID, proposalIDs []ids.ID) []events.Event {
	now := m.clock.Time()
	var evts []events.Event
	for _, id := range proposalIDs {
		p, ok := m.proposals[id]
		if !ok || p.Executed || !now.After(p.Deadline) {
			continue
		}
		p.Expired = true
		delete(m.proposals, id)
		evts = append(evts, m.event(events.ProposalExpired, caller, p))
	}
	if len(evts) > 0 {
		m.log.Debug("expired proposals cleaned up", log.Int("count", len(evts)))
	}
	return evts
}

// Load replaces the manager contents with previously persisted state.
func (m *Manager) Load(
	params Params,
	nonce uint64,
	watchdogs []ids.ShortID,
	targets []ids.ShortID,
	proposals []Proposal,
) error {
	if err := params.Verify(); err != nil {
		return err
	}
	loaded := make(map[ids.ID]*Proposal, len(proposals))
	for _, p := range proposals {
		id, err := p.computeID()
		if err != nil {
			return err
		}
		if id != p.ID {
			return fmt.Errorf("%w: stored %s, computed %s", ErrProposalIDMismatch, p.ID, id)
		}
		loaded[id] = &p
	}

	m.params = params
	m.nonce = nonce
	m.watchdogs = set.Of(watchdogs...)
	m.targets = set.Of(targets...)
	m.proposals = loaded
	return nil
}
