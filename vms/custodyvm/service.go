// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package custodyvm

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/rpc/v2"
	"github.com/luxfi/ids"

	"github.com/luxfi/custodyvm/utils/json"
	"github.com/luxfi/custodyvm/vms/custodyvm/events"
	"github.com/luxfi/custodyvm/vms/custodyvm/ledger"
	"github.com/luxfi/custodyvm/vms/custodyvm/oracle"
	"github.com/luxfi/custodyvm/vms/custodyvm/qc"
	"github.com/luxfi/custodyvm/vms/custodyvm/watchdog"
)

// ServiceName is the JSON-RPC namespace of Service.
const ServiceName = "custody"

// CreateHandler returns the JSON-RPC handler serving e.
func (e *Engine) CreateHandler() (http.Handler, error) {
	codec := json.NewCodec()

	server := rpc.NewServer()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	server.RegisterInterceptFunc(e.api.InterceptRequest)
	server.RegisterAfterFunc(e.api.AfterRequest)
	return server, server.RegisterService(&Service{engine: e}, ServiceName)
}

// Service is the JSON-RPC API of the engine. Mutating calls name their caller
// explicitly; the engine's authorization provider decides what it may do.
type Service struct {
	engine *Engine
}

// EventsReply lists the events an operation emitted.
type EventsReply struct {
	Events []events.Event `json:"events"`
}

// AddressArgs names a custodian.
type AddressArgs struct {
	Address ids.ShortID `json:"address"`
}

type GetReserveReply struct {
	ledger.Reserve
}

// GetReserve returns the accounting state of a reserve.
func (s *Service) GetReserve(_ *http.Request, args *AddressArgs, reply *GetReserveReply) error {
	r, ok := s.engine.Reserve(args.Address)
	if !ok {
		return fmt.Errorf("%w: %s", ledger.ErrReserveNotFound, args.Address)
	}
	reply.Reserve = r
	return nil
}

type GetTotalMintedReply struct {
	TotalMinted  json.Uint64 `json:"totalMinted"`
	SystemPaused bool        `json:"systemPaused"`
}

func (s *Service) GetTotalMinted(_ *http.Request, _ *struct{}, reply *GetTotalMintedReply) error {
	reply.TotalMinted = json.Uint64(s.engine.TotalMinted())
	reply.SystemPaused = s.engine.SystemPaused()
	return nil
}

type GetQCReply struct {
	Status          string      `json:"status"`
	MintingCapacity json.Uint64 `json:"mintingCapacity"`
	Available       json.Uint64 `json:"availableMintingCapacity"`
	RegisteredAt    time.Time   `json:"registeredAt"`
	Wallets         []qc.Wallet `json:"wallets"`
}

// GetQC returns a custodian's registration, wallets and remaining capacity.
func (s *Service) GetQC(_ *http.Request, args *AddressArgs, reply *GetQCReply) error {
	q, ok := s.engine.QC(args.Address)
	if !ok {
		return fmt.Errorf("%w: %s", qc.ErrQCNotRegistered, args.Address)
	}
	available, err := s.engine.AvailableMintingCapacity(args.Address)
	if err != nil {
		return err
	}
	reply.Status = q.Status.String()
	reply.MintingCapacity = json.Uint64(q.MintingCapacity)
	reply.Available = json.Uint64(available)
	reply.RegisteredAt = q.RegisteredAt
	reply.Wallets = s.engine.Wallets(args.Address)
	return nil
}

type GetConsensusReply struct {
	Balance      json.Uint64          `json:"balance"`
	Stale        bool                 `json:"stale"`
	Consensus    *oracle.Consensus    `json:"consensus,omitempty"`
	Attestations []oracle.Attestation `json:"attestations"`
}

// GetConsensus returns the oracle view of a custodian's reserves.
func (s *Service) GetConsensus(_ *http.Request, args *AddressArgs, reply *GetConsensusReply) error {
	balance, stale := s.engine.ReserveBalanceAndStaleness(args.Address)
	reply.Balance = json.Uint64(balance)
	reply.Stale = stale
	if c, ok := s.engine.Consensus(args.Address); ok {
		reply.Consensus = &c
	}
	reply.Attestations = s.engine.Attestations(args.Address)
	return nil
}

// CheckSolvency runs the permissionless solvency check.
func (s *Service) CheckSolvency(_ *http.Request, args *AddressArgs, reply *Solvency) error {
	solvency, err := s.engine.CheckSolvency(args.Address)
	if err != nil {
		return err
	}
	*reply = solvency
	return nil
}

type ProposalArgs struct {
	ProposalID ids.ID `json:"proposalID"`
}

type GetProposalReply struct {
	Proposal watchdog.Proposal `json:"proposal"`
	Type     string            `json:"type"`
	Votes    json.Uint32       `json:"votes"`
}

func (s *Service) GetProposal(_ *http.Request, args *ProposalArgs, reply *GetProposalReply) error {
	p, ok := s.engine.Proposal(args.ProposalID)
	if !ok {
		return fmt.Errorf("%w: %s", watchdog.ErrProposalNotFound, args.ProposalID)
	}
	reply.Proposal = p
	reply.Type = p.Type.String()
	reply.Votes = json.Uint32(p.VoteCount())
	return nil
}

type GetCommitteeReply struct {
	Watchdogs      []ids.ShortID `json:"watchdogs"`
	RequiredVotes  json.Uint32   `json:"requiredVotes"`
	TotalWatchdogs json.Uint32   `json:"totalWatchdogs"`
	VotingPeriod   string        `json:"votingPeriod"`
	Proposals      []ids.ID      `json:"proposals"`
}

// GetCommittee returns the active watchdogs, thresholds and live proposals.
func (s *Service) GetCommittee(_ *http.Request, _ *struct{}, reply *GetCommitteeReply) error {
	params := s.engine.WatchdogParams()
	reply.Watchdogs = s.engine.Watchdogs()
	reply.RequiredVotes = json.Uint32(params.RequiredVotes)
	reply.TotalWatchdogs = json.Uint32(params.TotalWatchdogs)
	reply.VotingPeriod = params.VotingPeriod.String()
	reply.Proposals = s.engine.ProposalIDs()
	return nil
}

type MintArgs struct {
	Caller    ids.ShortID `json:"caller"`
	Reserve   ids.ShortID `json:"reserve"`
	Recipient ids.ShortID `json:"recipient"`
	Amount    json.Uint64 `json:"amount"`
}

func (s *Service) Mint(_ *http.Request, args *MintArgs, reply *EventsReply) error {
	evts, err := s.engine.Mint(args.Caller, args.Reserve, args.Recipient, uint64(args.Amount))
	reply.Events = evts
	return err
}

type AmountArgs struct {
	Caller  ids.ShortID `json:"caller"`
	Reserve ids.ShortID `json:"reserve"`
	Amount  json.Uint64 `json:"amount"`
}

func (s *Service) Redeem(_ *http.Request, args *AmountArgs, reply *EventsReply) error {
	evts, err := s.engine.Redeem(args.Caller, args.Reserve, uint64(args.Amount))
	reply.Events = evts
	return err
}

// SubmitAttestation records the caller's opinion of a custodian's balance.
func (s *Service) SubmitAttestation(_ *http.Request, args *AmountArgs, reply *EventsReply) error {
	evts, err := s.engine.SubmitAttestation(args.Caller, args.Reserve, uint64(args.Amount))
	reply.Events = evts
	return err
}

type CallerArgs struct {
	Caller  ids.ShortID `json:"caller"`
	Reserve ids.ShortID `json:"reserve"`
}

func (s *Service) SyncBackingFromOracle(_ *http.Request, args *CallerArgs, reply *EventsReply) error {
	evts, err := s.engine.SyncBackingFromOracle(args.Caller, args.Reserve)
	reply.Events = evts
	return err
}

func (s *Service) ForceConsensus(_ *http.Request, args *CallerArgs, reply *EventsReply) error {
	evts, err := s.engine.ForceConsensus(args.Caller, args.Reserve)
	reply.Events = evts
	return err
}

func (s *Service) RegisterQC(_ *http.Request, args *AmountArgs, reply *EventsReply) error {
	evts, err := s.engine.RegisterQC(args.Caller, args.Reserve, uint64(args.Amount))
	reply.Events = evts
	return err
}

type WalletArgs struct {
	Caller  ids.ShortID `json:"caller"`
	Address string      `json:"address"`
}

func (s *Service) RequestWalletDeregistration(_ *http.Request, args *WalletArgs, reply *EventsReply) error {
	evts, err := s.engine.RequestWalletDeregistration(args.Caller, args.Address)
	reply.Events = evts
	return err
}

// CancelWalletDeregistration returns a wallet pending deregistration to
// active.
func (s *Service) CancelWalletDeregistration(_ *http.Request, args *WalletArgs, reply *EventsReply) error {
	evts, err := s.engine.CancelWalletDeregistration(args.Caller, args.Address)
	reply.Events = evts
	return err
}

type StatusArgs struct {
	Caller  ids.ShortID `json:"caller"`
	Reserve ids.ShortID `json:"reserve"`
	Status  string      `json:"status"`
	Reason  string      `json:"reason"`
}

func (s *Service) SetQCStatus(_ *http.Request, args *StatusArgs, reply *EventsReply) error {
	status, err := qc.ParseStatus(args.Status)
	if err != nil {
		return err
	}
	evts, err := s.engine.SetQCStatus(args.Caller, args.Reserve, status, args.Reason)
	reply.Events = evts
	return err
}

// ProposeStatusChange opens a watchdog proposal to move a custodian to Status.
func (s *Service) ProposeStatusChange(_ *http.Request, args *StatusArgs, reply *EventsReply) error {
	status, err := qc.ParseStatus(args.Status)
	if err != nil {
		return err
	}
	evts, err := s.engine.ProposeStatusChange(args.Caller, args.Reserve, status, args.Reason)
	reply.Events = evts
	return err
}

type VoteArgs struct {
	Caller     ids.ShortID `json:"caller"`
	ProposalID ids.ID      `json:"proposalID"`
}

func (s *Service) Vote(_ *http.Request, args *VoteArgs, reply *EventsReply) error {
	evts, err := s.engine.Vote(args.Caller, args.ProposalID)
	reply.Events = evts
	return err
}

func (s *Service) ExecuteProposal(_ *http.Request, args *VoteArgs, reply *EventsReply) error {
	evts, err := s.engine.ExecuteProposal(args.Caller, args.ProposalID)
	reply.Events = evts
	return err
}

type CleanupArgs struct {
	Caller      ids.ShortID `json:"caller"`
	ProposalIDs []ids.ID    `json:"proposalIDs"`
}

func (s *Service) CleanupExpired(_ *http.Request, args *CleanupArgs, reply *EventsReply) error {
	evts, err := s.engine.CleanupExpired(args.Caller, args.ProposalIDs)
	reply.Events = evts
	return err
}
