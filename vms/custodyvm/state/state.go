// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state persists engine state. Writes are buffered in a version
// database until Commit; Abort discards them.
package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/ids"

	"github.com/luxfi/custodyvm/vms/custodyvm/ledger"
	"github.com/luxfi/custodyvm/vms/custodyvm/oracle"
	"github.com/luxfi/custodyvm/vms/custodyvm/qc"
	"github.com/luxfi/custodyvm/vms/custodyvm/reservetype"
	"github.com/luxfi/custodyvm/vms/custodyvm/watchdog"
)

var (
	ReserveTypePrefix = []byte("type")
	ReservePrefix     = []byte("reserve")
	QCPrefix          = []byte("qc")
	WalletPrefix      = []byte("wallet")
	OraclePrefix      = []byte("oracle")
	ProposalPrefix    = []byte("proposal")
	SingletonPrefix   = []byte("singleton")

	MetadataKey = []byte("metadata")
)

// Metadata is the engine state that is not keyed by custodian or proposal.
type Metadata struct {
	SystemPaused   bool
	OracleParams   oracle.Params
	WatchdogParams watchdog.Params
	ProposalNonce  uint64
	Watchdogs      []ids.ShortID
	Targets        []ids.ShortID
}

type State struct {
	db *versiondb.Database

	reserveTypeDB database.Database
	reserveDB     database.Database
	qcDB          database.Database
	walletDB      database.Database
	oracleDB      database.Database
	proposalDB    database.Database
	singletonDB   database.Database
}

func New(db database.Database) *State {
	vdb := versiondb.New(db)
	return &State{
		db:            vdb,
		reserveTypeDB: prefixdb.New(ReserveTypePrefix, vdb),
		reserveDB:     prefixdb.New(ReservePrefix, vdb),
		qcDB:          prefixdb.New(QCPrefix, vdb),
		walletDB:      prefixdb.New(WalletPrefix, vdb),
		oracleDB:      prefixdb.New(OraclePrefix, vdb),
		proposalDB:    prefixdb.New(ProposalPrefix, vdb),
		singletonDB:   prefixdb.New(SingletonPrefix, vdb),
	}
}

// Commit writes every pending change to the underlying database.
func (s *State) Commit() error {
	return s.db.Commit()
}

// Abort discards every pending change.
func (s *State) Abort() {
	s.db.Abort()
}

func (s *State) Close() error {
	return errors.Join(
		s.reserveTypeDB.Close(),
		s.reserveDB.Close(),
		s.qcDB.Close(),
		s.walletDB.Close(),
		s.oracleDB.Close(),
		s.proposalDB.Close(),
		s.singletonDB.Close(),
		s.db.Close(),
	)
}

func put(db database.KeyValueWriter, key []byte, record any) error {
	bytes, err := Codec.Marshal(CodecVersion, record)
	if err != nil {
		return err
	}
	return db.Put(key, bytes)
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

type reserveTypeRecord struct {
	Name               string `serialize:"true"`
	RequiresBtcAddress bool   `serialize:"true"`
	SupportsLosses     bool   `serialize:"true"`
	RequiresWrapper    bool   `serialize:"true"`
	MaxBackingRatio    uint64 `serialize:"true"`
	MinCapFloor        uint64 `serialize:"true"`
}

// PutReserveType stores a governance-registered reserve type. Built-in types
// are never stored.
func (s *State) PutReserveType(tag reservetype.Tag, info reservetype.Info) error {
	return put(s.reserveTypeDB, []byte(tag), &reserveTypeRecord{
		Name:               info.Name,
		RequiresBtcAddress: info.RequiresBtcAddress,
		SupportsLosses:     info.SupportsLosses,
		RequiresWrapper:    info.RequiresWrapper,
		MaxBackingRatio:    info.MaxBackingRatio,
		MinCapFloor:        info.MinCapFloor,
	})
}

func (s *State) ReserveTypes() (map[reservetype.Tag]reservetype.Info, error) {
	it := s.reserveTypeDB.NewIterator()
	defer it.Release()

	types := make(map[reservetype.Tag]reservetype.Info)
	for it.Next() {
		tag := reservetype.Tag(it.Key())
		var record reserveTypeRecord
		if _, err := Codec.Unmarshal(it.Value(), &record); err != nil {
			return nil, fmt.Errorf("reserve type %s: %w", tag, err)
		}
		types[tag] = reservetype.Info{
			Name:               record.Name,
			RequiresBtcAddress: record.RequiresBtcAddress,
			SupportsLosses:     record.SupportsLosses,
			RequiresWrapper:    record.RequiresWrapper,
			MaxBackingRatio:    record.MaxBackingRatio,
			MinCapFloor:        record.MinCapFloor,
		}
	}
	return types, it.Error()
}

type reserveRecord struct {
	Authorized bool   `serialize:"true"`
	Type       string `serialize:"true"`
	MintingCap uint64 `serialize:"true"`
	Backing    uint64 `serialize:"true"`
	Minted     uint64 `serialize:"true"`
	Paused     bool   `serialize:"true"`
}

func (s *State) PutReserve(addr ids.ShortID, r ledger.Reserve) error {
	return put(s.reserveDB, addr[:], &reserveRecord{
		Authorized: r.Authorized,
		Type:       string(r.Type),
		MintingCap: r.MintingCap,
		Backing:    r.Backing,
		Minted:     r.Minted,
		Paused:     r.Paused,
	})
}

func (s *State) Reserves() (map[ids.ShortID]ledger.Reserve, error) {
	it := s.reserveDB.NewIterator()
	defer it.Release()

	reserves := make(map[ids.ShortID]ledger.Reserve)
	for it.Next() {
		addr, err := ids.ToShortID(it.Key())
		if err != nil {
			return nil, err
		}
		var record reserveRecord
		if _, err := Codec.Unmarshal(it.Value(), &record); err != nil {
			return nil, fmt.Errorf("reserve %s: %w", addr, err)
		}
		reserves[addr] = ledger.Reserve{
			Authorized: record.Authorized,
			Type:       reservetype.Tag(record.Type),
			MintingCap: record.MintingCap,
			Backing:    record.Backing,
			Minted:     record.Minted,
			Paused:     record.Paused,
		}
	}
	return reserves, it.Error()
}

type qcRecord struct {
	Status          uint8  `serialize:"true"`
	MintingCapacity uint64 `serialize:"true"`
	RegisteredAt    int64  `serialize:"true"`
}

func (s *State) PutQC(addr ids.ShortID, q qc.QC) error {
	return put(s.qcDB, addr[:], &qcRecord{
		Status:          uint8(q.Status),
		MintingCapacity: q.MintingCapacity,
		RegisteredAt:    toNanos(q.RegisteredAt),
	})
}

func (s *State) QCs() (map[ids.ShortID]qc.QC, error) {
	it := s.qcDB.NewIterator()
	defer it.Release()

	qcs := make(map[ids.ShortID]qc.QC)
	for it.Next() {
		addr, err := ids.ToShortID(it.Key())
		if err != nil {
			return nil, err
		}
		var record qcRecord
		if _, err := Codec.Unmarshal(it.Value(), &record); err != nil {
			return nil, fmt.Errorf("QC %s: %w", addr, err)
		}
		qcs[addr] = qc.QC{
			Status:          qc.Status(record.Status),
			MintingCapacity: record.MintingCapacity,
			RegisteredAt:    fromNanos(record.RegisteredAt),
		}
	}
	return qcs, it.Error()
}

type walletRecord struct {
	QC           ids.ShortID `serialize:"true"`
	Address      string      `serialize:"true"`
	Status       uint8       `serialize:"true"`
	RegisteredAt int64       `serialize:"true"`
}

func (s *State) PutWallet(w qc.Wallet) error {
	return put(s.walletDB, []byte(w.Address), &walletRecord{
		QC:           w.QC,
		Address:      w.Address,
		Status:       uint8(w.Status),
		RegisteredAt: toNanos(w.RegisteredAt),
	})
}

func (s *State) Wallets() ([]qc.Wallet, error) {
	it := s.walletDB.NewIterator()
	defer it.Release()

	var wallets []qc.Wallet
	for it.Next() {
		var record walletRecord
		if _, err := Codec.Unmarshal(it.Value(), &record); err != nil {
			return nil, fmt.Errorf("wallet %s: %w", it.Key(), err)
		}
		wallets = append(wallets, qc.Wallet{
			QC:           record.QC,
			Address:      record.Address,
			Status:       qc.WalletStatus(record.Status),
			RegisteredAt: fromNanos(record.RegisteredAt),
		})
	}
	return wallets, it.Error()
}

type attestationRecord struct {
	Attester  ids.ShortID `serialize:"true"`
	Balance   uint64      `serialize:"true"`
	Timestamp int64       `serialize:"true"`
}

type oracleRecord struct {
	Attestations []attestationRecord `serialize:"true"`

	HasConsensus bool          `serialize:"true"`
	Balance      uint64        `serialize:"true"`
	Timestamp    int64         `serialize:"true"`
	Attesters    []ids.ShortID `serialize:"true"`
	Forced       bool          `serialize:"true"`
}

// PutOracle stores the attestations and consensus, if any, of one custodian.
func (s *State) PutOracle(addr ids.ShortID, attestations []oracle.Attestation, consensus oracle.Consensus, hasConsensus bool) error {
	record := &oracleRecord{
		Attestations: make([]attestationRecord, len(attestations)),
		HasConsensus: hasConsensus,
		Balance:      consensus.Balance,
		Timestamp:    toNanos(consensus.Timestamp),
		Attesters:    consensus.Attesters,
		Forced:       consensus.Forced,
	}
	for i, a := range attestations {
		record.Attestations[i] = attestationRecord{
			Attester:  a.Attester,
			Balance:   a.Balance,
			Timestamp: toNanos(a.Timestamp),
		}
	}
	return put(s.oracleDB, addr[:], record)
}

func (s *State) Oracle() (map[ids.ShortID][]oracle.Attestation, map[ids.ShortID]oracle.Consensus, error) {
	it := s.oracleDB.NewIterator()
	defer it.Release()

	var (
		attestations = make(map[ids.ShortID][]oracle.Attestation)
		consensus    = make(map[ids.ShortID]oracle.Consensus)
	)
	for it.Next() {
		addr, err := ids.ToShortID(it.Key())
		if err != nil {
			return nil, nil, err
		}
		var record oracleRecord
		if _, err := Codec.Unmarshal(it.Value(), &record); err != nil {
			return nil, nil, fmt.Errorf("oracle %s: %w", addr, err)
		}
		list := make([]oracle.Attestation, len(record.Attestations))
		for i, a := range record.Attestations {
			list[i] = oracle.Attestation{
				Attester:  a.Attester,
				Balance:   a.Balance,
				Timestamp: fromNanos(a.Timestamp),
			}
		}
		attestations[addr] = list
		if record.HasConsensus {
			consensus[addr] = oracle.Consensus{
				Balance:   record.Balance,
				Timestamp: fromNanos(record.Timestamp),
				Attesters: record.Attesters,
				Forced:    record.Forced,
			}
		}
	}
	return attestations, consensus, it.Error()
}

type proposalRecord struct {
	Type          uint8         `serialize:"true"`
	Proposer      ids.ShortID   `serialize:"true"`
	Nonce         uint64        `serialize:"true"`
	QC            ids.ShortID   `serialize:"true"`
	NewStatus     uint8         `serialize:"true"`
	Wallet        string        `serialize:"true"`
	RedemptionID  ids.ID        `serialize:"true"`
	Target        ids.ShortID   `serialize:"true"`
	Calldata      []byte        `serialize:"true"`
	Reason        string        `serialize:"true"`
	Voters        []ids.ShortID `serialize:"true"`
	RequiredVotes uint32        `serialize:"true"`
	CreatedAt     int64         `serialize:"true"`
	Deadline      int64         `serialize:"true"`
	Executed      bool          `serialize:"true"`
}

func (s *State) PutProposal(p watchdog.Proposal) error {
	return put(s.proposalDB, p.ID[:], &proposalRecord{
		Type:          uint8(p.Type),
		Proposer:      p.Proposer,
		Nonce:         p.Nonce,
		QC:            p.QC,
		NewStatus:     uint8(p.NewStatus),
		Wallet:        p.Wallet,
		RedemptionID:  p.RedemptionID,
		Target:        p.Target,
		Calldata:      p.Calldata,
		Reason:        p.Reason,
		Voters:        p.Voters,
		RequiredVotes: p.RequiredVotes,
		CreatedAt:     toNanos(p.CreatedAt),
		Deadline:      toNanos(p.Deadline),
		Executed:      p.Executed,
	})
}

// DeleteProposal removes an expired proposal.
func (s *State) DeleteProposal(id ids.ID) error {
	return s.proposalDB.Delete(id[:])
}

func (s *State) Proposals() ([]watchdog.Proposal, error) {
	it := s.proposalDB.NewIterator()
	defer it.Release()

	var proposals []watchdog.Proposal
	for it.Next() {
		id, err := ids.ToID(it.Key())
		if err != nil {
			return nil, err
		}
		var record proposalRecord
		if _, err := Codec.Unmarshal(it.Value(), &record); err != nil {
			return nil, fmt.Errorf("proposal %s: %w", id, err)
		}
		proposals = append(proposals, watchdog.Proposal{
			ID:            id,
			Type:          watchdog.ProposalType(record.Type),
			Proposer:      record.Proposer,
			Nonce:         record.Nonce,
			QC:            record.QC,
			NewStatus:     qc.Status(record.NewStatus),
			Wallet:        record.Wallet,
			RedemptionID:  record.RedemptionID,
			Target:        record.Target,
			Calldata:      record.Calldata,
			Reason:        record.Reason,
			Voters:        record.Voters,
			RequiredVotes: record.RequiredVotes,
			CreatedAt:     fromNanos(record.CreatedAt),
			Deadline:      fromNanos(record.Deadline),
			Executed:      record.Executed,
		})
	}
	return proposals, it.Error()
}

type metadataRecord struct {
	SystemPaused       bool          `serialize:"true"`
	ConsensusThreshold uint32        `serialize:"true"`
	AttestationTimeout int64         `serialize:"true"`
	RequiredVotes      uint32        `serialize:"true"`
	TotalWatchdogs     uint32        `serialize:"true"`
	VotingPeriod       int64         `serialize:"true"`
	ProposalNonce      uint64        `serialize:"true"`
	Watchdogs          []ids.ShortID `serialize:"true"`
	Targets            []ids.ShortID `serialize:"true"`
}

func (s *State) PutMetadata(m Metadata) error {
	return put(s.singletonDB, MetadataKey, &metadataRecord{
		SystemPaused:       m.SystemPaused,
		ConsensusThreshold: m.OracleParams.ConsensusThreshold,
		AttestationTimeout: int64(m.OracleParams.AttestationTimeout),
		RequiredVotes:      m.WatchdogParams.RequiredVotes,
		TotalWatchdogs:     m.WatchdogParams.TotalWatchdogs,
		VotingPeriod:       int64(m.WatchdogParams.VotingPeriod),
		ProposalNonce:      m.ProposalNonce,
		Watchdogs:          m.Watchdogs,
		Targets:            m.Targets,
	})
}

// Metadata returns the stored metadata and false if none was ever written.
func (s *State) Metadata() (Metadata, bool, error) {
	bytes, err := s.singletonDB.Get(MetadataKey)
	if errors.Is(err, database.ErrNotFound) {
		return Metadata{}, false, nil
	}
	if err != nil {
		return Metadata{}, false, err
	}
	var record metadataRecord
	if _, err := Codec.Unmarshal(bytes, &record); err != nil {
		return Metadata{}, false, fmt.Errorf("metadata: %w", err)
	}
	return Metadata{
		SystemPaused: record.SystemPaused,
		OracleParams: oracle.Params{
			ConsensusThreshold: record.ConsensusThreshold,
			AttestationTimeout: time.Duration(record.AttestationTimeout),
		},
		WatchdogParams: watchdog.Params{
			RequiredVotes:  record.RequiredVotes,
			TotalWatchdogs: record.TotalWatchdogs,
			VotingPeriod:   time.Duration(record.VotingPeriod),
		},
		ProposalNonce: record.ProposalNonce,
		Watchdogs:     record.Watchdogs,
		Targets:       record.Targets,
	}, true, nil
}
