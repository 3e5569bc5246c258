// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package watchdog

import (
	"fmt"
	"slices"
	"time"

	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/ids"

	"github.com/luxfi/custodyvm/utils/wrappers"
	"github.com/luxfi/custodyvm/vms/custodyvm/qc"
)

// maxPreimageSize bounds the bytes hashed into a proposal ID.
const maxPreimageSize = 64 * 1024

// ProposalType selects what a proposal does once approved.
type ProposalType uint8

const (
	StatusChange ProposalType = iota + 1
	WalletDeregistration
	RedemptionDefault
	ForceIntervention
)

func (t ProposalType) String() string {
	switch t {
	case StatusChange:
		return "status_change"
	case WalletDeregistration:
		return "wallet_deregistration"
	case RedemptionDefault:
		return "redemption_default"
	case ForceIntervention:
		return "force_intervention"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Proposal is an oversight action awaiting quorum. Only the payload fields of
// its Type are set.
type Proposal struct {
	ID       ids.ID       `json:"id"`
	Type     ProposalType `json:"type"`
	Proposer ids.ShortID  `json:"proposer"`
	Nonce    uint64       `json:"nonce"`

	QC           ids.ShortID `json:"qc,omitempty"`
	NewStatus    qc.Status   `json:"newStatus,omitempty"`
	Wallet       string      `json:"wallet,omitempty"`
	RedemptionID ids.ID      `json:"redemptionID,omitempty"`
	Target       ids.ShortID `json:"target,omitempty"`
	Calldata     []byte      `json:"calldata,omitempty"`
	Reason       string      `json:"reason"`

	// Voters is in voting order; the proposer is first.
	Voters        []ids.ShortID `json:"voters"`
	RequiredVotes uint32        `json:"requiredVotes"`
	CreatedAt     time.Time     `json:"createdAt"`
	Deadline      time.Time     `json:"deadline"`
	Executed      bool          `json:"executed"`
	Expired       bool          `json:"expired"`
}

func (p *Proposal) VoteCount() uint32 {
	return uint32(len(p.Voters))
}

func (p *Proposal) HasVoted(voter ids.ShortID) bool {
	return slices.Contains(p.Voters, voter)
}

func (p *Proposal) Approved() bool {
	return p.VoteCount() >= p.RequiredVotes
}

// Clone returns a deep copy of p.
func (p *Proposal) Clone() Proposal {
	c := *p
	c.Voters = slices.Clone(p.Voters)
	c.Calldata = slices.Clone(p.Calldata)
	return c
}

// computeID hashes the type, payload, proposer and nonce of p.
func (p *Proposal) computeID() (ids.ID, error) {
	packer := wrappers.NewPacker(maxPreimageSize)
	packer.PackByte(byte(p.Type))
	switch p.Type {
	case StatusChange:
		packer.PackFixedBytes(p.QC[:])
		packer.PackByte(byte(p.NewStatus))
	case WalletDeregistration:
		packer.PackStr(p.Wallet)
	case RedemptionDefault:
		packer.PackFixedBytes(p.RedemptionID[:])
	case ForceIntervention:
		packer.PackFixedBytes(p.Target[:])
		packer.PackBytes(p.Calldata)
	default:
		return ids.Empty, fmt.Errorf("%w: %d", ErrUnknownProposal, p.Type)
	}
	packer.PackStr(p.Reason)
	packer.PackFixedBytes(p.Proposer[:])
	packer.PackLong(p.Nonce)
	if packer.Errored() {
		return ids.Empty, packer.Err
	}
	return hash.ComputeHash256Array(packer.Bytes), nil
}
