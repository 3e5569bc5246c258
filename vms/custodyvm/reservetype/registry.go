// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package reservetype catalogs reserve types and their capability flags.
package reservetype

import (
	"errors"
	"fmt"
	"slices"

	"github.com/luxfi/custodyvm/utils/units"
)

var (
	ErrInvalidReserveType = errors.New("invalid reserve type")
	ErrTypeAlreadyExists  = errors.New("reserve type already exists")
	ErrEmptyName          = errors.New("reserve type name is empty")
)

// Tag identifies a reserve type.
type Tag string

const (
	// QCBasic is a qualified custodian holding BTC in registered wallets.
	QCBasic Tag = "QC_BASIC"
	// VaultStrategy is a strategy vault that may realize losses.
	VaultStrategy Tag = "VAULT_STRATEGY"
	// WrappedReserve backs minting with an intermediate wrapper token.
	WrappedReserve Tag = "WRAPPED_RESERVE"
)

// BasisPoints is the denominator of MaxBackingRatio.
const BasisPoints = 10_000

// Info describes what a reserve of a given type may do.
type Info struct {
	Name               string `json:"name"`
	RequiresBtcAddress bool   `json:"requiresBtcAddress"`
	// SupportsLosses allows burning token balance without reducing minted.
	SupportsLosses  bool `json:"supportsLosses"`
	RequiresWrapper bool `json:"requiresWrapper"`
	// MaxBackingRatio bounds backing to MintingCap*MaxBackingRatio/BasisPoints.
	// Zero means unbounded.
	MaxBackingRatio uint64 `json:"maxBackingRatio"`
	// MinCapFloor is the smallest minting cap accepted for a wrapper type.
	MinCapFloor uint64 `json:"minCapFloor"`
}

// Registry is a lookup table of reserve types. It holds no per-reserve state.
type Registry struct {
	types map[Tag]Info
}

// DefaultTypes returns the built-in reserve types.
func DefaultTypes() map[Tag]Info {
	return map[Tag]Info{
		QCBasic: {
			Name:               "Qualified Custodian",
			RequiresBtcAddress: true,
		},
		VaultStrategy: {
			Name:            "Vault Strategy",
			SupportsLosses:  true,
			RequiresWrapper: true,
			MinCapFloor:     units.BTC,
		},
		WrappedReserve: {
			Name:            "Wrapped Reserve",
			RequiresWrapper: true,
			MaxBackingRatio: 2 * BasisPoints,
			MinCapFloor:     10 * units.MilliBTC,
		},
	}
}

// NewRegistry returns a registry seeded with the default types.
func NewRegistry() *Registry {
	return &Registry{types: DefaultTypes()}
}

// Register adds a new reserve type. Existing types are immutable.
func (r *Registry) Register(tag Tag, info Info) error {
	if tag == "" {
		return ErrInvalidReserveType
	}
	if info.Name == "" {
		return ErrEmptyName
	}
	if _, ok := r.types[tag]; ok {
		return fmt.Errorf("%w: %s", ErrTypeAlreadyExists, tag)
	}
	r.types[tag] = info
	return nil
}

// Get returns the info of tag.
func (r *Registry) Get(tag Tag) (Info, error) {
	info, ok := r.types[tag]
	if !ok {
		return Info{}, fmt.Errorf("%w: %q", ErrInvalidReserveType, tag)
	}
	return info, nil
}

// Tags returns all registered tags in sorted order.
func (r *Registry) Tags() []Tag {
	tags := make([]Tag, 0, len(r.types))
	for tag := range r.types {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// MaxBacking returns the largest backing allowed for mintingCap, or false if the
// type does not bound backing.
func (i Info) MaxBacking(mintingCap uint64) (uint64, bool) {
	if i.MaxBackingRatio == 0 {
		return 0, false
	}
	// Computed in two steps to stay within uint64 for realistic caps.
	whole := (mintingCap / BasisPoints) * i.MaxBackingRatio
	frac := (mintingCap % BasisPoints) * i.MaxBackingRatio / BasisPoints
	return whole + frac, true
}
