// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/luxfi/ids"

	"github.com/luxfi/custodyvm/utils/profiler"
	"github.com/luxfi/custodyvm/vms/custodyvm/auth"
	"github.com/luxfi/custodyvm/vms/custodyvm/ledger"
	"github.com/luxfi/custodyvm/vms/custodyvm/oracle"
	"github.com/luxfi/custodyvm/vms/custodyvm/watchdog"
)

var (
	ErrUnknownNetwork = errors.New("unknown bitcoin network")
	ErrInvalidLimits  = errors.New("invalid ledger limits")
	ErrMissingSelf    = errors.New("watchdog identity is empty")
	ErrInvalidGrant   = errors.New("invalid capability grant")
)

// Config is the engine configuration. Zero-valued fields of a parsed file take
// the value from DefaultConfig.
type Config struct {
	// Bitcoin network custodian wallets must belong to: mainnet, testnet3,
	// signet, regtest or simnet.
	Network string `json:"network"`

	// HTTP listen address of the JSON-RPC service.
	HTTPAddress string `json:"httpAddress"`

	// Origins allowed to call the JSON-RPC service from a browser. Empty
	// allows any origin.
	AllowedOrigins []string `json:"allowedOrigins"`

	// Directory of the on-disk database. Empty runs in memory.
	DataDir string `json:"dataDir"`

	Limits   ledger.Limits   `json:"limits"`
	Oracle   oracle.Params   `json:"oracle"`
	Watchdog watchdog.Params `json:"watchdog"`

	// Identity the watchdog committee executes proposals as.
	WatchdogSelf ids.ShortID `json:"watchdogSelf"`

	// Initial capabilities, keyed by actor address.
	Grants map[string][]string `json:"grants"`

	Profiler profiler.Config `json:"profiler"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() Config {
	return Config{
		Network:      chaincfg.MainNetParams.Name,
		HTTPAddress:  "127.0.0.1:9650",
		Limits:       ledger.DefaultLimits(),
		Oracle:       oracle.DefaultParams(),
		Watchdog:     watchdog.DefaultParams(),
		WatchdogSelf: ids.ShortID{'w', 'a', 't', 'c', 'h', 'd', 'o', 'g'},
		Profiler: profiler.Config{
			Freq:        15 * time.Minute,
			MaxNumFiles: 5,
		},
	}
}

// Load reads a JSON config file on top of DefaultConfig.
func Load(path string) (Config, error) {
	c := DefaultConfig()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return c, nil
}

// Params returns the chain parameters of the configured Bitcoin network.
func (c *Config) Params() (*chaincfg.Params, error) {
	for _, p := range []*chaincfg.Params{
		&chaincfg.MainNetParams,
		&chaincfg.TestNet3Params,
		&chaincfg.SigNetParams,
		&chaincfg.RegressionNetParams,
		&chaincfg.SimNetParams,
	} {
		if p.Name == c.Network {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, c.Network)
}

// ParseGrants resolves Grants into actors and capabilities.
func (c *Config) ParseGrants() (map[ids.ShortID][]auth.Capability, error) {
	grants := make(map[ids.ShortID][]auth.Capability, len(c.Grants))
	for actorStr, names := range c.Grants {
		actor, err := ids.ShortFromString(actorStr)
		if err != nil {
			return nil, fmt.Errorf("%w: actor %q: %w", ErrInvalidGrant, actorStr, err)
		}
		for _, name := range names {
			capability, err := auth.ParseCapability(name)
			if err != nil {
				return nil, fmt.Errorf("%w: actor %s: %w", ErrInvalidGrant, actor, err)
			}
			grants[actor] = append(grants[actor], capability)
		}
	}
	return grants, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := c.Params(); err != nil {
		return err
	}
	switch {
	case c.Limits.MinMintAmount == 0:
		return fmt.Errorf("%w: min mint amount is zero", ErrInvalidLimits)
	case c.Limits.MaxSingleMint < c.Limits.MinMintAmount:
		return fmt.Errorf("%w: max single mint %d < min mint amount %d", ErrInvalidLimits, c.Limits.MaxSingleMint, c.Limits.MinMintAmount)
	case c.Limits.MaxBatchSize <= 0:
		return fmt.Errorf("%w: max batch size %d", ErrInvalidLimits, c.Limits.MaxBatchSize)
	}
	if err := c.Oracle.Verify(); err != nil {
		return err
	}
	if err := c.Watchdog.Verify(); err != nil {
		return err
	}
	if c.WatchdogSelf == ids.ShortEmpty {
		return ErrMissingSelf
	}
	if err := c.Profiler.Validate(); err != nil {
		return err
	}
	_, err := c.ParseGrants()
	return err
}
