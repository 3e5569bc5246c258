// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"github.com/spf13/pflag"

	"github.com/luxfi/custodyvm/vms/custodyvm/config"
)

const (
	ConfigFileKey = "config-file"
	NetworkKey    = "network"
	HTTPKey       = "http-address"
	DataDirKey    = "data-dir"
	AcceptSPVKey  = "accept-spv-proofs"
	ProfileDirKey = "profile-dir"
)

func AddFlags(flags *pflag.FlagSet) {
	flags.String(ConfigFileKey, "", "JSON config file; flags override its values")
	flags.String(NetworkKey, "", "Bitcoin network custodian wallets must belong to")
	flags.String(HTTPKey, "", "Address the JSON-RPC API listens on")
	flags.String(DataDirKey, "", "Database directory; empty keeps state in memory")
	flags.String(ProfileDirKey, "", "Directory continuous profiles are written to; empty disables profiling")
	flags.Bool(AcceptSPVKey, false, "Accept every wallet control proof (local testing only)")
}

// Flags are the parsed command line options.
type Flags struct {
	Config    config.Config
	AcceptSPV bool
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Flags, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	path, err := flags.GetString(ConfigFileKey)
	if err != nil {
		return nil, err
	}
	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	for key, field := range map[string]*string{
		NetworkKey:    &c.Network,
		HTTPKey:       &c.HTTPAddress,
		DataDirKey:    &c.DataDir,
		ProfileDirKey: &c.Profiler.Dir,
	} {
		if !flags.Changed(key) {
			continue
		}
		if *field, err = flags.GetString(key); err != nil {
			return nil, err
		}
	}

	acceptSPV, err := flags.GetBool(AcceptSPVKey)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Flags{
		Config:    c,
		AcceptSPV: acceptSPV,
	}, nil
}
