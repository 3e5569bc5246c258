// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"errors"
	"math"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
)

const CodecVersion = 0

var Codec codec.Manager

func init() {
	c := linearcodec.NewDefault()
	Codec = codec.NewManager(math.MaxInt32)

	err := errors.Join(
		c.RegisterType(&reserveTypeRecord{}),
		c.RegisterType(&reserveRecord{}),
		c.RegisterType(&qcRecord{}),
		c.RegisterType(&walletRecord{}),
		c.RegisterType(&oracleRecord{}),
		c.RegisterType(&proposalRecord{}),
		c.RegisterType(&metadataRecord{}),
		Codec.RegisterCodec(CodecVersion, c),
	)
	if err != nil {
		panic(err)
	}
}
