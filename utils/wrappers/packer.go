// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wrappers

import (
	"encoding/binary"
	"errors"
	"math"
)

const MaxStringLen = math.MaxUint16

var (
	ErrInsufficientLength = errors.New("packer has insufficient length for input")
	errInvalidInput       = errors.New("input does not match expected format")
)

// Packer appends fixed-width big-endian values to a byte slice. It is used to
// build canonical preimages for content-addressed identifiers, so the layout
// must never change for an existing field order.
type Packer struct {
	Errs

	// MaxSize bounds how far Bytes may grow.
	MaxSize int
	Bytes   []byte
	Offset  int
}

// NewPacker returns a packer that may grow up to maxSize bytes.
func NewPacker(maxSize int) *Packer {
	return &Packer{
		MaxSize: maxSize,
		Bytes:   make([]byte, 0, min(maxSize, 256)),
	}
}

func (p *Packer) PackByte(val byte) {
	p.expand(ByteLen)
	if p.Errored() {
		return
	}
	p.Bytes[p.Offset] = val
	p.Offset++
}

func (p *Packer) PackShort(val uint16) {
	p.expand(ShortLen)
	if p.Errored() {
		return
	}
	binary.BigEndian.PutUint16(p.Bytes[p.Offset:], val)
	p.Offset += ShortLen
}

func (p *Packer) PackInt(val uint32) {
	p.expand(IntLen)
	if p.Errored() {
		return
	}
	binary.BigEndian.PutUint32(p.Bytes[p.Offset:], val)
	p.Offset += IntLen
}

func (p *Packer) PackLong(val uint64) {
	p.expand(LongLen)
	if p.Errored() {
		return
	}
	binary.BigEndian.PutUint64(p.Bytes[p.Offset:], val)
	p.Offset += LongLen
}

func (p *Packer) PackBool(b bool) {
	if b {
		p.PackByte(1)
	} else {
		p.PackByte(0)
	}
}

// PackFixedBytes appends bytes with no length prefix.
func (p *Packer) PackFixedBytes(bytes []byte) {
	p.expand(len(bytes))
	if p.Errored() {
		return
	}
	copy(p.Bytes[p.Offset:], bytes)
	p.Offset += len(bytes)
}

// PackBytes appends bytes prefixed with a uint32 length.
func (p *Packer) PackBytes(bytes []byte) {
	p.PackInt(uint32(len(bytes)))
	p.PackFixedBytes(bytes)
}

// PackStr appends a string prefixed with a uint16 length.
func (p *Packer) PackStr(str string) {
	if len(str) > MaxStringLen {
		p.Add(errInvalidInput)
		return
	}
	p.PackShort(uint16(len(str)))
	p.PackFixedBytes([]byte(str))
}

func (p *Packer) expand(bytes int) {
	neededSize := bytes + p.Offset
	switch {
	case neededSize <= len(p.Bytes):
		return
	case neededSize > p.MaxSize:
		p.Add(ErrInsufficientLength)
	case neededSize <= cap(p.Bytes):
		p.Bytes = p.Bytes[:neededSize]
	default:
		p.Bytes = append(p.Bytes[:cap(p.Bytes)], make([]byte, neededSize-cap(p.Bytes))...)
	}
}
