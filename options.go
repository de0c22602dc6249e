
/*
go-msgpack - Msgpack library for Go. Provides pack/unpack and net/rpc support.
https://github.com/ugorji/go-msgpack

Copyright (c) 2012, 2013 Ugorji Nwoke.
All rights reserved.

Redistribution and use in source and binary forms, with or without modification,
are permitted provided that the following conditions are met:

* Redistributions of source code must retain the above copyright notice,
  this list of conditions and the following disclaimer.
* Redistributions in binary form must reproduce the above copyright notice,
  this list of conditions and the following disclaimer in the documentation
  and/or other materials provided with the distribution.
* Neither the name of the author nor the names of its contributors may be used
  to endorse or promote products derived from this software
  without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS" AND
ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE IMPLIED
WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE FOR
ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES
(INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES;
LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON
ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE OF THIS
SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
*/

package msgpack

import (
	"fmt"
	"math/bits"

	"go.uber.org/zap"
)

// PackFlag configures a Packer. Flags are grouped; at most one flag of each
// group may be set.
type PackFlag uint16

const (
	ForceStr PackFlag = 1 << iota
	ForceBin
	DetectStrBin

	ForceArr
	ForceMap
	DetectArrMap

	ForceFloat32
	ForceFloat64 // default
)

const (
	strBinFlags = ForceStr | ForceBin | DetectStrBin
	arrMapFlags = ForceArr | ForceMap | DetectArrMap
	floatFlags  = ForceFloat32 | ForceFloat64
)

// UnpackFlag configures a Decoder.
type UnpackFlag uint8

const (
	// BigIntAsString decodes uint64 values above math.MaxInt64 as their
	// exact decimal string. This is the default.
	BigIntAsString UnpackFlag = 1 << iota
	// BigIntAsBig decodes them as *big.Int.
	BigIntAsBig
	// BigIntAsError fails the decode with KindOverflow.
	BigIntAsError
	// BigIntAsUint64 decodes them as uint64.
	BigIntAsUint64
)

const bigIntFlags = BigIntAsString | BigIntAsBig | BigIntAsError | BigIntAsUint64

func (f PackFlag) validate() error {
	for _, g := range [...]struct {
		name  string
		group PackFlag
	}{
		{"str/bin", strBinFlags},
		{"arr/map", arrMapFlags},
		{"float", floatFlags},
	} {
		if bits.OnesCount16(uint16(f&g.group)) > 1 {
			return newErr(KindInvalidOptions, fmt.Sprintf("conflicting %s flags: %#x", g.name, uint16(f&g.group)))
		}
	}
	if rest := f &^ (strBinFlags | arrMapFlags | floatFlags); rest != 0 {
		return newErr(KindInvalidOptions, fmt.Sprintf("unknown pack flags: %#x", uint16(rest)))
	}
	return nil
}

func (f UnpackFlag) validate() error {
	if bits.OnesCount8(uint8(f&bigIntFlags)) > 1 {
		return newErr(KindInvalidOptions, fmt.Sprintf("conflicting bigint flags: %#x", uint8(f)))
	}
	if rest := f &^ bigIntFlags; rest != 0 {
		return newErr(KindInvalidOptions, fmt.Sprintf("unknown unpack flags: %#x", uint8(rest)))
	}
	return nil
}

// PackerOptions holds the configuration of a Packer.
type PackerOptions struct {
	// Flags selects string, collection and float handling.
	// Zero means DetectStrBin|DetectArrMap|ForceFloat64.
	Flags PackFlag
	// Registry holds the extension transformers. NewPacker copies it.
	Registry *Registry
	// Logger overrides the package logger.
	Logger *zap.Logger
}

// NewPackerOptions returns options with the given flags and an empty Registry.
func NewPackerOptions(flags PackFlag) *PackerOptions {
	return &PackerOptions{Flags: flags, Registry: NewRegistry()}
}

// AddExt registers a transformer under code. See Registry.Register.
func (o *PackerOptions) AddExt(code int8, t any) error {
	if o.Registry == nil {
		o.Registry = NewRegistry()
	}
	if o.Logger != nil {
		o.Registry.log = o.Logger
	}
	return o.Registry.Register(code, t)
}

// DecoderOptions holds the configuration of a Decoder.
type DecoderOptions struct {
	// Flags selects big integer handling. Zero means BigIntAsString.
	Flags UnpackFlag
	// Registry holds the extension transformers. NewDecoder copies it.
	Registry *Registry
	// Logger overrides the package logger.
	Logger *zap.Logger
}

// NewDecoderOptions returns options with the given flags and an empty Registry.
func NewDecoderOptions(flags UnpackFlag) *DecoderOptions {
	return &DecoderOptions{Flags: flags, Registry: NewRegistry()}
}

// AddExt registers a transformer under code. See Registry.Register.
func (o *DecoderOptions) AddExt(code int8, t any) error {
	if o.Registry == nil {
		o.Registry = NewRegistry()
	}
	if o.Logger != nil {
		o.Registry.log = o.Logger
	}
	return o.Registry.Register(code, t)
}
