
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackFlagValidation(t *testing.T) {
	valid := []PackFlag{
		0,
		ForceStr, ForceBin, DetectStrBin,
		ForceArr, ForceMap, DetectArrMap,
		ForceFloat32, ForceFloat64,
		ForceBin | ForceMap | ForceFloat32,
		DetectStrBin | DetectArrMap | ForceFloat64,
	}
	for _, f := range valid {
		_, err := NewPacker(NewPackerOptions(f))
		assert.NoError(t, err, "flags %#x", uint16(f))
	}

	invalid := []PackFlag{
		ForceStr | ForceBin,
		ForceStr | DetectStrBin,
		ForceArr | ForceMap,
		ForceMap | DetectArrMap,
		ForceFloat32 | ForceFloat64,
		ForceStr | ForceArr | ForceMap,
		1 << 12,
	}
	for _, f := range invalid {
		p, err := NewPacker(NewPackerOptions(f))
		require.ErrorIs(t, err, ErrInvalidOptions, "flags %#x", uint16(f))
		assert.Nil(t, p)
	}
}

func TestUnpackFlagValidation(t *testing.T) {
	for _, f := range []UnpackFlag{0, BigIntAsString, BigIntAsBig, BigIntAsError, BigIntAsUint64} {
		_, err := NewDecoder(NewDecoderOptions(f))
		assert.NoError(t, err, "flags %#x", uint8(f))
	}
	for _, f := range []UnpackFlag{BigIntAsString | BigIntAsBig, BigIntAsError | BigIntAsUint64, 1 << 6} {
		d, err := NewDecoder(NewDecoderOptions(f))
		require.ErrorIs(t, err, ErrInvalidOptions, "flags %#x", uint8(f))
		assert.Nil(t, d)
	}
}

func TestNilOptions(t *testing.T) {
	p, err := NewPacker(nil)
	require.NoError(t, err)
	bs, err := p.Pack([]any{"a", []byte("a")})
	require.NoError(t, err)
	assert.Equal(t, unhex(t, "92 a1 61 c4 01 61"), bs)

	d, err := NewDecoder(nil)
	require.NoError(t, err)
	v, err := d.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", []byte("a")}, v)

	// AddExt on zero-value options creates the registry.
	var o DecoderOptions
	require.NoError(t, o.AddExt(TimestampType, TimestampTransformer{}))
	assert.Equal(t, 1, o.Registry.Len())
	var po PackerOptions
	require.NoError(t, po.AddExt(TimestampType, TimestampTransformer{}))
	assert.Equal(t, 1, po.Registry.Len())
}
