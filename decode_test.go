
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
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	p := newPackerT(t, 0)
	d := newDecoderT(t, 0)

	type packFn func() ([]byte, error)
	ok := func(bs []byte) packFn { return func() ([]byte, error) { return bs, nil } }

	testCases := []struct {
		name string
		pack packFn
		want any
	}{
		{"nil", ok(p.PackNil()), nil},
		{"true", ok(p.PackBool(true)), true},
		{"false", ok(p.PackBool(false)), false},
		{"float32", ok(p.PackFloat32(3.25)), float32(3.25)},
		{"float64", ok(p.PackFloat64(-1e300)), -1e300},
		{"max float64", ok(p.PackFloat64(math.MaxFloat64)), math.MaxFloat64},
		{"inf", ok(p.PackFloat64(math.Inf(1))), math.Inf(1)},
		{"str", func() ([]byte, error) { return p.PackStr("héllo") }, "héllo"},
		{"empty str", func() ([]byte, error) { return p.PackStr("") }, ""},
		{"bin", func() ([]byte, error) { return p.PackBin([]byte{0, 1, 2}) }, []byte{0, 1, 2}},
		{"empty bin", func() ([]byte, error) { return p.PackBin([]byte{}) }, []byte{}},
		{"array", func() ([]byte, error) { return p.PackArray([]any{int64(1), "a", nil}) }, []any{int64(1), "a", nil}},
		{"empty array", func() ([]byte, error) { return p.PackArray([]any{}) }, []any{}},
		{"map", func() ([]byte, error) {
			return p.PackMap(Map{{Key: "a", Value: int64(1)}, {Key: int64(0), Value: []any{true}}})
		}, Map{{Key: "a", Value: int64(1)}, {Key: int64(0), Value: []any{true}}}},
		{"map with container key", func() ([]byte, error) {
			return p.PackMap(Map{{Key: []any{int64(1)}, Value: Map{{Key: "x", Value: nil}}}})
		}, Map{{Key: []any{int64(1)}, Value: Map{{Key: "x", Value: nil}}}}},
		{"empty map", func() ([]byte, error) { return p.PackMap(Map{}) }, Map{}},
		{"ext", func() ([]byte, error) { return p.PackExt(-5, []byte("payload")) }, Ext{Type: -5, Data: []byte("payload")}},
		{"empty ext", func() ([]byte, error) { return p.PackExt(0, []byte{}) }, Ext{Type: 0, Data: []byte{}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bs, err := tc.pack()
			require.NoError(t, err)

			v, n, err := d.Decode(bs)
			require.NoError(t, err)
			assert.Equal(t, len(bs), n)
			checkEqualT(t, tc.want, v)
		})
	}
}

func TestRoundTripIntBoundaries(t *testing.T) {
	p := newPackerT(t, 0)
	d := newDecoderT(t, 0)

	for _, i := range []int64{
		0, 1, 127, 128, 255, 256, 65535, 65536,
		math.MaxInt32, math.MaxInt32 + 1, math.MaxUint32, math.MaxUint32 + 1, math.MaxInt64,
		-1, -32, -33, -128, -129, -32768, -32769,
		math.MinInt32, math.MinInt32 - 1, math.MinInt64,
	} {
		v, err := d.Unmarshal(p.PackInt(i))
		require.NoError(t, err, "value %d", i)
		assert.Equal(t, i, v, "value %d", i)
	}
}

func TestRoundTripLengthBoundaries(t *testing.T) {
	p := newPackerT(t, 0)
	d := newDecoderT(t, 0)

	for _, n := range []int{0, 1, 15, 16, 31, 32, 255, 256, 65535, 65536} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			s := strings.Repeat("é", n/2) + strings.Repeat("x", n%2)
			bs, err := p.PackStr(s)
			require.NoError(t, err)
			v, err := d.Unmarshal(bs)
			require.NoError(t, err)
			assert.Equal(t, s, v)

			raw := repeatByte(0xc1, n)
			bs, err = p.PackBin(raw)
			require.NoError(t, err)
			v, err = d.Unmarshal(bs)
			require.NoError(t, err)
			assert.Equal(t, raw, v)

			items := nils(n)
			bs, err = p.PackArray(items)
			require.NoError(t, err)
			v, err = d.Unmarshal(bs)
			require.NoError(t, err)
			assert.Len(t, v, n)

			m := intMap(n)
			bs, err = p.PackMap(m)
			require.NoError(t, err)
			v, err = d.Unmarshal(bs)
			require.NoError(t, err)
			checkEqualT(t, m, v)
		})
	}
}

func TestDecodeBigIntModes(t *testing.T) {
	bs := newPackerT(t, 0).PackUint(math.MaxUint64)
	require.Equal(t, unhex(t, "cf ff ff ff ff ff ff ff ff"), bs)

	_, err := newDecoderT(t, BigIntAsError).Unmarshal(bs)
	require.ErrorIs(t, err, ErrOverflow)

	v, err := newDecoderT(t, BigIntAsString).Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551615", v)

	v, err = newDecoderT(t, 0).Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551615", v)

	v, err = newDecoderT(t, BigIntAsBig).Unmarshal(bs)
	require.NoError(t, err)
	want, _ := new(big.Int).SetString("18446744073709551615", 10)
	require.IsType(t, (*big.Int)(nil), v)
	assert.Zero(t, want.Cmp(v.(*big.Int)))

	v, err = newDecoderT(t, BigIntAsUint64).Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), v)

	// uint64 values inside the signed range are plain int64 in every mode.
	v, err = newDecoderT(t, BigIntAsError).Unmarshal(unhex(t, "cf 7f ff ff ff ff ff ff ff"))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), v)

	packed, err := newPackerT(t, 0).Pack(want)
	require.NoError(t, err)
	assert.Equal(t, bs, packed)
}

func TestDecodeInsufficientData(t *testing.T) {
	d := newDecoderT(t, 0)

	testCases := []struct {
		name              string
		in                string
		needed, available int
	}{
		{"empty", "", 1, 0},
		{"uint32", "ce 00 01", 5, 3},
		{"uint64", "cf", 9, 1},
		{"float64", "cb 00 00", 9, 3},
		{"str8 length", "d9", 2, 1},
		{"str8 body", "d9 05 61 62", 7, 4},
		{"fixstr body", "a3 61", 4, 2},
		{"bin16 length", "c5 00", 3, 2},
		{"array element", "92 01", 3, 2},
		{"nested", "91 92 01 cd 00", 6, 5},
		{"map value", "81 a1 61", 4, 3},
		{"fixext type", "d4", 2, 1},
		{"ext8 payload", "c7 03 01 aa", 6, 4},
		{"map32 length", "df 00 00", 5, 3},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, n, err := d.Decode(unhex(t, tc.in))
			require.ErrorIs(t, err, ErrInsufficientData)
			assert.Zero(t, n)
			me := asError(t, err)
			assert.Equal(t, tc.needed, me.Needed)
			assert.Equal(t, tc.available, me.Available)
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	d := newDecoderT(t, 0)

	_, _, err := d.Decode([]byte{0xc1})
	require.ErrorIs(t, err, ErrMalformed)
	assert.False(t, errors.Is(err, ErrInsufficientData))
	me := asError(t, err)
	assert.Equal(t, byte(0xc1), me.Code)
	assert.Contains(t, err.Error(), "code 0xc1")

	_, _, err = d.Decode(unhex(t, "92 01 c1"))
	require.ErrorIs(t, err, ErrMalformed)
	assert.Equal(t, 2, asError(t, err).Offset)

	_, err = d.Unmarshal(unhex(t, "01 02"))
	require.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "1 trailing bytes")
}

func TestDecodeDoesNotAliasInput(t *testing.T) {
	d := newDecoderT(t, 0)
	in := unhex(t, "93 c4 01 aa d4 05 bb a1 61")

	v, err := d.Unmarshal(in)
	require.NoError(t, err)
	for i := range in {
		in[i] = 0
	}
	checkEqualT(t, []any{[]byte{0xaa}, Ext{Type: 5, Data: []byte{0xbb}}, "a"}, v)
}

func TestDecodeHostileLength(t *testing.T) {
	d := newDecoderT(t, 0)

	// array32 announcing 2^32-1 elements with only one present.
	_, _, err := d.Decode(unhex(t, "dd ff ff ff ff 01"))
	require.ErrorIs(t, err, ErrInsufficientData)
	assert.Equal(t, 6, asError(t, err).Available)
}

// upperExt turns the payload of its extension type into an upper-case string.
type upperExt struct{}

func (upperExt) UnpackExt(_ *Decoder, _ int8, payload []byte) (any, error) {
	return strings.ToUpper(string(payload)), nil
}

// nestedExt decodes its payload as one msgpack value.
type nestedExt struct{}

func (nestedExt) UnpackExt(d *Decoder, _ int8, payload []byte) (any, error) {
	return d.Unmarshal(payload)
}

func TestDecodeExtTransformers(t *testing.T) {
	plain := newPackerT(t, 0)
	withExt := newPackerT(t, 0, ext{42, upperExt{}})

	bs, err := plain.PackExt(42, []byte{0xaa})
	require.NoError(t, err)
	assert.Equal(t, unhex(t, "d4 2a aa"), bs)

	again, err := withExt.PackExt(42, []byte{0xaa})
	require.NoError(t, err)
	assert.Equal(t, bs, again, "registering a transformer must not change packing")

	v, err := newDecoderT(t, 0).Unmarshal(bs)
	require.NoError(t, err)
	checkEqualT(t, Ext{Type: 42, Data: []byte{0xaa}}, v)

	text, err := plain.PackExt(42, []byte("abc"))
	require.NoError(t, err)
	v, err = newDecoderT(t, 0, ext{42, upperExt{}}).Unmarshal(text)
	require.NoError(t, err)
	assert.Equal(t, "ABC", v)

	// other codes are unaffected
	v, err = newDecoderT(t, 0, ext{42, upperExt{}}).Unmarshal(unhex(t, "d4 2b aa"))
	require.NoError(t, err)
	checkEqualT(t, Ext{Type: 43, Data: []byte{0xaa}}, v)
}

func TestDecodeExtRecursion(t *testing.T) {
	p := newPackerT(t, 0)
	d := newDecoderT(t, 0, ext{7, nestedExt{}})

	inner, err := p.PackArray([]any{int64(1), "two"})
	require.NoError(t, err)
	bs, err := p.PackExt(7, inner)
	require.NoError(t, err)

	v, err := d.Unmarshal(bs)
	require.NoError(t, err)
	checkEqualT(t, []any{int64(1), "two"}, v)

	// A payload cut short can never be completed by more input.
	bs, err = p.PackExt(7, unhex(t, "ce 00 01"))
	require.NoError(t, err)
	_, err = d.Unmarshal(bs)
	require.ErrorIs(t, err, ErrMalformed)
	assert.False(t, errors.Is(err, ErrInsufficientData))
}

func TestUnmarshalDefault(t *testing.T) {
	v, err := Unmarshal(unhex(t, "82 a1 61 01 a1 62 92 c3 c0"))
	require.NoError(t, err)
	m, ok := v.(Map)
	require.True(t, ok)
	a, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, int64(1), a)
	b, _ := m.Get("b")
	assert.Equal(t, []any{true, nil}, b)
	_, ok = m.Get([]byte("a"))
	assert.False(t, ok)
}
