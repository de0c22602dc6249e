
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

// Shared constructors and assertions for the tests of this package.

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newPackerT(t testing.TB, flags PackFlag, exts ...ext) *Packer {
	t.Helper()
	o := NewPackerOptions(flags)
	for _, x := range exts {
		require.NoError(t, o.AddExt(x.code, x.t))
	}
	p, err := NewPacker(o)
	require.NoError(t, err)
	return p
}

func newDecoderT(t testing.TB, flags UnpackFlag, exts ...ext) *Decoder {
	t.Helper()
	o := NewDecoderOptions(flags)
	for _, x := range exts {
		require.NoError(t, o.AddExt(x.code, x.t))
	}
	d, err := NewDecoder(o)
	require.NoError(t, err)
	return d
}

type ext struct {
	code int8
	t    any
}

// unhex turns "93 01 02 03" into bytes.
func unhex(t testing.TB, s string) []byte {
	t.Helper()
	bs, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	require.NoError(t, err)
	return bs
}

func checkEqualT(t testing.TB, want, got any) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func asError(t testing.TB, err error) *Error {
	t.Helper()
	var me *Error
	require.True(t, errors.As(err, &me), "not a *msgpack.Error: %v", err)
	return me
}

func repeatByte(b byte, n int) []byte {
	bs := make([]byte, n)
	for i := range bs {
		bs[i] = b
	}
	return bs
}

func nils(n int) []any {
	return make([]any, n)
}

func intMap(n int) Map {
	m := make(Map, n)
	for i := range m {
		m[i] = MapEntry{Key: int64(i) + 1, Value: nil}
	}
	return m
}
