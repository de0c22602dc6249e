
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

import "bytes"

// Str packs as a msgpack str regardless of the Packer's StrBin flags.
type Str string

// Bin packs as a msgpack bin regardless of the Packer's StrBin flags.
type Bin []byte

// Array packs as a msgpack array regardless of the Packer's ArrMap flags.
type Array []any

// MapEntry is one key/value pair of a Map.
type MapEntry struct {
	Key   any
	Value any
}

// Map is an ordered list of key/value pairs.
//
// Maps decode into this type because the wire allows keys of any kind,
// including containers, and repeats of the same key. Entries are packed in
// order. PackMap always emits a msgpack map; Pack applies the ArrMap flags,
// so a Map keyed 0..N-1 becomes an array under DetectArrMap.
type Map []MapEntry

// Len returns the number of entries.
func (m Map) Len() int { return len(m) }

// Get returns the value of the first entry whose key equals key.
// Keys that are not comparable never match.
func (m Map) Get(key any) (v any, ok bool) {
	for _, e := range m {
		if keyEqual(e.Key, key) {
			return e.Value, true
		}
	}
	return
}

// Ext is an extension value: a signed type code and its raw payload.
type Ext struct {
	Type int8
	Data []byte
}

// Equal reports whether x and y carry the same type and payload.
func (x Ext) Equal(y Ext) bool {
	return x.Type == y.Type && bytes.Equal(x.Data, y.Data)
}

func keyEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
