
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

// Contains code shared by both encode and decode.

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"unicode/utf8"
)

// A containerType describes the tag family of a length-prefixed kind.
// A zero b8 means the family has no 8-bit length form; fixMax < 0 means it
// has no fix form.
type containerType struct {
	fixMax       int
	fix          byte
	b8, b16, b32 byte
}

var (
	containerStr   = containerType{31, 0xa0, 0xd9, 0xda, 0xdb}
	containerBin   = containerType{-1, 0, 0xc4, 0xc5, 0xc6}
	containerArray = containerType{15, 0x90, 0, 0xdc, 0xdd}
	containerMap   = containerType{15, 0x80, 0, 0xde, 0xdf}
)

const maxContainerLen = 1<<32 - 1

// isText reports whether s is valid UTF-8. This is the full O(n) scan
// behind DetectStrBin.
func isText(s string) bool {
	return utf8.ValidString(s)
}

// sortedMapKeys returns the keys of the map rv in a deterministic order.
// Keys of interface type are ordered by their dynamic value, see compareKeys.
func sortedMapKeys(rv reflect.Value) []reflect.Value {
	keys := rv.MapKeys()
	if len(keys) < 2 {
		return keys
	}
	switch rv.Type().Key().Kind() {
	case reflect.String:
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.String(), b.String()) })
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.Int(), b.Int()) })
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.Uint(), b.Uint()) })
	default:
		slices.SortStableFunc(keys, compareKeys)
	}
	return keys
}

// Key classes, in sort order.
const (
	classNil = iota
	classBool
	classInt
	classFloat
	classString
	classOther
)

func keyClass(k reflect.Value) int {
	switch k.Kind() {
	case reflect.Invalid:
		return classNil
	case reflect.Bool:
		return classBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return classInt
	case reflect.Float32, reflect.Float64:
		return classFloat
	case reflect.String:
		return classString
	}
	return classOther
}

func unwrapKey(k reflect.Value) reflect.Value {
	for k.Kind() == reflect.Interface {
		k = k.Elem()
	}
	return k
}

// compareKeys is a total order over map keys of any kind: nil, bools,
// integers, floats, strings, then everything else by type and printed form.
// Signed and unsigned integers compare by numeric value; equal values are
// then ordered by type name.
func compareKeys(a, b reflect.Value) int {
	a, b = unwrapKey(a), unwrapKey(b)
	ca, cb := keyClass(a), keyClass(b)
	if ca != cb {
		return cmp.Compare(ca, cb)
	}
	if c := compareSameClass(ca, a, b); c != 0 || ca == classNil {
		return c
	}
	// Equal values of different types, such as int(0) and int64(0).
	return cmp.Compare(a.Type().String(), b.Type().String())
}

func compareSameClass(ca int, a, b reflect.Value) int {
	switch ca {
	case classBool:
		return cmp.Compare(boolRank(a.Bool()), boolRank(b.Bool()))
	case classInt:
		return compareInts(a, b)
	case classFloat:
		return cmp.Compare(a.Float(), b.Float())
	case classString:
		return cmp.Compare(a.String(), b.String())
	case classOther:
		return cmp.Compare(keyText(a), keyText(b))
	}
	return 0
}

func keyText(k reflect.Value) string {
	if !k.CanInterface() {
		return k.Type().String()
	}
	return fmt.Sprintf("%T %v", k.Interface(), k.Interface())
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isSigned(k reflect.Value) bool {
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func compareInts(a, b reflect.Value) int {
	sa, sb := isSigned(a), isSigned(b)
	switch {
	case sa && sb:
		return cmp.Compare(a.Int(), b.Int())
	case !sa && !sb:
		return cmp.Compare(a.Uint(), b.Uint())
	case sa:
		if a.Int() < 0 {
			return -1
		}
		return cmp.Compare(uint64(a.Int()), b.Uint())
	}
	if b.Int() < 0 {
		return 1
	}
	return cmp.Compare(a.Uint(), uint64(b.Int()))
}

// isIndex reports whether k is an integer of any kind equal to i.
func isIndex(k reflect.Value, i int) bool {
	k = unwrapKey(k)
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return k.Int() == int64(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return k.Uint() == uint64(i)
	}
	return false
}

// isSequential reports whether keys, in order, are exactly the integers
// 0..len(keys)-1. This is the scan behind DetectArrMap; keys must come
// from sortedMapKeys.
func isSequential(keys []reflect.Value) bool {
	for i, k := range keys {
		if !isIndex(k, i) {
			return false
		}
	}
	return true
}

// isSequentialMap is isSequential for the entries of a Map, taken in
// entry order.
func isSequentialMap(m Map) bool {
	for i, e := range m {
		if !isIndex(reflect.ValueOf(e.Key), i) {
			return false
		}
	}
	return true
}
