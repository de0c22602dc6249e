
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
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"reflect"

	"go.uber.org/zap"
)

// A Packer encodes values into msgpack bytes.
//
// A Packer holds only its flags and a snapshot of the extension registry,
// so once built it is safe for concurrent use.
type Packer struct {
	flags   PackFlag
	reg     *Registry
	packers []CanPack
	log     *zap.Logger
}

// NewPacker returns a Packer configured by o. A nil o gives the defaults.
// Conflicting flags are rejected here with KindInvalidOptions.
func NewPacker(o *PackerOptions) (*Packer, error) {
	if o == nil {
		o = &PackerOptions{}
	}
	if err := o.Flags.validate(); err != nil {
		return nil, err
	}
	reg := o.Registry.Clone()
	return &Packer{
		flags:   o.Flags,
		reg:     reg,
		packers: reg.packers(),
		log:     loggerOr(o.Logger),
	}, nil
}

// Pack encodes v.
//
// Basic Go kinds are encoded directly: nil, bool, integers, floats, string,
// []byte, slices, arrays, maps, pointers to these, and the Str, Bin, Array,
// Map and Ext types of this package. Any other value is offered to the
// registered CanPack transformers in registration order; if none claims it,
// Pack fails with KindUnsupported.
//
// Strings follow the StrBin flags: under DetectStrBin (the default) a valid
// UTF-8 string is a str and anything else a bin. Maps follow the ArrMap
// flags: under DetectArrMap a Map or Go map whose keys, in order, are exactly
// 0..N-1 is packed as an array of its values.
func (p *Packer) Pack(v any) ([]byte, error) {
	return p.encode(nil, v)
}

// Append encodes v like Pack and appends the bytes to dst.
func (p *Packer) Append(dst []byte, v any) ([]byte, error) {
	return p.encode(dst, v)
}

// PackNil returns the encoding of nil.
func (p *Packer) PackNil() []byte { return appendNil(nil) }

// PackBool returns the encoding of b.
func (p *Packer) PackBool(b bool) []byte { return appendBool(nil, b) }

// PackInt returns the smallest encoding of i.
func (p *Packer) PackInt(i int64) []byte { return appendInt(nil, i) }

// PackUint returns the smallest encoding of u.
func (p *Packer) PackUint(u uint64) []byte { return appendUint(nil, u) }

// PackFloat encodes f as float64, or as float32 under ForceFloat32.
func (p *Packer) PackFloat(f float64) []byte {
	if p.flags&ForceFloat32 != 0 {
		return appendFloat32(nil, float32(f))
	}
	return appendFloat64(nil, f)
}

// PackFloat32 encodes f as a msgpack float32.
func (p *Packer) PackFloat32(f float32) []byte { return appendFloat32(nil, f) }

// PackFloat64 encodes f as a msgpack float64.
func (p *Packer) PackFloat64(f float64) []byte { return appendFloat64(nil, f) }

// PackStr encodes s as a str without checking it is valid UTF-8.
func (p *Packer) PackStr(s string) ([]byte, error) { return appendStr(nil, s) }

// PackBin encodes bs as a bin.
func (p *Packer) PackBin(bs []byte) ([]byte, error) { return appendBin(nil, bs) }

// PackArray encodes items as an array, whatever the ArrMap flags.
func (p *Packer) PackArray(items []any) ([]byte, error) { return p.appendArray(nil, items) }

// PackArrayHeader encodes only the header of an array of n elements.
// The caller appends the n encoded elements.
func (p *Packer) PackArrayHeader(n int) ([]byte, error) {
	return appendContainerLen(nil, containerArray, n)
}

// PackMap encodes m as a map, whatever the ArrMap flags.
func (p *Packer) PackMap(m Map) ([]byte, error) { return p.appendMap(nil, m) }

// PackMapHeader encodes only the header of a map of n pairs.
// The caller appends the 2n encoded keys and values.
func (p *Packer) PackMapHeader(n int) ([]byte, error) {
	return appendContainerLen(nil, containerMap, n)
}

// PackExt encodes an extension value of type typ carrying data.
func (p *Packer) PackExt(typ int8, data []byte) ([]byte, error) { return appendExt(nil, typ, data) }

func (p *Packer) encode(b []byte, iv any) ([]byte, error) {
	switch v := iv.(type) {
	case nil:
		return appendNil(b), nil
	case bool:
		return appendBool(b, v), nil
	case int:
		return appendInt(b, int64(v)), nil
	case int8:
		return appendInt(b, int64(v)), nil
	case int16:
		return appendInt(b, int64(v)), nil
	case int32:
		return appendInt(b, int64(v)), nil
	case int64:
		return appendInt(b, v), nil
	case uint:
		return appendUint(b, uint64(v)), nil
	case uint8:
		return appendUint(b, uint64(v)), nil
	case uint16:
		return appendUint(b, uint64(v)), nil
	case uint32:
		return appendUint(b, uint64(v)), nil
	case uint64:
		return appendUint(b, v), nil
	case float32:
		return p.appendFloat32(b, v), nil
	case float64:
		return p.appendFloat64(b, v), nil
	case string:
		return p.appendString(b, v)
	case []byte:
		if v == nil {
			return appendNil(b), nil
		}
		return p.appendBytes(b, v)
	case Str:
		return appendStr(b, string(v))
	case Bin:
		return appendBin(b, v)
	case Array:
		return p.appendArray(b, v)
	case []any:
		if v == nil {
			return appendNil(b), nil
		}
		return p.appendList(b, v)
	case Map:
		if v == nil {
			return appendNil(b), nil
		}
		return p.appendDetectedMap(b, v)
	case Ext:
		return appendExt(b, v.Type, v.Data)
	case *Ext:
		if v == nil {
			return appendNil(b), nil
		}
		return appendExt(b, v.Type, v.Data)
	case *big.Int:
		return appendBigInt(b, v)
	case reflect.Value:
		return p.encodeValue(b, v)
	}

	if len(p.packers) > 0 {
		for _, t := range p.packers {
			bs, ok, err := t.PackValue(p, iv)
			if err != nil {
				return b, wrapErr(KindUnsupported, fmt.Sprintf("transformer %T failed on %T", t, iv), err)
			}
			if ok {
				return append(b, bs...), nil
			}
		}
	}
	return p.encodeValue(b, reflect.ValueOf(iv))
}

// encodeValue handles named types and generic containers by kind.
func (p *Packer) encodeValue(b []byte, rv reflect.Value) ([]byte, error) {
	switch rv.Kind() {
	case reflect.Invalid:
		return appendNil(b), nil
	case reflect.Bool:
		return appendBool(b, rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return appendInt(b, rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return appendUint(b, rv.Uint()), nil
	case reflect.Float32:
		return p.appendFloat32(b, float32(rv.Float())), nil
	case reflect.Float64:
		return p.appendFloat64(b, rv.Float()), nil
	case reflect.String:
		return p.appendString(b, rv.String())
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return appendNil(b), nil
		}
		return p.encodeElem(b, rv.Elem())
	case reflect.Slice:
		if rv.IsNil() {
			return appendNil(b), nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return p.appendBytes(b, rv.Bytes())
		}
		return p.appendReflectList(b, rv)
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			bs := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(bs), rv)
			return p.appendBytes(b, bs)
		}
		return p.appendReflectList(b, rv)
	case reflect.Map:
		if rv.IsNil() {
			return appendNil(b), nil
		}
		return p.appendReflectMap(b, rv)
	}

	if ce := p.log.Check(zap.DebugLevel, "msgpack: no transformer claimed value"); ce != nil {
		ce.Write(zap.String("type", rv.Type().String()), zap.Int("transformers", len(p.packers)))
	}
	return b, newErr(KindUnsupported, fmt.Sprintf("cannot pack value of type %s", rv.Type()))
}

// encodeElem encodes a value reached through reflection so that
// transformers still see it as an interface value.
func (p *Packer) encodeElem(b []byte, rv reflect.Value) ([]byte, error) {
	if rv.CanInterface() {
		return p.encode(b, rv.Interface())
	}
	return p.encodeValue(b, rv)
}

// appendFloat32 widens f to a msgpack float64 unless ForceFloat32 is set.
func (p *Packer) appendFloat32(b []byte, f float32) []byte {
	if p.flags&ForceFloat32 != 0 {
		return appendFloat32(b, f)
	}
	return appendFloat64(b, float64(f))
}

func (p *Packer) appendFloat64(b []byte, f float64) []byte {
	if p.flags&ForceFloat32 != 0 {
		return appendFloat32(b, float32(f))
	}
	return appendFloat64(b, f)
}

func (p *Packer) appendString(b []byte, s string) ([]byte, error) {
	switch {
	case p.flags&ForceStr != 0:
		return appendStr(b, s)
	case p.flags&ForceBin != 0:
		return appendBin(b, []byte(s))
	case isText(s):
		return appendStr(b, s)
	}
	return appendBin(b, []byte(s))
}

func (p *Packer) appendBytes(b []byte, bs []byte) ([]byte, error) {
	if p.flags&ForceStr != 0 {
		return appendStr(b, string(bs))
	}
	return appendBin(b, bs)
}

func (p *Packer) appendArray(b []byte, items []any) (_ []byte, err error) {
	if b, err = appendContainerLen(b, containerArray, len(items)); err != nil {
		return b, err
	}
	for _, v := range items {
		if b, err = p.encode(b, v); err != nil {
			return b, err
		}
	}
	return b, nil
}

// appendList packs a plain slice: an array, or a map keyed by index under
// ForceMap.
func (p *Packer) appendList(b []byte, items []any) (_ []byte, err error) {
	if p.flags&ForceMap == 0 {
		return p.appendArray(b, items)
	}
	if b, err = appendContainerLen(b, containerMap, len(items)); err != nil {
		return b, err
	}
	for i, v := range items {
		b = appendInt(b, int64(i))
		if b, err = p.encode(b, v); err != nil {
			return b, err
		}
	}
	return b, nil
}

func (p *Packer) appendMap(b []byte, m Map) (_ []byte, err error) {
	if b, err = appendContainerLen(b, containerMap, len(m)); err != nil {
		return b, err
	}
	for _, e := range m {
		if b, err = p.encode(b, e.Key); err != nil {
			return b, err
		}
		if b, err = p.encode(b, e.Value); err != nil {
			return b, err
		}
	}
	return b, nil
}

func (p *Packer) appendDetectedMap(b []byte, m Map) (_ []byte, err error) {
	switch {
	case p.flags&ForceMap != 0:
		return p.appendMap(b, m)
	case p.flags&ForceArr != 0, isSequentialMap(m):
		if b, err = appendContainerLen(b, containerArray, len(m)); err != nil {
			return b, err
		}
		for _, e := range m {
			if b, err = p.encode(b, e.Value); err != nil {
				return b, err
			}
		}
		return b, nil
	}
	return p.appendMap(b, m)
}

func (p *Packer) appendReflectList(b []byte, rv reflect.Value) (_ []byte, err error) {
	l := rv.Len()
	asMap := p.flags&ForceMap != 0
	ct := containerArray
	if asMap {
		ct = containerMap
	}
	if b, err = appendContainerLen(b, ct, l); err != nil {
		return b, err
	}
	for j := 0; j < l; j++ {
		if asMap {
			b = appendInt(b, int64(j))
		}
		if b, err = p.encodeElem(b, rv.Index(j)); err != nil {
			return b, err
		}
	}
	return b, nil
}

func (p *Packer) appendReflectMap(b []byte, rv reflect.Value) (_ []byte, err error) {
	keys := sortedMapKeys(rv)
	asArray := p.flags&ForceArr != 0 || (p.flags&ForceMap == 0 && isSequential(keys))
	ct := containerMap
	if asArray {
		ct = containerArray
	}
	if b, err = appendContainerLen(b, ct, len(keys)); err != nil {
		return b, err
	}
	for _, k := range keys {
		if !asArray {
			if b, err = p.encodeElem(b, k); err != nil {
				return b, err
			}
		}
		if b, err = p.encodeElem(b, rv.MapIndex(k)); err != nil {
			return b, err
		}
	}
	return b, nil
}

func appendContainerLen(b []byte, ct containerType, l int) ([]byte, error) {
	switch {
	case l < 0 || uint64(l) > maxContainerLen:
		return b, newErr(KindUnsupported, fmt.Sprintf("length %d out of range", l))
	case l <= ct.fixMax:
		return append(b, ct.fix|byte(l)), nil
	case ct.b8 != 0 && l <= math.MaxUint8:
		return append(b, ct.b8, byte(l)), nil
	case l <= math.MaxUint16:
		return binary.BigEndian.AppendUint16(append(b, ct.b16), uint16(l)), nil
	}
	return binary.BigEndian.AppendUint32(append(b, ct.b32), uint32(l)), nil
}

func appendNil(b []byte) []byte {
	return append(b, 0xc0)
}

func appendBool(b []byte, v bool) []byte {
	if v {
		return append(b, 0xc3)
	}
	return append(b, 0xc2)
}

func appendInt(b []byte, i int64) []byte {
	switch {
	case i >= 0:
		return appendUint(b, uint64(i))
	case i >= -32:
		return append(b, byte(i))
	case i >= math.MinInt8:
		return append(b, 0xd0, byte(i))
	case i >= math.MinInt16:
		return binary.BigEndian.AppendUint16(append(b, 0xd1), uint16(i))
	case i >= math.MinInt32:
		return binary.BigEndian.AppendUint32(append(b, 0xd2), uint32(i))
	}
	return binary.BigEndian.AppendUint64(append(b, 0xd3), uint64(i))
}

func appendUint(b []byte, i uint64) []byte {
	switch {
	case i <= math.MaxInt8:
		return append(b, byte(i))
	case i <= math.MaxUint8:
		return append(b, 0xcc, byte(i))
	case i <= math.MaxUint16:
		return binary.BigEndian.AppendUint16(append(b, 0xcd), uint16(i))
	case i <= math.MaxUint32:
		return binary.BigEndian.AppendUint32(append(b, 0xce), uint32(i))
	}
	return binary.BigEndian.AppendUint64(append(b, 0xcf), i)
}

func appendBigInt(b []byte, i *big.Int) ([]byte, error) {
	switch {
	case i == nil:
		return appendNil(b), nil
	case i.IsInt64():
		return appendInt(b, i.Int64()), nil
	case i.IsUint64():
		return appendUint(b, i.Uint64()), nil
	}
	return b, newErr(KindOverflow, fmt.Sprintf("integer %s does not fit in 64 bits", i))
}

func appendFloat32(b []byte, f float32) []byte {
	return binary.BigEndian.AppendUint32(append(b, 0xca), math.Float32bits(f))
}

func appendFloat64(b []byte, f float64) []byte {
	return binary.BigEndian.AppendUint64(append(b, 0xcb), math.Float64bits(f))
}

func appendStr(b []byte, s string) ([]byte, error) {
	b, err := appendContainerLen(b, containerStr, len(s))
	if err != nil {
		return b, err
	}
	return append(b, s...), nil
}

func appendBin(b []byte, bs []byte) ([]byte, error) {
	b, err := appendContainerLen(b, containerBin, len(bs))
	if err != nil {
		return b, err
	}
	return append(b, bs...), nil
}

func appendExt(b []byte, typ int8, data []byte) ([]byte, error) {
	l := len(data)
	switch {
	case l == 1:
		b = append(b, 0xd4)
	case l == 2:
		b = append(b, 0xd5)
	case l == 4:
		b = append(b, 0xd6)
	case l == 8:
		b = append(b, 0xd7)
	case l == 16:
		b = append(b, 0xd8)
	case l <= math.MaxUint8:
		b = append(b, 0xc7, byte(l))
	case l <= math.MaxUint16:
		b = binary.BigEndian.AppendUint16(append(b, 0xc8), uint16(l))
	case uint64(l) <= maxContainerLen:
		b = binary.BigEndian.AppendUint32(append(b, 0xc9), uint32(l))
	default:
		return b, newErr(KindUnsupported, fmt.Sprintf("ext payload length %d out of range", l))
	}
	b = append(b, byte(typ))
	return append(b, data...), nil
}

// Marshal is a convenience function which encodes v with a default Packer.
func Marshal(v any) ([]byte, error) {
	p, err := NewPacker(nil)
	if err != nil {
		return nil, err
	}
	return p.Pack(v)
}
