
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
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"

	"go.uber.org/zap"
)

// A Decoder decodes msgpack values from byte slices.
//
// A Decoder never retains or modifies the input and holds only its flags and
// a snapshot of the extension registry, so once built it is safe for
// concurrent use.
//
// Decoded values use these Go types: nil, bool, int64, float32, float64,
// string, []byte, []any, Map and Ext. Unsigned values above math.MaxInt64
// follow the BigInt flags. Extension values whose type has a registered
// CanUnpackExt transformer decode to whatever the transformer returns.
type Decoder struct {
	flags UnpackFlag
	reg   *Registry
	log   *zap.Logger
}

// NewDecoder returns a Decoder configured by o. A nil o gives the defaults.
// Conflicting flags are rejected here with KindInvalidOptions.
func NewDecoder(o *DecoderOptions) (*Decoder, error) {
	if o == nil {
		o = &DecoderOptions{}
	}
	if err := o.Flags.validate(); err != nil {
		return nil, err
	}
	return &Decoder{
		flags: o.Flags,
		reg:   o.Registry.Clone(),
		log:   loggerOr(o.Logger),
	}, nil
}

// Decode decodes the value at the start of data and returns it together with
// the number of bytes it spans.
//
// If data ends before the value does, the error has KindInsufficientData and
// reports how many bytes the value is known to need; appending more bytes and
// calling Decode again on the longer slice may succeed. Any other error is
// final for this input.
func (d *Decoder) Decode(data []byte) (v any, n int, err error) {
	s := decodeState{d: d, buf: data}
	if v, err = s.value(); err != nil {
		return nil, 0, err
	}
	return v, s.pos, nil
}

// Unmarshal decodes data, which must hold exactly one value.
func (d *Decoder) Unmarshal(data []byte) (any, error) {
	v, n, err := d.Decode(data)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, &Error{Kind: KindMalformed, Offset: n, Detail: fmt.Sprintf("%d trailing bytes", len(data)-n)}
	}
	return v, nil
}

// Unmarshal is a convenience function which decodes data with a default
// Decoder. data must hold exactly one value.
func Unmarshal(data []byte) (any, error) {
	d, err := NewDecoder(nil)
	if err != nil {
		return nil, err
	}
	return d.Unmarshal(data)
}

// decodeState is the working position of one top-level decode. Errors carry
// positions relative to the start of buf.
type decodeState struct {
	d   *Decoder
	buf []byte
	pos int
}

func (s *decodeState) need(n int) error {
	if n < 0 || n > len(s.buf)-s.pos {
		return insufficient(s.pos+n, len(s.buf))
	}
	return nil
}

func (s *decodeState) readb(n int) ([]byte, error) {
	if err := s.need(n); err != nil {
		return nil, err
	}
	bs := s.buf[s.pos : s.pos+n]
	s.pos += n
	return bs, nil
}

func (s *decodeState) readUint8() (uint8, error) {
	if err := s.need(1); err != nil {
		return 0, err
	}
	s.pos++
	return s.buf[s.pos-1], nil
}

func (s *decodeState) readUint16() (uint16, error) {
	bs, err := s.readb(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(bs), nil
}

func (s *decodeState) readUint32() (uint32, error) {
	bs, err := s.readb(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(bs), nil
}

func (s *decodeState) readUint64() (uint64, error) {
	bs, err := s.readb(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(bs), nil
}

// readLen reads a length prefix of 1, 2 or 4 bytes.
func (s *decodeState) readLen(width int) (int, error) {
	switch width {
	case 1:
		n, err := s.readUint8()
		return int(n), err
	case 2:
		n, err := s.readUint16()
		return int(n), err
	}
	n, err := s.readUint32()
	if uint64(n) > math.MaxInt {
		return 0, insufficient(math.MaxInt, len(s.buf))
	}
	return int(n), err
}

// value decodes one value of any kind.
func (s *decodeState) value() (any, error) {
	start := s.pos
	bd, err := s.readUint8()
	if err != nil {
		return nil, err
	}

	switch {
	case bd <= 0x7f:
		return int64(bd), nil
	case bd >= 0xe0:
		return int64(int8(bd)), nil
	case bd <= 0x8f:
		return s.mapBody(int(bd & 0x0f))
	case bd <= 0x9f:
		return s.arrayBody(int(bd & 0x0f))
	case bd <= 0xbf:
		return s.strBody(int(bd & 0x1f))
	}

	switch bd {
	case 0xc0:
		return nil, nil
	case 0xc2:
		return false, nil
	case 0xc3:
		return true, nil

	case 0xc4, 0xc5, 0xc6:
		l, err := s.readLen(1 << (bd - 0xc4))
		if err != nil {
			return nil, err
		}
		return s.binBody(l)
	case 0xc7, 0xc8, 0xc9:
		l, err := s.readLen(1 << (bd - 0xc7))
		if err != nil {
			return nil, err
		}
		return s.extBody(start, l)

	case 0xca:
		u, err := s.readUint32()
		if err != nil {
			return nil, err
		}
		return math.Float32frombits(u), nil
	case 0xcb:
		u, err := s.readUint64()
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(u), nil

	case 0xcc, 0xcd, 0xce, 0xcf:
		u, err := s.uintBody(bd)
		if err != nil {
			return nil, err
		}
		return s.bigUint(start, u)
	case 0xd0, 0xd1, 0xd2, 0xd3:
		return s.intBody(bd)

	case 0xd4, 0xd5, 0xd6, 0xd7, 0xd8:
		return s.extBody(start, 1<<(bd-0xd4))

	case 0xd9, 0xda, 0xdb:
		l, err := s.readLen(1 << (bd - 0xd9))
		if err != nil {
			return nil, err
		}
		return s.strBody(l)
	case 0xdc, 0xdd:
		l, err := s.readLen(2 << (bd - 0xdc))
		if err != nil {
			return nil, err
		}
		return s.arrayBody(l)
	case 0xde, 0xdf:
		l, err := s.readLen(2 << (bd - 0xde))
		if err != nil {
			return nil, err
		}
		return s.mapBody(l)
	}

	return nil, errAtCode(KindMalformed, start, bd, msgBadDesc)
}

const msgBadDesc = "unrecognized descriptor byte"

func (s *decodeState) uintBody(bd byte) (uint64, error) {
	switch bd {
	case 0xcc:
		u, err := s.readUint8()
		return uint64(u), err
	case 0xcd:
		u, err := s.readUint16()
		return uint64(u), err
	case 0xce:
		u, err := s.readUint32()
		return uint64(u), err
	}
	return s.readUint64()
}

func (s *decodeState) intBody(bd byte) (int64, error) {
	switch bd {
	case 0xd0:
		u, err := s.readUint8()
		return int64(int8(u)), err
	case 0xd1:
		u, err := s.readUint16()
		return int64(int16(u)), err
	case 0xd2:
		u, err := s.readUint32()
		return int64(int32(u)), err
	}
	u, err := s.readUint64()
	return int64(u), err
}

// bigUint applies the BigInt flags to an unsigned value.
func (s *decodeState) bigUint(start int, u uint64) (any, error) {
	if u <= math.MaxInt64 {
		return int64(u), nil
	}
	switch {
	case s.d.flags&BigIntAsError != 0:
		return nil, &Error{Kind: KindOverflow, Offset: start, Code: 0xcf, hasCode: true,
			Detail: fmt.Sprintf("%d exceeds the signed 64-bit range", u)}
	case s.d.flags&BigIntAsBig != 0:
		return new(big.Int).SetUint64(u), nil
	case s.d.flags&BigIntAsUint64 != 0:
		return u, nil
	}
	return strconv.FormatUint(u, 10), nil
}

func (s *decodeState) strBody(l int) (any, error) {
	bs, err := s.readb(l)
	if err != nil {
		return nil, err
	}
	return string(bs), nil
}

func (s *decodeState) binBody(l int) (any, error) {
	bs, err := s.readb(l)
	if err != nil {
		return nil, err
	}
	return append([]byte{}, bs...), nil
}

// capHint bounds preallocation by the bytes left, as every element takes at
// least one byte.
func (s *decodeState) capHint(n, perElem int) int {
	if rem := (len(s.buf) - s.pos) / perElem; n > rem {
		return rem
	}
	return n
}

func (s *decodeState) arrayBody(n int) (any, error) {
	items := make([]any, 0, s.capHint(n, 1))
	for j := 0; j < n; j++ {
		v, err := s.value()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

func (s *decodeState) mapBody(n int) (any, error) {
	m := make(Map, 0, s.capHint(n, 2))
	for j := 0; j < n; j++ {
		k, err := s.value()
		if err != nil {
			return nil, err
		}
		v, err := s.value()
		if err != nil {
			return nil, err
		}
		m = append(m, MapEntry{Key: k, Value: v})
	}
	return m, nil
}

func (s *decodeState) extBody(start, l int) (any, error) {
	typ, payload, err := s.extPayload(l)
	if err != nil {
		return nil, err
	}
	u, ok := s.d.reg.Unpacker(typ)
	if !ok {
		return Ext{Type: typ, Data: payload}, nil
	}
	v, err := u.UnpackExt(s.d, typ, payload)
	if err != nil {
		// The payload is complete, so a short read inside it can never be
		// fixed by more input.
		var me *Error
		if errors.As(err, &me) && me.Kind == KindInsufficientData {
			return nil, errAtCode(KindMalformed, start, s.buf[start], fmt.Sprintf("ext type %d: truncated payload: %s", typ, me.Error()))
		}
		return nil, &Error{Kind: KindMalformed, Offset: start, Code: s.buf[start], hasCode: true,
			Detail: fmt.Sprintf("ext type %d: transformer %T failed", typ, u), Cause: err}
	}
	return v, nil
}

func (s *decodeState) extPayload(l int) (int8, []byte, error) {
	t, err := s.readUint8()
	if err != nil {
		return 0, nil, err
	}
	bs, err := s.readb(l)
	if err != nil {
		return 0, nil, err
	}
	return int8(t), append([]byte{}, bs...), nil
}

// Typed reads. Each fails with KindUnexpectedCode when the value at the
// current position is of another kind.

func (s *decodeState) unexpected(start int, bd byte, want string) error {
	return errAtCode(KindUnexpectedCode, start, bd, "expected "+want)
}

func (s *decodeState) readNil() error {
	start := s.pos
	bd, err := s.readUint8()
	if err != nil {
		return err
	}
	if bd != 0xc0 {
		return s.unexpected(start, bd, "nil")
	}
	return nil
}

func (s *decodeState) readBool() (bool, error) {
	start := s.pos
	bd, err := s.readUint8()
	if err != nil {
		return false, err
	}
	switch bd {
	case 0xc2:
		return false, nil
	case 0xc3:
		return true, nil
	}
	return false, s.unexpected(start, bd, "bool")
}

// readInt can be decoded from msgpack type: intXXX or uintXXX
func (s *decodeState) readInt() (int64, error) {
	start := s.pos
	bd, err := s.readUint8()
	if err != nil {
		return 0, err
	}
	switch {
	case bd <= 0x7f, bd >= 0xe0:
		return int64(int8(bd)), nil
	case bd >= 0xd0 && bd <= 0xd3:
		return s.intBody(bd)
	case bd >= 0xcc && bd <= 0xcf:
		u, err := s.uintBody(bd)
		if err != nil {
			return 0, err
		}
		if u > math.MaxInt64 {
			return 0, &Error{Kind: KindOverflow, Offset: start, Code: bd, hasCode: true,
				Detail: fmt.Sprintf("%d exceeds the signed 64-bit range", u)}
		}
		return int64(u), nil
	}
	return 0, s.unexpected(start, bd, "integer")
}

// readUint can be decoded from msgpack type: intXXX or uintXXX
func (s *decodeState) readUint() (uint64, error) {
	start := s.pos
	bd, err := s.readUint8()
	if err != nil {
		return 0, err
	}
	var i int64
	switch {
	case bd <= 0x7f:
		return uint64(bd), nil
	case bd >= 0xcc && bd <= 0xcf:
		return s.uintBody(bd)
	case bd >= 0xe0:
		i = int64(int8(bd))
	case bd >= 0xd0 && bd <= 0xd3:
		if i, err = s.intBody(bd); err != nil {
			return 0, err
		}
	default:
		return 0, s.unexpected(start, bd, "integer")
	}
	if i < 0 {
		return 0, &Error{Kind: KindOverflow, Offset: start, Code: bd, hasCode: true,
			Detail: fmt.Sprintf("negative value %d for unsigned read", i)}
	}
	return uint64(i), nil
}

// readFloat can either be decoded from msgpack type: float, double or intX
func (s *decodeState) readFloat() (float64, error) {
	start := s.pos
	bd, err := s.readUint8()
	if err != nil {
		return 0, err
	}
	switch {
	case bd == 0xca:
		u, err := s.readUint32()
		return float64(math.Float32frombits(u)), err
	case bd == 0xcb:
		u, err := s.readUint64()
		return math.Float64frombits(u), err
	case bd <= 0x7f, bd >= 0xe0, bd >= 0xcc && bd <= 0xd3:
		s.pos = start
		i, err := s.readInt()
		return float64(i), err
	}
	return 0, s.unexpected(start, bd, "float")
}

func (s *decodeState) readStr() (string, error) {
	start := s.pos
	bd, err := s.readUint8()
	if err != nil {
		return "", err
	}
	var l int
	switch {
	case bd >= 0xa0 && bd <= 0xbf:
		l = int(bd & 0x1f)
	case bd >= 0xd9 && bd <= 0xdb:
		if l, err = s.readLen(1 << (bd - 0xd9)); err != nil {
			return "", err
		}
	default:
		return "", s.unexpected(start, bd, "str")
	}
	bs, err := s.readb(l)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

func (s *decodeState) readBin() ([]byte, error) {
	start := s.pos
	bd, err := s.readUint8()
	if err != nil {
		return nil, err
	}
	if bd < 0xc4 || bd > 0xc6 {
		return nil, s.unexpected(start, bd, "bin")
	}
	l, err := s.readLen(1 << (bd - 0xc4))
	if err != nil {
		return nil, err
	}
	bs, err := s.readb(l)
	if err != nil {
		return nil, err
	}
	return append([]byte{}, bs...), nil
}

func (s *decodeState) readArrayHeader() (int, error) {
	start := s.pos
	bd, err := s.readUint8()
	if err != nil {
		return 0, err
	}
	switch {
	case bd >= 0x90 && bd <= 0x9f:
		return int(bd & 0x0f), nil
	case bd == 0xdc, bd == 0xdd:
		return s.readLen(2 << (bd - 0xdc))
	}
	return 0, s.unexpected(start, bd, "array")
}

func (s *decodeState) readMapHeader() (int, error) {
	start := s.pos
	bd, err := s.readUint8()
	if err != nil {
		return 0, err
	}
	switch {
	case bd >= 0x80 && bd <= 0x8f:
		return int(bd & 0x0f), nil
	case bd == 0xde, bd == 0xdf:
		return s.readLen(2 << (bd - 0xde))
	}
	return 0, s.unexpected(start, bd, "map")
}

// readExt reads an extension value without consulting the registry.
func (s *decodeState) readExt() (Ext, error) {
	start := s.pos
	bd, err := s.readUint8()
	if err != nil {
		return Ext{}, err
	}
	var l int
	switch {
	case bd >= 0xd4 && bd <= 0xd8:
		l = 1 << (bd - 0xd4)
	case bd >= 0xc7 && bd <= 0xc9:
		if l, err = s.readLen(1 << (bd - 0xc7)); err != nil {
			return Ext{}, err
		}
	default:
		return Ext{}, s.unexpected(start, bd, "ext")
	}
	typ, payload, err := s.extPayload(l)
	if err != nil {
		return Ext{}, err
	}
	return Ext{Type: typ, Data: payload}, nil
}

// skip moves past one value without building it.
func (s *decodeState) skip() error {
	start := s.pos
	bd, err := s.readUint8()
	if err != nil {
		return err
	}

	var l, children int
	switch {
	case bd <= 0x7f, bd >= 0xe0, bd == 0xc0, bd == 0xc2, bd == 0xc3:
		return nil
	case bd <= 0x8f:
		children = 2 * int(bd&0x0f)
	case bd <= 0x9f:
		children = int(bd & 0x0f)
	case bd <= 0xbf:
		l = int(bd & 0x1f)
	case bd == 0xc4, bd == 0xc5, bd == 0xc6:
		l, err = s.readLen(1 << (bd - 0xc4))
	case bd == 0xc7, bd == 0xc8, bd == 0xc9:
		if l, err = s.readLen(1 << (bd - 0xc7)); err == nil {
			l++
		}
	case bd == 0xca:
		l = 4
	case bd == 0xcb:
		l = 8
	case bd >= 0xcc && bd <= 0xcf:
		l = 1 << (bd - 0xcc)
	case bd >= 0xd0 && bd <= 0xd3:
		l = 1 << (bd - 0xd0)
	case bd >= 0xd4 && bd <= 0xd8:
		l = 1 + 1<<(bd-0xd4)
	case bd == 0xd9, bd == 0xda, bd == 0xdb:
		l, err = s.readLen(1 << (bd - 0xd9))
	case bd == 0xdc, bd == 0xdd:
		children, err = s.readLen(2 << (bd - 0xdc))
	case bd == 0xde, bd == 0xdf:
		if children, err = s.readLen(2 << (bd - 0xde)); err == nil {
			children *= 2
		}
	default:
		return errAtCode(KindMalformed, start, bd, msgBadDesc)
	}
	if err != nil {
		return err
	}
	if _, err = s.readb(l); err != nil {
		return err
	}
	for j := 0; j < children; j++ {
		if err = s.skip(); err != nil {
			return err
		}
	}
	return nil
}
