
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

	"go.uber.org/zap"
)

// A BufferUnpacker decodes a stream of msgpack values that arrives in pieces.
//
// Bytes are added with Append and decoded values are taken from the cursor
// onwards. A value that is not yet complete leaves the cursor where it was,
// so the caller can Append the rest and try again:
//
//	u := msgpack.NewBufferUnpacker(nil, nil)
//	for chunk := range chunks {
//		u.Append(chunk)
//		values, err := u.TryUnpack()
//		if err != nil {
//			return err
//		}
//		for _, v := range values {
//			handle(v)
//		}
//	}
//
// A BufferUnpacker is not safe for concurrent use.
type BufferUnpacker struct {
	d      *Decoder
	log    *zap.Logger
	buf    []byte
	cursor int
}

// NewBufferUnpacker returns a BufferUnpacker holding a copy of data and
// decoding with d. A nil d uses a Decoder with default options.
func NewBufferUnpacker(data []byte, d *Decoder) *BufferUnpacker {
	if d == nil {
		d = &Decoder{reg: NewRegistry(), log: Logger()}
	}
	return &BufferUnpacker{
		d:   d,
		log: d.log,
		buf: append([]byte(nil), data...),
	}
}

// Append adds data to the end of the buffer. The cursor does not move.
func (u *BufferUnpacker) Append(data []byte) {
	u.buf = append(u.buf, data...)
}

// Reset replaces the whole buffer with a copy of data and moves the cursor
// to its start.
func (u *BufferUnpacker) Reset(data []byte) {
	u.buf = append(u.buf[:0], data...)
	u.cursor = 0
}

// Offset returns the cursor position.
func (u *BufferUnpacker) Offset() int { return u.cursor }

// Remaining returns the number of bytes after the cursor.
func (u *BufferUnpacker) Remaining() int { return len(u.buf) - u.cursor }

// HasRemaining reports whether any byte follows the cursor.
func (u *BufferUnpacker) HasRemaining() bool { return u.cursor < len(u.buf) }

// Release drops the bytes before the cursor and moves the cursor to 0.
func (u *BufferUnpacker) Release() {
	if u.cursor == 0 {
		return
	}
	dropped := u.cursor
	n := copy(u.buf, u.buf[u.cursor:])
	u.buf = u.buf[:n]
	u.cursor = 0
	if ce := u.log.Check(zap.DebugLevel, "msgpack: compacted buffer"); ce != nil {
		ce.Write(zap.Int("dropped", dropped), zap.Int("retained", n))
	}
}

// Unpack decodes the value at the cursor and moves the cursor past it.
//
// When the buffer ends inside the value the error has KindInsufficientData
// and the cursor is unchanged. The cursor is also unchanged on any other
// error, but such errors mean the stream is corrupt and the BufferUnpacker
// should be Reset or discarded.
func (u *BufferUnpacker) Unpack() (any, error) {
	var v any
	err := u.run(func(s *decodeState) (err error) {
		v, err = s.value()
		return
	})
	return v, err
}

// TryUnpack decodes every complete value after the cursor, in order, then
// compacts the buffer. Running out of bytes ends the loop without an error;
// the incomplete tail stays buffered for the next Append.
//
// Any other error ends the loop and is returned together with the values
// decoded before it. The cursor then sits just after the last of those
// values.
func (u *BufferUnpacker) TryUnpack() ([]any, error) {
	var values []any
	for {
		v, err := u.Unpack()
		if err != nil {
			if isInsufficient(err) {
				if ce := u.log.Check(zap.DebugLevel, "msgpack: waiting for more data"); ce != nil {
					var me *Error
					errors.As(err, &me)
					ce.Write(zap.Int("decoded", len(values)), zap.Int("needed", me.Needed), zap.Int("available", me.Available))
				}
				break
			}
			return values, err
		}
		values = append(values, v)
	}
	u.Release()
	return values, nil
}

// Skip moves the cursor past the next value without building it.
func (u *BufferUnpacker) Skip() error {
	return u.run(func(s *decodeState) error { return s.skip() })
}

// UnpackNil reads a nil.
func (u *BufferUnpacker) UnpackNil() error {
	return u.run(func(s *decodeState) error { return s.readNil() })
}

// UnpackBool reads a bool.
func (u *BufferUnpacker) UnpackBool() (b bool, err error) {
	err = u.run(func(s *decodeState) (err error) {
		b, err = s.readBool()
		return
	})
	return
}

// UnpackInt reads a signed or unsigned integer that fits an int64.
func (u *BufferUnpacker) UnpackInt() (i int64, err error) {
	err = u.run(func(s *decodeState) (err error) {
		i, err = s.readInt()
		return
	})
	return
}

// UnpackUint reads a non-negative integer.
func (u *BufferUnpacker) UnpackUint() (i uint64, err error) {
	err = u.run(func(s *decodeState) (err error) {
		i, err = s.readUint()
		return
	})
	return
}

// UnpackFloat reads a float32, float64 or integer as a float64.
func (u *BufferUnpacker) UnpackFloat() (f float64, err error) {
	err = u.run(func(s *decodeState) (err error) {
		f, err = s.readFloat()
		return
	})
	return
}

// UnpackStr reads a str.
func (u *BufferUnpacker) UnpackStr() (str string, err error) {
	err = u.run(func(s *decodeState) (err error) {
		str, err = s.readStr()
		return
	})
	return
}

// UnpackBin reads a bin.
func (u *BufferUnpacker) UnpackBin() (bs []byte, err error) {
	err = u.run(func(s *decodeState) (err error) {
		bs, err = s.readBin()
		return
	})
	return
}

// UnpackArrayHeader reads only the header of an array and returns its size.
// The elements follow at the cursor.
func (u *BufferUnpacker) UnpackArrayHeader() (n int, err error) {
	err = u.run(func(s *decodeState) (err error) {
		n, err = s.readArrayHeader()
		return
	})
	return
}

// UnpackArray reads a whole array.
func (u *BufferUnpacker) UnpackArray() (items []any, err error) {
	err = u.run(func(s *decodeState) error {
		n, err := s.readArrayHeader()
		if err != nil {
			return err
		}
		v, err := s.arrayBody(n)
		if err != nil {
			return err
		}
		items = v.([]any)
		return nil
	})
	return
}

// UnpackMapHeader reads only the header of a map and returns its number of
// pairs. The keys and values follow at the cursor.
func (u *BufferUnpacker) UnpackMapHeader() (n int, err error) {
	err = u.run(func(s *decodeState) (err error) {
		n, err = s.readMapHeader()
		return
	})
	return
}

// UnpackMap reads a whole map.
func (u *BufferUnpacker) UnpackMap() (m Map, err error) {
	err = u.run(func(s *decodeState) error {
		n, err := s.readMapHeader()
		if err != nil {
			return err
		}
		v, err := s.mapBody(n)
		if err != nil {
			return err
		}
		m = v.(Map)
		return nil
	})
	return
}

// UnpackExt reads an extension value as raw Ext, bypassing registered
// transformers.
func (u *BufferUnpacker) UnpackExt() (x Ext, err error) {
	err = u.run(func(s *decodeState) (err error) {
		x, err = s.readExt()
		return
	})
	return
}

// run applies fn to the bytes after the cursor and advances the cursor only
// if fn succeeds. Errors from fn carry positions relative to the cursor.
func (u *BufferUnpacker) run(fn func(s *decodeState) error) error {
	s := decodeState{d: u.d, buf: u.buf[u.cursor:]}
	if err := fn(&s); err != nil {
		return err
	}
	u.cursor += s.pos
	return nil
}

// isInsufficient reports whether the outermost *Error of err is
// KindInsufficientData.
func isInsufficient(err error) bool {
	var me *Error
	return errors.As(err, &me) && me.Kind == KindInsufficientData
}
