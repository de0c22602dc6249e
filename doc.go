/*
MsgPack codec for Go.

Implements the msgpack wire format:
  https://github.com/msgpack/msgpack/blob/master/spec.md

It converts in-memory values to msgpack bytes and back, choosing the
smallest valid encoding for every value so output is byte-exact with other
conforming implementations.

Features

  - Packer: encode any basic Go value (nil, bool, integers, floats,
    string, []byte, slices, arrays, maps, pointers) plus the explicit
    Str, Bin, Array, Map and Ext types.
  - Per-kind entry points (PackInt, PackStr, PackMapHeader, ...) that
    bypass kind detection.
  - Decoder: decode one value from a byte slice into plain Go values.
  - BufferUnpacker: feed bytes as they arrive and take complete values
    out; a partial value never moves the cursor.
  - Extension support: per-instance registries of transformers keyed by
    extension type code. Timestamp, UUID and compressed-value transformers
    are provided.
  - Options to configure how strings, collections, floats and big unsigned
    integers are handled. Conflicting options are rejected at construction.

The codec does no I/O. Callers own their read loop and hand bytes over.

Usage

  // create and configure options
  popts := msgpack.NewPackerOptions(msgpack.ForceFloat32)
  popts.AddExt(msgpack.TimestampType, msgpack.TimestampTransformer{})

  dopts := msgpack.NewDecoderOptions(msgpack.BigIntAsBig)
  dopts.AddExt(msgpack.TimestampType, msgpack.TimestampTransformer{})

  p, err := msgpack.NewPacker(popts)
  d, err := msgpack.NewDecoder(dopts)

  data, err := p.Pack(map[string]any{"at": time.Now(), "n": 1})
  v, err := d.Unmarshal(data)

  // streaming
  u := msgpack.NewBufferUnpacker(nil, d)
  u.Append(chunk)
  values, err := u.TryUnpack()

Extension Support

A transformer implements CanPack, CanUnpackExt, or both, and is registered
under an extension type code:

  type Point struct{ X, Y int }

  type pointExt struct{}

  func (pointExt) PackValue(p *msgpack.Packer, v any) ([]byte, bool, error) {
      pt, ok := v.(Point)
      if !ok {
          return nil, false, nil
      }
      inner, err := p.PackArray([]any{pt.X, pt.Y})
      if err != nil {
          return nil, false, err
      }
      bs, err := p.PackExt(7, inner)
      return bs, err == nil, err
  }

  func (pointExt) UnpackExt(d *msgpack.Decoder, typ int8, payload []byte) (any, error) {
      v, err := d.Unmarshal(payload)
      ...
  }

Registering a code twice replaces the earlier transformer. Use
Registry.RegisterUnique to refuse instead.

*/
package msgpack

/*

CODE ORGANIZATION

Code here is organized as follows:
Exported methods are facades over unexported append and read functions.
  Pack calls encode
  encode calls the appendXXX functions, encodeValue for reflected kinds,
    and the registered transformers for anything else.

Decoding works on a decodeState: a byte slice and a position. Every read
checks the bytes it needs first and reports KindInsufficientData without
touching anything outside the state, so a failed attempt is dropped by
simply discarding the state. BufferUnpacker commits the position to its
cursor only after a read succeeded.

HANDLING ERRORS

All errors are *Error values with a Kind. Errors returned by transformers
are kept as the Cause.

*/


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
