
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
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the codec of a CompressTransformer.
type Compression uint8

const (
	CompressZstd Compression = iota
	CompressLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressZstd:
		return "zstd"
	case CompressLZ4:
		return "lz4"
	}
	return fmt.Sprintf("Compression(%d)", uint8(c))
}

// Compressed marks a value to be packed by a CompressTransformer. Decoding
// the extension yields a Compressed holding the decoded inner value.
type Compressed struct {
	Value any
}

// CompressTransformer packs Compressed values as extensions whose payload is
// the compressed msgpack encoding of the inner value. Decoding decompresses
// the payload and decodes it with the same Decoder, so the inner value may
// itself hold extension values.
//
// Both the encoder and the decoder of a CompressTransformer are safe for
// concurrent use.
type CompressTransformer struct {
	typ   int8
	codec Compression
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// maxDecompressed bounds the decompressed size of a zstd payload.
const maxDecompressed = 1 << 30

// NewCompressTransformer returns a transformer for extension type typ.
// Register it under typ on both sides.
func NewCompressTransformer(typ int8, codec Compression) (*CompressTransformer, error) {
	x := &CompressTransformer{typ: typ, codec: codec}
	switch codec {
	case CompressZstd:
		var err error
		if x.enc, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault)); err != nil {
			return nil, wrapErr(KindInvalidOptions, "zstd encoder", err)
		}
		if x.dec, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecompressed)); err != nil {
			return nil, wrapErr(KindInvalidOptions, "zstd decoder", err)
		}
	case CompressLZ4:
	default:
		return nil, newErr(KindInvalidOptions, "unknown compression "+codec.String())
	}
	return x, nil
}

// PackValue implements CanPack for Compressed and *Compressed.
func (x *CompressTransformer) PackValue(p *Packer, v any) ([]byte, bool, error) {
	var c Compressed
	switch cv := v.(type) {
	case Compressed:
		c = cv
	case *Compressed:
		if cv == nil {
			return p.PackNil(), true, nil
		}
		c = *cv
	default:
		return nil, false, nil
	}
	raw, err := p.Pack(c.Value)
	if err != nil {
		return nil, false, err
	}
	payload, err := x.compress(raw)
	if err != nil {
		return nil, false, err
	}
	bs, err := p.PackExt(x.typ, payload)
	return bs, err == nil, err
}

// UnpackExt implements CanUnpackExt.
func (x *CompressTransformer) UnpackExt(d *Decoder, typ int8, payload []byte) (any, error) {
	raw, err := x.decompress(payload)
	if err != nil {
		return nil, wrapErr(KindMalformed, fmt.Sprintf("ext type %d: %s payload", typ, x.codec), err)
	}
	v, err := d.Unmarshal(raw)
	if err != nil {
		return nil, err
	}
	return Compressed{Value: v}, nil
}

func (x *CompressTransformer) compress(raw []byte) ([]byte, error) {
	if x.codec == CompressZstd {
		return x.enc.EncodeAll(raw, nil), nil
	}
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, wrapErr(KindUnsupported, "lz4 compress", err)
	}
	if err := w.Close(); err != nil {
		return nil, wrapErr(KindUnsupported, "lz4 compress", err)
	}
	return buf.Bytes(), nil
}

func (x *CompressTransformer) decompress(payload []byte) ([]byte, error) {
	if x.codec == CompressZstd {
		return x.dec.DecodeAll(payload, nil)
	}
	return io.ReadAll(io.LimitReader(lz4.NewReader(bytes.NewReader(payload)), maxDecompressed))
}
