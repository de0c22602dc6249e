
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
	"time"
)

// TimestampType is the extension type reserved by the msgpack format for
// timestamps.
const TimestampType int8 = -1

// TimestampTransformer packs time.Time values as timestamp extensions and
// decodes them back as UTC time.Time values. Register it under
// TimestampType on both sides:
//
//	opts.AddExt(msgpack.TimestampType, msgpack.TimestampTransformer{})
//
// The smallest of the three timestamp layouts is chosen: 32-bit seconds when
// there are no nanoseconds and the seconds fit, 34-bit seconds with 30-bit
// nanoseconds, or signed 64-bit seconds with 32-bit nanoseconds.
type TimestampTransformer struct{}

// PackValue implements CanPack for time.Time and *time.Time.
func (TimestampTransformer) PackValue(p *Packer, v any) ([]byte, bool, error) {
	var t time.Time
	switch tv := v.(type) {
	case time.Time:
		t = tv
	case *time.Time:
		if tv == nil {
			return p.PackNil(), true, nil
		}
		t = *tv
	default:
		return nil, false, nil
	}
	bs, err := p.PackExt(TimestampType, encodeTimestamp(t))
	return bs, err == nil, err
}

// UnpackExt implements CanUnpackExt.
func (TimestampTransformer) UnpackExt(_ *Decoder, _ int8, payload []byte) (any, error) {
	return decodeTimestamp(payload)
}

func encodeTimestamp(t time.Time) []byte {
	sec, nsec := t.Unix(), uint64(t.Nanosecond())
	if uint64(sec)>>34 == 0 {
		data64 := nsec<<34 | uint64(sec)
		if data64&0xffffffff00000000 == 0 {
			return binary.BigEndian.AppendUint32(nil, uint32(data64))
		}
		return binary.BigEndian.AppendUint64(nil, data64)
	}
	bs := binary.BigEndian.AppendUint32(make([]byte, 0, 12), uint32(nsec))
	return binary.BigEndian.AppendUint64(bs, uint64(sec))
}

func decodeTimestamp(bs []byte) (time.Time, error) {
	var sec int64
	var nsec uint32
	switch len(bs) {
	case 4:
		sec = int64(binary.BigEndian.Uint32(bs))
	case 8:
		data64 := binary.BigEndian.Uint64(bs)
		nsec = uint32(data64 >> 34)
		sec = int64(data64 & 0x00000003ffffffff)
	case 12:
		nsec = binary.BigEndian.Uint32(bs)
		sec = int64(binary.BigEndian.Uint64(bs[4:]))
	default:
		return time.Time{}, newErr(KindMalformed, fmt.Sprintf("timestamp payload of %d bytes", len(bs)))
	}
	if nsec > 999999999 {
		return time.Time{}, newErr(KindMalformed, fmt.Sprintf("timestamp nanoseconds %d out of range", nsec))
	}
	return time.Unix(sec, int64(nsec)).UTC(), nil
}
