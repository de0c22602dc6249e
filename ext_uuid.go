
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
	"fmt"

	"github.com/google/uuid"
)

// UUIDTransformer packs uuid.UUID values as 16-byte extensions of type Type.
// Register it under the same code on both sides.
type UUIDTransformer struct {
	Type int8
}

// PackValue implements CanPack for uuid.UUID and *uuid.UUID.
func (x UUIDTransformer) PackValue(p *Packer, v any) ([]byte, bool, error) {
	var id uuid.UUID
	switch uv := v.(type) {
	case uuid.UUID:
		id = uv
	case *uuid.UUID:
		if uv == nil {
			return p.PackNil(), true, nil
		}
		id = *uv
	default:
		return nil, false, nil
	}
	bs, err := p.PackExt(x.Type, id[:])
	return bs, err == nil, err
}

// UnpackExt implements CanUnpackExt.
func (x UUIDTransformer) UnpackExt(_ *Decoder, typ int8, payload []byte) (any, error) {
	id, err := uuid.FromBytes(payload)
	if err != nil {
		return nil, wrapErr(KindMalformed, fmt.Sprintf("ext type %d: invalid uuid payload", typ), err)
	}
	return id, nil
}
