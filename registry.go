
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

	"go.uber.org/zap"
)

// CanPack is implemented by transformers that encode application values the
// Packer does not know.
//
// PackValue returns ok=false to decline v, in which case the Packer tries the
// next transformer. The returned bytes must be one complete msgpack value;
// most transformers build them with p.PackExt.
type CanPack interface {
	PackValue(p *Packer, v any) (data []byte, ok bool, err error)
}

// CanUnpackExt is implemented by transformers that interpret the payload of
// the extension type they are registered under. d may be used to decode
// msgpack values nested inside payload.
type CanUnpackExt interface {
	UnpackExt(d *Decoder, typ int8, payload []byte) (any, error)
}

type registryEntry struct {
	t    any
	code int8
}

// Registry maps extension type codes to transformers.
//
// Registering a code that is already present replaces the transformer in
// place: the newest registration wins, and the code keeps the position of its
// first registration in the order pack transformers are tried.
//
// Replacements are logged at debug level to the logger of the options whose
// AddExt made them, or to the package logger.
//
// A Registry is not safe for concurrent mutation. Packers and Decoders take a
// copy at construction.
type Registry struct {
	entries []registryEntry
	index   map[int8]int
	log     *zap.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[int8]int, 4)}
}

// Register stores t under code, replacing any previous transformer.
// t must implement CanPack, CanUnpackExt, or both.
func (r *Registry) Register(code int8, t any) error {
	if err := checkTransformer(t); err != nil {
		return err
	}
	if i, ok := r.index[code]; ok {
		loggerOr(r.log).Debug("msgpack: replacing extension transformer",
			zap.Int8("code", code),
			zap.String("old", fmt.Sprintf("%T", r.entries[i].t)),
			zap.String("new", fmt.Sprintf("%T", t)))
		r.entries[i].t = t
		return nil
	}
	r.add(code, t)
	return nil
}

// RegisterUnique is Register that refuses to replace: it fails with
// KindDuplicate when code is already registered.
func (r *Registry) RegisterUnique(code int8, t any) error {
	if err := checkTransformer(t); err != nil {
		return err
	}
	if _, ok := r.index[code]; ok {
		return newErr(KindDuplicate, fmt.Sprintf("extension type %d already registered", code))
	}
	r.add(code, t)
	return nil
}

// Lookup returns the transformer registered under code.
func (r *Registry) Lookup(code int8) (t any, ok bool) {
	if r == nil {
		return
	}
	i, ok := r.index[code]
	if !ok {
		return nil, false
	}
	return r.entries[i].t, true
}

// Unpacker returns the unpack capability registered under code, if any.
func (r *Registry) Unpacker(code int8) (u CanUnpackExt, ok bool) {
	t, found := r.Lookup(code)
	if !found {
		return
	}
	u, ok = t.(CanUnpackExt)
	return
}

// Len returns the number of registered codes.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	c := NewRegistry()
	if r == nil {
		return c
	}
	c.log = r.log
	c.entries = make([]registryEntry, len(r.entries))
	copy(c.entries, r.entries)
	for k, v := range r.index {
		c.index[k] = v
	}
	return c
}

// packers returns the pack-capable transformers in registration order.
func (r *Registry) packers() (ps []CanPack) {
	for _, e := range r.entries {
		if p, ok := e.t.(CanPack); ok {
			ps = append(ps, p)
		}
	}
	return
}

func (r *Registry) add(code int8, t any) {
	if r.index == nil {
		r.index = make(map[int8]int, 4)
	}
	r.index[code] = len(r.entries)
	r.entries = append(r.entries, registryEntry{t: t, code: code})
}

func checkTransformer(t any) error {
	switch t.(type) {
	case CanPack, CanUnpackExt:
		return nil
	}
	return newErr(KindUnsupported, fmt.Sprintf("%T implements neither CanPack nor CanUnpackExt", t))
}
