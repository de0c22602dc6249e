
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
	"strconv"
	"strings"
)

// Kind categorizes an Error.
type Kind string

const (
	KindInsufficientData Kind = "insufficient_data" // more bytes are needed; append and retry
	KindMalformed        Kind = "malformed"         // input can never decode, whatever follows
	KindOverflow         Kind = "overflow"          // integer does not fit the requested representation
	KindUnsupported      Kind = "unsupported"       // no basic kind or transformer for a value
	KindInvalidOptions   Kind = "invalid_options"   // conflicting construction flags
	KindDuplicate        Kind = "duplicate"         // extension code already registered
	KindUnexpectedCode   Kind = "unexpected_code"   // typed read found another kind
)

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrInsufficientData = &Error{Kind: KindInsufficientData}
	ErrMalformed        = &Error{Kind: KindMalformed}
	ErrOverflow         = &Error{Kind: KindOverflow}
	ErrUnsupported      = &Error{Kind: KindUnsupported}
	ErrInvalidOptions   = &Error{Kind: KindInvalidOptions}
	ErrDuplicate        = &Error{Kind: KindDuplicate}
	ErrUnexpectedCode   = &Error{Kind: KindUnexpectedCode}
)

// Error is the structured error returned by every operation of this package.
//
// For KindInsufficientData, Needed is the number of bytes, counted from the
// start of the value being decoded, that are known to be required, and
// Available is the number of bytes present from that same start.
type Error struct {
	Cause     error
	Kind      Kind
	Detail    string
	Needed    int
	Available int
	Offset    int
	Code      byte
	hasCode   bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString("msgpack: ")
	b.WriteString(string(e.Kind))

	switch e.Kind {
	case KindInsufficientData:
		b.WriteString(": need ")
		b.WriteString(strconv.Itoa(e.Needed))
		b.WriteString(" bytes, have ")
		b.WriteString(strconv.Itoa(e.Available))
	default:
		if e.hasCode {
			b.WriteString(" at offset ")
			b.WriteString(strconv.Itoa(e.Offset))
			b.WriteString(": code 0x")
			b.WriteString(strconv.FormatUint(uint64(e.Code), 16))
		}
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

func insufficient(needed, available int) *Error {
	return &Error{Kind: KindInsufficientData, Needed: needed, Available: available}
}

func errAtCode(kind Kind, offset int, code byte, detail string) *Error {
	return &Error{Kind: kind, Offset: offset, Code: code, hasCode: true, Detail: detail}
}

func newErr(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func wrapErr(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Cause: cause}
}
