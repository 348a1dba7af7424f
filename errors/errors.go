// Copyright 2026 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"errors"
	"fmt"
)

// Code identifies the kind of structural failure.
type Code int

const (
	// OK is returned by ErrorCode for a nil error.
	OK Code = iota
	// Unknown is returned by ErrorCode for errors not created by this package.
	Unknown
	// MalformedEncoding means a length prefix or discriminant is inconsistent
	// with the buffer being decoded.
	MalformedEncoding
	// UnsupportedVersion means a protocol version other than v1.
	UnsupportedVersion
	// InvalidFrontier means the left nodes given to a compact tree do not match
	// the shape of a tree of the claimed size.
	InvalidFrontier
	// ProofSizeMismatch means a proof has the wrong number of elements for the
	// claimed tree sizes.
	ProofSizeMismatch
	// IndexOutOfRange means a leaf index outside of the tree.
	IndexOutOfRange
	// InconsistentOrdering means tree sizes or timestamps going backwards.
	InconsistentOrdering
	// UnknownKeyType means a signature check without a usable public key.
	UnknownKeyType
	// MissingInput means a required input (root hash, proof, signature) is absent.
	MissingInput
)

var codeNames = map[Code]string{
	OK:                   "OK",
	Unknown:              "Unknown",
	MalformedEncoding:    "MalformedEncoding",
	UnsupportedVersion:   "UnsupportedVersion",
	InvalidFrontier:      "InvalidFrontier",
	ProofSizeMismatch:    "ProofSizeMismatch",
	IndexOutOfRange:      "IndexOutOfRange",
	InconsistentOrdering: "InconsistentOrdering",
	UnknownKeyType:       "UnknownKeyType",
	MissingInput:         "MissingInput",
}

func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// CTError is an error with a Code.
type CTError interface {
	error
	Code() Code
}

type ctError struct {
	code Code
	msg  string
}

func (e *ctError) Error() string {
	return e.msg
}

func (e *ctError) Code() Code {
	return e.code
}

// Errorf creates a CTError from the specified code and message, formatting
// the message according to fmt.Sprintf.
func Errorf(code Code, format string, a ...interface{}) error {
	return &ctError{code: code, msg: fmt.Sprintf(format, a...)}
}

// New creates a CTError from the specified code and message.
func New(code Code, msg string) error {
	return &ctError{code: code, msg: msg}
}

// ErrorCode returns the code of the first CTError in err's chain. It returns
// OK for a nil error and Unknown for errors that carry no code.
func ErrorCode(err error) Code {
	if err == nil {
		return OK
	}
	var cerr CTError
	if errors.As(err, &cerr) {
		return cerr.Code()
	}
	return Unknown
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return ErrorCode(err) == code
}
