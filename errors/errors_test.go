// Copyright 2017 Google Inc. All Rights Reserved.
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
	"testing"
)

func TestErrorf(t *testing.T) {
	tests := []struct {
		code    Code
		msg     string
		param   string
		wantMsg string
	}{
		// No need to test all values, just a couple is enough.
		{code: MalformedEncoding, msg: "MalformedEncoding: %v", param: "foo", wantMsg: "MalformedEncoding: foo"},
		{code: ProofSizeMismatch, msg: "ProofSizeMismatch: %v", param: "bar", wantMsg: "ProofSizeMismatch: bar"},
	}
	for _, test := range tests {
		err := Errorf(test.code, test.msg, test.param)
		assertError(t, err, test.code, test.wantMsg)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		code Code
		msg  string
	}{
		{code: InvalidFrontier, msg: "err InvalidFrontier"},
		{code: UnknownKeyType, msg: "err UnknownKeyType"},
	}
	for _, test := range tests {
		err := New(test.code, test.msg)
		assertError(t, err, test.code, test.msg)
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		desc string
		err  error
		want Code
	}{
		{desc: "nil", err: nil, want: OK},
		{desc: "foreign", err: errors.New("boom"), want: Unknown},
		{desc: "direct", err: New(IndexOutOfRange, "x"), want: IndexOutOfRange},
		{desc: "wrapped", err: fmt.Errorf("outer: %w", New(InconsistentOrdering, "x")), want: InconsistentOrdering},
		{desc: "double wrapped", err: fmt.Errorf("a: %w", fmt.Errorf("b: %w", New(MissingInput, "x"))), want: MissingInput},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			if got := ErrorCode(test.err); got != test.want {
				t.Errorf("ErrorCode()=%v, want %v", got, test.want)
			}
			if !Is(test.err, test.want) {
				t.Errorf("Is(%v)=false, want true", test.want)
			}
		})
	}
}

func TestCodeString(t *testing.T) {
	if got, want := UnsupportedVersion.String(), "UnsupportedVersion"; got != want {
		t.Errorf("String()=%q, want %q", got, want)
	}
	if got, want := Code(99).String(), "Code(99)"; got != want {
		t.Errorf("String()=%q, want %q", got, want)
	}
}

func assertError(t *testing.T, err error, wantCode Code, wantMsg string) {
	t.Helper()
	if got := err.Error(); got != wantMsg {
		t.Errorf("Error() = %v, want = %v", got, wantMsg)
	}
	terr, ok := err.(CTError)
	if !ok {
		t.Errorf("err is not a CTError: %T", err)
		return
	}
	if got := terr.Code(); got != wantCode {
		t.Errorf("Code() = %v, want = %v", got, wantCode)
	}
}
