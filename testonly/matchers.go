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

package testonly

import (
	"fmt"

	"github.com/golang/mock/gomock"

	"github.com/transparency-dev/ctverify/ct"
)

type sthEq struct {
	want *ct.SignedTreeHead
}

func (m sthEq) Matches(x interface{}) bool {
	got, ok := x.(*ct.SignedTreeHead)
	if !ok || got == nil || m.want == nil {
		return ok && got == m.want
	}
	return got.Same(m.want)
}

func (m sthEq) String() string {
	return fmt.Sprintf("is STH %v", m.want)
}

// STHEq returns a gomock matcher for a *ct.SignedTreeHead with the same
// size, timestamp and root as want. Signatures are not compared.
func STHEq(want *ct.SignedTreeHead) gomock.Matcher {
	return sthEq{want}
}

type sthSize struct {
	size uint64
}

func (m sthSize) Matches(x interface{}) bool {
	got, ok := x.(*ct.SignedTreeHead)
	return ok && got != nil && got.TreeSize == m.size
}

func (m sthSize) String() string {
	return fmt.Sprintf("is an STH of size %d", m.size)
}

// STHWithSize returns a gomock matcher for any *ct.SignedTreeHead of the
// given tree size.
func STHWithSize(size uint64) gomock.Matcher {
	return sthSize{size}
}
