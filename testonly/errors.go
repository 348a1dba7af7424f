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
	"strings"
	"testing"
)

// EnsureErrorContains fails the test unless err is non-nil and its message
// contains s.
func EnsureErrorContains(t testing.TB, err error, s string) {
	t.Helper()
	switch {
	case err == nil:
		t.Fatalf("got nil error, want one containing %q", s)
	case !strings.Contains(err.Error(), s):
		t.Fatalf("got error %q, want one containing %q", err, s)
	}
}
