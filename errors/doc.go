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

// Package errors defines an error representation that associates an error
// message to an error code.
//
// Codes describe structural problems with the input of a verification: a
// malformed encoding, a proof of the wrong length, tree sizes that go
// backwards. They never describe a failed cryptographic or hash check, which
// verification functions report as a false result instead.
//
// Errors created by this package may be wrapped with fmt.Errorf and the %w
// verb; ErrorCode and Is look through the wrapping.
package errors
