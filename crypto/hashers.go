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

package crypto

import (
	gocrypto "crypto"
	_ "crypto/sha256" // Register the SHA256 algorithm

	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/errors"
)

var cryptoHashLookup = map[ct.HashAlgorithm]gocrypto.Hash{
	ct.SHA256: gocrypto.SHA256,
}

// HashForAlgorithm maps a DigitallySigned hash algorithm to a crypto.Hash.
// RFC6962 logs only sign with SHA-256.
func HashForAlgorithm(alg ct.HashAlgorithm) (gocrypto.Hash, error) {
	h, ok := cryptoHashLookup[alg]
	if !ok {
		return 0, errors.Errorf(errors.UnknownKeyType, "unsupported hash algorithm %v", alg)
	}
	return h, nil
}

// Digest returns the alg digest of b.
func Digest(alg ct.HashAlgorithm, b []byte) ([]byte, error) {
	h, err := HashForAlgorithm(alg)
	if err != nil {
		return nil, err
	}
	hr := h.New()
	hr.Write(b)
	return hr.Sum(nil), nil
}
