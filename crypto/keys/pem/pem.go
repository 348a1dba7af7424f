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

package pem

import (
	"bytes"
	"crypto"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/transparency-dev/ctverify/crypto/keys/der"
	"github.com/transparency-dev/ctverify/errors"
)

// ReadPublicKeyFile reads a PEM-encoded public key from a file.
func ReadPublicKeyFile(file string) (crypto.PublicKey, error) {
	keyPEM, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("pemfile: error reading %q: %w", file, err)
	}
	k, err := UnmarshalPublicKey(string(keyPEM))
	if err != nil {
		return nil, fmt.Errorf("pemfile: error decoding public key from %q: %w", file, err)
	}
	return k, nil
}

// UnmarshalPublicKey reads a PEM-encoded public key from a string.
func UnmarshalPublicKey(keyPEM string) (crypto.PublicKey, error) {
	keyDER, err := PublicKeyDER(keyPEM)
	if err != nil {
		return nil, err
	}
	return der.UnmarshalPublicKey(keyDER)
}

// PublicKeyDER returns the DER bytes of the single PUBLIC KEY block in keyPEM.
func PublicKeyDER(keyPEM string) ([]byte, error) {
	block, rest := pem.Decode([]byte(keyPEM))
	if block == nil {
		return nil, errors.New(errors.MalformedEncoding, "pemfile: invalid public key PEM")
	}
	if block.Type != "PUBLIC KEY" {
		return nil, errors.Errorf(errors.MalformedEncoding, "pemfile: got PEM block of type %q, want PUBLIC KEY", block.Type)
	}
	if len(bytes.TrimSpace(rest)) > 0 {
		return nil, errors.New(errors.MalformedEncoding, "pemfile: extra data found after first PEM block")
	}
	return block.Bytes, nil
}

