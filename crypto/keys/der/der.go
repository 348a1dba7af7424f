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

// Package der loads and saves log public keys in DER SubjectPublicKeyInfo
// form, and derives RFC6962 log IDs from them.
package der

import (
	"crypto"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/errors"
)

// UnmarshalPublicKey reads a DER-encoded SubjectPublicKeyInfo.
func UnmarshalPublicKey(keyDER []byte) (crypto.PublicKey, error) {
	if len(keyDER) == 0 {
		return nil, errors.New(errors.MissingInput, "der: empty public key")
	}
	key, err := x509.ParsePKIXPublicKey(keyDER)
	if err != nil {
		return nil, errors.Errorf(errors.MalformedEncoding, "der: could not parse public key as PKIX (%v)", err)
	}
	return key, nil
}

// MarshalPublicKey serializes an RSA or ECDSA public key as DER.
func MarshalPublicKey(pubKey crypto.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pubKey)
	if err != nil {
		return nil, errors.Errorf(errors.UnknownKeyType, "der: could not marshal public key as PKIX (%v)", err)
	}
	return der, nil
}

// LogIDFromKey returns the log ID of a log with the given public key: the
// SHA-256 hash of its DER SubjectPublicKeyInfo.
func LogIDFromKey(pubKey crypto.PublicKey) (ct.LogID, error) {
	der, err := MarshalPublicKey(pubKey)
	if err != nil {
		return ct.LogID{}, fmt.Errorf("LogIDFromKey: %w", err)
	}
	return LogIDFromDER(der), nil
}

// LogIDFromDER returns the log ID for a DER SubjectPublicKeyInfo.
func LogIDFromDER(keyDER []byte) ct.LogID {
	return sha256.Sum256(keyDER)
}
