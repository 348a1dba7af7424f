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
	"crypto/ecdsa"
	"crypto/rsa"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/errors"
)

// Backend performs the digest and public key operations behind signature
// verification. A Backend is passed to a SignatureVerifier when it is
// created, so tests and callers with hardware or remote crypto can swap it.
type Backend interface {
	// Verify reports whether sig is a valid alg signature of msg under pub.
	// An invalid signature is false, not an error.
	Verify(pub gocrypto.PublicKey, alg ct.SignatureAlgorithm, msg, sig []byte) (bool, error)
}

// StdBackend implements Backend with the standard library's ECDSA and
// RSA PKCS#1 v1.5 primitives.
type StdBackend struct {
	// Hash is the digest applied to messages. The zero value means SHA-256.
	Hash gocrypto.Hash
}

// DefaultBackend is the SHA-256 StdBackend.
var DefaultBackend Backend = StdBackend{Hash: gocrypto.SHA256}

func (b StdBackend) hash() gocrypto.Hash {
	if b.Hash == 0 {
		return gocrypto.SHA256
	}
	return b.Hash
}

// Verify implements Backend.
func (b StdBackend) Verify(pub gocrypto.PublicKey, alg ct.SignatureAlgorithm, msg, sig []byte) (bool, error) {
	if len(sig) == 0 {
		return false, errors.New(errors.MissingInput, "empty signature")
	}
	hasher := b.hash()
	if !hasher.Available() {
		return false, errors.Errorf(errors.UnknownKeyType, "hash %v is not linked into the binary", hasher)
	}
	h := hasher.New()
	h.Write(msg)
	digest := h.Sum(nil)

	switch pub := pub.(type) {
	case *ecdsa.PublicKey:
		if alg != ct.ECDSA {
			return false, nil
		}
		return verifyECDSA(pub, digest, sig), nil
	case *rsa.PublicKey:
		if alg != ct.RSA {
			return false, nil
		}
		return rsa.VerifyPKCS1v15(pub, hasher, digest, sig) == nil, nil
	default:
		return false, errors.Errorf(errors.UnknownKeyType, "unsupported public key type %T", pub)
	}
}

// verifyECDSA unwraps a DER SEQUENCE { r INTEGER, s INTEGER } and checks it.
// Trailing data or a malformed encoding makes the signature invalid.
func verifyECDSA(pub *ecdsa.PublicKey, digest, sig []byte) bool {
	r, s, ok := unwrapECDSASignature(sig)
	if !ok {
		return false
	}
	return ecdsa.Verify(pub, digest, r, s)
}

func unwrapECDSASignature(sig []byte) (*big.Int, *big.Int, bool) {
	var (
		r, s  = new(big.Int), new(big.Int)
		inner cryptobyte.String
	)
	input := cryptobyte.String(sig)
	if !input.ReadASN1(&inner, cbasn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(r) ||
		!inner.ReadASN1Integer(s) ||
		!inner.Empty() {
		return nil, nil, false
	}
	if r.Sign() <= 0 || s.Sign() <= 0 {
		return nil, nil, false
	}
	return r, s, true
}

// SignatureAlgorithm returns the RFC6962 algorithm used for this public key.
// Only ECDSA and RSA keys are supported; other key types return
// ct.Anonymous.
func SignatureAlgorithm(k gocrypto.PublicKey) ct.SignatureAlgorithm {
	switch k.(type) {
	case *ecdsa.PublicKey:
		return ct.ECDSA
	case *rsa.PublicKey:
		return ct.RSA
	}
	return ct.Anonymous
}

