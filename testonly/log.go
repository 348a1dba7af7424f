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
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"testing"

	"github.com/transparency-dev/ctverify/ct"
)

// SigningLog holds a log key and signs SCTs and tree heads with it.
type SigningLog struct {
	Signer crypto.Signer
	// PublicKeyDER is the DER SubjectPublicKeyInfo of the log key.
	PublicKeyDER []byte
	ID           ct.LogID

	alg ct.SignatureAlgorithm
}

// NewECDSALog returns a log with a fresh P-256 key.
func NewECDSALog(t testing.TB) *SigningLog {
	t.Helper()
	return newSigningLog(t, mustECDSAKey(t), ct.ECDSA)
}

// NewRSALog returns a log with a fresh 2048-bit RSA key.
func NewRSALog(t testing.TB) *SigningLog {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey: %v", err)
	}
	return newSigningLog(t, key, ct.RSA)
}

func newSigningLog(t testing.TB, signer crypto.Signer, alg ct.SignatureAlgorithm) *SigningLog {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(signer.Public())
	if err != nil {
		t.Fatalf("MarshalPKIXPublicKey: %v", err)
	}
	return &SigningLog{Signer: signer, PublicKeyDER: der, ID: sha256.Sum256(der), alg: alg}
}

// Sign returns a DigitallySigned over data. ECDSA signatures are DER
// encoded, RSA ones are PKCS#1 v1.5.
func (l *SigningLog) Sign(t testing.TB, data []byte) ct.DigitallySigned {
	t.Helper()
	digest := sha256.Sum256(data)
	var sig []byte
	var err error
	switch k := l.Signer.(type) {
	case *ecdsa.PrivateKey:
		sig, err = ecdsa.SignASN1(rand.Reader, k, digest[:])
	default:
		sig, err = l.Signer.Sign(rand.Reader, digest[:], crypto.SHA256)
	}
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return ct.DigitallySigned{Hash: ct.SHA256, Algorithm: l.alg, Signature: sig}
}

// SCT issues a V1 SCT for entry at timestamp.
func (l *SigningLog) SCT(t testing.TB, entry ct.SignedEntry, timestamp uint64, extensions []byte) *ct.SignedCertificateTimestamp {
	t.Helper()
	sct := &ct.SignedCertificateTimestamp{
		SCTVersion: ct.V1,
		LogID:      l.ID,
		Timestamp:  timestamp,
		Extensions: extensions,
	}
	input, err := ct.SerializeSCTSignatureInput(sct, entry)
	if err != nil {
		t.Fatalf("SerializeSCTSignatureInput: %v", err)
	}
	sct.Signature = l.Sign(t, input)
	return sct
}

// STH signs a V1 tree head.
func (l *SigningLog) STH(t testing.TB, treeSize, timestamp uint64, root []byte) *ct.SignedTreeHead {
	t.Helper()
	sth := &ct.SignedTreeHead{Version: ct.V1, TreeSize: treeSize, Timestamp: timestamp}
	if len(root) != sha256.Size {
		t.Fatalf("root hash has %d bytes", len(root))
	}
	copy(sth.SHA256RootHash[:], root)
	input, err := ct.SerializeSTHSignatureInput(sth)
	if err != nil {
		t.Fatalf("SerializeSTHSignatureInput: %v", err)
	}
	sth.TreeHeadSignature = l.Sign(t, input)
	return sth
}
