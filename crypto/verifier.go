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
	"fmt"

	"k8s.io/klog/v2"

	"github.com/transparency-dev/ctverify/crypto/keys/der"
	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/errors"
)

// SignatureVerifier checks SCT and STH signatures made by one log.
type SignatureVerifier struct {
	PubKey  gocrypto.PublicKey
	LogID   ct.LogID
	alg     ct.SignatureAlgorithm
	backend Backend
}

// NewSignatureVerifier creates a verifier for a log with the given public
// key, using DefaultBackend. Only ECDSA and RSA keys are accepted.
func NewSignatureVerifier(pub gocrypto.PublicKey) (*SignatureVerifier, error) {
	return NewSignatureVerifierWithBackend(pub, DefaultBackend)
}

// NewSignatureVerifierWithBackend is NewSignatureVerifier with an explicit
// crypto backend.
func NewSignatureVerifierWithBackend(pub gocrypto.PublicKey, backend Backend) (*SignatureVerifier, error) {
	if pub == nil {
		return nil, errors.New(errors.MissingInput, "missing public key")
	}
	if backend == nil {
		return nil, errors.New(errors.MissingInput, "missing crypto backend")
	}
	alg := SignatureAlgorithm(pub)
	if alg == ct.Anonymous {
		return nil, errors.Errorf(errors.UnknownKeyType, "unsupported public key type %T", pub)
	}
	id, err := der.LogIDFromKey(pub)
	if err != nil {
		return nil, err
	}
	return &SignatureVerifier{PubKey: pub, LogID: id, alg: alg, backend: backend}, nil
}

// NewSignatureVerifierFromDER creates a verifier from a DER
// SubjectPublicKeyInfo.
func NewSignatureVerifierFromDER(spki []byte) (*SignatureVerifier, error) {
	pub, err := der.UnmarshalPublicKey(spki)
	if err != nil {
		return nil, err
	}
	return NewSignatureVerifier(pub)
}

// Algorithm returns the signature algorithm of the log key.
func (v *SignatureVerifier) Algorithm() ct.SignatureAlgorithm {
	return v.alg
}

// VerifySignature checks that ds is a signature of data by the log key.
// A signature using a different algorithm than the key, or a hash other
// than SHA-256, does not verify.
func (v *SignatureVerifier) VerifySignature(data []byte, ds ct.DigitallySigned) (bool, error) {
	if len(ds.Signature) == 0 {
		return false, errors.New(errors.MissingInput, "empty signature")
	}
	if _, err := HashForAlgorithm(ds.Hash); err != nil {
		klog.V(1).Infof("log %v: %v", v.LogID, err)
		return false, nil
	}
	if ds.Algorithm != v.alg {
		klog.V(1).Infof("log %v: signature uses %v, key is %v", v.LogID, ds.Algorithm, v.alg)
		return false, nil
	}
	return v.backend.Verify(v.PubKey, ds.Algorithm, data, ds.Signature)
}

// VerifySCT checks the signature on sct over entry.
func (v *SignatureVerifier) VerifySCT(sct *ct.SignedCertificateTimestamp, entry ct.SignedEntry) (bool, error) {
	if sct == nil {
		return false, errors.New(errors.MissingInput, "missing SCT")
	}
	input, err := ct.SerializeSCTSignatureInput(sct, entry)
	if err != nil {
		return false, fmt.Errorf("SCT signature input: %w", err)
	}
	return v.VerifySignature(input, sct.Signature)
}

// VerifySTH checks the signature on sth.
func (v *SignatureVerifier) VerifySTH(sth *ct.SignedTreeHead) (bool, error) {
	if sth == nil {
		return false, errors.New(errors.MissingInput, "missing STH")
	}
	input, err := ct.SerializeSTHSignatureInput(sth)
	if err != nil {
		return false, fmt.Errorf("STH signature input: %w", err)
	}
	return v.VerifySignature(input, sth.TreeHeadSignature)
}
