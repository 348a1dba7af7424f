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
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"k8s.io/klog/v2"
)

// PEMCertPool is a set of certificates kept in the order they were added,
// without duplicates. Certificate chains read from PEM files and the roots
// accepted by a log are held in one.
type PEMCertPool struct {
	// maps from SHA-256 fingerprint to certificate, for dup detection
	fingerprints map[[sha256.Size]byte]*x509.Certificate
	certs        []*x509.Certificate
	certPool     *x509.CertPool
}

// NewPEMCertPool creates a new instance of PEMCertPool containing no certificates.
func NewPEMCertPool() *PEMCertPool {
	return &PEMCertPool{fingerprints: make(map[[sha256.Size]byte]*x509.Certificate), certPool: x509.NewCertPool()}
}

// AddCert adds a certificate to a pool. Duplicates are ignored.
// cert must not be nil.
func (p *PEMCertPool) AddCert(cert *x509.Certificate) {
	fingerprint := sha256.Sum256(cert.Raw)
	if _, ok := p.fingerprints[fingerprint]; ok {
		return
	}
	p.fingerprints[fingerprint] = cert
	p.certPool.AddCert(cert)
	p.certs = append(p.certs, cert)
}

// AppendCertsFromDER parses and adds DER certificates.
func (p *PEMCertPool) AppendCertsFromDER(ders [][]byte) error {
	for i, der := range ders {
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return fmt.Errorf("certificate %d: %w", i, err)
		}
		p.AddCert(cert)
	}
	return nil
}

// AppendCertsFromPEM adds certs to the pool from a byte slice assumed to contain PEM encoded data.
// Skips over non certificate blocks in the data. Returns true if all certificates in the
// data were parsed and added to the pool successfully and at least one certificate was found.
func (p *PEMCertPool) AppendCertsFromPEM(pemCerts []byte) (ok bool) {
	for len(pemCerts) > 0 {
		var block *pem.Block
		block, pemCerts = pem.Decode(pemCerts)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" || len(block.Headers) != 0 {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			klog.Warningf("error parsing PEM certificate: %v", err)
			return false
		}

		p.AddCert(cert)
		ok = true
	}

	return
}

// LoadPEMFile adds the certificates in a PEM file.
func (p *PEMCertPool) LoadPEMFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !p.AppendCertsFromPEM(data) {
		return fmt.Errorf("%s: no usable certificates", path)
	}
	return nil
}

// Certificates returns the certificates in the order they were added.
func (p *PEMCertPool) Certificates() []*x509.Certificate {
	return append([]*x509.Certificate(nil), p.certs...)
}

// RawCertificates returns the DER of each certificate, in the order they
// were added.
func (p *PEMCertPool) RawCertificates() [][]byte {
	raw := make([][]byte, 0, len(p.certs))
	for _, c := range p.certs {
		raw = append(raw, c.Raw)
	}
	return raw
}

// Len returns the number of certificates in the pool.
func (p *PEMCertPool) Len() int {
	return len(p.certs)
}

// CertPool returns the pool as an x509.CertPool, for chain building.
func (p *PEMCertPool) CertPool() *x509.CertPool {
	return p.certPool
}
