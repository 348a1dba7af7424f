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
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/transparency-dev/ctverify/ct"
)

// Issuer is a throwaway CA.
type Issuer struct {
	Cert *x509.Certificate
	Key  *ecdsa.PrivateKey

	serial int64
}

// NewIssuer creates a self-signed CA named name.
func NewIssuer(t testing.TB, name string) *Issuer {
	t.Helper()
	key := mustECDSAKey(t)
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: name},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate(%s): %v", name, err)
	}
	return &Issuer{Cert: mustParse(t, der), Key: key, serial: 1}
}

// Leaf is a certificate template with its key. Signing the same Leaf twice
// yields certificates whose TBSCertificates differ only in their extra
// extensions, which is how a precertificate relates to its final
// certificate.
type Leaf struct {
	Template *x509.Certificate
	Key      *ecdsa.PrivateKey
}

// NewLeaf returns a server certificate template for dnsName.
func (i *Issuer) NewLeaf(t testing.TB, dnsName string) *Leaf {
	t.Helper()
	i.serial++
	return &Leaf{
		Template: &x509.Certificate{
			SerialNumber: big.NewInt(i.serial),
			Subject:      pkix.Name{CommonName: dnsName},
			DNSNames:     []string{dnsName},
			NotBefore:    time.Now().Add(-time.Hour).Truncate(time.Second),
			NotAfter:     time.Now().Add(24 * time.Hour).Truncate(time.Second),
			ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		},
		Key: mustECDSAKey(t),
	}
}

// Sign issues l with exts as its extra extensions.
func (i *Issuer) Sign(t testing.TB, l *Leaf, exts ...pkix.Extension) *x509.Certificate {
	t.Helper()
	tmpl := *l.Template
	tmpl.ExtraExtensions = exts
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, i.Cert, &l.Key.PublicKey, i.Key)
	if err != nil {
		t.Fatalf("CreateCertificate(%s): %v", tmpl.Subject.CommonName, err)
	}
	return mustParse(t, der)
}

// Issue returns a fresh leaf certificate for dnsName with the given extra
// extensions.
func (i *Issuer) Issue(t testing.TB, dnsName string, exts ...pkix.Extension) *x509.Certificate {
	t.Helper()
	return i.Sign(t, i.NewLeaf(t, dnsName), exts...)
}

// PoisonExtension returns the critical CT poison extension.
func PoisonExtension() pkix.Extension {
	return pkix.Extension{Id: ct.OIDExtensionCTPoison, Critical: true, Value: asn1.NullBytes}
}

// SCTListExtension wraps a serialized SignedCertificateTimestampList in the
// embedded SCT extension.
func SCTListExtension(t testing.TB, list []byte) pkix.Extension {
	t.Helper()
	v, err := asn1.Marshal(list)
	if err != nil {
		t.Fatalf("asn1.Marshal: %v", err)
	}
	return pkix.Extension{Id: ct.OIDExtensionSCTList, Value: v}
}

// CertsToPEM encodes certs as a sequence of PEM CERTIFICATE blocks.
func CertsToPEM(certs ...*x509.Certificate) []byte {
	var out []byte
	for _, c := range certs {
		out = append(out, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: c.Raw})...)
	}
	return out
}

func mustECDSAKey(t testing.TB) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return key
}

func mustParse(t testing.TB, der []byte) *x509.Certificate {
	t.Helper()
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("ParseCertificate: %v", err)
	}
	return cert
}
