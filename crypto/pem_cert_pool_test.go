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
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/transparency-dev/ctverify/testonly"
)

func TestPEMCertPool(t *testing.T) {
	ca := testonly.NewIssuer(t, "Root")
	leaf := ca.Issue(t, "leaf.example.com")
	other := ca.Issue(t, "other.example.com")

	p := NewPEMCertPool()
	data := testonly.CertsToPEM(leaf, ca.Cert, leaf)
	data = append(data, []byte("-----BEGIN PUBLIC KEY-----\nAAAA\n-----END PUBLIC KEY-----\n")...)
	if !p.AppendCertsFromPEM(data) {
		t.Fatal("AppendCertsFromPEM() failed")
	}
	if err := p.AppendCertsFromDER([][]byte{other.Raw, ca.Cert.Raw}); err != nil {
		t.Fatalf("AppendCertsFromDER(): %v", err)
	}

	want := [][]byte{leaf.Raw, ca.Cert.Raw, other.Raw}
	if diff := cmp.Diff(want, p.RawCertificates()); diff != "" {
		t.Errorf("RawCertificates() diff (-want +got):\n%s", diff)
	}
	if got := p.Len(); got != 3 {
		t.Errorf("Len()=%d, want 3", got)
	}
	if got := p.Certificates(); len(got) != 3 || got[0] != leaf {
		t.Errorf("Certificates()[0] is not the first certificate added")
	}
	if got := len(p.CertPool().Subjects()); got != 3 { //nolint:staticcheck
		t.Errorf("CertPool() has %d subjects, want 3", got)
	}

	if err := p.AppendCertsFromDER([][]byte{[]byte("junk")}); err == nil {
		t.Error("AppendCertsFromDER(junk) succeeded, want error")
	}
	if NewPEMCertPool().AppendCertsFromPEM([]byte("no PEM here")) {
		t.Error("AppendCertsFromPEM(no PEM) succeeded, want false")
	}
	broken := []byte("-----BEGIN CERTIFICATE-----\nAAAA\n-----END CERTIFICATE-----\n")
	if NewPEMCertPool().AppendCertsFromPEM(broken) {
		t.Error("AppendCertsFromPEM(broken) succeeded, want false")
	}
}

func TestLoadPEMFile(t *testing.T) {
	ca := testonly.NewIssuer(t, "Root")
	dir := t.TempDir()
	good := filepath.Join(dir, "chain.pem")
	if err := os.WriteFile(good, testonly.CertsToPEM(ca.Issue(t, "a.example"), ca.Cert), 0o644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.pem")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewPEMCertPool()
	if err := p.LoadPEMFile(good); err != nil {
		t.Errorf("LoadPEMFile(good)=%v", err)
	}
	if p.Len() != 2 {
		t.Errorf("Len()=%d, want 2", p.Len())
	}
	if err := p.LoadPEMFile(empty); err == nil {
		t.Error("LoadPEMFile(empty) succeeded")
	}
	if err := p.LoadPEMFile(filepath.Join(dir, "missing.pem")); err == nil {
		t.Error("LoadPEMFile(missing) succeeded")
	}
}
