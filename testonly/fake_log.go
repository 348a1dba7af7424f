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
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/transparency-dev/merkle/rfc6962"
	inmemory "github.com/transparency-dev/merkle/testonly"

	"github.com/transparency-dev/ctverify/ct"
)

// FakeLog is an RFC6962 log served over HTTP from memory. Entries are added
// with AddEntry or add-chain, but only become visible through get-sth,
// get-entries and the proof endpoints once Publish signs a tree head
// covering them.
type FakeLog struct {
	*SigningLog
	Server *httptest.Server
	// Roots are the DER certificates get-roots serves.
	Roots [][]byte

	t testing.TB

	mu        sync.Mutex
	tree      *inmemory.Tree
	leaves    [][]byte
	index     map[string]uint64
	published *ct.SignedTreeHead
	now       uint64
	failures  map[string][]int
}

// NewFakeLog starts a fake log signing with l. It is shut down when the
// test ends.
func NewFakeLog(t testing.TB, l *SigningLog) *FakeLog {
	t.Helper()
	f := &FakeLog{
		SigningLog: l,
		t:          t,
		tree:       inmemory.New(rfc6962.DefaultHasher),
		index:      make(map[string]uint64),
		now:        1600000000000,
		failures:   make(map[string][]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(ct.GetSTHPath, f.serve(f.getSTH))
	mux.HandleFunc(ct.GetSTHConsistencyPath, f.serve(f.getConsistency))
	mux.HandleFunc(ct.GetProofByHashPath, f.serve(f.getProofByHash))
	mux.HandleFunc(ct.GetEntriesPath, f.serve(f.getEntries))
	mux.HandleFunc(ct.GetRootsPath, f.serve(f.getRoots))
	mux.HandleFunc(ct.AddChainPath, f.serve(f.addChain(false)))
	mux.HandleFunc(ct.AddPreChainPath, f.serve(f.addChain(true)))
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the log's base URL.
func (f *FakeLog) URL() string {
	return f.Server.URL
}

func (f *FakeLog) tick() uint64 {
	f.now += 1000
	return f.now
}

// AddEntry issues an SCT for entry and sequences it.
func (f *FakeLog) AddEntry(entry ct.SignedEntry) *ct.SignedCertificateTimestamp {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addEntryLocked(entry)
}

func (f *FakeLog) addEntryLocked(entry ct.SignedEntry) *ct.SignedCertificateTimestamp {
	sct := f.SCT(f.t, entry, f.tick(), nil)
	mtl, err := ct.MerkleTreeLeafForSCT(sct, entry)
	if err != nil {
		f.t.Fatalf("MerkleTreeLeafForSCT: %v", err)
	}
	input, err := mtl.MarshalBinary()
	if err != nil {
		f.t.Fatalf("MarshalBinary: %v", err)
	}
	f.index[string(rfc6962.DefaultHasher.HashLeaf(input))] = uint64(len(f.leaves))
	f.leaves = append(f.leaves, input)
	f.tree.AppendData(input)
	return sct
}

// AddEntries sequences n X.509 entries with made-up certificates.
func (f *FakeLog) AddEntries(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < n; i++ {
		cert := []byte("certificate " + strconv.Itoa(len(f.leaves)))
		f.addEntryLocked(ct.SignedEntry{EntryType: ct.X509LogEntryType, X509Entry: cert})
	}
}

// Publish signs and serves a tree head covering every entry added so far.
func (f *FakeLog) Publish() *ct.SignedTreeHead {
	f.mu.Lock()
	defer f.mu.Unlock()
	sth := f.STH(f.t, f.tree.Size(), f.tick(), f.tree.Hash())
	f.published = sth
	return sth
}

// SetSTH makes the log serve sth, whatever it says.
func (f *FakeLog) SetSTH(sth *ct.SignedTreeHead) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = sth
}

// LeafInputs returns the serialized leaves added so far.
func (f *FakeLog) LeafInputs() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.leaves...)
}

// FailNext makes the next requests to path fail with the given HTTP
// statuses, in order.
func (f *FakeLog) FailNext(path string, statuses ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[path] = append(f.failures[path], statuses...)
}

type handler func(r *http.Request) (interface{}, int)

func (f *FakeLog) serve(h handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		if fails := f.failures[r.URL.Path]; len(fails) > 0 {
			f.failures[r.URL.Path] = fails[1:]
			f.mu.Unlock()
			http.Error(w, "injected failure", fails[0])
			return
		}
		rsp, status := h(r)
		f.mu.Unlock()
		if status != http.StatusOK {
			http.Error(w, http.StatusText(status), status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rsp); err != nil {
			f.t.Errorf("encoding %s response: %v", r.URL.Path, err)
		}
	}
}

func uintParams(r *http.Request, names ...string) ([]uint64, bool) {
	var out []uint64
	for _, n := range names {
		v, err := strconv.ParseUint(r.URL.Query().Get(n), 10, 64)
		if err != nil {
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}

func (f *FakeLog) size() uint64 {
	if f.published == nil {
		return 0
	}
	return f.published.TreeSize
}

func (f *FakeLog) getSTH(r *http.Request) (interface{}, int) {
	if f.published == nil {
		return nil, http.StatusServiceUnavailable
	}
	sig, err := f.published.TreeHeadSignature.MarshalBinary()
	if err != nil {
		f.t.Errorf("DigitallySigned.MarshalBinary: %v", err)
		return nil, http.StatusInternalServerError
	}
	return &ct.GetSTHResponse{
		TreeSize:          f.published.TreeSize,
		Timestamp:         f.published.Timestamp,
		SHA256RootHash:    f.published.SHA256RootHash[:],
		TreeHeadSignature: sig,
	}, http.StatusOK
}

func (f *FakeLog) getConsistency(r *http.Request) (interface{}, int) {
	p, ok := uintParams(r, "first", "second")
	if !ok || p[0] > p[1] || p[1] > f.size() {
		return nil, http.StatusBadRequest
	}
	proof, err := f.tree.ConsistencyProof(p[0], p[1])
	if err != nil {
		return nil, http.StatusBadRequest
	}
	return &ct.GetSTHConsistencyResponse{Consistency: proof}, http.StatusOK
}

func (f *FakeLog) getProofByHash(r *http.Request) (interface{}, int) {
	hash, err := base64.StdEncoding.DecodeString(r.URL.Query().Get("hash"))
	p, ok := uintParams(r, "tree_size")
	if err != nil || !ok || p[0] > f.size() {
		return nil, http.StatusBadRequest
	}
	idx, found := f.index[string(hash)]
	if !found || idx >= p[0] {
		return nil, http.StatusNotFound
	}
	proof, err := f.tree.InclusionProof(idx, p[0])
	if err != nil {
		return nil, http.StatusBadRequest
	}
	return &ct.GetProofByHashResponse{LeafIndex: idx, AuditPath: proof}, http.StatusOK
}

func (f *FakeLog) getEntries(r *http.Request) (interface{}, int) {
	p, ok := uintParams(r, "start", "end")
	if !ok || p[0] > p[1] || p[0] >= f.size() {
		return nil, http.StatusBadRequest
	}
	end := min(p[1]+1, f.size())
	var rsp ct.GetEntriesResponse
	for _, l := range f.leaves[p[0]:end] {
		rsp.Entries = append(rsp.Entries, ct.LeafEntry{LeafInput: l})
	}
	return &rsp, http.StatusOK
}

func (f *FakeLog) getRoots(r *http.Request) (interface{}, int) {
	return &ct.GetRootsResponse{Certificates: f.Roots}, http.StatusOK
}

func (f *FakeLog) addChain(precert bool) handler {
	return func(r *http.Request) (interface{}, int) {
		if r.Method != http.MethodPost {
			return nil, http.StatusMethodNotAllowed
		}
		var req ct.AddChainRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Chain) == 0 {
			return nil, http.StatusBadRequest
		}
		certs, err := parseChain(req.Chain)
		if err != nil {
			return nil, http.StatusBadRequest
		}
		var entry ct.SignedEntry
		if precert {
			if len(certs) < 2 || !ct.IsPrecertificate(certs[0]) {
				return nil, http.StatusBadRequest
			}
			entry, err = ct.PrecertSignedEntry(certs[0], certs[1])
			if err != nil {
				return nil, http.StatusBadRequest
			}
		} else {
			entry = ct.X509SignedEntry(certs[0])
		}
		sct := f.addEntryLocked(entry)
		sig, err := sct.Signature.MarshalBinary()
		if err != nil {
			return nil, http.StatusInternalServerError
		}
		return &ct.AddChainResponse{
			SCTVersion: sct.SCTVersion,
			ID:         sct.LogID[:],
			Timestamp:  sct.Timestamp,
			Extensions: base64.StdEncoding.EncodeToString(sct.Extensions),
			Signature:  sig,
		}, http.StatusOK
	}
}

func parseChain(ders [][]byte) ([]*x509.Certificate, error) {
	certs := make([]*x509.Certificate, 0, len(ders))
	for _, der := range ders {
		c, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, err
		}
		certs = append(certs, c)
	}
	return certs, nil
}
