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

// Package client talks to RFC6962 Certificate Transparency logs over their
// JSON API and verifies what they return.
package client

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/certificate-transparency-go/jsonclient"
	"k8s.io/klog/v2"

	"github.com/transparency-dev/ctverify/client/backoff"
	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/errors"
)

// Options configures a LogClient.
type Options struct {
	// UserAgent is sent with every request.
	UserAgent string
	// Backoff governs retries of failed requests. The zero value means
	// backoff.Default().
	Backoff backoff.Backoff
}

// LogClient issues RFC6962 s4 requests to one log. Failed requests are
// retried with backoff unless the log rejected them outright. Responses are
// decoded but not verified; see LogVerifier.
type LogClient struct {
	jc      *jsonclient.JSONClient
	backoff backoff.Backoff
}

// New returns a LogClient for the log at uri, e.g. https://ct.example.com/log.
func New(uri string, hc *http.Client, opts Options) (*LogClient, error) {
	if hc == nil {
		hc = http.DefaultClient
	}
	jc, err := jsonclient.New(uri, hc, jsonclient.Options{UserAgent: opts.UserAgent, Logger: klogLogger{}})
	if err != nil {
		return nil, fmt.Errorf("client: %v", err)
	}
	bo := opts.Backoff
	if bo == (backoff.Backoff{}) {
		bo = backoff.Default()
	}
	return &LogClient{jc: jc, backoff: bo}, nil
}

// BaseURI returns the log's base URI.
func (c *LogClient) BaseURI() string {
	return c.jc.BaseURI()
}

type klogLogger struct{}

func (klogLogger) Printf(format string, args ...interface{}) {
	klog.V(2).Infof(format, args...)
}

// StatusCode returns the HTTP status of a failed log request, or 0 if err
// did not come from a log response.
func StatusCode(err error) int {
	var rspErr jsonclient.RspError
	if stderrors.As(err, &rspErr) {
		return rspErr.StatusCode
	}
	var rspErrPtr *jsonclient.RspError
	if stderrors.As(err, &rspErrPtr) && rspErrPtr != nil {
		return rspErrPtr.StatusCode
	}
	return 0
}

// classify decides whether a failed request is worth retrying. Transport
// errors, 429 and 5xx are; anything else the log said is final.
func classify(path string, err error) error {
	if err == nil {
		return nil
	}
	err = fmt.Errorf("%s: %w", path, err)
	switch code := StatusCode(err); {
	case code == 0, code == http.StatusTooManyRequests, code >= 500:
		return err
	case code == http.StatusOK:
		// The body did not decode.
		return backoff.Permanent(errors.Errorf(errors.MalformedEncoding, "%v", err))
	default:
		return backoff.Permanent(err)
	}
}

func (c *LogClient) get(ctx context.Context, path string, params map[string]string, rsp interface{}) error {
	b := c.backoff
	return b.Retry(ctx, func() error {
		_, _, err := c.jc.GetAndParse(ctx, path, params, rsp)
		return classify(path, err)
	})
}

func (c *LogClient) post(ctx context.Context, path string, req, rsp interface{}) error {
	b := c.backoff
	return b.Retry(ctx, func() error {
		_, _, err := c.jc.PostAndParse(ctx, path, req, rsp)
		return classify(path, err)
	})
}

// GetSTH fetches the log's latest signed tree head.
func (c *LogClient) GetSTH(ctx context.Context) (*ct.SignedTreeHead, error) {
	var resp ct.GetSTHResponse
	if err := c.get(ctx, ct.GetSTHPath, nil, &resp); err != nil {
		return nil, err
	}
	sth, err := resp.ToSignedTreeHead()
	if err != nil {
		return nil, fmt.Errorf("get-sth: %w", err)
	}
	return sth, nil
}

// GetSTHConsistency fetches the consistency proof between tree sizes first
// and second.
func (c *LogClient) GetSTHConsistency(ctx context.Context, first, second uint64) ([][]byte, error) {
	if first > second {
		return nil, errors.Errorf(errors.InconsistentOrdering, "get-sth-consistency: first %d > second %d", first, second)
	}
	params := map[string]string{
		"first":  strconv.FormatUint(first, 10),
		"second": strconv.FormatUint(second, 10),
	}
	var resp ct.GetSTHConsistencyResponse
	if err := c.get(ctx, ct.GetSTHConsistencyPath, params, &resp); err != nil {
		return nil, err
	}
	return resp.Consistency, nil
}

// GetProofByHash fetches the audit path for the leaf with the given Merkle
// leaf hash in the tree of size treeSize.
func (c *LogClient) GetProofByHash(ctx context.Context, hash []byte, treeSize uint64) (*ct.AuditProof, error) {
	if len(hash) == 0 {
		return nil, errors.New(errors.MissingInput, "get-proof-by-hash: missing leaf hash")
	}
	params := map[string]string{
		"hash":      base64.StdEncoding.EncodeToString(hash),
		"tree_size": strconv.FormatUint(treeSize, 10),
	}
	var resp ct.GetProofByHashResponse
	if err := c.get(ctx, ct.GetProofByHashPath, params, &resp); err != nil {
		return nil, err
	}
	return &ct.AuditProof{LeafIndex: resp.LeafIndex, AuditPath: resp.AuditPath}, nil
}

// GetRawEntries fetches entries start to end inclusive. Logs may return
// fewer entries than asked for; more are dropped.
func (c *LogClient) GetRawEntries(ctx context.Context, start, end uint64) (*ct.GetEntriesResponse, error) {
	if start > end {
		return nil, errors.Errorf(errors.IndexOutOfRange, "get-entries: start %d > end %d", start, end)
	}
	params := map[string]string{
		"start": strconv.FormatUint(start, 10),
		"end":   strconv.FormatUint(end, 10),
	}
	var resp ct.GetEntriesResponse
	if err := c.get(ctx, ct.GetEntriesPath, params, &resp); err != nil {
		return nil, err
	}
	if want := end - start + 1; uint64(len(resp.Entries)) > want {
		klog.V(1).Infof("%s: get-entries returned %d entries, asked for %d", c.BaseURI(), len(resp.Entries), want)
		resp.Entries = resp.Entries[:want]
	}
	return &resp, nil
}

// GetLeafInputs returns the serialized MerkleTreeLeaf of entries start to
// end inclusive. It makes LogClient a logverifier.EntriesSource.
func (c *LogClient) GetLeafInputs(ctx context.Context, start, end uint64) ([][]byte, error) {
	resp, err := c.GetRawEntries(ctx, start, end)
	if err != nil {
		return nil, err
	}
	leaves := make([][]byte, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		leaves = append(leaves, e.LeafInput)
	}
	return leaves, nil
}

// GetEntries fetches and decodes entries start to end inclusive.
func (c *LogClient) GetEntries(ctx context.Context, start, end uint64) ([]*ct.MerkleTreeLeaf, error) {
	resp, err := c.GetRawEntries(ctx, start, end)
	if err != nil {
		return nil, err
	}
	leaves := make([]*ct.MerkleTreeLeaf, 0, len(resp.Entries))
	for i, e := range resp.Entries {
		leaf, err := ct.ParseMerkleTreeLeaf(e.LeafInput)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", start+uint64(i), err)
		}
		leaves = append(leaves, leaf)
	}
	return leaves, nil
}

// GetRoots fetches the DER root certificates the log accepts.
func (c *LogClient) GetRoots(ctx context.Context) ([][]byte, error) {
	var resp ct.GetRootsResponse
	if err := c.get(ctx, ct.GetRootsPath, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Certificates, nil
}

// AddChain submits a DER certificate chain, leaf first, and returns the
// log's SCT for it.
func (c *LogClient) AddChain(ctx context.Context, chain [][]byte) (*ct.SignedCertificateTimestamp, error) {
	return c.addChain(ctx, ct.AddChainPath, chain)
}

// AddPreChain submits a precertificate chain, precertificate first.
func (c *LogClient) AddPreChain(ctx context.Context, chain [][]byte) (*ct.SignedCertificateTimestamp, error) {
	return c.addChain(ctx, ct.AddPreChainPath, chain)
}

func (c *LogClient) addChain(ctx context.Context, path string, chain [][]byte) (*ct.SignedCertificateTimestamp, error) {
	if len(chain) == 0 {
		return nil, errors.Errorf(errors.MissingInput, "%s: empty chain", path)
	}
	var resp ct.AddChainResponse
	if err := c.post(ctx, path, &ct.AddChainRequest{Chain: chain}, &resp); err != nil {
		return nil, err
	}
	sct, err := resp.ToSignedCertificateTimestamp()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sct, nil
}
