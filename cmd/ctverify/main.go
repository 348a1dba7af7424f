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


// The ctverify binary checks what a Certificate Transparency log serves.
//
// Usage:
//
//	ctverify [flags] sth
//	ctverify [flags] -trusted_sth=FILE consistency
//	ctverify [flags] -chain=FILE [-sct=FILE] inclusion
//	ctverify [flags] fulltree
//
// sth verifies the signature of the latest tree head. consistency checks it
// is an append-only extension of a tree head saved earlier with -out.
// inclusion verifies the SCT for a certificate chain, and that the log has
// included the entry. fulltree fetches every entry and checks they hash to
// the latest root.
package main

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"k8s.io/klog/v2"

	"github.com/transparency-dev/ctverify/client"
	"github.com/transparency-dev/ctverify/cmd"
	"github.com/transparency-dev/ctverify/crypto"
	"github.com/transparency-dev/ctverify/crypto/keys/pem"
	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/storage"
)

// Flags
var (
	logURL     = flag.String("log_url", "", "Base URL of the log, e.g. https://ct.example.com/2026")
	logKey     = flag.String("log_public_key", "", "PEM file holding the log's public key")
	trustedSTH = flag.String("trusted_sth", "", "File holding a previously verified STH, as written by -out")
	outSTH     = flag.String("out", "", "File to write the verified STH to")
	chainFile  = flag.String("chain", "", "PEM file with the certificate chain, leaf first")
	sctFile    = flag.String("sct", "", "JSON add-chain response holding the SCT; if empty the SCTs embedded in the leaf are used")
	wait       = flag.Duration("wait", 0, "How long inclusion waits for the log to include the entry")
	batchSize  = flag.Uint64("batch_size", 1000, "Number of entries fetched per get-entries request")
	timeout    = flag.Duration("timeout", 30*time.Second, "Timeout of requests to the log")

	configFile = flag.String("config", "", "Config file containing flags, file contents can be overridden by command line flags")
)

// Errors
var (
	errLogURLMissing     = errors.New("log URL is missing: use the -log_url flag to set it")
	errPublicKeyMissing  = errors.New("the log public key path is missing: use the -log_public_key flag to set it")
	errTrustedSTHMissing = errors.New("consistency needs a trusted STH: use the -trusted_sth flag to set it")
	errChainMissing      = errors.New("inclusion needs a certificate chain: use the -chain flag to set it")
	errNoSCT             = errors.New("no SCT from this log found for the certificate")
)

func newClientFromFlags() (*client.VerifyingClient, error) {
	if *logURL == "" {
		return nil, errLogURLMissing
	}
	if *logKey == "" {
		return nil, errPublicKeyMissing
	}
	keyPEM, err := os.ReadFile(*logKey)
	if err != nil {
		return nil, err
	}
	der, err := pem.PublicKeyDER(string(keyPEM))
	if err != nil {
		return nil, fmt.Errorf("%s: %v", *logKey, err)
	}
	lv, err := client.NewLogVerifierFromDER(der)
	if err != nil {
		return nil, err
	}
	lc, err := client.New(*logURL, &http.Client{Timeout: *timeout}, client.Options{})
	if err != nil {
		return nil, err
	}

	var trusted *ct.SignedTreeHead
	if *trustedSTH != "" {
		data, err := os.ReadFile(*trustedSTH)
		if err != nil {
			return nil, err
		}
		if trusted, err = storage.UnmarshalSTH(data); err != nil {
			return nil, fmt.Errorf("%s: %v", *trustedSTH, err)
		}
		if err := lv.VerifySTH(trusted); err != nil {
			return nil, fmt.Errorf("%s: %v", *trustedSTH, err)
		}
	}
	return client.NewVerifyingClient(lc, lv, trusted), nil
}

func writeSTH(sth ct.SignedTreeHead) error {
	if *outSTH == "" {
		return nil
	}
	data, err := storage.MarshalSTH(&sth)
	if err != nil {
		return err
	}
	return os.WriteFile(*outSTH, data, 0o644)
}

// readSCTs returns the SCTs to check for leaf: the one in -sct, or
// those embedded in the certificate that the log issued.
func readSCTs(leaf *x509.Certificate, logID ct.LogID) ([]*ct.SignedCertificateTimestamp, error) {
	if *sctFile != "" {
		data, err := os.ReadFile(*sctFile)
		if err != nil {
			return nil, err
		}
		var rsp ct.AddChainResponse
		if err := json.Unmarshal(data, &rsp); err != nil {
			return nil, fmt.Errorf("%s: %v", *sctFile, err)
		}
		sct, err := rsp.ToSignedCertificateTimestamp()
		if err != nil {
			return nil, fmt.Errorf("%s: %v", *sctFile, err)
		}
		return []*ct.SignedCertificateTimestamp{sct}, nil
	}
	embedded, err := ct.EmbeddedSCTs(leaf)
	if err != nil {
		return nil, err
	}
	var scts []*ct.SignedCertificateTimestamp
	for _, sct := range embedded {
		if sct.LogID == logID {
			scts = append(scts, sct)
		}
	}
	if len(scts) == 0 {
		return nil, errNoSCT
	}
	return scts, nil
}

func inclusion(ctx context.Context, c *client.VerifyingClient, out io.Writer) error {
	if *chainFile == "" {
		return errChainMissing
	}
	pool := crypto.NewPEMCertPool()
	if err := pool.LoadPEMFile(*chainFile); err != nil {
		return err
	}
	chain := pool.Certificates()
	entry, err := ct.SignedEntryForChain(chain)
	if err != nil {
		return err
	}
	scts, err := readSCTs(chain[0], c.Verifier().LogID())
	if err != nil {
		return err
	}
	for _, sct := range scts {
		if *wait > 0 {
			wctx, cancel := context.WithTimeout(ctx, *wait)
			err = c.WaitForInclusion(wctx, sct, entry)
			cancel()
		} else {
			err = c.VerifyInclusion(ctx, sct, entry)
		}
		if err != nil {
			return fmt.Errorf("SCT issued at %v: %v", sct.TimestampTime().UTC(), err)
		}
		root := c.Root()
		fmt.Fprintf(out, "%s entry with SCT timestamp %d is included in tree %v\n", entry.EntryType, sct.Timestamp, root.String())
	}
	return nil
}

// run executes the subcommand named by args[0].
func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("want one command out of sth, consistency, inclusion and fulltree, got %q", args)
	}
	c, err := newClientFromFlags()
	if err != nil {
		return err
	}
	switch args[0] {
	case "sth":
	case "consistency":
		if *trustedSTH == "" {
			return errTrustedSTHMissing
		}
	case "inclusion":
		return inclusion(ctx, c, out)
	case "fulltree":
		if err := c.UpdateRoot(ctx); err != nil {
			return err
		}
		if err := c.AuditFullTree(ctx, *batchSize); err != nil {
			return err
		}
		root := c.Root()
		fmt.Fprintf(out, "all %d entries match root %v\n", root.TreeSize, root.SHA256RootHash)
		return writeSTH(root)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}

	from := c.Root()
	if err := c.UpdateRoot(ctx); err != nil {
		return err
	}
	root := c.Root()
	if *trustedSTH != "" {
		fmt.Fprintf(out, "tree size %d is consistent with tree size %d\n", root.TreeSize, from.TreeSize)
	}
	fmt.Fprintf(out, "verified STH %v issued at %v\n", root.String(), root.TimestampTime().UTC())
	return writeSTH(root)
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	if *configFile != "" {
		if err := cmd.ParseFlagFile(*configFile); err != nil {
			klog.Exitf("Failed to load flags from config file %q: %s", *configFile, err)
		}
	}
	if err := run(context.Background(), flag.Args(), os.Stdout); err != nil {
		klog.Exit(err)
	}
}
