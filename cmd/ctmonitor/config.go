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


package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/transparency-dev/ctverify/crypto/keys/pem"
)

// LogConfig describes one log to monitor.
type LogConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	// Exactly one of PublicKeyPEMFile and PublicKeyDERBase64 must be set.
	PublicKeyPEMFile   string        `yaml:"public_key_pem_file"`
	PublicKeyDERBase64 string        `yaml:"public_key_der_base64"`
	PollInterval       time.Duration `yaml:"poll_interval"`
	VerifyEntries      bool          `yaml:"verify_entries"`
	BatchSize          uint64        `yaml:"batch_size"`
}

// Config is the set of logs a ctmonitor process watches.
type Config struct {
	Logs []LogConfig `yaml:"logs"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig parses and validates YAML config.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Logs) == 0 {
		return nil, errors.New("no logs configured")
	}
	names := make(map[string]bool)
	for i, l := range cfg.Logs {
		if l.Name == "" {
			return nil, fmt.Errorf("log #%d: missing name", i)
		}
		if names[l.Name] {
			return nil, fmt.Errorf("log %q: duplicate name", l.Name)
		}
		names[l.Name] = true
		if l.URL == "" {
			return nil, fmt.Errorf("log %q: missing url", l.Name)
		}
		if (l.PublicKeyPEMFile == "") == (l.PublicKeyDERBase64 == "") {
			return nil, fmt.Errorf("log %q: set exactly one of public_key_pem_file and public_key_der_base64", l.Name)
		}
		if l.PollInterval < 0 {
			return nil, fmt.Errorf("log %q: negative poll_interval", l.Name)
		}
	}
	return &cfg, nil
}

// PublicKeyDER returns the DER SubjectPublicKeyInfo of the log key.
func (l LogConfig) PublicKeyDER() ([]byte, error) {
	if l.PublicKeyDERBase64 != "" {
		return base64.StdEncoding.DecodeString(l.PublicKeyDERBase64)
	}
	keyPEM, err := os.ReadFile(l.PublicKeyPEMFile)
	if err != nil {
		return nil, err
	}
	return pem.PublicKeyDER(string(keyPEM))
}
