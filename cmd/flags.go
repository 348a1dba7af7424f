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


// Package cmd contains helpers shared by the ctverify binaries.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"bitbucket.org/creachadair/shell"
)

// ParseFlagFile parses a set of flags from a file at the provided path.
// Arguments are split as a POSIX shell would, and environment variables
// in them are expanded. flag.Parse() is called again afterwards so that
// flags given on the command line take precedence over the file.
func ParseFlagFile(path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := parseFlags(flag.CommandLine, string(file)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	flag.Parse()
	return nil
}

func parseFlags(fs *flag.FlagSet, contents string) error {
	args, ok := shell.Split(contents)
	if !ok {
		return fmt.Errorf("unbalanced quotes in %q", contents)
	}
	for i, arg := range args {
		args[i] = os.ExpandEnv(arg)
	}
	return fs.Parse(args)
}
