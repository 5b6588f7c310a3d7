// Copyright 2025 The refsync Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/refsync/refsync/advertisement"
	"github.com/refsync/refsync/transport"
)

type advertiseCmdConfig struct {
	Binary string
	Host   string
}

var advertiseConfig advertiseCmdConfig

var advertiseCmd = &cobra.Command{
	Use:   "advertise <repo>",
	Short: "Print one peer's ref and capability advertisement without negotiating",
	Args:  cobra.ExactArgs(1),
	Example: "# refsync advertise /srv/git/upstream.git\n" +
		"# refsync advertise --binary git-receive-pack --host mirror.example.com repo.git",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		svc, err := transport.Launch(ctx, transport.Options{
			Binary:   advertiseConfig.Binary,
			RepoPath: args[0],
			Host:     advertiseConfig.Host,
		})
		if err != nil {
			return fmt.Errorf("launching peer: %w", err)
		}
		defer svc.Kill()

		adv, err := advertisement.Read(svc.Reader)
		if err != nil {
			return fmt.Errorf("reading advertisement: %w", err)
		}

		for name, id := range adv.Refs {
			fmt.Fprintf(os.Stdout, "%s %s\n", id, name)
		}
		for c := range adv.HasCap {
			if value, ok := adv.Caps[c]; ok {
				fmt.Fprintf(os.Stdout, "capability %s=%s\n", c.Token(), value)
			} else {
				fmt.Fprintf(os.Stdout, "capability %s\n", c.Token())
			}
		}
		return nil
	},
}

func init() {
	advertiseCmd.Flags().StringVar(&advertiseConfig.Binary, "binary", "git-upload-pack", "Service binary to invoke")
	advertiseCmd.Flags().StringVar(&advertiseConfig.Host, "host", "", "SSH host to run the binary on; empty runs it locally")
	rootCmd.AddCommand(advertiseCmd)
}
