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
	"time"

	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/rescue"
	"github.com/refsync/refsync/internal/sigs"
	"github.com/refsync/refsync/logger"
	"github.com/refsync/refsync/server"
	"github.com/refsync/refsync/sync"
	"github.com/refsync/refsync/transport"
)

type runCmdConfig struct {
	SourceBinary string
	SourceHost   string
	TargetBinary string
	TargetHost   string
	Listen       string
	ListenEnable bool
	Timeout      time.Duration
}

var runConfig runCmdConfig

var runCmd = &cobra.Command{
	Use:   "run <source-repo> <target-repo>",
	Short: "Fetch from a source repository and push the result to a target repository",
	Args:  cobra.ExactArgs(2),
	Example: "# refsync run /srv/git/upstream.git /srv/git/mirror.git\n" +
		"# refsync run --source-host origin.example.com repo.git --target-host mirror.example.com repo.git",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() {
			defer rescue.HandleCrash()
			select {
			case <-sigs.Terminate():
				logger.Warnf("termination signal received, cancelling run")
				cancel()
			case <-ctx.Done():
			}
		}()

		if runConfig.ListenEnable {
			srv := server.New(server.Config{Enabled: true, Address: runConfig.Listen, Timeout: 10 * time.Second})
			if srv != nil {
				srv.RegisterDefaultRoutes()
				go func() {
					defer rescue.HandleCrash()
					if err := srv.ListenAndServe(); err != nil {
						logger.Errorf("metrics server stopped: %v", err)
					}
				}()
			}
		}

		srcSvc, err := transport.Launch(ctx, transport.Options{
			Binary:   runConfig.SourceBinary,
			RepoPath: args[0],
			Host:     runConfig.SourceHost,
		})
		if err != nil {
			return fmt.Errorf("launching source peer: %w", err)
		}

		dstSvc, err := transport.Launch(ctx, transport.Options{
			Binary:   runConfig.TargetBinary,
			RepoPath: args[1],
			Host:     runConfig.TargetHost,
		})
		if err != nil {
			_ = srcSvc.Kill()
			return fmt.Errorf("launching target peer: %w", err)
		}

		srcPeer := sync.Peer{Label: "source", Reader: srcSvc.Reader, Writer: srcSvc.Writer}
		dstPeer := sync.Peer{Label: "target", Reader: dstSvc.Reader, Writer: dstSvc.Writer}

		opts := sync.DefaultOptions()
		if loadedConfig != nil {
			opts.PushCaps = append(opts.PushCaps, loadedConfig.extraPushCapabilities()...)
		}

		result, err := sync.Run(ctx, srcPeer, dstPeer, srcSvc, dstSvc, opts)
		if err != nil {
			return fmt.Errorf("run failed: %w", err)
		}

		fmt.Fprintf(os.Stdout, "run %s: %d want, %d have, %d pack bytes relayed\n",
			result.RunID, result.WantCount, result.HaveCount, result.PackBytes)
		for _, l := range result.ReportLines {
			fmt.Fprintf(os.Stdout, "remote: %s\n", l)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runConfig.SourceBinary, "source-binary", "git-upload-pack", "Upload-pack binary to invoke on the source peer")
	runCmd.Flags().StringVar(&runConfig.SourceHost, "source-host", "", "SSH host to run the source binary on; empty runs it locally")
	runCmd.Flags().StringVar(&runConfig.TargetBinary, "target-binary", "git-receive-pack", "Receive-pack binary to invoke on the target peer")
	runCmd.Flags().StringVar(&runConfig.TargetHost, "target-host", "", "SSH host to run the target binary on; empty runs it locally")
	runCmd.Flags().BoolVar(&runConfig.ListenEnable, "listen", false, "Expose a /metrics and /healthz HTTP server while the run executes")
	runCmd.Flags().StringVar(&runConfig.Listen, "listen.address", ":9090", "Address for the metrics server")
	rootCmd.AddCommand(runCmd)
}
