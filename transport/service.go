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

// Package transport launches the upload-pack / receive-pack peer processes
// and exposes their stdio as the (io.Reader, io.Writer) pair the wire
// protocol engine operates on. How bytes reach the peer is out of scope
// for pktline/negotiate/pushcmd/relay, which only ever see a reader and
// writer.
package transport

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/pkg/errors"

	"github.com/refsync/refsync/internal/rescue"
)

// Host, when non-empty, names a remote-shell target: the service binary is
// invoked via `ssh <Host> -- <binary> <repoPath>` instead of being spawned
// locally.
type Options struct {
	Binary   string
	RepoPath string
	Host     string
}

// Service wraps one running peer process: its stdin/stdout pipes and a
// handle to observe its exit.
type Service struct {
	cmd    *exec.Cmd
	Reader io.ReadCloser
	Writer io.WriteCloser

	done chan error
}

// Launch starts the service binary named by opt, locally or via a remote
// shell when opt.Host is set. Standard error is inherited so operator
// diagnostics from the peer process reach the terminal directly.
func Launch(ctx context.Context, opt Options) (*Service, error) {
	args := []string{opt.Binary}
	if opt.RepoPath != "" {
		args = append(args, opt.RepoPath)
	}

	var cmd *exec.Cmd
	if opt.Host != "" {
		cmd = exec.CommandContext(ctx, "ssh", append([]string{opt.Host, "--"}, args...)...)
	} else {
		cmd = exec.CommandContext(ctx, args[0], args[1:]...)
	}
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrapf(err, "transport: obtaining stdin pipe for %s", opt.Binary)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrapf(err, "transport: obtaining stdout pipe for %s", opt.Binary)
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "transport: starting %s", opt.Binary)
	}

	svc := &Service{
		cmd:    cmd,
		Reader: stdout,
		Writer: stdin,
		done:   make(chan error, 1),
	}
	go func() {
		defer rescue.HandleCrash()
		svc.done <- cmd.Wait()
	}()
	return svc, nil
}

// Wait blocks until the service process exits and returns its error, if
// any. It may be called at most once.
func (s *Service) Wait() error {
	return <-s.done
}

// Kill terminates the service process immediately. A cancelled write
// mid-packet leaves the peer's stream in an undefined state, so the only
// safe response is to kill the process rather than reuse it.
func (s *Service) Kill() error {
	if s.cmd.Process == nil {
		return nil
	}
	return s.cmd.Process.Kill()
}
