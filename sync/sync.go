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

// Package sync orchestrates one synchronization run: read both peers'
// advertisements, negotiate a fetch from the source, emit the corresponding
// push commands to the destination, and then relay the resulting pack.
// It is the only package that knows the full phase sequence; pktline,
// advertisement, negotiate, pushcmd and relay each know only their own
// wire phase.
package sync

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/refsync/refsync/advertisement"
	"github.com/refsync/refsync/capability"
	"github.com/refsync/refsync/common"
	"github.com/refsync/refsync/internal/pbuf"
	"github.com/refsync/refsync/logger"
	"github.com/refsync/refsync/metrics"
	"github.com/refsync/refsync/negotiate"
	"github.com/refsync/refsync/pushcmd"
	"github.com/refsync/refsync/relay"
	"github.com/refsync/refsync/report"
	"github.com/refsync/refsync/transport"
)

// Peer bundles a service's stdio with a label used only for logging.
type Peer struct {
	Label  string
	Reader io.Reader
	Writer io.Writer
}

// Options carries the fixed capability sets attached to the fetch and push
// dialogues. Callers normally build these with DefaultOptions.
type Options struct {
	FetchCaps []capability.Attachment
	PushCaps  []capability.Attachment
}

// DefaultOptions returns the capability sets refsync always advertises:
// side-band-64k, ofs-delta and thin-pack on fetch; report-status, atomic
// and side-band-64k on push. Both carry the agent string.
func DefaultOptions() Options {
	agent := capability.Attachment{Cap: capability.Agent, Value: common.AgentString(), HasValue: true}
	return Options{
		FetchCaps: []capability.Attachment{
			{Cap: capability.SideBand64K},
			{Cap: capability.OfsDelta},
			{Cap: capability.ThinPack},
			agent,
		},
		PushCaps: []capability.Attachment{
			{Cap: capability.ReportStatus},
			{Cap: capability.Atomic},
			{Cap: capability.SideBand64K},
			agent,
		},
	}
}

// Result summarizes one completed run, for logging and for the caller to
// render a final status line.
type Result struct {
	RunID        string
	PushActivity pushcmd.Activity
	WantCount    int
	HaveCount    int
	PackBytes    int
	ReportLines  []string
}

func peeled(name string) bool {
	return strings.HasSuffix(name, "^{}")
}

// Run drives one full fetch-then-push cycle between src (the source of
// truth) and dst (the peer being brought up to date). Cancelling ctx
// between phases kills both peer processes; mid-packet cancellation is not
// supported since io.Reader/io.Writer expose no cancellation hook.
func Run(ctx context.Context, src, dst Peer, srcSvc, dstSvc *transport.Service, opts Options) (*Result, error) {
	runID := uuid.NewString()
	timer := metrics.StartTimer()

	result, err := run(ctx, src, dst, runID, opts)

	timer.Stop()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.RunsTotal.WithLabelValues(outcome).Inc()

	teardown := teardownErrors(ctx, srcSvc, dstSvc)
	if err != nil {
		if teardown != nil {
			return result, multierror.Append(err, teardown)
		}
		return result, err
	}
	return result, teardown
}

func run(ctx context.Context, src, dst Peer, runID string, opts Options) (*Result, error) {
	logger.Infof("run %s: reading advertisement from %s", runID, src.Label)
	srcAdv, err := advertisement.Read(src.Reader)
	if err != nil {
		return nil, errors.Wrapf(err, "phase advertise(%s)", src.Label)
	}

	logger.Infof("run %s: reading advertisement from %s", runID, dst.Label)
	dstAdv, err := advertisement.Read(dst.Reader)
	if err != nil {
		return nil, errors.Wrapf(err, "phase advertise(%s)", dst.Label)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "phase advertise: cancelled")
	}

	have := make([]string, 0, len(dstAdv.Refs))
	for _, id := range dstAdv.Refs {
		have = append(have, id)
	}
	have = pbuf.Dedup(have)

	alreadyPresent := make(map[string]struct{}, len(dstAdv.Refs))
	for _, id := range dstAdv.Refs {
		alreadyPresent[id] = struct{}{}
	}
	want := make([]string, 0, len(srcAdv.Refs))
	for name, id := range srcAdv.Refs {
		if peeled(name) {
			continue
		}
		if _, ok := alreadyPresent[id]; ok {
			continue
		}
		want = append(want, id)
	}
	want = pbuf.Dedup(want)

	logger.Infof("run %s: %d want id(s), %d have id(s)", runID, len(want), len(have))

	neg := negotiate.New(src.Reader, src.Writer)
	packExpected, err := neg.RequestPack(want, have, opts.FetchCaps)
	if err != nil {
		return nil, errors.Wrap(err, "phase negotiate")
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "phase negotiate: cancelled")
	}

	activity, err := pushcmd.Emit(dst.Writer, dstAdv.Refs, srcAdv.Refs, opts.PushCaps)
	if err != nil {
		return nil, errors.Wrap(err, "phase pushcmd")
	}

	result := &Result{
		RunID:        runID,
		PushActivity: activity,
		WantCount:    len(want),
		HaveCount:    len(have),
	}
	metrics.RefUpdatesTotal.WithLabelValues(activityLabel(activity)).Inc()

	switch activity {
	case pushcmd.Nothing:
		logger.Infof("run %s: no ref differences, nothing to push", runID)
		return result, nil
	case pushcmd.Deleting:
		logger.Infof("run %s: pure deletion, no pack body required", runID)
	case pushcmd.Sending:
		if packExpected {
			n, err := relayPack(src.Reader, dst.Writer, runID)
			if err != nil {
				return result, errors.Wrap(err, "phase relay")
			}
			result.PackBytes = n
		} else {
			if err := relay.WriteEmptyPack(dst.Writer); err != nil {
				return result, errors.Wrap(err, "phase relay: empty pack")
			}
			result.PackBytes = len(relay.EmptyPack)
		}
		metrics.PackBytesRelayed.Add(float64(result.PackBytes))
	}

	lines, err := readReport(dst.Reader)
	if err != nil {
		return result, errors.Wrap(err, "phase report")
	}
	result.ReportLines = lines
	for _, l := range report.Prefixed(lines) {
		logger.Infof("run %s: %s", runID, l)
	}

	return result, nil
}

func relayPack(src io.Reader, dst io.Writer, runID string) (int, error) {
	progress := logWriter{runID: runID, prefix: "progress"}
	remoteErr := logWriter{runID: runID, prefix: "remote-error"}

	counter := &countingWriter{w: dst}
	if err := relay.Copy(src, counter, progress, remoteErr); err != nil {
		return counter.n, err
	}
	return counter.n, nil
}

func readReport(dst io.Reader) ([]string, error) {
	buf, err := relay.Buffer(dst, nil, nil)
	if err != nil {
		return nil, err
	}
	return report.Lines(buf)
}

func activityLabel(a pushcmd.Activity) string {
	switch a {
	case pushcmd.Nothing:
		return "nothing"
	case pushcmd.Deleting:
		return "deleting"
	case pushcmd.Sending:
		return "sending"
	default:
		return "unknown"
	}
}

// teardownErrors kills each service if the run was cancelled, since its
// stream is in an undefined state; otherwise it closes stdin and waits
// for a clean exit.
func teardownErrors(ctx context.Context, svcs ...*transport.Service) error {
	var result *multierror.Error
	for _, svc := range svcs {
		if svc == nil {
			continue
		}
		if ctx.Err() != nil {
			if err := svc.Kill(); err != nil {
				result = multierror.Append(result, errors.Wrap(err, "teardown: kill"))
			}
			continue
		}

		if err := svc.Writer.Close(); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "teardown: close stdin"))
		}
		if err := svc.Wait(); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "teardown: wait"))
		}
	}
	return result.ErrorOrNil()
}

type logWriter struct {
	runID  string
	prefix string
}

func (w logWriter) Write(p []byte) (int, error) {
	logger.Infof("run %s: %s: %s", w.runID, w.prefix, string(p))
	return len(p), nil
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
