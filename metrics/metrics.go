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

// Package metrics exposes prometheus counters and histograms for
// orchestration runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/refsync/refsync/common"
)

var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "runs_total",
			Help:      "total orchestration runs, by result",
		},
		[]string{"result"},
	)

	RefUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "ref_updates_total",
			Help:      "push phases run, one per orchestration run, by activity classification",
		},
		[]string{"activity"},
	)

	PackBytesRelayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "pack_bytes_relayed_total",
			Help:      "bytes of pack data copied from the source peer to the destination peer",
		},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: common.App,
			Name:      "run_duration_seconds",
			Help:      "wall-clock duration of a full orchestration run",
			Buckets:   prometheus.DefBuckets,
		},
	)

	uptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: common.App,
			Name:      "uptime_seconds",
			Help:      "seconds since the process started",
		},
	)
)

// ObserveUptime refreshes the uptime gauge; callers scrape it on demand
// via the metrics HTTP handler rather than a background ticker.
func ObserveUptime() {
	uptime.Set(float64(time.Now().Unix() - common.Started()))
}

// Timer records RunDuration when stopped.
type Timer struct {
	start time.Time
}

// StartTimer begins timing a run.
func StartTimer() Timer {
	return Timer{start: time.Now()}
}

// Stop records the elapsed duration.
func (t Timer) Stop() {
	RunDuration.Observe(time.Since(t.start).Seconds())
}
