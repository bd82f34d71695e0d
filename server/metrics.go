//
// Copyright (c) SAS Institute Inc.
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
//

package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sassoftware/ipakit/lib/ipa"
)

var (
	buckets = []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120}

	MetricOperations = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ipakit_operation_seconds",
			Help:    "A histogram of latencies for archive operations",
			Buckets: buckets,
		},
		[]string{"op"},
	)
	MetricResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ipakit_operation_results",
			Help: "Outcomes of archive operations",
		},
		[]string{"op", "result"},
	)
	metricRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ipakit_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
)

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	if kind := ipa.KindOf(err); kind != ipa.ErrUnknown {
		return strings.ReplaceAll(kind.String(), " ", "_")
	}
	return "error"
}

func observe(op string, start time.Time, err error) {
	MetricOperations.WithLabelValues(op).Observe(time.Since(start).Seconds())
	MetricResults.WithLabelValues(op, resultLabel(err)).Inc()
}
