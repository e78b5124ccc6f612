// Copyright 2026 The Keygate Authors
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

// Package metrics owns the service's OpenTelemetry instruments. The HTTP
// layer records one measurement per completed request; exporting is the
// concern of whatever meter provider the process installs.
package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Config controls whether measurements are recorded at all.
type Config struct {
	Enabled bool
}

// Meter bundles the identity-service instruments.
type Meter struct {
	enabled  bool
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// The process-wide meter; a nil or disabled meter drops measurements.
var active *Meter

// New builds the instruments on the global meter provider and installs
// them as the process-wide meter. With no provider configured the global
// meter is a no-op, so recording stays safe either way.
func New(ctx context.Context, cfg Config, serviceName string) (*Meter, error) {
	m := &Meter{enabled: cfg.Enabled}
	if !cfg.Enabled {
		active = m
		return m, nil
	}

	meter := otel.Meter(serviceName)
	var err error
	m.requests, err = meter.Int64Counter("keygate.http.requests",
		metric.WithDescription("Completed HTTP requests"))
	if err != nil {
		return nil, fmt.Errorf("create request counter: %w", err)
	}
	m.duration, err = meter.Float64Histogram("keygate.http.request.duration",
		metric.WithDescription("Request latency"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	active = m
	return m, nil
}

// RecordRequest counts a completed request and its latency. Route is the
// matched pattern, not the raw path, to keep attribute cardinality down.
func RecordRequest(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	m := active
	if m == nil || !m.enabled {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.response.status_code", status),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(elapsed.Milliseconds()), attrs)
}
