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

// Package logger configures the process-wide slog logger: a stdout handler
// carrying trace context plus an otelslog handler exporting records, with
// credential attributes scrubbed before either sees them.
package logger

import (
	"context"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/trace"
)

// Config selects level, output format and the otelslog logger name.
type Config struct {
	Level       string // debug, info, warn, error
	Format      string // json, text
	ServiceName string
}

// secretKeys are attribute keys that must never reach a log sink whole.
// Token ids pass through logger.TokenID, which truncates; everything here
// is replaced outright.
var secretKeys = map[string]bool{
	"password":      true,
	"secret":        true,
	"password_hash": true,
	"x-auth-token":  true,
}

// InitLogger installs the global logger. Records fan out to stdout and to
// the otelslog bridge; each record picks up the trace and span ids of the
// request it was emitted under.
func InitLogger(cfg Config) {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		ReplaceAttr: scrubAttr,
	}

	var sink slog.Handler
	if cfg.Format == "text" {
		sink = slog.NewTextHandler(os.Stdout, opts)
	} else {
		sink = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(newTeeHandler(
		&traceContextHandler{Handler: sink},
		otelslog.NewHandler(cfg.ServiceName),
	)))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// scrubAttr normalizes timestamps and redacts credential attributes.
func scrubAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
	}
	if secretKeys[a.Key] {
		return slog.String(a.Key, "[REDACTED]")
	}
	return a
}

// traceContextHandler stamps trace_id and span_id onto records emitted
// inside a live span, so stdout lines correlate with exported traces.
type traceContextHandler struct {
	slog.Handler
}

func (h *traceContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceContextHandler) WithGroup(name string) slog.Handler {
	return &traceContextHandler{Handler: h.Handler.WithGroup(name)}
}

// teeHandler duplicates records across handlers, best effort: one failing
// sink never suppresses the others.
type teeHandler struct {
	handlers []slog.Handler
}

func newTeeHandler(handlers ...slog.Handler) slog.Handler {
	return &teeHandler{handlers: handlers}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, sink := range h.handlers {
		if sink.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, sink := range h.handlers {
		if sink.Enabled(ctx, r.Level) {
			_ = sink.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(h.handlers))
	for i, sink := range h.handlers {
		out[i] = sink.WithAttrs(attrs)
	}
	return newTeeHandler(out...)
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(h.handlers))
	for i, sink := range h.handlers {
		out[i] = sink.WithGroup(name)
	}
	return newTeeHandler(out...)
}
