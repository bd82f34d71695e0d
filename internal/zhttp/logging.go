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

package zhttp

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/sassoftware/ipakit/internal/logrotate"
)

type ctxKey int

var (
	ctxAccessCallbacks ctxKey = 1
	ctxDontLog         ctxKey = 2
)

const (
	rfc3339Milli    = "2006-01-02T15:04:05.000Z07:00" // RFC3339 with 3 decimal places, padded
	RequestIDHeader = "X-Request-Id"
)

// SetupLogging initializes zerolog with reasonable defaults
func SetupLogging(levelName, logFile string) error {
	zerolog.TimeFieldFormat = rfc3339Milli
	zerolog.DurationFieldInteger = true
	switch logFile {
	case "-":
		// write JSON to stderr
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	case "":
		// write pretty text to stderr
		log.Logger = log.Logger.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
			NoColor:    !term.IsTerminal(int(os.Stderr.Fd())),
		})
	default:
		// write JSON to file
		w, err := logrotate.NewWriter(logFile)
		if err != nil {
			return fmt.Errorf("log_file: %w", err)
		}
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	}
	if levelName == "" {
		levelName = zerolog.InfoLevel.String()
	}
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	log.Logger = log.Logger.Level(level)
	// pass stdlib logger through
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)
	return nil
}

// LoggingMiddleware creates a logging context for each request, and emits an
// access log entry at the completion of the request. Requests without an
// X-Request-Id header are assigned one.
func LoggingMiddleware(opts ...LoggingOption) func(http.Handler) http.Handler {
	cfg := loggingConfig{
		logger: log.Logger,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(&cfg)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			reqID := req.Header.Get(RequestIDHeader)
			if reqID == "" {
				reqID = cfg.newID()
				req.Header.Set(RequestIDHeader, reqID)
			}
			rw.Header().Set(RequestIDHeader, reqID)
			baseLogger := cfg.logger.With().
				Str("ip", StripPort(req.RemoteAddr)).
				Str("req_id", reqID).
				Logger()
			ctx := baseLogger.WithContext(req.Context())
			var callbacks []AccessLogCallback
			var dontLog bool
			ctx = context.WithValue(ctx, ctxAccessCallbacks, &callbacks)
			ctx = context.WithValue(ctx, ctxDontLog, &dontLog)
			start := cfg.now()
			lw := &Logger{
				ResponseWriter: rw,
				Now:            cfg.now,
			}
			req = req.WithContext(ctx)
			next.ServeHTTP(lw, req)
			if dontLog {
				return
			}
			// use the logger from ctx so UpdateContext calls made by the
			// handler are reflected
			ev := zerolog.Ctx(ctx).Info().
				Str("method", req.Method).
				Stringer("url", req.URL).
				Int("status", lw.Status()).
				Int64("len", lw.Length()).
				Dur("dur", cfg.now().Sub(start)).
				Dur("ttfb", lw.Started().Sub(start)).
				Str("ua", req.UserAgent())
			for _, cb := range callbacks {
				cb(ev)
			}
			ev.Send()
		})
	}
}

type AccessLogCallback func(*zerolog.Event)

// AppendAccessLog adds a callback function which will be invoked to amend the
// access log with additional fields.
func AppendAccessLog(req *http.Request, f AccessLogCallback) {
	callbacks, _ := req.Context().Value(ctxAccessCallbacks).(*[]AccessLogCallback)
	if callbacks != nil {
		*callbacks = append(*callbacks, f)
	}
}

// DontLog marks that the current request should not generate an access log
// entry
func DontLog(req *http.Request) {
	dontLog, _ := req.Context().Value(ctxDontLog).(*bool)
	if dontLog != nil {
		*dontLog = true
	}
}

type loggingConfig struct {
	logger zerolog.Logger
	now    func() time.Time
	newID  func() string
}

type LoggingOption func(*loggingConfig)

// WithLogger sets the base logger for the middleware
func WithLogger(logger zerolog.Logger) LoggingOption {
	return func(lc *loggingConfig) {
		lc.logger = logger
	}
}

// StripPort returns just the IP part from e.g. Request.RemoteAddr
func StripPort(clientIP string) string {
	i := strings.IndexByte(clientIP, ':')
	j := strings.IndexByte(clientIP, ']')
	if j > 1 && clientIP[0] == '[' {
		// [fe80::]:1234
		return clientIP[1:j]
	} else if i > 0 && strings.Count(clientIP, ":") == 1 {
		// 127.0.0.1:1234
		return clientIP[:i]
	}
	return clientIP
}
