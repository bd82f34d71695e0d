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
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			DontLog(r)
		case "/parse":
		default:
			http.NotFound(w, r)
			return
		}
		hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("op", "parse")
		})
		AppendAccessLog(r, func(e *zerolog.Event) {
			e.Str("bundle_id", "com.example")
		})
		hlog.FromRequest(r).Info().Msg("parsed")
	})
	var buf bytes.Buffer
	mw := LoggingMiddleware(
		WithLogger(zerolog.New(&buf)),
		func(lc *loggingConfig) {
			lc.now = fakeTime()
			lc.newID = func() string { return "generated" }
		},
	)
	newReq := func(path, reqID string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, path, nil)
		r.RemoteAddr = "192.168.1.1:12345"
		if reqID != "" {
			r.Header.Set(RequestIDHeader, reqID)
		}
		r.Header.Set("User-Agent", "unittest")
		return r
	}

	t.Run("Parse", func(t *testing.T) {
		buf.Reset()
		r, w := newReq("/parse", "00000000"), httptest.NewRecorder()
		mw(h).ServeHTTP(w, r)
		resp := w.Result()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "00000000", resp.Header.Get(RequestIDHeader))
		assert.Equal(t, `{"level":"info","ip":"192.168.1.1","req_id":"00000000","op":"parse","message":"parsed"}
{"level":"info","ip":"192.168.1.1","req_id":"00000000","op":"parse","method":"POST","url":"/parse","status":200,"len":0,"dur":1000,"ttfb":2000,"ua":"unittest","bundle_id":"com.example"}
`, buf.String())
	})
	t.Run("GeneratedID", func(t *testing.T) {
		buf.Reset()
		r, w := newReq("/nowhere", ""), httptest.NewRecorder()
		mw(h).ServeHTTP(w, r)
		resp := w.Result()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "generated", resp.Header.Get(RequestIDHeader))
		assert.Contains(t, buf.String(), `"req_id":"generated"`)
		assert.Contains(t, buf.String(), `"status":404`)
	})
	t.Run("DontLog", func(t *testing.T) {
		buf.Reset()
		r, w := newReq("/health", "00000000"), httptest.NewRecorder()
		mw(h).ServeHTTP(w, r)
		assert.Equal(t, `{"level":"info","ip":"192.168.1.1","req_id":"00000000","op":"parse","message":"parsed"}
`, buf.String())
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	var buf bytes.Buffer
	mw := LoggingMiddleware(WithLogger(zerolog.New(&buf)))
	r, w := httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder()
	mw(h).ServeHTTP(w, r)
	assert.Equal(t, http.StatusInternalServerError, w.Result().StatusCode)
	assert.Contains(t, buf.String(), `"error":"boom"`)
}

func TestSetupLogging(t *testing.T) {
	saved := log.Logger
	defer func() { log.Logger = saved }()
	fp := filepath.Join(t.TempDir(), "ipakit.log")
	require.NoError(t, SetupLogging("warn", fp))
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	blob, err := os.ReadFile(fp)
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "hidden")
	assert.Contains(t, string(blob), `"message":"shown"`)

	assert.Error(t, SetupLogging("loud", "-"))
}

func TestStripPort(t *testing.T) {
	assert.Equal(t, "127.0.0.1", StripPort("127.0.0.1:1234"))
	assert.Equal(t, "fe80::1", StripPort("[fe80::1]:1234"))
	assert.Equal(t, "fe80::1", StripPort("fe80::1"))
}

func fakeTime() func() time.Time {
	ts := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		ts = ts.Add(time.Second)
		return ts
	}
}
