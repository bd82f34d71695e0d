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

package compresshttp_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sassoftware/ipakit/lib/compresshttp"
)

func TestMiddleware(t *testing.T) {
	payload := bytes.Repeat([]byte(`{"app_name":"Sample"}`), 500)
	h := compresshttp.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			http.NotFound(w, r)
			return
		}
		// two chunks with a flush in between
		_, err := w.Write(payload[:1000])
		require.NoError(t, err)
		w.(http.Flusher).Flush()
		_, err = w.Write(payload[1000:])
		require.NoError(t, err)
	}))
	for _, ae := range []string{"", "identity", "gzip", "x-snappy-framed", "gzip, x-snappy-framed;q=0.5"} {
		t.Run("Accept_"+ae, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if ae != "" {
				req.Header.Set("Accept-Encoding", ae)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			resp := rec.Result()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			switch ae {
			case "", "identity":
				assert.Empty(t, resp.Header.Get("Content-Encoding"))
			case "gzip":
				assert.Equal(t, compresshttp.EncodingGzip, resp.Header.Get("Content-Encoding"))
			default:
				assert.Equal(t, compresshttp.EncodingSnappy, resp.Header.Get("Content-Encoding"))
			}
			require.NoError(t, compresshttp.DecompressResponse(resp))
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, payload, body)
		})
	}
	t.Run("Error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/fail", nil)
		req.Header.Set("Accept-Encoding", compresshttp.AcceptedEncodings)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		resp := rec.Result()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("Content-Encoding"))
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "not found")
	})
}

func TestDecompressUnknown(t *testing.T) {
	resp := &http.Response{
		Header: http.Header{"Content-Encoding": []string{"spam"}},
		Body:   io.NopCloser(bytes.NewReader(nil)),
	}
	assert.ErrorIs(t, compresshttp.DecompressResponse(resp), compresshttp.ErrUnacceptableEncoding)
}
