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

// Package compresshttp compresses HTTP responses according to the client's
// Accept-Encoding header.
package compresshttp

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
)

const (
	acceptEncoding   = "Accept-Encoding"
	contentEncoding  = "Content-Encoding"
	contentLength    = "Content-Length"
	vary             = "Vary"
	EncodingIdentity = "identity"
	EncodingGzip     = "gzip"
	EncodingSnappy   = "x-snappy-framed"

	AcceptedEncodings = EncodingSnappy + ", " + EncodingGzip
)

// higher is better
var prefs = map[string]int{
	EncodingGzip:   1,
	EncodingSnappy: 2,
}

var ErrUnacceptableEncoding = errors.New("unknown Content-Encoding")

func selectEncoding(accept string) string {
	var pref int
	var best string
	for _, encoding := range strings.Split(accept, ",") {
		encoding = strings.TrimSpace(strings.Split(encoding, ";")[0])
		if p2 := prefs[encoding]; p2 > pref {
			pref = p2
			best = encoding
		}
	}
	return best
}

func newWriter(encoding string, w io.Writer) (io.WriteCloser, error) {
	switch encoding {
	case EncodingGzip:
		return gzip.NewWriterLevel(w, gzip.BestSpeed)
	case EncodingSnappy:
		return snappy.NewBufferedWriter(w), nil
	default:
		return nil, ErrUnacceptableEncoding
	}
}

// Middleware compresses successful responses if the client accepts a
// supported encoding. Error responses are sent uncompressed.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add(vary, acceptEncoding)
		encoding := selectEncoding(r.Header.Get(acceptEncoding))
		if encoding == "" {
			next.ServeHTTP(w, r)
			return
		}
		wrapped := &responseCompressor{rw: w, encoding: encoding}
		next.ServeHTTP(wrapped, r)
		if err := wrapped.Close(); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("flushing compressed response")
		}
	})
}

type responseCompressor struct {
	rw http.ResponseWriter
	wc io.WriteCloser

	encoding    string
	wroteHeader bool
}

func (w *responseCompressor) Header() http.Header {
	return w.rw.Header()
}

func (w *responseCompressor) WriteHeader(status int) {
	if !w.wroteHeader {
		if status >= 300 {
			// don't compress errors
			w.encoding = ""
		} else {
			w.Header().Set(contentEncoding, w.encoding)
			w.Header().Del(contentLength)
		}
		w.wroteHeader = true
	}
	w.rw.WriteHeader(status)
}

func (w *responseCompressor) Write(d []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.encoding == "" {
		return w.rw.Write(d)
	}
	if w.wc == nil {
		var err error
		if w.wc, err = newWriter(w.encoding, w.rw); err != nil {
			return 0, err
		}
	}
	return w.wc.Write(d)
}

func (w *responseCompressor) Flush() {
	if f, ok := w.wc.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}
	if f, ok := w.rw.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *responseCompressor) Close() error {
	if w.wc == nil {
		return nil
	}
	return w.wc.Close()
}

// DecompressResponse replaces the body of a client response with a decoding
// reader if the server compressed it
func DecompressResponse(resp *http.Response) error {
	var r io.Reader
	switch resp.Header.Get(contentEncoding) {
	case "", EncodingIdentity:
		return nil
	case EncodingGzip:
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		r = zr
	case EncodingSnappy:
		r = snappy.NewReader(resp.Body)
	default:
		return ErrUnacceptableEncoding
	}
	resp.Body = readAndClose{r: r, c: resp.Body}
	resp.ContentLength = -1
	resp.Header.Del(contentEncoding)
	return nil
}

type readAndClose struct {
	r io.Reader
	c io.Closer
}

func (rc readAndClose) Read(d []byte) (int, error) {
	return rc.r.Read(d)
}

func (rc readAndClose) Close() error {
	return rc.c.Close()
}
