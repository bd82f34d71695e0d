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
	"io"
	"net/http"

	"github.com/sassoftware/ipakit/internal/zhttp"
)

// Healthy returns false once the server has begun shutting down
func (s *Server) Healthy() bool {
	select {
	case <-s.Closed:
		return false
	default:
		return true
	}
}

func (s *Server) serveHealth(rw http.ResponseWriter, req *http.Request) {
	zhttp.DontLog(req)
	if !s.Healthy() {
		http.Error(rw, "shutting down", http.StatusServiceUnavailable)
		return
	}
	rw.Header().Set("Content-Type", "text/plain")
	_, _ = io.WriteString(rw, "OK")
}
