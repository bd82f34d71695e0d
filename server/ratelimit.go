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
	"net/http"

	"github.com/sassoftware/ipakit/internal/httperror"
)

// rateLimit rejects requests beyond the configured rate with 429
func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limit == nil {
		return next
	}
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		if !s.limit.Allow() {
			metricRateLimited.Inc()
			httperror.ErrRateLimited.ServeHTTP(rw, req)
			return
		}
		next.ServeHTTP(rw, req)
	})
}
