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
	"time"

	"github.com/rs/zerolog"

	"github.com/sassoftware/ipakit/internal/zhttp"
	"github.com/sassoftware/ipakit/lib/ipa"
)

// serveParse reads an archive from the request body and returns its metadata
func (s *Server) serveParse(rw http.ResponseWriter, req *http.Request) (err error) {
	defer func(start time.Time) {
		observe("parse", start, err)
	}(time.Now())
	release, err := s.reserve(req)
	if err != nil {
		return err
	}
	defer release()
	blob, err := s.readBody(rw, req)
	if err != nil {
		return err
	}
	info, err := ipa.ParseBytes(blob)
	if err != nil {
		return err
	}
	zhttp.AppendAccessLog(req, func(e *zerolog.Event) {
		e.Str("bundle_id", info.AppBundleID)
		e.Int("archive_size", len(blob))
	})
	return writeJSON(rw, info)
}
