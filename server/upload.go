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
	"errors"
	"io"
	"net/http"

	"github.com/sassoftware/ipakit/internal/httperror"
	"github.com/sassoftware/ipakit/server/budget"
)

// reserve holds space in the in-flight budget for the request body. The
// returned function releases it.
func (s *Server) reserve(req *http.Request) (func(), error) {
	if s.budget == nil {
		return func() {}, nil
	}
	size := uint64(s.Config.Server.MaxUploadBytes())
	if req.ContentLength > 0 && uint64(req.ContentLength) < size {
		size = uint64(req.ContentLength)
	}
	if total := s.Config.Server.MaxInflightBytes(); size > total {
		size = total
	}
	release, err := s.budget.Request(req.Context(), size, req.Method+" "+req.URL.Path)
	if errors.Is(err, budget.ErrTooBig) {
		return nil, httperror.ErrTooLarge
	} else if err != nil {
		return nil, err
	}
	return release, nil
}

// readBody reads the whole request body, enforcing the upload limit
func (s *Server) readBody(rw http.ResponseWriter, req *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(rw, req.Body, s.Config.Server.MaxUploadBytes())
	blob, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		return nil, httperror.ErrEmptyBody
	}
	return blob, nil
}

// readFormFile returns the contents of an optional multipart file field, or
// nil if it was not sent
func readFormFile(req *http.Request, field string) ([]byte, error) {
	f, _, err := req.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	} else if err != nil {
		return nil, httperror.BadParameterError(field, err)
	}
	defer f.Close()
	blob, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return blob, nil
}
