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

package httperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sassoftware/ipakit/internal/zhttp"
	"github.com/sassoftware/ipakit/lib/ipa"
)

// Problem implements a RFC 7807 HTTP "problem" response
type Problem struct {
	Status int    `json:"status"`
	Type   string `json:"type"`

	Title    string `json:"title,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// error-specific
	Param string `json:"param,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

func (e Problem) Error() string {
	title := e.Title
	if title == "" {
		title = "[" + e.Type + "]"
	}
	m := fmt.Sprintf("HTTP %d %s", e.Status, title)
	if e.Detail != "" {
		m += ": " + e.Detail
	}
	return m
}

func (e Problem) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	if e.Type != "" {
		zhttp.AppendAccessLog(req, func(ev *zerolog.Event) {
			ev.Str("problem", e.Type)
		})
	}
	blob, _ := json.MarshalIndent(e, "", "  ")
	rw.Header().Set("Content-Type", "application/problem+json")
	rw.WriteHeader(e.Status)
	_, _ = rw.Write(blob)
}

const ProblemBase = "https://ipakit.sas.com/"

var (
	ErrTooLarge = &Problem{
		Status: http.StatusRequestEntityTooLarge,
		Type:   ProblemBase + "upload-too-large",
		Detail: "The uploaded archive exceeds the configured size limit",
	}
	ErrRateLimited = &Problem{
		Status: http.StatusTooManyRequests,
		Type:   ProblemBase + "rate-limited",
		Detail: "Too many requests, try again later",
	}
	ErrEmptyBody = &Problem{
		Status: http.StatusBadRequest,
		Type:   ProblemBase + "empty-body",
		Detail: "The request body must contain an .ipa archive",
	}
)

func MissingParameterError(param string) Problem {
	return Problem{
		Status: http.StatusBadRequest,
		Type:   ProblemBase + "missing-parameter",
		Detail: "Parameter " + param + " is required",
		Param:  param,
	}
}

func BadParameterError(param string, err error) Problem {
	return Problem{
		Status: http.StatusBadRequest,
		Type:   ProblemBase + "bad-parameter",
		Detail: "Failed to parse parameter " + param + ": " + err.Error(),
		Param:  param,
	}
}

// FromError converts a failure from the ipa package into a problem response.
// ok is false if err does not carry an error kind, in which case the caller
// should treat it as unhandled.
func FromError(err error) (p Problem, ok bool) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return *ErrTooLarge, true
	}
	kind := ipa.KindOf(err)
	if kind == ipa.ErrUnknown {
		return Problem{}, false
	}
	p = Problem{
		Status: statusForKind(kind),
		Type:   ProblemBase + typeForKind(kind),
		Title:  kind.String(),
		Detail: err.Error(),
		Kind:   typeForKind(kind),
	}
	return p, true
}

func statusForKind(kind ipa.Kind) int {
	switch kind {
	case ipa.ErrValidation, ipa.ErrArchiveParse, ipa.ErrIconConversion:
		return http.StatusBadRequest
	case ipa.ErrManifestParse, ipa.ErrManifestNotFound, ipa.ErrContainerNotFound, ipa.ErrArchiveEntryRead:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func typeForKind(kind ipa.Kind) string {
	switch kind {
	case ipa.ErrValidation:
		return "validation"
	case ipa.ErrManifestParse:
		return "manifest-parse"
	case ipa.ErrManifestWrite:
		return "manifest-write"
	case ipa.ErrArchiveParse:
		return "archive-parse"
	case ipa.ErrArchiveEntryRead:
		return "archive-entry-read"
	case ipa.ErrArchiveWrite:
		return "archive-write"
	case ipa.ErrIconConversion:
		return "icon-conversion"
	case ipa.ErrManifestNotFound:
		return "manifest-not-found"
	case ipa.ErrContainerNotFound:
		return "container-not-found"
	default:
		return "unknown"
	}
}
