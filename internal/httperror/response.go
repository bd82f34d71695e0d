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
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ResponseError describes a non-problem error response
type ResponseError struct {
	Method     string
	URL        string
	Status     string
	StatusCode int
	BodyText   string
}

func (e ResponseError) Error() string {
	return fmt.Sprintf("HTTP error:\n%s %s\n%s\n%s", e.Method, e.URL, e.Status, e.BodyText)
}

// FromResponse decodes an error response, returning a Problem if the server
// sent one. The response body is consumed and closed.
func FromResponse(resp *http.Response) error {
	defer resp.Body.Close()
	blob, err := io.ReadAll(io.LimitReader(resp.Body, 100000))
	if err != nil {
		return err
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "problem+json") {
		var p Problem
		if err := json.Unmarshal(blob, &p); err == nil {
			if p.Status == 0 {
				p.Status = resp.StatusCode
			}
			return p
		}
	}
	rerr := ResponseError{
		Status:     resp.Status,
		StatusCode: resp.StatusCode,
		BodyText:   string(blob),
	}
	if resp.Request != nil {
		rerr.Method = resp.Request.Method
		rerr.URL = resp.Request.URL.String()
	}
	return rerr
}
