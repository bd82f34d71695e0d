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
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/sassoftware/ipakit/internal/httperror"
	"github.com/sassoftware/ipakit/internal/zhttp"
	"github.com/sassoftware/ipakit/lib/iconconv"
	"github.com/sassoftware/ipakit/lib/ipa"
)

// form parts larger than this are spooled to disk
const multipartMemory = 32 << 20

// serveCreate rewrites an uploaded archive and returns the result
func (s *Server) serveCreate(rw http.ResponseWriter, req *http.Request) (err error) {
	defer func(start time.Time) {
		observe("create", start, err)
	}(time.Now())
	release, err := s.reserve(req)
	if err != nil {
		return err
	}
	defer release()
	req.Body = http.MaxBytesReader(rw, req.Body, s.Config.Server.MaxUploadBytes())
	if err := req.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return httperror.ErrTooLarge
		}
		return httperror.BadParameterError("form", err)
	}
	defer func() { _ = req.MultipartForm.RemoveAll() }()

	archive, hdr, err := req.FormFile("archive")
	if errors.Is(err, http.ErrMissingFile) {
		return httperror.MissingParameterError("archive")
	} else if err != nil {
		return httperror.BadParameterError("archive", err)
	}
	defer archive.Close()
	opts, err := s.createOptions(req)
	if err != nil {
		return err
	}
	if opts.Icon, err = readFormFile(req, "icon"); err != nil {
		return err
	}
	if opts.Icon != nil {
		if err := iconconv.Check(opts.Icon); err != nil {
			return httperror.BadParameterError("icon", err)
		}
	}
	if opts.Manifest, err = readFormFile(req, "plist"); err != nil {
		return err
	}
	if opts.Manifest == nil {
		if opts.Manifest, err = ipa.ExtractManifest(archive, hdr.Size); err != nil {
			return err
		}
	}
	logger := hlog.FromRequest(req)
	opts.Logger = logger
	opts.Progress = ipa.ProgressFunc(func(percent int) {
		logger.Debug().Int("percent", percent).Msg("create progress")
	})

	// buffer the result so a failure never yields a truncated archive
	tmp, err := os.CreateTemp("", "ipakit-*.ipa")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()
	if err := ipa.Create(archive, hdr.Size, tmp, opts); err != nil {
		return err
	}
	size, err := tmp.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return err
	}
	zhttp.AppendAccessLog(req, func(e *zerolog.Event) {
		e.Str("bundle_id", opts.BundleID)
		e.Int64("archive_size", hdr.Size)
		e.Int64("result_size", size)
	})
	rw.Header().Set("Content-Type", "application/octet-stream")
	rw.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	rw.Header().Set("Content-Disposition", `attachment; filename="`+outputName(hdr.Filename)+`"`)
	_, err = io.Copy(rw, tmp)
	if err != nil {
		// too late to send an error response
		logger.Warn().Err(err).Msg("failed to send archive")
	}
	return nil
}

func (s *Server) createOptions(req *http.Request) (ipa.CreateOptions, error) {
	opts := ipa.CreateOptions{
		Name:             req.FormValue("name"),
		BundleID:         req.FormValue("bundle_id"),
		Version:          req.FormValue("version"),
		CompressionLevel: s.Config.Create.CompressionLevel,
		ChunkSize:        s.Config.Create.ChunkSize,
		Exclude:          append([]string(nil), s.Config.Create.Exclude...),
	}
	if req.MultipartForm != nil {
		opts.Exclude = append(opts.Exclude, req.MultipartForm.Value["exclude"]...)
	}
	flags := []struct {
		field string
		dest  *bool
	}{
		{"remove_device_limit", &opts.RemoveDeviceLimit},
		{"remove_url_schemes", &opts.RemoveURLSchemes},
		{"file_sharing", &opts.EnableFileSharing},
	}
	for _, f := range flags {
		v := req.FormValue(f.field)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, httperror.BadParameterError(f.field, err)
		}
		*f.dest = b
	}
	if v := req.FormValue("level"); v != "" {
		level, err := strconv.Atoi(v)
		if err != nil {
			return opts, httperror.BadParameterError("level", err)
		}
		opts.CompressionLevel = ipa.ClampLevel(level)
	}
	return opts, nil
}

func outputName(uploaded string) string {
	name := strings.TrimSuffix(uploaded, ".ipa")
	name = strings.Map(func(r rune) rune {
		if r == '"' || r == '/' || r == '\\' || r < 0x20 {
			return '_'
		}
		return r
	}, name)
	if name == "" {
		name = "app"
	}
	return name + "-modified.ipa"
}
