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

package ipa

import "errors"

// Kind classifies a failure. Each Kind is itself an error so callers can test
// with errors.Is(err, ipa.ErrManifestNotFound).
type Kind int

const (
	ErrUnknown Kind = iota
	// a required input was missing or blank
	ErrValidation
	ErrManifestParse
	ErrManifestWrite
	ErrArchiveParse
	ErrArchiveEntryRead
	ErrArchiveWrite
	ErrIconConversion
	// the archive has no Payload/*.app/Info.plist
	ErrManifestNotFound
	// no container directory was seen while rewriting the archive
	ErrContainerNotFound
)

var errNoManifestEntry = errors.New("archive has no Payload/*.app/Info.plist entry")

func (k Kind) Error() string {
	return k.String()
}

func (k Kind) String() string {
	switch k {
	case ErrValidation:
		return "validation error"
	case ErrManifestParse:
		return "manifest parse error"
	case ErrManifestWrite:
		return "manifest write error"
	case ErrArchiveParse:
		return "archive parse error"
	case ErrArchiveEntryRead:
		return "archive entry read error"
	case ErrArchiveWrite:
		return "archive write error"
	case ErrIconConversion:
		return "icon conversion error"
	case ErrManifestNotFound:
		return "manifest not found"
	case ErrContainerNotFound:
		return "container not found"
	default:
		return "unknown error"
	}
}

// Error is returned by every operation in this package
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return e.Kind.String()
	case e.Err == nil:
		return e.Op
	case e.Op == "":
		return e.Err.Error()
	default:
		return e.Op + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrUnknown
}

func newError(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}
