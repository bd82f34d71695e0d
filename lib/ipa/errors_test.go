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

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	err := newError(ErrArchiveEntryRead, "Payload/A.app/A", io.ErrUnexpectedEOF)
	assert.EqualError(t, err, "Payload/A.app/A: unexpected EOF")
	assert.ErrorIs(t, err, ErrArchiveEntryRead)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.False(t, errors.Is(err, ErrArchiveWrite))

	wrapped := fmt.Errorf("create: %w", err)
	assert.Equal(t, ErrArchiveEntryRead, KindOf(wrapped))
	assert.Equal(t, ErrUnknown, KindOf(io.EOF))

	assert.EqualError(t, &Error{Kind: ErrManifestNotFound}, "manifest not found")
	assert.EqualError(t, &Error{Kind: ErrValidation, Op: "name is required"}, "name is required")
}
