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

// Package iconconv normalizes application icons to PNG.
package iconconv

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"

	"github.com/sassoftware/ipakit/lib/magic"
)

var ErrUnsupportedImage = errors.New("icon must be a PNG or JPEG image")

// Check rejects data that is neither a PNG nor a JPEG
func Check(blob []byte) error {
	switch t := magic.DetectBytes(blob); t {
	case magic.FileTypePNG, magic.FileTypeJPEG:
		return nil
	default:
		return fmt.Errorf("%w, got %s", ErrUnsupportedImage, t)
	}
}

// Normalize converts a JPEG icon to an 8-bit RGB PNG. Any other input is
// assumed to already be a PNG and is returned as-is.
//
// Colour profiles and other metadata in the source are not carried over.
func Normalize(blob []byte) ([]byte, error) {
	if !magic.IsJPEG(blob) {
		return blob, nil
	}
	src, err := jpeg.Decode(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("decode jpeg: %w", err)
	}
	return encodeRGB(src)
}

// encodeRGB draws src onto an opaque canvas so the PNG encoder emits truecolor
// without an alpha channel
func encodeRGB(src image.Image) ([]byte, error) {
	bounds := src.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), image.Opaque, image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), src, bounds.Min, draw.Over)
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
