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

package ipacmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sassoftware/ipakit/lib/atomicfile"
	"github.com/sassoftware/ipakit/lib/ipa"
	"github.com/sassoftware/ipakit/lib/magic"
)

// openSource opens an archive for random access. "-" reads stdin into memory.
// Anything that doesn't start like a zip file is rejected up front.
func openSource(path string) (src io.ReaderAt, size int64, closer func(), err error) {
	if path == "-" {
		blob, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, 0, nil, err
		}
		if err := checkArchive("stdin", magic.DetectBytes(blob)); err != nil {
			return nil, 0, nil, err
		}
		return bytes.NewReader(blob), int64(len(blob)), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, nil, err
	}
	if err := checkArchive(path, magic.Detect(io.NewSectionReader(f, 0, info.Size()))); err != nil {
		f.Close()
		return nil, 0, nil, err
	}
	return f, info.Size(), func() { f.Close() }, nil
}

func checkArchive(name string, ft magic.FileType) error {
	if ft != magic.FileTypeZIP {
		return fmt.Errorf("%s: %w: not a zip file (looks like %s)", name, ipa.ErrArchiveParse, ft)
	}
	return nil
}

func writeFile(path string, blob []byte) error {
	out, err := atomicfile.WriteAny(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(blob); err != nil {
		return err
	}
	return out.Commit()
}
