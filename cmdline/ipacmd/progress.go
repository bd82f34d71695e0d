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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const barWidth = 40

// progressBar renders create progress. On a terminal it redraws a bar in
// place, otherwise it logs every tenth percent.
type progressBar struct {
	w      io.Writer
	tty    bool
	logger zerolog.Logger
	drawn  bool
	logged int
}

func newProgressBar(w io.Writer, logger zerolog.Logger) *progressBar {
	p := &progressBar{w: w, logger: logger, logged: -1}
	if f, ok := w.(*os.File); ok {
		p.tty = term.IsTerminal(int(f.Fd()))
	}
	return p
}

func (p *progressBar) Progress(percent int) {
	if p.tty {
		filled := percent * barWidth / 100
		fmt.Fprintf(p.w, "\r%3d%% [%s%s]", percent,
			strings.Repeat("=", filled), strings.Repeat(" ", barWidth-filled))
		p.drawn = true
		return
	}
	if bucket := percent / 10; bucket > p.logged {
		p.logged = bucket
		p.logger.Info().Int("percent", percent).Msg("writing archive")
	}
}

// Done ends the bar line, if one was drawn
func (p *progressBar) Done() {
	if p.drawn {
		fmt.Fprintln(p.w)
		p.drawn = false
	}
}
