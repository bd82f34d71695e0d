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

// ProgressSink receives completion percentages while an archive is rewritten.
// It is called synchronously from the copy loop and must return promptly.
type ProgressSink interface {
	Progress(percent int)
}

// ProgressFunc adapts a plain function to a ProgressSink
type ProgressFunc func(percent int)

func (f ProgressFunc) Progress(percent int) {
	f(percent)
}

// progressTracker converts processed byte counts into percentages and only
// forwards a value to the sink when it differs from the last one sent
type progressTracker struct {
	sink  ProgressSink
	total uint64
	done  uint64
	last  int
}

// skip counts bytes as processed without reporting
func (p *progressTracker) skip(n uint64) {
	p.done += n
}

// advance counts bytes as processed and reports if the percentage changed
func (p *progressTracker) advance(n uint64) {
	p.done += n
	p.report()
}

func (p *progressTracker) percent() int {
	if p.total == 0 {
		return 0
	}
	pct := p.done / p.total * 100
	if rem := p.done % p.total; rem != 0 {
		pct += rem * 100 / p.total
	}
	if pct > 100 {
		pct = 100
	}
	return int(pct)
}

func (p *progressTracker) report() {
	if p.sink == nil {
		return
	}
	if pct := p.percent(); pct != p.last {
		p.last = pct
		p.sink.Progress(pct)
	}
}
