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

// Package budget hands out reservations against a fixed byte budget, so a
// server can bound how much request data it holds at once. Requests that
// don't fit wait in FIFO order until enough space is released.
package budget

import (
	"container/list"
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrTooBig = errors.New("request is larger than the entire budget")
	ErrClosed = errors.New("budget manager is closed")
)

type ReqID uint
type CancelFunc func()

type Manager struct {
	total     uint64
	free      uint64
	request   chan request
	release   chan ReqID
	quit      chan struct{}
	closeOnce sync.Once
	counter   ReqID
	pending   list.List
	active    map[ReqID]*allocation

	mu     sync.Mutex
	logger zerolog.Logger
}

// an unfulfilled request for space
type request struct {
	ready  chan<- error
	cancel <-chan struct{}
	size   uint64
	info   string
	id     ReqID // filled by manager
}

type allocation struct {
	size uint64
	info string
}

// New starts a manager with size bytes available
func New(size uint64) *Manager {
	m := &Manager{
		total:   size,
		free:    size,
		request: make(chan request),
		release: make(chan ReqID),
		quit:    make(chan struct{}),
		active:  make(map[ReqID]*allocation),
		logger:  zerolog.Nop(),
	}
	go m.loop()
	return m
}

func (m *Manager) SetLogger(logger zerolog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

func (m *Manager) debug() *zerolog.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logger.Debug()
}

// Close stops the manager. Pending and future requests fail with ErrClosed.
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.quit) })
}

// Request blocks until size bytes are available or ctx is done. The returned
// function must be called to give the space back.
func (m *Manager) Request(ctx context.Context, size uint64, info string) (CancelFunc, error) {
	// buffered so the manager never blocks on a requester that gave up
	ready := make(chan error, 1)
	cancel := make(chan struct{})
	var once sync.Once
	cancelFunc := func() { once.Do(func() { close(cancel) }) }
	select {
	case m.request <- request{ready: ready, cancel: cancel, size: size, info: info}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.quit:
		return nil, ErrClosed
	}
	select {
	case err := <-ready:
		if err != nil {
			return nil, err
		}
		return cancelFunc, nil
	case <-ctx.Done():
		cancelFunc()
		return nil, ctx.Err()
	case <-m.quit:
		return nil, ErrClosed
	}
}

// Free returns the number of bytes not currently reserved
func (m *Manager) Free() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.free
}

func (m *Manager) loop() {
	for {
		select {
		case req := <-m.request:
			id := m.counter
			req.id = id
			m.counter++
			if req.size > m.total {
				// this will never work
				req.ready <- ErrTooBig
				continue
			}
			if req.size <= m.Free() && m.pending.Len() == 0 {
				m.finishAlloc(req)
			} else {
				// save for later
				m.pending.PushBack(&req)
				m.debug().Uint64("size", req.size).Str("for", req.info).Msg("budget: postponed")
			}
			// funnel the per-request channel into a manager-wide one
			go func(cancel <-chan struct{}) {
				select {
				case <-cancel:
				case <-m.quit:
					return
				}
				select {
				case m.release <- id:
				case <-m.quit:
				}
			}(req.cancel)
		case id := <-m.release:
			m.releaseByID(id)
			m.tryAlloc()
		case <-m.quit:
			return
		}
	}
}

func (m *Manager) finishAlloc(req request) {
	m.mu.Lock()
	m.free -= req.size
	m.mu.Unlock()
	m.active[req.id] = &allocation{size: req.size, info: req.info}
	req.ready <- nil
	m.debug().Uint64("size", req.size).Str("for", req.info).Msg("budget: allocated")
}

func (m *Manager) releaseByID(id ReqID) {
	if alloc := m.active[id]; alloc != nil {
		m.debug().Uint64("size", alloc.size).Str("for", alloc.info).Msg("budget: freed")
		m.mu.Lock()
		m.free += alloc.size
		m.mu.Unlock()
		delete(m.active, id)
		return
	}
	for e := m.pending.Front(); e != nil; e = e.Next() {
		req := e.Value.(*request)
		if req.id == id {
			m.debug().Uint64("size", req.size).Str("for", req.info).Msg("budget: cancelled pending request")
			m.pending.Remove(e)
			break
		}
	}
}

// grant pending requests in order, stopping at the first that doesn't fit
func (m *Manager) tryAlloc() {
	for e := m.pending.Front(); e != nil; e = m.pending.Front() {
		req := e.Value.(*request)
		if req.size > m.Free() {
			return
		}
		m.pending.Remove(e)
		m.finishAlloc(*req)
	}
}
