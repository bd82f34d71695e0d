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
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/sassoftware/ipakit/config"
	"github.com/sassoftware/ipakit/internal/realip"
	"github.com/sassoftware/ipakit/internal/zhttp"
	"github.com/sassoftware/ipakit/lib/compresshttp"
	"github.com/sassoftware/ipakit/server/budget"
)

type Server struct {
	Config  *config.Config
	Closed  <-chan struct{}
	closeCh chan struct{}
	once    sync.Once
	limit   *rate.Limiter
	budget  *budget.Manager
	realIP  func(http.Handler) http.Handler
}

func New(cfg *config.Config) (*Server, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	realIP, err := realip.Middleware(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, err
	}
	closed := make(chan struct{})
	s := &Server{
		Config:  cfg,
		Closed:  closed,
		closeCh: closed,
		realIP:  realIP,
	}
	if cfg.Server.RateLimit > 0 {
		s.limit = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)
	}
	if n := cfg.Server.MaxInflightBytes(); n > 0 {
		s.budget = budget.New(n)
		s.budget.SetLogger(log.Logger)
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.realIP)
	r.Use(zhttp.LoggingMiddleware())
	r.Use(zhttp.RecoveryMiddleware)
	r.Get("/health", s.serveHealth)
	if p := s.Config.Server.MetricsPath; p != "" {
		r.Handle(p, promhttp.Handler())
	}
	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit)
		r.With(compresshttp.Middleware).Post("/parse", handleFunc(s.serveParse))
		r.Post("/create", handleFunc(s.serveCreate))
	})
	return r
}

// Close marks the server as unhealthy and releases any waiters
func (s *Server) Close() error {
	s.once.Do(func() {
		close(s.closeCh)
		if s.budget != nil {
			s.budget.Close()
		}
	})
	return nil
}
