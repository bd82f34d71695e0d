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

package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sassoftware/ipakit/config"
	"github.com/sassoftware/ipakit/server"
)

type Daemon struct {
	server     *server.Server
	httpServer *http.Server
	listener   net.Listener
}

func New(cfg *config.Config) (*Daemon, error) {
	srv, err := server.New(cfg)
	if err != nil {
		return nil, err
	}
	listener, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		srv.Close()
		return nil, err
	}
	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 30 * time.Second,
	}
	return &Daemon{
		server:     srv,
		httpServer: httpServer,
		listener:   listener,
	}, nil
}

// Addr returns the address the daemon is listening on
func (d *Daemon) Addr() net.Addr {
	return d.listener.Addr()
}

// Serve accepts connections until Shutdown is called
func (d *Daemon) Serve() error {
	log.Info().Str("listen", d.listener.Addr().String()).Msg("serving")
	err := d.httpServer.Serve(d.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done
func (d *Daemon) Shutdown(ctx context.Context) error {
	d.server.Close()
	return d.httpServer.Shutdown(ctx)
}
