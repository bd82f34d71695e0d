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

package servecmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sassoftware/ipakit/cmdline/shared"
	"github.com/sassoftware/ipakit/server/daemon"
)

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Offer archive parsing and rewriting over a HTTP API",
	RunE:  serveCmd,
}

var (
	argListen string
	argTest   bool
)

func init() {
	shared.RootCmd.AddCommand(ServeCmd)
	ServeCmd.Flags().StringVarP(&argListen, "listen", "l", "", "Override the listen address from the configuration")
	ServeCmd.Flags().BoolVarP(&argTest, "test", "t", false, "Test configuration and exit")
}

func MakeServer() (*daemon.Daemon, error) {
	if err := shared.InitLogging(); err != nil {
		return nil, err
	}
	if argListen != "" {
		shared.CurrentConfig.Server.Listen = argListen
	}
	return daemon.New(shared.CurrentConfig)
}

func serveCmd(cmd *cobra.Command, args []string) error {
	srv, err := MakeServer()
	if err != nil {
		return err
	}
	if argTest {
		fmt.Fprintln(cmd.OutOrStdout(), "OK")
		return srv.Shutdown(context.Background())
	}
	grace := time.Duration(shared.CurrentConfig.Server.ShutdownSeconds) * time.Second
	ctx, stop := notifyContext(cmd.Context())
	defer stop()
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(srv.Serve)
	eg.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("initiating graceful shutdown")
		// a second signal kills the process
		stop()
		sctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return eg.Wait()
}
