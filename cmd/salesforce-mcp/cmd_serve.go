// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/teradata-labs/salesforce-mcp/internal/version"
	"github.com/teradata-labs/salesforce-mcp/pkg/mcp/transport"
	"github.com/teradata-labs/salesforce-mcp/pkg/salesforce"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the Salesforce tools",
	Long: `Serve the Salesforce tools over one transport:

  stdio   newline-delimited JSON-RPC on stdin/stdout (default)
  http    POST /mcp (streamable HTTP), GET /sse + POST /messages (SSE),
          GET /health, GET /status, GET /metrics
  simple  POST / answers one JSON-RPC message inline, plus the same
          /health, /status and /metrics endpoints

When the Salesforce login fails the server keeps running and every tool call
reports that the connection is not established. Use --require-session to exit
instead.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	f := serveCmd.Flags()
	f.String("transport", TransportStdio, "Transport: stdio, http or simple")
	f.String("host", "127.0.0.1", "HTTP listen host")
	f.Int("port", 0, fmt.Sprintf("HTTP listen port (default %d, or %d for simple)", DefaultHTTPPort, DefaultSimplePort))
	f.Bool("require-session", false, "Exit when the Salesforce session cannot be established")
	f.Duration("session-ttl", 30*time.Minute, "Idle timeout of streamable HTTP sessions (0 disables expiry)")

	_ = viper.BindPFlag("server.transport", f.Lookup("transport"))
	_ = viper.BindPFlag("server.host", f.Lookup("host"))
	_ = viper.BindPFlag("server.port", f.Lookup("port"))
	_ = viper.BindPFlag("server.require_session", f.Lookup("require-session"))
	_ = viper.BindPFlag("server.session_ttl", f.Lookup("session-ttl"))
}

func runServe(_ *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := zap.NewAtomicLevelAt(parseLogLevel(cfg.Logging.Level))
	logger, err := buildLogger(cfg.Logging.File, level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	watchLogLevel(viper.GetViper(), level, logger)

	logger.Info("Starting salesforce-mcp",
		zap.String("version", version.Get()),
		zap.String("transport", cfg.Server.Transport),
		zap.Stringer("credentials", cfg.Salesforce.Credentials))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := salesforce.NewClient(cfg.Salesforce.Timeout, salesforce.WithLogger(logger.Named("salesforce")))
	a, err := newApp(ctx, cfg, logger, client)
	if err != nil {
		return fmt.Errorf("salesforce session: %w", err)
	}

	if cfg.Server.Transport == TransportStdio {
		return a.serveStdio(ctx)
	}
	return a.serveHTTP(ctx)
}

func (a *app) serveStdio(ctx context.Context) error {
	t := transport.NewStdioServerTransport(os.Stdin, os.Stdout)
	defer func() { _ = t.Close() }()

	err := a.mcp.Serve(ctx, t)
	if errors.Is(err, context.Canceled) {
		a.logger.Info("Shutdown complete")
		return nil
	}
	return err
}

func (a *app) serveHTTP(ctx context.Context) error {
	handler, release, err := a.httpHandler()
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(a.cfg.Server.Host, strconv.Itoa(a.cfg.Server.ListenPort()))
	transport.WarnIfNotLocalhost(a.logger, addr)

	// No WriteTimeout: event streams stay open for the life of a client.
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening", zap.String("addr", addr), zap.String("transport", a.cfg.Server.Transport))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		release()
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	release()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.logger.Info("Shutdown complete")
	return nil
}
