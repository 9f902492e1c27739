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
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/teradata-labs/salesforce-mcp/internal/version"
	"github.com/teradata-labs/salesforce-mcp/pkg/dispatch"
	"github.com/teradata-labs/salesforce-mcp/pkg/mcp/server"
	"github.com/teradata-labs/salesforce-mcp/pkg/mcp/transport"
	"github.com/teradata-labs/salesforce-mcp/pkg/observability"
	"github.com/teradata-labs/salesforce-mcp/pkg/salesforce"
	"github.com/teradata-labs/salesforce-mcp/pkg/schema"
	"github.com/teradata-labs/salesforce-mcp/pkg/session"
	"github.com/teradata-labs/salesforce-mcp/pkg/tools"
	"go.uber.org/zap"
)

const instructions = "Tools for a single Salesforce org. Use get_object_fields before " +
	"create_record or update_record to learn field names. All calls share one " +
	"authenticated session established at startup."

// app is the composition root shared by every transport.
type app struct {
	cfg      *Config
	logger   *zap.Logger
	metrics  *observability.Metrics
	sessions *session.Manager
	cache    *schema.Cache
	mcp      *server.MCPServer
	started  time.Time
}

// newApp establishes the Salesforce session and wires the MCP server. A
// failed session is fatal only when server.require_session is set.
func newApp(ctx context.Context, cfg *Config, logger *zap.Logger, connector salesforce.Connector) (*app, error) {
	metrics := observability.NewMetrics()

	sessions := session.NewManager(connector, logger.Named("session"))
	if err := sessions.Establish(ctx, cfg.Salesforce.Credentials); err != nil {
		if cfg.Server.RequireSession {
			return nil, err
		}
		logger.Warn("Serving without a Salesforce session; every tool call will fail", zap.Error(err))
	}
	metrics.SetSessionReady(sessions.IsReady())

	cache := schema.NewCache(sessions,
		schema.WithLogger(logger.Named("schema")),
		schema.WithMetrics(metrics))
	d := dispatch.New(tools.NewDefaultRegistry(cache), sessions,
		dispatch.WithLogger(logger.Named("dispatch")),
		dispatch.WithMetrics(metrics))

	mcp := server.NewMCPServer(ServiceName, version.Get(), logger.Named("mcp"),
		server.WithToolProvider(dispatch.NewToolProvider(d)),
		server.WithResourceProvider(server.EmptyCatalog{}),
		server.WithPromptProvider(server.EmptyCatalog{}),
		server.WithInstructions(instructions),
		server.WithMetrics(metrics))

	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		sessions: sessions,
		cache:    cache,
		mcp:      mcp,
		started:  time.Now(),
	}, nil
}

// httpHandler builds the router for the http and simple transports. The
// returned func releases transport state and must run before server shutdown
// so open event streams end.
func (a *app) httpHandler() (http.Handler, func(), error) {
	r := mux.NewRouter()
	r.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", a.handleStatus).Methods(http.MethodGet)
	r.Handle("/metrics", a.metrics.Handler()).Methods(http.MethodGet)

	streamable, err := transport.NewStreamableHTTPServer(transport.StreamableHTTPServerConfig{
		Handler:    a.mcp.HandleMessage,
		Logger:     a.logger.Named("http"),
		SessionTTL: a.cfg.Server.SessionTTL,
	})
	if err != nil {
		return nil, nil, err
	}

	if a.cfg.Server.Transport == TransportSimple {
		r.Handle("/", streamable)
		return r, streamable.Close, nil
	}

	sse, err := transport.NewSSEServer(transport.SSEServerConfig{
		Handler:     a.mcp.HandleMessage,
		Logger:      a.logger.Named("sse"),
		MessagePath: "/messages",
	})
	if err != nil {
		streamable.Close()
		return nil, nil, err
	}
	r.Handle("/mcp", streamable)
	r.Handle("/sse", sse.StreamHandler())
	r.Handle("/messages", sse.MessageHandler())

	return r, func() {
		sse.Close()
		streamable.Close()
	}, nil
}

func (a *app) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if !a.sessions.IsReady() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "error",
			"message": session.ErrConnectionNotEstablished.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type statusDocument struct {
	Service             string `json:"service"`
	Status              string `json:"status"`
	Version             string `json:"version"`
	SalesforceConnected bool   `json:"salesforce_connected"`
	CredentialMode      string `json:"credential_mode,omitempty"`
	InstanceURL         string `json:"instance_url,omitempty"`
	SchemaCacheEntries  int    `json:"schema_cache_entries"`
	UptimeSeconds       int64  `json:"uptime_seconds"`
}

func (a *app) handleStatus(w http.ResponseWriter, _ *http.Request) {
	doc := statusDocument{
		Service:             ServiceName,
		Status:              "running",
		Version:             version.Get(),
		SalesforceConnected: a.sessions.IsReady(),
		CredentialMode:      string(a.sessions.Mode()),
		SchemaCacheEntries:  a.cache.Len(),
		UptimeSeconds:       int64(time.Since(a.started).Seconds()),
	}
	if sess, err := a.sessions.Session(); err == nil {
		doc.InstanceURL = sess.InstanceURL()
	}
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
