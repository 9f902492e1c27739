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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teradata-labs/salesforce-mcp/pkg/mcp/protocol"
	"github.com/teradata-labs/salesforce-mcp/pkg/salesforce"
	"github.com/teradata-labs/salesforce-mcp/pkg/tools"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"
)

// newUpstream serves the few Salesforce REST resources the tests touch.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/services/data/v59.0/sobjects/Account/001xx", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Id":"001xx","Name":"Acme"}`))
	})
	mux.HandleFunc("/services/data/v59.0/limits", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`[{"errorCode":"INVALID_SESSION_ID"}]`))
			return
		}
		_, _ = w.Write([]byte(`{"DailyApiRequests":{"Max":15000,"Remaining":14999}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(transportName string, creds salesforce.Credentials) *Config {
	return &Config{
		Server: ServerConfig{
			Transport:       transportName,
			Host:            "127.0.0.1",
			SessionTTL:      time.Minute,
			ShutdownTimeout: time.Second,
		},
		Logging:    LoggingConfig{Level: "debug"},
		Salesforce: SalesforceConfig{Credentials: creds, Timeout: 5 * time.Second},
	}
}

func newTestApp(t *testing.T, cfg *Config) *app {
	t.Helper()
	logger := zaptest.NewLogger(t)
	a, err := newApp(context.Background(), cfg, logger, salesforce.NewClient(cfg.Salesforce.Timeout, salesforce.WithLogger(logger)))
	require.NoError(t, err)
	return a
}

func newTestRouter(t *testing.T, a *app) http.Handler {
	t.Helper()
	h, release, err := a.httpHandler()
	require.NoError(t, err)
	t.Cleanup(release)
	return h
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewApp_ServesWithoutSession(t *testing.T) {
	a := newTestApp(t, testConfig(TransportHTTP, salesforce.Credentials{}))
	assert.False(t, a.sessions.IsReady())
	h := newTestRouter(t, a)

	rec := do(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"error","message":"Salesforce connection not established"}`, rec.Body.String())

	rec = do(h, http.MethodPost, "/mcp", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp protocol.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)
	var listed protocol.ToolListResult
	require.NoError(t, json.Unmarshal(resp.Result, &listed))
	assert.Len(t, listed.Tools, 10)

	rec = do(h, http.MethodPost, "/mcp", `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"get_record","arguments":{"object_name":"Account","record_id":"001xx"}}}`)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ConnectionNotEstablished, resp.Error.Code)
}

func TestNewApp_RequireSession(t *testing.T) {
	cfg := testConfig(TransportStdio, salesforce.Credentials{})
	cfg.Server.RequireSession = true

	_, err := newApp(context.Background(), cfg, zaptest.NewLogger(t), salesforce.NewClient(time.Second))
	assert.ErrorIs(t, err, salesforce.ErrIncompleteCredentials)
}

func TestApp_HTTPRoundTrip(t *testing.T) {
	upstream := newUpstream(t)
	a := newTestApp(t, testConfig(TransportHTTP, salesforce.Credentials{AccessToken: "tok", InstanceURL: upstream.URL}))
	require.True(t, a.sessions.IsReady())
	h := newTestRouter(t, a)

	rec := do(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"service":"salesforce-mcp"`)

	rec = do(h, http.MethodPost, "/mcp", `{"jsonrpc":"2.0","id":"r1","method":"tools/call","params":{"name":"get_record","arguments":{"object_name":"Account","record_id":"001xx"}}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp protocol.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)
	assert.Equal(t, "r1", resp.ID.String())
	var result protocol.CallToolResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, "Account Record (JSON):\n{\"Id\":\"001xx\",\"Name\":\"Acme\"}", result.Content[0].Text)

	rec = do(h, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status statusDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.SalesforceConnected)
	assert.Equal(t, "token", status.CredentialMode)
	assert.Equal(t, upstream.URL, status.InstanceURL)

	rec = do(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "salesforce_mcp_session_ready 1")
	assert.Contains(t, rec.Body.String(), `salesforce_mcp_tool_calls_total{outcome="ok",tool="get_record"} 1`)

	rec = do(h, http.MethodPost, "/messages?session_id=unknown", `{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApp_SimpleTransport(t *testing.T) {
	a := newTestApp(t, testConfig(TransportSimple, salesforce.Credentials{}))
	h := newTestRouter(t, a)

	rec := do(h, http.MethodPost, "/", `{"jsonrpc":"2.0","id":5,"method":"ping"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":5,"result":{}}`, rec.Body.String())

	rec = do(h, http.MethodPost, "/mcp", `{"jsonrpc":"2.0","id":5,"method":"ping"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApp_ServeHTTPShutsDownOnCancel(t *testing.T) {
	cfg := testConfig(TransportHTTP, salesforce.Credentials{})
	cfg.Server.Port = freePort(t)
	a := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serveHTTP(ctx) }()

	healthURL := "http://" + net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.ListenPort())) + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(healthURL)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusServiceUnavailable
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serveHTTP did not return after cancel")
	}
}

func TestLoginCheck(t *testing.T) {
	upstream := newUpstream(t)
	client := salesforce.NewClient(5 * time.Second)

	var out bytes.Buffer
	err := loginCheck(context.Background(), client, salesforce.Credentials{AccessToken: "tok", InstanceURL: upstream.URL}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Credential mode: token")
	assert.Contains(t, out.String(), "Instance URL:    "+upstream.URL)
	assert.Contains(t, out.String(), "Login OK")

	out.Reset()
	err = loginCheck(context.Background(), client, salesforce.Credentials{AccessToken: "wrong", InstanceURL: upstream.URL}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API call failed")
	assert.Contains(t, err.Error(), "INVALID_SESSION_ID")

	err = loginCheck(context.Background(), client, salesforce.Credentials{}, &out)
	assert.ErrorIs(t, err, salesforce.ErrIncompleteCredentials)
}

func TestWriteCatalog(t *testing.T) {
	registry := tools.NewDefaultRegistry(nil)

	var buf bytes.Buffer
	require.NoError(t, writeCatalog(&buf, registry, "json"))
	var entries []catalogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 10)
	assert.Equal(t, "run_soql_query", entries[0].Name)
	assert.True(t, entries[0].ReadOnly)
	assert.Equal(t, "delete_record", entries[6].Name)
	assert.True(t, entries[6].Destructive)

	buf.Reset()
	require.NoError(t, writeCatalog(&buf, registry, "yaml"))
	var fromYAML []catalogEntry
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	require.Len(t, fromYAML, 10)
	assert.Equal(t, "restful", fromYAML[9].Name)
	assert.Equal(t, []interface{}{"path"}, fromYAML[9].InputSchema["required"])

	assert.Error(t, writeCatalog(&buf, registry, "xml"))
}

// freePort returns a port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}
