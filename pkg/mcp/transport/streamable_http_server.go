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

package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSessionTTL is how long an idle Mcp-Session-Id stays valid.
const DefaultSessionTTL = 30 * time.Minute

// SessionHeader carries the streamable HTTP session id.
const SessionHeader = "Mcp-Session-Id"

// StreamableHTTPServer is the POST side of the MCP streamable HTTP transport.
// Every POST carries one JSON-RPC message and is answered inline. A session
// id is issued on initialize; requests naming an unknown session get 404.
// Requests without a session header are served statelessly.
type StreamableHTTPServer struct {
	handler    MCPHandler
	logger     *zap.Logger
	sessionTTL time.Duration

	mu       sync.RWMutex
	sessions map[string]time.Time // id -> last activity

	stopCleanup chan struct{}
	cleanupOnce sync.Once
}

// StreamableHTTPServerConfig configures the HTTP server transport.
type StreamableHTTPServerConfig struct {
	Handler MCPHandler
	Logger  *zap.Logger
	// SessionTTL expires idle sessions; zero disables expiry.
	SessionTTL time.Duration
}

// NewStreamableHTTPServer creates the handler.
func NewStreamableHTTPServer(config StreamableHTTPServerConfig) (*StreamableHTTPServer, error) {
	if config.Handler == nil {
		return nil, fmt.Errorf("handler is required")
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	s := &StreamableHTTPServer{
		handler:     config.Handler,
		logger:      config.Logger,
		sessionTTL:  max(config.SessionTTL, 0),
		sessions:    make(map[string]time.Time),
		stopCleanup: make(chan struct{}),
	}
	if s.sessionTTL > 0 {
		s.startCleanup()
	}
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *StreamableHTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handlePost(w, r)
	case http.MethodDelete:
		s.handleDelete(w, r)
	default:
		w.Header().Set("Allow", "POST, DELETE")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *StreamableHTTPServer) handlePost(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSONBody(w, r, s.logger)
	if !ok {
		return
	}

	sessionID := r.Header.Get(SessionHeader)
	if sessionID != "" && !s.touch(sessionID) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	resp, err := s.handler(r.Context(), body)
	if err != nil {
		s.logger.Error("MCP handler failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if sessionID == "" && isInitializeRequest(body) {
		sessionID = uuid.New().String()
		s.mu.Lock()
		s.sessions[sessionID] = time.Now()
		s.mu.Unlock()
		s.logger.Info("Created MCP session", zap.String("session_id", sessionID))
	}
	if sessionID != "" {
		w.Header().Set(SessionHeader, sessionID)
	}

	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp)
}

func (s *StreamableHTTPServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		http.Error(w, SessionHeader+" header required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	_, exists := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	s.logger.Info("MCP session terminated", zap.String("session_id", sessionID))
	w.WriteHeader(http.StatusOK)
}

// touch refreshes a session and reports whether it exists.
func (s *StreamableHTTPServer) touch(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	s.sessions[id] = time.Now()
	return true
}

// SessionCount returns the number of live sessions.
func (s *StreamableHTTPServer) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops session expiry. Safe to call more than once.
func (s *StreamableHTTPServer) Close() {
	s.cleanupOnce.Do(func() {
		close(s.stopCleanup)
	})
}

func (s *StreamableHTTPServer) startCleanup() {
	interval := max(s.sessionTTL/2, time.Second)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCleanup:
				return
			case now := <-ticker.C:
				s.expireSessions(now)
			}
		}
	}()
}

func (s *StreamableHTTPServer) expireSessions(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, last := range s.sessions {
		if now.Sub(last) > s.sessionTTL {
			delete(s.sessions, id)
			s.logger.Info("MCP session expired", zap.String("session_id", id))
		}
	}
}

func isInitializeRequest(body []byte) bool {
	var req struct {
		Method string `json:"method"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return false
	}
	return req.Method == "initialize"
}

// readJSONBody enforces the content type and size limit and rejects empty
// bodies. It writes the HTTP error itself and returns false on failure.
func readJSONBody(w http.ResponseWriter, r *http.Request, logger *zap.Logger) ([]byte, bool) {
	defer func() { _ = r.Body.Close() }()

	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, _ := mime.ParseMediaType(ct)
		if mediaType != "application/json" {
			http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
			return nil, false
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		logger.Error("Failed to read request body", zap.Error(err))
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return nil, false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		http.Error(w, "Empty request body", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}
