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
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/r3labs/sse/v2"
	"go.uber.org/zap"
)

// SSE event names of the legacy HTTP+SSE binding.
const (
	EventEndpoint = "endpoint"
	EventMessage  = "message"
)

// SSEServerConfig configures an SSEServer.
type SSEServerConfig struct {
	Handler MCPHandler
	Logger  *zap.Logger
	// MessagePath is advertised to clients in the endpoint event.
	MessagePath string
}

// SSEServer implements the HTTP+SSE binding: a client opens a GET event
// stream, receives an "endpoint" event naming its message URL, POSTs
// JSON-RPC messages there and receives each response as a "message" event.
type SSEServer struct {
	handler     MCPHandler
	logger      *zap.Logger
	messagePath string
	events      *sse.Server

	mu      sync.RWMutex
	streams map[string]struct{}
}

// NewSSEServer creates the binding.
func NewSSEServer(config SSEServerConfig) (*SSEServer, error) {
	if config.Handler == nil {
		return nil, fmt.Errorf("handler is required")
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.MessagePath == "" {
		config.MessagePath = "/messages"
	}

	s := &SSEServer{
		handler:     config.Handler,
		logger:      config.Logger,
		messagePath: config.MessagePath,
		streams:     make(map[string]struct{}),
	}
	s.events = sse.NewWithCallback(s.onSubscribe, nil)
	s.events.AutoReplay = false
	s.events.AutoStream = false
	return s, nil
}

// onSubscribe announces the message endpoint once the stream has a reader.
func (s *SSEServer) onSubscribe(streamID string, _ *sse.Subscriber) {
	endpoint := s.messagePath + "?" + url.Values{"session_id": {streamID}}.Encode()
	s.events.Publish(streamID, &sse.Event{
		Event: []byte(EventEndpoint),
		Data:  []byte(endpoint),
	})
}

// StreamHandler serves GET requests opening an event stream.
func (s *SSEServer) StreamHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		id := uuid.New().String()
		s.events.CreateStream(id)
		s.mu.Lock()
		s.streams[id] = struct{}{}
		s.mu.Unlock()
		s.logger.Info("SSE stream opened", zap.String("session_id", id), zap.String("remote", r.RemoteAddr))

		defer func() {
			s.mu.Lock()
			delete(s.streams, id)
			s.mu.Unlock()
			s.events.RemoveStream(id)
			s.logger.Info("SSE stream closed", zap.String("session_id", id))
		}()

		req := r.Clone(r.Context())
		q := req.URL.Query()
		q.Set("stream", id)
		req.URL.RawQuery = q.Encode()
		s.events.ServeHTTP(w, req)
	})
}

// MessageHandler serves POST requests carrying one JSON-RPC message for the
// stream named by the session_id query parameter. The response, if any, is
// pushed on that stream; the POST itself is answered with 202.
func (s *SSEServer) MessageHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		id := r.URL.Query().Get("session_id")
		if id == "" {
			http.Error(w, "session_id is required", http.StatusBadRequest)
			return
		}
		if !s.hasStream(id) {
			http.Error(w, "Could not find session", http.StatusNotFound)
			return
		}

		body, ok := readJSONBody(w, r, s.logger)
		if !ok {
			return
		}

		resp, err := s.handler(r.Context(), body)
		if err != nil {
			s.logger.Error("MCP handler failed", zap.String("session_id", id), zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if resp != nil {
			s.events.Publish(id, &sse.Event{Event: []byte(EventMessage), Data: resp})
		}

		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("Accepted"))
	})
}

func (s *SSEServer) hasStream(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.streams[id]
	return ok
}

// StreamCount returns the number of open event streams.
func (s *SSEServer) StreamCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.streams)
}

// Close ends every open stream.
func (s *SSEServer) Close() {
	s.events.Close()
}
