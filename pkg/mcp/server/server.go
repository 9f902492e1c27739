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

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sync"
	"time"

	"github.com/teradata-labs/salesforce-mcp/pkg/mcp/protocol"
	"github.com/teradata-labs/salesforce-mcp/pkg/mcp/transport"
	"github.com/teradata-labs/salesforce-mcp/pkg/observability"
	"go.uber.org/zap"
)

// MethodHandler processes one JSON-RPC method call. id is nil for
// notifications.
type MethodHandler func(ctx context.Context, id *protocol.RequestID, params json.RawMessage) (interface{}, error)

// MCPServer decodes JSON-RPC messages and routes them to method handlers.
// It holds no per-connection state and may serve several transports at once.
type MCPServer struct {
	info         protocol.Implementation
	instructions string
	capabilities protocol.ServerCapabilities
	handlers     map[string]MethodHandler
	logger       *zap.Logger
	metrics      *observability.Metrics

	mu         sync.RWMutex
	clientInfo *protocol.Implementation
}

// Option configures an MCPServer.
type Option func(*MCPServer)

// WithToolProvider serves tools/list and tools/call from p.
func WithToolProvider(p ToolProvider) Option {
	return func(s *MCPServer) {
		s.capabilities.Tools = &protocol.ToolsCapability{}
		s.RegisterHandler(protocol.MethodToolsList, newToolsListHandler(p))
		s.RegisterHandler(protocol.MethodToolsCall, newToolsCallHandler(p))
	}
}

// WithResourceProvider serves resources/list from p.
func WithResourceProvider(p ResourceProvider) Option {
	return func(s *MCPServer) {
		s.capabilities.Resources = &protocol.ResourcesCapability{}
		s.RegisterHandler(protocol.MethodResourcesList, newResourcesListHandler(p))
	}
}

// WithPromptProvider serves prompts/list from p.
func WithPromptProvider(p PromptProvider) Option {
	return func(s *MCPServer) {
		s.capabilities.Prompts = &protocol.PromptsCapability{}
		s.RegisterHandler(protocol.MethodPromptsList, newPromptsListHandler(p))
	}
}

// WithInstructions sets the instructions returned by initialize.
func WithInstructions(text string) Option {
	return func(s *MCPServer) {
		s.instructions = text
	}
}

// WithMetrics counts handled messages per method.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *MCPServer) {
		s.metrics = m
	}
}

// NewMCPServer creates a server answering initialize, ping and the
// initialized notification, plus whatever the options register.
func NewMCPServer(name, version string, logger *zap.Logger, opts ...Option) *MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &MCPServer{
		info:     protocol.Implementation{Name: name, Version: version},
		handlers: make(map[string]MethodHandler),
		logger:   logger,
	}

	s.RegisterHandler(protocol.MethodInitialize, s.handleInitialize)
	s.RegisterHandler(protocol.MethodInitialized, s.handleInitialized)
	s.RegisterHandler(protocol.MethodPing, s.handlePing)

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Info returns the server identity.
func (s *MCPServer) Info() protocol.Implementation {
	return s.info
}

// RegisterHandler registers or replaces the handler of method.
func (s *MCPServer) RegisterHandler(method string, handler MethodHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = handler
}

// HandleMessage processes one JSON-RPC message and returns the encoded
// response, or nil for notifications. Every failure, including a panicking
// handler, is answered with an error envelope.
func (s *MCPServer) HandleMessage(ctx context.Context, msg []byte) ([]byte, error) {
	if !json.Valid(msg) {
		s.logger.Debug("Rejecting unparseable message", zap.Int("bytes", len(msg)))
		return marshalResponse(nil, nil, protocol.NewError(protocol.ParseError, "Parse error: invalid JSON", nil))
	}
	var req protocol.Request
	if err := json.Unmarshal(msg, &req); err != nil {
		s.logger.Debug("Rejecting malformed request", zap.Error(err))
		return marshalResponse(nil, nil, protocol.NewError(protocol.InvalidRequest, "Invalid request: "+err.Error(), nil))
	}

	if err := protocol.ValidateRequest(&req); err != nil {
		return marshalResponse(req.ID, nil, protocol.NewError(protocol.InvalidRequest, "Invalid request: "+err.Error(), nil))
	}
	s.mu.RLock()
	handler, ok := s.handlers[req.Method]
	s.mu.RUnlock()

	if ok {
		s.metrics.RPCRequest(req.Method)
	} else {
		s.metrics.RPCRequest(observability.UnknownLabel)
	}

	if !ok {
		if req.IsNotification() {
			return nil, nil
		}
		return marshalResponse(req.ID, nil, protocol.NewError(protocol.MethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), nil))
	}

	start := time.Now()
	result, err := s.call(protocol.ContextWithRequestID(ctx, req.ID), handler, &req)
	duration := time.Since(start)

	if err != nil {
		s.logger.Warn("Request failed",
			zap.String("method", req.Method),
			zap.Stringer("id", req.ID),
			zap.Duration("duration", duration),
			zap.Error(err))
		if req.IsNotification() {
			return nil, nil
		}
		var rpcErr *protocol.Error
		if errors.As(err, &rpcErr) {
			return marshalResponse(req.ID, nil, rpcErr)
		}
		return marshalResponse(req.ID, nil, protocol.NewError(protocol.InternalError, err.Error(), nil))
	}

	s.logger.Debug("Request handled",
		zap.String("method", req.Method),
		zap.Stringer("id", req.ID),
		zap.Duration("duration", duration))

	if req.IsNotification() {
		return nil, nil
	}
	return marshalResponse(req.ID, result, nil)
}

func (s *MCPServer) call(ctx context.Context, handler MethodHandler, req *protocol.Request) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Handler panicked",
				zap.String("method", req.Method),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("internal error handling %s", req.Method)
		}
	}()
	return handler(ctx, req.ID, req.Params)
}

// Serve reads messages from t and answers them one at a time until ctx is
// cancelled or the transport fails.
func (s *MCPServer) Serve(ctx context.Context, t transport.Transport) error {
	s.logger.Info("MCP server serving", zap.String("name", s.info.Name), zap.String("version", s.info.Version))

	for {
		msg, err := t.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("MCP server stopping (context cancelled)")
				return ctx.Err()
			}
			if errors.Is(err, transport.ErrClosed) || errors.Is(err, io.EOF) {
				s.logger.Info("MCP server stopping (input closed)")
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		}

		resp, err := s.HandleMessage(ctx, msg)
		if err != nil {
			s.logger.Error("Failed to encode response", zap.Error(err))
			continue
		}
		if resp == nil {
			continue
		}
		if err := t.Send(ctx, resp); err != nil {
			return fmt.Errorf("send: %w", err)
		}
	}
}

func (s *MCPServer) handleInitialize(_ context.Context, _ *protocol.RequestID, params json.RawMessage) (interface{}, error) {
	var p protocol.InitializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, protocol.NewError(protocol.InvalidParams, fmt.Sprintf("invalid initialize params: %v", err), nil)
		}
	}

	if p.ProtocolVersion != "" && p.ProtocolVersion != protocol.ProtocolVersion {
		s.logger.Info("Client requested a different protocol version",
			zap.String("client_version", p.ProtocolVersion),
			zap.String("server_version", protocol.ProtocolVersion))
	}
	if p.ClientInfo.Name != "" {
		s.mu.Lock()
		info := p.ClientInfo
		s.clientInfo = &info
		s.mu.Unlock()
		s.logger.Info("Client connected",
			zap.String("client_name", p.ClientInfo.Name),
			zap.String("client_version", p.ClientInfo.Version))
	}

	return protocol.InitializeResult{
		ProtocolVersion: protocol.ProtocolVersion,
		Capabilities:    s.capabilities,
		ServerInfo:      s.info,
		Instructions:    s.instructions,
	}, nil
}

func (s *MCPServer) handleInitialized(context.Context, *protocol.RequestID, json.RawMessage) (interface{}, error) {
	s.logger.Debug("Client initialized")
	return nil, nil
}

func (s *MCPServer) handlePing(context.Context, *protocol.RequestID, json.RawMessage) (interface{}, error) {
	return struct{}{}, nil
}

// ClientInfo returns the last client seen in initialize, or nil.
func (s *MCPServer) ClientInfo() *protocol.Implementation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientInfo
}

func marshalResponse(id *protocol.RequestID, result interface{}, rpcErr *protocol.Error) ([]byte, error) {
	if rpcErr != nil {
		return json.Marshal(protocol.NewErrorResponse(id, rpcErr))
	}
	resp, err := protocol.NewResultResponse(id, result)
	if err != nil {
		return nil, err
	}
	return json.Marshal(resp)
}
