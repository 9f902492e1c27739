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

// Package transport carries JSON-RPC messages between MCP clients and the
// server: newline-delimited stdio, streamable HTTP and HTTP with an SSE
// push channel.
package transport

import (
	"context"
	"errors"
)

// ErrClosed is returned by a transport after Close.
var ErrClosed = errors.New("transport closed")

// Transport is a bidirectional message stream used by MCPServer.Serve.
type Transport interface {
	Send(ctx context.Context, message []byte) error

	// Receive blocks until the next message is available.
	Receive(ctx context.Context) ([]byte, error)

	Close() error
}

// MCPHandler processes one JSON-RPC message and returns the encoded
// response, or nil for notifications.
type MCPHandler func(ctx context.Context, msg []byte) ([]byte, error)

// maxBodyBytes bounds every HTTP request body.
const maxBodyBytes = 10 * 1024 * 1024
