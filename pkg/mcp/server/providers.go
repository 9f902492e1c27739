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

// Package server is the MCP JSON-RPC method router. Domain behavior is
// plugged in through the provider interfaces.
package server

import (
	"context"

	"github.com/teradata-labs/salesforce-mcp/pkg/mcp/protocol"
)

// ToolProvider supplies tools to the MCP server.
type ToolProvider interface {
	ListTools(ctx context.Context) ([]protocol.Tool, error)

	// CallTool invokes a tool. A *protocol.Error return is sent to the client
	// as-is; any other error becomes an internal error.
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*protocol.CallToolResult, error)
}

// ResourceProvider supplies resources to the MCP server.
type ResourceProvider interface {
	ListResources(ctx context.Context) ([]protocol.Resource, error)
}

// PromptProvider supplies prompts to the MCP server.
type PromptProvider interface {
	ListPrompts(ctx context.Context) ([]protocol.Prompt, error)
}

// EmptyCatalog answers resources/list and prompts/list with empty lists.
type EmptyCatalog struct{}

func (EmptyCatalog) ListResources(context.Context) ([]protocol.Resource, error) {
	return []protocol.Resource{}, nil
}

func (EmptyCatalog) ListPrompts(context.Context) ([]protocol.Prompt, error) {
	return []protocol.Prompt{}, nil
}
