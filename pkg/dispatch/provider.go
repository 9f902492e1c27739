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

package dispatch

import (
	"context"

	"github.com/teradata-labs/salesforce-mcp/pkg/mcp/protocol"
)

// ToolProvider exposes a Dispatcher to the MCP server.
type ToolProvider struct {
	dispatcher *Dispatcher
}

// NewToolProvider wraps d.
func NewToolProvider(d *Dispatcher) *ToolProvider {
	return &ToolProvider{dispatcher: d}
}

// ListTools answers from the static registry.
func (p *ToolProvider) ListTools(_ context.Context) ([]protocol.Tool, error) {
	defs := p.dispatcher.Registry().List()
	out := make([]protocol.Tool, 0, len(defs))
	for _, d := range defs {
		readOnly := d.ReadOnly
		destructive := d.Destructive
		out = append(out, protocol.Tool{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.InputSchema(),
			Annotations: &protocol.ToolAnnotations{
				ReadOnlyHint:    &readOnly,
				DestructiveHint: &destructive,
			},
		})
	}
	return out, nil
}

// CallTool dispatches the call. Taxonomy errors are returned as
// *protocol.Error so the server answers with an error envelope.
func (p *ToolProvider) CallTool(ctx context.Context, name string, args map[string]interface{}) (*protocol.CallToolResult, error) {
	out := p.dispatcher.Dispatch(ctx, Request{
		ID:        protocol.RequestIDFromContext(ctx),
		Tool:      name,
		Arguments: args,
	})
	if !out.OK() {
		return nil, out.Err.RPCError()
	}
	return &protocol.CallToolResult{
		Content:           []protocol.Content{protocol.NewTextContent(out.Result.Text)},
		StructuredContent: out.Result.Structured,
	}, nil
}
