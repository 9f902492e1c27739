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
	"fmt"

	"github.com/teradata-labs/salesforce-mcp/pkg/mcp/protocol"
)

func newToolsListHandler(provider ToolProvider) MethodHandler {
	return func(ctx context.Context, _ *protocol.RequestID, _ json.RawMessage) (interface{}, error) {
		tools, err := provider.ListTools(ctx)
		if err != nil {
			return nil, fmt.Errorf("list tools: %w", err)
		}
		return protocol.ToolListResult{Tools: tools}, nil
	}
}

// newToolsCallHandler decodes the call envelope. Provider errors pass through
// unchanged so their JSON-RPC code reaches the client.
func newToolsCallHandler(provider ToolProvider) MethodHandler {
	return func(ctx context.Context, _ *protocol.RequestID, params json.RawMessage) (interface{}, error) {
		if len(params) == 0 {
			return nil, protocol.NewError(protocol.InvalidRequest, "tools/call requires params", nil)
		}
		var p protocol.CallToolParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, protocol.NewError(protocol.InvalidRequest, fmt.Sprintf("invalid tools/call params: %v", err), nil)
		}
		if p.Name == "" {
			return nil, protocol.NewError(protocol.InvalidRequest, "tools/call requires a tool name", nil)
		}
		return provider.CallTool(ctx, p.Name, p.Arguments)
	}
}

func newResourcesListHandler(provider ResourceProvider) MethodHandler {
	return func(ctx context.Context, _ *protocol.RequestID, _ json.RawMessage) (interface{}, error) {
		resources, err := provider.ListResources(ctx)
		if err != nil {
			return nil, fmt.Errorf("list resources: %w", err)
		}
		if resources == nil {
			resources = []protocol.Resource{}
		}
		return protocol.ResourceListResult{Resources: resources}, nil
	}
}

func newPromptsListHandler(provider PromptProvider) MethodHandler {
	return func(ctx context.Context, _ *protocol.RequestID, _ json.RawMessage) (interface{}, error) {
		prompts, err := provider.ListPrompts(ctx)
		if err != nil {
			return nil, fmt.Errorf("list prompts: %w", err)
		}
		if prompts == nil {
			prompts = []protocol.Prompt{}
		}
		return protocol.PromptListResult{Prompts: prompts}, nil
	}
}
