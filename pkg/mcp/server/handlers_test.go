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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teradata-labs/salesforce-mcp/pkg/mcp/protocol"
	"go.uber.org/zap/zaptest"
)

type errorProvider struct{}

func (errorProvider) ListTools(context.Context) ([]protocol.Tool, error) {
	return nil, errors.New("catalog unavailable")
}

func (errorProvider) CallTool(context.Context, string, map[string]interface{}) (*protocol.CallToolResult, error) {
	return nil, errors.New("unreachable")
}

func (errorProvider) ListResources(context.Context) ([]protocol.Resource, error) {
	return nil, nil
}

func (errorProvider) ListPrompts(context.Context) ([]protocol.Prompt, error) {
	return nil, nil
}

func TestToolsList(t *testing.T) {
	provider := &mockToolProvider{tools: []protocol.Tool{
		{Name: "get_record", Description: "Retrieves a specific record by ID", InputSchema: map[string]interface{}{"type": "object"}},
	}}
	s := NewMCPServer("test", "1.0.0", zaptest.NewLogger(t), WithToolProvider(provider))

	resp := roundTrip(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	require.Nil(t, resp.Error)

	var result protocol.ToolListResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Len(t, result.Tools, 1)
	assert.Equal(t, "get_record", result.Tools[0].Name)
}

func TestToolsList_ProviderError(t *testing.T) {
	s := NewMCPServer("test", "1.0.0", zaptest.NewLogger(t), WithToolProvider(errorProvider{}))

	resp := roundTrip(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.InternalError, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "catalog unavailable")
}

func TestToolsCall_Success(t *testing.T) {
	provider := &mockToolProvider{callFunc: func(_ context.Context, name string, args map[string]interface{}) (*protocol.CallToolResult, error) {
		assert.Equal(t, "get_record", name)
		assert.Equal(t, "Account", args["object_name"])
		return &protocol.CallToolResult{Content: []protocol.Content{protocol.NewTextContent("Account Record (JSON):\n{}")}}, nil
	}}
	s := NewMCPServer("test", "1.0.0", zaptest.NewLogger(t), WithToolProvider(provider))

	resp := roundTrip(t, s, `{"jsonrpc":"2.0","id":"1","method":"tools/call","params":{"name":"get_record","arguments":{"object_name":"Account"}}}`)
	require.Nil(t, resp.Error)

	var result protocol.CallToolResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)
}

func TestToolsCall_ProtocolErrorBecomesEnvelope(t *testing.T) {
	provider := &mockToolProvider{callFunc: func(context.Context, string, map[string]interface{}) (*protocol.CallToolResult, error) {
		return nil, protocol.NewError(protocol.InvalidParams, "Missing 'object_name' argument for tool create_record", map[string]string{"argument": "object_name"})
	}}
	s := NewMCPServer("test", "1.0.0", zaptest.NewLogger(t), WithToolProvider(provider))

	resp := roundTrip(t, s, `{"jsonrpc":"2.0","id":9,"method":"tools/call","params":{"name":"create_record","arguments":{"data":{"Name":"x"}}}}`)
	require.NotNil(t, resp.Error)
	assert.Empty(t, resp.Result)
	assert.Equal(t, "9", resp.ID.String())
	assert.Equal(t, protocol.InvalidParams, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "object_name")
	assert.JSONEq(t, `{"argument":"object_name"}`, string(resp.Error.Data))
}

func TestToolsCall_MalformedParams(t *testing.T) {
	s := NewMCPServer("test", "1.0.0", zaptest.NewLogger(t), WithToolProvider(&mockToolProvider{}))

	for _, raw := range []string{
		`{"jsonrpc":"2.0","id":1,"method":"tools/call"}`,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":[1,2]}`,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"arguments":{}}}`,
	} {
		resp := roundTrip(t, s, raw)
		require.NotNil(t, resp.Error, raw)
		assert.Equal(t, protocol.InvalidRequest, resp.Error.Code, raw)
	}
}

func TestEmptyCatalogs(t *testing.T) {
	s := NewMCPServer("test", "1.0.0", zaptest.NewLogger(t),
		WithResourceProvider(errorProvider{}),
		WithPromptProvider(EmptyCatalog{}),
	)

	resp := roundTrip(t, s, `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`)
	require.Nil(t, resp.Error)
	assert.JSONEq(t, `{"resources":[]}`, string(resp.Result))

	resp = roundTrip(t, s, `{"jsonrpc":"2.0","id":2,"method":"prompts/list"}`)
	require.Nil(t, resp.Error)
	assert.JSONEq(t, `{"prompts":[]}`, string(resp.Result))
}
