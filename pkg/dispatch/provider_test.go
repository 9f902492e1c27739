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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teradata-labs/salesforce-mcp/pkg/mcp/protocol"
	"github.com/teradata-labs/salesforce-mcp/pkg/mcp/server"
	"github.com/teradata-labs/salesforce-mcp/pkg/session"
	"go.uber.org/zap/zaptest"
)

func newTestServer(t *testing.T, sessions SessionSource) *server.MCPServer {
	t.Helper()
	d, _ := newTestDispatcher(t, sessions)
	return server.NewMCPServer("salesforce-mcp", "test", zaptest.NewLogger(t),
		server.WithToolProvider(NewToolProvider(d)),
		server.WithResourceProvider(server.EmptyCatalog{}),
		server.WithPromptProvider(server.EmptyCatalog{}))
}

func call(t *testing.T, s *server.MCPServer, raw string) protocol.Response {
	t.Helper()
	out, err := s.HandleMessage(context.Background(), []byte(raw))
	require.NoError(t, err)
	require.NotNil(t, out)
	var resp protocol.Response
	require.NoError(t, json.Unmarshal(out, &resp))
	return resp
}

func TestToolProvider_GetRecordRoundTrip(t *testing.T) {
	fake := &fakeSession{}
	s := newTestServer(t, readySource{sess: fake})

	resp := call(t, s, `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"get_record","arguments":{"object_name":"Account","record_id":"001xx"}}}`)
	require.Nil(t, resp.Error)
	assert.Equal(t, "7", resp.ID.String())

	var result protocol.CallToolResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)
	assert.Equal(t, "Account Record (JSON):\n{\"Id\":\"001xx\",\"Name\":\"Acme\"}", result.Content[0].Text)
	assert.False(t, result.IsError)
	assert.Equal(t, map[string]interface{}{"Id": "001xx", "Name": "Acme"}, result.StructuredContent)
	assert.Equal(t, []string{"get Account 001xx"}, fake.Calls())
}

func TestToolProvider_MissingArgumentMakesNoUpstreamCall(t *testing.T) {
	fake := &fakeSession{}
	s := newTestServer(t, readySource{sess: fake})

	resp := call(t, s, `{"jsonrpc":"2.0","id":"c-1","method":"tools/call","params":{"name":"create_record","arguments":{"data":{"Name":"Acme"}}}}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "c-1", resp.ID.String())
	assert.Equal(t, protocol.InvalidParams, resp.Error.Code)
	assert.Equal(t, "Missing 'object_name' argument for tool create_record", resp.Error.Message)
	assert.JSONEq(t, `{"kind":"missing_argument","argument":"object_name"}`, string(resp.Error.Data))
	assert.Empty(t, fake.Calls())
}

func TestToolProvider_NotReadyStillLists(t *testing.T) {
	s := newTestServer(t, session.NewManager(nil, nil))

	resp := call(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	require.Nil(t, resp.Error)
	var listed protocol.ToolListResult
	require.NoError(t, json.Unmarshal(resp.Result, &listed))
	require.Len(t, listed.Tools, 10)
	assert.Equal(t, "run_soql_query", listed.Tools[0].Name)
	require.NotNil(t, listed.Tools[0].Annotations)
	assert.True(t, *listed.Tools[0].Annotations.ReadOnlyHint)
	assert.True(t, *listed.Tools[6].Annotations.DestructiveHint)

	resp = call(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"run_soql_query","arguments":{"query":"SELECT Id FROM Account"}}}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ConnectionNotEstablished, resp.Error.Code)
	assert.Equal(t, "Salesforce connection not established", resp.Error.Message)
}

func TestToolProvider_UnknownTool(t *testing.T) {
	s := newTestServer(t, readySource{sess: &fakeSession{}})

	resp := call(t, s, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"nope"}}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.MethodNotFound, resp.Error.Code)
	assert.Equal(t, "Unknown tool: nope", resp.Error.Message)
}

func TestToolProvider_RequestIDReachesOutcome(t *testing.T) {
	d, _ := newTestDispatcher(t, readySource{sess: &fakeSession{}})
	p := NewToolProvider(d)

	ctx := protocol.ContextWithRequestID(context.Background(), protocol.NewStringRequestID("abc"))
	res, err := p.CallTool(ctx, "delete_record", map[string]interface{}{"object_name": "Lead", "record_id": "00Q1"})
	require.NoError(t, err)
	assert.Equal(t, "Delete Lead Record Result: 204", res.Content[0].Text)
	assert.Nil(t, res.StructuredContent)
}
