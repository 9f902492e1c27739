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

// Package protocol holds the JSON-RPC 2.0 envelope and the MCP message types
// spoken by the salesforce-mcp server.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// JSONRPCVersion is the only accepted value of the "jsonrpc" member.
const JSONRPCVersion = "2.0"

// Request is a decoded JSON-RPC 2.0 request or notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *RequestID      `json:"id,omitempty"` // nil for notifications
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request carries no id.
func (r *Request) IsNotification() bool {
	return r.ID == nil
}

// RequestID is the opaque correlation token of a request: a string or a number.
// It is echoed back unchanged on the response.
type RequestID struct {
	Str *string
	Num *int64
}

// MarshalJSON implements json.Marshaler.
func (r *RequestID) MarshalJSON() ([]byte, error) {
	switch {
	case r == nil:
		return []byte("null"), nil
	case r.Str != nil:
		return json.Marshal(*r.Str)
	case r.Num != nil:
		return []byte(strconv.FormatInt(*r.Num, 10)), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RequestID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		r.Str = &s
		return nil
	}

	var n int64
	if err := json.Unmarshal(trimmed, &n); err == nil {
		r.Num = &n
		return nil
	}

	return fmt.Errorf("invalid request id: %s", data)
}

// String renders the id for logs.
func (r *RequestID) String() string {
	switch {
	case r == nil:
		return "null"
	case r.Str != nil:
		return *r.Str
	case r.Num != nil:
		return strconv.FormatInt(*r.Num, 10)
	default:
		return "null"
	}
}

// NewStringRequestID creates a string RequestID.
func NewStringRequestID(s string) *RequestID {
	return &RequestID{Str: &s}
}

// NewNumericRequestID creates a numeric RequestID.
func NewNumericRequestID(n int64) *RequestID {
	return &RequestID{Num: &n}
}

// Response is a JSON-RPC 2.0 response. Exactly one of Result and Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *RequestID      `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// NewResultResponse marshals result into a success envelope for id.
func NewResultResponse(id *RequestID, result interface{}) (*Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Result: raw}, nil
}

// NewErrorResponse builds an error envelope for id.
func NewErrorResponse(id *RequestID, e *Error) *Response {
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Error: e}
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Standard JSON-RPC codes plus the server-defined range used for the tool
// error taxonomy.
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603

	ConnectionNotEstablished = -32001
	InvalidArgument          = -32002
)

// NewError creates an Error, attaching data when it marshals cleanly.
func NewError(code int, message string, data interface{}) *Error {
	e := &Error{Code: code, Message: message}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			e.Data = raw
		}
	}
	return e
}

func (e *Error) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("JSON-RPC error %d: %s (data: %s)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("JSON-RPC error %d: %s", e.Code, e.Message)
}
