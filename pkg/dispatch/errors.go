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
	"fmt"

	"github.com/teradata-labs/salesforce-mcp/pkg/mcp/protocol"
)

// Kind classifies a failed invocation.
type Kind string

const (
	KindUnknownTool              Kind = "unknown_tool"
	KindMissingArgument          Kind = "missing_argument"
	KindInvalidArgument          Kind = "invalid_argument"
	KindConnectionNotEstablished Kind = "connection_not_established"
	KindUpstream                 Kind = "upstream_error"
	KindMalformedRequest         Kind = "malformed_request"
)

// Code returns the JSON-RPC error code of the kind.
func (k Kind) Code() int {
	switch k {
	case KindUnknownTool:
		return protocol.MethodNotFound
	case KindMissingArgument:
		return protocol.InvalidParams
	case KindInvalidArgument:
		return protocol.InvalidArgument
	case KindConnectionNotEstablished:
		return protocol.ConnectionNotEstablished
	case KindMalformedRequest:
		return protocol.InvalidRequest
	default:
		return protocol.InternalError
	}
}

// Error is the error variant of an Outcome. Subject names the offending tool
// or argument where there is one.
type Error struct {
	Kind    Kind
	Subject string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// RPCError converts the error into its wire form.
func (e *Error) RPCError() *protocol.Error {
	data := map[string]string{"kind": string(e.Kind)}
	switch e.Kind {
	case KindUnknownTool:
		data["tool"] = e.Subject
	case KindMissingArgument, KindInvalidArgument:
		if e.Subject != "" {
			data["argument"] = e.Subject
		}
	}
	return protocol.NewError(e.Kind.Code(), e.Message, data)
}

func unknownTool(name string) *Error {
	return &Error{Kind: KindUnknownTool, Subject: name, Message: fmt.Sprintf("Unknown tool: %s", name)}
}

func missingArgument(tool, arg string) *Error {
	return &Error{
		Kind:    KindMissingArgument,
		Subject: arg,
		Message: fmt.Sprintf("Missing '%s' argument for tool %s", arg, tool),
	}
}

func invalidArgument(tool string, cause error) *Error {
	return &Error{
		Kind:    KindInvalidArgument,
		Message: fmt.Sprintf("Invalid arguments for tool %s: %v", tool, cause),
		Cause:   cause,
	}
}

func notConnected(cause error) *Error {
	return &Error{
		Kind:    KindConnectionNotEstablished,
		Message: "Salesforce connection not established",
		Cause:   cause,
	}
}

func upstream(cause error) *Error {
	return &Error{Kind: KindUpstream, Message: cause.Error(), Cause: cause}
}

// Malformed builds a MalformedRequest error for envelope problems found
// before a tool could be named.
func Malformed(message string) *Error {
	return &Error{Kind: KindMalformedRequest, Message: message}
}
