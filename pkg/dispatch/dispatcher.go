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

// Package dispatch turns one tool invocation into at most one upstream call.
//
// Every invocation runs the same steps: registry lookup, required argument
// check in declaration order, argument schema check, session readiness, then
// the tool handler. The first failing step decides the error kind.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teradata-labs/salesforce-mcp/pkg/mcp/protocol"
	"github.com/teradata-labs/salesforce-mcp/pkg/observability"
	"github.com/teradata-labs/salesforce-mcp/pkg/salesforce"
	"github.com/teradata-labs/salesforce-mcp/pkg/session"
	"github.com/teradata-labs/salesforce-mcp/pkg/tools"
	"go.uber.org/zap"
)

// SessionSource hands out the current upstream session, or an error when
// none is established.
type SessionSource interface {
	Session() (salesforce.Session, error)
}

// Request is one decoded tool invocation.
type Request struct {
	ID        *protocol.RequestID
	Tool      string
	Arguments map[string]interface{}
}

// Outcome carries exactly one of Result or Err.
type Outcome struct {
	ID     *protocol.RequestID
	Tool   string
	Result *tools.Result
	Err    *Error
}

// OK reports whether the invocation succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Dispatcher validates and runs tool invocations.
type Dispatcher struct {
	registry *tools.Registry
	sessions SessionSource
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMetrics records per-tool outcomes and latency.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// New creates a Dispatcher over registry and sessions.
func New(registry *tools.Registry, sessions SessionSource, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		sessions: sessions,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the tool catalog. Listing it never touches the session.
func (d *Dispatcher) Registry() *tools.Registry {
	return d.registry
}

// Dispatch runs one invocation. It never panics and never returns both a
// result and an error.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Outcome {
	start := time.Now()
	out := Outcome{ID: req.ID, Tool: req.Tool}

	res, derr := d.run(ctx, req)
	if derr != nil {
		out.Err = derr
	} else {
		out.Result = &res
	}

	label := "ok"
	if derr != nil {
		label = string(derr.Kind)
	}
	tool := req.Tool
	if derr != nil && derr.Kind == KindUnknownTool {
		tool = observability.UnknownLabel
	}
	d.metrics.ToolCall(tool, label, time.Since(start))

	fields := []zap.Field{
		zap.String("tool", req.Tool),
		zap.Stringer("id", req.ID),
		zap.Duration("duration", time.Since(start)),
	}
	if derr != nil {
		d.logger.Warn("Tool call failed", append(fields, zap.String("kind", string(derr.Kind)), zap.Error(derr))...)
	} else {
		d.logger.Debug("Tool call succeeded", fields...)
	}
	return out
}

func (d *Dispatcher) run(ctx context.Context, req Request) (tools.Result, *Error) {
	def, ok := d.registry.Get(req.Tool)
	if !ok {
		return tools.Result{}, unknownTool(req.Tool)
	}

	args := present(req.Arguments)
	for _, name := range def.Required() {
		if _, ok := args[name]; !ok {
			return tools.Result{}, missingArgument(def.Name, name)
		}
	}

	if err := protocol.ValidateArguments(def.InputSchema(), args); err != nil {
		return tools.Result{}, invalidArgument(def.Name, err)
	}

	sess, err := d.sessions.Session()
	if err != nil {
		return tools.Result{}, notConnected(err)
	}

	res, err := d.invoke(ctx, def, sess, def.WithDefaults(args))
	if err != nil {
		if errors.Is(err, session.ErrConnectionNotEstablished) {
			return tools.Result{}, notConnected(err)
		}
		return tools.Result{}, upstream(err)
	}
	return res, nil
}

// invoke calls the handler, turning a panic into an error.
func (d *Dispatcher) invoke(ctx context.Context, def tools.Definition, sess salesforce.Session, args tools.Args) (res tools.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Tool handler panicked", zap.String("tool", def.Name), zap.Any("panic", r))
			err = fmt.Errorf("tool %s failed: %v", def.Name, r)
		}
	}()
	return def.Handler(ctx, sess, args)
}

// present drops arguments whose value counts as absent: null, the empty
// string, and empty objects or arrays.
func present(in map[string]interface{}) tools.Args {
	out := make(tools.Args, len(in))
	for k, v := range in {
		if isEmpty(v) {
			continue
		}
		out[k] = v
	}
	return out
}

func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case map[string]interface{}:
		return len(t) == 0
	case []interface{}:
		return len(t) == 0
	default:
		return false
	}
}
