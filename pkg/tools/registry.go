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

// Package tools defines the fixed catalog of Salesforce tools: their argument
// schemas and the handler that maps each one onto a single upstream call.
package tools

import (
	"context"
	"fmt"

	"github.com/teradata-labs/salesforce-mcp/pkg/salesforce"
)

// Argument types used by the catalog.
const (
	TypeString = "string"
	TypeObject = "object"
)

// Arg declares one argument of a tool.
type Arg struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Enum        []string
	Default     interface{}
}

// Args is the argument map of one invocation.
type Args map[string]interface{}

// String returns the string argument name, or "" when absent or not a string.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Object returns the object argument name, or nil.
func (a Args) Object(name string) map[string]interface{} {
	m, _ := a[name].(map[string]interface{})
	return m
}

// Handler performs the upstream call of a tool.
type Handler func(ctx context.Context, sess salesforce.Session, args Args) (Result, error)

// Definition is one catalog entry.
type Definition struct {
	Name        string
	Description string
	Args        []Arg
	ReadOnly    bool
	Destructive bool
	Handler     Handler
}

// Required lists required argument names in declaration order.
func (d Definition) Required() []string {
	var names []string
	for _, a := range d.Args {
		if a.Required {
			names = append(names, a.Name)
		}
	}
	return names
}

// InputSchema renders the arguments as a JSON Schema object.
func (d Definition) InputSchema() map[string]interface{} {
	props := make(map[string]interface{}, len(d.Args))
	for _, a := range d.Args {
		p := map[string]interface{}{"type": a.Type}
		if a.Description != "" {
			p["description"] = a.Description
		}
		if len(a.Enum) > 0 {
			enum := make([]interface{}, len(a.Enum))
			for i, v := range a.Enum {
				enum[i] = v
			}
			p["enum"] = enum
		}
		if a.Default != nil {
			p["default"] = a.Default
		}
		props[a.Name] = p
	}

	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if req := d.Required(); len(req) > 0 {
		required := make([]interface{}, len(req))
		for i, r := range req {
			required[i] = r
		}
		schema["required"] = required
	}
	return schema
}

// WithDefaults returns a copy of args with declared defaults filled in for
// absent optional arguments.
func (d Definition) WithDefaults(args Args) Args {
	out := make(Args, len(args)+len(d.Args))
	for k, v := range args {
		out[k] = v
	}
	for _, a := range d.Args {
		if a.Default == nil {
			continue
		}
		if _, ok := out[a.Name]; !ok {
			out[a.Name] = a.Default
		}
	}
	return out
}

// Registry is the immutable, ordered set of tool definitions. It is built
// once and safe for concurrent reads without locking.
type Registry struct {
	order  []string
	byName map[string]Definition
}

// NewRegistry builds a registry. Names must be unique and every definition
// needs a handler.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{
		order:  make([]string, 0, len(defs)),
		byName: make(map[string]Definition, len(defs)),
	}
	for _, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("tool definition without a name")
		}
		if d.Handler == nil {
			return nil, fmt.Errorf("tool %s has no handler", d.Name)
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("tool %s registered twice", d.Name)
		}
		r.order = append(r.order, d.Name)
		r.byName[d.Name] = d
	}
	return r, nil
}

// Get looks a tool up by name.
func (r *Registry) Get(name string) (Definition, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// List returns all definitions in registration order.
func (r *Registry) List() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of tools.
func (r *Registry) Len() int {
	return len(r.order)
}
