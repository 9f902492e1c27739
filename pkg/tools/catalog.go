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

package tools

import (
	"context"
	"fmt"

	"github.com/teradata-labs/salesforce-mcp/pkg/salesforce"
	"github.com/teradata-labs/salesforce-mcp/pkg/schema"
)

// FieldSource serves cached object field lists.
type FieldSource interface {
	GetFields(ctx context.Context, objectType string) ([]schema.Field, error)
}

var httpMethods = []string{"GET", "POST", "PATCH", "DELETE"}

const objectNameHelp = "The name of the Salesforce object (e.g., 'Account', 'Contact')"

func objectNameArg() Arg {
	return Arg{Name: "object_name", Type: TypeString, Description: objectNameHelp, Required: true}
}

func recordIDArg(verb string) Arg {
	return Arg{Name: "record_id", Type: TypeString, Description: "The ID of the record to " + verb, Required: true}
}

func methodArg() Arg {
	return Arg{
		Name:        "method",
		Type:        TypeString,
		Description: "The HTTP method (default: 'GET')",
		Enum:        httpMethods,
		Default:     "GET",
	}
}

func dataArg(required bool, description string) Arg {
	return Arg{Name: "data", Type: TypeObject, Description: description, Required: required}
}

// Catalog returns the ten Salesforce tools in their published order.
func Catalog(fields FieldSource) []Definition {
	return []Definition{
		{
			Name:        "run_soql_query",
			Description: "Executes a SOQL query against Salesforce",
			Args: []Arg{
				{Name: "query", Type: TypeString, Description: "The SOQL query to execute", Required: true},
			},
			ReadOnly: true,
			Handler: func(ctx context.Context, sess salesforce.Session, args Args) (Result, error) {
				raw, err := sess.QueryAll(ctx, args.String("query"))
				if err != nil {
					return Result{}, err
				}
				return jsonResult("SOQL Query Results (JSON):\n", raw)
			},
		},
		{
			Name:        "run_sosl_search",
			Description: "Executes a SOSL search against Salesforce",
			Args: []Arg{
				{Name: "search", Type: TypeString, Description: "The SOSL search to execute (e.g., 'FIND {John Smith} IN ALL FIELDS')", Required: true},
			},
			ReadOnly: true,
			Handler: func(ctx context.Context, sess salesforce.Session, args Args) (Result, error) {
				raw, err := sess.Search(ctx, args.String("search"))
				if err != nil {
					return Result{}, err
				}
				return jsonResult("SOSL Search Results (JSON):\n", raw)
			},
		},
		{
			Name:        "get_object_fields",
			Description: "Retrieves field Names, labels and types for a specific Salesforce object",
			Args:        []Arg{objectNameArg()},
			ReadOnly:    true,
			Handler: func(ctx context.Context, _ salesforce.Session, args Args) (Result, error) {
				obj := args.String("object_name")
				list, err := fields.GetFields(ctx, obj)
				if err != nil {
					return Result{}, err
				}
				return valueResult(obj+" Metadata (JSON):\n", list)
			},
		},
		{
			Name:        "get_record",
			Description: "Retrieves a specific record by ID",
			Args:        []Arg{objectNameArg(), recordIDArg("retrieve")},
			ReadOnly:    true,
			Handler: func(ctx context.Context, sess salesforce.Session, args Args) (Result, error) {
				obj := args.String("object_name")
				raw, err := sess.Object(obj).Get(ctx, args.String("record_id"))
				if err != nil {
					return Result{}, err
				}
				return jsonResult(obj+" Record (JSON):\n", raw)
			},
		},
		{
			Name:        "create_record",
			Description: "Creates a new record",
			Args:        []Arg{objectNameArg(), dataArg(true, "The data for the new record")},
			Handler: func(ctx context.Context, sess salesforce.Session, args Args) (Result, error) {
				obj := args.String("object_name")
				raw, err := sess.Object(obj).Create(ctx, args.Object("data"))
				if err != nil {
					return Result{}, err
				}
				return jsonResult(fmt.Sprintf("Create %s Record Result (JSON):\n", obj), raw)
			},
		},
		{
			Name:        "update_record",
			Description: "Updates an existing record",
			Args:        []Arg{objectNameArg(), recordIDArg("update"), dataArg(true, "The updated data for the record")},
			Handler: func(ctx context.Context, sess salesforce.Session, args Args) (Result, error) {
				obj := args.String("object_name")
				status, err := sess.Object(obj).Update(ctx, args.String("record_id"), args.Object("data"))
				if err != nil {
					return Result{}, err
				}
				return Result{Text: fmt.Sprintf("Update %s Record Result: %d", obj, status)}, nil
			},
		},
		{
			Name:        "delete_record",
			Description: "Deletes a record",
			Args:        []Arg{objectNameArg(), recordIDArg("delete")},
			Destructive: true,
			Handler: func(ctx context.Context, sess salesforce.Session, args Args) (Result, error) {
				obj := args.String("object_name")
				status, err := sess.Object(obj).Delete(ctx, args.String("record_id"))
				if err != nil {
					return Result{}, err
				}
				return Result{Text: fmt.Sprintf("Delete %s Record Result: %d", obj, status)}, nil
			},
		},
		{
			Name:        "tooling_execute",
			Description: "Executes a Tooling API request",
			Args: []Arg{
				{Name: "action", Type: TypeString, Description: "The Tooling API endpoint to call (e.g., 'sobjects/ApexClass')", Required: true},
				methodArg(),
				dataArg(false, "Data for POST/PATCH requests"),
			},
			Handler: func(ctx context.Context, sess salesforce.Session, args Args) (Result, error) {
				raw, err := sess.ToolingExecute(ctx, args.String("action"), args.String("method"), optionalObject(args, "data"))
				if err != nil {
					return Result{}, err
				}
				return jsonResult("Tooling Execute Result (JSON):\n", raw)
			},
		},
		{
			Name:        "apex_execute",
			Description: "Executes an Apex REST request",
			Args: []Arg{
				{Name: "action", Type: TypeString, Description: "The Apex REST endpoint to call (e.g., '/MyApexClass')", Required: true},
				methodArg(),
				dataArg(false, "Data for POST/PATCH requests"),
			},
			Handler: func(ctx context.Context, sess salesforce.Session, args Args) (Result, error) {
				raw, err := sess.ApexExecute(ctx, args.String("action"), args.String("method"), optionalObject(args, "data"))
				if err != nil {
					return Result{}, err
				}
				return jsonResult("Apex Execute Result (JSON):\n", raw)
			},
		},
		{
			Name:        "restful",
			Description: "Makes a direct REST API call to Salesforce",
			Args: []Arg{
				{Name: "path", Type: TypeString, Description: "The path of the REST API endpoint (e.g., 'sobjects/Account/describe')", Required: true},
				methodArg(),
				{Name: "params", Type: TypeObject, Description: "Query parameters for the request"},
				dataArg(false, "Data for POST/PATCH requests"),
			},
			Handler: func(ctx context.Context, sess salesforce.Session, args Args) (Result, error) {
				raw, err := sess.Restful(ctx, args.String("path"), args.String("method"), args.Object("params"), optionalObject(args, "data"))
				if err != nil {
					return Result{}, err
				}
				return jsonResult("RESTful API Call Result (JSON):\n", raw)
			},
		},
	}
}

// optionalObject returns the object argument as an interface value that is
// nil when absent, so no request body is sent.
func optionalObject(args Args, name string) interface{} {
	if m := args.Object(name); m != nil {
		return m
	}
	return nil
}

// NewDefaultRegistry builds the registry of the full catalog.
func NewDefaultRegistry(fields FieldSource) *Registry {
	r, err := NewRegistry(Catalog(fields)...)
	if err != nil {
		// The catalog is static; a failure here is a programming error.
		panic(err)
	}
	return r
}
