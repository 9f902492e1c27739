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

package protocol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaViolation lists every way a set of arguments failed its schema.
type SchemaViolation struct {
	Problems []string
}

func (v *SchemaViolation) Error() string {
	return "invalid arguments: " + strings.Join(v.Problems, "; ")
}

// ValidateArguments checks arguments against a JSON Schema document.
// A nil or empty schema accepts anything. Schema violations are returned as
// *SchemaViolation; other errors mean the schema itself could not be used.
func ValidateArguments(schema map[string]interface{}, arguments map[string]interface{}) error {
	if len(schema) == 0 {
		return nil
	}
	if arguments == nil {
		arguments = map[string]interface{}{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(arguments),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		problems = append(problems, re.String())
	}
	return &SchemaViolation{Problems: problems}
}

// IsSchemaViolation reports whether err came from a failed schema check.
func IsSchemaViolation(err error) bool {
	var v *SchemaViolation
	return errors.As(err, &v)
}

// ValidateRequest checks the envelope members every request must carry.
// The "jsonrpc" member may be omitted; when present it must be "2.0".
func ValidateRequest(req *Request) error {
	if req.JSONRPC != "" && req.JSONRPC != JSONRPCVersion {
		return fmt.Errorf("invalid jsonrpc version: %q (expected %s)", req.JSONRPC, JSONRPCVersion)
	}
	if req.Method == "" {
		return errors.New("method is required")
	}
	return nil
}

// ValidateResponse checks that a response carries exactly one of result or error.
func ValidateResponse(resp *Response) error {
	if resp.JSONRPC != JSONRPCVersion {
		return fmt.Errorf("invalid jsonrpc version: %q (expected %s)", resp.JSONRPC, JSONRPCVersion)
	}
	hasResult := len(resp.Result) > 0
	hasError := resp.Error != nil
	if hasResult == hasError {
		return errors.New("response must have exactly one of result or error")
	}
	return nil
}
