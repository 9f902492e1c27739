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
	"bytes"
	"encoding/json"
	"fmt"
)

// Result is the success payload of a tool: the text shown to the client and,
// when the upstream answer is a JSON object, the same object in structured form.
type Result struct {
	Text       string
	Structured map[string]interface{}
}

// jsonResult renders raw as compact JSON after prefix. Key order of the
// upstream document is preserved.
func jsonResult(prefix string, raw json.RawMessage) (Result, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return Result{}, fmt.Errorf("upstream returned invalid JSON: %w", err)
	}

	res := Result{Text: prefix + buf.String()}
	if bytes.HasPrefix(buf.Bytes(), []byte("{")) {
		var obj map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &obj); err == nil {
			res.Structured = obj
		}
	}
	return res, nil
}

// valueResult marshals v and renders it like jsonResult.
func valueResult(prefix string, v interface{}) (Result, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Result{}, fmt.Errorf("encode result: %w", err)
	}
	return jsonResult(prefix, raw)
}
