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

package salesforce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

type restSession struct {
	http     *http.Client
	logger   *zap.Logger
	token    string
	instance string
	version  string
}

func (s *restSession) InstanceURL() string {
	return s.instance
}

func (s *restSession) baseURL() string {
	return fmt.Sprintf("%s/services/data/v%s/", s.instance, s.version)
}

type queryPage struct {
	TotalSize      int               `json:"totalSize"`
	Done           bool              `json:"done"`
	NextRecordsURL string            `json:"nextRecordsUrl,omitempty"`
	Records        []json.RawMessage `json:"records"`
}

func (s *restSession) QueryAll(ctx context.Context, soql string) (json.RawMessage, error) {
	target := s.baseURL() + "query/?" + url.Values{"q": {soql}}.Encode()

	var all queryPage
	all.Records = []json.RawMessage{}
	for page := 0; ; page++ {
		raw, _, err := s.do(ctx, http.MethodGet, target, nil, nil)
		if err != nil {
			return nil, err
		}
		var p queryPage
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode query page %d: %w", page, err)
		}
		if page == 0 {
			all.TotalSize = p.TotalSize
		}
		all.Records = append(all.Records, p.Records...)
		if p.Done || p.NextRecordsURL == "" {
			break
		}
		target = s.instance + p.NextRecordsURL
	}
	all.Done = true

	out, err := json.Marshal(all)
	if err != nil {
		return nil, fmt.Errorf("encode query result: %w", err)
	}
	return out, nil
}

func (s *restSession) Search(ctx context.Context, sosl string) (json.RawMessage, error) {
	raw, _, err := s.do(ctx, http.MethodGet, s.baseURL()+"search/?"+url.Values{"q": {sosl}}.Encode(), nil, nil)
	return raw, err
}

func (s *restSession) Object(name string) ObjectHandle {
	return &objectHandle{session: s, name: name}
}

func (s *restSession) ToolingExecute(ctx context.Context, action, method string, data interface{}) (json.RawMessage, error) {
	raw, _, err := s.do(ctx, method, s.baseURL()+"tooling/"+strings.TrimLeft(action, "/"), nil, data)
	return raw, err
}

func (s *restSession) ApexExecute(ctx context.Context, action, method string, data interface{}) (json.RawMessage, error) {
	raw, _, err := s.do(ctx, method, s.instance+"/services/apexrest/"+strings.TrimLeft(action, "/"), nil, data)
	return raw, err
}

func (s *restSession) Restful(ctx context.Context, path, method string, params map[string]interface{}, data interface{}) (json.RawMessage, error) {
	raw, _, err := s.do(ctx, method, s.baseURL()+strings.TrimLeft(path, "/"), params, data)
	return raw, err
}

// do performs one authenticated call. Empty bodies decode as JSON null and
// non-JSON bodies are returned as a JSON string.
func (s *restSession) do(ctx context.Context, method, target string, params map[string]interface{}, data interface{}) (json.RawMessage, int, error) {
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)

	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, fmt.Sprint(v))
		}
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + q.Encode()
	}

	var body io.Reader
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}

	s.logger.Debug("Salesforce API call",
		zap.String("method", method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &APIError{
			Status:   resp.StatusCode,
			URL:      target,
			Resource: resourceName(req.URL.Path),
			Content:  string(content),
		}
	}

	trimmed := bytes.TrimSpace(content)
	switch {
	case len(trimmed) == 0:
		return json.RawMessage("null"), resp.StatusCode, nil
	case json.Valid(trimmed):
		return json.RawMessage(trimmed), resp.StatusCode, nil
	default:
		quoted, err := json.Marshal(string(content))
		if err != nil {
			return nil, resp.StatusCode, fmt.Errorf("encode text response: %w", err)
		}
		return quoted, resp.StatusCode, nil
	}
}

// resourceName extracts the sObject name from a .../sobjects/{name}/... path.
func resourceName(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if p == "sobjects" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

type objectHandle struct {
	session *restSession
	name    string
}

func (o *objectHandle) url(suffix string) string {
	return o.session.baseURL() + "sobjects/" + url.PathEscape(o.name) + "/" + suffix
}

func (o *objectHandle) Describe(ctx context.Context) (json.RawMessage, error) {
	raw, _, err := o.session.do(ctx, http.MethodGet, o.url("describe/"), nil, nil)
	return raw, err
}

func (o *objectHandle) Get(ctx context.Context, id string) (json.RawMessage, error) {
	raw, _, err := o.session.do(ctx, http.MethodGet, o.url(url.PathEscape(id)), nil, nil)
	return raw, err
}

func (o *objectHandle) Create(ctx context.Context, data map[string]interface{}) (json.RawMessage, error) {
	raw, _, err := o.session.do(ctx, http.MethodPost, o.url(""), nil, data)
	return raw, err
}

func (o *objectHandle) Update(ctx context.Context, id string, data map[string]interface{}) (int, error) {
	_, status, err := o.session.do(ctx, http.MethodPatch, o.url(url.PathEscape(id)), nil, data)
	return status, err
}

func (o *objectHandle) Delete(ctx context.Context, id string) (int, error) {
	_, status, err := o.session.do(ctx, http.MethodDelete, o.url(url.PathEscape(id)), nil, nil)
	return status, err
}
