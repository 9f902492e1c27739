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
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// newTestSession connects in token mode against srv.
func newTestSession(t *testing.T, srv *httptest.Server) Session {
	t.Helper()
	client := NewClient(5*time.Second, WithHTTPClient(srv.Client()), WithLogger(zaptest.NewLogger(t)))
	sess, err := client.Connect(context.Background(), Credentials{AccessToken: "tok", InstanceURL: srv.URL + "/"})
	require.NoError(t, err)
	return sess
}

func TestConnect_TokenModeMakesNoRequest(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	sess := newTestSession(t, srv)
	assert.Equal(t, srv.URL, sess.InstanceURL())
	assert.Zero(t, calls)
}

func TestConnect_IncompleteCredentials(t *testing.T) {
	client := NewClient(time.Second)
	_, err := client.Connect(context.Background(), Credentials{Username: "only-user"})
	assert.ErrorIs(t, err, ErrIncompleteCredentials)
}

func TestQueryAll_FollowsNextRecordsURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/services/data/v59.0/query/":
			assert.Equal(t, "SELECT Id FROM Account", r.URL.Query().Get("q"))
			_, _ = io.WriteString(w, `{"totalSize":3,"done":false,"nextRecordsUrl":"/services/data/v59.0/query/01g-2","records":[{"Id":"a"},{"Id":"b"}]}`)
		case "/services/data/v59.0/query/01g-2":
			_, _ = io.WriteString(w, `{"totalSize":3,"done":true,"records":[{"Id":"c"}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	raw, err := newTestSession(t, srv).QueryAll(context.Background(), "SELECT Id FROM Account")
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalSize":3,"done":true,"records":[{"Id":"a"},{"Id":"b"},{"Id":"c"}]}`, string(raw))
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/services/data/v59.0/search/", r.URL.Path)
		assert.Equal(t, "FIND {Acme}", r.URL.Query().Get("q"))
		_, _ = io.WriteString(w, `{"searchRecords":[]}`)
	}))
	defer srv.Close()

	raw, err := newTestSession(t, srv).Search(context.Background(), "FIND {Acme}")
	require.NoError(t, err)
	assert.JSONEq(t, `{"searchRecords":[]}`, string(raw))
}

func TestObjectHandle_CRUD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/services/data/v59.0/sobjects/Account/describe/":
			_, _ = io.WriteString(w, `{"name":"Account","fields":[]}`)
		case r.Method == http.MethodGet && r.URL.Path == "/services/data/v59.0/sobjects/Account/001xx":
			_, _ = io.WriteString(w, `{"Id":"001xx","Name":"Acme"}`)
		case r.Method == http.MethodPost && r.URL.Path == "/services/data/v59.0/sobjects/Account/":
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"Name":"Acme"}`, string(body))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"id":"001new","success":true,"errors":[]}`)
		case r.Method == http.MethodPatch && r.URL.Path == "/services/data/v59.0/sobjects/Account/001xx":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodDelete && r.URL.Path == "/services/data/v59.0/sobjects/Account/001xx":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	account := newTestSession(t, srv).Object("Account")

	raw, err := account.Describe(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Account","fields":[]}`, string(raw))

	raw, err = account.Get(ctx, "001xx")
	require.NoError(t, err)
	assert.Equal(t, `{"Id":"001xx","Name":"Acme"}`, string(raw))

	raw, err = account.Create(ctx, map[string]interface{}{"Name": "Acme"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"001new","success":true,"errors":[]}`, string(raw))

	status, err := account.Update(ctx, "001xx", map[string]interface{}{"Name": "Acme 2"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, status)

	status, err = account.Delete(ctx, "001xx")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestAPIError_CarriesUpstreamBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `[{"errorCode":"NOT_FOUND","message":"The requested resource does not exist"}]`)
	}))
	defer srv.Close()

	_, err := newTestSession(t, srv).Object("Account").Get(context.Background(), "001missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Account", apiErr.Resource)
	assert.Contains(t, err.Error(), "NOT_FOUND")
	assert.Contains(t, err.Error(), "The requested resource does not exist")
}

func TestGenericCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/services/data/v59.0/tooling/executeAnonymous/":
			assert.Equal(t, http.MethodGet, r.Method)
			_, _ = io.WriteString(w, `{"compiled":true}`)
		case "/services/apexrest/hello":
			assert.Equal(t, http.MethodPost, r.Method)
			_, _ = io.WriteString(w, `Hello from Apex`)
		case "/services/data/v59.0/limits":
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			_, _ = io.WriteString(w, `{"DailyApiRequests":{"Max":15000}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	sess := newTestSession(t, srv)

	raw, err := sess.ToolingExecute(ctx, "executeAnonymous/", "", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"compiled":true}`, string(raw))

	raw, err = sess.ApexExecute(ctx, "/hello", "post", map[string]interface{}{"x": 1})
	require.NoError(t, err)
	var text string
	require.NoError(t, json.Unmarshal(raw, &text))
	assert.Equal(t, "Hello from Apex", text)

	raw, err = sess.Restful(ctx, "limits", "GET", map[string]interface{}{"limit": 5}, nil)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "DailyApiRequests"))
}
