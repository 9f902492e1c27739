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
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Connector establishes authenticated sessions.
type Connector interface {
	Connect(ctx context.Context, creds Credentials) (Session, error)
}

// Session is an authenticated handle to one Salesforce org. Results are
// returned as raw JSON so field order from the API is preserved.
type Session interface {
	// QueryAll runs a SOQL query and follows nextRecordsUrl until every page
	// is collected.
	QueryAll(ctx context.Context, soql string) (json.RawMessage, error)
	// Search runs a SOSL search.
	Search(ctx context.Context, sosl string) (json.RawMessage, error)
	// Object addresses one sObject type by API name.
	Object(name string) ObjectHandle
	ToolingExecute(ctx context.Context, action, method string, data interface{}) (json.RawMessage, error)
	ApexExecute(ctx context.Context, action, method string, data interface{}) (json.RawMessage, error)
	Restful(ctx context.Context, path, method string, params map[string]interface{}, data interface{}) (json.RawMessage, error)
	// InstanceURL is the org's base URL, e.g. https://acme.my.salesforce.com.
	InstanceURL() string
}

// ObjectHandle performs record operations on a single sObject type.
type ObjectHandle interface {
	Describe(ctx context.Context) (json.RawMessage, error)
	Get(ctx context.Context, id string) (json.RawMessage, error)
	Create(ctx context.Context, data map[string]interface{}) (json.RawMessage, error)
	// Update and Delete return the HTTP status of the upstream answer (204 on success).
	Update(ctx context.Context, id string, data map[string]interface{}) (int, error)
	Delete(ctx context.Context, id string) (int, error)
}

// Client is the net/http Connector.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
	loginURL   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithLoginURL overrides the SOAP login host (https://{domain}.salesforce.com).
func WithLoginURL(u string) Option {
	return func(c *Client) {
		c.loginURL = strings.TrimRight(u, "/")
	}
}

// NewClient creates a Client. timeout bounds every upstream HTTP exchange;
// zero disables it.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect authenticates with the token pair when present, otherwise with a
// SOAP username/password login. Token mode performs no network call.
func (c *Client) Connect(ctx context.Context, creds Credentials) (Session, error) {
	mode, err := creds.Mode()
	if err != nil {
		return nil, err
	}

	version := creds.apiVersion()
	if mode == ModeToken {
		c.logger.Info("Attaching to Salesforce session with access token",
			zap.String("instance_url", creds.InstanceURL),
			zap.String("api_version", version))
		return c.newRESTSession(creds.AccessToken, creds.InstanceURL, version), nil
	}

	sessionID, instance, err := c.soapLogin(ctx, creds, version)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Logged in to Salesforce",
		zap.String("instance_url", instance),
		zap.String("username", creds.Username),
		zap.String("api_version", version))
	return c.newRESTSession(sessionID, instance, version), nil
}

func (c *Client) newRESTSession(token, instance, version string) *restSession {
	return &restSession{
		http:     c.httpClient,
		logger:   c.logger,
		token:    token,
		instance: strings.TrimRight(instance, "/"),
		version:  version,
	}
}
