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
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// soapClientName is reported in the CallOptions header of the login envelope.
const soapClientName = "simple-salesforce"

const loginEnvelope = `<?xml version="1.0" encoding="utf-8" ?>
<env:Envelope
        xmlns:xsd="http://www.w3.org/2001/XMLSchema"
        xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
        xmlns:env="http://schemas.xmlsoap.org/soap/envelope/"
        xmlns:urn="urn:partner.soap.sforce.com">
    <env:Header>
        <urn:CallOptions>
            <urn:client>%s</urn:client>
            <urn:defaultNamespace>sf</urn:defaultNamespace>
        </urn:CallOptions>
    </env:Header>
    <env:Body>
        <n1:login xmlns:n1="urn:partner.soap.sforce.com">
            <n1:username>%s</n1:username>
            <n1:password>%s%s</n1:password>
        </n1:login>
    </env:Body>
</env:Envelope>`

type loginResponse struct {
	SessionID   string `xml:"Body>loginResponse>result>sessionId"`
	ServerURL   string `xml:"Body>loginResponse>result>serverUrl"`
	FaultCode   string `xml:"Body>Fault>faultcode"`
	FaultString string `xml:"Body>Fault>faultstring"`
}

func (c *Client) loginEndpoint(creds Credentials, version string) string {
	base := c.loginURL
	if base == "" {
		base = fmt.Sprintf("https://%s.salesforce.com", creds.domain())
	}
	return fmt.Sprintf("%s/services/Soap/u/%s", base, version)
}

// soapLogin exchanges username, password and security token for a session id.
func (c *Client) soapLogin(ctx context.Context, creds Credentials, version string) (sessionID, instance string, err error) {
	body := fmt.Sprintf(loginEnvelope,
		xmlEscape(soapClientName),
		xmlEscape(creds.Username),
		xmlEscape(creds.Password),
		xmlEscape(creds.SecurityToken))

	endpoint := c.loginEndpoint(creds, version)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("charset", "UTF-8")
	req.Header.Set("SOAPAction", "login")

	c.logger.Debug("Sending SOAP login", zap.String("endpoint", endpoint), zap.String("username", creds.Username))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("login request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read login response: %w", err)
	}

	var parsed loginResponse
	if err := xml.Unmarshal(raw, &parsed); err != nil {
		return "", "", &AuthError{Message: fmt.Sprintf("unparseable login response (HTTP %d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))}
	}
	if resp.StatusCode != http.StatusOK || parsed.SessionID == "" {
		msg := parsed.FaultString
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d without session id", resp.StatusCode)
		}
		return "", "", &AuthError{Code: parsed.FaultCode, Message: msg}
	}

	server, err := url.Parse(parsed.ServerURL)
	if err != nil || server.Host == "" {
		return "", "", &AuthError{Message: fmt.Sprintf("invalid serverUrl in login response: %q", parsed.ServerURL)}
	}
	return parsed.SessionID, server.Scheme + "://" + server.Host, nil
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
