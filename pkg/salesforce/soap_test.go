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
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSOAPLogin_Success(t *testing.T) {
	var instance string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/services/Soap/u/59.0", r.URL.Path)
		assert.Equal(t, "login", r.Header.Get("SOAPAction"))
		assert.Equal(t, "text/xml", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "<n1:username>ops@acme.com</n1:username>")
		assert.Contains(t, string(body), "<n1:password>p&amp;ssTOKEN</n1:password>")
		assert.Contains(t, string(body), "<urn:client>simple-salesforce</urn:client>")

		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns="urn:partner.soap.sforce.com">
<soapenv:Body><loginResponse><result>
<serverUrl>`+instance+`/services/Soap/u/59.0/00Dxx</serverUrl>
<sessionId>00Dxx!SESSION</sessionId>
</result></loginResponse></soapenv:Body></soapenv:Envelope>`)
	}))
	defer srv.Close()
	instance = srv.URL

	client := NewClient(5*time.Second, WithHTTPClient(srv.Client()), WithLoginURL(srv.URL), WithLogger(zaptest.NewLogger(t)))
	sess, err := client.Connect(context.Background(), Credentials{
		Username:      "ops@acme.com",
		Password:      "p&ss",
		SecurityToken: "TOKEN",
	})
	require.NoError(t, err)
	assert.Equal(t, srv.URL, sess.InstanceURL())

	rs, ok := sess.(*restSession)
	require.True(t, ok)
	assert.Equal(t, "00Dxx!SESSION", rs.token)
}

func TestSOAPLogin_Fault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
<soapenv:Body><soapenv:Fault>
<faultcode>INVALID_LOGIN</faultcode>
<faultstring>INVALID_LOGIN: Invalid username, password, security token; or user locked out.</faultstring>
</soapenv:Fault></soapenv:Body></soapenv:Envelope>`)
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, WithHTTPClient(srv.Client()), WithLoginURL(srv.URL))
	_, err := client.Connect(context.Background(), Credentials{Username: "u", Password: "bad"})
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "INVALID_LOGIN", authErr.Code)
	assert.Contains(t, authErr.Message, "user locked out")
}

func TestLoginEndpoint(t *testing.T) {
	c := NewClient(time.Second)
	assert.Equal(t, "https://login.salesforce.com/services/Soap/u/59.0", c.loginEndpoint(Credentials{}, "59.0"))
	assert.Equal(t, "https://test.salesforce.com/services/Soap/u/60.0", c.loginEndpoint(Credentials{Domain: "test"}, "60.0"))
}
