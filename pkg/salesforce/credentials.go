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

// Package salesforce is the upstream client: it authenticates against a
// Salesforce org and issues REST calls on an established session.
package salesforce

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultAPIVersion is used when Credentials.APIVersion is empty.
const DefaultAPIVersion = "59.0"

// DefaultDomain is the login host prefix for production orgs. Use "test" for sandboxes.
const DefaultDomain = "login"

// Mode identifies how a session was authenticated.
type Mode string

const (
	ModeToken    Mode = "token"
	ModePassword Mode = "password"
)

// ErrIncompleteCredentials is returned when neither the token pair nor the
// username/password pair is fully present.
var ErrIncompleteCredentials = errors.New("incomplete Salesforce credentials: set an access token and instance URL, or a username and password")

// Credentials carries both supported credential sets. The token pair wins
// when both of its members are present.
type Credentials struct {
	AccessToken   string `mapstructure:"access_token"`
	InstanceURL   string `mapstructure:"instance_url"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	SecurityToken string `mapstructure:"security_token"`
	Domain        string `mapstructure:"domain"`
	APIVersion    string `mapstructure:"api_version"`
}

// Mode selects the credential set to use.
func (c Credentials) Mode() (Mode, error) {
	if c.AccessToken != "" && c.InstanceURL != "" {
		return ModeToken, nil
	}
	if c.Username != "" && c.Password != "" {
		return ModePassword, nil
	}
	return "", ErrIncompleteCredentials
}

func (c Credentials) apiVersion() string {
	v := strings.TrimPrefix(strings.TrimSpace(c.APIVersion), "v")
	if v == "" {
		return DefaultAPIVersion
	}
	return v
}

func (c Credentials) domain() string {
	if c.Domain == "" {
		return DefaultDomain
	}
	return c.Domain
}

// String never prints secrets.
func (c Credentials) String() string {
	mode, err := c.Mode()
	if err != nil {
		return "Credentials{incomplete}"
	}
	if mode == ModeToken {
		return fmt.Sprintf("Credentials{mode=token instance=%s}", c.InstanceURL)
	}
	return fmt.Sprintf("Credentials{mode=password user=%s domain=%s}", c.Username, c.domain())
}
