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
	"fmt"
	"strings"
)

// APIError is a non-2xx answer from the Salesforce API. Its message carries
// the upstream body verbatim.
type APIError struct {
	Status   int
	URL      string
	Resource string
	Content  string
}

func (e *APIError) Error() string {
	content := strings.TrimSpace(e.Content)
	if e.Resource != "" {
		return fmt.Sprintf("Salesforce API error %d for %s (resource %s): %s", e.Status, e.URL, e.Resource, content)
	}
	return fmt.Sprintf("Salesforce API error %d for %s: %s", e.Status, e.URL, content)
}

// AuthError is a failed login.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("Salesforce authentication failed: %s: %s", e.Code, e.Message)
	}
	return "Salesforce authentication failed: " + e.Message
}
