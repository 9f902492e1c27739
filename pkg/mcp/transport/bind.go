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

package transport

import (
	"net"

	"go.uber.org/zap"
)

// WarnIfNotLocalhost logs a warning when addr binds beyond the loopback
// interface. The HTTP bindings have no authentication of their own, so
// anyone who can reach the port can act with the server's Salesforce session.
func WarnIfNotLocalhost(logger *zap.Logger, addr string) {
	if logger == nil {
		return
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	if host == "localhost" {
		return
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return
	}

	logger.Warn("MCP HTTP transport is reachable beyond localhost and has no authentication",
		zap.String("addr", addr),
		zap.String("recommendation", "bind to 127.0.0.1 or put an authenticating proxy in front"))
}
