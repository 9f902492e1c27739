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

// Package config locates the salesforce-mcp data directory that holds the
// config file and the default log file.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DataDirEnv overrides the data directory.
const DataDirEnv = "SALESFORCE_MCP_DATA_DIR"

// GetDataDir returns the absolute data directory: $SALESFORCE_MCP_DATA_DIR
// when set, otherwise ~/.salesforce-mcp. A leading ~ is expanded.
//
// It reads the environment directly because it runs before viper has loaded
// the config file it is used to find.
func GetDataDir() string {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return expandPath(dir)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".salesforce-mcp"
	}
	return filepath.Join(homeDir, ".salesforce-mcp")
}

// GetSubDir returns a path inside the data directory.
func GetSubDir(subdir string) string {
	return filepath.Join(GetDataDir(), subdir)
}

// expandPath expands ~ and resolves to an absolute path.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, strings.TrimPrefix(path[1:], "/"))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
