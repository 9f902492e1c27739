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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/teradata-labs/salesforce-mcp/internal/version"
	appconfig "github.com/teradata-labs/salesforce-mcp/pkg/config"
)

var (
	cfgFile string
	cfg     *Config
)

var rootCmd = &cobra.Command{
	Use:   "salesforce-mcp",
	Short: "Salesforce CRM tools over the Model Context Protocol",
	Long: `salesforce-mcp connects to one Salesforce org at startup and exposes SOQL,
SOSL, record CRUD, metadata, Tooling API, Apex REST and raw REST calls as MCP
tools over stdio, streamable HTTP or HTTP with server-sent events.

Credentials are read from SALESFORCE_ACCESS_TOKEN and SALESFORCE_INSTANCE_URL,
or SALESFORCE_USERNAME, SALESFORCE_PASSWORD and SALESFORCE_SECURITY_TOKEN.`,
	Version:       version.Get(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default: %s/%s.yaml)", appconfig.GetDataDir(), DefaultConfigFileName))
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-file", "", "Log file path (default: stderr; never stdout)")
	pf.Duration("timeout", DefaultUpstreamTimeout, "Timeout for each Salesforce API call")

	_ = viper.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("logging.file", pf.Lookup("log-file"))
	_ = viper.BindPFlag("salesforce.timeout", pf.Lookup("timeout"))
}

// initConfig reads the config file, environment and keyring.
func initConfig() {
	var err error
	cfg, err = LoadConfig(viper.GetViper(), cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}
