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
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/teradata-labs/salesforce-mcp/pkg/salesforce"
	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage salesforce-mcp configuration",
	Long:  `Inspect the merged configuration and manage secrets in the system keyring.`,
}

var configSetSecretCmd = &cobra.Command{
	Use:   "set-secret [key-name]",
	Short: "Save a Salesforce secret to the system keyring",
	Long: `Save a secret to the system keyring (Keychain on macOS, Credential
Manager on Windows, Secret Service on Linux). The value is read from the
terminal without echo, or from stdin when piped.

Keyring values are used only when the same setting is not given by flag,
environment or config file. Run 'salesforce-mcp config list-secrets' to see
the key names.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		if err := checkSecretKey(key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Enter %s (input hidden): ", key)
		secret, err := readSecret(os.Stdin)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if secret == "" {
			return fmt.Errorf("secret cannot be empty")
		}
		if err := keyring.Set(ServiceName, key, secret); err != nil {
			return fmt.Errorf("save to keyring: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to system keyring\n", key)
		return nil
	},
}

var configDeleteSecretCmd = &cobra.Command{
	Use:   "delete-secret [key-name]",
	Short: "Delete a Salesforce secret from the system keyring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		if err := checkSecretKey(key); err != nil {
			return err
		}
		if err := keyring.Delete(ServiceName, key); err != nil {
			return fmt.Errorf("delete from keyring: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s from system keyring\n", key)
		return nil
	},
}

var configListSecretsCmd = &cobra.Command{
	Use:   "list-secrets",
	Short: "List secret names and whether each is stored",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, key := range ListAvailableSecretKeys() {
			state := "not set"
			if _, err := keyring.Get(ServiceName, key); err == nil {
				state = "stored"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %-15s %s\n", key, state)
		}
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the merged configuration with secrets masked",
	Run: func(cmd *cobra.Command, _ []string) {
		showConfig(cmd.OutOrStdout(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetSecretCmd)
	configCmd.AddCommand(configDeleteSecretCmd)
	configCmd.AddCommand(configListSecretsCmd)
	configCmd.AddCommand(configShowCmd)
}

func checkSecretKey(key string) error {
	keys := ListAvailableSecretKeys()
	if !slices.Contains(keys, key) {
		return fmt.Errorf("invalid key name: %s (available: %s)", key, strings.Join(keys, ", "))
	}
	return nil
}

func readSecret(f *os.File) (string, error) {
	if term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		return strings.TrimSpace(string(b)), err
	}
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func showConfig(w io.Writer, c *Config) {
	sf := c.Salesforce
	fmt.Fprintf(w, "Data dir:        %s\n", c.DataDir)
	fmt.Fprintf(w, "Transport:       %s\n", c.Server.Transport)
	if c.Server.Transport != TransportStdio {
		fmt.Fprintf(w, "Listen:          %s:%d\n", c.Server.Host, c.Server.ListenPort())
	}
	fmt.Fprintf(w, "Require session: %t\n", c.Server.RequireSession)
	fmt.Fprintf(w, "Log level:       %s\n", c.Logging.Level)
	fmt.Fprintf(w, "Log file:        %s\n", orDefault(c.Logging.File, "stderr"))
	fmt.Fprintf(w, "Credentials:     %s\n", sf.Credentials)
	fmt.Fprintf(w, "  access_token:   %s\n", maskSecret(sf.AccessToken))
	fmt.Fprintf(w, "  instance_url:   %s\n", orDefault(sf.InstanceURL, "(not set)"))
	fmt.Fprintf(w, "  username:       %s\n", orDefault(sf.Username, "(not set)"))
	fmt.Fprintf(w, "  password:       %s\n", maskSecret(sf.Password))
	fmt.Fprintf(w, "  security_token: %s\n", maskSecret(sf.SecurityToken))
	fmt.Fprintf(w, "  domain:         %s\n", orDefault(sf.Domain, salesforce.DefaultDomain))
	fmt.Fprintf(w, "  api_version:    %s\n", orDefault(sf.APIVersion, salesforce.DefaultAPIVersion))
	fmt.Fprintf(w, "Upstream timeout: %s\n", sf.Timeout)
}

// maskSecret keeps the last four characters of long secrets.
func maskSecret(s string) string {
	switch {
	case s == "":
		return "(not set)"
	case len(s) <= 8:
		return "****"
	default:
		return "****" + s[len(s)-4:]
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
