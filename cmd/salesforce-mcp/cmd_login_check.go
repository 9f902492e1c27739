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
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/teradata-labs/salesforce-mcp/pkg/salesforce"
	"go.uber.org/zap"
)

var loginCheckCmd = &cobra.Command{
	Use:   "login-check",
	Short: "Verify the configured Salesforce credentials",
	Long: `Log in with the configured credentials and make one cheap API call
(the org limits resource). Exits non-zero when either step fails.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger, err := buildLogger(cfg.Logging.File, zap.NewAtomicLevelAt(parseLogLevel(cfg.Logging.Level)))
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		client := salesforce.NewClient(cfg.Salesforce.Timeout, salesforce.WithLogger(logger.Named("salesforce")))
		return loginCheck(cmd.Context(), client, cfg.Salesforce.Credentials, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(loginCheckCmd)
}

func loginCheck(ctx context.Context, connector salesforce.Connector, creds salesforce.Credentials, out io.Writer) error {
	mode, err := creds.Mode()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Credential mode: %s\n", mode)

	sess, err := connector.Connect(ctx, creds)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Fprintf(out, "Instance URL:    %s\n", sess.InstanceURL())

	// Token mode connects without a network call; this proves the token works.
	if _, err := sess.Restful(ctx, "limits", "GET", nil, nil); err != nil {
		return fmt.Errorf("API call failed: %w", err)
	}
	fmt.Fprintln(out, "Login OK")
	return nil
}
