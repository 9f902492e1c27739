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
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/teradata-labs/salesforce-mcp/pkg/tools"
	"gopkg.in/yaml.v3"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the tool catalog",
	Long:  `Print every tool with its description, input schema and hints, as JSON or YAML.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString("format")
		return writeCatalog(cmd.OutOrStdout(), tools.NewDefaultRegistry(nil), format)
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.Flags().String("format", "json", "Output format (json, yaml)")
}

type catalogEntry struct {
	Name        string                 `json:"name" yaml:"name"`
	Description string                 `json:"description" yaml:"description"`
	ReadOnly    bool                   `json:"readOnly" yaml:"readOnly"`
	Destructive bool                   `json:"destructive" yaml:"destructive"`
	InputSchema map[string]interface{} `json:"inputSchema" yaml:"inputSchema"`
}

func writeCatalog(w io.Writer, registry *tools.Registry, format string) error {
	defs := registry.List()
	entries := make([]catalogEntry, 0, len(defs))
	for _, d := range defs {
		entries = append(entries, catalogEntry{
			Name:        d.Name,
			Description: d.Description,
			ReadOnly:    d.ReadOnly,
			Destructive: d.Destructive,
			InputSchema: d.InputSchema(),
		})
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format: %q (must be json or yaml)", format)
	}
}
