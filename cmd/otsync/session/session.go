/*
 * Copyright 2026 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package session provides the session subcommands of the CLI.
package session

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yorkie-team/otsync/pkg/document"
)

var (
	// SubCmd represents the session command.
	SubCmd = &cobra.Command{
		Use:   "session",
		Short: "Manage editing sessions",
	}
)

// printStructured prints v as JSON or YAML. It reports false when the
// output is empty, so that the caller prints its own plain format.
func printStructured(cmd *cobra.Command, output string, v any) (bool, error) {
	switch output {
	case "":
		return false, nil
	case "json":
		jsonOutput, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return false, fmt.Errorf("marshal JSON: %w", err)
		}
		cmd.Println(string(jsonOutput))
	case "yaml":
		yamlOutput, err := yaml.Marshal(v)
		if err != nil {
			return false, fmt.Errorf("marshal YAML: %w", err)
		}
		cmd.Println(string(yamlOutput))
	default:
		return false, fmt.Errorf("unknown output format: %s", output)
	}
	return true, nil
}

// readContent returns the literal content or, when path is set, the
// content of the file. A path of "-" reads the standard input.
func readContent(cmd *cobra.Command, content, path string) (string, error) {
	if path == "" {
		return content, nil
	}

	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// kindNames lists the document kinds for flag help.
func kindNames() string {
	names := make([]string, 0, len(document.Kinds()))
	for _, kind := range document.Kinds() {
		names = append(names, string(kind))
	}
	return strings.Join(names, ", ")
}

func humanDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
