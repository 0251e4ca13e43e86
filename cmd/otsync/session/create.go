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

package session

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yorkie-team/otsync/cmd/otsync/config"
	"github.com/yorkie-team/otsync/pkg/document"
)

var (
	createKind    string
	createContent string
	createFile    string
)

func newCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "create",
		Short:   "Create a new session",
		Args:    cobra.NoArgs,
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := document.ParseKind(createKind)
			if err != nil {
				return err
			}

			content, err := readContent(cmd, createContent, createFile)
			if err != nil {
				return err
			}

			cli, err := config.NewClient()
			if err != nil {
				return err
			}

			resp, err := cli.CreateSession(context.Background(), kind, content)
			if err != nil {
				return fmt.Errorf("create session: %w", err)
			}

			if ok, err := printStructured(cmd, viper.GetString("output"), resp); ok || err != nil {
				return err
			}

			cmd.Printf("Session created: %s (%s, v%d)\n", resp.ID, kind, resp.Snapshot.Version)
			return nil
		},
	}
}

func init() {
	cmd := newCreateCommand()
	cmd.Flags().StringVar(
		&createKind,
		"kind",
		string(document.KindText),
		"Kind of the document, one of "+kindNames(),
	)
	cmd.Flags().StringVar(
		&createContent,
		"content",
		"",
		"(optional) initial content of the document",
	)
	cmd.Flags().StringVarP(
		&createFile,
		"file",
		"f",
		"",
		"(optional) file to read the initial content from, '-' for stdin",
	)
	SubCmd.AddCommand(cmd)
}
