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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/client"
	"github.com/yorkie-team/otsync/cmd/otsync/config"
)

var (
	editContent string
	editFile    string
)

func newEditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit [session id]",
		Short: "Replace the content of a session, merging with concurrent edits",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if editFile == "" && !cmd.Flags().Changed("content") {
				return errors.New("either --content or --file is required")
			}
			return config.Preload(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readContent(cmd, editContent, editFile)
			if err != nil {
				return err
			}

			cli, err := config.NewClient()
			if err != nil {
				return err
			}

			ctx := context.Background()
			c, err := cli.Attach(ctx, types.ID(args[0]))
			if err != nil {
				return err
			}

			if err := c.Edit(text); err != nil {
				return err
			}
			if err := syncEdit(ctx, c); err != nil {
				return err
			}

			cmd.Printf("Session updated: %s (v%d)\n", args[0], c.Version())
			return nil
		},
	}
}

// syncEdit pulls and then submits the single local edit of a command. When
// another edit lands between the two, the server still accepts the rebased
// edit but answers with a version the client has not seen; the client then
// starts over from the latest state, which includes the edit.
func syncEdit(ctx context.Context, c *client.Client) error {
	err := c.Sync(ctx)
	if !errors.Is(err, client.ErrOutOfOrder) {
		return err
	}

	if _, err := c.Resync(ctx); err != nil {
		return fmt.Errorf("resync after concurrent edit: %w", err)
	}
	return nil
}

func init() {
	cmd := newEditCommand()
	cmd.Flags().StringVar(
		&editContent,
		"content",
		"",
		"New content of the document",
	)
	cmd.Flags().StringVarP(
		&editFile,
		"file",
		"f",
		"",
		"File to read the new content from, '-' for stdin",
	)
	SubCmd.AddCommand(cmd)
}
