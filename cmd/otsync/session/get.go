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
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/cmd/otsync/config"
	"github.com/yorkie-team/otsync/pkg/ot/selection"
)

func newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "get [session id]",
		Short:   "Print the latest content of a session",
		Args:    cobra.ExactArgs(1),
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := config.NewClient()
			if err != nil {
				return err
			}

			snapshot, err := cli.Connection(types.ID(args[0])).GetLatestState(context.Background())
			if err != nil {
				return err
			}

			if ok, err := printStructured(cmd, viper.GetString("output"), snapshot); ok || err != nil {
				return err
			}

			cmd.Print(snapshot.Content.String())
			if snapshot.Content.Target == nil {
				return nil
			}
			return printSelections(cmd, snapshot.Content.Target, getUTF16)
		},
	}
}

// printSelections writes the selections of every user after the content,
// one user per line in user order.
func printSelections(cmd *cobra.Command, target *selection.Target, utf16 bool) error {
	sels := target.Selections
	if len(sels) == 0 {
		return nil
	}

	cmd.Println()
	for _, user := range sels.Users() {
		ranges := make([]string, 0, len(sels[user]))
		for _, sel := range sels[user] {
			if utf16 {
				var err error
				if sel, err = selection.ToUTF16(target.Lines, sel); err != nil {
					return fmt.Errorf("selection of %s: %w", user, err)
				}
			}
			ranges = append(ranges, formatSelection(sel))
		}
		cmd.Printf("%s: %s\n", user, strings.Join(ranges, " "))
	}
	return nil
}

var getUTF16 bool

func init() {
	cmd := newGetCommand()
	cmd.Flags().BoolVar(
		&getUTF16,
		"utf16",
		false,
		"Print selection columns in UTF-16 code units",
	)
	SubCmd.AddCommand(cmd)
}
