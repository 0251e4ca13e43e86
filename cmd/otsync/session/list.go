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
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/cmd/otsync/config"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Short:   "List the sessions of the server",
		Args:    cobra.NoArgs,
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := config.NewClient()
			if err != nil {
				return err
			}

			sessions, err := cli.ListSessions(context.Background())
			if err != nil {
				return err
			}

			return printSessions(cmd, viper.GetString("output"), sessions)
		},
	}
}

func printSessions(cmd *cobra.Command, output string, sessions []types.SessionSummary) error {
	if ok, err := printStructured(cmd, output, sessions); ok || err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateColumns = false
	tw.Style().Options.SeparateFooter = false
	tw.Style().Options.SeparateHeader = false
	tw.Style().Options.SeparateRows = false
	tw.AppendHeader(table.Row{
		"ID",
		"KIND",
		"VERSION",
		"CREATED AT",
		"UPDATED AT",
	})
	now := time.Now().UTC()
	for _, session := range sessions {
		tw.AppendRow(table.Row{
			session.ID,
			session.Kind,
			session.Version,
			humanDuration(now.Sub(session.CreatedAt)),
			humanDuration(now.Sub(session.UpdatedAt)),
		})
	}
	cmd.Printf("%s\n", tw.Render())
	return nil
}

func init() {
	SubCmd.AddCommand(newListCommand())
}
