/*
 * Copyright 2022 The Yorkie Authors. All rights reserved.
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
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/cmd/otsync/config"
	"github.com/yorkie-team/otsync/pkg/ot/selection"
)

var (
	selectRanges []string
	selectUTF16  bool
)

func newSelectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "select [session id]",
		Short: "Set the selections of this client in a selection session",
		Long: "Set the selections of this client in a selection session. A range is\n" +
			"written line:column or line:column-line:column, counting from 0.",
		Args:    cobra.ExactArgs(1),
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			sels, err := parseSelections(selectRanges)
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

			content := c.Content()
			if content.Target == nil {
				return fmt.Errorf("session %s holds %s, not selections", args[0], content.Kind)
			}
			if selectUTF16 {
				for i, sel := range sels {
					if sels[i], err = selection.FromUTF16(content.Target.Lines, sel); err != nil {
						return err
					}
				}
			}

			if err := c.Select(sels...); err != nil {
				return err
			}
			if err := syncEdit(ctx, c); err != nil {
				return err
			}

			cmd.Printf("Selections updated: %s (v%d)\n", args[0], c.Version())
			return nil
		},
	}
}

// parseSelections parses ranges written line:column or
// line:column-line:column.
func parseSelections(ranges []string) ([]selection.Selection, error) {
	sels := make([]selection.Selection, 0, len(ranges))
	for _, r := range ranges {
		anchor, head, isRange := strings.Cut(r, "-")
		from, err := parsePosition(anchor)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", r, err)
		}
		if !isRange {
			sels = append(sels, selection.Cursor(from))
			continue
		}
		to, err := parsePosition(head)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", r, err)
		}
		sels = append(sels, selection.Range(from, to))
	}
	return sels, nil
}

func parsePosition(s string) (selection.Position, error) {
	lineText, columnText, ok := strings.Cut(s, ":")
	if !ok {
		return selection.Position{}, errors.New("position must be line:column")
	}
	line, err := strconv.Atoi(lineText)
	if err != nil || line < 0 {
		return selection.Position{}, fmt.Errorf("invalid line %q", lineText)
	}
	column, err := strconv.Atoi(columnText)
	if err != nil || column < 0 {
		return selection.Position{}, fmt.Errorf("invalid column %q", columnText)
	}
	return selection.Position{Line: line, Column: column}, nil
}

// formatSelection writes sel from its start to its end.
func formatSelection(sel selection.Selection) string {
	start, end := sel.Start(), sel.End()
	if sel.IsCursor() {
		return fmt.Sprintf("%d:%d", start.Line, start.Column)
	}
	return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Column, end.Line, end.Column)
}

func init() {
	cmd := newSelectCommand()
	cmd.Flags().StringSliceVar(
		&selectRanges,
		"range",
		nil,
		"Selection to set, repeatable; none clears the selections",
	)
	cmd.Flags().BoolVar(
		&selectUTF16,
		"utf16",
		false,
		"Columns count UTF-16 code units, as browser editors report them",
	)
	SubCmd.AddCommand(cmd)
}
