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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/cmd/otsync/config"
	"github.com/yorkie-team/otsync/pkg/document"
)

func newUndoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "undo [session id] [version]",
		Short: "Undo the edit accepted as the given version, or the latest edit",
		Long: "Undo the edit accepted as the given version. Edits made after it are\n" +
			"kept. Without a version the latest edit is undone.",
		Args:    cobra.RangeArgs(1, 2),
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := config.NewClient()
			if err != nil {
				return err
			}

			ctx := context.Background()
			id := types.ID(args[0])
			version, err := undoVersion(ctx, cli.Connection(id), args[1:])
			if err != nil {
				return err
			}

			patch, err := cli.Undo(ctx, id, version)
			if err != nil {
				return fmt.Errorf("undo v%d: %w", version, err)
			}

			if ok, err := printStructured(cmd, viper.GetString("output"), patch); ok || err != nil {
				return err
			}

			cmd.Printf("Undid v%d of %s (v%d)\n", version, id, patch.Version)
			return nil
		},
	}
}

// undoVersion parses the version argument, or asks the server for the latest
// version when there is none.
func undoVersion(ctx context.Context, conn versionSource, args []string) (document.Version, error) {
	if len(args) > 0 {
		version, err := document.ParseVersion(args[0])
		if err != nil {
			return 0, fmt.Errorf("version %q: %w", args[0], err)
		}
		return version, nil
	}

	snapshot, err := conn.GetLatestState(ctx)
	if err != nil {
		return 0, err
	}
	if snapshot.Version == document.InitialVersion {
		return 0, fmt.Errorf("nothing to undo at v%d", snapshot.Version)
	}
	return snapshot.Version, nil
}

// versionSource reports the latest state of a session.
type versionSource interface {
	GetLatestState(ctx context.Context) (document.Snapshot, error)
}

func init() {
	SubCmd.AddCommand(newUndoCommand())
}
