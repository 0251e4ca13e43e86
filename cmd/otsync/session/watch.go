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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/cmd/otsync/config"
)

func newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "watch [session id]",
		Short:   "Print the events of a session until interrupted",
		Args:    cobra.ExactArgs(1),
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := config.NewClient()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			events, err := cli.Watch(ctx, types.ID(args[0]))
			if err != nil {
				return err
			}

			output := viper.GetString("output")
			for resp := range events {
				if resp.Err != nil {
					return resp.Err
				}

				if output != "" {
					if _, err := printStructured(cmd, output, resp.Event); err != nil {
						return err
					}
					continue
				}
				cmd.Printf("%s v%d %s\n", resp.Event.Type, resp.Event.Version, resp.Event.Publisher)
			}
			return nil
		},
	}
}

func init() {
	SubCmd.AddCommand(newWatchCommand())
}
