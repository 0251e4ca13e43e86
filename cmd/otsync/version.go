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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/cmd/otsync/config"
	"github.com/yorkie-team/otsync/internal/version"
)

var clientOnly bool

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of OTSync",
		RunE: func(cmd *cobra.Command, args []string) error {
			versionInfo := types.VersionInfo{
				ClientVersion: types.NewVersionDetail(version.Version, version.BuildDate),
			}

			var serverErr error
			if !clientOnly {
				versionInfo.ServerVersion, serverErr = serverVersion(cmd.Context())
			}

			switch viper.GetString("output") {
			case "":
				cmd.Printf("Client: %s\n", versionInfo.ClientVersion)
				if !clientOnly {
					cmd.Printf("Server: %s\n", versionInfo.ServerVersion)
				}
			case "yaml":
				marshalled, err := yaml.Marshal(&versionInfo)
				if err != nil {
					return errors.New("failed to marshal YAML")
				}
				cmd.Println(string(marshalled))
			case "json":
				marshalled, err := json.MarshalIndent(&versionInfo, "", "  ")
				if err != nil {
					return errors.New("failed to marshal JSON")
				}
				cmd.Println(string(marshalled))
			default:
				return fmt.Errorf("unknown output format: %s", viper.GetString("output"))
			}

			if serverErr != nil {
				cmd.PrintErrf("Error fetching server version: %v\n", serverErr)
			} else if !versionInfo.ClientVersion.Compatible(versionInfo.ServerVersion) {
				cmd.PrintErrf("WARNING: client %s may not work with server %s\n",
					versionInfo.ClientVersion.OTSyncVersion, versionInfo.ServerVersion.OTSyncVersion)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clientOnly, "client", false, "Shows client version only (no server required).")
	return cmd
}

func serverVersion(ctx context.Context) (*types.VersionDetail, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cli, err := config.NewClient()
	if err != nil {
		return nil, err
	}
	return cli.GetServerVersion(ctx)
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}
