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

// Package config provides the configuration shared by the CLI commands.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yorkie-team/otsync/client"
)

// EnvPrefix is the prefix of the environment variables read by the CLI,
// e.g. OTSYNC_RPC_ADDR.
const EnvPrefix = "OTSYNC"

// ErrUnknownOutput is returned when the output format is not supported.
var ErrUnknownOutput = errors.New("--output must be 'yaml' or 'json'")

// BindEnv makes viper read the CLI settings from the environment.
func BindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	_ = viper.BindEnv("rpcAddr", EnvPrefix+"_RPC_ADDR")
	_ = viper.BindEnv("output", EnvPrefix+"_OUTPUT")
	viper.AutomaticEnv()
}

// Preload validates the settings shared by the commands that talk to a
// server. It is meant to be used as a PreRunE hook.
func Preload(_ *cobra.Command, _ []string) error {
	switch viper.GetString("output") {
	case "", "yaml", "json":
	default:
		return ErrUnknownOutput
	}

	if viper.GetString("rpcAddr") == "" {
		return errors.New("rpc address is required")
	}
	return nil
}

// NewClient creates an RPC client for the configured server.
func NewClient(opts ...client.Option) (*client.RPCClient, error) {
	return client.NewRPCClient(viper.GetString("rpcAddr"), opts...)
}
