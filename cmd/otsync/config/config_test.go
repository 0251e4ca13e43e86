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

package config_test

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/otsync/cmd/otsync/config"
)

func TestPreload(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("rpcAddr", "localhost:8080")
	viper.Set("output", "")
	assert.NoError(t, config.Preload(nil, nil))

	viper.Set("output", "xml")
	assert.ErrorIs(t, config.Preload(nil, nil), config.ErrUnknownOutput)

	viper.Set("output", "json")
	viper.Set("rpcAddr", "")
	assert.Error(t, config.Preload(nil, nil))
}

func TestBindEnv(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("OTSYNC_RPC_ADDR", "example.com:9090")

	config.BindEnv()
	assert.Equal(t, "example.com:9090", viper.GetString("rpcAddr"))

	cli, err := config.NewClient()
	assert.NoError(t, err)
	assert.NotEmpty(t, cli.Key())
}
