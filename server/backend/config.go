/*
 * Copyright 2021 The Yorkie Authors. All rights reserved.
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

package backend

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrInvalidSubscriptionLimit occurs when the subscription limit is negative.
var ErrInvalidSubscriptionLimit = errors.New("invalid subscription limit")

// Config is the configuration for creating a Backend instance.
type Config struct {
	// Hostname is otsync server hostname. hostname is used by metrics.
	Hostname string `yaml:"Hostname"`

	// SubscriptionLimitPerSession is the maximum number of watchers of a
	// session. Zero means no limit.
	SubscriptionLimitPerSession int `yaml:"SubscriptionLimitPerSession"`

	// PersistTimeout is the timeout of writing a session to the database
	// after an accepted edit.
	PersistTimeout string `yaml:"PersistTimeout"`

	// SessionListLimit is the maximum number of sessions a listing returns.
	SessionListLimit int `yaml:"SessionListLimit"`

	// DefaultContent is the text a session starts with when it is created
	// without content.
	DefaultContent string `yaml:"DefaultContent"`
}

// Validate validates this config.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.PersistTimeout); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--backend-persist-timeout" flag: %w`,
			c.PersistTimeout,
			err,
		)
	}

	if c.SubscriptionLimitPerSession < 0 {
		return fmt.Errorf(
			`invalid argument "%d" for "--backend-subscription-limit" flag: %w`,
			c.SubscriptionLimitPerSession,
			ErrInvalidSubscriptionLimit,
		)
	}

	return nil
}

// ParsePersistTimeout returns the timeout of writing a session.
func (c *Config) ParsePersistTimeout() time.Duration {
	result, err := time.ParseDuration(c.PersistTimeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse persist timeout: %v\n", err)
		os.Exit(1)
	}

	return result
}
