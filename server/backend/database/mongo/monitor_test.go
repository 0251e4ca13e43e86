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

package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueryMonitor(t *testing.T) {
	t.Run("disabled monitor test", func(t *testing.T) {
		monitor := NewQueryMonitor(&MonitorConfig{})
		assert.Nil(t, monitor.CreateCommandMonitor())
	})

	t.Run("slow query test", func(t *testing.T) {
		monitor := NewQueryMonitor(&MonitorConfig{
			Enabled:            true,
			SlowQueryThreshold: 100 * time.Millisecond,
		})
		assert.NotNil(t, monitor.CreateCommandMonitor())
		assert.True(t, monitor.isSlow(time.Second))
		assert.False(t, monitor.isSlow(10*time.Millisecond))

		monitor = NewQueryMonitor(&MonitorConfig{Enabled: true})
		assert.False(t, monitor.isSlow(time.Hour))
	})
}
