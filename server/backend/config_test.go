

package backend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/otsync/server/backend"
)

func newValidBackendConf() backend.Config {
	return backend.Config{
		PersistTimeout:              "5s",
		SubscriptionLimitPerSession: 10,
	}
}

func TestConfig(t *testing.T) {
	t.Run("validate test", func(t *testing.T) {
		validConf := newValidBackendConf()
		assert.NoError(t, validConf.Validate())

		conf1 := validConf
		conf1.PersistTimeout = "s"
		assert.Error(t, conf1.Validate())

		conf2 := validConf
		conf2.SubscriptionLimitPerSession = -1
		assert.ErrorIs(t, conf2.Validate(), backend.ErrInvalidSubscriptionLimit)
	})

	t.Run("parse test", func(t *testing.T) {
		validConf := newValidBackendConf()
		assert.Equal(t, "5s", validConf.ParsePersistTimeout().String())
	})
}
