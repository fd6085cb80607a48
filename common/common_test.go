package common_test

import (
	"shopfloor/common"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeTime(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	in := time.Date(2021, 5, 6, 12, 30, 40, 666666666, loc)

	out := common.NormalizeTime(in)
	assert.Equal(t, time.UTC, out.Location())
	assert.Equal(t, 666666000, out.Nanosecond())
	assert.True(t, out.Equal(in.Truncate(time.Microsecond)))

	assert.Nil(t, common.NormalizeTimePtr(nil))
	assert.True(t, common.NormalizeTimePtr(&in).Equal(out))
}

func TestNonNegative(t *testing.T) {
	assert.Equal(t, time.Duration(0), common.NonNegative(-time.Second))
	assert.Equal(t, time.Duration(0), common.NonNegative(0))
	assert.Equal(t, time.Minute, common.NonNegative(time.Minute))
}

func TestDefaultFieldsHook(t *testing.T) {
	common.ConfigureLogger("test-service", "json", "debug")
	defer common.ConfigureLogger("shopfloor", "", "info")

	entry := logrus.NewEntry(logrus.StandardLogger())
	hook := &common.DefaultFieldsHook{}
	assert.NoError(t, hook.Fire(entry))
	assert.Equal(t, "test-service", entry.Data["serviceName"])
	assert.Equal(t, common.GetServiceInstance(), entry.Data["serviceInstance"])
	assert.Equal(t, logrus.AllLevels, hook.Levels())
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}
