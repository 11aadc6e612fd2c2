package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerParsesLevel(t *testing.T) {
	log := InitLogger("debug", true)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log = InitLogger("warn", false)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
}

func TestInitLoggerInvalidLevelFallsBackToInfo(t *testing.T) {
	log := InitLogger("chatty", false)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestInitLoggerFormatterByEnvironment(t *testing.T) {
	t.Setenv("LOG_FORMAT", "")

	log := InitLogger("info", false)
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = InitLogger("info", true)
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestGetLoggerReturnsGlobal(t *testing.T) {
	log := InitLogger("info", false)
	require.Same(t, log, GetLogger())

	Logger = nil
	assert.NotNil(t, GetLogger())
}
