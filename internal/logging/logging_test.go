package logging

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-ops-backend/config"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name        string
		cfg         config.LogConfig
		expectError bool
		level       logrus.Level
		json        bool
	}{
		{name: "text info", cfg: config.LogConfig{Level: "info", Format: "text"}, level: logrus.InfoLevel},
		{name: "json debug", cfg: config.LogConfig{Level: "debug", Format: "json"}, level: logrus.DebugLevel, json: true},
		{name: "bad level", cfg: config.LogConfig{Level: "loud", Format: "text"}, expectError: true},
		{name: "bad format", cfg: config.LogConfig{Level: "info", Format: "xml"}, expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := New(tc.cfg)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.level, logger.GetLevel())
			_, isJSON := logger.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tc.json, isJSON)
		})
	}
}

func TestNew_WritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "hotel.log")
	logger, err := New(config.LogConfig{Level: "info", Format: "json", File: file})
	require.NoError(t, err)

	logger.WithField("id", 7).Info("hello")

	assert.FileExists(t, file)
}
