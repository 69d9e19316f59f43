package infrastructure

import (
	"os"
	"path/filepath"
	"testing"

	"rewards/config"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests mutate the global logger and do not run in parallel.

func TestConfigureLogging(t *testing.T) {
	t.Cleanup(func() {
		log.SetLevel(log.InfoLevel)
		log.SetFormatter(&log.TextFormatter{})
		log.SetOutput(os.Stderr)
	})

	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "text debug", level: "debug", format: "text"},
		{name: "json warn", level: "warn", format: "json"},
		{name: "bad level", level: "loud", format: "text", wantErr: true},
		{name: "bad format", level: "info", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewTestConfig()
			cfg.LogLevel = tt.level
			cfg.LogFormat = tt.format

			closer, err := ConfigureLogging(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NoError(t, closer.Close())

			expected, _ := log.ParseLevel(tt.level)
			assert.Equal(t, expected, log.GetLevel())
		})
	}
}

func TestConfigureLogging_WritesFile(t *testing.T) {
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	cfg := config.NewTestConfig()
	cfg.LogLevel = "info"
	cfg.LogFormat = "json"
	cfg.LogFile = filepath.Join(t.TempDir(), "rewards.log")

	closer, err := ConfigureLogging(cfg)
	require.NoError(t, err)

	log.WithField("userID", "user-1").Info("written to file")
	require.NoError(t, closer.Close())

	contents, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(contents), `"userID":"user-1"`)
}
