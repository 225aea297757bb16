package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	cfgFile, dataDir, noColor, debug = "", "", false, false
	t.Cleanup(func() {
		viper.Reset()
		cfgFile, dataDir, noColor, debug = "", "", false, false
	})
}

func TestParsePerm(t *testing.T) {
	tests := []struct {
		in      string
		want    os.FileMode
		wantErr bool
	}{
		{"0755", 0o755, false},
		{"644", 0o644, false},
		{"0600", 0o600, false},
		{"0", 0, false},
		{"0888", 0, true},
		{"1777", 0, true},
		{"rwx", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePerm(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitConfigDefaults(t *testing.T) {
	resetConfig(t)
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")

	InitConfig()
	s, err := Current()
	require.NoError(t, err)

	assert.Equal(t, "0755", s.DirPerm)
	assert.Equal(t, "0644", s.FilePerm)
	assert.Equal(t, []string{"*.sh"}, s.ExecGlobs)
	assert.True(t, s.DBMode0600)
	assert.Equal(t, "structure", s.Format)
	assert.True(t, s.Color)
	assert.True(t, s.History)
	assert.Equal(t, "200ms", s.Debounce)
}

func TestInitConfigFileAndFlags(t *testing.T) {
	resetConfig(t)
	dir := t.TempDir()
	cfgFile = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`file_perm: "0600"
format: summary
exec_globs:
  - "*.sh"
  - "bin/*"
history: false
`), 0o644))
	dataDir = filepath.Join(dir, "data")
	noColor = true

	InitConfig()
	s, err := Current()
	require.NoError(t, err)

	assert.Equal(t, cfgFile, s.ConfigFile)
	assert.Equal(t, "0600", s.FilePerm)
	assert.Equal(t, "summary", s.Format)
	assert.Equal(t, []string{"*.sh", "bin/*"}, s.ExecGlobs)
	assert.False(t, s.History)
	assert.Equal(t, dataDir, s.DataDir)
	assert.False(t, s.Color)
}

func TestInitService(t *testing.T) {
	resetConfig(t)
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")
	dataDir = filepath.Join(t.TempDir(), "data")
	InitConfig()

	svc, err := InitService(nil, logrus.New())
	require.NoError(t, err)
	defer svc.Close()

	assert.NotNil(t, svc.Registry)
	assert.NotNil(t, svc.History)
	assert.Equal(t, os.FileMode(0o755), svc.Config.DirPerm)
	assert.Equal(t, os.FileMode(0o644), svc.Config.FilePerm)
	assert.FileExists(t, filepath.Join(dataDir, "history.db"))
}

func TestInitServiceRejectsBadPerm(t *testing.T) {
	resetConfig(t)
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")
	InitConfig()
	viper.Set("dir_perm", "0999")

	_, err := InitService(nil, logrus.New())
	assert.ErrorContains(t, err, "dir_perm")
}

func TestNewLoggerLevel(t *testing.T) {
	resetConfig(t)
	assert.Equal(t, logrus.WarnLevel, NewLogger().GetLevel())

	debug = true
	assert.Equal(t, logrus.DebugLevel, NewLogger().GetLevel())
}

func TestInitConfigEnvOverrides(t *testing.T) {
	resetConfig(t)
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")
	t.Setenv("FOLDERGEN_HISTORY", "false")
	t.Setenv("FOLDERGEN_FORMAT", "detailed")

	InitConfig()
	s, err := Current()
	require.NoError(t, err)

	assert.False(t, s.History)
	assert.Equal(t, "detailed", s.Format)
}

func TestUseColor(t *testing.T) {
	resetConfig(t)
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")
	noColor = true
	InitConfig()

	assert.False(t, UseColor())
}
