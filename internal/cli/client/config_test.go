package client

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempConfig(t *testing.T) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "nested", "config.json")

	oldGetConfigPath := getConfigPathFunc
	getConfigPathFunc = func() (string, error) {
		return configPath, nil
	}
	t.Cleanup(func() { getConfigPathFunc = oldGetConfigPath })
	return configPath
}

func TestGetConfigPath(t *testing.T) {
	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.True(t, strings.HasSuffix(path, filepath.Join("dreamcourse", "config.json")))
}

func TestLoadGlobalConfig_FileNotExists(t *testing.T) {
	useTempConfig(t)

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestLoadGlobalConfig_InvalidJSON(t *testing.T) {
	configPath := useTempConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0755))
	require.NoError(t, os.WriteFile(configPath, []byte("{not json"), 0600))

	_, err := LoadGlobalConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse "+configPath)
}

func TestSaveGlobalConfig_RoundTrip(t *testing.T) {
	configPath := useTempConfig(t)

	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIURL: "http://api.test", SessionID: "s-1"}))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://api.test", config.APIURL)
	assert.Equal(t, "s-1", config.SessionID)

	entries, err := os.ReadDir(filepath.Dir(configPath))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestSaveGlobalConfig_Nil(t *testing.T) {
	useTempConfig(t)
	assert.Error(t, SaveGlobalConfig(nil))
}

func TestSaveSessionID_KeepsAPIURL(t *testing.T) {
	useTempConfig(t)
	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIURL: "http://api.test"}))

	require.NoError(t, SaveSessionID("s-2"))

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://api.test", config.APIURL)
	assert.Equal(t, "s-2", config.SessionID)
}

func TestCurrentSessionID(t *testing.T) {
	useTempConfig(t)

	_, err := CurrentSessionID("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no active session")

	require.NoError(t, SaveSessionID("s-3"))

	id, err := CurrentSessionID("")
	require.NoError(t, err)
	assert.Equal(t, "s-3", id)

	id, err = CurrentSessionID("explicit")
	require.NoError(t, err)
	assert.Equal(t, "explicit", id)
}
