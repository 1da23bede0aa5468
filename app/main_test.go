package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func Test_makeDBConfig(t *testing.T) {
	opts.DB.Driver = "mysql"
	opts.DB.Host = "localhost"
	opts.DB.Port = 3306
	opts.DB.User = "root"
	opts.DB.Password = "secret"
	opts.DB.Name = "job_portal"
	opts.DB.File = "jobport.db"
	opts.Conf = ""

	cfg, err := makeDBConfig()
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Driver)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 3306, cfg.Port)
	assert.Equal(t, "job_portal", cfg.DBName)
}

func Test_makeDBConfigFromFile(t *testing.T) {
	conf := filepath.Join(t.TempDir(), "jobport.yml")
	err := os.WriteFile(conf, []byte("driver: sqlite\nfile: /tmp/portal.db\nport: 3307\n"), 0o600)
	require.NoError(t, err)

	opts.DB.Driver = "mysql"
	opts.DB.Host = "localhost"
	opts.DB.Port = 3306
	opts.DB.Name = "job_portal"
	opts.Conf = conf

	cfg, err := makeDBConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Driver, "file setting wins over flag")
	assert.Equal(t, "/tmp/portal.db", cfg.File)
	assert.Equal(t, 3307, cfg.Port)
	assert.Equal(t, "job_portal", cfg.DBName, "unset file field keeps the flag value")
	assert.Equal(t, "localhost", cfg.Host)
}

func Test_makeDBConfigErrors(t *testing.T) {
	opts.Conf = "/no/such/file.yml"
	_, err := makeDBConfig()
	assert.Error(t, err)

	conf := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(conf, []byte("driver: [broken"), 0o600))
	opts.Conf = conf
	_, err = makeDBConfig()
	assert.Error(t, err)
}

func Test_setupLogsWithLogsDisabled(t *testing.T) {
	opts.Log.Enabled = false
	assert.Equal(t, os.Stdout, setupLogs())
}

func Test_setupLogsToFile(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	opts.Log.Enabled = true
	opts.Log.Filename = tmpfile.Name()
	opts.Log.MaxSize = 100
	opts.Log.MaxBackups = 7
	opts.Log.MaxAge = 0
	opts.Log.EnabledCompress = false

	out := setupLogs()
	assert.IsType(t, &lumberjack.Logger{}, out)

	logger := out.(*lumberjack.Logger)
	assert.Equal(t, tmpfile.Name(), logger.Filename)
	assert.Equal(t, 100, logger.MaxSize)
	assert.Equal(t, 7, logger.MaxBackups)
	assert.Equal(t, 0, logger.MaxAge)
	assert.False(t, logger.Compress)
}
