package shell

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEnvConfig(t *testing.T) {
	origPath, hadPath := os.LookupEnv("PATH")
	origHome, hadHome := os.LookupEnv("HOME")
	origLevel, hadLevel := os.LookupEnv("SHELL_LOG_LEVEL")
	origShellEnv, hadShellEnv := os.LookupEnv("SHELL_ENV")
	defer func() {
		restoreEnv(t, "PATH", origPath, hadPath)
		restoreEnv(t, "HOME", origHome, hadHome)
		restoreEnv(t, "SHELL_LOG_LEVEL", origLevel, hadLevel)
		restoreEnv(t, "SHELL_ENV", origShellEnv, hadShellEnv)
	}()

	require.NoError(t, os.Setenv("PATH", "/usr/bin:/bin"))
	require.NoError(t, os.Setenv("HOME", "/home/tester"))
	require.NoError(t, os.Setenv("SHELL_LOG_LEVEL", "debug"))
	require.NoError(t, os.Setenv("SHELL_ENV", "prod"))

	cfg := loadEnvConfig()
	require.Equal(t, "/usr/bin:/bin", cfg.path)
	require.Equal(t, "/home/tester", cfg.home)
	require.Equal(t, "debug", cfg.logLevel)
	require.Equal(t, "prod", cfg.shellEnv)
}

func restoreEnv(t *testing.T, key, value string, had bool) {
	t.Helper()
	if had {
		require.NoError(t, os.Setenv(key, value))
	} else {
		require.NoError(t, os.Unsetenv(key))
	}
}
