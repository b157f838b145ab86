package shell

import "os"

// envConfig centralises every os.Getenv call the shell makes (§10.3),
// so the full set of environment dependencies is visible in one place
// and components can be constructed with an injected config in tests
// instead of mutating the real process environment.
type envConfig struct {
	path     string
	home     string
	logLevel string
	shellEnv string
}

// loadEnvConfig reads the shell's environment knobs once: PATH and HOME
// (§6), plus the logging knobs SHELL_LOG_LEVEL and SHELL_ENV (§10.1).
func loadEnvConfig() envConfig {
	return envConfig{
		path:     os.Getenv("PATH"),
		home:     os.Getenv("HOME"),
		logLevel: os.Getenv("SHELL_LOG_LEVEL"),
		shellEnv: os.Getenv("SHELL_ENV"),
	}
}
