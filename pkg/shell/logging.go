package shell

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the shell's internal diagnostic logger. It never
// writes to stdout/stderr: all output goes to a rotating log file, so
// the literal-string contracts of §8 are never polluted by internals.
// Level and encoding are selected the same way the teacher's wider
// ecosystem configures zap: an env var for level, a prod/dev switch
// for JSON vs console encoding.
func NewLogger() (*zap.Logger, error) {
	return newLoggerFromConfig(loadEnvConfig())
}

// newLoggerFromConfig builds the logger from an already-loaded
// envConfig, letting tests inject the logging knobs by field instead
// of mutating the real process environment.
func newLoggerFromConfig(cfg envConfig) (*zap.Logger, error) {
	level := parseLevel(strings.ToLower(cfg.logLevel))

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if strings.ToLower(cfg.shellEnv) == "prod" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	rotator := &lumberjack.Logger{
		Filename:   ".unixshell.log",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(rotator), level)
	return zap.New(core, zap.AddCaller()), nil
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	case "":
		return zap.InfoLevel
	default:
		return zap.InfoLevel
	}
}
