// Copyright (c) OpenMMLab. All rights reserved.

package logger

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger

// init Logger
func init() {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(getLevelFromEnv())
	config.EncoderConfig.CallerKey = ""
	config.EncoderConfig.StacktraceKey = ""

	var err error
	Logger, err = config.Build()
	if err != nil {
		panic(err)
	}

	zap.ReplaceGlobals(Logger)
}

// Log level comes from MEGARUN_LOG_LEVEL (debug/info/warn/error/...).
func getLevelFromEnv() zapcore.Level {
	levelStr := os.Getenv("MEGARUN_LOG_LEVEL")
	if levelStr == "" {
		return zapcore.InfoLevel
	}

	level, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func ToPrettyJSON(v interface{}) string {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(bytes)
}
