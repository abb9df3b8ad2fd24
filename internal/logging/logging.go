// Package logging 创建 zap 日志器
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 创建写入 file 的日志器
//
// level 为 off 或 file 为空时返回不输出任何内容的日志器。
// 日志追加写入文件，语言服务器的标准输出留给协议本身。
func New(level, file string) (*zap.Logger, error) {
	if file == "" || strings.EqualFold(level, "off") {
		return zap.NewNop(), nil
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(f),
		zap.NewAtomicLevelAt(lvl),
	)
	return zap.New(core, zap.AddCaller()), nil
}

// Console 创建写到标准错误的日志器，供命令行的 --verbose 使用
func Console(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}
