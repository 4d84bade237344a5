/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 14:52:08
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-16 10:05:47
 * @FilePath: \go-rsc\config\logging.go
 * @Description: 日志配置，转换为 go-logger
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package config

import (
	"os"
	"strings"
	"time"

	"github.com/kamalyes/go-logger"
)

// LogPrefix 日志前缀
const LogPrefix = "[RSC] "

// Logging 日志配置
type Logging struct {
	Enabled    bool   `yaml:"enabled" toml:"enabled"`
	Level      string `yaml:"level" toml:"level"`             // debug/info/warn/error/fatal
	Output     string `yaml:"output" toml:"output"`           // console/file
	FilePath   string `yaml:"file-path" toml:"file-path"`     // 文件路径
	MaxSize    int    `yaml:"max-size" toml:"max-size"`       // 单文件大小(MB)，与 MaxBackups 同时大于0时轮转
	MaxBackups int    `yaml:"max-backups" toml:"max-backups"` // 保留文件数
}

// DefaultLogging 默认日志配置
func DefaultLogging() *Logging {
	return &Logging{
		Enabled: true,
		Level:   "info",
		Output:  "console",
	}
}

// NewDefaultLogger 创建默认配置的日志器
func NewDefaultLogger() logger.ILogger {
	config := logger.DefaultConfig().
		WithLevel(logger.INFO).
		WithPrefix(LogPrefix).
		WithShowCaller(false).
		WithColorful(true).
		WithTimeFormat(time.DateTime)

	return logger.NewLogger(config)
}

// NewNoOpLogger 创建空日志实例
func NewNoOpLogger() logger.ILogger {
	return logger.NewEmptyLogger()
}

// ToLogger 根据配置构建日志器，未启用时返回空日志器
func (l *Logging) ToLogger() logger.ILogger {
	if l == nil {
		return NewDefaultLogger()
	}
	if !l.Enabled {
		return NewNoOpLogger()
	}

	loggerConfig := logger.DefaultConfig().
		WithLevel(ParseLogLevel(l.Level)).
		WithPrefix(LogPrefix).
		WithShowCaller(false).
		WithColorful(l.Output != "file").
		WithTimeFormat(time.DateTime)

	switch {
	case l.Output == "file" && l.FilePath != "" && l.MaxSize > 0 && l.MaxBackups > 0:
		loggerConfig = loggerConfig.WithOutput(logger.NewRotateWriter(
			l.FilePath,
			int64(l.MaxSize)*1024*1024,
			l.MaxBackups,
		))
	case l.Output == "file" && l.FilePath != "":
		loggerConfig = loggerConfig.WithOutput(logger.NewFileWriter(l.FilePath))
	default:
		loggerConfig = loggerConfig.WithOutput(logger.NewConsoleWriter(os.Stdout))
	}

	return logger.NewLogger(loggerConfig)
}

// ParseLogLevel 解析日志级别字符串
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG
	case "warn", "warning":
		return logger.WARN
	case "error":
		return logger.ERROR
	case "fatal":
		return logger.FATAL
	default:
		return logger.INFO
	}
}
