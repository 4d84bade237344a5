/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-13 10:12:30
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 22:05:17
 * @FilePath: \go-rsc\logger.go
 * @Description: 日志器
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package rsc

import (
	"github.com/kamalyes/go-logger"
	"github.com/kamalyes/go-rsc/config"
)

// RSCLogger 直接使用 go-logger.ILogger
type RSCLogger = logger.ILogger

// NewRSCLogger 基于 go-logger 配置创建日志器
func NewRSCLogger(cfg *logger.LogConfig) RSCLogger {
	return logger.NewLogger(cfg)
}

// 日志器构造
var (
	NewDefaultRSCLogger = config.NewDefaultLogger
	NewNoOpLogger       = config.NewNoOpLogger
)

// 全局日志器
var (
	// DefaultLogger 默认日志器实例
	DefaultLogger RSCLogger = NewDefaultRSCLogger()

	// NoOpLoggerInstance 空日志器实例
	NoOpLoggerInstance RSCLogger = NewNoOpLogger()
)

// SetDefaultLogger 设置默认日志器，只影响之后创建的客户端
func SetDefaultLogger(l RSCLogger) {
	if l != nil {
		DefaultLogger = l
	}
}
