/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-13 10:41:19
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 22:20:33
 * @FilePath: \go-rsc\errors.go
 * @Description: 错误定义导出 - 基于errorx.BaseError模式
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package rsc

import (
	"github.com/kamalyes/go-rsc/models"
)

// ErrorType 错误类型
type ErrorType = models.ErrorType

// 错误码
const (
	ErrTypeNoCredential      = models.ErrTypeNoCredential
	ErrTypeNotConnected      = models.ErrTypeNotConnected
	ErrTypeDialFailed        = models.ErrTypeDialFailed
	ErrTypeHandshakeRejected = models.ErrTypeHandshakeRejected
	ErrTypeHeartbeatTimeout  = models.ErrTypeHeartbeatTimeout
	ErrTypeClientClosed      = models.ErrTypeClientClosed
	ErrTypeMalformedFrame    = models.ErrTypeMalformedFrame
	ErrTypeWriteFailed       = models.ErrTypeWriteFailed
	ErrTypeEncodeFailed      = models.ErrTypeEncodeFailed
	ErrTypeConfigInvalid     = models.ErrTypeConfigInvalid
	ErrTypeConfigLoad        = models.ErrTypeConfigLoad
	ErrTypeBusClosed         = models.ErrTypeBusClosed
)

// 错误变量
var (
	ErrNoCredential = models.ErrNoCredential
	ErrNotConnected = models.ErrNotConnected
	ErrClientClosed = models.ErrClientClosed
	ErrBusClosed    = models.ErrBusClosed
)

// IsErrorType 判断错误是否为指定类型
var IsErrorType = models.IsErrorType
