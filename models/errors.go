/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 11:40:09
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-17 09:12:33
 * @FilePath: \go-rsc\models\errors.go
 * @Description: 客户端错误定义 - 基于errorx.BaseError模式
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package models

import (
	"github.com/kamalyes/go-toolbox/pkg/errorx"
)

// ErrorType 错误类型定义，基于errorx.ErrorType
type ErrorType = errorx.ErrorType

// 使用 82xxx 区间（RSC = Resilient Socket Client）
const (
	// 连接相关 (82000-82099)
	ErrTypeNoCredential      ErrorType = 82001 // 缺少凭证
	ErrTypeNotConnected      ErrorType = 82002 // 未连接
	ErrTypeDialFailed        ErrorType = 82003 // 拨号失败
	ErrTypeHandshakeRejected ErrorType = 82004 // 握手被拒绝
	ErrTypeHeartbeatTimeout  ErrorType = 82005 // 心跳应答超时
	ErrTypeClientClosed      ErrorType = 82006 // 客户端已销毁

	// 消息相关 (82100-82199)
	ErrTypeMalformedFrame ErrorType = 82101 // 畸形帧
	ErrTypeWriteFailed    ErrorType = 82102 // 写入失败
	ErrTypeEncodeFailed   ErrorType = 82103 // 编码失败

	// 配置相关 (82200-82299)
	ErrTypeConfigInvalid ErrorType = 82201 // 配置无效
	ErrTypeConfigLoad    ErrorType = 82202 // 配置加载失败

	// 消息总线 (82300-82399)
	ErrTypeBusClosed ErrorType = 82301 // 总线已关闭
)

func init() {
	errorx.RegisterError(ErrTypeNoCredential, "no credential available")
	errorx.RegisterError(ErrTypeNotConnected, "socket is not connected")
	errorx.RegisterError(ErrTypeDialFailed, "dial failed: %s")
	errorx.RegisterError(ErrTypeHandshakeRejected, "handshake rejected with http status %d")
	errorx.RegisterError(ErrTypeHeartbeatTimeout, "no heartbeat ack within %s")
	errorx.RegisterError(ErrTypeClientClosed, "client is closed")

	errorx.RegisterError(ErrTypeMalformedFrame, "malformed frame: %s")
	errorx.RegisterError(ErrTypeWriteFailed, "write failed: %s")
	errorx.RegisterError(ErrTypeEncodeFailed, "encode failed: %s")

	errorx.RegisterError(ErrTypeConfigInvalid, "invalid config %s: %s")
	errorx.RegisterError(ErrTypeConfigLoad, "load config %s: %s")

	errorx.RegisterError(ErrTypeBusClosed, "message bus is closed")
}

// 错误变量
// 包级变量先于 init 初始化，此时错误码尚未注册，直接构造 BaseError
var (
	ErrNoCredential = errorx.NewBaseError("no credential available", ErrTypeNoCredential)
	ErrNotConnected = errorx.NewBaseError("socket is not connected", ErrTypeNotConnected)
	ErrClientClosed = errorx.NewBaseError("client is closed", ErrTypeClientClosed)
	ErrBusClosed    = errorx.NewBaseError("message bus is closed", ErrTypeBusClosed)
)

// IsErrorType 判断错误是否为指定类型，支持被包装的错误
func IsErrorType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}
	return errorx.ClassifyError(err) == errType
}
