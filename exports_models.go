/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-13 11:20:05
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 22:31:56
 * @FilePath: \go-rsc\exports_models.go
 * @Description: Models 包的类型和常量导出
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */

package rsc

import (
	"github.com/kamalyes/go-rsc/models"
)

// ============================================================================
// 类型导出
// ============================================================================

type (
	ConnectionStatus = models.ConnectionStatus
	Frame            = models.Frame
)

// ============================================================================
// 常量导出
// ============================================================================

const (
	ConnectionStatusConnecting   = models.ConnectionStatusConnecting
	ConnectionStatusConnected    = models.ConnectionStatusConnected
	ConnectionStatusDisconnected = models.ConnectionStatusDisconnected
	ConnectionStatusError        = models.ConnectionStatusError
)

const (
	CloseCodeManual          = models.CloseCodeManual
	CloseCodeAbnormal        = models.CloseCodeAbnormal
	CloseCodeUnauthorized    = models.CloseCodeUnauthorized
	CloseCodeForceDisconnect = models.CloseCodeForceDisconnect
	CloseReasonManual        = models.CloseReasonManual
)

const (
	EventHeartbeat       = models.EventHeartbeat
	EventHeartbeatAck    = models.EventHeartbeatAck
	EventPong            = models.EventPong
	EventForceDisconnect = models.EventForceDisconnect
)

// ============================================================================
// 函数导出
// ============================================================================

var (
	NewFrame      = models.NewFrame
	DecodeFrame   = models.DecodeFrame
	EncodeMessage = models.EncodeMessage
)
