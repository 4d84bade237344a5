/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 10:20:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 21:06:13
 * @FilePath: \go-rsc\models\enums.go
 * @Description: 枚举类型定义
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package models

// ConnectionStatus 连接状态
type ConnectionStatus string

const (
	ConnectionStatusConnecting   ConnectionStatus = "connecting"   // 连接中
	ConnectionStatusConnected    ConnectionStatus = "connected"    // 已连接
	ConnectionStatusDisconnected ConnectionStatus = "disconnected" // 已断开
	ConnectionStatusError        ConnectionStatus = "error"        // 连接错误
)

// String 实现Stringer接口
func (s ConnectionStatus) String() string {
	return string(s)
}

// IsValid 检查连接状态是否有效
func (s ConnectionStatus) IsValid() bool {
	return ConnectionStatusValidator.IsValid(s)
}

// 关闭码
// 4001/4003 属于"不重连"集合，1006 为传输层异常断开（浏览器与 gorilla 一致）
const (
	CloseCodeManual          = 1000 // 主动断开（Disconnect 使用）
	CloseCodeAbnormal        = 1006 // 异常断开，没有收到关闭帧
	CloseCodeUnauthorized    = 4001 // 未授权
	CloseCodeForceDisconnect = 4003 // 服务端强制断开
)

// CloseReasonManual 主动断开时附带的关闭原因
const CloseReasonManual = "manual"

// DefaultNoRetryCloseCodes 默认不触发重连的关闭码
func DefaultNoRetryCloseCodes() []int {
	return []int{CloseCodeUnauthorized, CloseCodeForceDisconnect}
}
