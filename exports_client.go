/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-13 11:02:44
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 13:02:10
 * @FilePath: \go-rsc\exports_client.go
 * @Description: Client 包的类型和函数导出
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */

package rsc

import (
	"github.com/kamalyes/go-rsc/client"
)

// ============================================================================
// Client 类型导出
// ============================================================================

type (
	Client              = client.Client
	WebSocket           = client.WebSocket
	Backoff             = client.Backoff
	CredentialSource    = client.CredentialSource
	WatchableCredential = client.WatchableCredential
	StaticCredential    = client.StaticCredential
	MutableCredential   = client.MutableCredential
	FileCredential      = client.FileCredential
)

// ============================================================================
// Client 函数导出
// ============================================================================

var (
	NewWebSocket         = client.NewWebSocket
	NewBackoff           = client.NewBackoff
	NewMutableCredential = client.NewMutableCredential
	NewFileCredential    = client.NewFileCredential
	IsNormalClose        = client.IsNormalClose
)

// ============================================================================
// Client 方法导出 - 这些方法通过 Client 实例调用
// ============================================================================

// 注意：以下是 Client 类型的方法列表，通过 Client 实例调用
// 例如：c := rsc.NewWithToken(url, token); c.Connect()

// 连接方法：
// - Connect(): 发起连接，已连接/连接中/无凭证时为空操作
// - Disconnect(): 主动断开，不再自动重连
// - Close(): 销毁客户端，不能在回调内调用

// 回调设置方法：
// - OnConnect(f func()): 连接成功回调
// - OnDisconnect(f func(code int, reason string)): 异常断开回调
// - OnMessage(f func(frame *Frame)): 业务消息回调
// - OnForceLogout(f func(reason string)): 被强制下线回调
// - OnStatusChange(f func(from, to ConnectionStatus)): 状态变化回调
// - OnError(f func(err error)): 错误回调

// 发送方法：
// - Send(msg any) bool: 立即发送，未连接返回 false
// - SendFrame(frame *Frame) bool: 发送结构化帧
// - Write(msg any) error: 同 Send，返回具体错误

// 查询方法：
// - Status() ConnectionStatus / IsConnected() bool
// - LastMessage() *Frame / Attempts() int / ID() string
