/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 10:31:42
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-16 18:02:10
 * @FilePath: \go-rsc\models\event.go
 * @Description: 客户端内部消费的保留事件
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package models

// 保留事件名
const (
	// EventHeartbeat 客户端周期发送的心跳帧
	EventHeartbeat = "heartbeat"
	// EventHeartbeatAck 服务端心跳应答
	EventHeartbeatAck = "heartbeat_ack"
	// EventPong 兼容旧服务端的心跳应答
	EventPong = "pong"
	// EventForceDisconnect 服务端要求下线，携带 reason
	EventForceDisconnect = "force_disconnect"
)

// 帧字段名
const (
	FieldEvent  = "event"
	FieldReason = "reason"
)

// DefaultAckEvents 默认的心跳应答事件集合，收到后直接丢弃
func DefaultAckEvents() []string {
	return []string{EventHeartbeatAck, EventPong}
}
