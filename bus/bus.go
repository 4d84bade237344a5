/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-15 10:21:36
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 09:02:11
 * @FilePath: \go-rsc\bus\bus.go
 * @Description: 消息总线接口 - 将收到的业务消息转发给进程内或跨进程的订阅者
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */

package bus

import (
	"context"
	"strings"
	"time"

	"github.com/kamalyes/go-rsc/models"
)

// ErrBusClosed 总线已关闭
var ErrBusClosed = models.ErrBusClosed

// Wildcard 订阅全部主题
const Wildcard = "*"

// Envelope 总线上传递的消息
type Envelope struct {
	Topic       string    `json:"topic"`
	Payload     []byte    `json:"payload"`
	PublishedAt time.Time `json:"published_at"`
}

// Bus 消息总线
type Bus interface {
	// Publish 发布消息到指定主题
	Publish(ctx context.Context, topic string, payload []byte) error

	// Subscribe 订阅主题，支持 "*" 和 "prefix.*" 形式的通配
	// 返回的 cancel 可重复调用；ctx 结束时自动取消订阅
	Subscribe(ctx context.Context, topics ...string) (<-chan Envelope, func(), error)

	// Close 关闭总线，关闭后所有订阅通道被关闭
	Close() error
}

// MatchTopic 主题是否命中订阅模式
//   - "*" 命中全部
//   - "prefix.*" 命中以 "prefix." 开头的主题
//   - 其它按全等匹配
func MatchTopic(pattern, topic string) bool {
	switch {
	case pattern == Wildcard:
		return true
	case strings.HasSuffix(pattern, "."+Wildcard):
		return strings.HasPrefix(topic, strings.TrimSuffix(pattern, Wildcard))
	default:
		return pattern == topic
	}
}

// isPattern 是否为通配订阅
func isPattern(topic string) bool {
	return strings.Contains(topic, Wildcard)
}
