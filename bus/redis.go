/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-15 14:06:19
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 09:40:33
 * @FilePath: \go-rsc\bus\redis.go
 * @Description: 基于 Redis PUBLISH/SUBSCRIBE 的跨进程消息总线
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */

package bus

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kamalyes/go-logger"
	"github.com/kamalyes/go-toolbox/pkg/errorx"
	"github.com/kamalyes/go-toolbox/pkg/mathx"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix 默认频道前缀
const DefaultRedisPrefix = "rsc:"

// RedisBus 跨进程总线，频道名为 prefix + topic
type RedisBus struct {
	client     redis.UniversalClient
	prefix     string
	bufferSize int
	logger     logger.ILogger

	mu      sync.Mutex
	pubsubs map[*redis.PubSub]struct{}
	closed  bool
	wg      sync.WaitGroup
}

// NewRedisBus 创建 Redis 总线，prefix 为空时使用 DefaultRedisPrefix
// client 的生命周期由调用方管理
func NewRedisBus(client redis.UniversalClient, prefix string) *RedisBus {
	return &RedisBus{
		client:     client,
		prefix:     mathx.IfEmpty(prefix, DefaultRedisPrefix),
		bufferSize: DefaultBufferSize,
		logger:     logger.NewEmptyLogger(),
		pubsubs:    make(map[*redis.PubSub]struct{}),
	}
}

// WithLogger 设置日志器
func (b *RedisBus) WithLogger(l logger.ILogger) *RedisBus {
	if l != nil {
		b.logger = l
	}
	return b
}

// WithBufferSize 设置订阅通道缓冲大小
func (b *RedisBus) WithBufferSize(size int) *RedisBus {
	if size > 0 {
		b.bufferSize = size
	}
	return b
}

// Prefix 频道前缀
func (b *RedisBus) Prefix() string {
	return b.prefix
}

// Publish 发布到 prefix + topic
func (b *RedisBus) Publish(ctx context.Context, topic string, payload []byte) error {
	if b.isClosed() {
		return ErrBusClosed
	}
	if err := b.client.Publish(ctx, b.prefix+topic, payload).Err(); err != nil {
		return errorx.WrapError("redis publish "+topic, err)
	}
	return nil
}

// Subscribe 订阅主题，包含通配符的主题使用 PSUBSCRIBE
// 订阅确认后才返回
func (b *RedisBus) Subscribe(ctx context.Context, topics ...string) (<-chan Envelope, func(), error) {
	if len(topics) == 0 {
		topics = []string{Wildcard}
	}
	if b.isClosed() {
		return nil, nil, ErrBusClosed
	}

	var channels, patterns []string
	for _, topic := range topics {
		if isPattern(topic) {
			patterns = append(patterns, b.prefix+topic)
		} else {
			channels = append(channels, b.prefix+topic)
		}
	}

	pubsub := b.client.Subscribe(ctx, channels...)
	if len(patterns) > 0 {
		if err := pubsub.PSubscribe(ctx, patterns...); err != nil {
			_ = pubsub.Close()
			return nil, nil, errorx.WrapError("redis psubscribe", err)
		}
	}
	// 等待订阅确认，避免订阅建立前发布的消息丢失
	for range len(channels) + len(patterns) {
		if _, err := pubsub.Receive(ctx); err != nil {
			_ = pubsub.Close()
			return nil, nil, errorx.WrapError("redis subscribe", err)
		}
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		_ = pubsub.Close()
		return nil, nil, ErrBusClosed
	}
	b.pubsubs[pubsub] = struct{}{}
	b.wg.Add(1)
	b.mu.Unlock()

	out := make(chan Envelope, b.bufferSize)
	subCtx, stop := context.WithCancel(ctx)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			stop()
			b.mu.Lock()
			delete(b.pubsubs, pubsub)
			b.mu.Unlock()
			_ = pubsub.Close()
		})
	}

	go b.forward(subCtx, pubsub, out, cancel)
	return out, cancel, nil
}

// forward 将 Redis 消息转为 Envelope，pubsub 关闭后关闭输出通道
func (b *RedisBus) forward(ctx context.Context, pubsub *redis.PubSub, out chan<- Envelope, cancel func()) {
	defer b.wg.Done()
	defer close(out)
	defer cancel()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			env := Envelope{
				Topic:       strings.TrimPrefix(msg.Channel, b.prefix),
				Payload:     []byte(msg.Payload),
				PublishedAt: time.Now(),
			}
			select {
			case out <- env:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (b *RedisBus) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Close 关闭所有订阅并等待转发协程退出，不关闭 Redis 客户端
func (b *RedisBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	pubsubs := make([]*redis.PubSub, 0, len(b.pubsubs))
	for ps := range b.pubsubs {
		pubsubs = append(pubsubs, ps)
	}
	b.pubsubs = make(map[*redis.PubSub]struct{})
	b.mu.Unlock()

	for _, ps := range pubsubs {
		if err := ps.Close(); err != nil {
			b.logger.WarnKV("关闭订阅失败", "error", err)
		}
	}
	b.wg.Wait()
	return nil
}
