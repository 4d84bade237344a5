/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-15 10:48:02
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 09:15:47
 * @FilePath: \go-rsc\bus\local.go
 * @Description: 进程内消息总线
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */

package bus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kamalyes/go-toolbox/pkg/mathx"
	"github.com/kamalyes/go-toolbox/pkg/syncx"
)

// DefaultBufferSize 每个订阅者的默认缓冲大小
const DefaultBufferSize = 64

type localSubscriber struct {
	id     uint64
	topics []string
	ch     chan Envelope
	stop   func() bool
}

func (s *localSubscriber) matches(topic string) bool {
	for _, pattern := range s.topics {
		if MatchTopic(pattern, topic) {
			return true
		}
	}
	return false
}

// LocalBus 进程内总线，发布不阻塞，订阅者缓冲区满时丢弃并计数
type LocalBus struct {
	mu          sync.RWMutex
	subscribers map[uint64]*localSubscriber
	nextID      uint64
	bufferSize  int
	closed      bool
	dropped     atomic.Int64
}

// NewLocalBus 创建进程内总线，bufferSize <= 0 时使用默认值
func NewLocalBus(bufferSize int) *LocalBus {
	return &LocalBus{
		subscribers: make(map[uint64]*localSubscriber),
		bufferSize:  mathx.IF(bufferSize > 0, bufferSize, DefaultBufferSize),
	}
}

// Publish 投递给所有匹配的订阅者
func (b *LocalBus) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	env := Envelope{Topic: topic, Payload: payload, PublishedAt: time.Now()}
	for _, sub := range b.subscribers {
		if !sub.matches(topic) {
			continue
		}
		select {
		case sub.ch <- env:
		default:
			b.dropped.Add(1)
		}
	}
	return nil
}

// Subscribe 订阅主题，未指定主题时订阅全部
func (b *LocalBus) Subscribe(ctx context.Context, topics ...string) (<-chan Envelope, func(), error) {
	if len(topics) == 0 {
		topics = []string{Wildcard}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, nil, ErrBusClosed
	}

	b.nextID++
	sub := &localSubscriber{
		id:     b.nextID,
		topics: append([]string(nil), topics...),
		ch:     make(chan Envelope, b.bufferSize),
	}
	b.subscribers[sub.id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			syncx.WithLock(&b.mu, func() {
				if _, ok := b.subscribers[sub.id]; ok {
					delete(b.subscribers, sub.id)
					close(sub.ch)
				}
			})
			if sub.stop != nil {
				sub.stop()
			}
		})
	}
	sub.stop = context.AfterFunc(ctx, cancel)
	return sub.ch, cancel, nil
}

// Dropped 因订阅者缓冲区满而丢弃的消息数
func (b *LocalBus) Dropped() int64 {
	return b.dropped.Load()
}

// SubscriberCount 当前订阅者数量
func (b *LocalBus) SubscriberCount() int {
	return syncx.WithRLockReturnValue(&b.mu, func() int {
		return len(b.subscribers)
	})
}

// Close 关闭总线并关闭所有订阅通道，可重复调用
func (b *LocalBus) Close() error {
	var stops []func() bool
	syncx.WithLock(&b.mu, func() {
		if b.closed {
			return
		}
		b.closed = true
		for id, sub := range b.subscribers {
			close(sub.ch)
			stops = append(stops, sub.stop)
			delete(b.subscribers, id)
		}
	})
	for _, stop := range stops {
		if stop != nil {
			stop()
		}
	}
	return nil
}
