/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-14 10:40:07
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 17:55:14
 * @FilePath: \go-rsc\client\heartbeat.go
 * @Description: 心跳定时器，生命周期与单次连接绑定
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package client

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// heartbeat 按固定间隔投递心跳事件
// ackTimeout > 0 时，发出心跳后超过 ackTimeout 仍未收到应答则投递超时事件
// 超时由独立的定时器检测，不受心跳间隔影响
type heartbeat struct {
	generation uint64
	interval   time.Duration
	ackTimeout time.Duration
	cancel     context.CancelFunc
	sentAt     atomic.Int64  // 最近一次未应答心跳的发送时间(UnixNano)，0 表示无
	armed      chan struct{} // 有新的未应答心跳
}

func startHeartbeat(
	parent context.Context,
	wg *sync.WaitGroup,
	generation uint64,
	interval, ackTimeout time.Duration,
	emit func(Event),
) *heartbeat {
	ctx, cancel := context.WithCancel(parent)
	hb := &heartbeat{
		generation: generation,
		interval:   interval,
		ackTimeout: ackTimeout,
		cancel:     cancel,
		armed:      make(chan struct{}, 1),
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var deadline *time.Timer
		var deadlineC <-chan time.Time
		defer func() {
			if deadline != nil {
				deadline.Stop()
			}
		}()
		arm := func(now time.Time) {
			remaining, ok := hb.remaining(now)
			if !ok {
				return
			}
			deadline = time.NewTimer(remaining)
			deadlineC = deadline.C
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-hb.armed:
				if deadlineC == nil {
					arm(time.Now())
				}
			case now := <-deadlineC:
				deadlineC = nil
				if hb.overdue(now) {
					emit(EventAckTimeout{Generation: generation, Timeout: ackTimeout})
					return
				}
				// 旧心跳已应答，之后又有新的未应答心跳
				arm(now)
			case now := <-ticker.C:
				if hb.overdue(now) {
					emit(EventAckTimeout{Generation: generation, Timeout: ackTimeout})
					return
				}
				emit(EventHeartbeatTick{Generation: generation})
			}
		}
	}()
	return hb
}

// sent 记录心跳已发出，已有未应答心跳时保留更早的时间
func (hb *heartbeat) sent(now time.Time) {
	if !hb.sentAt.CompareAndSwap(0, now.UnixNano()) {
		return
	}
	select {
	case hb.armed <- struct{}{}:
	default:
	}
}

// remaining 距离应答超时的剩余时间，没有未应答心跳或未启用时 ok 为 false
func (hb *heartbeat) remaining(now time.Time) (time.Duration, bool) {
	if hb.ackTimeout <= 0 {
		return 0, false
	}
	sentAt := hb.sentAt.Load()
	if sentAt == 0 {
		return 0, false
	}
	return max(hb.ackTimeout-now.Sub(time.Unix(0, sentAt)), 0), true
}

// ack 收到应答
func (hb *heartbeat) ack() {
	hb.sentAt.Store(0)
}

func (hb *heartbeat) overdue(now time.Time) bool {
	if hb.ackTimeout <= 0 {
		return false
	}
	sentAt := hb.sentAt.Load()
	return sentAt != 0 && now.Sub(time.Unix(0, sentAt)) >= hb.ackTimeout
}

func (hb *heartbeat) stop() {
	hb.cancel()
}
