/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-14 09:12:51
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 19:30:26
 * @FilePath: \go-rsc\client\dispatcher.go
 * @Description: 回调分发器 - 单 goroutine 按入队顺序执行回调
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package client

import (
	"sync"

	"github.com/kamalyes/go-logger"
	"github.com/kamalyes/go-toolbox/pkg/syncx"
)

// dispatcher 无界 FIFO，入队不阻塞，回调里可以再调用 Connect/Disconnect/Send
type dispatcher struct {
	mu      sync.RWMutex
	queue   []func()
	stopped bool
	wake    chan struct{}
	done    chan struct{}
	logger  logger.ILogger
}

func newDispatcher(l logger.ILogger) *dispatcher {
	return &dispatcher{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: l,
	}
}

// push 入队，停止后丢弃
func (d *dispatcher) push(fns ...func()) {
	if len(fns) == 0 {
		return
	}
	queued := syncx.WithLockReturnValue(&d.mu, func() bool {
		if d.stopped {
			return false
		}
		d.queue = append(d.queue, fns...)
		return true
	})
	if !queued {
		return
	}
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// run 分发循环，stop 后返回
func (d *dispatcher) run(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-d.done:
			return
		case <-d.wake:
		}
		for {
			batch := d.take()
			if len(batch) == 0 {
				break
			}
			for _, fn := range batch {
				if d.isStopped() {
					return
				}
				d.invoke(fn)
			}
		}
	}
}

func (d *dispatcher) take() []func() {
	return syncx.WithLockReturnValue(&d.mu, func() []func() {
		batch := d.queue
		d.queue = nil
		return batch
	})
}

func (d *dispatcher) isStopped() bool {
	return syncx.WithRLockReturnValue(&d.mu, func() bool {
		return d.stopped
	})
}

func (d *dispatcher) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.ErrorKV("回调执行panic", "panic", r)
		}
	}()
	fn()
}

// stop 丢弃未执行的回调并结束分发循环，可重复调用
func (d *dispatcher) stop() {
	syncx.WithLock(&d.mu, func() {
		if d.stopped {
			return
		}
		d.stopped = true
		d.queue = nil
		close(d.done)
	})
}
