/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-13 15:20:44
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-13 15:20:44
 * @FilePath: \go-rsc\client\backoff.go
 * @Description: 重连退避策略
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package client

import (
	"time"

	"github.com/jpillora/backoff"
	"github.com/kamalyes/go-rsc/config"
)

// Backoff 封顶的指数退避：min(Min * Factor^attempt, Max)
// 只按尝试次数计算，不保存状态，可并发使用
type Backoff struct {
	b *backoff.Backoff
}

// NewBackoff 创建退避策略
func NewBackoff(min, max time.Duration, factor float64, jitter bool) *Backoff {
	return &Backoff{
		b: &backoff.Backoff{
			Min:    min,
			Max:    max,
			Factor: factor,
			Jitter: jitter,
		},
	}
}

// NewBackoffFromConfig 根据配置创建退避策略
func NewBackoffFromConfig(cfg *config.Config) *Backoff {
	return NewBackoff(cfg.MinRecTime, cfg.MaxRecTime, cfg.RecFactor, cfg.RecJitter)
}

// Delay 第 attempt 次重连（从0开始）前的等待时间
func (b *Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return b.b.ForAttempt(float64(attempt))
}

// Min 最小等待时间
func (b *Backoff) Min() time.Duration {
	return b.b.Min
}

// Max 最大等待时间
func (b *Backoff) Max() time.Duration {
	return b.b.Max
}
