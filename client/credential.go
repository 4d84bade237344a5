/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-14 11:20:33
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-17 16:41:09
 * @FilePath: \go-rsc\client\credential.go
 * @Description: 连接凭证来源
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package client

import (
	"sync"

	"github.com/kamalyes/go-toolbox/pkg/syncx"
)

// CredentialSource 凭证来源，空串表示没有凭证
// 客户端在 Connect 和每次重连决策时读取
type CredentialSource interface {
	Token() string
}

// WatchableCredential 可订阅变化的凭证来源
type WatchableCredential interface {
	CredentialSource
	// Subscribe 返回变化通知通道（只保留最新值）和取消函数
	Subscribe() (<-chan string, func())
}

// StaticCredential 固定凭证
type StaticCredential string

// Token 实现 CredentialSource
func (s StaticCredential) Token() string {
	return string(s)
}

// MutableCredential 由所有者更新的凭证，零值可用
type MutableCredential struct {
	mu    sync.RWMutex
	token string
	subs  map[uint64]chan string
	seq   uint64
}

// NewMutableCredential 创建可变凭证
func NewMutableCredential(token string) *MutableCredential {
	return &MutableCredential{
		token: token,
		subs:  make(map[uint64]chan string),
	}
}

// Token 实现 CredentialSource
func (m *MutableCredential) Token() string {
	return syncx.WithRLockReturnValue(&m.mu, func() string {
		return m.token
	})
}

// Set 更新凭证，值未变化时不通知
func (m *MutableCredential) Set(token string) {
	syncx.WithLock(&m.mu, func() {
		if m.token == token {
			return
		}
		m.token = token
		for _, ch := range m.subs {
			notifyLatest(ch, token)
		}
	})
}

// Clear 清除凭证（登出）
func (m *MutableCredential) Clear() {
	m.Set("")
}

// Subscribe 实现 WatchableCredential
func (m *MutableCredential) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 1)
	var id uint64
	syncx.WithLock(&m.mu, func() {
		if m.subs == nil {
			m.subs = make(map[uint64]chan string)
		}
		m.seq++
		id = m.seq
		m.subs[id] = ch
	})

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			syncx.WithLock(&m.mu, func() {
				delete(m.subs, id)
			})
		})
	}
	return ch, cancel
}

// notifyLatest 丢弃未读的旧值，只保留最新值
func notifyLatest(ch chan string, token string) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- token:
	default:
	}
}
