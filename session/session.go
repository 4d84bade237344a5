/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-16 11:12:09
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 10:31:27
 * @FilePath: \go-rsc\session\session.go
 * @Description: 会话 - 将客户端生命周期绑定到凭证：登录即连接，登出即销毁
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */

package session

import (
	"context"
	"sync"

	"github.com/kamalyes/go-logger"
	"github.com/kamalyes/go-rsc/bus"
	"github.com/kamalyes/go-rsc/client"
	"github.com/kamalyes/go-rsc/config"
	"github.com/kamalyes/go-rsc/models"
)

// Handlers 会话回调，转发给当前客户端
type Handlers struct {
	OnConnect      func()
	OnDisconnect   func(code int, reason string)
	OnMessage      func(frame *models.Frame)
	OnForceLogout  func(reason string)
	OnStatusChange func(from, to models.ConnectionStatus)
	OnError        func(err error)
}

// clearable 支持登出的凭证来源
type clearable interface {
	Clear()
}

// Session 凭证驱动的客户端所有者
//   - 凭证非空：创建客户端并连接
//   - 凭证清空：销毁客户端
//   - 凭证变化：销毁旧客户端后用新凭证重建
//   - 被强制下线：清除凭证，会话随之结束
type Session struct {
	cfg       *config.Config
	source    client.WatchableCredential
	handlers  Handlers
	logger    logger.ILogger
	bus       bus.Bus
	busPrefix string

	mu      sync.Mutex
	current *client.Client
	token   string
	started bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New 创建会话
func New(cfg *config.Config, source client.WatchableCredential, handlers Handlers) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Session{
		cfg:      cfg,
		source:   source,
		handlers: handlers,
		logger:   cfg.Logging.ToLogger(),
	}
}

// WithLogger 设置日志器，同时用于创建的客户端
func (s *Session) WithLogger(l logger.ILogger) *Session {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithBus 设置消息总线
func (s *Session) WithBus(b bus.Bus, prefix string) *Session {
	s.bus = b
	s.busPrefix = prefix
	return s
}

// Start 按当前凭证建立连接并开始监听凭证变化，重复调用无效
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	changes, unsubscribe := s.source.Subscribe()
	s.reconcile(s.source.Token())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case token := <-changes:
				s.reconcile(token)
			}
		}
	}()
}

// Client 当前客户端，未登录时为 nil
func (s *Session) Client() *client.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Status 当前连接状态，未登录时为 disconnected
func (s *Session) Status() models.ConnectionStatus {
	if c := s.Client(); c != nil {
		return c.Status()
	}
	return models.ConnectionStatusDisconnected
}

// Send 通过当前客户端发送
func (s *Session) Send(msg any) bool {
	if c := s.Client(); c != nil {
		return c.Send(msg)
	}
	return false
}

// Stop 停止监听并销毁客户端，可重复调用
func (s *Session) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	s.mu.Lock()
	c := s.current
	s.current, s.token = nil, ""
	s.mu.Unlock()
	if c != nil {
		c.Close()
	}
	s.logger.DebugKV("会话已停止")
}

// reconcile 使客户端与凭证保持一致
func (s *Session) reconcile(token string) {
	s.mu.Lock()
	if s.stopped || token == s.token {
		s.mu.Unlock()
		return
	}
	old := s.current
	s.current, s.token = nil, token
	s.mu.Unlock()

	if old != nil {
		s.logger.InfoKV("凭证变化，销毁当前连接", "client_id", old.ID(), "logged_in", token != "")
		old.Close()
	}
	if token == "" {
		return
	}

	c := s.newClient()

	s.mu.Lock()
	if s.stopped || s.token != token {
		s.mu.Unlock()
		c.Close()
		return
	}
	s.current = c
	s.mu.Unlock()

	c.Connect()
}

func (s *Session) newClient() *client.Client {
	c := client.New(s.cfg, s.source).WithLogger(s.logger)
	if s.bus != nil {
		c.WithBus(s.bus, s.busPrefix)
	}

	h := s.handlers
	if h.OnConnect != nil {
		c.OnConnect(h.OnConnect)
	}
	if h.OnDisconnect != nil {
		c.OnDisconnect(h.OnDisconnect)
	}
	if h.OnMessage != nil {
		c.OnMessage(h.OnMessage)
	}
	if h.OnStatusChange != nil {
		c.OnStatusChange(h.OnStatusChange)
	}
	if h.OnError != nil {
		c.OnError(h.OnError)
	}
	c.OnForceLogout(func(reason string) {
		if h.OnForceLogout != nil {
			h.OnForceLogout(reason)
		}
		// 回调内不能 Close 客户端，清除凭证后由监听协程销毁
		if cl, ok := s.source.(clearable); ok {
			cl.Clear()
		}
	})
	return c
}
