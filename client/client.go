/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-14 14:31:18
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 00:12:47
 * @FilePath: \go-rsc\client\client.go
 * @Description: Client 结构体及其方法
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package client

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/kamalyes/go-logger"
	"github.com/kamalyes/go-rsc/bus"
	"github.com/kamalyes/go-rsc/config"
	"github.com/kamalyes/go-rsc/models"
	"github.com/kamalyes/go-toolbox/pkg/mathx"
	"github.com/kamalyes/go-toolbox/pkg/safe"
	"github.com/kamalyes/go-toolbox/pkg/syncx"
)

// Client 断线自动重连的 WebSocket 客户端
// 所有事件都在 mu 保护下经过 Machine.Transition，副作用（定时器、连接）在锁内执行，
// 回调交给 dispatcher 按顺序异步执行
type Client struct {
	id        string
	Config    *config.Config
	WebSocket *WebSocket
	cred      CredentialSource
	logger    logger.ILogger
	machine   *Machine
	status    *syncx.StateMachine[models.ConnectionStatus]

	bus       bus.Bus
	busPrefix string

	mu             sync.Mutex
	state          State
	conn           *websocket.Conn
	connGen        uint64
	dialCancel     context.CancelFunc
	reconnectTimer *time.Timer
	heartbeat      *heartbeat
	lastMessage    *models.Frame
	closed         bool
	writeMu        sync.Mutex

	dispatcher *dispatcher
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	startOnce  sync.Once

	onConnect      atomic.Value // func()
	onDisconnect   atomic.Value // func(int, string)
	onMessage      atomic.Value // func(*models.Frame)
	onForceLogout  atomic.Value // func(string)
	onStatusChange atomic.Value // func(from, to models.ConnectionStatus)
	onError        atomic.Value // func(error)
}

// New 创建客户端，cfg 为 nil 时使用默认配置
func New(cfg *config.Config, cred CredentialSource) *Client {
	cfg = safe.MergeWithDefaults(cfg, config.Default()).Clone()
	cfg.TokenParam = mathx.IfEmpty(cfg.TokenParam, "token")
	cfg.HeartbeatEvent = mathx.IfEmpty(cfg.HeartbeatEvent, models.EventHeartbeat)
	cfg.HeartbeatInterval = mathx.IfNotZero(cfg.HeartbeatInterval, 30*time.Second)
	cfg.WriteWait = mathx.IfNotZero(cfg.WriteWait, 10*time.Second)
	if cred == nil {
		cred = StaticCredential("")
	}

	sm := syncx.NewStateMachine(models.ConnectionStatusDisconnected)
	sm.AllowTransitions(models.ConnectionStatusDisconnected, models.ConnectionStatusConnecting)
	sm.AllowTransitions(models.ConnectionStatusConnecting, models.ConnectionStatusConnected, models.ConnectionStatusError, models.ConnectionStatusDisconnected)
	sm.AllowTransitions(models.ConnectionStatusConnected, models.ConnectionStatusError, models.ConnectionStatusDisconnected)
	sm.AllowTransitions(models.ConnectionStatusError, models.ConnectionStatusDisconnected, models.ConnectionStatusConnecting)

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = cfg.HandshakeTimeout

	l := cfg.Logging.ToLogger()
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		id:         uuid.NewString(),
		Config:     cfg,
		WebSocket:  NewWebSocket(cfg.Endpoint, cfg.TokenParam).WithDialer(&dialer),
		cred:       cred,
		logger:     l,
		machine:    NewMachine(cfg),
		status:     sm,
		state:      InitialState(),
		dispatcher: newDispatcher(l),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// WithLogger 设置日志器
func (c *Client) WithLogger(l logger.ILogger) *Client {
	if l != nil {
		c.logger = l
		c.dispatcher.logger = l
	}
	return c
}

// WithBus 设置消息总线，转发给 OnMessage 的消息同时发布到 prefix+event
func (c *Client) WithBus(b bus.Bus, prefix string) *Client {
	c.bus = b
	c.busPrefix = prefix
	return c
}

// WithDialer 设置自定义拨号器
func (c *Client) WithDialer(dialer *websocket.Dialer) *Client {
	c.WebSocket.WithDialer(dialer)
	return c
}

// WithRequestHeader 设置握手请求头
func (c *Client) WithRequestHeader(header http.Header) *Client {
	c.WebSocket.WithRequestHeader(header)
	return c
}

// ID 客户端实例ID
func (c *Client) ID() string {
	return c.id
}

// OnConnect 设置连接成功的回调
func (c *Client) OnConnect(f func()) {
	c.onConnect.Store(f)
}

// OnDisconnect 设置异常断开的回调，参数为关闭码和关闭原因
// 主动 Disconnect 不触发
func (c *Client) OnDisconnect(f func(code int, reason string)) {
	c.onDisconnect.Store(f)
}

// OnMessage 设置收到业务消息的回调，按接收顺序调用
func (c *Client) OnMessage(f func(frame *models.Frame)) {
	c.onMessage.Store(f)
}

// OnForceLogout 设置被服务端强制下线的回调
func (c *Client) OnForceLogout(f func(reason string)) {
	c.onForceLogout.Store(f)
}

// OnStatusChange 设置状态变化的回调
func (c *Client) OnStatusChange(f func(from, to models.ConnectionStatus)) {
	c.onStatusChange.Store(f)
}

// OnError 设置错误回调（传输错误、写失败、心跳超时等，仅用于诊断）
func (c *Client) OnError(f func(err error)) {
	c.onError.Store(f)
}

// Status 当前连接状态
func (c *Client) Status() models.ConnectionStatus {
	return c.status.CurrentState()
}

// IsConnected 是否已连接
func (c *Client) IsConnected() bool {
	return c.Status() == models.ConnectionStatusConnected
}

// LastMessage 最近一条转发给 OnMessage 的消息
func (c *Client) LastMessage() *models.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastMessage
}

// Attempts 当前重连计数
func (c *Client) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Attempt
}

// Snapshot 状态机状态快照
func (c *Client) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect 发起连接
// 已连接或连接中、没有凭证、客户端已销毁时为空操作
func (c *Client) Connect() {
	if c.isClosed() {
		return
	}
	c.startOnce.Do(func() {
		c.wg.Add(1)
		go c.dispatcher.run(&c.wg)
	})
	hasCredential := c.hasCredential()
	if !hasCredential {
		c.logger.DebugKV("跳过连接", "client_id", c.id, "reason", models.ErrNoCredential)
	}
	c.apply(EventConnect{HasCredential: hasCredential})
}

// Disconnect 主动断开，取消心跳和待触发的重连，不会自动重连
func (c *Client) Disconnect() {
	c.apply(EventDisconnect{})
}

// Close 销毁客户端：断开连接、停止所有定时器和回调分发，等待后台 goroutine 退出
// 不能在回调内调用（回调内请使用 Disconnect）
func (c *Client) Close() {
	c.apply(EventDisconnect{})

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.cancel()
	c.dispatcher.stop()
	c.wg.Wait()
	c.logger.DebugKV("客户端已销毁", "client_id", c.id)
}

// Send 立即发送消息，不排队
// 已连接且写入成功返回 true，否则返回 false
func (c *Client) Send(msg any) bool {
	return c.Write(msg) == nil
}

// Write 与 Send 相同，返回具体错误
func (c *Client) Write(msg any) error {
	data, err := models.EncodeMessage(msg)
	if err != nil {
		c.logger.WarnKV("消息编码失败", "client_id", c.id, "error", err)
		return err
	}

	c.mu.Lock()
	conn, closed := c.conn, c.closed
	ready := conn != nil && c.state.Status == models.ConnectionStatusConnected
	c.mu.Unlock()
	switch {
	case closed:
		return models.ErrClientClosed
	case !ready:
		return models.ErrNotConnected
	}
	return c.write(conn, data)
}

// SendFrame 发送结构化帧
func (c *Client) SendFrame(frame *models.Frame) bool {
	return c.Send(frame)
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) hasCredential() bool {
	return c.cred.Token() != ""
}

// apply 执行一次状态转换
func (c *Client) apply(ev Event) {
	var writes []func()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	next, effects := c.machine.Transition(c.state, ev)
	c.state = next
	for _, fx := range effects {
		if w := c.execute(fx); w != nil {
			writes = append(writes, w)
		}
	}
	c.mu.Unlock()

	for _, w := range writes {
		w()
	}
}

// execute 在 mu 内执行副作用，需要在锁外完成的写操作以函数形式返回
func (c *Client) execute(fx Effect) func() {
	switch e := fx.(type) {
	case EffectDial:
		c.startDial(e.Generation)

	case EffectCloseSocket:
		c.closeSocket(e.Generation, e.Code, e.Reason)

	case EffectStartHeartbeat:
		c.stopHeartbeat()
		c.heartbeat = startHeartbeat(c.ctx, &c.wg, e.Generation,
			c.Config.HeartbeatInterval, c.Config.HeartbeatAckTimeout, c.apply)

	case EffectStopHeartbeat:
		c.stopHeartbeat()

	case EffectScheduleReconnect:
		c.stopReconnectTimer()
		ticket := e.Ticket
		c.reconnectTimer = time.AfterFunc(e.Delay, func() {
			c.apply(EventReconnectDue{Ticket: ticket, HasCredential: c.hasCredential()})
		})
		c.logger.InfoKV("已安排重连",
			"client_id", c.id,
			"attempt", e.Attempt+1,
			"delay", e.Delay.String(),
		)

	case EffectCancelReconnect:
		c.stopReconnectTimer()

	case EffectSendHeartbeat:
		conn, hb := c.conn, c.heartbeat
		if conn == nil || c.connGen != e.Generation {
			return nil
		}
		data, err := e.Frame.Encode()
		if err != nil {
			return nil
		}
		return func() {
			// 先记录发送时间，应答可能在写返回前到达
			if hb != nil {
				hb.sent(time.Now())
			}
			_ = c.write(conn, data)
		}

	case EffectAckReceived:
		if c.heartbeat != nil && c.heartbeat.generation == e.Generation {
			c.heartbeat.ack()
		}

	case EffectStatusChanged:
		if err := c.status.TransitionTo(e.To); err != nil {
			c.logger.WarnKV("状态转换异常", "client_id", c.id, "from", e.From, "to", e.To, "error", err)
		}
		c.logger.DebugKV("连接状态变化", "client_id", c.id, "from", e.From, "to", e.To)
		if f, ok := c.onStatusChange.Load().(func(from, to models.ConnectionStatus)); ok && f != nil {
			from, to := e.From, e.To
			c.dispatcher.push(func() { f(from, to) })
		}

	case EffectNotifyConnect:
		c.logger.InfoKV("连接成功", "client_id", c.id, "endpoint", c.WebSocket.Url)
		if f, ok := c.onConnect.Load().(func()); ok && f != nil {
			c.dispatcher.push(f)
		}

	case EffectNotifyDisconnect:
		c.logger.InfoKV("连接断开", "client_id", c.id, "code", e.Code, "reason", e.Reason)
		if f, ok := c.onDisconnect.Load().(func(int, string)); ok && f != nil {
			code, reason := e.Code, e.Reason
			c.dispatcher.push(func() { f(code, reason) })
		}

	case EffectNotifyMessage:
		c.lastMessage = e.Frame
		c.notifyMessage(e.Frame)

	case EffectNotifyForceLogout:
		c.logger.WarnKV("被服务端强制下线", "client_id", c.id, "reason", e.Reason)
		if f, ok := c.onForceLogout.Load().(func(string)); ok && f != nil {
			reason := e.Reason
			c.dispatcher.push(func() { f(reason) })
		}

	case EffectNotifyError:
		c.notifyError(e.Err)

	case EffectDropFrame:
		c.logger.WarnKV("丢弃无法解析的消息",
			"client_id", c.id,
			"size", len(e.Data),
			"error", e.Err,
		)
	}
	return nil
}

func (c *Client) notifyMessage(frame *models.Frame) {
	if f, ok := c.onMessage.Load().(func(*models.Frame)); ok && f != nil {
		c.dispatcher.push(func() { f(frame) })
	}
	if c.bus == nil {
		return
	}
	b, topic, payload := c.bus, c.busPrefix+frame.Event, frame.Raw
	c.dispatcher.push(func() {
		ctx, cancel := context.WithTimeout(c.ctx, 2*time.Second)
		defer cancel()
		if err := b.Publish(ctx, topic, payload); err != nil {
			c.logger.WarnKV("发布到消息总线失败", "client_id", c.id, "topic", topic, "error", err)
		}
	})
}

// notifyError 需在 mu 内调用
func (c *Client) notifyError(err error) {
	if err == nil {
		return
	}
	if f, ok := c.onError.Load().(func(error)); ok && f != nil {
		c.dispatcher.push(func() { f(err) })
	}
}

func (c *Client) stopHeartbeat() {
	if c.heartbeat != nil {
		c.heartbeat.stop()
		c.heartbeat = nil
	}
}

func (c *Client) stopReconnectTimer() {
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
}
