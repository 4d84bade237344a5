/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-13 16:02:39
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 23:11:25
 * @FilePath: \go-rsc\client\machine.go
 * @Description: 连接状态机 - 纯函数 (state, event) -> (state, effects)
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package client

import (
	"time"

	"github.com/kamalyes/go-rsc/config"
	"github.com/kamalyes/go-rsc/models"
	"github.com/kamalyes/go-toolbox/pkg/errorx"
)

// State 状态机状态
// Generation 每次拨号递增，携带旧 Generation 的事件一律忽略
// Ticket 为当前待触发的重连定时器编号，0 表示没有
type State struct {
	Status     models.ConnectionStatus
	Attempt    int
	Generation uint64
	SocketLive bool // 连接已发起且尚未关闭
	Disposed   bool // 主动断开后置位，直到下一次 Connect
	Heartbeat  bool
	Ticket     uint64
	TicketSeq  uint64
}

// InitialState 初始状态
func InitialState() State {
	return State{Status: models.ConnectionStatusDisconnected}
}

// ReconnectPending 是否有待触发的重连
func (s State) ReconnectPending() bool {
	return s.Ticket != 0
}

// Event 输入事件
type Event interface {
	event()
}

type (
	// EventConnect 调用 Connect
	EventConnect struct {
		HasCredential bool
	}
	// EventDisconnect 调用 Disconnect
	EventDisconnect struct{}
	// EventOpened 连接建立
	EventOpened struct {
		Generation uint64
	}
	// EventFrame 收到数据帧
	EventFrame struct {
		Generation uint64
		Data       []byte
	}
	// EventClosed 连接关闭
	EventClosed struct {
		Generation    uint64
		Code          int
		Reason        string
		HasCredential bool
	}
	// EventErrored 传输层错误
	EventErrored struct {
		Generation uint64
		Err        error
	}
	// EventHeartbeatTick 心跳定时器触发
	EventHeartbeatTick struct {
		Generation uint64
	}
	// EventAckTimeout 心跳应答超时
	EventAckTimeout struct {
		Generation uint64
		Timeout    time.Duration
	}
	// EventReconnectDue 重连定时器触发
	EventReconnectDue struct {
		Ticket        uint64
		HasCredential bool
	}
)

func (EventConnect) event()       {}
func (EventDisconnect) event()    {}
func (EventOpened) event()        {}
func (EventFrame) event()         {}
func (EventClosed) event()        {}
func (EventErrored) event()       {}
func (EventHeartbeatTick) event() {}
func (EventAckTimeout) event()    {}
func (EventReconnectDue) event()  {}

// Effect 状态转换产生的副作用，由运行时执行
type Effect interface {
	effect()
}

type (
	// EffectDial 发起连接
	EffectDial struct {
		Generation uint64
	}
	// EffectCloseSocket 关闭连接，Code 为 1006 时直接断开不发关闭帧
	EffectCloseSocket struct {
		Generation uint64
		Code       int
		Reason     string
	}
	// EffectStartHeartbeat 启动心跳
	EffectStartHeartbeat struct {
		Generation uint64
	}
	// EffectStopHeartbeat 停止心跳
	EffectStopHeartbeat struct{}
	// EffectScheduleReconnect 安排重连
	EffectScheduleReconnect struct {
		Ticket  uint64
		Delay   time.Duration
		Attempt int
	}
	// EffectCancelReconnect 取消重连
	EffectCancelReconnect struct {
		Ticket uint64
	}
	// EffectSendHeartbeat 发送心跳帧
	EffectSendHeartbeat struct {
		Generation uint64
		Frame      *models.Frame
	}
	// EffectAckReceived 收到心跳应答
	EffectAckReceived struct {
		Generation uint64
	}
	// EffectStatusChanged 状态变化
	EffectStatusChanged struct {
		From models.ConnectionStatus
		To   models.ConnectionStatus
	}
	// EffectNotifyConnect 通知连接成功
	EffectNotifyConnect struct{}
	// EffectNotifyDisconnect 通知断开
	EffectNotifyDisconnect struct {
		Code   int
		Reason string
	}
	// EffectNotifyMessage 通知收到消息
	EffectNotifyMessage struct {
		Frame *models.Frame
	}
	// EffectNotifyForceLogout 通知被强制下线
	EffectNotifyForceLogout struct {
		Reason string
	}
	// EffectNotifyError 通知错误
	EffectNotifyError struct {
		Err error
	}
	// EffectDropFrame 丢弃畸形帧
	EffectDropFrame struct {
		Data []byte
		Err  error
	}
)

func (EffectDial) effect()              {}
func (EffectCloseSocket) effect()       {}
func (EffectStartHeartbeat) effect()    {}
func (EffectStopHeartbeat) effect()     {}
func (EffectScheduleReconnect) effect() {}
func (EffectCancelReconnect) effect()   {}
func (EffectSendHeartbeat) effect()     {}
func (EffectAckReceived) effect()       {}
func (EffectStatusChanged) effect()     {}
func (EffectNotifyConnect) effect()     {}
func (EffectNotifyDisconnect) effect()  {}
func (EffectNotifyMessage) effect()     {}
func (EffectNotifyForceLogout) effect() {}
func (EffectNotifyError) effect()       {}
func (EffectDropFrame) effect()         {}

// Machine 状态机，持有不变的策略参数
type Machine struct {
	backoff        *Backoff
	heartbeatEvent string
	isAck          func(event string) bool
	isNoRetry      func(code int) bool
}

// NewMachine 根据配置创建状态机
func NewMachine(cfg *config.Config) *Machine {
	return &Machine{
		backoff:        NewBackoffFromConfig(cfg),
		heartbeatEvent: cfg.HeartbeatEvent,
		isAck:          cfg.IsAckEvent,
		isNoRetry:      cfg.IsNoRetryCode,
	}
}

// Backoff 退避策略
func (m *Machine) Backoff() *Backoff {
	return m.backoff
}

// Transition 根据事件计算下一个状态及副作用
func (m *Machine) Transition(s State, ev Event) (State, []Effect) {
	var fx []Effect

	switch e := ev.(type) {
	case EventConnect:
		if !e.HasCredential {
			return s, nil
		}
		s.Disposed = false
		m.dial(&s, &fx)

	case EventDisconnect:
		m.disconnect(&s, &fx)

	case EventOpened:
		if m.stale(s, e.Generation) {
			return s, nil
		}
		m.setStatus(&s, &fx, models.ConnectionStatusConnected)
		s.Attempt = 0
		s.Heartbeat = true
		fx = append(fx, EffectNotifyConnect{}, EffectStartHeartbeat{Generation: s.Generation})

	case EventFrame:
		if m.stale(s, e.Generation) {
			return s, nil
		}
		m.frame(&s, &fx, e)

	case EventHeartbeatTick:
		if m.stale(s, e.Generation) || s.Status != models.ConnectionStatusConnected {
			return s, nil
		}
		fx = append(fx, EffectSendHeartbeat{
			Generation: s.Generation,
			Frame:      models.NewFrame(m.heartbeatEvent),
		})

	case EventAckTimeout:
		if m.stale(s, e.Generation) {
			return s, nil
		}
		m.setStatus(&s, &fx, models.ConnectionStatusError)
		fx = append(fx,
			EffectNotifyError{Err: errorx.NewError(models.ErrTypeHeartbeatTimeout, e.Timeout.String())},
			EffectCloseSocket{Generation: s.Generation, Code: models.CloseCodeAbnormal, Reason: "heartbeat ack timeout"},
		)

	case EventErrored:
		if m.stale(s, e.Generation) {
			return s, nil
		}
		m.setStatus(&s, &fx, models.ConnectionStatusError)
		if e.Err != nil {
			fx = append(fx, EffectNotifyError{Err: e.Err})
		}

	case EventClosed:
		if m.stale(s, e.Generation) {
			return s, nil
		}
		m.closed(&s, &fx, e)

	case EventReconnectDue:
		if e.Ticket == 0 || e.Ticket != s.Ticket {
			return s, nil
		}
		s.Ticket = 0
		if s.Disposed || !e.HasCredential || s.SocketLive {
			return s, nil
		}
		m.dial(&s, &fx)
	}

	return s, fx
}

// stale 事件是否来自已失效的连接
func (m *Machine) stale(s State, generation uint64) bool {
	return !s.SocketLive || generation != s.Generation
}

func (m *Machine) setStatus(s *State, fx *[]Effect, to models.ConnectionStatus) {
	if s.Status == to {
		return
	}
	*fx = append(*fx, EffectStatusChanged{From: s.Status, To: to})
	s.Status = to
}

// dial 已有连接（含拨号中）时不重复发起
func (m *Machine) dial(s *State, fx *[]Effect) {
	if s.SocketLive {
		return
	}
	m.cancelReconnect(s, fx)
	s.Generation++
	s.SocketLive = true
	m.setStatus(s, fx, models.ConnectionStatusConnecting)
	*fx = append(*fx, EffectDial{Generation: s.Generation})
}

func (m *Machine) disconnect(s *State, fx *[]Effect) {
	s.Disposed = true
	m.cancelReconnect(s, fx)
	m.stopHeartbeat(s, fx)
	if s.SocketLive {
		*fx = append(*fx, EffectCloseSocket{
			Generation: s.Generation,
			Code:       models.CloseCodeManual,
			Reason:     models.CloseReasonManual,
		})
		s.SocketLive = false
	}
	m.setStatus(s, fx, models.ConnectionStatusDisconnected)
}

func (m *Machine) frame(s *State, fx *[]Effect, e EventFrame) {
	f, err := models.DecodeFrame(e.Data)
	if err != nil {
		*fx = append(*fx, EffectDropFrame{Data: e.Data, Err: err})
		return
	}

	switch {
	case f.Event == models.EventForceDisconnect:
		*fx = append(*fx, EffectNotifyForceLogout{Reason: f.Reason()})
		m.disconnect(s, fx)
	case m.isAck(f.Event):
		*fx = append(*fx, EffectAckReceived{Generation: s.Generation})
	default:
		*fx = append(*fx, EffectNotifyMessage{Frame: f})
	}
}

func (m *Machine) closed(s *State, fx *[]Effect, e EventClosed) {
	// 对端关闭后仍需释放本端连接
	*fx = append(*fx, EffectCloseSocket{Generation: s.Generation, Code: models.CloseCodeAbnormal})
	s.SocketLive = false
	m.stopHeartbeat(s, fx)
	m.cancelReconnect(s, fx)
	m.setStatus(s, fx, models.ConnectionStatusDisconnected)
	*fx = append(*fx, EffectNotifyDisconnect{Code: e.Code, Reason: e.Reason})

	if m.isNoRetry(e.Code) || s.Disposed || !e.HasCredential {
		return
	}

	s.TicketSeq++
	s.Ticket = s.TicketSeq
	*fx = append(*fx, EffectScheduleReconnect{
		Ticket:  s.Ticket,
		Delay:   m.backoff.Delay(s.Attempt),
		Attempt: s.Attempt,
	})
	s.Attempt++
}

func (m *Machine) cancelReconnect(s *State, fx *[]Effect) {
	if s.Ticket == 0 {
		return
	}
	*fx = append(*fx, EffectCancelReconnect{Ticket: s.Ticket})
	s.Ticket = 0
}

func (m *Machine) stopHeartbeat(s *State, fx *[]Effect) {
	if !s.Heartbeat {
		return
	}
	*fx = append(*fx, EffectStopHeartbeat{})
	s.Heartbeat = false
}
