/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-17 09:30:48
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 11:20:16
 * @FilePath: \go-rsc\client\server_test.go
 * @Description: 测试用事件服务
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package client

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kamalyes/go-rsc/config"
	"github.com/stretchr/testify/require"
)

// eventServer 记录握手凭证和收到的帧，可主动推送、断开或拒绝握手
type eventServer struct {
	*httptest.Server
	upgrader websocket.Upgrader

	mu         sync.Mutex
	conns      []*websocket.Conn
	tokens     []string
	queries    []string
	received   chan []byte
	accepted   chan *websocket.Conn
	closes     chan *websocket.CloseError
	reject     atomic.Int32 // 非0时以该 HTTP 状态码拒绝握手
	handshakes atomic.Int32
}

func newEventServer(t *testing.T) *eventServer {
	t.Helper()
	s := &eventServer{
		received: make(chan []byte, 256),
		accepted: make(chan *websocket.Conn, 64),
		closes:   make(chan *websocket.CloseError, 16),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.shutdown)
	return s
}

func (s *eventServer) handle(w http.ResponseWriter, r *http.Request) {
	s.handshakes.Add(1)
	s.mu.Lock()
	s.tokens = append(s.tokens, r.URL.Query().Get("token"))
	s.queries = append(s.queries, r.URL.RawQuery)
	s.mu.Unlock()

	if status := int(s.reject.Load()); status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conns = append(s.conns, conn)
	s.mu.Unlock()
	s.accepted <- conn

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				select {
				case s.closes <- closeErr:
				default:
				}
			}
			return
		}
		select {
		case s.received <- data:
		default:
		}
	}
}

// wsURL ws 协议地址
func (s *eventServer) wsURL() string {
	return "ws" + strings.TrimPrefix(s.Server.URL, "http")
}

// waitConn 等待下一条被接受的连接
func (s *eventServer) waitConn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-s.accepted:
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("等待客户端连接超时")
		return nil
	}
}

// waitFrame 等待下一条满足条件的帧
func (s *eventServer) waitFrame(t *testing.T, match func(string) bool) string {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case data := <-s.received:
			if match(string(data)) {
				return string(data)
			}
		case <-deadline:
			t.Fatal("等待帧超时")
			return ""
		}
	}
}

func (s *eventServer) push(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func (s *eventServer) closeWith(t *testing.T, conn *websocket.Conn, code int, reason string) {
	t.Helper()
	msg := websocket.FormatCloseMessage(code, reason)
	require.NoError(t, conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)))
	_ = conn.Close()
}

// sendClose 只发送关闭帧，不断开服务端连接
func (s *eventServer) sendClose(t *testing.T, conn *websocket.Conn, code int, reason string) {
	t.Helper()
	msg := websocket.FormatCloseMessage(code, reason)
	require.NoError(t, conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)))
}

// waitClose 等待客户端发来的关闭帧
func (s *eventServer) waitClose(t *testing.T) *websocket.CloseError {
	t.Helper()
	select {
	case ce := <-s.closes:
		return ce
	case <-time.After(2 * time.Second):
		t.Fatal("等待关闭帧超时")
		return nil
	}
}

func (s *eventServer) connCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *eventServer) lastToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tokens) == 0 {
		return ""
	}
	return s.tokens[len(s.tokens)-1]
}

func (s *eventServer) shutdown() {
	s.mu.Lock()
	for _, conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()
	s.Server.CloseClientConnections()
	s.Server.Close()
}

// testConfig 缩短间隔的测试配置
func testConfig(endpoint string) *config.Config {
	return config.Default().
		WithEndpoint(endpoint).
		WithHeartbeatInterval(time.Hour).
		WithMinRecTime(20 * time.Millisecond).
		WithMaxRecTime(200 * time.Millisecond).
		WithWriteWait(time.Second).
		WithHandshakeTimeout(time.Second)
}

// newTestClient 创建静默日志的客户端，测试结束时销毁
func newTestClient(t *testing.T, cfg *config.Config, cred CredentialSource) *Client {
	t.Helper()
	c := New(cfg, cred).WithLogger(config.NewNoOpLogger())
	t.Cleanup(c.Close)
	return c
}
