/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-17 10:12:55
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 11:58:40
 * @FilePath: \go-rsc\client\client_test.go
 * @Description: 客户端集成测试 - 真实 WebSocket 服务，缩短间隔
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package client

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kamalyes/go-rsc/bus"
	"github.com/kamalyes/go-rsc/config"
	"github.com/kamalyes/go-rsc/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// recorder 记录回调调用
type recorder struct {
	mu          sync.Mutex
	connects    int
	disconnects []int
	reasons     []string
	messages    []string
	logouts     []string
	errs        []error
	statuses    []models.ConnectionStatus
}

func (r *recorder) attach(c *Client) {
	c.OnConnect(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.connects++
	})
	c.OnDisconnect(func(code int, reason string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.disconnects = append(r.disconnects, code)
		r.reasons = append(r.reasons, reason)
	})
	c.OnMessage(func(frame *models.Frame) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.messages = append(r.messages, frame.Event)
	})
	c.OnForceLogout(func(reason string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.logouts = append(r.logouts, reason)
	})
	c.OnError(func(err error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.errs = append(r.errs, err)
	})
	c.OnStatusChange(func(_, to models.ConnectionStatus) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.statuses = append(r.statuses, to)
	})
}

func (r *recorder) snapshot() recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return recorder{
		connects:    r.connects,
		disconnects: append([]int(nil), r.disconnects...),
		reasons:     append([]string(nil), r.reasons...),
		messages:    append([]string(nil), r.messages...),
		logouts:     append([]string(nil), r.logouts...),
		errs:        append([]error(nil), r.errs...),
		statuses:    append([]models.ConnectionStatus(nil), r.statuses...),
	}
}

func (r *recorder) hasError(errType models.ErrorType) bool {
	for _, err := range r.snapshot().errs {
		if models.IsErrorType(err, errType) {
			return true
		}
	}
	return false
}

func waitStatus(t *testing.T, c *Client, want models.ConnectionStatus) {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.Status() == want
	}, 2*time.Second, 5*time.Millisecond, "期望状态 %s，实际 %s", want, c.Status())
}

func TestClientConnectWithoutCredential(t *testing.T) {
	srv := newEventServer(t)
	c := newTestClient(t, testConfig(srv.wsURL()), StaticCredential(""))

	c.Connect()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, models.ConnectionStatusDisconnected, c.Status())
	assert.Equal(t, int32(0), srv.handshakes.Load())
}

func TestClientConnectSendsToken(t *testing.T) {
	srv := newEventServer(t)
	c := newTestClient(t, testConfig(srv.wsURL()+"/events?room=7"), StaticCredential("abc123"))
	rec := &recorder{}
	rec.attach(c)

	c.Connect()
	srv.waitConn(t)
	waitStatus(t, c, models.ConnectionStatusConnected)

	assert.Equal(t, "abc123", srv.lastToken())
	srv.mu.Lock()
	query := srv.queries[0]
	srv.mu.Unlock()
	assert.Contains(t, query, "room=7")
	assert.Contains(t, query, "token=abc123")

	assert.True(t, c.IsConnected())
	assert.Equal(t, 0, c.Attempts())
	assert.Eventually(t, func() bool { return rec.snapshot().connects == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []models.ConnectionStatus{
		models.ConnectionStatusConnecting,
		models.ConnectionStatusConnected,
	}, rec.snapshot().statuses)
}

func TestClientRepeatedConnectSingleSocket(t *testing.T) {
	srv := newEventServer(t)
	c := newTestClient(t, testConfig(srv.wsURL()), StaticCredential("abc123"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Connect()
		}()
	}
	wg.Wait()
	waitStatus(t, c, models.ConnectionStatusConnected)

	for i := 0; i < 20; i++ {
		c.Connect()
	}
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), srv.handshakes.Load())
	assert.Equal(t, 1, srv.connCount())
}

func TestClientSend(t *testing.T) {
	srv := newEventServer(t)
	c := newTestClient(t, testConfig(srv.wsURL()), StaticCredential("abc123"))

	assert.False(t, c.Send(map[string]any{"event": "ping"}), "未连接时应返回 false")

	c.Connect()
	waitStatus(t, c, models.ConnectionStatusConnected)

	assert.True(t, c.Send(map[string]any{"event": "ping"}))
	got := srv.waitFrame(t, func(s string) bool { return strings.Contains(s, "ping") })
	assert.JSONEq(t, `{"event":"ping"}`, got)

	assert.True(t, c.SendFrame(models.NewFrame("subscribe").With("topic", "tickets")))
	got = srv.waitFrame(t, func(s string) bool { return strings.Contains(s, "subscribe") })
	assert.JSONEq(t, `{"event":"subscribe","topic":"tickets"}`, got)

	assert.False(t, c.Send(func() {}), "无法编码的消息返回 false")

	c.Disconnect()
	assert.False(t, c.Send(map[string]any{"event": "ping"}))
}

func TestClientWriteErrors(t *testing.T) {
	srv := newEventServer(t)
	c := New(testConfig(srv.wsURL()), StaticCredential("abc123")).WithLogger(config.NewNoOpLogger())

	err := c.Write(map[string]any{"event": "ping"})
	assert.True(t, models.IsErrorType(err, models.ErrTypeNotConnected))

	err = c.Write(make(chan int))
	assert.True(t, models.IsErrorType(err, models.ErrTypeEncodeFailed))

	c.Close()
	err = c.Write(map[string]any{"event": "ping"})
	assert.True(t, models.IsErrorType(err, models.ErrTypeClientClosed))
}

func TestClientHeartbeat(t *testing.T) {
	srv := newEventServer(t)
	cfg := testConfig(srv.wsURL()).WithHeartbeatInterval(30 * time.Millisecond)
	c := newTestClient(t, cfg, StaticCredential("abc123"))

	c.Connect()
	got := srv.waitFrame(t, func(s string) bool { return strings.Contains(s, "heartbeat") })
	assert.JSONEq(t, `{"event":"heartbeat"}`, got)
}

func TestClientMessages(t *testing.T) {
	srv := newEventServer(t)
	c := newTestClient(t, testConfig(srv.wsURL()), StaticCredential("abc123"))
	rec := &recorder{}
	rec.attach(c)

	c.Connect()
	conn := srv.waitConn(t)
	waitStatus(t, c, models.ConnectionStatusConnected)

	srv.push(t, conn, `{"event":"heartbeat_ack"}`)
	srv.push(t, conn, `{"event":"ticket.created","id":1}`)
	srv.push(t, conn, `this is not json`)
	srv.push(t, conn, `{"event":"pong"}`)
	srv.push(t, conn, `{"id":2}`)
	srv.push(t, conn, `{"event":"ticket.updated","id":1}`)

	require.Eventually(t, func() bool { return len(rec.snapshot().messages) == 2 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, []string{"ticket.created", "ticket.updated"}, rec.snapshot().messages)

	last := c.LastMessage()
	require.NotNil(t, last)
	assert.Equal(t, "ticket.updated", last.Event)
	assert.EqualValues(t, 1, last.Fields["id"])
	assert.True(t, c.IsConnected(), "畸形帧不影响连接")
}

func TestClientReconnectAfterAbnormalClose(t *testing.T) {
	srv := newEventServer(t)
	c := newTestClient(t, testConfig(srv.wsURL()), StaticCredential("abc123"))
	rec := &recorder{}
	rec.attach(c)

	c.Connect()
	conn := srv.waitConn(t)
	waitStatus(t, c, models.ConnectionStatusConnected)

	// 直接断开 TCP，客户端视为 1006
	_ = conn.Close()

	srv.waitConn(t)
	waitStatus(t, c, models.ConnectionStatusConnected)
	assert.Equal(t, 0, c.Attempts())
	assert.Equal(t, int32(2), srv.handshakes.Load())

	require.Eventually(t, func() bool { return rec.snapshot().connects == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{models.CloseCodeAbnormal}, rec.snapshot().disconnects)
}

func TestClientForceDisconnect(t *testing.T) {
	srv := newEventServer(t)
	c := newTestClient(t, testConfig(srv.wsURL()), StaticCredential("abc123"))
	rec := &recorder{}
	rec.attach(c)

	c.Connect()
	conn := srv.waitConn(t)
	waitStatus(t, c, models.ConnectionStatusConnected)

	srv.push(t, conn, `{"event":"force_disconnect","reason":"banned"}`)

	require.Eventually(t, func() bool { return len(rec.snapshot().logouts) == 1 }, 2*time.Second, 5*time.Millisecond)
	waitStatus(t, c, models.ConnectionStatusDisconnected)

	ce := srv.waitClose(t)
	assert.Equal(t, models.CloseCodeManual, ce.Code)
	assert.Equal(t, models.CloseReasonManual, ce.Text)

	time.Sleep(150 * time.Millisecond)
	snap := rec.snapshot()
	assert.Equal(t, []string{"banned"}, snap.logouts)
	assert.Empty(t, snap.messages)
	assert.Empty(t, snap.disconnects, "主动断开不触发 OnDisconnect")
	assert.Equal(t, int32(1), srv.handshakes.Load(), "强制下线后不重连")
	assert.False(t, c.Snapshot().ReconnectPending())
}

func TestClientUnauthorizedCloseNoRetry(t *testing.T) {
	srv := newEventServer(t)
	c := newTestClient(t, testConfig(srv.wsURL()), StaticCredential("expired"))
	rec := &recorder{}
	rec.attach(c)

	c.Connect()
	conn := srv.waitConn(t)
	waitStatus(t, c, models.ConnectionStatusConnected)

	srv.closeWith(t, conn, models.CloseCodeUnauthorized, "token expired")

	require.Eventually(t, func() bool { return len(rec.snapshot().disconnects) == 1 }, 2*time.Second, 5*time.Millisecond)
	snap := rec.snapshot()
	assert.Equal(t, []int{models.CloseCodeUnauthorized}, snap.disconnects)
	assert.Equal(t, []string{"token expired"}, snap.reasons)

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), srv.handshakes.Load())
	assert.Equal(t, models.ConnectionStatusDisconnected, c.Status())
}

func TestClientHandshakeRejected(t *testing.T) {
	srv := newEventServer(t)
	srv.reject.Store(http.StatusUnauthorized)
	c := newTestClient(t, testConfig(srv.wsURL()), StaticCredential("expired"))
	rec := &recorder{}
	rec.attach(c)

	c.Connect()

	require.Eventually(t, func() bool { return len(rec.snapshot().disconnects) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{models.CloseCodeUnauthorized}, rec.snapshot().disconnects)
	assert.True(t, rec.hasError(models.ErrTypeHandshakeRejected))

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), srv.handshakes.Load())
	assert.Equal(t, models.ConnectionStatusDisconnected, c.Status())
}

func TestClientDialFailureRetries(t *testing.T) {
	srv := newEventServer(t)
	srv.reject.Store(http.StatusServiceUnavailable)
	c := newTestClient(t, testConfig(srv.wsURL()), StaticCredential("abc123"))
	rec := &recorder{}
	rec.attach(c)

	c.Connect()
	require.Eventually(t, func() bool { return srv.handshakes.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return rec.hasError(models.ErrTypeDialFailed) }, time.Second, 5*time.Millisecond)
	for _, code := range rec.snapshot().disconnects {
		assert.Equal(t, models.CloseCodeAbnormal, code)
	}

	srv.reject.Store(0)
	waitStatus(t, c, models.ConnectionStatusConnected)
	assert.Equal(t, 0, c.Attempts())
}

func TestClientDisconnectCancelsReconnect(t *testing.T) {
	srv := newEventServer(t)
	srv.reject.Store(http.StatusServiceUnavailable)
	cfg := testConfig(srv.wsURL()).WithMinRecTime(100 * time.Millisecond)
	c := newTestClient(t, cfg, StaticCredential("abc123"))

	c.Connect()
	require.Eventually(t, func() bool { return c.Snapshot().ReconnectPending() }, 2*time.Second, 5*time.Millisecond)

	c.Disconnect()
	before := srv.handshakes.Load()
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, before, srv.handshakes.Load(), "断开后不应再重连")
	assert.False(t, c.Snapshot().ReconnectPending())
	assert.Equal(t, models.ConnectionStatusDisconnected, c.Status())

	// 显式 Connect 恢复
	srv.reject.Store(0)
	c.Connect()
	waitStatus(t, c, models.ConnectionStatusConnected)
}

func TestClientManualDisconnect(t *testing.T) {
	srv := newEventServer(t)
	c := newTestClient(t, testConfig(srv.wsURL()), StaticCredential("abc123"))
	rec := &recorder{}
	rec.attach(c)

	c.Connect()
	srv.waitConn(t)
	waitStatus(t, c, models.ConnectionStatusConnected)

	c.Disconnect()
	c.Disconnect()

	ce := srv.waitClose(t)
	assert.Equal(t, models.CloseCodeManual, ce.Code)
	assert.Equal(t, "manual", ce.Text)
	assert.Equal(t, models.ConnectionStatusDisconnected, c.Status())

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, rec.snapshot().disconnects)
	assert.Equal(t, int32(1), srv.handshakes.Load())
}

func TestClientCredentialClearedStopsReconnect(t *testing.T) {
	srv := newEventServer(t)
	cred := NewMutableCredential("abc123")
	c := newTestClient(t, testConfig(srv.wsURL()), cred)

	c.Connect()
	conn := srv.waitConn(t)
	waitStatus(t, c, models.ConnectionStatusConnected)

	cred.Clear()
	_ = conn.Close()

	waitStatus(t, c, models.ConnectionStatusDisconnected)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), srv.handshakes.Load())
	assert.False(t, c.Snapshot().ReconnectPending())
}

func TestClientReconnectUsesCurrentCredential(t *testing.T) {
	srv := newEventServer(t)
	cred := NewMutableCredential("first")
	c := newTestClient(t, testConfig(srv.wsURL()), cred)

	c.Connect()
	conn := srv.waitConn(t)
	waitStatus(t, c, models.ConnectionStatusConnected)

	cred.Set("second")
	_ = conn.Close()

	srv.waitConn(t)
	assert.Equal(t, "second", srv.lastToken())
}

func TestClientHeartbeatAckTimeout(t *testing.T) {
	srv := newEventServer(t)
	cfg := testConfig(srv.wsURL()).
		WithHeartbeatInterval(20 * time.Millisecond).
		WithHeartbeatAckTimeout(50 * time.Millisecond)
	c := newTestClient(t, cfg, StaticCredential("abc123"))
	rec := &recorder{}
	rec.attach(c)

	c.Connect()
	srv.waitConn(t)

	// 服务端不回应答，客户端判定连接失效后重连
	srv.waitConn(t)
	require.Eventually(t, func() bool { return len(rec.snapshot().disconnects) > 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, rec.hasError(models.ErrTypeHeartbeatTimeout))
	assert.Equal(t, models.CloseCodeAbnormal, rec.snapshot().disconnects[0])
}

func TestClientHeartbeatAckKeepsConnection(t *testing.T) {
	srv := newEventServer(t)
	cfg := testConfig(srv.wsURL()).
		WithHeartbeatInterval(20 * time.Millisecond).
		WithHeartbeatAckTimeout(80 * time.Millisecond)
	c := newTestClient(t, cfg, StaticCredential("abc123"))

	c.Connect()
	conn := srv.waitConn(t)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			case data := <-srv.received:
				if strings.Contains(string(data), "heartbeat") {
					_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"heartbeat_ack"}`))
				}
			}
		}
	}()

	time.Sleep(300 * time.Millisecond)
	close(stop)
	<-done

	assert.True(t, c.IsConnected())
	assert.Equal(t, int32(1), srv.handshakes.Load())
}

func TestClientCallbackMayDisconnect(t *testing.T) {
	srv := newEventServer(t)
	c := newTestClient(t, testConfig(srv.wsURL()), StaticCredential("abc123"))
	c.OnMessage(func(frame *models.Frame) {
		if frame.Event == "logout" {
			c.Disconnect()
		}
	})

	c.Connect()
	conn := srv.waitConn(t)
	waitStatus(t, c, models.ConnectionStatusConnected)

	srv.push(t, conn, `{"event":"logout"}`)
	waitStatus(t, c, models.ConnectionStatusDisconnected)
}

func TestClientPublishesToBus(t *testing.T) {
	srv := newEventServer(t)
	b := bus.NewLocalBus(8)
	defer b.Close()

	ch, cancel, err := b.Subscribe(context.Background(), "dashboard.*")
	require.NoError(t, err)
	defer cancel()

	c := newTestClient(t, testConfig(srv.wsURL()), StaticCredential("abc123")).WithBus(b, "dashboard.")
	c.Connect()
	conn := srv.waitConn(t)
	waitStatus(t, c, models.ConnectionStatusConnected)

	srv.push(t, conn, `{"event":"pong"}`)
	srv.push(t, conn, `{"event":"ticket.updated","id":3}`)

	select {
	case env := <-ch:
		assert.Equal(t, "dashboard.ticket.updated", env.Topic)
		assert.JSONEq(t, `{"event":"ticket.updated","id":3}`, string(env.Payload))
	case <-time.After(2 * time.Second):
		t.Fatal("未收到总线消息")
	}
}

func TestClientServerCloseReleasesSocket(t *testing.T) {
	for _, code := range []int{models.CloseCodeUnauthorized, models.CloseCodeForceDisconnect, websocket.CloseInternalServerErr} {
		srv := newEventServer(t)
		c := newTestClient(t, testConfig(srv.wsURL()).WithMinRecTime(time.Hour).WithMaxRecTime(time.Hour), StaticCredential("abc123"))

		c.Connect()
		conn := srv.waitConn(t)
		waitStatus(t, c, models.ConnectionStatusConnected)

		srv.sendClose(t, conn, code, "bye")
		// 客户端回应关闭帧后服务端读协程退出
		assert.Equal(t, code, srv.waitClose(t).Code)

		// 客户端必须关闭底层 TCP 连接
		raw := conn.NetConn()
		require.NoError(t, raw.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, err := raw.Read(make([]byte, 1))
		assert.ErrorIs(t, err, io.EOF, "code %d", code)
		assert.Equal(t, models.ConnectionStatusDisconnected, c.Status())
	}
}

func TestClientCloseAfterServerCloseReleasesResources(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := newEventServer(t)
	defer srv.shutdown()

	cfg := testConfig(srv.wsURL()).WithLogging(&config.Logging{Enabled: false})
	c := New(cfg, StaticCredential("abc123")).WithLogger(config.NewNoOpLogger())

	c.Connect()
	conn := srv.waitConn(t)
	waitStatus(t, c, models.ConnectionStatusConnected)

	// 服务端关闭后客户端按退避重连
	srv.sendClose(t, conn, websocket.CloseGoingAway, "restart")
	srv.waitClose(t)
	srv.waitConn(t)
	waitStatus(t, c, models.ConnectionStatusConnected)

	c.Close()
	assert.Equal(t, models.ConnectionStatusDisconnected, c.Status())
}

func TestClientCloseReleasesResources(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := newEventServer(t)
	defer srv.shutdown()

	cfg := testConfig(srv.wsURL()).
		WithHeartbeatInterval(10 * time.Millisecond).
		WithLogging(&config.Logging{Enabled: false})
	c := New(cfg, StaticCredential("abc123")).WithLogger(config.NewNoOpLogger())
	rec := &recorder{}
	rec.attach(c)

	c.Connect()
	conn := srv.waitConn(t)
	waitStatus(t, c, models.ConnectionStatusConnected)

	// 安排一次重连后立即销毁
	_ = conn.Close()
	require.Eventually(t, func() bool { return c.Snapshot().ReconnectPending() || c.IsConnected() }, 2*time.Second, 5*time.Millisecond)

	c.Close()
	c.Close()
	assert.Equal(t, models.ConnectionStatusDisconnected, c.Status())
	assert.False(t, c.Send(map[string]any{"event": "ping"}))

	c.Connect()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, models.ConnectionStatusDisconnected, c.Status(), "销毁后 Connect 无效")
}
