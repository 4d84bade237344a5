/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-14 16:08:44
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 23:40:19
 * @FilePath: \go-rsc\client\connection.go
 * @Description: 连接管理逻辑
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kamalyes/go-rsc/models"
	"github.com/kamalyes/go-toolbox/pkg/errorx"
)

// closeWriteWait 发送关闭帧的超时时间
const closeWriteWait = time.Second

// startDial 需在 mu 内调用
func (c *Client) startDial(generation uint64) {
	if c.dialCancel != nil {
		c.dialCancel()
	}
	dialURL, err := c.WebSocket.DialURL(c.cred.Token())
	ctx, cancel := context.WithCancel(c.ctx)
	c.dialCancel = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		if err != nil {
			c.dialFailed(generation, nil, errorx.NewError(models.ErrTypeDialFailed, err.Error()))
			return
		}
		c.dial(ctx, generation, dialURL)
	}()
}

// dial 建立连接，成功后启动读协程
func (c *Client) dial(ctx context.Context, generation uint64, dialURL string) {
	c.logger.DebugKV("开始连接", "client_id", c.id, "endpoint", c.WebSocket.Url, "generation", generation)

	conn, resp, err := c.WebSocket.Dialer.DialContext(ctx, dialURL, c.WebSocket.RequestHeader)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if ctx.Err() != nil {
			// Disconnect/Close 取消了拨号，对应的 generation 已失效
			return
		}
		if rejected(resp) {
			c.dialFailed(generation, resp, errorx.NewError(models.ErrTypeHandshakeRejected, resp.StatusCode))
			return
		}
		c.dialFailed(generation, resp, errorx.NewError(models.ErrTypeDialFailed, err.Error()))
		return
	}

	conn.SetReadLimit(c.Config.MaxMessageSize)

	c.mu.Lock()
	if c.closed || !c.state.SocketLive || c.state.Generation != generation {
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = conn
	c.connGen = generation
	c.wg.Add(1)
	c.mu.Unlock()

	// 先完成 Opened 转换再开始读，保证 OnConnect 早于第一条 OnMessage
	c.apply(EventOpened{Generation: generation})
	go c.readMessages(generation, conn)
}

// dialFailed 拨号失败按浏览器语义处理：先 error 再 close
// 握手被 401/403 拒绝时视为未授权关闭，不再重连
func (c *Client) dialFailed(generation uint64, resp *http.Response, err error) {
	code, reason := models.CloseCodeAbnormal, err.Error()
	if rejected(resp) {
		code = models.CloseCodeUnauthorized
	}
	c.logger.WarnKV("连接失败", "client_id", c.id, "generation", generation, "error", err)
	c.apply(EventErrored{Generation: generation, Err: err})
	c.apply(EventClosed{
		Generation:    generation,
		Code:          code,
		Reason:        reason,
		HasCredential: c.hasCredential(),
	})
}

func rejected(resp *http.Response) bool {
	return resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden)
}

// readMessages 读协程，连接断开后投递关闭事件
func (c *Client) readMessages(generation uint64, conn *websocket.Conn) {
	defer c.wg.Done()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleReadError(generation, err)
			return
		}
		c.apply(EventFrame{Generation: generation, Data: data})
	}
}

// handleReadError 关闭帧直接取关闭码，其它错误视为传输错误 + 1006
func (c *Client) handleReadError(generation uint64, err error) {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		c.apply(EventClosed{
			Generation:    generation,
			Code:          closeErr.Code,
			Reason:        closeErr.Text,
			HasCredential: c.hasCredential(),
		})
		return
	}
	c.apply(EventErrored{Generation: generation, Err: err})
	c.apply(EventClosed{
		Generation:    generation,
		Code:          models.CloseCodeAbnormal,
		Reason:        err.Error(),
		HasCredential: c.hasCredential(),
	})
}

// closeSocket 需在 mu 内调用
// 1006 不能出现在关闭帧里，直接断开底层连接
func (c *Client) closeSocket(generation uint64, code int, reason string) {
	if c.dialCancel != nil {
		c.dialCancel()
		c.dialCancel = nil
	}
	if c.conn == nil || c.connGen != generation {
		return
	}
	conn := c.conn
	c.conn = nil

	if code != models.CloseCodeAbnormal {
		msg := websocket.FormatCloseMessage(code, reason)
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteWait))
	}
	_ = conn.Close()
}

// write 串行写入文本帧
func (c *Client) write(conn *websocket.Conn, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(c.Config.WriteWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		werr := errorx.NewError(models.ErrTypeWriteFailed, err.Error())
		c.logger.WarnKV("消息发送失败", "client_id", c.id, "error", err)
		c.mu.Lock()
		c.notifyError(werr)
		c.mu.Unlock()
		return werr
	}
	return nil
}

// IsNormalClose 检查WebSocket关闭是否为正常关闭
func IsNormalClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
