/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-13 17:25:10
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-17 11:48:02
 * @FilePath: \go-rsc\client\websocket.go
 * @Description: WebSocket 传输参数
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package client

import (
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
)

// WebSocket 底层连接参数
type WebSocket struct {
	Url           string            // 连接 URL（不含凭证）
	TokenParam    string            // 凭证查询参数名
	Dialer        *websocket.Dialer // WebSocket 拨号器
	RequestHeader http.Header       // 请求头
}

// NewWebSocket 创建连接参数
func NewWebSocket(rawURL, tokenParam string) *WebSocket {
	return &WebSocket{
		Url:           rawURL,
		TokenParam:    tokenParam,
		Dialer:        websocket.DefaultDialer,
		RequestHeader: http.Header{},
	}
}

// WithDialer 设置自定义的 WebSocket 拨号器
func (ws *WebSocket) WithDialer(dialer *websocket.Dialer) *WebSocket {
	ws.Dialer = dialer
	return ws
}

// WithRequestHeader 设置请求头
func (ws *WebSocket) WithRequestHeader(header http.Header) *WebSocket {
	ws.RequestHeader = header
	return ws
}

// WithCustomURL 设置自定义 URL
func (ws *WebSocket) WithCustomURL(rawURL string) *WebSocket {
	ws.Url = rawURL
	return ws
}

// DialURL 拼接凭证后的连接地址，保留原有查询参数
func (ws *WebSocket) DialURL(token string) (string, error) {
	u, err := url.Parse(ws.Url)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(ws.TokenParam, token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
