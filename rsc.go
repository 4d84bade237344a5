/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-13 09:50:55
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 13:20:41
 * @FilePath: \go-rsc\rsc.go
 * @Description: 断线自动重连的 WebSocket 客户端入口
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package rsc

import (
	"github.com/kamalyes/go-rsc/client"
	"github.com/kamalyes/go-rsc/config"
	"github.com/kamalyes/go-rsc/session"
)

// Version 版本号
const Version = "v0.3.0"

// New 创建客户端
// cfg 为 nil 或未配置日志时使用 DefaultLogger
func New(cfg *config.Config, cred client.CredentialSource) *Client {
	c := client.New(cfg, cred)
	if cfg == nil || cfg.Logging == nil {
		c.WithLogger(DefaultLogger)
	}
	return c
}

// NewWithToken 以固定凭证连接 endpoint
func NewWithToken(endpoint, token string) *Client {
	return New(DefaultConfig().WithEndpoint(endpoint), client.StaticCredential(token))
}

// NewSession 创建凭证驱动的会话
func NewSession(cfg *config.Config, source client.WatchableCredential, handlers SessionHandlers) *Session {
	s := session.New(cfg, source, handlers)
	if cfg == nil || cfg.Logging == nil {
		s.WithLogger(DefaultLogger)
	}
	return s
}
