/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 14:10:26
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 22:30:40
 * @FilePath: \go-rsc\config\config.go
 * @Description: Config 结构体
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package config

import (
	"net/url"
	"slices"
	"time"

	"github.com/kamalyes/go-rsc/models"
	"github.com/kamalyes/go-toolbox/pkg/errorx"
)

// Config 客户端配置
type Config struct {
	Endpoint            string        `yaml:"endpoint" toml:"endpoint"`                           // 事件服务地址
	TokenParam          string        `yaml:"token-param" toml:"token-param"`                     // 凭证查询参数名
	HeartbeatInterval   time.Duration `yaml:"heartbeat-interval" toml:"heartbeat-interval"`       // 心跳间隔
	HeartbeatEvent      string        `yaml:"heartbeat-event" toml:"heartbeat-event"`             // 心跳事件名
	HeartbeatAckTimeout time.Duration `yaml:"heartbeat-ack-timeout" toml:"heartbeat-ack-timeout"` // 心跳应答超时，0 表示不检测，可小于心跳间隔
	AckEvents           []string      `yaml:"ack-events" toml:"ack-events"`                       // 心跳应答事件
	NoRetryCloseCodes   []int         `yaml:"no-retry-close-codes" toml:"no-retry-close-codes"`   // 不重连的关闭码
	MinRecTime          time.Duration `yaml:"min-rec-time" toml:"min-rec-time"`                   // 最小重连时间
	MaxRecTime          time.Duration `yaml:"max-rec-time" toml:"max-rec-time"`                   // 最大重连时间
	RecFactor           float64       `yaml:"rec-factor" toml:"rec-factor"`                       // 重连因子
	RecJitter           bool          `yaml:"rec-jitter" toml:"rec-jitter"`                       // 重连抖动
	WriteWait           time.Duration `yaml:"write-wait" toml:"write-wait"`                       // 写超时
	HandshakeTimeout    time.Duration `yaml:"handshake-timeout" toml:"handshake-timeout"`         // 握手超时
	MaxMessageSize      int64         `yaml:"max-message-size" toml:"max-message-size"`           // 最大消息长度
	Logging             *Logging      `yaml:"logging" toml:"logging"`                             // 日志配置
}

// Default 创建默认配置
func Default() *Config {
	return &Config{
		TokenParam:        "token",
		HeartbeatInterval: 30 * time.Second,
		HeartbeatEvent:    models.EventHeartbeat,
		AckEvents:         models.DefaultAckEvents(),
		NoRetryCloseCodes: models.DefaultNoRetryCloseCodes(),
		MinRecTime:        1 * time.Second,
		MaxRecTime:        30 * time.Second,
		RecFactor:         2,
		WriteWait:         10 * time.Second,
		HandshakeTimeout:  10 * time.Second,
		MaxMessageSize:    1 << 20,
		Logging:           DefaultLogging(),
	}
}

// Clone 深拷贝
func (c *Config) Clone() *Config {
	cp := *c
	cp.AckEvents = slices.Clone(c.AckEvents)
	cp.NoRetryCloseCodes = slices.Clone(c.NoRetryCloseCodes)
	if c.Logging != nil {
		l := *c.Logging
		cp.Logging = &l
	}
	return &cp
}

// WithEndpoint 设置服务地址并返回当前配置对象
func (c *Config) WithEndpoint(endpoint string) *Config {
	c.Endpoint = endpoint
	return c
}

// WithTokenParam 设置凭证查询参数名并返回当前配置对象
func (c *Config) WithTokenParam(name string) *Config {
	c.TokenParam = name
	return c
}

// WithHeartbeatInterval 设置心跳间隔并返回当前配置对象
func (c *Config) WithHeartbeatInterval(d time.Duration) *Config {
	c.HeartbeatInterval = d
	return c
}

// WithHeartbeatEvent 设置心跳事件名并返回当前配置对象
func (c *Config) WithHeartbeatEvent(event string) *Config {
	c.HeartbeatEvent = event
	return c
}

// WithHeartbeatAckTimeout 设置心跳应答超时并返回当前配置对象
func (c *Config) WithHeartbeatAckTimeout(d time.Duration) *Config {
	c.HeartbeatAckTimeout = d
	return c
}

// WithAckEvents 设置心跳应答事件并返回当前配置对象
func (c *Config) WithAckEvents(events ...string) *Config {
	c.AckEvents = events
	return c
}

// WithNoRetryCloseCodes 设置不重连关闭码并返回当前配置对象
func (c *Config) WithNoRetryCloseCodes(codes ...int) *Config {
	c.NoRetryCloseCodes = codes
	return c
}

// WithMinRecTime 设置最小重连时间并返回当前配置对象
func (c *Config) WithMinRecTime(d time.Duration) *Config {
	c.MinRecTime = d
	return c
}

// WithMaxRecTime 设置最大重连时间并返回当前配置对象
func (c *Config) WithMaxRecTime(d time.Duration) *Config {
	c.MaxRecTime = d
	return c
}

// WithRecFactor 设置重连因子并返回当前配置对象
func (c *Config) WithRecFactor(factor float64) *Config {
	c.RecFactor = factor
	return c
}

// WithRecJitter 设置重连抖动并返回当前配置对象
func (c *Config) WithRecJitter(jitter bool) *Config {
	c.RecJitter = jitter
	return c
}

// WithWriteWait 设置写超时并返回当前配置对象
func (c *Config) WithWriteWait(d time.Duration) *Config {
	c.WriteWait = d
	return c
}

// WithHandshakeTimeout 设置握手超时并返回当前配置对象
func (c *Config) WithHandshakeTimeout(d time.Duration) *Config {
	c.HandshakeTimeout = d
	return c
}

// WithMaxMessageSize 设置最大消息长度并返回当前配置对象
func (c *Config) WithMaxMessageSize(size int64) *Config {
	c.MaxMessageSize = size
	return c
}

// WithLogging 设置日志配置并返回当前配置对象
func (c *Config) WithLogging(l *Logging) *Config {
	c.Logging = l
	return c
}

// IsNoRetryCode 关闭码是否在不重连集合中
func (c *Config) IsNoRetryCode(code int) bool {
	return slices.Contains(c.NoRetryCloseCodes, code)
}

// IsAckEvent 事件是否为心跳应答
func (c *Config) IsAckEvent(event string) bool {
	return slices.Contains(c.AckEvents, event)
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errorx.NewError(models.ErrTypeConfigInvalid, "endpoint", "must not be empty")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return errorx.NewError(models.ErrTypeConfigInvalid, "endpoint", err.Error())
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return errorx.NewError(models.ErrTypeConfigInvalid, "endpoint", "scheme must be ws or wss")
	}
	if c.TokenParam == "" {
		return errorx.NewError(models.ErrTypeConfigInvalid, "token-param", "must not be empty")
	}
	if c.HeartbeatInterval <= 0 {
		return errorx.NewError(models.ErrTypeConfigInvalid, "heartbeat-interval", "must be positive")
	}
	if c.MinRecTime <= 0 || c.MaxRecTime < c.MinRecTime {
		return errorx.NewError(models.ErrTypeConfigInvalid, "min-rec-time/max-rec-time", "need 0 < min <= max")
	}
	if c.RecFactor < 1 {
		return errorx.NewError(models.ErrTypeConfigInvalid, "rec-factor", "must be >= 1")
	}
	if c.HeartbeatAckTimeout < 0 {
		return errorx.NewError(models.ErrTypeConfigInvalid, "heartbeat-ack-timeout", "must not be negative")
	}
	return nil
}
