/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-15 18:10:27
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 22:40:12
 * @FilePath: \go-rsc\exports_bus.go
 * @Description: 导出消息总线
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */

package rsc

import (
	"github.com/kamalyes/go-rsc/bus"
)

type (
	Bus      = bus.Bus
	Envelope = bus.Envelope
	LocalBus = bus.LocalBus
	RedisBus = bus.RedisBus
)

// NewLocalBus 创建进程内总线
var NewLocalBus = bus.NewLocalBus

// NewRedisBus 创建 Redis 总线
var NewRedisBus = bus.NewRedisBus

// MatchTopic 主题通配匹配
var MatchTopic = bus.MatchTopic
