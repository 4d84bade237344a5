/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-16 12:02:51
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 22:44:39
 * @FilePath: \go-rsc\exports_session.go
 * @Description: 导出会话
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */

package rsc

import (
	"github.com/kamalyes/go-rsc/session"
)

type (
	Session         = session.Session
	SessionHandlers = session.Handlers
)
