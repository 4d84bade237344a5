/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-13 10:30:02
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 22:14:48
 * @FilePath: \go-rsc\config.go
 * @Description: 配置导出及加载
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package rsc

import (
	"github.com/kamalyes/go-rsc/config"
)

type (
	Config  = config.Config
	Logging = config.Logging
)

var (
	DefaultConfig  = config.Default
	DefaultLogging = config.DefaultLogging
	LoadFile       = config.LoadFile
)

// LoadConfig 读取配置文件（path 为空时使用默认配置），再用环境变量覆盖并校验
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
