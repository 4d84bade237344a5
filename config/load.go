/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-13 09:41:55
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 22:31:02
 * @FilePath: \go-rsc\config\load.go
 * @Description: 从文件和环境变量加载配置
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kamalyes/go-rsc/models"
	"github.com/kamalyes/go-toolbox/pkg/errorx"
	"github.com/kamalyes/go-toolbox/pkg/osx"
	"gopkg.in/yaml.v3"
)

// 环境变量
const (
	EnvEndpoint          = "RSC_ENDPOINT"
	EnvTokenParam        = "RSC_TOKEN_PARAM"
	EnvHeartbeatInterval = "RSC_HEARTBEAT_INTERVAL"
	EnvMaxRecTime        = "RSC_MAX_REC_TIME"
	EnvLogLevel          = "RSC_LOG_LEVEL"
)

// LoadFile 读取配置文件，按扩展名选择 YAML 或 TOML，未出现的字段保留默认值
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errorx.NewError(models.ErrTypeConfigLoad, path, err.Error())
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, errorx.NewError(models.ErrTypeConfigLoad, path, err.Error())
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errorx.NewError(models.ErrTypeConfigLoad, path, err.Error())
		}
	default:
		return nil, errorx.NewError(models.ErrTypeConfigLoad, path, "unsupported extension")
	}
	return cfg, nil
}

// ApplyEnv 用环境变量覆盖配置，无法解析的值被忽略
func (c *Config) ApplyEnv() *Config {
	c.Endpoint = osx.Getenv(EnvEndpoint, c.Endpoint)
	c.TokenParam = osx.Getenv(EnvTokenParam, c.TokenParam)

	if v := osx.Getenv(EnvHeartbeatInterval, ""); v != "" {
		if d, err := parseDuration(v); err == nil {
			c.HeartbeatInterval = d
		}
	}
	if v := osx.Getenv(EnvMaxRecTime, ""); v != "" {
		if d, err := parseDuration(v); err == nil {
			c.MaxRecTime = d
		}
	}
	if v := osx.Getenv(EnvLogLevel, ""); v != "" {
		if c.Logging == nil {
			c.Logging = DefaultLogging()
		}
		c.Logging.Level = v
	}
	return c
}

// parseDuration 支持 "30s" 形式，也接受纯数字（毫秒）
func parseDuration(v string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}
