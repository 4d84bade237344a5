/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-16 20:25:04
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 14:18:50
 * @FilePath: \go-rsc\cmd\rsc\connect.go
 * @Description: connect 子命令，保持会话并打印收到的消息
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/kamalyes/go-rsc"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// connectOptions connect 子命令参数
type connectOptions struct {
	configPath  string
	endpoint    string
	token       string
	tokenFile   string
	logLevel    string
	redisAddr   string
	redisPrefix string
}

func newConnectCmd() *cobra.Command {
	opts := &connectOptions{}
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "连接服务端并打印收到的消息，Ctrl+C 退出",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runConnect(ctx, cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "配置文件 (yaml/toml)")
	flags.StringVar(&opts.endpoint, "url", "", "服务端地址，覆盖配置文件与 RSC_ENDPOINT")
	flags.StringVar(&opts.token, "token", "", "固定凭证")
	flags.StringVar(&opts.tokenFile, "token-file", "", "凭证文件，内容变化时自动重连，删除时登出")
	flags.StringVar(&opts.logLevel, "log-level", "", "日志级别 debug/info/warn/error")
	flags.StringVar(&opts.redisAddr, "redis", "", "Redis 地址，设置后把收到的消息发布到 Redis")
	flags.StringVar(&opts.redisPrefix, "redis-prefix", "", "Redis 频道前缀")
	cmd.MarkFlagsMutuallyExclusive("token", "token-file")
	return cmd
}

// buildConfig 依次应用配置文件、环境变量、命令行参数，最后校验
func buildConfig(opts *connectOptions) (*rsc.Config, error) {
	cfg := rsc.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := rsc.LoadFile(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	if opts.endpoint != "" {
		cfg.Endpoint = opts.endpoint
	}
	if opts.logLevel != "" {
		if cfg.Logging == nil {
			cfg.Logging = rsc.DefaultLogging()
		}
		cfg.Logging.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildCredential 返回凭证来源及其释放函数
func buildCredential(ctx context.Context, opts *connectOptions, l rsc.RSCLogger) (rsc.WatchableCredential, func(), error) {
	if opts.tokenFile == "" {
		return rsc.NewMutableCredential(opts.token), func() {}, nil
	}
	fc, err := rsc.NewFileCredential(opts.tokenFile, l)
	if err != nil {
		return nil, nil, err
	}
	fc.Start(ctx)
	return fc, func() { _ = fc.Close() }, nil
}

func runConnect(ctx context.Context, out io.Writer, opts *connectOptions) error {
	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}
	l := cfg.Logging.ToLogger()

	source, release, err := buildCredential(ctx, opts, l)
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := rsc.NewSession(cfg, source, rsc.SessionHandlers{
		OnConnect: func() {
			fmt.Fprintln(out, "connected")
		},
		OnDisconnect: func(code int, reason string) {
			fmt.Fprintf(out, "disconnected code=%d reason=%q\n", code, reason)
		},
		OnMessage: func(frame *rsc.Frame) {
			data, err := frame.Encode()
			if err != nil {
				return
			}
			fmt.Fprintln(out, string(data))
		},
		OnForceLogout: func(reason string) {
			fmt.Fprintf(out, "force logout: %s\n", reason)
			cancel()
		},
	}).WithLogger(l)

	if opts.redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: opts.redisAddr})
		b := rsc.NewRedisBus(rdb, opts.redisPrefix).WithLogger(l)
		defer func() {
			_ = b.Close()
			_ = rdb.Close()
		}()
		s.WithBus(b, "")
	}

	s.Start(ctx)
	<-ctx.Done()
	s.Stop()
	return nil
}
