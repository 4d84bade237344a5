/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-15 14:06:52
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 16:27:38
 * @FilePath: \go-rsc\client\credential_file.go
 * @Description: 基于文件的凭证，文件变化时自动刷新
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package client

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/kamalyes/go-logger"
	"github.com/kamalyes/go-toolbox/pkg/errorx"
)

// FileCredential 从文件读取凭证
// 监听文件所在目录，兼容"写临时文件再 rename"的原子替换；文件删除视为登出
type FileCredential struct {
	path    string
	cred    *MutableCredential
	watcher *fsnotify.Watcher
	logger  logger.ILogger
	wg      sync.WaitGroup
	once    sync.Once
}

// NewFileCredential 创建文件凭证，文件不存在时凭证为空
func NewFileCredential(path string, l logger.ILogger) (*FileCredential, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errorx.WrapError("resolve credential path", err)
	}
	token, err := readToken(abs)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errorx.WrapError("create credential watcher", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, errorx.WrapError("watch credential dir", err)
	}

	if l == nil {
		l = logger.NewEmptyLogger()
	}
	return &FileCredential{
		path:    abs,
		cred:    NewMutableCredential(token),
		watcher: watcher,
		logger:  l,
	}, nil
}

// Token 实现 CredentialSource
func (f *FileCredential) Token() string {
	return f.cred.Token()
}

// Subscribe 实现 WatchableCredential
func (f *FileCredential) Subscribe() (<-chan string, func()) {
	return f.cred.Subscribe()
}

// Clear 清空凭证并删除文件
func (f *FileCredential) Clear() {
	f.cred.Clear()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		f.logger.WarnKV("删除凭证文件失败", "path", f.path, "error", err)
	}
}

// Start 启动监听，ctx 结束或 Close 后退出
func (f *FileCredential) Start(ctx context.Context) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-f.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != f.path {
					continue
				}
				f.handle(ev)
			case err, ok := <-f.watcher.Errors:
				if !ok {
					return
				}
				f.logger.WarnKV("凭证文件监听错误", "path", f.path, "error", err)
			}
		}
	}()
}

func (f *FileCredential) handle(ev fsnotify.Event) {
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		f.logger.InfoKV("凭证文件已移除", "path", f.path)
		f.cred.Clear()
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		token, err := readToken(f.path)
		if err != nil {
			f.logger.WarnKV("读取凭证文件失败", "path", f.path, "error", err)
			return
		}
		f.cred.Set(token)
	}
}

// Close 停止监听
func (f *FileCredential) Close() error {
	var err error
	f.once.Do(func() {
		err = f.watcher.Close()
		f.wg.Wait()
	})
	return err
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", errorx.WrapError("read credential file", err)
	}
	return strings.TrimSpace(string(data)), nil
}
