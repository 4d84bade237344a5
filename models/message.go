/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 11:02:17
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 20:44:51
 * @FilePath: \go-rsc\models\message.go
 * @Description: 帧结构 - 带 event 判别字段的 JSON 对象
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package models

import (
	"github.com/kamalyes/go-toolbox/pkg/errorx"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Frame 收发的结构化帧
// Event 为必填判别字段，其余字段按事件不同而不同，统一放在 Fields 中
type Frame struct {
	Event  string         // 事件名
	Fields map[string]any // 其他字段（不含 event）
	Raw    []byte         // 原始数据，仅解码得到的帧有值
}

// NewFrame 创建帧
func NewFrame(event string) *Frame {
	return &Frame{
		Event:  event,
		Fields: make(map[string]any),
	}
}

// With 设置字段并返回当前帧
func (f *Frame) With(key string, value any) *Frame {
	if key == FieldEvent {
		if s, ok := value.(string); ok {
			f.Event = s
		}
		return f
	}
	if f.Fields == nil {
		f.Fields = make(map[string]any)
	}
	f.Fields[key] = value
	return f
}

// Get 获取字段
func (f *Frame) Get(key string) (any, bool) {
	if key == FieldEvent {
		return f.Event, true
	}
	v, ok := f.Fields[key]
	return v, ok
}

// GetString 获取字符串字段，不存在或类型不符返回空串
func (f *Frame) GetString(key string) string {
	v, ok := f.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Reason 获取 reason 字段
func (f *Frame) Reason() string {
	return f.GetString(FieldReason)
}

// MarshalJSON 编码为扁平 JSON 对象，event 与其余字段同级
func (f *Frame) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(f.Fields)+1)
	for k, v := range f.Fields {
		out[k] = v
	}
	out[FieldEvent] = f.Event
	return json.Marshal(out)
}

// UnmarshalJSON 解码
func (f *Frame) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeFrame(data)
	if err != nil {
		return err
	}
	*f = *decoded
	return nil
}

// Encode 编码帧
func (f *Frame) Encode() ([]byte, error) {
	return f.MarshalJSON()
}

// DecodeFrame 解码入站数据
// 非 JSON、非对象、缺失 event 或 event 不是非空字符串都视为畸形帧
func DecodeFrame(data []byte) (*Frame, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errorx.NewError(ErrTypeMalformedFrame, err.Error())
	}
	if fields == nil {
		return nil, errorx.NewError(ErrTypeMalformedFrame, "frame is not an object")
	}
	event, ok := fields[FieldEvent].(string)
	if !ok || event == "" {
		return nil, errorx.NewError(ErrTypeMalformedFrame, "missing event field")
	}
	delete(fields, FieldEvent)

	raw := make([]byte, len(data))
	copy(raw, data)
	return &Frame{
		Event:  event,
		Fields: fields,
		Raw:    raw,
	}, nil
}

// EncodeMessage 编码任意出站消息
// *Frame / Frame 按帧规则编码，其它值交给 JSON 编码器
func EncodeMessage(msg any) ([]byte, error) {
	switch m := msg.(type) {
	case *Frame:
		return m.MarshalJSON()
	case Frame:
		return m.MarshalJSON()
	case []byte:
		return m, nil
	default:
		data, err := json.Marshal(msg)
		if err != nil {
			return nil, errorx.NewError(ErrTypeEncodeFailed, err.Error())
		}
		return data, nil
	}
}
