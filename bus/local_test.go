/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-15 16:20:44
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 09:52:08
 * @FilePath: \go-rsc\bus\local_test.go
 * @Description: 进程内总线测试
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */

package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Envelope) Envelope {
	t.Helper()
	select {
	case env, ok := <-ch:
		require.True(t, ok, "订阅通道已关闭")
		return env
	case <-time.After(time.Second):
		t.Fatal("等待消息超时")
		return Envelope{}
	}
}

func assertNoMessage(t *testing.T, ch <-chan Envelope) {
	t.Helper()
	select {
	case env := <-ch:
		t.Fatalf("不应收到消息: %s", env.Topic)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMatchTopic(t *testing.T) {
	tests := []struct {
		pattern string
		topic   string
		want    bool
	}{
		{"*", "order.created", true},
		{"order.*", "order.created", true},
		{"order.*", "orders.created", false},
		{"order.created", "order.created", true},
		{"order.created", "order.updated", false},
		{"rsc.*", "rsc.", true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"|"+tt.topic, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchTopic(tt.pattern, tt.topic))
		})
	}
}

func TestLocalBusPublishSubscribe(t *testing.T) {
	b := NewLocalBus(8)
	defer b.Close()

	ctx := context.Background()
	exact, cancelExact, err := b.Subscribe(ctx, "ticket.updated")
	require.NoError(t, err)
	defer cancelExact()

	wildcard, cancelWildcard, err := b.Subscribe(ctx, "ticket.*")
	require.NoError(t, err)
	defer cancelWildcard()

	require.NoError(t, b.Publish(ctx, "ticket.updated", []byte(`{"event":"ticket.updated"}`)))

	env := receive(t, exact)
	assert.Equal(t, "ticket.updated", env.Topic)
	assert.JSONEq(t, `{"event":"ticket.updated"}`, string(env.Payload))
	assert.False(t, env.PublishedAt.IsZero())

	env = receive(t, wildcard)
	assert.Equal(t, "ticket.updated", env.Topic)

	require.NoError(t, b.Publish(ctx, "ticket.created", []byte(`{}`)))
	assert.Equal(t, "ticket.created", receive(t, wildcard).Topic)
	assertNoMessage(t, exact)
}

func TestLocalBusSubscribeAllByDefault(t *testing.T) {
	b := NewLocalBus(0)
	defer b.Close()

	ch, cancel, err := b.Subscribe(context.Background())
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, b.Publish(context.Background(), "anything", nil))
	assert.Equal(t, "anything", receive(t, ch).Topic)
}

func TestLocalBusOrderPreserved(t *testing.T) {
	b := NewLocalBus(16)
	defer b.Close()

	ch, cancel, err := b.Subscribe(context.Background(), "seq")
	require.NoError(t, err)
	defer cancel()

	for i := 0; i < 10; i++ {
		require.NoError(t, b.Publish(context.Background(), "seq", []byte{byte(i)}))
	}
	for i := 0; i < 10; i++ {
		assert.Equal(t, []byte{byte(i)}, receive(t, ch).Payload)
	}
}

func TestLocalBusDropsWhenFull(t *testing.T) {
	b := NewLocalBus(1)
	defer b.Close()

	ch, cancel, err := b.Subscribe(context.Background(), "x")
	require.NoError(t, err)
	defer cancel()

	// 没有读取，第二、三条会被丢弃
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Publish(context.Background(), "x", []byte{byte(i)}))
	}
	assert.Equal(t, int64(2), b.Dropped())
	assert.Equal(t, []byte{0}, receive(t, ch).Payload)
}

func TestLocalBusCancel(t *testing.T) {
	b := NewLocalBus(4)
	defer b.Close()

	ch, cancel, err := b.Subscribe(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 1, b.SubscriberCount())

	cancel()
	cancel() // 可重复调用
	assert.Equal(t, 0, b.SubscriberCount())

	_, ok := <-ch
	assert.False(t, ok, "取消后通道应关闭")
	require.NoError(t, b.Publish(context.Background(), "x", nil))
}

func TestLocalBusContextCancelUnsubscribes(t *testing.T) {
	b := NewLocalBus(4)
	defer b.Close()

	ctx, cancelCtx := context.WithCancel(context.Background())
	ch, cancel, err := b.Subscribe(ctx, "x")
	require.NoError(t, err)
	defer cancel()

	cancelCtx()
	assert.Eventually(t, func() bool {
		return b.SubscriberCount() == 0
	}, time.Second, 10*time.Millisecond)

	_, ok := <-ch
	assert.False(t, ok)
}

func TestLocalBusClose(t *testing.T) {
	b := NewLocalBus(4)

	ch, cancel, err := b.Subscribe(context.Background(), "x")
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	assert.ErrorIs(t, b.Publish(context.Background(), "x", nil), ErrBusClosed)
	_, _, err = b.Subscribe(context.Background(), "x")
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestLocalBusPublishCanceledContext(t *testing.T) {
	b := NewLocalBus(4)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.Publish(ctx, "x", nil), context.Canceled)
}
