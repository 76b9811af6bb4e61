// Package persistence 提供购物车状态的键值持久化适配器。
//
// 适配器只负责按单个键读写字节，不包含任何业务逻辑；
// 在没有持久化存储的环境下使用 Noop。
package persistence

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyKey 存储键为空
var ErrEmptyKey = errors.New("persistence: empty key")

// Backend 键值存储后端
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Adapter 绑定到单个键的持久化适配器
type Adapter interface {
	// Load 读取已保存内容，未保存过时返回 nil, nil
	Load(ctx context.Context) ([]byte, error)
	// Save 覆盖写入
	Save(ctx context.Context, value []byte) error
	// Key 返回绑定的存储键
	Key() string
}

type keyedAdapter struct {
	backend Backend
	key     string
}

// Bind 将后端绑定到指定键；backend 为空时退化为 Noop
func Bind(backend Backend, key string) Adapter {
	trimmed := strings.TrimSpace(key)
	if backend == nil {
		return noopAdapter{key: trimmed}
	}
	return &keyedAdapter{backend: backend, key: trimmed}
}

// JoinKey 拼接命名空间与子键
func JoinKey(namespace string, parts ...string) string {
	segments := make([]string, 0, len(parts)+1)
	if ns := strings.TrimSpace(namespace); ns != "" {
		segments = append(segments, ns)
	}
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			segments = append(segments, p)
		}
	}
	return strings.Join(segments, ":")
}

func (a *keyedAdapter) Load(ctx context.Context) ([]byte, error) {
	if a.key == "" {
		return nil, ErrEmptyKey
	}
	value, ok, err := a.backend.Get(ctx, a.key)
	if err != nil || !ok {
		return nil, err
	}
	return value, nil
}

func (a *keyedAdapter) Save(ctx context.Context, value []byte) error {
	if a.key == "" {
		return ErrEmptyKey
	}
	return a.backend.Set(ctx, a.key, value)
}

func (a *keyedAdapter) Key() string {
	return a.key
}

type noopAdapter struct {
	key string
}

// Noop 返回不落盘的适配器（服务端渲染等无持久化场景）
func Noop() Adapter {
	return noopAdapter{}
}

func (noopAdapter) Load(context.Context) ([]byte, error) { return nil, nil }

func (noopAdapter) Save(context.Context, []byte) error { return nil }

func (a noopAdapter) Key() string { return a.key }
