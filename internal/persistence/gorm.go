package persistence

import (
	"context"

	"github.com/storefront-next/internal/repository"
)

// GormBackend 基于数据库 kv_entries 表的后端
type GormBackend struct {
	repo repository.KVRepository
}

// NewGormBackend 创建数据库后端
func NewGormBackend(repo repository.KVRepository) *GormBackend {
	return &GormBackend{repo: repo}
}

// Get 读取
func (g *GormBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if g == nil || g.repo == nil {
		return nil, false, nil
	}
	entry, err := g.repo.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if entry == nil {
		return nil, false, nil
	}
	return []byte(entry.Value), true, nil
}

// Set 写入
func (g *GormBackend) Set(ctx context.Context, key string, value []byte) error {
	if g == nil || g.repo == nil {
		return nil
	}
	return g.repo.Put(ctx, key, string(value))
}

// Delete 删除
func (g *GormBackend) Delete(ctx context.Context, key string) error {
	if g == nil || g.repo == nil {
		return nil
	}
	return g.repo.Delete(ctx, key)
}
