package repository

import (
	"context"
	"errors"
	"time"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVRepository 键值存储数据访问接口
type KVRepository interface {
	Get(ctx context.Context, key string) (*models.KVEntry, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// GormKVRepository GORM 实现
type GormKVRepository struct {
	db *gorm.DB
}

// NewKVRepository 创建键值仓库
func NewKVRepository(db *gorm.DB) *GormKVRepository {
	return &GormKVRepository{db: db}
}

// Get 获取键值，不存在时返回 nil
func (r *GormKVRepository) Get(ctx context.Context, key string) (*models.KVEntry, error) {
	var entry models.KVEntry
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// Put 写入或覆盖键值
func (r *GormKVRepository) Put(ctx context.Context, key, value string) error {
	entry := models.KVEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

// Delete 删除键值
func (r *GormKVRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("key = ?", key).Delete(&models.KVEntry{}).Error
}
