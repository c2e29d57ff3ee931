package repository

import (
	"context"
	"time"

	"github.com/user/swfilms/internal/model"
	"gorm.io/gorm"
)

type LogRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) *LogRepository {
	return &LogRepository{db: db}
}

// Create 写入一条请求日志，返回生成的 ID
func (r *LogRepository) Create(ctx context.Context, entry *model.LogEntry) (int64, error) {
	// RegisterDate 为零值时使用数据库默认时间，并经 RETURNING 回填
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return 0, err
	}
	return entry.ID, nil
}

// FindBetween 查询 [start, end] 区间内的日志，按登记时间升序
func (r *LogRepository) FindBetween(ctx context.Context, start, end time.Time) ([]model.LogEntry, error) {
	var entries []model.LogEntry
	err := r.db.WithContext(ctx).
		Where("register_date BETWEEN ? AND ?", start, end).
		Order("register_date ASC").
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CountBetween 统计区间内的日志条数
func (r *LogRepository) CountBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.LogEntry{}).
		Where("register_date BETWEEN ? AND ?", start, end).
		Count(&count).Error
	return count, err
}

// DeleteOlderThan 清理超过指定天数的日志
func (r *LogRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM api_logs
		WHERE register_date < NOW() - (? * INTERVAL '1 day')
	`, days)
	return result.RowsAffected, result.Error
}
