package service

import (
	"context"
	"time"

	"github.com/user/swfilms/internal/logging"
)

// LogPurger 按天数删除过期请求日志
type LogPurger interface {
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

// CleanupService 清理服务，retentionDays <= 0 时不清理
type CleanupService struct {
	logs          LogPurger
	retentionDays int
	interval      time.Duration
}

// NewCleanupService 创建清理服务
func NewCleanupService(logs LogPurger, retentionDays int) *CleanupService {
	return &CleanupService{
		logs:          logs,
		retentionDays: retentionDays,
		interval:      24 * time.Hour,
	}
}

// Start 启动定时清理任务，ctx 取消时退出
func (s *CleanupService) Start(ctx context.Context) {
	if s.retentionDays <= 0 {
		logging.Info().Msg("[CleanupService] 未设置 LOG_RETENTION_DAYS，请求日志永久保留")
		return
	}

	ticker := time.NewTicker(s.interval)

	go func() {
		defer ticker.Stop()

		// 启动时先运行一次
		s.RunOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce 执行一次清理，返回删除条数
func (s *CleanupService) RunOnce(ctx context.Context) int64 {
	if s.retentionDays <= 0 {
		return 0
	}

	logging.Info().Int("retention_days", s.retentionDays).Msg("[CleanupService] 开始清理过期请求日志...")

	affected, err := s.logs.DeleteOlderThan(ctx, s.retentionDays)
	if err != nil {
		logging.Error().Err(err).Msg("[CleanupService] 清理请求日志失败")
		return 0
	}
	if affected > 0 {
		logging.Info().Int64("affected", affected).Msg("[CleanupService] 已清理过期请求日志")
	}
	return affected
}
