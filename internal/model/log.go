package model

import (
	"time"
)

// LogEntry API 请求日志，每个入站 /api 请求写入一条，写入后不再修改
type LogEntry struct {
	ID               int64     `json:"id" db:"id" gorm:"primaryKey"`
	RegisterDate     time.Time `json:"register_date" db:"register_date" gorm:"default:CURRENT_TIMESTAMP"`
	RequestMethod    string    `json:"request_method" db:"request_method"`
	Endpoint         string    `json:"endpoint" db:"endpoint"` // 敏感参数已脱敏
	ResponseCode     int       `json:"response_code" db:"response_code"`
	UserIP           string    `json:"user_ip" db:"user_ip"`
	AuthorizedUserID *int      `json:"authorized_user_id" db:"authorized_user_id"`
}

func (LogEntry) TableName() string {
	return "api_logs"
}

// UnknownIP 无法获取客户端 IP 时的占位
const UnknownIP = "N/A"
