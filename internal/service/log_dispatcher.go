package service

import (
	"context"
	"sync"
	"time"

	"github.com/user/swfilms/internal/logging"
	"github.com/user/swfilms/internal/metrics"
	"github.com/user/swfilms/internal/model"
)

// LogRecorder 持久化单条请求日志
type LogRecorder interface {
	RecordLog(ctx context.Context, entry *model.LogEntry) (int64, error)
}

// LogDispatcher 异步写入请求日志：响应先返回，写入失败只记录不传播
type LogDispatcher struct {
	recorder     LogRecorder
	entries      chan *model.LogEntry
	stopChan     chan struct{}
	mu           sync.RWMutex // 保护 closed，入队与关闭互斥
	closed       bool
	wg           sync.WaitGroup
	writeTimeout time.Duration
}

// NewLogDispatcher queueSize 为缓冲队列长度，队列满时丢弃并告警
func NewLogDispatcher(recorder LogRecorder, queueSize int) *LogDispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}

	d := &LogDispatcher{
		recorder:     recorder,
		entries:      make(chan *model.LogEntry, queueSize),
		stopChan:     make(chan struct{}),
		writeTimeout: 5 * time.Second,
	}

	d.wg.Add(1)
	go d.process()

	return d
}

// Dispatch 非阻塞入队
func (d *LogDispatcher) Dispatch(entry *model.LogEntry) {
	if d == nil || entry == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.LogWritesTotal.WithLabelValues("dropped").Inc()
		logging.Warn().Str("endpoint", entry.Endpoint).Msg("[LogDispatcher] 已关闭，丢弃请求日志")
		return
	}

	select {
	case d.entries <- entry:
	default:
		metrics.LogWritesTotal.WithLabelValues("dropped").Inc()
		logging.Warn().Str("endpoint", entry.Endpoint).Msg("[LogDispatcher] 队列已满，丢弃请求日志")
	}
}

func (d *LogDispatcher) process() {
	defer d.wg.Done()

	for {
		select {
		case <-d.stopChan:
			d.drain()
			return
		case entry := <-d.entries:
			d.write(entry)
		}
	}
}

func (d *LogDispatcher) drain() {
	for {
		select {
		case entry := <-d.entries:
			d.write(entry)
		default:
			return
		}
	}
}

func (d *LogDispatcher) write(entry *model.LogEntry) {
	defer func() {
		if r := recover(); r != nil {
			metrics.LogWritesTotal.WithLabelValues("error").Inc()
			logging.Error().Interface("panic", r).Msg("[LogDispatcher] 写入请求日志发生恐慌")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.writeTimeout)
	defer cancel()

	if _, err := d.recorder.RecordLog(ctx, entry); err != nil {
		metrics.LogWritesTotal.WithLabelValues("error").Inc()
		logging.Error().Err(err).
			Str("method", entry.RequestMethod).
			Str("endpoint", entry.Endpoint).
			Int("status", entry.ResponseCode).
			Msg("[LogDispatcher] 写入请求日志失败")
		return
	}
	metrics.LogWritesTotal.WithLabelValues("ok").Inc()
}

// Close 停止接收并写完队列中剩余的日志
func (d *LogDispatcher) Close() {
	if d == nil {
		return
	}

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.stopChan)
	}
	d.mu.Unlock()

	d.wg.Wait()
}
