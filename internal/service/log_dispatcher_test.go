package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/user/swfilms/internal/metrics"
	"github.com/user/swfilms/internal/model"
)

type failingRecorder struct {
	calls atomic.Int32
}

func (f *failingRecorder) RecordLog(ctx context.Context, entry *model.LogEntry) (int64, error) {
	f.calls.Add(1)
	return 0, errors.New("db down")
}

func TestLogDispatcher_DrainsOnClose(t *testing.T) {
	store := &memoryLogStore{}
	svc := NewLogService(store, memoryKeyStore{}, nil)
	d := NewLogDispatcher(svc, 16)

	for i := 0; i < 10; i++ {
		d.Dispatch(&model.LogEntry{RequestMethod: "GET", Endpoint: "/api/films", ResponseCode: 200})
	}
	d.Close()

	if got := len(store.All()); got != 10 {
		t.Errorf("written = %d, want 10", got)
	}

	// 关闭后入队直接丢弃
	d.Dispatch(&model.LogEntry{RequestMethod: "GET"})
	if got := len(store.All()); got != 10 {
		t.Errorf("written after close = %d, want 10", got)
	}
}

func TestLogDispatcher_WriteFailureIsContained(t *testing.T) {
	rec := &failingRecorder{}
	d := NewLogDispatcher(rec, 4)
	d.Dispatch(&model.LogEntry{RequestMethod: "GET"})
	d.Close()

	if rec.calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", rec.calls.Load())
	}
}

func TestLogDispatcher_NilSafe(t *testing.T) {
	var d *LogDispatcher
	d.Dispatch(&model.LogEntry{})
	d.Close()
}

func TestLogDispatcher_DispatchRacingCloseIsAccounted(t *testing.T) {
	dropped := metrics.LogWritesTotal.WithLabelValues("dropped")
	before := testutil.ToFloat64(dropped)

	store := &memoryLogStore{}
	d := NewLogDispatcher(NewLogService(store, memoryKeyStore{}, nil), 1024)

	const total = 200
	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Dispatch(&model.LogEntry{RequestMethod: "GET", Endpoint: "/api/films", ResponseCode: 200})
		}()
	}
	d.Close()
	wg.Wait()

	// 每条日志要么写入，要么计入 dropped
	written := len(store.All())
	lost := int(testutil.ToFloat64(dropped) - before)
	if written+lost != total {
		t.Errorf("written %d + dropped %d = %d, want %d", written, lost, written+lost, total)
	}
}
