package service

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// sharedDo 合并相同 key 的并发调用。
// 共享调用不继承任何调用方的取消，只受 timeout 限制；每个调用方只等待自己的 ctx。
func sharedDo[T any](ctx context.Context, g *singleflight.Group, key string, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ch := g.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return fn(callCtx)
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
