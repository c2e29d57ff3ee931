package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/user/swfilms/internal/utils"
)

// fakeUpstream 按 "路径?查询" 返回固定响应，{{base}} 替换为服务地址
type fakeUpstream struct {
	*httptest.Server
	mu     sync.Mutex
	routes map[string]string
	hits   map[string]int
}

func newFakeUpstream(t *testing.T, routes map[string]string) *fakeUpstream {
	t.Helper()

	f := &fakeUpstream{routes: routes, hits: make(map[string]int)}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}

		f.mu.Lock()
		f.hits[key]++
		body, ok := f.routes[key]
		f.mu.Unlock()

		if !ok {
			http.Error(w, `{"detail":"Not found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(strings.ReplaceAll(body, "{{base}}", f.URL)))
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeUpstream) Hits(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func newTestClient(t *testing.T) *utils.HTTPClient {
	t.Helper()
	return utils.NewHTTPClient(2*time.Second, utils.WithName("test-"+t.Name()))
}
