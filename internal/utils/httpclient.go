package utils

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/user/swfilms/internal/logging"
	"github.com/user/swfilms/internal/metrics"
	"golang.org/x/time/rate"
)

// 响应体上限，防止上游返回异常大的页面
const maxBodyBytes = 10 << 20

// ClientError 上游请求失败（网络错误、超时、非 2xx、熔断打开）
type ClientError struct {
	URL        string
	StatusCode int // 0 表示未拿到响应
	Err        error
}

func (e *ClientError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("请求 %s 失败，状态码: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("请求 %s 失败: %v", e.URL, e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// HTTPClient HTTP客户端
type HTTPClient struct {
	name       string
	httpClient *http.Client
	userAgents []string
	breaker    *gobreaker.CircuitBreaker[[]byte]
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
	header     http.Header
}

// ClientOption HTTPClient 可选配置
type ClientOption func(*HTTPClient)

// WithName 设置客户端名称（熔断器名与指标标签）
func WithName(name string) ClientOption {
	return func(c *HTTPClient) { c.name = name }
}

// WithRetries 对网络错误和 5xx 做有限次指数退避重试，默认 0 次
func WithRetries(n int, backoff time.Duration) ClientOption {
	return func(c *HTTPClient) {
		if n > 0 {
			c.maxRetries = n
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// WithRateLimit 出站限速
func WithRateLimit(l *rate.Limiter) ClientOption {
	return func(c *HTTPClient) { c.limiter = l }
}

// WithHeader 为每个请求附加固定请求头
func WithHeader(key, value string) ClientOption {
	return func(c *HTTPClient) { c.header.Set(key, value) }
}

// NewHTTPClient 创建新的HTTP客户端
func NewHTTPClient(timeout time.Duration, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		name: "upstream",
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/121.0",
		},
		backoff: 500 * time.Millisecond,
		header:  http.Header{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = newBreaker(c.name)
	return c
}

func newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		// 至少 10 次请求且失败率 >= 60% 才打开
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		// 4xx 是上游的明确答复，不计入熔断失败
		IsSuccessful: func(err error) bool {
			var ce *ClientError
			if errors.As(err, &ce) && ce.StatusCode >= 400 && ce.StatusCode < 500 {
				return true
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("[HTTPClient] 熔断器状态变化")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

// Fetch 发送GET请求并返回响应体，失败统一返回 *ClientError
func (c *HTTPClient) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	delay := c.backoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, &ClientError{URL: rawURL, Err: ctx.Err()}
			case <-time.After(delay):
			}
			delay *= 2
		}

		body, err := c.breaker.Execute(func() ([]byte, error) {
			return c.fetchOnce(ctx, rawURL)
		})
		if err == nil {
			return body, nil
		}

		var ce *ClientError
		if !errors.As(err, &ce) {
			// 熔断器拒绝
			ce = &ClientError{URL: rawURL, Err: err}
		}
		lastErr = ce
		if !retryable(ce) {
			break
		}
	}

	return nil, lastErr
}

func retryable(e *ClientError) bool {
	if errors.Is(e.Err, gobreaker.ErrOpenState) || errors.Is(e.Err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(e.Err, context.Canceled) {
		return false
	}
	return e.StatusCode == 0 || e.StatusCode >= 500
}

func (c *HTTPClient) fetchOnce(ctx context.Context, rawURL string) ([]byte, error) {
	host := hostOf(rawURL)
	start := time.Now()
	outcome := "error"
	defer func() {
		metrics.UpstreamRequestsTotal.WithLabelValues(host, outcome).Inc()
		metrics.UpstreamRequestDuration.WithLabelValues(host).Observe(time.Since(start).Seconds())
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &ClientError{URL: rawURL, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &ClientError{URL: rawURL, Err: fmt.Errorf("创建请求失败: %w", err)}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ClientError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "status_" + strconv.Itoa(resp.StatusCode)
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &ClientError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	var reader io.Reader
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, &ClientError{URL: rawURL, Err: fmt.Errorf("创建gzip读取器失败: %w", err)}
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	default:
		reader = resp.Body
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxBodyBytes))
	if err != nil {
		return nil, &ClientError{URL: rawURL, Err: fmt.Errorf("读取响应失败: %w", err)}
	}
	outcome = "ok"
	return body, nil
}

// GetJSON 发送GET请求并解析JSON响应
func (c *HTTPClient) GetJSON(ctx context.Context, rawURL string, target interface{}) error {
	body, err := c.Fetch(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		logging.Debug().Err(err).Str("url", rawURL).Msg("[HTTPClient] 解析JSON失败")
		return fmt.Errorf("解析JSON失败: %w", err)
	}
	return nil
}

// setHeaders 设置浏览器风格请求头（YouTube 结果页需要）
func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgents[rand.IntN(len(c.userAgents))])
	req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	// 固定请求头覆盖默认值
	for k, vs := range c.header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
