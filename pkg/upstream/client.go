package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var (
	ErrUpstreamStatus    = errors.New("upstream returned error status")
	ErrMalformedResponse = errors.New("malformed upstream response")
)

// maxPages 防止上游 totalPages 异常时无限翻页
const maxPages = 10000

// Config 上游连接配置
type Config struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	PageSize int
	Debug    bool
}

// Client 上游目录服务客户端
// 单次请求失败直接返回，不做重试
type Client struct {
	http     *resty.Client
	pageSize int
	log      *zap.Logger
}

// New 创建客户端
func New(cfg Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}

	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetDebug(cfg.Debug)
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	if cfg.APIKey != "" {
		rc.SetHeader("x-api-key", cfg.APIKey)
	}

	return &Client{http: rc, pageSize: cfg.PageSize, log: log.Named("upstream")}
}

// PageSize 每页条数
func (c *Client) PageSize() int {
	return c.pageSize
}

// fetchRaw 请求一页并拆出资源数组
func (c *Client) fetchRaw(ctx context.Context, resource Resource, page int) (json.RawMessage, int, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"page":  strconv.Itoa(page),
			"limit": strconv.Itoa(c.pageSize),
		}).
		Get("/api/" + string(resource))
	if err != nil {
		return nil, 0, fmt.Errorf("请求上游 %s 失败: %w", resource, err)
	}
	if resp.IsError() {
		return nil, 0, fmt.Errorf("%w: %s page=%d status=%d", ErrUpstreamStatus, resource, page, resp.StatusCode())
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	items, ok := body[string(resource)]
	if !ok {
		return nil, 0, fmt.Errorf("%w: missing %q", ErrMalformedResponse, resource)
	}

	var totalPages int
	if raw, ok := body["totalPages"]; ok {
		if err := json.Unmarshal(raw, &totalPages); err != nil {
			return nil, 0, fmt.Errorf("%w: totalPages: %v", ErrMalformedResponse, err)
		}
	}

	c.log.Debug("fetched page",
		zap.String("resource", string(resource)),
		zap.Int("page", page),
		zap.Int("total_pages", totalPages),
	)
	return items, totalPages, nil
}

// FetchPage 拉取单页 (page 从 1 开始)
func FetchPage[T any](ctx context.Context, c *Client, resource Resource, page int) (Page[T], error) {
	raw, totalPages, err := c.fetchRaw(ctx, resource, page)
	if err != nil {
		return Page[T]{}, err
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return Page[T]{}, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, resource, err)
	}
	return Page[T]{Items: items, Page: page, TotalPages: totalPages}, nil
}

// FetchAll 从第一页开始翻到 totalPages
func FetchAll[T any](ctx context.Context, c *Client, resource Resource) ([]T, error) {
	var all []T
	for page := 1; page <= maxPages; page++ {
		p, err := FetchPage[T](ctx, c, resource, page)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Items...)
		if page >= p.TotalPages || len(p.Items) == 0 {
			break
		}
	}
	return all, nil
}
