// Package catalog 提供手机目录数据源（HTTP 数据源和内置静态数据）
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	domain "github.com/comparo/backend/internal/domain/catalog"
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/infrastructure/log"
)

// HTTPFetcher 从远端 JSON 接口拉取手机目录
// 接受两种响应形状：顶层数组，或 {"data": [...]} / {"phones": [...]}
type HTTPFetcher struct {
	client *resty.Client
	url    string
	logger *slog.Logger
}

var _ domain.Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher 创建 HTTP 数据源
func NewHTTPFetcher(url string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPFetcher{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		url:    url,
		logger: log.NewModuleLogger("catalog", "http_fetcher"),
	}
}

// FetchPhones 拉取目录
func (f *HTTPFetcher) FetchPhones(ctx context.Context) ([]domain.Phone, error) {
	resp, err := f.client.R().SetContext(ctx).Get(f.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("catalog source returned status %d", resp.StatusCode())
	}

	phones, err := decodePhones(resp.Body())
	if err != nil {
		return nil, err
	}

	f.logger.Debug("Catalog fetched", "url", f.url, "count", len(phones))
	return phones, nil
}

func decodePhones(body []byte) ([]domain.Phone, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var phones []domain.Phone
		if err := json.Unmarshal(body, &phones); err != nil {
			return nil, fmt.Errorf("failed to decode catalog: %w", err)
		}
		return phones, nil
	}

	var wrapped struct {
		Data   []domain.Phone `json:"data"`
		Phones []domain.Phone `json:"phones"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if wrapped.Data != nil {
		return wrapped.Data, nil
	}
	return wrapped.Phones, nil
}

// StaticFetcher 内置目录，未配置数据源时使用
type StaticFetcher struct {
	phones []domain.Phone
}

var _ domain.Fetcher = (*StaticFetcher)(nil)

// NewStaticFetcher 创建静态数据源
func NewStaticFetcher(phones []domain.Phone) *StaticFetcher {
	return &StaticFetcher{phones: phones}
}

// FetchPhones 返回内置目录副本
func (f *StaticFetcher) FetchPhones(_ context.Context) ([]domain.Phone, error) {
	return append([]domain.Phone(nil), f.phones...), nil
}

// DefaultPhones 内置示例目录
var DefaultPhones = []domain.Phone{
	{ID: "apple-iphone-15-128", Brand: "Apple", Model: "iPhone 15", PriceCents: 96900, StorageGB: 128, Is5G: true},
	{ID: "samsung-galaxy-s24-128", Brand: "Samsung", Model: "Galaxy S24", PriceCents: 89900, StorageGB: 128, Is5G: true},
	{ID: "google-pixel-8a-128", Brand: "Google", Model: "Pixel 8a", PriceCents: 54900, StorageGB: 128, Is5G: true},
	{ID: "xiaomi-redmi-note-13-128", Brand: "Xiaomi", Model: "Redmi Note 13", PriceCents: 19990, StorageGB: 128, Is5G: false},
}

// ProvideFetcher 根据配置选择数据源
func ProvideFetcher(cfg *config.CatalogConfig) domain.Fetcher {
	if cfg.URL == "" {
		return NewStaticFetcher(DefaultPhones)
	}
	return NewHTTPFetcher(cfg.URL, cfg.Timeout)
}
