// Package status 检查知识库基础设施是否就绪
package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/comparo/backend/internal/application/chat"
	"github.com/comparo/backend/internal/domain/knowledge"
	domainStatus "github.com/comparo/backend/internal/domain/status"
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/infrastructure/log"
)

// DefaultCheckTimeout 整体检查超时
const DefaultCheckTimeout = 10 * time.Second

// ErrCheckTimeout 整体检查超时，与单项探测失败区分
var ErrCheckTimeout = errors.New("la vérification a pris trop de temps, veuillez réessayer")

// Authenticator 检查前置条件：当前调用方是否为已认证的管理员
type Authenticator interface {
	Authenticated(ctx context.Context) bool
}

type adminKey struct{}

// WithAdmin 标记上下文为已认证管理员
func WithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminKey{}, true)
}

// ContextAuthenticator 从上下文读取管理员标记（由鉴权中间件写入）
type ContextAuthenticator struct{}

// NewContextAuthenticator 创建上下文鉴权器
func NewContextAuthenticator() *ContextAuthenticator {
	return &ContextAuthenticator{}
}

// Authenticated 实现 Authenticator
func (ContextAuthenticator) Authenticated(ctx context.Context) bool {
	v, _ := ctx.Value(adminKey{}).(bool)
	return v
}

// Report 一次检查的结果
type Report struct {
	Status    domainStatus.SystemStatus `json:"status"`
	Readiness domainStatus.Readiness    `json:"readiness"`
	Guidance  string                    `json:"guidance"`
}

// Checker 按顺序探测文档表、检索函数和补全网关
type Checker struct {
	store     knowledge.DocumentStore
	prober    chat.HealthProber
	auth      Authenticator
	dimension int
	timeout   time.Duration
	logger    *slog.Logger
}

// NewChecker 创建检查器
func NewChecker(store knowledge.DocumentStore, prober chat.HealthProber, auth Authenticator, vectorCfg *config.VectorConfig, chatCfg *config.ChatConfig) *Checker {
	c := &Checker{
		store:     store,
		prober:    prober,
		auth:      auth,
		dimension: 1536,
		timeout:   DefaultCheckTimeout,
		logger:    log.NewModuleLogger("status", "checker"),
	}
	if vectorCfg != nil && vectorCfg.Dimension > 0 {
		c.dimension = vectorCfg.Dimension
	}
	if chatCfg != nil && chatCfg.StatusTimeout > 0 {
		c.timeout = chatCfg.StatusTimeout
	}
	return c
}

// Check 执行检查；未认证时直接返回全 false，不做任何探测
func (c *Checker) Check(ctx context.Context) domainStatus.SystemStatus {
	s, _ := c.check(ctx)
	return s
}

// CheckDefault 使用配置的超时检查
func (c *Checker) CheckDefault(ctx context.Context) (*Report, error) {
	return c.CheckWithTimeout(ctx, c.timeout)
}

// CheckWithTimeout 带整体超时的检查，超时返回全 false 的状态和 ErrCheckTimeout
func (c *Checker) CheckWithTimeout(parent context.Context, timeout time.Duration) (*Report, error) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	type outcome struct {
		status domainStatus.SystemStatus
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		s, err := c.check(ctx)
		done <- outcome{status: s, err: err}
	}()

	var s domainStatus.SystemStatus
	select {
	case <-ctx.Done():
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.logger.Info("Status check canceled by caller")
			return newReport(domainStatus.SystemStatus{}), ctx.Err()
		}
		c.logger.Warn("Status check timed out", "timeout", timeout)
		return newReport(domainStatus.SystemStatus{}), ErrCheckTimeout
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) {
				return newReport(domainStatus.SystemStatus{}), ErrCheckTimeout
			}
			return newReport(domainStatus.SystemStatus{}), out.err
		}
		s = out.status
	}
	return newReport(s), nil
}

func newReport(s domainStatus.SystemStatus) *Report {
	r := domainStatus.Classify(s)
	return &Report{Status: s, Readiness: r, Guidance: r.Guidance()}
}

// check 顺序探测，每一项前后检查 ctx；返回 ctx 错误时状态不可信
func (c *Checker) check(ctx context.Context) (domainStatus.SystemStatus, error) {
	var s domainStatus.SystemStatus
	if c.auth == nil || !c.auth.Authenticated(ctx) {
		c.logger.Debug("Status check skipped, caller not authenticated")
		return s, nil
	}

	probes := []struct {
		name string
		run  func(context.Context) error
	}{
		{"table", func(ctx context.Context) error {
			if err := c.store.ProbeTable(ctx); err != nil {
				return err
			}
			s.TableExists = true
			return nil
		}},
		{"function", func(ctx context.Context) error {
			if _, err := c.store.Search(ctx, make([]float32, c.dimension), 0, 1); err != nil {
				return err
			}
			s.FunctionExists = true
			return nil
		}},
		{"gateway", func(ctx context.Context) error {
			h := c.prober.HealthCheck(ctx)
			s.EdgeFunctionsReady = h.Status == chat.HealthOK
			s.APIKeyConfigured = h.OpenAIKeyConfigured
			if h.Error != "" {
				return errors.New(h.Error)
			}
			return nil
		}},
	}

	for _, p := range probes {
		if err := ctx.Err(); err != nil {
			return domainStatus.SystemStatus{}, err
		}
		if err := runProbe(ctx, p.run); err != nil {
			c.logger.Info("Status probe failed", "probe", p.name, "error", err)
		}
		if err := ctx.Err(); err != nil {
			return domainStatus.SystemStatus{}, err
		}
	}
	return s, nil
}

// runProbe 单项探测，panic 视为失败
func runProbe(ctx context.Context, probe func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("probe panicked: %v", r)
		}
	}()
	return probe(ctx)
}
