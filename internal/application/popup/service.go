// Package popup 管理访客的弹窗展示记录
package popup

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	domain "github.com/comparo/backend/internal/domain/popup"
	"github.com/comparo/backend/internal/infrastructure/log"
)

// ErrInvalidVisitor 访客 ID 为空
var ErrInvalidVisitor = errors.New("visitor id is required")

// Service 弹窗展示记录服务
type Service struct {
	repo   domain.Repository
	logger *slog.Logger
}

// NewService 创建弹窗服务
func NewService(repo domain.Repository) *Service {
	return &Service{
		repo:   repo,
		logger: log.NewModuleLogger("popup", "service"),
	}
}

// Shown 返回访客在该范围内每种弹窗是否已展示
func (s *Service) Shown(ctx context.Context, visitorID, scope string) (domain.ShownMap, error) {
	visitorID, sc, err := parseTarget(visitorID, scope)
	if err != nil {
		return nil, err
	}
	return s.repo.Load(ctx, visitorID, sc)
}

// MarkShown 标记弹窗已展示，返回更新后的展示记录
func (s *Service) MarkShown(ctx context.Context, visitorID, scope, kind string) (domain.ShownMap, error) {
	visitorID, sc, err := parseTarget(visitorID, scope)
	if err != nil {
		return nil, err
	}
	k, err := domain.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	if err := s.repo.MarkShown(ctx, visitorID, sc, k); err != nil {
		return nil, err
	}
	s.logger.Debug("Popup marked as shown", "visitor_id", visitorID, "scope", sc, "kind", k)
	return s.repo.Load(ctx, visitorID, sc)
}

// EndSession 访客会话结束，清除会话范围的记录
func (s *Service) EndSession(ctx context.Context, visitorID string) error {
	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" {
		return ErrInvalidVisitor
	}
	return s.repo.ClearScope(ctx, visitorID, domain.ScopeSession)
}

func parseTarget(visitorID, scope string) (string, domain.Scope, error) {
	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" {
		return "", "", ErrInvalidVisitor
	}
	sc, err := domain.ParseScope(scope)
	if err != nil {
		return "", "", err
	}
	return visitorID, sc, nil
}
