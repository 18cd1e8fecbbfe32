// Package popup 定义营销弹窗的种类与展示记录
package popup

import (
	"context"
	"errors"
	"fmt"
)

// Kind 弹窗种类
type Kind string

const (
	KindNewsletter   Kind = "newsletter"
	KindExitIntent   Kind = "exit_intent"
	KindPromoFiber   Kind = "promo_fiber"
	KindCookieNotice Kind = "cookie_notice"
)

// AllKinds 全部弹窗种类
var AllKinds = []Kind{KindNewsletter, KindExitIntent, KindPromoFiber, KindCookieNotice}

// Scope 展示记录的保存范围
type Scope string

const (
	// ScopeSession 仅当前浏览会话
	ScopeSession Scope = "session"
	// ScopePersistent 长期保存
	ScopePersistent Scope = "persistent"
)

var (
	ErrUnknownKind  = errors.New("unknown popup kind")
	ErrUnknownScope = errors.New("unknown popup scope")
)

// ParseKind 解析弹窗种类
func ParseKind(s string) (Kind, error) {
	for _, k := range AllKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// ParseScope 解析保存范围
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeSession, ScopePersistent:
		return Scope(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScope, s)
}

// ShownMap 某访客在某范围内每种弹窗是否已展示
type ShownMap map[Kind]bool

// NewShownMap 创建所有种类均为 false 的展示记录
func NewShownMap() ShownMap {
	m := make(ShownMap, len(AllKinds))
	for _, k := range AllKinds {
		m[k] = false
	}
	return m
}

// Repository 展示记录存储
type Repository interface {
	// Load 读取访客在该范围内已展示的种类
	Load(ctx context.Context, visitorID string, scope Scope) (ShownMap, error)
	// MarkShown 标记已展示
	MarkShown(ctx context.Context, visitorID string, scope Scope, kind Kind) error
	// ClearScope 清除某范围的全部记录（会话范围在访客会话结束时清除）
	ClearScope(ctx context.Context, visitorID string, scope Scope) error
}
