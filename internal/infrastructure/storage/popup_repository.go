package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/comparo/backend/internal/domain/popup"
)

// popupRepository 弹窗展示记录 SQLite 实现
type popupRepository struct {
	db *sql.DB
}

// NewPopupRepository 创建弹窗展示记录仓储
func NewPopupRepository(db *sql.DB) popup.Repository {
	return &popupRepository{db: db}
}

// Load 读取展示记录，未出现的种类为 false
func (r *popupRepository) Load(ctx context.Context, visitorID string, scope popup.Scope) (popup.ShownMap, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT kind FROM popup_shown WHERE visitor_id = ? AND scope = ?`,
		visitorID, string(scope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query popup_shown: %w", err)
	}
	defer rows.Close()

	shown := popup.NewShownMap()
	for rows.Next() {
		var kind string
		if err := rows.Scan(&kind); err != nil {
			return nil, fmt.Errorf("failed to scan popup kind: %w", err)
		}
		// 忽略已下线的种类
		if k, err := popup.ParseKind(kind); err == nil {
			shown[k] = true
		}
	}
	return shown, rows.Err()
}

// MarkShown 标记已展示（幂等）
func (r *popupRepository) MarkShown(ctx context.Context, visitorID string, scope popup.Scope, kind popup.Kind) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO popup_shown (visitor_id, scope, kind, shown_at) VALUES (?, ?, ?, ?)`,
		visitorID, string(scope), string(kind), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to mark popup shown: %w", err)
	}
	return nil
}

// ClearScope 清除访客某范围的全部记录
func (r *popupRepository) ClearScope(ctx context.Context, visitorID string, scope popup.Scope) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM popup_shown WHERE visitor_id = ? AND scope = ?`,
		visitorID, string(scope),
	)
	if err != nil {
		return fmt.Errorf("failed to clear popup scope: %w", err)
	}
	return nil
}
