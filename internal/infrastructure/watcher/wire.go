package watcher

import (
	"github.com/google/wire"

	"github.com/comparo/backend/internal/domain/events"
	"github.com/comparo/backend/internal/infrastructure/config"
)

// ProviderSet 事件总线与收件箱监听器
var ProviderSet = wire.NewSet(
	ProvideEventBus,
	ProvideFileWatcher,
)

// ProvideEventBus 提供事件总线实例
func ProvideEventBus() events.EventBus {
	return NewEventBus()
}

// ProvideFileWatcher 提供收件箱监听器实例
func ProvideFileWatcher(eventBus events.EventBus, cfg *config.KnowledgeConfig) (*FileWatcher, error) {
	wc := DefaultWatchConfig(cfg.InboxDir)
	if cfg.Debounce > 0 {
		wc.DebounceDelay = cfg.Debounce
	}
	return NewFileWatcher(wc, eventBus)
}
