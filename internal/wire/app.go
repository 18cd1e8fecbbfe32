package wire

import (
	"log/slog"

	appChat "github.com/comparo/backend/internal/application/chat"
	appRAG "github.com/comparo/backend/internal/application/rag"
	"github.com/comparo/backend/internal/domain/events"
	"github.com/comparo/backend/internal/infrastructure/config"
	applog "github.com/comparo/backend/internal/infrastructure/log"
	"github.com/comparo/backend/internal/infrastructure/watcher"
	"github.com/comparo/backend/internal/infrastructure/websocket"
	"github.com/comparo/backend/internal/interfaces"
)

// App 应用主结构，组合所有服务
type App struct {
	HTTPServer *interfaces.HTTPServer
	MCPServer  *interfaces.MCPServer
	wsHub      *websocket.Hub
	pusher     *websocket.ChatEventPusher
	sessions   *appChat.SessionManager
	logger     *slog.Logger

	// 收件箱监听相关
	eventBus     events.EventBus
	fileWatcher  *watcher.FileWatcher
	inbox        *appRAG.InboxIngestor
	watchEnabled bool
	watching     bool
}

// NewApp 创建应用实例
func NewApp(
	httpServer *interfaces.HTTPServer,
	mcpServer *interfaces.MCPServer,
	wsHub *websocket.Hub,
	pusher *websocket.ChatEventPusher,
	sessions *appChat.SessionManager,
	eventBus events.EventBus,
	fileWatcher *watcher.FileWatcher,
	inbox *appRAG.InboxIngestor,
	knowledgeCfg *config.KnowledgeConfig,
) *App {
	return &App{
		HTTPServer:   httpServer,
		MCPServer:    mcpServer,
		wsHub:        wsHub,
		pusher:       pusher,
		sessions:     sessions,
		logger:       applog.NewModuleLogger("app", "main"),
		eventBus:     eventBus,
		fileWatcher:  fileWatcher,
		inbox:        inbox,
		watchEnabled: knowledgeCfg != nil && knowledgeCfg.WatchEnabled,
	}
}

// Start 启动所有服务
func (a *App) Start() error {
	a.logger.Info("Starting comparo backend application")

	// 启动 WebSocket Hub，推送器订阅会话事件
	a.wsHub.Start()
	a.pusher.Start()

	// 会话清理
	a.sessions.Start()

	// 收件箱：先订阅再监听，避免漏掉启动扫描产生的事件
	if a.watchEnabled && a.fileWatcher != nil {
		a.inbox.Start()
		if err := a.fileWatcher.Start(); err != nil {
			a.inbox.Stop()
			a.logger.Error("Failed to start inbox watcher",
				"error", err,
			)
		} else {
			a.watching = true
			a.logger.Info("Inbox watcher started successfully")
		}
	}

	if err := a.MCPServer.Start(); err != nil {
		return err
	}

	// 启动 HTTP 服务器（goroutine）
	go func() {
		if err := a.HTTPServer.Start(); err != nil {
			a.logger.Error("HTTP server stopped",
				"error", err,
			)
		}
	}()

	a.logger.Info("Comparo backend application started successfully")
	return nil
}

// Stop 停止所有服务
func (a *App) Stop() error {
	a.logger.Info("Stopping comparo backend application")

	// 先停止接收请求
	if err := a.HTTPServer.Stop(); err != nil {
		a.logger.Error("Failed to stop HTTP server",
			"error", err,
		)
	}

	if a.watching {
		a.fileWatcher.Stop()
		a.inbox.Stop()
	}

	a.sessions.Stop()
	a.pusher.Stop()
	a.eventBus.Close()
	a.wsHub.Stop()

	if err := a.MCPServer.Stop(); err != nil {
		a.logger.Error("Failed to stop MCP server",
			"error", err,
		)
	}

	a.logger.Info("Comparo backend application stopped")
	return nil
}
