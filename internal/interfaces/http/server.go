package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/comparo/backend/docs" // Swagger docs
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/infrastructure/log"
	"github.com/comparo/backend/internal/interfaces/http/handler"
	"github.com/comparo/backend/internal/interfaces/http/middleware"
	"github.com/comparo/backend/internal/interfaces/mcp"
)

// DefaultHTTPPort 默认监听地址
const DefaultHTTPPort = ":19970"

// HTTPServer HTTP 服务器
type HTTPServer struct {
	router   *gin.Engine
	httpPort string
	server   *http.Server
	logger   *slog.Logger
}

// NewServer 创建 HTTP 服务器
func NewServer(
	documentHandler *handler.DocumentHandler,
	searchHandler *handler.SearchHandler,
	chatHandler *handler.ChatHandler,
	wsHandler *handler.WebSocketHandler,
	statusHandler *handler.StatusHandler,
	catalogHandler *handler.CatalogHandler,
	popupHandler *handler.PopupHandler,
	mcpServer *mcp.MCPServer,
	serverCfg *config.ServerConfig,
	adminCfg *config.AdminConfig,
) *HTTPServer {
	router := gin.Default()
	router.Use(middleware.RequestID(), middleware.EnsureUTF8Body())

	logger := log.NewModuleLogger("http", "server")

	api := router.Group("/api/v1")
	{
		// 知识库管理（管理员）
		documents := api.Group("/documents", middleware.AdminAuth(adminCfg))
		{
			documents.POST("/ingest", documentHandler.Ingest)
			documents.POST("/upload", documentHandler.Upload)
			documents.GET("", documentHandler.List)
			documents.DELETE("/:id", documentHandler.Delete)
		}

		api.POST("/search", searchHandler.Search)

		// 对话
		chat := api.Group("/chat")
		{
			chat.POST("/completions", chatHandler.Completions)
			chat.POST("/sessions", chatHandler.CreateSession)
			chat.GET("/sessions/:id", chatHandler.GetSession)
			chat.DELETE("/sessions/:id", chatHandler.CloseSession)
			chat.POST("/sessions/:id/messages", chatHandler.SendMessage)
			chat.PUT("/sessions/:id/rag", chatHandler.SetRAG)
			chat.GET("/sessions/:id/ws", wsHandler.Stream)
		}

		// 未鉴权时检查器返回全 false
		api.GET("/status", middleware.OptionalAdmin(adminCfg), statusHandler.Check)

		api.GET("/catalog/phones", catalogHandler.Phones)

		popups := api.Group("/popups/:visitor")
		{
			popups.DELETE("/session", popupHandler.EndSession)
			popups.GET("/:scope", popupHandler.Shown)
			popups.POST("/:scope/:kind", popupHandler.MarkShown)
		}
	}

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// MCP SSE 端点
	if mcpServer != nil {
		router.Any("/mcp/sse", middleware.AdminAuth(adminCfg), gin.WrapH(mcpServer.GetHandler()))
	}

	port := DefaultHTTPPort
	if serverCfg != nil && serverCfg.HTTPPort != "" {
		port = serverCfg.HTTPPort
	}

	return &HTTPServer{
		router:   router,
		httpPort: port,
		logger:   logger,
	}
}

// Handler 返回路由，供测试使用
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Start 启动服务器
func (s *HTTPServer) Start() error {
	s.server = &http.Server{
		Addr:              s.httpPort,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("HTTP server starting",
		"port", s.httpPort,
	)

	return s.server.ListenAndServe()
}

// Shutdown 优雅关闭
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Stop 停止服务器
func (s *HTTPServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}
