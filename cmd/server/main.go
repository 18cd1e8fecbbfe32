// @title comparo Knowledge API
// @version 1.0
// @description 比价站客服机器人后端：知识库、检索增强对话与系统状态
// @host localhost:19970
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey AdminToken
// @in header
// @name X-Admin-Token
package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/comparo/backend/internal/infrastructure/config"
	applog "github.com/comparo/backend/internal/infrastructure/log"
	"github.com/comparo/backend/internal/infrastructure/singleton"
	"github.com/comparo/backend/internal/wire"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	applog.Init(&cfg.Log)

	// 单例锁检查：同一端口只允许一个实例（共享同一个 SQLite 数据库）
	listener, err := singleton.Acquire(cfg.Server.HTTPPort)
	if errors.Is(err, singleton.ErrAlreadyRunning) {
		log.Println("检测到已有实例在运行，当前进程退出")
		os.Exit(0)
	}
	if err != nil {
		log.Fatalf("单例锁检查失败: %v", err)
	}
	// 关闭临时 listener，实际监听由 HTTP 服务器负责
	_ = listener.Close()

	app, cleanup, err := wire.InitializeAll()
	if err != nil {
		applog.GetLogger().Error("Failed to initialize application",
			"error", err,
		)
		os.Exit(1)
	}
	defer cleanup()

	if err := app.Start(); err != nil {
		applog.GetLogger().Error("Failed to start application",
			"error", err,
		)
		cleanup()
		os.Exit(1)
	}

	// 优雅关闭
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	applog.GetLogger().Info("Shutting down application...")
	if err := app.Stop(); err != nil {
		applog.GetLogger().Error("Error during application shutdown",
			"error", err,
		)
	}
	applog.GetLogger().Info("Application stopped")
}
