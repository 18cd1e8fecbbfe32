package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/comparo/backend/internal/domain/events"
	"github.com/comparo/backend/internal/infrastructure/log"
	"github.com/fsnotify/fsnotify"
)

// SupportedExtensions 收件箱接受的文件扩展名
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
	".pdf":  true,
}

// WatchConfig FileWatcher 配置
type WatchConfig struct {
	// InboxDir 收件箱目录，只监听顶层文件
	InboxDir string
	// DebounceDelay 防抖延迟
	DebounceDelay time.Duration
	// ScanOnStart 启动时为已存在的文件发布事件
	ScanOnStart bool
}

// DefaultWatchConfig 返回默认配置
func DefaultWatchConfig(inboxDir string) WatchConfig {
	return WatchConfig{
		InboxDir:      inboxDir,
		DebounceDelay: 2 * time.Second,
		ScanOnStart:   true,
	}
}

// FileWatcher 知识库收件箱监听器
// 新建或修改的文件在防抖后发布一次 KnowledgeFileEvent
type FileWatcher struct {
	config   WatchConfig
	eventBus events.Publisher
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	// 防抖相关
	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	// 控制
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewFileWatcher 创建文件监听器
func NewFileWatcher(config WatchConfig, eventBus events.EventBus) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &FileWatcher{
		config:         config,
		eventBus:       eventBus,
		watcher:        watcher,
		logger:         log.NewModuleLogger("watcher", "file_watcher"),
		debounceTimers: make(map[string]*time.Timer),
		stopCh:         make(chan struct{}),
	}, nil
}

// Start 启动文件监听
func (fw *FileWatcher) Start() error {
	fw.logger.Info("Starting inbox watcher", "inbox_dir", fw.config.InboxDir)

	if err := os.MkdirAll(fw.config.InboxDir, 0755); err != nil {
		return err
	}
	if err := fw.watcher.Add(fw.config.InboxDir); err != nil {
		return err
	}

	if fw.config.ScanOnStart {
		count := fw.scanInbox()
		fw.logger.Info("Initial inbox scan completed", "files", count)
	}

	fw.wg.Add(1)
	go fw.watchLoop()

	return nil
}

// Stop 停止文件监听
func (fw *FileWatcher) Stop() {
	fw.stopOnce.Do(func() {
		fw.logger.Info("Stopping inbox watcher")

		close(fw.stopCh)
		fw.watcher.Close()
		fw.wg.Wait()

		fw.debounceMu.Lock()
		for path, timer := range fw.debounceTimers {
			timer.Stop()
			delete(fw.debounceTimers, path)
		}
		fw.debounceMu.Unlock()

		fw.logger.Info("Inbox watcher stopped")
	})
}

// scanInbox 为收件箱中已存在的文件发布事件
func (fw *FileWatcher) scanInbox() int {
	entries, err := os.ReadDir(fw.config.InboxDir)
	if err != nil {
		fw.logger.Error("Failed to read inbox directory", "error", err)
		return 0
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(fw.config.InboxDir, entry.Name())
		if !IsInboxFile(path) {
			continue
		}
		if fw.emit(path) {
			count++
		}
	}
	return count
}

// watchLoop 事件监听循环
func (fw *FileWatcher) watchLoop() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.stopCh:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleFsEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error("Watcher error", "error", err)
		}
	}
}

// handleFsEvent 处理文件系统事件（带防抖）
func (fw *FileWatcher) handleFsEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	// 只处理收件箱顶层文件
	if filepath.Dir(event.Name) != filepath.Clean(fw.config.InboxDir) {
		return
	}
	if !IsInboxFile(event.Name) {
		return
	}

	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()

	select {
	case <-fw.stopCh:
		return
	default:
	}

	if timer, exists := fw.debounceTimers[event.Name]; exists {
		timer.Stop()
	}

	path := event.Name
	fw.debounceTimers[path] = time.AfterFunc(fw.config.DebounceDelay, func() {
		fw.debounceMu.Lock()
		delete(fw.debounceTimers, path)
		fw.debounceMu.Unlock()

		fw.emit(path)
	})
}

// emit 发布文件事件，文件已不存在或是目录时跳过
func (fw *FileWatcher) emit(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	fw.eventBus.Publish(&events.KnowledgeFileEvent{
		FilePath:  path,
		FileSize:  info.Size(),
		ModTime:   info.ModTime(),
		EventTime: time.Now(),
	})

	fw.logger.Debug("Inbox file event emitted",
		"path", path,
		"size", info.Size(),
	)
	return true
}

// IsInboxFile 判断路径是否为可入库的收件箱文件（忽略隐藏文件和编辑器临时文件）
func IsInboxFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") {
		return false
	}
	return SupportedExtensions[strings.ToLower(filepath.Ext(name))]
}
