package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	// EnvDataDir 数据目录环境变量名
	EnvDataDir = "COMPARO_DATA_DIR"
	// DefaultDataDirName 默认数据目录名（位于用户主目录下）
	DefaultDataDirName = ".comparo"
)

var (
	dataDirOnce sync.Once
	dataDirPath string
)

// GetDataDir 数据根目录：COMPARO_DATA_DIR，缺省 ~/.comparo，主目录不可用时退回相对路径
// SQLite 文件、收件箱、配置文件和密钥文件都位于其下；首次调用后缓存
func GetDataDir() string {
	dataDirOnce.Do(func() {
		dataDirPath = resolveDataDir()
	})
	return dataDirPath
}

func resolveDataDir() string {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDataDirName
	}
	return filepath.Join(home, DefaultDataDirName)
}

// DataPath 数据目录下的路径
func DataPath(elem ...string) string {
	return filepath.Join(append([]string{GetDataDir()}, elem...)...)
}

// EnsureDataDir 创建数据目录（仅当前用户可读写）
func EnsureDataDir() error {
	if err := os.MkdirAll(GetDataDir(), 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// ResetDataDir 重置缓存（仅用于测试）
func ResetDataDir() {
	dataDirOnce = sync.Once{}
	dataDirPath = ""
}
