//go:build integration
// +build integration

package framework

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// EnvServerBinary 指向已编译的 comparo-server 时跳过编译（CI 复用构建产物）
const EnvServerBinary = "COMPARO_SERVER_BIN"

var (
	// BinaryPath 服务二进制路径
	BinaryPath string
	// builtDir 本次编译产生的临时目录，Cleanup 时删除
	builtDir string
)

// BuildServer 准备 comparo-server 二进制，在 TestMain 中调用一次
func BuildServer() error {
	if prebuilt := os.Getenv(EnvServerBinary); prebuilt != "" {
		if _, err := os.Stat(prebuilt); err != nil {
			return fmt.Errorf("%s points to a missing binary: %w", EnvServerBinary, err)
		}
		BinaryPath = prebuilt
		return nil
	}

	_, currentFile, _, _ := runtime.Caller(0)
	moduleRoot := filepath.Join(filepath.Dir(currentFile), "..", "..", "..")

	dir, err := os.MkdirTemp("", "comparo-test-bin-")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	builtDir = dir

	name := "comparo-server"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	BinaryPath = filepath.Join(dir, name)

	cmd := exec.Command("go", "build", "-trimpath", "-o", BinaryPath, "./cmd/server")
	cmd.Dir = moduleRoot
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to build server binary: %w", err)
	}
	return nil
}

// Cleanup 删除本次编译的产物，外部提供的二进制不动
func Cleanup() {
	if builtDir != "" {
		_ = os.RemoveAll(builtDir)
	}
}

// RequireServerBinary 二进制不可用时终止测试
func RequireServerBinary(t *testing.T) {
	t.Helper()
	if BinaryPath == "" {
		t.Fatal("server binary not prepared, call BuildServer() in TestMain first")
	}
	if _, err := os.Stat(BinaryPath); err != nil {
		t.Fatalf("server binary not found at %s: %v", BinaryPath, err)
	}
}
