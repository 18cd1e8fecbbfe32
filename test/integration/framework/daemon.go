//go:build integration
// +build integration

// TestServer 管理独立 comparo-server 进程的启动与关闭
package framework

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"time"
)

// TestServer 测试服务进程
type TestServer struct {
	Name       string // 场景名称
	HTTPPort   int    // HTTP 端口
	DataDir    string // 数据目录（隔离）
	AdminToken string // 管理令牌

	openAIURL string
	apiKey    string
	extraEnv  []string

	cmd     *exec.Cmd
	baseURL string
}

// ServerOption 服务配置选项
type ServerOption func(*TestServer)

// WithOpenAI 指定 OpenAI 兼容网关地址和 Key
func WithOpenAI(baseURL, apiKey string) ServerOption {
	return func(s *TestServer) {
		s.openAIURL = baseURL
		s.apiKey = apiKey
	}
}

// WithAdminToken 指定管理令牌
func WithAdminToken(token string) ServerOption {
	return func(s *TestServer) {
		s.AdminToken = token
	}
}

// WithEnv 追加环境变量（KEY=VALUE）
func WithEnv(kv ...string) ServerOption {
	return func(s *TestServer) {
		s.extraEnv = append(s.extraEnv, kv...)
	}
}

// NewTestServer 创建测试服务进程
func NewTestServer(binaryPath, name string, opts ...ServerOption) (*TestServer, error) {
	httpPort, err := getFreePort()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate HTTP port: %w", err)
	}

	dataDir, err := os.MkdirTemp("", fmt.Sprintf("comparo-test-%s-", name))
	if err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &TestServer{
		Name:       name,
		HTTPPort:   httpPort,
		DataDir:    dataDir,
		AdminToken: "test-admin-token",
		baseURL:    fmt.Sprintf("http://localhost:%d", httpPort),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.cmd = exec.Command(binaryPath)
	s.cmd.Env = append(os.Environ(),
		fmt.Sprintf("COMPARO_DATA_DIR=%s", dataDir),
		fmt.Sprintf("COMPARO_HTTP_PORT=:%d", httpPort),
		fmt.Sprintf("ADMIN_TOKEN=%s", s.AdminToken),
		fmt.Sprintf("OPENAI_BASE_URL=%s", s.openAIURL),
		fmt.Sprintf("OPENAI_API_KEY=%s", s.apiKey),
		fmt.Sprintf("VECTOR_DIMENSION=%d", FakeDimension),
		"VECTOR_BACKEND=memory",
		"CACHE_BACKEND=memory",
		"KNOWLEDGE_WATCH=false",
		"GIN_MODE=test",
	)
	s.cmd.Env = append(s.cmd.Env, s.extraEnv...)
	s.cmd.Stdout = os.Stdout
	s.cmd.Stderr = os.Stderr

	return s, nil
}

// Start 启动服务并等待就绪
func (s *TestServer) Start() error {
	if err := s.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start server %s: %w", s.Name, err)
	}
	return s.waitForReady(30 * time.Second)
}

// Stop 停止服务并清理数据目录
func (s *TestServer) Stop() error {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Signal(os.Interrupt)

		done := make(chan error, 1)
		go func() {
			done <- s.cmd.Wait()
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			_ = s.cmd.Process.Kill()
			<-done
		}
	}
	return os.RemoveAll(s.DataDir)
}

// BaseURL 返回 HTTP 基础 URL
func (s *TestServer) BaseURL() string {
	return s.baseURL
}

// waitForReady 等待 health 端点就绪
func (s *TestServer) waitForReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 2 * time.Second}

	for time.Now().Before(deadline) {
		resp, err := client.Get(s.baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(200 * time.Millisecond)
	}

	return fmt.Errorf("server %s failed to become ready within %v", s.Name, timeout)
}

// getFreePort 获取一个空闲的 TCP 端口
func getFreePort() (int, error) {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, err
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port, nil
}
