// Package singleton 保证同一端口（同一数据目录）只运行一个服务实例
package singleton

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
)

// HealthCheckTimeout 探测已有实例的超时时间
const HealthCheckTimeout = 2 * time.Second

var (
	// ErrAlreadyRunning 已有健康实例在运行，调用方应直接退出
	ErrAlreadyRunning = errors.New("another instance is already running")
	// ErrPortBusy 端口被占用但占用方不是健康实例
	ErrPortBusy = errors.New("port is in use by an unhealthy process")
)

// Acquire 尝试占用端口
// 端口空闲时返回 listener；已有健康实例时返回 ErrAlreadyRunning
func Acquire(addr string) (net.Listener, error) {
	listener, err := net.Listen("tcp", addr)
	if err == nil {
		return listener, nil
	}
	if !isAddrInUse(err) {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if isInstanceRunning(addr) {
		return nil, ErrAlreadyRunning
	}
	return nil, fmt.Errorf("%w: %s", ErrPortBusy, addr)
}

// isAddrInUse 端口已被占用
func isAddrInUse(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.EADDRINUSE) {
		return true
	}
	// Windows: WSAEADDRINUSE
	var errno syscall.Errno
	if errors.As(err, &errno) && errno == 10048 {
		return true
	}
	return strings.Contains(err.Error(), "address already in use")
}

// isInstanceRunning 已有实例的 /health 返回 {"status":"ok"}
func isInstanceRunning(addr string) bool {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}

	var body struct {
		Status string `json:"status"`
	}
	resp, err := resty.New().
		SetTimeout(HealthCheckTimeout).
		R().
		SetResult(&body).
		Get(fmt.Sprintf("http://%s/health", net.JoinHostPort(host, port)))
	if err != nil {
		return false
	}
	return resp.IsSuccess() && body.Status == "ok"
}
