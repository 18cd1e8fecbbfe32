package log

import (
	"os"
	"strconv"
	"strings"
)

// Config 日志配置，可写在配置文件 log 段，环境变量优先
type Config struct {
	// Level debug, info, warn, error
	Level string `json:"level" yaml:"level"`
	// Format console, text, json
	Format string `json:"format" yaml:"format"`
	// Output stdout, stderr, file:/path/to/log
	Output string `json:"output" yaml:"output"`
	// AddSource 附带源文件位置
	AddSource bool `json:"add_source" yaml:"add_source"`
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
		Output: "stdout",
	}
}

// NewConfigFromEnv 默认配置叠加环境变量
func NewConfigFromEnv() *Config {
	cfg := DefaultConfig()
	cfg.ApplyEnv()
	return &cfg
}

// ApplyEnv 用 LOG_* 环境变量覆盖；ENV=development 时强制 debug 控制台输出
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Format = v
	}
	if v := os.Getenv("LOG_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("LOG_ADD_SOURCE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.AddSource = b
		}
	}

	if strings.EqualFold(os.Getenv("ENV"), "development") {
		c.Level = "debug"
		c.Format = "console"
		c.AddSource = true
	}
}
