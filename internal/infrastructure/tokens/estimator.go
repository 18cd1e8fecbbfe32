// Package tokens 使用 tiktoken 估算对话消息的 token 数
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/comparo/backend/internal/infrastructure/llm"
)

// 在包初始化时设置离线加载器，避免运行时下载编码文件
func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// OpenAI 对话格式的固定开销：每条消息 3 个，回复引导 3 个
const (
	tokensPerMessage = 3
	replyPriming     = 3
)

// Estimator 使用 tiktoken 精确估算 Token 数量
type Estimator struct {
	encoding *tiktoken.Tiktoken
	mu       sync.Mutex
}

var (
	instance *Estimator
	once     sync.Once
	initErr  error
)

// GetEstimator 获取 Estimator 单例（cl100k_base 编码）
func GetEstimator() (*Estimator, error) {
	once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			initErr = err
			return
		}
		instance = &Estimator{encoding: enc}
	})
	if initErr != nil {
		return nil, initErr
	}
	return instance, nil
}

// CountTokens 计算文本的 Token 数量
func (e *Estimator) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.encoding.Encode(text, nil, nil))
}

// CountMessage 单条消息的 token 数（含格式开销）
func (e *Estimator) CountMessage(m llm.Message) int {
	return tokensPerMessage + e.CountTokens(m.Role) + e.CountTokens(m.Content)
}

// CountMessages 整个请求的 prompt token 数
func (e *Estimator) CountMessages(messages []llm.Message) int {
	total := replyPriming
	for _, m := range messages {
		total += e.CountMessage(m)
	}
	return total
}
