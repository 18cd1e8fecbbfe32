// Package throttle 提供布尔指示器的节流（两次变化之间保持最小间隔，期间的变化合并为最后一个值）
package throttle

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Indicator 节流的布尔指示器
type Indicator struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	emit    func(bool)

	current bool
	pending bool
	timer   *time.Timer
	stopped bool
}

// NewIndicator 创建指示器，emit 在持有内部锁时调用，不能阻塞也不能回调 Indicator
func NewIndicator(interval time.Duration, emit func(bool)) *Indicator {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Indicator{
		limiter: rate.NewLimiter(limit, 1),
		emit:    emit,
	}
}

// Set 请求把指示器切换到 v
// 距上次变化不足间隔时延后到下一个允许时刻，期间多次调用只保留最后一个值
func (i *Indicator) Set(v bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.stopped {
		return
	}
	if i.timer != nil {
		i.pending = v
		return
	}
	if v == i.current {
		return
	}
	if i.limiter.Allow() {
		i.current = v
		i.emit(v)
		return
	}

	r := i.limiter.Reserve()
	i.pending = v
	i.timer = time.AfterFunc(r.Delay(), i.flush)
}

func (i *Indicator) flush() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.timer = nil
	if i.stopped || i.pending == i.current {
		return
	}
	i.current = i.pending
	i.emit(i.current)
}

// Value 当前已生效的值
func (i *Indicator) Value() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.current
}

// Stop 取消尚未生效的变化
func (i *Indicator) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.stopped = true
	if i.timer != nil {
		i.timer.Stop()
		i.timer = nil
	}
}
