package events

import "time"

// KnowledgeFileEvent 知识库收件箱文件变更事件
type KnowledgeFileEvent struct {
	// FilePath 文件完整路径
	FilePath string
	// FileSize 文件大小（字节）
	FileSize int64
	// ModTime 文件最后修改时间
	ModTime time.Time
	// EventTime 事件发生时间
	EventTime time.Time
}

// Type 实现 Event 接口
func (e *KnowledgeFileEvent) Type() EventType {
	return KnowledgeFileDetected
}

// Timestamp 实现 Event 接口
func (e *KnowledgeFileEvent) Timestamp() time.Time {
	return e.EventTime
}
