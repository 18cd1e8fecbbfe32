// Package knowledge 定义知识库文档实体和存储端口
package knowledge

import (
	"fmt"
	"strconv"
	"time"
)

// 已识别的元数据键
const (
	MetaTitle      = "title"
	MetaSource     = "source"
	MetaCategory   = "category"
	MetaDateAdded  = "date_added"
	MetaChunkIndex = "chunk_index"
	MetaChunkCount = "chunk_count"
)

// Metadata 文档元数据（开放键值对，未识别的键原样透传）
type Metadata map[string]any

// Document 知识库中的一个文档片段
type Document struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Metadata  Metadata  `json:"metadata"`
	Embedding []float32 `json:"embedding,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoredDocument 带相似度的检索结果
type ScoredDocument struct {
	Document
	Similarity float32 `json:"similarity"`
}

// Title 返回标题，缺省为空字符串
func (d *Document) Title() string {
	return d.Metadata.String(MetaTitle)
}

// String 读取字符串类型的元数据
func (m Metadata) String(key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Int 读取整数类型的元数据，兼容 JSON 解码后的 float64 和字符串
func (m Metadata) Int(key string) (int, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case float32:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Clone 浅拷贝元数据
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Source 来源
func (m Metadata) Source() string { return m.String(MetaSource) }

// Category 分类
func (m Metadata) Category() string { return m.String(MetaCategory) }

// ChunkIndex 片段序号
func (m Metadata) ChunkIndex() (int, bool) { return m.Int(MetaChunkIndex) }

// ChunkCount 片段总数
func (m Metadata) ChunkCount() (int, bool) { return m.Int(MetaChunkCount) }
