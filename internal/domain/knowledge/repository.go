package knowledge

import "context"

// DocumentStore 向量文档存储端口
// 实现：qdrant、pgvector、chromem 内存存储
type DocumentStore interface {
	// Insert 写入一个新文档，返回存储分配的 ID
	Insert(ctx context.Context, content string, metadata Metadata, embedding []float32) (string, error)

	// List 按 created_at 倒序返回全部文档
	List(ctx context.Context) ([]*Document, error)

	// Delete 按 ID 删除，不存在时返回 ErrDocumentNotFound
	Delete(ctx context.Context, id string) error

	// Search 相似度检索：只返回 >= threshold 的结果，最多 limit 条，按相似度降序
	Search(ctx context.Context, embedding []float32, threshold float32, limit int) ([]*ScoredDocument, error)

	// ProbeTable 结构探测：对文档表做一次 limit 1 读取
	ProbeTable(ctx context.Context) error

	// Backend 返回后端名称
	Backend() string

	// Close 释放资源
	Close() error
}

// Embedder 文本向量化端口，入库和检索必须使用同一个模型
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
