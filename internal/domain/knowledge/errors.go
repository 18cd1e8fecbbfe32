package knowledge

import "errors"

var (
	// ErrDocumentNotFound 文档不存在
	ErrDocumentNotFound = errors.New("document not found")

	// ErrEmptyContent 文档内容为空
	ErrEmptyContent = errors.New("document content is empty")

	// ErrDimensionMismatch 向量维度与存储不一致
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
