package vector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/comparo/backend/internal/domain/knowledge"
	"github.com/comparo/backend/internal/infrastructure/log"
)

// PgvectorStore 基于 PostgreSQL + pgvector 的文档存储
// 表 documents 与函数 match_documents 与托管后端的布局一致
type PgvectorStore struct {
	pool      *pgxpool.Pool
	dimension int
	logger    *slog.Logger
}

var _ knowledge.DocumentStore = (*PgvectorStore)(nil)

// NewPgvectorStore 连接数据库并执行迁移
func NewPgvectorStore(ctx context.Context, dsn string, dimension int) (*PgvectorStore, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DATABASE_URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	s := &PgvectorStore{
		pool:      pool,
		dimension: dimension,
		logger:    log.NewModuleLogger("vector", "pgvector"),
	}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// migrate 创建扩展、表和检索函数
func (s *PgvectorStore) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS documents (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			content text NOT NULL,
			metadata jsonb NOT NULL DEFAULT '{}'::jsonb,
			embedding vector(%d) NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, s.dimension),
		`CREATE INDEX IF NOT EXISTS documents_created_at_idx ON documents (created_at DESC)`,
		fmt.Sprintf(`CREATE OR REPLACE FUNCTION match_documents(
			query_embedding vector(%d),
			match_threshold float,
			match_count int
		)
		RETURNS TABLE (id uuid, content text, metadata jsonb, created_at timestamptz, similarity float)
		LANGUAGE sql STABLE
		AS $$
			SELECT d.id, d.content, d.metadata, d.created_at,
			       1 - (d.embedding <=> query_embedding) AS similarity
			FROM documents d
			WHERE 1 - (d.embedding <=> query_embedding) >= match_threshold
			ORDER BY d.embedding <=> query_embedding
			LIMIT match_count
		$$`, s.dimension),
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

// Backend 实现 DocumentStore
func (s *PgvectorStore) Backend() string { return "postgres" }

// Insert 写入文档，ID 和 created_at 由数据库分配
func (s *PgvectorStore) Insert(ctx context.Context, content string, metadata knowledge.Metadata, embedding []float32) (string, error) {
	if len(embedding) != s.dimension {
		return "", fmt.Errorf("%w: got %d, want %d", knowledge.ErrDimensionMismatch, len(embedding), s.dimension)
	}
	if metadata == nil {
		metadata = knowledge.Metadata{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}

	var id string
	err = s.pool.QueryRow(ctx,
		`INSERT INTO documents (content, metadata, embedding) VALUES ($1, $2::jsonb, $3::vector) RETURNING id::text`,
		content, string(metaJSON), pgvector.NewVector(embedding),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}
	return id, nil
}

// List 按 created_at 倒序返回全部文档（不含向量）
func (s *PgvectorStore) List(ctx context.Context) ([]*knowledge.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, content, metadata, created_at FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*knowledge.Document
	for rows.Next() {
		doc, err := scanDocument(rows, false)
		if err != nil {
			return nil, err
		}
		docs = append(docs, &doc.Document)
	}
	return docs, rows.Err()
}

// Delete 删除文档，不存在时返回 ErrDocumentNotFound
func (s *PgvectorStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return knowledge.ErrDocumentNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return knowledge.ErrDocumentNotFound
	}
	return nil
}

// Search 调用 match_documents
func (s *PgvectorStore) Search(ctx context.Context, embedding []float32, threshold float32, limit int) ([]*knowledge.ScoredDocument, error) {
	if len(embedding) != s.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", knowledge.ErrDimensionMismatch, len(embedding), s.dimension)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id::text, content, metadata, created_at, similarity FROM match_documents($1::vector, $2, $3)`,
		pgvector.NewVector(embedding), float64(threshold), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to call match_documents: %w", err)
	}
	defer rows.Close()

	results := make([]*knowledge.ScoredDocument, 0, limit)
	for rows.Next() {
		doc, err := scanDocument(rows, true)
		if err != nil {
			return nil, err
		}
		results = append(results, doc)
	}
	return results, rows.Err()
}

// ProbeTable limit 1 读取
func (s *PgvectorStore) ProbeTable(ctx context.Context) error {
	var id string
	err := s.pool.QueryRow(ctx, `SELECT id::text FROM documents LIMIT 1`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}

// Close 关闭连接池
func (s *PgvectorStore) Close() error {
	s.pool.Close()
	return nil
}

func scanDocument(rows pgx.Rows, withSimilarity bool) (*knowledge.ScoredDocument, error) {
	var (
		doc        knowledge.ScoredDocument
		metaJSON   []byte
		createdAt  time.Time
		similarity float64
	)
	dest := []any{&doc.ID, &doc.Content, &metaJSON, &createdAt}
	if withSimilarity {
		dest = append(dest, &similarity)
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}
	doc.Metadata = knowledge.Metadata{}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}
	}
	doc.CreatedAt = createdAt
	doc.Similarity = float32(similarity)
	return &doc, nil
}
