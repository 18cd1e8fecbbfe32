package chat

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	domainChat "github.com/comparo/backend/internal/domain/chat"
	"github.com/comparo/backend/internal/domain/knowledge"
)

// MockCompleter 模拟 Completer
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CompletionResult), args.Error(1)
}

// MockRetriever 模拟 ContextRetriever
type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) RetrieveDefault(ctx context.Context, query string) []*knowledge.ScoredDocument {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*knowledge.ScoredDocument)
}

// memoryMessageLog 内存会话日志
type memoryMessageLog struct {
	mu       sync.Mutex
	sessions []*domainChat.SessionRecord
	messages []*domainChat.MessageRecord
	err      error
}

func (l *memoryMessageLog) CreateSession(_ context.Context, record *domainChat.SessionRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.sessions = append(l.sessions, record)
	return nil
}

func (l *memoryMessageLog) AppendMessage(_ context.Context, record *domainChat.MessageRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.messages = append(l.messages, record)
	return nil
}

func (l *memoryMessageLog) CountMessages(_ context.Context, sessionID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, m := range l.messages {
		if m.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

func (l *memoryMessageLog) snapshot() ([]*domainChat.SessionRecord, []*domainChat.MessageRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*domainChat.SessionRecord(nil), l.sessions...), append([]*domainChat.MessageRecord(nil), l.messages...)
}

var _ domainChat.MessageLog = (*memoryMessageLog)(nil)

func scoredDoc(id, title, content string, sim float32) *knowledge.ScoredDocument {
	return &knowledge.ScoredDocument{
		Document: knowledge.Document{
			ID:       id,
			Content:  content,
			Metadata: knowledge.Metadata{knowledge.MetaTitle: title},
		},
		Similarity: sim,
	}
}
