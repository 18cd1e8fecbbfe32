package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comparo/backend/internal/domain/chat"
	"github.com/comparo/backend/internal/domain/popup"
	"github.com/comparo/backend/internal/infrastructure/config"
)

// setupTestDB 创建临时测试数据库
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, cleanup, err := ProvideDB(&config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return db
}

func TestInitDatabase_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, InitDatabase(db))
}

func TestChatLogRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatLogRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateSession(ctx, &chat.SessionRecord{ID: "s1"}))
	// 重复创建不报错
	require.NoError(t, repo.CreateSession(ctx, &chat.SessionRecord{ID: "s1", Status: "active"}))

	var status string
	require.NoError(t, db.QueryRow(`SELECT status FROM chat_sessions WHERE id = ?`, "s1").Scan(&status))
	assert.Equal(t, "active", status)

	require.NoError(t, repo.AppendMessage(ctx, &chat.MessageRecord{SessionID: "s1", IsBot: false, Message: "Bonjour"}))
	require.NoError(t, repo.AppendMessage(ctx, &chat.MessageRecord{SessionID: "s1", IsBot: true, Message: "Bonjour !"}))

	n, err := repo.CountMessages(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var isBot int
	require.NoError(t, db.QueryRow(`SELECT is_bot FROM chat_messages WHERE message = ?`, "Bonjour !").Scan(&isBot))
	assert.Equal(t, 1, isBot)
}

func TestChatLogRepository_ConcurrentAppend(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatLogRepository(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.AppendMessage(ctx, &chat.MessageRecord{SessionID: "s2", Message: "x"}))
		}()
	}
	wg.Wait()

	n, err := repo.CountMessages(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}

func TestPopupRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPopupRepository(db)
	ctx := context.Background()

	shown, err := repo.Load(ctx, "v1", popup.ScopeSession)
	require.NoError(t, err)
	assert.False(t, shown[popup.KindNewsletter])

	require.NoError(t, repo.MarkShown(ctx, "v1", popup.ScopeSession, popup.KindNewsletter))
	require.NoError(t, repo.MarkShown(ctx, "v1", popup.ScopeSession, popup.KindNewsletter))
	require.NoError(t, repo.MarkShown(ctx, "v1", popup.ScopePersistent, popup.KindCookieNotice))

	shown, err = repo.Load(ctx, "v1", popup.ScopeSession)
	require.NoError(t, err)
	assert.True(t, shown[popup.KindNewsletter])
	assert.False(t, shown[popup.KindCookieNotice], "scopes are independent")

	require.NoError(t, repo.ClearScope(ctx, "v1", popup.ScopeSession))
	shown, err = repo.Load(ctx, "v1", popup.ScopeSession)
	require.NoError(t, err)
	assert.False(t, shown[popup.KindNewsletter])

	shown, err = repo.Load(ctx, "v1", popup.ScopePersistent)
	require.NoError(t, err)
	assert.True(t, shown[popup.KindCookieNotice])
}
