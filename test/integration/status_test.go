//go:build integration
// +build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/comparo/backend/internal/domain/popup"
	domainStatus "github.com/comparo/backend/internal/domain/status"
	"github.com/comparo/backend/test/integration/framework"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStatus_Readiness 管理员看到完整探测结果，匿名请求不做探测
func TestStatus_Readiness(t *testing.T) {
	server, _ := startServer(t, "status")

	tests := []struct {
		name  string
		token string
		want  domainStatus.Readiness
	}{
		{"admin", server.AdminToken, domainStatus.ReadinessReady},
		{"anonymous", "", domainStatus.ReadinessNotReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := framework.NewAPIClient(server.BaseURL(), tt.token)
			report, status, err := client.Status()
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, tt.want, report.Data.Readiness)
			assert.NotEmpty(t, report.Data.Guidance)
		})
	}
}

// TestStatus_MissingKeyIsPartial 未配置 Key 时只达到部分就绪
func TestStatus_MissingKeyIsPartial(t *testing.T) {
	framework.RequireServerBinary(t)
	fake := framework.NewFakeOpenAI()
	t.Cleanup(fake.Close)

	server, err := framework.NewTestServer(framework.BinaryPath, "nokey", framework.WithOpenAI(fake.BaseURL(), ""))
	require.NoError(t, err)
	require.NoError(t, server.Start())
	t.Cleanup(func() { _ = server.Stop() })

	client := framework.NewAPIClient(server.BaseURL(), server.AdminToken)
	report, status, err := client.Status()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, report.Data.Status.TableExists)
	assert.True(t, report.Data.Status.FunctionExists)
	assert.False(t, report.Data.Status.APIKeyConfigured)
	assert.Equal(t, domainStatus.ReadinessPartial, report.Data.Readiness)
}

// TestCatalog_StaticPhones 未配置数据源时返回内置目录
func TestCatalog_StaticPhones(t *testing.T) {
	server, _ := startServer(t, "catalog")
	client := framework.NewAPIClient(server.BaseURL(), "")

	result, status, err := client.Phones()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, result.Data.Phones)
	assert.False(t, result.Data.Stale)
}

// TestPopups_ScopeLifecycle 会话范围记录在访客离开后清除，持久范围保留
func TestPopups_ScopeLifecycle(t *testing.T) {
	server, _ := startServer(t, "popups")
	client := framework.NewAPIClient(server.BaseURL(), "")
	visitor := "visitor-1"

	shown, status, err := client.MarkPopup(visitor, popup.ScopeSession, popup.KindNewsletter)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, shown.Data[popup.KindNewsletter])

	_, status, err = client.MarkPopup(visitor, popup.ScopePersistent, popup.KindCookieNotice)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	_, status, err = client.EndVisit(visitor)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	shown, _, err = client.Popups(visitor, popup.ScopeSession)
	require.NoError(t, err)
	assert.False(t, shown.Data[popup.KindNewsletter])

	shown, _, err = client.Popups(visitor, popup.ScopePersistent)
	require.NoError(t, err)
	assert.True(t, shown.Data[popup.KindCookieNotice])

	_, status, err = client.MarkPopup(visitor, "forever", popup.KindNewsletter)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, status)
}
