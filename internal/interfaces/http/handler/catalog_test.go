package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appCatalog "github.com/comparo/backend/internal/application/catalog"
)

func TestCatalogHandler_Phones(t *testing.T) {
	env := newTestEnv(t, http.StatusOK)
	router := gin.New()
	router.GET("/api/v1/catalog/phones", NewCatalogHandler(env.catalog).Phones)

	w, resp := doJSON(t, router, http.MethodGet, "/api/v1/catalog/phones", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result appCatalog.Result
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	require.Len(t, result.Phones, 1)
	assert.Equal(t, "Fairphone", result.Phones[0].Brand)
	assert.False(t, result.Stale)
}
