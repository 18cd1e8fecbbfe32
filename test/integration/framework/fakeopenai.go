//go:build integration
// +build integration

// FakeOpenAI 进程内的 OpenAI 兼容网关，供服务进程调用
package framework

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
)

// FakeDimension 假网关返回的向量维度
const FakeDimension = 8

// fakeKeywords 每个关键词占一个维度，最后一维兜底
var fakeKeywords = []string{"forfait", "box", "fibre", "mobile", "iphone", "samsung", "fairphone"}

// FakeOpenAI OpenAI 兼容假网关
type FakeOpenAI struct {
	server  *httptest.Server
	failing atomic.Bool
	chats   atomic.Int64
}

// NewFakeOpenAI 启动假网关
func NewFakeOpenAI() *FakeOpenAI {
	f := &FakeOpenAI{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/embeddings", f.handleEmbeddings)
	mux.HandleFunc("/v1/chat/completions", f.handleChat)
	mux.HandleFunc("/v1/models", f.handleModels)
	f.server = httptest.NewServer(mux)
	return f
}

// BaseURL 返回带 /v1 的基础地址
func (f *FakeOpenAI) BaseURL() string {
	return f.server.URL + "/v1"
}

// SetFailing 切换补全接口是否返回 500
func (f *FakeOpenAI) SetFailing(failing bool) {
	f.failing.Store(failing)
}

// ChatCalls 返回补全接口被调用次数
func (f *FakeOpenAI) ChatCalls() int64 {
	return f.chats.Load()
}

// Close 关闭假网关
func (f *FakeOpenAI) Close() {
	f.server.Close()
}

// KeywordVector 按关键词出现次数生成归一化向量
func KeywordVector(text string) []float32 {
	lower := strings.ToLower(text)
	vec := make([]float32, FakeDimension)
	var norm float64
	for i, kw := range fakeKeywords {
		n := strings.Count(lower, kw)
		vec[i] = float32(n)
		norm += float64(n * n)
	}
	if norm == 0 {
		vec[FakeDimension-1] = 1
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

func (f *FakeOpenAI) handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model string   `json:"model"`
		Input []string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	type item struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	}
	data := make([]item, 0, len(req.Input))
	for i, text := range req.Input {
		data = append(data, item{Embedding: KeywordVector(text), Index: i})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  data,
		"model": req.Model,
		"usage": map[string]int{"prompt_tokens": len(req.Input), "total_tokens": len(req.Input)},
	})
}

func (f *FakeOpenAI) handleChat(w http.ResponseWriter, r *http.Request) {
	f.chats.Add(1)
	if f.failing.Load() {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": map[string]string{"message": "upstream unavailable", "type": "server_error"},
		})
		return
	}

	var req struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reply := "Je vous conseille de comparer les offres."
	for _, m := range req.Messages {
		if m.Role == "system" && strings.Contains(m.Content, "Document:") {
			reply = "La box fibre est la plus rapide."
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":      "chatcmpl-fake",
		"object":  "chat.completion",
		"model":   "fake",
		"choices": []map[string]any{{"index": 0, "message": map[string]string{"role": "assistant", "content": reply}, "finish_reason": "stop"}},
		"usage":   map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
}

func (f *FakeOpenAI) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") == "" || r.Header.Get("Authorization") == "Bearer " {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]string{"message": "missing key"}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"object": "list", "data": []map[string]string{{"id": "fake"}}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
