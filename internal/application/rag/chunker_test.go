package rag

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frenchText(paragraphs int) string {
	para := "Le comparateur vous aide à choisir un forfait mobile adapté à vos besoins. " +
		"Comparez les offres 4G et 5G, les box fibre et ADSL, ainsi que les téléphones. " +
		"Les prix évoluent régulièrement, pensez à vérifier les conditions d'engagement."
	parts := make([]string, paragraphs)
	for i := range parts {
		parts[i] = para
	}
	return strings.Join(parts, "\n\n")
}

func TestChunk_ShortInputIsUnchanged(t *testing.T) {
	for _, text := range []string{"", "Bonjour", strings.Repeat("é", 1500)} {
		assert.Equal(t, []string{text}, ChunkDefault(text))
	}
}

func TestChunk_Reconstruction(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		max     int
		overlap int
	}{
		{"paragraphs default", frenchText(20), 1500, 200},
		{"paragraphs small window", frenchText(6), 120, 30},
		{"no separators", strings.Repeat("abcdefghij", 50), 64, 16},
		{"accents only", strings.Repeat("éàçù", 100), 50, 10},
		{"single spaces", strings.Repeat("mot ", 300), 100, 25},
		{"zero overlap", frenchText(5), 100, 0},
		{"invalid params", frenchText(10), 0, -1},
		{"overlap too large", frenchText(4), 80, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := ChunkSpans(tt.text, tt.max, tt.overlap)
			chunks := Chunk(tt.text, tt.max, tt.overlap)
			require.Len(t, chunks, len(spans))
			assert.Equal(t, tt.text, Reconstruct(chunks, Overlaps(spans)))

			maxLen, _ := normalizeChunkParams(tt.max, tt.overlap)
			for i, c := range chunks {
				assert.True(t, utf8.ValidString(c), "chunk %d is not valid UTF-8", i)
				assert.LessOrEqual(t, utf8.RuneCountInString(c), maxLen, "chunk %d too long", i)
			}
			for i := 1; i < len(spans); i++ {
				assert.Greater(t, spans[i].Start, spans[i-1].Start, "start must advance")
			}
		})
	}
}

func TestChunk_PrefersParagraphBreak(t *testing.T) {
	first := strings.Repeat("a", 70)
	second := strings.Repeat("b", 70)
	text := first + "\n\n" + second + " " + strings.Repeat("c", 50)

	chunks := Chunk(text, 100, 10)
	require.GreaterOrEqual(t, len(chunks), 2)
	// 断点字符保留在前一个片段末尾
	assert.Equal(t, first+"\n\n", chunks[0])
}

func TestChunk_IgnoresEarlyBreak(t *testing.T) {
	// 唯一的空格在窗口前半部分，不被接受，直接按最大长度切
	text := "ab " + strings.Repeat("x", 200)
	chunks := Chunk(text, 100, 10)
	assert.Equal(t, 100, utf8.RuneCountInString(chunks[0]))
}

func TestChunk_SentenceBreakBeforeSpace(t *testing.T) {
	text := strings.Repeat("m", 60) + ". " + strings.Repeat("n", 20) + " " + strings.Repeat("o", 100)
	chunks := Chunk(text, 100, 0)
	assert.Equal(t, strings.Repeat("m", 60)+". ", chunks[0])
}

func TestChunk_ShortRemainderIsEmittedWhole(t *testing.T) {
	// 第二个窗口起点之后只剩不足半个窗口
	text := strings.Repeat("a", 100) + strings.Repeat("b", 30)
	spans := ChunkSpans(text, 100, 10)
	require.Len(t, spans, 2)
	assert.Equal(t, Span{Start: 90, End: 130}, spans[1])
}

func TestNormalizeChunkParams(t *testing.T) {
	tests := []struct {
		max, overlap         int
		wantMax, wantOverlap int
	}{
		{1500, 200, 1500, 200},
		{0, 200, 1500, 200},
		{-5, -1, 1500, 375},
		{100, 100, 100, 25},
		{100, 0, 100, 0},
	}
	for _, tt := range tests {
		m, o := normalizeChunkParams(tt.max, tt.overlap)
		assert.Equal(t, tt.wantMax, m)
		assert.Equal(t, tt.wantOverlap, o)
	}
}
