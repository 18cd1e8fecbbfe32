package rag

// 默认切分参数
const (
	DefaultMaxChunkLength = 1500
	DefaultChunkOverlap   = 200
)

// 自然断点，按优先级排列：段落、句子、空格
var breakSeparators = [][]rune{
	[]rune("\n\n"),
	[]rune(". "),
	[]rune(" "),
}

// Span 片段在原文中的 rune 区间 [Start, End)
type Span struct {
	Start int
	End   int
}

// ChunkDefault 使用默认参数切分
func ChunkDefault(text string) []string {
	return Chunk(text, DefaultMaxChunkLength, DefaultChunkOverlap)
}

// Chunk 把文本切分为带重叠的片段
// 长度按 rune 计算，不会切断多字节字符
func Chunk(text string, maxChunkLength, overlap int) []string {
	runes := []rune(text)
	spans := ChunkSpans(text, maxChunkLength, overlap)
	chunks := make([]string, len(spans))
	for i, sp := range spans {
		chunks[i] = string(runes[sp.Start:sp.End])
	}
	return chunks
}

// ChunkSpans 返回每个片段的区间
func ChunkSpans(text string, maxChunkLength, overlap int) []Span {
	maxChunkLength, overlap = normalizeChunkParams(maxChunkLength, overlap)

	runes := []rune(text)
	n := len(runes)
	if n <= maxChunkLength {
		return []Span{{Start: 0, End: n}}
	}

	half := maxChunkLength / 2
	var spans []Span
	start := 0
	for start < n {
		// 剩余部分不足半个窗口，或窗口已到文本末尾：整体输出
		if n-start < half || start+maxChunkLength >= n {
			spans = append(spans, Span{Start: start, End: n})
			break
		}

		end := start + maxChunkLength
		if brk := findBreak(runes, start, end, start+half); brk > 0 {
			end = brk
		}
		spans = append(spans, Span{Start: start, End: end})

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return spans
}

// findBreak 在 [start, end) 内从后向前查找断点，返回断点之后的位置
// 断点结束位置必须 >= minEnd，否则尝试下一级分隔符；都找不到返回 -1
func findBreak(runes []rune, start, end, minEnd int) int {
	for _, sep := range breakSeparators {
		for i := end - len(sep); i >= start; i-- {
			if !hasPrefixAt(runes, i, sep) {
				continue
			}
			if i+len(sep) >= minEnd {
				return i + len(sep)
			}
			break
		}
	}
	return -1
}

func hasPrefixAt(runes []rune, i int, sep []rune) bool {
	for j, r := range sep {
		if runes[i+j] != r {
			return false
		}
	}
	return true
}

// normalizeChunkParams 非法参数回退：长度取默认值，重叠取长度的四分之一
func normalizeChunkParams(maxChunkLength, overlap int) (int, int) {
	if maxChunkLength <= 0 {
		maxChunkLength = DefaultMaxChunkLength
	}
	if overlap < 0 || overlap >= maxChunkLength {
		overlap = maxChunkLength / 4
	}
	return maxChunkLength, overlap
}

// Overlaps 由区间计算相邻片段的重叠长度，首项为 0
func Overlaps(spans []Span) []int {
	out := make([]int, len(spans))
	for i := 1; i < len(spans); i++ {
		if d := spans[i-1].End - spans[i].Start; d > 0 {
			out[i] = d
		}
	}
	return out
}

// Reconstruct 去掉每个片段开头的重叠部分后依次拼接
func Reconstruct(chunks []string, overlaps []int) string {
	var out []rune
	for i, c := range chunks {
		r := []rune(c)
		skip := 0
		if i < len(overlaps) {
			skip = overlaps[i]
		}
		if skip > len(r) {
			skip = len(r)
		}
		out = append(out, r[skip:]...)
	}
	return string(out)
}
