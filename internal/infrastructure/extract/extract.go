// Package extract 从上传文件中提取纯文本（PDF、HTML、Markdown、纯文本）
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"

	"github.com/comparo/backend/internal/infrastructure/log"
)

var (
	// ErrUnsupportedFormat 不支持的文件类型
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNoText 文件中没有可提取的文本
	ErrNoText = errors.New("no text content extracted")
	// ErrInvalidEncoding 文本不是合法的 UTF-8
	ErrInvalidEncoding = errors.New("text is not valid UTF-8")
)

// Result 提取结果
type Result struct {
	// Title 文档标题，取不到时为去掉扩展名的文件名
	Title string
	// Text 纯文本
	Text string
	// Format 识别出的格式：pdf | html | markdown | text
	Format string
}

// Extractor 文本提取器
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor 创建提取器
func NewExtractor() *Extractor {
	return &Extractor{
		logger: log.NewModuleLogger("extract", "extractor"),
	}
}

// Extract 按文件扩展名选择提取方式
func (e *Extractor) Extract(filename string, data []byte) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	fallbackTitle := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	var (
		res *Result
		err error
	)
	switch ext {
	case ".pdf":
		res, err = e.fromPDF(data)
	case ".html", ".htm":
		res, err = e.fromHTML(data)
	case ".md", ".markdown":
		res, err = e.fromMarkdown(data)
	case ".txt", "":
		res, err = e.fromText(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	res.Text = normalizeWhitespace(res.Text)
	if res.Text == "" {
		return nil, ErrNoText
	}
	if res.Title == "" {
		res.Title = fallbackTitle
	}

	e.logger.Debug("Text extracted",
		"file", filename,
		"format", res.Format,
		"text_length", len(res.Text),
	)
	return res, nil
}

// fromPDF 逐页提取 PDF 文本
func (e *Extractor) fromPDF(data []byte) (*Result, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var sb strings.Builder
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			e.logger.Warn("Null page encountered", "page_number", pageIndex)
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", pageIndex, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return &Result{Text: sb.String(), Format: "pdf"}, nil
}

// fromHTML 提取正文区域文本，找不到时退回 body
func (e *Extractor) fromHTML(data []byte) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, nav, footer, header").Remove()

	var parts []string
	doc.Find("article, main, #content, .content").Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, blockText(s))
	})
	text := strings.Join(parts, "\n\n")
	if strings.TrimSpace(text) == "" {
		text = blockText(doc.Find("body"))
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	return &Result{Title: title, Text: text, Format: "html"}, nil
}

// blockText 块级元素之间保留段落分隔，便于后续按段落切分
func blockText(sel *goquery.Selection) string {
	var paras []string
	sel.Find("h1, h2, h3, h4, p, li, td, pre, blockquote").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			paras = append(paras, t)
		}
	})
	if len(paras) == 0 {
		return sel.Text()
	}
	return strings.Join(paras, "\n\n")
}

func (e *Extractor) fromMarkdown(data []byte) (*Result, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}
	text := string(data)
	title := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			title = strings.TrimSpace(strings.TrimPrefix(line, "# "))
			break
		}
	}
	return &Result{Title: title, Text: text, Format: "markdown"}, nil
}

func (e *Extractor) fromText(data []byte) (*Result, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}
	return &Result{Text: string(data), Format: "text"}, nil
}

var (
	spaceRun     = regexp.MustCompile(`[ \t\f\v\r]+`)
	blankLineRun = regexp.MustCompile(`\n[ ]*\n(?:[ ]*\n)+`)
)

// normalizeWhitespace 合并空白并把多个空行压成一个段落分隔
func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = spaceRun.ReplaceAllString(s, " ")
	s = blankLineRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
