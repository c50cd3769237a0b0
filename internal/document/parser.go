package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fyerfyer/lecture-digest/internal/models"
)

// Parser 讲义解析器接口
// 负责将不同格式的讲义文件转换为纯文本，保留换行
type Parser interface {
	// Parse 解析文件，返回文本内容
	Parse(filePath string) (string, error)

	// ParseReader 从Reader解析内容，filename 用于错误信息
	ParseReader(r io.Reader, filename string) (string, error)
}

// ContentType 表示讲义的内容类型
type ContentType string

const (
	// PDF 文档类型
	PDF ContentType = "pdf"
	// Markdown 文档类型
	Markdown ContentType = "markdown"
	// PlainText 纯文本类型
	PlainText ContentType = "plaintext"
	// Unknown 未知类型
	Unknown ContentType = "unknown"
)

// SupportedExtensions 允许上传的扩展名
var SupportedExtensions = []string{".txt", ".md", ".markdown", ".pdf"}

// ParserFactory 根据文件名创建对应的解析器
func ParserFactory(filename string) (Parser, error) {
	switch DetectContentType(filename) {
	case PDF:
		return NewPDFParser(), nil
	case Markdown:
		return NewMarkdownParser(), nil
	case PlainText:
		return NewPlainTextParser(), nil
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedType, filepath.Ext(filename))
	}
}

// DetectContentType 根据文件扩展名检测内容类型
func DetectContentType(filename string) ContentType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return PDF
	case ".md", ".markdown":
		return Markdown
	case ".txt":
		return PlainText
	default:
		return Unknown
	}
}

// IsSupported 文件扩展名是否可以解析
func IsSupported(filename string) bool {
	return DetectContentType(filename) != Unknown
}

// ParseReader 按文件名选择解析器并读取全部文本
func ParseReader(r io.Reader, filename string) (string, error) {
	p, err := ParserFactory(filename)
	if err != nil {
		return "", err
	}
	return p.ParseReader(r, filename)
}

// openAndParse 打开文件后交给 ParseReader
func openAndParse(p Parser, filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer file.Close()
	return p.ParseReader(file, filePath)
}
