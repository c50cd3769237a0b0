package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFParser PDF讲义解析器
// pdfcpu 导出每页的内容流，再从文本操作符中取出字符串
type PDFParser struct{}

// NewPDFParser 创建PDF解析器
func NewPDFParser() Parser {
	return &PDFParser{}
}

// Parse 解析PDF文件
func (p *PDFParser) Parse(filePath string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "lecture_pdf_")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(filePath, tmpDir, nil, conf); err != nil {
		return "", fmt.Errorf("failed to extract content from PDF: %w", err)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return "", fmt.Errorf("failed to read extracted content dir: %w", err)
	}
	// 文件名带页码，排序后即页面顺序
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var pages []string
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(tmpDir, e.Name()))
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(contentStreamText(data)); text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return "", fmt.Errorf("no text content found in PDF")
	}
	return strings.Join(pages, "\n"), nil
}

// ParseReader 把内容写入临时文件后解析
func (p *PDFParser) ParseReader(r io.Reader, filename string) (string, error) {
	tmp, err := os.CreateTemp("", "lecture_upload_*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to buffer PDF %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	return p.Parse(tmp.Name())
}

// contentStreamText 从页面内容流中取出字面量字符串
// 换行操作符 (Td TD T* ET ') 映射为换行
func contentStreamText(stream []byte) string {
	var b strings.Builder
	for i := 0; i < len(stream); i++ {
		c := stream[i]
		switch {
		case c == '(':
			s, next := readLiteral(stream, i+1)
			b.WriteString(s)
			i = next
		case c == '\'':
			b.WriteByte('\n')
		case isOperatorStart(stream, i):
			op := readOperator(stream, i)
			switch op {
			case "Td", "TD", "T*", "ET":
				if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
					b.WriteByte('\n')
				}
			}
			i += len(op) - 1
		}
	}
	return b.String()
}

// readLiteral 读取括号内的字符串，处理嵌套和转义，返回结束括号的位置
func readLiteral(stream []byte, start int) (string, int) {
	var b []byte
	depth := 1
	i := start
	for ; i < len(stream); i++ {
		c := stream[i]
		switch c {
		case '\\':
			if i+1 >= len(stream) {
				continue
			}
			i++
			switch e := stream[i]; e {
			case 'n':
				b = append(b, '\n')
			case 'r':
				b = append(b, '\r')
			case 't':
				b = append(b, '\t')
			case 'b', 'f':
			case '0', '1', '2', '3', '4', '5', '6', '7':
				v := int(e - '0')
				for k := 0; k < 2 && i+1 < len(stream) && stream[i+1] >= '0' && stream[i+1] <= '7'; k++ {
					i++
					v = v*8 + int(stream[i]-'0')
				}
				b = append(b, byte(v))
			default:
				b = append(b, e)
			}
		case '(':
			depth++
			b = append(b, c)
		case ')':
			depth--
			if depth == 0 {
				return string(b), i
			}
			b = append(b, c)
		default:
			b = append(b, c)
		}
	}
	return string(b), i
}

func isOperatorStart(stream []byte, i int) bool {
	if stream[i] != 'T' && stream[i] != 'E' {
		return false
	}
	return i == 0 || isPDFSpace(stream[i-1])
}

func readOperator(stream []byte, i int) string {
	j := i
	for j < len(stream) && !isPDFSpace(stream[j]) && stream[j] != '(' && stream[j] != '[' {
		j++
	}
	return string(stream[i:j])
}

func isPDFSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}
