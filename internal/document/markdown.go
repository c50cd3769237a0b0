package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// MarkdownParser Markdown讲义解析器
// 遍历语法树取出文字，块级元素之间换行，代码块丢弃
type MarkdownParser struct{}

// NewMarkdownParser 创建Markdown解析器
func NewMarkdownParser() Parser {
	return &MarkdownParser{}
}

// Parse 解析Markdown文件
func (p *MarkdownParser) Parse(filePath string) (string, error) {
	return openAndParse(p, filePath)
}

// ParseReader 从Reader解析Markdown内容
func (p *MarkdownParser) ParseReader(r io.Reader, filename string) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read markdown content %s: %w", filename, err)
	}
	content, err := decodeText(raw)
	if err != nil {
		return "", err
	}

	mdParser := parser.NewWithExtensions(parser.CommonExtensions)
	doc := mdParser.Parse([]byte(content))
	return extractMarkdownText(doc), nil
}

// extractMarkdownText 收集语法树中的文字节点
func extractMarkdownText(doc ast.Node) string {
	var b strings.Builder
	newline := func() {
		s := b.String()
		if len(s) > 0 && !strings.HasSuffix(s, "\n") {
			b.WriteByte('\n')
		}
	}

	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		switch n := node.(type) {
		case *ast.CodeBlock, *ast.HTMLBlock, *ast.MathBlock:
			return ast.SkipChildren
		case *ast.Text:
			if entering {
				b.Write(n.Literal)
			}
		case *ast.Code:
			if entering {
				b.Write(n.Literal)
			}
		case *ast.Softbreak, *ast.Hardbreak:
			if entering {
				b.WriteByte('\n')
			}
		case *ast.Heading, *ast.Paragraph, *ast.ListItem, *ast.TableRow:
			if !entering {
				newline()
			}
		case *ast.TableCell:
			if !entering {
				b.WriteByte(' ')
			}
		}
		return ast.GoToNext
	})

	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
