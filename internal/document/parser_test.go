package document

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fyerfyer/lecture-digest/internal/models"
	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func createTempFile(t *testing.T, content []byte, ext string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lecture"+ext)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func createTempPDF(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lecture.pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 10, text, "", "", false)
	require.NoError(t, pdf.OutputFileAndClose(path))
	return path
}

func TestPlainTextParser(t *testing.T) {
	content := "第一章 算法概述\n算法是解决问题的步骤。"
	file := createTempFile(t, []byte(content), ".txt")

	text, err := NewPlainTextParser().Parse(file)
	require.NoError(t, err)
	assert.Equal(t, content, text)
}

func TestPlainTextParserBOMAndGBK(t *testing.T) {
	p := NewPlainTextParser()

	text, err := p.ParseReader(bytes.NewReader(append([]byte{0xEF, 0xBB, 0xBF}, "讲义"...)), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "讲义", text)

	gbk, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("时间复杂度"))
	require.NoError(t, err)
	text, err = p.ParseReader(bytes.NewReader(gbk), "gbk.txt")
	require.NoError(t, err)
	assert.Equal(t, "时间复杂度", text)
}

func TestMarkdownParser(t *testing.T) {
	content := "# 第一章 排序\n\n快速排序是**分治**算法。\n\n- 归并排序\n- 堆排序\n\n```go\nfmt.Println(1)\n```\n"
	file := createTempFile(t, []byte(content), ".md")

	text, err := NewMarkdownParser().Parse(file)
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	assert.Equal(t, "第一章 排序", lines[0])
	assert.Contains(t, lines, "快速排序是分治算法。")
	assert.Contains(t, lines, "归并排序")
	assert.Contains(t, lines, "堆排序")
	assert.NotContains(t, text, "Println", "code blocks should be dropped")
	assert.NotContains(t, text, "#")
}

func TestPDFParser(t *testing.T) {
	file := createTempPDF(t, "This is a PDF test.\nSecond line.")

	text, err := NewPDFParser().Parse(file)
	require.NoError(t, err)
	assert.Contains(t, text, "This is a PDF test.")
	assert.Contains(t, text, "Second line.")
	assert.NotContains(t, text, " Tj")
}

func TestPDFParserReader(t *testing.T) {
	file := createTempPDF(t, "Reader based PDF")
	data, err := os.ReadFile(file)
	require.NoError(t, err)

	text, err := NewPDFParser().ParseReader(bytes.NewReader(data), "upload.pdf")
	require.NoError(t, err)
	assert.Contains(t, text, "Reader based PDF")
}

func TestContentStreamText(t *testing.T) {
	stream := []byte("BT /F1 12 Tf 10 700 Td (Hello \\(world\\)) Tj 0 -14 Td [(A) -20 (B)] TJ ET\nBT (\\101\\102) Tj ET")
	assert.Equal(t, "Hello (world)\nAB\nAB\n", contentStreamText(stream))
}

func TestParserFactory(t *testing.T) {
	tests := []struct {
		name     string
		expected ContentType
	}{
		{"a.txt", PlainText},
		{"a.MD", Markdown},
		{"a.markdown", Markdown},
		{"a.pdf", PDF},
		{"a.docx", Unknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, DetectContentType(tt.name), tt.name)
	}

	_, err := ParserFactory("slides.pptx")
	assert.ErrorIs(t, err, models.ErrUnsupportedType)
	assert.False(t, IsSupported("slides.pptx"))

	text, err := ParseReader(strings.NewReader("纯文本"), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "纯文本", text)
}
