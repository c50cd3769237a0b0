package textproc

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractChapters(t *testing.T) {
	sentences := []string{
		"引言部分的内容介绍。",
		"第二章讲解排序算法。",
		"排序算法有很多种。",
		"第一章介绍基本概念。",
		"基本概念很重要。",
	}

	outline := ExtractChapters(sentences)
	require.Equal(t, StatusOK, outline.Status)
	require.Len(t, outline.Chapters, 2)

	assert.Equal(t, "第一章", outline.Chapters[0].Mark)
	assert.Equal(t, "第一章介绍基本概念。基本概念很重要。", outline.Chapters[0].Content)
	assert.Equal(t, "第二章", outline.Chapters[1].Mark)
	assert.Equal(t, "第二章讲解排序算法。排序算法有很多种。", outline.Chapters[1].Content)

	formatted := outline.Format()
	assert.True(t, strings.HasPrefix(formatted, "【章节结构与完整内容梳理】"))
	assert.Contains(t, formatted, "\n第一章：\n")
	assert.NotContains(t, formatted, "引言")
}

func TestExtractChaptersTruncatesContent(t *testing.T) {
	sentences := []string{"第一节" + strings.Repeat("算", 600) + "。"}

	outline := ExtractChapters(sentences)
	require.Len(t, outline.Chapters, 1)
	content := outline.Chapters[0].Content
	assert.True(t, strings.HasSuffix(content, "..."))
	assert.Equal(t, maxChapterRunes+3, utf8.RuneCountInString(content))
}

func TestExtractChaptersDegenerate(t *testing.T) {
	outline := ExtractChapters(nil)
	assert.Equal(t, StatusDegenerate, outline.Status)

	outline = ExtractChapters([]string{"没有任何章节标志的句子。"})
	assert.Equal(t, StatusDegenerate, outline.Status)
	assert.Empty(t, outline.Chapters)
	assert.Equal(t, "未检测到章节结构标志", outline.Format())
}

func TestChapterNumber(t *testing.T) {
	assert.Equal(t, 1, chapterNumber("第一部分"))
	assert.Equal(t, 4, chapterNumber("第四节"))
	assert.Equal(t, 0, chapterNumber("附录"))
}
