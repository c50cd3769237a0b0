package textproc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentKeywordsRanking(t *testing.T) {
	a := newTestAnalyzer()

	set := a.ContentKeywords([]string{"排序排序算法。", "排序效率。"})
	require.Equal(t, StatusOK, set.Status)
	// 排序 出现三次，算法 与 效率 各一次，同分按字典序
	assert.Equal(t, "排序", set.Keywords[0])
	assert.ElementsMatch(t, []string{"排序", "算法", "效率"}, set.Keywords)
	assert.True(t, set.has("算法"))
	assert.False(t, set.has("数据"))
}

func TestContentKeywordsFiltersStopwords(t *testing.T) {
	a := newTestAnalyzer()

	// 数据 是停用词，单字词被丢弃
	set := a.ContentKeywords([]string{"数据排序的。"})
	assert.Equal(t, []string{"排序"}, set.Keywords)
}

func TestContentKeywordsLimit(t *testing.T) {
	a := newTestAnalyzer()

	words := []string{
		"排序", "算法", "效率", "复杂", "图论", "树形", "链表", "哈希", "堆栈",
		"队列", "递归", "动态", "贪心", "回溯", "分治", "搜索", "匹配",
	}
	set := a.ContentKeywords([]string{strings.Join(words, "") + "。"})
	assert.Len(t, set.Keywords, MaxContentKeywords)
}

func TestContentKeywordsDegenerate(t *testing.T) {
	input := []string{"数据数据数据。", "数据数据。"}
	assert.NotPanics(t, func() { ContentKeywords(input) })

	// 全部由停用词"数据"组成
	set := newTestAnalyzer().ContentKeywords(input)
	assert.Equal(t, StatusDegenerate, set.Status)
	assert.Empty(t, set.Keywords)

	set = ContentKeywords(nil)
	assert.Equal(t, StatusDegenerate, set.Status)
	assert.NotNil(t, set.Keywords)
}

func TestFirstDistinct(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, firstDistinct([]string{"a", "a", "b", "c"}, 2))
	assert.Equal(t, []string{"a", "b", "c"}, firstDistinct([]string{"a", "b", "a", "c"}, 15))
}
