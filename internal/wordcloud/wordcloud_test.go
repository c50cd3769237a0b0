package wordcloud

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/lecture-digest/internal/textproc"
)

// spaceTokenizer 汉字串整体作为一个词，词性默认为名词
type spaceTokenizer struct {
	pos map[string]string
}

func (spaceTokenizer) Cut(text string) []string {
	return []string{text}
}

func (s spaceTokenizer) Tag(text string) []textproc.TaggedWord {
	var out []textproc.TaggedWord
	for _, w := range strings.Fields(text) {
		p, ok := s.pos[w]
		if !ok {
			p = "n"
		}
		out = append(out, textproc.TaggedWord{Word: w, Pos: p})
	}
	return out
}

func newTestBuilder() *Builder {
	a := textproc.NewAnalyzer(textproc.WithTokenizer(spaceTokenizer{pos: map[string]string{"的": "uj"}}))
	return NewBuilder(WithAnalyzer(a))
}

func assertNoSubstringPairs(t *testing.T, words []string) {
	t.Helper()
	for i := range words {
		for j := range words {
			if i == j {
				continue
			}
			assert.False(t, strings.Contains(words[i], words[j]), "%q contains %q", words[i], words[j])
		}
	}
}

func words(ws []Weight) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Word
	}
	return out
}

func TestFilterDuplicates(t *testing.T) {
	in := map[string]float64{
		"快速排序": 0.9,
		"排序":   0.8,
		"快速":   0.5,
		"归并排序": 0.7,
		"堆":    0.9,
		"算法":   0.4,
	}

	got := FilterDuplicates(in, DefaultDedupOptions())
	assert.Equal(t, map[string]float64{"快速排序": 0.9, "归并排序": 0.7, "算法": 0.4}, got)
	assert.Empty(t, FilterDuplicates(nil, DefaultDedupOptions()))
}

func TestFilterDuplicatesRetry(t *testing.T) {
	long := []rune("甲乙丙丁戊己庚辛壬癸子丑寅卯辰巳午未申酉戌亥")
	in := map[string]float64{string(long): 0.01}
	for i := 0; i+2 <= len(long); i++ {
		in[string(long[i:i+2])] = 0.5 + float64(i)*0.01
	}
	in["算法"] = 0.3
	in["排序"] = 0.3
	in["图论"] = 0.3
	require.Len(t, in, 25)

	// 第一轮保留长词后，其余二字词都被视为重复，只剩 4 个
	got := FilterDuplicates(in, DefaultDedupOptions())
	assert.Len(t, got, 20)
	assert.NotContains(t, got, string(long))
	assert.NotContains(t, got, "甲乙")

	var keys []string
	for k := range got {
		keys = append(keys, k)
	}
	assertNoSubstringPairs(t, keys)
}

func TestScale(t *testing.T) {
	got := Scale(map[string]float64{"a": 1, "b": 2, "c": 5}, 10)
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].Word)
	assert.InDelta(t, 1000, got[0].Weight, 1e-9)
	assert.Equal(t, "b", got[1].Word)
	assert.InDelta(t, 550, got[1].Weight, 1e-9)
	assert.InDelta(t, 100, got[2].Weight, 1e-9)

	got = Scale(map[string]float64{"a": 3, "b": 3}, 10)
	assert.Equal(t, []Weight{{"a", 500}, {"b", 500}}, got)

	got = Scale(map[string]float64{"a": 1, "b": 2, "c": 5}, 2)
	assert.Equal(t, []string{"c", "b"}, words(got))

	assert.Empty(t, Scale(nil, 10))
}

func TestWeightedKeywordsTFIDF(t *testing.T) {
	b := newTestBuilder()
	chunkA := "快速 排序 归并 合并 堆栈 队列 哈希 链表"
	chunkB := "图论 树形 递归 贪心 回溯 分治 搜索 匹配"
	text := strings.Join([]string{chunkA, chunkA, chunkB}, " ")

	res := b.WeightedKeywords(text, MethodTFIDF, 50)
	require.Equal(t, textproc.StatusOK, res.Status)

	// 二元词组都被包含在三元词组中
	require.Len(t, res.Weights, 6)
	for _, w := range res.Weights {
		assert.Equal(t, 2, strings.Count(w.Word, " "), w.Word)
		assert.InDelta(t, 500, w.Weight, 1e-9)
		assert.NotContains(t, w.Word, "图论")
	}
	assertNoSubstringPairs(t, words(res.Weights))
}

func TestWeightedKeywordsDegenerate(t *testing.T) {
	b := newTestBuilder()

	res := b.WeightedKeywords("排序 算法", MethodTFIDF, 50)
	assert.Equal(t, textproc.StatusDegenerate, res.Status)
	assert.Empty(t, res.Weights)

	res = b.WeightedKeywords("", MethodTextRank, 50)
	assert.Equal(t, textproc.StatusDegenerate, res.Status)
	assert.Empty(t, res.Map())
}

func TestWeightedKeywordsTextRank(t *testing.T) {
	b := newTestBuilder()
	text := "排序 算法 排序 复杂度 排序 效率 的 算法 图论"

	raw := b.textRankWeights(text)
	require.NotEmpty(t, raw)
	assert.InDelta(t, 1.0, raw["排序"], 1e-9)
	assert.NotContains(t, raw, "的")

	res := b.WeightedKeywords(text, MethodTextRank, 3)
	require.Equal(t, textproc.StatusOK, res.Status)
	require.Len(t, res.Weights, 3)
	assert.Equal(t, "排序", res.Weights[0].Word)
	assert.InDelta(t, 1000, res.Weights[0].Weight, 1e-9)
	assert.InDelta(t, 1000, res.Map()["排序"], 1e-9)
}

func TestTextRankSkipsLongWords(t *testing.T) {
	b := newTestBuilder()
	text := "数据结构与算法 排序 算法 排序 算法"

	raw := b.textRankWeights(text)
	assert.NotContains(t, raw, "数据结构与算法")
	assert.Contains(t, raw, "排序")
}

func TestWeightedKeywordsDefaultBuilder(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&b, "快速排序 归并排序 时间复杂度 空间复杂度 二叉树 哈希表 链表 栈 队列 图的遍历 动态规划 贪心算法 ")
	}
	text := b.String()

	for _, m := range []Method{MethodTFIDF, MethodTextRank} {
		var res KeywordWeights
		require.NotPanics(t, func() { res = WeightedKeywords(text, m, 100) })
		assert.LessOrEqual(t, len(res.Weights), 100)
		assertNoSubstringPairs(t, words(res.Weights))
		for _, w := range res.Weights {
			assert.GreaterOrEqual(t, w.Weight, 100.0)
			assert.LessOrEqual(t, w.Weight, 1000.0)
		}
	}
}
