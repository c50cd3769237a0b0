package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreRange(t *testing.T) {
	sentences := []string{
		"本课程主要讲解算法设计与分析的核心方法。",
		"算法效率通常用时间复杂度衡量。",
		"例如快速排序的平均复杂度较低。",
		"Java is an object oriented language.",
		"短句",
		"",
	}

	for _, a := range []*Analyzer{Default(), newTestAnalyzer()} {
		scores := a.Score(sentences)
		require.Len(t, scores, len(sentences))
		for _, s := range scores {
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.1)
		}
	}
}

func TestScoreOutranksGibberish(t *testing.T) {
	sentences := []string{
		"算法效率通常用时间复杂度衡量。",
		"asdkj alksd laksjd laksjdl kasjd",
	}

	scores := Score(sentences)
	require.Len(t, scores, 2)
	assert.Greater(t, scores[0], scores[1])
}

func TestScoreComponents(t *testing.T) {
	a := newTestAnalyzer()
	w := a.Weights()

	// 没有关键词命中：只有长度、结构和完整标点得分
	kw := map[string]struct{}{}
	got := a.scoreSentence("排序算法的核心思想是分治。", kw)
	assert.InDelta(t, w.Length+w.Structure+w.Complete, got, 1e-9)

	// 过短且无结尾标点
	got = a.scoreSentence("排序算法", kw)
	assert.InDelta(t, w.ShortLength*w.Length, got, 1e-9)

	// 全部命中关键词
	kw = map[string]struct{}{"排序": {}, "算法": {}}
	got = a.scoreSentence("排序算法排序算法排序。", kw)
	assert.InDelta(t, w.Keyword+w.Length+w.Complete, got, 1e-9)

	// 举例句衰减
	plain := a.scoreSentence("排序算法有很多种类型。", kw)
	example := a.scoreSentence("比如排序算法有很多种。", kw)
	assert.Less(t, example, plain)
}

func TestScoreEmpty(t *testing.T) {
	assert.Empty(t, Score(nil))
}

func TestEnglishRatio(t *testing.T) {
	assert.Equal(t, 0.0, EnglishRatio(""))
	assert.Equal(t, 0.0, EnglishRatio("   "))
	assert.InDelta(t, 0.6, EnglishRatio("abc中文"), 1e-9)
	assert.InDelta(t, 1.0, EnglishRatio(" abc "), 1e-9)
}

func TestPenalty(t *testing.T) {
	w := DefaultScoreWeights()
	assert.Equal(t, 1.0, w.penalty(0))
	assert.Equal(t, 1.0, w.penalty(0.1))
	assert.Equal(t, 0.9, w.penalty(0.15))
	assert.Equal(t, 0.7, w.penalty(0.3))
	assert.Equal(t, 0.7, w.penalty(0.4))
	assert.Equal(t, 0.3, w.penalty(0.41))
}
