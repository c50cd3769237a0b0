package textproc

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sentenceFragments = []string{
	"算法", "复杂度", "排序", "数据结构", "核心", "主要", "方法", "定义", "例如", "比如",
	"包括", "本课程", "讲解", "信息检索", "加权", "词语", "重要性", "第一章", "第二节",
	"tf", "idf", "java", "object", "graph", "O", "n", "2024", "3",
	"，", "、", "；", "。", "！", "？", ",", ".", " ", "$x$", "%", "（", "）", "@", "#",
}

func randomSentence(rng *rand.Rand) string {
	var b strings.Builder
	n := 1 + rng.Intn(14)
	for i := 0; i < n; i++ {
		b.WriteString(sentenceFragments[rng.Intn(len(sentenceFragments))])
	}
	return b.String()
}

func randomSentences(rng *rand.Rand) []string {
	out := make([]string, rng.Intn(25))
	for i := range out {
		out[i] = randomSentence(rng)
	}
	return out
}

// isSubsequence 判断 sub 是否按顺序出现在 list 中
func isSubsequence(sub, list []string) bool {
	j := 0
	for _, s := range list {
		if j < len(sub) && sub[j] == s {
			j++
		}
	}
	return j == len(sub)
}

func TestScoreScenarioOutranksNoise(t *testing.T) {
	sentences := []string{
		"TF-IDF是一种常用于信息检索的加权方法，核心在于衡量词语重要性。",
		"asdkj alksd laksjd laksjdl kasjd",
	}

	scores := Score(sentences)
	require.Len(t, scores, 2)
	assert.Greater(t, scores[0], scores[1])
	assert.LessOrEqual(t, scores[0], 1.1)
	assert.GreaterOrEqual(t, scores[1], 0.0)
}

func TestScoreBoundRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(20240917))
	a := newTestAnalyzer()

	for i := 0; i < 300; i++ {
		sentences := randomSentences(rng)
		scores := a.Score(sentences)
		require.Len(t, scores, len(sentences))
		for j, s := range scores {
			assert.GreaterOrEqual(t, s, 0.0, "sentence %q", sentences[j])
			assert.LessOrEqual(t, s, 1.1, "sentence %q", sentences[j])
		}
	}
}

func TestExtractCoreRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a := newTestAnalyzer()

	for i := 0; i < 300; i++ {
		sentences := randomSentences(rng)
		res := a.ExtractCore(sentences)

		assert.LessOrEqual(t, len(res.Sentences), MaxCoreSentences)
		assert.LessOrEqual(t, len(res.Sentences), len(sentences))
		assert.True(t, isSubsequence(res.Sentences, sentences), "core %q not in order of %q", res.Sentences, sentences)

		keys := make(map[string]bool, len(res.Sentences))
		for _, s := range res.Sentences {
			k := dedupKey(s)
			assert.False(t, keys[k], "duplicate key %q", k)
			keys[k] = true
		}
		if len(res.Sentences) == 0 {
			assert.Equal(t, StatusDegenerate, res.Status)
		}
	}
}

func TestSummarizeRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	a := newTestAnalyzer()

	for i := 0; i < 300; i++ {
		sentences := randomSentences(rng)
		target := 20 + rng.Intn(120)
		tol := rng.Intn(40)

		res := a.Summarize(sentences, target, tol)
		require.NotEmpty(t, res.Summary)
		if res.Status == StatusDegenerate {
			assert.Equal(t, NoSummaryMessage, res.Summary)
			continue
		}
		assert.Equal(t, StatusOK, res.Status)
		assert.LessOrEqual(t, utf8.RuneCountInString(res.Summary), target+tol, "summary %q", res.Summary)
	}
}

func TestCleanAndSegmentIdempotentRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	a := newTestAnalyzer()
	opts := DefaultCleanOptions()

	for i := 0; i < 300; i++ {
		text := strings.Join(randomSentences(rng), "\n")

		first := a.CleanAndSegment(text, opts)
		second := a.CleanAndSegment(first.Cleaned, opts)
		assert.Equal(t, first.Sentences, second.Sentences, "text %q", text)
	}
}
