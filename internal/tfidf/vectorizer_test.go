package tfidf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitTransformSmoothIDF(t *testing.T) {
	docs := [][]string{{"a", "b"}, {"a", "c"}}

	m, err := Vectorizer{}.FitTransform(docs)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, m.Terms)
	require.Len(t, m.Rows, 2)

	// a 出现在全部文档中，idf = 1
	idfB := math.Log(3.0/2.0) + 1
	norm := math.Sqrt(1 + idfB*idfB)
	assert.InDelta(t, 1/norm, m.Rows[0][0], 1e-9)
	assert.InDelta(t, idfB/norm, m.Rows[0][1], 1e-9)
	assert.Equal(t, 0.0, m.Rows[0][2])

	// 每行 L2 归一化
	for _, row := range m.Rows {
		var sq float64
		for _, w := range row {
			sq += w * w
		}
		assert.InDelta(t, 1.0, sq, 1e-9)
	}
}

func TestRankedSingleDocument(t *testing.T) {
	doc := []string{"排序", "算法", "排序", "复杂度", "算法", "排序"}

	m, err := Vectorizer{}.FitTransform([][]string{doc})
	require.NoError(t, err)

	ranked := m.Ranked()
	require.Len(t, ranked, 3)
	// 单文档时排序等价于词频
	assert.Equal(t, "排序", ranked[0].Term)
	assert.Equal(t, "算法", ranked[1].Term)
	assert.Equal(t, "复杂度", ranked[2].Term)
	assert.Greater(t, ranked[0].Weight, ranked[1].Weight)
}

func TestRankedTieBreakIsLexical(t *testing.T) {
	m, err := Vectorizer{}.FitTransform([][]string{{"zeta", "alpha", "mid"}})
	require.NoError(t, err)

	ranked := m.Ranked()
	assert.Equal(t, "alpha", ranked[0].Term)
	assert.Equal(t, "mid", ranked[1].Term)
	assert.Equal(t, "zeta", ranked[2].Term)
}

func TestNGrams(t *testing.T) {
	v := Vectorizer{NGramMin: 2, NGramMax: 3}
	assert.Equal(t,
		[]string{"快速 排序", "排序 算法", "快速 排序 算法"},
		v.ngrams([]string{"快速", "排序", "算法"}))

	// 词数不足时不产生 n-gram
	assert.Empty(t, v.ngrams([]string{"排序"}))
}

func TestFitTransformErrors(t *testing.T) {
	// 空语料
	_, err := Vectorizer{}.FitTransform([][]string{{}, {}})
	assert.ErrorIs(t, err, ErrEmptyVocabulary)

	// 每个词只出现在一个文档中
	_, err = Vectorizer{MinDF: 2}.FitTransform([][]string{{"a"}, {"b"}, {"c"}})
	assert.ErrorIs(t, err, ErrNoTermsRemain)

	// 单文档时 max_df=0.8 只允许 0.8 个文档
	_, err = Vectorizer{MinDF: 2, MaxDF: 0.8}.FitTransform([][]string{{"a", "b"}})
	assert.ErrorIs(t, err, ErrInvalidDocumentFrequency)
}

func TestDocumentFrequencyPruning(t *testing.T) {
	docs := [][]string{
		{"common", "pair"},
		{"common", "pair"},
		{"common", "solo"},
	}

	// common 出现在 3/3 个文档中，超过 0.8
	m, err := Vectorizer{MinDF: 2, MaxDF: 0.8}.FitTransform(docs)
	require.NoError(t, err)
	assert.Equal(t, []string{"pair"}, m.Terms)
}

func TestMaxFeatures(t *testing.T) {
	docs := [][]string{{"a", "a", "a", "b", "b", "c"}}

	m, err := Vectorizer{MaxFeatures: 2}.FitTransform(docs)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, m.Terms)
}
