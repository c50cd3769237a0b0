package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanAndSegmentSentences(t *testing.T) {
	a := newTestAnalyzer()
	text := "第一章 算法基础\n本课程主要讲解算法设计。算法效率用时间复杂度衡量！短句。"

	seg := a.CleanAndSegment(text, DefaultCleanOptions())
	assert.Equal(t, StatusOK, seg.Status)
	assert.Equal(t, []string{
		"第一章算法基础本课程主要讲解算法设计。",
		"算法效率用时间复杂度衡量。",
	}, seg.Sentences)
	assert.Equal(t, "第一章算法基础本课程主要讲解算法设计。算法效率用时间复杂度衡量！短句。", seg.Cleaned)
}

func TestCleanAndSegmentGarbageLines(t *testing.T) {
	a := newTestAnalyzer()
	text := "■■■■■■ab\n\n   \n正常的中文句子内容。"

	seg := a.CleanAndSegment(text, DefaultCleanOptions())
	assert.Equal(t, []string{"正常的中文句子内容。"}, seg.Sentences)
}

func TestCleanAndSegmentMath(t *testing.T) {
	a := newTestAnalyzer()
	opts := DefaultCleanOptions()

	seg := a.CleanAndSegment("公式$x^2+y^2=1$表示圆的方程式。", opts)
	assert.Equal(t, []string{"公式表示圆的方程式。"}, seg.Sentences)

	seg = a.CleanAndSegment("矩阵\\begin{matrix}1 & 2\\end{matrix}乘法的定义。", opts)
	assert.Equal(t, []string{"矩阵乘法的定义。"}, seg.Sentences)
}

func TestCleanAndSegmentWidthAndCase(t *testing.T) {
	a := newTestAnalyzer()

	seg := a.CleanAndSegment("ＡＢＣ算法复杂度分析。", DefaultCleanOptions())
	assert.Equal(t, []string{"abc算法复杂度分析。"}, seg.Sentences)

	opts := DefaultCleanOptions()
	opts.CaseFold = false
	seg = a.CleanAndSegment("Java面向对象编程。", opts)
	assert.Equal(t, []string{"Java面向对象编程。"}, seg.Sentences)
}

func TestCleanAndSegmentDigits(t *testing.T) {
	a := newTestAnalyzer()
	opts := DefaultCleanOptions()
	opts.Digits = DigitsStrip

	seg := a.CleanAndSegment("第3章讲解排序算法。", opts)
	assert.Equal(t, []string{"第章讲解排序算法。"}, seg.Sentences)
}

func TestKeepCoreRuns(t *testing.T) {
	// 夹在非核心字符之间的单个字符被丢弃
	assert.Equal(t, "bc算法", keepCoreRuns("a%bc%算法"))
	assert.Equal(t, "", keepCoreRuns("a"))
	assert.Equal(t, "排序 算法", keepCoreRuns("排序 算法"))
}

func TestCleanAndSegmentTokenStream(t *testing.T) {
	a := newTestAnalyzer()
	opts := DefaultCleanOptions()
	opts.Mode = ModeTokenStream

	seg := a.CleanAndSegment("排序算法 Quick sort 的 a 12", opts)
	require.Equal(t, StatusOK, seg.Status)
	assert.Equal(t, []string{"排序", "算法", "quick", "sort", "12"}, seg.Tokens)
	assert.Equal(t, "排序 算法 quick sort 12", seg.Cleaned)
	assert.Empty(t, seg.Sentences)

	opts.ExtraStopwords = []string{"sort"}
	seg = a.CleanAndSegment("排序算法 Quick sort", opts)
	assert.Equal(t, []string{"排序", "算法", "quick"}, seg.Tokens)

	// 不去停用词时保留单字词
	opts.StripStopwords = false
	seg = a.CleanAndSegment("排序算法的 a", opts)
	assert.Equal(t, []string{"排序", "算法", "的", "a"}, seg.Tokens)
}

func TestCleanAndSegmentDegenerate(t *testing.T) {
	a := newTestAnalyzer()

	seg := a.CleanAndSegment("", DefaultCleanOptions())
	assert.Equal(t, StatusDegenerate, seg.Status)
	assert.Empty(t, seg.Sentences)

	seg = a.CleanAndSegment("■■■ ◆◆◆ ???", DefaultCleanOptions())
	assert.Equal(t, StatusDegenerate, seg.Status)

	opts := DefaultCleanOptions()
	opts.Mode = ModeTokenStream
	seg = a.CleanAndSegment("的 了 是", opts)
	assert.Equal(t, StatusDegenerate, seg.Status)
	assert.Empty(t, seg.Tokens)
}

func TestCleanAndSegmentIdempotent(t *testing.T) {
	a := newTestAnalyzer()
	opts := DefaultCleanOptions()
	text := "本课程主要讲解 算法设计与分析。\n算法效率通常用时间复杂度衡量，Big O 表示法。"

	first := a.CleanAndSegment(text, opts)
	second := a.CleanAndSegment(first.Cleaned, opts)
	assert.Equal(t, first.Cleaned, second.Cleaned)
	assert.Equal(t, first.Sentences, second.Sentences)
}
