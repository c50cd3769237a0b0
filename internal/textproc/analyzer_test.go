package textproc

import (
	"regexp"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

// pairTokenizer 把汉字串按两个字一组切分，测试中用于代替词典分词
type pairTokenizer struct{}

func (pairTokenizer) Cut(text string) []string {
	runes := []rune(text)
	var out []string
	for i := 0; i < len(runes); i += 2 {
		end := min(i+2, len(runes))
		out = append(out, string(runes[i:end]))
	}
	return out
}

func (p pairTokenizer) Tag(text string) []TaggedWord {
	var out []TaggedWord
	for _, w := range p.Cut(text) {
		out = append(out, TaggedWord{Word: w, Pos: "n"})
	}
	return out
}

func newTestAnalyzer(opts ...Option) *Analyzer {
	return NewAnalyzer(append([]Option{WithTokenizer(pairTokenizer{})}, opts...)...)
}

func TestNewAnalyzerDefaults(t *testing.T) {
	a := NewAnalyzer()
	assert.Equal(t, DefaultScoreWeights(), a.Weights())
	assert.True(t, a.Stopwords().Contains("数据"))
	assert.True(t, a.Stopwords().Contains("the"))
	assert.NotNil(t, a.Tokenizer())

	// 默认分析器只创建一次
	assert.Same(t, Default(), Default())
}

func TestWithOptions(t *testing.T) {
	w := DefaultScoreWeights()
	w.Keyword = 1.0
	stop := NewStopwords([]string{"排序"})

	a := NewAnalyzer(WithScoreWeights(w), WithStopwords(stop), WithTokenizer(pairTokenizer{}))
	assert.Equal(t, 1.0, a.Weights().Keyword)
	assert.True(t, a.Stopwords().Contains("排序"))
	assert.False(t, a.Stopwords().Contains("数据"))
	assert.IsType(t, pairTokenizer{}, a.Tokenizer())

	// nil 选项不覆盖默认值
	b := NewAnalyzer(WithStopwords(nil), WithTokenizer(nil))
	assert.True(t, b.Stopwords().Contains("数据"))
	assert.NotNil(t, b.Tokenizer())
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize(pairTokenizer{}, "排序算法Quick sort 2024年")
	assert.Equal(t, []string{"排序", "算法", "quick", "sort", "2024", "年"}, tokens)

	assert.Empty(t, Tokenize(pairTokenizer{}, "，。！"))
}

func TestGseTokenizer(t *testing.T) {
	tok := DefaultTokenizer()
	words := tok.Cut("快速排序算法")
	assert.NotEmpty(t, words)

	// 分词结果拼接后与原文一致
	joined := ""
	for _, w := range words {
		joined += w
	}
	assert.Equal(t, "快速排序算法", joined)
}

var hanPattern = regexp.MustCompile(`^[\x{4e00}-\x{9fff}]+$`)

func TestGseTokenizerTag(t *testing.T) {
	tagged := DefaultTokenizer().Tag("数据结构是计算机科学的基础")
	for _, tw := range tagged {
		assert.True(t, hanPattern.MatchString(tw.Word), tw.Word)
		assert.GreaterOrEqual(t, utf8.RuneCountInString(tw.Word), 1)
	}
}
