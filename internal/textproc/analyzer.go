package textproc

import "sync"

// Analyzer 讲义文本分析器
// 构建后只读，可在多个 goroutine 中共享
type Analyzer struct {
	stopwords   *Stopwords
	keywordStop *Stopwords
	weights     ScoreWeights
	tokenizer   Tokenizer
}

// Option 分析器配置选项
type Option func(*Analyzer)

// WithStopwords 设置停用词集合
func WithStopwords(s *Stopwords) Option {
	return func(a *Analyzer) {
		if s != nil {
			a.stopwords = s
		}
	}
}

// WithScoreWeights 设置句子评分常数
func WithScoreWeights(w ScoreWeights) Option {
	return func(a *Analyzer) {
		a.weights = w
	}
}

// WithTokenizer 设置分词器
func WithTokenizer(t Tokenizer) Option {
	return func(a *Analyzer) {
		if t != nil {
			a.tokenizer = t
		}
	}
}

// NewAnalyzer 创建分析器
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		weights: DefaultScoreWeights(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.stopwords == nil {
		a.stopwords = DefaultStopwords()
	}
	a.keywordStop = a.stopwords.With(keywordFillers...)
	if a.tokenizer == nil {
		a.tokenizer = DefaultTokenizer()
	}
	return a
}

// Stopwords 返回分析器使用的停用词集合
func (a *Analyzer) Stopwords() *Stopwords {
	return a.stopwords
}

// Tokenizer 返回分析器使用的分词器
func (a *Analyzer) Tokenizer() Tokenizer {
	return a.tokenizer
}

// Weights 返回评分常数
func (a *Analyzer) Weights() ScoreWeights {
	return a.weights
}

var (
	defaultAnalyzer     *Analyzer
	defaultAnalyzerOnce sync.Once
)

// Default 返回使用内置停用词和默认常数的分析器
func Default() *Analyzer {
	defaultAnalyzerOnce.Do(func() {
		defaultAnalyzer = NewAnalyzer()
	})
	return defaultAnalyzer
}
