// Package wordcloud 计算词云使用的关键词权重
package wordcloud

import (
	"math"
	"sort"
	"sync"

	"github.com/fyerfyer/lecture-digest/internal/textproc"
)

// Method 关键词权重算法
type Method string

const (
	// MethodTFIDF 基于 2-3 元词组的 TF-IDF
	MethodTFIDF Method = "tfidf"
	// MethodTextRank 基于词性过滤的 TextRank
	MethodTextRank Method = "textrank"
)

// DefaultMaxWords 默认最多输出的关键词数
const DefaultMaxWords = 200

const (
	minScaled   = 100.0
	scaleRange  = 900.0
	equalScaled = 500.0
)

// Weight 关键词及其权重
type Weight struct {
	Word   string  `json:"word"`
	Weight float64 `json:"weight"`
}

// KeywordWeights 按权重降序排列的关键词
type KeywordWeights struct {
	Weights []Weight
	Status  textproc.Status
}

// Map 转换为关键词到权重的映射
func (k KeywordWeights) Map() map[string]float64 {
	m := make(map[string]float64, len(k.Weights))
	for _, w := range k.Weights {
		m[w.Word] = w.Weight
	}
	return m
}

// Builder 关键词权重计算器
type Builder struct {
	analyzer *textproc.Analyzer
	dedup    DedupOptions
}

// Option Builder 配置选项
type Option func(*Builder)

// WithAnalyzer 设置分词与停用词来源
func WithAnalyzer(a *textproc.Analyzer) Option {
	return func(b *Builder) {
		if a != nil {
			b.analyzer = a
		}
	}
}

// WithDedupOptions 设置去重参数
func WithDedupOptions(o DedupOptions) Option {
	return func(b *Builder) {
		b.dedup = o
	}
}

// NewBuilder 创建关键词权重计算器
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{dedup: DefaultDedupOptions()}
	for _, opt := range opts {
		opt(b)
	}
	if b.analyzer == nil {
		b.analyzer = textproc.Default()
	}
	return b
}

var (
	defaultBuilder     *Builder
	defaultBuilderOnce sync.Once
)

func defaultB() *Builder {
	defaultBuilderOnce.Do(func() {
		defaultBuilder = NewBuilder()
	})
	return defaultBuilder
}

// WeightedKeywords 使用默认配置计算关键词权重
func WeightedKeywords(text string, method Method, maxWords int) KeywordWeights {
	return defaultB().WeightedKeywords(text, method, maxWords)
}

// WeightedKeywords 计算关键词权重，去除包含关系的重复词后缩放到 [100, 1000]
// 计算失败或没有候选词时返回空结果与 StatusDegenerate
func (b *Builder) WeightedKeywords(text string, method Method, maxWords int) KeywordWeights {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	var raw map[string]float64
	switch method {
	case MethodTextRank:
		raw = b.textRankWeights(text)
	default:
		raw = b.tfidfWeights(text)
	}

	filtered := FilterDuplicates(raw, b.dedup)
	if len(filtered) == 0 {
		return KeywordWeights{Weights: []Weight{}, Status: textproc.StatusDegenerate}
	}
	return KeywordWeights{Weights: Scale(filtered, maxWords), Status: textproc.StatusOK}
}

// Scale 按 100 + 900·sqrt((w-min)/(max-min)) 缩放权重，取前 maxWords 个
// 所有权重相同时统一为 500
func Scale(weights map[string]float64, maxWords int) []Weight {
	if len(weights) == 0 {
		return []Weight{}
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, w := range weights {
		lo = math.Min(lo, w)
		hi = math.Max(hi, w)
	}

	out := make([]Weight, 0, len(weights))
	for word, w := range weights {
		scaled := equalScaled
		if hi != lo {
			scaled = minScaled + scaleRange*math.Sqrt((w-lo)/(hi-lo))
		}
		out = append(out, Weight{Word: word, Weight: scaled})
	}
	sortWeights(out)

	if maxWords > 0 && len(out) > maxWords {
		out = out[:maxWords]
	}
	return out
}

// sortWeights 按权重降序排序，权重相同按字典序
func sortWeights(ws []Weight) {
	sort.Slice(ws, func(i, j int) bool {
		if ws[i].Weight != ws[j].Weight {
			return ws[i].Weight > ws[j].Weight
		}
		return ws[i].Word < ws[j].Word
	})
}
