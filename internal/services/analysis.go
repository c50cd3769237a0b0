package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fyerfyer/lecture-digest/internal/cache"
	"github.com/fyerfyer/lecture-digest/internal/polish"
	"github.com/fyerfyer/lecture-digest/internal/textproc"
	"github.com/fyerfyer/lecture-digest/internal/wordcloud"
	"github.com/sirupsen/logrus"
)

// AnalysisOptions 单次分析的参数
type AnalysisOptions struct {
	SummaryLength int              `json:"summary_length"` // 目标摘要长度
	Tolerance     int              `json:"tolerance"`      // 摘要长度容差
	KeywordMethod wordcloud.Method `json:"keyword_method"` // 词云算法
	MaxWords      int              `json:"max_words"`      // 词云最多词数
	Polish        bool             `json:"polish"`         // 是否调用模型润色
}

// DefaultAnalysisOptions 返回默认分析参数
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		SummaryLength: textproc.DefaultSummaryLength,
		Tolerance:     textproc.DefaultSummaryTolerance,
		KeywordMethod: wordcloud.MethodTFIDF,
		MaxWords:      wordcloud.DefaultMaxWords,
	}
}

// withDefaults 用 def 填充未设置的字段
func (o AnalysisOptions) withDefaults(def AnalysisOptions) AnalysisOptions {
	if o.SummaryLength <= 0 {
		o.SummaryLength = def.SummaryLength
	}
	if o.Tolerance <= 0 {
		o.Tolerance = def.Tolerance
	}
	if o.KeywordMethod == "" {
		o.KeywordMethod = def.KeywordMethod
	}
	if o.MaxWords <= 0 {
		o.MaxWords = def.MaxWords
	}
	return o
}

func (o AnalysisOptions) cacheKey(contentHash string) string {
	return cache.GenerateCacheKey("analysis", contentHash,
		fmt.Sprintf("%d-%d-%s-%d-%t", o.SummaryLength, o.Tolerance, o.KeywordMethod, o.MaxWords, o.Polish))
}

// AnalysisResult 一段讲义文本的完整分析结果
type AnalysisResult struct {
	Summary         string             `json:"summary"`
	SummaryStatus   textproc.Status    `json:"summary_status"`
	Core            []string           `json:"core"`
	CoreStatus      textproc.Status    `json:"core_status"`
	Keywords        []string           `json:"keywords"`
	KeywordStatus   textproc.Status    `json:"keyword_status"`
	WordCloud       []wordcloud.Weight `json:"word_cloud"`
	WordCloudStatus textproc.Status    `json:"word_cloud_status"`
	Chapters        []textproc.Chapter `json:"chapters"`
	ChapterStatus   textproc.Status    `json:"chapter_status"`
	ChapterOutline  string             `json:"chapter_outline"`
	Suggestions     []string           `json:"suggestions"`
	SentenceCount   int                `json:"sentence_count"`
	Polished        bool               `json:"polished"`
	Cached          bool               `json:"cached"`
}

// AnalysisService 文本分析服务
// 串联清洗切分、摘要、核心句、关键词、章节和词云，并负责结果缓存与可选润色
type AnalysisService struct {
	analyzer *textproc.Analyzer
	builder  *wordcloud.Builder
	dedup    wordcloud.DedupOptions
	polisher *polish.Polisher
	cache    cache.Cache
	cacheTTL time.Duration
	defaults AnalysisOptions
	logger   *logrus.Logger
}

// AnalysisOption 分析服务配置选项
type AnalysisOption func(*AnalysisService)

// WithAnalyzer 设置文本分析器
func WithAnalyzer(a *textproc.Analyzer) AnalysisOption {
	return func(s *AnalysisService) {
		if a != nil {
			s.analyzer = a
		}
	}
}

// WithDedupOptions 设置词云去重参数
func WithDedupOptions(o wordcloud.DedupOptions) AnalysisOption {
	return func(s *AnalysisService) {
		s.dedup = o
	}
}

// WithPolisher 设置润色器
func WithPolisher(p *polish.Polisher) AnalysisOption {
	return func(s *AnalysisService) {
		s.polisher = p
	}
}

// WithCache 设置结果缓存，ttl 为 0 时使用缓存自身的默认有效期
func WithCache(c cache.Cache, ttl time.Duration) AnalysisOption {
	return func(s *AnalysisService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithDefaultOptions 设置请求未指定时使用的分析参数
func WithDefaultOptions(o AnalysisOptions) AnalysisOption {
	return func(s *AnalysisService) {
		s.defaults = o.withDefaults(DefaultAnalysisOptions())
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) AnalysisOption {
	return func(s *AnalysisService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewAnalysisService 创建分析服务
func NewAnalysisService(opts ...AnalysisOption) *AnalysisService {
	s := &AnalysisService{
		analyzer: textproc.Default(),
		dedup:    wordcloud.DefaultDedupOptions(),
		polisher: polish.NewPolisher(nil),
		defaults: DefaultAnalysisOptions(),
		logger:   logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.builder = wordcloud.NewBuilder(wordcloud.WithAnalyzer(s.analyzer), wordcloud.WithDedupOptions(s.dedup))
	return s
}

// Defaults 返回默认分析参数
func (s *AnalysisService) Defaults() AnalysisOptions {
	return s.defaults
}

// Polisher 返回润色器
func (s *AnalysisService) Polisher() *polish.Polisher {
	return s.polisher
}

// AnalyzeText 分析一段文本
// 文本无法处理时各部分返回约定的兜底值和 degenerate 状态，不会返回错误
func (s *AnalysisService) AnalyzeText(ctx context.Context, text string, opts AnalysisOptions) (*AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults(s.defaults)
	if opts.KeywordMethod != wordcloud.MethodTFIDF && opts.KeywordMethod != wordcloud.MethodTextRank {
		return nil, fmt.Errorf("unsupported keyword method: %s", opts.KeywordMethod)
	}

	key := opts.cacheKey(cache.ContentHash(text))
	if s.cache != nil {
		var cached AnalysisResult
		found, err := cache.GetJSON(ctx, s.cache, key, &cached)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to read analysis cache")
		} else if found {
			s.logger.WithField("key", key).Debug("Analysis cache hit")
			cached.Cached = true
			return &cached, nil
		}
	}

	start := time.Now()
	seg := s.analyzer.CleanAndSegment(text, textproc.DefaultCleanOptions())
	summary := s.analyzer.Summarize(seg.Sentences, opts.SummaryLength, opts.Tolerance)
	core := s.analyzer.ExtractCore(seg.Sentences)
	keywords := s.analyzer.ContentKeywords(seg.Sentences)
	chapters := textproc.ExtractChapters(seg.Sentences)
	cloud := s.builder.WeightedKeywords(s.cloudText(text), opts.KeywordMethod, opts.MaxWords)

	result := &AnalysisResult{
		Summary:         summary.Summary,
		SummaryStatus:   summary.Status,
		Core:            core.Sentences,
		CoreStatus:      core.Status,
		Keywords:        keywords.Keywords,
		KeywordStatus:   keywords.Status,
		WordCloud:       cloud.Weights,
		WordCloudStatus: cloud.Status,
		Chapters:        chapters.Chapters,
		ChapterStatus:   chapters.Status,
		ChapterOutline:  chapters.Format(),
		SentenceCount:   len(seg.Sentences),
	}

	if opts.Polish {
		s.polishResult(ctx, result)
	}
	suggestions, err := s.polisher.Suggest(ctx, result.Summary, result.Core)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to generate study suggestions, using fallback")
	}
	result.Suggestions = suggestions

	s.logger.WithFields(logrus.Fields{
		"sentences":      result.SentenceCount,
		"summary_status": result.SummaryStatus,
		"core":           len(result.Core),
		"words":          len(result.WordCloud),
		"method":         opts.KeywordMethod,
		"duration":       time.Since(start),
	}).Info("Text analysis completed")

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, result, s.cacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to write analysis cache")
		}
	}
	return result, nil
}

// polishResult 润色摘要和核心句，失败时保留原结果
func (s *AnalysisService) polishResult(ctx context.Context, result *AnalysisResult) {
	if !s.polisher.Enabled() {
		return
	}
	if result.SummaryStatus == textproc.StatusOK {
		summary, err := s.polisher.OptimizeSummary(ctx, result.Summary)
		if err != nil {
			s.logger.WithError(err).Warn("Summary polishing failed, keeping original")
		} else {
			result.Summary = summary
			result.Polished = true
		}
	}
	if len(result.Core) > 0 {
		core, err := s.polisher.OptimizeCore(ctx, result.Core)
		if err != nil {
			s.logger.WithError(err).Warn("Core sentence polishing failed, keeping original")
		} else {
			result.Core = core
			result.Polished = true
		}
	}
}

// WordCloud 只计算词云权重
func (s *AnalysisService) WordCloud(ctx context.Context, text string, method wordcloud.Method, maxWords int) (wordcloud.KeywordWeights, error) {
	if err := ctx.Err(); err != nil {
		return wordcloud.KeywordWeights{}, err
	}
	if method == "" {
		method = s.defaults.KeywordMethod
	}
	if maxWords <= 0 {
		maxWords = s.defaults.MaxWords
	}

	key := cache.GenerateCacheKey("wordcloud", cache.ContentHash(text), string(method), fmt.Sprint(maxWords))
	if s.cache != nil {
		var cached wordcloud.KeywordWeights
		if found, err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil && found {
			return cached, nil
		}
	}

	weights := s.builder.WeightedKeywords(s.cloudText(text), method, maxWords)
	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, weights, s.cacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to write word cloud cache")
		}
	}
	return weights, nil
}

// cloudText 以词流模式清洗文本，公式、乱码行和停用词不进入词云
func (s *AnalysisService) cloudText(text string) string {
	opts := textproc.DefaultCleanOptions()
	opts.Mode = textproc.ModeTokenStream
	return s.analyzer.CleanAndSegment(text, opts).Cleaned
}

// ReviewQuestions 基于分析结果生成复习题，需要配置润色模型
func (s *AnalysisService) ReviewQuestions(ctx context.Context, result *AnalysisResult, questionType string, n int, requirements string) ([]polish.Question, error) {
	if result == nil || strings.TrimSpace(result.Summary) == "" {
		return nil, fmt.Errorf("no analysis available for review questions")
	}
	questions, err := s.polisher.ReviewQuestions(ctx, result.Summary, result.Core, questionType, n, requirements)
	if err != nil {
		return nil, fmt.Errorf("failed to generate review questions: %w", err)
	}
	return questions, nil
}
