package textproc

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fyerfyer/lecture-digest/internal/tfidf"
)

// MaxContentKeywords 内容关键词的最大数量
const MaxContentKeywords = 15

var nonWordPattern = regexp.MustCompile(`[^\x{4e00}-\x{9fa5}a-zA-Z0-9]`)

// ContentKeywords 使用默认分析器提取内容关键词
func ContentKeywords(sentences []string) KeywordSet {
	return Default().ContentKeywords(sentences)
}

// ContentKeywords 以 TF-IDF 挑选句子集合中最多 15 个内容关键词
func (a *Analyzer) ContentKeywords(sentences []string) KeywordSet {
	words := a.contentTokens(sentences)
	if len(words) == 0 {
		return KeywordSet{Keywords: []string{}, Status: StatusDegenerate}
	}

	m, err := tfidf.Vectorizer{}.FitTransform([][]string{words})
	if err != nil {
		return KeywordSet{Keywords: firstDistinct(words, MaxContentKeywords), Status: StatusFallback}
	}

	ranked := m.Ranked()
	if len(ranked) > MaxContentKeywords {
		ranked = ranked[:MaxContentKeywords]
	}
	keywords := make([]string, len(ranked))
	for i, tw := range ranked {
		keywords[i] = tw.Term
	}
	return KeywordSet{Keywords: keywords, Status: StatusOK}
}

// contentTokens 拼接句子，去掉非文字字符后分词，并过滤停用词和单字词
func (a *Analyzer) contentTokens(sentences []string) []string {
	text := nonWordPattern.ReplaceAllString(strings.Join(sentences, ""), "")

	var words []string
	for _, w := range Tokenize(a.tokenizer, text) {
		if a.keywordStop.Contains(w) || utf8.RuneCountInString(w) < 2 {
			continue
		}
		words = append(words, w)
	}
	return words
}

func firstDistinct(words []string, limit int) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, limit)
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) == limit {
			break
		}
	}
	return out
}
