package textproc

import (
	"strings"
	"unicode/utf8"
)

// structureWords 定义、分类、结论类句子的标志词
var structureWords = []string{
	"定义", "包括", "分为", "作用", "原理", "特点", "含义", "本质",
	"步骤", "结论", "关键", "核心", "主要", "重要", "总结", "概述",
}

// exampleWords 举例句标志词
var exampleWords = []string{"例如", "比如", "举例", "如"}

// completeEndings 完整句的结尾标点
var completeEndings = []string{"。", "！", "？", "；"}

// Score 使用默认分析器为句子打分
func Score(sentences []string) []float64 {
	return Default().Score(sentences)
}

// Score 为每个句子计算重要性得分，结果与输入一一对应
// 得分范围为 [0, Keyword+Length+Structure+Complete]
func (a *Analyzer) Score(sentences []string) []float64 {
	scores := make([]float64, len(sentences))
	if len(sentences) == 0 {
		return scores
	}

	keywords := a.ContentKeywords(sentences)
	set := make(map[string]struct{}, len(keywords.Keywords))
	for _, kw := range keywords.Keywords {
		set[kw] = struct{}{}
	}

	for i, s := range sentences {
		scores[i] = a.scoreSentence(s, set)
	}
	return scores
}

func (a *Analyzer) scoreSentence(sent string, keywords map[string]struct{}) float64 {
	w := a.weights
	penalty := w.penalty(EnglishRatio(sent))

	tokens := Tokenize(a.tokenizer, sent)
	hits := 0
	for _, t := range tokens {
		if _, ok := keywords[t]; ok {
			hits++
		}
	}
	coreScore := float64(hits) / float64(max(len(tokens), 1))

	lenScore := w.ShortLength
	if n := utf8.RuneCountInString(sent); n >= w.MinLength && n <= w.MaxLength {
		lenScore = 1
	}

	var structScore float64
	if containsAny(sent, structureWords) {
		structScore = w.Structure
	}

	var completeScore float64
	if hasAnySuffix(sent, completeEndings) {
		completeScore = w.Complete
	}

	total := (coreScore*w.Keyword + lenScore*w.Length + structScore + completeScore) * penalty
	if containsAny(sent, exampleWords) {
		total *= w.ExampleFactor
	}
	return total
}

// EnglishRatio 英文字母数占去除首尾空白后长度的比例，空串为 0
func EnglishRatio(sent string) float64 {
	total := utf8.RuneCountInString(strings.TrimSpace(sent))
	if total == 0 {
		return 0
	}
	letters := 0
	for _, r := range sent {
		if isASCIILetter(r) {
			letters++
		}
	}
	return float64(letters) / float64(total)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
