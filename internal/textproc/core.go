package textproc

import (
	"sort"
	"strings"
	"unicode"
)

// MaxCoreSentences 核心句的最大数量
const MaxCoreSentences = 10

// ExtractCore 使用默认分析器提取核心句
func ExtractCore(sentences []string) CoreResult {
	return Default().ExtractCore(sentences)
}

// ExtractCore 按得分挑选至多 10 个互不重复的核心句，保持原文顺序
// 英文占比过高的句子不参与挑选
func (a *Analyzer) ExtractCore(sentences []string) CoreResult {
	if len(sentences) == 0 {
		return CoreResult{Sentences: []string{}, Status: StatusDegenerate}
	}

	scores := a.Score(sentences)
	candidates := make([]IndexedSentence, 0, len(sentences))
	for i, s := range sentences {
		if strings.TrimSpace(s) == "" {
			continue
		}
		if EnglishRatio(s) > a.weights.CoreEnglishMax {
			continue
		}
		candidates = append(candidates, IndexedSentence{Text: s, Index: i})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return scores[candidates[i].Index] > scores[candidates[j].Index]
	})

	seen := make(map[string]struct{}, len(candidates))
	picked := make([]IndexedSentence, 0, MaxCoreSentences)
	for _, c := range candidates {
		key := dedupKey(c.Text)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		picked = append(picked, c)
		if len(picked) == MaxCoreSentences {
			break
		}
	}

	sort.Slice(picked, func(i, j int) bool {
		return picked[i].Index < picked[j].Index
	})
	out := make([]string, len(picked))
	for i, p := range picked {
		out[i] = p.Text
	}

	status := StatusOK
	if len(out) == 0 {
		status = StatusDegenerate
	}
	return CoreResult{Sentences: out, Status: status}
}

// dedupKey 去掉标点后转小写，用于判断两个句子是否重复
func dedupKey(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
	return strings.ToLower(strings.TrimSpace(s))
}
