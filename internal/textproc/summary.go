package textproc

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultSummaryLength 默认摘要目标长度
	DefaultSummaryLength = 100
	// DefaultSummaryTolerance 默认摘要长度容差
	DefaultSummaryTolerance = 30

	// NoSummaryMessage 无法生成摘要时返回的固定文本
	NoSummaryMessage = "无法生成有效摘要，请检查文本内容。"

	summaryCandidates = 8
	minClauseRunes    = 5
	maxEnumItems      = 4
	minEnumItems      = 3
)

var (
	connectWords = []string{"本课程核心内容为：", "主要涵盖", "重点讲解", "核心知识点包括", "同时涉及"}

	// incompleteOpeners 以这些词开头的句子缺少主语，不适合放入摘要
	incompleteOpeners = []string{"也", "叫", "包括", "例如", "比如", "是", "为", "涵盖", "讲解", "涉及"}

	metaWords = []string{"课程", "教材", "团队", "教师", "开设", "历史", "荣誉", "大学"}

	// cutPunctuation 截断点按优先级排列
	cutPunctuation = []rune{'。', '；', '！', '？', '，', '、'}

	examplePattern    = regexp.MustCompile(`例如|比如|如`)
	enumSplitPattern  = regexp.MustCompile(`[、，；]`)
	semicolonRun      = regexp.MustCompile(`；+`)
	terminalRun       = regexp.MustCompile(`[。；]{2,}`)
	summaryTerminals  = []string{"。", "！", "？", "；"}
	exampleClosers    = []string{"等", "。", "；", "）"}
	clauseTrailTrim   = "。，；"
	summaryTrailTrim  = "；，、"
	enumTrailingPunct = "。！？；"
)

// Summarize 使用默认分析器生成摘要
func Summarize(sentences []string, targetLength, tolerance int) SummaryResult {
	return Default().Summarize(sentences, targetLength, tolerance)
}

// Summarize 选出得分最高的句子，按原文顺序拼接成长度约为 targetLength 的摘要
func (a *Analyzer) Summarize(sentences []string, targetLength, tolerance int) SummaryResult {
	if len(sentences) == 0 {
		return SummaryResult{Summary: NoSummaryMessage, Status: StatusDegenerate}
	}
	if targetLength <= 0 {
		targetLength = DefaultSummaryLength
	}
	if tolerance < 0 {
		tolerance = 0
	}

	top := a.topSentences(sentences, summaryCandidates)
	budget := targetLength + tolerance

	var (
		b        strings.Builder
		total    int
		clauses  int
		prevText string
	)
	for _, s := range top {
		text, ok := cleanClause(s.Text)
		if !ok {
			continue
		}

		conn := connector(clauses, prevText)
		clause := conn + text + "；"
		n := utf8.RuneCountInString(clause)
		if total+n > budget {
			break
		}
		b.WriteString(clause)
		total += n
		clauses++
		prevText = text
	}

	if clauses == 0 {
		return SummaryResult{Summary: NoSummaryMessage, Status: StatusDegenerate}
	}

	summary := truncateSummary([]rune(b.String()), targetLength, tolerance)
	return SummaryResult{Summary: canonicalize(summary, targetLength), Status: StatusOK}
}

// topSentences 取得分最高的 k 个句子，同分保持原文顺序，结果按原文顺序返回
func (a *Analyzer) topSentences(sentences []string, k int) []IndexedSentence {
	scores := a.Score(sentences)
	indexed := indexSentences(sentences)
	sort.SliceStable(indexed, func(i, j int) bool {
		return scores[indexed[i].Index] > scores[indexed[j].Index]
	})
	if len(indexed) > k {
		indexed = indexed[:k]
	}
	sort.Slice(indexed, func(i, j int) bool {
		return indexed[i].Index < indexed[j].Index
	})
	return indexed
}

// cleanClause 把候选句整理成摘要子句，过短或不完整的句子返回 false
func cleanClause(sent string) (string, bool) {
	text := strings.TrimSpace(sent)
	for _, p := range incompleteOpeners {
		if strings.HasPrefix(text, p) {
			return "", false
		}
	}

	text = truncateEnumeration(text)

	if examplePattern.MatchString(text) && !hasAnySuffix(text, exampleClosers) {
		text += "等"
	}

	for _, mw := range metaWords {
		text = strings.ReplaceAll(text, mw, "")
	}
	text = whitespacePattern.ReplaceAllString(text, "")
	text = strings.TrimRight(text, clauseTrailTrim)

	if utf8.RuneCountInString(text) < minClauseRunes {
		return "", false
	}
	return text, true
}

// truncateEnumeration 三项及以上的并列列举只保留前四项并加"等"
func truncateEnumeration(text string) string {
	body := strings.TrimRight(text, enumTrailingPunct)
	var items []string
	for _, it := range enumSplitPattern.Split(body, -1) {
		if it = strings.TrimSpace(it); it != "" {
			items = append(items, it)
		}
	}
	if len(items) < minEnumItems {
		return text
	}
	if len(items) > maxEnumItems {
		items = items[:maxEnumItems]
	}
	return strings.Join(items, "、") + "等"
}

// connector 选择子句前的连接词
func connector(idx int, prevText string) string {
	if idx == 0 {
		return connectWords[0]
	}
	last, _ := utf8.DecodeLastRuneInString(prevText)
	switch last {
	case '类', '型', '分':
		return "其中"
	case '例', '等':
		return "而"
	}
	return connectWords[idx%len(connectWords)]
}

// truncateSummary 在 [target-tol, target+tol) 内寻找最合适的标点截断
// 找不到时在 target+tol 处截断，并延伸到当前汉字串结束
func truncateSummary(summary []rune, target, tol int) string {
	start := max(0, target-tol)
	end := min(len(summary), target+tol)

	best, bestPriority, bestDist := -1, len(cutPunctuation), 0
	for i := start; i < end; i++ {
		p := punctPriority(summary[i])
		if p < 0 {
			continue
		}
		dist := abs(i - target)
		if p < bestPriority || (p == bestPriority && dist < bestDist) {
			best, bestPriority, bestDist = i, p, dist
		}
	}
	if best >= 0 {
		return string(summary[:best+1])
	}

	cut := min(target+tol, len(summary))
	for cut < len(summary) && isHan(summary[cut]) {
		cut++
	}
	return string(summary[:cut])
}

func punctPriority(r rune) int {
	for i, p := range cutPunctuation {
		if p == r {
			return i
		}
	}
	return -1
}

// canonicalize 规范化摘要结尾标点
func canonicalize(summary string, target int) string {
	summary = strings.TrimSpace(summary)
	summary = strings.TrimRight(summary, summaryTrailTrim)
	summary = semicolonRun.ReplaceAllString(summary, "；")
	summary = strings.ReplaceAll(summary, "等；", "等。")
	summary = terminalRun.ReplaceAllStringFunc(summary, func(run string) string {
		last, _ := utf8.DecodeLastRuneInString(run)
		return string(last)
	})

	if !hasAnySuffix(summary, summaryTerminals) {
		if utf8.RuneCountInString(summary) >= target {
			summary += "…"
		} else {
			summary += "。"
		}
	}
	return summary
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
