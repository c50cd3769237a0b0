package textproc

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

var (
	blockMathPattern   = regexp.MustCompile(`(?s)\$\$.*?\$\$`)
	inlineMathPattern  = regexp.MustCompile(`\$[^$\n]*\$`)
	latexEnvPattern    = regexp.MustCompile(`(?s)\\begin\{[^}]*\}.*?\\end\{[^}]*\}`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
	digitPattern       = regexp.MustCompile(`\d+`)
	sentenceSplitRunes = "。！？；,."
)

// minSentenceRunes 句子的最小长度（不含句号）
const minSentenceRunes = 5

func isHan(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isValidRune 汉字、英文字母、数字
func isValidRune(r rune) bool {
	return isHan(r) || isASCIILetter(r) || isASCIIDigit(r)
}

// isAllowedRune 第二步字符白名单
func isAllowedRune(r rune) bool {
	if isValidRune(r) || unicode.IsSpace(r) {
		return true
	}
	return strings.ContainsRune("。！？；,.%％¥￥", r)
}

// isCoreRune 第四步连续片段过滤使用的核心字符
func isCoreRune(r rune) bool {
	if isValidRune(r) || r == ' ' {
		return true
	}
	return strings.ContainsRune(sentenceSplitRunes, r)
}

// foldWidth 全角字母数字转半角，全角空格转普通空格
// 全角标点保持不变，由白名单决定去留
func foldWidth(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '　' {
			return ' '
		}
		if r < 0xFF01 || r > 0xFF5E {
			return r
		}
		if narrow := width.LookupRune(r).Narrow(); isASCIILetter(narrow) || isASCIIDigit(narrow) {
			return narrow
		}
		return r
	}, text)
}

// stripMath 去除 LaTeX 公式
func stripMath(text string) string {
	text = blockMathPattern.ReplaceAllString(text, "")
	text = inlineMathPattern.ReplaceAllString(text, "")
	return latexEnvPattern.ReplaceAllString(text, "")
}

// filterGarbageLines 丢弃有效字符占比低于一半的行和空行
func filterGarbageLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		total := utf8.RuneCountInString(strings.TrimSpace(line))
		if total == 0 {
			continue
		}
		valid := 0
		for _, r := range line {
			if isValidRune(r) {
				valid++
			}
		}
		if float64(valid)/float64(total) >= 0.5 {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// keepCoreRuns 只保留长度不小于 2 的核心字符连续片段
// 夹在噪声之间的单个字符视为噪声
func keepCoreRuns(text string) string {
	var b, run strings.Builder
	runLen := 0
	flush := func() {
		if runLen >= 2 {
			b.WriteString(run.String())
		}
		run.Reset()
		runLen = 0
	}
	for _, r := range text {
		if isCoreRune(r) {
			run.WriteRune(r)
			runLen++
			continue
		}
		flush()
	}
	flush()
	return b.String()
}

// CleanAndSegment 使用默认分析器清洗并切分文本
func CleanAndSegment(text string, opts CleanOptions) Segmentation {
	return Default().CleanAndSegment(text, opts)
}

// CleanAndSegment 清洗原始文本并切分为句子或词流
// 输入无法解析时返回空结果与 StatusDegenerate，不会失败
func (a *Analyzer) CleanAndSegment(text string, opts CleanOptions) Segmentation {
	cleaned := a.normalize(text, opts)

	if opts.Mode == ModeTokenStream {
		tokens := a.tokenStream(cleaned, opts)
		seg := Segmentation{
			Cleaned: strings.Join(tokens, " "),
			Tokens:  tokens,
			Status:  StatusOK,
		}
		if len(tokens) == 0 {
			seg.Status = StatusDegenerate
		}
		return seg
	}

	cleaned = whitespacePattern.ReplaceAllString(cleaned, "")
	sentences := splitSentences(cleaned)
	seg := Segmentation{
		Cleaned:   cleaned,
		Sentences: sentences,
		Status:    StatusOK,
	}
	if len(sentences) == 0 {
		seg.Status = StatusDegenerate
	}
	return seg
}

// normalize 执行与切分模式无关的清洗步骤
func (a *Analyzer) normalize(text string, opts CleanOptions) string {
	text = foldWidth(text)
	if opts.StripMath {
		text = stripMath(text)
	}

	text = filterGarbageLines(text)
	text = strings.Map(func(r rune) rune {
		if isAllowedRune(r) {
			return r
		}
		return -1
	}, text)
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = keepCoreRuns(text)

	if opts.CaseFold {
		text = strings.ToLower(text)
	}
	if opts.Digits == DigitsStrip {
		text = digitPattern.ReplaceAllString(text, "")
	}
	return text
}

func splitSentences(text string) []string {
	pieces := strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(sentenceSplitRunes, r)
	})
	sentences := make([]string, 0, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) < minSentenceRunes {
			continue
		}
		sentences = append(sentences, p+"。")
	}
	return sentences
}

func (a *Analyzer) tokenStream(text string, opts CleanOptions) []string {
	tokens := Tokenize(a.tokenizer, text)
	if !opts.StripStopwords {
		return tokens
	}

	stop := a.stopwords
	if len(opts.ExtraStopwords) > 0 {
		stop = stop.With(opts.ExtraStopwords...)
	}
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if stop.Contains(t) || isASCIIPunct(t) || utf8.RuneCountInString(t) < 2 {
			continue
		}
		out = append(out, t)
	}
	return out
}

const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

func isASCIIPunct(t string) bool {
	return len(t) == 1 && strings.Contains(asciiPunctuation, t)
}
