package polish

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// EmptySummaryText 摘要为空时的润色结果
const EmptySummaryText = "无有效摘要内容"

// NoSuggestionText 没有可用内容时的学习建议
const NoSuggestionText = "暂无有效内容生成学习建议"

// DefaultSuggestions 未配置模型时的学习建议
var DefaultSuggestions = []string{
	"1. 先用自己的话复述摘要中的核心结论",
	"2. 围绕核心知识点逐条整理笔记与例题",
	"3. 将关键词与概念画成思维导图进行关联",
}

// FallbackSuggestions 模型调用失败时的学习建议
var FallbackSuggestions = []string{
	"1. 优先掌握摘要中的核心内容",
	"2. 逐一梳理核心知识点的逻辑",
	"3. 尝试用自己的话复述关键概念",
}

// 题型说明
var questionGuidance = map[string]string{
	"概念解释题":       "题目聚焦概念/术语：给出定义、关键要点、作用/意义，答案需包含要点列表。",
	"关键句理解题":      "题目给出或引用核心句，要求解释句子含义、隐含假设、在整体知识体系中的作用，答案需逐步说明。",
	"简答题（重点信息提炼）": "题目要求提炼流程/方法/要点/对比/应用场景，答案需条理化（分点）。",
}

// Polisher 对分析结果做语言润色
// client 为 nil 时所有操作原样返回输入
type Polisher struct {
	client Client
}

// NewPolisher 创建润色器，client 可以为 nil
func NewPolisher(client Client) *Polisher {
	return &Polisher{client: client}
}

// Enabled 是否配置了模型
func (p *Polisher) Enabled() bool {
	return p != nil && p.client != nil
}

func (p *Polisher) complete(ctx context.Context, prompt string, temp float32, maxTokens int) (string, error) {
	if !p.Enabled() {
		return "", NewPolishError(ErrCodeDisabled, ErrMsgDisabled)
	}
	resp, err := p.client.Chat(ctx,
		[]Message{{Role: RoleUser, Content: prompt}},
		WithChatTemperature(temp),
		WithChatMaxTokens(maxTokens),
	)
	if err != nil {
		return "", WrapError(err, ErrCodeServerError)
	}
	return strings.TrimSpace(resp.Text), nil
}

// OptimizeSummary 润色摘要
// 失败时返回原摘要和错误，调用方可以只记录错误
func (p *Polisher) OptimizeSummary(ctx context.Context, summary string) (string, error) {
	if strings.TrimSpace(summary) == "" {
		return EmptySummaryText, nil
	}
	if !p.Enabled() {
		return summary, nil
	}

	prompt := fmt.Sprintf(`请对以下课程摘要进行语言优化，要求：
1. 保持原意不变；
2. 更加通顺、逻辑更清晰；
3. 输出为一段文字，不要分点。

摘要：%s`, summary)

	out, err := p.complete(ctx, prompt, 0.1, 200)
	if err != nil {
		return summary, err
	}
	if out == "" {
		return summary, NewPolishError(ErrCodeBadOutput, "empty summary from model")
	}
	if !hasTerminal(out) {
		out += "。"
	}
	return out, nil
}

// OptimizeCore 润色核心句，模型输出按编号列表解析
func (p *Polisher) OptimizeCore(ctx context.Context, sentences []string) ([]string, error) {
	if len(sentences) == 0 {
		return []string{}, nil
	}
	if !p.Enabled() {
		return sentences, nil
	}

	prompt := fmt.Sprintf(`请将以下核心知识点句子优化为更通顺、更专业的表达，要求：
1. 保持原意不变；
2. 每条仍为一句话；
3. 仍输出为编号列表（1. 2. 3. ...）。

原句：
%s`, numbered(sentences))

	out, err := p.complete(ctx, prompt, 0.1, 500)
	if err != nil {
		return sentences, err
	}
	items := ParseNumberedList(out)
	if len(items) == 0 {
		return sentences, NewPolishError(ErrCodeBadOutput, "no numbered items in model output")
	}
	return items, nil
}

// Suggest 根据摘要和核心句生成 3-5 条学习建议
func (p *Polisher) Suggest(ctx context.Context, summary string, core []string) ([]string, error) {
	if strings.TrimSpace(summary) == "" || len(core) == 0 {
		return []string{NoSuggestionText}, nil
	}
	if !p.Enabled() {
		return append([]string(nil), DefaultSuggestions...), nil
	}

	prompt := fmt.Sprintf(`请基于以下课程内容，生成3-5条简洁的学习建议，要求：
1. 每条建议单独一行，用数字序号开头；
2. 结合核心知识点，针对性强；
3. 语言简洁（每条约20字）；
4. 覆盖“理解概念”“重点练习”“关联拓展”等维度。

课程摘要：%s
核心知识点：%s`, summary, numbered(core))

	out, err := p.complete(ctx, prompt, 0.5, 300)
	if err != nil {
		return append([]string(nil), FallbackSuggestions...), err
	}

	var suggestions []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && startsWithDigit(line) {
			suggestions = append(suggestions, line)
		}
	}
	if len(suggestions) == 0 {
		return append([]string(nil), FallbackSuggestions...), NewPolishError(ErrCodeBadOutput, "no suggestions in model output")
	}
	return suggestions, nil
}

// ReviewQuestions 生成带答案的复习题，模型必须输出 JSON 数组
func (p *Polisher) ReviewQuestions(ctx context.Context, summary string, core []string, questionType string, n int, requirements string) ([]Question, error) {
	if n <= 0 {
		return []Question{}, nil
	}
	if !p.Enabled() {
		return nil, NewPolishError(ErrCodeDisabled, ErrMsgDisabled)
	}

	guidance, ok := questionGuidance[questionType]
	if !ok {
		guidance = "题目需紧扣讲义内容，答案清晰可核对。"
	}
	req := strings.TrimSpace(requirements)
	if req == "" {
		req = "无"
	}

	prompt := fmt.Sprintf(`你是一位严谨的课程助教。请严格基于给定的课程摘要与核心知识点生成复习题。

【课程摘要】
%s

【核心知识点】
%s

【题型】%s
【题型要求】%s

【额外出题要求】
%s

【生成要求】
1. 生成 %d 道题。
2. 每道题都必须给出标准答案，答案要可直接用于自测。
3. 不要输出与课程无关的泛泛题。
4. 输出必须是 JSON 数组，且只能输出 JSON，不要输出任何额外文本。

JSON 格式示例：
[
  {"question": "...", "answer": "..."}
]`, strings.TrimSpace(summary), numbered(core), questionType, guidance, req, n)

	out, err := p.complete(ctx, prompt, 0.4, 1200)
	if err != nil {
		return nil, err
	}
	return parseQuestions(out)
}

// parseQuestions 解析 JSON 数组，允许数组前后有多余文本
func parseQuestions(out string) ([]Question, error) {
	var raw []Question
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		start, end := strings.Index(out, "["), strings.LastIndex(out, "]")
		if start == -1 || end <= start {
			return nil, NewPolishError(ErrCodeBadOutput, fmt.Sprintf("model output is not a JSON array: %v", err))
		}
		if err := json.Unmarshal([]byte(out[start:end+1]), &raw); err != nil {
			return nil, NewPolishError(ErrCodeBadOutput, fmt.Sprintf("model output is not a JSON array: %v", err))
		}
	}

	questions := make([]Question, 0, len(raw))
	for _, q := range raw {
		q.Question = strings.TrimSpace(q.Question)
		q.Answer = strings.TrimSpace(q.Answer)
		if q.Question != "" {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

// ParseNumberedList 从 "1. xxx" 形式的多行文本中取出各项内容
func ParseNumberedList(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !startsWithDigit(line) {
			continue
		}
		if i := strings.Index(line, "."); i >= 0 {
			line = line[i+1:]
		}
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	return items
}

func numbered(items []string) string {
	lines := make([]string, len(items))
	for i, s := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, s)
	}
	return strings.Join(lines, "\n")
}

func startsWithDigit(s string) bool {
	for _, r := range s {
		return unicode.IsDigit(r)
	}
	return false
}

func hasTerminal(s string) bool {
	for _, t := range []string{"。", "！", "？", "；"} {
		if strings.HasSuffix(s, t) {
			return true
		}
	}
	return false
}
