package textproc

import (
	"sort"
	"strings"
)

const maxChapterRunes = 500

// chapterMarks 章节标志，按检测顺序排列
var chapterMarks = []string{
	"第一章", "第二章", "第三章",
	"第一节", "第二节", "第三节", "第四节",
	"第一部分", "第二部分", "第三部分",
}

var chineseNumerals = []struct {
	numeral string
	value   int
}{{"一", 1}, {"二", 2}, {"三", 3}, {"四", 4}, {"五", 5}}

// Chapter 一个章节及其正文
type Chapter struct {
	Mark    string `json:"mark"`
	Content string `json:"content"`
}

// ChapterOutline 章节梳理结果
type ChapterOutline struct {
	Chapters []Chapter
	Status   Status
}

// ExtractChapters 按章节标志把句子归入章节
// 第一个章节标志出现之前的句子不归入任何章节，正文超过 500 字时截断
func ExtractChapters(sentences []string) ChapterOutline {
	if len(sentences) == 0 {
		return ChapterOutline{Chapters: []Chapter{}, Status: StatusDegenerate}
	}

	var order []string
	content := make(map[string][]string)
	current := ""
	for _, s := range sentences {
		for _, mark := range chapterMarks {
			if strings.Contains(s, mark) {
				current = mark
				if _, ok := content[mark]; !ok {
					order = append(order, mark)
					content[mark] = nil
				}
				break
			}
		}
		if current != "" {
			content[current] = append(content[current], s)
		}
	}
	if len(order) == 0 {
		return ChapterOutline{Chapters: []Chapter{}, Status: StatusDegenerate}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return chapterNumber(order[i]) < chapterNumber(order[j])
	})

	chapters := make([]Chapter, len(order))
	for i, mark := range order {
		full := []rune(strings.Join(content[mark], ""))
		text := string(full)
		if len(full) > maxChapterRunes {
			text = string(full[:maxChapterRunes]) + "..."
		}
		chapters[i] = Chapter{Mark: mark, Content: text}
	}
	return ChapterOutline{Chapters: chapters, Status: StatusOK}
}

func chapterNumber(mark string) int {
	for _, n := range chineseNumerals {
		if strings.Contains(mark, n.numeral) {
			return n.value
		}
	}
	return 0
}

// Format 以文本形式输出章节梳理结果
func (o ChapterOutline) Format() string {
	if len(o.Chapters) == 0 {
		return "未检测到章节结构标志"
	}
	var b strings.Builder
	b.WriteString("【章节结构与完整内容梳理】\n")
	for _, c := range o.Chapters {
		b.WriteString("\n" + c.Mark + "：\n")
		b.WriteString(c.Content + "\n")
	}
	return b.String()
}
