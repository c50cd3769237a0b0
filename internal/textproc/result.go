package textproc

// Status 标记一次计算结果的来源
// 调用方据此区分"没有可处理的内容"和"正常算出了一个空结果"
type Status string

const (
	// StatusOK 正常计算得到的结果
	StatusOK Status = "ok"
	// StatusDegenerate 输入退化（空文本、过短、词表为空），返回的是约定的兜底值
	StatusDegenerate Status = "degenerate"
	// StatusFallback 计算过程失败，返回的是未排序的替代结果
	StatusFallback Status = "fallback"
)

// IndexedSentence 携带原文位置的句子
type IndexedSentence struct {
	Text  string // 句子文本
	Index int    // 在输入列表中的位置
}

// indexSentences 为句子列表附加原始下标
func indexSentences(sentences []string) []IndexedSentence {
	out := make([]IndexedSentence, len(sentences))
	for i, s := range sentences {
		out[i] = IndexedSentence{Text: s, Index: i}
	}
	return out
}

// Segmentation 清洗与切分的结果
type Segmentation struct {
	Cleaned   string   // 清洗后的文本（词流模式下为空格连接的词序列）
	Sentences []string // 句子模式下的句子列表
	Tokens    []string // 词流模式下的词列表
	Status    Status
}

// KeywordSet 内容关键词集合，按重要性降序
type KeywordSet struct {
	Keywords []string
	Status   Status
}

// has 判断词是否属于关键词集合
func (k KeywordSet) has(word string) bool {
	for _, kw := range k.Keywords {
		if kw == word {
			return true
		}
	}
	return false
}

// SummaryResult 摘要生成结果
type SummaryResult struct {
	Summary string
	Status  Status
}

// CoreResult 核心句提取结果
type CoreResult struct {
	Sentences []string
	Status    Status
}
