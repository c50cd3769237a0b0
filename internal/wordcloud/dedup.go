package wordcloud

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// DedupOptions 包含关系去重参数
type DedupOptions struct {
	MinKeep   int `mapstructure:"min_keep"`   // 保留数少于该值时在高权重候选中重试
	RetryPool int `mapstructure:"retry_pool"` // 重试时使用的候选数
}

// DefaultDedupOptions 返回默认去重参数
func DefaultDedupOptions() DedupOptions {
	return DedupOptions{MinKeep: 20, RetryPool: 30}
}

// FilterDuplicates 去除互为子串的关键词
// 先按长度、再按权重降序贪心保留；保留太少时只在权重最高的 RetryPool 个候选中重做一次
func FilterDuplicates(weights map[string]float64, opts DedupOptions) map[string]float64 {
	if len(weights) == 0 {
		return map[string]float64{}
	}

	candidates := make([]Weight, 0, len(weights))
	for word, w := range weights {
		candidates = append(candidates, Weight{Word: word, Weight: w})
	}

	sort.Slice(candidates, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(candidates[i].Word), utf8.RuneCountInString(candidates[j].Word)
		if li != lj {
			return li > lj
		}
		if candidates[i].Weight != candidates[j].Weight {
			return candidates[i].Weight > candidates[j].Weight
		}
		return candidates[i].Word < candidates[j].Word
	})
	kept := collapse(candidates, 0)

	if len(kept) < opts.MinKeep && len(weights) >= opts.MinKeep {
		sortWeights(candidates)
		if opts.RetryPool > 0 && len(candidates) > opts.RetryPool {
			candidates = candidates[:opts.RetryPool]
		}
		kept = collapse(candidates, opts.MinKeep)
	}
	return kept
}

// collapse 依次保留与已保留词没有包含关系的词，limit 为 0 表示不限数量
func collapse(candidates []Weight, limit int) map[string]float64 {
	kept := make(map[string]float64)
	var reserved []string
	for _, c := range candidates {
		if utf8.RuneCountInString(c.Word) < 2 {
			continue
		}
		if overlaps(c.Word, reserved) {
			continue
		}
		kept[c.Word] = c.Weight
		reserved = append(reserved, c.Word)
		if limit > 0 && len(kept) >= limit {
			break
		}
	}
	return kept
}

func overlaps(word string, reserved []string) bool {
	for _, r := range reserved {
		if strings.Contains(r, word) || strings.Contains(word, r) {
			return true
		}
	}
	return false
}
