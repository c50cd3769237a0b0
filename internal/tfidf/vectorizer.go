// Package tfidf 实现词袋 TF-IDF 向量化
// 计算方式与 scikit-learn 的 TfidfVectorizer 默认参数一致：
// 平滑 idf、原始词频、按行 L2 归一化
package tfidf

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var (
	// ErrEmptyVocabulary 语料中没有任何词
	ErrEmptyVocabulary = errors.New("empty vocabulary")
	// ErrNoTermsRemain 按文档频率剪枝后没有剩余的词
	ErrNoTermsRemain = errors.New("after pruning, no terms remain")
	// ErrInvalidDocumentFrequency MaxDF 对应的文档数小于 MinDF
	ErrInvalidDocumentFrequency = errors.New("max_df corresponds to fewer documents than min_df")
)

// Vectorizer TF-IDF 向量化参数
type Vectorizer struct {
	NGramMin    int     // n-gram 最小长度，默认 1
	NGramMax    int     // n-gram 最大长度，默认等于 NGramMin
	MinDF       int     // 最少出现的文档数，默认 1
	MaxDF       float64 // 最多出现的文档比例，默认 1.0
	MaxFeatures int     // 按语料词频保留的最大特征数，0 表示不限制
}

// TermWeight 词与权重
type TermWeight struct {
	Term   string
	Weight float64
}

// Matrix 文档-词权重矩阵
type Matrix struct {
	Terms []string    // 按字典序排列的特征
	Rows  [][]float64 // 每个文档一行
}

// Sum 按列求和，结果按特征字典序排列
func (m *Matrix) Sum() []TermWeight {
	out := make([]TermWeight, len(m.Terms))
	for j, t := range m.Terms {
		out[j].Term = t
		for _, row := range m.Rows {
			out[j].Weight += row[j]
		}
	}
	return out
}

// Ranked 按列求和并按权重降序排列，权重相同按字典序
func (m *Matrix) Ranked() []TermWeight {
	out := m.Sum()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weight > out[j].Weight
	})
	return out
}

func (v Vectorizer) ngramRange() (int, int) {
	lo, hi := v.NGramMin, v.NGramMax
	if lo <= 0 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// ngrams 生成 n-gram，多个词之间以空格连接
func (v Vectorizer) ngrams(tokens []string) []string {
	lo, hi := v.ngramRange()
	var out []string
	for n := lo; n <= hi; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

// FitTransform 对已分词的文档集合计算 TF-IDF 矩阵
func (v Vectorizer) FitTransform(docs [][]string) (*Matrix, error) {
	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	tf := make(map[string]int)
	for i, doc := range docs {
		counts[i] = make(map[string]int)
		for _, g := range v.ngrams(doc) {
			counts[i][g]++
			tf[g]++
		}
		for g := range counts[i] {
			df[g]++
		}
	}
	if len(df) == 0 {
		return nil, ErrEmptyVocabulary
	}

	terms, err := v.limitFeatures(df, tf, len(docs))
	if err != nil {
		return nil, err
	}

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for j, t := range terms {
		idf[j] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}

	rows := make([][]float64, len(docs))
	for i := range docs {
		row := make([]float64, len(terms))
		var norm float64
		for j, t := range terms {
			row[j] = float64(counts[i][t]) * idf[j]
			norm += row[j] * row[j]
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j] /= norm
			}
		}
		rows[i] = row
	}

	return &Matrix{Terms: terms, Rows: rows}, nil
}

// limitFeatures 按文档频率剪枝并限制特征数，返回字典序特征列表
func (v Vectorizer) limitFeatures(df, tf map[string]int, nDocs int) ([]string, error) {
	minDF := v.MinDF
	if minDF <= 0 {
		minDF = 1
	}
	maxDF := v.MaxDF
	if maxDF <= 0 {
		maxDF = 1.0
	}
	maxDocCount := maxDF * float64(nDocs)
	if maxDocCount < float64(minDF) {
		return nil, fmt.Errorf("%w: max_df=%.2f min_df=%d docs=%d", ErrInvalidDocumentFrequency, maxDF, minDF, nDocs)
	}

	terms := make([]string, 0, len(df))
	for t, d := range df {
		if float64(d) > maxDocCount || d < minDF {
			continue
		}
		terms = append(terms, t)
	}
	if len(terms) == 0 {
		return nil, ErrNoTermsRemain
	}
	sort.Strings(terms)

	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		sort.SliceStable(terms, func(i, j int) bool {
			return tf[terms[i]] > tf[terms[j]]
		})
		terms = terms[:v.MaxFeatures]
		sort.Strings(terms)
	}
	return terms, nil
}
