package wordcloud

import (
	"unicode/utf8"

	"github.com/fyerfyer/lecture-digest/internal/tfidf"
)

const (
	chunkSize      = 8
	minChunkTokens = 5
	minTFIDFWeight = 0.001
)

// phraseVectorizer 2-3 元词组，至少出现在 2 个伪文档中
var phraseVectorizer = tfidf.Vectorizer{
	NGramMin:    2,
	NGramMax:    3,
	MinDF:       2,
	MaxDF:       0.8,
	MaxFeatures: 500,
}

// tfidfWeights 把词流按 8 个词切成伪文档，计算词组的 TF-IDF 并按列求和
func (b *Builder) tfidfWeights(text string) map[string]float64 {
	tokens := b.tokenize(text)
	stop := b.analyzer.Stopwords()

	var clean []string
	for _, t := range tokens {
		if utf8.RuneCountInString(t) >= 2 && !stop.Contains(t) {
			clean = append(clean, t)
		}
	}

	var docs [][]string
	if len(clean) < minChunkTokens {
		var doc []string
		for _, t := range tokens {
			if !stop.Contains(t) {
				doc = append(doc, t)
			}
		}
		docs = [][]string{doc}
	} else {
		for i := 0; i < len(clean); i += chunkSize {
			docs = append(docs, clean[i:min(i+chunkSize, len(clean))])
		}
	}

	m, err := phraseVectorizer.FitTransform(docs)
	if err != nil {
		return nil
	}

	weights := make(map[string]float64)
	for _, tw := range m.Sum() {
		if tw.Weight > minTFIDFWeight {
			weights[tw.Term] = tw.Weight
		}
	}
	return weights
}
