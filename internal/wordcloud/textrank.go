package wordcloud

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fyerfyer/lecture-digest/internal/textproc"
)

const (
	textrankSpan     = 5
	textrankDamping  = 0.85
	textrankIters    = 10
	textrankTopK     = 200
	textrankMinScore = 0.01
	textrankMinRunes = 2
	textrankMaxRunes = 4
)

// candidatePOS 参与 TextRank 的词性：名词、动名词、形容词
var candidatePOS = map[string]bool{"n": true, "vn": true, "a": true}

func (b *Builder) tokenize(text string) []string {
	return textproc.Tokenize(b.analyzer.Tokenizer(), text)
}

// textRankWeights 在共现窗口图上迭代计算词的重要性
func (b *Builder) textRankWeights(text string) map[string]float64 {
	words := b.analyzer.Tokenizer().Tag(text)
	stop := b.analyzer.Stopwords()

	isCandidate := func(tw textproc.TaggedWord) bool {
		return candidatePOS[tw.Pos] &&
			utf8.RuneCountInString(tw.Word) >= 2 &&
			!stop.Contains(strings.ToLower(tw.Word))
	}

	g := newGraph()
	for i, w := range words {
		if !isCandidate(w) {
			continue
		}
		for j := i + 1; j < i+textrankSpan && j < len(words); j++ {
			if !isCandidate(words[j]) {
				continue
			}
			g.addEdge(w.Word, words[j].Word, 1)
		}
	}

	ranked := g.rank()
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Weight != ranked[j].Weight {
			return ranked[i].Weight > ranked[j].Weight
		}
		return ranked[i].Word < ranked[j].Word
	})
	if len(ranked) > textrankTopK {
		ranked = ranked[:textrankTopK]
	}

	weights := make(map[string]float64)
	for _, r := range ranked {
		n := utf8.RuneCountInString(r.Word)
		if n < textrankMinRunes || n > textrankMaxRunes || stop.Contains(r.Word) {
			continue
		}
		if r.Weight > textrankMinScore {
			weights[r.Word] = r.Weight
		}
	}
	return weights
}

type edge struct {
	to     string
	weight float64
}

// graph 无向带权共现图
type graph struct {
	edges map[string]map[string]float64
}

func newGraph() *graph {
	return &graph{edges: make(map[string]map[string]float64)}
}

func (g *graph) addEdge(a, b string, w float64) {
	if a == b {
		return
	}
	if g.edges[a] == nil {
		g.edges[a] = make(map[string]float64)
	}
	if g.edges[b] == nil {
		g.edges[b] = make(map[string]float64)
	}
	g.edges[a][b] += w
	g.edges[b][a] += w
}

// rank 按节点字典序原地迭代更新，最后按 (w - min/10) / (max - min/10) 归一化
func (g *graph) rank() []Weight {
	if len(g.edges) == 0 {
		return nil
	}

	nodes := make([]string, 0, len(g.edges))
	for n := range g.edges {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	ws := make(map[string]float64, len(nodes))
	outSum := make(map[string]float64, len(nodes))
	adj := make(map[string][]edge, len(nodes))
	start := 1.0 / float64(len(nodes))
	for _, n := range nodes {
		ws[n] = start
		for m, w := range g.edges[n] {
			outSum[n] += w
			adj[n] = append(adj[n], edge{to: m, weight: w})
		}
		sort.Slice(adj[n], func(i, j int) bool {
			return adj[n][i].to < adj[n][j].to
		})
	}

	for iter := 0; iter < textrankIters; iter++ {
		for _, n := range nodes {
			var s float64
			for _, e := range adj[n] {
				s += e.weight / outSum[e.to] * ws[e.to]
			}
			ws[n] = (1 - textrankDamping) + textrankDamping*s
		}
	}

	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for _, w := range ws {
		lo = math.Min(lo, w)
		hi = math.Max(hi, w)
	}
	denom := hi - lo/10.0

	out := make([]Weight, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Weight{Word: n, Weight: (ws[n] - lo/10.0) / denom})
	}
	return out
}
