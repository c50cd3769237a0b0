package textproc

import (
	"regexp"
	"strings"
	"sync"

	"github.com/go-ego/gse"
)

// TaggedWord 带词性的词
type TaggedWord struct {
	Word string
	Pos  string
}

// Tokenizer 中文分词器接口
type Tokenizer interface {
	// Cut 对一段汉字串分词
	Cut(text string) []string
	// Tag 分词并标注词性
	Tag(text string) []TaggedWord
}

// mixedTokenPattern 汉字串、英文串、数字串
var mixedTokenPattern = regexp.MustCompile(`([\x{4e00}-\x{9fff}]+)|([a-zA-Z]+)|(\d+)`)

// GseTokenizer 基于 gse 词典的分词器
type GseTokenizer struct {
	once   sync.Once
	seg    gse.Segmenter
	loaded bool
}

var (
	defaultTokenizer     *GseTokenizer
	defaultTokenizerOnce sync.Once
)

// DefaultTokenizer 返回进程内共享的 gse 分词器
// 词典只加载一次，加载后只读，可并发使用
func DefaultTokenizer() *GseTokenizer {
	defaultTokenizerOnce.Do(func() {
		defaultTokenizer = &GseTokenizer{}
	})
	return defaultTokenizer
}

func (t *GseTokenizer) load() {
	t.once.Do(func() {
		t.seg.SkipLog = true
		err := t.seg.LoadDictEmbed()
		if err != nil {
			err = t.seg.LoadDict()
		}
		t.loaded = err == nil
	})
}

// Cut 实现 Tokenizer
// 词典加载失败时整段汉字串作为一个词
func (t *GseTokenizer) Cut(text string) []string {
	t.load()
	if !t.loaded {
		return []string{text}
	}

	words := t.seg.Cut(text, true)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// Tag 实现 Tokenizer
func (t *GseTokenizer) Tag(text string) []TaggedWord {
	t.load()
	if !t.loaded {
		return nil
	}

	segs := t.seg.Pos(text, false)
	out := make([]TaggedWord, 0, len(segs))
	for _, s := range segs {
		w := strings.TrimSpace(s.Text)
		if w == "" {
			continue
		}
		out = append(out, TaggedWord{Word: w, Pos: s.Pos})
	}
	return out
}

// Tokenize 混合文本分词
// 汉字串交给分词器，英文串转小写，数字串原样保留
func Tokenize(tok Tokenizer, text string) []string {
	var tokens []string
	for _, m := range mixedTokenPattern.FindAllStringSubmatch(text, -1) {
		switch {
		case m[1] != "":
			tokens = append(tokens, tok.Cut(m[1])...)
		case m[2] != "":
			tokens = append(tokens, strings.ToLower(m[2]))
		case m[3] != "":
			tokens = append(tokens, m[3])
		}
	}
	return tokens
}
