package textproc

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

//go:embed data/cn_stopwords.txt
var embeddedCNStopwords string

//go:embed data/en_stopwords.txt
var embeddedENStopwords string

// domainStopwords 编程课讲义里出现频率高但不区分内容的领域词
var domainStopwords = []string{
	"方法", "对象", "线程", "接口", "子类", "父类", "执行", "类型", "数组", "文件",
	"变量", "函数", "程序", "系统", "模块", "数据", "结构", "流程", "步骤", "实现",
	"设计", "分析", "测试", "部署", "维护", "优化", "性能", "安全", "用户", "需求",
}

// keywordFillers 关键词提取时额外过滤的虚词
var keywordFillers = []string{"的", "了", "是", "在", "有", "和", "就", "也", "都", "要", "能", "会"}

// Stopwords 停用词集合，构建后只读
type Stopwords struct {
	words map[string]struct{}
}

// NewStopwords 由词列表创建停用词集合
func NewStopwords(lists ...[]string) *Stopwords {
	s := &Stopwords{words: make(map[string]struct{})}
	for _, list := range lists {
		for _, w := range list {
			s.add(w)
		}
	}
	return s
}

func (s *Stopwords) add(w string) {
	w = strings.TrimSpace(w)
	if w == "" {
		return
	}
	s.words[w] = struct{}{}
}

// Contains 判断是否为停用词
func (s *Stopwords) Contains(w string) bool {
	if s == nil {
		return false
	}
	_, ok := s.words[w]
	return ok
}

// Len 返回停用词数量
func (s *Stopwords) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// With 返回追加了额外词的新集合，原集合不变
func (s *Stopwords) With(extra ...string) *Stopwords {
	out := &Stopwords{words: make(map[string]struct{}, s.Len()+len(extra))}
	if s != nil {
		for w := range s.words {
			out.words[w] = struct{}{}
		}
	}
	for _, w := range extra {
		out.add(w)
	}
	return out
}

// DefaultStopwords 内置中英文停用词与领域停用词
func DefaultStopwords() *Stopwords {
	cn := readWordList(strings.NewReader(embeddedCNStopwords), false)
	en := readWordList(strings.NewReader(embeddedENStopwords), true)
	return NewStopwords(cn, en, domainStopwords)
}

// LoadStopwords 从两个按行分隔的文件加载停用词，并合并领域停用词
// 文件不存在时跳过，改用内置词表
func LoadStopwords(cnPath, enPath string) (*Stopwords, error) {
	cn, err := loadWordFile(cnPath, false)
	if err != nil {
		return nil, err
	}
	if cn == nil {
		cn = readWordList(strings.NewReader(embeddedCNStopwords), false)
	}

	en, err := loadWordFile(enPath, true)
	if err != nil {
		return nil, err
	}
	if en == nil {
		en = readWordList(strings.NewReader(embeddedENStopwords), true)
	}

	return NewStopwords(cn, en, domainStopwords), nil
}

func loadWordFile(path string, lower bool) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open stopword file %s: %w", path, err)
	}
	defer f.Close()

	return readWordList(f, lower), nil
}

func readWordList(r io.Reader, lower bool) []string {
	words := []string{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w == "" {
			continue
		}
		if lower {
			w = strings.ToLower(w)
		}
		words = append(words, w)
	}
	return words
}
