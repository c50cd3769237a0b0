package textproc

// DigitPolicy 数字处理策略
type DigitPolicy string

const (
	// DigitsKeep 保留数字
	DigitsKeep DigitPolicy = "keep"
	// DigitsStrip 去除数字
	DigitsStrip DigitPolicy = "strip"
)

// SegmentMode 切分模式
type SegmentMode string

const (
	// ModeSentence 切分为句子，用于摘要和核心句
	ModeSentence SegmentMode = "sentence"
	// ModeTokenStream 切分为词流，用于词云
	ModeTokenStream SegmentMode = "token_stream"
)

// CleanOptions 文本清洗配置
type CleanOptions struct {
	CaseFold       bool        // 英文转小写
	StripMath      bool        // 去除 $...$ 与 \begin{}...\end{} 公式
	Digits         DigitPolicy // 数字处理策略
	StripStopwords bool        // 词流模式下去除停用词和单字词
	Mode           SegmentMode // 切分模式
	ExtraStopwords []string    // 调用方追加的停用词
}

// DefaultCleanOptions 返回默认清洗配置
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		CaseFold:       true,
		StripMath:      true,
		Digits:         DigitsKeep,
		StripStopwords: true,
		Mode:           ModeSentence,
	}
}

// ScoreWeights 句子评分使用的经验常数
type ScoreWeights struct {
	Keyword       float64 `mapstructure:"keyword"`        // 关键词密度权重
	Length        float64 `mapstructure:"length"`         // 长度得分权重
	Structure     float64 `mapstructure:"structure"`      // 结构标志词加分
	Complete      float64 `mapstructure:"complete"`       // 完整标点加分
	ShortLength   float64 `mapstructure:"short_length"`   // 长度不合适时的长度得分
	MinLength     int     `mapstructure:"min_length"`     // 合适长度下限
	MaxLength     int     `mapstructure:"max_length"`     // 合适长度上限
	ExampleFactor float64 `mapstructure:"example_factor"` // 举例句的衰减系数

	// 英文占比分档及对应惩罚系数
	EnglishLow     float64 `mapstructure:"english_low"`
	EnglishMid     float64 `mapstructure:"english_mid"`
	EnglishHigh    float64 `mapstructure:"english_high"`
	PenaltyLow     float64 `mapstructure:"penalty_low"`
	PenaltyMid     float64 `mapstructure:"penalty_mid"`
	PenaltyHigh    float64 `mapstructure:"penalty_high"`
	CoreEnglishMax float64 `mapstructure:"core_english_max"` // 核心句允许的最大英文占比
}

// DefaultScoreWeights 返回默认评分常数
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Keyword:        0.6,
		Length:         0.2,
		Structure:      0.2,
		Complete:       0.1,
		ShortLength:    0.3,
		MinLength:      10,
		MaxLength:      200,
		ExampleFactor:  0.7,
		EnglishLow:     0.1,
		EnglishMid:     0.2,
		EnglishHigh:    0.4,
		PenaltyLow:     0.9,
		PenaltyMid:     0.7,
		PenaltyHigh:    0.3,
		CoreEnglishMax: 0.3,
	}
}

// penalty 根据英文占比返回惩罚系数
func (w ScoreWeights) penalty(ratio float64) float64 {
	switch {
	case ratio > w.EnglishHigh:
		return w.PenaltyHigh
	case ratio > w.EnglishMid:
		return w.PenaltyMid
	case ratio > w.EnglishLow:
		return w.PenaltyLow
	default:
		return 1.0
	}
}
