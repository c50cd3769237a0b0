package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/fyerfyer/lecture-digest/internal/textproc"
	"github.com/fyerfyer/lecture-digest/internal/wordcloud"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config 应用程序配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Stopwords StopwordsConfig `mapstructure:"stopwords"`
	Polish    PolishConfig    `mapstructure:"polish"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`                                     // 监听地址
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`          // 监听端口
	Mode         string        `mapstructure:"mode" validate:"oneof=debug release test"` // gin 运行模式
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`                             // 读超时
	WriteTimeout time.Duration `mapstructure:"write_timeout"`                            // 写超时
	MaxUploadMB  int64         `mapstructure:"max_upload_mb" validate:"min=1"`           // 上传文件大小上限
	MaxTextRunes int           `mapstructure:"max_text_runes" validate:"min=1"`          // 文本接口允许的最大字符数
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=trace debug info warn error"` // 日志级别
	Format     string `mapstructure:"format" validate:"oneof=json text"`                 // 输出格式
	File       string `mapstructure:"file"`                                              // 日志文件，为空只输出到标准输出
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"min=1"`                      // 单个文件大小上限
	MaxBackups int    `mapstructure:"max_backups" validate:"min=0"`                      // 保留的旧文件数
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"min=0"`                     // 旧文件保留天数
	Compress   bool   `mapstructure:"compress"`                                          // 是否压缩旧文件
}

// StorageConfig 原件存储配置
type StorageConfig struct {
	Type      string `mapstructure:"type" validate:"oneof=local minio"`          // 存储类型：local 或 minio
	Path      string `mapstructure:"path"`                                       // 本地存储路径
	Bucket    string `mapstructure:"bucket" validate:"required_if=Type minio"`   // MinIO桶名称
	Endpoint  string `mapstructure:"endpoint" validate:"required_if=Type minio"` // MinIO端点
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"` // 是否使用SSL
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type string `mapstructure:"type" validate:"oneof=sqlite"` // 数据库类型
	DSN  string `mapstructure:"dsn" validate:"required"`      // 数据源名称
}

// CacheConfig 分析结果缓存配置
type CacheConfig struct {
	Enable   bool          `mapstructure:"enable"`                             // 是否启用缓存
	Type     string        `mapstructure:"type" validate:"oneof=memory redis"` // 缓存类型
	Address  string        `mapstructure:"address"`                            // Redis地址
	Password string        `mapstructure:"password"`                           // Redis密码
	DB       int           `mapstructure:"db"`                                 // Redis数据库
	TTL      time.Duration `mapstructure:"ttl"`                                // 缓存有效期
}

// QueueConfig 异步分析队列配置
type QueueConfig struct {
	Enable        bool          `mapstructure:"enable"`                                        // 是否启用任务队列
	RedisAddr     string        `mapstructure:"redis_addr" validate:"required_if=Enable true"` // Redis地址
	RedisPassword string        `mapstructure:"redis_password"`                                // Redis密码
	RedisDB       int           `mapstructure:"redis_db"`                                      // Redis数据库编号
	Concurrency   int           `mapstructure:"concurrency" validate:"min=1"`                  // 任务处理并发数
	RetryLimit    int           `mapstructure:"retry_limit" validate:"min=0"`                  // 任务最大重试次数
	RetryDelay    time.Duration `mapstructure:"retry_delay"`                                   // 重试延迟
}

// AnalysisConfig 文本分析参数
type AnalysisConfig struct {
	SummaryLength int                    `mapstructure:"summary_length" validate:"min=1"`                // 目标摘要长度
	Tolerance     int                    `mapstructure:"tolerance" validate:"min=0"`                     // 摘要长度容差
	MaxWords      int                    `mapstructure:"max_words" validate:"min=1"`                     // 词云最多词数
	KeywordMethod string                 `mapstructure:"keyword_method" validate:"oneof=tfidf textrank"` // 词云算法
	Workers       int                    `mapstructure:"workers" validate:"min=1"`                       // 全局分析时的并发数
	Dedup         wordcloud.DedupOptions `mapstructure:"dedup"`                                          // 包含关系去重参数
	Weights       textproc.ScoreWeights  `mapstructure:"weights"`                                        // 句子评分常数
}

// StopwordsConfig 停用词文件，为空时使用内置词表
type StopwordsConfig struct {
	CNPath string `mapstructure:"cn_path"`
	ENPath string `mapstructure:"en_path"`
}

// PolishConfig 大模型润色配置
type PolishConfig struct {
	Enable      bool          `mapstructure:"enable"`                                     // 是否启用润色
	Provider    string        `mapstructure:"provider"`                                   // 客户端类型
	BaseURL     string        `mapstructure:"base_url"`                                   // 聊天补全接口
	APIKey      string        `mapstructure:"api_key" validate:"required_if=Enable true"` // API密钥
	Model       string        `mapstructure:"model"`                                      // 模型名称
	Timeout     time.Duration `mapstructure:"timeout"`                                    // 请求超时
	Temperature float32       `mapstructure:"temperature"`                                // 采样温度
	MaxRetries  int           `mapstructure:"max_retries" validate:"min=0"`               // 最大重试次数
}

// LoadDotEnv 加载 .env 文件，文件不存在时忽略
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load 从文件和环境变量加载配置
// 配置文件不存在时使用默认值，环境变量 LECTURE_SERVER_PORT 形式的键可以覆盖任意配置项
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LECTURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
		logrus.WithField("path", configPath).Warn("Config file not found, using defaults")
	} else {
		logrus.WithField("path", v.ConfigFileUsed()).Info("Using config file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	expandSecrets(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 按结构体标签校验配置
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// expandSecrets 将 ${VAR} 形式的密钥替换为环境变量的值
func expandSecrets(cfg *Config) {
	for _, field := range []*string{
		&cfg.Polish.APIKey,
		&cfg.Storage.AccessKey,
		&cfg.Storage.SecretKey,
		&cfg.Cache.Password,
		&cfg.Queue.RedisPassword,
	} {
		*field = expandEnvRef(*field)
	}
}

// expandEnvRef 只处理整串为 ${VAR} 的值，变量未设置时保持原样
func expandEnvRef(value string) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}
	if envVal := os.Getenv(value[2 : len(value)-1]); envVal != "" {
		return envVal
	}
	return value
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.max_upload_mb", 20)
	v.SetDefault("server.max_text_runes", 200000)

	// 日志
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)

	// 存储
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.path", "./uploads")
	v.SetDefault("storage.bucket", "lectures")
	v.SetDefault("storage.use_ssl", false)

	// 数据库
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "data/lectures.db")

	// 缓存
	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.ttl", "24h")

	// 队列
	v.SetDefault("queue.enable", false)
	v.SetDefault("queue.redis_addr", "localhost:6379")
	v.SetDefault("queue.redis_db", 0)
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.retry_limit", 2)
	v.SetDefault("queue.retry_delay", "10s")

	// 分析参数
	v.SetDefault("analysis.summary_length", textproc.DefaultSummaryLength)
	v.SetDefault("analysis.tolerance", textproc.DefaultSummaryTolerance)
	v.SetDefault("analysis.max_words", wordcloud.DefaultMaxWords)
	v.SetDefault("analysis.keyword_method", string(wordcloud.MethodTFIDF))
	v.SetDefault("analysis.workers", 4)

	dedup := wordcloud.DefaultDedupOptions()
	v.SetDefault("analysis.dedup.min_keep", dedup.MinKeep)
	v.SetDefault("analysis.dedup.retry_pool", dedup.RetryPool)

	w := textproc.DefaultScoreWeights()
	for key, val := range map[string]interface{}{
		"keyword":          w.Keyword,
		"length":           w.Length,
		"structure":        w.Structure,
		"complete":         w.Complete,
		"short_length":     w.ShortLength,
		"min_length":       w.MinLength,
		"max_length":       w.MaxLength,
		"example_factor":   w.ExampleFactor,
		"english_low":      w.EnglishLow,
		"english_mid":      w.EnglishMid,
		"english_high":     w.EnglishHigh,
		"penalty_low":      w.PenaltyLow,
		"penalty_mid":      w.PenaltyMid,
		"penalty_high":     w.PenaltyHigh,
		"core_english_max": w.CoreEnglishMax,
	} {
		v.SetDefault("analysis.weights."+key, val)
	}

	// 润色
	v.SetDefault("polish.enable", false)
	v.SetDefault("polish.provider", "deepseek")
	v.SetDefault("polish.model", "deepseek-chat")
	v.SetDefault("polish.timeout", "30s")
	v.SetDefault("polish.temperature", 0.1)
	v.SetDefault("polish.max_retries", 2)
}
