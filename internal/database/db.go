package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fyerfyer/lecture-digest/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 全局数据库连接
var DB *gorm.DB

// Config 数据库配置
type Config struct {
	Type          string        // 数据库类型，目前只支持 sqlite
	DSN           string        // 数据源名称
	MaxOpenConns  int           // 最大打开连接数
	MaxIdleConns  int           // 最大空闲连接数
	MaxLifetime   time.Duration // 连接最大生命周期
	SlowThreshold time.Duration // 慢查询阈值
}

// DefaultConfig 返回默认数据库配置
func DefaultConfig() *Config {
	return &Config{
		Type:          "sqlite",
		DSN:           "data/lectures.db",
		MaxOpenConns:  10,
		MaxIdleConns:  5,
		MaxLifetime:   time.Hour,
		SlowThreshold: 200 * time.Millisecond,
	}
}

// Setup 打开数据库并设置全局连接
func Setup(cfg *Config, log *logrus.Logger) error {
	db, err := Open(cfg, log)
	if err != nil {
		return err
	}
	DB = db
	log.WithField("dsn", cfg.DSN).Info("Database connection established successfully")
	return nil
}

// Open 按配置打开连接、设置连接池并迁移表结构
func Open(cfg *Config, log *logrus.Logger) (*gorm.DB, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Type) {
	case "", "sqlite":
		if !isMemoryDSN(cfg.DSN) {
			if err := ensureDir(cfg.DSN); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	slow := cfg.SlowThreshold
	if slow <= 0 {
		slow = 200 * time.Millisecond
	}
	gormLogger := logger.New(
		&logrusWriter{log},
		logger.Config{
			SlowThreshold:             slow,
			LogLevel:                  gormLevel(log.GetLevel()),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}
	return db, nil
}

// Migrate 迁移讲义相关的表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Lecture{},
		&models.Analysis{},
	)
}

// MustDB 返回全局连接，未初始化时 panic
func MustDB() *gorm.DB {
	if DB == nil {
		panic("database not initialized, call database.Setup first")
	}
	return DB
}

// Close 关闭全局连接
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	DB = nil
	return sqlDB.Close()
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// ensureDir 确保数据库文件所在目录存在
func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

// gormLevel 将 logrus 级别映射到 GORM 日志级别
func gormLevel(level logrus.Level) logger.LogLevel {
	switch {
	case level >= logrus.TraceLevel:
		return logger.Info
	case level >= logrus.WarnLevel:
		return logger.Warn
	default:
		return logger.Error
	}
}

// logrusWriter 实现 logger.Writer 接口，将 GORM 日志转发到 logrus
type logrusWriter struct {
	logger *logrus.Logger
}

// Printf 转发一条 GORM 日志
func (w *logrusWriter) Printf(format string, args ...interface{}) {
	w.logger.WithField("component", "gorm").Debugf(format, args...)
}
