package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fyerfyer/lecture-digest/api"
	"github.com/fyerfyer/lecture-digest/api/handler"
	"github.com/fyerfyer/lecture-digest/api/middleware"
	appconfig "github.com/fyerfyer/lecture-digest/config"
	"github.com/fyerfyer/lecture-digest/internal/cache"
	"github.com/fyerfyer/lecture-digest/internal/database"
	"github.com/fyerfyer/lecture-digest/internal/polish"
	"github.com/fyerfyer/lecture-digest/internal/repository"
	"github.com/fyerfyer/lecture-digest/internal/services"
	"github.com/fyerfyer/lecture-digest/internal/textproc"
	"github.com/fyerfyer/lecture-digest/internal/wordcloud"
	"github.com/fyerfyer/lecture-digest/pkg/storage"
	"github.com/fyerfyer/lecture-digest/pkg/taskqueue"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 命令行参数，非零值覆盖配置文件
type flags struct {
	ConfigFile string // 配置文件路径
	EnvFile    string // .env 文件路径
	Port       int    // 服务端口
	Mode       string // 运行模式 (debug/release)
	LogLevel   string // 日志级别
}

func main() {
	f := parseFlags()

	if err := appconfig.LoadDotEnv(f.EnvFile); err != nil {
		logrus.Fatalf("Failed to load env file: %v", err)
	}
	cfg, err := appconfig.Load(f.ConfigFile)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg, f)

	gin.SetMode(cfg.Server.Mode)

	logger := setupLogger(cfg.Log)
	middleware.SetLogger(logger)
	logger.Info("Starting lecture digest service...")

	if err := database.Setup(&database.Config{
		Type:          cfg.Database.Type,
		DSN:           cfg.Database.DSN,
		MaxOpenConns:  10,
		MaxIdleConns:  5,
		MaxLifetime:   time.Hour,
		SlowThreshold: 200 * time.Millisecond,
	}, logger); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	fileStorage, err := setupStorage(cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	analyzer, err := setupAnalyzer(cfg)
	if err != nil {
		logger.Fatalf("Failed to load stopwords: %v", err)
	}

	polisher, err := setupPolisher(cfg.Polish)
	if err != nil {
		logger.Fatalf("Failed to initialize polish client: %v", err)
	}
	if polisher.Enabled() {
		logger.WithField("model", cfg.Polish.Model).Info("Model polishing enabled")
	}

	analysisOpts := []services.AnalysisOption{
		services.WithAnalyzer(analyzer),
		services.WithDedupOptions(cfg.Analysis.Dedup),
		services.WithPolisher(polisher),
		services.WithLogger(logger),
		services.WithDefaultOptions(services.AnalysisOptions{
			SummaryLength: cfg.Analysis.SummaryLength,
			Tolerance:     cfg.Analysis.Tolerance,
			KeywordMethod: wordcloud.Method(cfg.Analysis.KeywordMethod),
			MaxWords:      cfg.Analysis.MaxWords,
		}),
	}
	if cfg.Cache.Enable {
		resultCache, err := cache.NewCache(cache.Config{
			Type:            cfg.Cache.Type,
			Prefix:          "lecture-digest",
			RedisAddr:       cfg.Cache.Address,
			RedisPassword:   cfg.Cache.Password,
			RedisDB:         cfg.Cache.DB,
			DefaultTTL:      cfg.Cache.TTL,
			CleanupInterval: 10 * time.Minute,
		})
		if err != nil {
			logger.Fatalf("Failed to initialize cache: %v", err)
		}
		if closer, ok := resultCache.(io.Closer); ok {
			defer closer.Close()
		}
		analysisOpts = append(analysisOpts, services.WithCache(resultCache, cfg.Cache.TTL))
	}
	analysisService := services.NewAnalysisService(analysisOpts...)

	lectureOpts := []services.LectureOption{
		services.WithLectureRepository(repository.NewLectureRepository()),
		services.WithAnalysisRepository(repository.NewAnalysisRepository()),
		services.WithWorkers(cfg.Analysis.Workers),
		services.WithLectureLogger(logger),
	}

	var worker *taskqueue.RedisWorker
	if cfg.Queue.Enable {
		qcfg := &taskqueue.Config{
			RedisAddr:     cfg.Queue.RedisAddr,
			RedisPassword: cfg.Queue.RedisPassword,
			RedisDB:       cfg.Queue.RedisDB,
			Concurrency:   cfg.Queue.Concurrency,
			RetryLimit:    cfg.Queue.RetryLimit,
			RetryDelay:    cfg.Queue.RetryDelay,
			TaskTTL:       taskqueue.DefaultConfig().TaskTTL,
		}
		queue, err := taskqueue.NewRedisQueue(qcfg, logger)
		if err != nil {
			logger.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer queue.Close()
		lectureOpts = append(lectureOpts, services.WithTaskQueue(queue))
		worker = taskqueue.NewRedisWorker(queue, qcfg)
		logger.Info("Lecture analysis will use async task queue")
	}
	lectureService := services.NewLectureService(fileStorage, analysisService, lectureOpts...)

	if worker != nil {
		worker.RegisterHandler(taskqueue.TaskLectureAnalyze, lectureService)
		if err := worker.Start(); err != nil {
			logger.Fatalf("Failed to start task worker: %v", err)
		}
		defer worker.Stop()
	}

	r := api.SetupRouter(
		handler.NewAnalysisHandler(analysisService, cfg.Server.MaxTextRunes),
		handler.NewLectureHandler(lectureService, cfg.Server.MaxUploadMB<<20, cfg.Server.WriteTimeout),
	)
	r.MaxMultipartMemory = cfg.Server.MaxUploadMB << 20

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Server is running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// parseFlags 解析命令行参数
func parseFlags() flags {
	f := flags{}
	flag.StringVar(&f.ConfigFile, "config", "config.yaml", "Config file path")
	flag.StringVar(&f.EnvFile, "env", ".env", "Env file path")
	flag.IntVar(&f.Port, "port", 0, "Server port, overrides config")
	flag.StringVar(&f.Mode, "mode", "", "Run mode (debug/release), overrides config")
	flag.StringVar(&f.LogLevel, "log-level", "", "Log level (debug/info/warn/error), overrides config")
	flag.Parse()
	return f
}

func applyFlags(cfg *appconfig.Config, f flags) {
	if f.Port > 0 {
		cfg.Server.Port = f.Port
	}
	if f.Mode != "" {
		cfg.Server.Mode = f.Mode
	}
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
}

// setupLogger 初始化日志，配置了文件时同时写入滚动日志文件
func setupLogger(cfg appconfig.LogConfig) *logrus.Logger {
	logger := logrus.New()

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.File == "" {
		logger.SetOutput(os.Stdout)
		return logger
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}))
	return logger
}

// setupStorage 初始化原件存储
func setupStorage(cfg appconfig.StorageConfig) (storage.Storage, error) {
	return storage.New(storage.Config{
		Type:  cfg.Type,
		Local: storage.LocalConfig{Path: cfg.Path},
		Minio: storage.MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
		},
	})
}

// setupAnalyzer 按配置加载停用词和评分常数
func setupAnalyzer(cfg *appconfig.Config) (*textproc.Analyzer, error) {
	opts := []textproc.Option{textproc.WithScoreWeights(cfg.Analysis.Weights)}
	if cfg.Stopwords.CNPath != "" || cfg.Stopwords.ENPath != "" {
		stopwords, err := textproc.LoadStopwords(cfg.Stopwords.CNPath, cfg.Stopwords.ENPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, textproc.WithStopwords(stopwords))
	}
	return textproc.NewAnalyzer(opts...), nil
}

// setupPolisher 初始化润色器，未启用时返回只做透传的润色器
func setupPolisher(cfg appconfig.PolishConfig) (*polish.Polisher, error) {
	if !cfg.Enable {
		return polish.NewPolisher(nil), nil
	}
	opts := []polish.Option{
		polish.WithAPIKey(cfg.APIKey),
		polish.WithModel(cfg.Model),
		polish.WithTimeout(cfg.Timeout),
		polish.WithMaxRetries(cfg.MaxRetries),
		polish.WithTemperature(cfg.Temperature),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, polish.WithBaseURL(cfg.BaseURL))
	}
	client, err := polish.NewClient(cfg.Provider, opts...)
	if err != nil {
		return nil, err
	}
	return polish.NewPolisher(client), nil
}
