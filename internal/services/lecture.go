package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fyerfyer/lecture-digest/internal/cache"
	"github.com/fyerfyer/lecture-digest/internal/document"
	"github.com/fyerfyer/lecture-digest/internal/models"
	"github.com/fyerfyer/lecture-digest/internal/polish"
	"github.com/fyerfyer/lecture-digest/internal/repository"
	"github.com/fyerfyer/lecture-digest/internal/textproc"
	"github.com/fyerfyer/lecture-digest/internal/wordcloud"
	"github.com/fyerfyer/lecture-digest/pkg/storage"
	"github.com/fyerfyer/lecture-digest/pkg/taskqueue"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// LectureService 讲义服务
// 负责协调原件存储、文本抽取、分析和结果持久化
type LectureService struct {
	storage      storage.Storage               // 原件存储
	engine       *AnalysisService              // 文本分析
	repo         repository.LectureRepository  // 讲义元数据
	analysisRepo repository.AnalysisRepository // 分析结果
	taskQueue    taskqueue.Queue               // 任务队列
	asyncEnabled bool                          // 是否异步分析
	workers      int                           // 全局分析时的并发数
	logger       *logrus.Logger                // 日志记录器
}

// LectureOption 讲义服务配置选项
type LectureOption func(*LectureService)

// WithLectureRepository 设置讲义仓储
func WithLectureRepository(repo repository.LectureRepository) LectureOption {
	return func(s *LectureService) {
		s.repo = repo
	}
}

// WithAnalysisRepository 设置分析结果仓储
func WithAnalysisRepository(repo repository.AnalysisRepository) LectureOption {
	return func(s *LectureService) {
		s.analysisRepo = repo
	}
}

// WithTaskQueue 设置任务队列，设置后上传的讲义由后台任务分析
func WithTaskQueue(queue taskqueue.Queue) LectureOption {
	return func(s *LectureService) {
		s.taskQueue = queue
		s.asyncEnabled = queue != nil
	}
}

// WithWorkers 设置全局分析的并发数
func WithWorkers(n int) LectureOption {
	return func(s *LectureService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLectureLogger 设置日志记录器
func WithLectureLogger(logger *logrus.Logger) LectureOption {
	return func(s *LectureService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewLectureService 创建讲义服务
// 未设置仓储时使用全局数据库连接
func NewLectureService(store storage.Storage, engine *AnalysisService, opts ...LectureOption) *LectureService {
	s := &LectureService{
		storage: store,
		engine:  engine,
		workers: 4,
		logger:  logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = NewAnalysisService(WithLogger(s.logger))
	}
	if s.repo == nil {
		s.repo = repository.NewLectureRepository()
	}
	if s.analysisRepo == nil {
		s.analysisRepo = repository.NewAnalysisRepository()
	}
	return s
}

// AsyncEnabled 是否通过任务队列分析
func (s *LectureService) AsyncEnabled() bool {
	return s.asyncEnabled && s.taskQueue != nil
}

// Upload 保存上传的讲义并抽取文本
// 同步模式下立即完成分析，异步模式下返回时讲义处于 uploaded 状态
func (s *LectureService) Upload(ctx context.Context, r io.Reader, filename string, opts AnalysisOptions) (*models.Lecture, error) {
	if !document.IsSupported(filename) {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedType, filepath.Ext(filename))
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	text, err := document.ParseReader(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w", filename, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", models.ErrEmptyContent, filename)
	}

	info, err := s.storage.Save(ctx, bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", filename, err)
	}

	meta, _ := json.Marshal(map[string]string{"mime_type": info.MimeType})
	lecture := &models.Lecture{
		ID:          info.ID,
		FileName:    filename,
		FileType:    string(document.DetectContentType(filename)),
		FilePath:    info.Path,
		FileSize:    info.Size,
		ContentHash: cache.ContentHash(text),
		Content:     text,
		Status:      models.LectureStatusUploaded,
		Metadata:    datatypes.JSON(meta),
	}
	if err := s.repo.Create(lecture); err != nil {
		if delErr := s.storage.Delete(ctx, info.Path); delErr != nil {
			s.logger.WithError(delErr).Warn("Failed to remove stored file after create failure")
		}
		return nil, fmt.Errorf("failed to save lecture: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"lecture_id": lecture.ID,
		"file_name":  filename,
		"size":       info.Size,
	}).Info("Lecture uploaded")

	if s.AsyncEnabled() {
		if err := s.enqueueAnalysis(ctx, lecture, opts); err != nil {
			return nil, err
		}
		return lecture, nil
	}

	if _, err := s.AnalyzeLecture(ctx, lecture.ID, opts); err != nil {
		return nil, err
	}
	return s.repo.GetByID(lecture.ID)
}

// enqueueAnalysis 把讲义分析加入任务队列
func (s *LectureService) enqueueAnalysis(ctx context.Context, lecture *models.Lecture, opts AnalysisOptions) error {
	opts = opts.withDefaults(s.engine.Defaults())
	payload := taskqueue.LectureAnalyzePayload{
		LectureID:     lecture.ID,
		SummaryLength: opts.SummaryLength,
		Tolerance:     opts.Tolerance,
		KeywordMethod: string(opts.KeywordMethod),
		MaxWords:      opts.MaxWords,
		Polish:        opts.Polish,
	}

	taskID, err := s.taskQueue.Enqueue(ctx, taskqueue.TaskLectureAnalyze, lecture.ID, payload)
	if err != nil {
		_ = s.repo.UpdateStatus(lecture.ID, models.LectureStatusFailed, err.Error())
		return fmt.Errorf("failed to enqueue analysis: %w", err)
	}
	if err := s.repo.SetTask(lecture.ID, taskID); err != nil {
		s.logger.WithError(err).Warn("Failed to record task id on lecture")
	}
	lecture.CurrentTaskID = taskID

	s.logger.WithFields(logrus.Fields{
		"lecture_id": lecture.ID,
		"task_id":    taskID,
	}).Info("Lecture analysis enqueued")
	return nil
}

// AnalyzeLecture 分析已上传的讲义并保存结果
func (s *LectureService) AnalyzeLecture(ctx context.Context, lectureID string, opts AnalysisOptions) (*AnalysisResult, error) {
	lecture, err := s.repo.GetByID(lectureID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(lectureID, models.LectureStatusProcessing, ""); err != nil {
		s.logger.WithError(err).Warn("Failed to mark lecture as processing")
	}

	result, err := s.engine.AnalyzeText(ctx, lecture.Content, opts)
	if err != nil {
		s.markFailed(lectureID, err)
		return nil, fmt.Errorf("failed to analyze lecture %s: %w", lectureID, err)
	}

	analysis, err := toAnalysisModel(lectureID, result)
	if err == nil {
		err = s.analysisRepo.Save(analysis)
	}
	if err != nil {
		s.markFailed(lectureID, err)
		return nil, fmt.Errorf("failed to save analysis for %s: %w", lectureID, err)
	}

	lecture.SentenceCount = result.SentenceCount
	if err := s.repo.Update(lecture); err != nil {
		s.logger.WithError(err).Warn("Failed to update sentence count")
	}
	if err := s.repo.UpdateStatus(lectureID, models.LectureStatusCompleted, ""); err != nil {
		return nil, fmt.Errorf("failed to mark lecture %s completed: %w", lectureID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"lecture_id": lectureID,
		"cached":     result.Cached,
	}).Info("Lecture analysis saved")
	return result, nil
}

func (s *LectureService) markFailed(lectureID string, cause error) {
	if err := s.repo.UpdateStatus(lectureID, models.LectureStatusFailed, cause.Error()); err != nil {
		s.logger.WithError(err).WithField("lecture_id", lectureID).Error("Failed to mark lecture as failed")
	}
}

// ProcessTask 处理讲义分析任务，实现 taskqueue.Handler
func (s *LectureService) ProcessTask(ctx context.Context, task *taskqueue.Task) (interface{}, error) {
	var payload taskqueue.LectureAnalyzePayload
	if err := taskqueue.UnmarshalPayload(task.Payload, &payload); err != nil {
		return nil, err
	}
	if payload.LectureID == "" {
		payload.LectureID = task.LectureID
	}

	result, err := s.AnalyzeLecture(ctx, payload.LectureID, AnalysisOptions{
		SummaryLength: payload.SummaryLength,
		Tolerance:     payload.Tolerance,
		KeywordMethod: wordcloud.Method(payload.KeywordMethod),
		MaxWords:      payload.MaxWords,
		Polish:        payload.Polish,
	})
	if err != nil {
		return nil, err
	}
	return &taskqueue.LectureAnalyzeResult{
		LectureID:     payload.LectureID,
		SummaryStatus: string(result.SummaryStatus),
		CoreCount:     len(result.Core),
		KeywordCount:  len(result.WordCloud),
		Cached:        result.Cached,
	}, nil
}

// WaitForAnalysis 等待讲义当前的分析任务结束，同步模式下直接返回
func (s *LectureService) WaitForAnalysis(ctx context.Context, lectureID string, timeout time.Duration) (*models.Lecture, error) {
	lecture, err := s.repo.GetByID(lectureID)
	if err != nil {
		return nil, err
	}
	if !s.AsyncEnabled() || lecture.CurrentTaskID == "" {
		return lecture, nil
	}
	if _, err := s.taskQueue.WaitForTask(ctx, lecture.CurrentTaskID, timeout); err != nil {
		return nil, err
	}
	return s.repo.GetByID(lectureID)
}

// GetLecture 获取讲义
func (s *LectureService) GetLecture(ctx context.Context, lectureID string) (*models.Lecture, error) {
	return s.repo.GetByID(lectureID)
}

// GetTask 获取讲义当前关联的分析任务，没有任务时返回 nil
func (s *LectureService) GetTask(ctx context.Context, lecture *models.Lecture) (*taskqueue.Task, error) {
	if s.taskQueue == nil || lecture.CurrentTaskID == "" {
		return nil, nil
	}
	task, err := s.taskQueue.GetTask(ctx, lecture.CurrentTaskID)
	if errors.Is(err, taskqueue.ErrTaskNotFound) {
		return nil, nil
	}
	return task, err
}

// GetAnalysis 获取讲义已保存的分析结果
func (s *LectureService) GetAnalysis(ctx context.Context, lectureID string) (*AnalysisResult, error) {
	if _, err := s.repo.GetByID(lectureID); err != nil {
		return nil, err
	}
	analysis, err := s.analysisRepo.GetByLectureID(lectureID)
	if err != nil {
		return nil, err
	}
	return fromAnalysisModel(analysis)
}

// ListLectures 分页列出讲义
func (s *LectureService) ListLectures(ctx context.Context, page, pageSize int, filter repository.ListFilter) ([]*models.Lecture, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return s.repo.List((page-1)*pageSize, pageSize, filter)
}

// DeleteLecture 删除讲义、分析结果、原件及未完成的任务
func (s *LectureService) DeleteLecture(ctx context.Context, lectureID string) error {
	lecture, err := s.repo.GetByID(lectureID)
	if err != nil {
		return err
	}

	if s.taskQueue != nil {
		tasks, err := s.taskQueue.GetTasksByLecture(ctx, lectureID)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to list lecture tasks")
		}
		for _, task := range tasks {
			if err := s.taskQueue.DeleteTask(ctx, task.ID); err != nil && !errors.Is(err, taskqueue.ErrTaskNotFound) {
				s.logger.WithError(err).WithField("task_id", task.ID).Warn("Failed to delete lecture task")
			}
		}
	}

	if err := s.repo.Delete(lectureID); err != nil {
		return fmt.Errorf("failed to delete lecture %s: %w", lectureID, err)
	}
	if err := s.storage.Delete(ctx, lecture.FilePath); err != nil {
		s.logger.WithError(err).WithField("path", lecture.FilePath).Warn("Failed to delete stored file")
	}

	s.logger.WithField("lecture_id", lectureID).Info("Lecture deleted")
	return nil
}

// LectureDigest 全局分析中单份讲义的结果
type LectureDigest struct {
	LectureID string          `json:"lecture_id"`
	FileName  string          `json:"file_name"`
	Result    *AnalysisResult `json:"result"`
}

// GlobalResult 多份讲义的分章节与合并分析结果
type GlobalResult struct {
	Lectures []LectureDigest `json:"lectures"`
	Merged   *AnalysisResult `json:"merged"`
}

// GlobalAnalysis 对多份讲义分别分析，再把全部文本合并分析一次
func (s *LectureService) GlobalAnalysis(ctx context.Context, lectureIDs []string, opts AnalysisOptions) (*GlobalResult, error) {
	if len(lectureIDs) == 0 {
		return nil, fmt.Errorf("%w: no lectures selected", models.ErrEmptyContent)
	}
	lectures, err := s.repo.GetByIDs(lectureIDs)
	if err != nil {
		return nil, err
	}

	digests := make([]LectureDigest, len(lectures))
	errs := make([]error, len(lectures))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i, lecture := range lectures {
		wg.Add(1)
		go func(i int, lecture *models.Lecture) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := s.engine.AnalyzeText(ctx, lecture.Content, opts)
			digests[i] = LectureDigest{LectureID: lecture.ID, FileName: lecture.FileName, Result: result}
			errs[i] = err
		}(i, lecture)
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("failed to analyze lectures: %w", err)
	}

	texts := make([]string, len(lectures))
	for i, lecture := range lectures {
		texts[i] = lecture.Content
	}
	merged, err := s.engine.AnalyzeText(ctx, strings.Join(texts, "\n"), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze merged lectures: %w", err)
	}

	s.logger.WithField("lectures", len(lectures)).Info("Global analysis completed")
	return &GlobalResult{Lectures: digests, Merged: merged}, nil
}

// ReviewQuestions 为讲义生成复习题
func (s *LectureService) ReviewQuestions(ctx context.Context, lectureID, questionType string, n int, requirements string) ([]polish.Question, error) {
	result, err := s.GetAnalysis(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	return s.engine.ReviewQuestions(ctx, result, questionType, n, requirements)
}

// toAnalysisModel 把分析结果转换为持久化模型
func toAnalysisModel(lectureID string, r *AnalysisResult) (*models.Analysis, error) {
	fields := []interface{}{r.Core, r.Keywords, r.WordCloud, r.Chapters, r.Suggestions}
	encoded := make([]datatypes.JSON, len(fields))
	for i, f := range fields {
		raw, err := json.Marshal(f)
		if err != nil {
			return nil, fmt.Errorf("failed to encode analysis: %w", err)
		}
		encoded[i] = datatypes.JSON(raw)
	}
	return &models.Analysis{
		LectureID:       lectureID,
		Summary:         r.Summary,
		SummaryStatus:   string(r.SummaryStatus),
		Core:            encoded[0],
		CoreStatus:      string(r.CoreStatus),
		Keywords:        encoded[1],
		WordCloud:       encoded[2],
		WordCloudStatus: string(r.WordCloudStatus),
		Chapters:        encoded[3],
		Suggestions:     encoded[4],
		Polished:        r.Polished,
	}, nil
}

// fromAnalysisModel 从持久化模型还原分析结果
func fromAnalysisModel(a *models.Analysis) (*AnalysisResult, error) {
	r := &AnalysisResult{
		Summary:         a.Summary,
		SummaryStatus:   textproc.Status(a.SummaryStatus),
		CoreStatus:      textproc.Status(a.CoreStatus),
		WordCloudStatus: textproc.Status(a.WordCloudStatus),
		Polished:        a.Polished,
	}
	targets := []struct {
		raw datatypes.JSON
		out interface{}
	}{
		{a.Core, &r.Core},
		{a.Keywords, &r.Keywords},
		{a.WordCloud, &r.WordCloud},
		{a.Chapters, &r.Chapters},
		{a.Suggestions, &r.Suggestions},
	}
	for _, t := range targets {
		if len(t.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(t.raw, t.out); err != nil {
			return nil, fmt.Errorf("failed to decode analysis of %s: %w", a.LectureID, err)
		}
	}

	r.KeywordStatus = statusOf(len(r.Keywords))
	r.ChapterStatus = statusOf(len(r.Chapters))
	r.ChapterOutline = textproc.ChapterOutline{Chapters: r.Chapters, Status: r.ChapterStatus}.Format()
	return r, nil
}

func statusOf(n int) textproc.Status {
	if n == 0 {
		return textproc.StatusDegenerate
	}
	return textproc.StatusOK
}
