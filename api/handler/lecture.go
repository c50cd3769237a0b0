package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fyerfyer/lecture-digest/api/middleware"
	"github.com/fyerfyer/lecture-digest/api/model"
	"github.com/fyerfyer/lecture-digest/internal/document"
	"github.com/fyerfyer/lecture-digest/internal/models"
	"github.com/fyerfyer/lecture-digest/internal/repository"
	"github.com/fyerfyer/lecture-digest/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LectureHandler 处理讲义相关的API请求
type LectureHandler struct {
	lectureService *services.LectureService // 讲义服务
	maxUploadBytes int64                    // 上传文件大小上限
	waitTimeout    time.Duration            // wait=true 时的最长等待时间
	logger         *logrus.Logger           // 日志记录器
}

// NewLectureHandler 创建讲义处理器
func NewLectureHandler(lectureService *services.LectureService, maxUploadBytes int64, waitTimeout time.Duration) *LectureHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	if waitTimeout <= 0 {
		waitTimeout = 2 * time.Minute
	}
	return &LectureHandler{
		lectureService: lectureService,
		maxUploadBytes: maxUploadBytes,
		waitTimeout:    waitTimeout,
		logger:         middleware.GetLogger(),
	}
}

// UploadLecture 上传讲义
// POST /api/lectures
func (h *LectureHandler) UploadLecture(c *gin.Context) {
	var req model.LectureUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid lecture upload request")
		middleware.HandleError(c, middleware.NewValidationError("无效的请求参数", err.Error()))
		return
	}

	filename := req.File.Filename
	if !document.IsSupported(filename) {
		middleware.HandleError(c, fmt.Errorf("%w: %s", models.ErrUnsupportedType, filename))
		return
	}
	if req.File.Size > h.maxUploadBytes {
		middleware.HandleError(c, middleware.NewTooLargeError(
			fmt.Sprintf("文件过大，上限 %d MB", h.maxUploadBytes>>20)))
		return
	}

	file, err := req.File.Open()
	if err != nil {
		h.logger.WithError(err).WithField("filename", filename).Error("Failed to open uploaded file")
		middleware.HandleError(c, middleware.NewInternalError("无法打开上传的文件", err.Error()))
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	lecture, err := h.lectureService.Upload(ctx, file, filename, toAnalysisOptions(req.AnalysisParams))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	if req.Wait && h.lectureService.AsyncEnabled() {
		lecture, err = h.lectureService.WaitForAnalysis(ctx, lecture.ID, h.waitTimeout)
		if err != nil {
			middleware.HandleError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.NewLectureInfo(lecture)))
}

// GetLecture 获取讲义状态
// GET /api/lectures/:id
func (h *LectureHandler) GetLecture(c *gin.Context) {
	var req model.LectureIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的讲义ID"))
		return
	}

	ctx := c.Request.Context()
	lecture, err := h.lectureService.GetLecture(ctx, req.ID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	resp := model.LectureStatusResponse{LectureInfo: model.NewLectureInfo(lecture)}
	task, err := h.lectureService.GetTask(ctx, lecture)
	if err != nil {
		h.logger.WithError(err).WithField("lecture_id", req.ID).Warn("Failed to load lecture task")
	}
	resp.Task = model.NewTaskInfo(task)

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// GetAnalysis 获取讲义的分析结果
// GET /api/lectures/:id/analysis
func (h *LectureHandler) GetAnalysis(c *gin.Context) {
	var req model.LectureIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的讲义ID"))
		return
	}

	result, err := h.lectureService.GetAnalysis(c.Request.Context(), req.ID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse(result))
}

// ListLectures 分页列出讲义
// GET /api/lectures
func (h *LectureHandler) ListLectures(c *gin.Context) {
	var req model.LectureListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的查询参数", err.Error()))
		return
	}

	page, pageSize := req.GetPage(), req.GetPageSize()
	lectures, total, err := h.lectureService.ListLectures(c.Request.Context(), page, pageSize, repository.ListFilter{
		Status:   models.LectureStatus(req.Status),
		FileName: req.FileName,
		FileType: req.FileType,
	})
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	infos := make([]model.LectureInfo, len(lectures))
	for i, l := range lectures {
		infos[i] = model.NewLectureInfo(l)
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse(model.LectureListResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Lectures: infos,
	}))
}

// DeleteLecture 删除讲义
// DELETE /api/lectures/:id
func (h *LectureHandler) DeleteLecture(c *gin.Context) {
	var req model.LectureIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的讲义ID"))
		return
	}

	if err := h.lectureService.DeleteLecture(c.Request.Context(), req.ID); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse(model.LectureDeleteResponse{Success: true, ID: req.ID}))
}

// GlobalAnalysis 对多份讲义做分章节和合并分析
// POST /api/lectures/global
func (h *LectureHandler) GlobalAnalysis(c *gin.Context) {
	var req model.GlobalAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的请求参数", err.Error()))
		return
	}

	result, err := h.lectureService.GlobalAnalysis(c.Request.Context(), req.IDs, toAnalysisOptions(req.AnalysisParams))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse(result))
}

// ReviewQuestions 生成复习题
// POST /api/lectures/:id/questions
func (h *LectureHandler) ReviewQuestions(c *gin.Context) {
	var uri model.LectureIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的讲义ID"))
		return
	}
	var req model.ReviewQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("无效的请求参数", err.Error()))
		return
	}

	questions, err := h.lectureService.ReviewQuestions(c.Request.Context(), uri.ID, req.QuestionType, req.Count, req.Requirements)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse(gin.H{"questions": questions}))
}
