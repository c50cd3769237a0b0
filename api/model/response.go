package model

import (
	"time"

	"github.com/fyerfyer/lecture-digest/internal/models"
	"github.com/fyerfyer/lecture-digest/internal/textproc"
	"github.com/fyerfyer/lecture-digest/internal/wordcloud"
	"github.com/fyerfyer/lecture-digest/pkg/taskqueue"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// WordCloudResponse 词云响应
type WordCloudResponse struct {
	Method string             `json:"method"` // 使用的算法
	Status textproc.Status    `json:"status"` // 计算状态
	Words  []wordcloud.Weight `json:"words"`  // 按权重降序的关键词
}

// LectureInfo 讲义信息
type LectureInfo struct {
	ID            string     `json:"id"`                     // 讲义ID
	FileName      string     `json:"file_name"`              // 文件名
	FileType      string     `json:"file_type"`              // 文件类型
	FileSize      int64      `json:"file_size"`              // 文件大小
	Status        string     `json:"status"`                 // 处理状态
	Error         string     `json:"error,omitempty"`        // 错误信息
	SentenceCount int        `json:"sentence_count"`         // 有效句子数
	UploadedAt    time.Time  `json:"uploaded_at"`            // 上传时间
	ProcessedAt   *time.Time `json:"processed_at,omitempty"` // 分析完成时间
	TaskID        string     `json:"task_id,omitempty"`      // 关联的异步任务
}

// NewLectureInfo 从讲义模型构造响应
func NewLectureInfo(l *models.Lecture) LectureInfo {
	return LectureInfo{
		ID:            l.ID,
		FileName:      l.FileName,
		FileType:      l.FileType,
		FileSize:      l.FileSize,
		Status:        string(l.Status),
		Error:         l.Error,
		SentenceCount: l.SentenceCount,
		UploadedAt:    l.UploadedAt,
		ProcessedAt:   l.ProcessedAt,
		TaskID:        l.CurrentTaskID,
	}
}

// TaskInfo 异步任务信息
type TaskInfo struct {
	ID          string     `json:"id"`                     // 任务ID
	Status      string     `json:"status"`                 // 任务状态
	Attempts    int        `json:"attempts"`               // 已尝试次数
	Error       string     `json:"error,omitempty"`        // 错误信息
	CreatedAt   time.Time  `json:"created_at"`             // 创建时间
	CompletedAt *time.Time `json:"completed_at,omitempty"` // 完成时间
}

// NewTaskInfo 从任务记录构造响应，task 为 nil 时返回 nil
func NewTaskInfo(t *taskqueue.Task) *TaskInfo {
	if t == nil {
		return nil
	}
	return &TaskInfo{
		ID:          t.ID,
		Status:      string(t.Status),
		Attempts:    t.Attempts,
		Error:       t.Error,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
}

// LectureStatusResponse 讲义状态响应
type LectureStatusResponse struct {
	LectureInfo
	Task *TaskInfo `json:"task,omitempty"` // 当前任务
}

// LectureListResponse 讲义列表响应
type LectureListResponse struct {
	Total    int64         `json:"total"`     // 总数量
	Page     int           `json:"page"`      // 当前页码
	PageSize int           `json:"page_size"` // 每页大小
	Lectures []LectureInfo `json:"lectures"`  // 讲义列表
}

// LectureDeleteResponse 讲义删除响应
type LectureDeleteResponse struct {
	Success bool   `json:"success"` // 是否成功
	ID      string `json:"id"`      // 讲义ID
}
