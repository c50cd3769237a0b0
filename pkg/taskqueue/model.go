package taskqueue

import (
	"encoding/json"
	"time"
)

// TaskType 任务类型，同时作为 asynq 的任务名
type TaskType string

const (
	// TaskLectureAnalyze 讲义分析任务：解析原件、生成摘要/核心句/词云并落库
	TaskLectureAnalyze TaskType = "lecture:analyze"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	// StatusPending 等待处理
	StatusPending TaskStatus = "pending"
	// StatusProcessing 处理中
	StatusProcessing TaskStatus = "processing"
	// StatusCompleted 已完成
	StatusCompleted TaskStatus = "completed"
	// StatusFailed 处理失败
	StatusFailed TaskStatus = "failed"
)

// Finished 任务是否已经结束
func (s TaskStatus) Finished() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task 任务记录，保存在 Redis 中供查询
type Task struct {
	ID          string          `json:"id"`           // 任务唯一标识符
	Type        TaskType        `json:"type"`         // 任务类型
	LectureID   string          `json:"lecture_id"`   // 关联的讲义ID
	Status      TaskStatus      `json:"status"`       // 任务状态
	Payload     json.RawMessage `json:"payload"`      // 任务载荷
	Result      json.RawMessage `json:"result"`       // 任务结果
	Error       string          `json:"error"`        // 错误信息
	CreatedAt   time.Time       `json:"created_at"`   // 创建时间
	UpdatedAt   time.Time       `json:"updated_at"`   // 更新时间
	StartedAt   *time.Time      `json:"started_at"`   // 开始处理时间
	CompletedAt *time.Time      `json:"completed_at"` // 完成时间
	Attempts    int             `json:"attempts"`     // 已尝试次数
	MaxRetries  int             `json:"max_retries"`  // 最大重试次数
}

// LectureAnalyzePayload 讲义分析任务载荷
type LectureAnalyzePayload struct {
	LectureID     string `json:"lecture_id"`     // 讲义ID
	SummaryLength int    `json:"summary_length"` // 目标摘要长度
	Tolerance     int    `json:"tolerance"`      // 摘要长度容差
	KeywordMethod string `json:"keyword_method"` // 词云算法 tfidf|textrank
	MaxWords      int    `json:"max_words"`      // 词云最多词数
	Polish        bool   `json:"polish"`         // 是否调用模型润色
}

// LectureAnalyzeResult 讲义分析任务结果
type LectureAnalyzeResult struct {
	LectureID     string `json:"lecture_id"`     // 讲义ID
	SummaryStatus string `json:"summary_status"` // 摘要状态
	CoreCount     int    `json:"core_count"`     // 核心句数量
	KeywordCount  int    `json:"keyword_count"`  // 词云词数
	Cached        bool   `json:"cached"`         // 是否命中结果缓存
}
