package taskqueue

import (
	"context"
	"encoding/json"
	"time"
)

// Queue 任务队列接口
// 负责任务的入队、状态查询和结果记录
type Queue interface {
	// Enqueue 将任务加入队列
	Enqueue(ctx context.Context, taskType TaskType, lectureID string, payload interface{}) (string, error)

	// EnqueueIn 在指定延迟后将任务加入队列
	EnqueueIn(ctx context.Context, taskType TaskType, lectureID string, payload interface{}, delay time.Duration) (string, error)

	// GetTask 获取任务信息
	GetTask(ctx context.Context, taskID string) (*Task, error)

	// GetTasksByLecture 获取讲义相关的所有任务
	GetTasksByLecture(ctx context.Context, lectureID string) ([]*Task, error)

	// WaitForTask 等待任务结束，timeout为0表示只受ctx约束
	WaitForTask(ctx context.Context, taskID string, timeout time.Duration) (*Task, error)

	// DeleteTask 删除任务记录
	DeleteTask(ctx context.Context, taskID string) error

	// UpdateTaskStatus 更新任务状态和结果
	UpdateTaskStatus(ctx context.Context, taskID string, status TaskStatus, result interface{}, errorMsg string) error

	// Close 关闭队列连接
	Close() error
}

// Handler 任务处理器
type Handler interface {
	// ProcessTask 处理任务，返回值写入任务结果
	ProcessTask(ctx context.Context, task *Task) (interface{}, error)
}

// HandlerFunc 让普通函数实现 Handler
type HandlerFunc func(ctx context.Context, task *Task) (interface{}, error)

// ProcessTask 调用函数本身
func (f HandlerFunc) ProcessTask(ctx context.Context, task *Task) (interface{}, error) {
	return f(ctx, task)
}

// Worker 运行一组Handler消费队列中的任务
type Worker interface {
	// RegisterHandler 注册任务处理器
	RegisterHandler(taskType TaskType, handler Handler)

	// Start 启动工作者，非阻塞
	Start() error

	// Stop 停止工作者
	Stop()
}

// Config 队列配置
type Config struct {
	RedisAddr     string         // Redis地址
	RedisPassword string         // Redis密码
	RedisDB       int            // Redis数据库
	Concurrency   int            // 并发处理任务数
	RetryLimit    int            // 最大重试次数
	RetryDelay    time.Duration  // 重试延迟
	TaskTTL       time.Duration  // 任务记录保留时间
	Queues        map[string]int // 队列名称到优先级的映射
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		RedisAddr:   "localhost:6379",
		Concurrency: 4,
		RetryLimit:  2,
		RetryDelay:  10 * time.Second,
		TaskTTL:     7 * 24 * time.Hour,
		Queues: map[string]int{
			"default": 1,
		},
	}
}

// TaskError 任务错误类型
type TaskError string

// Error 实现error接口
func (e TaskError) Error() string {
	return string(e)
}

var (
	// ErrTaskNotFound 任务未找到
	ErrTaskNotFound = TaskError("task not found")
	// ErrTaskTimeout 等待任务超时
	ErrTaskTimeout = TaskError("task timed out")
	// ErrInvalidPayload 无效的任务载荷
	ErrInvalidPayload = TaskError("invalid task payload")
)

// MarshalPayload 将任务载荷序列化为JSON
func MarshalPayload(payload interface{}) (json.RawMessage, error) {
	if payload == nil {
		return json.RawMessage("{}"), nil
	}
	return json.Marshal(payload)
}

// UnmarshalPayload 将JSON反序列化为任务载荷
func UnmarshalPayload(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return ErrInvalidPayload
	}
	return json.Unmarshal(data, v)
}
