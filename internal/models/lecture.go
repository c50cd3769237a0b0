package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LectureStatus 讲义处理状态类型
type LectureStatus string

const (
	// LectureStatusUploaded 讲义已上传，等待分析
	LectureStatusUploaded LectureStatus = "uploaded"
	// LectureStatusProcessing 讲义分析中
	LectureStatusProcessing LectureStatus = "processing"
	// LectureStatusCompleted 讲义分析完成
	LectureStatusCompleted LectureStatus = "completed"
	// LectureStatusFailed 讲义分析失败
	LectureStatusFailed LectureStatus = "failed"
)

// Lecture 讲义数据模型
// 保存上传文件的元数据和抽取出的纯文本
type Lecture struct {
	ID            string         `gorm:"primaryKey"`         // 讲义ID，主键
	FileName      string         `gorm:"not null"`           // 文件名
	FileType      string         `gorm:"not null"`           // 文件类型
	FilePath      string         `gorm:"not null"`           // 存储路径
	FileSize      int64          `gorm:"not null"`           // 文件大小（字节）
	ContentHash   string         `gorm:"size:64;index"`      // 文本内容的 sha256，用于结果缓存
	Content       string         `gorm:"type:text"`          // 抽取出的纯文本
	Status        LectureStatus  `gorm:"not null;index"`     // 处理状态
	UploadedAt    time.Time      `gorm:"not null;index"`     // 上传时间
	ProcessedAt   *time.Time     `gorm:"index"`              // 分析完成时间
	UpdatedAt     time.Time      `gorm:"not null;index"`     // 更新时间
	Error         string         `gorm:"type:text"`          // 错误信息
	SentenceCount int            `gorm:"not null;default:0"` // 有效句子数量
	Metadata      datatypes.JSON `gorm:"type:json"`          // 元数据，JSON格式
	CurrentTaskID string         `gorm:"size:64;index"`      // 当前关联的异步任务ID
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (l *Lecture) BeforeCreate(tx *gorm.DB) (err error) {
	if l.UploadedAt.IsZero() {
		l.UploadedAt = time.Now()
	}
	l.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置更新时间
func (l *Lecture) BeforeUpdate(tx *gorm.DB) (err error) {
	l.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (Lecture) TableName() string {
	return "lectures"
}

// Analysis 讲义分析结果
// 列表类结果以 JSON 保存，状态字段记录各部分是否退化
type Analysis struct {
	ID              uint           `gorm:"primaryKey;autoIncrement"` // 主键ID
	LectureID       string         `gorm:"not null;uniqueIndex"`     // 所属讲义ID
	Summary         string         `gorm:"type:text"`                // 摘要
	SummaryStatus   string         `gorm:"size:20"`                  // 摘要状态
	Core            datatypes.JSON `gorm:"type:json"`                // 核心句列表
	CoreStatus      string         `gorm:"size:20"`                  // 核心句状态
	Keywords        datatypes.JSON `gorm:"type:json"`                // 内容关键词
	WordCloud       datatypes.JSON `gorm:"type:json"`                // 词云权重
	WordCloudStatus string         `gorm:"size:20"`                  // 词云状态
	Chapters        datatypes.JSON `gorm:"type:json"`                // 章节结构
	Suggestions     datatypes.JSON `gorm:"type:json"`                // 学习建议
	Polished        bool           `gorm:"not null;default:false"`   // 是否经过模型润色
	CreatedAt       time.Time      `gorm:"not null"`                 // 创建时间
	UpdatedAt       time.Time      `gorm:"not null"`                 // 更新时间
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (a *Analysis) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置更新时间
func (a *Analysis) BeforeUpdate(tx *gorm.DB) (err error) {
	a.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (Analysis) TableName() string {
	return "analyses"
}
