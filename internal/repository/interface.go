package repository

import "github.com/fyerfyer/lecture-digest/internal/models"

// ListFilter 讲义列表筛选条件
type ListFilter struct {
	Status   models.LectureStatus // 按状态过滤，为空表示不过滤
	FileName string               // 文件名模糊匹配
	FileType string               // 文件类型
}

// LectureRepository 讲义仓储接口
// 负责讲义元数据的存储和检索
type LectureRepository interface {
	// Create 创建讲义记录
	Create(lecture *models.Lecture) error

	// Update 更新讲义记录
	Update(lecture *models.Lecture) error

	// GetByID 根据ID获取讲义，不存在时返回 models.ErrLectureNotFound
	GetByID(id string) (*models.Lecture, error)

	// GetByIDs 批量获取讲义，结果按传入顺序排列，缺失的ID会报错
	GetByIDs(ids []string) ([]*models.Lecture, error)

	// List 分页列出讲义
	List(offset, limit int, filter ListFilter) ([]*models.Lecture, int64, error)

	// Delete 删除讲义及其分析结果
	Delete(id string) error

	// UpdateStatus 更新讲义状态
	UpdateStatus(id string, status models.LectureStatus, errorMsg string) error

	// SetTask 记录当前关联的异步任务
	SetTask(id, taskID string) error
}

// AnalysisRepository 分析结果仓储接口
type AnalysisRepository interface {
	// Save 保存讲义的分析结果，已存在时覆盖
	Save(analysis *models.Analysis) error

	// GetByLectureID 获取讲义的分析结果，不存在时返回 models.ErrAnalysisNotFound
	GetByLectureID(lectureID string) (*models.Analysis, error)

	// Delete 删除讲义的分析结果
	Delete(lectureID string) error
}
