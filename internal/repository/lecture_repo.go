package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/fyerfyer/lecture-digest/internal/database"
	"github.com/fyerfyer/lecture-digest/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lectureRepository 讲义仓储实现
type lectureRepository struct {
	db *gorm.DB // 数据库连接
}

// NewLectureRepository 使用全局数据库连接创建讲义仓储
func NewLectureRepository() LectureRepository {
	return &lectureRepository{db: database.MustDB()}
}

// NewLectureRepositoryWithDB 使用指定的数据库连接创建讲义仓储
func NewLectureRepositoryWithDB(db *gorm.DB) LectureRepository {
	if db == nil {
		db = database.MustDB()
	}
	return &lectureRepository{db: db}
}

// Create 创建讲义记录
func (r *lectureRepository) Create(lecture *models.Lecture) error {
	if lecture.ID == "" {
		return errors.New("lecture ID cannot be empty")
	}
	return r.db.Create(lecture).Error
}

// Update 更新讲义记录
func (r *lectureRepository) Update(lecture *models.Lecture) error {
	if lecture.ID == "" {
		return errors.New("lecture ID cannot be empty")
	}
	return r.db.Save(lecture).Error
}

// GetByID 根据ID获取讲义
func (r *lectureRepository) GetByID(id string) (*models.Lecture, error) {
	var lecture models.Lecture
	err := r.db.Where("id = ?", id).First(&lecture).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrLectureNotFound, id)
		}
		return nil, err
	}
	return &lecture, nil
}

// GetByIDs 批量获取讲义
func (r *lectureRepository) GetByIDs(ids []string) ([]*models.Lecture, error) {
	if len(ids) == 0 {
		return []*models.Lecture{}, nil
	}

	var found []*models.Lecture
	if err := r.db.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Lecture, len(found))
	for _, l := range found {
		byID[l.ID] = l
	}
	lectures := make([]*models.Lecture, 0, len(ids))
	for _, id := range ids {
		l, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", models.ErrLectureNotFound, id)
		}
		lectures = append(lectures, l)
	}
	return lectures, nil
}

// List 分页列出讲义，按上传时间倒序
func (r *lectureRepository) List(offset, limit int, filter ListFilter) ([]*models.Lecture, int64, error) {
	var lectures []*models.Lecture
	var total int64

	query := r.db.Model(&models.Lecture{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.FileName != "" {
		query = query.Where("file_name LIKE ?", "%"+filter.FileName+"%")
	}
	if filter.FileType != "" {
		query = query.Where("file_type = ?", filter.FileType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 列表不返回正文
	err := query.Omit("content").
		Order("uploaded_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&lectures).Error
	if err != nil {
		return nil, 0, err
	}
	return lectures, total, nil
}

// Delete 在一个事务中删除讲义和分析结果
func (r *lectureRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lecture_id = ?", id).Delete(&models.Analysis{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Lecture{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", models.ErrLectureNotFound, id)
		}
		return nil
	})
}

// UpdateStatus 更新讲义状态
func (r *lectureRepository) UpdateStatus(id string, status models.LectureStatus, errorMsg string) error {
	updates := map[string]interface{}{
		"status":     status,
		"error":      errorMsg,
		"updated_at": time.Now(),
	}

	// 完成或失败时记录处理完成时间
	if status == models.LectureStatusCompleted || status == models.LectureStatusFailed {
		now := time.Now()
		updates["processed_at"] = &now
	}

	return r.db.Model(&models.Lecture{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// SetTask 记录当前关联的异步任务
func (r *lectureRepository) SetTask(id, taskID string) error {
	return r.db.Model(&models.Lecture{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_task_id": taskID,
			"updated_at":      time.Now(),
		}).Error
}

// analysisRepository 分析结果仓储实现
type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository 使用全局数据库连接创建分析结果仓储
func NewAnalysisRepository() AnalysisRepository {
	return &analysisRepository{db: database.MustDB()}
}

// NewAnalysisRepositoryWithDB 使用指定的数据库连接创建分析结果仓储
func NewAnalysisRepositoryWithDB(db *gorm.DB) AnalysisRepository {
	if db == nil {
		db = database.MustDB()
	}
	return &analysisRepository{db: db}
}

// Save 按 lecture_id 覆盖写入分析结果
func (r *analysisRepository) Save(analysis *models.Analysis) error {
	if analysis.LectureID == "" {
		return errors.New("analysis lecture ID cannot be empty")
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "lecture_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"summary", "summary_status", "core", "core_status", "keywords",
			"word_cloud", "word_cloud_status", "chapters", "suggestions",
			"polished", "updated_at",
		}),
	}).Create(analysis).Error
}

// GetByLectureID 获取讲义的分析结果
func (r *analysisRepository) GetByLectureID(lectureID string) (*models.Analysis, error) {
	var analysis models.Analysis
	err := r.db.Where("lecture_id = ?", lectureID).First(&analysis).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrAnalysisNotFound, lectureID)
		}
		return nil, err
	}
	return &analysis, nil
}

// Delete 删除讲义的分析结果
func (r *analysisRepository) Delete(lectureID string) error {
	return r.db.Where("lecture_id = ?", lectureID).Delete(&models.Analysis{}).Error
}
