package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/fyerfyer/lecture-digest/internal/database"
	"github.com/fyerfyer/lecture-digest/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// 每个测试使用独立的内存数据库
	dbName := fmt.Sprintf("file:memdb_%d?mode=memory", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	require.NoError(t, err, "Failed to open in-memory database")
	require.NoError(t, database.Migrate(db), "Failed to run migrations")
	return db
}

func newLecture(id, name string, status models.LectureStatus) *models.Lecture {
	return &models.Lecture{
		ID:       id,
		FileName: name,
		FileType: "txt",
		FilePath: "lectures/" + id + ".txt",
		FileSize: 128,
		Content:  "第一章 算法。",
		Status:   status,
	}
}

func TestLectureRepository_CreateAndGet(t *testing.T) {
	repo := NewLectureRepositoryWithDB(setupTestDB(t))

	lec := newLecture("lec-1", "algo.txt", models.LectureStatusUploaded)
	require.NoError(t, repo.Create(lec))
	assert.False(t, lec.UploadedAt.IsZero(), "UploadedAt should be set by hook")

	saved, err := repo.GetByID("lec-1")
	require.NoError(t, err)
	assert.Equal(t, "algo.txt", saved.FileName)
	assert.Equal(t, models.LectureStatusUploaded, saved.Status)

	_, err = repo.GetByID("missing")
	assert.ErrorIs(t, err, models.ErrLectureNotFound)

	assert.Error(t, repo.Create(&models.Lecture{}), "empty ID should be rejected")
}

func TestLectureRepository_GetByIDs(t *testing.T) {
	repo := NewLectureRepositoryWithDB(setupTestDB(t))
	require.NoError(t, repo.Create(newLecture("a", "a.txt", models.LectureStatusCompleted)))
	require.NoError(t, repo.Create(newLecture("b", "b.txt", models.LectureStatusCompleted)))

	got, err := repo.GetByIDs([]string{"b", "a"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)

	_, err = repo.GetByIDs([]string{"a", "zzz"})
	assert.ErrorIs(t, err, models.ErrLectureNotFound)

	got, err = repo.GetByIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLectureRepository_List(t *testing.T) {
	repo := NewLectureRepositoryWithDB(setupTestDB(t))
	base := time.Now()
	for i := 0; i < 5; i++ {
		status := models.LectureStatusCompleted
		if i%2 == 0 {
			status = models.LectureStatusFailed
		}
		lec := newLecture(fmt.Sprintf("lec-%d", i), fmt.Sprintf("week%d.txt", i), status)
		lec.UploadedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(lec))
	}

	lectures, total, err := repo.List(0, 2, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, lectures, 2)
	// 按上传时间倒序
	assert.Equal(t, "lec-4", lectures[0].ID)
	assert.Empty(t, lectures[0].Content, "list should not load content")

	lectures, total, err = repo.List(0, 10, ListFilter{Status: models.LectureStatusFailed})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, lectures, 3)

	_, total, err = repo.List(0, 10, ListFilter{FileName: "week1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestLectureRepository_UpdateStatus(t *testing.T) {
	repo := NewLectureRepositoryWithDB(setupTestDB(t))
	require.NoError(t, repo.Create(newLecture("lec-1", "algo.txt", models.LectureStatusUploaded)))

	require.NoError(t, repo.UpdateStatus("lec-1", models.LectureStatusProcessing, ""))
	lec, err := repo.GetByID("lec-1")
	require.NoError(t, err)
	assert.Equal(t, models.LectureStatusProcessing, lec.Status)
	assert.Nil(t, lec.ProcessedAt)

	require.NoError(t, repo.UpdateStatus("lec-1", models.LectureStatusFailed, "parse error"))
	lec, err = repo.GetByID("lec-1")
	require.NoError(t, err)
	assert.Equal(t, "parse error", lec.Error)
	assert.NotNil(t, lec.ProcessedAt)

	require.NoError(t, repo.SetTask("lec-1", "task-9"))
	lec, err = repo.GetByID("lec-1")
	require.NoError(t, err)
	assert.Equal(t, "task-9", lec.CurrentTaskID)
}

func TestAnalysisRepository_SaveOverwrites(t *testing.T) {
	db := setupTestDB(t)
	lectures := NewLectureRepositoryWithDB(db)
	analyses := NewAnalysisRepositoryWithDB(db)
	require.NoError(t, lectures.Create(newLecture("lec-1", "algo.txt", models.LectureStatusCompleted)))

	_, err := analyses.GetByLectureID("lec-1")
	assert.ErrorIs(t, err, models.ErrAnalysisNotFound)

	require.NoError(t, analyses.Save(&models.Analysis{
		LectureID:     "lec-1",
		Summary:       "第一版。",
		SummaryStatus: "ok",
		Core:          datatypes.JSON(`["句子一。"]`),
	}))
	require.NoError(t, analyses.Save(&models.Analysis{
		LectureID:     "lec-1",
		Summary:       "第二版。",
		SummaryStatus: "ok",
		Core:          datatypes.JSON(`["句子二。"]`),
	}))

	got, err := analyses.GetByLectureID("lec-1")
	require.NoError(t, err)
	assert.Equal(t, "第二版。", got.Summary)
	assert.JSONEq(t, `["句子二。"]`, string(got.Core))

	var count int64
	require.NoError(t, db.Model(&models.Analysis{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	assert.Error(t, analyses.Save(&models.Analysis{}))
}

func TestLectureRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	lectures := NewLectureRepositoryWithDB(db)
	analyses := NewAnalysisRepositoryWithDB(db)
	require.NoError(t, lectures.Create(newLecture("lec-1", "algo.txt", models.LectureStatusCompleted)))
	require.NoError(t, analyses.Save(&models.Analysis{LectureID: "lec-1", Summary: "摘要。"}))

	require.NoError(t, lectures.Delete("lec-1"))
	_, err := lectures.GetByID("lec-1")
	assert.ErrorIs(t, err, models.ErrLectureNotFound)
	_, err = analyses.GetByLectureID("lec-1")
	assert.ErrorIs(t, err, models.ErrAnalysisNotFound)

	assert.ErrorIs(t, lectures.Delete("lec-1"), models.ErrLectureNotFound)
}
