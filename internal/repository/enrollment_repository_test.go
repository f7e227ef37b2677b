package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"edubridge_enrollment/internal/model"
	"edubridge_enrollment/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// 每个测试一个独立的共享缓存内存库
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestEnrollmentUniquePerCourseAndStudent(t *testing.T) {
	db := newTestDB(t)
	repo := NewEnrollmentRepository(db)

	require.NoError(t, repo.Create(&model.Enrollment{CourseID: 1, StudentID: 1, Status: model.EnrollmentActive, StartedAt: time.Now()}))
	err := repo.Create(&model.Enrollment{CourseID: 1, StudentID: 1, Status: model.EnrollmentActive, StartedAt: time.Now()})
	assert.Error(t, err)
}

func TestCompletionUniquePerEnrollmentAndSection(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Create(&model.Completion{EnrollmentID: 1, SectionID: 5, IsCompleted: true}).Error)
	err := db.Create(&model.Completion{EnrollmentID: 1, SectionID: 5, IsCompleted: true}).Error
	assert.Error(t, err)
}

// 退课删除必须是物理删除，否则唯一索引会挡住重选后的第一次标记
func TestDeleteByEnrollmentAllowsRecreate(t *testing.T) {
	db := newTestDB(t)
	repo := NewCompletionRepository(db)

	require.NoError(t, db.Create(&model.Completion{EnrollmentID: 1, SectionID: 5, IsCompleted: true}).Error)
	require.NoError(t, repo.DeleteByEnrollment(1))

	err := db.Create(&model.Completion{EnrollmentID: 1, SectionID: 5, IsCompleted: true}).Error
	assert.NoError(t, err)
}

func TestCountCompletedIgnoresUnfinished(t *testing.T) {
	db := newTestDB(t)
	repo := NewCompletionRepository(db)

	require.NoError(t, db.Create(&model.Completion{EnrollmentID: 1, SectionID: 1, IsCompleted: true}).Error)
	require.NoError(t, db.Create(&model.Completion{EnrollmentID: 1, SectionID: 2, IsCompleted: false}).Error)
	require.NoError(t, db.Create(&model.Completion{EnrollmentID: 2, SectionID: 1, IsCompleted: true}).Error)

	count, err := repo.CountCompleted(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCourseStats(t *testing.T) {
	db := newTestDB(t)
	repo := NewEnrollmentRepository(db)

	seed := []model.Enrollment{
		{CourseID: 1, StudentID: 1, Status: model.EnrollmentActive, StartedAt: time.Now()},
		{CourseID: 1, StudentID: 2, Status: model.EnrollmentCompleted, StartedAt: time.Now()},
		{CourseID: 1, StudentID: 3, Status: model.EnrollmentCancelled, StartedAt: time.Now()},
		{CourseID: 2, StudentID: 1, Status: model.EnrollmentActive, StartedAt: time.Now()},
	}
	for i := range seed {
		require.NoError(t, repo.Create(&seed[i]))
	}

	stats, err := repo.CourseStats()
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byCourse := make(map[uint]model.CourseEnrollmentStat, len(stats))
	for _, s := range stats {
		byCourse[s.CourseID] = s
	}

	assert.Equal(t, int64(1), byCourse[1].ActiveCount)
	assert.Equal(t, int64(1), byCourse[1].CompletedCount)
	assert.Equal(t, int64(3), byCourse[1].Total)
	assert.Equal(t, int64(1), byCourse[2].ActiveCount)
	assert.Equal(t, int64(1), byCourse[2].Total)
}

func TestListActiveByStudentOrdersByRecency(t *testing.T) {
	db := newTestDB(t)
	repo := NewEnrollmentRepository(db)

	older := model.Enrollment{CourseID: 1, StudentID: 1, Status: model.EnrollmentActive, StartedAt: time.Now()}
	newer := model.Enrollment{CourseID: 2, StudentID: 1, Status: model.EnrollmentActive, StartedAt: time.Now()}
	require.NoError(t, repo.Create(&older))
	require.NoError(t, repo.Create(&newer))

	// 手动拉开 updated_at，避免同毫秒内顺序不稳定
	require.NoError(t, db.Model(&older).Update("updated_at", time.Now().Add(-time.Hour)).Error)

	rows, err := repo.ListActiveByStudent(1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.CourseID, rows[0].CourseID)
}
