package repository

import (
	"edubridge_enrollment/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) FindByCourseAndStudent(courseID, studentID uint) (*model.Enrollment, error) {
	var enr model.Enrollment
	err := r.DB.Where("course_id = ? AND student_id = ?", courseID, studentID).First(&enr).Error
	if err != nil {
		return nil, err
	}
	return &enr, nil
}

// FindWithCompletions 连带小节完成记录一起查出来
func (r *EnrollmentRepository) FindWithCompletions(courseID, studentID uint) (*model.Enrollment, error) {
	var enr model.Enrollment
	err := r.DB.Preload("Completions").
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		First(&enr).Error
	if err != nil {
		return nil, err
	}
	return &enr, nil
}

func (r *EnrollmentRepository) Create(enr *model.Enrollment) error {
	return r.DB.Create(enr).Error
}

func (r *EnrollmentRepository) Save(enr *model.Enrollment) error {
	return r.DB.Save(enr).Error
}

// ListActiveByStudent 学生的进行中选课，最近更新的排前面
func (r *EnrollmentRepository) ListActiveByStudent(studentID uint) ([]model.Enrollment, error) {
	var rows []model.Enrollment
	err := r.DB.Where("student_id = ? AND status = ?", studentID, model.EnrollmentActive).
		Order("updated_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListByCourse 某门课程的全部选课（创作者视角），带完成记录
func (r *EnrollmentRepository) ListByCourse(courseID uint) ([]model.Enrollment, error) {
	var rows []model.Enrollment
	err := r.DB.Preload("Completions").
		Where("course_id = ?", courseID).
		Order("updated_at DESC").
		Find(&rows).Error
	return rows, err
}

// CourseStats 按课程汇总 active/completed/total，创作者洞察用
func (r *EnrollmentRepository) CourseStats() ([]model.CourseEnrollmentStat, error) {
	var stats []model.CourseEnrollmentStat
	err := r.DB.Model(&model.Enrollment{}).
		Select("course_id, " +
			"SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END) AS active_count, " +
			"SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END) AS completed_count, " +
			"COUNT(*) AS total").
		Group("course_id").
		Scan(&stats).Error
	return stats, err
}
