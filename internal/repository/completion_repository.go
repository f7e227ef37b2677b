package repository

import (
	"edubridge_enrollment/internal/model"

	"gorm.io/gorm"
)

type CompletionRepository struct {
	DB *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{DB: db}
}

func (r *CompletionRepository) FindByEnrollmentAndSection(enrollmentID, sectionID uint) (*model.Completion, error) {
	var rec model.Completion
	err := r.DB.Where("enrollment_id = ? AND section_id = ?", enrollmentID, sectionID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *CompletionRepository) CountCompleted(enrollmentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Completion{}).
		Where("enrollment_id = ? AND is_completed = ?", enrollmentID, true).
		Count(&count).Error
	return count, err
}

func (r *CompletionRepository) CompletedSectionIDs(enrollmentID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Completion{}).
		Where("enrollment_id = ? AND is_completed = ?", enrollmentID, true).
		Pluck("section_id", &ids).Error
	return ids, err
}

// DeleteByEnrollment 退课时清空完成历史
// 物理删除：软删除会残留 (enrollment_id, section_id) 唯一索引条目，
// 导致重新选课后首次标记小节时撞唯一键
func (r *CompletionRepository) DeleteByEnrollment(enrollmentID uint) error {
	return r.DB.Unscoped().
		Where("enrollment_id = ?", enrollmentID).
		Delete(&model.Completion{}).Error
}
