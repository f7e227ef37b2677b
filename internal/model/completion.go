package model

import (
	"time"
)

// Completion 记录某个选课下单个小节的完成状态
// (enrollment_id, section_id) 唯一，首次标记时懒创建，之后原地翻转
// swagger:model Completion
type Completion struct {
	BaseModel
	EnrollmentID uint       `gorm:"index:idx_enrollment_section,unique;not null" json:"enrollmentId"`
	SectionID    uint       `gorm:"index:idx_enrollment_section,unique;not null" json:"sectionId"`
	IsCompleted  bool       `gorm:"default:false" json:"isCompleted"`
	CompletedAt  *time.Time `json:"completedAt"`
}

func (Completion) TableName() string {
	return "enrollment_completions"
}
