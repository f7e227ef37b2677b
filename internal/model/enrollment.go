package model

import (
	"time"
)

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
)

// Enrollment 学生与课程的选课关系，每个(课程,学生)只有一条记录
// 状态变更都在原记录上进行，不会产生新行
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	CourseID  uint             `gorm:"index:idx_course_student,unique;not null" json:"courseId"`
	StudentID uint             `gorm:"index:idx_course_student,unique;not null" json:"studentId"`
	Status    EnrollmentStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	// Progress 完成百分比 0-100，始终存储四舍五入后的值
	Progress float64 `gorm:"default:0" json:"progress"`
	// TotalSections 课程服务返回的小节数缓存，每次toggle时刷新
	TotalSections int        `gorm:"default:0" json:"totalSections"`
	LastSectionID *uint      `json:"lastSectionId"`
	StartedAt     time.Time  `json:"startedAt"`
	CompletedAt   *time.Time `json:"completedAt"`

	Completions []Completion `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
