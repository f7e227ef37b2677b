package model

import "time"

// CourseEnrollmentStat 创作者洞察：单门课程的选课状态汇总
type CourseEnrollmentStat struct {
	CourseID       uint  `json:"courseId"`
	ActiveCount    int64 `json:"activeCount"`
	CompletedCount int64 `json:"completedCount"`
	Total          int64 `json:"total"`
}

// LearnerSummary 创作者视角下单个学员的学习概况
type LearnerSummary struct {
	EnrollmentID   uint             `json:"enrollmentId"`
	StudentID      uint             `json:"studentId"`
	Status         EnrollmentStatus `json:"status"`
	Progress       float64          `json:"progress"`
	TotalSections  int              `json:"totalSections"`
	CompletedCount int              `json:"completedCount"`
	StartedAt      time.Time        `json:"startedAt"`
	CompletedAt    *time.Time       `json:"completedAt"`
}

// EnrollmentSummary 学生查询自己选课状态的响应
type EnrollmentSummary struct {
	ID                  uint             `json:"id"`
	Status              EnrollmentStatus `json:"status"`
	Progress            float64          `json:"progress"`
	TotalSections       int              `json:"totalSections"`
	CompletedSectionIDs []uint           `json:"completedSectionIds"`
	LastSectionID       *uint            `json:"lastSectionId"`
}

// ProgressSnapshot toggle 后返回的最新进度
type ProgressSnapshot struct {
	Status        EnrollmentStatus `json:"status"`
	Progress      float64          `json:"progress"`
	TotalSections int              `json:"totalSections"`
	LastSectionID *uint            `json:"lastSectionId"`
}
