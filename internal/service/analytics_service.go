package service

import (
	"edubridge_enrollment/internal/model"
	"edubridge_enrollment/internal/repository"
)

// AnalyticsService 创作者侧的只读聚合，全部是选课表上的投影
type AnalyticsService struct {
	enrollments *repository.EnrollmentRepository
}

func NewAnalyticsService(enrollments *repository.EnrollmentRepository) *AnalyticsService {
	return &AnalyticsService{enrollments: enrollments}
}

// CourseLearners 某门课程的学员列表，按最近活跃排序
func (s *AnalyticsService) CourseLearners(courseID uint) ([]model.LearnerSummary, error) {
	rows, err := s.enrollments.ListByCourse(courseID)
	if err != nil {
		return nil, err
	}

	learners := make([]model.LearnerSummary, 0, len(rows))
	for _, e := range rows {
		completedCount := 0
		for _, c := range e.Completions {
			if c.IsCompleted {
				completedCount++
			}
		}
		learners = append(learners, model.LearnerSummary{
			EnrollmentID:   e.ID,
			StudentID:      e.StudentID,
			Status:         e.Status,
			Progress:       e.Progress,
			TotalSections:  e.TotalSections,
			CompletedCount: completedCount,
			StartedAt:      e.StartedAt,
			CompletedAt:    e.CompletedAt,
		})
	}
	return learners, nil
}

// CreatorInsights 全课程的选课状态汇总
func (s *AnalyticsService) CreatorInsights() ([]model.CourseEnrollmentStat, error) {
	return s.enrollments.CourseStats()
}
