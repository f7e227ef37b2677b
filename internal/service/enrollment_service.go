package service

import (
	"context"
	"errors"
	"math"
	"time"

	"edubridge_enrollment/internal/model"
	"edubridge_enrollment/internal/repository"
	"edubridge_enrollment/internal/util"

	"gorm.io/gorm"
)

// EnrollmentService 选课与进度引擎
// 进度始终由完成记录和课程服务的最新小节列表重新算出，
// totalSections 只是随每次 toggle 刷新的缓存
type EnrollmentService struct {
	enrollments *repository.EnrollmentRepository
	completions *repository.CompletionRepository
	oracle      CourseOracle
	db          *gorm.DB
}

func NewEnrollmentService(
	enrollments *repository.EnrollmentRepository,
	completions *repository.CompletionRepository,
	oracle CourseOracle,
	db *gorm.DB,
) *EnrollmentService {
	return &EnrollmentService{
		enrollments: enrollments,
		completions: completions,
		oracle:      oracle,
		db:          db,
	}
}

// Enroll 选课，幂等：已有记录时不会新建第二条
// 课程不存在或未过审返回 ErrCourseUnavailable
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, courseID uint) (*model.Enrollment, error) {
	sections, err := s.oracle.GetApprovedCourseSections(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enr, err := s.enrollments.FindByCourseAndStudent(courseID, studentID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		enr = &model.Enrollment{
			CourseID:      courseID,
			StudentID:     studentID,
			Status:        model.EnrollmentActive,
			Progress:      0,
			TotalSections: len(sections),
			StartedAt:     time.Now(),
		}
		if err := s.enrollments.Create(enr); err != nil {
			return nil, err
		}
		return enr, nil
	}

	if enr.Status == model.EnrollmentCancelled {
		// 重新选课：原记录翻回 active 并重置开始时间
		// 完成历史在退课时已被清空，这里只需按当前小节数重算进度
		completedCount, err := s.completions.CountCompleted(enr.ID)
		if err != nil {
			return nil, err
		}
		total := len(sections)
		if total < 1 {
			total = 1
		}
		enr.Status = model.EnrollmentActive
		enr.StartedAt = time.Now()
		enr.TotalSections = len(sections)
		enr.Progress = math.Round(float64(completedCount) / float64(total) * 100)
		enr.CompletedAt = nil
		if err := s.enrollments.Save(enr); err != nil {
			return nil, err
		}
	}

	// active / completed 的已有记录原样返回
	return enr, nil
}

// Unenroll 退课：状态置为 cancelled，完成历史全部丢弃
func (s *EnrollmentService) Unenroll(ctx context.Context, studentID, courseID uint) error {
	enr, err := s.enrollments.FindByCourseAndStudent(courseID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotEnrolled
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		enr.Status = model.EnrollmentCancelled
		if err := tx.Save(enr).Error; err != nil {
			return err
		}
		return repository.NewCompletionRepository(tx).DeleteByEnrollment(enr.ID)
	})
}

// GetMyEnrollment 从未选过课时返回 (nil, nil)，不算错误
func (s *EnrollmentService) GetMyEnrollment(studentID, courseID uint) (*model.EnrollmentSummary, error) {
	enr, err := s.enrollments.FindWithCompletions(courseID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	completedIDs := make([]uint, 0, len(enr.Completions))
	for _, c := range enr.Completions {
		if c.IsCompleted {
			completedIDs = append(completedIDs, c.SectionID)
		}
	}

	return &model.EnrollmentSummary{
		ID:                  enr.ID,
		Status:              enr.Status,
		Progress:            enr.Progress,
		TotalSections:       enr.TotalSections,
		CompletedSectionIDs: completedIDs,
		LastSectionID:       enr.LastSectionID,
	}, nil
}

func (s *EnrollmentService) ListMyEnrollments(studentID uint) ([]model.Enrollment, error) {
	return s.enrollments.ListActiveByStudent(studentID)
}

// ToggleSectionDone 标记/取消标记某小节完成，然后无条件重算进度
// 即使是无效翻转（重复标记已完成的小节）也会按最新小节数刷新进度
func (s *EnrollmentService) ToggleSectionDone(ctx context.Context, studentID, courseID, sectionID uint, done bool) (*model.ProgressSnapshot, error) {
	enr, err := s.enrollments.FindByCourseAndStudent(courseID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}
	if enr.Status == model.EnrollmentCancelled {
		return nil, util.ErrNotEnrolled
	}

	sections, err := s.oracle.GetApprovedCourseSections(ctx, courseID)
	if err != nil {
		return nil, err
	}

	// 小节必须属于当前课程：课程侧删掉的小节不能再被标记
	valid := false
	for _, sec := range sections {
		if sec.ID == sectionID {
			valid = true
			break
		}
	}
	if !valid {
		return nil, util.ErrInvalidSection
	}

	// 完成记录写入、计数和进度回写放同一个事务里，
	// 避免并发 toggle 对 progress/totalSections 丢写
	err = s.db.Transaction(func(tx *gorm.DB) error {
		completions := repository.NewCompletionRepository(tx)

		rec, err := completions.FindByEnrollmentAndSection(enr.ID, sectionID)
		now := time.Now()
		if done {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				rec = &model.Completion{
					EnrollmentID: enr.ID,
					SectionID:    sectionID,
					IsCompleted:  true,
					CompletedAt:  &now,
				}
				if err := tx.Create(rec).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			} else if !rec.IsCompleted {
				rec.IsCompleted = true
				rec.CompletedAt = &now
				if err := tx.Save(rec).Error; err != nil {
					return err
				}
			}
		} else if err == nil && rec.IsCompleted {
			rec.IsCompleted = false
			rec.CompletedAt = nil
			if err := tx.Save(rec).Error; err != nil {
				return err
			}
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return recalcProgress(tx, enr, sections)
	})
	if err != nil {
		return nil, err
	}

	return &model.ProgressSnapshot{
		Status:        enr.Status,
		Progress:      enr.Progress,
		TotalSections: enr.TotalSections,
		LastSectionID: enr.LastSectionID,
	}, nil
}

// recalcProgress 用最新小节列表和完成计数刷新进度与状态
// 这是唯一能把状态从 completed 翻回 active 的地方；
// cancelled 的记录一律不动
func recalcProgress(tx *gorm.DB, enr *model.Enrollment, sections []SectionRef) error {
	if enr.Status == model.EnrollmentCancelled {
		return nil
	}

	total := len(sections)
	if total < 1 {
		total = 1 // 零小节课程，避免除零
	}

	completedCount, err := repository.NewCompletionRepository(tx).CountCompleted(enr.ID)
	if err != nil {
		return err
	}

	enr.TotalSections = total
	enr.Progress = math.Round(float64(completedCount) / float64(total) * 100)

	now := time.Now()
	if enr.Progress == 100 && enr.Status != model.EnrollmentCompleted {
		enr.Status = model.EnrollmentCompleted
		enr.CompletedAt = &now
	} else if enr.Progress < 100 && enr.Status == model.EnrollmentCompleted {
		enr.Status = model.EnrollmentActive
		enr.CompletedAt = nil
	}

	return tx.Save(enr).Error
}
