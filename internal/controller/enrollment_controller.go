package controller

import (
	"errors"
	"strconv"

	"edubridge_enrollment/internal/service"
	"edubridge_enrollment/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	service *service.EnrollmentService
}

func NewEnrollmentController(s *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{service: s}
}

type EnrollRequest struct {
	CourseID uint `json:"courseId" binding:"required"`
}

type ToggleSectionRequest struct {
	Done bool `json:"done"`
}

// Enroll godoc
// @Summary 学生选课
// @Description 课程必须已过审；重复选课幂等返回已有记录，退课后再选会把原记录翻回active
// @Tags 选课
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body EnrollRequest true "课程ID"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Failure 400 {object} util.Response
// @Router /api/enrollments/enroll [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req EnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "courseId required")
		return
	}

	enr, err := c.service.Enroll(ctx.Request.Context(), user.UserID, req.CourseID)
	if err != nil {
		c.writeDomainError(ctx, err)
		return
	}

	util.Created(ctx, enr)
}

// Unenroll godoc
// @Summary 学生退课
// @Description 状态置为cancelled并清空全部小节完成记录
// @Tags 选课
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/enrollments/enroll/{courseId} [delete]
func (c *EnrollmentController) Unenroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, err := parseUintParam(ctx, "courseId")
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}

	if err := c.service.Unenroll(ctx.Request.Context(), user.UserID, courseID); err != nil {
		c.writeDomainError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Unenrolled"})
}

// GetMyEnrollment godoc
// @Summary 查询我在某门课程的选课状态
// @Description 从未选过课时 data 为 null；包含已完成小节ID列表
// @Tags 选课
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=model.EnrollmentSummary}
// @Router /api/enrollments/me/{courseId} [get]
func (c *EnrollmentController) GetMyEnrollment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, err := parseUintParam(ctx, "courseId")
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}

	summary, err := c.service.GetMyEnrollment(user.UserID, courseID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if summary == nil {
		util.SuccessNull(ctx)
		return
	}

	util.Success(ctx, summary)
}

// ListMyEnrollments godoc
// @Summary 我的进行中选课列表
// @Description 只返回active状态，最近更新的排前面
// @Tags 选课
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Router /api/enrollments/me [get]
func (c *EnrollmentController) ListMyEnrollments(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	rows, err := c.service.ListMyEnrollments(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, rows)
}

// ToggleSectionDone godoc
// @Summary 标记/取消标记小节完成
// @Description 小节必须属于当前课程；无论是否有效翻转都会按最新小节数重算进度
// @Tags 选课
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Param sectionId path int true "小节ID"
// @Param body body ToggleSectionRequest true "done标记"
// @Success 200 {object} util.Response{data=model.ProgressSnapshot}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/enrollments/me/{courseId}/sections/{sectionId}/toggle [post]
func (c *EnrollmentController) ToggleSectionDone(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, err := parseUintParam(ctx, "courseId")
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}
	sectionID, err := parseUintParam(ctx, "sectionId")
	if err != nil {
		util.BadRequest(ctx, "无效的小节ID")
		return
	}

	var req ToggleSectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	snapshot, err := c.service.ToggleSectionDone(ctx.Request.Context(), user.UserID, courseID, sectionID, req.Done)
	if err != nil {
		c.writeDomainError(ctx, err)
		return
	}

	util.Success(ctx, snapshot)
}

// writeDomainError 领域错误到HTTP状态码的统一映射
func (c *EnrollmentController) writeDomainError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrNotEnrolled):
		util.NotFound(ctx, "Not enrolled")
	case errors.Is(err, util.ErrCourseUnavailable):
		util.BadRequest(ctx, "Course not available for enrollment")
	case errors.Is(err, util.ErrUpstreamTimeout):
		util.BadRequest(ctx, "Course service timed out")
	case errors.Is(err, util.ErrInvalidSection):
		util.BadRequest(ctx, "Invalid section for this course")
	default:
		util.LogInternalError(ctx, err)
	}
}

func parseUintParam(ctx *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
