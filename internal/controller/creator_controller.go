package controller

import (
	"edubridge_enrollment/internal/service"
	"edubridge_enrollment/internal/util"

	"github.com/gin-gonic/gin"
)

type CreatorController struct {
	analytics *service.AnalyticsService
}

func NewCreatorController(analytics *service.AnalyticsService) *CreatorController {
	return &CreatorController{analytics: analytics}
}

// CourseLearners godoc
// @Summary 创作者查看某门课程的学员
// @Description 按最近活跃排序，带每人的进度和完成小节数
// @Tags 创作者
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=map[string]interface{}}
// @Router /api/enrollments/creator/{courseId}/learners [get]
func (c *CreatorController) CourseLearners(ctx *gin.Context) {
	courseID, err := parseUintParam(ctx, "courseId")
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}

	learners, err := c.analytics.CourseLearners(courseID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"courseId": courseID,
		"count":    len(learners),
		"learners": learners,
	})
}

// CreatorInsights godoc
// @Summary 创作者洞察
// @Description 按课程汇总 active/completed/total 选课数
// @Tags 创作者
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.CourseEnrollmentStat}
// @Router /api/enrollments/creator/insights [get]
func (c *CreatorController) CreatorInsights(ctx *gin.Context) {
	stats, err := c.analytics.CreatorInsights()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}
