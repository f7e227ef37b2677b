package app

import (
	"edubridge_enrollment/docs"
	"edubridge_enrollment/internal/config"
	"edubridge_enrollment/internal/middleware"
	"edubridge_enrollment/internal/model"
	"edubridge_enrollment/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	router.GET("/api/health", c.health.HealthCheck)

	// 选课相关路由，全部需要登录
	enrollments := router.Group("/api/enrollments")
	enrollments.Use(middleware.AuthMiddleware(cfg))
	{
		// 学生接口
		student := enrollments.Group("/")
		student.Use(middleware.RoleMiddleware(model.Student))
		{
			student.POST("/enroll", c.enrollment.Enroll)
			student.DELETE("/enroll/:courseId", c.enrollment.Unenroll)
			student.GET("/me", c.enrollment.ListMyEnrollments)
			student.GET("/me/:courseId", c.enrollment.GetMyEnrollment)
			student.POST("/me/:courseId/sections/:sectionId/toggle", c.enrollment.ToggleSectionDone)
		}

		// 创作者分析接口
		creator := enrollments.Group("/creator")
		creator.Use(middleware.RoleMiddleware(model.Creator, model.Admin))
		{
			creator.GET("/:courseId/learners", c.creator.CourseLearners)
			creator.GET("/insights", c.creator.CreatorInsights)
		}
	}
}
