package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"edubridge_enrollment/internal/config"
	"edubridge_enrollment/internal/middleware"
	"edubridge_enrollment/internal/model"
	"edubridge_enrollment/internal/repository"
	"edubridge_enrollment/internal/service"
	"edubridge_enrollment/internal/util"
	"edubridge_enrollment/pkg/database"
	"edubridge_enrollment/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testSecret = "test-secret"

type stubOracle struct {
	sections []service.SectionRef
}

func (s *stubOracle) GetApprovedCourseSections(ctx context.Context, courseID uint) ([]service.SectionRef, error) {
	if len(s.sections) == 0 {
		return nil, util.ErrCourseUnavailable
	}
	return s.sections, nil
}

func newTestRouter(t *testing.T, oracle service.CourseOracle) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()

	// 每个测试一个独立的共享缓存内存库
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	enrollRepo := repository.NewEnrollmentRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	enrollmentSvc := service.NewEnrollmentService(enrollRepo, completionRepo, oracle, db)
	analyticsSvc := service.NewAnalyticsService(enrollRepo)

	enrollmentCtrl := NewEnrollmentController(enrollmentSvc)
	creatorCtrl := NewCreatorController(analyticsSvc)

	cfg := &config.Config{}
	cfg.JWT.Secret = testSecret

	router := gin.New()
	enrollments := router.Group("/api/enrollments")
	enrollments.Use(middleware.AuthMiddleware(cfg))
	{
		student := enrollments.Group("/")
		student.Use(middleware.RoleMiddleware(model.Student))
		{
			student.POST("/enroll", enrollmentCtrl.Enroll)
			student.DELETE("/enroll/:courseId", enrollmentCtrl.Unenroll)
			student.GET("/me", enrollmentCtrl.ListMyEnrollments)
			student.GET("/me/:courseId", enrollmentCtrl.GetMyEnrollment)
			student.POST("/me/:courseId/sections/:sectionId/toggle", enrollmentCtrl.ToggleSectionDone)
		}

		creator := enrollments.Group("/creator")
		creator.Use(middleware.RoleMiddleware(model.Creator, model.Admin))
		{
			creator.GET("/:courseId/learners", creatorCtrl.CourseLearners)
			creator.GET("/insights", creatorCtrl.CreatorInsights)
		}
	}
	return router
}

func token(t *testing.T, userID uint, role model.UserRole) string {
	t.Helper()
	tok, err := util.GenerateJWT(userID, role, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func doRequest(router *gin.Engine, method, path, body, bearer string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEndpointsRequireAuth(t *testing.T) {
	router := newTestRouter(t, &stubOracle{sections: []service.SectionRef{{ID: 1}}})

	w := doRequest(router, http.MethodGet, "/api/enrollments/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStudentEndpointsRejectCreators(t *testing.T) {
	router := newTestRouter(t, &stubOracle{sections: []service.SectionRef{{ID: 1}}})

	w := doRequest(router, http.MethodPost, "/api/enrollments/enroll",
		`{"courseId":100}`, token(t, 1, model.Creator))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreatorEndpointsRejectStudents(t *testing.T) {
	router := newTestRouter(t, &stubOracle{sections: []service.SectionRef{{ID: 1}}})

	w := doRequest(router, http.MethodGet, "/api/enrollments/creator/insights",
		"", token(t, 1, model.Student))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminCanUseCreatorEndpoints(t *testing.T) {
	router := newTestRouter(t, &stubOracle{sections: []service.SectionRef{{ID: 1}}})

	w := doRequest(router, http.MethodGet, "/api/enrollments/creator/insights",
		"", token(t, 1, model.Admin))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEnrollValidation(t *testing.T) {
	router := newTestRouter(t, &stubOracle{sections: []service.SectionRef{{ID: 1}}})

	w := doRequest(router, http.MethodPost, "/api/enrollments/enroll",
		`{}`, token(t, 1, model.Student))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollToggleAndSummaryFlow(t *testing.T) {
	router := newTestRouter(t, &stubOracle{sections: []service.SectionRef{{ID: 1}, {ID: 2}}})
	studentToken := token(t, 7, model.Student)

	w := doRequest(router, http.MethodPost, "/api/enrollments/enroll",
		`{"courseId":100}`, studentToken)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, http.MethodPost, "/api/enrollments/me/100/sections/1/toggle",
		`{"done":true}`, studentToken)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data model.ProgressSnapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(50), resp.Data.Progress)
	assert.Equal(t, model.EnrollmentActive, resp.Data.Status)
	assert.Equal(t, 2, resp.Data.TotalSections)

	w = doRequest(router, http.MethodGet, "/api/enrollments/me/100", "", studentToken)
	require.Equal(t, http.StatusOK, w.Code)

	var summary struct {
		Data model.EnrollmentSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, []uint{1}, summary.Data.CompletedSectionIDs)
}

func TestGetMyEnrollmentNullWhenNeverEnrolled(t *testing.T) {
	router := newTestRouter(t, &stubOracle{sections: []service.SectionRef{{ID: 1}}})

	w := doRequest(router, http.MethodGet, "/api/enrollments/me/100", "", token(t, 7, model.Student))
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "null", string(resp["data"]))
}

func TestToggleInvalidSectionReturns400(t *testing.T) {
	router := newTestRouter(t, &stubOracle{sections: []service.SectionRef{{ID: 1}}})
	studentToken := token(t, 7, model.Student)

	w := doRequest(router, http.MethodPost, "/api/enrollments/enroll",
		`{"courseId":100}`, studentToken)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, http.MethodPost, "/api/enrollments/me/100/sections/99/toggle",
		`{"done":true}`, studentToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnenrollNotEnrolledReturns404(t *testing.T) {
	router := newTestRouter(t, &stubOracle{sections: []service.SectionRef{{ID: 1}}})

	w := doRequest(router, http.MethodDelete, "/api/enrollments/enroll/100",
		"", token(t, 7, model.Student))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatorLearnersPayload(t *testing.T) {
	router := newTestRouter(t, &stubOracle{sections: []service.SectionRef{{ID: 1}}})
	studentToken := token(t, 7, model.Student)

	w := doRequest(router, http.MethodPost, "/api/enrollments/enroll",
		`{"courseId":100}`, studentToken)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, http.MethodGet, "/api/enrollments/creator/100/learners",
		"", token(t, 2, model.Creator))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			CourseID uint                   `json:"courseId"`
			Count    int                    `json:"count"`
			Learners []model.LearnerSummary `json:"learners"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint(100), resp.Data.CourseID)
	assert.Equal(t, 1, resp.Data.Count)
	require.Len(t, resp.Data.Learners, 1)
	assert.Equal(t, uint(7), resp.Data.Learners[0].StudentID)
}
