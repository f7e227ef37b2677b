package service

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"edubridge_enrollment/internal/config"
	"edubridge_enrollment/internal/util"
	"edubridge_enrollment/pkg/logger"
	"edubridge_enrollment/pkg/monitoring"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// SectionRef 课程服务返回的小节引用，这边只关心稳定的小节ID
type SectionRef struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Order int    `json:"order"`
}

// CourseOracle 小节的权威来源：只有已审核通过的课程才有小节列表
// 课程不存在或未过审时返回 util.ErrCourseUnavailable
type CourseOracle interface {
	GetApprovedCourseSections(ctx context.Context, courseID uint) ([]SectionRef, error)
}

type publicCourse struct {
	ID       uint         `json:"id"`
	Title    string       `json:"title"`
	Status   string       `json:"status"`
	Sections []SectionRef `json:"sections"`
}

// CourseClient 通过HTTP访问课程服务的公开接口
// 每次调用都实时拉取，不做缓存：进度计算要对着最新的小节列表
type CourseClient struct {
	client *resty.Client

	mu      sync.RWMutex
	baseURL string
}

func NewCourseClient(cfg config.CourseServiceConfig) *CourseClient {
	client := resty.New().
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	return &CourseClient{
		client:  client,
		baseURL: cfg.BaseURL,
	}
}

// SetBaseURL 支持配置热更新时重指向课程服务
func (c *CourseClient) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = baseURL
}

func (c *CourseClient) GetApprovedCourseSections(ctx context.Context, courseID uint) ([]SectionRef, error) {
	c.mu.RLock()
	baseURL := c.baseURL
	c.mu.RUnlock()

	var course publicCourse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&course).
		Get(fmt.Sprintf("%s/public/courses/%d", baseURL, courseID))

	if err != nil {
		if os.IsTimeout(err) {
			monitoring.CourseServiceRequests.WithLabelValues("timeout").Inc()
			logger.Log.Warn("course service timed out",
				zap.Uint("courseId", courseID))
			return nil, util.ErrUpstreamTimeout
		}
		monitoring.CourseServiceRequests.WithLabelValues("error").Inc()
		logger.Log.Warn("course service unreachable",
			zap.Uint("courseId", courseID), zap.Error(err))
		return nil, util.ErrCourseUnavailable
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		// 课程不存在或者未过审，两种情况课程服务都回404
		monitoring.CourseServiceRequests.WithLabelValues("not_found").Inc()
		return nil, util.ErrCourseUnavailable
	case resp.StatusCode() != http.StatusOK:
		monitoring.CourseServiceRequests.WithLabelValues("error").Inc()
		logger.Log.Warn("course service returned unexpected status",
			zap.Uint("courseId", courseID), zap.Int("status", resp.StatusCode()))
		return nil, util.ErrCourseUnavailable
	}

	monitoring.CourseServiceRequests.WithLabelValues("ok").Inc()

	if course.Sections == nil {
		return []SectionRef{}, nil
	}
	return course.Sections, nil
}
