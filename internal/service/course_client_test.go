package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"edubridge_enrollment/internal/config"
	"edubridge_enrollment/internal/util"
	"edubridge_enrollment/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCourseTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	logger.Log = zap.NewNop()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestCourseClientReturnsSections(t *testing.T) {
	srv := newCourseTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/public/courses/42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":42,"title":"Algebra","status":"approved","sections":[{"id":1,"title":"Intro","order":1},{"id":2,"title":"Basics","order":2}]}`)
	})

	client := NewCourseClient(config.CourseServiceConfig{BaseURL: srv.URL, TimeoutSeconds: 2})
	sections, err := client.GetApprovedCourseSections(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, uint(1), sections[0].ID)
}

func TestCourseClientEmptySections(t *testing.T) {
	srv := newCourseTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":42,"title":"Empty","status":"approved"}`)
	})

	client := NewCourseClient(config.CourseServiceConfig{BaseURL: srv.URL, TimeoutSeconds: 2})
	sections, err := client.GetApprovedCourseSections(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, sections)
}

func TestCourseClientNotFound(t *testing.T) {
	srv := newCourseTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		// 不存在和未过审都回 404
		http.Error(w, `{"message":"Course not found"}`, http.StatusNotFound)
	})

	client := NewCourseClient(config.CourseServiceConfig{BaseURL: srv.URL, TimeoutSeconds: 2})
	_, err := client.GetApprovedCourseSections(context.Background(), 42)
	assert.ErrorIs(t, err, util.ErrCourseUnavailable)
}

func TestCourseClientServerError(t *testing.T) {
	srv := newCourseTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	client := NewCourseClient(config.CourseServiceConfig{BaseURL: srv.URL, TimeoutSeconds: 2})
	_, err := client.GetApprovedCourseSections(context.Background(), 42)
	assert.ErrorIs(t, err, util.ErrCourseUnavailable)
}

func TestCourseClientTimeout(t *testing.T) {
	srv := newCourseTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(1500 * time.Millisecond)
	})

	client := NewCourseClient(config.CourseServiceConfig{BaseURL: srv.URL, TimeoutSeconds: 1})
	_, err := client.GetApprovedCourseSections(context.Background(), 42)
	assert.ErrorIs(t, err, util.ErrUpstreamTimeout)
}

func TestCourseClientUnreachable(t *testing.T) {
	logger.Log = zap.NewNop()
	client := NewCourseClient(config.CourseServiceConfig{BaseURL: "http://127.0.0.1:1", TimeoutSeconds: 1})
	_, err := client.GetApprovedCourseSections(context.Background(), 42)
	assert.ErrorIs(t, err, util.ErrCourseUnavailable)
}

func TestCourseClientSetBaseURL(t *testing.T) {
	srv := newCourseTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":7,"sections":[{"id":1}]}`)
	})

	client := NewCourseClient(config.CourseServiceConfig{BaseURL: "http://127.0.0.1:1", TimeoutSeconds: 1})
	client.SetBaseURL(srv.URL)

	sections, err := client.GetApprovedCourseSections(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, sections, 1)
}
