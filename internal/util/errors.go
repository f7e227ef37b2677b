package util

import "errors"

var (
	ErrCourseUnavailable = errors.New("course not available for enrollment")
	ErrUpstreamTimeout   = errors.New("course service timed out")
	ErrNotEnrolled       = errors.New("not enrolled")
	ErrInvalidSection    = errors.New("invalid section for this course")
)
