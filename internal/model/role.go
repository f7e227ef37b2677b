package model

// UserRole 平台角色，由认证服务签发的令牌携带
type UserRole string

const (
	Student UserRole = "student"
	Creator UserRole = "creator"
	Admin   UserRole = "admin"
)
