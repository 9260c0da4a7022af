// Package service 组合仓储、评分与通知队列，承载业务规则。
package service

import "errors"

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUserDisabled       = errors.New("inactive user")
	ErrInvalidImportance  = errors.New("importance must be between 1 and 5")
	ErrInvalidStatus      = errors.New("invalid task status")
)
