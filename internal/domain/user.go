package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID  `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	HashedPassword string     `json:"-"` // 不对外暴露
	FullName       *string    `json:"full_name"`
	Disabled       bool       `json:"disabled"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}

// Notifiable 用户是否具备接收紧急通知的条件：未禁用且邮箱、姓名齐全
func (u *User) Notifiable() bool {
	return !u.Disabled && u.Email != "" && u.FullName != nil && *u.FullName != ""
}
