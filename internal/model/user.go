package model

import (
	"strings"

	"github.com/lib/pq"
)

// User 用户表，对应 users
// 角色创建后不可变更；EnrolledCourses 为已批准选课的冗余缓存（course_id 列表）
type User struct {
	UserID          string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Email           string         `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash    string         `gorm:"type:varchar(255);not null"                     json:"-"`
	Role            string         `gorm:"type:varchar(20);not null"                      json:"role"`
	FirstName       string         `gorm:"type:varchar(100);not null"                     json:"first_name"`
	LastName        string         `gorm:"type:varchar(100);not null;default:''"          json:"last_name"`
	USN             *string        `gorm:"column:usn;type:varchar(32)"                    json:"usn,omitempty"`
	EnrolledCourses pq.StringArray `gorm:"type:text[];not null;default:'{}'"              json:"enrolled_courses"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// FullName 展示名
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
