package model

import "github.com/lib/pq"

// DefaultSection 未指定班级时的默认值
const DefaultSection = "A"

// Course 课程表，对应 courses
// (code, section) 唯一；Students 为已批准学生的冗余缓存，真实来源是 enrollments
type Course struct {
	CourseID    string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Name        string         `gorm:"type:varchar(200);not null"                     json:"name"`
	Code        string         `gorm:"type:varchar(32);not null"                      json:"code"`
	Section     string         `gorm:"type:varchar(16);not null;default:'A'"          json:"section"`
	Description string         `gorm:"type:text;not null;default:''"                  json:"description"`
	FacultyID   string         `gorm:"type:uuid;not null"                             json:"faculty_id"`
	Students    pq.StringArray `gorm:"type:text[];not null;default:'{}'"              json:"students"`
	BaseModel

	// 关联
	Faculty *User `gorm:"foreignKey:FacultyID;references:UserID" json:"faculty,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// OwnedBy 判断课程是否归属该教师
func (c *Course) OwnedBy(facultyID string) bool {
	return c.FacultyID == facultyID
}
