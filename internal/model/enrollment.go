package model

import "time"

// 选课状态
const (
	EnrollmentPending  = "pending"
	EnrollmentApproved = "approved"
	EnrollmentRejected = "rejected"
)

// ValidEnrollmentStatus 判断状态取值是否合法
func ValidEnrollmentStatus(status string) bool {
	switch status {
	case EnrollmentPending, EnrollmentApproved, EnrollmentRejected:
		return true
	}
	return false
}

// Enrollment 选课表，对应 enrollments
// (course_id, student_id, section) 唯一约束；永不删除
type Enrollment struct {
	EnrollmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_id"`
	CourseID     string    `gorm:"type:uuid;not null"                             json:"course_id"`
	StudentID    string    `gorm:"type:uuid;not null"                             json:"student_id"`
	Section      string    `gorm:"type:varchar(16);not null"                      json:"section"`
	Status       string    `gorm:"type:varchar(16);not null;default:'pending'"    json:"status"`
	RequestedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"requested_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	// 关联
	Course  *Course `gorm:"foreignKey:CourseID;references:CourseID"  json:"course,omitempty"`
	Student *User   `gorm:"foreignKey:StudentID;references:UserID"   json:"student,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }
