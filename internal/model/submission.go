package model

import "time"

// Submission 提交表，对应 submissions
// (session_id, student_id, section) 唯一约束；创建后学生不可修改，仅评分写入 marks/feedback/is_reviewed
type Submission struct {
	SubmissionID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"submission_id"`
	SessionID     string    `gorm:"type:uuid;not null"                             json:"session_id"`
	CourseID      string    `gorm:"type:uuid;not null"                             json:"course_id"`
	StudentID     string    `gorm:"type:uuid;not null"                             json:"student_id"`
	Section       string    `gorm:"type:varchar(16);not null"                      json:"section"`
	SubmittedCode string    `gorm:"type:text;not null"                             json:"submitted_code"`
	SubmittedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"submitted_at"`
	Marks         *float64  `gorm:"type:double precision"                          json:"marks,omitempty"`
	Feedback      string    `gorm:"type:text;not null;default:''"                  json:"feedback"`
	IsReviewed    bool      `gorm:"not null;default:false"                         json:"is_reviewed"`
	UpdatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	// 关联
	Session *LabSession `gorm:"foreignKey:SessionID;references:SessionID" json:"session,omitempty"`
	Student *User       `gorm:"foreignKey:StudentID;references:UserID"    json:"student,omitempty"`
}

// TableName 指定表名
func (Submission) TableName() string { return "submissions" }

// StudentStat 学生在某课程班级内的提交统计（聚合查询结果）
type StudentStat struct {
	StudentID  string  `gorm:"column:student_id"`
	Count      int64   `gorm:"column:submission_count"`
	TotalMarks float64 `gorm:"column:total_marks"`
}
