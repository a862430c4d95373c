package model

import (
	"time"

	"gorm.io/datatypes"
)

// AttendanceEntry 出勤快照中的一条记录
type AttendanceEntry struct {
	StudentID string `json:"student_id"`
	Attended  bool   `json:"attended"`
}

// LabSession 实验课表，对应 lab_sessions
// 时间窗口创建后不可修改；Attendance 为创建时已批准名单的快照
type LabSession struct {
	SessionID   string                              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	CourseID    string                              `gorm:"type:uuid;not null"                             json:"course_id"`
	Section     string                              `gorm:"type:varchar(16);not null"                      json:"section"`
	Title       string                              `gorm:"type:varchar(200);not null"                     json:"title"`
	Description string                              `gorm:"type:text;not null"                             json:"description"`
	StartTime   time.Time                           `gorm:"not null"                                       json:"start_time"`
	EndTime     time.Time                           `gorm:"not null"                                       json:"end_time"`
	MaxMarks    int                                 `gorm:"not null"                                       json:"max_marks"`
	Attendance  datatypes.JSONSlice[AttendanceEntry] `gorm:"type:jsonb;not null;default:'[]'"               json:"attendance"`
	BaseModel

	// 关联
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (LabSession) TableName() string { return "lab_sessions" }

// InSnapshot 判断学生是否在创建时的出勤快照中
func (s *LabSession) InSnapshot(studentID string) bool {
	for _, a := range s.Attendance {
		if a.StudentID == studentID {
			return true
		}
	}
	return false
}

// Attended 判断学生是否已标记出勤
func (s *LabSession) Attended(studentID string) bool {
	for _, a := range s.Attendance {
		if a.StudentID == studentID {
			return a.Attended
		}
	}
	return false
}
