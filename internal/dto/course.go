package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 教师创建课程
type CreateCourseRequest struct {
	Name        string `json:"name"        binding:"required,max=200"`
	Code        string `json:"code"        binding:"required,coursecode"`
	Section     string `json:"section"     binding:"omitempty,section"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// AdminCreateCourseRequest 管理员创建课程并指定授课教师
type AdminCreateCourseRequest struct {
	CreateCourseRequest
	FacultyID string `json:"facultyId" binding:"required,uuid"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	Code           string                `json:"code"`
	Section        string                `json:"section"`
	Description    string                `json:"description"`
	FacultyID      string                `json:"facultyId"`
	InstructorName string                `json:"instructorName,omitempty"`
	Roster         []string              `json:"roster"`
	StudentsCount  int                   `json:"studentsCount"`
	Students       []StudentStatResponse `json:"students,omitempty"`
	CreatedAt      string                `json:"createdAt"`
}

// CreateCourseResponse 创建课程响应
type CreateCourseResponse struct {
	Message string         `json:"message"`
	Course  CourseResponse `json:"course"`
}
