package dto

// ── 选课模块 DTO ──

// EnrollRequest 学生选课申请
type EnrollRequest struct {
	CourseCode string `json:"courseCode" binding:"required,coursecode"`
	Section    string `json:"section"    binding:"omitempty,section"`
}

// UpdateEnrollmentRequest 教师审批
type UpdateEnrollmentRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// EnrollmentResponse 选课记录响应
type EnrollmentResponse struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"`
	Section     string       `json:"section"`
	RequestedAt string       `json:"requestedAt"`
	Student     *UserBrief   `json:"student,omitempty"`
	Course      *CourseBrief `json:"course,omitempty"`
}

// UpdateEnrollmentResponse 审批结果
type UpdateEnrollmentResponse struct {
	Message    string             `json:"message"`
	Enrollment EnrollmentResponse `json:"enrollment"`
}

// ApproveAllResponse 批量通过结果
type ApproveAllResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
	Failed  int    `json:"failed"`
}

// RepairResponse 名单缓存修复结果
type RepairResponse struct {
	CoursesUpdated int `json:"coursesUpdated"`
	UsersUpdated   int `json:"usersUpdated"`
}
