package dto

// ── 提交与评分模块 DTO ──

// SubmitRequest 学生提交
type SubmitRequest struct {
	SessionID     string `json:"sessionId"     binding:"required,uuid"`
	SubmittedCode string `json:"submittedCode" binding:"required,max=200000"`
}

// GradeRequest 教师评分；marks 必填，0 分合法
type GradeRequest struct {
	Marks    *float64 `json:"marks"    binding:"required"`
	Feedback string   `json:"feedback" binding:"omitempty,max=5000"`
}

// SubmissionResponse 提交详情
type SubmissionResponse struct {
	ID            string           `json:"id"`
	SessionID     string           `json:"sessionId"`
	CourseID      string           `json:"courseId"`
	StudentID     string           `json:"studentId"`
	Section       string           `json:"section"`
	SubmittedCode string           `json:"submittedCode"`
	SubmittedAt   string           `json:"submittedAt"`
	Marks         *float64         `json:"marks"`
	Feedback      string           `json:"feedback"`
	IsReviewed    bool             `json:"isReviewed"`
	Student       *UserBrief       `json:"student,omitempty"`
	Session       *SessionResponse `json:"session,omitempty"`
}

// GradeResponse 评分结果
type GradeResponse struct {
	Message    string             `json:"message"`
	Submission SubmissionResponse `json:"submission"`
}

// 评阅行状态
const (
	ReviewPending   = "pending"
	ReviewSubmitted = "submitted"
	ReviewGraded    = "graded"
)

// ReviewRow 评阅列表中的一行（每个在册学生一行）
type ReviewRow struct {
	Student    UserBrief           `json:"student"`
	Status     string              `json:"status"`
	Submission *SubmissionResponse `json:"submission"`
	Attended   bool                `json:"attended"`
}

// ReviewResponse 实验课评阅数据
type ReviewResponse struct {
	Session    SessionResponse `json:"session"`
	ReviewList []ReviewRow     `json:"reviewList"`
}

// StudentStatResponse 学生在课程班级内的统计
type StudentStatResponse struct {
	StudentID            string  `json:"studentId"`
	Name                 string  `json:"name"`
	USN                  string  `json:"usn,omitempty"`
	Section              string  `json:"section"`
	AssignmentsSubmitted int64   `json:"assignmentsSubmitted"`
	AverageMarks         float64 `json:"averageMarks"`
}

// CourseStudentsResponse 课程名单与统计
type CourseStudentsResponse struct {
	Course   CourseBrief           `json:"course"`
	Students []StudentStatResponse `json:"students"`
}
