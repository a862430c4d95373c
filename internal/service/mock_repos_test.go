package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/model"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/repository"
)

// ── 内存存储 ──
//
// 所有 mock 仓储共享一个 mockStore，按迁移脚本中的唯一约束返回 gorm.ErrDuplicatedKey，
// 读取时返回副本并按 GORM Preload 的方式填充关联。

var errInjected = errors.New("injected storage failure")

type mockStore struct {
	mu  sync.Mutex
	seq int

	users       map[string]*model.User
	courses     map[string]*model.Course
	enrollments map[string]*model.Enrollment
	sessions    map[string]*model.LabSession
	submissions map[string]*model.Submission

	// 故障注入：对指定选课的状态更新返回错误
	failUpdateStatus map[string]bool
}

func newMockStore() *mockStore {
	return &mockStore{
		users:            make(map[string]*model.User),
		courses:          make(map[string]*model.Course),
		enrollments:      make(map[string]*model.Enrollment),
		sessions:         make(map[string]*model.LabSession),
		submissions:      make(map[string]*model.Submission),
		failUpdateStatus: make(map[string]bool),
	}
}

func (s *mockStore) repository() *repository.Repository {
	return &repository.Repository{
		User:       &mockUserRepo{s},
		Course:     &mockCourseRepo{s},
		Enrollment: &mockEnrollmentRepo{s},
		LabSession: &mockLabSessionRepo{s},
		Submission: &mockSubmissionRepo{s},
	}
}

func (s *mockStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%03d", prefix, s.seq)
}

// ── 副本（调用方须持有锁） ──

func (s *mockStore) userCopy(id string) *model.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	c := *u
	c.EnrolledCourses = append(pq.StringArray{}, u.EnrolledCourses...)
	return &c
}

func (s *mockStore) courseCopy(id string) *model.Course {
	x, ok := s.courses[id]
	if !ok {
		return nil
	}
	c := *x
	c.Students = append(pq.StringArray{}, x.Students...)
	c.Faculty = s.userCopy(x.FacultyID)
	return &c
}

func (s *mockStore) enrollmentCopy(id string) *model.Enrollment {
	x, ok := s.enrollments[id]
	if !ok {
		return nil
	}
	c := *x
	c.Course = s.courseCopy(x.CourseID)
	c.Student = s.userCopy(x.StudentID)
	return &c
}

func (s *mockStore) sessionCopy(id string) *model.LabSession {
	x, ok := s.sessions[id]
	if !ok {
		return nil
	}
	c := *x
	c.Attendance = append(datatypes.JSONSlice[model.AttendanceEntry]{}, x.Attendance...)
	c.Course = s.courseCopy(x.CourseID)
	return &c
}

func (s *mockStore) submissionCopy(id string) *model.Submission {
	x, ok := s.submissions[id]
	if !ok {
		return nil
	}
	c := *x
	if x.Marks != nil {
		m := *x.Marks
		c.Marks = &m
	}
	c.Student = s.userCopy(x.StudentID)
	c.Session = s.sessionCopy(x.SessionID)
	return &c
}

// ── 测试数据构造 ──

func (s *mockStore) addUser(role, firstName string) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &model.User{
		UserID:          s.nextID(strings.ToLower(role)),
		Email:           strings.ToLower(firstName) + "@college.edu",
		Role:            role,
		FirstName:       firstName,
		EnrolledCourses: pq.StringArray{},
	}
	s.users[u.UserID] = u
	return s.userCopy(u.UserID)
}

func (s *mockStore) addCourse(code, section, facultyID string) *model.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &model.Course{
		CourseID:  s.nextID("course"),
		Name:      code + " Lab",
		Code:      code,
		Section:   section,
		FacultyID: facultyID,
		Students:  pq.StringArray{},
	}
	s.courses[c.CourseID] = c
	return s.courseCopy(c.CourseID)
}

func (s *mockStore) addEnrollment(courseID, studentID, section, status string) *model.Enrollment {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &model.Enrollment{
		EnrollmentID: s.nextID("enr"),
		CourseID:     courseID,
		StudentID:    studentID,
		Section:      section,
		Status:       status,
		RequestedAt:  time.Now(),
	}
	s.enrollments[e.EnrollmentID] = e
	return s.enrollmentCopy(e.EnrollmentID)
}

func (s *mockStore) addSession(courseID, section string, start, end time.Time, maxMarks int) *model.LabSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls := &model.LabSession{
		SessionID:  s.nextID("session"),
		CourseID:   courseID,
		Section:    section,
		Title:      "Lab",
		StartTime:  start,
		EndTime:    end,
		MaxMarks:   maxMarks,
		Attendance: datatypes.JSONSlice[model.AttendanceEntry]{},
	}
	ls.CreatedAt = start
	s.sessions[ls.SessionID] = ls
	return s.sessionCopy(ls.SessionID)
}

func (s *mockStore) addSubmission(sessionID, studentID string, marks *float64) *model.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls := s.sessions[sessionID]
	sub := &model.Submission{
		SubmissionID:  s.nextID("sub"),
		SessionID:     sessionID,
		CourseID:      ls.CourseID,
		StudentID:     studentID,
		Section:       ls.Section,
		SubmittedCode: "print('hello')",
		SubmittedAt:   ls.StartTime,
		Marks:         marks,
		IsReviewed:    marks != nil,
	}
	s.submissions[sub.SubmissionID] = sub
	return s.submissionCopy(sub.SubmissionID)
}

func (s *mockStore) enrollmentCount(courseID, studentID, section string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.enrollments {
		if e.CourseID == courseID && e.StudentID == studentID && e.Section == section {
			n++
		}
	}
	return n
}

func (s *mockStore) submissionCount(sessionID, studentID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sub := range s.submissions {
		if sub.SessionID == sessionID && sub.StudentID == studentID {
			n++
		}
	}
	return n
}

func countOf(ids []string, id string) int {
	n := 0
	for _, x := range ids {
		if x == id {
			n++
		}
	}
	return n
}

func addToSet(ids pq.StringArray, id string) pq.StringArray {
	if countOf(ids, id) > 0 {
		return ids
	}
	return append(ids, id)
}

func removeFromSet(ids pq.StringArray, id string) pq.StringArray {
	out := pq.StringArray{}
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

// ── Mock UserRepository ──

type mockUserRepo struct{ s *mockStore }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = m.s.nextID("user")
	}
	c := *user
	m.s.users[user.UserID] = &c
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if u := m.s.userCopy(id); u != nil {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, u := range m.s.users {
		if strings.EqualFold(u.Email, email) {
			return m.s.userCopy(id), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListStudents(_ context.Context) ([]model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.User
	for id, u := range m.s.users {
		if u.Role == model.RoleStudent {
			result = append(result, *m.s.userCopy(id))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

func (m *mockUserRepo) AddEnrolledCourse(_ context.Context, userID, courseID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if u, ok := m.s.users[userID]; ok {
		u.EnrolledCourses = addToSet(u.EnrolledCourses, courseID)
	}
	return nil
}

func (m *mockUserRepo) RemoveEnrolledCourse(_ context.Context, userID, courseID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if u, ok := m.s.users[userID]; ok {
		u.EnrolledCourses = removeFromSet(u.EnrolledCourses, courseID)
	}
	return nil
}

func (m *mockUserRepo) SetEnrolledCourses(_ context.Context, userID string, courseIDs []string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if u, ok := m.s.users[userID]; ok {
		u.EnrolledCourses = append(pq.StringArray{}, courseIDs...)
	}
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct{ s *mockStore }

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, c := range m.s.courses {
		if c.Code == course.Code && c.Section == course.Section {
			return gorm.ErrDuplicatedKey
		}
	}
	if course.CourseID == "" {
		course.CourseID = m.s.nextID("course")
	}
	c := *course
	c.Faculty = nil
	m.s.courses[course.CourseID] = &c
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if c := m.s.courseCopy(id); c != nil {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetByCodeSection(_ context.Context, code, section string) (*model.Course, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, c := range m.s.courses {
		if c.Code == code && c.Section == section {
			return m.s.courseCopy(id), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) list(match func(*model.Course) bool) []model.Course {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	result := []model.Course{}
	for id, c := range m.s.courses {
		if match(c) {
			result = append(result, *m.s.courseCopy(id))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CourseID < result[j].CourseID })
	return result
}

func (m *mockCourseRepo) ListByFaculty(_ context.Context, facultyID string) ([]model.Course, error) {
	return m.list(func(c *model.Course) bool { return c.FacultyID == facultyID }), nil
}

func (m *mockCourseRepo) ListAll(_ context.Context) ([]model.Course, error) {
	return m.list(func(*model.Course) bool { return true }), nil
}

func (m *mockCourseRepo) AddStudent(_ context.Context, courseID, studentID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if c, ok := m.s.courses[courseID]; ok {
		c.Students = addToSet(c.Students, studentID)
	}
	return nil
}

func (m *mockCourseRepo) RemoveStudent(_ context.Context, courseID, studentID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if c, ok := m.s.courses[courseID]; ok {
		c.Students = removeFromSet(c.Students, studentID)
	}
	return nil
}

func (m *mockCourseRepo) SetStudents(_ context.Context, courseID string, studentIDs []string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if c, ok := m.s.courses[courseID]; ok {
		c.Students = append(pq.StringArray{}, studentIDs...)
	}
	return nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct{ s *mockStore }

func (m *mockEnrollmentRepo) Create(_ context.Context, enrollment *model.Enrollment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, e := range m.s.enrollments {
		if e.CourseID == enrollment.CourseID && e.StudentID == enrollment.StudentID && e.Section == enrollment.Section {
			return gorm.ErrDuplicatedKey
		}
	}
	if enrollment.EnrollmentID == "" {
		enrollment.EnrollmentID = m.s.nextID("enr")
	}
	enrollment.RequestedAt = time.Now()
	c := *enrollment
	c.Course, c.Student = nil, nil
	m.s.enrollments[enrollment.EnrollmentID] = &c
	return nil
}

func (m *mockEnrollmentRepo) GetByID(_ context.Context, id string) (*model.Enrollment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if e := m.s.enrollmentCopy(id); e != nil {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Enrollment, error) {
	e, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Course, e.Student = nil, nil
	return e, nil
}

func (m *mockEnrollmentRepo) GetByCourseStudent(_ context.Context, courseID, studentID, section string) (*model.Enrollment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, e := range m.s.enrollments {
		if e.CourseID == courseID && e.StudentID == studentID && e.Section == section {
			return m.s.enrollmentCopy(id), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) list(match func(*model.Enrollment) bool) []model.Enrollment {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	result := []model.Enrollment{}
	for id, e := range m.s.enrollments {
		if match(e) {
			result = append(result, *m.s.enrollmentCopy(id))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EnrollmentID < result[j].EnrollmentID })
	return result
}

func (m *mockEnrollmentRepo) ListPendingByFaculty(_ context.Context, facultyID string) ([]model.Enrollment, error) {
	m.s.mu.Lock()
	owned := make(map[string]bool)
	for id, c := range m.s.courses {
		if c.FacultyID == facultyID {
			owned[id] = true
		}
	}
	m.s.mu.Unlock()
	return m.list(func(e *model.Enrollment) bool {
		return owned[e.CourseID] && e.Status == model.EnrollmentPending
	}), nil
}

func (m *mockEnrollmentRepo) UpdateStatus(_ context.Context, id, status string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.failUpdateStatus[id] {
		return errInjected
	}
	e, ok := m.s.enrollments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.Status = status
	return nil
}

func (m *mockEnrollmentRepo) ListApprovedByCourse(_ context.Context, courseID, section string) ([]model.Enrollment, error) {
	return m.list(func(e *model.Enrollment) bool {
		return e.CourseID == courseID && e.Section == section && e.Status == model.EnrollmentApproved
	}), nil
}

func (m *mockEnrollmentRepo) ListApprovedByStudent(_ context.Context, studentID string) ([]model.Enrollment, error) {
	return m.list(func(e *model.Enrollment) bool {
		return e.StudentID == studentID && e.Status == model.EnrollmentApproved
	}), nil
}

func (m *mockEnrollmentRepo) ListAllApproved(_ context.Context) ([]model.Enrollment, error) {
	return m.list(func(e *model.Enrollment) bool { return e.Status == model.EnrollmentApproved }), nil
}

func (m *mockEnrollmentRepo) CountApprovedByCourses(_ context.Context, courseIDs []string) (map[string]int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	want := make(map[string]bool, len(courseIDs))
	for _, id := range courseIDs {
		want[id] = true
	}
	counts := make(map[string]int64)
	for _, e := range m.s.enrollments {
		if want[e.CourseID] && e.Status == model.EnrollmentApproved {
			counts[e.CourseID]++
		}
	}
	return counts, nil
}

// ── Mock LabSessionRepository ──

type mockLabSessionRepo struct{ s *mockStore }

func (m *mockLabSessionRepo) Create(_ context.Context, session *model.LabSession) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if session.SessionID == "" {
		session.SessionID = m.s.nextID("session")
	}
	session.CreatedAt = time.Now()
	c := *session
	c.Attendance = append(datatypes.JSONSlice[model.AttendanceEntry]{}, session.Attendance...)
	c.Course = nil
	m.s.sessions[session.SessionID] = &c
	return nil
}

func (m *mockLabSessionRepo) GetByID(_ context.Context, id string) (*model.LabSession, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if ls := m.s.sessionCopy(id); ls != nil {
		return ls, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLabSessionRepo) ListByCourseSection(_ context.Context, courseID, section string) ([]model.LabSession, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	result := []model.LabSession{}
	for id, ls := range m.s.sessions {
		if ls.CourseID == courseID && ls.Section == section {
			c := m.s.sessionCopy(id)
			c.Course = nil
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.After(result[j].StartTime) })
	return result, nil
}

func (m *mockLabSessionRepo) ListForStudent(_ context.Context, studentID string) ([]model.LabSession, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	approved := make(map[string]bool)
	for _, e := range m.s.enrollments {
		if e.StudentID == studentID && e.Status == model.EnrollmentApproved {
			approved[e.CourseID+"|"+e.Section] = true
		}
	}
	result := []model.LabSession{}
	for id, ls := range m.s.sessions {
		if approved[ls.CourseID+"|"+ls.Section] {
			result = append(result, *m.s.sessionCopy(id))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *mockLabSessionRepo) UpdateAttendance(_ context.Context, sessionID string, attendance []model.AttendanceEntry) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	ls, ok := m.s.sessions[sessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	ls.Attendance = append(datatypes.JSONSlice[model.AttendanceEntry]{}, attendance...)
	return nil
}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct{ s *mockStore }

func (m *mockSubmissionRepo) Create(_ context.Context, submission *model.Submission) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, sub := range m.s.submissions {
		if sub.SessionID == submission.SessionID && sub.StudentID == submission.StudentID && sub.Section == submission.Section {
			return gorm.ErrDuplicatedKey
		}
	}
	if submission.SubmissionID == "" {
		submission.SubmissionID = m.s.nextID("sub")
	}
	c := *submission
	c.Session, c.Student = nil, nil
	m.s.submissions[submission.SubmissionID] = &c
	return nil
}

func (m *mockSubmissionRepo) GetByID(_ context.Context, id string) (*model.Submission, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if sub := m.s.submissionCopy(id); sub != nil {
		return sub, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) GetBySessionStudent(_ context.Context, sessionID, studentID, section string) (*model.Submission, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, sub := range m.s.submissions {
		if sub.SessionID == sessionID && sub.StudentID == studentID && sub.Section == section {
			c := m.s.submissionCopy(id)
			c.Session, c.Student = nil, nil
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) ListBySession(_ context.Context, sessionID string) ([]model.Submission, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	result := []model.Submission{}
	for id, sub := range m.s.submissions {
		if sub.SessionID == sessionID {
			c := m.s.submissionCopy(id)
			c.Session = nil
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SubmissionID < result[j].SubmissionID })
	return result, nil
}

func (m *mockSubmissionRepo) ListByStudent(_ context.Context, studentID string, offset, limit int) ([]model.Submission, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	all := []model.Submission{}
	for id, sub := range m.s.submissions {
		if sub.StudentID == studentID {
			all = append(all, *m.s.submissionCopy(id))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SubmissionID < all[j].SubmissionID })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Submission{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockSubmissionRepo) UpdateGrade(_ context.Context, id string, marks float64, feedback string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sub, ok := m.s.submissions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sub.Marks = &marks
	sub.Feedback = feedback
	sub.IsReviewed = true
	return nil
}

func (m *mockSubmissionRepo) StatsByCourseSection(_ context.Context, courseID, section string, studentIDs []string) ([]model.StudentStat, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	want := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		want[id] = true
	}
	agg := make(map[string]*model.StudentStat)
	for _, sub := range m.s.submissions {
		if sub.CourseID != courseID || sub.Section != section || !want[sub.StudentID] {
			continue
		}
		st, ok := agg[sub.StudentID]
		if !ok {
			st = &model.StudentStat{StudentID: sub.StudentID}
			agg[sub.StudentID] = st
		}
		st.Count++
		if sub.Marks != nil {
			st.TotalMarks += *sub.Marks
		}
	}
	result := make([]model.StudentStat, 0, len(agg))
	for _, st := range agg {
		result = append(result, *st)
	}
	return result, nil
}
