package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/dto"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/repository"
)

// RosterService 名单缓存修复
// 以已批准的 enrollments 为准重建 courses.students 与 users.enrolled_courses
type RosterService interface {
	Repair(ctx context.Context) (*dto.RepairResponse, error)
}

type rosterService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRosterService 创建 RosterService 实例
func NewRosterService(repo *repository.Repository, logger *zap.Logger) RosterService {
	return &rosterService{repo: repo, logger: logger}
}

func (s *rosterService) Repair(ctx context.Context) (*dto.RepairResponse, error) {
	approved, err := s.repo.Enrollment.ListAllApproved(ctx)
	if err != nil {
		s.logger.Error("列出已批准选课失败", zap.Error(err))
		return nil, err
	}

	studentsByCourse := make(map[string][]string)
	coursesByStudent := make(map[string][]string)
	for _, e := range approved {
		studentsByCourse[e.CourseID] = append(studentsByCourse[e.CourseID], e.StudentID)
		coursesByStudent[e.StudentID] = append(coursesByStudent[e.StudentID], e.CourseID)
	}

	courses, err := s.repo.Course.ListAll(ctx)
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, err
	}
	students, err := s.repo.User.ListStudents(ctx)
	if err != nil {
		s.logger.Error("列出学生失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.RepairResponse{}
	for _, c := range courses {
		want := uniqueSorted(studentsByCourse[c.CourseID])
		if sameSet(c.Students, want) {
			continue
		}
		if err := s.repo.Course.SetStudents(ctx, c.CourseID, want); err != nil {
			s.logger.Error("重建课程名单失败", zap.String("course_id", c.CourseID), zap.Error(err))
			return nil, err
		}
		s.logger.Info("课程名单已修复", zap.String("course_id", c.CourseID), zap.Int("size", len(want)))
		resp.CoursesUpdated++
	}

	for _, u := range students {
		want := uniqueSorted(coursesByStudent[u.UserID])
		if sameSet(u.EnrolledCourses, want) {
			continue
		}
		if err := s.repo.User.SetEnrolledCourses(ctx, u.UserID, want); err != nil {
			s.logger.Error("重建学生选课缓存失败", zap.String("user_id", u.UserID), zap.Error(err))
			return nil, err
		}
		resp.UsersUpdated++
	}

	s.logger.Info("名单缓存修复完成",
		zap.Int("courses_updated", resp.CoursesUpdated),
		zap.Int("users_updated", resp.UsersUpdated),
	)
	return resp, nil
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// sameSet 忽略顺序与重复比较两个 ID 列表
func sameSet(current []string, want []string) bool {
	got := uniqueSorted(current)
	if len(got) != len(want) || len(got) != len(current) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
