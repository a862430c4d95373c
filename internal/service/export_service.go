package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/model"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/repository"
)

// ExportService 导出业务接口
//
//   - 学生统计导出为 Excel (.xlsx)，数据与 StudentStats 完全一致
//   - 学生实验课日程导出为 iCalendar (.ics)
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	ExportStudentStats(ctx context.Context, actor Actor, code, section string) (*bytes.Buffer, string, error)
	StudentCalendar(ctx context.Context, actor Actor) (*bytes.Buffer, error)
}

type exportService struct {
	repo    *repository.Repository
	grading GradingService
	now     Clock
	logger  *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, grading GradingService, clock Clock, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, grading: grading, now: clock, logger: logger}
}

// ────────────────────── ExportStudentStats ──────────────────────
//
// 输出格式：
//   - Sheet "Students"
//   - 第 1 行：课程标题（合并单元格）
//   - 第 2 行：表头 USN | Name | Section | Submitted | Average Marks
//   - 之后每个在册学生一行

func (s *exportService) ExportStudentStats(ctx context.Context, actor Actor, code, section string) (*bytes.Buffer, string, error) {
	// 权限与数据均复用 StudentStats
	stats, err := s.grading.StudentStats(ctx, actor, code, section)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Students"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		s.logger.Error("重命名 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	f.SetColWidth(sheetName, "A", "A", 16)
	f.SetColWidth(sheetName, "B", "B", 28)
	f.SetColWidth(sheetName, "C", "C", 10)
	f.SetColWidth(sheetName, "D", "E", 16)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	numberStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00

	// 标题行
	title := fmt.Sprintf("%s (%s) - Section %s", stats.Course.Name, stats.Course.Code, stats.Course.Section)
	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", "E1")
	f.SetCellStyle(sheetName, "A1", "E1", headerStyle)

	// 表头
	headers := []string{"USN", "Name", "Section", "Submitted", "Average Marks"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", "E2", headerStyle)

	// 数据行
	row := 3
	for _, st := range stats.Students {
		f.SetCellValue(sheetName, cell("A", row), st.USN)
		f.SetCellValue(sheetName, cell("B", row), st.Name)
		f.SetCellValue(sheetName, cell("C", row), st.Section)
		f.SetCellValue(sheetName, cell("D", row), st.AssignmentsSubmitted)
		f.SetCellValue(sheetName, cell("E", row), st.AverageMarks)
		f.SetCellStyle(sheetName, cell("E", row), cell("E", row), numberStyle)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("%s_%s_students.xlsx", stats.Course.Code, stats.Course.Section)
	return buf, filename, nil
}

// ────────────────────── StudentCalendar ──────────────────────

// StudentCalendar 学生所有已批准课程的实验课，每个实验课一个 VEVENT
func (s *exportService) StudentCalendar(ctx context.Context, actor Actor) (*bytes.Buffer, error) {
	if err := actor.require(model.RoleStudent); err != nil {
		return nil, err
	}

	sessions, err := s.repo.LabSession.ListForStudent(ctx, actor.UserID)
	if err != nil {
		s.logger.Error("列出学生实验课失败", zap.String("student_id", actor.UserID), zap.Error(err))
		return nil, err
	}

	now := s.now().UTC()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Digital Lab Records//Lab Sessions//EN")

	for i := range sessions {
		ls := &sessions[i]
		event := cal.AddEvent(ls.SessionID + "@digital-lab-records")
		event.SetDtStampTime(now)
		event.SetCreatedTime(ls.CreatedAt.UTC())
		event.SetStartAt(ls.StartTime.UTC())
		event.SetEndAt(ls.EndTime.UTC())
		event.SetSummary(sessionSummary(ls))

		desc := fmt.Sprintf("Max marks: %d", ls.MaxMarks)
		if d := strings.TrimSpace(ls.Description); d != "" {
			desc = d + "\n" + desc
		}
		event.SetDescription(desc)
	}

	return bytes.NewBufferString(cal.Serialize()), nil
}

func sessionSummary(ls *model.LabSession) string {
	if ls.Course == nil {
		return ls.Title
	}
	return fmt.Sprintf("[%s-%s] %s", ls.Course.Code, ls.Section, ls.Title)
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
