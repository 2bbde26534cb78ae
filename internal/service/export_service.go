package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/medrhouma/Projet-d-integration-sub000/internal/dto"
	"github.com/medrhouma/Projet-d-integration-sub000/internal/model"
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出只消费 ScheduleViewService 的投影结果，不直接访问存储
//   - Excel：一个 Sheet，行为标准时段，列为周一至周六，单元格内每行一门课
//   - iCalendar：每条课程一个 VEVENT，时间以 UTC 输出
//   - 结果以 bytes.Buffer 返回，由 Handler 层设置响应头后写出
type ExportService interface {
	// ExportWeekGrid 导出周课表为 Excel
	ExportWeekGrid(ctx context.Context, req *dto.WeekGridRequest) (*bytes.Buffer, string, error)
	// ExportICS 导出日期区间内的课程为 iCalendar
	ExportICS(ctx context.Context, req *dto.SessionListRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	view      ScheduleViewService
	sheetName string
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(view ScheduleViewService, sheetName string, logger *zap.Logger) ExportService {
	if sheetName == "" {
		sheetName = "课表"
	}
	return &exportService{view: view, sheetName: sheetName, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportWeekGrid — 导出周课表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 第 1 行：标题（周起始日期）
//   - 第 2 行：表头 | 时段 | 周一 … 周六 |
//   - 之后每个标准时段一行，午休行整行标注"午休"
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportWeekGrid(ctx context.Context, req *dto.WeekGridRequest) (*bytes.Buffer, string, error) {
	grid, err := s.view.WeekGrid(ctx, req)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := s.sheetName
	idx, err := f.NewSheet(sheet)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerate
	}
	f.SetActiveSheet(idx)
	if sheet != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	f.SetColWidth(sheet, "A", "A", 16)
	lastCol := colName(len(grid.Days))
	f.SetColWidth(sheet, "B", lastCol, 28)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	cellStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	pauseStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9D9D9"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheet, "A1", fmt.Sprintf("课表 %s 起", grid.WeekStart))
	f.MergeCell(sheet, "A1", cell(lastCol, 1))
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	// 表头
	f.SetCellValue(sheet, cell("A", 2), "时段")
	for d, name := range grid.Days {
		f.SetCellValue(sheet, cell(colName(d+1), 2), name)
	}
	f.SetCellStyle(sheet, "A2", cell(lastCol, 2), headerStyle)

	// 数据行
	for sl, slot := range grid.Slots {
		row := 3 + sl
		f.SetCellValue(sheet, cell("A", row), fmt.Sprintf("%s-%s", slot.StartTime, slot.EndTime))
		if slot.IsPause {
			f.SetCellValue(sheet, cell("B", row), "午休")
			f.MergeCell(sheet, cell("B", row), cell(lastCol, row))
			f.SetCellStyle(sheet, cell("B", row), cell(lastCol, row), pauseStyle)
			continue
		}
		for d := range grid.Days {
			f.SetCellValue(sheet, cell(colName(d+1), row), cellText(grid.Cells[d][sl]))
		}
		f.SetCellStyle(sheet, cell("B", row), cell(lastCol, row), cellStyle)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerate
	}

	filename := fmt.Sprintf("课表_%s.xlsx", grid.WeekStart)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportICS — 导出课程为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportICS(ctx context.Context, req *dto.SessionListRequest) (*bytes.Buffer, string, error) {
	sessions, err := s.view.List(ctx, req)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//school-timetable//course-sessions//ZH")
	cal.SetName("课表")

	stamp := time.Now().UTC()
	for i := range sessions {
		sr := &sessions[i]
		start, end, err := sessionInterval(sr)
		if err != nil {
			s.logger.Warn("跳过时间非法的课程", zap.String("id", sr.ID), zap.Error(err))
			continue
		}

		evt := cal.AddEvent(sr.ID + "@school-timetable")
		evt.SetDtStampTime(stamp)
		evt.SetStartAt(start)
		evt.SetEndAt(end)
		evt.SetSummary(firstNonEmpty(sr.SubjectName, sr.SubjectID))
		if sr.RoomName != "" {
			evt.SetLocation(sr.RoomName)
		}
		evt.SetDescription(eventDescription(sr))
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("课表_%s_%s.ics", req.From, req.To)
	return buf, filename, nil
}

// ── 辅助函数 ──

// colName 第 idx 个数据列（0 为时段列 A）
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func cellText(items []dto.SessionResponse) string {
	lines := make([]string, 0, len(items))
	for i := range items {
		lines = append(lines, sessionLabel(&items[i]))
	}
	return strings.Join(lines, "\n")
}

// sessionLabel "科目 | 班级 | 教师 @ 教室"，缺失部分省略
func sessionLabel(sr *dto.SessionResponse) string {
	parts := []string{firstNonEmpty(sr.SubjectName, sr.SubjectID), firstNonEmpty(sr.GroupName, sr.GroupID)}
	if sr.TeacherName != "" {
		parts = append(parts, sr.TeacherName)
	}
	label := strings.Join(parts, " | ")
	if sr.RoomName != "" {
		label += " @ " + sr.RoomName
	}
	return label
}

func eventDescription(sr *dto.SessionResponse) string {
	parts := []string{"班级: " + firstNonEmpty(sr.GroupName, sr.GroupID)}
	if sr.TeacherName != "" {
		parts = append(parts, "教师: "+sr.TeacherName)
	}
	return strings.Join(parts, "\n")
}

func sessionInterval(sr *dto.SessionResponse) (time.Time, time.Time, error) {
	date, err := model.ParseDate(sr.Date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err := model.ParseTimeOfDay(sr.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := model.ParseTimeOfDay(sr.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start.On(date), end.On(date), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
