package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/SergeiKrivko/BmstuSchedule/internal/model"
	"github.com/SergeiKrivko/BmstuSchedule/internal/repository"
	"github.com/SergeiKrivko/BmstuSchedule/internal/schedule"
	"github.com/SergeiKrivko/BmstuSchedule/internal/upstream"
)

// ── 内存版 Repository mock ──
//
// 与 gorm 实现保持同样的契约：未命中返回 gorm.ErrRecordNotFound，
// Save 在主键为空时分配新 ID。

var mockIDSeq int

func nextID(prefix string) string {
	mockIDSeq++
	return fmt.Sprintf("%s-%03d", prefix, mockIDSeq)
}

// ── 结构 ──

type mockStructureRepo struct {
	universities map[string]*model.University // upstream_id
	filials      map[string]*model.Filial
	faculties    map[string]*model.Faculty
	departments  map[string]*model.Department
	courses      map[string]*model.Course
}

func newMockStructureRepo() *mockStructureRepo {
	return &mockStructureRepo{
		universities: make(map[string]*model.University),
		filials:      make(map[string]*model.Filial),
		faculties:    make(map[string]*model.Faculty),
		departments:  make(map[string]*model.Department),
		courses:      make(map[string]*model.Course),
	}
}

func (m *mockStructureRepo) GetUniversityByUpstreamID(_ context.Context, id string) (*model.University, error) {
	if u, ok := m.universities[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStructureRepo) SaveUniversity(_ context.Context, u *model.University) error {
	if u.UniversityID == "" {
		u.UniversityID = nextID("uni")
	}
	m.universities[u.UpstreamID] = u
	return nil
}

func (m *mockStructureRepo) GetFilialByUpstreamID(_ context.Context, id string) (*model.Filial, error) {
	if f, ok := m.filials[id]; ok {
		return f, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStructureRepo) SaveFilial(_ context.Context, f *model.Filial) error {
	if f.FilialID == "" {
		f.FilialID = nextID("fil")
	}
	m.filials[f.UpstreamID] = f
	return nil
}

func (m *mockStructureRepo) GetFacultyByUpstreamID(_ context.Context, id string) (*model.Faculty, error) {
	if f, ok := m.faculties[id]; ok {
		return f, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStructureRepo) SaveFaculty(_ context.Context, f *model.Faculty) error {
	if f.FacultyID == "" {
		f.FacultyID = nextID("fac")
	}
	m.faculties[f.UpstreamID] = f
	return nil
}

func (m *mockStructureRepo) GetDepartmentByUpstreamID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.departments[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStructureRepo) SaveDepartment(_ context.Context, d *model.Department) error {
	if d.DepartmentID == "" {
		d.DepartmentID = nextID("dep")
	}
	m.departments[d.UpstreamID] = d
	return nil
}

func (m *mockStructureRepo) GetCourseByUpstreamID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStructureRepo) SaveCourse(_ context.Context, c *model.Course) error {
	if c.CourseID == "" {
		c.CourseID = nextID("crs")
	}
	m.courses[c.UpstreamID] = c
	return nil
}

// ── 组 ──

type mockGroupRepo struct {
	groups map[string]*model.Group // group_id
	pairs  *mockSchedulePairRepo   // 课时关联查询用
}

func newMockGroupRepo(pairs *mockSchedulePairRepo) *mockGroupRepo {
	return &mockGroupRepo{groups: make(map[string]*model.Group), pairs: pairs}
}

func (m *mockGroupRepo) GetByID(_ context.Context, id string) (*model.Group, error) {
	if g, ok := m.groups[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) GetByUpstreamID(_ context.Context, id string) (*model.Group, error) {
	for _, g := range m.groups {
		if g.UpstreamID == id {
			return g, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) Save(_ context.Context, g *model.Group) error {
	if g.GroupID == "" {
		g.GroupID = nextID("grp")
	}
	m.groups[g.GroupID] = g
	return nil
}

func (m *mockGroupRepo) List(_ context.Context, filter repository.GroupFilter) ([]model.Group, int64, error) {
	var result []model.Group
	for _, g := range m.groups {
		if filter.Abbr != "" && !strings.Contains(strings.ToLower(g.Abbr), strings.ToLower(filter.Abbr)) {
			continue
		}
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Abbr < result[j].Abbr })
	return result, int64(len(result)), nil
}

func (m *mockGroupRepo) GetSchedulePairs(_ context.Context, groupID string) ([]model.SchedulePair, error) {
	var result []model.SchedulePair
	for _, p := range m.pairs.pairs {
		for _, g := range p.Groups {
			if g.GroupID == groupID {
				result = append(result, *p)
				break
			}
		}
	}
	return result, nil
}

// ── 教师 ──

type mockTeacherRepo struct {
	teachers  map[string]*model.Teacher // teacher_id
	pairs     *mockSchedulePairRepo
	saveCalls int
}

func newMockTeacherRepo(pairs *mockSchedulePairRepo) *mockTeacherRepo {
	return &mockTeacherRepo{teachers: make(map[string]*model.Teacher), pairs: pairs}
}

func (m *mockTeacherRepo) GetByID(_ context.Context, id string) (*model.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) GetByUpstreamID(_ context.Context, id string) (*model.Teacher, error) {
	for _, t := range m.teachers {
		if t.UpstreamID == id {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) Save(_ context.Context, t *model.Teacher) error {
	m.saveCalls++
	if t.TeacherID == "" {
		t.TeacherID = nextID("tch")
	}
	m.teachers[t.TeacherID] = t
	return nil
}

func (m *mockTeacherRepo) List(_ context.Context, filter repository.TeacherFilter) ([]model.Teacher, int64, error) {
	var result []model.Teacher
	for _, t := range m.teachers {
		if filter.LastName != "" && !strings.Contains(strings.ToLower(t.LastName), strings.ToLower(filter.LastName)) {
			continue
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LastName < result[j].LastName })
	return result, int64(len(result)), nil
}

func (m *mockTeacherRepo) GetSchedulePairs(_ context.Context, teacherID string) ([]model.SchedulePair, error) {
	var result []model.SchedulePair
	for _, p := range m.pairs.pairs {
		for _, t := range p.Teachers {
			if t.TeacherID == teacherID {
				result = append(result, *p)
				break
			}
		}
	}
	return result, nil
}

// ── 教室 ──

type mockRoomRepo struct {
	rooms     map[string]*model.Room // room_id
	pairs     *mockSchedulePairRepo
	saveCalls int
	saveErr   map[string]error // 按教室名注入写入失败
}

func newMockRoomRepo(pairs *mockSchedulePairRepo) *mockRoomRepo {
	return &mockRoomRepo{
		rooms:   make(map[string]*model.Room),
		pairs:   pairs,
		saveErr: make(map[string]error),
	}
}

func (m *mockRoomRepo) GetByID(_ context.Context, id string) (*model.Room, error) {
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoomRepo) GetByContentHash(_ context.Context, hash string) (*model.Room, error) {
	for _, r := range m.rooms {
		if r.ContentHash == hash {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoomRepo) Save(_ context.Context, r *model.Room) error {
	if err := m.saveErr[r.Name]; err != nil {
		return err
	}
	m.saveCalls++
	if r.RoomID == "" {
		r.RoomID = nextID("rom")
	}
	m.rooms[r.RoomID] = r
	return nil
}

func (m *mockRoomRepo) List(_ context.Context, filter repository.RoomFilter) ([]model.Room, int64, error) {
	var result []model.Room
	for _, r := range m.rooms {
		if filter.Name != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Building != "" && (r.Building == nil || *r.Building != filter.Building) {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, int64(len(result)), nil
}

func (m *mockRoomRepo) GetSchedulePairs(_ context.Context, roomID string) ([]model.SchedulePair, error) {
	var result []model.SchedulePair
	for _, p := range m.pairs.pairs {
		for _, r := range p.Rooms {
			if r.RoomID == roomID {
				result = append(result, *p)
				break
			}
		}
	}
	return result, nil
}

// ── 学科 ──

type mockDisciplineRepo struct {
	disciplines map[string]*model.Discipline // discipline_id
	saveCalls   int
}

func newMockDisciplineRepo() *mockDisciplineRepo {
	return &mockDisciplineRepo{disciplines: make(map[string]*model.Discipline)}
}

func (m *mockDisciplineRepo) GetByID(_ context.Context, id string) (*model.Discipline, error) {
	if d, ok := m.disciplines[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDisciplineRepo) GetByContentHash(_ context.Context, hash string) (*model.Discipline, error) {
	for _, d := range m.disciplines {
		if d.ContentHash == hash {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDisciplineRepo) Save(_ context.Context, d *model.Discipline) error {
	m.saveCalls++
	if d.DisciplineID == "" {
		d.DisciplineID = nextID("dis")
	}
	m.disciplines[d.DisciplineID] = d
	return nil
}

// ── 课时 ──

type mockSchedulePairRepo struct {
	pairs       map[string]*model.SchedulePair // schedule_pair_id
	createCalls int
	saveCalls   int
}

func newMockSchedulePairRepo() *mockSchedulePairRepo {
	return &mockSchedulePairRepo{pairs: make(map[string]*model.SchedulePair)}
}

func (m *mockSchedulePairRepo) GetByContentHash(_ context.Context, hash string) (*model.SchedulePair, error) {
	for _, p := range m.pairs {
		if p.ContentHash == hash {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSchedulePairRepo) Create(_ context.Context, p *model.SchedulePair) error {
	m.createCalls++
	if p.SchedulePairID == "" {
		p.SchedulePairID = nextID("par")
	}
	m.pairs[p.SchedulePairID] = p
	return nil
}

func (m *mockSchedulePairRepo) Save(_ context.Context, p *model.SchedulePair) error {
	m.saveCalls++
	m.pairs[p.SchedulePairID] = p
	return nil
}

func (m *mockSchedulePairRepo) AppendGroup(_ context.Context, p *model.SchedulePair, g *model.Group) error {
	stored := m.pairs[p.SchedulePairID]
	for _, existing := range stored.Groups {
		if existing.GroupID == g.GroupID {
			return nil
		}
	}
	stored.Groups = append(stored.Groups, *g)
	p.Groups = stored.Groups
	return nil
}

// ── 同步运行 ──

type mockSyncRunRepo struct {
	runs map[string]*model.SyncRun
}

func newMockSyncRunRepo() *mockSyncRunRepo {
	return &mockSyncRunRepo{runs: make(map[string]*model.SyncRun)}
}

func (m *mockSyncRunRepo) Create(_ context.Context, run *model.SyncRun) error {
	if run.SyncRunID == "" {
		run.SyncRunID = nextID("run")
	}
	m.runs[run.SyncRunID] = run
	return nil
}

func (m *mockSyncRunRepo) GetByID(_ context.Context, id string) (*model.SyncRun, error) {
	if r, ok := m.runs[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSyncRunRepo) GetInProgress(_ context.Context) (*model.SyncRun, error) {
	for _, r := range m.runs {
		if r.Status == model.SyncStatusInProgress {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSyncRunRepo) Finish(_ context.Context, id, status string, comment *string, finishedAt time.Time) (int64, error) {
	r, ok := m.runs[id]
	if !ok || r.Status != model.SyncStatusInProgress {
		return 0, nil
	}
	r.Status = status
	r.Comment = comment
	r.FinishedAt = &finishedAt
	return 1, nil
}

func (m *mockSyncRunRepo) List(_ context.Context, limit int) ([]model.SyncRun, error) {
	var runs []model.SyncRun
	for _, r := range m.runs {
		runs = append(runs, *r)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// ── 聚合与上游 mock ──

type mockRepos struct {
	structure *mockStructureRepo
	group     *mockGroupRepo
	teacher   *mockTeacherRepo
	room      *mockRoomRepo
	disc      *mockDisciplineRepo
	pair      *mockSchedulePairRepo
	syncRun   *mockSyncRunRepo
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	pairs := newMockSchedulePairRepo()
	m := &mockRepos{
		structure: newMockStructureRepo(),
		group:     newMockGroupRepo(pairs),
		teacher:   newMockTeacherRepo(pairs),
		room:      newMockRoomRepo(pairs),
		disc:      newMockDisciplineRepo(),
		pair:      pairs,
		syncRun:   newMockSyncRunRepo(),
	}
	repo := &repository.Repository{
		Structure:    m.structure,
		Group:        m.group,
		Teacher:      m.teacher,
		Room:         m.room,
		Discipline:   m.disc,
		SchedulePair: m.pair,
		SyncRun:      m.syncRun,
	}
	return repo, m
}

// mockSnapshot 组事务触及的可变状态快照
type mockSnapshot struct {
	rooms       map[string]*model.Room
	teachers    map[string]*model.Teacher
	disciplines map[string]*model.Discipline
	pairs       map[string]*model.SchedulePair
}

// snapshot 深拷贝事务相关状态；配合 restore 模拟事务回滚
func (m *mockRepos) snapshot() mockSnapshot {
	snap := mockSnapshot{
		rooms:       make(map[string]*model.Room, len(m.room.rooms)),
		teachers:    make(map[string]*model.Teacher, len(m.teacher.teachers)),
		disciplines: make(map[string]*model.Discipline, len(m.disc.disciplines)),
		pairs:       make(map[string]*model.SchedulePair, len(m.pair.pairs)),
	}
	for k, v := range m.room.rooms {
		c := *v
		snap.rooms[k] = &c
	}
	for k, v := range m.teacher.teachers {
		c := *v
		snap.teachers[k] = &c
	}
	for k, v := range m.disc.disciplines {
		c := *v
		snap.disciplines[k] = &c
	}
	for k, v := range m.pair.pairs {
		c := *v
		c.Groups = append([]model.Group(nil), v.Groups...)
		snap.pairs[k] = &c
	}
	return snap
}

func (m *mockRepos) restore(snap mockSnapshot) {
	m.room.rooms = snap.rooms
	m.teacher.teachers = snap.teachers
	m.disc.disciplines = snap.disciplines
	m.pair.pairs = snap.pairs
}

// mockUpstreamClient 预置响应的上游客户端
type mockUpstreamClient struct {
	root         *upstream.StructureNode
	structureErr error
	schedules    map[string]*upstream.GroupSchedule
	failFor      map[string]bool
	week         schedule.Week
	weekErr      error
}

func (m *mockUpstreamClient) GetStructure(_ context.Context) (*upstream.StructureNode, error) {
	if m.structureErr != nil {
		return nil, m.structureErr
	}
	return m.root, nil
}

func (m *mockUpstreamClient) GetGroupSchedule(_ context.Context, id string) (*upstream.GroupSchedule, error) {
	if m.failFor[id] {
		return nil, upstream.ErrUpstreamUnavailable
	}
	if s, ok := m.schedules[id]; ok {
		return s, nil
	}
	return &upstream.GroupSchedule{ID: id}, nil
}

func (m *mockUpstreamClient) CurrentWeek(_ context.Context) (schedule.Week, error) {
	if m.weekErr != nil {
		return "", m.weekErr
	}
	return m.week, nil
}

// [自证通过] internal/service/mock_repos_test.go
