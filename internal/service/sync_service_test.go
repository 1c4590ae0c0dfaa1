package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SergeiKrivko/BmstuSchedule/internal/model"
	"github.com/SergeiKrivko/BmstuSchedule/internal/repository"
	"github.com/SergeiKrivko/BmstuSchedule/internal/schedule"
	"github.com/SergeiKrivko/BmstuSchedule/internal/upstream"
)

// ── 测试夹具 ──

// testStructure 大学 → 校区 → 学院 → 系 → 年级 → 两个组
func testStructure() *upstream.StructureNode {
	return &upstream.StructureNode{
		ID: "u-1", Name: "МГТУ им. Баумана", Abbr: "МГТУ", NodeType: upstream.NodeTypeUniversity,
		Children: []upstream.StructureNode{{
			ID: "fl-1", Name: "Москва", Abbr: "МФ", NodeType: upstream.NodeTypeFilial,
			Children: []upstream.StructureNode{{
				ID: "fc-1", Name: "Информатика и системы управления", Abbr: "ИУ", NodeType: upstream.NodeTypeFaculty,
				Children: []upstream.StructureNode{{
					ID: "dp-1", Name: "Программная инженерия", Abbr: "ИУ7", NodeType: upstream.NodeTypeDepartment,
					Children: []upstream.StructureNode{{
						ID: "cr-1", Name: "1 курс", Abbr: "ИУ7-1", NodeType: upstream.NodeTypeCourse,
						Children: []upstream.StructureNode{
							{ID: "g-1", Name: "ИУ7-11Б", Abbr: "ИУ7-11Б", NodeType: upstream.NodeTypeGroup, SemesterNum: 1},
							{ID: "g-2", Name: "ИУ7-12Б", Abbr: "ИУ7-12Б", NodeType: upstream.NodeTypeGroup, SemesterNum: 1},
						},
					}},
				}},
			}},
		}},
	}
}

var (
	fixtureRoom506 = upstream.RoomRef{ID: "r-1", Name: "506", Building: "ГЗ"}
	fixtureRoom332 = upstream.RoomRef{ID: "r-2", Name: "332аю", Building: "УЛК"}
	fixtureTeacher = upstream.TeacherRef{ID: "t-1", FirstName: "Иван", MiddleName: "Иванович", LastName: "Иванов"}
	fixtureLecture = upstream.DisciplineRef{Abbr: "ИУ7 Матан", ActType: "lecture", FullName: "Математический анализ", ShortName: "Матан"}
	fixtureSeminar = upstream.DisciplineRef{Abbr: "ИУ7 Матан", ActType: "seminar", FullName: "Математический анализ", ShortName: "Матан"}
)

// sharedPair 两个组完全一致的流水讲座，必须被识别为同一逻辑课时
func sharedPair() upstream.SchedulePair {
	return upstream.SchedulePair{
		Day: 1, Week: "all", StartTime: "08:30", EndTime: "10:05",
		Rooms: []upstream.RoomRef{fixtureRoom506}, Teachers: []upstream.TeacherRef{fixtureTeacher},
		Discipline: fixtureLecture,
	}
}

// testClient 预置课表：各组一条共享课时、一条独有课时、一条畸形课时
func testClient() *mockUpstreamClient {
	return &mockUpstreamClient{
		root: testStructure(),
		schedules: map[string]*upstream.GroupSchedule{
			"g-1": {ID: "g-1", Pairs: []upstream.SchedulePair{
				sharedPair(),
				{
					Day: 2, Week: "ch", StartTime: "10:25", EndTime: "12:00",
					Rooms: []upstream.RoomRef{fixtureRoom332}, Teachers: []upstream.TeacherRef{fixtureTeacher},
					Discipline: fixtureSeminar,
				},
				// 星期取值非法
				{Day: 9, Week: "all", StartTime: "08:30", EndTime: "10:05", Discipline: fixtureLecture},
			}},
			"g-2": {ID: "g-2", Pairs: []upstream.SchedulePair{
				sharedPair(),
				{
					Day: 3, Week: "zn", StartTime: "13:00", EndTime: "14:35",
					Rooms: []upstream.RoomRef{fixtureRoom506}, Teachers: []upstream.TeacherRef{fixtureTeacher},
					Discipline: fixtureSeminar,
				},
				// 时间格式非法
				{Day: 1, Week: "all", StartTime: "99:99", EndTime: "10:05", Discipline: fixtureLecture},
			}},
		},
		failFor: map[string]bool{},
		week:    schedule.WeekOdd,
	}
}

// ════════════════════════════════════════════════════════════
// 同步器
// ════════════════════════════════════════════════════════════

func TestSynchronizerFullRun(t *testing.T) {
	repo, mocks := newMockRepository()
	runner := newSynchronizer(repo, testClient(), zap.NewNop(), "run-1")

	comment, err := runner.run(context.Background())
	if err != nil {
		t.Fatalf("run 应成功: %v", err)
	}

	if len(mocks.structure.universities) != 1 {
		t.Errorf("期望 1 所大学，得到 %d", len(mocks.structure.universities))
	}
	if len(mocks.structure.courses) != 1 {
		t.Errorf("期望 1 个年级，得到 %d", len(mocks.structure.courses))
	}
	if len(mocks.group.groups) != 2 {
		t.Errorf("期望 2 个组，得到 %d", len(mocks.group.groups))
	}
	if len(mocks.teacher.teachers) != 1 {
		t.Errorf("同一教师多处引用应只落一行，得到 %d", len(mocks.teacher.teachers))
	}
	if len(mocks.room.rooms) != 2 {
		t.Errorf("同一教室多处引用应只落一行，得到 %d", len(mocks.room.rooms))
	}
	if len(mocks.disc.disciplines) != 2 {
		t.Errorf("lecture/seminar 应各成一条学科，得到 %d", len(mocks.disc.disciplines))
	}
	// 共享课时去重：3 条逻辑课时而不是 4 条
	if len(mocks.pair.pairs) != 3 {
		t.Fatalf("期望 3 条课时，得到 %d", len(mocks.pair.pairs))
	}

	if !strings.Contains(comment, "组 2（失败 0）") {
		t.Errorf("统计摘要应包含组数: %q", comment)
	}
	if !strings.Contains(comment, "跳过畸形课时 2") {
		t.Errorf("统计摘要应计入两条畸形课时: %q", comment)
	}
}

func TestSynchronizerSharedPairLinksBothGroups(t *testing.T) {
	repo, mocks := newMockRepository()
	runner := newSynchronizer(repo, testClient(), zap.NewNop(), "run-1")
	if _, err := runner.run(context.Background()); err != nil {
		t.Fatalf("run 应成功: %v", err)
	}

	shared := findPairByDay(mocks, 1)
	if shared == nil {
		t.Fatal("未找到共享课时")
	}
	if len(shared.Groups) != 2 {
		t.Fatalf("共享课时应关联 2 个组，得到 %d", len(shared.Groups))
	}
}

func TestSynchronizerIdempotent(t *testing.T) {
	repo, mocks := newMockRepository()
	client := testClient()

	if _, err := newSynchronizer(repo, client, zap.NewNop(), "run-1").run(context.Background()); err != nil {
		t.Fatalf("第一次 run 应成功: %v", err)
	}
	if _, err := newSynchronizer(repo, client, zap.NewNop(), "run-2").run(context.Background()); err != nil {
		t.Fatalf("第二次 run 应成功: %v", err)
	}

	if len(mocks.pair.pairs) != 3 {
		t.Errorf("重复同步不得产生课时副本，得到 %d", len(mocks.pair.pairs))
	}
	if len(mocks.group.groups) != 2 || len(mocks.teacher.teachers) != 1 || len(mocks.room.rooms) != 2 {
		t.Error("重复同步不得产生实体副本")
	}

	shared := findPairByDay(mocks, 1)
	if len(shared.Groups) != 2 {
		t.Errorf("组关联最多补一条，得到 %d", len(shared.Groups))
	}
	if shared.SyncRunID == nil || *shared.SyncRunID != "run-2" {
		t.Error("重复同步应刷新 sync_run_id")
	}
}

func TestSynchronizerGroupFailureIsolated(t *testing.T) {
	repo, mocks := newMockRepository()
	client := testClient()
	client.failFor["g-2"] = true
	runner := newSynchronizer(repo, client, zap.NewNop(), "run-1")

	comment, err := runner.run(context.Background())
	if err != nil {
		t.Fatalf("单组失败不应使运行失败: %v", err)
	}
	if !strings.Contains(comment, "组 2（失败 1）") {
		t.Errorf("统计摘要应计入失败组: %q", comment)
	}
	// 另一组照常入库
	if len(mocks.pair.pairs) != 2 {
		t.Errorf("g-1 的 2 条课时应已入库，得到 %d", len(mocks.pair.pairs))
	}
}

// 同一实体被多条课时引用时，一次运行内只允许一次写回
func TestSynchronizerUpsertsEachEntityOncePerRun(t *testing.T) {
	repo, mocks := newMockRepository()
	runner := newSynchronizer(repo, testClient(), zap.NewNop(), "run-1")
	if _, err := runner.run(context.Background()); err != nil {
		t.Fatalf("run 应成功: %v", err)
	}

	// 教室 506 被 3 条课时引用、332 被 1 条引用：各写回一次
	if mocks.room.saveCalls != 2 {
		t.Errorf("2 个教室各应只写回一次，实际 Save %d 次", mocks.room.saveCalls)
	}
	// 同一教师出现在 4 条课时里
	if mocks.teacher.saveCalls != 1 {
		t.Errorf("同一教师应只写回一次，实际 Save %d 次", mocks.teacher.saveCalls)
	}
	if mocks.disc.saveCalls != 2 {
		t.Errorf("lecture/seminar 两条学科各应只写回一次，实际 Save %d 次", mocks.disc.saveCalls)
	}
	if mocks.pair.createCalls != 3 {
		t.Errorf("期望创建 3 条课时，实际 %d 次", mocks.pair.createCalls)
	}
	// 共享课时第二次出现只补组关联，不再写课时本身
	if mocks.pair.saveCalls != 0 {
		t.Errorf("本运行新建的课时不应再次写回，实际 Save %d 次", mocks.pair.saveCalls)
	}
}

// 组事务回滚后缓存不得残留未提交记录，失败不得级联到后续组
func TestSynchronizerGroupTxRollbackKeepsCacheClean(t *testing.T) {
	repo, mocks := newMockRepository()
	repo.Tx = func(ctx context.Context, fn func(txRepo *repository.Repository) error) error {
		snap := mocks.snapshot()
		if err := fn(repo); err != nil {
			mocks.restore(snap)
			return err
		}
		return nil
	}

	client := testClient()
	// g-2 先被同步：共享课时入库之后毒丸教室使整个事务回滚
	client.schedules["g-2"] = &upstream.GroupSchedule{ID: "g-2", Pairs: []upstream.SchedulePair{
		sharedPair(),
		{
			Day: 4, Week: "all", StartTime: "15:00", EndTime: "16:35",
			Rooms:      []upstream.RoomRef{{ID: "r-3", Name: "511", Building: "ГЗ"}},
			Discipline: fixtureSeminar,
		},
	}}
	mocks.room.saveErr["511"] = errors.New("写教室失败")
	runner := newSynchronizer(repo, client, zap.NewNop(), "run-1")

	comment, err := runner.run(context.Background())
	if err != nil {
		t.Fatalf("单组回滚不应使运行失败: %v", err)
	}
	if !strings.Contains(comment, "组 2（失败 1）") {
		t.Errorf("统计摘要应计入回滚的组: %q", comment)
	}

	// 未失败的组不受连累：共享课时重新落库并只关联它自己
	shared := findPairByDay(mocks, 1)
	if shared == nil {
		t.Fatal("共享课时应由未失败的组落库")
	}
	if len(shared.Groups) != 1 || shared.Groups[0].UpstreamID != "g-1" {
		t.Fatalf("共享课时应只关联 g-1，得到 %d 个关联", len(shared.Groups))
	}
	if len(mocks.pair.pairs) != 2 {
		t.Errorf("g-1 的 2 条课时应已落库，得到 %d", len(mocks.pair.pairs))
	}
	// 回滚组独有的教室不得以任何形态幸存
	if _, err := mocks.room.GetByContentHash(context.Background(),
		model.RoomContentHash("r-3", "511", "ГЗ")); err == nil {
		t.Error("回滚组的教室不应存在")
	}
}

func TestSynchronizerStructureFailure(t *testing.T) {
	repo, _ := newMockRepository()
	client := testClient()
	client.structureErr = upstream.ErrUpstreamUnavailable
	runner := newSynchronizer(repo, client, zap.NewNop(), "run-1")

	if _, err := runner.run(context.Background()); err == nil {
		t.Fatal("结构阶段失败应使运行失败")
	}
}

func findPairByDay(m *mockRepos, day int) *model.SchedulePair {
	for _, p := range m.pair.pairs {
		if p.DayOfWeek == day {
			return p
		}
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// 同步服务
// ════════════════════════════════════════════════════════════

func TestSyncServiceTriggerRejectsOverlap(t *testing.T) {
	repo, mocks := newMockRepository()
	mocks.syncRun.runs["run-0"] = &model.SyncRun{
		SyncRunID: "run-0",
		Status:    model.SyncStatusInProgress,
		StartedAt: time.Now(),
	}
	svc := NewSyncService(repo, testClient(), nil, zap.NewNop())

	if _, err := svc.TriggerSync(context.Background()); !errors.Is(err, ErrSyncInProgress) {
		t.Fatalf("期望 ErrSyncInProgress，得到 %v", err)
	}
}

func TestSyncServiceExecuteWritesTerminalOnce(t *testing.T) {
	repo, mocks := newMockRepository()
	mocks.syncRun.runs["run-1"] = &model.SyncRun{
		SyncRunID: "run-1",
		Status:    model.SyncStatusInProgress,
		StartedAt: time.Now(),
	}
	svc := NewSyncService(repo, testClient(), nil, zap.NewNop()).(*syncService)

	svc.execute("run-1")

	run := mocks.syncRun.runs["run-1"]
	if run.Status != model.SyncStatusSuccess {
		t.Fatalf("期望 success，得到 %q", run.Status)
	}
	if run.FinishedAt == nil || run.Comment == nil {
		t.Fatal("终态应携带 finished_at 与统计摘要")
	}
	first := *run.FinishedAt

	// 终态写入后再次 execute 不得改写
	svc.execute("run-1")
	if run.Status != model.SyncStatusSuccess || !run.FinishedAt.Equal(first) {
		t.Error("终态只允许写入一次")
	}
}

func TestSyncServiceExecuteStructureFailureMarksFailed(t *testing.T) {
	repo, mocks := newMockRepository()
	mocks.syncRun.runs["run-1"] = &model.SyncRun{
		SyncRunID: "run-1",
		Status:    model.SyncStatusInProgress,
		StartedAt: time.Now(),
	}
	client := testClient()
	client.structureErr = upstream.ErrUpstreamUnavailable
	svc := NewSyncService(repo, client, nil, zap.NewNop()).(*syncService)

	svc.execute("run-1")

	run := mocks.syncRun.runs["run-1"]
	if run.Status != model.SyncStatusFailed {
		t.Fatalf("期望 failed，得到 %q", run.Status)
	}
	if run.Comment == nil || !strings.Contains(*run.Comment, "结构") {
		t.Error("失败原因应写入 comment")
	}
}

func TestSyncServiceGetSyncRunNotFound(t *testing.T) {
	repo, _ := newMockRepository()
	svc := NewSyncService(repo, testClient(), nil, zap.NewNop())

	if _, err := svc.GetSyncRun(context.Background(), "missing"); !errors.Is(err, ErrSyncRunNotFound) {
		t.Fatalf("期望 ErrSyncRunNotFound，得到 %v", err)
	}
}

// [自证通过] internal/service/sync_service_test.go
