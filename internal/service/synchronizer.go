package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SergeiKrivko/BmstuSchedule/internal/model"
	"github.com/SergeiKrivko/BmstuSchedule/internal/repository"
	"github.com/SergeiKrivko/BmstuSchedule/internal/schedule"
	"github.com/SergeiKrivko/BmstuSchedule/internal/upstream"
)

// synchronizer 单次同步运行的执行器
//
// 两个阶段：
//  1. 结构同步 — 拉取组织结构树，单事务内按 upstream_id 逐节点 upsert，
//     收集全部组节点
//  2. 课表同步 — 逐组拉取课表并在各自事务内落库；
//     单组失败只记入统计，不影响其他组（故障隔离）
//
// 上游对教室/学科/课时不保证稳定标识，去重走内容哈希，
// 运行作用域的 syncCache 保证同一实体每次运行最多一次写回。
type synchronizer struct {
	repo   *repository.Repository
	client UpstreamClient
	logger *zap.Logger

	runID string
	now   time.Time
	cache *syncCache

	// 运行统计
	nodesSeen    int
	groupsTotal  int
	groupsFailed int
	pairsLinked  int
	pairsSkipped int
}

func newSynchronizer(repo *repository.Repository, client UpstreamClient, logger *zap.Logger, runID string) *synchronizer {
	return &synchronizer{
		repo:   repo,
		client: client,
		logger: logger,
		runID:  runID,
		now:    time.Now(),
		cache:  newSyncCache(),
	}
}

// run 执行完整同步，返回写入运行记录的统计摘要
// 返回 error 仅当结构阶段整体失败（此时运行记为 failed）
func (s *synchronizer) run(ctx context.Context) (string, error) {
	root, err := s.client.GetStructure(ctx)
	if err != nil {
		return "", fmt.Errorf("拉取组织结构失败: %w", err)
	}

	var groups []*model.Group
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var txErr error
		groups, txErr = s.syncStructure(ctx, tx, root)
		return txErr
	})
	if err != nil {
		return "", fmt.Errorf("结构同步失败: %w", err)
	}

	s.groupsTotal = len(groups)
	for _, group := range groups {
		if err := s.syncGroup(ctx, group); err != nil {
			s.groupsFailed++
			s.logger.Warn("组课表同步失败",
				zap.String("group_abbr", group.Abbr),
				zap.String("upstream_id", group.UpstreamID),
				zap.Error(err))
		}
	}

	comment := fmt.Sprintf("结构节点 %d；组 %d（失败 %d）；课时关联 %d；跳过畸形课时 %d",
		s.nodesSeen, s.groupsTotal, s.groupsFailed, s.pairsLinked, s.pairsSkipped)
	return comment, nil
}

// ════════════════════════════════════════════════════════════
// 阶段 1：结构同步
// ════════════════════════════════════════════════════════════

// structureFrame 遍历栈帧，携带已落库祖先的主键
type structureFrame struct {
	node         *upstream.StructureNode
	universityID string
	filialID     string
	facultyID    string
	departmentID string
	courseID     string
}

func (s *synchronizer) syncStructure(ctx context.Context, tx *repository.Repository, root *upstream.StructureNode) ([]*model.Group, error) {
	var groups []*model.Group

	stack := []structureFrame{{node: root}}
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := frame.node
		s.nodesSeen++

		next := frame
		switch node.NodeType {
		case upstream.NodeTypeUniversity:
			u, err := s.upsertUniversity(ctx, tx, node)
			if err != nil {
				return nil, err
			}
			next.universityID = u.UniversityID

		case upstream.NodeTypeFilial:
			if frame.universityID == "" {
				s.logger.Warn("校区节点缺少大学祖先，跳过分支", zap.String("abbr", node.Abbr))
				continue
			}
			f, err := s.upsertFilial(ctx, tx, node, frame.universityID)
			if err != nil {
				return nil, err
			}
			next.filialID = f.FilialID

		case upstream.NodeTypeFaculty:
			if frame.filialID == "" {
				s.logger.Warn("学院节点缺少校区祖先，跳过分支", zap.String("abbr", node.Abbr))
				continue
			}
			f, err := s.upsertFaculty(ctx, tx, node, frame.filialID)
			if err != nil {
				return nil, err
			}
			next.facultyID = f.FacultyID

		case upstream.NodeTypeDepartment:
			if frame.facultyID == "" {
				s.logger.Warn("系节点缺少学院祖先，跳过分支", zap.String("abbr", node.Abbr))
				continue
			}
			d, err := s.upsertDepartment(ctx, tx, node, frame.facultyID)
			if err != nil {
				return nil, err
			}
			next.departmentID = d.DepartmentID

		case upstream.NodeTypeCourse:
			if frame.departmentID == "" {
				s.logger.Warn("年级节点缺少系祖先，跳过分支", zap.String("abbr", node.Abbr))
				continue
			}
			c, err := s.upsertCourse(ctx, tx, node, frame.departmentID)
			if err != nil {
				return nil, err
			}
			next.courseID = c.CourseID

		case upstream.NodeTypeGroup:
			if frame.courseID == "" {
				s.logger.Warn("组节点缺少年级祖先，跳过", zap.String("abbr", node.Abbr))
				continue
			}
			g, err := s.upsertGroup(ctx, tx, node, frame.courseID)
			if err != nil {
				return nil, err
			}
			groups = append(groups, g)
			// 组是叶子，不下钻
			continue

		default:
			s.logger.Warn("未知结构节点类型，跳过分支",
				zap.String("node_type", node.NodeType),
				zap.String("abbr", node.Abbr))
			continue
		}

		for i := range node.Children {
			child := next
			child.node = &node.Children[i]
			stack = append(stack, child)
		}
	}

	return groups, nil
}

func nodeAbbr(node *upstream.StructureNode) string {
	if node.Abbr != "" {
		return node.Abbr
	}
	return node.Name
}

func (s *synchronizer) upsertUniversity(ctx context.Context, tx *repository.Repository, node *upstream.StructureNode) (*model.University, error) {
	u, err := tx.Structure.GetUniversityByUpstreamID(ctx, node.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		u = &model.University{UpstreamID: node.ID}
	}
	u.Abbr = nodeAbbr(node)
	u.Name = node.Name
	u.Touch(s.runID, s.now)
	if err := tx.Structure.SaveUniversity(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *synchronizer) upsertFilial(ctx context.Context, tx *repository.Repository, node *upstream.StructureNode, universityID string) (*model.Filial, error) {
	f, err := tx.Structure.GetFilialByUpstreamID(ctx, node.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		f = &model.Filial{UpstreamID: node.ID}
	}
	f.Abbr = nodeAbbr(node)
	f.Name = node.Name
	f.UniversityID = universityID
	f.Touch(s.runID, s.now)
	if err := tx.Structure.SaveFilial(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *synchronizer) upsertFaculty(ctx context.Context, tx *repository.Repository, node *upstream.StructureNode, filialID string) (*model.Faculty, error) {
	f, err := tx.Structure.GetFacultyByUpstreamID(ctx, node.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		f = &model.Faculty{UpstreamID: node.ID}
	}
	f.Abbr = nodeAbbr(node)
	f.Name = node.Name
	f.FilialID = filialID
	f.Touch(s.runID, s.now)
	if err := tx.Structure.SaveFaculty(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *synchronizer) upsertDepartment(ctx context.Context, tx *repository.Repository, node *upstream.StructureNode, facultyID string) (*model.Department, error) {
	d, err := tx.Structure.GetDepartmentByUpstreamID(ctx, node.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		d = &model.Department{UpstreamID: node.ID}
	}
	d.Abbr = nodeAbbr(node)
	d.Name = node.Name
	d.FacultyID = facultyID
	d.Touch(s.runID, s.now)
	if err := tx.Structure.SaveDepartment(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *synchronizer) upsertCourse(ctx context.Context, tx *repository.Repository, node *upstream.StructureNode, departmentID string) (*model.Course, error) {
	c, err := tx.Structure.GetCourseByUpstreamID(ctx, node.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		c = &model.Course{UpstreamID: node.ID, CourseNum: 1}
	}
	c.Abbr = nodeAbbr(node)
	c.DepartmentID = departmentID
	c.Touch(s.runID, s.now)
	if err := tx.Structure.SaveCourse(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *synchronizer) upsertGroup(ctx context.Context, tx *repository.Repository, node *upstream.StructureNode, courseID string) (*model.Group, error) {
	g, err := tx.Group.GetByUpstreamID(ctx, node.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		g = &model.Group{UpstreamID: node.ID, SemesterNum: 1}
	}
	g.Abbr = nodeAbbr(node)
	if node.SemesterNum > 0 {
		g.SemesterNum = node.SemesterNum
	}
	g.CourseID = courseID
	g.Touch(s.runID, s.now)
	if err := tx.Group.Save(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// ════════════════════════════════════════════════════════════
// 阶段 2：组课表同步
// ════════════════════════════════════════════════════════════

// syncGroup 拉取并落库单个组的课表；拉取和事务失败都只影响该组
func (s *synchronizer) syncGroup(ctx context.Context, group *model.Group) error {
	sched, err := s.client.GetGroupSchedule(ctx, group.UpstreamID)
	if err != nil {
		return fmt.Errorf("拉取课表失败: %w", err)
	}

	// 缓存写入与事务同生共死：回滚的组不得把未提交记录留给后续组
	s.cache.begin()
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		for i := range sched.Pairs {
			if err := s.syncPair(ctx, tx, group, &sched.Pairs[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.cache.discard()
		return err
	}
	s.cache.commit()
	return nil
}

// syncPair 落库单个课时：先 upsert 引用实体，再按内容哈希 upsert 课时本身
func (s *synchronizer) syncPair(ctx context.Context, tx *repository.Repository, group *model.Group, wire *upstream.SchedulePair) error {
	day := schedule.DayOfWeek(wire.Day)
	if !day.Valid() {
		s.pairsSkipped++
		s.logger.Warn("课时星期取值非法，跳过",
			zap.Int("day", wire.Day), zap.String("group_abbr", group.Abbr))
		return nil
	}
	if _, err := schedule.NewTimeSlot(wire.StartTime, wire.EndTime, s.now); err != nil {
		s.pairsSkipped++
		s.logger.Warn("课时时间格式非法，跳过",
			zap.String("start", wire.StartTime), zap.String("end", wire.EndTime),
			zap.String("group_abbr", group.Abbr))
		return nil
	}
	week := string(upstream.WeekFromUpstream(wire.Week))

	rooms, roomHashes, err := s.upsertRooms(ctx, tx, wire.Rooms)
	if err != nil {
		return err
	}
	teachers, err := s.upsertTeachers(ctx, tx, wire.Teachers)
	if err != nil {
		return err
	}
	discipline, err := s.upsertDiscipline(ctx, tx, &wire.Discipline)
	if err != nil {
		return err
	}

	hash := model.PairContentHash(int(day), week, wire.StartTime, wire.EndTime, roomHashes)
	pair, hit, err := s.cache.pair(ctx, tx, hash)
	if err != nil {
		return err
	}

	if pair == nil {
		pair = &model.SchedulePair{
			ContentHash:  hash,
			DayOfWeek:    int(day),
			Week:         week,
			StartTime:    wire.StartTime,
			EndTime:      wire.EndTime,
			DisciplineID: discipline.DisciplineID,
			Groups:       []model.Group{*group},
			Teachers:     teachers,
			Rooms:        rooms,
		}
		pair.Touch(s.runID, s.now)
		if err := tx.SchedulePair.Create(ctx, pair); err != nil {
			return err
		}
		s.cache.putPair(pair)
		s.cache.markPairGroup(pair.SchedulePairID, group.GroupID)
		s.pairsLinked++
		return nil
	}

	// 往次运行留下的课时，本运行首次触达写回一次；缓存命中不再写
	if !hit {
		pair.Touch(s.runID, s.now)
		if err := tx.SchedulePair.Save(ctx, pair); err != nil {
			return err
		}
		s.cache.putPair(pair)
	}

	// 已存在的逻辑课时：最多补一条组关联，绝不复制
	if !s.cache.pairHasGroup(pair.SchedulePairID, group.GroupID) {
		if err := tx.SchedulePair.AppendGroup(ctx, pair, group); err != nil {
			return err
		}
		s.cache.markPairGroup(pair.SchedulePairID, group.GroupID)
		s.pairsLinked++
	}
	return nil
}

func (s *synchronizer) upsertRooms(ctx context.Context, tx *repository.Repository, refs []upstream.RoomRef) ([]model.Room, []string, error) {
	rooms := make([]model.Room, 0, len(refs))
	hashes := make([]string, 0, len(refs))

	for _, ref := range refs {
		hash := model.RoomContentHash(ref.ID, ref.Name, ref.Building)
		room, hit, err := s.cache.room(ctx, tx, hash)
		if err != nil {
			return nil, nil, err
		}
		if !hit {
			if room == nil {
				room = &model.Room{
					ContentHash: hash,
					Name:        ref.Name,
					UpstreamID:  optional(ref.ID),
					Building:    optional(ref.Building),
				}
			}
			room.Touch(s.runID, s.now)
			if err := tx.Room.Save(ctx, room); err != nil {
				return nil, nil, err
			}
			s.cache.putRoom(room)
		}
		rooms = append(rooms, *room)
		hashes = append(hashes, hash)
	}
	return rooms, hashes, nil
}

func (s *synchronizer) upsertTeachers(ctx context.Context, tx *repository.Repository, refs []upstream.TeacherRef) ([]model.Teacher, error) {
	teachers := make([]model.Teacher, 0, len(refs))

	for _, ref := range refs {
		if ref.ID == "" {
			// 教师没有 upstream_id 就无法去重，整条引用丢弃
			s.logger.Warn("教师引用缺少 uuid，忽略", zap.String("last_name", ref.LastName))
			continue
		}
		teacher, hit, err := s.cache.teacher(ctx, tx, ref.ID)
		if err != nil {
			return nil, err
		}
		if !hit {
			if teacher == nil {
				teacher = &model.Teacher{UpstreamID: ref.ID}
			}
			teacher.FirstName = ref.FirstName
			teacher.MiddleName = ref.MiddleName
			teacher.LastName = ref.LastName
			teacher.Touch(s.runID, s.now)
			if err := tx.Teacher.Save(ctx, teacher); err != nil {
				return nil, err
			}
			s.cache.putTeacher(teacher)
		}
		teachers = append(teachers, *teacher)
	}
	return teachers, nil
}

func (s *synchronizer) upsertDiscipline(ctx context.Context, tx *repository.Repository, ref *upstream.DisciplineRef) (*model.Discipline, error) {
	hash := model.DisciplineContentHash(ref.Abbr, ref.ActType)
	d, hit, err := s.cache.discipline(ctx, tx, hash)
	if err != nil {
		return nil, err
	}
	if hit {
		return d, nil
	}
	if d == nil {
		d = &model.Discipline{ContentHash: hash, Abbr: ref.Abbr, ActType: optional(ref.ActType)}
	}
	d.FullName = ref.FullName
	d.ShortName = ref.ShortName
	d.Touch(s.runID, s.now)
	if err := tx.Discipline.Save(ctx, d); err != nil {
		return nil, err
	}
	s.cache.putDiscipline(d)
	return d, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// [自证通过] internal/service/synchronizer.go
