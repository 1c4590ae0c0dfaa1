package model

import "time"

// ── 同步运行状态 ──

const (
	SyncStatusInProgress = "in_progress"
	SyncStatusSuccess    = "success"
	SyncStatusFailed     = "failed"
)

// SyncRun 一次同步运行的生命周期记录 — 对应 sync_runs
// 创建时为 in_progress，终态 (success | failed) 恰好写入一次；
// 崩溃后遗留的 in_progress 记录是可观测异常，不自动恢复
type SyncRun struct {
	SyncRunID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"     json:"sync_run_id"`
	Status     string     `gorm:"type:varchar(20);not null;default:'in_progress';index" json:"status"`
	Comment    *string    `gorm:"type:varchar(500)"                                  json:"comment,omitempty"`
	StartedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"                 json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func (SyncRun) TableName() string { return "sync_runs" }

// Terminal 运行是否已进入终态
func (r *SyncRun) Terminal() bool {
	return r.Status == SyncStatusSuccess || r.Status == SyncStatusFailed
}
