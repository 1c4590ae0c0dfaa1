package model

// Room 教室 — 对应 rooms
// 上游对同一物理教室可能在不同调用中返回不同 uuid（甚至缺失），
// 因此以 (upstream_id, name, building) 的内容哈希作为去重键
type Room struct {
	RoomID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"room_id"`
	UpstreamID  *string `gorm:"type:uuid"                                      json:"upstream_id,omitempty"`
	ContentHash string  `gorm:"type:varchar(64);uniqueIndex;not null"          json:"content_hash"`
	Name        string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Building    *string `gorm:"type:varchar(100)"                              json:"building,omitempty"`
	MapURL      *string `gorm:"type:varchar(500)"                              json:"map_url,omitempty"`
	SyncedModel

	SchedulePairs []SchedulePair `gorm:"many2many:schedule_pair_rooms;foreignKey:RoomID;joinForeignKey:RoomID;references:SchedulePairID;joinReferences:SchedulePairID" json:"schedule_pairs,omitempty"`
}

func (Room) TableName() string { return "rooms" }
