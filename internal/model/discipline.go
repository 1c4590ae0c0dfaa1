package model

// Discipline 课程学科 — 对应 disciplines
// 上游不保证学科 uuid 稳定，以 (abbr, act_type) 的内容哈希去重
type Discipline struct {
	DisciplineID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"discipline_id"`
	ContentHash  string  `gorm:"type:varchar(64);uniqueIndex;not null"          json:"content_hash"`
	Abbr         string  `gorm:"type:varchar(100);not null"                     json:"abbr"`
	FullName     string  `gorm:"type:varchar(300);not null"                     json:"full_name"`
	ShortName    string  `gorm:"type:varchar(200);not null"                     json:"short_name"`
	ActType      *string `gorm:"type:varchar(50)"                               json:"act_type,omitempty"`
	SyncedModel

	SchedulePairs []SchedulePair `gorm:"foreignKey:DisciplineID;references:DisciplineID" json:"schedule_pairs,omitempty"`
}

func (Discipline) TableName() string { return "disciplines" }
